package maplestory

// CharacterData is one entry from the ranking API. Experience is a uint64
// because values at high levels exceed the float64-exact integer range;
// decoding straight into uint64 keeps it exact.
type CharacterData struct {
	CharacterID     int64  `json:"characterID"`
	CharacterName   string `json:"characterName"`
	Exp             uint64 `json:"exp"`
	Gap             int    `json:"gap"`
	JobDetail       int    `json:"jobDetail"`
	JobID           int    `json:"jobID"`
	Level           int    `json:"level"`
	Rank            int    `json:"rank"`
	StartRank       int    `json:"startRank"`
	WorldID         int    `json:"worldID"`
	CharacterImgURL string `json:"characterImgURL"`
	LegionLevel     int    `json:"legionLevel"`
	RaidPower       int64  `json:"raidPower"`
	TierID          int    `json:"tierID"`
	Score           int64  `json:"score"`
}

// rankingResponse is the ranking API envelope. A totalCount of zero is a
// valid "character not found" answer, not an error.
type rankingResponse struct {
	TotalCount int             `json:"totalCount"`
	Ranks      []CharacterData `json:"ranks"`
}
