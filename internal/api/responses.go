package api

import (
	"strconv"
	"time"

	"maple-tracker/internal/progression"
	"maple-tracker/internal/store"
)

// Experience values are serialized as decimal strings: they exceed the range
// JSON consumers can represent exactly as numbers.

type characterResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Level         int       `json:"level"`
	Experience    string    `json:"experience"`
	Avatar        *string   `json:"avatar"`
	Job           string    `json:"job"`
	World         string    `json:"world"`
	DiscordUserID *string   `json:"discordUserId,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func toCharacterResponse(c *store.Character) characterResponse {
	return characterResponse{
		ID:            c.ID,
		Name:          c.Name,
		Level:         c.Level,
		Experience:    strconv.FormatUint(c.Experience, 10),
		Avatar:        c.Avatar,
		Job:           c.Job,
		World:         c.World,
		DiscordUserID: c.DiscordUserID,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

func toCharacterResponses(characters []store.Character) []characterResponse {
	out := make([]characterResponse, 0, len(characters))
	for i := range characters {
		out = append(out, toCharacterResponse(&characters[i]))
	}
	return out
}

type progressionEntryResponse struct {
	ID          string    `json:"id"`
	CharacterID string    `json:"characterId"`
	Level       int       `json:"level"`
	Experience  string    `json:"experience"`
	Rank        *int      `json:"rank"`
	LegionLevel *int      `json:"legionLevel"`
	RaidPower   *int64    `json:"raidPower"`
	RecordedAt  time.Time `json:"recordedAt"`
}

func toProgressionResponses(entries []store.ProgressionEntry) []progressionEntryResponse {
	out := make([]progressionEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, progressionEntryResponse{
			ID:          e.ID,
			CharacterID: e.CharacterID,
			Level:       e.Level,
			Experience:  strconv.FormatUint(e.Experience, 10),
			Rank:        e.Rank,
			LegionLevel: e.LegionLevel,
			RaidPower:   e.RaidPower,
			RecordedAt:  e.RecordedAt,
		})
	}
	return out
}

type statsResponse struct {
	CharacterName     string `json:"characterName"`
	CurrentLevel      int    `json:"currentLevel"`
	CurrentExperience string `json:"currentExperience"`
	LevelGained       int    `json:"levelGained"`
	ExperienceGained  string `json:"experienceGained"`
	DaysTracked       int    `json:"daysTracked"`
	AverageExpPerDay  int64  `json:"averageExpPerDay"`
}

func toStatsResponse(stats *progression.Stats) statsResponse {
	return statsResponse{
		CharacterName:     stats.CharacterName,
		CurrentLevel:      stats.CurrentLevel,
		CurrentExperience: strconv.FormatUint(stats.CurrentExperience, 10),
		LevelGained:       stats.LevelGained,
		ExperienceGained:  strconv.FormatInt(stats.ExperienceGained, 10),
		DaysTracked:       stats.DaysTracked,
		AverageExpPerDay:  stats.AverageExpPerDay,
	}
}

type discordUserResponse struct {
	ID        string    `json:"id"`
	DiscordID string    `json:"discordId"`
	Username  string    `json:"username"`
	Avatar    *string   `json:"avatar"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toDiscordUserResponse(u *store.DiscordUser) discordUserResponse {
	return discordUserResponse{
		ID:        u.ID,
		DiscordID: u.DiscordID,
		Username:  u.Username,
		Avatar:    u.Avatar,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
