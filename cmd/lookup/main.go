// Command lookup resolves a single character name against the ranking API and
// prints the record. Handy for checking what the tracker would see for a name
// before registering it.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"maple-tracker/internal/maplestory"
)

const defaultRankingURL = "https://www.nexon.com/api/maplestory/no-auth/ranking/v2/eu"

func main() {
	name := flag.String("name", "", "character name to look up")
	world := flag.Int("world", 2, "ranking world index (2 = Luna)")
	timeout := flag.Duration("timeout", 10*time.Second, "request timeout")
	flag.Parse()

	if *name == "" {
		fmt.Fprintln(os.Stderr, "usage: lookup -name <character> [-world N]")
		os.Exit(2)
	}

	godotenv.Load()
	baseURL := os.Getenv("RANKING_API_URL")
	if baseURL == "" {
		baseURL = defaultRankingURL
	}

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	client := maplestory.NewClient(baseURL, *world, *timeout, logger)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	record, err := client.GetCharacterData(ctx, *name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lookup failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Name:         %s\n", record.CharacterName)
	fmt.Printf("Level:        %d\n", record.Level)
	fmt.Printf("Experience:   %d\n", record.Exp)
	fmt.Printf("Rank:         %d\n", record.Rank)
	fmt.Printf("Legion:       %d\n", record.LegionLevel)
	fmt.Printf("Raid power:   %d\n", record.RaidPower)
	fmt.Printf("Avatar:       %s\n", record.CharacterImgURL)
}
