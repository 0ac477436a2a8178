// Command seeder inserts a handful of fake retired_players rows
// against GAME_DB_URL, for exercising the leaderboard endpoint without
// running a full game session first.
package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"

	"github.com/google/uuid"

	"github.com/openmohaa/stats-api/internal/statsstore"
)

var seedNames = []string{"astra", "bramble", "corvid", "delta", "ember", "flicker", "grouse", "heron"}

func main() {
	dsn := os.Getenv("GAME_DB_URL")
	if dsn == "" {
		log.Fatal("GAME_DB_URL must be set")
	}

	ctx := context.Background()
	store, err := statsstore.Open(ctx, dsn, 2)
	if err != nil {
		log.Fatalf("open stats store: %v", err)
	}
	defer store.Close()

	for _, name := range seedNames {
		score := rand.Intn(500)
		playTimeMs := 30_000 + rand.Intn(600_000)
		if err := store.Save(ctx, uuid.NewString(), name, score, playTimeMs); err != nil {
			log.Fatalf("seed %q: %v", name, err)
		}
		fmt.Printf("seeded %-10s score=%-4d playTimeMs=%d\n", name, score, playTimeMs)
	}
}
