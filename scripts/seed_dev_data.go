// Package main implements a standalone seed script that populates a local
// database with a demo client, a demo therapist, their relationship, and two
// weeks of journal entries and day ratings.
//
// Run: go run scripts/seed_dev_data.go
//
//	(from the repo root, or: cd scripts && go run seed_dev_data.go)
package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const seedDays = 14

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func dsn() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		getEnv("POSTGRES_USER", "yourday"),
		getEnv("POSTGRES_PASSWORD", "yourday_secret"),
		getEnv("POSTGRES_HOST", "localhost"),
		getEnv("POSTGRES_PORT", "5432"),
		getEnv("POSTGRES_DB", "yourday"),
		getEnv("POSTGRES_SSL_MODE", "disable"),
	)
}

var entryTexts = []string{
	"Slept badly but the morning walk helped.",
	"Talked to my sister for the first time in weeks.",
	"Work was overwhelming. Wrote down three things that went fine anyway.",
	"Quiet day. Cooked something new.",
	"Felt anxious before the meeting, it passed faster than expected.",
	"Skipped the gym, went to bed early instead.",
	"Good day overall. Finished the book.",
}

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn())
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	var clientID, therapistID int64
	err = pool.QueryRow(ctx, `
		INSERT INTO users (telegram_id, name, role) VALUES (100001, 'Demo Client', 'client')
		ON CONFLICT (telegram_id) DO UPDATE SET name = EXCLUDED.name
		RETURNING id`).Scan(&clientID)
	if err != nil {
		log.Fatalf("seed client: %v", err)
	}
	err = pool.QueryRow(ctx, `
		INSERT INTO users (telegram_id, name, role) VALUES (100002, 'Demo Therapist', 'therapist')
		ON CONFLICT (telegram_id) DO UPDATE SET name = EXCLUDED.name, role = 'therapist'
		RETURNING id`).Scan(&therapistID)
	if err != nil {
		log.Fatalf("seed therapist: %v", err)
	}

	_, err = pool.Exec(ctx, `
		INSERT INTO relationships (client_id, therapist_id) VALUES ($1, $2)
		ON CONFLICT (client_id, therapist_id) DO NOTHING`, clientID, therapistID)
	if err != nil {
		log.Fatalf("seed relationship: %v", err)
	}

	entries, ratings := 0, 0
	for day := 0; day < seedDays; day++ {
		date := time.Now().AddDate(0, 0, -day).Format("2006-01-02")

		for i := 0; i < 1+rand.Intn(3); i++ {
			text := entryTexts[rand.Intn(len(entryTexts))]
			_, err = pool.Exec(ctx, `
				INSERT INTO journal_entries (user_id, text, entry_date) VALUES ($1, $2, $3)`,
				clientID, text, date)
			if err != nil {
				log.Fatalf("seed entry for %s: %v", date, err)
			}
			entries++
		}

		_, err = pool.Exec(ctx, `
			INSERT INTO day_ratings (user_id, date, client_rating) VALUES ($1, $2, $3)
			ON CONFLICT (user_id, date) DO UPDATE SET client_rating = EXCLUDED.client_rating`,
			clientID, date, 1+rand.Intn(5))
		if err != nil {
			log.Fatalf("seed rating for %s: %v", date, err)
		}
		ratings++
	}

	log.Printf("seeded client %d, therapist %d, %d entries, %d ratings over %d days",
		clientID, therapistID, entries, ratings, seedDays)
}
