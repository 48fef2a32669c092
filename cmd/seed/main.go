// Package main provides a tool to seed the catalog with records.
//
// It reads a JSON file of records and inserts any that are not already
// present, matched by title and artist. When SEED_ADMIN_EMAIL and
// SEED_ADMIN_PASSWORD are set it also creates an initial admin account.
//
// Usage:
//
//	go run ./cmd/seed
//	go run ./cmd/seed -records-file seed/records.json
package main

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/juzzt/juzzt-server/internal/auth"
	"github.com/juzzt/juzzt-server/internal/config"
	"github.com/juzzt/juzzt-server/internal/domain"
	"github.com/juzzt/juzzt-server/internal/id"
	"github.com/juzzt/juzzt-server/internal/store"
	"github.com/juzzt/juzzt-server/internal/store/sqlite"
)

// seedRecord is one entry in the records file.
type seedRecord struct {
	Title         string  `json:"title"`
	Artist        string  `json:"artist"`
	Genre         string  `json:"genre"`
	Price         float64 `json:"price"`
	ImageURL      string  `json:"image_url,omitempty"`
	MusicBrainzID string  `json:"musicbrainz_id,omitempty"`
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	fmt.Printf("Opening database at: %s\n", cfg.Database.Path)

	s, err := sqlite.Open(cfg.Database.Path, slog.New(slog.DiscardHandler))
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()

	if cfg.Seed.AdminEmail != "" && cfg.Seed.AdminPassword != "" {
		createAdmin(ctx, s, cfg.Seed.AdminEmail, cfg.Seed.AdminPassword)
	}

	data, err := os.ReadFile(cfg.Seed.RecordsFile)
	if err != nil {
		log.Fatalf("Failed to read records file %s: %v", cfg.Seed.RecordsFile, err)
	}

	var seeds []seedRecord
	if err := json.Unmarshal(data, &seeds); err != nil {
		log.Fatalf("Failed to parse records file: %v", err)
	}

	fmt.Printf("Loaded %d records from %s\n", len(seeds), cfg.Seed.RecordsFile)

	existing, err := s.ListRecords(ctx)
	if err != nil {
		log.Fatalf("Failed to list existing records: %v", err)
	}

	present := make(map[string]bool, len(existing))
	for _, record := range existing {
		present[recordKey(record.Title, record.Artist)] = true
	}

	created := 0
	skipped := 0
	now := time.Now()

	for _, seed := range seeds {
		if seed.Title == "" || seed.Artist == "" || seed.Price <= 0 {
			log.Printf("Skipping invalid entry: %q by %q", seed.Title, seed.Artist)
			skipped++
			continue
		}

		if present[recordKey(seed.Title, seed.Artist)] {
			skipped++
			continue
		}

		record := &domain.Record{
			ID:            id.MustGenerate(id.Record),
			CreatedAt:     now,
			UpdatedAt:     now,
			Title:         seed.Title,
			Artist:        seed.Artist,
			Genre:         seed.Genre,
			Price:         seed.Price,
			ImageURL:      seed.ImageURL,
			MusicBrainzID: seed.MusicBrainzID,
		}

		if err := s.CreateRecord(ctx, record); err != nil {
			log.Printf("Failed to create %q: %v", seed.Title, err)
			continue
		}

		fmt.Printf("  Created: %s - %s (%s)\n", record.Artist, record.Title, record.ID)
		created++
	}

	fmt.Printf("\nSeeding complete: %d created, %d skipped\n", created, skipped)
	if created > 0 {
		fmt.Println("Run the server or POST /api/v1/admin/search/reindex to index the new records.")
	}
}

func recordKey(title, artist string) string {
	return strings.ToLower(title) + "|" + strings.ToLower(artist)
}

// createAdmin creates the initial admin account if the email is free.
func createAdmin(ctx context.Context, s store.Store, email, password string) {
	if existing, _ := s.GetUserByEmail(ctx, email); existing != nil {
		fmt.Printf("Admin %s already exists, skipping\n", email)
		return
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		log.Fatalf("Failed to hash admin password: %v", err)
	}

	now := time.Now()
	user := &domain.User{
		ID:           id.MustGenerate(id.User),
		CreatedAt:    now,
		UpdatedAt:    now,
		Email:        email,
		DisplayName:  "Admin",
		Role:         domain.RoleAdmin,
		PasswordHash: hash,
	}

	if err := s.CreateUser(ctx, user); err != nil {
		log.Fatalf("Failed to create admin: %v", err)
	}

	fmt.Printf("Created admin account: %s (%s)\n", email, user.ID)
}
