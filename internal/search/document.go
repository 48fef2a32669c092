// Package search provides full-text search over the record catalog using Bleve.
// It supports fuzzy matching, genre filtering, and price range queries.
package search

import (
	"github.com/juzzt/juzzt-server/internal/domain"
)

// RecordDocument is the document structure for the Bleve index.
type RecordDocument struct {
	ID     string  `json:"id"`
	Title  string  `json:"title"`
	Artist string  `json:"artist"`
	Genre  string  `json:"genre"`
	Price  float64 `json:"price"`

	// Timestamps for sorting. Unix millis.
	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
}

// ToMap converts the document to a map with lowercase field names.
// Bleve by default uses Go struct field names (capitalized), but our
// mapping uses lowercase names, so we convert explicitly.
func (d *RecordDocument) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":         d.ID,
		"title":      d.Title,
		"artist":     d.Artist,
		"price":      d.Price,
		"created_at": d.CreatedAt,
		"updated_at": d.UpdatedAt,
	}

	if d.Genre != "" {
		m["genre"] = d.Genre
	}

	return m
}

// RecordToDocument converts a domain Record to a RecordDocument.
func RecordToDocument(rec *domain.Record) *RecordDocument {
	return &RecordDocument{
		ID:        rec.ID,
		Title:     rec.Title,
		Artist:    rec.Artist,
		Genre:     rec.Genre,
		Price:     rec.Price,
		CreatedAt: rec.CreatedAt.UnixMilli(),
		UpdatedAt: rec.UpdatedAt.UnixMilli(),
	}
}
