package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/juzzt/juzzt-server/internal/domain"
	"github.com/juzzt/juzzt-server/internal/store"
)

// recordColumns is the ordered list of columns selected in record queries.
// Must match the scan order in scanRecord.
const recordColumns = `id, created_at, updated_at, title, artist, genre, price,
	image_url, image_blur_hash, musicbrainz_id`

// scanRecord scans a sql.Row (or sql.Rows via its Scan method) into a domain.Record.
func scanRecord(scanner interface{ Scan(dest ...any) error }) (*domain.Record, error) {
	var r domain.Record

	var (
		createdAt string
		updatedAt string
		imageURL  sql.NullString
		blurHash  sql.NullString
		mbid      sql.NullString
	)

	err := scanner.Scan(
		&r.ID,
		&createdAt,
		&updatedAt,
		&r.Title,
		&r.Artist,
		&r.Genre,
		&r.Price,
		&imageURL,
		&blurHash,
		&mbid,
	)
	if err != nil {
		return nil, err
	}

	r.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	r.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	if imageURL.Valid {
		r.ImageURL = imageURL.String
	}
	if blurHash.Valid {
		r.ImageBlurHash = blurHash.String
	}
	if mbid.Valid {
		r.MusicBrainzID = mbid.String
	}

	return &r, nil
}

// CreateRecord inserts a new catalog record.
func (s *Store) CreateRecord(ctx context.Context, record *domain.Record) error {
	now := time.Now()
	record.CreatedAt = now
	record.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO records (id, created_at, updated_at, title, artist, genre, price,
			image_url, image_blur_hash, musicbrainz_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		formatTime(record.CreatedAt),
		formatTime(record.UpdatedAt),
		record.Title,
		record.Artist,
		record.Genre,
		record.Price,
		nullableString(record.ImageURL),
		nullableString(record.ImageBlurHash),
		nullableString(record.MusicBrainzID),
	)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}

	if err := s.searchIndexer.IndexRecord(ctx, record); err != nil {
		s.logger.Warn("failed to index record", "record_id", record.ID, "error", err)
	}

	return nil
}

// GetRecord returns a record by ID.
func (s *Store) GetRecord(ctx context.Context, id string) (*domain.Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM records WHERE id = ?`, id)

	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get record %s: %w", id, err)
	}
	return record, nil
}

// ListRecords returns every catalog record ordered by primary key. The stable
// ascending order matters to the enrichment batch, which walks the catalog
// sequentially.
func (s *Store) ListRecords(ctx context.Context) ([]*domain.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM records ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	return collectRecords(rows)
}

// ListRecordsMissingMusicBrainzID returns records without an external
// identifier, ordered by primary key.
func (s *Store) ListRecordsMissingMusicBrainzID(ctx context.Context) ([]*domain.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM records
		 WHERE musicbrainz_id IS NULL OR musicbrainz_id = ''
		 ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list records missing musicbrainz id: %w", err)
	}
	defer rows.Close()

	return collectRecords(rows)
}

// UpdateRecord persists changes to an existing record.
func (s *Store) UpdateRecord(ctx context.Context, record *domain.Record) error {
	record.UpdatedAt = time.Now()

	res, err := s.db.ExecContext(ctx, `
		UPDATE records
		SET updated_at = ?, title = ?, artist = ?, genre = ?, price = ?,
			image_url = ?, image_blur_hash = ?, musicbrainz_id = ?
		WHERE id = ?`,
		formatTime(record.UpdatedAt),
		record.Title,
		record.Artist,
		record.Genre,
		record.Price,
		nullableString(record.ImageURL),
		nullableString(record.ImageBlurHash),
		nullableString(record.MusicBrainzID),
		record.ID,
	)
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update record rows affected: %w", err)
	}
	if affected == 0 {
		return store.ErrRecordNotFound
	}

	if err := s.searchIndexer.IndexRecord(ctx, record); err != nil {
		s.logger.Warn("failed to reindex record", "record_id", record.ID, "error", err)
	}

	return nil
}

// DeleteRecord removes a record from the catalog.
func (s *Store) DeleteRecord(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete record rows affected: %w", err)
	}
	if affected == 0 {
		return store.ErrRecordNotFound
	}

	if err := s.searchIndexer.DeleteRecord(ctx, id); err != nil {
		s.logger.Warn("failed to remove record from index", "record_id", id, "error", err)
	}

	return nil
}

// collectRecords drains a result set into a slice of records.
func collectRecords(rows *sql.Rows) ([]*domain.Record, error) {
	var records []*domain.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

// nullableString converts an empty string into a NULL column value.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
