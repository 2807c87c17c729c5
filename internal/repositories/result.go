package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/snap2style/s2s/internal/models"
	"github.com/snap2style/s2s/internal/shared"
)

// ResultRepository implements models.Repository[*models.PersistedResult]
// for styled-result storage.
//
// The newest non-deleted row is the one restored at startup; earlier rows
// remain as history until purged.
type ResultRepository struct {
	db *sql.DB
}

// NewResultRepository creates a new ResultRepository with the given database connection
func NewResultRepository(db *sql.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// Create inserts a new result into the database with generated ID and sequence
func (r *ResultRepository) Create(result *models.PersistedResult) error {
	sequence, err := NextSequence(r.db, "results")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	result.SetID(id)
	result.SetSequence(sequence)

	if err := result.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO results (id, sequence, canonical_url, download_url, style, source_filename, width, height, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		result.CanonicalURL(),
		result.DownloadURL(),
		result.Style(),
		result.SourceFilename(),
		result.Width(),
		result.Height(),
		result.CreatedAt(),
		result.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert result: %w", err)
	}

	return nil
}

// Get retrieves a result by ID, excluding soft-deleted results
func (r *ResultRepository) Get(id string) (*models.PersistedResult, error) {
	query := `
		SELECT id, sequence, canonical_url, download_url, style, source_filename, width, height, created_at, updated_at, deleted_at
		FROM results
		WHERE id = ? AND deleted_at IS NULL
	`

	return r.scanOne(r.db.QueryRow(query, id))
}

// Latest retrieves the most recent non-deleted result, or
// [shared.ErrNoResult] when the store is empty.
func (r *ResultRepository) Latest() (*models.PersistedResult, error) {
	query := `
		SELECT id, sequence, canonical_url, download_url, style, source_filename, width, height, created_at, updated_at, deleted_at
		FROM results
		WHERE deleted_at IS NULL
		ORDER BY sequence DESC
		LIMIT 1
	`

	result, err := r.scanOne(r.db.QueryRow(query))
	if err != nil && err == errResultNotFound {
		return nil, shared.ErrNoResult
	}

	return result, err
}

// Update modifies an existing result in the database
func (r *ResultRepository) Update(result *models.PersistedResult) error {
	if err := result.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	result.SetUpdatedAt(now)

	query := `
		UPDATE results
		SET canonical_url = ?, download_url = ?, style = ?, source_filename = ?, width = ?, height = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	res, err := r.db.Exec(query,
		result.CanonicalURL(),
		result.DownloadURL(),
		result.Style(),
		result.SourceFilename(),
		result.Width(),
		result.Height(),
		now,
		result.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update result: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("result not found or already deleted: %s", result.ID())
	}

	return nil
}

// Delete soft-deletes a result by ID
func (r *ResultRepository) Delete(id string) error {
	now := time.Now()

	query := `
		UPDATE results
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	res, err := r.db.Exec(query, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete result: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("result not found or already deleted: %s", id)
	}

	return nil
}

// Purge soft-deletes every stored result. Used by `s2s style forget`.
func (r *ResultRepository) Purge() (int, error) {
	now := time.Now()

	res, err := r.db.Exec("UPDATE results SET deleted_at = ? WHERE deleted_at IS NULL", now)
	if err != nil {
		return 0, fmt.Errorf("failed to purge results: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return int(rows), nil
}

// List retrieves all results matching the given criteria, excluding soft-deleted results
func (r *ResultRepository) List(criteria map[string]any) ([]*models.PersistedResult, error) {
	query := `
		SELECT id, sequence, canonical_url, download_url, style, source_filename, width, height, created_at, updated_at, deleted_at
		FROM results
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if style, ok := criteria["style"].(string); ok && style != "" {
		query += " AND style = ?"
		args = append(args, style)
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	var results []*models.PersistedResult
	for rows.Next() {
		result, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return results, nil
}

var errResultNotFound = fmt.Errorf("result not found")

// scanOne scans a single row into a [models.PersistedResult]
func (r *ResultRepository) scanOne(row *sql.Row) (*models.PersistedResult, error) {
	var (
		id             string
		sequence       int
		canonicalURL   string
		downloadURL    string
		style          string
		sourceFilename string
		width          int
		height         int
		createdAt      time.Time
		updatedAt      time.Time
		deletedAt      sql.NullTime
	)

	err := row.Scan(&id, &sequence, &canonicalURL, &downloadURL, &style, &sourceFilename, &width, &height, &createdAt, &updatedAt, &deletedAt)
	if err == sql.ErrNoRows {
		return nil, errResultNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan result: %w", err)
	}

	return rebuildResult(id, sequence, canonicalURL, downloadURL, style, sourceFilename, width, height, createdAt, updatedAt, deletedAt), nil
}

// scanRow scans a row from [sql.Rows] into a [models.PersistedResult]
func (r *ResultRepository) scanRow(rows *sql.Rows) (*models.PersistedResult, error) {
	var (
		id             string
		sequence       int
		canonicalURL   string
		downloadURL    string
		style          string
		sourceFilename string
		width          int
		height         int
		createdAt      time.Time
		updatedAt      time.Time
		deletedAt      sql.NullTime
	)

	err := rows.Scan(&id, &sequence, &canonicalURL, &downloadURL, &style, &sourceFilename, &width, &height, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan result: %w", err)
	}

	return rebuildResult(id, sequence, canonicalURL, downloadURL, style, sourceFilename, width, height, createdAt, updatedAt, deletedAt), nil
}

func rebuildResult(id string, sequence int, canonicalURL, downloadURL, style, sourceFilename string, width, height int, createdAt, updatedAt time.Time, deletedAt sql.NullTime) *models.PersistedResult {
	outcome := models.StyleResult{
		CanonicalURL: canonicalURL,
		DownloadURL:  downloadURL,
		Style:        style,
	}

	result := models.NewPersistedResult(sequence, outcome, sourceFilename, width, height)
	result.SetID(id)
	result.SetCreatedAt(createdAt)
	result.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		result.SetDeletedAt(&deletedAt.Time)
	}

	return result
}
