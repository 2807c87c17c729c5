package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/snap2style/s2s/internal/models"
	"github.com/snap2style/s2s/internal/shared"
)

// GenerationLogRepository appends to and reads the local generation history.
//
// One row per submission attempt, successful or not; rows are never updated.
type GenerationLogRepository struct {
	db *sql.DB
}

// NewGenerationLogRepository creates a new GenerationLogRepository with the given database connection
func NewGenerationLogRepository(db *sql.DB) *GenerationLogRepository {
	return &GenerationLogRepository{db: db}
}

// Append inserts a new history row with generated ID and sequence.
func (r *GenerationLogRepository) Append(record models.GenerationRecord) error {
	sequence, err := NextSequence(r.db, "generations")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	if record.Status == "" {
		record.Status = "success"
	}

	query := `
		INSERT INTO generations (id, sequence, style, instructions_len, result_url, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		shared.GenerateID(),
		sequence,
		record.Style,
		record.InstructionsLen,
		record.ResultURL,
		record.Status,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert generation record: %w", err)
	}

	return nil
}

// List retrieves history rows, newest first. limit <= 0 returns everything.
func (r *GenerationLogRepository) List(limit int) ([]models.GenerationRecord, error) {
	query := `
		SELECT id, sequence, style, instructions_len, result_url, status, created_at
		FROM generations
		ORDER BY sequence DESC
	`

	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query generations: %w", err)
	}
	defer rows.Close()

	var records []models.GenerationRecord
	for rows.Next() {
		var record models.GenerationRecord
		err := rows.Scan(
			&record.ID,
			&record.Sequence,
			&record.Style,
			&record.InstructionsLen,
			&record.ResultURL,
			&record.Status,
			&record.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan generation record: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return records, nil
}

// Count returns the number of history rows.
func (r *GenerationLogRepository) Count() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM generations").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count generations: %w", err)
	}
	return count, nil
}
