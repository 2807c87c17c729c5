package models

import (
	"fmt"
	"strings"
	"time"
)

// PersistedResult is the durable record of a successful styling submission.
//
// Written on every success, restored at startup, replaced by the next
// success, and deleted only by explicit user action.
type PersistedResult struct {
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
	deletedAt      *time.Time
}

// NewPersistedResult creates a PersistedResult from a styling outcome and
// the source image metadata. The ID is assigned by the repository on create.
func NewPersistedResult(sequence int, result StyleResult, sourceFilename string, width, height int) *PersistedResult {
	now := time.Now()
	return &PersistedResult{
		sequence:       sequence,
		canonicalURL:   result.CanonicalURL,
		downloadURL:    result.DownloadURL,
		style:          result.Style,
		sourceFilename: sourceFilename,
		width:          width,
		height:         height,
		createdAt:      now,
		updatedAt:      now,
	}
}

func (r *PersistedResult) ID() string             { return r.id }
func (r *PersistedResult) Sequence() int          { return r.sequence }
func (r *PersistedResult) CanonicalURL() string   { return r.canonicalURL }
func (r *PersistedResult) DownloadURL() string    { return r.downloadURL }
func (r *PersistedResult) Style() string          { return r.style }
func (r *PersistedResult) SourceFilename() string { return r.sourceFilename }
func (r *PersistedResult) Width() int             { return r.width }
func (r *PersistedResult) Height() int            { return r.height }
func (r *PersistedResult) CreatedAt() time.Time   { return r.createdAt }
func (r *PersistedResult) UpdatedAt() time.Time   { return r.updatedAt }
func (r *PersistedResult) DeletedAt() *time.Time  { return r.deletedAt }

func (r *PersistedResult) SetID(id string)           { r.id = id }
func (r *PersistedResult) SetSequence(seq int)       { r.sequence = seq }
func (r *PersistedResult) SetCreatedAt(t time.Time)  { r.createdAt = t }
func (r *PersistedResult) SetUpdatedAt(t time.Time)  { r.updatedAt = t }
func (r *PersistedResult) SetDeletedAt(t *time.Time) { r.deletedAt = t }

// Validate checks that the persisted URL is canonical: absolute and free of
// the cache-busting query parameter.
func (r *PersistedResult) Validate() error {
	if r.canonicalURL == "" {
		return fmt.Errorf("canonical URL is required")
	}
	lower := strings.ToLower(r.canonicalURL)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return fmt.Errorf("canonical URL must be absolute: %s", r.canonicalURL)
	}
	if strings.Contains(r.canonicalURL, "?t=") || strings.Contains(r.canonicalURL, "&t=") {
		return fmt.Errorf("canonical URL must not carry a cache-busting parameter: %s", r.canonicalURL)
	}
	return nil
}

// Restore converts the persisted record back into a StyleResult. The
// display URL is left empty; callers derive a freshly cache-busted one.
func (r *PersistedResult) Restore() StyleResult {
	return StyleResult{
		CanonicalURL: r.canonicalURL,
		DownloadURL:  r.downloadURL,
		Filename:     r.sourceFilename,
		Style:        r.style,
	}
}
