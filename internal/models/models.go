package models

import (
	"time"
)

// Model defines the base interface for all persistent models in the styling client.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Update(model T) error                      // Update modifies an existing model in the database
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// StyleRequest is the value object submitted to the styling service.
// Constructed fresh per submission and not retained.
type StyleRequest struct {
	Style        string
	Instructions string
	File         *PendingImage
}

// StyleResult is a successful styling outcome.
//
// CanonicalURL is the absolute, non-busted URL: the only one persisted or
// used for linking. DisplayURL carries the cache-busting timestamp parameter.
type StyleResult struct {
	CanonicalURL string
	DisplayURL   string
	DownloadURL  string
	Filename     string
	Style        string
	Note         string
}

// Session represents the persisted auth session (the s2s_auth cookie).
type Session struct {
	ID        string
	Email     string
	Cookie    string
	Kind      string // "user" or "guest"
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GenerationRecord is one row of the local generation history log.
type GenerationRecord struct {
	ID              string
	Sequence        int
	Style           string
	InstructionsLen int
	ResultURL       string
	Status          string
	CreatedAt       time.Time
}
