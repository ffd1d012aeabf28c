package wizard

import (
	"time"

	"github.com/google/uuid"

	"baryo/internal/registration/models"
)

// Session is the full state of one resident's trip through the registration
// wizard. One controller instance owns one session at a time; there is no
// concurrent writer (the store serializes access per session ID).
type Session struct {
	ID     string        `json:"id"`
	UserID string        `json:"user_id,omitempty"`
	Step   int           `json:"step"`
	Record models.Record `json:"record"`

	// StepErrors holds the error map of the last blocked advance attempt,
	// scoped to the current step's fields and replaced wholesale each time.
	StepErrors map[string]string `json:"step_errors"`

	// Previews maps file fields to data URLs for immediate display.
	Previews map[string]string `json:"previews"`

	// Attachments holds raw upload bytes until submission. Kept apart from
	// previews: the submitted file is always the last one assigned here,
	// whatever the preview shows.
	Attachments map[string]*models.Attachment `json:"attachments"`

	ResetCount int       `json:"reset_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewSession creates an empty wizard session at step one. The deployment's
// locality constants are injected into the record up front; residents never
// edit them.
func NewSession(userID, barangay, municipality, zip string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:     uuid.NewString(),
		UserID: userID,
		Step:   FirstStep,
		Record: models.Record{
			models.FieldBarangay:     barangay,
			models.FieldMunicipality: municipality,
			models.FieldZipCode:      zip,
		},
		StepErrors:  map[string]string{},
		Previews:    map[string]string{},
		Attachments: map[string]*models.Attachment{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
