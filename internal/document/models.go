// Package document implements templated document requests: a placeholder
// form plus the supporting requirement uploads, submitted upstream as one
// multipart request.
package document

import (
	"time"

	"baryo/internal/document/placeholder"
)

// maxRequirementBytes bounds one requirement upload.
const maxRequirementBytes = 5 << 20

// Requirement is one supporting document the requestor must attach.
type Requirement struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Upload is the file attached to a requirement. PDF only in this flow;
// re-uploading under the same requirement id replaces, never appends.
type Upload struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

// Session is one in-progress document request.
type Session struct {
	ID           string             `json:"id"`
	UserID       string             `json:"user_id"`
	DocumentType string             `json:"document_type"`
	Form         *placeholder.Form  `json:"form"`
	Requirements []Requirement      `json:"requirements"`
	Uploads      map[string]*Upload `json:"uploads"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}
