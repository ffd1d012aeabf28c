// Package audit records who did what through the gateway. Events are
// buffered in-process, appended to an outbox store, and relayed to Kafka
// for the municipal audit pipeline.
package audit

import "time"

// Actions emitted by the registration and document flows.
const (
	ActionWizardStarted     = "wizard.started"
	ActionWizardSubmitted   = "wizard.submitted"
	ActionDocumentPrepared  = "document.prepared"
	ActionDocumentSubmitted = "document.submitted"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        string            `json:"id"`
	Timestamp time.Time         `json:"timestamp"`
	UserID    string            `json:"user_id"`
	Action    string            `json:"action"`
	Resource  string            `json:"resource"`
	Device    string            `json:"device,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}
