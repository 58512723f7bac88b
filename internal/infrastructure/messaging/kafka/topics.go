package kafka

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Topic constants for component lifecycle events.
const (
	TopicComponentSaved   = "eva.component.saved"
	TopicComponentDeleted = "eva.component.deleted"
)

// EventEnvelope standardizes event messages.
type EventEnvelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	SchemaVersion string          `json:"schema_version"`
	Payload       json.RawMessage `json:"payload"`
}

// ComponentSavedPayload announces a saved ecosystem component assessment.
type ComponentSavedPayload struct {
	ComponentID  string    `json:"component_id"`
	Name         string    `json:"name"`
	DataType     string    `json:"data_type"`
	FeatureCount int       `json:"feature_count"`
	SubzoneCount int       `json:"subzone_count"`
	SavedAt      time.Time `json:"saved_at"`
}

// ComponentDeletedPayload announces a removed ecosystem component.
type ComponentDeletedPayload struct {
	ComponentID string    `json:"component_id"`
	Name        string    `json:"name"`
	DeletedAt   time.Time `json:"deleted_at"`
}

// NewEnvelope wraps a payload in the standard envelope.
func NewEnvelope(eventType, source string, payload interface{}) (*EventEnvelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &EventEnvelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		SchemaVersion: "1.0",
		Payload:       raw,
	}, nil
}
