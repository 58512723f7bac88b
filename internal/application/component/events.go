package component

import (
	"context"
	"time"
)

// SavedEvent announces a saved ecosystem component.
type SavedEvent struct {
	ComponentID  string
	Name         string
	DataType     string
	FeatureCount int
	SubzoneCount int
	SavedAt      time.Time
}

// DeletedEvent announces a removed ecosystem component.
type DeletedEvent struct {
	ComponentID string
	Name        string
	DeletedAt   time.Time
}

// EventPublisher is the outbound port for component lifecycle events.
// Publish failures never fail the store operation that triggered them.
type EventPublisher interface {
	ComponentSaved(ctx context.Context, evt SavedEvent) error
	ComponentDeleted(ctx context.Context, evt DeletedEvent) error
}

type noopPublisher struct{}

func (noopPublisher) ComponentSaved(context.Context, SavedEvent) error     { return nil }
func (noopPublisher) ComponentDeleted(context.Context, DeletedEvent) error { return nil }
