package kafka

import (
	"context"

	"github.com/razinkele/marbefes-eva-app/internal/application/component"
)

// ComponentEvents adapts the Producer to the component store's event port.
type ComponentEvents struct {
	producer *Producer
}

// NewComponentEvents wraps a Producer for component lifecycle publishing.
func NewComponentEvents(producer *Producer) *ComponentEvents {
	return &ComponentEvents{producer: producer}
}

func (e *ComponentEvents) ComponentSaved(ctx context.Context, evt component.SavedEvent) error {
	return e.producer.Publish(ctx, TopicComponentSaved, evt.ComponentID, "component.saved", ComponentSavedPayload{
		ComponentID:  evt.ComponentID,
		Name:         evt.Name,
		DataType:     evt.DataType,
		FeatureCount: evt.FeatureCount,
		SubzoneCount: evt.SubzoneCount,
		SavedAt:      evt.SavedAt,
	})
}

func (e *ComponentEvents) ComponentDeleted(ctx context.Context, evt component.DeletedEvent) error {
	return e.producer.Publish(ctx, TopicComponentDeleted, evt.ComponentID, "component.deleted", ComponentDeletedPayload{
		ComponentID: evt.ComponentID,
		Name:        evt.Name,
		DeletedAt:   evt.DeletedAt,
	})
}
