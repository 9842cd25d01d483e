package dispatcher

import (
	"context"

	"github.com/garyjia/esign-wizard/internal/domain/event"
)

// Handler processes submission events
type Handler func(ctx context.Context, evt *event.Event) error

// HandlerInfo describes a registered handler
type HandlerInfo struct {
	Name      string
	EventType event.Type
	Handler   Handler
}
