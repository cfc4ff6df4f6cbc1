package notify

import (
	"context"

	"phishguard/pkg/domain"
)

//go:generate mockgen -package mocknotify -source=interface.go -destination=mock/mocknotify.go *

// Notifier shows a transient message on one surface.
type Notifier interface {
	Notify(ctx context.Context, surfaceID, message string, severity domain.Severity)
}

// Renderer draws and removes notifications on a surface.
type Renderer interface {
	Show(ctx context.Context, n Notification) error
	Remove(ctx context.Context, surfaceID, id string) error
}

// Sender posts a message to the other execution context.
type Sender interface {
	Send(ctx context.Context, surfaceID string, msg Message) bool
}
