package notify

import (
	"context"

	"phishguard/pkg/logger"

	"go.uber.org/zap"
)

// DefaultBridgeBuffer is the number of in-flight messages a Bridge holds.
const DefaultBridgeBuffer = 64

// Handler consumes bridge messages.
type Handler interface {
	Handle(ctx context.Context, surfaceID string, m Message)
}

type envelope struct {
	surfaceID string
	payload   []byte
}

// Bridge carries messages one way between execution contexts. Delivery is
// at most once: sends never block, a full buffer drops the message, and
// nothing is acknowledged. Messages cross the bridge encoded.
type Bridge struct {
	ch chan envelope
}

// NewBridge creates a Bridge holding up to buffer undelivered messages.
func NewBridge(buffer int) *Bridge {
	if buffer <= 0 {
		buffer = DefaultBridgeBuffer
	}

	return &Bridge{ch: make(chan envelope, buffer)}
}

// Send enqueues m and reports whether it was accepted.
func (b *Bridge) Send(ctx context.Context, surfaceID string, m Message) bool {
	select {
	case b.ch <- envelope{surfaceID: surfaceID, payload: MarshalMessage(m)}:
		return true
	default:
		logger.Warn(ctx, "bridge full, message dropped", zap.String("type", string(m.Type)))

		return false
	}
}

// Run delivers messages to h until ctx is done. Undecodable messages are
// logged and dropped.
func (b *Bridge) Run(ctx context.Context, h Handler) {
	for {
		select {
		case <-ctx.Done():
			return
		case env := <-b.ch:
			m, err := UnmarshalMessage(env.payload)
			if err != nil {
				logger.Warn(ctx, "dropping undecodable bridge message", zap.Error(err))

				continue
			}
			h.Handle(logger.WithFields(ctx, zap.String("surfaceID", env.surfaceID)), env.surfaceID, m)
		}
	}
}

var _ Sender = (*Bridge)(nil)
