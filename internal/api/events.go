package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"
	"github.com/smazurov/alsaprobe/internal/events"
)

// ConnectedEvent is the first message on every stream.
type ConnectedEvent struct {
	Message   string `json:"message" example:"SSE connection established" doc:"Connection status"`
	Timestamp string `json:"timestamp" example:"2026-01-27T10:30:00Z" doc:"Connection time"`
}

func connected() ConnectedEvent {
	return ConnectedEvent{
		Message:   "SSE connection established",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// registerSSERoutes registers the probe event stream.
func (s *Server) registerSSERoutes() {
	sse.Register(s.api, huma.Operation{
		OperationID: "probe-stream",
		Method:      http.MethodGet,
		Path:        "/api/probe/stream",
		Summary:     "Probe Event Stream",
		Description: "Real-time stream of per-card probe results, run summaries and sound card hotplug events",
		Tags:        []string{"events"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, map[string]any{
		"connected":     ConnectedEvent{},
		"device-probed": events.DeviceProbedEvent{},
		"probe-run":     events.ProbeRunEvent{},
		"card-hotplug":  events.CardHotplugEvent{},
	}, func(ctx context.Context, _ *struct{}, send sse.Sender) {
		eventCh := make(chan any, 32)

		unsubscribers := []func(){
			events.SubscribeToChannel[events.DeviceProbedEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.ProbeRunEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.CardHotplugEvent](s.eventBus, eventCh),
		}
		defer func() {
			for _, unsub := range unsubscribers {
				unsub()
			}
		}()

		if err := send.Data(connected()); err != nil {
			return
		}
		forward(ctx, eventCh, send)
	})
}

// forward relays events to the client until the request ends or a send fails.
func forward(ctx context.Context, eventCh <-chan any, send sse.Sender) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-eventCh:
			if err := send.Data(event); err != nil {
				return
			}
		}
	}
}
