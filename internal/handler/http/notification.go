package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/deskware/hr-backend-go/internal/domain/leave"
	"github.com/deskware/hr-backend-go/internal/pkg/events"
)

// NotificationHandler streams workflow events to clients.
type NotificationHandler interface {
	Stream(w http.ResponseWriter, r *http.Request)
	StreamAll(w http.ResponseWriter, r *http.Request)
}

type notificationHandlerImpl struct {
	hub *events.Hub
}

func NewNotificationHandler(hub *events.Hub) NotificationHandler {
	return &notificationHandlerImpl{hub: hub}
}

// Stream handles the SSE connection for the authenticated employee's own
// leave events.
func (h *notificationHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := employeeIDFromClaims(r)
	if !ok {
		http.Error(w, "Token carries no employee identity", http.StatusUnauthorized)
		return
	}

	ch, cleanup := h.hub.Subscribe(employeeID)
	defer cleanup()

	h.stream(w, r, employeeID, ch)
}

// StreamAll handles the SSE firehose of every workflow event. Admin only;
// the router gates it.
func (h *notificationHandlerImpl) StreamAll(w http.ResponseWriter, r *http.Request) {
	ch, cleanup := h.hub.SubscribeAll()
	defer cleanup()

	h.stream(w, r, "*", ch)
}

func (h *notificationHandlerImpl) stream(w http.ResponseWriter, r *http.Request, subject string, ch <-chan leave.Event) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\",\"subject\":\"%s\"}\n\n", subject)
	flusher.Flush()

	keepalive := time.NewTicker(30 * time.Second)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(event)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data)
			flusher.Flush()

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
