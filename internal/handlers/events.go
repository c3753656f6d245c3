package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/YasNanNan2/FutariNote/internal/events"
	"github.com/YasNanNan2/FutariNote/internal/middleware"
)

type EventsHandler struct {
	hub *events.Hub
}

func NewEventsHandler(hub *events.Hub) *EventsHandler {
	return &EventsHandler{hub: hub}
}

// Stream pushes the caller's group events as Server-Sent Events until the
// client disconnects.
func (handler *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch, cancel := handler.hub.Subscribe(*user.GroupID)
	defer cancel()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			payload, err := json.Marshal(event)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, payload)
			flusher.Flush()
		}
	}
}
