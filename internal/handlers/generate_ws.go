package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vancomm/wfc-server/internal/wfc"
)

// ConnectWS runs a generation and streams its events over a websocket.
// The last message has kind "done" and carries the stored generation.
func (h *GenerationHandler) ConnectWS(w http.ResponseWriter, r *http.Request) {
	req, status, err := h.prepare(r)
	if err != nil {
		sendError(w, h.logger, status, err)
		return
	}

	c, err := h.ws.Upgrader.Upgrade(w, r, nil) // headers sent here
	if err != nil {
		h.logger.Error("unable to upgrade", slog.Any("error", err))
		return
	}
	defer c.Close()

	var writeErr error
	send := func(v any) {
		if writeErr != nil {
			return
		}
		c.SetWriteDeadline(time.Now().Add(h.ws.WriteTimeout))
		writeErr = c.WriteJSON(v)
	}

	generation, err := h.run(r.Context(), req, func(e wfc.Event) {
		if e.Kind != wfc.EventDone {
			send(NewEventDTO(e))
		}
	})
	if err != nil {
		h.logger.Error("unable to run generation", slog.Any("error", err))
		send(EventDTO{Kind: "error", Pattern: -1, Error: "generation failed"})
	} else {
		send(EventDTO{
			Kind:       wfc.EventDone.String(),
			Pattern:    -1,
			Generation: NewGenerationDTO(generation),
		})
	}

	if writeErr != nil {
		if !websocket.IsCloseError(writeErr, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			h.logger.Warn("abnormal ws break", slog.Any("error", writeErr))
		}
		return
	}

	c.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(h.ws.WriteTimeout),
	)
}
