package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"cerbyl-session-service/internal/app"
	"cerbyl-session-service/internal/domain"
	"cerbyl-session-service/internal/session"
	"github.com/gorilla/websocket"
)

// WSHandler runs interactive quiz sessions over a websocket: the client sends
// UI events (select, next, prev, jump, submit) and receives state snapshots,
// clock ticks, and finally the reconciled result.
type WSHandler struct {
	service  *app.SessionService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.SessionService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type selectPayload struct {
	Option int `json:"option"`
}

type jumpPayload struct {
	Index int `json:"index"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// ServeWS upgrades the request and drives one quiz session for its duration.
// A missing configuration slot ends the connection immediately with a
// no_configuration error so the client can redirect to quiz setup.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "missing userId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	active, err := h.service.Start(r.Context(), userID)
	if err != nil {
		code := ""
		if errors.Is(err, domain.ErrNoConfiguration) {
			code = "no_configuration"
		}
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Code: code, Message: err.Error()}})
		return
	}
	defer h.service.Close(userID)

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-active.Updates():
				if !ok {
					return
				}
				msg := updateMessage(update)
				select {
				case send <- msg:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	send <- outboundMessage[any]{Type: "state", Payload: active.View()}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}

		var view session.View
		var opErr error
		switch inbound.Type {
		case "select":
			var payload selectPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- errorMessage("", "invalid select payload")
				continue
			}
			view, opErr = active.Select(payload.Option)
		case "next":
			view, opErr = active.Next()
		case "prev":
			view, opErr = active.Prev()
		case "jump":
			var payload jumpPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- errorMessage("", "invalid jump payload")
				continue
			}
			view, opErr = active.Jump(payload.Index)
		case "submit":
			view, opErr = active.Submit()
		default:
			send <- errorMessage("", "unsupported message type")
			continue
		}
		if opErr != nil {
			send <- errorMessage("", opErr.Error())
			continue
		}
		send <- outboundMessage[any]{Type: "state", Payload: view}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

func updateMessage(update app.Update) outboundMessage[any] {
	switch update.Kind {
	case app.UpdateResult:
		return outboundMessage[any]{Type: "result", Payload: update.Outcome}
	default:
		return outboundMessage[any]{Type: "state", Payload: update.View}
	}
}

func errorMessage(code, message string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Code: code, Message: message}}
}
