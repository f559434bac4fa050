package http

import (
	"context"
	"encoding/json"
	"net/http"

	"diagnosis-quiz-service/internal/app"
	"diagnosis-quiz-service/internal/platform/logger"
	"github.com/gorilla/websocket"
)

// WSHandler plays a quiz over a websocket, one play per connection.
type WSHandler struct {
	plays    *app.PlayService
	log      *logger.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(plays *app.PlayService, log *logger.Logger) *WSHandler {
	return &WSHandler{
		plays: plays,
		log:   log,
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

type answerPayload struct {
	OptionIndex *int `json:"optionIndex"`
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request and starts a play of ?quizId, or resumes
// ?playId. Plays started by the connection are dropped when it closes.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	quizID := r.URL.Query().Get("quizId")
	playID := r.URL.Query().Get("playId")
	if quizID == "" && playID == "" {
		http.Error(w, "missing quizId or playId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	var view app.PlayView
	if playID != "" {
		view, err = h.plays.View(ctx, playID)
	} else {
		view, err = h.plays.Start(ctx, quizID)
		if err == nil {
			defer h.abandon(view.PlayID)
		}
	}
	if err != nil {
		_ = conn.WriteJSON(errorMessage(err.Error()))
		return
	}
	playID = view.PlayID

	out := newOutbox(conn, func(err error) {
		h.log.Warn("ws write error", "play_id", playID, "error", err)
	})
	defer out.close()

	if !out.push(viewMessage(view)) {
		return
	}
	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			return
		}
		if !out.push(h.reply(ctx, playID, inbound)) {
			return
		}
	}
}

func (h *WSHandler) reply(ctx context.Context, playID string, inbound inboundMessage) outboundMessage {
	switch inbound.Type {
	case "answer":
		var payload answerPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.OptionIndex == nil {
			return errorMessage("invalid answer payload")
		}
		view, err := h.plays.Answer(ctx, playID, *payload.OptionIndex)
		if err != nil {
			return errorMessage(err.Error())
		}
		return viewMessage(view)
	case "restart":
		view, err := h.plays.Restart(ctx, playID)
		if err != nil {
			return errorMessage(err.Error())
		}
		return viewMessage(view)
	default:
		return errorMessage("unsupported message type")
	}
}

type jsonWriter interface {
	WriteJSON(v interface{}) error
}

// outbox owns all writes to a connection. After a failed write, push
// reports false instead of blocking.
type outbox struct {
	send chan outboundMessage
	done chan struct{}
}

func newOutbox(w jsonWriter, onError func(error)) *outbox {
	o := &outbox{send: make(chan outboundMessage, 8), done: make(chan struct{})}
	go func() {
		defer close(o.done)
		for msg := range o.send {
			if err := w.WriteJSON(msg); err != nil {
				onError(err)
				return
			}
		}
	}()
	return o
}

func (o *outbox) push(msg outboundMessage) bool {
	select {
	case o.send <- msg:
		return true
	case <-o.done:
		return false
	}
}

// close flushes queued messages and waits for the writer to exit.
func (o *outbox) close() {
	close(o.send)
	<-o.done
}

func (h *WSHandler) abandon(playID string) {
	if err := h.plays.Abandon(context.Background(), playID); err != nil {
		h.log.Warn("abandon play", "play_id", playID, "error", err)
	}
}

func viewMessage(view app.PlayView) outboundMessage {
	if view.Completed {
		return outboundMessage{Type: "result", Payload: view}
	}
	return outboundMessage{Type: "question", Payload: view}
}

func errorMessage(msg string) outboundMessage {
	return outboundMessage{Type: "error", Payload: errorPayload{Message: msg}}
}
