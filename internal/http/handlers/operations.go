package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"reelgen/internal/domain"
	"reelgen/internal/poller"
)

const streamWriteWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// streamEvent is one websocket frame of an operation stream.
type streamEvent struct {
	Type   string                   `json:"type"`
	Result *domain.GenerationResult `json:"result,omitempty"`
	Error  *errorBody               `json:"error,omitempty"`
}

// operationTarget resolves the checker and handle named by the request.
func (a *App) operationTarget(w http.ResponseWriter, r *http.Request) (domain.StatusChecker, string, bool) {
	provider := strings.ToLower(chi.URLParam(r, "provider"))
	handle := strings.TrimSpace(r.URL.Query().Get("handle"))
	if handle == "" {
		a.error(w, http.StatusBadRequest, "invalid_request", "handle: required")
		return nil, "", false
	}
	if a.Providers == nil {
		a.fail(w, r, domain.ErrUnknownProvider)
		return nil, "", false
	}
	creds, err := a.credentials(r)
	if err != nil {
		a.fail(w, r, err)
		return nil, "", false
	}
	checker, err := a.Providers.StatusChecker(provider, creds)
	if err != nil {
		a.fail(w, r, err)
		return nil, "", false
	}
	return checker, handle, true
}

// OperationStatus performs one status check.
func (a *App) OperationStatus(w http.ResponseWriter, r *http.Request) {
	checker, handle, ok := a.operationTarget(w, r)
	if !ok {
		return
	}
	res, err := checker.CheckStatus(r.Context(), handle)
	if errors.Is(err, domain.ErrTerminalGeneration) {
		res = domain.GenerationResult{Status: domain.StatusFailed, Operation: handle, Reason: domain.FailureReason(err)}
		err = nil
	}
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, res)
}

// OperationStream upgrades to a websocket and pushes every poll result until
// the operation ends or the client goes away.
func (a *App) OperationStream(w http.ResponseWriter, r *http.Request) {
	checker, handle, ok := a.operationTarget(w, r)
	if !ok {
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.Logger.Warn().Err(err).Msg("operation stream: upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	send := func(ev streamEvent) {
		_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
		if err := conn.WriteJSON(ev); err != nil {
			cancel()
		}
	}
	opts := append([]poller.Option{
		poller.WithLogger(a.Logger),
		poller.WithProgress(func(res domain.GenerationResult) {
			send(streamEvent{Type: "progress", Result: &res})
		}),
	}, a.PollOptions...)

	err = poller.New(checker, opts...).Poll(ctx, handle, func(res domain.GenerationResult) {
		send(streamEvent{Type: "terminal", Result: &res})
	})
	switch {
	case err == nil:
	case ctx.Err() != nil:
		return
	default:
		send(streamEvent{Type: "error", Error: &errorBody{Code: "provider_auth", Message: domain.FailureReason(err)}})
	}
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(streamWriteWait))
}
