package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	stdhttp "net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/vovakirdan/translachat-server/internal/auth"
	"github.com/vovakirdan/translachat-server/internal/core"
	"github.com/vovakirdan/translachat-server/internal/proto"
	"github.com/vovakirdan/translachat-server/internal/utils"
)

// WSOptions tunes the WebSocket endpoint.
type WSOptions struct {
	// AuthRequired rejects upgrades without a valid token.
	AuthRequired bool
	// OriginPatterns are host patterns accepted for cross-origin upgrades; "*" accepts any.
	OriginPatterns []string
	// ReadLimit caps the size of one inbound frame in bytes.
	ReadLimit int64
	// ClientBuffer is the outbound queue length per connection.
	ClientBuffer int
	// RateLimitPerMinute caps chat and typing frames per connection; 0 disables it.
	RateLimitPerMinute int
}

// WSHandler upgrades HTTP connections and bridges them to core.Client.
type WSHandler struct {
	hub  *core.Hub
	auth *auth.Service
	opts WSOptions
	log  *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler. authService may be nil, which disables
// token authentication.
func NewWSHandler(hub *core.Hub, authService *auth.Service, opts WSOptions, logger *zerolog.Logger) stdhttp.Handler {
	return &WSHandler{hub: hub, auth: authService, opts: opts, log: logger}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	identity, err := h.authenticate(r)
	if err != nil {
		h.log.Debug().Err(err).Msg("ws upgrade rejected")
		stdhttp.Error(w, "unauthorized", stdhttp.StatusUnauthorized)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns:     h.opts.OriginPatterns,
		InsecureSkipVerify: lo.Contains(h.opts.OriginPatterns, "*"),
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")
	if h.opts.ReadLimit > 0 {
		conn.SetReadLimit(h.opts.ReadLimit)
	}

	client := core.NewClient(utils.NewConnID(), identity, h.opts.ClientBuffer)
	if err := h.hub.RegisterClient(client); err != nil {
		h.log.Error().Err(err).Str("conn_id", client.ID).Msg("register client")
		conn.Close(websocket.StatusInternalError, "register failed")
		return
	}
	defer h.hub.UnregisterClient(client)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, conn, client)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, client)
	}()

	err = <-errCh
	cancel() // stop the other goroutine
	<-errCh

	status := websocket.StatusNormalClosure
	reason := "closing"
	if err != nil && !errors.Is(err, context.Canceled) {
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if s := websocket.CloseStatus(err); s != -1 {
			status = s
		}
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			err = nil
		}
		if err != nil {
			if status == websocket.StatusNormalClosure {
				status = websocket.StatusInternalError
			}
			reason = err.Error()
			h.log.Warn().Err(err).Str("conn_id", client.ID).Msg("ws connection closed with error")
		}
	}

	conn.Close(status, reason)
}

// authenticate returns the verified identity, nil for anonymous connections, or an error
// when a token is present but invalid or when authentication is mandatory.
func (h *WSHandler) authenticate(r *stdhttp.Request) (*core.Identity, error) {
	token := bearerToken(r)
	if token == "" || h.auth == nil {
		if h.opts.AuthRequired {
			return nil, auth.ErrInvalidToken
		}
		return nil, nil
	}
	claims, err := h.auth.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	return &core.Identity{
		UserID:            claims.UserID,
		DisplayName:       claims.Name,
		PreferredLanguage: claims.Language,
	}, nil
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, client *core.Client) error {
	limiter := newRateLimiter(h.opts.RateLimitPerMinute)
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}

		var inbound proto.Inbound
		if err := json.Unmarshal(data, &inbound); err != nil {
			h.log.Debug().Err(err).Str("conn_id", client.ID).Msg("non-json frame")
			if err := h.writeError(ctx, conn, core.ErrCodeInvalidMessage, "invalid json"); err != nil {
				return err
			}
			continue
		}

		if rateLimited(inbound.Type) && !limiter.allow() {
			if err := h.writeError(ctx, conn, core.ErrCodeRateLimited, "too many messages"); err != nil {
				return err
			}
			continue
		}

		cmd, protoErr, err := inboundToCommand(client, inbound)
		if err != nil {
			h.log.Debug().Err(err).Str("conn_id", client.ID).Str("type", inbound.Type).Msg("frame dropped")
			continue
		}
		if protoErr != nil {
			if err := h.writeError(ctx, conn, protoErr.Code, protoErr.Msg); err != nil {
				return err
			}
			continue
		}
		h.hub.Handle(ctx, client, cmd)
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, client *core.Client) error {
	for {
		select {
		case event, ok := <-client.Events:
			if !ok {
				return nil
			}
			if err := wsjson.Write(ctx, conn, outboundFromEvent(event)); err != nil {
				h.log.Error().Err(err).Str("conn_id", client.ID).Msg("write ws event")
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (h *WSHandler) writeError(ctx context.Context, conn *websocket.Conn, code, msg string) error {
	return wsjson.Write(ctx, conn, proto.Outbound{
		Type:  proto.OutboundTypeError,
		Error: &proto.Error{Code: code, Msg: msg},
	})
}

// rateLimited reports whether frames of typ count against the per-connection limit.
// stopTyping is never limited so a throttled client cannot leave a stale indicator behind.
func rateLimited(typ string) bool {
	return typ == proto.InboundTypeSendMessage || typ == proto.InboundTypeTyping
}
