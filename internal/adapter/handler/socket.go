package handler

import (
	"context"
	stdErrors "errors"
	"net/http"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sentrymeet/sentrymeet/errors"
	dto "github.com/sentrymeet/sentrymeet/internal/adapter/dto/transcription"
	"github.com/sentrymeet/sentrymeet/internal/infrastructure/ws"
	"github.com/sentrymeet/sentrymeet/internal/usecase/transcription"
	"github.com/sentrymeet/sentrymeet/pkg/jwt"
)

// Socket upgrades connections onto the transcription channel.
type Socket struct {
	hub      *ws.Hub
	sessions *transcription.Service
	tokens   *jwt.Manager
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// NewSocket creates the socket handler. tokens may be nil; identity is then
// whatever the client self-reports in transcription:start.
func NewSocket(hub *ws.Hub, sessions *transcription.Service, tokens *jwt.Manager, allowedOrigins []string, logger *zap.Logger) *Socket {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}
	return &Socket{
		hub:      hub,
		sessions: sessions,
		tokens:   tokens,
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true // non-browser clients
				}
				_, ok := allowed[origin]
				return ok
			},
		},
	}
}

// Serve handles GET /ws.
func (h *Socket) Serve(c echo.Context) error {
	var identity *jwt.Claims
	if h.tokens != nil {
		if token := c.QueryParam("token"); token != "" {
			claims, err := h.tokens.ValidateAccessToken(token)
			if err != nil {
				h.logger.Warn("rejected socket token", zap.Error(err))
				if stdErrors.Is(err, jwtv5.ErrTokenExpired) {
					return HandleError(h.logger, c, errors.ErrTokenExpired())
				}
				return HandleError(h.logger, c, errors.ErrInvalidToken())
			}
			identity = claims
		}
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		h.logger.Debug("socket upgrade failed", zap.Error(err))
		return nil
	}

	client := ws.NewClient(conn, h.hub, h.logger)
	var sess ws.Session = h.sessions.NewSession(client)
	if identity != nil {
		sess = &authenticatedSession{Session: sess, claims: identity}
	}
	client.Bind(sess)

	h.logger.Info("socket connected", zap.String("remote", conn.RemoteAddr().String()))
	client.Run(c.Request().Context())
	return nil
}

// authenticatedSession pins the session identity to the verified token,
// overriding whatever the client self-reports.
type authenticatedSession struct {
	ws.Session
	claims *jwt.Claims
}

func (s *authenticatedSession) Start(ctx context.Context, req dto.StartRequest) {
	req.User = dto.UserRef{ID: s.claims.UserID.String(), Name: s.claims.Name}
	s.Session.Start(ctx, req)
}
