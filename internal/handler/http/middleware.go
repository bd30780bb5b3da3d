package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/orlengos-star/Your-Day-MiniApp/internal/auth"
	"github.com/orlengos-star/Your-Day-MiniApp/internal/domain"
	"github.com/orlengos-star/Your-Day-MiniApp/internal/service"
	apperrors "github.com/orlengos-star/Your-Day-MiniApp/pkg/errors"
	"github.com/orlengos-star/Your-Day-MiniApp/pkg/httputil"
	"github.com/orlengos-star/Your-Day-MiniApp/pkg/logger"
)

// Header names for the two identity transports.
const (
	initDataHeader = "X-Telegram-Init-Data"
	devUserHeader  = "X-Dev-User"
)

type contextKey string

const actorKey contextKey = "actor"

// ActorFromContext returns the authenticated user stored by Authenticate.
func ActorFromContext(ctx context.Context) (*domain.User, bool) {
	actor, ok := ctx.Value(actorKey).(*domain.User)
	return actor, ok
}

// Authenticator verifies the Telegram init data header on every request and
// resolves it to a stored user. In development only, the X-Dev-User header
// bypasses signature verification with a pre-decoded identity object.
type Authenticator struct {
	identity    *service.IdentityService
	botToken    string
	environment string
	logger      *slog.Logger
}

// NewAuthenticator creates the authentication middleware.
func NewAuthenticator(identity *service.IdentityService, botToken, environment string, logger *slog.Logger) *Authenticator {
	return &Authenticator{
		identity:    identity,
		botToken:    botToken,
		environment: environment,
		logger:      logger,
	}
}

// Middleware authenticates the request and stores the actor in the context.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tgUser, err := a.verify(r)
		if err != nil {
			httputil.WriteError(w, r, err, a.logger)
			return
		}

		actor, err := a.identity.Resolve(r.Context(), tgUser)
		if err != nil {
			httputil.WriteError(w, r, err, a.logger)
			return
		}

		ctx := context.WithValue(r.Context(), actorKey, actor)
		ctx = logger.WithUserID(ctx, strconv.FormatInt(actor.ID, 10))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *Authenticator) verify(r *http.Request) (*auth.TelegramUser, error) {
	if a.environment == "development" {
		if raw := r.Header.Get(devUserHeader); raw != "" {
			var u auth.TelegramUser
			if err := json.Unmarshal([]byte(raw), &u); err != nil || u.ID == 0 {
				return nil, apperrors.Unauthorized("invalid dev user header")
			}
			return &u, nil
		}
	}

	initData := r.Header.Get(initDataHeader)
	if initData == "" {
		return nil, apperrors.Unauthorized("missing init data")
	}
	return auth.Verify(initData, a.botToken, time.Now())
}

// CORS sets the cross-origin headers for the Mini App frontend.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	allowAll := false
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && (allowAll || allowed[origin]) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+initDataHeader+", "+devUserHeader)
				w.Header().Set("Access-Control-Max-Age", "86400")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ContentTypeJSON sets the response content type for API routes.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}
