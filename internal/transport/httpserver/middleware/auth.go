package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"family-drive-go/internal/config"
	"family-drive-go/internal/domain/identity"
	"family-drive-go/pkg/logger"
)

var (
	errInvalidToken      = errors.New("invalid token")
	errAuthNotConfigured = errors.New("auth not configured")
)

// UserResolver turns an authenticated actor into a user with family facts.
type UserResolver interface {
	Resolve(ctx context.Context, actor identity.Actor) (*identity.User, error)
}

type tokenVerifier interface {
	Verify(ctx context.Context, token string) (identity.Actor, error)
}

type Auth struct {
	verifier tokenVerifier
	resolver UserResolver
	skipAuth bool
	mockUser identity.Actor
	log      logger.Logger
}

type contextKey int

const userKey contextKey = iota

func NewAuth(cfg config.Config, resolver UserResolver, log logger.Logger) *Auth {
	var verifier tokenVerifier
	switch cfg.Auth.Mode {
	case config.AuthModeJWT:
		verifier = newJWTVerifier(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer)
	default:
		verifier = newSupabaseVerifier(cfg.Supabase)
	}

	return &Auth{
		verifier: verifier,
		resolver: resolver,
		skipAuth: cfg.Auth.SkipAuth,
		mockUser: identity.Actor{
			ID:        strings.TrimSpace(cfg.Auth.MockUserID),
			Email:     strings.TrimSpace(cfg.Auth.MockUserEmail),
			Name:      strings.TrimSpace(cfg.Auth.MockUserName),
			AvatarURL: strings.TrimSpace(cfg.Auth.MockUserAvatar),
		},
		log: log,
	}
}

func (a *Auth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, err := a.authenticate(r)
		if err != nil {
			if errors.Is(err, errAuthNotConfigured) {
				a.log.Critical("auth: not configured", "err", err)
				writeError(w, http.StatusInternalServerError, "auth_not_configured", "auth not configured")
				return
			}
			a.log.Debug("auth: rejected request", "err", err, "path", r.URL.Path)
			unauthorized(w)
			return
		}

		user, err := a.resolver.Resolve(r.Context(), actor)
		if err != nil {
			if errors.Is(err, identity.ErrNotAuthenticated) {
				unauthorized(w)
				return
			}
			a.log.InternalError("auth: resolve user failed", err, "user_id", actor.ID)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
			return
		}

		ctx := WithUser(r.Context(), *user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *Auth) authenticate(r *http.Request) (identity.Actor, error) {
	if a.skipAuth {
		if a.mockUser.ID == "" {
			return identity.Actor{}, errAuthNotConfigured
		}
		return a.mockUser, nil
	}

	token, ok := bearerToken(r.Header.Get("Authorization"))
	if !ok {
		return identity.Actor{}, errInvalidToken
	}
	return a.verifier.Verify(r.Context(), token)
}

func bearerToken(value string) (string, bool) {
	parts := strings.Fields(value)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func unauthorized(w http.ResponseWriter) {
	writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
}

func WithUser(ctx context.Context, user identity.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

func UserFromContext(ctx context.Context) (identity.User, bool) {
	user, ok := ctx.Value(userKey).(identity.User)
	if !ok || user.ID == "" {
		return identity.User{}, false
	}
	return user, true
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

func stringFromMap(values map[string]interface{}, key string) string {
	if values == nil {
		return ""
	}
	value, ok := values[key]
	if !ok {
		return ""
	}
	parsed, ok := value.(string)
	if !ok {
		return ""
	}
	return parsed
}
