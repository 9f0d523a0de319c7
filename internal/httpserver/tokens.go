// internal/httpserver/tokens.go
//
// Session tokens for the /hurdle endpoints.
// Responsibilities:
//   - Sign and verify HS256 JWTs carrying the session ID ("sid").
//   - Set the HttpOnly token cookie; read Bearer header or cookie.
//   - requireSession middleware that injects the session ID into the context.

package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const defaultCookieName = "hurdle_token"

// TokenConfig configures session tokens.
type TokenConfig struct {
	Secret     string
	TTL        time.Duration
	CookieName string
	Secure     bool
}

var errNoToken = errors.New("missing session token")

// sessionClaims binds a token to one live session.
type sessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

type tokenIssuer struct {
	cfg TokenConfig
	now func() time.Time
}

func newTokenIssuer(cfg TokenConfig) *tokenIssuer {
	if cfg.Secret == "" {
		cfg.Secret = "dev_secret_change_me"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.CookieName == "" {
		cfg.CookieName = defaultCookieName
	}
	return &tokenIssuer{cfg: cfg, now: time.Now}
}

// sign creates an HS256 token for sessionID.
func (t *tokenIssuer) sign(sessionID string) (string, time.Time, error) {
	now := t.now()
	exp := now.Add(t.cfg.TTL)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	ss, err := tok.SignedString([]byte(t.cfg.Secret))
	return ss, exp, err
}

// parse validates a token and returns its session ID.
func (t *tokenIssuer) parse(raw string) (string, error) {
	var claims sessionClaims
	tok, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
		return []byte(t.cfg.Secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return "", err
	}
	if !tok.Valid || claims.SessionID == "" {
		return "", jwt.ErrTokenInvalidClaims
	}
	return claims.SessionID, nil
}

// setCookie writes the token cookie with appropriate security attributes.
func (t *tokenIssuer) setCookie(w http.ResponseWriter, token string, exp time.Time) {
	sameSite := http.SameSiteLaxMode
	if t.cfg.Secure {
		sameSite = http.SameSiteNoneMode
	}
	http.SetCookie(w, &http.Cookie{
		Name:     t.cfg.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   t.cfg.Secure,
		SameSite: sameSite,
		Expires:  exp,
	})
}

// bearerOrCookie extracts a token from the Authorization header or the cookie.
func (t *tokenIssuer) bearerOrCookie(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(t.cfg.CookieName); err == nil {
		return c.Value
	}
	return ""
}

// ---------------------------- auth middleware ------------------------------

type ctxSessionKey struct{}

// requireSession enforces a valid token and injects the session ID into the context.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := s.tokens.bearerOrCookie(r)
		if raw == "" {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		id, err := s.tokens.parse(raw)
		if err != nil {
			s.log.Debug().Err(err).Msg("reject session token")
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		ctx := context.WithValue(r.Context(), ctxSessionKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionID(r *http.Request) (string, error) {
	id, _ := r.Context().Value(ctxSessionKey{}).(string)
	if id == "" {
		return "", errNoToken
	}
	return id, nil
}
