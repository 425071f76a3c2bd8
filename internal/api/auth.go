package api

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"go.uber.org/zap"

	"github.com/HendryAvila/knowgraph/internal/config"
)

var (
	errMissingCredentials = errors.New("missing credentials")
	errInvalidCredentials = errors.New("invalid credentials")
)

// Principal identifies an authenticated caller.
type Principal struct {
	Subject string `json:"subject"`
	Method  string `json:"method"` // api_key, jwt or basic
}

type principalKey struct{}

// PrincipalFrom returns the caller attached by the auth middleware.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// Claims are the JWT claims accepted by the API.
type Claims struct {
	jwt.RegisteredClaims
}

// Authenticator checks request credentials. With nothing configured every
// request passes.
type Authenticator struct {
	apiKeys    [][]byte
	jwtSecret  []byte
	jwtIssuer  string
	basicUsers map[string][]byte
	logger     *zap.Logger
}

// NewAuthenticator builds an Authenticator from cfg.
func NewAuthenticator(cfg config.AuthConfig, logger *zap.Logger) *Authenticator {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Authenticator{
		jwtIssuer:  cfg.JWTIssuer,
		basicUsers: make(map[string][]byte, len(cfg.BasicUsers)),
		logger:     logger,
	}
	for _, k := range cfg.APIKeys {
		if k = strings.TrimSpace(k); k != "" {
			a.apiKeys = append(a.apiKeys, []byte(k))
		}
	}
	if cfg.JWTSecret != "" {
		a.jwtSecret = []byte(cfg.JWTSecret)
	}
	for user, hash := range cfg.BasicUsers {
		a.basicUsers[user] = []byte(hash)
	}
	return a
}

// Enabled reports whether any credential is configured.
func (a *Authenticator) Enabled() bool {
	return len(a.apiKeys) > 0 || a.jwtSecret != nil || len(a.basicUsers) > 0
}

// Middleware rejects requests without valid credentials with 401.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	if !a.Enabled() {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, err := a.Authenticate(r)
		if err != nil {
			a.logger.Debug("authentication failed",
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
				zap.Error(err),
			)
			if len(a.basicUsers) > 0 {
				w.Header().Set("WWW-Authenticate", `Basic realm="knowgraph"`)
			}
			respondStatus(w, r, http.StatusUnauthorized, "UNAUTHORIZED", err.Error())
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), principalKey{}, p)))
	})
}

// Authenticate checks, in order, an X-API-Key header, a Bearer token and
// Basic credentials.
func (a *Authenticator) Authenticate(r *http.Request) (Principal, error) {
	if key := r.Header.Get("X-API-Key"); key != "" {
		return a.checkAPIKey(key)
	}

	authz := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(authz, "Bearer "); ok {
		return a.checkJWT(strings.TrimSpace(token))
	}
	if user, pass, ok := r.BasicAuth(); ok {
		return a.checkBasic(user, pass)
	}
	return Principal{}, errMissingCredentials
}

func (a *Authenticator) checkAPIKey(key string) (Principal, error) {
	for _, k := range a.apiKeys {
		if subtle.ConstantTimeCompare(k, []byte(key)) == 1 {
			return Principal{Subject: "api-key", Method: "api_key"}, nil
		}
	}
	return Principal{}, errInvalidCredentials
}

func (a *Authenticator) checkJWT(raw string) (Principal, error) {
	if a.jwtSecret == nil {
		return Principal{}, errInvalidCredentials
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if a.jwtIssuer != "" {
		opts = append(opts, jwt.WithIssuer(a.jwtIssuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return a.jwtSecret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Principal{}, fmt.Errorf("%w: token expired", errInvalidCredentials)
		}
		return Principal{}, fmt.Errorf("%w: %v", errInvalidCredentials, err)
	}
	if !token.Valid {
		return Principal{}, errInvalidCredentials
	}
	return Principal{Subject: claims.Subject, Method: "jwt"}, nil
}

func (a *Authenticator) checkBasic(user, pass string) (Principal, error) {
	hash, ok := a.basicUsers[user]
	if !ok {
		return Principal{}, errInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(pass)); err != nil {
		return Principal{}, errInvalidCredentials
	}
	return Principal{Subject: user, Method: "basic"}, nil
}
