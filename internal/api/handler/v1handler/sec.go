package v1handler

import (
	"context"
	"crypto/rsa"
	"fmt"
	"net/http"
	"strings"

	"phishguard/internal/config"
	"phishguard/pkg/domain"
	"phishguard/pkg/logger"
	"phishguard/pkg/serrors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CtxKey is a string-based type used for storing values in request contexts.
type CtxKey string

// ClientIDKey is the context key of the authenticated domain.ClientID.
const ClientIDKey CtxKey = "ClientID"

// SecHandlerOptions configure bearer authentication.
type SecHandlerOptions struct {
	// PublicKey is the PEM encoded RSA public key. Empty disables auth.
	PublicKey string
}

// NewSecHandlerOptions builds options from the application config.
func NewSecHandlerOptions(cfg *config.Config) *SecHandlerOptions {
	return &SecHandlerOptions{PublicKey: cfg.JWT.PublicKey}
}

// SecHandler verifies RS256 bearer tokens whose subject is a client UUID.
type SecHandler struct {
	key *rsa.PublicKey
}

// NewSecHandler parses the public key. A nil or empty configuration yields a
// handler that lets every request through.
func NewSecHandler(opts *SecHandlerOptions) (*SecHandler, error) {
	if opts == nil || opts.PublicKey == "" {
		return &SecHandler{}, nil
	}

	key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(opts.PublicKey))
	if err != nil {
		return nil, fmt.Errorf("could not parse RSA public key: %w", err)
	}

	return &SecHandler{key: key}, nil
}

// Enabled reports whether tokens are required.
func (s *SecHandler) Enabled() bool { return s.key != nil }

// HandleBearerAuth validates token and stores the client id in the returned
// context.
func (s *SecHandler) HandleBearerAuth(ctx context.Context, token string) (context.Context, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return ctx, serrors.Wrap(serrors.ErrUnauthorized, err, "invalid token")
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, serrors.Wrap(serrors.ErrUnauthorized, err, "invalid token subject")
	}
	ctx = context.WithValue(ctx, ClientIDKey, domain.ClientID(id))
	ctx = logger.WithFields(ctx, zap.String("clientID", id.String()))

	return ctx, nil
}

// Middleware rejects requests without a valid token when auth is enabled.
// The token is read from the Authorization header, or from the access_token
// query parameter for websocket upgrades, which browsers cannot add headers to.
func (s *SecHandler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.Enabled() {
			next.ServeHTTP(w, r)

			return
		}

		token := bearerToken(r)
		if token == "" {
			WriteError(w, &ErrorResponse{
				StatusCode: http.StatusUnauthorized,
				Response:   Error{Code: serrors.ErrUnauthorized.Error(), Message: "missing bearer token"},
			})

			return
		}
		ctx, err := s.HandleBearerAuth(r.Context(), token)
		if err != nil {
			logger.Debug(r.Context(), "rejected token", zap.Error(err))
			WriteError(w, &ErrorResponse{
				StatusCode: http.StatusUnauthorized,
				Response:   Error{Code: serrors.ErrUnauthorized.Error(), Message: "unauthorized"},
			})

			return
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if t, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(t)
		}

		return ""
	}

	return r.URL.Query().Get("access_token")
}

// GetClientIDFromContext returns the authenticated client, if any.
func GetClientIDFromContext(ctx context.Context) (domain.ClientID, bool) {
	id, ok := ctx.Value(ClientIDKey).(domain.ClientID)

	return id, ok
}
