package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/vancomm/wfc-server/internal/config"
)

type CtxKey int

const (
	CtxClientClaims CtxKey = iota
)

func ClientClaims(ctx context.Context) (*config.ClientClaims, bool) {
	claims, ok := ctx.Value(CtxClientClaims).(*config.ClientClaims)
	return claims, ok
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="wfc"`)
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// Auth rejects requests without a valid bearer token and stores the
// client claims in the request context.
func Auth(logger *slog.Logger, j *config.JWT) Middleware {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				unauthorized(w, "missing bearer token")
				return
			}
			claims, err := j.ParseClientClaims(token)
			if err != nil {
				logger.Debug("rejected token", slog.Any("error", err))
				unauthorized(w, "invalid token")
				return
			}
			ctx := context.WithValue(r.Context(), CtxClientClaims, claims)
			h.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
