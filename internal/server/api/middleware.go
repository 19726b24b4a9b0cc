package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/common"
	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/server/auth"
	"github.com/go-chi/chi/v5/middleware"
)

type ctxKey string

const (
	userIDKey ctxKey = "userID"
	emailKey  ctxKey = "email"
)

// accessTokenMiddleware authenticates the bearer token and stores the
// caller's id (and e-mail, when the token carries one) in the context.
func (s *Server) accessTokenMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(common.AuthorizationHeaderName)
		accessToken, ok := strings.CutPrefix(header, common.BearerPrefix)
		if !ok || strings.TrimSpace(accessToken) == "" {
			writeError(w, http.StatusUnauthorized, "missing token")
			return
		}

		claims, err := auth.ParseToken(strings.TrimSpace(accessToken), s.jwtSecret)
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, common.ErrTokenExpired) {
				msg = "token expired"
			}
			s.logger.Debug(r.Context(), "token rejected", "error", err)
			writeError(w, http.StatusUnauthorized, msg)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, claims.Subject)
		if claims.Email != "" {
			ctx = context.WithValue(ctx, emailKey, claims.Email)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserIDFromContext returns the authenticated user id, or "" outside an
// authenticated request.
func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

func emailFromContext(ctx context.Context) *string {
	if e, ok := ctx.Value(emailKey).(string); ok {
		return &e
	}
	return nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
