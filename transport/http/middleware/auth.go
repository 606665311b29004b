package middleware

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"cafebook/config"
	"cafebook/infras/jwt"
	"cafebook/infras/otel"
	"cafebook/shared/constant"
	"cafebook/shared/failure"
	"cafebook/transport/http/response"
)

// Auth resolves the caller. APIKey must run before Auth.
type Auth interface {
	// APIKey marks requests carrying the configured X-API-Key as internal
	// and takes the caller from X-User-ID. A wrong key is refused.
	APIKey(next http.Handler) http.Handler
	// Auth requires a bearer token unless the request is internal.
	Auth(next http.Handler) http.Handler
	// Internal only admits requests marked by APIKey.
	Internal(next http.Handler) http.Handler
}

type authImpl struct {
	jwtService jwt.JWT
	otel       otel.Otel
	cfg        *config.Config
}

func NewAuthMiddleware(jwtService jwt.JWT, otel otel.Otel, cfg *config.Config) Auth {
	return &authImpl{
		jwtService: jwtService,
		otel:       otel,
		cfg:        cfg,
	}
}

func (m *authImpl) APIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		ctx := request.Context()
		_, scope := m.otel.NewScope(ctx, constant.OtelHandlerScopeName, "api_key.middleware")

		apiKey := request.Header.Get(constant.RequestHeaderAPIKey)

		if apiKey == "" {
			scope.SetAttribute("http.source", "client")
			scope.End()
			next.ServeHTTP(writer, request)

			return
		}

		scope.SetAttribute("http.source", "internal")

		if m.cfg.App.APIKey == "" || subtle.ConstantTimeCompare([]byte(apiKey), []byte(m.cfg.App.APIKey)) != 1 {
			err := failure.ForbiddenError

			response.WithError(writer, err)

			scope.TraceError(err)
			scope.End()

			return
		}

		ctx = context.WithValue(ctx, constant.ContextKeyInternal, true)

		if userID := request.Header.Get(constant.RequestHeaderUserID); userID != "" {
			ctx = context.WithValue(ctx, constant.ContextKeyUserID, userID)
			ctx = context.WithValue(ctx, constant.ContextKeyUserName, request.Header.Get(constant.RequestHeaderUserName))
		}

		scope.End()
		next.ServeHTTP(writer, request.WithContext(ctx))
	})
}

func (m *authImpl) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		ctx := request.Context()
		_, scope := m.otel.NewScope(ctx, constant.OtelHandlerScopeName, "auth.middleware")

		if internal, _ := ctx.Value(constant.ContextKeyInternal).(bool); internal {
			scope.End()
			next.ServeHTTP(writer, request)

			return
		}

		scope.SetAttributes(map[string]any{
			"middleware.type": "auth",
			"http.path":       request.URL.Path,
			"http.method":     request.Method,
		})

		tokenString, err := jwt.ExtractTokenFromHeader(request.Header.Get(constant.RequestHeaderAuthorization))
		if err != nil {
			err := failure.Unauthorized(err.Error())
			response.WithError(writer, err)

			scope.TraceError(err)
			scope.End()

			return
		}

		claims, err := m.jwtService.ValidateToken(tokenString)
		if err != nil {
			var message string

			switch {
			case errors.Is(err, jwt.ErrExpiredToken):
				message = "Token has expired"
			case errors.Is(err, jwt.ErrInvalidClaim):
				message = "Invalid token claims"
			default:
				message = "Invalid token"
			}

			log.Debug().Err(err).Msg("rejected bearer token")

			err := failure.Unauthorized(message)
			response.WithError(writer, err)

			scope.TraceError(err)
			scope.End()

			return
		}

		ctx = context.WithValue(ctx, constant.ContextKeyUserID, claims.UserID)
		ctx = context.WithValue(ctx, constant.ContextKeyUserName, claims.Name)
		ctx = context.WithValue(ctx, constant.ContextKeyTokenID, claims.TokenID)

		scope.End()

		next.ServeHTTP(writer, request.WithContext(ctx))
	})
}

func (m *authImpl) Internal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if internal, _ := request.Context().Value(constant.ContextKeyInternal).(bool); !internal {
			response.WithError(writer, failure.ForbiddenError)

			return
		}

		next.ServeHTTP(writer, request)
	})
}
