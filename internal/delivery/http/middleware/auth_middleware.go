package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"hospital-scheduling/internal/domain/entity"
	"hospital-scheduling/pkg/jwt"
	"hospital-scheduling/pkg/response"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RevokedTokenKey is the Redis key the identity service sets when it revokes a token
func RevokedTokenKey(tokenID string) string {
	return fmt.Sprintf("revoked_token:%s", tokenID)
}

type AuthMiddleware struct {
	jwtService  *jwt.JWTService
	redisClient *redis.Client
	log         *logrus.Logger
}

// NewAuthMiddleware creates the bearer-token middleware. redisClient may be nil,
// in which case revocation is not checked.
func NewAuthMiddleware(jwtService *jwt.JWTService, redisClient *redis.Client, log *logrus.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService:  jwtService,
		redisClient: redisClient,
		log:         log,
	}
}

func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Unauthorized(w, "Authorization header is required")
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(w, "Invalid authorization header format")
			return
		}

		tokenString := parts[1]

		claims, err := m.jwtService.ValidateToken(tokenString)
		if err != nil {
			response.Unauthorized(w, "Invalid or expired token")
			return
		}

		if claims.TokenType != jwt.AccessToken {
			response.Unauthorized(w, "Invalid token type")
			return
		}

		if m.redisClient != nil && claims.TokenID != "" {
			revoked, err := m.redisClient.Exists(r.Context(), RevokedTokenKey(claims.TokenID)).Result()
			if err != nil {
				m.log.Errorf("Failed to check token revocation for %s: %+v", claims.Subject, err)
				response.ServiceUnavailable(w, "Failed to validate token")
				return
			}
			if revoked > 0 {
				response.Unauthorized(w, "Token has been revoked")
				return
			}
		}

		ctx := entity.ContextWithActor(r.Context(), entity.Actor{
			Subject: claims.Subject,
			RoleID:  claims.RoleID,
			Token:   tokenString,
		})

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRoleIDFromContext extracts the caller's role from context
func GetRoleIDFromContext(ctx context.Context) (int, bool) {
	actor := entity.ActorFromContext(ctx)
	if actor.RoleID == 0 {
		return 0, false
	}
	return actor.RoleID, true
}

// GetSubjectFromContext extracts the caller's user reference from context
func GetSubjectFromContext(ctx context.Context) (string, bool) {
	actor := entity.ActorFromContext(ctx)
	if actor.Token == "" {
		return "", false
	}
	return actor.Subject, true
}
