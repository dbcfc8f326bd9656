package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/BruksfildServices01/consult-scheduler/internal/audit"
	"github.com/BruksfildServices01/consult-scheduler/internal/config"
	"github.com/BruksfildServices01/consult-scheduler/internal/httperr"
	"github.com/BruksfildServices01/consult-scheduler/internal/models"
)

const (
	ContextUserID   = "userID"
	ContextUserRole = "userRole"
)

const authRequired = "Authentication required"

// RoleResolver looks up the stored role of tokens that carry none.
type RoleResolver interface {
	GetUserRole(ctx context.Context, userID uuid.UUID) (string, error)
}

func AuthMiddleware(cfg *config.Config, roles RoleResolver, rec audit.Recorder) gin.HandlerFunc {
	reject := func(c *gin.Context, code string) {
		if rec != nil {
			rec.Record(audit.Event{
				Action:     "authentication",
				EntityType: "request",
				EntityID:   c.Request.URL.Path,
				Metadata: map[string]any{
					"status": "unauthorized",
					"reason": code,
				},
			}.WithOrigin(Origin(c)))
		}
		httperr.Unauthorized(c, code, authRequired)
	}

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			reject(c, "missing_authorization_header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			reject(c, "invalid_authorization_header")
			return
		}

		token, err := jwt.Parse(
			strings.TrimSpace(parts[1]),
			func(token *jwt.Token) (interface{}, error) {
				return []byte(cfg.JWTSecret), nil
			},
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		)
		if err != nil || !token.Valid {
			reject(c, "invalid_token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			reject(c, "invalid_token_claims")
			return
		}

		sub, _ := claims["sub"].(string)
		userID, err := uuid.Parse(sub)
		if err != nil {
			reject(c, "invalid_token_payload")
			return
		}

		role, _ := claims["role"].(string)
		if role == "" {
			role = models.RoleStudent
			if roles != nil {
				if stored, err := roles.GetUserRole(c.Request.Context(), userID); err == nil {
					role = stored
				}
			}
		}

		c.Set(ContextUserID, userID)
		c.Set(ContextUserRole, role)

		c.Next()
	}
}

// RequireRole lets through only the listed roles. It must run after AuthMiddleware.
func RequireRole(allowed ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := UserRole(c)
		for _, r := range allowed {
			if r == role {
				c.Next()
				return
			}
		}
		httperr.Write(c, http.StatusForbidden, "forbidden", "You are not allowed to access this resource.")
	}
}

func UserID(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(ContextUserID); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}

func UserRole(c *gin.Context) string {
	return c.GetString(ContextUserRole)
}

func Origin(c *gin.Context) audit.Origin {
	return audit.Origin{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}
