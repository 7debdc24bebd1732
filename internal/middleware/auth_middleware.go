package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"

	"traka/internal/apperrors"
	"traka/internal/repositories/interfaces"
	"traka/internal/utils"
)

// TokenVerifier checks a Firebase ID token. The Firebase auth client
// satisfies it directly.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*firebaseauth.Token, error)
}

// AuthRequired validates the bearer ID token and sets "uid" on the context.
func AuthRequired(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.UnauthorizedResponse(c)
			c.Abort()
			return
		}

		idToken := strings.TrimPrefix(authHeader, "Bearer ")
		if idToken == authHeader || idToken == "" {
			utils.UnauthorizedResponse(c)
			c.Abort()
			return
		}

		token, err := verifier.VerifyIDToken(c.Request.Context(), idToken)
		if err != nil {
			utils.UnauthorizedResponse(c)
			c.Abort()
			return
		}

		c.Set("uid", token.UID)
		c.Next()
	}
}

// AdminRequired ensures the authenticated user carries the admin role. Must
// run after AuthRequired.
func AdminRequired(users interfaces.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := CurrentUID(c)
		if uid == "" {
			utils.UnauthorizedResponse(c)
			c.Abort()
			return
		}

		user, err := users.GetByUID(c.Request.Context(), uid)
		if err != nil {
			if errors.Is(err, interfaces.ErrNotFound) {
				utils.ForbiddenResponse(c, "Hanya admin yang dapat broadcast.")
			} else {
				utils.ErrorResponse(c, http.StatusInternalServerError, string(apperrors.CodeInternal), "Terjadi kesalahan. Coba lagi.")
			}
			c.Abort()
			return
		}
		if !user.IsAdmin() {
			utils.ForbiddenResponse(c, "Hanya admin yang dapat broadcast.")
			c.Abort()
			return
		}

		c.Next()
	}
}

// CurrentUID returns the uid set by AuthRequired, empty when unauthenticated.
func CurrentUID(c *gin.Context) string {
	uid, exists := c.Get("uid")
	if !exists {
		return ""
	}
	s, ok := uid.(string)
	if !ok {
		return ""
	}
	return s
}
