package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	iauth "github.com/wikibeerdia/backend/internal/auth"
	"github.com/wikibeerdia/backend/pkg/errors"
	"github.com/wikibeerdia/backend/pkg/response"
)

const (
	CtxIsAuthKey = "isAuth"
	CtxClaimsKey = "authClaims"
	CtxUserIDKey = "userID"
)

// Identity attempts to extract a bearer session token from the Authorization
// header and annotates the request as authenticated or not. It never rejects:
// missing, malformed, tampered, or expired credentials all pass through as
// unauthenticated, and downstream handlers decide whether identity is required.
func Identity(jwt *iauth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(CtxIsAuthKey, false)

		authz := c.GetHeader("Authorization")
		if len(authz) < 8 || !strings.EqualFold(authz[:7], "Bearer ") {
			c.Next()
			return
		}

		claims, err := jwt.VerifySession(strings.TrimSpace(authz[7:]))
		if err != nil {
			c.Next()
			return
		}

		c.Set(CtxIsAuthKey, true)
		c.Set(CtxClaimsKey, claims)
		c.Set(CtxUserIDKey, claims.UserID)

		c.Next()
	}
}

// RequireAuth aborts with 401 when the Identity gate did not authenticate the
// request. It performs no authorization beyond "authenticated or not".
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(CtxIsAuthKey) {
			c.Header("WWW-Authenticate", "Bearer")
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		c.Next()
	}
}
