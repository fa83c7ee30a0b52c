package middleware

import (
	"net/http"
	"strings"

	"studiobook/models"
	"studiobook/utils"

	"github.com/gin-gonic/gin"
)

// OperatorContextKey is where the authenticated operator is stored.
const OperatorContextKey = "operator"

// OperatorAuthenticator resolves a bearer token to an operator.
type OperatorAuthenticator interface {
	Authenticate(token string) (*models.Operator, error)
}

// JWTAuthAdminMiddleware guards the operator dashboard.
func JWTAuthAdminMiddleware(auth OperatorAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			utils.JSONError(c, http.StatusUnauthorized, models.CodeUnauthorized, "Missing or invalid Authorization header")
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		op, err := auth.Authenticate(tokenString)
		if err != nil || !op.IsOperator() {
			utils.JSONError(c, http.StatusUnauthorized, models.CodeUnauthorized, "Unauthorized admin access")
			return
		}

		c.Set(OperatorContextKey, op)
		c.Next()
	}
}

// OperatorFrom returns the operator set by JWTAuthAdminMiddleware, or nil.
func OperatorFrom(c *gin.Context) *models.Operator {
	if v, ok := c.Get(OperatorContextKey); ok {
		if op, ok := v.(*models.Operator); ok {
			return op
		}
	}
	return nil
}
