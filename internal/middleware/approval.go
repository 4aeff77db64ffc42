package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/harinimohanakrishnan-coder/noticeboard-freshly-posted/internal/models"
	"github.com/harinimohanakrishnan-coder/noticeboard-freshly-posted/internal/service"
	appErrors "github.com/harinimohanakrishnan-coder/noticeboard-freshly-posted/pkg/errors"
	"github.com/harinimohanakrishnan-coder/noticeboard-freshly-posted/pkg/response"
)

// RequireApproved gates dashboard routes behind admin approval. The status is
// resolved from the store on every request so that a rejection locks the
// account out immediately, without waiting for token expiry.
func RequireApproved(identity *service.IdentityService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := claimsFrom(c)
		if claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		resolved := identity.Resolve(c.Request.Context(), claims.UserID)
		if resolved.AccountStatus != models.StatusApproved {
			response.Error(c, appErrors.Clone(appErrors.ErrAccountNotApproved, "account is not approved for dashboard access"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin gates the approval panel behind the admin role.
func RequireAdmin(identity *service.IdentityService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := claimsFrom(c)
		if claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		resolved := identity.Resolve(c.Request.Context(), claims.UserID)
		if !resolved.IsAdmin {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "admin role required"))
			c.Abort()
			return
		}
		c.Next()
	}
}

func claimsFrom(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}
