package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/checkout-survey/models"
	"github.com/vnkhanh/checkout-survey/services"
)

const (
	CtxAdmin = "admin"
	CtxShop  = "shop"
)

// AuthJWT kiểm tra Authorization: Bearer <token>, nạp admin và shop vào context.
func AuthJWT(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Missing or invalid Authorization header"})
			return
		}
		rawToken := strings.TrimSpace(authHeader[7:])

		admin, err := auth.Authenticate(c.Request.Context(), rawToken)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
			return
		}

		c.Set(CtxAdmin, *admin)
		c.Set(CtxShop, admin.ShopDomain)
		c.Next()
	}
}

// ShopFrom trả về domain shop mà AuthJWT đã gắn vào context.
func ShopFrom(c *gin.Context) string {
	return c.GetString(CtxShop)
}

func AdminFrom(c *gin.Context) (models.AdminUser, bool) {
	v, ok := c.Get(CtxAdmin)
	if !ok {
		return models.AdminUser{}, false
	}
	u, ok := v.(models.AdminUser)
	return u, ok
}
