package middleware

import (
	"strings"

	"github.com/Divya20-05/Learning-Intelligence-Tool/internal/config"
	"github.com/Divya20-05/Learning-Intelligence-Tool/internal/util"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware 校验服务令牌。鉴权未启用时直接放行,
// 便于内网部署零配置起步。
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.Auth.Enabled {
			c.Next()
			return
		}

		tokenString := ""
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		}

		if tokenString == "" {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := util.ParseJWT(tokenString, cfg.JWT.Secret)
		if err != nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		c.Set("claims", claims)
		c.Next()
	}
}
