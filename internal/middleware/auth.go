package middleware

import (
	"becoming_backend/internal/util"
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthMiddleware 校验 Bearer JWT 并把 claims 放入上下文
func AuthMiddleware(secret string, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := util.ParseJWT(tokenString, secret)
		if err != nil {
			log.Debug("JWT rejected", zap.String("path", c.Request.URL.Path), zap.Error(err))
			util.Unauthorized(c)
			c.Abort()
			return
		}

		c.Set("user", claims)
		c.Next()
	}
}

type UserActivityRepo interface {
	TouchSeen(ctx context.Context, userID uint) error
}

// ActivityMiddleware 异步记录用户最近活跃时间
func ActivityMiddleware(repo UserActivityRepo, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims := util.GetUserFromContext(c); claims != nil {
			userID := claims.UserID
			go func() {
				if err := repo.TouchSeen(context.Background(), userID); err != nil {
					log.Warn("Failed to record activity", zap.Uint("user_id", userID), zap.Error(err))
				}
			}()
		}
		c.Next()
	}
}
