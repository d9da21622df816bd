package middleware

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"Blog_Community/internal/model"
	"Blog_Community/internal/pkg"
	"Blog_Community/internal/repository/redis"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	ContextUserIDKey = "user_id"
	ContextRoleKey   = "role"

	LoginPath = "/api/user/login"
)

// LoginRedirect 未登录时跳转登录页，next 带上原始地址
func LoginRedirect(c *gin.Context) {
	c.Redirect(http.StatusFound, LoginPath+"?next="+url.QueryEscape(c.Request.URL.RequestURI()))
	c.Abort()
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

// authenticate 校验 token 并要求与 redis 中最近一次登录的 token 一致
func authenticate(c *gin.Context, tokens *redis.TokenRepository) (*pkg.Claims, error) {
	tokenStr, ok := bearerToken(c)
	if !ok {
		return nil, pkg.ErrTokenInvalid
	}
	claims, err := pkg.ParseAccess(tokenStr)
	if err != nil {
		return nil, err
	}
	ctx := c.Request.Context()
	origin, err := tokens.GetUserToken(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if origin != tokenStr {
		return nil, pkg.ErrTokenInvalid
	}
	// 校验通过后更新过期时间
	if err = tokens.ExtendUserToken(ctx, claims.UserID); err != nil {
		return nil, err
	}
	return claims, nil
}

func AuthMiddleware(tokens *redis.TokenRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := authenticate(c, tokens)
		if err != nil {
			if errors.Is(err, redis.ErrRedisUnavailable) {
				pkg.Logger.Error("token store unavailable", zap.Error(err))
			}
			LoginRedirect(c)
			return
		}
		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextRoleKey, claims.Role)
		c.Next()
	}
}

// OptionalAuth 有合法 token 时注入用户，否则按匿名继续
func OptionalAuth(tokens *redis.TokenRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := bearerToken(c); ok {
			if claims, err := authenticate(c, tokens); err == nil {
				c.Set(ContextUserIDKey, claims.UserID)
				c.Set(ContextRoleKey, claims.Role)
			}
		}
		c.Next()
	}
}

// AdminOnly 需挂在 AuthMiddleware 之后
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetInt(ContextRoleKey) != model.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"msg": "admin only"})
			return
		}
		c.Next()
	}
}

func UserID(c *gin.Context) uint64 {
	if v, ok := c.Get(ContextUserIDKey); ok {
		if id, ok2 := v.(uint64); ok2 {
			return id
		}
	}
	return 0
}
