package handler

import (
	"errors"
	"net/http"
	"strconv"

	"Blog_Community/internal/middleware"
	"Blog_Community/internal/pkg"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// writeError 按错误种类映射 HTTP 响应
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pkg.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"msg": pkg.Message(err)})
	case errors.Is(err, pkg.ErrInvalidOperation):
		c.JSON(http.StatusBadRequest, gin.H{"msg": pkg.Message(err)})
	case errors.Is(err, pkg.ErrUnauthenticated):
		middleware.LoginRedirect(c)
	case errors.Is(err, pkg.ErrForbidden):
		// 非作者回到只读详情页
		c.Redirect(http.StatusSeeOther, postDetailPath(c.Param("id")))
	default:
		pkg.Logger.Error("request failed",
			zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"msg": pkg.Message(err)})
	}
}

func postDetailPath(id string) string {
	return "/api/posts/" + id
}

func profilePath(username string) string {
	return "/api/profile/" + username
}

func userIDFromCtx(c *gin.Context) uint64 {
	return middleware.UserID(c)
}

// paramID 路径上的数字 id，非法时按不存在处理
func paramID(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusNotFound, gin.H{"msg": "not found"})
		return 0, false
	}
	return id, true
}
