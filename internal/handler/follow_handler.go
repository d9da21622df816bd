package handler

import (
	"errors"
	"net/http"
	"strconv"

	"Blog_Community/internal/pkg"
	"Blog_Community/internal/service"

	"github.com/gin-gonic/gin"
)

type FollowHandler struct {
	svc *service.FollowService
}

func NewFollowHandler(svc *service.FollowService) *FollowHandler {
	return &FollowHandler{svc: svc}
}

// Follow 关注后回到作者主页；关注自己直接跳回，不改数据
func (h *FollowHandler) Follow(c *gin.Context) {
	username := c.Param("username")
	_, err := h.svc.FollowByUsername(c.Request.Context(), userIDFromCtx(c), username)
	if err != nil && !errors.Is(err, pkg.ErrInvalidOperation) {
		writeError(c, err)
		return
	}
	c.Redirect(http.StatusFound, profilePath(username))
}

func (h *FollowHandler) Unfollow(c *gin.Context) {
	username := c.Param("username")
	if _, err := h.svc.UnfollowByUsername(c.Request.Context(), userIDFromCtx(c), username); err != nil {
		writeError(c, err)
		return
	}
	c.Redirect(http.StatusFound, profilePath(username))
}

// listQuery user_id 缺省时为当前用户
func listQuery(c *gin.Context) (userID, cursor uint64, limit int) {
	userID, _ = strconv.ParseUint(c.Query("user_id"), 10, 64)
	if userID == 0 {
		userID = userIDFromCtx(c)
	}
	cursor, _ = strconv.ParseUint(c.Query("cursor"), 10, 64)
	limit, _ = strconv.Atoi(c.Query("limit"))
	return userID, cursor, limit
}

// ListFollowings 获取关注列表
func (h *FollowHandler) ListFollowings(c *gin.Context) {
	userID, cursor, limit := listQuery(c)
	rows, next, err := h.svc.ListFollowings(c.Request.Context(), userID, cursor, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": rows, "next_cursor": next})
}

// ListFollowers 获取粉丝列表
func (h *FollowHandler) ListFollowers(c *gin.Context) {
	userID, cursor, limit := listQuery(c)
	rows, next, err := h.svc.ListFollowers(c.Request.Context(), userID, cursor, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": rows, "next_cursor": next})
}
