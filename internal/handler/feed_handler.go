package handler

import (
	"net/http"

	"Blog_Community/internal/service"

	"github.com/gin-gonic/gin"
)

type FeedHandler struct {
	svc *service.FeedService
}

func NewFeedHandler(svc *service.FeedService) *FeedHandler {
	return &FeedHandler{svc: svc}
}

// Index 全站帖子
func (h *FeedHandler) Index(c *gin.Context) {
	feed, err := h.svc.Index(c.Request.Context(), c.Query("page"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, feed)
}

func (h *FeedHandler) Group(c *gin.Context) {
	feed, err := h.svc.GroupFeed(c.Request.Context(), c.Param("slug"), c.Query("page"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, feed)
}

func (h *FeedHandler) Profile(c *gin.Context) {
	feed, err := h.svc.ProfileFeed(c.Request.Context(), userIDFromCtx(c), c.Param("username"), c.Query("page"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, feed)
}

// Follow 关注作者的帖子
func (h *FeedHandler) Follow(c *gin.Context) {
	feed, err := h.svc.FollowFeed(c.Request.Context(), userIDFromCtx(c), c.Query("page"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, feed)
}

func (h *FeedHandler) Detail(c *gin.Context) {
	postID, ok := paramID(c, "id")
	if !ok {
		return
	}
	detail, err := h.svc.PostDetail(c.Request.Context(), userIDFromCtx(c), postID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}
