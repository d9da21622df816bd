package handler

import (
	"net/http"
	"regexp"
	"strconv"

	"Blog_Community/internal/cache"
	"Blog_Community/internal/pkg"
	"Blog_Community/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

// RegisterValidators 注册自定义校验 tag，启动时调用一次
func RegisterValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
			return slugPattern.MatchString(fl.Field().String())
		})
	}
}

type GroupHandler struct {
	svc   *service.GroupService
	cache cache.PageCache
}

type GroupCreateReq struct {
	Slug        string `json:"slug" binding:"required,max=200,slug"`
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description"`
}

func NewGroupHandler(svc *service.GroupService, pageCache cache.PageCache) *GroupHandler {
	return &GroupHandler{svc: svc, cache: pageCache}
}

func (h *GroupHandler) Create(c *gin.Context) {
	var req GroupCreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}

	group, err := h.svc.CreateGroup(c.Request.Context(), req.Slug, req.Title, req.Description)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":          group.ID,
		"slug":        group.Slug,
		"title":       group.Title,
		"description": group.Description,
	})
}

func (h *GroupHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("size"))
	list, err := h.svc.ListGroups(c.Request.Context(), page, size)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

// Delete 帖子保留，只解除与社区的关联
func (h *GroupHandler) Delete(c *gin.Context) {
	if err := h.svc.DeleteGroup(c.Request.Context(), c.Param("slug")); err != nil {
		writeError(c, err)
		return
	}
	h.ClearCache(c)
}

// ClearCache 手动清空页面缓存
func (h *GroupHandler) ClearCache(c *gin.Context) {
	if h.cache != nil {
		if err := h.cache.Invalidate(c.Request.Context()); err != nil {
			pkg.Logger.Error("page cache invalidate failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "cache clear failed"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}
