package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"Blog_Community/internal/pkg"
	"Blog_Community/internal/service"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	svc      *service.PostService
	comments *service.CommentService
}

func NewPostHandler(svc *service.PostService, comments *service.CommentService) *PostHandler {
	return &PostHandler{svc: svc, comments: comments}
}

// postInput 解析 multipart 表单：text、group、image
func postInput(c *gin.Context) (service.PostInput, error) {
	in := service.PostInput{Text: c.PostForm("text")}
	if raw := strings.TrimSpace(c.PostForm("group")); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return in, pkg.Invalid("group: select a valid choice")
		}
		in.GroupID = &id
	}
	file, err := c.FormFile("image")
	switch {
	case err == nil:
		in.Image = file
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		return in, pkg.Invalid("image: upload a valid image")
	}
	return in, nil
}

// CreatePost 发帖
func (h *PostHandler) CreatePost(c *gin.Context) {
	in, err := postInput(c)
	if err != nil {
		writeError(c, err)
		return
	}
	post, err := h.svc.CreatePost(c.Request.Context(), userIDFromCtx(c), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": post.ID})
}

// EditPost 成功后回到详情页
func (h *PostHandler) EditPost(c *gin.Context) {
	postID, ok := paramID(c, "id")
	if !ok {
		return
	}
	in, err := postInput(c)
	if err != nil {
		writeError(c, err)
		return
	}
	if _, err = h.svc.EditPost(c.Request.Context(), userIDFromCtx(c), postID, in); err != nil {
		writeError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, postDetailPath(c.Param("id")))
}

// EditForm 编辑页，返回当前帖子
func (h *PostHandler) EditForm(c *gin.Context) {
	postID, ok := paramID(c, "id")
	if !ok {
		return
	}
	post, err := h.svc.CheckAuthor(c.Request.Context(), userIDFromCtx(c), postID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"post": post, "is_edit": true})
}

func (h *PostHandler) AddComment(c *gin.Context) {
	postID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if _, err := h.comments.AddComment(c.Request.Context(), userIDFromCtx(c), postID, c.PostForm("text")); err != nil {
		writeError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, postDetailPath(c.Param("id")))
}
