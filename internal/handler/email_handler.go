package handler

import (
	"net/http"

	"Blog_Community/internal/service"

	"github.com/gin-gonic/gin"
)

type EmailHandler struct {
	svc *service.EmailService
}

type SendCodeReq struct {
	Email string `json:"email" binding:"required,email"`
}

func NewEmailHandler(svc *service.EmailService) *EmailHandler {
	return &EmailHandler{svc: svc}
}

// SendResetCode 无论邮箱是否注册都返回成功
func (h *EmailHandler) SendResetCode(c *gin.Context) {
	var req SendCodeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}

	if err := h.svc.SendResetCode(c.Request.Context(), req.Email); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"msg": "send code failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "send code successfully"})
}
