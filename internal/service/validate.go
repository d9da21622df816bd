package service

import (
	"strings"
	"unicode/utf8"

	"Blog_Community/internal/pkg"
)

const (
	MinPostTextLen    = 10
	MaxCommentTextLen = 1000

	// forbiddenText 帖子和评论里都不允许出现
	forbiddenText = "кг/ам"
)

// normalizeText 表单提交的文本先去掉首尾空白再校验
func normalizeText(text string) string {
	return strings.TrimSpace(text)
}

// ValidatePostText 长度按字符计算
func ValidatePostText(text string) error {
	if text == "" {
		return pkg.Invalid("text: this field is required")
	}
	if utf8.RuneCountInString(text) < MinPostTextLen {
		return pkg.Invalid("text: post is too short, at least %d characters", MinPostTextLen)
	}
	if strings.Contains(text, forbiddenText) {
		return pkg.Invalid("text: too rude")
	}
	return nil
}

func ValidateCommentText(text string) error {
	if text == "" {
		return pkg.Invalid("text: this field is required")
	}
	if utf8.RuneCountInString(text) > MaxCommentTextLen {
		return pkg.Invalid("text: comment is too long, at most %d characters", MaxCommentTextLen)
	}
	if strings.Contains(text, forbiddenText) {
		return pkg.Invalid("text: too rude")
	}
	return nil
}
