package pkg

import (
	"errors"
	"fmt"
)

// 业务错误分类，handler 按分类映射 HTTP 响应
var (
	ErrNotFound         = errors.New("not found")
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrForbidden        = errors.New("forbidden")
)

// AppError 携带分类和面向用户的提示信息
type AppError struct {
	Kind    error
	Message string
}

func (e *AppError) Error() string {
	if e.Message == "" {
		return e.Kind.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Kind }

func newAppError(kind error, format string, args ...any) *AppError {
	return &AppError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) error {
	return newAppError(ErrNotFound, format, args...)
}

func Invalid(format string, args ...any) error {
	return newAppError(ErrInvalidOperation, format, args...)
}

func Forbidden(format string, args ...any) error {
	return newAppError(ErrForbidden, format, args...)
}

func Unauthenticated(format string, args ...any) error {
	return newAppError(ErrUnauthenticated, format, args...)
}

// Message 取出可以直接展示给用户的信息
func Message(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Error()
	}
	return "internal server error"
}
