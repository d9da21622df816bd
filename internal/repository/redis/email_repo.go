package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultEmailCodeTTL = 5 * time.Minute
	CodeResetPrefix     = "email:code:reset"

	// 两阶段键：邮件发出之前是 pending，发出之后才转为 confirmed
	PendingSuffix   = "pending"
	ConfirmedSuffix = "confirmed"
)

var (
	ErrEmailCodeNotFound   = errors.New("email code not found or expired")
	ErrCodePendingFailed   = errors.New("code pending failed")
	ErrCodeConfirmedFailed = errors.New("code confirmed failed")
)

// promoteScript 原子执行：取值 + 写入目标 + 设置 TTL + 删除源
var promoteScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if not val then
  return 0
end
redis.call("SET", KEYS[2], val, "PX", ARGV[1])
redis.call("DEL", KEYS[1])
return 1
`)

type EmailRepository struct {
	RDB *redis.Client
}

func resetKey(suffix, email string) string {
	return fmt.Sprintf("%s:%s:%s", CodeResetPrefix, suffix, email)
}

// SaveResetPending 写入重置验证码的 pending 键
func (e *EmailRepository) SaveResetPending(ctx context.Context, email, code string) error {
	if err := e.RDB.Set(ctx, resetKey(PendingSuffix, email), code, DefaultEmailCodeTTL).Err(); err != nil {
		return ErrCodePendingFailed
	}
	return nil
}

// ConfirmReset 邮件发送成功后 pending 转为 confirmed，TTL 重新计算
func (e *EmailRepository) ConfirmReset(ctx context.Context, email string) error {
	px := int64(DefaultEmailCodeTTL / time.Millisecond)
	ok, err := promoteScript.Run(ctx, e.RDB,
		[]string{resetKey(PendingSuffix, email), resetKey(ConfirmedSuffix, email)}, px).Int()
	if err != nil || ok != 1 {
		return ErrCodeConfirmedFailed
	}
	return nil
}

// DeleteResetPending 删除 pending 键（幂等）
func (e *EmailRepository) DeleteResetPending(ctx context.Context, email string) error {
	return e.RDB.Del(ctx, resetKey(PendingSuffix, email)).Err()
}

// GetResetCode 取 confirmed 的验证码
func (e *EmailRepository) GetResetCode(ctx context.Context, email string) (string, error) {
	val, err := e.RDB.Get(ctx, resetKey(ConfirmedSuffix, email)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrEmailCodeNotFound
	}
	return val, err
}

// DeleteResetCode 验证码一次性使用
func (e *EmailRepository) DeleteResetCode(ctx context.Context, email string) error {
	return e.RDB.Del(ctx, resetKey(ConfirmedSuffix, email)).Err()
}
