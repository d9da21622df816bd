package service

import (
	"context"
	"errors"

	"Blog_Community/internal/pkg"
	"Blog_Community/internal/repository/mysql"
	"Blog_Community/internal/repository/redis"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type EmailService struct {
	cfg   pkg.SMTPConfig
	send  pkg.MailSender
	codes *redis.EmailRepository
	users *mysql.UserRepository
}

func NewEmailService(db *gorm.DB, codes *redis.EmailRepository, cfg pkg.SMTPConfig, send pkg.MailSender) *EmailService {
	if send == nil {
		send = pkg.SendEmail
	}
	return &EmailService{
		cfg:   cfg,
		send:  send,
		codes: codes,
		users: &mysql.UserRepository{DB: db},
	}
}

// SendResetCode 邮箱没有对应用户时静默返回，不暴露账号是否存在
func (s *EmailService) SendResetCode(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, pkg.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	code, err := pkg.RandDigits(6)
	if err != nil {
		return err
	}
	// 先写 pending，邮件发出后再转为 confirmed
	if err = s.codes.SaveResetPending(ctx, email, code); err != nil {
		return err
	}
	html := pkg.ResetCodeHTML(user.Username, code, redis.DefaultEmailCodeTTL)
	if err = s.send(s.cfg, email, "Password reset code", html); err != nil {
		_ = s.codes.DeleteResetPending(ctx, email)
		pkg.Logger.Error("send reset mail failed", zap.String("email", email), zap.Error(err))
		return err
	}
	if err = s.codes.ConfirmReset(ctx, email); err != nil {
		_ = s.codes.DeleteResetPending(ctx, email)
		return err
	}
	return nil
}

// VerifyResetCode 校验成功后删除验证码
func (s *EmailService) VerifyResetCode(ctx context.Context, email, code string) (bool, error) {
	val, err := s.codes.GetResetCode(ctx, email)
	if err != nil {
		return false, err
	}
	if val != code {
		return false, nil
	}
	if err = s.codes.DeleteResetCode(ctx, email); err != nil {
		return false, err
	}
	return true, nil
}
