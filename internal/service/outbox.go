package service

import (
	"context"
	"time"

	"Blog_Community/internal/model"
	"Blog_Community/internal/pkg"
	"Blog_Community/internal/repository/mysql"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Sender 投递一条 outbox 事件
type Sender func(ctx context.Context, ob *model.SocialOutbox) error

// OutboxRelayer 定时把关注事件从 outbox 表投递出去
type OutboxRelayer struct {
	repo      *mysql.OutboxRepository
	batchSize int
	interval  time.Duration
	sender    Sender
}

func NewOutboxRelayer(db *gorm.DB, sender Sender) *OutboxRelayer {
	return &OutboxRelayer{
		repo:      &mysql.OutboxRepository{DB: db},
		batchSize: 200,
		interval:  time.Second,
		sender:    sender,
	}
}

// Run 阻塞直到 ctx 结束
func (r *OutboxRelayer) Run(ctx context.Context) {
	t := time.NewTicker(r.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.DrainOnce(ctx)
		}
	}
}

// DrainOnce 投递一批，返回成功条数
func (r *OutboxRelayer) DrainOnce(ctx context.Context) int {
	rows, err := r.repo.ListPending(ctx, r.batchSize)
	if err != nil {
		pkg.Logger.Error("outbox query failed", zap.Error(err))
		return 0
	}
	sent := 0
	for i := range rows {
		ob := rows[i]
		if err = r.sender(ctx, &ob); err != nil {
			pkg.Logger.Warn("outbox send failed", zap.Uint64("id", ob.ID), zap.Error(err))
			if err = r.repo.MarkFailed(ctx, ob.ID); err != nil {
				pkg.Logger.Error("outbox mark failed", zap.Uint64("id", ob.ID), zap.Error(err))
			}
			continue
		}
		if err = r.repo.MarkSent(ctx, ob.ID); err != nil {
			pkg.Logger.Error("outbox mark sent", zap.Uint64("id", ob.ID), zap.Error(err))
			continue
		}
		sent++
	}
	return sent
}

// KafkaSender 按关注者 id 分区，保证同一用户的事件有序
func KafkaSender(p *pkg.KafkaProducer) Sender {
	return func(ctx context.Context, ob *model.SocialOutbox) error {
		return p.Send(ctx, pkg.MakeKeyFromID(ob.Follower), []byte(ob.Payload))
	}
}

// LogSender 没有配置 Kafka 时只打日志
func LogSender(_ context.Context, ob *model.SocialOutbox) error {
	pkg.Logger.Info("outbox event",
		zap.String("type", ob.EventType),
		zap.Uint64("follower", ob.Follower),
		zap.Uint64("followee", ob.Followee),
		zap.String("payload", ob.Payload))
	return nil
}
