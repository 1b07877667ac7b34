package notify

import (
	"becoming_backend/internal/repository"
	"context"
	"time"

	"go.uber.org/zap"
)

// GenerationRecorder 记录每次生成尝试
type GenerationRecorder interface {
	Record(ctx context.Context, entry *repository.GenerationLog)
}

type NopRecorder struct{}

func (NopRecorder) Record(context.Context, *repository.GenerationLog) {}

// MongoRecorder 写入 MongoDB 审计集合，写入失败只记录日志
type MongoRecorder struct {
	repo    *repository.GenerationLogRepository
	log     *zap.Logger
	timeout time.Duration
}

func NewMongoRecorder(repo *repository.GenerationLogRepository, log *zap.Logger) *MongoRecorder {
	return &MongoRecorder{repo: repo, log: log, timeout: 3 * time.Second}
}

func (r *MongoRecorder) Record(ctx context.Context, entry *repository.GenerationLog) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()

	if err := r.repo.Insert(ctx, entry); err != nil {
		r.log.Warn("Failed to record generation",
			zap.String("run_id", entry.RunID),
			zap.Uint("user_id", entry.UserID),
			zap.Error(err))
	}
}
