package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

// GenerationLog 一次内容生成尝试的审计记录
type GenerationLog struct {
	UserID    uint      `bson:"user_id"`
	RunID     string    `bson:"run_id,omitempty"`
	Scope     string    `bson:"scope"`
	Tone      string    `bson:"tone"`
	Model     string    `bson:"model"`
	Category  string    `bson:"category"`
	Text      string    `bson:"text"`
	Fallback  bool      `bson:"fallback"`
	Reason    string    `bson:"reason,omitempty"`
	LatencyMS int64     `bson:"latency_ms"`
	CreatedAt time.Time `bson:"created_at"`
}

// GenerationLogRepository 把生成记录写入 MongoDB
type GenerationLogRepository struct {
	collection *mongo.Collection
}

func NewGenerationLogRepository(db *mongo.Database, collection string) *GenerationLogRepository {
	return &GenerationLogRepository{collection: db.Collection(collection)}
}

func (r *GenerationLogRepository) Insert(ctx context.Context, entry *GenerationLog) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	_, err := r.collection.InsertOne(ctx, entry)
	return err
}
