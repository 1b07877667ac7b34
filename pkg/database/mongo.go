package database

import (
	"becoming_backend/internal/config"
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// InitMongo URI 为空时返回 nil，生成审计记录随之关闭
func InitMongo(cfg *config.MongoConfig) (*mongo.Client, error) {
	if cfg.URI == "" {
		return nil, nil
	}

	clientOptions := options.Client().ApplyURI(cfg.URI)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	if err = client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	log.Println("MongoDB connection established")
	return client, nil
}
