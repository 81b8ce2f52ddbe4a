package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// ConnectMongo connects to MONGO_URI and verifies the connection with a ping.
// The returned database is the one named by MONGO_DB.
func ConnectMongo(ctx context.Context) (*mongo.Client, *mongo.Database, error) {
	cfg := LoadConfig()
	if cfg.MongoURI == "" {
		return nil, nil, errors.New("MONGO_URI is not set")
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	log.Info().Str("database", cfg.MongoDB).Msg("connected to mongodb")
	return client, client.Database(cfg.MongoDB), nil
}
