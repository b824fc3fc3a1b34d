package store

import (
	"context"
	"log"
	"time"

	"booking_service/domain"
	"booking_service/errors"

	"github.com/go-redis/redis"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const sessionKeyPrefix = "session:"

type SessionRedisCache struct {
	client *redis.Client
	tracer trace.Tracer
}

func NewSessionRedisCache(client *redis.Client, tracer trace.Tracer) domain.SessionCache {
	return &SessionRedisCache{
		client: client,
		tracer: tracer,
	}
}

func (cache *SessionRedisCache) PostSession(ctx context.Context, sessionID, userID string, lifespan time.Duration) error {
	_, span := cache.tracer.Start(ctx, "SessionRedisCache.PostSession")
	defer span.End()

	result := cache.client.Set(sessionKeyPrefix+sessionID, userID, lifespan)
	if result.Err() != nil {
		span.SetStatus(codes.Error, "Error posting session")
		log.Printf("redis set error: %s", result.Err())
		return result.Err()
	}
	return nil
}

func (cache *SessionRedisCache) GetSession(ctx context.Context, sessionID string) (string, error) {
	_, span := cache.tracer.Start(ctx, "SessionRedisCache.GetSession")
	defer span.End()

	userID, err := cache.client.Get(sessionKeyPrefix + sessionID).Result()
	if err != nil {
		if err == redis.Nil {
			return "", errors.ErrNotFound
		}
		span.SetStatus(codes.Error, "Error getting session")
		log.Println(err)
		return "", err
	}
	return userID, nil
}

func (cache *SessionRedisCache) DelSession(ctx context.Context, sessionID string) error {
	_, span := cache.tracer.Start(ctx, "SessionRedisCache.DelSession")
	defer span.End()

	result := cache.client.Del(sessionKeyPrefix + sessionID)
	if result.Err() != nil {
		span.SetStatus(codes.Error, "Error deleting session")
		log.Println(result.Err())
		return result.Err()
	}
	return nil
}
