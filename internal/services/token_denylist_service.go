package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"promptgallery-backend/internal/database"
	"time"

	"github.com/go-redis/redis/v8"
)

const denylistPrefix = "denylist:"

func denylistKey(tokenString string) string {
	sum := sha256.Sum256([]byte(tokenString))
	return denylistPrefix + hex.EncodeToString(sum[:])
}

// AddToDenylist revokes a token until it would have expired anyway.
func AddToDenylist(ctx context.Context, tokenString string, expiration time.Duration) error {
	if database.RedisClient == nil {
		return errors.New("redis is not connected")
	}
	if expiration <= 0 {
		return nil
	}
	return database.RedisClient.Set(ctx, denylistKey(tokenString), 1, expiration).Err()
}

func IsDenylisted(ctx context.Context, tokenString string) (bool, error) {
	if database.RedisClient == nil {
		return false, nil
	}
	val, err := database.RedisClient.Get(ctx, denylistKey(tokenString)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	return val != "", nil
}
