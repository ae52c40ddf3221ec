package myvault

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "useradmin:vault:"

type redisVault struct {
	client *redis.Client
}

// NewRedisVault keeps the token slots in Redis, for deployments that already
// hold their session state there.
func NewRedisVault(addr string, password string, db int) (TokenVault, func(), error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &redisVault{
			client: client,
		}, func() {
			client.Close()
		}, nil
}

func (v *redisVault) Get(c context.Context, key string) (string, bool, error) {
	value, err := v.client.Get(c, keyPrefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("error fetching token %s: %s", key, err)
	}
	if value == "" {
		return "", false, nil
	}

	return value, true, nil
}

func (v *redisVault) Put(c context.Context, key string, value string) error {
	err := v.client.Set(c, keyPrefix+key, value, 0).Err()
	if err != nil {
		return fmt.Errorf("error storing token %s: %s", key, err)
	}

	return nil
}

func (v *redisVault) Remove(c context.Context, key string) error {
	err := v.client.Del(c, keyPrefix+key).Err()
	if err != nil {
		return fmt.Errorf("error removing token %s: %s", key, err)
	}

	return nil
}
