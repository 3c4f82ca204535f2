package rates

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"
)

// InitRedis connects the optional rate cache. Returns nil (cache disabled)
// when addr is empty or the server is unreachable.
func InitRedis(addr string) *redis.Client {
	if addr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   0,
	})

	if _, err := client.Ping(context.Background()).Result(); err != nil {
		log.Printf("Warning: Failed to connect to Redis, rate caching disabled: %v", err)
		return nil
	}
	log.Println("✅ Connected to Redis")
	return client
}
