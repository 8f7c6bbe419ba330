// Package redis opens [github.com/redis/go-redis/v9] clients with startup retries and
// exposes a health check and a shutdown hook for them.
//
//	client, err := redis.Open(ctx, os.Getenv("REDIS_URL"), redis.WithPoolSize(20))
//	if err != nil {
//		return err
//	}
//	checks := health.Checks{"redis": redis.Healthcheck(client)}
package redis
