// Package redis connects the go-redis client used by the distributed
// rate-limit store, with startup retries and a health check closure for
// readiness probes.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	store, err := ratelimit.NewRedisStore(client)
package redis
