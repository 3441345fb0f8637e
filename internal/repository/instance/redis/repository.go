package redis

import (
	"time"

	"github.com/redis/go-redis/v9"
)

// hSetIfExistsScript sets the ARGV field/value pairs on KEYS[1] only when
// the hash exists.
var hSetIfExistsScript = redis.NewScript(`
	if redis.call('EXISTS', KEYS[1]) == 0 then
		return 0
	end
	for i = 1, #ARGV, 2 do
		redis.call('HSET', KEYS[1], ARGV[i], ARGV[i + 1])
	end
	return 1
`)

type repo struct {
	rc             *redis.Client
	expireDuration time.Duration
}

func NewRepo(rc *redis.Client, expireDuration time.Duration) *repo {
	return &repo{
		rc:             rc,
		expireDuration: expireDuration,
	}
}
