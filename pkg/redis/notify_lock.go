package redis

import (
	"context"
	"time"

	rd "github.com/redis/go-redis/v9"
)

// luaNotifyOnce takes a SETNX lock so one event id is handled exactly once
// across redeliveries and competing consumers.
const luaNotifyOnce = `
local lockKey = KEYS[1]
local ttlSec = tonumber(ARGV[1])

if redis.call('SETNX', lockKey, '1') == 1 then
  redis.call('EXPIRE', lockKey, ttlSec)
  return 1
end
return 0
`

// NotifyOnce reports whether this call won the right to handle eventID:
// - first handler gets true
// - every later call within the TTL gets false
func NotifyOnce(ctx context.Context, rdb *rd.Client, eventID string, ttl time.Duration) (bool, error) {
	lockKey := NotifyLockKey(eventID)
	ttlSec := int64(ttl / time.Second)
	if ttlSec <= 0 {
		ttlSec = 1
	}

	n, err := rdb.Eval(ctx, luaNotifyOnce, []string{lockKey}, ttlSec).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
