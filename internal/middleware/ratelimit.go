package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	rd "github.com/redis/go-redis/v9"

	rediskey "marketplace/pkg/redis"
)

// luaRateLimit: Redis sliding-window limiter (atomic).
// KEYS[1]=limiter key, ARGV[1]=now, ARGV[2]=window start, ARGV[3]=window
// seconds, ARGV[4]=member, ARGV[5]=limit.
// Returns the in-window request count, or -1 when over the limit.
const luaRateLimit = `
local key = KEYS[1]
local now = tonumber(ARGV[1])
local windowStart = tonumber(ARGV[2])
local windowSec = tonumber(ARGV[3])
local member = ARGV[4]

redis.call('ZREMRANGEBYSCORE', key, '0', windowStart)

local count = redis.call('ZCARD', key)

if count < tonumber(ARGV[5]) then
  redis.call('ZADD', key, now, member)
  redis.call('EXPIRE', key, windowSec)
  return count + 1
else
  return -1
end
`

// RedisRateLimit limits reservation creation per buyer. The buyer id comes
// from the identity header; when it is absent the limiter degrades to the
// client IP. Redis failures fail open so the limiter can never take the
// marketplace down with it.
func RedisRateLimit(rdb *rd.Client, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		var key string
		if userID, err := strconv.ParseInt(c.GetHeader("X-User-ID"), 10, 64); err == nil && userID > 0 {
			key = rediskey.RateLimitUserKey(userID)
		} else {
			key = rediskey.RateLimitIPKey(c.ClientIP())
		}

		now := time.Now().Unix()
		windowSec := int64(window.Seconds())
		windowStart := now - windowSec
		member := fmt.Sprintf("%d-%d", now, time.Now().UnixNano())

		res, err := rdb.Eval(c.Request.Context(), luaRateLimit, []string{key},
			now, windowStart, windowSec, member, limit).Int()

		if err != nil {
			// fail open
			c.Next()
			return
		}

		if res < 0 {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code": 429,
				"msg":  "too many requests, slow down",
			})
			return
		}
		c.Next()
	}
}
