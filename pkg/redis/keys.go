package redis

import "fmt"

// NotifyLockKey marks whether a notification event id was already handled.
func NotifyLockKey(eventID string) string {
	return fmt.Sprintf("marketplace:notify:handled:%s", eventID)
}

// RateLimitUserKey is the sliding-window limiter key for one buyer.
func RateLimitUserKey(userID int64) string {
	return fmt.Sprintf("marketplace:rate_limit:user:%d", userID)
}

// RateLimitIPKey is the limiter fallback key when no buyer id is known.
func RateLimitIPKey(ip string) string {
	return fmt.Sprintf("marketplace:rate_limit:ip:%s", ip)
}
