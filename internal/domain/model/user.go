package model

import (
	"strings"
	"time"
)

// User is a domain entity representing a Telegram user known to the bot.
// Users are created on first registration and never deleted.
type User struct {
	ID           int64
	Username     string // normalized: lowercase, no leading "@"
	Subscribed   bool
	ReferrerID   int64 // 0 when nobody invited this user
	RegisteredAt time.Time
}

// NormalizeUsername strips a leading "@" and lowercases. Returns "" for
// empty or whitespace-only input.
func NormalizeUsername(username string) string {
	u := strings.TrimSpace(username)
	u = strings.TrimPrefix(u, "@")
	return strings.ToLower(u)
}
