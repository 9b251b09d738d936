// File: internal/infra/adapters/telegram/real_bot_test.go
package telegram

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func TestShardIndexBoundedAndStable(t *testing.T) {
	const workers = 8
	ids := []int64{0, 1, 42, 7331, -5, -1001234567890, 1 << 40}

	for _, id := range ids {
		got := shardIndex(id, workers)
		if got < 0 || got >= workers {
			t.Fatalf("shardIndex(%d, %d) = %d, out of range", id, workers, got)
		}
		if again := shardIndex(id, workers); again != got {
			t.Fatalf("shardIndex(%d) not stable: %d then %d", id, got, again)
		}
	}
}

func TestUpdateChatID(t *testing.T) {
	up := tgbotapi.Update{Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 777}}}
	if got := updateChatID(up); got != 777 {
		t.Fatalf("updateChatID = %d, want 777", got)
	}
	// Updates without a message fall into a fixed shard.
	if got := updateChatID(tgbotapi.Update{}); got != 0 {
		t.Fatalf("updateChatID(empty) = %d, want 0", got)
	}
}
