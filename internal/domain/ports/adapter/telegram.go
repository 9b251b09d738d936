package adapter

import "context"

// TelegramSender is the outbound side of the transport: plain text delivery
// to a chat id. Implemented by the polling bot adapter and used by the
// broadcast use case and the audit channel sink.
type TelegramSender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}
