// File: internal/usecase/broadcast_uc_test.go
package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

func TestBroadcastDeliversToAllUsers(t *testing.T) {
	st := newTestStore(t)
	st.RegisterUser(1, "a")
	st.RegisterUser(2, "b")
	st.RegisterUser(3, "c")

	sender := newFakeSender()
	logger := zerolog.Nop()
	uc := NewBroadcastUseCase(st, sender, &logger)
	uc.throttle = 0

	delivered, failed := uc.Broadcast(context.Background(), "всем привет")
	if delivered != 3 || failed != 0 {
		t.Fatalf("delivered=%d failed=%d", delivered, failed)
	}
	for _, id := range []int64{1, 2, 3} {
		if got := sender.sent[id]; len(got) != 1 || got[0] != "всем привет" {
			t.Fatalf("user %d got %v", id, got)
		}
	}
}

func TestBroadcastCountsFailuresAndContinues(t *testing.T) {
	st := newTestStore(t)
	st.RegisterUser(1, "a")
	st.RegisterUser(2, "b")
	st.RegisterUser(3, "c")

	sender := newFakeSender()
	sender.failFor[2] = errors.New("blocked by user")
	logger := zerolog.Nop()
	uc := NewBroadcastUseCase(st, sender, &logger)
	uc.throttle = 0

	delivered, failed := uc.Broadcast(context.Background(), "обновление")
	if delivered != 2 || failed != 1 {
		t.Fatalf("delivered=%d failed=%d", delivered, failed)
	}
	if len(sender.sent[2]) != 0 {
		t.Fatal("failed recipient must not be recorded as delivered")
	}
}

func TestBroadcastStopsOnCancel(t *testing.T) {
	st := newTestStore(t)
	st.RegisterUser(1, "a")
	st.RegisterUser(2, "b")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sender := newFakeSender()
	logger := zerolog.Nop()
	uc := NewBroadcastUseCase(st, sender, &logger)
	uc.throttle = 0

	delivered, failed := uc.Broadcast(ctx, "стоп")
	if delivered != 0 || failed != 0 {
		t.Fatalf("delivered=%d failed=%d after cancel", delivered, failed)
	}
}
