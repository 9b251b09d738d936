// File: internal/usecase/stats_uc_test.go
package usecase

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
)

func TestStatsSummary(t *testing.T) {
	st := newTestStore(t)
	st.RegisterUser(1, "a")
	st.RegisterUser(2, "b")
	st.GrantSubscription(2)

	logger := zerolog.Nop()
	uc := NewStatsUseCase(st, &logger)

	got := uc.Summary(context.Background())
	if got.TotalUsers != 2 {
		t.Fatalf("TotalUsers = %d, want 2", got.TotalUsers)
	}
	if got.PaidUsersTotal != 1 {
		t.Fatalf("PaidUsersTotal = %d, want 1", got.PaidUsersTotal)
	}
	if got.SubscriptionsGrantedTotal != 1 {
		t.Fatalf("SubscriptionsGrantedTotal = %d, want 1", got.SubscriptionsGrantedTotal)
	}
}
