package model

import (
	"fmt"
	"testing"
)

func TestNormalizeUsername(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Alice", "alice"},
		{"@Alice", "alice"},
		{"  @Bob  ", "bob"},
		{"", ""},
		{"   ", ""},
	}
	for _, c := range cases {
		if got := NormalizeUsername(c.in); got != c.want {
			t.Errorf("NormalizeUsername(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestChatSessionHistoryBounded(t *testing.T) {
	s := NewChatSession("sess-1", 42)
	for i := 0; i < MaxHistory+10; i++ {
		s.Append("user", fmt.Sprintf("msg %d", i))
	}
	if len(s.History) != MaxHistory {
		t.Fatalf("history length = %d, want %d", len(s.History), MaxHistory)
	}
	// Oldest retained entry must be the one MaxHistory steps from the end.
	if s.History[0].Content != "msg 10" {
		t.Errorf("oldest entry = %q, want %q", s.History[0].Content, "msg 10")
	}
}

func TestChatSessionFinish(t *testing.T) {
	s := NewChatSession("sess-2", 7)
	if !s.Active {
		t.Fatal("new session should be active")
	}
	s.Finish()
	if s.Active {
		t.Fatal("finished session should be inactive")
	}
}
