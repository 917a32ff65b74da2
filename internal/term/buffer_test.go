package term

import (
	"strings"
	"testing"
)

func TestBufferTail(t *testing.T) {
	b := NewBuffer()
	if got := b.Tail(5); got != nil {
		t.Errorf("Tail on empty buffer = %v, want nil", got)
	}

	if _, err := b.Write([]byte("a\nb\nc\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	tests := []struct {
		n    int
		want []string
	}{
		{0, nil},
		{1, []string{"c"}},
		{2, []string{"b", "c"}},
		{10, []string{"a", "b", "c"}},
	}
	for _, tt := range tests {
		got := b.Tail(tt.n)
		if len(got) != len(tt.want) {
			t.Errorf("Tail(%d) = %v, want %v", tt.n, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("Tail(%d)[%d] = %q, want %q", tt.n, i, got[i], tt.want[i])
			}
		}
	}
}

func TestBufferPartialLastLine(t *testing.T) {
	b := NewBuffer()
	_, _ = b.Write([]byte("done\nprompt> "))
	got := b.Tail(2)
	if len(got) != 2 || got[0] != "done" || got[1] != "prompt> " {
		t.Errorf("Tail(2) = %v, want [done, prompt> ]", got)
	}
}

func TestBufferCapsRetention(t *testing.T) {
	b := &Buffer{max: 64}
	line := strings.Repeat("x", 15) + "\n"
	for i := 0; i < 20; i++ {
		_, _ = b.Write([]byte(line))
	}
	if b.Len() > 64 {
		t.Errorf("Len() = %d, want <= %d", b.Len(), 64)
	}
	// The tail must still be intact whole lines.
	for _, l := range b.Tail(10) {
		if l != strings.Repeat("x", 15) {
			t.Errorf("retained line corrupted: %q", l)
		}
	}
}
