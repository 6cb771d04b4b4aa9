//go:build !integration

package sched

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type syncBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

func TestHeartbeat(t *testing.T) {
	t.Run("should log until cancelled", func(t *testing.T) {
		var buf syncBuffer
		l := zerolog.New(&buf)
		h := NewHeartbeat(5*time.Millisecond, &l)

		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
		defer cancel()
		err := h.Run(ctx)

		if !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("want deadline exceeded, got %v", err)
		}
		if n := strings.Count(buf.String(), "still running"); n < 2 {
			t.Fatalf("want at least 2 heartbeats, got %d: %s", n, buf.String())
		}
	})

	t.Run("should be disabled with zero interval", func(t *testing.T) {
		l := zerolog.Nop()
		if err := NewHeartbeat(0, &l).Run(context.Background()); err != nil {
			t.Fatalf("want nil, got %v", err)
		}
	})
}
