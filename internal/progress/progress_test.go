package progress

import (
	"bytes"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoaderSpinnerThenCounter(t *testing.T) {
	l := NewLoader(io.Discard, "Loading")
	l.Update(0, 0, "")
	l.Update(3, 10, "src/a.ts")
	assert.Equal(t, int64(3), l.Current())
	assert.Equal(t, "src/a.ts", l.Last())
}

func TestLoaderConcurrentUpdates(t *testing.T) {
	l := NewLoader(io.Discard, "Loading")
	fn := l.Func()

	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			fn(n, 50, "file.ts")
		}(i)
	}
	wg.Wait()
	l.Update(50, 50, "file.ts")

	assert.Equal(t, int64(50), l.Current())
}

func TestLoaderDone(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"success", nil, ""},
		{"skipped", Skip("no source files"), "Loading skipped (skipped: no source files)"},
		{"error", errors.New("boom"), "Loading failed near src/x.ts: boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := NewLoader(&buf, "Loading")
			l.Update(1, 2, "src/x.ts")
			l.Done(tt.err)
			if tt.want == "" {
				assert.NotContains(t, buf.String(), "Loading skipped")
				assert.NotContains(t, buf.String(), "failed")
				return
			}
			assert.Contains(t, buf.String(), tt.want)
		})
	}
}
