// Package progress draws the file-loading indicator shown while a
// project is scanned and parsed.
package progress

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"github.com/schollz/progressbar/v3"

	"github.com/panbanda/tangle/pkg/analyzer"
)

// ErrSkipped marks a load that ended without work to do.
var ErrSkipped = errors.New("skipped")

// Loader starts as a spinner and becomes a counted bar once the number
// of files is known.
type Loader struct {
	mu      sync.Mutex
	bar     *progressbar.ProgressBar
	w       io.Writer
	label   string
	counted bool
	last    string
}

// NewLoader creates a spinner labelled label on w.
func NewLoader(w io.Writer, label string) *Loader {
	return &Loader{
		w:     w,
		label: label,
		bar: progressbar.NewOptions(-1,
			progressbar.OptionSetWriter(w),
			progressbar.OptionSetWidth(20),
			progressbar.OptionSetDescription(label),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionClearOnFinish(),
		),
	}
}

func (l *Loader) counter(total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(l.w),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetDescription(l.label),
		progressbar.OptionUseANSICodes(true),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

// Update moves the indicator to done of total.
func (l *Loader) Update(done, total int, path string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.counted && total > 0 {
		_ = l.bar.Clear()
		l.bar = l.counter(total)
		l.counted = true
	}
	l.last = path
	if l.counted {
		_ = l.bar.Set(done)
		return
	}
	_ = l.bar.Add(1)
}

// Func adapts the loader to an analyzer.ProgressFunc.
func (l *Loader) Func() analyzer.ProgressFunc {
	return l.Update
}

// Current returns the last reported count.
func (l *Loader) Current() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.bar.State().CurrentNum
}

// Last returns the most recently reported path.
func (l *Loader) Last() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.last
}

// Done clears the indicator. A nil err prints nothing; ErrSkipped and
// any error wrapping it print a skip notice, everything else an error line.
func (l *Loader) Done(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_ = l.bar.Finish()
	_ = l.bar.Clear()
	switch {
	case err == nil:
	case errors.Is(err, ErrSkipped):
		fmt.Fprintf(l.w, "  %s skipped (%v)\n", l.label, err)
	default:
		if l.last != "" {
			fmt.Fprintf(l.w, "  %s failed near %s: %v\n", l.label, filepath.ToSlash(l.last), err)
			return
		}
		fmt.Fprintf(l.w, "  %s failed: %v\n", l.label, err)
	}
}

// Skip builds an ErrSkipped with a reason.
func Skip(reason string) error {
	return fmt.Errorf("%w: %s", ErrSkipped, reason)
}
