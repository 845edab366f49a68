package unlhauae

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/term"
)

const (
	// maxBarWidth caps the bar on very wide terminals.
	maxBarWidth  = 60
	updatePeriod = time.Second / 4
	speedWindow  = 5 * time.Second
)

func lineWidth(out io.Writer) int {
	if f, ok := out.(*os.File); ok {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			return w
		}
	}
	return 80
}

type sample struct {
	timestamp time.Time
	bytes     int64
}

// Progress draws a one-line bar of extracted bytes against the archive
// total. Counters are updated by the extraction loop; drawing happens on a
// ticker goroutine.
type Progress struct {
	out   io.Writer
	total int64

	current atomic.Int64
	file    atomic.Value

	mu        sync.Mutex
	samples   []sample
	startTime time.Time
	lastLine  string
}

// NewProgress returns a bar for total bytes written to out.
func NewProgress(out io.Writer, total int64) *Progress {
	return &Progress{out: out, total: total}
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Add records n extracted bytes.
func (p *Progress) Add(n int64) {
	if p != nil {
		p.current.Add(n)
	}
}

// SetFile names the entry being extracted.
func (p *Progress) SetFile(name string) {
	if p != nil {
		p.file.Store(name)
	}
}

// Start begins drawing. The returned func draws a final line and waits for
// the ticker to exit.
func (p *Progress) Start() (stop func()) {
	done := make(chan struct{})
	finished := make(chan struct{})
	p.startTime = time.Now()

	go func() {
		ticker := time.NewTicker(updatePeriod)
		defer ticker.Stop()
		defer close(finished)

		for {
			select {
			case <-ticker.C:
				p.draw(time.Now())
			case <-done:
				p.draw(time.Now())
				fmt.Fprint(p.out, "\n")
				return
			}
		}
	}()

	return func() {
		close(done)
		<-finished
	}
}

// Line renders the bar as it would be drawn at now for a terminal width.
func (p *Progress) Line(now time.Time, width int) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	done := p.current.Load()
	frac := 1.0
	if p.total > 0 {
		frac = min(float64(done)/float64(p.total), 1)
	}

	// moving window speed
	p.samples = append(p.samples, sample{timestamp: now, bytes: done})
	cutoff := now.Add(-speedWindow)
	i := 0
	for ; i < len(p.samples); i++ {
		if p.samples[i].timestamp.After(cutoff) {
			break
		}
	}
	p.samples = p.samples[i:]

	var speed float64
	if len(p.samples) > 1 {
		first, last := p.samples[0], p.samples[len(p.samples)-1]
		if secs := last.timestamp.Sub(first.timestamp).Seconds(); secs > 0 {
			speed = float64(last.bytes-first.bytes) / secs
		}
	}
	if frac >= 1 && !p.startTime.IsZero() {
		if elapsed := now.Sub(p.startTime).Seconds(); elapsed > 0 {
			speed = float64(done) / elapsed
		}
	}

	fileName, _ := p.file.Load().(string)
	if fileName != "" {
		fileName = filepath.Base(fileName)
	}
	info := fmt.Sprintf(" %3.2f%% %v/s %s", frac*100, humanize.Bytes(uint64(speed)), fileName)
	barWidth := max(min(width-len(info)-2, maxBarWidth), 0)
	filled := min(int(frac*float64(barWidth)), barWidth)
	return "[" + strings.Repeat("=", filled) + strings.Repeat(" ", barWidth-filled) + "]" + info
}

func (p *Progress) draw(now time.Time) {
	line := p.Line(now, lineWidth(p.out))
	if line != p.lastLine {
		fmt.Fprintf(p.out, "\r\033[K%s", line)
		p.lastLine = line
	}
}
