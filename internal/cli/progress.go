package cli

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// indexProgressReporter is a TTY-aware spinner for `index`, adapted from
// the teacher's parseProgressReporter to report extracted/reused counts
// instead of a single running total.
type indexProgressReporter struct {
	enabled bool
	label   string
	start   time.Time
	spinner int
	lastLen int
}

func newIndexProgressReporter(label string, asJSON bool) *indexProgressReporter {
	stat, err := os.Stderr.Stat()
	enabled := err == nil && (stat.Mode()&os.ModeCharDevice) != 0 && !asJSON
	return &indexProgressReporter{enabled: enabled, label: label, start: time.Now()}
}

func (r *indexProgressReporter) Update(file string, extracted, reused int) {
	if !r.enabled {
		return
	}
	frames := [4]string{"-", "\\", "|", "/"}
	frame := frames[r.spinner%len(frames)]
	r.spinner++
	file = strings.TrimSpace(file)
	if len(file) > 80 {
		file = "..." + file[len(file)-77:]
	}
	status := fmt.Sprintf("%s %s extracted=%d reused=%d %s", frame, r.label, extracted, reused, file)
	r.printStatus(status)
}

func (r *indexProgressReporter) Done(extracted, reused int) {
	if !r.enabled {
		return
	}
	elapsed := time.Since(r.start).Round(time.Millisecond)
	status := fmt.Sprintf("%s complete (extracted=%d reused=%d in %s)", r.label, extracted, reused, elapsed)
	r.printStatus(status)
	fmt.Fprintln(os.Stderr)
}

func (r *indexProgressReporter) printStatus(status string) {
	if r.lastLen > len(status) {
		status = status + strings.Repeat(" ", r.lastLen-len(status))
	}
	r.lastLen = len(status)
	fmt.Fprintf(os.Stderr, "\r%s", status)
}
