package observ

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"time"
)

// Phase accumulates the time spent in one named stage across all files.
type Phase struct {
	Name  string
	Dur   time.Duration
	Count int
	order int
}

// Timer collects phase durations. It is safe for use by concurrent workers.
type Timer struct {
	mu     sync.Mutex
	phases map[string]*Phase
	start  time.Time
}

// NewTimer creates a new empty Timer; the wall clock starts now.
func NewTimer() *Timer {
	return &Timer{phases: make(map[string]*Phase, 8), start: time.Now()}
}

// Begin starts timing name and returns the function that stops it.
func (t *Timer) Begin(name string) func() {
	if t == nil {
		return func() {}
	}
	start := time.Now()
	return func() { t.Add(name, time.Since(start)) }
}

// Add records one occurrence of name lasting d.
func (t *Timer) Add(name string, d time.Duration) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.phases[name]
	if !ok {
		p = &Phase{Name: name, order: len(t.phases)}
		t.phases[name] = p
	}
	p.Dur += d
	p.Count++
}

// PhaseReport представляет сжатую информацию о фазе таймера для сериализации.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Count      int     `json:"count"`
}

// Report описывает агрегированные данные таймера.
type Report struct {
	WallMS float64       `json:"wall_ms"`
	Phases []PhaseReport `json:"phases"`
}

// Report returns the phases in first-seen order. Phase durations are summed
// over workers, so they may exceed the wall time.
func (t *Timer) Report() Report {
	t.mu.Lock()
	defer t.mu.Unlock()
	phases := make([]*Phase, 0, len(t.phases))
	for _, p := range t.phases {
		phases = append(phases, p)
	}
	sort.Slice(phases, func(i, j int) bool { return phases[i].order < phases[j].order })

	report := Report{WallMS: durationToMillis(time.Since(t.start)), Phases: make([]PhaseReport, len(phases))}
	for i, p := range phases {
		report.Phases[i] = PhaseReport{Name: p.Name, DurationMS: durationToMillis(p.Dur), Count: p.Count}
	}
	return report
}

// WriteSummary prints a human-readable table of all tracked phases.
func (t *Timer) WriteSummary(w io.Writer) error {
	report := t.Report()
	if _, err := fmt.Fprintln(w, "timings:"); err != nil {
		return err
	}
	for _, p := range report.Phases {
		if _, err := fmt.Fprintf(w, "  %-12s %9.2f ms  x%d\n", p.Name, p.DurationMS, p.Count); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "  %-12s %9.2f ms\n", "wall", report.WallMS)
	return err
}

func durationToMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
