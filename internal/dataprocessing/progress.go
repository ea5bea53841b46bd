package dataprocessing

import (
	"fmt"
	"time"
)

// DefaultProgressInterval is how many files pass between progress lines
const DefaultProgressInterval = 50

// ProgressTracker tracks progress through a state's usable files
type ProgressTracker struct {
	Step      string
	Total     int
	Current   int
	Interval  int
	StartTime time.Time
}

// NewProgressTracker creates a new progress tracker
func NewProgressTracker(step string, total, interval int) *ProgressTracker {
	if interval <= 0 {
		interval = DefaultProgressInterval
	}
	return &ProgressTracker{
		Step:      step,
		Total:     total,
		Interval:  interval,
		StartTime: time.Now(),
	}
}

// Increment advances the tracker by one file
func (p *ProgressTracker) Increment() {
	p.Current++
}

// ShouldReport is true for the first file and then every Interval files
func (p *ProgressTracker) ShouldReport() bool {
	return p.Current%p.Interval == 0
}

// Percentage returns progress as 0..100
func (p *ProgressTracker) Percentage() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Current) / float64(p.Total) * 100
}

// Position formats the 1-based position of the next file, e.g. "[51/120]"
func (p *ProgressTracker) Position() string {
	return fmt.Sprintf("[%d/%d]", p.Current+1, p.Total)
}

// Elapsed returns the time since the tracker was created
func (p *ProgressTracker) Elapsed() time.Duration {
	return time.Since(p.StartTime)
}
