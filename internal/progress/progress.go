package progress

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"
)

// Stats holds the byte accounting for one transfer session.
type Stats struct {
	TotalBytes       int64
	TransferredBytes atomic.Int64
	StartTime        time.Time
	endTime          atomic.Int64 // unix nanos, 0 while running
	Filename         string
}

// NewStats creates transfer statistics for a session that starts now.
func NewStats(filename string, totalBytes int64) *Stats {
	return &Stats{
		TotalBytes: totalBytes,
		StartTime:  time.Now(),
		Filename:   filename,
	}
}

// UpdateTransferred atomically updates the transferred bytes count
func (s *Stats) UpdateTransferred(bytes int64) {
	s.TransferredBytes.Add(bytes)
}

// GetTransferred atomically gets the current transferred bytes count
func (s *Stats) GetTransferred() int64 {
	return s.TransferredBytes.Load()
}

// SetTransferred atomically sets the transferred bytes count
func (s *Stats) SetTransferred(bytes int64) {
	s.TransferredBytes.Store(bytes)
}

// Finish records the end of the transfer. Elapsed and Throughput report
// against this instant once it is set.
func (s *Stats) Finish() {
	s.endTime.Store(time.Now().UnixNano())
}

// Elapsed returns the session duration so far, or the final duration once
// Finish has been called.
func (s *Stats) Elapsed() time.Duration {
	if end := s.endTime.Load(); end != 0 {
		return time.Unix(0, end).Sub(s.StartTime)
	}
	return time.Since(s.StartTime)
}

// Throughput returns the average transfer rate in bytes per second.
func (s *Stats) Throughput() float64 {
	elapsed := s.Elapsed().Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(s.GetTransferred()) / elapsed
}

// Reporter periodically renders a console progress bar for a transfer.
type Reporter struct {
	stats  *Stats
	ticker *time.Ticker
	done   chan struct{}
}

// NewReporter creates a new progress reporter
func NewReporter(stats *Stats) *Reporter {
	return &Reporter{
		stats:  stats,
		ticker: time.NewTicker(1 * time.Second),
		done:   make(chan struct{}),
	}
}

// Start begins progress reporting
func (r *Reporter) Start() {
	go r.reportLoop()
}

// Stop stops progress reporting
func (r *Reporter) Stop() {
	r.ticker.Stop()
	close(r.done)
	fmt.Println() // Print newline after progress bar
}

func (r *Reporter) reportLoop() {
	for {
		select {
		case <-r.ticker.C:
			r.showConsoleProgress()
		case <-r.done:
			return
		}
	}
}

// showConsoleProgress displays progress bar in console
func (r *Reporter) showConsoleProgress() {
	transferred := r.stats.GetTransferred()
	percent := 100.0
	if r.stats.TotalBytes > 0 {
		percent = float64(transferred) / float64(r.stats.TotalBytes) * 100
	}

	const barWidth = 30
	completedWidth := int(float64(barWidth) * percent / 100)
	if completedWidth > barWidth {
		completedWidth = barWidth
	}
	progressBar := strings.Repeat("█", completedWidth) + strings.Repeat("░", barWidth-completedWidth)

	fmt.Printf("\r[%s] %.1f%% (%.2f/%.2f MB) at %.2f MB/s",
		progressBar,
		percent,
		float64(transferred)/1024/1024,
		float64(r.stats.TotalBytes)/1024/1024,
		r.stats.Throughput()/1024/1024)
}
