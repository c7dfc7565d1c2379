package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkSchoolFormed   BookmarkType = "school_formed"
	BookmarkScatter        BookmarkType = "scatter"
	BookmarkSpeedViolation BookmarkType = "speed_violation"
	BookmarkSteadyState    BookmarkType = "steady_state"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type" json:"type"`
	Tick        int32        `csv:"tick" json:"tick"`
	Description string       `csv:"description" json:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector detects interesting moments in the flock's evolution.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	// State tracking
	schooled          bool // polarization currently above the school threshold
	steadyWindowCount int  // consecutive windows with steady shape
}

// Thresholds for flock events.
const (
	schoolPolarization    = 0.8
	looseningPolarization = 0.5
	scatterFactor         = 2.0
	scatterMinSpread      = 5.0
	steadyWindows         = 5
	steadyCV2             = 0.01 // CV < 10%
)

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < steadyWindows {
		historySize = steadyWindows
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if b := bd.checkSpeedViolation(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	if stats.Boids > 0 {
		if b := bd.checkSchoolFormed(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkScatter(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkSteadyState(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	bd.addToHistory(stats)
	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

// getHistory returns the stored windows, oldest first.
func (bd *BookmarkDetector) getHistory() []WindowStats {
	if !bd.historyFull {
		return bd.history[:bd.historyIdx]
	}
	out := make([]WindowStats, 0, bd.historySize)
	out = append(out, bd.history[bd.historyIdx:]...)
	return append(out, bd.history[:bd.historyIdx]...)
}

func (bd *BookmarkDetector) checkSpeedViolation(stats WindowStats) *Bookmark {
	if stats.SpeedViolations == 0 {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkSpeedViolation,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("%d members outside speed bounds", stats.SpeedViolations),
	}
}

// checkSchoolFormed fires once when polarization climbs past the school
// threshold, and re-arms after it falls below the loosening threshold.
func (bd *BookmarkDetector) checkSchoolFormed(stats WindowStats) *Bookmark {
	if bd.schooled {
		if stats.Polarization < looseningPolarization {
			bd.schooled = false
		}
		return nil
	}
	if stats.Polarization < schoolPolarization {
		return nil
	}
	bd.schooled = true
	if len(bd.getHistory()) == 0 {
		// Spawned aligned; nothing formed.
		return nil
	}
	return &Bookmark{
		Type:        BookmarkSchoolFormed,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Polarization reached %.2f across %d members", stats.Polarization, stats.Boids),
	}
}

func (bd *BookmarkDetector) checkScatter(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var total float64
	for _, h := range history {
		total += h.Spread
	}
	avg := total / float64(len(history))
	if avg == 0 {
		return nil
	}

	if stats.Spread > avg*scatterFactor && stats.Spread > scatterMinSpread {
		return &Bookmark{
			Type:        BookmarkScatter,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Spread %.1f is %.1fx average (%.1f)", stats.Spread, stats.Spread/avg, avg),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkSteadyState(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < steadyWindows-1 {
		return nil
	}

	// Current window plus the most recent ones
	recent := append(history[len(history)-(steadyWindows-1):len(history):len(history)], stats)

	if cv2(recent, func(s WindowStats) float64 { return s.Polarization }) < steadyCV2 &&
		cv2(recent, func(s WindowStats) float64 { return s.Spread }) < steadyCV2 {
		bd.steadyWindowCount++
	} else {
		bd.steadyWindowCount = 0
	}

	if bd.steadyWindowCount == 1 { // trigger once per steady stretch
		return &Bookmark{
			Type:        BookmarkSteadyState,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Flock steady at polarization %.2f, spread %.1f over %d windows", stats.Polarization, stats.Spread, steadyWindows),
		}
	}
	return nil
}

// cv2 is the squared coefficient of variation of f over windows.
func cv2(windows []WindowStats, f func(WindowStats) float64) float64 {
	var sum float64
	for _, w := range windows {
		sum += f(w)
	}
	mean := sum / float64(len(windows))
	if mean == 0 {
		return 0
	}
	var v float64
	for _, w := range windows {
		d := f(w) - mean
		v += d * d
	}
	v /= float64(len(windows))
	return v / (mean * mean)
}
