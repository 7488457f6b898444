// Package activity keeps a timed activity (travel, practice exercise)
// visually smooth between authoritative updates. The authority owns the
// real timer and reports progress at a coarse cadence; this package
// advances only the displayed elapsed time locally and reconciles
// against every server snapshot, so progress never drifts ahead of the
// authority.
package activity

// Point is a 2D position used to place an activity's visual marker.
type Point struct {
	X float64
	Y float64
}

// Lerp returns the linear interpolation between a and b at parameter t.
// t is not clamped; callers pass a progress fraction in [0,1].
func Lerp(a, b Point, t float64) Point {
	return Point{
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
	}
}

// Session is the client-side model of one timed activity. DurationSeconds
// and ProgressPercent come from the authority; ElapsedSeconds additionally
// advances locally between snapshots. ProgressPercent is always within
// [0,100]. ElapsedSeconds may run past DurationSeconds while waiting for
// the authority to confirm; the display accessors clamp.
type Session struct {
	Label           string
	DurationSeconds float64
	ElapsedSeconds  float64
	ProgressPercent float64
	Complete        bool

	// Visual anchors for Position. Zero values are fine for consumers
	// that only need the scalar progress.
	Start Point
	End   Point
}

// Elapsed returns the elapsed time clamped to [0, DurationSeconds] for
// display.
func (s *Session) Elapsed() float64 {
	return clamp(s.ElapsedSeconds, 0, s.DurationSeconds)
}

// Remaining returns the displayed time left, never negative.
func (s *Session) Remaining() float64 {
	return max(0, s.DurationSeconds-s.ElapsedSeconds)
}

// Fraction returns ProgressPercent as a [0,1] interpolation parameter.
func (s *Session) Fraction() float64 {
	return s.ProgressPercent / 100
}

// Position returns the visual position between the start and end anchors
// at the current authoritative progress.
func (s *Session) Position() Point {
	return Lerp(s.Start, s.End, s.Fraction())
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
