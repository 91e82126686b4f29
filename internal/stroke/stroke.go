// Package stroke turns a stream of fingertip positions into line segments.
//
// It holds the only arithmetic in the drawing pipeline: mapping a point
// between frame and canvas coordinates, exponential smoothing of the
// fingertip position and a fixed-threshold jitter filter.
package stroke

// Default tuning values.
const (
	// DefaultWeight is the share of the previous smoothed position kept on each update.
	DefaultWeight = 0.7
	// DefaultJitter is the movement in pixels, per axis, that must be exceeded to extend a stroke.
	DefaultJitter = 5
)

// Point is a pixel coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Size is a width and height in pixels.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Segment is a line from one stroke point to the next.
type Segment struct {
	From Point
	To   Point
}

// Scale maps p from a surface of size from onto a surface of size to.
// Coordinates are truncated toward zero. A zero-sized source returns p unchanged.
func Scale(p Point, from, to Size) Point {
	if from.Width <= 0 || from.Height <= 0 || from == to {
		return p
	}
	return Point{
		X: int(float64(p.X) / float64(from.Width) * float64(to.Width)),
		Y: int(float64(p.Y) / float64(from.Height) * float64(to.Height)),
	}
}

// Clamp limits p to the bounds of s.
func Clamp(p Point, s Size) Point {
	if p.X < 0 {
		p.X = 0
	} else if s.Width > 0 && p.X >= s.Width {
		p.X = s.Width - 1
	}
	if p.Y < 0 {
		p.Y = 0
	} else if s.Height > 0 && p.Y >= s.Height {
		p.Y = s.Height - 1
	}
	return p
}

// Smoother applies an exponential moving average to successive points:
//
//	smoothed = weight*previous + (1-weight)*current
//
// The first point after construction or Reset seeds the average.
type Smoother struct {
	weight float64
	x, y   float64
	seeded bool
}

// NewSmoother creates a Smoother keeping weight of the previous position.
// A weight outside [0, 1) disables smoothing.
func NewSmoother(weight float64) *Smoother {
	if weight < 0 || weight >= 1 {
		weight = 0
	}
	return &Smoother{weight: weight}
}

// Update feeds p into the average and returns the smoothed point.
func (s *Smoother) Update(p Point) Point {
	if !s.seeded {
		s.x, s.y = float64(p.X), float64(p.Y)
		s.seeded = true
	} else {
		s.x = s.weight*s.x + (1-s.weight)*float64(p.X)
		s.y = s.weight*s.y + (1-s.weight)*float64(p.Y)
	}
	return Point{X: int(s.x), Y: int(s.y)}
}

// Reset forgets the running average.
func (s *Smoother) Reset() {
	s.seeded = false
	s.x, s.y = 0, 0
}

// Weight returns the configured weight of the previous position.
func (s *Smoother) Weight() float64 {
	return s.weight
}

// Tracker remembers the last stroke point and decides when a new point
// extends the stroke.
//
// A point moves the stroke only when it differs from the previous point by
// more than the jitter threshold on at least one axis. The very first point
// after a Lift only anchors the stroke.
type Tracker struct {
	jitter int
	prev   Point
	valid  bool
}

// NewTracker creates a Tracker with the given jitter threshold in pixels.
// Negative thresholds are treated as zero.
func NewTracker(jitter int) *Tracker {
	if jitter < 0 {
		jitter = 0
	}
	return &Tracker{jitter: jitter}
}

// Next offers p to the tracker. It returns the segment to draw and true when
// p extends an existing stroke.
func (t *Tracker) Next(p Point) (Segment, bool) {
	if t.valid && !t.moved(p) {
		return Segment{}, false
	}

	seg := Segment{From: t.prev, To: p}
	drew := t.valid

	t.prev = p
	t.valid = true

	return seg, drew
}

func (t *Tracker) moved(p Point) bool {
	if t.jitter == 0 {
		return p != t.prev
	}
	return abs(p.X-t.prev.X) > t.jitter || abs(p.Y-t.prev.Y) > t.jitter
}

// Lift ends the current stroke. The next point starts a new one.
func (t *Tracker) Lift() {
	t.valid = false
	t.prev = Point{}
}

// Last returns the previous stroke point and whether one exists.
func (t *Tracker) Last() (Point, bool) {
	return t.prev, t.valid
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
