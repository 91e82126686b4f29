// Package detector locates hand landmarks in video frames.
package detector

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Finger identifies one of the five fingers.
type Finger int

const (
	Thumb Finger = iota
	Index
	Middle
	Ring
	Pinky
)

// tipJoints maps each finger to its tip and the joint two below it.
var tipJoints = [5][2]int{
	{ThumbTip, ThumbMCP},
	{IndexTip, IndexPIP},
	{MiddleTip, MiddlePIP},
	{RingTip, RingPIP},
	{PinkyTip, PinkyPIP},
}

// HandConnections lists the landmark pairs joined when drawing a hand skeleton.
var HandConnections = [][2]int{
	{Wrist, ThumbCMC}, {ThumbCMC, ThumbMCP}, {ThumbMCP, ThumbIP}, {ThumbIP, ThumbTip},
	{Wrist, IndexMCP}, {IndexMCP, IndexPIP}, {IndexPIP, IndexDIP}, {IndexDIP, IndexTip},
	{IndexMCP, MiddleMCP}, {MiddleMCP, MiddlePIP}, {MiddlePIP, MiddleDIP}, {MiddleDIP, MiddleTip},
	{MiddleMCP, RingMCP}, {RingMCP, RingPIP}, {RingPIP, RingDIP}, {RingDIP, RingTip},
	{RingMCP, PinkyMCP}, {Wrist, PinkyMCP}, {PinkyMCP, PinkyPIP}, {PinkyPIP, PinkyDIP}, {PinkyDIP, PinkyTip},
}

// Point3D is a landmark position. X and Y are normalised to the frame
// (0..1), Z is relative depth.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents the 21 hand landmarks detected by MediaPipe.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// Landmark is a single keypoint in frame pixels.
type Landmark struct {
	ID int `json:"id"`
	X  int `json:"x"`
	Y  int `json:"y"`
}

// Pixels converts the normalised points into frame pixel coordinates for a
// frame of the given width and height, ordered by landmark ID.
func (h *HandLandmarks) Pixels(width, height int) []Landmark {
	if h == nil {
		return nil
	}

	out := make([]Landmark, NumLandmarks)
	for i, p := range h.Points {
		out[i] = Landmark{
			ID: i,
			X:  int(p.X * float64(width)),
			Y:  int(p.Y * float64(height)),
		}
	}
	return out
}

// Fingertip returns the index fingertip in frame pixels.
func (h *HandLandmarks) Fingertip(width, height int) (int, int) {
	tip := h.Points[IndexTip]
	return int(tip.X * float64(width)), int(tip.Y * float64(height))
}

// FingersUp reports, per finger, whether it is extended.
//
// A finger counts as extended when its tip sits above (smaller Y) the joint
// two below it. The thumb is judged sideways: its tip must be further from
// the pinky knuckle than its MCP joint.
func (h *HandLandmarks) FingersUp() [5]bool {
	var up [5]bool

	pinky := h.Points[PinkyMCP]
	tip := h.Points[ThumbTip]
	mcp := h.Points[ThumbMCP]
	up[Thumb] = absf(tip.X-pinky.X) > absf(mcp.X-pinky.X)

	for f := Index; f <= Pinky; f++ {
		j := tipJoints[f]
		up[f] = h.Points[j[0]].Y < h.Points[j[1]].Y
	}

	return up
}

// Hovering reports whether index and middle fingers are both raised, the
// conventional "pen up" pose for finger painting.
func (h *HandLandmarks) Hovering() bool {
	up := h.FingersUp()
	return up[Index] && up[Middle]
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
