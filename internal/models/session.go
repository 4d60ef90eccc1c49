package models

// Rect is an axis-aligned rectangle. Display rectangles are in on-screen
// pixels, frame rectangles in the video's native pixel space.
type Rect struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	W float64 `json:"w" yaml:"w"`
	H float64 `json:"h" yaml:"h"`
}

// HasArea reports whether both sides are positive.
func (r Rect) HasArea() bool {
	return r.W > 0 && r.H > 0
}

// RoiInput is a rectangle as reported by the selection overlay.
type RoiInput struct {
	X        float64 `json:"x" yaml:"x"`
	Y        float64 `json:"y" yaml:"y"`
	W        float64 `json:"w" yaml:"w"`
	H        float64 `json:"h" yaml:"h"`
	DisplayW float64 `json:"displayW,omitempty" yaml:"displayW"`
	DisplayH float64 `json:"displayH,omitempty" yaml:"displayH"`
	Cleared  bool    `json:"cleared,omitempty" yaml:"cleared"`
}

// Status of a capture session
type Status string

const (
	StatusIdle      Status = "idle"
	StatusExtracted Status = "extracted"
	StatusSaved     Status = "saved"
)

// Playback holds one-shot commands for the video renderer. Tokens only ever
// increase; a renderer acts when it observes a token change.
type Playback struct {
	PlayToken      int
	PauseToken     int
	SeekToken      int
	SeekFraction   float64
	CurrentTimeSec float64
	Volume         float64
	DisplayW       float64
	DisplayH       float64
}

// SessionState is a point-in-time copy of a capture session.
type SessionState struct {
	ID           string
	Status       Status
	VideoSource  string
	VideoPath    string
	Roi          *Rect
	RoiFrame     *Rect
	TargetTime   string
	SaveDir      string
	PreviewIndex int
	PreviewTotal int
	Previews     map[int]string
	Playback     Playback
}
