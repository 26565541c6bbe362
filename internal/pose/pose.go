package pose

import (
	"fmt"

	"github.com/fairwaylabs/swinglab/pkg/models"
)

// Landmark identifies one anatomical keypoint from the closed vocabulary
// produced by the upstream pose estimator. Unknown names are rejected on
// receipt instead of being looked up dynamically.
type Landmark string

const (
	Nose          Landmark = "nose"
	LeftEye       Landmark = "left_eye"
	RightEye      Landmark = "right_eye"
	LeftEar       Landmark = "left_ear"
	RightEar      Landmark = "right_ear"
	LeftShoulder  Landmark = "left_shoulder"
	RightShoulder Landmark = "right_shoulder"
	LeftElbow     Landmark = "left_elbow"
	RightElbow    Landmark = "right_elbow"
	LeftWrist     Landmark = "left_wrist"
	RightWrist    Landmark = "right_wrist"
	LeftHip       Landmark = "left_hip"
	RightHip      Landmark = "right_hip"
	LeftKnee      Landmark = "left_knee"
	RightKnee     Landmark = "right_knee"
	LeftAnkle     Landmark = "left_ankle"
	RightAnkle    Landmark = "right_ankle"
)

// vocabulary is the full set of accepted landmark names.
var vocabulary = map[Landmark]bool{
	Nose: true, LeftEye: true, RightEye: true, LeftEar: true, RightEar: true,
	LeftShoulder: true, RightShoulder: true, LeftElbow: true, RightElbow: true,
	LeftWrist: true, RightWrist: true, LeftHip: true, RightHip: true,
	LeftKnee: true, RightKnee: true, LeftAnkle: true, RightAnkle: true,
}

// Required landmarks for feature extraction. Frames missing any of these
// are excluded from per-frame trend statistics but still counted toward
// the frame-quality diagnostic.
var Required = []Landmark{
	Nose,
	LeftShoulder, RightShoulder,
	LeftElbow, RightElbow,
	LeftWrist, RightWrist,
	LeftHip, RightHip,
}

// MinFrames is the minimum sequence length accepted for analysis.
const MinFrames = 10

// Point is a landmark position with confidence. Z is zero when the
// estimator did not provide depth.
type Point struct {
	X, Y, Z    float64
	Confidence float64
}

// Frame is one pose frame keyed by landmark.
type Frame struct {
	Index     int
	Landmarks map[Landmark]Point
}

// Get returns a required landmark or a MissingLandmarkError.
func (f *Frame) Get(lm Landmark) (Point, error) {
	p, ok := f.Landmarks[lm]
	if !ok {
		return Point{}, &MissingLandmarkError{FrameIndex: f.Index, Landmark: lm}
	}
	return p, nil
}

// Has reports whether the frame carries all the given landmarks.
func (f *Frame) Has(lms ...Landmark) bool {
	for _, lm := range lms {
		if _, ok := f.Landmarks[lm]; !ok {
			return false
		}
	}
	return true
}

// Sequence is an ordered, validated pose sequence. It is immutable once
// built; the extraction pipeline never mutates it.
type Sequence struct {
	Frames []Frame
}

// Len returns the number of frames.
func (s *Sequence) Len() int { return len(s.Frames) }

// ValidationError reports malformed input from the pose producer. It is
// surfaced to callers as a 4xx with the specific reason.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid pose sequence: " + e.Reason
}

// MissingLandmarkError reports a required landmark absent from a frame.
type MissingLandmarkError struct {
	FrameIndex int
	Landmark   Landmark
}

func (e *MissingLandmarkError) Error() string {
	return fmt.Sprintf("frame %d: missing required landmark %q", e.FrameIndex, e.Landmark)
}

// FromRequest validates an uploaded pose payload and builds a Sequence.
// The producer is untrusted: shape, vocabulary, coordinate and confidence
// ranges are all checked here.
func FromRequest(req *models.AnalyzeRequest) (*Sequence, error) {
	if len(req.Frames) == 0 {
		return nil, &ValidationError{Reason: "empty pose sequence"}
	}
	if len(req.Frames) < MinFrames {
		return nil, &ValidationError{
			Reason: fmt.Sprintf("sequence has %d frames, minimum is %d", len(req.Frames), MinFrames),
		}
	}

	seq := &Sequence{Frames: make([]Frame, 0, len(req.Frames))}
	prevIndex := -1

	for i, mf := range req.Frames {
		if mf.Index <= prevIndex {
			return nil, &ValidationError{
				Reason: fmt.Sprintf("frame indices must be strictly increasing (position %d has index %d after %d)", i, mf.Index, prevIndex),
			}
		}
		prevIndex = mf.Index

		frame := Frame{Index: mf.Index, Landmarks: make(map[Landmark]Point, len(mf.Landmarks))}
		for name, lp := range mf.Landmarks {
			lm := Landmark(name)
			if !vocabulary[lm] {
				return nil, &ValidationError{
					Reason: fmt.Sprintf("frame %d: unknown landmark %q", mf.Index, name),
				}
			}
			if !inUnitRange(lp.X) || !inUnitRange(lp.Y) {
				return nil, &ValidationError{
					Reason: fmt.Sprintf("frame %d: landmark %q coordinates out of [0,1]", mf.Index, name),
				}
			}
			if !inUnitRange(lp.Confidence) {
				return nil, &ValidationError{
					Reason: fmt.Sprintf("frame %d: landmark %q confidence out of [0,1]", mf.Index, name),
				}
			}
			p := Point{X: lp.X, Y: lp.Y, Confidence: lp.Confidence}
			if lp.Z != nil {
				p.Z = *lp.Z
			}
			frame.Landmarks[lm] = p
		}
		seq.Frames = append(seq.Frames, frame)
	}

	return seq, nil
}

// inUnitRange also rejects NaN, since NaN comparisons are always false.
func inUnitRange(v float64) bool {
	return v >= 0 && v <= 1
}
