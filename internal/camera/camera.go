package camera

import (
	"math"

	"github.com/fairwaylabs/swinglab/internal/pose"
)

// Angle is the detected recording viewpoint.
type Angle string

const (
	SideOn  Angle = "side_on"
	FrontOn Angle = "front_on"
	BackOn  Angle = "back_on"
	Unknown Angle = "unknown"
)

// Detection is the result of viewpoint classification.
type Detection struct {
	Angle      Angle
	Confidence float64
	// LowReliability marks sequences where too many consecutive frames
	// fell below the landmark confidence threshold. Extraction proceeds
	// on raw coordinates but the report is flagged.
	LowReliability bool
}

// Config holds viewpoint detection thresholds.
type Config struct {
	// LandmarkConfThreshold is the per-landmark confidence required for a
	// landmark to count as visible.
	LandmarkConfThreshold float64
	// MaxLowConfRun is the longest tolerated run of consecutive frames in
	// which fewer than half the landmarks are visible.
	MaxLowConfRun int
	// SideRatioMax is the shoulder-to-hip apparent-width ratio below which
	// the view is treated as side-on. In a facing view the shoulder line
	// reads clearly wider than the hip line; in a side view both lines
	// foreshorten and the ratio stays near or below 1. The ratio is
	// scale-invariant, so subject distance does not affect it.
	SideRatioMax float64
	// SideAsymmetryMin is the left/right confidence asymmetry above which
	// the view is treated as side-on (the far side is occluded).
	SideAsymmetryMin float64
	// FaceConfMin separates front-on from back-on once a facing view is
	// established.
	FaceConfMin float64
}

// DefaultConfig returns the tuned detection thresholds.
func DefaultConfig() Config {
	return Config{
		LandmarkConfThreshold: 0.5,
		MaxLowConfRun:         15,
		SideRatioMax:          1.25,
		SideAsymmetryMin:      0.15,
		FaceConfMin:           0.5,
	}
}

// Normalizer conditions coordinates for one viewpoint so downstream angle
// math stays comparable across views. Implementations must not mutate the
// input sequence.
type Normalizer interface {
	Normalize(seq *pose.Sequence) *pose.Sequence
}

// identityNormalizer leaves coordinates untouched. Side-on is the primary
// supported view and defines the reference geometry.
type identityNormalizer struct{}

func (identityNormalizer) Normalize(seq *pose.Sequence) *pose.Sequence { return seq }

// mirrorNormalizer flips X so that a back-on recording matches the
// front-on left/right convention.
type mirrorNormalizer struct{}

func (mirrorNormalizer) Normalize(seq *pose.Sequence) *pose.Sequence {
	out := &pose.Sequence{Frames: make([]pose.Frame, len(seq.Frames))}
	for i, f := range seq.Frames {
		nf := pose.Frame{Index: f.Index, Landmarks: make(map[pose.Landmark]pose.Point, len(f.Landmarks))}
		for lm, p := range f.Landmarks {
			p.X = 1 - p.X
			nf.Landmarks[lm] = p
		}
		out.Frames[i] = nf
	}
	return out
}

// NormalizerFor returns the conditioning strategy for a viewpoint.
func NormalizerFor(angle Angle) Normalizer {
	switch angle {
	case BackOn:
		return mirrorNormalizer{}
	default:
		return identityNormalizer{}
	}
}

var leftSide = []pose.Landmark{pose.LeftShoulder, pose.LeftElbow, pose.LeftWrist, pose.LeftHip}
var rightSide = []pose.Landmark{pose.RightShoulder, pose.RightElbow, pose.RightWrist, pose.RightHip}
var faceMarks = []pose.Landmark{pose.Nose, pose.LeftEye, pose.RightEye}

// Detect classifies the recording viewpoint from landmark geometry:
// apparent shoulder width versus hip width and the left/right confidence
// asymmetry. Ambiguous sequences default to side-on.
func Detect(seq *pose.Sequence, cfg Config) Detection {
	if run := longestLowConfRun(seq, cfg); run > cfg.MaxLowConfRun {
		return Detection{Angle: Unknown, Confidence: 0, LowReliability: true}
	}

	var (
		shoulderSum float64
		shoulderN   int
		hipSum      float64
		hipN        int
		leftConf    float64
		rightConf   float64
		sideN       int
		faceConf    float64
		faceN       int
	)

	for i := range seq.Frames {
		f := &seq.Frames[i]
		if w, ok := pairWidth(f, pose.LeftShoulder, pose.RightShoulder, cfg); ok {
			shoulderSum += w
			shoulderN++
		}
		if w, ok := pairWidth(f, pose.LeftHip, pose.RightHip, cfg); ok {
			hipSum += w
			hipN++
		}
		if l, ok := meanConfidence(f, leftSide); ok {
			if r, ok2 := meanConfidence(f, rightSide); ok2 {
				leftConf += l
				rightConf += r
				sideN++
			}
		}
		if fc, ok := meanConfidence(f, faceMarks); ok {
			faceConf += fc
			faceN++
		}
	}

	if shoulderN == 0 || hipN == 0 || sideN == 0 || hipSum == 0 {
		// Not enough visible geometry to judge; fall back to the primary view.
		return Detection{Angle: SideOn, Confidence: 0.25}
	}

	// Scale-invariant: subject distance cancels out of the ratio.
	ratio := (shoulderSum / float64(shoulderN)) / (hipSum / float64(hipN))
	asym := math.Abs(leftConf-rightConf) / float64(sideN)

	if ratio < cfg.SideRatioMax || asym > cfg.SideAsymmetryMin {
		conf := 0.6
		if ratio < cfg.SideRatioMax && asym > cfg.SideAsymmetryMin {
			conf = 0.9
		} else if ratio < 1 {
			conf = 0.8
		}
		return Detection{Angle: SideOn, Confidence: conf}
	}

	facing := clamp(0.4+(ratio-cfg.SideRatioMax)/4, 0, 0.5)
	if faceN > 0 && faceConf/float64(faceN) >= cfg.FaceConfMin {
		return Detection{Angle: FrontOn, Confidence: clamp(0.4+facing, 0, 0.9)}
	}
	return Detection{Angle: BackOn, Confidence: clamp(0.3+facing, 0, 0.8)}
}

// longestLowConfRun returns the longest run of consecutive frames where
// fewer than half the landmarks clear the confidence threshold.
func longestLowConfRun(seq *pose.Sequence, cfg Config) int {
	longest, run := 0, 0
	for i := range seq.Frames {
		f := &seq.Frames[i]
		visible := 0
		for _, p := range f.Landmarks {
			if p.Confidence >= cfg.LandmarkConfThreshold {
				visible++
			}
		}
		if len(f.Landmarks) == 0 || visible*2 < len(f.Landmarks) {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 0
		}
	}
	return longest
}

// pairWidth returns the apparent horizontal width of a left/right
// landmark pair when both sides are confidently visible.
func pairWidth(f *pose.Frame, left, right pose.Landmark, cfg Config) (float64, bool) {
	if !f.Has(left, right) {
		return 0, false
	}
	l := f.Landmarks[left]
	r := f.Landmarks[right]
	if l.Confidence < cfg.LandmarkConfThreshold || r.Confidence < cfg.LandmarkConfThreshold {
		return 0, false
	}
	return math.Abs(l.X - r.X), true
}

func meanConfidence(f *pose.Frame, lms []pose.Landmark) (float64, bool) {
	var sum float64
	n := 0
	for _, lm := range lms {
		if p, ok := f.Landmarks[lm]; ok {
			sum += p.Confidence
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
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
