package features

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/fairwaylabs/swinglab/internal/pose"
	"github.com/fairwaylabs/swinglab/internal/testutil"
	"github.com/fairwaylabs/swinglab/pkg/models"
)

func extract(t *testing.T, req *models.AnalyzeRequest) (*Vector, *Phases, *Quality) {
	t.Helper()
	seq, err := pose.FromRequest(req)
	if err != nil {
		t.Fatalf("fixture invalid: %v", err)
	}
	opts := DefaultOptions()
	if req.Handedness != "" {
		opts.Handedness = req.Handedness
	}
	v, phases, quality, err := Extract(context.Background(), seq, opts)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	return v, phases, quality
}

func TestExtract_PlaneAngle(t *testing.T) {
	for _, angle := range []float64{28, 45, 62} {
		v, _, _ := extract(t, testutil.Swing(angle))

		if got := v[PlaneAngleMean]; math.Abs(got-angle) > 1e-6 {
			t.Errorf("angle %v: plane_angle_mean = %v", angle, got)
		}
		if got := v[PlaneAngleRange]; math.Abs(got) > 1e-6 {
			t.Errorf("angle %v: expected zero plane_angle_range, got %v", angle, got)
		}
	}
}

func TestExtract_PhasesAndTempo(t *testing.T) {
	v, phases, quality := extract(t, testutil.Swing(45))

	if phases.AddressFrame != 0 {
		t.Errorf("Expected address frame 0, got %d", phases.AddressFrame)
	}
	if phases.TopFrame != 45 {
		t.Errorf("Expected top frame 45, got %d", phases.TopFrame)
	}
	if phases.ImpactFrame != 60 {
		t.Errorf("Expected impact frame 60, got %d", phases.ImpactFrame)
	}

	if got := v[BackswingFrames]; got != 45 {
		t.Errorf("Expected 45 backswing frames, got %v", got)
	}
	if got := v[DownswingFrames]; got != 15 {
		t.Errorf("Expected 15 downswing frames, got %v", got)
	}
	if got := v[TempoRatio]; math.Abs(got-3.0) > 1e-9 {
		t.Errorf("Expected tempo 3.0, got %v", got)
	}

	if quality.FramesTotal != 61 || quality.FramesUsed != 61 || quality.FramesSkipped != 0 {
		t.Errorf("Unexpected quality: %+v", quality)
	}
}

func TestExtract_CleanSwingBiomechanics(t *testing.T) {
	v, _, _ := extract(t, testutil.Swing(45))

	if got := v[LeadArmBendMean]; math.Abs(got) > 1e-6 {
		t.Errorf("Straight lead arm should have zero bend, got %v", got)
	}
	if got := v[HeadDriftRange]; math.Abs(got) > 1e-9 {
		t.Errorf("Static head should have zero drift, got %v", got)
	}
	if got := v[HipSwayVariance]; math.Abs(got) > 1e-12 {
		t.Errorf("Centered hip rotation should have zero sway, got %v", got)
	}
	if got := v[SpineAngleStd]; math.Abs(got) > 1e-6 {
		t.Errorf("Constant spine tilt should have zero std, got %v", got)
	}
	if got := v[SpineAngleMean]; math.Abs(got-30) > 0.1 {
		t.Errorf("Expected ~30 degree spine tilt, got %v", got)
	}
	if got := v[XFactorTop]; math.Abs(got-30) > 0.5 {
		t.Errorf("Expected x-factor ~30 at the top, got %v", got)
	}
}

func TestExtract_Deterministic(t *testing.T) {
	v1, _, _ := extract(t, testutil.Swing(45))
	v2, _, _ := extract(t, testutil.Swing(45))

	for i := range v1 {
		if v1[i] != v2[i] {
			t.Errorf("Feature %s differs between runs: %v vs %v", Names[i], v1[i], v2[i])
		}
	}
}

func TestExtract_AllFinite(t *testing.T) {
	v, _, _ := extract(t, testutil.Swing(45))
	for i := range v {
		if math.IsNaN(v[i]) || math.IsInf(v[i], 0) {
			t.Errorf("Feature %s is not finite: %v", Names[i], v[i])
		}
	}
}

func TestExtract_LeftHandedUsesRightArm(t *testing.T) {
	req := testutil.SwingWith(testutil.Params{PlaneAngle: 45, Handedness: "left"})
	v, _, _ := extract(t, req)

	// The trail arm mirrors the lead arm in the fixture, so the plane
	// angle is the same from either side.
	if got := v[PlaneAngleMean]; math.Abs(got-45) > 1e-6 {
		t.Errorf("Expected plane angle 45 for left-handed swing, got %v", got)
	}
}

func TestExtract_SkipsFramesMissingLandmarks(t *testing.T) {
	req := testutil.Swing(45)
	testutil.DropLandmark(req, "left_hip", 10, 20, 30)

	_, _, quality := extract(t, req)
	if quality.FramesSkipped != 3 {
		t.Errorf("Expected 3 skipped frames, got %d", quality.FramesSkipped)
	}
	if quality.FramesUsed != 58 {
		t.Errorf("Expected 58 usable frames, got %d", quality.FramesUsed)
	}
}

func TestExtract_TooFewUsableFrames(t *testing.T) {
	req := testutil.Swing(45)
	positions := make([]int, 0, 55)
	for i := 0; i < 55; i++ {
		positions = append(positions, i)
	}
	testutil.DropLandmark(req, "nose", positions...)

	seq, err := pose.FromRequest(req)
	if err != nil {
		t.Fatalf("fixture invalid: %v", err)
	}

	_, _, _, err = Extract(context.Background(), seq, DefaultOptions())
	var valErr *pose.ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("Expected ValidationError for too few usable frames, got %v", err)
	}
}

func TestExtract_StaticSequenceIsDegenerate(t *testing.T) {
	req := testutil.Swing(45)
	for i := range req.Frames {
		req.Frames[i].Landmarks = req.Frames[0].Landmarks
	}

	seq, err := pose.FromRequest(req)
	if err != nil {
		t.Fatalf("fixture invalid: %v", err)
	}

	_, _, _, err = Extract(context.Background(), seq, DefaultOptions())
	var degenErr *DegenerateError
	if !errors.As(err, &degenErr) {
		t.Fatalf("Expected DegenerateError for motionless sequence, got %v", err)
	}
}

func TestExtract_CancelledContext(t *testing.T) {
	seq, err := pose.FromRequest(testutil.Swing(45))
	if err != nil {
		t.Fatalf("fixture invalid: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, _, err = Extract(ctx, seq, DefaultOptions())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
}
