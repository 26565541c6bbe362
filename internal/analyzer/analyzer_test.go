package analyzer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fairwaylabs/swinglab/internal/inference"
	"github.com/fairwaylabs/swinglab/internal/pose"
	"github.com/fairwaylabs/swinglab/internal/testutil"
	"github.com/fairwaylabs/swinglab/pkg/models"
)

func newAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	model, err := inference.Load("../../model")
	if err != nil {
		t.Fatalf("Failed to load model: %v", err)
	}
	return New(model, 5*time.Second, 2000)
}

func TestAnalyze_OnPlane(t *testing.T) {
	a := newAnalyzer(t)
	req := testutil.SwingWith(testutil.Params{PlaneAngle: 45, SessionID: "session-1"})

	rep, err := a.Analyze(context.Background(), req)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if rep.PredictedLabel != "on_plane" {
		t.Errorf("Expected on_plane, got %s", rep.PredictedLabel)
	}
	if rep.Confidence < 0.9 {
		t.Errorf("Expected confidence >= 0.9, got %v", rep.Confidence)
	}
	if rep.SessionID != "session-1" {
		t.Errorf("Expected session id carried through, got %q", rep.SessionID)
	}
	if rep.CameraAngle != "side_on" {
		t.Errorf("Expected side_on camera, got %s", rep.CameraAngle)
	}
	if rep.FramesTotal != 61 || rep.FramesUsed != 61 {
		t.Errorf("Unexpected frame counts: %d/%d", rep.FramesUsed, rep.FramesTotal)
	}
	if len(rep.Recommendations) == 0 {
		t.Errorf("Expected recommendations")
	}

	stats := a.GetStats()
	if stats.Analyzed != 1 {
		t.Errorf("Expected 1 analyzed, got %d", stats.Analyzed)
	}
}

func TestAnalyze_TooSteepAndTooFlat(t *testing.T) {
	a := newAnalyzer(t)

	cases := []struct {
		angle float64
		want  string
	}{
		{62, "too_steep"},
		{28, "too_flat"},
	}
	for _, tc := range cases {
		rep, err := a.Analyze(context.Background(), testutil.Swing(tc.angle))
		if err != nil {
			t.Fatalf("Analyze(%v) failed: %v", tc.angle, err)
		}
		if rep.PredictedLabel != tc.want {
			t.Errorf("angle %v: expected %s, got %s", tc.angle, tc.want, rep.PredictedLabel)
		}
	}
}

func TestAnalyze_Deterministic(t *testing.T) {
	a := newAnalyzer(t)

	r1, err := a.Analyze(context.Background(), testutil.Swing(45))
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	r2, err := a.Analyze(context.Background(), testutil.Swing(45))
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if r1.PredictedLabel != r2.PredictedLabel || r1.Confidence != r2.Confidence {
		t.Errorf("Same input produced different classifications")
	}
	if len(r1.PriorityFlaws) != len(r2.PriorityFlaws) {
		t.Fatalf("Flaw counts differ: %d vs %d", len(r1.PriorityFlaws), len(r2.PriorityFlaws))
	}
	for i := range r1.PriorityFlaws {
		if r1.PriorityFlaws[i].Name != r2.PriorityFlaws[i].Name {
			t.Errorf("Flaw ranking differs at %d", i)
		}
	}
}

func TestAnalyze_RejectsShortSequence(t *testing.T) {
	a := newAnalyzer(t)

	req := testutil.Swing(45)
	req.Frames = req.Frames[:5]

	_, err := a.Analyze(context.Background(), req)
	var valErr *pose.ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}

	if stats := a.GetStats(); stats.Rejected != 1 {
		t.Errorf("Expected 1 rejected, got %d", stats.Rejected)
	}
}

func TestAnalyze_RejectsEmptyRequest(t *testing.T) {
	a := newAnalyzer(t)

	_, err := a.Analyze(context.Background(), &models.AnalyzeRequest{})
	var valErr *pose.ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
}

func TestAnalyze_RejectsOversizedSequence(t *testing.T) {
	model, err := inference.Load("../../model")
	if err != nil {
		t.Fatalf("Failed to load model: %v", err)
	}
	a := New(model, 5*time.Second, 30)

	// The fixture's 61 frames exceed the configured cap.
	_, err = a.Analyze(context.Background(), testutil.Swing(45))
	var valErr *pose.ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}

	if stats := a.GetStats(); stats.Rejected != 1 {
		t.Errorf("Expected 1 rejected, got %d", stats.Rejected)
	}
}

func TestAnalyze_CanceledContextIsNotATimeout(t *testing.T) {
	a := newAnalyzer(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.Analyze(ctx, testutil.Swing(45))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}

	stats := a.GetStats()
	if stats.Canceled != 1 {
		t.Errorf("Expected 1 canceled, got %d", stats.Canceled)
	}
	if stats.Timeouts != 0 {
		t.Errorf("Caller abort must not count as a timeout, got %d", stats.Timeouts)
	}
}

func TestAnalyze_BudgetExceeded(t *testing.T) {
	model, err := inference.Load("../../model")
	if err != nil {
		t.Fatalf("Failed to load model: %v", err)
	}
	a := New(model, time.Nanosecond, 2000)

	// The deadline expires before extraction finishes.
	time.Sleep(time.Millisecond)

	_, err = a.Analyze(context.Background(), testutil.Swing(45))
	if err == nil {
		t.Fatalf("Expected an error with a nanosecond budget")
	}
	if !errors.Is(err, ErrBudgetExceeded) && !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Expected budget error, got %v", err)
	}

	if stats := a.GetStats(); stats.Timeouts != 1 {
		t.Errorf("Expected 1 timeout, got %d", stats.Timeouts)
	}
}

func TestAnalyze_HandednessPassedThrough(t *testing.T) {
	a := newAnalyzer(t)

	rep, err := a.Analyze(context.Background(), testutil.SwingWith(testutil.Params{
		PlaneAngle: 45,
		Handedness: "left",
	}))
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if rep.PredictedLabel != "on_plane" {
		t.Errorf("Expected on_plane for left-handed fixture, got %s", rep.PredictedLabel)
	}
}
