package report

import (
	"errors"
	"testing"

	"github.com/fairwaylabs/swinglab/internal/camera"
	"github.com/fairwaylabs/swinglab/internal/features"
	"github.com/fairwaylabs/swinglab/internal/inference"
	"github.com/fairwaylabs/swinglab/internal/insight"
)

func validInput() Input {
	return Input{
		SessionID: "session-1",
		Classification: &inference.Result{
			Label:         "on_plane",
			Confidence:    0.96,
			ConfidenceGap: 0.94,
			Probabilities: map[string]float64{
				"on_plane":  0.96,
				"too_steep": 0.02,
				"too_flat":  0.02,
			},
		},
		Flaws: []insight.Flaw{
			{Priority: 1, Name: "tempo", Severity: insight.SeverityMajor, Result: "Improve", Deviation: 1.2},
			{Priority: 2, Name: "balance", Severity: insight.SeverityMinor, Result: "Improve", Deviation: 0.001},
			{Priority: 3, Name: "head_movement", Severity: insight.SeverityPass, Result: "Pass"},
		},
		Recommendations: []string{"Smooth the transition."},
		Detection:       camera.Detection{Angle: camera.SideOn, Confidence: 0.8},
		Quality:         &features.Quality{FramesTotal: 61, FramesUsed: 61},
	}
}

func TestAssemble_Valid(t *testing.T) {
	rep, err := Assemble(validInput())
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}

	if rep.AnalysisID == "" {
		t.Errorf("Expected a generated analysis id")
	}
	if rep.PredictedLabel != "on_plane" {
		t.Errorf("Expected on_plane, got %s", rep.PredictedLabel)
	}
	if rep.CameraAngle != "side_on" {
		t.Errorf("Expected side_on, got %s", rep.CameraAngle)
	}
	if rep.FramesTotal != 61 || rep.FramesUsed != 61 {
		t.Errorf("Unexpected frame counts: %d/%d", rep.FramesUsed, rep.FramesTotal)
	}
	if len(rep.PriorityFlaws) != 3 {
		t.Errorf("Expected 3 flaws, got %d", len(rep.PriorityFlaws))
	}
	if rep.Insight == "" {
		t.Errorf("Expected a non-empty insight sentence")
	}
	if rep.CreatedAt.IsZero() {
		t.Errorf("Expected created_at to be set")
	}
}

func TestAssemble_UniqueAnalysisIDs(t *testing.T) {
	a, err := Assemble(validInput())
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	b, err := Assemble(validInput())
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	if a.AnalysisID == b.AnalysisID {
		t.Errorf("Expected distinct analysis ids, both are %s", a.AnalysisID)
	}
}

func TestAssemble_MissingClassification(t *testing.T) {
	in := validInput()
	in.Classification = nil

	_, err := Assemble(in)
	var asmErr *AssemblyError
	if !errors.As(err, &asmErr) {
		t.Fatalf("Expected AssemblyError, got %v", err)
	}
}

func TestAssemble_TamperedProbabilities(t *testing.T) {
	in := validInput()
	in.Classification.Probabilities["on_plane"] = 0.5 // sum now 0.54

	_, err := Assemble(in)
	var asmErr *AssemblyError
	if !errors.As(err, &asmErr) {
		t.Fatalf("Expected AssemblyError for bad probability sum, got %v", err)
	}
}

func TestAssemble_ProbabilityOutOfRange(t *testing.T) {
	in := validInput()
	in.Classification.Probabilities["on_plane"] = 1.2
	in.Classification.Probabilities["too_steep"] = -0.2

	_, err := Assemble(in)
	var asmErr *AssemblyError
	if !errors.As(err, &asmErr) {
		t.Fatalf("Expected AssemblyError for probability out of range, got %v", err)
	}
}

func TestAssemble_ConfidenceOutOfRange(t *testing.T) {
	in := validInput()
	in.Classification.Confidence = 1.5

	_, err := Assemble(in)
	var asmErr *AssemblyError
	if !errors.As(err, &asmErr) {
		t.Fatalf("Expected AssemblyError for confidence out of range, got %v", err)
	}
}

func TestAssemble_UnsortedFlaws(t *testing.T) {
	in := validInput()
	// Swap so a minor flaw precedes a major one.
	in.Flaws[0], in.Flaws[1] = in.Flaws[1], in.Flaws[0]

	_, err := Assemble(in)
	var asmErr *AssemblyError
	if !errors.As(err, &asmErr) {
		t.Fatalf("Expected AssemblyError for unsorted flaws, got %v", err)
	}
}

func TestAssemble_InsightNamesTopIssue(t *testing.T) {
	rep, err := Assemble(validInput())
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	if rep.Insight == "" {
		t.Fatalf("Expected insight text")
	}

	// Identical input yields identical text (modulo the generated id).
	rep2, err := Assemble(validInput())
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	if rep.Insight != rep2.Insight {
		t.Errorf("Insight text not deterministic: %q vs %q", rep.Insight, rep2.Insight)
	}
}
