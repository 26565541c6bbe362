package report

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/fairwaylabs/swinglab/internal/camera"
	"github.com/fairwaylabs/swinglab/internal/features"
	"github.com/fairwaylabs/swinglab/internal/inference"
	"github.com/fairwaylabs/swinglab/internal/insight"
	"github.com/fairwaylabs/swinglab/pkg/models"
)

// probSumTolerance bounds how far the probability mass may drift from 1.
const probSumTolerance = 1e-6

// AssemblyError reports an internal invariant violation while composing
// the report. It is surfaced as a 5xx and never silently degraded into a
// best-effort report.
type AssemblyError struct {
	Reason string
}

func (e *AssemblyError) Error() string {
	return "report assembly failed: " + e.Reason
}

// Input carries everything the assembler composes into a report.
type Input struct {
	SessionID       string
	Classification  *inference.Result
	Flaws           []insight.Flaw
	Recommendations []string
	Detection       camera.Detection
	Quality         *features.Quality
}

// Assemble composes the final SwingAnalysisReport and enforces the
// output invariants: probabilities summing to 1, confidences in [0,1]
// and a properly ranked flaw list.
func Assemble(in Input) (*models.SwingAnalysisReport, error) {
	cls := in.Classification
	if cls == nil {
		return nil, &AssemblyError{Reason: "missing classification result"}
	}

	sum := 0.0
	for label, p := range cls.Probabilities {
		if p < 0 || p > 1 || math.IsNaN(p) {
			return nil, &AssemblyError{Reason: fmt.Sprintf("probability for %q out of [0,1]", label)}
		}
		sum += p
	}
	if math.Abs(sum-1) > probSumTolerance {
		return nil, &AssemblyError{Reason: fmt.Sprintf("probabilities sum to %v", sum)}
	}
	if cls.Confidence < 0 || cls.Confidence > 1 {
		return nil, &AssemblyError{Reason: "confidence out of [0,1]"}
	}
	if cls.ConfidenceGap < 0 {
		return nil, &AssemblyError{Reason: "negative confidence gap"}
	}
	if in.Detection.Confidence < 0 || in.Detection.Confidence > 1 {
		return nil, &AssemblyError{Reason: "camera angle confidence out of [0,1]"}
	}

	flaws := make([]models.PriorityFlaw, 0, len(in.Flaws))
	prevRank := math.MaxInt32
	prevDev := math.Inf(1)
	prevName := ""
	for i, f := range in.Flaws {
		rank := severityRank(f.Severity)
		if rank > prevRank ||
			(rank == prevRank && f.Deviation > prevDev) ||
			(rank == prevRank && f.Deviation == prevDev && f.Name < prevName) {
			return nil, &AssemblyError{Reason: fmt.Sprintf("flaw list unsorted at position %d", i)}
		}
		prevRank, prevDev, prevName = rank, f.Deviation, f.Name

		flaws = append(flaws, models.PriorityFlaw{
			Priority:    f.Priority,
			Name:        f.Name,
			Description: f.Description,
			Features:    f.Features,
			Severity:    string(f.Severity),
			Result:      f.Result,
			Measured:    f.Measured,
			IdealMin:    f.IdealMin,
			IdealMax:    f.IdealMax,
			Deviation:   f.Deviation,
			FrameRefs:   f.FrameRefs,
		})
	}

	rep := &models.SwingAnalysisReport{
		AnalysisID:      uuid.New().String(),
		SessionID:       in.SessionID,
		PredictedLabel:  cls.Label,
		Confidence:      cls.Confidence,
		ConfidenceGap:   cls.ConfidenceGap,
		AllProbs:        cls.Probabilities,
		Insight:         insightText(cls, in.Flaws),
		CameraAngle:     string(in.Detection.Angle),
		AngleConfidence: in.Detection.Confidence,
		LowReliability:  in.Detection.LowReliability,
		PriorityFlaws:   flaws,
		Recommendations: in.Recommendations,
		CreatedAt:       time.Now().UTC(),
	}
	if in.Quality != nil {
		rep.FramesTotal = in.Quality.FramesTotal
		rep.FramesUsed = in.Quality.FramesUsed
	}
	return rep, nil
}

func severityRank(s insight.Severity) int {
	switch s {
	case insight.SeverityCritical:
		return 3
	case insight.SeverityMajor:
		return 2
	case insight.SeverityMinor:
		return 1
	default:
		return 0
	}
}

// insightText composes the deterministic physics-insight sentence from
// the classification and the top-ranked flaw.
func insightText(cls *inference.Result, flaws []insight.Flaw) string {
	base := map[string]string{
		"on_plane":  "Swing plane is on target",
		"too_steep": "Swing plane is steeper than the ideal 35-55 degree band",
		"too_flat":  "Swing plane is flatter than the ideal 35-55 degree band",
	}[cls.Label]
	if base == "" {
		base = "Swing plane classified as " + cls.Label
	}

	for _, f := range flaws {
		if f.Severity != insight.SeverityPass {
			return fmt.Sprintf("%s (confidence %.0f%%). Top issue: %s.",
				base, cls.Confidence*100, f.Description)
		}
	}
	return fmt.Sprintf("%s (confidence %.0f%%). No significant flaws detected.", base, cls.Confidence*100)
}
