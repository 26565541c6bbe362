package models

import (
	"errors"
	"time"
)

// LandmarkPoint is a single pose landmark as produced by the upstream
// pose estimator: coordinates normalized to [0,1] relative to the frame,
// optional depth, and per-landmark confidence in [0,1].
type LandmarkPoint struct {
	X          float64  `json:"x"`
	Y          float64  `json:"y"`
	Z          *float64 `json:"z,omitempty"`
	Confidence float64  `json:"confidence"`
}

// PoseFrame is one frame of the uploaded pose sequence.
type PoseFrame struct {
	Index     int                      `json:"index"`
	Landmarks map[string]LandmarkPoint `json:"landmarks"`
}

// AnalyzeRequest is the body of POST /api/swings/analyze.
type AnalyzeRequest struct {
	SessionID  string      `json:"session_id,omitempty"`
	Handedness string      `json:"handedness,omitempty"` // "right" (default) or "left"
	Frames     []PoseFrame `json:"frames"`
}

// PriorityFlaw is one ranked biomechanical deviation in the report.
type PriorityFlaw struct {
	Priority    int      `json:"priority"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Features    []string `json:"features"`
	Severity    string   `json:"severity"` // critical, major, minor, pass
	Result      string   `json:"result"`   // Pass or Improve
	Measured    float64  `json:"measured"`
	IdealMin    float64  `json:"ideal_min"`
	IdealMax    float64  `json:"ideal_max"`
	Deviation   float64  `json:"deviation"`
	FrameRefs   []int    `json:"frame_refs,omitempty"`
}

// SwingAnalysisReport is the full analysis response.
type SwingAnalysisReport struct {
	AnalysisID      string             `json:"analysis_id"`
	SessionID       string             `json:"session_id,omitempty"`
	PredictedLabel  string             `json:"predicted_label"`
	Confidence      float64            `json:"confidence"`
	ConfidenceGap   float64            `json:"confidence_gap"`
	AllProbs        map[string]float64 `json:"all_probabilities"`
	Insight         string             `json:"insight"`
	CameraAngle     string             `json:"camera_angle"`
	AngleConfidence float64            `json:"angle_confidence"`
	LowReliability  bool               `json:"low_reliability,omitempty"`
	PriorityFlaws   []PriorityFlaw     `json:"priority_flaws"`
	Recommendations []string           `json:"recommendations"`
	FramesTotal     int                `json:"frames_total"`
	FramesUsed      int                `json:"frames_used"`
	CreatedAt       time.Time          `json:"created_at"`
}

// SavedSwing is the persisted form of a report plus the save decision metadata.
type SavedSwing struct {
	AnalysisID string              `json:"analysis_id"`
	SessionID  string              `json:"session_id,omitempty"`
	Report     SwingAnalysisReport `json:"report"`
	Notes      string              `json:"notes,omitempty"`
	SavedAt    time.Time           `json:"saved_at"`
}

// SaveRequest is the body of POST /api/swings/{id}/save.
type SaveRequest struct {
	Notes string `json:"notes,omitempty"`
}

// ErrorResponse is the JSON error body returned by all handlers.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

var (
	ErrReportNotFound = errors.New("report not found")
	ErrReportExpired  = errors.New("report expired")
)
