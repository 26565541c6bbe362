package features

// The fixed 31-feature physics vector. Order is part of the model
// contract: scaler parameters and classifier weights are indexed by
// these positions.

const NumFeatures = 31

// Feature indices, grouped by category.
const (
	// Swing plane (angle between the lead shoulder->wrist club-proxy
	// vector and vertical, degrees).
	PlaneAngleMean = iota
	PlaneAngleMax
	PlaneAngleMin
	PlaneAngleStd
	PlaneAngleRange
	PlaneAngleAddress
	PlaneAngleTop
	PlaneAngleImpact

	// Body rotation (line angles relative to the address baseline, degrees).
	ShoulderRotationRange
	ShoulderRotationMax
	HipRotationRange
	HipRotationMax
	XFactorMax
	XFactorTop
	SpineAngleMean
	SpineAngleStd
	RotationLagMean

	// Arm / club path.
	ClubPathLength
	ClubPathJerkVar
	ClubArcWidth
	ClubArcHeight
	LeadArmBendMean
	LeadArmBendMax
	WristSpeedMax

	// Tempo & balance.
	BackswingFrames
	DownswingFrames
	TempoRatio
	TopPositionNorm
	ImpactPositionNorm
	HipSwayVariance
	HeadDriftRange
)

// Names maps feature index to its canonical name, used in reports and
// model artifacts.
var Names = [NumFeatures]string{
	"plane_angle_mean",
	"plane_angle_max",
	"plane_angle_min",
	"plane_angle_std",
	"plane_angle_range",
	"plane_angle_address",
	"plane_angle_top",
	"plane_angle_impact",
	"shoulder_rotation_range",
	"shoulder_rotation_max",
	"hip_rotation_range",
	"hip_rotation_max",
	"x_factor_max",
	"x_factor_top",
	"spine_angle_mean",
	"spine_angle_std",
	"rotation_lag_mean",
	"club_path_length",
	"club_path_jerk_var",
	"club_arc_width",
	"club_arc_height",
	"lead_arm_bend_mean",
	"lead_arm_bend_max",
	"wrist_speed_max",
	"backswing_frames",
	"downswing_frames",
	"tempo_ratio",
	"top_position_norm",
	"impact_position_norm",
	"hip_sway_variance",
	"head_drift_range",
}

// Vector is the extracted feature vector.
type Vector [NumFeatures]float64

// Named returns the vector keyed by feature name.
func (v *Vector) Named() map[string]float64 {
	out := make(map[string]float64, NumFeatures)
	for i, name := range Names {
		out[name] = v[i]
	}
	return out
}

// Phases holds the detected swing phase frames, referenced by the
// original frame indices of the input sequence.
type Phases struct {
	AddressFrame int
	TopFrame     int
	ImpactFrame  int
}

// Quality is the frame-quality diagnostic: how much of the sequence was
// usable for trend statistics.
type Quality struct {
	FramesTotal   int
	FramesUsed    int
	FramesSkipped int
}
