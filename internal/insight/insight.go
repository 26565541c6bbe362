package insight

import (
	"fmt"
	"sort"

	"github.com/fairwaylabs/swinglab/internal/features"
)

// Severity grades how far a measured value sits outside its ideal range.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityMajor    Severity = "major"
	SeverityMinor    Severity = "minor"
	SeverityPass     Severity = "pass"
)

// severityRank orders severities for the deterministic flaw ranking.
var severityRank = map[Severity]int{
	SeverityCritical: 3,
	SeverityMajor:    2,
	SeverityMinor:    1,
	SeverityPass:     0,
}

// Flaw is one evaluated biomechanical dimension.
type Flaw struct {
	Priority    int
	Name        string
	Description string
	Features    []string
	Severity    Severity
	Result      string // "Pass" or "Improve"
	Measured    float64
	IdealMin    float64
	IdealMax    float64
	Deviation   float64
	FrameRefs   []int
}

// frameRef selects which detected phase frames a dimension points at.
type frameRef int

const (
	refNone frameRef = iota
	refTop
	refImpact
	refTopImpact
)

// dimension is one monitored biomechanical quantity with its ideal range
// and tolerance. Severity: critical when the deviation beyond the range
// exceeds 2x tolerance, major when it exceeds 1x, minor otherwise.
type dimension struct {
	name     string
	feature  int
	idealMin float64
	idealMax float64
	tol      float64
	unit     string
	ref      frameRef
}

// Monitored dimensions and their published ideal ranges. The on-plane
// band (35-55 degrees) is the authoritative contract for the swing-plane
// dimension.
var dimensions = []dimension{
	{name: "swing_plane_deviation", feature: features.PlaneAngleMean, idealMin: 35, idealMax: 55, tol: 10, unit: "deg", ref: refTopImpact},
	{name: "lead_arm_bend", feature: features.LeadArmBendMean, idealMin: 0, idealMax: 25, tol: 12.5, unit: "deg", ref: refTop},
	{name: "spine_angle_stability", feature: features.SpineAngleStd, idealMin: 0, idealMax: 5, tol: 4, unit: "deg", ref: refNone},
	{name: "head_movement", feature: features.HeadDriftRange, idealMin: 0, idealMax: 0.05, tol: 0.04, unit: "frame-width", ref: refNone},
	{name: "hip_rotation_timing", feature: features.XFactorTop, idealMin: 15, idealMax: 45, tol: 15, unit: "deg", ref: refTop},
	{name: "tempo", feature: features.TempoRatio, idealMin: 2.5, idealMax: 3.5, tol: 0.5, unit: "ratio", ref: refTopImpact},
	{name: "balance", feature: features.HipSwayVariance, idealMin: 0, idealMax: 0.002, tol: 0.002, unit: "variance", ref: refImpact},
}

// Evaluate grades every monitored dimension against its ideal range and
// returns the flaws ranked by (severity desc, deviation desc, name asc).
// The order is a total order: identical input always yields the same
// ranking.
func Evaluate(v *features.Vector, phases *features.Phases) []Flaw {
	flaws := make([]Flaw, 0, len(dimensions))
	for _, d := range dimensions {
		measured := v[d.feature]
		deviation := 0.0
		if measured < d.idealMin {
			deviation = d.idealMin - measured
		} else if measured > d.idealMax {
			deviation = measured - d.idealMax
		}

		sev := SeverityPass
		switch {
		case deviation > 2*d.tol:
			sev = SeverityCritical
		case deviation > d.tol:
			sev = SeverityMajor
		case deviation > 0:
			sev = SeverityMinor
		}

		result := "Pass"
		if sev != SeverityPass {
			result = "Improve"
		}

		flaws = append(flaws, Flaw{
			Name:        d.name,
			Description: describe(d, measured, sev),
			Features:    []string{features.Names[d.feature]},
			Severity:    sev,
			Result:      result,
			Measured:    measured,
			IdealMin:    d.idealMin,
			IdealMax:    d.idealMax,
			Deviation:   deviation,
			FrameRefs:   frameRefs(d.ref, phases),
		})
	}

	sort.SliceStable(flaws, func(i, j int) bool {
		ri, rj := severityRank[flaws[i].Severity], severityRank[flaws[j].Severity]
		if ri != rj {
			return ri > rj
		}
		if flaws[i].Deviation != flaws[j].Deviation {
			return flaws[i].Deviation > flaws[j].Deviation
		}
		return flaws[i].Name < flaws[j].Name
	})
	for i := range flaws {
		flaws[i].Priority = i + 1
	}
	return flaws
}

func frameRefs(ref frameRef, phases *features.Phases) []int {
	if phases == nil {
		return nil
	}
	switch ref {
	case refTop:
		return []int{phases.TopFrame}
	case refImpact:
		return []int{phases.ImpactFrame}
	case refTopImpact:
		return []int{phases.TopFrame, phases.ImpactFrame}
	default:
		return nil
	}
}

func describe(d dimension, measured float64, sev Severity) string {
	if sev == SeverityPass {
		return fmt.Sprintf("%s within ideal range %.3g-%.3g %s (measured %.3g)",
			d.name, d.idealMin, d.idealMax, d.unit, measured)
	}
	side := "above"
	bound := d.idealMax
	if measured < d.idealMin {
		side = "below"
		bound = d.idealMin
	}
	return fmt.Sprintf("%s is %.3g %s, %s the ideal bound %.3g",
		d.name, measured, d.unit, side, bound)
}
