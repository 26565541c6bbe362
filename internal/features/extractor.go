package features

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/fairwaylabs/swinglab/internal/pose"
)

// Options configures extraction.
type Options struct {
	// Handedness selects the lead arm: "right" (default, lead arm is the
	// left arm) or "left".
	Handedness string
	// ProxyExtension extends the shoulder->wrist vector beyond the wrist
	// to approximate the club head position.
	ProxyExtension float64
}

// DefaultOptions returns the standard extraction settings.
func DefaultOptions() Options {
	return Options{Handedness: "right", ProxyExtension: 0.6}
}

// DegenerateError reports input that passed shape validation but cannot
// produce a meaningful feature vector (no visible swing motion,
// coincident landmarks, and so on). Extraction fails explicitly rather
// than letting NaN propagate into the classifier.
type DegenerateError struct {
	Reason string
}

func (e *DegenerateError) Error() string {
	return "degenerate pose sequence: " + e.Reason
}

type point2 struct{ X, Y float64 }

func dist(a, b point2) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Extract computes the 31-feature physics vector from a validated pose
// sequence. It is pure and deterministic: the same sequence always yields
// the same vector. The frame loop honors ctx cancellation so an aborted
// request stops burning CPU; partial results are never returned.
func Extract(ctx context.Context, seq *pose.Sequence, opts Options) (*Vector, *Phases, *Quality, error) {
	if seq.Len() < pose.MinFrames {
		return nil, nil, nil, &pose.ValidationError{
			Reason: fmt.Sprintf("sequence has %d frames, minimum is %d", seq.Len(), pose.MinFrames),
		}
	}
	if opts.ProxyExtension == 0 {
		opts.ProxyExtension = DefaultOptions().ProxyExtension
	}

	leadShoulder, leadElbow, leadWrist := leadArm(opts.Handedness)

	quality := &Quality{FramesTotal: seq.Len()}

	// Per-frame series over usable frames. A frame missing any required
	// landmark is excluded from trend statistics but still counted in the
	// quality diagnostic.
	var (
		frameIdx   []int // original frame indices of usable frames
		planeAngle []float64
		shoulderRot []float64
		hipRot     []float64
		spineAngle []float64
		armBend    []float64
		proxyPts   []point2
		wristPts   []point2
		nosePts    []point2
		midHipX    []float64
	)

	var baseShoulder, baseHip float64
	haveBase := false

	for i := range seq.Frames {
		if err := ctx.Err(); err != nil {
			return nil, nil, nil, fmt.Errorf("extraction cancelled at frame %d: %w", i, err)
		}

		f := &seq.Frames[i]
		if !f.Has(pose.Required...) {
			quality.FramesSkipped++
			continue
		}

		ls := f.Landmarks[leadShoulder]
		le := f.Landmarks[leadElbow]
		lw := f.Landmarks[leadWrist]
		shL := f.Landmarks[pose.LeftShoulder]
		shR := f.Landmarks[pose.RightShoulder]
		hpL := f.Landmarks[pose.LeftHip]
		hpR := f.Landmarks[pose.RightHip]
		nose := f.Landmarks[pose.Nose]

		// Club-proxy vector: shoulder->wrist, extended past the wrist.
		dx, dy := lw.X-ls.X, lw.Y-ls.Y
		armLen := math.Hypot(dx, dy)
		if armLen < 1e-9 {
			return nil, nil, nil, &DegenerateError{
				Reason: fmt.Sprintf("frame %d: lead wrist coincides with lead shoulder", f.Index),
			}
		}
		planeAngle = append(planeAngle, angleFromVerticalDeg(dx, dy))

		proxyPts = append(proxyPts, point2{
			X: lw.X + dx*opts.ProxyExtension,
			Y: lw.Y + dy*opts.ProxyExtension,
		})
		wristPts = append(wristPts, point2{X: lw.X, Y: lw.Y})
		nosePts = append(nosePts, point2{X: nose.X, Y: nose.Y})

		shAngle := lineAngleDeg(shL.X, shL.Y, shR.X, shR.Y)
		hpAngle := lineAngleDeg(hpL.X, hpL.Y, hpR.X, hpR.Y)
		if !haveBase {
			baseShoulder, baseHip = shAngle, hpAngle
			haveBase = true
		}
		shoulderRot = append(shoulderRot, angleDiffDeg(shAngle, baseShoulder))
		hipRot = append(hipRot, angleDiffDeg(hpAngle, baseHip))

		msX, msY := (shL.X+shR.X)/2, (shL.Y+shR.Y)/2
		mhX, mhY := (hpL.X+hpR.X)/2, (hpL.Y+hpR.Y)/2
		spineAngle = append(spineAngle, angleFromVerticalDeg(msX-mhX, -(msY-mhY)))
		midHipX = append(midHipX, mhX)

		armBend = append(armBend, elbowBendDeg(ls, le, lw))

		frameIdx = append(frameIdx, f.Index)
	}

	quality.FramesUsed = len(frameIdx)
	if quality.FramesUsed < pose.MinFrames {
		return nil, nil, nil, &pose.ValidationError{
			Reason: fmt.Sprintf("only %d of %d frames carry all required landmarks, minimum is %d",
				quality.FramesUsed, quality.FramesTotal, pose.MinFrames),
		}
	}

	// Wrist speed per step; speed[i] is the motion arriving at usable
	// frame i+1.
	speeds := make([]float64, len(wristPts)-1)
	for i := 1; i < len(wristPts); i++ {
		speeds[i-1] = dist(wristPts[i], wristPts[i-1])
	}

	// Top of backswing: the proxy's maximum displacement from its address
	// position (the velocity zero crossing). Impact: the wrist speed peak
	// after the top.
	top := 0
	maxDisp := 0.0
	for i, p := range proxyPts {
		if d := dist(p, proxyPts[0]); d > maxDisp {
			maxDisp = d
			top = i
		}
	}
	if top == 0 || top == len(proxyPts)-1 {
		return nil, nil, nil, &DegenerateError{Reason: "no distinct backswing and downswing detected"}
	}

	impact := top + 1
	maxSpeed := -1.0
	for i := top; i < len(speeds); i++ {
		if speeds[i] > maxSpeed {
			maxSpeed = speeds[i]
			impact = i + 1
		}
	}
	if maxSpeed <= 0 {
		return nil, nil, nil, &DegenerateError{Reason: "no downswing motion after top of backswing"}
	}

	phases := &Phases{
		AddressFrame: frameIdx[0],
		TopFrame:     frameIdx[top],
		ImpactFrame:  frameIdx[impact],
	}

	var v Vector

	v[PlaneAngleMean] = stat.Mean(planeAngle, nil)
	v[PlaneAngleMax] = sliceMax(planeAngle)
	v[PlaneAngleMin] = sliceMin(planeAngle)
	v[PlaneAngleStd] = safeStdDev(planeAngle)
	v[PlaneAngleRange] = v[PlaneAngleMax] - v[PlaneAngleMin]
	v[PlaneAngleAddress] = planeAngle[0]
	v[PlaneAngleTop] = planeAngle[top]
	v[PlaneAngleImpact] = planeAngle[impact]

	v[ShoulderRotationRange] = sliceMax(shoulderRot) - sliceMin(shoulderRot)
	v[ShoulderRotationMax] = sliceMax(shoulderRot)
	v[HipRotationRange] = sliceMax(hipRot) - sliceMin(hipRot)
	v[HipRotationMax] = sliceMax(hipRot)

	xFactor := make([]float64, len(shoulderRot))
	lagSum := 0.0
	for i := range shoulderRot {
		xFactor[i] = shoulderRot[i] - hipRot[i]
		lagSum += math.Abs(xFactor[i])
	}
	v[XFactorMax] = sliceMax(xFactor)
	v[XFactorTop] = xFactor[top]
	v[RotationLagMean] = lagSum / float64(len(xFactor))

	v[SpineAngleMean] = stat.Mean(spineAngle, nil)
	v[SpineAngleStd] = safeStdDev(spineAngle)

	pathLen := 0.0
	for i := 1; i < len(proxyPts); i++ {
		pathLen += dist(proxyPts[i], proxyPts[i-1])
	}
	v[ClubPathLength] = pathLen
	v[ClubPathJerkVar] = jerkVariance(proxyPts)
	v[ClubArcWidth] = rangeOf(proxyPts, func(p point2) float64 { return p.X })
	v[ClubArcHeight] = rangeOf(proxyPts, func(p point2) float64 { return p.Y })

	v[LeadArmBendMean] = stat.Mean(armBend, nil)
	v[LeadArmBendMax] = sliceMax(armBend)
	v[WristSpeedMax] = sliceMax(speeds)

	v[BackswingFrames] = float64(top)
	v[DownswingFrames] = float64(impact - top)
	v[TempoRatio] = float64(top) / float64(impact-top)
	v[TopPositionNorm] = float64(top) / float64(len(proxyPts)-1)
	v[ImpactPositionNorm] = float64(impact) / float64(len(proxyPts)-1)
	v[HipSwayVariance] = safeVariance(midHipX)

	headDrift := 0.0
	for _, p := range nosePts {
		if d := dist(p, nosePts[0]); d > headDrift {
			headDrift = d
		}
	}
	v[HeadDriftRange] = headDrift

	for i := range v {
		if math.IsNaN(v[i]) || math.IsInf(v[i], 0) {
			return nil, nil, nil, &DegenerateError{
				Reason: fmt.Sprintf("feature %s is not finite", Names[i]),
			}
		}
	}

	return &v, phases, quality, nil
}

func leadArm(handedness string) (shoulder, elbow, wrist pose.Landmark) {
	if handedness == "left" {
		return pose.RightShoulder, pose.RightElbow, pose.RightWrist
	}
	return pose.LeftShoulder, pose.LeftElbow, pose.LeftWrist
}

// angleFromVerticalDeg returns the angle in [0,180] between the vector
// (dx,dy) and the downward vertical, with dy measured downward in image
// coordinates.
func angleFromVerticalDeg(dx, dy float64) float64 {
	n := math.Hypot(dx, dy)
	if n < 1e-12 {
		return 0
	}
	c := dy / n
	if c > 1 {
		c = 1
	} else if c < -1 {
		c = -1
	}
	return math.Acos(c) * 180 / math.Pi
}

// lineAngleDeg returns the orientation of the segment (x1,y1)-(x2,y2).
func lineAngleDeg(x1, y1, x2, y2 float64) float64 {
	return math.Atan2(y2-y1, x2-x1) * 180 / math.Pi
}

// angleDiffDeg normalizes a-b into [-180,180].
func angleDiffDeg(a, b float64) float64 {
	d := math.Mod(a-b, 360)
	if d > 180 {
		d -= 360
	} else if d < -180 {
		d += 360
	}
	return d
}

// elbowBendDeg returns how far the elbow deviates from a straight arm:
// 0 for a fully extended arm, growing as the arm folds.
func elbowBendDeg(s, e, w pose.Point) float64 {
	ax, ay := s.X-e.X, s.Y-e.Y
	bx, by := w.X-e.X, w.Y-e.Y
	na, nb := math.Hypot(ax, ay), math.Hypot(bx, by)
	if na < 1e-12 || nb < 1e-12 {
		return 0
	}
	c := (ax*bx + ay*by) / (na * nb)
	if c > 1 {
		c = 1
	} else if c < -1 {
		c = -1
	}
	interior := math.Acos(c) * 180 / math.Pi
	return 180 - interior
}

// jerkVariance is the smoothness measure: variance of the magnitude of
// the second difference of the club-proxy trajectory.
func jerkVariance(pts []point2) float64 {
	if len(pts) < 3 {
		return 0
	}
	mags := make([]float64, 0, len(pts)-2)
	for i := 1; i < len(pts)-1; i++ {
		jx := pts[i+1].X - 2*pts[i].X + pts[i-1].X
		jy := pts[i+1].Y - 2*pts[i].Y + pts[i-1].Y
		mags = append(mags, math.Hypot(jx, jy))
	}
	return safeVariance(mags)
}

func rangeOf(pts []point2, get func(point2) float64) float64 {
	lo, hi := get(pts[0]), get(pts[0])
	for _, p := range pts[1:] {
		v := get(p)
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return hi - lo
}

func sliceMax(xs []float64) float64 {
	m := xs[0]
	for _, x := range xs[1:] {
		if x > m {
			m = x
		}
	}
	return m
}

func sliceMin(xs []float64) float64 {
	m := xs[0]
	for _, x := range xs[1:] {
		if x < m {
			m = x
		}
	}
	return m
}

// safeStdDev avoids the NaN gonum returns for fewer than two samples.
func safeStdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	return stat.StdDev(xs, nil)
}

func safeVariance(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	return stat.Variance(xs, nil)
}
