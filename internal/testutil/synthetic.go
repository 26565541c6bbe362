// Package testutil builds synthetic side-on swing sequences with known
// geometry, so tests can assert exact phase frames, tempo and plane
// angles without recorded data.
package testutil

import (
	"math"

	"github.com/fairwaylabs/swinglab/pkg/models"
)

// Params controls the generated swing.
type Params struct {
	// PlaneAngle is the constant shoulder->wrist angle from vertical, in
	// degrees. 45 sits in the middle of the on-plane band.
	PlaneAngle float64
	// Frames is the sequence length; the top of the backswing lands at
	// three quarters of the sequence, giving a 3:1 tempo. Default 61.
	Frames int
	// Confidence is applied to every landmark. Default 0.9.
	Confidence float64
	Handedness string
	SessionID  string
}

func (p Params) withDefaults() Params {
	if p.Frames == 0 {
		p.Frames = 61
	}
	if p.Confidence == 0 {
		p.Confidence = 0.9
	}
	return p
}

// Swing builds a clean right-handed side-on swing at the given plane
// angle: 45 backswing frames, 15 downswing frames, straight lead arm,
// quiet head and hips.
func Swing(planeAngleDeg float64) *models.AnalyzeRequest {
	return SwingWith(Params{PlaneAngle: planeAngleDeg})
}

// SwingWith builds a swing from explicit parameters.
func SwingWith(p Params) *models.AnalyzeRequest {
	p = p.withDefaults()

	n := p.Frames
	top := (n - 1) * 3 / 4
	theta := p.PlaneAngle * math.Pi / 180
	dirX, dirY := math.Sin(theta), math.Cos(theta)

	const (
		shoulderMidX, shoulderMidY = 0.50, 0.35
		hipMidX, hipMidY           = 0.3845, 0.55 // 30 degree spine tilt
		halfWidth                  = 0.03
		noseX, noseY               = 0.47, 0.22
		rAddress, rTop             = 0.05, 0.35
	)

	frames := make([]models.PoseFrame, 0, n)
	for t := 0; t < n; t++ {
		// Arm extension: linear to the top, quadratic release so wrist
		// speed peaks at the final frame.
		var r float64
		if t <= top {
			r = rAddress + (rTop-rAddress)*float64(t)/float64(top)
		} else {
			u := float64(t-top) / float64(n-1-top)
			r = rTop - (rTop-rAddress)*u*u
		}

		// Shoulder and hip line rotation relative to address, degrees.
		shRot := ramp(t, top, n-1, 0, 50, 15) * math.Pi / 180
		hpRot := ramp(t, top, n-1, 0, 20, 5) * math.Pi / 180

		shL := point2(shoulderMidX-halfWidth*math.Cos(shRot), shoulderMidY-halfWidth*math.Sin(shRot))
		shR := point2(shoulderMidX+halfWidth*math.Cos(shRot), shoulderMidY+halfWidth*math.Sin(shRot))
		hpL := point2(hipMidX-halfWidth*math.Cos(hpRot), hipMidY-halfWidth*math.Sin(hpRot))
		hpR := point2(hipMidX+halfWidth*math.Cos(hpRot), hipMidY+halfWidth*math.Sin(hpRot))

		lw := point2(shL[0]+r*dirX, shL[1]+r*dirY)
		rw := point2(shR[0]+r*dirX, shR[1]+r*dirY)

		frames = append(frames, models.PoseFrame{
			Index: t,
			Landmarks: map[string]models.LandmarkPoint{
				"nose":           lp(noseX, noseY, p.Confidence),
				"left_shoulder":  lp(shL[0], shL[1], p.Confidence),
				"right_shoulder": lp(shR[0], shR[1], p.Confidence),
				"left_elbow":     lp((shL[0]+lw[0])/2, (shL[1]+lw[1])/2, p.Confidence),
				"right_elbow":    lp((shR[0]+rw[0])/2, (shR[1]+rw[1])/2, p.Confidence),
				"left_wrist":     lp(lw[0], lw[1], p.Confidence),
				"right_wrist":    lp(rw[0], rw[1], p.Confidence),
				"left_hip":       lp(hpL[0], hpL[1], p.Confidence),
				"right_hip":      lp(hpR[0], hpR[1], p.Confidence),
			},
		})
	}

	return &models.AnalyzeRequest{
		SessionID:  p.SessionID,
		Handedness: p.Handedness,
		Frames:     frames,
	}
}

// DropLandmark removes a landmark from the given frame positions.
func DropLandmark(req *models.AnalyzeRequest, name string, positions ...int) *models.AnalyzeRequest {
	for _, i := range positions {
		delete(req.Frames[i].Landmarks, name)
	}
	return req
}

// ramp interpolates 0..peak over [0,top] and peak..end over [top,last].
func ramp(t, top, last int, start, peak, end float64) float64 {
	if t <= top {
		return start + (peak-start)*float64(t)/float64(top)
	}
	return peak + (end-peak)*float64(t-top)/float64(last-top)
}

func point2(x, y float64) [2]float64 { return [2]float64{x, y} }

func lp(x, y, conf float64) models.LandmarkPoint {
	return models.LandmarkPoint{X: x, Y: y, Confidence: conf}
}
