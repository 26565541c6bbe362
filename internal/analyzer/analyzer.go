package analyzer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/fairwaylabs/swinglab/internal/camera"
	"github.com/fairwaylabs/swinglab/internal/features"
	"github.com/fairwaylabs/swinglab/internal/inference"
	"github.com/fairwaylabs/swinglab/internal/insight"
	"github.com/fairwaylabs/swinglab/internal/pose"
	"github.com/fairwaylabs/swinglab/internal/report"
	"github.com/fairwaylabs/swinglab/pkg/models"
)

// ErrBudgetExceeded is returned when a request's wall-clock budget
// expires. The pipeline fails closed: a misleading partial analysis is
// worse than an explicit failure.
var ErrBudgetExceeded = errors.New("analysis budget exceeded")

// Analyzer runs the stateless per-request pipeline:
// sequence -> camera -> features -> scaler -> classifier -> insight -> report.
// The only shared state is the immutable inference context, which is
// safe for concurrent reads; each request runs in its own goroutine.
type Analyzer struct {
	model     *inference.Context
	cameraCfg camera.Config
	budget    time.Duration
	maxFrames int

	stats struct {
		mu       sync.RWMutex
		analyzed int64
		rejected int64
		timeouts int64
		canceled int64
		failed   int64
	}
}

// Stats is a snapshot of the pipeline counters.
type Stats struct {
	Analyzed int64 `json:"analyzed"`
	Rejected int64 `json:"rejected"`
	Timeouts int64 `json:"timeouts"`
	Canceled int64 `json:"canceled"`
	Failed   int64 `json:"failed"`
}

// New creates an analyzer around a loaded model context. maxFrames caps
// the accepted sequence length; zero disables the cap.
func New(model *inference.Context, budget time.Duration, maxFrames int) *Analyzer {
	return &Analyzer{
		model:     model,
		cameraCfg: camera.DefaultConfig(),
		budget:    budget,
		maxFrames: maxFrames,
	}
}

// Analyze runs the full pipeline for one request. No partial report is
// ever returned: any stage error aborts the whole analysis.
func (a *Analyzer) Analyze(ctx context.Context, req *models.AnalyzeRequest) (*models.SwingAnalysisReport, error) {
	ctx, cancel := context.WithTimeout(ctx, a.budget)
	defer cancel()

	started := time.Now()

	if a.maxFrames > 0 && len(req.Frames) > a.maxFrames {
		a.incRejected()
		return nil, &pose.ValidationError{
			Reason: fmt.Sprintf("sequence has %d frames, maximum is %d", len(req.Frames), a.maxFrames),
		}
	}

	seq, err := pose.FromRequest(req)
	if err != nil {
		a.incRejected()
		return nil, err
	}

	det := camera.Detect(seq, a.cameraCfg)
	if det.Angle != camera.Unknown {
		seq = camera.NormalizerFor(det.Angle).Normalize(seq)
	}

	opts := features.DefaultOptions()
	if req.Handedness != "" {
		opts.Handedness = req.Handedness
	}

	vec, phases, quality, err := features.Extract(ctx, seq, opts)
	if err != nil {
		return nil, a.classifyFailure(err)
	}

	cls, err := a.model.Classifier.Classify(a.model.Scaler.Transform(vec))
	if err != nil {
		a.incRejected()
		return nil, err
	}

	flaws := insight.Evaluate(vec, phases)
	recs := insight.Recommend(cls.Label, flaws)

	rep, err := report.Assemble(report.Input{
		SessionID:       req.SessionID,
		Classification:  cls,
		Flaws:           flaws,
		Recommendations: recs,
		Detection:       det,
		Quality:         quality,
	})
	if err != nil {
		a.incFailed()
		log.Printf("[ERROR] Report assembly failed for session %s: %v", req.SessionID, err)
		return nil, err
	}

	// A report finished after the deadline is still a budget violation;
	// fail closed instead of returning a late result.
	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.Canceled) {
			a.incCanceled()
			return nil, ctxErr
		}
		a.incTimeout()
		return nil, fmt.Errorf("%w after %v", ErrBudgetExceeded, time.Since(started))
	}

	a.incAnalyzed()
	log.Printf("[ANALYZE] session=%s label=%s confidence=%.3f camera=%s frames=%d/%d in %v",
		req.SessionID, rep.PredictedLabel, rep.Confidence, rep.CameraAngle,
		rep.FramesUsed, rep.FramesTotal, time.Since(started))
	return rep, nil
}

// classifyFailure maps an extraction error onto the right counter and
// rewrites deadline errors into the budget error. A caller abort is not
// a budget expiry and is counted separately.
func (a *Analyzer) classifyFailure(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		a.incTimeout()
		return fmt.Errorf("%w: %v", ErrBudgetExceeded, err)
	}
	if errors.Is(err, context.Canceled) {
		a.incCanceled()
		return err
	}
	a.incRejected()
	return err
}

// GetStats returns a snapshot of the pipeline counters.
func (a *Analyzer) GetStats() Stats {
	a.stats.mu.RLock()
	defer a.stats.mu.RUnlock()
	return Stats{
		Analyzed: a.stats.analyzed,
		Rejected: a.stats.rejected,
		Timeouts: a.stats.timeouts,
		Canceled: a.stats.canceled,
		Failed:   a.stats.failed,
	}
}

func (a *Analyzer) incAnalyzed() { a.stats.mu.Lock(); a.stats.analyzed++; a.stats.mu.Unlock() }
func (a *Analyzer) incRejected() { a.stats.mu.Lock(); a.stats.rejected++; a.stats.mu.Unlock() }
func (a *Analyzer) incTimeout()  { a.stats.mu.Lock(); a.stats.timeouts++; a.stats.mu.Unlock() }
func (a *Analyzer) incCanceled() { a.stats.mu.Lock(); a.stats.canceled++; a.stats.mu.Unlock() }
func (a *Analyzer) incFailed()   { a.stats.mu.Lock(); a.stats.failed++; a.stats.mu.Unlock() }
