package inference

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/fairwaylabs/swinglab/internal/features"
)

// UnclassifiableError reports a feature vector the model refuses to
// score (NaN or Inf input). The pipeline fails closed rather than
// returning a silently-wrong prediction.
type UnclassifiableError struct {
	Reason string
}

func (e *UnclassifiableError) Error() string {
	return "unclassifiable feature vector: " + e.Reason
}

// ConfigError reports a missing, malformed or dimension-mismatched model
// artifact. It is fatal at startup; the service never comes up degraded.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "model configuration error: " + e.Reason
}

// Result is a 3-class prediction.
type Result struct {
	Label         string
	Confidence    float64
	ConfidenceGap float64
	Probabilities map[string]float64
}

type layer struct {
	w *mat.Dense
	b []float64
}

// Classifier is a fixed feed-forward network with weights trained
// offline. Inference is deterministic: no dropout, no sampling. The
// loaded weights are immutable and safe for unsynchronized concurrent
// reads.
type Classifier struct {
	layers []layer
	labels []string
}

func newClassifier(layers []layerSpec, labels []string) (*Classifier, error) {
	if len(layers) == 0 {
		return nil, &ConfigError{Reason: "classifier has no layers"}
	}

	c := &Classifier{labels: labels}
	prevOut := features.NumFeatures
	for li, ls := range layers {
		rows := len(ls.Weights)
		if rows == 0 {
			return nil, &ConfigError{Reason: fmt.Sprintf("layer %d is empty", li)}
		}
		cols := len(ls.Weights[0])
		if cols != prevOut {
			return nil, &ConfigError{
				Reason: fmt.Sprintf("layer %d expects %d inputs, previous layer produces %d", li, cols, prevOut),
			}
		}
		if len(ls.Biases) != rows {
			return nil, &ConfigError{
				Reason: fmt.Sprintf("layer %d has %d bias terms for %d units", li, len(ls.Biases), rows),
			}
		}
		flat := make([]float64, 0, rows*cols)
		for r, row := range ls.Weights {
			if len(row) != cols {
				return nil, &ConfigError{Reason: fmt.Sprintf("layer %d row %d is ragged", li, r)}
			}
			flat = append(flat, row...)
		}
		c.layers = append(c.layers, layer{w: mat.NewDense(rows, cols, flat), b: ls.Biases})
		prevOut = rows
	}

	if prevOut != len(labels) {
		return nil, &ConfigError{
			Reason: fmt.Sprintf("output layer produces %d logits for %d labels", prevOut, len(labels)),
		}
	}
	return c, nil
}

// Classify maps a standardized 31-dim vector to a class distribution.
// Probabilities sum to 1 within 1e-6; confidence is the top probability
// and ConfidenceGap is top1-top2.
func (c *Classifier) Classify(x []float64) (*Result, error) {
	if len(x) != features.NumFeatures {
		return nil, &UnclassifiableError{
			Reason: fmt.Sprintf("input length %d, want %d", len(x), features.NumFeatures),
		}
	}
	for i, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, &UnclassifiableError{
				Reason: fmt.Sprintf("feature %s is not finite", features.Names[i]),
			}
		}
	}

	cur := mat.NewVecDense(len(x), append([]float64(nil), x...))
	for li, l := range c.layers {
		rows, _ := l.w.Dims()
		next := mat.NewVecDense(rows, nil)
		next.MulVec(l.w, cur)
		for i := 0; i < rows; i++ {
			v := next.AtVec(i) + l.b[i]
			if li < len(c.layers)-1 && v < 0 {
				v = 0 // ReLU on hidden layers
			}
			next.SetVec(i, v)
		}
		cur = next
	}

	probs := softmax(cur.RawVector().Data)

	type lp struct {
		label string
		p     float64
	}
	ranked := make([]lp, len(c.labels))
	all := make(map[string]float64, len(c.labels))
	for i, label := range c.labels {
		ranked[i] = lp{label: label, p: probs[i]}
		all[label] = probs[i]
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].p > ranked[j].p })

	return &Result{
		Label:         ranked[0].label,
		Confidence:    ranked[0].p,
		ConfidenceGap: ranked[0].p - ranked[1].p,
		Probabilities: all,
	}, nil
}

// softmax with max subtraction for numeric stability.
func softmax(logits []float64) []float64 {
	m := logits[0]
	for _, v := range logits[1:] {
		if v > m {
			m = v
		}
	}
	out := make([]float64, len(logits))
	sum := 0.0
	for i, v := range logits {
		out[i] = math.Exp(v - m)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
