package inference

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Artifact file names inside the model directory.
const (
	WeightsFile = "classifier_weights.json"
	ScalerFile  = "scaler_params.json"
	LabelsFile  = "labels.json"
)

// Context bundles the immutable model state: classifier weights, scaler
// parameters and the label map. It is built once at startup
// (single-writer) and then read concurrently without locking.
type Context struct {
	Scaler     *Scaler
	Classifier *Classifier
	Labels     []string
	ModelDir   string
}

type layerSpec struct {
	Weights [][]float64 `json:"weights"`
	Biases  []float64   `json:"biases"`
}

type weightsSpec struct {
	Activation string      `json:"activation"`
	Layers     []layerSpec `json:"layers"`
}

type scalerSpec struct {
	Mean []float64 `json:"mean"`
	Std  []float64 `json:"std"`
}

// Load reads and validates the three model artifacts. Any missing file,
// malformed JSON or dimension mismatch returns a ConfigError; the caller
// must treat that as fatal and refuse to serve.
func Load(modelDir string) (*Context, error) {
	var ws weightsSpec
	if err := readJSON(filepath.Join(modelDir, WeightsFile), &ws); err != nil {
		return nil, err
	}
	if ws.Activation != "relu" {
		return nil, &ConfigError{Reason: fmt.Sprintf("unsupported activation %q", ws.Activation)}
	}

	var ss scalerSpec
	if err := readJSON(filepath.Join(modelDir, ScalerFile), &ss); err != nil {
		return nil, err
	}
	scaler, err := NewScaler(ss.Mean, ss.Std)
	if err != nil {
		return nil, err
	}

	var rawLabels map[string]string
	if err := readJSON(filepath.Join(modelDir, LabelsFile), &rawLabels); err != nil {
		return nil, err
	}
	labels, err := orderedLabels(rawLabels)
	if err != nil {
		return nil, err
	}

	clf, err := newClassifier(ws.Layers, labels)
	if err != nil {
		return nil, err
	}

	return &Context{
		Scaler:     scaler,
		Classifier: clf,
		Labels:     labels,
		ModelDir:   modelDir,
	}, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &ConfigError{Reason: fmt.Sprintf("read %s: %v", path, err)}
	}
	if err := json.Unmarshal(data, v); err != nil {
		return &ConfigError{Reason: fmt.Sprintf("parse %s: %v", path, err)}
	}
	return nil
}

// orderedLabels converts the index->name map into a dense slice,
// rejecting gaps and duplicate indices.
func orderedLabels(raw map[string]string) ([]string, error) {
	if len(raw) == 0 {
		return nil, &ConfigError{Reason: "label map is empty"}
	}
	out := make([]string, len(raw))
	for k, name := range raw {
		idx, err := strconv.Atoi(k)
		if err != nil || idx < 0 || idx >= len(out) {
			return nil, &ConfigError{Reason: fmt.Sprintf("label index %q out of range", k)}
		}
		if out[idx] != "" {
			return nil, &ConfigError{Reason: fmt.Sprintf("duplicate label index %d", idx)}
		}
		if name == "" {
			return nil, &ConfigError{Reason: fmt.Sprintf("empty label name at index %d", idx)}
		}
		out[idx] = name
	}
	return out, nil
}
