package inference

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/fairwaylabs/swinglab/internal/features"
)

func loadModel(t *testing.T) *Context {
	t.Helper()
	ctx, err := Load("../../model")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return ctx
}

// rawVector returns a vector at the scaler center with the mean plane
// angle overridden, so only the plane feature carries signal.
func rawVector(ctx *Context, planeAngle float64) *features.Vector {
	var v features.Vector
	copy(v[:], ctx.Scaler.Mean)
	v[features.PlaneAngleMean] = planeAngle
	return &v
}

func classify(t *testing.T, ctx *Context, planeAngle float64) *Result {
	t.Helper()
	res, err := ctx.Classifier.Classify(ctx.Scaler.Transform(rawVector(ctx, planeAngle)))
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	return res
}

func TestLoad_Artifacts(t *testing.T) {
	ctx := loadModel(t)

	want := []string{"on_plane", "too_steep", "too_flat"}
	if len(ctx.Labels) != len(want) {
		t.Fatalf("Expected %d labels, got %d", len(want), len(ctx.Labels))
	}
	for i, label := range want {
		if ctx.Labels[i] != label {
			t.Errorf("Label %d: expected %s, got %s", i, label, ctx.Labels[i])
		}
	}
}

func TestClassify_OnPlane(t *testing.T) {
	ctx := loadModel(t)
	res := classify(t, ctx, 45)

	if res.Label != "on_plane" {
		t.Errorf("Expected on_plane at 45 degrees, got %s", res.Label)
	}
	if res.Confidence < 0.9 {
		t.Errorf("Expected confidence >= 0.9 for a textbook plane, got %v", res.Confidence)
	}
}

func TestClassify_TooSteep(t *testing.T) {
	ctx := loadModel(t)
	res := classify(t, ctx, 62)

	if res.Label != "too_steep" {
		t.Errorf("Expected too_steep at 62 degrees, got %s", res.Label)
	}
}

func TestClassify_TooFlat(t *testing.T) {
	ctx := loadModel(t)
	res := classify(t, ctx, 28)

	if res.Label != "too_flat" {
		t.Errorf("Expected too_flat at 28 degrees, got %s", res.Label)
	}
}

func TestClassify_ProbabilitiesSumToOne(t *testing.T) {
	ctx := loadModel(t)

	for _, angle := range []float64{20, 35, 45, 55, 70} {
		res := classify(t, ctx, angle)

		sum := 0.0
		for _, p := range res.Probabilities {
			if p < 0 || p > 1 {
				t.Errorf("angle %v: probability out of range: %v", angle, p)
			}
			sum += p
		}
		if math.Abs(sum-1) > 1e-6 {
			t.Errorf("angle %v: probabilities sum to %v", angle, sum)
		}
		if res.ConfidenceGap < 0 {
			t.Errorf("angle %v: negative confidence gap %v", angle, res.ConfidenceGap)
		}
	}
}

func TestClassify_Deterministic(t *testing.T) {
	ctx := loadModel(t)

	a := classify(t, ctx, 48)
	b := classify(t, ctx, 48)
	if a.Label != b.Label || a.Confidence != b.Confidence {
		t.Errorf("Classification not deterministic: %+v vs %+v", a, b)
	}
}

func TestClassify_RejectsNaN(t *testing.T) {
	ctx := loadModel(t)

	x := ctx.Scaler.Transform(rawVector(ctx, 45))
	x[7] = math.NaN()

	_, err := ctx.Classifier.Classify(x)
	var unclsErr *UnclassifiableError
	if !errors.As(err, &unclsErr) {
		t.Fatalf("Expected UnclassifiableError for NaN input, got %v", err)
	}
}

func TestClassify_RejectsWrongLength(t *testing.T) {
	ctx := loadModel(t)

	_, err := ctx.Classifier.Classify(make([]float64, features.NumFeatures-1))
	var unclsErr *UnclassifiableError
	if !errors.As(err, &unclsErr) {
		t.Fatalf("Expected UnclassifiableError for short input, got %v", err)
	}
}

func TestNewScaler_RejectsWrongLength(t *testing.T) {
	_, err := NewScaler(make([]float64, 30), make([]float64, 30))
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Expected ConfigError for 30-dim scaler, got %v", err)
	}
}

func TestScaler_ZeroStdPassesThroughCentered(t *testing.T) {
	mean := make([]float64, features.NumFeatures)
	std := make([]float64, features.NumFeatures)
	mean[0] = 10
	scaler, err := NewScaler(mean, std)
	if err != nil {
		t.Fatalf("NewScaler failed: %v", err)
	}

	var v features.Vector
	v[0] = 12
	out := scaler.Transform(&v)
	if out[0] != 2 {
		t.Errorf("Expected centered value 2 with zero std, got %v", out[0])
	}
}

// writeModelDir copies the real artifacts into a temp dir, then applies
// overrides, so corruption tests start from a valid model.
func writeModelDir(t *testing.T, overrides map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range []string{WeightsFile, ScalerFile, LabelsFile} {
		data, err := os.ReadFile(filepath.Join("../../model", name))
		if err != nil {
			t.Fatalf("read artifact %s: %v", name, err)
		}
		if body, ok := overrides[name]; ok {
			data = []byte(body)
		}
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			t.Fatalf("write artifact %s: %v", name, err)
		}
	}
	return dir
}

func TestLoad_MissingArtifact(t *testing.T) {
	dir := writeModelDir(t, nil)
	os.Remove(filepath.Join(dir, ScalerFile))

	_, err := Load(dir)
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Expected ConfigError for missing scaler file, got %v", err)
	}
}

func TestLoad_MalformedJSON(t *testing.T) {
	dir := writeModelDir(t, map[string]string{WeightsFile: "{not json"})

	_, err := Load(dir)
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Expected ConfigError for malformed weights, got %v", err)
	}
}

func TestLoad_ScalerDimensionMismatch(t *testing.T) {
	dir := writeModelDir(t, map[string]string{
		ScalerFile: `{"mean":[1,2,3],"std":[1,1,1]}`,
	})

	_, err := Load(dir)
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Expected ConfigError for 3-dim scaler, got %v", err)
	}
}

func TestLoad_UnsupportedActivation(t *testing.T) {
	dir := writeModelDir(t, map[string]string{
		WeightsFile: `{"activation":"tanh","layers":[]}`,
	})

	_, err := Load(dir)
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Expected ConfigError for tanh activation, got %v", err)
	}
}

func TestLoad_LabelGaps(t *testing.T) {
	dir := writeModelDir(t, map[string]string{
		LabelsFile: `{"0":"on_plane","2":"too_flat","5":"too_steep"}`,
	})

	_, err := Load(dir)
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Expected ConfigError for sparse label map, got %v", err)
	}
}

func TestClassify_LabelBoundaries(t *testing.T) {
	ctx := loadModel(t)

	// Outside the 35-55 band the prediction must leave on_plane.
	if res := classify(t, ctx, 34); res.Label != "too_flat" {
		t.Errorf("Expected too_flat just below the band, got %s", res.Label)
	}
	if res := classify(t, ctx, 56); res.Label != "too_steep" {
		t.Errorf("Expected too_steep just above the band, got %s", res.Label)
	}
}
