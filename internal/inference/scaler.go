package inference

import (
	"fmt"

	"github.com/fairwaylabs/swinglab/internal/features"
)

// Scaler standardizes raw feature vectors with per-feature center and
// scale fitted offline. Parameters are loaded once at startup and never
// mutated, so concurrent use needs no locking.
type Scaler struct {
	Mean []float64
	Std  []float64
}

// NewScaler validates parameter dimensions against the feature contract.
func NewScaler(mean, std []float64) (*Scaler, error) {
	if len(mean) != features.NumFeatures || len(std) != features.NumFeatures {
		return nil, &ConfigError{
			Reason: fmt.Sprintf("scaler parameter length mean=%d std=%d, want %d",
				len(mean), len(std), features.NumFeatures),
		}
	}
	return &Scaler{Mean: mean, Std: std}, nil
}

// Transform returns (raw-mean)/std per feature. A zero std is substituted
// with 1 so constant features pass through centered.
func (s *Scaler) Transform(v *features.Vector) []float64 {
	out := make([]float64, features.NumFeatures)
	for i := 0; i < features.NumFeatures; i++ {
		sd := s.Std[i]
		if sd == 0 {
			sd = 1
		}
		out[i] = (v[i] - s.Mean[i]) / sd
	}
	return out
}
