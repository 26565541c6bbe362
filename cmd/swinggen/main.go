// swinggen generates synthetic pose sequences for load testing and
// local development: a parameterized swing is written as JSON or posted
// straight to a running analysis server.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/fairwaylabs/swinglab/internal/testutil"
	"github.com/fairwaylabs/swinglab/pkg/models"
)

func main() {
	var (
		angle      = flag.Float64("angle", 45, "mean swing plane angle in degrees")
		frames     = flag.Int("frames", 61, "sequence length")
		count      = flag.Int("count", 1, "number of swings to generate")
		jitter     = flag.Float64("jitter", 0, "landmark position noise stddev")
		seed       = flag.Int64("seed", 0, "random seed (0 uses current time)")
		handedness = flag.String("handedness", "right", "golfer handedness: right or left")
		out        = flag.String("out", "", "output file (default stdout)")
		postURL    = flag.String("post", "", "POST each swing to this analyze endpoint instead of writing it")
	)
	flag.Parse()

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(*seed))
	log.Printf("[INFO] Generating %d swing(s): angle=%.1f frames=%d jitter=%.4f seed=%d",
		*count, *angle, *frames, *jitter, *seed)

	var w io.Writer = os.Stdout
	if *out != "" && *postURL == "" {
		f, err := os.Create(*out)
		if err != nil {
			log.Fatalf("[FATAL] Failed to create output file: %v", err)
		}
		defer f.Close()
		w = f
	}

	enc := json.NewEncoder(w)
	for i := 0; i < *count; i++ {
		req := testutil.SwingWith(testutil.Params{
			PlaneAngle: *angle,
			Frames:     *frames,
			Handedness: *handedness,
			SessionID:  uuid.New().String(),
		})
		if *jitter > 0 {
			applyJitter(req, rng, *jitter)
		}

		if *postURL != "" {
			if err := post(*postURL, req); err != nil {
				log.Fatalf("[FATAL] Failed to post swing %d: %v", i, err)
			}
			log.Printf("[INFO] Posted swing %d session=%s", i, req.SessionID)
			continue
		}
		if err := enc.Encode(req); err != nil {
			log.Fatalf("[FATAL] Failed to encode swing %d: %v", i, err)
		}
	}
}

// applyJitter adds clamped Gaussian noise to every landmark so generated
// uploads exercise the pipeline's tolerance to estimator wobble.
func applyJitter(req *models.AnalyzeRequest, rng *rand.Rand, stddev float64) {
	for fi := range req.Frames {
		for name, p := range req.Frames[fi].Landmarks {
			p.X = clamp01(p.X + rng.NormFloat64()*stddev)
			p.Y = clamp01(p.Y + rng.NormFloat64()*stddev)
			req.Frames[fi].Landmarks[name] = p
		}
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func post(url string, req *models.AnalyzeRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, data)
	}
	return nil
}
