// Command modwt-wav denoises or smooths WAV audio files with the maximal
// overlap discrete wavelet transform.
//
// Usage:
//
//	modwt-wav -wavelet sym8 -levels 5 input.wav output.wav
//	modwt-wav -threshold 0.02 -hard input.wav output.wav
//	modwt-wav -smooth 3 input.wav output.wav      # Keep only coarse scales
//	modwt-wav -parallel=false input.wav out.wav   # Sequential channel processing
//
// Without an explicit -threshold the universal threshold is estimated per
// channel from the finest detail level. Parallel channel processing is
// enabled by default for stereo/multichannel files.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/tphakala/go-modwt"
	"github.com/tphakala/go-modwt/wavelet"
)

const (
	// Channel count constants for fast paths
	monoChannels   = 1
	stereoChannels = 2

	// Sample format constants
	bitsPerSample16 = 16
	bitsPerSample24 = 24
	bitsPerSample32 = 32

	// Conversion constants
	maxInt16 = 32767.0
	maxInt24 = 8388607.0
	maxInt32 = 2147483647.0

	// CLI defaults
	defaultWavelet  = "sym8"
	minRequiredArgs = 2

	// Universal threshold: lambda = sigma * sqrt(2 ln n), with sigma
	// estimated as MAD(finest detail) / madToSigma.
	madToSigma = 0.6745

	// Cap on automatic decomposition depth: deeper levels hold almost no
	// audio-band energy and just slow the cascade down.
	maxAutoLevels = 8
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	waveletName := flag.String("wavelet", defaultWavelet, "Wavelet: haar, db4, db6, db8, sym8, coif6")
	levels := flag.Int("levels", 0, "Decomposition levels (0 = automatic)")
	threshold := flag.Float64("threshold", 0, "Threshold lambda in [-1,1] sample units (0 = universal estimate per channel)")
	hard := flag.Bool("hard", false, "Hard thresholding (default is soft)")
	smooth := flag.Int("smooth", 0, "Smooth instead of denoise: keep details at this level and coarser (0 = off)")
	parallel := flag.Bool("parallel", true, "Enable parallel channel processing")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	args := flag.Args()
	if len(args) < minRequiredArgs {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] input.wav output.wav\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s noisy.wav clean.wav                  # Denoise with estimated threshold\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -threshold 0.05 noisy.wav clean.wav  # Fixed threshold\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -smooth 4 speech.wav smooth.wav      # Strip the four finest scales\n", os.Args[0])
		return fmt.Errorf("insufficient arguments")
	}

	w, err := wavelet.ByName(*waveletName)
	if err != nil {
		return err
	}

	inputPath := args[0]
	outputPath := args[1]

	if *verbose {
		log.Printf("Input: %s", inputPath)
		log.Printf("Output: %s", outputPath)
		log.Printf("Wavelet: %s (%d taps)", w.Name(), w.Length())
		if *smooth > 0 {
			log.Printf("Mode: smooth from level %d", *smooth)
		} else if *hard {
			log.Printf("Mode: hard threshold")
		} else {
			log.Printf("Mode: soft threshold")
		}
	}

	cfg := processConfig{
		wavelet:   w,
		levels:    *levels,
		threshold: *threshold,
		soft:      !*hard,
		smooth:    *smooth,
		parallel:  *parallel,
		verbose:   *verbose,
	}

	start := time.Now()
	stats, err := processWAV(inputPath, outputPath, cfg)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("Processed %s -> %s\n", filepath.Base(inputPath), filepath.Base(outputPath))
	fmt.Printf("  %d Hz, %d channels, %d-bit, %d samples/channel\n",
		stats.rate, stats.channels, stats.bitDepth, stats.samples)
	fmt.Printf("  %s, %d levels\n", w.Name(), stats.levels)
	fmt.Printf("  Duration: %.2fs, Speed: %.1fx realtime\n",
		elapsed.Seconds(),
		float64(stats.samples)/float64(stats.rate)/elapsed.Seconds())

	return nil
}

// processConfig carries the per-run processing parameters.
type processConfig struct {
	wavelet   modwt.Wavelet
	levels    int
	threshold float64
	soft      bool
	smooth    int
	parallel  bool
	verbose   bool
}

// processStats summarizes a completed run.
type processStats struct {
	rate     int
	channels int
	bitDepth int
	samples  int
	levels   int
}

func processWAV(inputPath, outputPath string, cfg processConfig) (*processStats, error) {
	input, err := readWAVInput(inputPath, cfg.verbose)
	if err != nil {
		return nil, err
	}

	samples := len(input.channels[0])
	mt, err := modwt.NewMultiLevelTransform(cfg.wavelet, modwt.Periodic)
	if err != nil {
		return nil, err
	}

	levels := cfg.levels
	maxLevels := mt.MaxLevels(samples)
	if levels == 0 {
		levels = min(maxLevels, maxAutoLevels)
	}
	if levels < 1 || levels > maxLevels {
		return nil, fmt.Errorf("levels %d out of range [1, %d] for %d samples", levels, maxLevels, samples)
	}
	if cfg.smooth > levels {
		return nil, fmt.Errorf("smooth level %d exceeds decomposition depth %d", cfg.smooth, levels)
	}

	processed, err := processChannels(mt, input.channels, levels, cfg)
	if err != nil {
		return nil, err
	}

	if err := writeWAVOutput(outputPath, processed, input.rate, input.bitDepth); err != nil {
		return nil, err
	}

	return &processStats{
		rate:     input.rate,
		channels: len(input.channels),
		bitDepth: input.bitDepth,
		samples:  samples,
		levels:   levels,
	}, nil
}

// processChannel denoises or smooths one channel of audio.
func processChannel(mt *modwt.MultiLevelTransform, signal []float64, levels int, cfg processConfig) ([]float64, error) {
	res, err := mt.Decompose(signal, levels)
	if err != nil {
		return nil, err
	}

	if cfg.smooth > 0 {
		return mt.ReconstructFromLevel(res, cfg.smooth)
	}

	lambda := cfg.threshold
	if lambda == 0 {
		d1, err := res.Detail(1)
		if err != nil {
			return nil, err
		}
		lambda = universalThreshold(d1)
	}
	if cfg.verbose {
		log.Printf("Threshold lambda: %.6f", lambda)
	}

	mut := res.Mutable()
	if err := mut.Threshold(lambda, cfg.soft); err != nil {
		return nil, err
	}
	return mt.Reconstruct(mut.Snapshot())
}

// universalThreshold computes sigma*sqrt(2 ln n) with the noise level
// estimated from the median absolute deviation of the finest detail.
func universalThreshold(finestDetail []float64) float64 {
	n := len(finestDetail)
	if n == 0 {
		return 0
	}
	sigma := medianAbs(finestDetail) / madToSigma
	return sigma * math.Sqrt(2*math.Log(float64(n)))
}
