package main

import (
	"fmt"
	"log"
	"os"
	"sort"
	"sync"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/tphakala/go-modwt"
)

// wavInput holds a fully decoded input file as normalized per-channel
// float64 signals in [-1, 1].
type wavInput struct {
	channels [][]float64
	rate     int
	bitDepth int
}

// readWAVInput decodes an entire WAV file. The transform is whole-signal,
// so the file is read in one pass rather than streamed.
func readWAVInput(path string, verbose bool) (*wavInput, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer func() { _ = f.Close() }()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file: %s", path)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to read audio data: %w", err)
	}

	format := buf.Format
	channels := format.NumChannels
	bitDepth := int(decoder.BitDepth)
	if channels < 1 || len(buf.Data) == 0 {
		return nil, fmt.Errorf("no audio data in %s", path)
	}

	if verbose {
		log.Printf("Input format: %d Hz, %d channels, %d-bit, %d samples/channel",
			format.SampleRate, channels, bitDepth, len(buf.Data)/channels)
	}

	return &wavInput{
		channels: deinterleave(buf.Data, channels, bitDepth),
		rate:     format.SampleRate,
		bitDepth: bitDepth,
	}, nil
}

// writeWAVOutput interleaves the processed channels back to PCM and writes
// them through the WAV encoder.
func writeWAVOutput(path string, channels [][]float64, rate, bitDepth int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = f.Close() }()

	numChannels := len(channels)
	enc := wav.NewEncoder(f, rate, bitDepth, numChannels, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: numChannels, SampleRate: rate},
		Data:           interleave(channels, bitDepth),
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		_ = enc.Close()
		return fmt.Errorf("failed to write audio data: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finalize WAV file: %w", err)
	}
	return nil
}

// maxValue returns the full-scale sample value for a bit depth.
func maxValue(bitDepth int) float64 {
	switch bitDepth {
	case bitsPerSample24:
		return maxInt24
	case bitsPerSample32:
		return maxInt32
	default:
		return maxInt16
	}
}

// deinterleave converts interleaved int samples to normalized per-channel
// float64 slices.
func deinterleave(data []int, channels, bitDepth int) [][]float64 {
	samplesPerChannel := len(data) / channels
	out := make([][]float64, channels)
	for ch := range out {
		out[ch] = make([]float64, samplesPerChannel)
	}
	invMax := 1.0 / maxValue(bitDepth)

	if channels == monoChannels {
		buf := out[0]
		for i := range samplesPerChannel {
			buf[i] = float64(data[i]) * invMax
		}
		return out
	}
	if channels == stereoChannels {
		buf0, buf1 := out[0], out[1]
		for i := range samplesPerChannel {
			idx := i * stereoChannels
			buf0[i] = float64(data[idx]) * invMax
			buf1[i] = float64(data[idx+1]) * invMax
		}
		return out
	}
	for i := range samplesPerChannel {
		base := i * channels
		for ch := range channels {
			out[ch][i] = float64(data[base+ch]) * invMax
		}
	}
	return out
}

// interleave converts per-channel float64 slices back to clamped
// interleaved int samples.
func interleave(channels [][]float64, bitDepth int) []int {
	if len(channels) == 0 || len(channels[0]) == 0 {
		return nil
	}
	numChannels := len(channels)
	samplesPerChannel := len(channels[0])
	maxVal := maxValue(bitDepth)

	out := make([]int, samplesPerChannel*numChannels)
	for i := range samplesPerChannel {
		base := i * numChannels
		for ch := range numChannels {
			sample := channels[ch][i]
			if sample > 1.0 {
				sample = 1.0
			} else if sample < -1.0 {
				sample = -1.0
			}
			out[base+ch] = int(sample * maxVal)
		}
	}
	return out
}

// processChannels runs the wavelet processing over every channel,
// concurrently when configured and the file is multichannel.
func processChannels(mt *modwt.MultiLevelTransform, channels [][]float64, levels int, cfg processConfig) ([][]float64, error) {
	if cfg.parallel && len(channels) > 1 {
		return processParallel(mt, channels, levels, cfg)
	}
	return processSequential(mt, channels, levels, cfg)
}

func processParallel(mt *modwt.MultiLevelTransform, channels [][]float64, levels int, cfg processConfig) ([][]float64, error) {
	out := make([][]float64, len(channels))
	var wg sync.WaitGroup
	var processErr error
	var errMu sync.Mutex

	for ch := range channels {
		wg.Add(1)
		go func(channel int) {
			defer wg.Done()
			processed, err := processChannel(mt, channels[channel], levels, cfg)
			if err != nil {
				errMu.Lock()
				if processErr == nil {
					processErr = fmt.Errorf("processing failed on channel %d: %w", channel, err)
				}
				errMu.Unlock()
				return
			}
			out[channel] = processed
		}(ch)
	}
	wg.Wait()

	if processErr != nil {
		return nil, processErr
	}
	return out, nil
}

func processSequential(mt *modwt.MultiLevelTransform, channels [][]float64, levels int, cfg processConfig) ([][]float64, error) {
	out := make([][]float64, len(channels))
	for ch := range channels {
		processed, err := processChannel(mt, channels[ch], levels, cfg)
		if err != nil {
			return nil, fmt.Errorf("processing failed on channel %d: %w", ch, err)
		}
		out[ch] = processed
	}
	return out, nil
}

// medianAbs returns the median of the absolute values of s.
func medianAbs(s []float64) float64 {
	abs := make([]float64, len(s))
	for i, v := range s {
		if v < 0 {
			v = -v
		}
		abs[i] = v
	}
	sort.Float64s(abs)
	mid := len(abs) / 2
	if len(abs)%2 == 1 {
		return abs[mid]
	}
	return (abs[mid-1] + abs[mid]) / 2
}
