// Package envelope turns recorded voice lines into per-frame loudness
// values that drive mouth animation.
package envelope

import (
	"fmt"
	"math"
	"os"

	"github.com/go-audio/wav"
)

// MediaError reports a waveform that is missing or cannot be decoded.
// Callers drop the affected line and keep going; a bad recording must
// not kill the whole render.
type MediaError struct {
	Path string
	Err  error
}

func (e *MediaError) Error() string {
	return fmt.Sprintf("не удалось прочитать аудио %s: %v", e.Path, e.Err)
}

func (e *MediaError) Unwrap() error { return e.Err }

// Clip is the decoded result for one voice line: its exact duration and
// the loudness envelope, one value per video frame.
type Clip struct {
	Path     string
	Duration float64
	Envelope []float64
}

// Analyze decodes a WAV file and computes its loudness envelope.
//
// Multi-channel audio is collapsed to mono by averaging channels per
// sample index. Samples are normalized against the waveform's own peak
// (a silent file yields an all-zero envelope), then bucketed into
// round(sampleRate/fps) chunks; each chunk contributes
// mean(|sample|)*scale. The last short chunk still produces a value, so
// len(Envelope) == ceil(sampleCount / chunkSize).
func Analyze(path string, fps int, scale float64) (*Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &MediaError{Path: path, Err: err}
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, &MediaError{Path: path, Err: fmt.Errorf("не WAV-файл")}
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, &MediaError{Path: path, Err: err}
	}

	numCh := buf.Format.NumChannels
	if numCh < 1 {
		numCh = 1
	}
	sampleRate := buf.Format.SampleRate
	if sampleRate <= 0 {
		return nil, &MediaError{Path: path, Err: fmt.Errorf("некорректный sample rate %d", sampleRate)}
	}

	frames := len(buf.Data) / numCh
	if frames == 0 {
		return nil, &MediaError{Path: path, Err: fmt.Errorf("пустой waveform")}
	}

	// Стерео -> моно: среднее по каналам для каждого отсчета
	mono := make([]float64, frames)
	for i := 0; i < frames; i++ {
		sum := 0.0
		for c := 0; c < numCh; c++ {
			sum += float64(buf.Data[i*numCh+c])
		}
		mono[i] = sum / float64(numCh)
	}

	peak := 0.0
	for _, s := range mono {
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}

	chunk := int(math.Round(float64(sampleRate) / float64(fps)))
	if chunk < 1 {
		chunk = 1
	}

	env := make([]float64, 0, (frames+chunk-1)/chunk)
	for start := 0; start < frames; start += chunk {
		end := start + chunk
		if end > frames {
			end = frames
		}
		if peak == 0 {
			env = append(env, 0)
			continue
		}
		sum := 0.0
		for _, s := range mono[start:end] {
			sum += math.Abs(s) / peak
		}
		env = append(env, sum/float64(end-start)*scale)
	}

	return &Clip{
		Path:     path,
		Duration: float64(frames) / float64(sampleRate),
		Envelope: env,
	}, nil
}
