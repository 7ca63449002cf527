// Package timeline walks the ordered event list and assembles the
// gapless segment sequence the encoder consumes.
package timeline

import (
	"log"
	"math"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/damianwgriggs/The-Stickverse/internal/config"
	"github.com/damianwgriggs/The-Stickverse/internal/envelope"
	"github.com/damianwgriggs/The-Stickverse/internal/scene"
	"github.com/damianwgriggs/The-Stickverse/internal/script"
)

// Segment is one time-addressable unit of the final timeline: a spoken
// line or an inter-line pause. Segments are plain value records; all
// per-event state lives here, not in captured closures.
type Segment struct {
	Duration   float64
	Character  string // canonical id, "" for silence
	Envelope   []float64
	Background string
	AudioPath  string // "" for silence
	Caption    string
}

// MouthAt returns the mouth-openness value for local time t. Past the
// end of the envelope the mouth stays closed.
func (s Segment) MouthAt(t float64, fps int) float64 {
	idx := int(t * float64(fps))
	if idx < 0 || idx >= len(s.Envelope) {
		return 0
	}
	return s.Envelope[idx]
}

// FrameCount returns how many frames the segment occupies. Speech
// segments carry exactly one frame per envelope value; silence rounds
// its duration to the frame grid.
func (s Segment) FrameCount(fps int) int {
	if len(s.Envelope) > 0 {
		return len(s.Envelope)
	}
	n := int(math.Round(s.Duration * float64(fps)))
	if n < 1 {
		n = 1
	}
	return n
}

// Params builds the render parameters for local time t.
func (s Segment) Params(t float64, fps int) scene.FrameParams {
	return scene.FrameParams{
		Time:       t,
		Speaker:    s.Character,
		MouthOpen:  s.MouthAt(t, fps),
		Background: s.Background,
		Caption:    s.Caption,
	}
}

// TotalDuration sums segment durations.
func TotalDuration(segments []Segment) float64 {
	total := 0.0
	for _, s := range segments {
		total += s.Duration
	}
	return total
}

// Walker turns the event list into segments.
type Walker struct {
	cfg    *config.Config
	roster *scene.Roster
}

func NewWalker(cfg *config.Config, roster *scene.Roster) *Walker {
	return &Walker{cfg: cfg, roster: roster}
}

type speakJob struct {
	character  string // canonical id
	audioPath  string
	background string
	caption    string
}

// Build processes events strictly in order: background events update
// the current scene kind, speak events with audio become a speech
// segment followed by a fixed-length pause. Per-line media failures are
// collected and returned; they never abort the walk.
func (w *Walker) Build(events []script.Event) ([]Segment, []error) {
	currentBg := "default"
	var jobs []speakJob

	for _, ev := range events {
		switch ev.Type {
		case script.TypeBackground:
			if ev.Description != "" {
				currentBg = ev.Description
			} else {
				currentBg = "default"
			}
		case script.TypeSpeak:
			if ev.AudioFile == "" {
				continue
			}
			id, known := w.roster.Canonical(ev.Character)
			if !known {
				log.Printf("[!] Персонаж %q не найден в ростере — рот останется закрытым", ev.Character)
			}
			caption := ""
			if w.cfg.Subtitles {
				caption = ev.Text
			}
			jobs = append(jobs, speakJob{
				character:  id,
				audioPath:  filepath.Join(w.cfg.AudioDir, ev.AudioFile),
				background: currentBg,
				caption:    caption,
			})
		}
		// Остальные типы (action и т.п.) — аннотации, пропускаем
	}

	// Анализ WAV независим для каждой реплики — параллелим
	clips := make([]*envelope.Clip, len(jobs))
	clipErrs := make([]error, len(jobs))

	limit := w.cfg.Workers
	if limit < 1 {
		limit = 1
	}
	var g errgroup.Group
	g.SetLimit(limit)
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			clips[i], clipErrs[i] = envelope.Analyze(job.audioPath, w.cfg.FPS, w.cfg.EnvelopeScale)
			return nil
		})
	}
	g.Wait()

	var segments []Segment
	var mediaErrs []error

	for i, job := range jobs {
		if clipErrs[i] != nil {
			log.Printf("[!] %v — реплика пропущена", clipErrs[i])
			mediaErrs = append(mediaErrs, clipErrs[i])
			continue
		}
		clip := clips[i]

		segments = append(segments, Segment{
			Duration:   clip.Duration,
			Character:  job.character,
			Envelope:   clip.Envelope,
			Background: job.background,
			AudioPath:  clip.Path,
			Caption:    job.caption,
		})

		// Пауза между репликами: все молчат, без аудиодорожки
		segments = append(segments, Segment{
			Duration:   w.cfg.SilenceDuration,
			Background: job.background,
		})
	}

	return segments, mediaErrs
}
