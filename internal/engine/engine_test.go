package engine

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/damianwgriggs/The-Stickverse/internal/config"
	"github.com/damianwgriggs/The-Stickverse/internal/scene"
	"github.com/damianwgriggs/The-Stickverse/internal/script"
	"github.com/damianwgriggs/The-Stickverse/internal/timeline"
)

// fakeEncoder записывает вызовы вместо запуска ffmpeg.
type fakeEncoder struct {
	mu        sync.Mutex
	segments  []config.SegmentParams
	concatTo  string
	concatLen int
}

func (f *fakeEncoder) EncodeSegment(_ context.Context, _ timeline.Segment, _ *scene.Renderer, videoPath string, params config.SegmentParams, _ string, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.segments = append(f.segments, params)
	return os.WriteFile(videoPath, []byte("stub"), 0644)
}

func (f *fakeEncoder) Concatenate(_ context.Context, segmentPaths []string, finalPath string, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.concatTo = finalPath
	f.concatLen = len(segmentPaths)
	return nil
}

func writeFixtureWAV(t *testing.T, path string, seconds float64) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	const sr = 44100
	n := int(seconds * sr)
	data := make([]int, n)
	for i := range data {
		data[i] = int(8000 * math.Sin(2*math.Pi*440*float64(i)/sr))
	}

	enc := wav.NewEncoder(f, sr, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sr},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
}

func testProject(t *testing.T, events []script.Event) (*AnimationProject, *fakeEncoder) {
	t.Helper()

	dir := t.TempDir()
	scriptPath := filepath.Join(dir, "script_ready.json")
	if err := script.Write(events, scriptPath); err != nil {
		t.Fatal(err)
	}

	cfg := &config.Config{
		ScriptPath:      scriptPath,
		AudioDir:        dir,
		OutputVideo:     filepath.Join(dir, "out.mp4"),
		Width:           1280,
		Height:          720,
		FPS:             24,
		Workers:         2,
		SilenceDuration: 0.2,
		EnvelopeScale:   100,
		MouthScale:      20,
		MouthMaxGap:     60,
		VideoEncoder:    "libx264",
		Quality:         23,
	}

	fe := &fakeEncoder{}
	return NewAnimationProject(cfg, scene.DefaultRoster(), fe), fe
}

func TestRunEncodesAllSegments(t *testing.T) {
	p, fe := testProject(t, []script.Event{
		{Type: "background", Description: "desert"},
		{Type: "speak", Character: "Steve", Text: "hi", AudioFile: "a.wav"},
	})
	writeFixtureWAV(t, filepath.Join(p.Config.AudioDir, "a.wav"), 1.0)

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(fe.segments) != 2 {
		t.Fatalf("Expected 2 encoded segments, got %d", len(fe.segments))
	}
	if fe.concatLen != 2 {
		t.Errorf("Expected concat of 2 segments, got %d", fe.concatLen)
	}
	if fe.concatTo != p.Config.OutputVideo {
		t.Errorf("Concat target %q, expected %q", fe.concatTo, p.Config.OutputVideo)
	}
}

func TestRunEmptyTimeline(t *testing.T) {
	p, fe := testProject(t, []script.Event{
		{Type: "background", Description: "space"},
		{Type: "speak", Character: "Bob", Text: "no audio yet"},
	})

	err := p.Run(context.Background())
	if !errors.Is(err, ErrEmptyTimeline) {
		t.Fatalf("Expected ErrEmptyTimeline, got %v", err)
	}
	if len(fe.segments) != 0 || fe.concatLen != 0 {
		t.Error("Nothing should be encoded for an empty timeline")
	}
}

func TestRunMissingScript(t *testing.T) {
	p, _ := testProject(t, nil)
	p.Config.ScriptPath = filepath.Join(t.TempDir(), "nope.json")

	err := p.Run(context.Background())
	if !errors.Is(err, script.ErrScriptNotFound) {
		t.Fatalf("Expected ErrScriptNotFound, got %v", err)
	}
}
