package video

import (
	"strings"
	"testing"

	"github.com/damianwgriggs/The-Stickverse/internal/config"
)

func TestBuildFFmpegArgsSpeech(t *testing.T) {
	e := &FFmpegEncoder{}

	params := config.SegmentParams{
		Width:      1280,
		Height:     720,
		FPS:        24,
		Duration:   1.0,
		FrameCount: 24,
		AudioPath:  "audio/line_1_Steve.wav",
	}

	args := e.buildFFmpegArgs("/tmp/s0.mp4", params, "libx264", 23)
	joined := strings.Join(args, " ")

	for _, want := range []string{
		"-f rawvideo",
		"-pixel_format rgba",
		"-video_size 1280x720",
		"-framerate 24",
		"-i audio/line_1_Steve.wav",
		"-c:v libx264",
		"-crf 23",
		"-c:a aac",
		"-pix_fmt yuv420p",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("Args missing %q: %s", want, joined)
		}
	}

	if strings.Contains(joined, "anullsrc") {
		t.Error("Speech segment must use its own audio track, not anullsrc")
	}
	if args[len(args)-1] != "/tmp/s0.mp4" {
		t.Errorf("Output path must be last, got %s", args[len(args)-1])
	}
}

func TestBuildFFmpegArgsSilence(t *testing.T) {
	e := &FFmpegEncoder{}

	params := config.SegmentParams{
		Width:      1280,
		Height:     720,
		FPS:        24,
		Duration:   0.2,
		FrameCount: 5,
	}

	args := e.buildFFmpegArgs("/tmp/s1.mp4", params, "libx264", 23)
	joined := strings.Join(args, " ")

	// Пауза получает пустую аудиодорожку, чтобы склейка не рвала аудио
	if !strings.Contains(joined, "anullsrc") {
		t.Errorf("Silence segment must carry an anullsrc track: %s", joined)
	}
}

func TestBuildFFmpegArgsEncoderQuality(t *testing.T) {
	e := &FFmpegEncoder{}
	params := config.SegmentParams{Width: 1280, Height: 720, FPS: 24, FrameCount: 24}

	nvenc := strings.Join(e.buildFFmpegArgs("o.mp4", params, "h264_nvenc", 28), " ")
	if !strings.Contains(nvenc, "-cq 28") {
		t.Errorf("NVENC should use -cq: %s", nvenc)
	}

	vt := strings.Join(e.buildFFmpegArgs("o.mp4", params, "h264_videotoolbox", 75), " ")
	if !strings.Contains(vt, "-b:v 7500k") {
		t.Errorf("VideoToolbox should use bitrate: %s", vt)
	}
}
