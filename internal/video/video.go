package video

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/damianwgriggs/The-Stickverse/internal/config"
	"github.com/damianwgriggs/The-Stickverse/internal/scene"
	"github.com/damianwgriggs/The-Stickverse/internal/system"
	"github.com/damianwgriggs/The-Stickverse/internal/timeline"
)

type VideoEncoder interface {
	EncodeSegment(ctx context.Context, seg timeline.Segment, rend *scene.Renderer, videoPath string, params config.SegmentParams, encoderName string, quality int) error
	Concatenate(ctx context.Context, segmentPaths []string, finalPath string, tmpDir string) error
}

type FFmpegEncoder struct{}

// EncodeSegment рендерит кадры сегмента и кодирует их в отдельный
// mp4-файл. Видео идет через stdin как rawvideo (без I/O на диск),
// аудио — дорожка реплики либо тишина anullsrc, чтобы при склейке
// аудиопоток оставался непрерывным.
func (e *FFmpegEncoder) EncodeSegment(
	ctx context.Context,
	seg timeline.Segment,
	rend *scene.Renderer,
	videoPath string,
	params config.SegmentParams,
	encoderName string,
	quality int,
) error {
	args := e.buildFFmpegArgs(videoPath, params, encoderName, quality)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("stdin pipe error: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("ffmpeg start error: %w", err)
	}

	rect := image.Rect(0, 0, params.Width, params.Height)
	writeErr := func() error {
		for f := 0; f < params.FrameCount; f++ {
			t := float64(f) / float64(params.FPS)
			img := system.GetFrame(rect)
			rend.RenderInto(img, seg.Params(t, params.FPS))
			err := e.writeRawRGBA(stdin, img)
			system.PutFrame(img)
			if err != nil {
				return err
			}
		}
		return nil
	}()
	stdin.Close()

	if writeErr != nil {
		cmd.Wait()
		return fmt.Errorf("write raw error: %w", writeErr)
	}

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg wait error: %v, log: %s", err, out.String())
	}

	return nil
}

func (e *FFmpegEncoder) buildFFmpegArgs(
	videoPath string,
	params config.SegmentParams,
	encoderName string,
	quality int,
) []string {
	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", params.Width, params.Height),
		"-framerate", fmt.Sprintf("%d", params.FPS),
		"-i", "-",
	}

	// Точная длительность сегмента по сетке кадров
	exactDur := float64(params.FrameCount) / float64(params.FPS)

	if params.AudioPath != "" {
		args = append(args, "-i", params.AudioPath)
	} else {
		args = append(args, "-f", "lavfi", "-t", fmt.Sprintf("%f", exactDur),
			"-i", "anullsrc=r=44100:cl=stereo")
	}

	args = append(args,
		"-t", fmt.Sprintf("%f", exactDur),
		"-af", "apad",
		"-r", fmt.Sprintf("%d", params.FPS),
		"-pix_fmt", "yuv420p",
		"-c:v", encoderName,
		"-c:a", "aac",
		"-b:a", "192k",
	)

	// Качество в зависимости от энкодера
	switch encoderName {
	case "h264_videotoolbox":
		bitrate := quality * 100
		args = append(args, "-b:v", fmt.Sprintf("%dk", bitrate))
	case "h264_nvenc":
		args = append(args, "-cq", fmt.Sprintf("%d", quality))
	default: // libx264
		args = append(args, "-crf", fmt.Sprintf("%d", quality), "-preset", "medium")
	}

	args = append(args, videoPath)
	return args
}

func (e *FFmpegEncoder) writeRawRGBA(w io.Writer, img image.Image) error {
	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != bounds.Dx()*4 || rgba.Rect.Min.X != 0 || rgba.Rect.Min.Y != 0 {
		rgba = image.NewRGBA(bounds)
		draw.Draw(rgba, bounds, img, bounds.Min, draw.Src)
	}
	_, err := w.Write(rgba.Pix)
	return err
}

// Concatenate склеивает готовые сегменты в финальный файл без
// перекодирования: у всех сегментов одинаковые параметры потоков.
func (e *FFmpegEncoder) Concatenate(ctx context.Context, segmentPaths []string, finalPath string, tmpDir string) error {
	concatFilePath := filepath.Join(tmpDir, "inputs.txt")
	f, err := os.Create(concatFilePath)
	if err != nil {
		return err
	}
	for _, p := range segmentPaths {
		absPath, _ := filepath.Abs(p)
		fmt.Fprintf(f, "file '%s'\n", absPath)
	}
	f.Close()

	cmd := exec.CommandContext(ctx, "ffmpeg", "-y",
		"-f", "concat", "-safe", "0", "-i", concatFilePath,
		"-c", "copy", finalPath,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg concat error: %v, output: %s", err, string(out))
	}
	return nil
}
