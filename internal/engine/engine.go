package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/damianwgriggs/The-Stickverse/internal/config"
	"github.com/damianwgriggs/The-Stickverse/internal/scene"
	"github.com/damianwgriggs/The-Stickverse/internal/script"
	"github.com/damianwgriggs/The-Stickverse/internal/timeline"
	"github.com/damianwgriggs/The-Stickverse/internal/video"
)

// ErrEmptyTimeline: сценарий не дал ни одного сегмента, файл не пишем.
var ErrEmptyTimeline = errors.New("сценарий не содержит пригодных реплик")

type AnimationProject struct {
	Config   *config.Config
	Roster   *scene.Roster
	Renderer *scene.Renderer
	Encoder  video.VideoEncoder
	tempDir  string
}

func NewAnimationProject(cfg *config.Config, roster *scene.Roster, ve video.VideoEncoder) *AnimationProject {
	return &AnimationProject{
		Config:   cfg,
		Roster:   roster,
		Renderer: scene.NewRenderer(cfg.Width, cfg.Height, cfg.MouthScale, cfg.MouthMaxGap, roster),
		Encoder:  ve,
	}
}

func (p *AnimationProject) Run(ctx context.Context) error {
	startTime := time.Now()
	var encodeStart, encodeEnd, concatStart time.Time

	var err error
	p.tempDir, err = os.MkdirTemp("", "stickverse_")
	if err != nil {
		return err
	}
	defer os.RemoveAll(p.tempDir)

	events, err := script.Read(p.Config.ScriptPath)
	if err != nil {
		return err
	}

	walker := timeline.NewWalker(p.Config, p.Roster)
	segments, mediaErrs := walker.Build(events)
	if len(mediaErrs) > 0 {
		log.Printf("[!] Пропущено реплик из-за ошибок аудио: %d", len(mediaErrs))
	}

	if len(segments) == 0 {
		return ErrEmptyTimeline
	}

	totalDuration := timeline.TotalDuration(segments)

	fmt.Println("--- [STICKVERSE: ANIMATION ENGINE] ---")
	fmt.Printf("[*] Сценарий: %s | Событий: %d | Сегментов: %d\n", p.Config.ScriptPath, len(events), len(segments))
	fmt.Printf("[*] Разрешение: %dx%d @ %d FPS | Длительность: %.2fs\n", p.Config.Width, p.Config.Height, p.Config.FPS, totalDuration)
	fmt.Println("--------------------------------------")

	// Кодируем сегменты параллельно: рендер чистый, единственная точка
	// сериализации — финальная склейка
	jobs := make(chan int, len(segments))
	results := make([]string, len(segments))

	numWorkers := p.Config.Workers
	if numWorkers > len(segments) {
		numWorkers = len(segments)
	}
	if numWorkers < 1 {
		numWorkers = 1
	}

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				seg := segments[i]
				segPath := filepath.Join(p.tempDir, fmt.Sprintf("s%d.mp4", i))

				params := config.SegmentParams{
					Width:        p.Config.Width,
					Height:       p.Config.Height,
					FPS:          p.Config.FPS,
					Duration:     seg.Duration,
					FrameCount:   seg.FrameCount(p.Config.FPS),
					AudioPath:    seg.AudioPath,
					SegmentIndex: i,
				}

				err := p.Encoder.EncodeSegment(ctx, seg, p.Renderer, segPath, params, p.Config.VideoEncoder, p.Config.Quality)
				if err != nil {
					log.Printf("[!] Ошибка кодирования сегмента %d: %v", i, err)
					continue
				}

				results[i] = segPath
				fmt.Printf("[>] Готово: %d/%d\n", i+1, len(segments))
			}
		}()
	}

	encodeStart = time.Now()
	for i := range segments {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	encodeEnd = time.Now()

	for i, r := range results {
		if r == "" {
			return fmt.Errorf("сегмент %d не был создан. Проверьте логи FFmpeg", i)
		}
	}

	fmt.Println("[*] Сборка финального видео...")
	concatStart = time.Now()
	err = p.Encoder.Concatenate(ctx, results, p.Config.OutputVideo, p.tempDir)
	if err != nil {
		return fmt.Errorf("ошибка сборки финального видео: %v", err)
	}

	totalTime := time.Since(startTime)
	encodeTime := encodeEnd.Sub(encodeStart)
	concatTime := time.Since(concatStart)

	if p.Config.ShowStats {
		report := fmt.Sprintf(
			"--- [PERFORMANCE REPORT] ---\n"+
				"Build: %s\n"+
				"Total Time: %.2fs\n"+
				"Render+Encode: %.2fs\n"+
				"Concatenation: %.2fs\n"+
				"Output Duration: %.2fs\n"+
				"Realtime Factor: %.2fx\n"+
				"----------------------------\n",
			p.Config.BuildVersion, totalTime.Seconds(), encodeTime.Seconds(), concatTime.Seconds(),
			totalDuration, totalDuration/totalTime.Seconds(),
		)
		fmt.Print(report)

		logEntry := fmt.Sprintf("[%s] Build: %s | Script: %s | Segments: %d | Total: %.2fs | Encode: %.2fs\n",
			time.Now().Format("2006-01-02 15:04:05"),
			p.Config.BuildVersion,
			filepath.Base(p.Config.ScriptPath),
			len(segments),
			totalTime.Seconds(),
			encodeTime.Seconds(),
		)

		f, err := os.OpenFile("benchmark.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err == nil {
			f.WriteString(logEntry)
			f.Close()
		} else {
			fmt.Printf("[!] Не удалось записать benchmark.log: %v\n", err)
		}
	}

	return nil
}
