package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/damianwgriggs/The-Stickverse/internal/config"
	"github.com/damianwgriggs/The-Stickverse/internal/engine"
	"github.com/damianwgriggs/The-Stickverse/internal/scene"
	"github.com/damianwgriggs/The-Stickverse/internal/script"
	"github.com/damianwgriggs/The-Stickverse/internal/system"
	"github.com/damianwgriggs/The-Stickverse/internal/video"
)

func main() {
	// Увеличиваем лимиты системы (для macOS/Linux)
	system.InitResourceLimits()

	// Создаем нужные директории, если их нет
	dirs := []string{"audio", "input/scripts", "output"}
	for _, d := range dirs {
		os.MkdirAll(d, 0755)
	}

	scriptPtr := flag.String("script", "", "Путь к JSON-сценарию (по умолчанию: script_ready.json или самый свежий файл в input/scripts/)")
	audioPtr := flag.String("audio-dir", "audio", "Папка с озвученными репликами (WAV)")
	outputPtr := flag.String("output", "", "Путь к видео (если пусто, генерируется автоматически в output/)")
	rosterPtr := flag.String("roster", "", "YAML-файл с ростером персонажей (если пусто, встроенный)")
	widthPtr := flag.Int("width", 1280, "Ширина")
	heightPtr := flag.Int("height", 720, "Высота")
	fpsPtr := flag.Int("fps", 24, "FPS")
	workersPtr := flag.Int("workers", 0, "Потоки (0 - авто по CPU/памяти)")
	silencePtr := flag.Float64("silence", 0.2, "Пауза между репликами (сек)")
	mouthScalePtr := flag.Float64("mouth-scale", 20, "Масштаб открытия рта от громкости")
	mouthMaxPtr := flag.Int("mouth-max", 60, "Максимальный зазор рта (пикс)")
	subtitlesPtr := flag.Bool("subtitles", false, "Рисовать текст реплики внизу кадра")
	qualityPtr := flag.Int("quality", 0, "Качество видео (0 - авто, x264: CRF 1-51, VideoToolbox: битрейт = Q*100кбит/с)")
	statsPtr := flag.Bool("stats", false, "Показать отчет о производительности")

	flag.Parse()

	scriptPath := *scriptPtr
	if scriptPath == "" {
		scriptPath = "script_ready.json"
		if _, err := os.Stat(scriptPath); err != nil {
			latest, err := system.FindLatestScript("input/scripts")
			if err != nil {
				log.Fatalf("[-] Ошибка: %v. Положите сценарий в input/scripts/ или укажите -script", err)
			}
			scriptPath = latest
			fmt.Printf("[*] Выбран сценарий: %s\n", scriptPath)
		}
	}

	roster := scene.DefaultRoster()
	if *rosterPtr != "" {
		r, err := scene.ReadRoster(*rosterPtr)
		if err != nil {
			log.Fatalf("[-] Ошибка чтения ростера: %v", err)
		}
		roster = r
		fmt.Printf("[*] Используется ростер: %s\n", *rosterPtr)
	}

	finalOutput := *outputPtr
	if finalOutput == "" {
		baseName := filepath.Base(scriptPath)
		nameOnly := strings.TrimSuffix(baseName, filepath.Ext(baseName))
		cleanName := strings.ReplaceAll(nameOnly, " ", "_")
		timestamp := time.Now().Format("2006-01-02_15-04-05")
		finalOutput = filepath.Join("output", fmt.Sprintf("%s_%s.mp4", cleanName, timestamp))
	}

	encoderName, _ := system.GetBestH264Encoder()
	if encoderName != "libx264" {
		fmt.Printf("[*] Обнаружено аппаратное ускорение: %s\n", encoderName)
	}

	quality := *qualityPtr
	if quality == 0 {
		switch encoderName {
		case "h264_videotoolbox":
			quality = 75 // Хорошее качество для VideoToolbox
		case "h264_nvenc":
			quality = 28 // Эквивалент CRF для NVENC
		default:
			quality = 23 // Стандартный CRF для x264
		}
	}

	workers := *workersPtr
	if workers <= 0 {
		workers = system.OptimalWorkers(*widthPtr, *heightPtr)
	}

	cfg := &config.Config{
		ScriptPath:      scriptPath,
		AudioDir:        *audioPtr,
		OutputVideo:     finalOutput,
		RosterPath:      *rosterPtr,
		Width:           *widthPtr,
		Height:          *heightPtr,
		FPS:             *fpsPtr,
		Workers:         workers,
		SilenceDuration: *silencePtr,
		EnvelopeScale:   100,
		MouthScale:      *mouthScalePtr,
		MouthMaxGap:     *mouthMaxPtr,
		Subtitles:       *subtitlesPtr,
		VideoEncoder:    encoderName,
		Quality:         quality,
		ShowStats:       *statsPtr,
	}

	// Инициализируем зависимости
	ve := &video.FFmpegEncoder{}

	project := engine.NewAnimationProject(cfg, roster, ve)
	err := project.Run(context.Background())
	switch {
	case errors.Is(err, script.ErrScriptNotFound):
		log.Fatalf("[-] %v", err)
	case errors.Is(err, engine.ErrEmptyTimeline):
		fmt.Println("[-] Ни одной реплики с аудио — видео не создано")
		return
	case err != nil:
		log.Fatalf("[-] Ошибка проекта: %v", err)
	}

	fmt.Printf("[+++] Успех! Результат: %s\n", cfg.OutputVideo)
}
