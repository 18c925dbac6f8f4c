package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/ivlev/knn2video/internal/config"
	"github.com/ivlev/knn2video/internal/director"
	"github.com/ivlev/knn2video/internal/effects"
	"github.com/ivlev/knn2video/internal/engine"
	"github.com/ivlev/knn2video/internal/scenes"
	"github.com/ivlev/knn2video/internal/system"
	"github.com/ivlev/knn2video/internal/video"
)

// Подставляется при сборке: -ldflags "-X main.buildVersion=..."
var buildVersion = "dev"

func main() {
	// Увеличиваем лимиты системы (для macOS/Linux)
	system.InitResourceLimits()

	// Создаем нужные директории, если их нет
	dirs := []string{"input/audio", "input/backdrop", "output", "scenarios"}
	for _, d := range dirs {
		os.MkdirAll(d, 0755)
	}

	scenePtr := flag.String("scene", "", "Сцены через запятую (по умолчанию: все, см. -list)")
	listPtr := flag.Bool("list", false, "Показать список сцен и выйти")
	configPtr := flag.String("config", "", "YAML-файл проекта с настройками и переопределениями сцен")
	outputPtr := flag.String("output", "", "Путь к видео (если пусто, генерируется автоматически в output/)")
	widthPtr := flag.Int("width", 1920, "Ширина")
	heightPtr := flag.Int("height", 1080, "Высота")
	fpsPtr := flag.Int("fps", 30, "FPS")
	workersPtr := flag.Int("workers", 0, "Параллельные сцены (0 - по ядрам и свободной памяти)")
	fadePtr := flag.Float64("fade", 0.5, "Длительность перехода (сек)")
	transitionPtr := flag.String("transition", "fade", "Тип перехода xfade: fade, wipeleft, slideup, dissolve, none")
	audioPtr := flag.String("audio", "", "Путь к аудио (по умолчанию: самый свежий файл в input/audio/)")
	presetPtr := flag.String("preset", "", "Пресет формата: 16:9, 720p, 4k")
	qualityPtr := flag.Int("quality", 0, "Качество видео (0 - авто, x264: CRF 1-51, VideoToolbox: битрейт = Q*100кбит/с)")
	scenarioOutPtr := flag.String("scenario-out", "", "Сохранить сценарий в YAML (auto - в папку scenarios/)")
	scenarioOnlyPtr := flag.Bool("scenario-only", false, "Только сгенерировать сценарий, без рендера")
	scenarioCheckPtr := flag.String("scenario-check", "", "Сверить сохраненный сценарий с текущими сценами (latest - самый свежий в scenarios/)")
	backdropPtr := flag.String("backdrop", "", "Фон: PDF или изображение (latest - самый свежий файл в input/backdrop/)")
	backdropPagePtr := flag.Int("backdrop-page", 1, "Страница PDF для фона (с 1)")
	urlPtr := flag.String("url", "", "Ссылка на статью для финальной карточки с QR-кодом")
	statsPtr := flag.Bool("stats", false, "Показать отчет о производительности и дописать benchmark.log")
	debugPtr := flag.Bool("debug", false, "Отладочные подписи шагов и проверка раскладки")

	flag.Parse()

	if *listPtr {
		for _, name := range scenes.Names() {
			e, _ := scenes.Lookup(name)
			suffix := ""
			if e.Optional {
				suffix = " (опционально)"
			}
			fmt.Printf("%-24s %s%s\n", name, e.Description, suffix)
		}
		return
	}

	cfg := config.Default()
	if *configPtr != "" {
		var err error
		cfg, err = config.LoadFile(*configPtr)
		if err != nil {
			log.Fatalf("[-] Ошибка конфигурации: %v", err)
		}
		fmt.Printf("[*] Конфигурация: %s\n", *configPtr)
	}

	// Флаги, заданные явно, важнее файла проекта
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["scene"] || *configPtr == "" {
		cfg.Scenes = splitList(*scenePtr)
	}
	if set["output"] {
		cfg.OutputVideo = *outputPtr
	}
	if set["width"] || *configPtr == "" {
		cfg.Width = *widthPtr
	}
	if set["height"] || *configPtr == "" {
		cfg.Height = *heightPtr
	}
	if set["fps"] || *configPtr == "" {
		cfg.FPS = *fpsPtr
	}
	if set["workers"] {
		cfg.Workers = *workersPtr
	}
	if set["fade"] || *configPtr == "" {
		cfg.FadeDuration = *fadePtr
	}
	if set["transition"] || *configPtr == "" {
		cfg.TransitionType = *transitionPtr
	}
	if set["audio"] {
		cfg.AudioPath = *audioPtr
	}
	if set["quality"] {
		cfg.Quality = *qualityPtr
	}
	if set["scenario-out"] {
		cfg.ScenarioOutput = *scenarioOutPtr
	}
	if set["scenario-only"] {
		cfg.ScenarioOnly = *scenarioOnlyPtr
	}
	if set["backdrop"] {
		cfg.Backdrop = *backdropPtr
	}
	if set["backdrop-page"] {
		cfg.BackdropPage = *backdropPagePtr - 1
	}
	if set["url"] {
		cfg.URL = *urlPtr
	}
	if set["stats"] {
		cfg.ShowStats = *statsPtr
	}
	if set["debug"] {
		cfg.Debug = *debugPtr
	}

	preset := cfg.Preset
	if set["preset"] {
		preset = *presetPtr
	}
	if err := cfg.ApplyPreset(preset); err != nil {
		log.Fatalf("[-] Ошибка: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[-] Ошибка: %v", err)
	}

	for _, name := range cfg.Scenes {
		if _, err := scenes.Lookup(name); err != nil {
			log.Fatalf("[-] Ошибка: %v. Список сцен: -list", err)
		}
	}

	if *scenarioCheckPtr != "" {
		os.Exit(checkScenario(cfg, *scenarioCheckPtr))
	}

	if cfg.ScenarioOutput == "auto" || (cfg.ScenarioOnly && cfg.ScenarioOutput == "") {
		cfg.ScenarioOutput = director.GenerateScenarioPath("scenarios")
	}

	if cfg.Backdrop == "latest" {
		latest, err := system.FindLatestBackdrop("input/backdrop")
		if err != nil {
			log.Fatalf("[-] Ошибка: %v. Положите PDF или изображение в input/backdrop/", err)
		}
		cfg.Backdrop = latest
		fmt.Printf("[*] Выбран фон: %s\n", cfg.Backdrop)
	}

	// Обработка аудио
	if cfg.AudioPath == "" && !cfg.ScenarioOnly {
		latest, err := system.FindLatestAudio("input/audio")
		if err == nil {
			cfg.AudioPath = latest
			fmt.Printf("[*] Выбрано аудио: %s\n", cfg.AudioPath)
		}
	}
	if cfg.AudioPath != "" {
		if audioDur, err := system.GetAudioDuration(cfg.AudioPath); err == nil {
			fmt.Printf("[*] Длительность аудио: %.2fs\n", audioDur)
		} else {
			log.Printf("[!] Не удалось получить длительность аудио: %v", err)
		}
	}

	if cfg.OutputVideo == "" {
		base := "knn"
		if len(cfg.Scenes) == 1 {
			base = cfg.Scenes[0]
		}
		timestamp := time.Now().Format("2006-01-02_15-04-05")
		cfg.OutputVideo = filepath.Join("output", fmt.Sprintf("%s_%s.mp4", base, timestamp))
	}

	if cfg.Workers <= 0 {
		cfg.Workers = system.RecommendedWorkers(cfg.Width, cfg.Height)
		fmt.Printf("[*] Воркеры: %d (%s)\n", cfg.Workers, system.ResourceSummary())
	}

	if !cfg.ScenarioOnly {
		encoderName, _ := system.GetBestH264Encoder()
		if encoderName != "libx264" {
			fmt.Printf("[*] Обнаружено аппаратное ускорение: %s\n", encoderName)
		}
		cfg.VideoEncoder = encoderName
	}

	if cfg.Quality == 0 {
		switch cfg.VideoEncoder {
		case "h264_videotoolbox":
			cfg.Quality = 75 // Хорошее качество для VideoToolbox
		case "h264_nvenc":
			cfg.Quality = 28 // Эквивалент CRF для NVENC
		default:
			cfg.Quality = 23 // Стандартный CRF для x264
		}
	}
	cfg.BuildVersion = buildVersion

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Инициализируем зависимости
	ve := &video.FFmpegEncoder{}
	eff := &effects.DefaultEffect{}

	project := engine.NewVideoProject(cfg, ve, eff)
	if err := project.Run(ctx); err != nil {
		log.Fatalf("[-] Ошибка проекта: %v", err)
	}

	if cfg.ScenarioOnly {
		fmt.Printf("[+++] Успех! Сценарий: %s\n", cfg.ScenarioOutput)
		return
	}
	fmt.Printf("[+++] Успех! Результат: %s\n", cfg.OutputVideo)
}

// checkScenario rebuilds the scenes of a saved scenario and returns the
// process exit code: 0 when every script is reproduced exactly
func checkScenario(cfg *config.Config, path string) int {
	if path == "latest" {
		latest, err := director.FindLatestScenario("scenarios")
		if err != nil {
			log.Fatalf("[-] Ошибка: %v", err)
		}
		path = latest
	}
	fmt.Printf("[*] Проверка сценария: %s\n", path)

	project := engine.NewVideoProject(cfg, nil, nil)
	diff, err := project.CheckScenario(path)
	if err != nil {
		log.Fatalf("[-] Ошибка проверки: %v", err)
	}
	if len(diff) == 0 {
		fmt.Println("[+++] Сценарий воспроизводится без изменений")
		return 0
	}
	for _, m := range diff {
		fmt.Printf("[!] %s\n", m)
	}
	return 1
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
