package engine

import (
	"context"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ivlev/knn2video/internal/analyzer"
	"github.com/ivlev/knn2video/internal/config"
	"github.com/ivlev/knn2video/internal/director"
	"github.com/ivlev/knn2video/internal/effects"
	"github.com/ivlev/knn2video/internal/renderer"
	"github.com/ivlev/knn2video/internal/scene"
	"github.com/ivlev/knn2video/internal/scenes"
	"github.com/ivlev/knn2video/internal/source"
	"github.com/ivlev/knn2video/internal/system"
	"github.com/ivlev/knn2video/internal/video"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

type VideoProject struct {
	Config   *config.Config
	Encoder  video.VideoEncoder
	Effect   effects.Effect
	Director *director.Director

	backdrop image.Image
	tempDir  string
}

func NewVideoProject(cfg *config.Config, ve video.VideoEncoder, eff effects.Effect) *VideoProject {
	return &VideoProject{
		Config:   cfg,
		Encoder:  ve,
		Effect:   eff,
		Director: director.NewDirector(cfg.FPS),
	}
}

// SceneNames returns the scenes to render: the configured list, or every
// default scene plus the end card when a tutorial URL is known
func (p *VideoProject) SceneNames() []string {
	if len(p.Config.Scenes) > 0 {
		return p.Config.Scenes
	}
	names := scenes.DefaultNames()
	if p.Config.URL != "" {
		names = append(names, "EndCard")
	}
	return names
}

// BuildScenes builds every scene with its overrides from the project file.
// The tutorial URL is layered on top; scenes without a url key ignore it.
func (p *VideoProject) BuildScenes(names []string) ([]*scene.Scene, error) {
	var urlNode *yaml.Node
	if p.Config.URL != "" {
		urlNode = &yaml.Node{}
		if err := urlNode.Encode(map[string]string{"url": p.Config.URL}); err != nil {
			return nil, err
		}
	}

	built := make([]*scene.Scene, 0, len(names))
	for _, name := range names {
		sc, err := scenes.Build(name, p.Config.Override(name), urlNode)
		if err != nil {
			return nil, fmt.Errorf("сцена %s: %w", name, err)
		}
		built = append(built, sc)
	}
	return built, nil
}

// CheckScenario rebuilds the scenes of a saved scenario with the current
// project settings and reports every script that would come out different
func (p *VideoProject) CheckScenario(path string) ([]director.Mismatch, error) {
	saved, err := director.ReadScenario(path)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(saved.Scripts))
	for i, s := range saved.Scripts {
		names[i] = s.Name
	}
	built, err := p.BuildScenes(names)
	if err != nil {
		return nil, err
	}

	// Длительности выравниваются по кадрам сохраненного FPS
	fps := saved.FPS
	if fps <= 0 {
		fps = p.Config.FPS
	}
	fresh, err := director.NewDirector(fps).GenerateScenario(built, saved.Width, saved.Height)
	if err != nil {
		return nil, fmt.Errorf("ошибка режиссуры: %w", err)
	}
	return director.Compare(saved, fresh), nil
}

func (p *VideoProject) Run(ctx context.Context) error {
	startTime := time.Now()

	built, err := p.BuildScenes(p.SceneNames())
	if err != nil {
		return err
	}

	scenario, err := p.Director.GenerateScenario(built, p.Config.Width, p.Config.Height)
	if err != nil {
		return fmt.Errorf("ошибка режиссуры: %w", err)
	}

	if p.Config.ScenarioOutput != "" {
		if err := director.WriteScenario(scenario, p.Config.ScenarioOutput); err != nil {
			return fmt.Errorf("ошибка записи сценария: %w", err)
		}
		fmt.Printf("[*] Сценарий сохранен: %s\n", p.Config.ScenarioOutput)
	}
	if p.Config.ScenarioOnly {
		return nil
	}

	p.planDurations(scenario)

	if p.Config.Debug {
		// Подписи шагов берутся из того же сценария, что и рендер
		overlay := effects.NewScenarioEffect(scenario)
		overlay.Base = p.Effect
		p.Effect = overlay
	}

	if p.Config.Backdrop != "" {
		p.backdrop, err = source.LoadBackdrop(p.Config.Backdrop, p.Config.BackdropPage, p.Config.BackdropDPI, p.Config.Height)
		if err != nil {
			return err
		}
		fmt.Printf("[*] Фон: %s (страница %d)\n", p.Config.Backdrop, p.Config.BackdropPage+1)
	}

	p.tempDir, err = os.MkdirTemp("", "knn2video_")
	if err != nil {
		return err
	}
	defer os.RemoveAll(p.tempDir)

	sceneCount := len(scenario.Scripts)
	workers := p.Config.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > sceneCount {
		workers = sceneCount
	}

	fmt.Println("--- [PROJECT: KNN TUTORIAL] ---")
	fmt.Printf("[*] Сцены: %s\n", strings.Join(p.SceneNames(), ", "))
	fmt.Printf("[*] Разрешение: %dx%d @ %d FPS | Воркеры: %d | Длительность: %.2fs\n",
		p.Config.Width, p.Config.Height, p.Config.FPS, workers, p.Config.TotalDuration)
	fmt.Println("-----------------------------")

	// Сцены независимы: каждая рендерится и кодируется своим воркером
	results := make([]string, sceneCount)
	var frames atomic.Int64

	renderStart := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range scenario.Scripts {
		g.Go(func() error {
			n, err := p.renderScene(gctx, i, built[i], &scenario.Scripts[i], results)
			if err != nil {
				return fmt.Errorf("сцена %s: %w", built[i].Name, err)
			}
			frames.Add(int64(n))
			fmt.Printf("[>] Готово: %s (%d кадров)\n", built[i].Name, n)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	renderTime := time.Since(renderStart)

	fmt.Println("[*] Сборка финального видео...")
	concatStart := time.Now()
	if err := p.Encoder.Concatenate(ctx, results, p.Config.OutputVideo, p.tempDir, *p.Config); err != nil {
		return fmt.Errorf("ошибка сборки финального видео: %w", err)
	}
	concatTime := time.Since(concatStart)

	if p.Config.ShowStats {
		p.report(sceneCount, int(frames.Load()), time.Since(startTime), renderTime, concatTime)
	}

	return nil
}

// renderScene streams the frames of one scene into its segment file
func (p *VideoProject) renderScene(ctx context.Context, i int, sc *scene.Scene, script *director.Script, results []string) (int, error) {
	r, err := renderer.New(sc, script, renderer.Options{
		Width:       p.Config.Width,
		Height:      p.Config.Height,
		Backdrop:    p.backdrop,
		BackdropDim: p.Config.BackdropDim,
	})
	if err != nil {
		return 0, err
	}
	seq := r.Sequence(p.Config.FPS)

	params := config.SegmentParams{
		Width:          p.Config.Width,
		Height:         p.Config.Height,
		FPS:            p.Config.FPS,
		Duration:       script.Duration,
		FadeDuration:   p.Config.FadeDuration,
		TransitionType: p.Config.TransitionType,
		SceneIndex:     i,
		SceneName:      sc.Name,
		Debug:          p.Config.Debug,
	}
	params.Filter = p.Effect.GenerateFilter(params)

	segPath := filepath.Join(p.tempDir, fmt.Sprintf("s%d.mp4", i))
	if err := p.Encoder.EncodeSegment(ctx, seq, segPath, params, p.Config.VideoEncoder, p.Config.Quality); err != nil {
		return 0, err
	}
	results[i] = segPath

	if p.Config.Debug && p.backdrop == nil {
		if err := p.checkLayout(r, sc.Name, script.Duration); err != nil {
			log.Printf("[!] Проверка раскладки %s не удалась: %v", sc.Name, err)
		}
	}
	return seq.Frames(), nil
}

// checkLayout warns about content touching the frame border in the last
// frame of a scene
func (p *VideoProject) checkLayout(r *renderer.Renderer, name string, t float64) error {
	img, err := r.Frame(t)
	if err != nil {
		return err
	}
	detector, err := analyzer.NewDetector("content")
	if err != nil {
		return err
	}
	blocks, err := detector.Detect(img)
	if err != nil {
		return err
	}
	margin := max(1, p.Config.Height/100)
	for _, b := range analyzer.Clipped(blocks, img.Bounds(), margin) {
		log.Printf("[!] Сцена %s: содержимое у края кадра %v", name, b.Rect)
	}
	return nil
}

// planDurations copies the directed scene lengths into the config and
// derives the total length of the joined video
func (p *VideoProject) planDurations(scenario *director.Scenario) {
	n := len(scenario.Scripts)
	durations := make([]float64, n)
	minDur := 0.0
	for i, s := range scenario.Scripts {
		durations[i] = s.Duration
		if i == 0 || s.Duration < minDur {
			minDur = s.Duration
		}
	}
	p.Config.SceneDurations = durations

	// Проверка корректности переходов относительно минимальной длительности
	if n > 0 && p.Config.FadeDuration >= minDur {
		p.Config.FadeDuration = minDur / 2.0
		fmt.Printf("[!] Переход уменьшен до %.2fs из-за короткой сцены\n", p.Config.FadeDuration)
	}

	total := 0.0
	for _, d := range durations {
		total += d
	}
	if crossFaded(p.Config.TransitionType) && n > 1 {
		total -= float64(n-1) * p.Config.FadeDuration
	}
	p.Config.TotalDuration = total

	if p.Config.AudioPath != "" {
		log.Printf("[*] Аудио будет обрезано по длительности видео (%.2fs)", total)
	}
}

func crossFaded(transition string) bool {
	return transition != "" && transition != "none"
}

func (p *VideoProject) report(sceneCount, frames int, totalTime, renderTime, concatTime time.Duration) {
	fps := float64(frames) / totalTime.Seconds()
	requested, allocated := system.PoolStats()

	report := fmt.Sprintf(
		"--- [PERFORMANCE REPORT] ---\n"+
			"Build: %s\n"+
			"Total Time: %.2fs\n"+
			"Rendering+Encoding: %.2fs\n"+
			"Concatenation: %.2fs\n"+
			"Frames: %d\n"+
			"Effective FPS: %.2f\n"+
			"Frame buffers: %d allocated for %d frames\n"+
			"----------------------------\n",
		p.Config.BuildVersion, totalTime.Seconds(), renderTime.Seconds(), concatTime.Seconds(), frames, fps,
		allocated, requested,
	)
	fmt.Print(report)

	// Логирование в файл
	logEntry := fmt.Sprintf("[%s] Build: %s | Scenes: %d | Frames: %d | %dx%d@%d | Total: %.2fs | Render: %.2fs | FPS: %.2f\n",
		time.Now().Format("2006-01-02 15:04:05"),
		p.Config.BuildVersion,
		sceneCount,
		frames,
		p.Config.Width, p.Config.Height, p.Config.FPS,
		totalTime.Seconds(),
		renderTime.Seconds(),
		fps,
	)

	f, err := os.OpenFile("benchmark.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		f.WriteString(logEntry)
		f.Close()
	} else {
		fmt.Printf("[!] Не удалось записать benchmark.log: %v\n", err)
	}
}
