package video

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ivlev/knn2video/internal/config"
)

// FrameSource yields the frames of one scene. Frames are returned to the
// source with Release once written.
type FrameSource interface {
	Bounds() image.Rectangle
	Frames() int
	Frame(i int) (*image.RGBA, error)
	Release(img *image.RGBA)
}

type VideoEncoder interface {
	EncodeSegment(ctx context.Context, frames FrameSource, videoPath string, params config.SegmentParams, encoderName string, quality int) error
	Concatenate(ctx context.Context, segmentPaths []string, finalPath string, tmpDir string, params config.Config) error
}

type FFmpegEncoder struct{}

func (e *FFmpegEncoder) EncodeSegment(
	ctx context.Context,
	frames FrameSource,
	videoPath string,
	params config.SegmentParams,
	encoderName string,
	quality int,
) error {
	inputW, inputH := frames.Bounds().Dx(), frames.Bounds().Dy()

	args := e.buildFFmpegArgs(inputW, inputH, videoPath, params, encoderName, quality)

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

	// Кадры рендерятся по одному и сразу уходят в ffmpeg
	for i := 0; i < frames.Frames(); i++ {
		img, err := frames.Frame(i)
		if err != nil {
			stdin.Close()
			cmd.Wait()
			return fmt.Errorf("render frame %d: %w", i, err)
		}
		err = e.writeRawRGBA(stdin, img)
		frames.Release(img)
		if err != nil {
			stdin.Close()
			cmd.Wait()
			return fmt.Errorf("write raw error: %w, output: %s", err, out.String())
		}
	}
	stdin.Close()

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg wait error: %w, output: %s", err, out.String())
	}

	return nil
}

func (e *FFmpegEncoder) buildFFmpegArgs(
	inputW, inputH int,
	videoPath string,
	params config.SegmentParams,
	encoderName string,
	quality int,
) []string {
	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", inputW, inputH),
		"-framerate", fmt.Sprintf("%d", params.FPS),
		"-i", "-",
	}
	if params.Filter != "" && params.Filter != "null" {
		args = append(args, "-vf", params.Filter)
	}
	args = append(args,
		"-t", fmt.Sprintf("%f", params.Duration),
		"-r", fmt.Sprintf("%d", params.FPS),
		"-pix_fmt", "yuv420p",
		"-c:v", encoderName,
	)
	args = append(args, qualityArgs(encoderName, quality)...)
	args = append(args, videoPath)
	return args
}

// qualityArgs переводит качество в параметры конкретного энкодера
func qualityArgs(encoderName string, quality int) []string {
	switch encoderName {
	case "h264_videotoolbox":
		// VideoToolbox часто не поддерживает -q:v напрямую на всех версиях. Используем битрейт.
		bitrate := quality * 100 // кбит/с. 75 -> 7.5Мбит/с
		return []string{"-b:v", fmt.Sprintf("%dk", bitrate)}
	case "h264_nvenc":
		return []string{"-cq", fmt.Sprintf("%d", quality)}
	default: // libx264
		return []string{"-crf", fmt.Sprintf("%d", quality), "-preset", "medium"}
	}
}

func (e *FFmpegEncoder) writeRawRGBA(w io.Writer, img *image.RGBA) error {
	bounds := img.Bounds()
	if img.Stride == bounds.Dx()*4 {
		_, err := w.Write(img.Pix[:bounds.Dx()*bounds.Dy()*4])
		return err
	}
	for y := 0; y < bounds.Dy(); y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+bounds.Dx()*4]
		if _, err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// useComplex сообщает, нужен ли filter_complex:
// 1. Нужен переход (xfade)
// 2. Есть фоновое аудио для микширования
// 3. Есть основное аудио, которое нужно наложить на видеоряд
func useComplex(segments int, params config.Config) bool {
	return (params.TransitionType != "" && params.TransitionType != "none" && segments > 1) ||
		params.BackgroundAudio != "" ||
		params.AudioPath != ""
}

func (e *FFmpegEncoder) Concatenate(ctx context.Context, segmentPaths []string, finalPath string, tmpDir string, params config.Config) error {
	if !useComplex(len(segmentPaths), params) {
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

	args := e.buildConcatArgs(segmentPaths, finalPath, params)
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg xfade error: %v, output: %s", err, string(out))
	}
	return nil
}

func (e *FFmpegEncoder) buildConcatArgs(segmentPaths []string, finalPath string, params config.Config) []string {
	fadeDuration := params.FadeDuration

	args := []string{"-y"}
	for _, p := range segmentPaths {
		args = append(args, "-i", p)
	}

	audioIndex := -1
	if params.AudioPath != "" {
		audioIndex = len(segmentPaths)
		args = append(args, "-i", params.AudioPath)
	}

	filterGraph := ""
	lastOut := "[0:v]"
	currentOffset := 0.0

	// 1. Видео фильтры (xfade)
	if params.TransitionType != "" && params.TransitionType != "none" && len(segmentPaths) > 1 {
		for i := 1; i < len(segmentPaths); i++ {
			duration := params.TotalDuration / float64(len(segmentPaths))
			if i-1 < len(params.SceneDurations) {
				duration = params.SceneDurations[i-1]
			}
			currentOffset += duration - fadeDuration

			nextIn := fmt.Sprintf("[%d:v]", i)
			outName := fmt.Sprintf("[v%d]", i)
			filterGraph += fmt.Sprintf("%s%sxfade=transition=%s:duration=%f:offset=%f%s;",
				lastOut, nextIn, params.TransitionType, fadeDuration, currentOffset, outName)
			lastOut = outName
		}
	} else if len(segmentPaths) > 1 {
		// Если переходов нет, но сегментов много — используем concat filter
		concatInputs := ""
		for i := 0; i < len(segmentPaths); i++ {
			concatInputs += fmt.Sprintf("[%d:v]", i)
		}
		filterGraph += fmt.Sprintf("%sconcat=n=%d:v=1:a=0[vconcat];", concatInputs, len(segmentPaths))
		lastOut = "[vconcat]"
	}

	// 2. Аудио фильтры
	audioOut := ""
	switch {
	case audioIndex != -1 && params.BackgroundAudio != "":
		bgIndex := audioIndex + 1
		args = append(args, "-stream_loop", "-1", "-i", params.BackgroundAudio)
		filterGraph += fmt.Sprintf("[%d:a]%s[bg_a];[%d:a]volume=1.0[main_a];[main_a][bg_a]amix=inputs=2:duration=first:dropout_transition=3[aout];",
			bgIndex, backgroundVolume(params), audioIndex)
		audioOut = "[aout]"
	case audioIndex != -1:
		audioOut = fmt.Sprintf("%d:a", audioIndex)
	case params.BackgroundAudio != "":
		// Только фоновая музыка: зацикливаем и обрезаем по видео
		bgIndex := len(segmentPaths)
		args = append(args, "-stream_loop", "-1", "-i", params.BackgroundAudio)
		filterGraph += fmt.Sprintf("[%d:a]%s[aout];", bgIndex, backgroundVolume(params))
		audioOut = "[aout]"
	}

	filterGraph = strings.TrimSuffix(filterGraph, ";")
	if filterGraph != "" {
		args = append(args, "-filter_complex", filterGraph)
	}

	// Настройка маппинга
	args = append(args, "-map", lastOut)
	if audioOut != "" {
		args = append(args, "-map", audioOut)
		args = append(args, "-shortest")
	}

	args = append(args, "-c:v", params.VideoEncoder, "-pix_fmt", "yuv420p")
	args = append(args, qualityArgs(params.VideoEncoder, params.Quality)...)
	args = append(args, finalPath)
	return args
}

// backgroundVolume плавно поднимает и опускает громкость фоновой музыки
func backgroundVolume(params config.Config) string {
	fadeInDur := 5.0
	fadeOutDur := 5.0
	totalDur := params.TotalDuration
	if totalDur < fadeInDur+fadeOutDur {
		fadeInDur = totalDur * 0.1
		fadeOutDur = totalDur * 0.1
	}

	return fmt.Sprintf("volume='%f*(if(lte(t,%f), 0.1 + 0.9*(t/%f), if(gte(t, %f), (%f-t)/%f, 1.0)))':eval=frame",
		params.BackgroundVolume, fadeInDur, fadeInDur, totalDur-fadeOutDur, totalDur, fadeOutDur)
}
