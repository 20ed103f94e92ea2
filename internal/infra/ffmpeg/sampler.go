package ffmpeg

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"

	ffmpeggo "github.com/u2takey/ffmpeg-go"
	"go.uber.org/zap"

	"github.com/safewatch/safewatch-analysis-service/internal/domain/port"
	"github.com/safewatch/safewatch-analysis-service/internal/domain/sampling"
)

// Sampler writes one still image every interval seconds of source video,
// selecting decoded frames whose index is a multiple of the stride.
type Sampler struct {
	interval int
	format   string
	logger   *zap.Logger
}

func NewSampler(intervalSeconds int, format string, logger *zap.Logger) *Sampler {
	return &Sampler{interval: intervalSeconds, format: format, logger: logger}
}

func (s *Sampler) ExtractFrames(ctx context.Context, videoPath string, outputDir string) (*port.FrameExtractionResult, error) {
	for _, bin := range []string{"ffmpeg", "ffprobe"} {
		if _, err := exec.LookPath(bin); err != nil {
			return nil, fmt.Errorf("%s not found: %w", bin, err)
		}
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("create frames dir: %w", err)
	}

	info, err := probeVideo(videoPath)
	if err != nil {
		s.logger.Warn("probe rejected video, no frames extracted",
			zap.String("video", filepath.Base(videoPath)),
			zap.Error(err),
		)
		return &port.FrameExtractionResult{}, nil
	}

	stride := sampling.Stride(info.FPS, s.interval)
	framePattern := filepath.Join(outputDir, fmt.Sprintf("frame_%%04d.%s", s.format))

	outArgs := ffmpeggo.KwArgs{
		"vf":    fmt.Sprintf(`select=not(mod(n\,%d))`, stride),
		"vsync": "vfr",
	}
	if s.format == "jpg" || s.format == "jpeg" {
		outArgs["q:v"] = 2
	}
	args := ffmpeggo.Input(videoPath).
		Output(framePattern, outArgs).
		OverWriteOutput().
		GetArgs()

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if isOptionError(string(output)) {
			return nil, fmt.Errorf("ffmpeg rejected arguments: %w: %s", err, lastLines(string(output), 3))
		}
		// Decode errors part-way through still leave the frames written so far.
		s.logger.Warn("ffmpeg stopped on undecodable input",
			zap.String("video", filepath.Base(videoPath)),
			zap.Error(err),
			zap.String("output", lastLines(string(output), 5)),
		)
	}

	frames, err := collectFrames(outputDir, s.format)
	if err != nil {
		return nil, fmt.Errorf("collect frames: %w", err)
	}

	s.logger.Info("frames extracted",
		zap.Int("count", len(frames)),
		zap.Float64("fps", info.FPS),
		zap.Int("stride", stride),
		zap.Float64("video_duration", info.Duration),
	)

	return &port.FrameExtractionResult{
		FramePaths: frames,
		FrameCount: len(frames),
		FPS:        info.FPS,
		Stride:     stride,
	}, nil
}

// collectFrames lists the written frames in extraction order. Zero padding
// stops at four digits, so shorter names sort first.
func collectFrames(dir, format string) ([]string, error) {
	frames, err := filepath.Glob(filepath.Join(dir, "frame_*."+format))
	if err != nil {
		return nil, err
	}
	slices.SortFunc(frames, func(a, b string) int {
		if c := cmp.Compare(len(a), len(b)); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
	return frames, nil
}

// isOptionError tells a command line this ffmpeg build does not accept apart
// from a decode failure on the input.
func isOptionError(output string) bool {
	for _, marker := range []string{
		"Unrecognized option",
		"Option not found",
		"Error splitting the argument list",
	} {
		if strings.Contains(output, marker) {
			return true
		}
	}
	return false
}

func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
