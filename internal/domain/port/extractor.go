package port

import "context"

type FrameExtractionResult struct {
	FramePaths []string
	FrameCount int
	FPS        float64
	Stride     int
}

// FrameExtractor samples still images from a local video into outputDir.
// An input the decoder cannot read yields an empty result, not an error.
type FrameExtractor interface {
	ExtractFrames(ctx context.Context, videoPath string, outputDir string) (*FrameExtractionResult, error)
}
