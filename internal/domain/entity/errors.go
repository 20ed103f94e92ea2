package entity

import (
	"errors"
	"fmt"
)

var (
	ErrNoVideoFile   = errors.New("No video file provided")
	ErrEmptyFilename = errors.New("No selected video file")
	ErrNoFrames      = errors.New("No frames extracted or uploaded")
)

// Pipeline stages used for error classification, spans and metrics.
const (
	StageStageLocal      = "stage_local"
	StageExtractFrames   = "extract_frames"
	StageUploadFrames    = "upload_frames"
	StageStageModelFiles = "stage_model_files"
	StageGenerate        = "generate"
)

// StageError ties a dependency failure to the pipeline stage it came from.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func NewStageError(stage string, err error) error {
	return &StageError{Stage: stage, Err: err}
}

// IsInputError reports whether err is caused by the caller's request rather
// than a dependency.
func IsInputError(err error) bool {
	return errors.Is(err, ErrNoVideoFile) || errors.Is(err, ErrEmptyFilename)
}
