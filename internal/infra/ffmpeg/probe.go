package ffmpeg

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	ffmpeggo "github.com/u2takey/ffmpeg-go"
)

type videoInfo struct {
	FPS      float64
	Duration float64
}

func probeVideo(videoPath string) (*videoInfo, error) {
	data, err := ffmpeggo.Probe(videoPath)
	if err != nil {
		return nil, fmt.Errorf("ffprobe: %w", err)
	}
	return parseProbe(data)
}

func parseProbe(data string) (*videoInfo, error) {
	if !gjson.Valid(data) {
		return nil, errors.New("ffprobe returned invalid json")
	}

	stream := gjson.Get(data, `streams.#(codec_type=="video")`)
	if !stream.Exists() {
		return nil, errors.New("no video stream")
	}

	fps := parseRate(stream.Get("avg_frame_rate").String())
	if fps <= 0 {
		fps = parseRate(stream.Get("r_frame_rate").String())
	}

	return &videoInfo{
		FPS:      fps,
		Duration: gjson.Get(data, "format.duration").Float(),
	}, nil
}

// parseRate reads ffprobe rationals such as "30000/1001". Unusable values
// come back as 0.
func parseRate(s string) float64 {
	num, den, found := strings.Cut(strings.TrimSpace(s), "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	if !found {
		return n
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}
	return n / d
}
