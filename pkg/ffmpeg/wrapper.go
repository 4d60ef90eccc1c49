package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
)

// VideoInfo is the subset of ffprobe output a capture run checks.
type VideoInfo struct {
	DurationSec float64
	Width       int
	Height      int
	Codec       string
}

// CheckInstallation verifies if ffprobe is installed and accessible
func CheckInstallation() error {
	if _, err := exec.LookPath("ffprobe"); err != nil {
		return fmt.Errorf("ffprobe is not installed or not in PATH: %w", err)
	}
	return nil
}

// Probe reads duration and first video stream dimensions of a local file.
func Probe(ctx context.Context, videoPath string) (*VideoInfo, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "format=duration",
		"-show_entries", "stream=codec_name,width,height",
		"-of", "json",
		videoPath,
	)

	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("failed to probe video: %w", err)
	}
	return parseProbeOutput(output)
}

type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecName string `json:"codec_name"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
	} `json:"streams"`
}

func parseProbeOutput(output []byte) (*VideoInfo, error) {
	var out probeOutput
	if err := json.Unmarshal(output, &out); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}
	if len(out.Streams) == 0 {
		return nil, fmt.Errorf("no video stream found")
	}

	info := &VideoInfo{
		Width:  out.Streams[0].Width,
		Height: out.Streams[0].Height,
		Codec:  out.Streams[0].CodecName,
	}
	if out.Format.Duration != "" {
		d, err := strconv.ParseFloat(out.Format.Duration, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid duration %q: %w", out.Format.Duration, err)
		}
		info.DurationSec = d
	}
	return info, nil
}
