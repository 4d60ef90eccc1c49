package job

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"roi-capture/internal/models"
)

// Preview modes
const (
	PreviewsNone  = "none"
	PreviewsFirst = "first"
	PreviewsAll   = "all"
)

// Job describes one capture run:
//
//	video: ./clips/intake.mp4
//	targetTime: "1.5"
//	currentTime: 12.0
//	saveDir: /data/crops/intake
//	roi: {x: 120, y: 80, w: 200, h: 150, displayW: 960, displayH: 540}
//	previews: all
//	save: true
type Job struct {
	Video       string          `yaml:"video"`
	TargetTime  string          `yaml:"targetTime"`
	CurrentTime float64         `yaml:"currentTime"`
	SaveDir     string          `yaml:"saveDir"`
	Roi         models.RoiInput `yaml:"roi"`
	Previews    string          `yaml:"previews"`
	PreviewDir  string          `yaml:"previewDir"`
	Save        bool            `yaml:"save"`
}

// Load reads and validates a job file.
func Load(path string) (*Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read job file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Job, error) {
	var j Job
	if err := yaml.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("failed to parse job: %w", err)
	}
	if j.Previews == "" {
		j.Previews = PreviewsFirst
	}
	if err := j.Validate(); err != nil {
		return nil, err
	}
	return &j, nil
}

// Validate reports every problem in the job at once.
func (j *Job) Validate() error {
	var errs []error
	if strings.TrimSpace(j.Video) == "" {
		errs = append(errs, errors.New("video is required"))
	}
	if t, err := strconv.ParseFloat(strings.TrimSpace(j.TargetTime), 64); err != nil || t <= 0 {
		errs = append(errs, fmt.Errorf("targetTime must be a number > 0, got %q", j.TargetTime))
	}
	if j.CurrentTime < 0 {
		errs = append(errs, errors.New("currentTime must not be negative"))
	}
	if strings.TrimSpace(j.SaveDir) == "" {
		errs = append(errs, errors.New("saveDir is required"))
	}
	if j.Roi.Cleared || !(models.Rect{W: j.Roi.W, H: j.Roi.H}).HasArea() {
		errs = append(errs, errors.New("roi must have positive w and h"))
	}
	switch j.Previews {
	case PreviewsNone, PreviewsFirst, PreviewsAll:
	default:
		errs = append(errs, fmt.Errorf("previews must be one of none, first, all; got %q", j.Previews))
	}
	return errors.Join(errs...)
}
