package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"roi-capture/internal/job"
	"roi-capture/internal/preview"
	"roi-capture/internal/service"
	"roi-capture/pkg/ffmpeg"
)

// Runner drives one capture session through a job.
type Runner struct {
	Session *service.CaptureSession
	Writer  *preview.Writer
	Logger  *zap.Logger
}

// Summary reports what a run produced.
type Summary struct {
	VideoPath    string
	PreviewTotal int
	Written      []string
	SavedCount   int
	SavedDir     string
}

func (r *Runner) Run(ctx context.Context, j *job.Job) (*Summary, error) {
	r.preflight(ctx, j)

	s := r.Session
	s.SetVideoSource(j.Video)
	videoPath, err := s.UploadVideoFile(ctx, j.Video)
	if err != nil {
		return nil, err
	}

	roi := j.Roi
	s.SetRoiFromInput(&roi)
	s.SetTargetTime(j.TargetTime)
	s.SetSaveDirectory(j.SaveDir)
	s.SetCurrentTime(j.CurrentTime)

	extracted, err := s.Extract(ctx)
	if err != nil {
		return nil, err
	}

	summary := &Summary{VideoPath: videoPath, PreviewTotal: extracted.Total}

	if extracted.Total > 0 && j.Previews != job.PreviewsNone {
		last := 1
		if j.Previews == job.PreviewsAll {
			last = extracted.Total
		}
		for i := 1; i <= last; i++ {
			img, err := s.Preview(ctx, i)
			if err != nil {
				return nil, fmt.Errorf("preview %d: %w", i, err)
			}
			path, err := r.Writer.Write(i, img.Base64)
			if err != nil {
				return nil, err
			}
			summary.Written = append(summary.Written, path)
		}
	}

	if j.Save {
		saved, err := s.SaveAll(ctx)
		if err != nil {
			return nil, err
		}
		summary.SavedCount = saved.SavedCount
		summary.SavedDir = saved.Dir
	}
	return summary, nil
}

// preflight probes the local video when ffprobe is available. Problems are
// logged; the backend remains the authority.
func (r *Runner) preflight(ctx context.Context, j *job.Job) {
	if err := ffmpeg.CheckInstallation(); err != nil {
		r.Logger.Debug("skipping video preflight", zap.Error(err))
		return
	}

	info, err := ffmpeg.Probe(ctx, j.Video)
	if err != nil {
		r.Logger.Warn("video preflight failed", zap.String("video", j.Video), zap.Error(err))
		return
	}
	r.Logger.Info("video probed",
		zap.Float64("duration_sec", info.DurationSec),
		zap.Int("width", info.Width),
		zap.Int("height", info.Height),
		zap.String("codec", info.Codec),
	)

	t, _ := strconv.ParseFloat(strings.TrimSpace(j.TargetTime), 64)
	if info.DurationSec > 0 && j.CurrentTime+t > info.DurationSec {
		r.Logger.Warn("requested range runs past the end of the video",
			zap.Float64("start_sec", j.CurrentTime),
			zap.Float64("target_sec", t),
			zap.Float64("duration_sec", info.DurationSec),
		)
	}
}
