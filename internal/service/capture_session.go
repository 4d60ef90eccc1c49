package service

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"roi-capture/internal/dto"
	"roi-capture/internal/events"
	"roi-capture/internal/metrics"
	"roi-capture/internal/models"
)

const defaultVolume = 0.5

// ExtractResult summarizes a successful extraction.
type ExtractResult struct {
	Total           int
	First           string // base64 payload of preview 1, empty when none was returned
	RoiFrame        *models.Rect
	StartSec        float64
	RequestedFrames int
	FPSUsed         float64
}

// SaveResult is the backend's report of a save.
type SaveResult struct {
	SavedCount int
	Dir        string
}

// PreviewImage is one base64-encoded preview.
type PreviewImage struct {
	Index  int
	Total  int
	Base64 string
	Cached bool
}

// CaptureSession holds the state of one ROI cropping workflow and mediates the
// remote calls that act on it. State is mutex-guarded, but overlapping remote
// calls are not sequenced: whichever response is applied last wins.
type CaptureSession struct {
	id        string
	backend   Backend
	publisher events.Publisher
	logger    *zap.Logger

	mu           sync.RWMutex
	status       models.Status
	videoSource  string
	videoPath    string
	roi          *models.Rect
	roiFrame     *models.Rect
	targetTime   string
	saveDir      string
	previewIndex int
	previewTotal int
	previews     map[int]string
	playback     models.Playback
}

// NewCaptureSession creates an idle session. A nil publisher disables events
// and a nil logger disables logging.
func NewCaptureSession(backend Backend, publisher events.Publisher, logger *zap.Logger) *CaptureSession {
	if publisher == nil {
		publisher = events.Noop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	id := uuid.New().String()
	return &CaptureSession{
		id:        id,
		backend:   backend,
		publisher: publisher,
		logger:    logger.With(zap.String("session_id", id)),
		status:    models.StatusIdle,
		previews:  make(map[int]string),
		playback:  models.Playback{Volume: defaultVolume},
	}
}

// ID returns the session identifier.
func (s *CaptureSession) ID() string { return s.id }

// State returns a copy of the current session state.
func (s *CaptureSession) State() models.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return models.SessionState{
		ID:           s.id,
		Status:       s.status,
		VideoSource:  s.videoSource,
		VideoPath:    s.videoPath,
		Roi:          cloneRect(s.roi),
		RoiFrame:     cloneRect(s.roiFrame),
		TargetTime:   s.targetTime,
		SaveDir:      s.saveDir,
		PreviewIndex: s.previewIndex,
		PreviewTotal: s.previewTotal,
		Previews:     maps.Clone(s.previews),
		Playback:     s.playback,
	}
}

// SetVideoSource stores an opaque reference to the locally loaded video.
func (s *CaptureSession) SetVideoSource(ref string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.videoSource = ref
}

// UploadVideo sends the video to the backend and stores the path it assigns.
func (s *CaptureSession) UploadVideo(ctx context.Context, filename string, video io.Reader) (string, error) {
	resp, err := s.backend.UploadVideo(ctx, filename, video)
	if err != nil {
		return "", &Error{Kind: ErrUpload, Message: "upload failed", Err: err}
	}
	if resp.Path == "" {
		return "", &Error{Kind: ErrUpload, Message: "upload failed"}
	}

	s.mu.Lock()
	s.videoPath = resp.Path
	s.mu.Unlock()

	s.logger.Info("video uploaded", zap.String("filename", filename), zap.String("path", resp.Path))
	return resp.Path, nil
}

// UploadVideoFile uploads the local file at path.
func (s *CaptureSession) UploadVideoFile(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", &Error{Kind: ErrUpload, Message: "upload failed", Err: err}
	}
	defer f.Close()
	return s.UploadVideo(ctx, filepath.Base(path), f)
}

// SetRoiFromInput normalizes a selection. A nil, cleared, or empty selection
// resets the ROI to the zero rectangle and drops the frame-space ROI.
func (s *CaptureSession) SetRoiFromInput(in *models.RoiInput) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if in == nil || in.Cleared || in.W <= 0 || in.H <= 0 {
		s.roi = &models.Rect{}
		s.roiFrame = nil
		return
	}
	s.roi = &models.Rect{X: in.X, Y: in.Y, W: in.W, H: in.H}
	s.playback.DisplayW = in.DisplayW
	s.playback.DisplayH = in.DisplayH
}

// SetTargetTime stores the extraction duration as typed by the user. It is
// parsed by Extract.
func (s *CaptureSession) SetTargetTime(value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.targetTime = value
}

func (s *CaptureSession) SetSaveDirectory(dir string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveDir = dir
}

// Extract asks the backend to crop previews from the uploaded video. Missing
// inputs fail with ErrValidation before any request is sent; an ok:false
// response fails with ErrExtraction and leaves the session unchanged.
func (s *CaptureSession) Extract(ctx context.Context) (*ExtractResult, error) {
	s.mu.RLock()
	targetTime := strings.TrimSpace(s.targetTime)
	saveDir := s.saveDir
	videoPath := s.videoPath
	roi := cloneRect(s.roi)
	pb := s.playback
	s.mu.RUnlock()

	if targetTime == "" || saveDir == "" || videoPath == "" {
		return nil, validationError("missing required fields")
	}
	if roi == nil || !roi.HasArea() {
		return nil, validationError("ROI required")
	}
	t, err := strconv.ParseFloat(targetTime, 64)
	if err != nil {
		return nil, validationError("invalid target time")
	}

	resp, err := s.backend.Extract(ctx, dto.ExtractRequest{
		VideoPath:      videoPath,
		Roi:            *roi,
		T:              t,
		SaveDir:        saveDir,
		DisplayW:       pb.DisplayW,
		DisplayH:       pb.DisplayH,
		CurrentTimeSec: pb.CurrentTimeSec,
	})
	if err != nil {
		return nil, &Error{Kind: ErrTransport, Message: "extract request failed", Err: err}
	}
	if !resp.OK {
		return nil, rejected(ErrExtraction, resp.Error, "extract failed")
	}

	result := &ExtractResult{
		Total:           resp.Total,
		RoiFrame:        cloneRect(resp.RoiFrame),
		StartSec:        resp.StartSec,
		RequestedFrames: resp.RequestedFrames,
		FPSUsed:         resp.FPSUsed,
	}
	if len(resp.Items) > 0 {
		result.First = resp.Items[0]
	}

	s.mu.Lock()
	s.previewTotal = resp.Total
	s.previewIndex = 0
	if s.previewTotal > 0 {
		s.previewIndex = 1
	}
	s.previews = make(map[int]string)
	if result.First != "" {
		s.previews[1] = result.First
	}
	s.roiFrame = cloneRect(resp.RoiFrame)
	s.status = models.StatusExtracted
	s.mu.Unlock()

	s.logger.Info("previews extracted",
		zap.Int("total", result.Total),
		zap.Float64("t", t),
		zap.String("save_dir", saveDir),
	)
	s.transition(ctx, events.TypeExtracted, models.StatusExtracted, videoPath, result.Total, 0)
	return result, nil
}

// SaveAll asks the backend to persist every extracted preview to the save
// directory and marks the session saved.
func (s *CaptureSession) SaveAll(ctx context.Context) (*SaveResult, error) {
	resp, err := s.backend.Save(ctx)
	if err != nil {
		return nil, &Error{Kind: ErrTransport, Message: "save request failed", Err: err}
	}
	if !resp.OK {
		return nil, rejected(ErrSave, resp.Error, "save failed")
	}

	s.mu.Lock()
	s.status = models.StatusSaved
	videoPath := s.videoPath
	total := s.previewTotal
	s.mu.Unlock()

	s.logger.Info("previews saved", zap.Int("saved_count", resp.SavedCount), zap.String("dir", resp.Dir))
	s.transition(ctx, events.TypeSaved, models.StatusSaved, videoPath, total, resp.SavedCount)
	return &SaveResult{SavedCount: resp.SavedCount, Dir: resp.Dir}, nil
}

// Save is SaveAll.
func (s *CaptureSession) Save(ctx context.Context) (*SaveResult, error) {
	return s.SaveAll(ctx)
}

// FetchPreview loads preview index from the backend. The cursor and total are
// taken from the response; the payload is cached under the requested index.
func (s *CaptureSession) FetchPreview(ctx context.Context, index int) (*PreviewImage, error) {
	resp, err := s.backend.Preview(ctx, index)
	if err != nil {
		return nil, &Error{Kind: ErrTransport, Message: "preview request failed", Err: err}
	}
	if !resp.OK {
		return nil, rejected(ErrPreview, resp.Error, "preview failed")
	}

	s.mu.Lock()
	s.previewIndex = resp.Index
	s.previewTotal = resp.Total
	s.previews[index] = resp.PreviewBase64
	s.mu.Unlock()

	metrics.PreviewCacheTotal.WithLabelValues("miss").Inc()
	return &PreviewImage{Index: resp.Index, Total: resp.Total, Base64: resp.PreviewBase64}, nil
}

// Preview returns preview index, from the cache when possible.
func (s *CaptureSession) Preview(ctx context.Context, index int) (*PreviewImage, error) {
	s.mu.Lock()
	if index < 1 || (s.previewTotal > 0 && index > s.previewTotal) {
		total := s.previewTotal
		s.mu.Unlock()
		return nil, validationError(fmt.Sprintf("preview index %d out of range [1, %d]", index, total))
	}
	if b64, ok := s.previews[index]; ok {
		s.previewIndex = index
		img := &PreviewImage{Index: index, Total: s.previewTotal, Base64: b64, Cached: true}
		s.mu.Unlock()
		metrics.PreviewCacheTotal.WithLabelValues("hit").Inc()
		return img, nil
	}
	s.mu.Unlock()

	return s.FetchPreview(ctx, index)
}

// NextPreview moves the cursor forward, stopping at the last preview.
func (s *CaptureSession) NextPreview(ctx context.Context) (*PreviewImage, error) {
	return s.step(ctx, 1)
}

// PrevPreview moves the cursor back, stopping at the first preview.
func (s *CaptureSession) PrevPreview(ctx context.Context) (*PreviewImage, error) {
	return s.step(ctx, -1)
}

func (s *CaptureSession) step(ctx context.Context, delta int) (*PreviewImage, error) {
	s.mu.RLock()
	index, total := s.previewIndex, s.previewTotal
	s.mu.RUnlock()

	if total == 0 {
		return nil, validationError("no previews")
	}
	return s.Preview(ctx, min(max(index+delta, 1), total))
}

// ResetInputs returns the session to idle and clears the selection, previews,
// target time and save directory. Video and playback fields are kept.
func (s *CaptureSession) ResetInputs() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status = models.StatusIdle
	s.roi = nil
	s.roiFrame = nil
	s.targetTime = ""
	s.saveDir = ""
	s.previewIndex = 0
	s.previewTotal = 0
	s.previews = make(map[int]string)
	metrics.SessionTransitionsTotal.WithLabelValues(string(models.StatusIdle)).Inc()
}

// ResetAll is ResetInputs.
func (s *CaptureSession) ResetAll() {
	s.ResetInputs()
}

// transition records a status change and publishes it. Publish failures are
// logged only.
func (s *CaptureSession) transition(ctx context.Context, eventType string, status models.Status, videoPath string, total, saved int) {
	metrics.SessionTransitionsTotal.WithLabelValues(string(status)).Inc()

	err := s.publisher.Publish(ctx, events.SessionEvent{
		SessionID:    s.id,
		Type:         eventType,
		Status:       string(status),
		VideoPath:    videoPath,
		PreviewTotal: total,
		SavedCount:   saved,
		Timestamp:    time.Now().UTC(),
	})
	if err != nil {
		s.logger.Warn("failed to publish session event", zap.String("type", eventType), zap.Error(err))
	}
}

func cloneRect(r *models.Rect) *models.Rect {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}
