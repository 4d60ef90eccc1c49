package dto

import (
	"fmt"

	"roi-capture/internal/models"
)

// UploadResponse is returned by POST /upload_video
type UploadResponse struct {
	Path     string `json:"path"`
	Filename string `json:"filename,omitempty"`
	Message  string `json:"message,omitempty"`
}

// ExtractResponse is returned by POST /manual/extract. Only OK is always
// present; the remaining fields are set when OK is true, Error when it is not.
type ExtractResponse struct {
	OK              bool         `json:"ok"`
	Total           int          `json:"total,omitempty"`
	Items           []string     `json:"items,omitempty"`
	RoiFrame        *models.Rect `json:"roiFrame,omitempty"`
	StartSec        float64      `json:"startSec,omitempty"`
	RequestedFrames int          `json:"requestedFrames,omitempty"`
	FPSUsed         float64      `json:"fpsUsed,omitempty"`
	Error           string       `json:"error,omitempty"`
}

// Validate checks the fields a successful response must carry.
func (r *ExtractResponse) Validate() error {
	if !r.OK {
		return nil
	}
	if r.Total < 0 {
		return fmt.Errorf("negative preview total %d", r.Total)
	}
	if len(r.Items) > 0 && r.Total == 0 {
		return fmt.Errorf("%d items returned with zero total", len(r.Items))
	}
	return nil
}

// SaveResponse is returned by POST /manual/save
type SaveResponse struct {
	OK         bool   `json:"ok"`
	SavedCount int    `json:"savedCount,omitempty"`
	Dir        string `json:"dir,omitempty"`
	Error      string `json:"error,omitempty"`
}

// PreviewResponse is returned by GET /manual/preview
type PreviewResponse struct {
	OK            bool   `json:"ok"`
	Index         int    `json:"index,omitempty"`
	Total         int    `json:"total,omitempty"`
	PreviewBase64 string `json:"previewBase64,omitempty"`
	Error         string `json:"error,omitempty"`
}

// Validate checks that a successful response addresses a preview inside
// [1, Total].
func (r *PreviewResponse) Validate() error {
	if !r.OK {
		return nil
	}
	if r.Index < 1 || r.Index > r.Total {
		return fmt.Errorf("preview index %d outside [1, %d]", r.Index, r.Total)
	}
	return nil
}
