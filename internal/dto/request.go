package dto

import "roi-capture/internal/models"

// ExtractRequest is the body of POST /manual/extract
type ExtractRequest struct {
	VideoPath      string      `json:"videoPath"`
	Roi            models.Rect `json:"roi"`
	T              float64     `json:"t"`
	SaveDir        string      `json:"saveDir"`
	DisplayW       float64     `json:"displayW"`
	DisplayH       float64     `json:"displayH"`
	CurrentTimeSec float64     `json:"currentTimeSec"`
}
