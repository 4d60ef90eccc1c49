package service

import (
	"context"
	"io"

	"roi-capture/internal/dto"
)

// Backend is the frame extraction service a session talks to.
// *backend.Client implements it.
type Backend interface {
	UploadVideo(ctx context.Context, filename string, video io.Reader) (*dto.UploadResponse, error)
	Extract(ctx context.Context, req dto.ExtractRequest) (*dto.ExtractResponse, error)
	Save(ctx context.Context) (*dto.SaveResponse, error)
	Preview(ctx context.Context, index int) (*dto.PreviewResponse, error)
}
