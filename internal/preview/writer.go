package preview

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// Writer decodes base64 previews into image files under a directory.
type Writer struct {
	dir    string
	logger *zap.Logger
}

func NewWriter(dir string, logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{dir: dir, logger: logger}
}

// Write stores preview index as preview_NNNN.<ext>, the extension taken from
// the decoded content. It returns the written path.
func (w *Writer) Write(index int, payload string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("failed to decode preview %d: %w", index, err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("preview %d is empty", index)
	}

	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create preview directory: %w", err)
	}

	path := filepath.Join(w.dir, fmt.Sprintf("preview_%04d%s", index, extensionFor(data)))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write preview %d: %w", index, err)
	}

	w.logger.Debug("preview written", zap.Int("index", index), zap.String("path", path), zap.Int("bytes", len(data)))
	return path, nil
}

func extensionFor(data []byte) string {
	switch http.DetectContentType(data) {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/bmp":
		return ".bmp"
	case "image/webp":
		return ".webp"
	default:
		return ".bin"
	}
}

// Prune removes preview files in the directory last modified before
// now-olderThan. It returns how many were deleted.
func (w *Writer) Prune(olderThan time.Duration) (int, error) {
	files, err := filepath.Glob(filepath.Join(w.dir, "preview_*"))
	if err != nil {
		return 0, fmt.Errorf("failed to list previews: %w", err)
	}

	cutoff := time.Now().Add(-olderThan)
	deleted := 0
	for _, file := range files {
		info, err := os.Stat(file)
		if err != nil || info.IsDir() {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(file); err != nil {
				w.logger.Warn("failed to delete old preview", zap.String("path", file), zap.Error(err))
				continue
			}
			deleted++
		}
	}

	if deleted > 0 {
		w.logger.Info("pruned old previews", zap.Int("deleted", deleted), zap.String("dir", w.dir))
	}
	return deleted, nil
}
