package job

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roi-capture/internal/models"
)

const validJob = `
video: ./clips/intake.mp4
targetTime: "1.5"
currentTime: 12
saveDir: /data/crops
roi: {x: 120, y: 80, w: 200, h: 150, displayW: 960, displayH: 540}
previews: all
save: true
`

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validJob), 0o644))

	j, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "./clips/intake.mp4", j.Video)
	assert.Equal(t, "1.5", j.TargetTime)
	assert.Equal(t, 12.0, j.CurrentTime)
	assert.Equal(t, models.RoiInput{X: 120, Y: 80, W: 200, H: 150, DisplayW: 960, DisplayH: 540}, j.Roi)
	assert.Equal(t, PreviewsAll, j.Previews)
	assert.True(t, j.Save)
}

func TestParse_DefaultsPreviewMode(t *testing.T) {
	j, err := Parse([]byte(`
video: a.mp4
targetTime: "2"
saveDir: /out
roi: {x: 0, y: 0, w: 10, h: 10}
`))
	require.NoError(t, err)
	assert.Equal(t, PreviewsFirst, j.Previews)
	assert.False(t, j.Save)
}

func TestParse_ReportsAllProblems(t *testing.T) {
	_, err := Parse([]byte(`
targetTime: "0"
currentTime: -1
roi: {w: 0, h: 5}
previews: some
`))
	require.Error(t, err)

	msg := err.Error()
	assert.Contains(t, msg, "video is required")
	assert.Contains(t, msg, "targetTime must be a number > 0")
	assert.Contains(t, msg, "currentTime must not be negative")
	assert.Contains(t, msg, "saveDir is required")
	assert.Contains(t, msg, "roi must have positive w and h")
	assert.Contains(t, msg, "previews must be one of")
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("video: [unterminated"))
	require.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
