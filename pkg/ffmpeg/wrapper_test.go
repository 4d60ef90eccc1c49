package ffmpeg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProbeOutput(t *testing.T) {
	out := []byte(`{
		"programs": [],
		"streams": [{"codec_name": "h264", "width": 1920, "height": 1080}],
		"format": {"duration": "12.480000"}
	}`)

	info, err := parseProbeOutput(out)
	require.NoError(t, err)
	assert.Equal(t, &VideoInfo{DurationSec: 12.48, Width: 1920, Height: 1080, Codec: "h264"}, info)
}

func TestParseProbeOutput_NoDuration(t *testing.T) {
	info, err := parseProbeOutput([]byte(`{"streams": [{"codec_name": "mjpeg", "width": 640, "height": 480}], "format": {}}`))
	require.NoError(t, err)
	assert.Zero(t, info.DurationSec)
}

func TestParseProbeOutput_Errors(t *testing.T) {
	_, err := parseProbeOutput([]byte(`{"streams": [], "format": {"duration": "1.0"}}`))
	assert.Error(t, err)

	_, err = parseProbeOutput([]byte(`{"streams": [{"width": 1}], "format": {"duration": "N/A"}}`))
	assert.Error(t, err)

	_, err = parseProbeOutput([]byte(`not json`))
	assert.Error(t, err)
}
