package service

// Playback commands are one-shot: each call bumps a token that the video
// renderer watches. ResetInputs leaves them alone.

func (s *CaptureSession) Play() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playback.PlayToken++
}

func (s *CaptureSession) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playback.PauseToken++
}

// Seek requests a jump to fraction of the video length, clamped to [0, 1].
func (s *CaptureSession) Seek(fraction float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playback.SeekFraction = clamp01(fraction)
	s.playback.SeekToken++
}

// SetVolume clamps to [0, 1].
func (s *CaptureSession) SetVolume(volume float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playback.Volume = clamp01(volume)
}

// SetCurrentTime records the renderer's playback position. Extraction starts
// from here.
func (s *CaptureSession) SetCurrentTime(sec float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playback.CurrentTimeSec = max(sec, 0)
}

func clamp01(v float64) float64 {
	return min(max(v, 0), 1)
}
