package playback

import "sync"

// Player abstracts the single video-playback primitive the engine drives.
// Positions are source-absolute seconds. The browser <video> element is the
// production implementation, bridged through RemotePlayer; tests use an
// in-process fake.
type Player interface {
	Play()
	Pause()
	// SeekTo moves the native position. Keyframe seeks carry visible
	// latency; the engine issues them proactively at segment boundaries.
	SeekTo(sourceTime float64) error
	Position() float64
	Playing() bool
}

// RemotePlayer bridges a player that lives outside the process. The browser
// reports its native position and play state via Report; the engine's
// commands are staged and drained by the transport layer for delivery on
// the next state fetch. Seeks are applied optimistically so the engine's
// boundary logic does not re-trigger while the real seek is in flight.
type RemotePlayer struct {
	mu          sync.Mutex
	position    float64
	playing     bool
	wantPlaying bool
	pendingSeek *float64
}

// NewRemotePlayer returns a RemotePlayer at position zero, paused.
func NewRemotePlayer() *RemotePlayer {
	return &RemotePlayer{}
}

func (p *RemotePlayer) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.wantPlaying = true
	p.playing = true
}

func (p *RemotePlayer) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.wantPlaying = false
	p.playing = false
}

func (p *RemotePlayer) SeekTo(sourceTime float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	t := sourceTime
	p.position = t
	p.pendingSeek = &t
	return nil
}

func (p *RemotePlayer) Position() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.position
}

func (p *RemotePlayer) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// Report records the real player's state as observed by the browser.
func (p *RemotePlayer) Report(position float64, playing bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.position = position
	p.playing = playing
}

// Commands drains the staged instructions for the remote side: the seek to
// execute, if any, and whether the element should be playing.
func (p *RemotePlayer) Commands() (seekTo *float64, wantPlaying bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	seekTo = p.pendingSeek
	p.pendingSeek = nil
	return seekTo, p.wantPlaying
}
