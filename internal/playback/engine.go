// Package playback turns a declarative edit configuration into a
// synchronized real-time preview. One engine owns one player; a cooperative
// tick loop runs only while playing, corrects the native position across
// removed regions, computes the overlay state for the current instant, and
// publishes immutable snapshots to subscribers.
package playback

import (
	"log/slog"
	"sync"
	"time"

	"github.com/clipforge/clipforge-agent/internal/edit"
	"github.com/clipforge/clipforge-agent/internal/timeline"
)

// DefaultFrameInterval schedules ~30 snapshot computations per second,
// matching a display-refresh driven loop.
const DefaultFrameInterval = 33 * time.Millisecond

// boundaryEpsilon absorbs float jitter in native position reports around
// segment boundaries.
const boundaryEpsilon = 1e-6

// ShuttleSpeeds are the discrete transport levels: reverse, pause, forward.
var ShuttleSpeeds = []int{-2, -1, 0, 1, 2}

// EngineOptions configures a new engine.
type EngineOptions struct {
	Player        Player
	Config        edit.Config
	Transcript    *edit.Transcript
	ClipStart     float64
	FrameInterval time.Duration
	Logger        *slog.Logger
}

// Engine drives the preview for one editing session. All exported methods
// are safe for concurrent use; the tick loop itself is a single goroutine
// and never re-enters.
type Engine struct {
	mu sync.Mutex

	player    Player
	cfg       edit.Config
	words     []edit.Word
	clipStart float64

	tmap   *timeline.TimeMap
	groups []CaptionGroup

	playing   bool
	shuttle   int
	segIdx    int
	stalled   bool
	destroyed bool

	stopLoop chan struct{}

	subs    map[int]func(State)
	nextSub int

	frameInterval time.Duration
	logger        *slog.Logger
}

// NewEngine builds an engine around a player and an edit configuration. The
// caller must invoke Destroy before discarding the engine.
func NewEngine(opts EngineOptions) *Engine {
	interval := opts.FrameInterval
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	e := &Engine{
		player:        opts.Player,
		clipStart:     opts.ClipStart,
		shuttle:       1,
		subs:          make(map[int]func(State)),
		frameInterval: interval,
		logger:        logger,
	}
	e.applyConfig(opts.Config, opts.Transcript, opts.ClipStart)
	return e
}

// applyConfig rebuilds derived state. Caller holds no lock during NewEngine;
// UpdateConfig locks around it.
func (e *Engine) applyConfig(cfg edit.Config, transcript *edit.Transcript, clipStart float64) {
	e.cfg = cfg.Clone()
	e.clipStart = clipStart
	if transcript != nil {
		e.words = transcript.Words
	} else {
		e.words = nil
	}
	e.tmap = timeline.NewTimeMap(e.cfg.Segments)
	e.groups = buildCaptionGroups(e.words, e.clipStart, e.cfg.CaptionOverrides, e.cfg.Captions, e.tmap)
	if e.segIdx >= e.tmap.Len() {
		e.segIdx = e.tmap.Len() - 1
	}
	if e.segIdx < 0 {
		e.segIdx = 0
	}
}

// Subscribe registers a snapshot consumer and immediately delivers the
// current state. The returned function unregisters it.
func (e *Engine) Subscribe(fn func(State)) func() {
	e.mu.Lock()
	id := e.nextSub
	e.nextSub++
	e.subs[id] = fn
	snap := e.snapshotLocked(e.clipPosition())
	e.mu.Unlock()

	fn(snap)
	return func() {
		e.mu.Lock()
		delete(e.subs, id)
		e.mu.Unlock()
	}
}

// State computes a snapshot for the current instant without waiting for the
// next tick.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked(e.clipPosition())
}

// TogglePlay starts or pauses playback. Toggling at the end of the timeline
// restarts from the beginning.
func (e *Engine) TogglePlay() {
	e.mu.Lock()
	if e.destroyed {
		e.mu.Unlock()
		return
	}

	if e.playing {
		e.playing = false
		e.stopLoopLocked()
		e.player.Pause()
		snap := e.snapshotLocked(e.clipPosition())
		e.publishLocked(snap)
		return
	}

	if e.tmap.TotalDuration() <= 0 {
		e.mu.Unlock()
		return
	}

	pos := e.clipPosition()
	if e.outputAt(pos) >= e.tmap.TotalDuration()-boundaryEpsilon {
		e.seekOutputLocked(0)
		pos = e.clipPosition()
	}

	e.playing = true
	if e.shuttle == 1 {
		e.player.Play()
	}
	e.startLoopLocked()
	snap := e.snapshotLocked(pos)
	e.publishLocked(snap)
}

// Seek moves the playhead to an output-timeline position, clamped to
// [0, totalDuration].
func (e *Engine) Seek(outputTime float64) {
	e.mu.Lock()
	if e.destroyed {
		e.mu.Unlock()
		return
	}
	e.seekOutputLocked(outputTime)
	snap := e.snapshotLocked(e.clipPosition())
	e.publishLocked(snap)
}

// Step nudges the playhead by delta seconds on the output timeline.
func (e *Engine) Step(delta float64) {
	e.mu.Lock()
	if e.destroyed {
		e.mu.Unlock()
		return
	}
	target := e.outputAt(e.clipPosition()) + delta
	e.seekOutputLocked(target)
	snap := e.snapshotLocked(e.clipPosition())
	e.publishLocked(snap)
}

// SetShuttleSpeed selects a discrete transport speed. Speed 1 is natural
// playback; 0 holds the frame; other levels scrub the player manually each
// tick, which is what makes reverse play possible on a forward-only
// primitive. Unknown speeds are ignored.
func (e *Engine) SetShuttleSpeed(multiplier int) {
	valid := false
	for _, s := range ShuttleSpeeds {
		if s == multiplier {
			valid = true
			break
		}
	}
	if !valid {
		return
	}

	e.mu.Lock()
	if e.destroyed {
		e.mu.Unlock()
		return
	}
	e.shuttle = multiplier
	if e.playing {
		if multiplier == 1 {
			e.player.Play()
		} else {
			e.player.Pause()
		}
	}
	snap := e.snapshotLocked(e.clipPosition())
	e.publishLocked(snap)
}

// UpdateConfig hot-swaps the edit configuration: the time map is rebuilt,
// the playhead is re-validated against the new total duration, and the
// underlying player survives untouched. Called on every committed edit.
func (e *Engine) UpdateConfig(cfg edit.Config, transcript *edit.Transcript, clipStart float64) {
	e.mu.Lock()
	if e.destroyed {
		e.mu.Unlock()
		return
	}

	output := e.outputAt(e.clipPosition())
	e.applyConfig(cfg, transcript, clipStart)

	if total := e.tmap.TotalDuration(); output > total {
		output = total
	}
	e.seekOutputLocked(output)

	snap := e.snapshotLocked(e.clipPosition())
	e.publishLocked(snap)
}

// Destroy cancels the scheduled tick and detaches from the player. The
// engine publishes nothing afterwards; mandatory before discarding an
// instance or switching the underlying source.
func (e *Engine) Destroy() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.destroyed {
		return
	}
	e.destroyed = true
	e.playing = false
	e.stopLoopLocked()
	e.player.Pause()
	e.subs = make(map[int]func(State))
}

func (e *Engine) startLoopLocked() {
	if e.stopLoop != nil {
		return
	}
	stop := make(chan struct{})
	e.stopLoop = stop
	go e.loop(stop)
}

func (e *Engine) stopLoopLocked() {
	if e.stopLoop != nil {
		close(e.stopLoop)
		e.stopLoop = nil
	}
}

// loop is the cooperative per-frame scheduler: one tick at a time, only
// while playing.
func (e *Engine) loop(stop chan struct{}) {
	ticker := time.NewTicker(e.frameInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			e.tick()
		}
	}
}

// tick advances one frame: correct the native position across removed
// regions, then publish a fresh snapshot.
func (e *Engine) tick() {
	e.mu.Lock()
	if e.destroyed || !e.playing {
		e.mu.Unlock()
		return
	}

	pos := e.clipPosition()
	if e.shuttle == 1 {
		pos = e.correctBoundaryLocked(pos)
	} else if e.shuttle != 0 {
		pos = e.advanceShuttleLocked(pos)
	}

	snap := e.snapshotLocked(pos)
	e.publishLocked(snap)
}

// clipPosition reads the player's native position in clip-relative seconds.
func (e *Engine) clipPosition() float64 {
	return e.player.Position() - e.clipStart
}

// outputAt converts a clip-relative position to output time, preferring the
// tracked active segment so repeated source ranges resolve unambiguously.
func (e *Engine) outputAt(pos float64) float64 {
	spans := e.tmap.Spans()
	if e.segIdx >= 0 && e.segIdx < len(spans) {
		span := spans[e.segIdx]
		if pos >= span.Segment.SourceStart-boundaryEpsilon && pos <= span.Segment.SourceEnd+boundaryEpsilon {
			return span.OutputStart + (pos - span.Segment.SourceStart)
		}
	}
	return e.tmap.SourceToOutput(pos)
}

// correctBoundaryLocked is the mechanism that makes cuts invisible: when
// the native position passes the active segment's end, seek to the next
// segment's start; with no next segment, stop at end of timeline.
func (e *Engine) correctBoundaryLocked(pos float64) float64 {
	spans := e.tmap.Spans()
	if len(spans) == 0 {
		return pos
	}
	if e.segIdx >= len(spans) {
		e.segIdx = len(spans) - 1
	}

	span := spans[e.segIdx]
	if pos < span.Segment.SourceStart-boundaryEpsilon {
		// The player moved backwards underneath us (external scrub).
		if idx := e.tmap.SpanIndexForSource(pos); idx >= 0 {
			e.segIdx = idx
			return pos
		}
		e.seekPlayerLocked(span.Segment.SourceStart)
		return span.Segment.SourceStart
	}

	if pos < span.Segment.SourceEnd-boundaryEpsilon {
		return pos
	}

	if e.segIdx+1 < len(spans) {
		e.segIdx++
		next := spans[e.segIdx].Segment.SourceStart
		e.seekPlayerLocked(next)
		return next
	}

	// End of timeline.
	e.playing = false
	e.stopLoopLocked()
	e.player.Pause()
	return span.Segment.SourceEnd
}

// advanceShuttleLocked scrubs the paused player by speed×frame each tick,
// jumping across removed regions in either direction.
func (e *Engine) advanceShuttleLocked(pos float64) float64 {
	spans := e.tmap.Spans()
	if len(spans) == 0 {
		return pos
	}
	if e.segIdx >= len(spans) {
		e.segIdx = len(spans) - 1
	}

	pos += float64(e.shuttle) * e.frameInterval.Seconds()
	span := spans[e.segIdx]

	if e.shuttle > 0 && pos >= span.Segment.SourceEnd {
		if e.segIdx+1 < len(spans) {
			e.segIdx++
			pos = spans[e.segIdx].Segment.SourceStart
		} else {
			pos = span.Segment.SourceEnd
			e.playing = false
			e.stopLoopLocked()
			e.player.Pause()
		}
	} else if e.shuttle < 0 && pos <= span.Segment.SourceStart {
		if e.segIdx > 0 {
			e.segIdx--
			pos = spans[e.segIdx].Segment.SourceEnd
		} else {
			pos = span.Segment.SourceStart
		}
	}

	e.seekPlayerLocked(pos)
	return pos
}

// seekOutputLocked clamps an output-timeline target and drives the player
// there through the time map.
func (e *Engine) seekOutputLocked(outputTime float64) {
	total := e.tmap.TotalDuration()
	if outputTime < 0 {
		outputTime = 0
	}
	if outputTime > total {
		outputTime = total
	}
	if idx := e.tmap.SpanIndexAt(outputTime); idx >= 0 {
		e.segIdx = idx
	}
	e.seekPlayerLocked(e.tmap.OutputToSource(outputTime))
}

// seekPlayerLocked issues a native seek with a single retry; a second
// failure surfaces as a stalled playback state until a later seek lands.
func (e *Engine) seekPlayerLocked(clipTime float64) {
	target := clipTime + e.clipStart
	if err := e.player.SeekTo(target); err != nil {
		if err = e.player.SeekTo(target); err != nil {
			e.stalled = true
			e.logger.Warn("player seek stalled", "target", target, "error", err)
			return
		}
	}
	e.stalled = false
}

// snapshotLocked computes the full published state for a clip-relative
// position. Snapshots share no mutable storage with the engine.
func (e *Engine) snapshotLocked(pos float64) State {
	output := e.outputAt(pos)
	total := e.tmap.TotalDuration()
	if output > total {
		output = total
	}

	return State{
		Playing:       e.playing,
		Stalled:       e.stalled,
		OutputTime:    output,
		SourceTime:    pos + e.clipStart,
		TotalDuration: total,
		SegmentIndex:  e.segIdx,
		ShuttleSpeed:  e.shuttle,
		Zoom:          activeZoom(e.cfg.Zooms, output),
		Transition:    activeTransition(e.tmap, e.segIdx, output),
		Captions:      activeCaptionGroup(e.groups, output),
		Annotations:   activeAnnotations(e.cfg.Annotations, output),
	}
}

// publishLocked fans the snapshot out to subscribers. The engine lock is
// released first so a subscriber may call back into the engine.
func (e *Engine) publishLocked(snap State) {
	subs := make([]func(State), 0, len(e.subs))
	for _, fn := range e.subs {
		subs = append(subs, fn)
	}
	e.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}
