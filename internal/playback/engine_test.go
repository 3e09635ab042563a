package playback

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/clipforge/clipforge-agent/internal/edit"
)

// fakePlayer is an in-process player whose position only moves on SeekTo,
// letting tests drive ticks deterministically.
type fakePlayer struct {
	position float64
	playing  bool
	seeks    []float64
	failN    int
}

func (p *fakePlayer) Play()  { p.playing = true }
func (p *fakePlayer) Pause() { p.playing = false }

func (p *fakePlayer) SeekTo(t float64) error {
	if p.failN > 0 {
		p.failN--
		return errors.New("seek refused")
	}
	p.position = t
	p.seeks = append(p.seeks, t)
	return nil
}

func (p *fakePlayer) Position() float64 { return p.position }
func (p *fakePlayer) Playing() bool     { return p.playing }

func twoSegmentConfig() edit.Config {
	cfg := edit.Default(20)
	cfg.Segments = []edit.Segment{
		{ID: "a", SourceStart: 0, SourceEnd: 10, Transition: edit.TransitionNone},
		{ID: "b", SourceStart: 12, SourceEnd: 20, Transition: edit.TransitionNone},
	}
	return cfg
}

func newTestEngine(t *testing.T, cfg edit.Config) (*Engine, *fakePlayer) {
	t.Helper()
	player := &fakePlayer{}
	// A huge frame interval keeps the background loop quiet so tests can
	// drive ticks by hand.
	engine := NewEngine(EngineOptions{
		Player:        player,
		Config:        cfg,
		FrameInterval: time.Hour,
	})
	t.Cleanup(engine.Destroy)
	return engine, player
}

func TestEngine_TotalDuration(t *testing.T) {
	engine, _ := newTestEngine(t, twoSegmentConfig())
	if got := engine.State().TotalDuration; got != 18 {
		t.Errorf("TotalDuration = %v, want 18", got)
	}
}

func TestEngine_Seek_ClampsAndMaps(t *testing.T) {
	engine, player := newTestEngine(t, twoSegmentConfig())

	engine.Seek(11)
	st := engine.State()
	if math.Abs(st.SourceTime-13) > 1e-9 {
		t.Errorf("SourceTime = %v, want 13", st.SourceTime)
	}
	if st.SegmentIndex != 1 {
		t.Errorf("SegmentIndex = %d, want 1", st.SegmentIndex)
	}

	engine.Seek(500)
	if got := engine.State().OutputTime; got != 18 {
		t.Errorf("OutputTime after over-seek = %v, want 18 (clamped)", got)
	}
	engine.Seek(-5)
	if got := engine.State().OutputTime; got != 0 {
		t.Errorf("OutputTime after negative seek = %v, want 0 (clamped)", got)
	}
	if player.position != 0 {
		t.Errorf("player position = %v, want 0", player.position)
	}
}

func TestEngine_BoundaryCrossingSeeksNextSegment(t *testing.T) {
	engine, player := newTestEngine(t, twoSegmentConfig())
	engine.TogglePlay()

	// Simulate native playback reaching the end of the first segment.
	player.position = 10.01
	engine.tick()

	st := engine.State()
	if st.SegmentIndex != 1 {
		t.Errorf("SegmentIndex = %d, want 1", st.SegmentIndex)
	}
	if math.Abs(player.position-12) > 1e-9 {
		t.Errorf("player position = %v, want 12 (next segment start)", player.position)
	}
	if !st.Playing {
		t.Error("engine stopped playing at an interior boundary")
	}
}

func TestEngine_StopsAtEndOfTimeline(t *testing.T) {
	engine, player := newTestEngine(t, twoSegmentConfig())
	engine.TogglePlay()
	engine.Seek(17)

	player.position = 20.5
	engine.tick()

	st := engine.State()
	if st.Playing {
		t.Error("engine still playing past end of timeline")
	}
	if math.Abs(st.OutputTime-18) > 1e-9 {
		t.Errorf("OutputTime = %v, want 18", st.OutputTime)
	}
	if player.playing {
		t.Error("player not paused at end of timeline")
	}
}

func TestEngine_TogglePlayAtEndRestarts(t *testing.T) {
	engine, player := newTestEngine(t, twoSegmentConfig())
	engine.Seek(18)

	engine.TogglePlay()
	st := engine.State()
	if !st.Playing {
		t.Fatal("engine not playing")
	}
	if st.OutputTime != 0 {
		t.Errorf("OutputTime = %v, want 0 (restart)", st.OutputTime)
	}
	if player.position != 0 {
		t.Errorf("player position = %v, want 0", player.position)
	}
}

func TestEngine_PublishesSnapshots(t *testing.T) {
	engine, player := newTestEngine(t, twoSegmentConfig())

	var got []State
	unsub := engine.Subscribe(func(s State) { got = append(got, s) })
	if len(got) != 1 {
		t.Fatalf("subscribe delivered %d snapshots, want 1", len(got))
	}

	engine.TogglePlay()
	player.position = 5
	engine.tick()

	if len(got) < 3 {
		t.Fatalf("got %d snapshots, want at least 3", len(got))
	}
	last := got[len(got)-1]
	if last.OutputTime != 5 || !last.Playing {
		t.Errorf("last snapshot = %+v", last)
	}

	unsub()
	before := len(got)
	engine.tick()
	if len(got) != before {
		t.Error("snapshot delivered after unsubscribe")
	}
}

func TestEngine_ActiveZoomInterpolation(t *testing.T) {
	cfg := twoSegmentConfig()
	cfg.Zooms = []edit.Zoom{{
		ID: "z1", Time: 4, Duration: 2, Scale: 1.5,
		Easing: edit.EasingLinear, AnchorX: 0.5, AnchorY: 0.5,
	}}
	engine, _ := newTestEngine(t, cfg)

	engine.Seek(5) // midpoint: triangle envelope peaks at 1
	st := engine.State()
	if st.Zoom == nil {
		t.Fatal("no active zoom at midpoint")
	}
	if math.Abs(st.Zoom.Scale-1.5) > 1e-9 {
		t.Errorf("Scale = %v, want 1.5", st.Zoom.Scale)
	}
	if math.Abs(st.Zoom.Progress-0.5) > 1e-9 {
		t.Errorf("Progress = %v, want 0.5", st.Zoom.Progress)
	}

	engine.Seek(4.5) // quarter in: envelope at 0.5
	st = engine.State()
	if st.Zoom == nil || math.Abs(st.Zoom.Scale-1.25) > 1e-9 {
		t.Errorf("Scale = %+v, want 1.25", st.Zoom)
	}

	engine.Seek(7)
	if engine.State().Zoom != nil {
		t.Error("zoom active outside its window")
	}
}

func TestEngine_ActiveTransition(t *testing.T) {
	cfg := twoSegmentConfig()
	cfg.Segments[1].Transition = edit.TransitionCrossfade
	cfg.Segments[1].TransitionDuration = 1.0
	engine, _ := newTestEngine(t, cfg)

	engine.Seek(9.5) // inside the 1s window before the boundary at 10
	st := engine.State()
	if st.Transition == nil {
		t.Fatal("no active transition inside the window")
	}
	if st.Transition.Kind != edit.TransitionCrossfade {
		t.Errorf("Kind = %q, want crossfade", st.Transition.Kind)
	}
	if math.Abs(st.Transition.Progress-0.5) > 1e-9 {
		t.Errorf("Progress = %v, want 0.5", st.Transition.Progress)
	}

	engine.Seek(8)
	if engine.State().Transition != nil {
		t.Error("transition active before its window")
	}
}

func TestEngine_HardTransitionIsNull(t *testing.T) {
	cfg := twoSegmentConfig()
	cfg.Segments[1].Transition = edit.TransitionHard
	engine, _ := newTestEngine(t, cfg)

	engine.Seek(9.9)
	if engine.State().Transition != nil {
		t.Error("hard boundary produced an active transition")
	}
}

func TestEngine_ActiveAnnotations(t *testing.T) {
	cfg := twoSegmentConfig()
	cfg.Annotations = []edit.Annotation{
		{ID: "n1", Type: "text", Content: "hi", StartTime: 2, EndTime: 4},
		{ID: "n2", Type: "text", Content: "bye", StartTime: 3, EndTime: 6},
	}
	engine, _ := newTestEngine(t, cfg)

	engine.Seek(3.5)
	st := engine.State()
	if len(st.Annotations) != 2 {
		t.Fatalf("got %d annotations, want 2", len(st.Annotations))
	}

	engine.Seek(4) // half-open interval: n1 just expired
	st = engine.State()
	if len(st.Annotations) != 1 || st.Annotations[0].ID != "n2" {
		t.Errorf("annotations at 4 = %+v, want only n2", st.Annotations)
	}
}

func TestEngine_UpdateConfigKeepsPosition(t *testing.T) {
	engine, player := newTestEngine(t, twoSegmentConfig())
	engine.Seek(5)

	cfg := twoSegmentConfig()
	cfg.Segments[0].SourceEnd = 8 // timeline shrinks to 16
	engine.UpdateConfig(cfg, nil, 0)

	st := engine.State()
	if st.TotalDuration != 16 {
		t.Errorf("TotalDuration = %v, want 16", st.TotalDuration)
	}
	if st.OutputTime != 5 {
		t.Errorf("OutputTime = %v, want 5 (position preserved)", st.OutputTime)
	}

	// Shrink below the playhead: position clamps to the new end.
	cfg2 := twoSegmentConfig()
	cfg2.Segments = cfg2.Segments[:1]
	cfg2.Segments[0].SourceEnd = 3
	engine.UpdateConfig(cfg2, nil, 0)
	if got := engine.State().OutputTime; got != 3 {
		t.Errorf("OutputTime after shrink = %v, want 3", got)
	}
	_ = player
}

func TestEngine_ShuttleReverse(t *testing.T) {
	engine, player := newTestEngine(t, twoSegmentConfig())
	engine.Seek(11) // source 13, segment b
	engine.SetShuttleSpeed(-2)
	engine.TogglePlay()

	engine.tick()
	st := engine.State()
	if st.SourceTime >= 13 {
		t.Errorf("SourceTime = %v, want < 13 (reverse)", st.SourceTime)
	}

	// Reverse across the cut: crossing the segment's start must jump to
	// the previous segment's end, never land inside [10, 12].
	engine.Seek(11)
	player.position = 12.01
	engine.tick()
	st = engine.State()
	if st.SegmentIndex != 0 {
		t.Errorf("SegmentIndex = %d, want 0 after reverse jump", st.SegmentIndex)
	}
	if math.Abs(st.SourceTime-10) > 1e-9 {
		t.Errorf("SourceTime = %v, want 10 (previous segment end)", st.SourceTime)
	}
}

func TestEngine_ShuttleZeroHoldsFrame(t *testing.T) {
	engine, _ := newTestEngine(t, twoSegmentConfig())
	engine.Seek(5)
	engine.SetShuttleSpeed(0)
	engine.TogglePlay()

	engine.tick()
	engine.tick()
	if got := engine.State().OutputTime; got != 5 {
		t.Errorf("OutputTime = %v, want 5 (held)", got)
	}
}

func TestEngine_InvalidShuttleIgnored(t *testing.T) {
	engine, _ := newTestEngine(t, twoSegmentConfig())
	engine.SetShuttleSpeed(7)
	if got := engine.State().ShuttleSpeed; got != 1 {
		t.Errorf("ShuttleSpeed = %d, want 1", got)
	}
}

func TestEngine_SeekRetryThenStalled(t *testing.T) {
	engine, player := newTestEngine(t, twoSegmentConfig())

	// One failure: retry succeeds, no stall surfaced.
	player.failN = 1
	engine.Seek(5)
	if engine.State().Stalled {
		t.Error("stalled after a recovered seek")
	}

	// Two failures: retry also fails, stall surfaced.
	player.failN = 2
	engine.Seek(7)
	if !engine.State().Stalled {
		t.Error("not stalled after repeated seek failure")
	}

	// A later successful seek clears it.
	engine.Seek(2)
	if engine.State().Stalled {
		t.Error("stall not cleared by successful seek")
	}
}

func TestEngine_EmptyConfigIdles(t *testing.T) {
	cfg := edit.Config{}
	engine, _ := newTestEngine(t, cfg)

	st := engine.State()
	if st.TotalDuration != 0 {
		t.Errorf("TotalDuration = %v, want 0", st.TotalDuration)
	}
	engine.TogglePlay()
	if engine.State().Playing {
		t.Error("zero-duration engine started playing")
	}
}

func TestEngine_DestroyDetaches(t *testing.T) {
	engine, _ := newTestEngine(t, twoSegmentConfig())

	calls := 0
	engine.Subscribe(func(State) { calls++ })
	engine.Destroy()

	before := calls
	engine.TogglePlay()
	engine.Seek(5)
	engine.tick()
	if calls != before {
		t.Error("destroyed engine still publishing")
	}
	if engine.State().Playing {
		t.Error("destroyed engine reports playing")
	}
}

func TestEngine_ClipStartOffset(t *testing.T) {
	cfg := edit.Default(10)
	player := &fakePlayer{}
	engine := NewEngine(EngineOptions{Player: player, Config: cfg, ClipStart: 30})
	defer engine.Destroy()

	engine.Seek(4)
	if math.Abs(player.position-34) > 1e-9 {
		t.Errorf("player position = %v, want 34 (clip start offset)", player.position)
	}
	st := engine.State()
	if math.Abs(st.SourceTime-34) > 1e-9 {
		t.Errorf("SourceTime = %v, want 34", st.SourceTime)
	}
	if math.Abs(st.OutputTime-4) > 1e-9 {
		t.Errorf("OutputTime = %v, want 4", st.OutputTime)
	}
}
