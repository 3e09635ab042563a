package project

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/clipforge/clipforge-agent/internal/edit"
	"github.com/clipforge/clipforge-agent/internal/media"
	"github.com/clipforge/clipforge-agent/internal/timeline"
)

// Service wraps the repository with the create/open flows the API exposes.
type Service struct {
	repo   Repository
	prober media.Prober
	logger *slog.Logger
}

func NewService(repo Repository, prober media.Prober, logger *slog.Logger) *Service {
	return &Service{repo: repo, prober: prober, logger: logger}
}

// CreateParams describes a new project. ClipEnd of zero means "to the end
// of the probed media".
type CreateParams struct {
	Title     string
	MediaPath string
	ClipStart float64
	ClipEnd   float64
}

// Create probes the media, seeds a default edit configuration covering the
// whole clip, and persists both.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Project, error) {
	absPath, err := filepath.Abs(params.MediaPath)
	if err != nil {
		return nil, fmt.Errorf("invalid media path: %w", err)
	}
	if _, err := os.Stat(absPath); err != nil {
		return nil, fmt.Errorf("media not found: %w", err)
	}

	probed, err := s.prober.Probe(ctx, absPath)
	if err != nil {
		return nil, fmt.Errorf("probe media: %w", err)
	}

	clipStart := params.ClipStart
	clipEnd := params.ClipEnd
	if clipEnd <= 0 || clipEnd > probed.Duration {
		clipEnd = probed.Duration
	}
	if clipStart < 0 || clipStart >= clipEnd {
		clipStart = 0
	}

	title := strings.TrimSpace(params.Title)
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(absPath), filepath.Ext(absPath))
	}

	now := time.Now()
	p := &Project{
		ID:        NewID(),
		Title:     title,
		MediaPath: absPath,
		ClipStart: clipStart,
		ClipEnd:   clipEnd,
		Width:     probed.Width,
		Height:    probed.Height,
		FrameRate: probed.FrameRate,
		Status:    StatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.CreateProject(ctx, p); err != nil {
		return nil, err
	}
	if err := s.repo.SaveEditConfig(ctx, p.ID, edit.Default(p.ClipDuration())); err != nil {
		return nil, err
	}

	s.logger.Info("project created",
		"project_id", p.ID, "media", absPath,
		"clip_start", clipStart, "clip_end", clipEnd)
	return p, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Project, error) {
	return s.repo.GetProject(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*Project, error) {
	return s.repo.ListProjects(ctx)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.CountProjects(ctx)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.DeleteProject(ctx, id)
}

func (s *Service) SetStatus(ctx context.Context, id, status string) error {
	return s.repo.UpdateProjectStatus(ctx, id, status)
}

func (s *Service) Rename(ctx context.Context, id, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("title is required")
	}
	return s.repo.UpdateProjectTitle(ctx, id, title)
}

// LoadEditConfig returns the persisted configuration, normalized against
// the project's clip duration. A project with no stored document gets the
// default configuration.
func (s *Service) LoadEditConfig(ctx context.Context, p *Project) (edit.Config, error) {
	cfg, err := s.repo.GetEditConfig(ctx, p.ID)
	if err != nil {
		return edit.Config{}, err
	}
	if cfg == nil {
		return edit.Default(p.ClipDuration()), nil
	}
	// Documents written before the segment list existed carry only a cut
	// list; reconstruct the kept segments so those edits are not lost to
	// the full-length segment Normalize would otherwise synthesize.
	if len(cfg.Segments) == 0 && len(cfg.Cuts) > 0 {
		cfg.Segments = timeline.SegmentsFromCuts(cfg.Cuts, p.ClipDuration())
	}
	cfg.Normalize(p.ClipDuration())
	return *cfg, nil
}

func (s *Service) SaveEditConfig(ctx context.Context, projectID string, cfg edit.Config) error {
	return s.repo.SaveEditConfig(ctx, projectID, cfg)
}

func (s *Service) SetTranscript(ctx context.Context, projectID string, tr edit.Transcript) error {
	return s.repo.SaveTranscript(ctx, projectID, tr)
}

func (s *Service) LoadTranscript(ctx context.Context, projectID string) (*edit.Transcript, error) {
	return s.repo.GetTranscript(ctx, projectID)
}
