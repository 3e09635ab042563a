package project

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/clipforge/clipforge-agent/internal/edit"
)

// Repository is the persistence contract for projects and their documents.
type Repository interface {
	CreateProject(ctx context.Context, p *Project) error
	GetProject(ctx context.Context, id string) (*Project, error)
	ListProjects(ctx context.Context) ([]*Project, error)
	DeleteProject(ctx context.Context, id string) error
	UpdateProjectStatus(ctx context.Context, id, status string) error
	UpdateProjectTitle(ctx context.Context, id, title string) error
	CountProjects(ctx context.Context) (int, error)

	SaveEditConfig(ctx context.Context, projectID string, cfg edit.Config) error
	GetEditConfig(ctx context.Context, projectID string) (*edit.Config, error)

	SaveTranscript(ctx context.Context, projectID string, tr edit.Transcript) error
	GetTranscript(ctx context.Context, projectID string) (*edit.Transcript, error)

	GetConfig(ctx context.Context, key string) (string, error)
	SetConfig(ctx context.Context, key, value string) error
}

// SQLiteRepository stores everything in the agent's local SQLite database.
// Documents (edit config, transcript) are stored as JSON blobs: they are
// read and written whole, never queried into.
type SQLiteRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) CreateProject(ctx context.Context, p *Project) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO projects (id, title, media_path, clip_start, clip_end, width, height, frame_rate, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.Title, p.MediaPath, p.ClipStart, p.ClipEnd, p.Width, p.Height, p.FrameRate,
		p.Status, p.CreatedAt.Format(time.RFC3339), p.UpdatedAt.Format(time.RFC3339))
	return err
}

func (r *SQLiteRepository) GetProject(ctx context.Context, id string) (*Project, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, title, media_path, clip_start, clip_end, width, height, frame_rate, status, created_at, updated_at
		FROM projects WHERE id = ?
	`, id)
	return scanProject(row)
}

func scanProject(row *sql.Row) (*Project, error) {
	var p Project
	var createdAt, updatedAt string

	err := row.Scan(&p.ID, &p.Title, &p.MediaPath, &p.ClipStart, &p.ClipEnd,
		&p.Width, &p.Height, &p.FrameRate, &p.Status, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &p, nil
}

func (r *SQLiteRepository) ListProjects(ctx context.Context) ([]*Project, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, media_path, clip_start, clip_end, width, height, frame_rate, status, created_at, updated_at
		FROM projects ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []*Project
	for rows.Next() {
		var p Project
		var createdAt, updatedAt string
		if err := rows.Scan(&p.ID, &p.Title, &p.MediaPath, &p.ClipStart, &p.ClipEnd,
			&p.Width, &p.Height, &p.FrameRate, &p.Status, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		projects = append(projects, &p)
	}
	return projects, rows.Err()
}

func (r *SQLiteRepository) DeleteProject(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM edit_configs WHERE project_id = ?", id); err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, "DELETE FROM transcripts WHERE project_id = ?", id); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	return err
}

func (r *SQLiteRepository) UpdateProjectStatus(ctx context.Context, id, status string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE projects SET status = ?, updated_at = datetime('now') WHERE id = ?
	`, status, id)
	return err
}

func (r *SQLiteRepository) UpdateProjectTitle(ctx context.Context, id, title string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE projects SET title = ?, updated_at = datetime('now') WHERE id = ?
	`, title, id)
	return err
}

func (r *SQLiteRepository) CountProjects(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM projects").Scan(&count)
	return count, err
}

func (r *SQLiteRepository) SaveEditConfig(ctx context.Context, projectID string, cfg edit.Config) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal edit config: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO edit_configs (project_id, document, updated_at) VALUES (?, ?, datetime('now'))
		ON CONFLICT(project_id) DO UPDATE SET document = excluded.document, updated_at = excluded.updated_at
	`, projectID, string(data))
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, "UPDATE projects SET updated_at = datetime('now') WHERE id = ?", projectID)
	return err
}

func (r *SQLiteRepository) GetEditConfig(ctx context.Context, projectID string) (*edit.Config, error) {
	var document string
	err := r.db.QueryRowContext(ctx,
		"SELECT document FROM edit_configs WHERE project_id = ?", projectID).Scan(&document)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var cfg edit.Config
	if err := json.Unmarshal([]byte(document), &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal edit config for %s: %w", projectID, err)
	}
	return &cfg, nil
}

func (r *SQLiteRepository) SaveTranscript(ctx context.Context, projectID string, tr edit.Transcript) error {
	data, err := json.Marshal(tr)
	if err != nil {
		return fmt.Errorf("marshal transcript: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO transcripts (project_id, document, updated_at) VALUES (?, ?, datetime('now'))
		ON CONFLICT(project_id) DO UPDATE SET document = excluded.document, updated_at = excluded.updated_at
	`, projectID, string(data))
	return err
}

func (r *SQLiteRepository) GetTranscript(ctx context.Context, projectID string) (*edit.Transcript, error) {
	var document string
	err := r.db.QueryRowContext(ctx,
		"SELECT document FROM transcripts WHERE project_id = ?", projectID).Scan(&document)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var tr edit.Transcript
	if err := json.Unmarshal([]byte(document), &tr); err != nil {
		return nil, fmt.Errorf("unmarshal transcript for %s: %w", projectID, err)
	}
	return &tr, nil
}

func (r *SQLiteRepository) GetConfig(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM config WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

func (r *SQLiteRepository) SetConfig(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}
