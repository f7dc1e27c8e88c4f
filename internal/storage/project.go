package storage

import (
	"context"
	"database/sql"
	"fmt"

	"assistdesk/pkg/desktypes"
)

const activeProjectKey = "active_project_id"

// ProjectRepository persists projects and the active-project pointer.
type ProjectRepository struct {
	db *DB
}

// NewProjectRepository creates a new ProjectRepository.
func NewProjectRepository(db *DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// List returns all persisted projects, default project first, the rest in
// creation order.
func (r *ProjectRepository) List(ctx context.Context) ([]desktypes.Project, error) {
	query := `
		SELECT id, name, api_key, model_count, is_default, created_at
		FROM projects
		ORDER BY is_default DESC, created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var projects []desktypes.Project
	for rows.Next() {
		var p desktypes.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.APIKey, &p.ModelCount, &p.IsDefault, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate projects: %w", err)
	}

	return projects, nil
}

// Insert stores a new project.
func (r *ProjectRepository) Insert(ctx context.Context, p desktypes.Project) error {
	query := `
		INSERT INTO projects (id, name, api_key, model_count, is_default, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.Name,
		p.APIKey,
		p.ModelCount,
		p.IsDefault,
		p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert project: %w", err)
	}

	return nil
}

// Delete removes a project by id.
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return &desktypes.NotFoundError{Kind: "project", ID: id}
	}

	return nil
}

// ActiveID returns the persisted active project id, empty if none was ever
// set.
func (r *ProjectRepository) ActiveID(ctx context.Context) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, activeProjectKey).Scan(&id)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read active project: %w", err)
	}
	return id, nil
}

// SetActiveID persists the active project pointer.
func (r *ProjectRepository) SetActiveID(ctx context.Context, id string) error {
	query := `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`
	if _, err := r.db.ExecContext(ctx, query, activeProjectKey, id); err != nil {
		return fmt.Errorf("failed to persist active project: %w", err)
	}
	return nil
}
