package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kontrib/kontrib/internal/apperr"
	"github.com/kontrib/kontrib/internal/models"
	"github.com/kontrib/kontrib/internal/money"
)

// CreateProject persists a new project with a zero collected total.
func (s *SQLiteStore) CreateProject(ctx context.Context, project *models.Project) error {
	if project.ID == "" {
		project.ID = uuid.New().String()
	}
	if project.CreatedAt == 0 {
		project.CreatedAt = time.Now().Unix()
	}

	var target interface{}
	if project.TargetAmount != nil {
		target = project.TargetAmount.String()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO projects (id, group_id, name, target_amount, collected_amount, created_at)
		 VALUES (?, ?, ?, ?, '0', ?)`,
		project.ID, project.GroupID, project.Name, target, project.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert project: %w", err)
	}
	project.CollectedAmount = money.Zero()
	return nil
}

// GetProject retrieves a project by ID.
func (s *SQLiteStore) GetProject(ctx context.Context, id string) (*models.Project, error) {
	project, err := scanProject(s.db.QueryRowContext(ctx,
		`SELECT id, group_id, name, target_amount, collected_amount, created_at
		 FROM projects WHERE id = ?`, id))
	if err != nil {
		return nil, err
	}
	return project, nil
}

func scanProject(row *sql.Row) (*models.Project, error) {
	project := &models.Project{}
	var target sql.NullString
	err := row.Scan(&project.ID, &project.GroupID, &project.Name, &target,
		&project.CollectedAmount, &project.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("project: %w", apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	if target.Valid {
		amount, err := money.Parse(target.String)
		if err != nil {
			return nil, fmt.Errorf("corrupt target amount: %w", err)
		}
		project.TargetAmount = &amount
	}
	return project, nil
}

// ListProjectsByGroup retrieves all projects belonging to a group.
func (s *SQLiteStore) ListProjectsByGroup(ctx context.Context, groupID string) ([]*models.Project, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, group_id, name, target_amount, collected_amount, created_at
		 FROM projects WHERE group_id = ? ORDER BY created_at DESC`, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []*models.Project
	for rows.Next() {
		project := &models.Project{}
		var target sql.NullString
		if err := rows.Scan(&project.ID, &project.GroupID, &project.Name, &target,
			&project.CollectedAmount, &project.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		if target.Valid {
			amount, err := money.Parse(target.String)
			if err != nil {
				return nil, fmt.Errorf("corrupt target amount: %w", err)
			}
			project.TargetAmount = &amount
		}
		projects = append(projects, project)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate projects: %w", err)
	}
	return projects, nil
}
