package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) GetUserByID(ctx context.Context, userID int64) (User, error) {
	var user User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, display_name, email, created_at
		FROM users
		WHERE id=$1
	`, userID).Scan(&user.ID, &user.DisplayName, &user.Email, &user.CreatedAt)
	if err != nil {
		return User{}, err
	}
	return user, nil
}

func (s *PostgresStore) GetProject(ctx context.Context, projectID int64) (Project, error) {
	var project Project
	err := s.db.QueryRowContext(ctx, `
		SELECT p.id, p.owner_id, p.title, p.status,
			(SELECT COUNT(*) + 1 FROM memberships m WHERE m.project_id = p.id),
			p.created_at, p.updated_at
		FROM projects p
		WHERE p.id=$1
	`, projectID).Scan(&project.ID, &project.OwnerID, &project.Title, &project.Status,
		&project.TeamSize, &project.CreatedAt, &project.UpdatedAt)
	if err != nil {
		return Project{}, err
	}
	return project, nil
}

func (s *PostgresStore) GetPost(ctx context.Context, postID int64) (Post, error) {
	var post Post
	err := s.db.QueryRowContext(ctx, `
		SELECT id, project_id, owner_id, title, summary, body, status, dtags, ttags, created_at, updated_at
		FROM posts
		WHERE id=$1
	`, postID).Scan(&post.ID, &post.ProjectID, &post.OwnerID, &post.Title, &post.Summary,
		&post.Body, &post.Status, &post.Dtags, &post.Ttags, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return Post{}, err
	}
	return post, nil
}

// GetMembership returns the membership row for a user in a project.
// A missing row surfaces as sql.ErrNoRows; the caller decides whether
// that means anonymous or project-owner access.
func (s *PostgresStore) GetMembership(ctx context.Context, projectID, userID int64) (Membership, error) {
	var m Membership
	err := s.db.QueryRowContext(ctx, `
		SELECT project_id, user_id, config_role, created_at
		FROM memberships
		WHERE project_id=$1 AND user_id=$2
	`, projectID, userID).Scan(&m.ProjectID, &m.UserID, &m.ConfigRole, &m.CreatedAt)
	if err != nil {
		return Membership{}, err
	}
	return m, nil
}

// UpdatePostStatus moves a post's status with a compare-and-set on the
// previous value. Returns false when the post moved concurrently.
func (s *PostgresStore) UpdatePostStatus(ctx context.Context, postID int64, from, to uint32) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE posts SET status=$3, updated_at=NOW()
		WHERE id=$1 AND status=$2
	`, postID, from, to)
	if err != nil {
		return false, fmt.Errorf("update post status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update post status: %w", err)
	}
	return affected == 1, nil
}

var errUnknownTagFamily = errors.New("unknown tag family column")

// tagColumn whitelists the tag family columns on posts. Family names
// come from URLs and must never reach the SQL text unchecked.
func tagColumn(family string) (string, error) {
	switch family {
	case "dtags":
		return "dtags", nil
	case "ttags":
		return "ttags", nil
	}
	return "", errUnknownTagFamily
}

func (s *PostgresStore) GetTagValue(ctx context.Context, postID int64, family string) (uint32, error) {
	column, err := tagColumn(family)
	if err != nil {
		return 0, err
	}
	var value int64
	err = s.db.QueryRowContext(ctx, `SELECT `+column+` FROM posts WHERE id=$1`, postID).Scan(&value)
	if err != nil {
		return 0, err
	}
	return uint32(value), nil
}

// SetTagValue writes the full packed tag value in one statement.
func (s *PostgresStore) SetTagValue(ctx context.Context, postID int64, family string, value uint32) error {
	column, err := tagColumn(family)
	if err != nil {
		return err
	}
	result, err := s.db.ExecContext(ctx, `
		UPDATE posts SET `+column+`=$2, updated_at=NOW() WHERE id=$1
	`, postID, int64(value))
	if err != nil {
		return fmt.Errorf("set %s: %w", family, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set %s: %w", family, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// LoadConfigRules reads the packed permission-rule rows. Values are
// stored as BIGINT and narrowed here; the sysreg decoder validates
// the bit layout.
func (s *PostgresStore) LoadConfigRules(ctx context.Context) ([]SysregEntry, error) {
	return s.listSysreg(ctx, "config")
}

// ListSysregFamily reads every registry row of one tag family.
func (s *PostgresStore) ListSysregFamily(ctx context.Context, family string) ([]SysregEntry, error) {
	return s.listSysreg(ctx, family)
}

func (s *PostgresStore) listSysreg(ctx context.Context, family string) ([]SysregEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT value, name, description, tagfamily, taglogic, is_default
		FROM sysreg
		WHERE tagfamily=$1
		ORDER BY value
	`, family)
	if err != nil {
		return nil, fmt.Errorf("list sysreg %s: %w", family, err)
	}
	defer rows.Close()

	entries := make([]SysregEntry, 0)
	for rows.Next() {
		var entry SysregEntry
		var value int64
		if err := rows.Scan(&value, &entry.Name, &entry.Description, &entry.TagFamily, &entry.TagLogic, &entry.IsDefault); err != nil {
			return nil, fmt.Errorf("scan sysreg row: %w", err)
		}
		entry.Value = uint32(value)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sysreg rows: %w", err)
	}
	return entries, nil
}
