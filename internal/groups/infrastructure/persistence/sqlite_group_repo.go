package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/calcompare/internal/groups/domain"
	sharedApplication "github.com/felixgeelhaar/calcompare/internal/shared/application"
	sharedPersistence "github.com/felixgeelhaar/calcompare/internal/shared/infrastructure/persistence"
	"github.com/google/uuid"
)

// SQLiteGroupRepository implements domain.Repository using SQLite.
type SQLiteGroupRepository struct {
	db *sql.DB
}

var _ domain.Repository = (*SQLiteGroupRepository)(nil)

// NewSQLiteGroupRepository creates a new SQLite group repository.
func NewSQLiteGroupRepository(db *sql.DB) *SQLiteGroupRepository {
	return &SQLiteGroupRepository{db: db}
}

// Save upserts the group and its members and replaces its memberships.
func (r *SQLiteGroupRepository) Save(ctx context.Context, g *domain.Group) error {
	return sharedApplication.WithUnitOfWork(ctx, sharedPersistence.NewSQLiteUnitOfWork(r.db), func(txCtx context.Context) error {
		return r.save(txCtx, g)
	})
}

func (r *SQLiteGroupRepository) save(ctx context.Context, g *domain.Group) error {
	q := sharedPersistence.SQLiteQuerier(ctx, r.db)

	_, err := q.ExecContext(ctx, `
		INSERT INTO groups (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, updated_at = excluded.updated_at`,
		g.ID().String(), g.Name(), formatTime(g.CreatedAt()), formatTime(g.UpdatedAt()))
	if err != nil {
		return fmt.Errorf("failed to save group: %w", err)
	}

	if _, err := q.ExecContext(ctx, `DELETE FROM group_memberships WHERE group_id = ?`, g.ID().String()); err != nil {
		return fmt.Errorf("failed to clear memberships: %w", err)
	}

	for i, m := range g.Members() {
		_, err := q.ExecContext(ctx, `
			INSERT INTO members (id, name, email) VALUES (?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET name = excluded.name, email = excluded.email`,
			m.ID().String(), m.Name(), m.Email())
		if err != nil {
			return fmt.Errorf("failed to save member %s: %w", m.ID(), err)
		}
		_, err = q.ExecContext(ctx,
			`INSERT INTO group_memberships (group_id, member_id, position) VALUES (?, ?, ?)`,
			g.ID().String(), m.ID().String(), i)
		if err != nil {
			return fmt.Errorf("failed to save membership %s: %w", m.ID(), err)
		}
	}
	return nil
}

func (r *SQLiteGroupRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Group, error) {
	q := sharedPersistence.SQLiteQuerier(ctx, r.db)

	var name, createdAt, updatedAt string
	err := q.QueryRowContext(ctx, `SELECT name, created_at, updated_at FROM groups WHERE id = ?`, id.String()).
		Scan(&name, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrGroupNotFound, id)
		}
		return nil, err
	}

	members, err := r.members(ctx, q, id)
	if err != nil {
		return nil, err
	}
	return domain.RehydrateGroup(id, name, members, parseTime(createdAt), parseTime(updatedAt)), nil
}

func (r *SQLiteGroupRepository) members(ctx context.Context, q sharedPersistence.SQLQuerier, groupID uuid.UUID) ([]domain.Member, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT m.id, m.name, m.email
		FROM group_memberships gm
		JOIN members m ON m.id = gm.member_id
		WHERE gm.group_id = ?
		ORDER BY gm.position`, groupID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to load members: %w", err)
	}
	defer rows.Close()

	var members []domain.Member
	for rows.Next() {
		var id, name, email string
		if err := rows.Scan(&id, &name, &email); err != nil {
			return nil, err
		}
		memberID, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("invalid member id %q: %w", id, err)
		}
		members = append(members, domain.RehydrateMember(memberID, name, email))
	}
	return members, rows.Err()
}

func (r *SQLiteGroupRepository) Delete(ctx context.Context, id uuid.UUID) error {
	q := sharedPersistence.SQLiteQuerier(ctx, r.db)

	if _, err := q.ExecContext(ctx, `DELETE FROM group_memberships WHERE group_id = ?`, id.String()); err != nil {
		return fmt.Errorf("failed to delete memberships: %w", err)
	}
	result, err := q.ExecContext(ctx, `DELETE FROM groups WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrGroupNotFound, id)
	}
	return nil
}

// List returns groups ordered by name.
func (r *SQLiteGroupRepository) List(ctx context.Context) ([]*domain.Group, error) {
	rows, err := sharedPersistence.SQLiteQuerier(ctx, r.db).QueryContext(ctx, `SELECT id FROM groups ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	var ids []uuid.UUID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		groupID, err := uuid.Parse(id)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("invalid group id %q: %w", id, err)
		}
		ids = append(ids, groupID)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	groups := make([]*domain.Group, 0, len(ids))
	for _, id := range ids {
		g, err := r.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, nil
}

func (r *SQLiteGroupRepository) FindMember(ctx context.Context, id uuid.UUID) (*domain.Member, error) {
	var name, email string
	err := sharedPersistence.SQLiteQuerier(ctx, r.db).QueryRowContext(ctx, `SELECT name, email FROM members WHERE id = ?`, id.String()).
		Scan(&name, &email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrMemberNotFound, id)
		}
		return nil, err
	}
	m := domain.RehydrateMember(id, name, email)
	return &m, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
