package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/calcompare/internal/groups/domain"
	sharedApplication "github.com/felixgeelhaar/calcompare/internal/shared/application"
	"github.com/felixgeelhaar/calcompare/internal/shared/infrastructure/database"
	sharedPersistence "github.com/felixgeelhaar/calcompare/internal/shared/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresGroupRepository implements domain.Repository using PostgreSQL.
type PostgresGroupRepository struct {
	pool *pgxpool.Pool
}

var _ domain.Repository = (*PostgresGroupRepository)(nil)

// NewPostgresGroupRepository creates a new PostgreSQL group repository.
func NewPostgresGroupRepository(pool *pgxpool.Pool) *PostgresGroupRepository {
	return &PostgresGroupRepository{pool: pool}
}

// Save upserts the group and its members and replaces its memberships.
func (r *PostgresGroupRepository) Save(ctx context.Context, g *domain.Group) error {
	return sharedApplication.WithUnitOfWork(ctx, sharedPersistence.NewPostgresUnitOfWork(r.pool), func(txCtx context.Context) error {
		return r.save(txCtx, g)
	})
}

func (r *PostgresGroupRepository) save(ctx context.Context, g *domain.Group) error {
	q := sharedPersistence.PostgresQuerier(ctx, r.pool)

	_, err := q.Exec(ctx, `
		INSERT INTO groups (id, name, created_at, updated_at) VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, updated_at = EXCLUDED.updated_at`,
		g.ID(), g.Name(), g.CreatedAt(), g.UpdatedAt())
	if err != nil {
		return fmt.Errorf("failed to save group: %w", err)
	}

	if _, err := q.Exec(ctx, `DELETE FROM group_memberships WHERE group_id = $1`, g.ID()); err != nil {
		return fmt.Errorf("failed to clear memberships: %w", err)
	}

	for i, m := range g.Members() {
		_, err := q.Exec(ctx, `
			INSERT INTO members (id, name, email) VALUES ($1, $2, $3)
			ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, email = EXCLUDED.email`,
			m.ID(), m.Name(), m.Email())
		if err != nil {
			return fmt.Errorf("failed to save member %s: %w", m.ID(), err)
		}
		_, err = q.Exec(ctx,
			`INSERT INTO group_memberships (group_id, member_id, position) VALUES ($1, $2, $3)`,
			g.ID(), m.ID(), i)
		if err != nil {
			return fmt.Errorf("failed to save membership %s: %w", m.ID(), err)
		}
	}
	return nil
}

func (r *PostgresGroupRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Group, error) {
	q := sharedPersistence.PostgresQuerier(ctx, r.pool)

	var name string
	var createdAt, updatedAt time.Time
	err := q.QueryRow(ctx, `SELECT name, created_at, updated_at FROM groups WHERE id = $1`, id).
		Scan(&name, &createdAt, &updatedAt)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrGroupNotFound, id)
		}
		return nil, err
	}

	rows, err := q.Query(ctx, `
		SELECT m.id, m.name, m.email
		FROM group_memberships gm
		JOIN members m ON m.id = gm.member_id
		WHERE gm.group_id = $1
		ORDER BY gm.position`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load members: %w", err)
	}
	defer rows.Close()

	var members []domain.Member
	for rows.Next() {
		var memberID uuid.UUID
		var memberName, email string
		if err := rows.Scan(&memberID, &memberName, &email); err != nil {
			return nil, err
		}
		members = append(members, domain.RehydrateMember(memberID, memberName, email))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return domain.RehydrateGroup(id, name, members, createdAt.UTC(), updatedAt.UTC()), nil
}

func (r *PostgresGroupRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := sharedPersistence.PostgresQuerier(ctx, r.pool).Exec(ctx, `DELETE FROM groups WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrGroupNotFound, id)
	}
	return nil
}

// List returns groups ordered by name.
func (r *PostgresGroupRepository) List(ctx context.Context) ([]*domain.Group, error) {
	rows, err := sharedPersistence.PostgresQuerier(ctx, r.pool).Query(ctx, `SELECT id FROM groups ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

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

func (r *PostgresGroupRepository) FindMember(ctx context.Context, id uuid.UUID) (*domain.Member, error) {
	var name, email string
	err := sharedPersistence.PostgresQuerier(ctx, r.pool).
		QueryRow(ctx, `SELECT name, email FROM members WHERE id = $1`, id).
		Scan(&name, &email)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrMemberNotFound, id)
		}
		return nil, err
	}
	m := domain.RehydrateMember(id, name, email)
	return &m, nil
}
