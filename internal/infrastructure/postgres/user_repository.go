package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"github.com/stockpilot/stockpilot-api/internal/domain"
	"github.com/stockpilot/stockpilot-api/internal/domain/entity"
	"github.com/stockpilot/stockpilot-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo implementación del puerto UserRepository sobre PostgreSQL.
type UserRepo struct {
	q Querier
}

// NewUserRepository construye el adaptador de persistencia para usuarios.
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

const userColumns = `id, username, hashed_password, rol, created_at`

func scanUser(row pgx.Row) (*entity.User, error) {
	var u entity.User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// Create persiste un nuevo usuario. Username duplicado -> ErrDuplicate.
func (r *UserRepo) Create(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO usuarios (username, hashed_password, rol, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	err := r.q.QueryRow(ctx, query, user.Username, user.PasswordHash, user.Role, user.CreatedAt).Scan(&user.ID)
	if err != nil {
		return mapError("insert user", err)
	}
	return nil
}

// GetByID obtiene un usuario por ID.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	u, err := scanUser(r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM usuarios WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// GetByUsername obtiene un usuario por username (para login).
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	u, err := scanUser(r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM usuarios WHERE username = $1`, username))
	if err != nil {
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return u, nil
}

// UpdatePassword reemplaza el hash.
func (r *UserRepo) UpdatePassword(ctx context.Context, id int64, hash string) error {
	tag, err := r.q.Exec(ctx, `UPDATE usuarios SET hashed_password = $2 WHERE id = $1`, id, hash)
	if err != nil {
		return mapError("update password", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

type userRow struct {
	ID           int64     `db:"id"`
	Username     string    `db:"username"`
	PasswordHash string    `db:"hashed_password"`
	Role         string    `db:"rol"`
	CreatedAt    time.Time `db:"created_at"`
}

// List todos los usuarios por ID.
func (r *UserRepo) List(ctx context.Context) ([]*entity.User, error) {
	var rows []userRow
	if err := pgxscan.Select(ctx, r.q, &rows, `SELECT `+userColumns+` FROM usuarios ORDER BY id`); err != nil {
		return nil, mapError("list users", err)
	}
	out := make([]*entity.User, 0, len(rows))
	for _, row := range rows {
		out = append(out, &entity.User{
			ID:           row.ID,
			Username:     row.Username,
			PasswordHash: row.PasswordHash,
			Role:         row.Role,
			CreatedAt:    row.CreatedAt,
		})
	}
	return out, nil
}

// DeleteUnlessLastAdmin bloquea las filas admin antes de contar: dos borrados cruzados
// se serializan y el segundo ve un solo admin.
func (r *UserRepo) DeleteUnlessLastAdmin(ctx context.Context, id int64) error {
	const query = `
		WITH admins AS (
			SELECT id FROM usuarios WHERE rol = $2 ORDER BY id FOR UPDATE
		)
		DELETE FROM usuarios
		WHERE id = $1 AND (rol <> $2 OR (SELECT COUNT(*) FROM admins) > 1)`
	tag, err := r.q.Exec(ctx, query, id, entity.RoleAdmin)
	if err != nil {
		return mapError("delete user", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	var exists bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM usuarios WHERE id = $1)`, id).Scan(&exists); err != nil {
		return mapError("delete user", err)
	}
	if !exists {
		return domain.ErrUserNotFound
	}
	return fmt.Errorf("%w: no se puede eliminar el último administrador", domain.ErrConflict)
}
