package repository

import (
	"context"

	"github.com/stockpilot/stockpilot-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	UpdatePassword(ctx context.Context, id int64, hash string) error
	List(ctx context.Context) ([]*entity.User, error)
	// DeleteUnlessLastAdmin elimina el usuario salvo que sea el único admin. El conteo y el
	// borrado son atómicos. ErrUserNotFound si no existe; ErrConflict si es el último admin.
	DeleteUnlessLastAdmin(ctx context.Context, id int64) error
}
