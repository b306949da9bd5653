package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/stockpilot/stockpilot-api/internal/domain"
	"github.com/stockpilot/stockpilot-api/internal/domain/entity"
	"github.com/stockpilot/stockpilot-api/internal/domain/repository"
)

var (
	_ repository.UserRepository        = (*UserRepo)(nil)
	_ repository.StoreConfigRepository = (*StoreConfigRepo)(nil)
	_ repository.SupplierRepository    = (*SupplierRepo)(nil)
)

// UserRepo usuarios en memoria.
type UserRepo struct {
	acc accessor
}

func (r *UserRepo) Create(_ context.Context, user *entity.User) error {
	return r.acc.write(func(st *state) error {
		for _, u := range st.users {
			if u.Username == user.Username {
				return domain.ErrDuplicate
			}
		}
		st.userSeq++
		user.ID = st.userSeq
		st.users[user.ID] = *user
		return nil
	})
}

func (r *UserRepo) GetByID(_ context.Context, id int64) (*entity.User, error) {
	var out *entity.User
	r.acc.read(func(st *state) {
		if u, ok := st.users[id]; ok {
			out = &u
		}
	})
	return out, nil
}

func (r *UserRepo) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	var out *entity.User
	r.acc.read(func(st *state) {
		for _, u := range st.users {
			if u.Username == username {
				u := u
				out = &u
				return
			}
		}
	})
	return out, nil
}

func (r *UserRepo) UpdatePassword(_ context.Context, id int64, hash string) error {
	return r.acc.write(func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return domain.ErrUserNotFound
		}
		u.PasswordHash = hash
		st.users[id] = u
		return nil
	})
}

func (r *UserRepo) List(_ context.Context) ([]*entity.User, error) {
	out := []*entity.User{}
	r.acc.read(func(st *state) {
		for _, u := range st.users {
			u := u
			out = append(out, &u)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *UserRepo) DeleteUnlessLastAdmin(_ context.Context, id int64) error {
	return r.acc.write(func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return domain.ErrUserNotFound
		}
		if u.Role == entity.RoleAdmin {
			admins := 0
			for _, other := range st.users {
				if other.Role == entity.RoleAdmin {
					admins++
				}
			}
			if admins <= 1 {
				return fmt.Errorf("%w: no se puede eliminar el último administrador", domain.ErrConflict)
			}
		}
		delete(st.users, id)
		return nil
	})
}

// StoreConfigRepo fila única de configuración.
type StoreConfigRepo struct {
	acc accessor
}

func (r *StoreConfigRepo) GetOrCreate(_ context.Context, defaults entity.StoreConfig) (*entity.StoreConfig, error) {
	var out entity.StoreConfig
	err := r.acc.write(func(st *state) error {
		if st.config == nil {
			cfg := defaults
			cfg.ID = entity.StoreConfigID
			st.config = &cfg
		}
		out = *st.config
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *StoreConfigRepo) Save(_ context.Context, cfg *entity.StoreConfig) error {
	return r.acc.write(func(st *state) error {
		c := *cfg
		c.ID = entity.StoreConfigID
		st.config = &c
		return nil
	})
}

// SupplierRepo proveedores en memoria.
type SupplierRepo struct {
	acc accessor
}

func (r *SupplierRepo) Create(_ context.Context, supplier *entity.Supplier) error {
	return r.acc.write(func(st *state) error {
		st.supplSeq++
		supplier.ID = st.supplSeq
		st.suppliers[supplier.ID] = *supplier
		return nil
	})
}

func (r *SupplierRepo) GetByID(_ context.Context, id int64) (*entity.Supplier, error) {
	var out *entity.Supplier
	r.acc.read(func(st *state) {
		if s, ok := st.suppliers[id]; ok {
			out = &s
		}
	})
	return out, nil
}

func (r *SupplierRepo) List(_ context.Context) ([]*entity.Supplier, error) {
	out := []*entity.Supplier{}
	r.acc.read(func(st *state) {
		for _, s := range st.suppliers {
			s := s
			out = append(out, &s)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
