package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockpilot/stockpilot-api/internal/application/auth"
	"github.com/stockpilot/stockpilot-api/internal/application/dto"
	"github.com/stockpilot/stockpilot-api/internal/domain"
	"github.com/stockpilot/stockpilot-api/internal/domain/entity"
	"github.com/stockpilot/stockpilot-api/internal/infrastructure/memory"
	"github.com/stockpilot/stockpilot-api/pkg/jwt"
)

const secret = "secreto-de-prueba"

func newAuth(t *testing.T) (*auth.AuthUseCase, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	clock := domain.FixedClock{T: time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)}
	uc := auth.NewAuthUseCase(store.Users(), clock, auth.JWTConfig{Secret: secret, ExpMinutes: 30, Issuer: "stockpilot"})
	return uc, store
}

func TestRegisterUser_RolPorDefectoYDuplicado(t *testing.T) {
	uc, store := newAuth(t)
	ctx := context.Background()

	u, err := uc.RegisterUser(ctx, dto.RegisterRequest{Username: "  cajero  ", Password: "password-1"})
	require.NoError(t, err)
	assert.Equal(t, "cajero", u.Username)
	assert.Equal(t, entity.RoleEmpleado, u.Role)

	stored, err := store.Users().GetByUsername(ctx, "cajero")
	require.NoError(t, err)
	assert.NotEqual(t, "password-1", stored.PasswordHash, "se guarda el hash, no el texto")

	_, err = uc.RegisterUser(ctx, dto.RegisterRequest{Username: "cajero", Password: "otra-password"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = uc.RegisterUser(ctx, dto.RegisterRequest{Username: "x", Password: "password-1", Role: "root"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLogin_TokenConIdentidad(t *testing.T) {
	uc, _ := newAuth(t)
	ctx := context.Background()
	_, err := uc.RegisterUser(ctx, dto.RegisterRequest{Username: "ana", Password: "password-1", Role: entity.RoleAdmin})
	require.NoError(t, err)

	out, err := uc.Login(ctx, dto.LoginRequest{Username: "ana", Password: "password-1"})
	require.NoError(t, err)
	assert.Equal(t, "bearer", out.TokenType)
	assert.Equal(t, 30*60, out.ExpiresIn)

	id, err := jwt.Parse(secret, out.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "ana", id.Username)
	assert.Equal(t, entity.RoleAdmin, id.Role)
	assert.Equal(t, out.User.ID, id.UserID)
}

func TestLogin_MismoErrorParaUsuarioYPassword(t *testing.T) {
	uc, _ := newAuth(t)
	ctx := context.Background()
	_, err := uc.RegisterUser(ctx, dto.RegisterRequest{Username: "ana", Password: "password-1"})
	require.NoError(t, err)

	_, errPass := uc.Login(ctx, dto.LoginRequest{Username: "ana", Password: "mala"})
	_, errUser := uc.Login(ctx, dto.LoginRequest{Username: "nadie", Password: "password-1"})
	assert.ErrorIs(t, errPass, domain.ErrUnauthorized)
	assert.ErrorIs(t, errUser, domain.ErrUnauthorized)
	assert.Equal(t, errPass.Error(), errUser.Error(), "no se revela si el usuario existe")
}

func TestEnsureAdmin_Idempotente(t *testing.T) {
	uc, store := newAuth(t)
	ctx := context.Background()

	created, err := uc.EnsureAdmin(ctx, "admin", "primera-clave")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = uc.EnsureAdmin(ctx, "admin", "segunda-clave")
	require.NoError(t, err)
	assert.False(t, created, "la segunda vez solo cambia la contraseña")

	users, err := store.Users().List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)

	_, err = uc.Login(ctx, dto.LoginRequest{Username: "admin", Password: "segunda-clave"})
	assert.NoError(t, err)
	_, err = uc.Login(ctx, dto.LoginRequest{Username: "admin", Password: "primera-clave"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
