package dto

import "time"

// RegisterRequest alta de usuario (solo admin).
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"rol" validate:"omitempty,oneof=admin empleado"`
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"rol"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginRequest credenciales. Acepta JSON o form (username/password como OAuth2 password flow).
type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// LoginResponse salida con token JWT.
type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int          `json:"expires_in"` // segundos
	User        UserResponse `json:"user"`
}

// StoreConfigRequest PUT /api/configuracion.
type StoreConfigRequest struct {
	StoreName     string `json:"nombre_tienda" validate:"required,max=200"`
	Address       string `json:"direccion" validate:"max=300"`
	Phone         string `json:"telefono" validate:"max=50"`
	TicketMessage string `json:"mensaje_ticket" validate:"max=500"`
}

// StoreConfigResponse configuración de la tienda.
type StoreConfigResponse struct {
	StoreName     string `json:"nombre_tienda"`
	Address       string `json:"direccion"`
	Phone         string `json:"telefono"`
	TicketMessage string `json:"mensaje_ticket"`
}
