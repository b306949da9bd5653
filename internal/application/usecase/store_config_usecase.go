package usecase

import (
	"context"
	"strings"

	"github.com/stockpilot/stockpilot-api/internal/application/dto"
	"github.com/stockpilot/stockpilot-api/internal/domain/entity"
	"github.com/stockpilot/stockpilot-api/internal/domain/repository"
)

// StoreConfigUseCase lectura y actualización de la configuración de la tienda.
type StoreConfigUseCase struct {
	repo repository.StoreConfigRepository
}

// NewStoreConfigUseCase construye el caso de uso.
func NewStoreConfigUseCase(repo repository.StoreConfigRepository) *StoreConfigUseCase {
	return &StoreConfigUseCase{repo: repo}
}

// Get devuelve la configuración, creándola con valores por defecto la primera vez.
func (uc *StoreConfigUseCase) Get(ctx context.Context) (*entity.StoreConfig, error) {
	return uc.repo.GetOrCreate(ctx, entity.DefaultStoreConfig())
}

// GetResponse igual que Get pero como DTO.
func (uc *StoreConfigUseCase) GetResponse(ctx context.Context) (*dto.StoreConfigResponse, error) {
	cfg, err := uc.Get(ctx)
	if err != nil {
		return nil, err
	}
	return toStoreConfigResponse(cfg), nil
}

// Update sobrescribe los cuatro campos.
func (uc *StoreConfigUseCase) Update(ctx context.Context, in dto.StoreConfigRequest) (*dto.StoreConfigResponse, error) {
	cfg := &entity.StoreConfig{
		ID:            entity.StoreConfigID,
		StoreName:     strings.TrimSpace(in.StoreName),
		Address:       in.Address,
		Phone:         in.Phone,
		TicketMessage: in.TicketMessage,
	}
	if err := uc.repo.Save(ctx, cfg); err != nil {
		return nil, err
	}
	return toStoreConfigResponse(cfg), nil
}

func toStoreConfigResponse(c *entity.StoreConfig) *dto.StoreConfigResponse {
	return &dto.StoreConfigResponse{
		StoreName:     c.StoreName,
		Address:       c.Address,
		Phone:         c.Phone,
		TicketMessage: c.TicketMessage,
	}
}
