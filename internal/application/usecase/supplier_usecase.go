package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/stockpilot/stockpilot-api/internal/application/dto"
	"github.com/stockpilot/stockpilot-api/internal/domain"
	"github.com/stockpilot/stockpilot-api/internal/domain/entity"
	"github.com/stockpilot/stockpilot-api/internal/domain/repository"
)

// SupplierUseCase alta y listado de proveedores (informativos).
type SupplierUseCase struct {
	repo repository.SupplierRepository
}

// NewSupplierUseCase construye el caso de uso.
func NewSupplierUseCase(repo repository.SupplierRepository) *SupplierUseCase {
	return &SupplierUseCase{repo: repo}
}

// Create registra un proveedor. tiempo_entrega_dias por defecto 1.
func (uc *SupplierUseCase) Create(ctx context.Context, in dto.SupplierRequest) (*dto.SupplierResponse, error) {
	name := strings.TrimSpace(in.CompanyName)
	if name == "" {
		return nil, fmt.Errorf("%w: nombre_empresa requerido", domain.ErrInvalidInput)
	}
	if in.LeadTimeDays < 0 {
		return nil, fmt.Errorf("%w: tiempo_entrega_dias negativo", domain.ErrInvalidInput)
	}
	lead := in.LeadTimeDays
	if lead == 0 {
		lead = 1
	}
	s := &entity.Supplier{
		CompanyName:  name,
		ContactName:  in.ContactName,
		Phone:        in.Phone,
		Email:        in.Email,
		LeadTimeDays: lead,
	}
	if err := uc.repo.Create(ctx, s); err != nil {
		return nil, err
	}
	return toSupplierResponse(s), nil
}

// List devuelve todos los proveedores.
func (uc *SupplierUseCase) List(ctx context.Context) ([]dto.SupplierResponse, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SupplierResponse, 0, len(list))
	for _, s := range list {
		out = append(out, *toSupplierResponse(s))
	}
	return out, nil
}

func toSupplierResponse(s *entity.Supplier) *dto.SupplierResponse {
	return &dto.SupplierResponse{
		ID:           s.ID,
		CompanyName:  s.CompanyName,
		ContactName:  s.ContactName,
		Phone:        s.Phone,
		Email:        s.Email,
		LeadTimeDays: s.LeadTimeDays,
	}
}
