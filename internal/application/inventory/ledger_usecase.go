package inventory

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/stockpilot/stockpilot-api/internal/application/dto"
	"github.com/stockpilot/stockpilot-api/internal/domain"
	"github.com/stockpilot/stockpilot-api/internal/domain/entity"
	"github.com/stockpilot/stockpilot-api/internal/domain/inventory"
	"github.com/stockpilot/stockpilot-api/internal/domain/repository"
	"github.com/stockpilot/stockpilot-api/pkg/logger"
)

// LedgerUseCase consulta y mantenimiento del libro de movimientos.
type LedgerUseCase struct {
	movRepo    repository.StockMovementRepository
	loc        *time.Location
	passphrase string
	hooks      Hooks
	log        *logger.Logger
}

// NewLedgerUseCase construye el caso de uso. passphrase vacía deshabilita la purga.
func NewLedgerUseCase(
	movRepo repository.StockMovementRepository,
	loc *time.Location,
	passphrase string,
	hooks Hooks,
	log *logger.Logger,
) *LedgerUseCase {
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = logger.Nop()
	}
	return &LedgerUseCase{movRepo: movRepo, loc: loc, passphrase: passphrase, hooks: hooks, log: log}
}

// List devuelve el historial, más reciente primero. from y to (YYYY-MM-DD) son opcionales;
// from es inclusivo desde las 00:00 y to incluye el día completo.
func (uc *LedgerUseCase) List(ctx context.Context, from, to string) ([]dto.LedgerEntryResponse, error) {
	var filter repository.MovementFilter
	if from != "" {
		start, err := inventory.ParseDay(from, uc.loc)
		if err != nil {
			return nil, err
		}
		filter.From = &start
	}
	if to != "" {
		day, err := inventory.ParseDay(to, uc.loc)
		if err != nil {
			return nil, err
		}
		_, end := inventory.DayWindow(day, uc.loc)
		filter.To = &end
	}
	if filter.From != nil && filter.To != nil && !filter.From.Before(*filter.To) {
		return nil, fmt.Errorf("%w: fecha_inicio posterior a fecha_fin", domain.ErrInvalidInput)
	}

	records, err := uc.movRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listar movimientos: %w", err)
	}
	out := make([]dto.LedgerEntryResponse, 0, len(records))
	for _, r := range records {
		out = append(out, dto.LedgerEntryResponse{
			ID:            r.ID,
			TransactionID: r.TransactionID,
			ProductID:     r.ProductID,
			ProductSKU:    r.ProductSKU,
			ProductName:   r.ProductName,
			Type:          r.Type,
			Quantity:      r.Quantity,
			Date:          r.Date.In(uc.loc),
			Actor:         r.Actor,
			Notes:         r.Notes,
		})
	}
	return out, nil
}

// PurgeInput solicitud de limpieza del historial.
type PurgeInput struct {
	Before     string // YYYY-MM-DD; se borran los movimientos con fecha < ese día 00:00
	Passphrase string
	Actor      string
	ActorRole  string
}

// PurgeBefore borra exactamente los movimientos con fecha anterior al inicio del día indicado.
// Solo admin, con la passphrase de mantenimiento; queda registrado en el log de auditoría.
func (uc *LedgerUseCase) PurgeBefore(ctx context.Context, in PurgeInput) (*dto.PurgeResponse, error) {
	if uc.passphrase == "" {
		return nil, fmt.Errorf("%w: purga deshabilitada (MAINTENANCE_PASSPHRASE no configurada)", domain.ErrForbidden)
	}
	if in.ActorRole != entity.RoleAdmin {
		return nil, domain.ErrForbidden
	}
	if subtle.ConstantTimeCompare([]byte(in.Passphrase), []byte(uc.passphrase)) != 1 {
		uc.log.Warn().
			Str("usuario", in.Actor).
			Str("fecha_limite", in.Before).
			Msg("auditoría: purga rechazada, passphrase incorrecta")
		return nil, fmt.Errorf("%w: clave de mantenimiento incorrecta", domain.ErrUnauthorized)
	}
	cutoff, err := inventory.ParseDay(in.Before, uc.loc)
	if err != nil {
		return nil, err
	}

	deleted, err := uc.movRepo.DeleteBefore(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("purgar movimientos: %w", err)
	}
	if err := uc.hooks.bump(ctx); err != nil {
		uc.log.Warn().Err(err).Msg("invalidar caché de reportes")
	}
	uc.log.Warn().
		Str("usuario", in.Actor).
		Time("antes_de", cutoff).
		Int64("eliminados", deleted).
		Msg("auditoría: historial de movimientos purgado")

	return &dto.PurgeResponse{
		Message: fmt.Sprintf("Se eliminaron %d movimientos anteriores a %s", deleted, in.Before),
		Before:  in.Before,
		Deleted: deleted,
	}, nil
}
