// Package memory implementa los puertos de persistencia en memoria.
// Se usa en pruebas y con STORAGE_DRIVER=memory; mantiene las mismas garantías
// transaccionales que PostgreSQL (todo o nada, transacciones serializadas).
package memory

import (
	"context"
	"sync"

	"github.com/stockpilot/stockpilot-api/internal/application/inventory"
	"github.com/stockpilot/stockpilot-api/internal/domain/entity"
	"github.com/stockpilot/stockpilot-api/internal/domain/repository"
)

var _ inventory.TxRunner = (*Store)(nil)

// state es una foto completa de los datos. Las transacciones trabajan sobre una copia.
type state struct {
	products   map[int64]entity.Product
	movements  []entity.StockMovement
	users      map[int64]entity.User
	suppliers  map[int64]entity.Supplier
	config     *entity.StoreConfig
	productSeq int64
	movSeq     int64
	userSeq    int64
	supplSeq   int64
}

func newState() *state {
	return &state{
		products:  make(map[int64]entity.Product),
		users:     make(map[int64]entity.User),
		suppliers: make(map[int64]entity.Supplier),
	}
}

func (s *state) clone() *state {
	c := &state{
		products:   make(map[int64]entity.Product, len(s.products)),
		movements:  make([]entity.StockMovement, len(s.movements)),
		users:      make(map[int64]entity.User, len(s.users)),
		suppliers:  make(map[int64]entity.Supplier, len(s.suppliers)),
		productSeq: s.productSeq,
		movSeq:     s.movSeq,
		userSeq:    s.userSeq,
		supplSeq:   s.supplSeq,
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	copy(c.movements, s.movements)
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.suppliers {
		c.suppliers[k] = v
	}
	if s.config != nil {
		cfg := *s.config
		c.config = &cfg
	}
	return c
}

// accessor abstrae si un repositorio opera sobre el store compartido o sobre la copia de una tx.
type accessor interface {
	read(fn func(st *state))
	write(fn func(st *state) error) error
}

// Store contenedor en memoria. writeMu serializa escrituras y transacciones;
// mu protege el puntero al estado vigente para lecturas concurrentes.
type Store struct {
	writeMu sync.Mutex
	mu      sync.RWMutex
	st      *state
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{st: newState()}
}

type storeAccess struct{ s *Store }

func (a storeAccess) read(fn func(st *state)) {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()
	fn(a.s.st)
}

func (a storeAccess) write(fn func(st *state) error) error {
	a.s.writeMu.Lock()
	defer a.s.writeMu.Unlock()
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	return fn(a.s.st)
}

// txAccess opera sobre la copia privada de una transacción (un solo goroutine).
type txAccess struct{ st *state }

func (a txAccess) read(fn func(st *state)) { fn(a.st) }

func (a txAccess) write(fn func(st *state) error) error { return fn(a.st) }

// Run ejecuta fn sobre una copia del estado y la publica solo si fn termina sin error.
// Las transacciones se serializan, equivalente a bloquear todas las filas tocadas.
// fn no debe usar los repositorios no transaccionales del mismo Store para escribir.
func (s *Store) Run(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	productRepo repository.ProductRepository,
) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.RLock()
	work := s.st.clone()
	s.mu.RUnlock()

	acc := txAccess{st: work}
	if err := fn(&StockMovementRepo{acc: acc}, &ProductRepo{acc: acc}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.st = work
	s.mu.Unlock()
	return nil
}

// Products repositorio de productos fuera de transacción.
func (s *Store) Products() *ProductRepo { return &ProductRepo{acc: storeAccess{s: s}} }

// Movements repositorio del libro fuera de transacción.
func (s *Store) Movements() *StockMovementRepo { return &StockMovementRepo{acc: storeAccess{s: s}} }

// Users repositorio de usuarios.
func (s *Store) Users() *UserRepo { return &UserRepo{acc: storeAccess{s: s}} }

// StoreConfig repositorio de la configuración de la tienda.
func (s *Store) StoreConfig() *StoreConfigRepo { return &StoreConfigRepo{acc: storeAccess{s: s}} }

// Suppliers repositorio de proveedores.
func (s *Store) Suppliers() *SupplierRepo { return &SupplierRepo{acc: storeAccess{s: s}} }

// Analytics consultas de reportes.
func (s *Store) Analytics() *AnalyticsRepo { return &AnalyticsRepo{acc: storeAccess{s: s}} }
