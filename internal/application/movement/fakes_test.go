package movement_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nowstock/nowstock-api/internal/domain/entity"
	"github.com/nowstock/nowstock-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria con semántica transaccional real: el TxRunner toma snapshot
// del estado confirmado, ejecuta el callback y restaura el snapshot si falla.
// El mutex del store serializa las transacciones, que es exactamente la
// garantía que da el row-lock de la implementación real.
// ──────────────────────────────────────────────────────────────────────────────

var errDBDown = errors.New("conexión perdida")

type memStore struct {
	mu          sync.Mutex
	products    map[string]*entity.Product // por id
	tags        map[string]string          // tenant|tag -> product id
	users       map[string]string          // id -> nombre
	levels      map[string]int64           // tenant|product -> cantidad
	levelsTime  map[string]time.Time
	ledger      []entity.Movement
	nextID      int64
	failAppend  bool // inyecta fallo en el insert del ledger
	failApply   bool // inyecta fallo en el delta de la proyección
}

func newMemStore() *memStore {
	return &memStore{
		products:   make(map[string]*entity.Product),
		tags:       make(map[string]string),
		users:      make(map[string]string),
		levels:     make(map[string]int64),
		levelsTime: make(map[string]time.Time),
	}
}

func levelKey(tenantID, productID string) string { return tenantID + "|" + productID }

func (s *memStore) addProduct(tenantID, name, tag string, minimum int64) *entity.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &entity.Product{
		ID:              uuid.New().String(),
		TenantID:        tenantID,
		Name:            name,
		RFIDTag:         tag,
		MinimumQuantity: minimum,
		UnitMeasure:     "unidade",
		CreatedAt:       time.Now(),
	}
	s.products[p.ID] = p
	if tag != "" {
		s.tags[levelKey(tenantID, tag)] = p.ID
	}
	return p
}

func (s *memStore) addUser(name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New().String()
	s.users[id] = name
	return id
}

func (s *memStore) quantity(tenantID, productID string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.levels[levelKey(tenantID, productID)]
}

func (s *memStore) ledgerLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ledger)
}

// deltaSum reconstruye la proyección desde el ledger (replay).
func (s *memStore) deltaSum(tenantID, productID string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var sum int64
	for _, m := range s.ledger {
		if m.TenantID == tenantID && m.ProductID == productID {
			sum += m.Delta
		}
	}
	return sum
}

// Run implementa movement.TxRunner con snapshot/rollback.
func (s *memStore) Run(ctx context.Context, fn func(
	movRepo repository.MovementRepository,
	levelRepo repository.StockLevelRepository,
	productRepo repository.ProductRepository,
) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}

	snapLevels := make(map[string]int64, len(s.levels))
	for k, v := range s.levels {
		snapLevels[k] = v
	}
	snapLedger := len(s.ledger)
	snapNext := s.nextID

	err := fn(&memMovements{s: s, inTx: true}, &memLevels{s: s, inTx: true}, &memProducts{s: s, inTx: true})
	if err != nil {
		s.levels = snapLevels
		s.ledger = s.ledger[:snapLedger]
		s.nextID = snapNext
		return err
	}
	return nil
}

// ── Productos ────────────────────────────────────────────────────────────────

type memProducts struct {
	s    *memStore
	inTx bool
}

func (r *memProducts) lock() func() {
	if r.inTx {
		return func() {}
	}
	r.s.mu.Lock()
	return r.s.mu.Unlock
}

func (r *memProducts) ResolveTag(_ context.Context, tenantID, rfidTag string) (*entity.Product, error) {
	defer r.lock()()
	id, ok := r.s.tags[levelKey(tenantID, rfidTag)]
	if !ok {
		return nil, nil
	}
	return r.s.products[id], nil
}

func (r *memProducts) GetByID(_ context.Context, tenantID, productID string) (*entity.Product, error) {
	defer r.lock()()
	p, ok := r.s.products[productID]
	if !ok || p.TenantID != tenantID {
		return nil, nil
	}
	return p, nil
}

// ── Proyección de stock ──────────────────────────────────────────────────────

type memLevels struct {
	s    *memStore
	inTx bool
}

func (r *memLevels) lock() func() {
	if r.inTx {
		return func() {}
	}
	r.s.mu.Lock()
	return r.s.mu.Unlock
}

func (r *memLevels) Get(_ context.Context, tenantID, productID string) (*entity.StockLevel, error) {
	defer r.lock()()
	return &entity.StockLevel{
		TenantID:  tenantID,
		ProductID: productID,
		Quantity:  r.s.levels[levelKey(tenantID, productID)],
	}, nil
}

func (r *memLevels) GetForUpdate(ctx context.Context, tenantID, productID string) (*entity.StockLevel, error) {
	return r.Get(ctx, tenantID, productID)
}

func (r *memLevels) ApplyDelta(_ context.Context, tenantID, productID string, delta int64) (int64, error) {
	defer r.lock()()
	if r.s.failApply {
		return 0, errDBDown
	}
	key := levelKey(tenantID, productID)
	r.s.levels[key] += delta
	r.s.levelsTime[key] = time.Now()
	return r.s.levels[key], nil
}

func (r *memLevels) ListByTenant(_ context.Context, tenantID string) ([]*entity.StockItem, error) {
	defer r.lock()()
	var list []*entity.StockItem
	for _, p := range r.s.products {
		if p.TenantID != tenantID {
			continue
		}
		qty := r.s.levels[levelKey(tenantID, p.ID)]
		list = append(list, &entity.StockItem{
			ProductID:       p.ID,
			ProductName:     p.Name,
			RFIDTag:         p.RFIDTag,
			Quantity:        qty,
			MinimumQuantity: p.MinimumQuantity,
			BelowMinimum:    qty < p.MinimumQuantity,
			UpdatedAt:       r.s.levelsTime[levelKey(tenantID, p.ID)],
		})
	}
	return list, nil
}

// ── Ledger ───────────────────────────────────────────────────────────────────

type memMovements struct {
	s    *memStore
	inTx bool
}

func (r *memMovements) lock() func() {
	if r.inTx {
		return func() {}
	}
	r.s.mu.Lock()
	return r.s.mu.Unlock
}

func (r *memMovements) Append(_ context.Context, m *entity.Movement) (int64, error) {
	defer r.lock()()
	if r.s.failAppend {
		return 0, errDBDown
	}
	r.s.nextID++
	m.ID = r.s.nextID
	r.s.ledger = append(r.s.ledger, *m)
	return m.ID, nil
}

func (r *memMovements) ListHistory(_ context.Context, tenantID string, f entity.HistoryFilter) ([]*entity.HistoryEntry, error) {
	defer r.lock()()
	var list []*entity.HistoryEntry
	skipped := 0
	// más reciente primero: el ledger está en orden de inserción
	for i := len(r.s.ledger) - 1; i >= 0; i-- {
		m := r.s.ledger[i]
		if m.TenantID != tenantID {
			continue
		}
		if f.Kind != "" && m.Kind != f.Kind {
			continue
		}
		if f.ProductID != "" && m.ProductID != f.ProductID {
			continue
		}
		if f.ActorID != "" && m.ActorID != f.ActorID {
			continue
		}
		if skipped < f.Offset {
			skipped++
			continue
		}
		entry := &entity.HistoryEntry{
			Movement:        m,
			ActorName:       r.s.users[m.ActorID],
			CurrentQuantity: r.s.levels[levelKey(tenantID, m.ProductID)],
		}
		if p, ok := r.s.products[m.ProductID]; ok {
			entry.ProductName = p.Name
		}
		list = append(list, entry)
		if f.Limit > 0 && len(list) >= f.Limit {
			break
		}
	}
	return list, nil
}
