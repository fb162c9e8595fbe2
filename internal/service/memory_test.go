package service

// In-memory store fakes backing the service tests.  They mirror the
// contracts of the SQL repositories, including the conditional
// semantics of DecrementStock and TransitionStatus, so the protocol
// tests exercise the same failure modes the real stores produce.

import (
    "context"
    "sync"
    "time"

    "github.com/lastbite/lastbite/internal/model"
    "github.com/lastbite/lastbite/internal/repository"
)

type memPackages struct {
    mu    sync.Mutex
    items map[uint64]model.Package

    refreshed []uint64 // RefreshRating calls, in order
}

func newMemPackages() *memPackages {
    return &memPackages{items: map[uint64]model.Package{}}
}

func (m *memPackages) put(p model.Package) {
    m.mu.Lock()
    defer m.mu.Unlock()
    m.items[p.ID] = p
}

func (m *memPackages) GetByID(_ context.Context, id uint64) (model.Package, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    p, ok := m.items[id]
    if !ok {
        return model.Package{}, repository.ErrNotFound
    }
    return p, nil
}

func (m *memPackages) DecrementStock(_ context.Context, id uint64, qty uint32) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    p, ok := m.items[id]
    if !ok {
        return repository.ErrNotFound
    }
    if p.Stock < qty {
        return repository.ErrStockConflict
    }
    p.Stock -= qty
    m.items[id] = p
    return nil
}

func (m *memPackages) IncrementStock(_ context.Context, id uint64, qty uint32) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    p, ok := m.items[id]
    if !ok {
        return repository.ErrNotFound
    }
    p.Stock += qty
    m.items[id] = p
    return nil
}

func (m *memPackages) RefreshRating(_ context.Context, id uint64) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    m.refreshed = append(m.refreshed, id)
    return nil
}

type memFoods struct {
    mu    sync.Mutex
    items map[uint64]model.Food

    failDecrement bool // force a stock conflict on the next decrement
}

func newMemFoods() *memFoods {
    return &memFoods{items: map[uint64]model.Food{}}
}

func (m *memFoods) put(f model.Food) {
    m.mu.Lock()
    defer m.mu.Unlock()
    m.items[f.ID] = f
}

func (m *memFoods) GetByID(_ context.Context, id uint64) (model.Food, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    f, ok := m.items[id]
    if !ok {
        return model.Food{}, repository.ErrNotFound
    }
    return f, nil
}

func (m *memFoods) DecrementStock(_ context.Context, id uint64, qty uint32) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    if m.failDecrement {
        return repository.ErrStockConflict
    }
    f, ok := m.items[id]
    if !ok {
        return repository.ErrNotFound
    }
    if f.Stock < qty {
        return repository.ErrStockConflict
    }
    f.Stock -= qty
    m.items[id] = f
    return nil
}

func (m *memFoods) IncrementStock(_ context.Context, id uint64, qty uint32) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    f, ok := m.items[id]
    if !ok {
        return repository.ErrNotFound
    }
    f.Stock += qty
    m.items[id] = f
    return nil
}

type holdKey struct {
    packageID  uint64
    customerID uint64
}

type memHolds struct {
    mu    sync.Mutex
    items map[holdKey]model.Reservation
}

func newMemHolds() *memHolds {
    return &memHolds{items: map[holdKey]model.Reservation{}}
}

func (m *memHolds) Upsert(_ context.Context, res model.Reservation) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    m.items[holdKey{res.PackageID, res.CustomerID}] = res
    return nil
}

func (m *memHolds) Delete(_ context.Context, packageID, customerID uint64) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    delete(m.items, holdKey{packageID, customerID})
    return nil
}

func (m *memHolds) DeleteForCustomer(_ context.Context, customerID uint64, packageIDs []uint64) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    for _, id := range packageIDs {
        delete(m.items, holdKey{id, customerID})
    }
    return nil
}

func (m *memHolds) ActiveQuantity(_ context.Context, packageID uint64, now time.Time) (uint32, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    var total uint32
    for k, r := range m.items {
        if k.packageID == packageID && r.Active(now) {
            total += r.Quantity
        }
    }
    return total, nil
}

func (m *memHolds) ActiveQuantityExcluding(_ context.Context, packageID, customerID uint64, now time.Time) (uint32, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    var total uint32
    for k, r := range m.items {
        if k.packageID == packageID && k.customerID != customerID && r.Active(now) {
            total += r.Quantity
        }
    }
    return total, nil
}

type memOrders struct {
    mu     sync.Mutex
    items  map[uint64]model.Order
    nextID uint64
}

func newMemOrders() *memOrders {
    return &memOrders{items: map[uint64]model.Order{}}
}

func (m *memOrders) Create(_ context.Context, o *model.Order) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    m.nextID++
    o.ID = m.nextID
    o.CreatedAt = time.Now().UTC()
    for i := range o.Items {
        o.Items[i].OrderID = o.ID
    }
    m.items[o.ID] = *o
    return nil
}

func (m *memOrders) GetByID(_ context.Context, id uint64) (model.Order, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    o, ok := m.items[id]
    if !ok {
        return model.Order{}, repository.ErrNotFound
    }
    return o, nil
}

func (m *memOrders) ListByCustomer(_ context.Context, customerID uint64) ([]model.Order, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    var out []model.Order
    for _, o := range m.items {
        if o.CustomerID == customerID {
            out = append(out, o)
        }
    }
    return out, nil
}

func (m *memOrders) ListByCompanyStatus(_ context.Context, companyID uint64, statuses []model.OrderStatus) ([]model.Order, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    want := map[model.OrderStatus]bool{}
    for _, s := range statuses {
        want[s] = true
    }
    var out []model.Order
    for _, o := range m.items {
        if o.CompanyID == companyID && want[o.Status] {
            out = append(out, o)
        }
    }
    return out, nil
}

func (m *memOrders) UpdateCode(_ context.Context, orderID uint64, hash, plain string, issuedAt time.Time) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    o, ok := m.items[orderID]
    if !ok {
        return repository.ErrNotFound
    }
    o.CodeHash = &hash
    o.CodePlain = &plain
    o.CodeIssuedAt = &issuedAt
    m.items[orderID] = o
    return nil
}

func (m *memOrders) TransitionStatus(_ context.Context, orderID uint64, from []model.OrderStatus, to model.OrderStatus, pickedAt *time.Time) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    o, ok := m.items[orderID]
    if !ok {
        return repository.ErrNotFound
    }
    allowed := false
    for _, f := range from {
        if o.Status == f {
            allowed = true
            break
        }
    }
    if !allowed {
        return repository.ErrConflict
    }
    o.Status = to
    if pickedAt != nil {
        o.PickedAt = pickedAt
    }
    m.items[orderID] = o
    return nil
}

// scrubPlain clears the plaintext cache of an order, simulating a
// stored code whose plaintext is no longer on hand.
func (m *memOrders) scrubPlain(orderID uint64) {
    m.mu.Lock()
    defer m.mu.Unlock()
    o := m.items[orderID]
    o.CodePlain = nil
    m.items[orderID] = o
}

type memRatings struct {
    mu      sync.Mutex
    items   map[uint64]model.Rating
    byOrder map[uint64]bool
    nextID  uint64
}

func newMemRatings() *memRatings {
    return &memRatings{items: map[uint64]model.Rating{}, byOrder: map[uint64]bool{}}
}

func (m *memRatings) Create(_ context.Context, rt *model.Rating) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    if m.byOrder[rt.OrderID] {
        return repository.ErrConflict
    }
    m.nextID++
    rt.ID = m.nextID
    rt.CreatedAt = time.Now().UTC()
    m.items[rt.ID] = *rt
    m.byOrder[rt.OrderID] = true
    return nil
}

func (m *memRatings) GetByID(_ context.Context, id uint64) (model.Rating, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    rt, ok := m.items[id]
    if !ok {
        return model.Rating{}, repository.ErrNotFound
    }
    return rt, nil
}

func (m *memRatings) SetReply(_ context.Context, id uint64, reply string) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    rt, ok := m.items[id]
    if !ok {
        return repository.ErrNotFound
    }
    if rt.Reply != nil {
        return repository.ErrConflict
    }
    rt.Reply = &reply
    m.items[id] = rt
    return nil
}

type memUsers struct {
    mu    sync.Mutex
    items map[uint64]model.User
}

func newMemUsers() *memUsers {
    return &memUsers{items: map[uint64]model.User{}}
}

func (m *memUsers) put(u model.User) {
    m.mu.Lock()
    defer m.mu.Unlock()
    m.items[u.ID] = u
}

func (m *memUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    u, ok := m.items[id]
    if !ok {
        return model.User{}, repository.ErrNotFound
    }
    return u, nil
}
