package repository

import (
    "context"
    "database/sql"
    "errors"
    "strings"
    "time"

    "github.com/lastbite/lastbite/internal/model"
)

// OrderRepo provides data access to the orders and order_items
// tables.  Orders are append-only apart from the pickup-code columns
// (rewritten by the rotation scheduler) and the status column
// (advanced by redemption, feedback and cancellation through the
// conditional TransitionStatus).  All timestamps are UTC.
type OrderRepo struct {
    db *sql.DB
}

// NewOrderRepo returns an OrderRepo bound to the given database.
func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

const orderColumns = `id, reference, customer_id, company_id, total_cents, status,
    code_hash, code_plain, code_issued_at, picked_at, created_at, updated_at`

func scanOrder(row interface{ Scan(...interface{}) error }) (model.Order, error) {
    var (
        o        model.Order
        status   string
        hash     sql.NullString
        plain    sql.NullString
        issuedAt sql.NullTime
        pickedAt sql.NullTime
    )
    err := row.Scan(&o.ID, &o.Reference, &o.CustomerID, &o.CompanyID, &o.TotalCents, &status,
        &hash, &plain, &issuedAt, &pickedAt, &o.CreatedAt, &o.UpdatedAt)
    if err != nil {
        return o, err
    }
    o.Status = model.OrderStatus(status)
    if hash.Valid {
        v := hash.String
        o.CodeHash = &v
    }
    if plain.Valid {
        v := plain.String
        o.CodePlain = &v
    }
    if issuedAt.Valid {
        t := issuedAt.Time
        o.CodeIssuedAt = &t
    }
    if pickedAt.Valid {
        t := pickedAt.Time
        o.PickedAt = &t
    }
    return o, nil
}

// Create inserts an order together with its line items inside one
// transaction and populates the generated IDs and timestamps on the
// provided struct.
func (r *OrderRepo) Create(ctx context.Context, o *model.Order) error {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()
    const ins = `INSERT INTO orders (reference, customer_id, company_id, total_cents, status,
        code_hash, code_plain, code_issued_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
    var issuedAt interface{}
    if o.CodeIssuedAt != nil {
        issuedAt = o.CodeIssuedAt.UTC()
    }
    res, err := tx.ExecContext(ctx, ins,
        o.Reference, o.CustomerID, o.CompanyID, o.TotalCents, string(o.Status),
        o.CodeHash, o.CodePlain, issuedAt)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    o.ID = uint64(id)
    if len(o.Items) > 0 {
        query := `INSERT INTO order_items (order_id, package_id, food_id, quantity, unit_price_cents) VALUES `
        args := make([]interface{}, 0, len(o.Items)*5)
        for i := range o.Items {
            if i > 0 {
                query += ","
            }
            query += "(?, ?, ?, ?, ?)"
            o.Items[i].OrderID = o.ID
            args = append(args, o.ID, o.Items[i].PackageID, o.Items[i].FoodID, o.Items[i].Quantity, o.Items[i].UnitPriceCents)
        }
        if _, err := tx.ExecContext(ctx, query, args...); err != nil {
            return err
        }
    }
    // Query back to populate DB-side timestamps.
    row := tx.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, o.ID)
    got, err := scanOrder(row)
    if err != nil {
        return err
    }
    got.Items = o.Items
    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    *o = got
    return nil
}

// GetByID fetches one order with its line items.
func (r *OrderRepo) GetByID(ctx context.Context, id uint64) (model.Order, error) {
    row := r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id)
    o, err := scanOrder(row)
    if errors.Is(err, sql.ErrNoRows) {
        return o, ErrNotFound
    }
    if err != nil {
        return o, err
    }
    items, err := r.loadItems(ctx, []uint64{o.ID})
    if err != nil {
        return o, err
    }
    o.Items = items[o.ID]
    return o, nil
}

// ListByCustomer returns every order placed by a customer, newest first.
func (r *OrderRepo) ListByCustomer(ctx context.Context, customerID uint64) ([]model.Order, error) {
    rows, err := r.db.QueryContext(ctx,
        `SELECT `+orderColumns+` FROM orders WHERE customer_id = ? ORDER BY created_at DESC`, customerID)
    if err != nil {
        return nil, err
    }
    return r.collect(ctx, rows)
}

// ListByCompanyStatus returns a company's orders restricted to the
// given statuses, oldest first so redemption scans the longest-waiting
// orders before fresher ones.
func (r *OrderRepo) ListByCompanyStatus(ctx context.Context, companyID uint64, statuses []model.OrderStatus) ([]model.Order, error) {
    if len(statuses) == 0 {
        return nil, nil
    }
    placeholders := strings.TrimSuffix(strings.Repeat("?,", len(statuses)), ",")
    args := make([]interface{}, 0, len(statuses)+1)
    args = append(args, companyID)
    for _, s := range statuses {
        args = append(args, string(s))
    }
    rows, err := r.db.QueryContext(ctx,
        `SELECT `+orderColumns+` FROM orders WHERE company_id = ? AND status IN (`+placeholders+`) ORDER BY created_at ASC`,
        args...)
    if err != nil {
        return nil, err
    }
    return r.collect(ctx, rows)
}

// ListAwaitingPickup returns every order still waiting for pickup
// regardless of seller.  The rotation scheduler walks this set each
// tick; the query is indexed on status.
func (r *OrderRepo) ListAwaitingPickup(ctx context.Context) ([]model.Order, error) {
    rows, err := r.db.QueryContext(ctx,
        `SELECT `+orderColumns+` FROM orders WHERE status IN (?, ?) ORDER BY id ASC`,
        string(model.OrderConfirmed), string(model.OrderReady))
    if err != nil {
        return nil, err
    }
    return r.collect(ctx, rows)
}

func (r *OrderRepo) collect(ctx context.Context, rows *sql.Rows) ([]model.Order, error) {
    defer rows.Close()
    var out []model.Order
    var ids []uint64
    for rows.Next() {
        o, err := scanOrder(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, o)
        ids = append(ids, o.ID)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    if len(out) == 0 {
        return out, nil
    }
    items, err := r.loadItems(ctx, ids)
    if err != nil {
        return nil, err
    }
    for i := range out {
        out[i].Items = items[out[i].ID]
    }
    return out, nil
}

func (r *OrderRepo) loadItems(ctx context.Context, orderIDs []uint64) (map[uint64][]model.OrderItem, error) {
    placeholders := strings.TrimSuffix(strings.Repeat("?,", len(orderIDs)), ",")
    args := make([]interface{}, 0, len(orderIDs))
    for _, id := range orderIDs {
        args = append(args, id)
    }
    rows, err := r.db.QueryContext(ctx,
        `SELECT id, order_id, package_id, food_id, quantity, unit_price_cents
         FROM order_items WHERE order_id IN (`+placeholders+`) ORDER BY id ASC`, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    items := make(map[uint64][]model.OrderItem, len(orderIDs))
    for rows.Next() {
        var (
            it  model.OrderItem
            pid sql.NullInt64
            fid sql.NullInt64
        )
        if err := rows.Scan(&it.ID, &it.OrderID, &pid, &fid, &it.Quantity, &it.UnitPriceCents); err != nil {
            return nil, err
        }
        if pid.Valid {
            v := uint64(pid.Int64)
            it.PackageID = &v
        }
        if fid.Valid {
            v := uint64(fid.Int64)
            it.FoodID = &v
        }
        items[it.OrderID] = append(items[it.OrderID], it)
    }
    return items, rows.Err()
}

// UpdateCode rewrites the pickup-code columns of an order.  The
// rotation scheduler calls this when a code is missing or has aged
// past the validity window; writing the new plaintext cache also
// discards the previous one.
func (r *OrderRepo) UpdateCode(ctx context.Context, orderID uint64, hash, plain string, issuedAt time.Time) error {
    res, err := r.db.ExecContext(ctx,
        `UPDATE orders SET code_hash = ?, code_plain = ?, code_issued_at = ? WHERE id = ?`,
        hash, plain, issuedAt.UTC(), orderID)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrNotFound
    }
    return nil
}

// TransitionStatus conditionally advances an order's status.  The
// write succeeds only when the current status is one of from, which
// is what makes redemption single-shot: a second attempt finds the
// order already PICKED and gets ErrConflict.  pickedAt, when non-nil,
// stamps orders.picked_at in the same write.
func (r *OrderRepo) TransitionStatus(ctx context.Context, orderID uint64, from []model.OrderStatus, to model.OrderStatus, pickedAt *time.Time) error {
    if len(from) == 0 {
        return ErrConflict
    }
    placeholders := strings.TrimSuffix(strings.Repeat("?,", len(from)), ",")
    args := make([]interface{}, 0, len(from)+3)
    args = append(args, string(to))
    if pickedAt != nil {
        args = append(args, pickedAt.UTC())
    } else {
        args = append(args, nil)
    }
    args = append(args, orderID)
    for _, s := range from {
        args = append(args, string(s))
    }
    res, err := r.db.ExecContext(ctx,
        `UPDATE orders SET status = ?, picked_at = COALESCE(?, picked_at)
         WHERE id = ? AND status IN (`+placeholders+`)`, args...)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 1 {
        return nil
    }
    var exists int
    if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM orders WHERE id = ?`, orderID).Scan(&exists); err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return ErrNotFound
        }
        return err
    }
    return ErrConflict
}
