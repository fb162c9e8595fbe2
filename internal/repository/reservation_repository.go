package repository

import (
    "context"
    "database/sql"
    "strings"
    "time"

    "github.com/lastbite/lastbite/internal/model"
)

// ReservationRepo provides data access to the reservations table.
// The table carries a unique (package_id, customer_id) index, so a
// customer holds at most one row per package and Upsert overwrites
// quantity and expiry in place.  Expired rows are invisible to every
// aggregate because the queries filter on expires_at; PurgeExpired
// exists for storage hygiene only, correctness never depends on it.
// All timestamps are UTC.
type ReservationRepo struct {
    db *sql.DB
}

// NewReservationRepo returns a ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// Upsert creates or replaces the hold for (package, customer).
func (r *ReservationRepo) Upsert(ctx context.Context, res model.Reservation) error {
    const q = `INSERT INTO reservations (package_id, customer_id, quantity, expires_at)
        VALUES (?, ?, ?, ?)
        ON DUPLICATE KEY UPDATE quantity = VALUES(quantity), expires_at = VALUES(expires_at)`
    _, err := r.db.ExecContext(ctx, q, res.PackageID, res.CustomerID, res.Quantity, res.ExpiresAt.UTC())
    return err
}

// Delete removes the hold for (package, customer) if one exists.
func (r *ReservationRepo) Delete(ctx context.Context, packageID, customerID uint64) error {
    _, err := r.db.ExecContext(ctx,
        `DELETE FROM reservations WHERE package_id = ? AND customer_id = ?`, packageID, customerID)
    return err
}

// DeleteForCustomer removes the customer's holds on the given
// packages.  Called by the commit protocol once an order has
// consumed them.
func (r *ReservationRepo) DeleteForCustomer(ctx context.Context, customerID uint64, packageIDs []uint64) error {
    if len(packageIDs) == 0 {
        return nil
    }
    placeholders := strings.TrimSuffix(strings.Repeat("?,", len(packageIDs)), ",")
    args := make([]interface{}, 0, len(packageIDs)+1)
    args = append(args, customerID)
    for _, id := range packageIDs {
        args = append(args, id)
    }
    _, err := r.db.ExecContext(ctx,
        `DELETE FROM reservations WHERE customer_id = ? AND package_id IN (`+placeholders+`)`, args...)
    return err
}

// ActiveQuantity sums every non-expired hold on a package across all
// customers.
func (r *ReservationRepo) ActiveQuantity(ctx context.Context, packageID uint64, now time.Time) (uint32, error) {
    var total uint32
    err := r.db.QueryRowContext(ctx,
        `SELECT COALESCE(SUM(quantity), 0) FROM reservations WHERE package_id = ? AND expires_at > ?`,
        packageID, now.UTC()).Scan(&total)
    return total, err
}

// ActiveQuantityExcluding sums non-expired holds on a package held by
// anyone except the given customer.  A customer's own hold never
// counts against their own availability.
func (r *ReservationRepo) ActiveQuantityExcluding(ctx context.Context, packageID, customerID uint64, now time.Time) (uint32, error) {
    var total uint32
    err := r.db.QueryRowContext(ctx,
        `SELECT COALESCE(SUM(quantity), 0) FROM reservations
         WHERE package_id = ? AND customer_id <> ? AND expires_at > ?`,
        packageID, customerID, now.UTC()).Scan(&total)
    return total, err
}

// PurgeExpired physically deletes holds whose expiry has passed and
// returns how many rows went away.
func (r *ReservationRepo) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
    res, err := r.db.ExecContext(ctx,
        `DELETE FROM reservations WHERE expires_at <= ?`, now.UTC())
    if err != nil {
        return 0, err
    }
    return res.RowsAffected()
}
