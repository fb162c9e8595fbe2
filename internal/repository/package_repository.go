package repository

import (
    "context"
    "database/sql"
    "errors"
    "strings"

    "github.com/lastbite/lastbite/internal/model"
)

// PackageRepo provides data access to the packages table.  Stock
// mutation goes through DecrementStock/IncrementStock only; the
// conditional form of the decrement is what keeps stock non-negative
// under concurrent order commits.
type PackageRepo struct {
    db *sql.DB
}

// NewPackageRepo returns a PackageRepo bound to the given database.
func NewPackageRepo(db *sql.DB) *PackageRepo { return &PackageRepo{db: db} }

const packageColumns = `id, company_id, name, description, original_price_cents, price_cents,
    stock, is_available, image_url, rating_avg, rating_count, created_at, updated_at`

func scanPackage(row interface{ Scan(...interface{}) error }) (model.Package, error) {
    var (
        p     model.Package
        desc  sql.NullString
        img   sql.NullString
    )
    err := row.Scan(&p.ID, &p.CompanyID, &p.Name, &desc, &p.OriginalPriceCents, &p.PriceCents,
        &p.Stock, &p.IsAvailable, &img, &p.RatingAvg, &p.RatingCount, &p.CreatedAt, &p.UpdatedAt)
    if err != nil {
        return p, err
    }
    if desc.Valid {
        d := desc.String
        p.Description = &d
    }
    if img.Valid {
        u := img.String
        p.ImageURL = &u
    }
    return p, nil
}

// Create inserts a new package and populates its generated ID.
func (r *PackageRepo) Create(ctx context.Context, p *model.Package) error {
    const q = `INSERT INTO packages
        (company_id, name, description, original_price_cents, price_cents, stock, is_available, image_url)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
    res, err := r.db.ExecContext(ctx, q,
        p.CompanyID, p.Name, p.Description, p.OriginalPriceCents, p.PriceCents, p.Stock, p.IsAvailable, p.ImageURL)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    p.ID = uint64(id)
    got, err := r.GetByID(ctx, p.ID)
    if err != nil {
        return err
    }
    *p = got
    return nil
}

// GetByID fetches one package by id.
func (r *PackageRepo) GetByID(ctx context.Context, id uint64) (model.Package, error) {
    row := r.db.QueryRowContext(ctx, `SELECT `+packageColumns+` FROM packages WHERE id = ?`, id)
    p, err := scanPackage(row)
    if errors.Is(err, sql.ErrNoRows) {
        return p, ErrNotFound
    }
    return p, err
}

// List returns available packages for public browsing, newest first,
// paginated with LIMIT/OFFSET.  When q is non-empty the result is
// filtered by a case-insensitive name match.
func (r *PackageRepo) List(ctx context.Context, q string, page, limit int) ([]model.Package, error) {
    if page < 1 {
        page = 1
    }
    if limit < 1 || limit > 100 {
        limit = 20
    }
    query := `SELECT ` + packageColumns + ` FROM packages WHERE is_available = 1`
    args := []interface{}{}
    if s := strings.TrimSpace(q); s != "" {
        query += ` AND name LIKE ?`
        args = append(args, "%"+s+"%")
    }
    query += ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
    args = append(args, limit, (page-1)*limit)
    rows, err := r.db.QueryContext(ctx, query, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []model.Package
    for rows.Next() {
        p, err := scanPackage(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, p)
    }
    return out, rows.Err()
}

// ListByCompany returns every package owned by one company.
func (r *PackageRepo) ListByCompany(ctx context.Context, companyID uint64) ([]model.Package, error) {
    rows, err := r.db.QueryContext(ctx,
        `SELECT `+packageColumns+` FROM packages WHERE company_id = ? ORDER BY created_at DESC`, companyID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []model.Package
    for rows.Next() {
        p, err := scanPackage(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, p)
    }
    return out, rows.Err()
}

// Update rewrites the mutable listing fields of a package owned by
// companyID.  Returns ErrNotFound when the package does not exist
// and ErrForbidden when it belongs to another company.
func (r *PackageRepo) Update(ctx context.Context, companyID uint64, p *model.Package) error {
    if err := r.checkOwner(ctx, p.ID, companyID); err != nil {
        return err
    }
    const q = `UPDATE packages SET name = ?, description = ?, original_price_cents = ?,
        price_cents = ?, stock = ?, is_available = ?, image_url = ? WHERE id = ?`
    _, err := r.db.ExecContext(ctx, q,
        p.Name, p.Description, p.OriginalPriceCents, p.PriceCents, p.Stock, p.IsAvailable, p.ImageURL, p.ID)
    return err
}

// Delete removes a package owned by companyID.
func (r *PackageRepo) Delete(ctx context.Context, companyID, id uint64) error {
    if err := r.checkOwner(ctx, id, companyID); err != nil {
        return err
    }
    _, err := r.db.ExecContext(ctx, `DELETE FROM packages WHERE id = ?`, id)
    return err
}

func (r *PackageRepo) checkOwner(ctx context.Context, id, companyID uint64) error {
    var owner uint64
    err := r.db.QueryRowContext(ctx, `SELECT company_id FROM packages WHERE id = ?`, id).Scan(&owner)
    if errors.Is(err, sql.ErrNoRows) {
        return ErrNotFound
    }
    if err != nil {
        return err
    }
    if owner != companyID {
        return ErrForbidden
    }
    return nil
}

// DecrementStock atomically subtracts qty from a package's stock,
// but only when the row still carries at least qty at the moment of
// the write.  Losing the race to a concurrent commit surfaces as
// ErrStockConflict; a missing row as ErrNotFound.
func (r *PackageRepo) DecrementStock(ctx context.Context, id uint64, qty uint32) error {
    res, err := r.db.ExecContext(ctx,
        `UPDATE packages SET stock = stock - ? WHERE id = ? AND stock >= ?`, qty, id, qty)
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
    if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM packages WHERE id = ?`, id).Scan(&exists); err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return ErrNotFound
        }
        return err
    }
    return ErrStockConflict
}

// IncrementStock adds qty back to a package's stock.  Used by the
// commit protocol to compensate decrements already applied when a
// later item in the same cart loses its race.
func (r *PackageRepo) IncrementStock(ctx context.Context, id uint64, qty uint32) error {
    _, err := r.db.ExecContext(ctx,
        `UPDATE packages SET stock = stock + ? WHERE id = ?`, qty, id)
    return err
}

// RefreshRating recomputes the package's aggregate rating from every
// rating whose order contains this package.  The average is rounded
// to one decimal place in SQL so all readers see the same value.
func (r *PackageRepo) RefreshRating(ctx context.Context, id uint64) error {
    const q = `UPDATE packages p SET
        p.rating_avg = COALESCE((
            SELECT ROUND(AVG(rt.score), 1) FROM ratings rt
            JOIN order_items oi ON oi.order_id = rt.order_id
            WHERE oi.package_id = p.id), 0),
        p.rating_count = (
            SELECT COUNT(DISTINCT rt.id) FROM ratings rt
            JOIN order_items oi ON oi.order_id = rt.order_id
            WHERE oi.package_id = p.id)
        WHERE p.id = ?`
    _, err := r.db.ExecContext(ctx, q, id)
    return err
}
