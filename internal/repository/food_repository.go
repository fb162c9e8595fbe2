package repository

import (
    "context"
    "database/sql"
    "errors"
    "strings"

    "github.com/lastbite/lastbite/internal/model"
)

// FoodRepo provides data access to the foods table.  Foods share the
// conditional stock decrement discipline with packages but have no
// soft holds, so availability equals raw stock.
type FoodRepo struct {
    db *sql.DB
}

// NewFoodRepo returns a FoodRepo bound to the given database.
func NewFoodRepo(db *sql.DB) *FoodRepo { return &FoodRepo{db: db} }

const foodColumns = `id, company_id, name, description, price_cents, stock, is_available, image_url, created_at, updated_at`

func scanFood(row interface{ Scan(...interface{}) error }) (model.Food, error) {
    var (
        f    model.Food
        desc sql.NullString
        img  sql.NullString
    )
    err := row.Scan(&f.ID, &f.CompanyID, &f.Name, &desc, &f.PriceCents, &f.Stock, &f.IsAvailable, &img, &f.CreatedAt, &f.UpdatedAt)
    if err != nil {
        return f, err
    }
    if desc.Valid {
        d := desc.String
        f.Description = &d
    }
    if img.Valid {
        u := img.String
        f.ImageURL = &u
    }
    return f, nil
}

// Create inserts a new food item and populates its generated ID.
func (r *FoodRepo) Create(ctx context.Context, f *model.Food) error {
    const q = `INSERT INTO foods (company_id, name, description, price_cents, stock, is_available, image_url)
        VALUES (?, ?, ?, ?, ?, ?, ?)`
    res, err := r.db.ExecContext(ctx, q, f.CompanyID, f.Name, f.Description, f.PriceCents, f.Stock, f.IsAvailable, f.ImageURL)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    f.ID = uint64(id)
    got, err := r.GetByID(ctx, f.ID)
    if err != nil {
        return err
    }
    *f = got
    return nil
}

// GetByID fetches one food item by id.
func (r *FoodRepo) GetByID(ctx context.Context, id uint64) (model.Food, error) {
    row := r.db.QueryRowContext(ctx, `SELECT `+foodColumns+` FROM foods WHERE id = ?`, id)
    f, err := scanFood(row)
    if errors.Is(err, sql.ErrNoRows) {
        return f, ErrNotFound
    }
    return f, err
}

// List returns available foods, paginated, optionally filtered by name.
func (r *FoodRepo) List(ctx context.Context, q string, page, limit int) ([]model.Food, error) {
    if page < 1 {
        page = 1
    }
    if limit < 1 || limit > 100 {
        limit = 20
    }
    query := `SELECT ` + foodColumns + ` FROM foods WHERE is_available = 1`
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
    var out []model.Food
    for rows.Next() {
        f, err := scanFood(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, f)
    }
    return out, rows.Err()
}

// Update rewrites the mutable fields of a food item owned by companyID.
func (r *FoodRepo) Update(ctx context.Context, companyID uint64, f *model.Food) error {
    if err := r.checkOwner(ctx, f.ID, companyID); err != nil {
        return err
    }
    const q = `UPDATE foods SET name = ?, description = ?, price_cents = ?, stock = ?, is_available = ?, image_url = ? WHERE id = ?`
    _, err := r.db.ExecContext(ctx, q, f.Name, f.Description, f.PriceCents, f.Stock, f.IsAvailable, f.ImageURL, f.ID)
    return err
}

// Delete removes a food item owned by companyID.
func (r *FoodRepo) Delete(ctx context.Context, companyID, id uint64) error {
    if err := r.checkOwner(ctx, id, companyID); err != nil {
        return err
    }
    _, err := r.db.ExecContext(ctx, `DELETE FROM foods WHERE id = ?`, id)
    return err
}

func (r *FoodRepo) checkOwner(ctx context.Context, id, companyID uint64) error {
    var owner uint64
    err := r.db.QueryRowContext(ctx, `SELECT company_id FROM foods WHERE id = ?`, id).Scan(&owner)
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

// DecrementStock atomically subtracts qty when enough stock remains,
// mirroring PackageRepo.DecrementStock.
func (r *FoodRepo) DecrementStock(ctx context.Context, id uint64, qty uint32) error {
    res, err := r.db.ExecContext(ctx,
        `UPDATE foods SET stock = stock - ? WHERE id = ? AND stock >= ?`, qty, id, qty)
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
    if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM foods WHERE id = ?`, id).Scan(&exists); err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return ErrNotFound
        }
        return err
    }
    return ErrStockConflict
}

// IncrementStock adds qty back to a food's stock.
func (r *FoodRepo) IncrementStock(ctx context.Context, id uint64, qty uint32) error {
    _, err := r.db.ExecContext(ctx, `UPDATE foods SET stock = stock + ? WHERE id = ?`, qty, id)
    return err
}
