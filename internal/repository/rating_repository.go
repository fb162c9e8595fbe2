package repository

import (
    "context"
    "database/sql"
    "errors"
    "strings"

    "github.com/lastbite/lastbite/internal/model"
)

// RatingRepo provides data access to the ratings table.  The table
// carries a unique (order_id, customer_id) index so a customer rates
// an order at most once; the duplicate-key error maps to ErrConflict.
type RatingRepo struct {
    db *sql.DB
}

// NewRatingRepo returns a RatingRepo bound to the given database.
func NewRatingRepo(db *sql.DB) *RatingRepo { return &RatingRepo{db: db} }

// Create inserts a rating and populates its generated ID and
// timestamps.  Returns ErrConflict when a rating already exists for
// this (order, customer) pair.
func (r *RatingRepo) Create(ctx context.Context, rt *model.Rating) error {
    const q = `INSERT INTO ratings (order_id, customer_id, score, comment) VALUES (?, ?, ?, ?)`
    res, err := r.db.ExecContext(ctx, q, rt.OrderID, rt.CustomerID, rt.Score, rt.Comment)
    if err != nil {
        if strings.Contains(strings.ToLower(err.Error()), "1062") {
            return ErrConflict
        }
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    rt.ID = uint64(id)
    got, err := r.GetByID(ctx, rt.ID)
    if err != nil {
        return err
    }
    *rt = got
    return nil
}

// GetByID fetches one rating by id.
func (r *RatingRepo) GetByID(ctx context.Context, id uint64) (model.Rating, error) {
    var (
        rt      model.Rating
        comment sql.NullString
        reply   sql.NullString
    )
    err := r.db.QueryRowContext(ctx,
        `SELECT id, order_id, customer_id, score, comment, reply, created_at, updated_at FROM ratings WHERE id = ?`,
        id).Scan(&rt.ID, &rt.OrderID, &rt.CustomerID, &rt.Score, &comment, &reply, &rt.CreatedAt, &rt.UpdatedAt)
    if errors.Is(err, sql.ErrNoRows) {
        return rt, ErrNotFound
    }
    if err != nil {
        return rt, err
    }
    if comment.Valid {
        c := comment.String
        rt.Comment = &c
    }
    if reply.Valid {
        v := reply.String
        rt.Reply = &v
    }
    return rt, nil
}

// SetReply attaches the seller's reply.  The conditional WHERE makes
// the reply single-shot: once set it can never be overwritten, and a
// second attempt gets ErrConflict.
func (r *RatingRepo) SetReply(ctx context.Context, id uint64, reply string) error {
    res, err := r.db.ExecContext(ctx,
        `UPDATE ratings SET reply = ? WHERE id = ? AND reply IS NULL`, reply, id)
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
    if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM ratings WHERE id = ?`, id).Scan(&exists); err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return ErrNotFound
        }
        return err
    }
    return ErrConflict
}
