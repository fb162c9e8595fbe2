package service

import (
    "context"
    "time"

    "github.com/lastbite/lastbite/internal/model"
    "github.com/lastbite/lastbite/internal/repository"
)

// RatingService implements the feedback flow: one rating per picked
// order within a grace period, one seller reply per rating.  Creating
// the rating completes the order and refreshes the aggregate rating
// of every package it contained.
type RatingService struct {
    ratings  RatingStore
    orders   OrderStore
    packages PackageStore
    grace    time.Duration

    now func() time.Time
}

// NewRatingService builds a RatingService.  grace is the post-pickup
// window during which feedback is accepted.
func NewRatingService(ratings RatingStore, orders OrderStore, packages PackageStore, grace time.Duration) *RatingService {
    return &RatingService{
        ratings:  ratings,
        orders:   orders,
        packages: packages,
        grace:    grace,
        now:      func() time.Time { return time.Now().UTC() },
    }
}

// Create records the customer's rating for a picked order.  The
// order must belong to the customer, be in PICKED status and still
// be inside the grace window counted from picked_at.  On success the
// order transitions to COMPLETED and the aggregates of all packages
// in the order are recomputed.
func (s *RatingService) Create(ctx context.Context, customerID, orderID uint64, score uint8, comment *string) (model.Rating, error) {
    if score < 1 || score > 5 {
        return model.Rating{}, ErrInvalidScore
    }
    o, err := s.orders.GetByID(ctx, orderID)
    if err != nil {
        return model.Rating{}, err
    }
    if o.CustomerID != customerID {
        return model.Rating{}, repository.ErrForbidden
    }
    if o.Status != model.OrderPicked {
        return model.Rating{}, ErrNotPickedUp
    }
    if o.PickedAt == nil || s.now().Sub(*o.PickedAt) > s.grace {
        return model.Rating{}, ErrFeedbackClosed
    }
    rt := model.Rating{
        OrderID:    orderID,
        CustomerID: customerID,
        Score:      score,
        Comment:    comment,
    }
    if err := s.ratings.Create(ctx, &rt); err != nil {
        return model.Rating{}, err
    }
    if err := s.orders.TransitionStatus(ctx, orderID, model.TransitionsInto(model.OrderCompleted), model.OrderCompleted, nil); err != nil {
        return model.Rating{}, err
    }
    for _, it := range o.Items {
        if it.PackageID != nil {
            _ = s.packages.RefreshRating(ctx, *it.PackageID)
        }
    }
    return rt, nil
}

// Reply attaches the seller's one-time reply to a rating.  The rating
// must belong to an order sold by companyID and must not already
// carry a reply.
func (s *RatingService) Reply(ctx context.Context, companyID, ratingID uint64, reply string) (model.Rating, error) {
    if reply == "" {
        return model.Rating{}, ErrEmptyReply
    }
    rt, err := s.ratings.GetByID(ctx, ratingID)
    if err != nil {
        return model.Rating{}, err
    }
    o, err := s.orders.GetByID(ctx, rt.OrderID)
    if err != nil {
        return model.Rating{}, err
    }
    if o.CompanyID != companyID {
        return model.Rating{}, repository.ErrForbidden
    }
    if err := s.ratings.SetReply(ctx, ratingID, reply); err != nil {
        return model.Rating{}, err
    }
    return s.ratings.GetByID(ctx, ratingID)
}
