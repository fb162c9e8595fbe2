// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// services and handlers to distinguish between different failure
// scenarios. For example, ErrForbidden indicates that the current user
// is not authorized to perform an operation on a resource owned by
// someone else, while ErrStockConflict signals that a conditional
// stock decrement lost the race to a concurrent commit.
package repository

import "errors"

// ErrNotFound is returned when a requested row does not exist.
// Handlers should translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an update cannot be performed
// because of conflicting state, such as creating a second rating
// for the same order or redeeming an order that has already left
// a redeemable status. Handlers should translate this into an
// HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrStockConflict is returned by the conditional stock decrement
// when the row no longer carries enough stock at the moment of the
// write. The commit protocol rolls back any decrements it already
// applied and reports the whole order as conflicted.
var ErrStockConflict = errors.New("stock conflict")
