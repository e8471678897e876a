// Package repository implements the five stores (accounts, auctions,
// bids, commissions, payment proofs) plus notifications and refresh
// tokens over database/sql. Sentinel errors defined here let handlers
// distinguish failure scenarios without string matching.
package repository

import "errors"

// ErrNotFound is returned when a referenced record does not exist or is
// soft-deleted and the caller did not request removed records. Handlers
// translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned on registration when the email address is
// already taken. Handlers translate this into an HTTP 409 response.
var ErrEmailExists = errors.New("email already exists")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own. Handlers translate this into an HTTP 403
// response.
var ErrForbidden = errors.New("forbidden")
