package service

import "errors"

var (
	// ErrPersistenceUnavailable is returned by every gateway operation while no store is connected
	ErrPersistenceUnavailable = errors.New("persistence unavailable")

	// ErrInsufficientBalance is returned when a debit would take a balance below zero
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrInvalidAmount is returned for non-positive amounts
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrSelfTransfer is returned when a member tries to pay themselves
	ErrSelfTransfer = errors.New("cannot transfer to yourself")

	// ErrNotFound is returned when a referenced record does not exist
	ErrNotFound = errors.New("record not found")

	// ErrTicketLimit is returned when a member already has MaxOpenTickets open tickets
	ErrTicketLimit = errors.New("open ticket limit reached")

	// ErrInvalidUpdate wraps validation failures of typed partial updates
	ErrInvalidUpdate = errors.New("invalid update")
)
