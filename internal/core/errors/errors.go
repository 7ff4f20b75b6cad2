package errors

import "errors"

// Domain errors - these represent business rule violations. The Telegram
// handler translates them into user-visible replies; they never escape as
// process failures.
var (
	// Ticket validation
	ErrOwnerRequired   = errors.New("owner identity is required")
	ErrInvalidCategory = errors.New("unknown ticket category")
	ErrMessageRequired = errors.New("message text is required")

	// Ticket routing
	ErrCategoryMissing = errors.New("no pending category for actor")
	ErrQuotaExceeded   = errors.New("active ticket quota exceeded")
	ErrTicketNotFound  = errors.New("ticket not found")
	ErrTicketClosed    = errors.New("ticket is already closed")
	ErrNoTicketsFound  = errors.New("no active tickets in category")
	ErrNoMoreTickets   = errors.New("no more tickets")
	ErrNoActiveTicket  = errors.New("no active reply binding")

	// Blacklist
	ErrBlacklisted    = errors.New("user is blacklisted")
	ErrAlreadyBlocked = errors.New("user is already blocked")
	ErrNotBlocked     = errors.New("user is not blocked")

	// Admins
	ErrAdminNotFound = errors.New("admin not found")

	// Generic
	ErrInternal = errors.New("internal error")
)
