package ledger

import "context"

// EntryFilter narrows and pages an entry listing.
type EntryFilter struct {
	Direction Direction // optional
	Source    Source    // optional
	Page      int       // 1-based; 0 means first page
	PerPage   int       // 0 means the store default
}

// Store is the persistence surface the money-movement operations need.
// Callers obtain a transaction-scoped Store from their persistence
// layer so that a balance write and its entry append commit together.
type Store interface {
	// GetBalance returns the user's balance row, or ErrNotFound when
	// the user has had no money movement yet.
	GetBalance(ctx context.Context, userID string) (*Balance, error)

	// SaveBalance inserts or updates the balance row.
	SaveBalance(ctx context.Context, b Balance) error

	// AppendEntry adds a ledger entry. Entries are never updated or
	// deleted; this is the only entry write operation.
	AppendEntry(ctx context.Context, e Entry) error

	// Entries returns a page of the user's entries, newest first,
	// together with the total count matching the filter.
	Entries(ctx context.Context, userID string, f EntryFilter) ([]Entry, int, error)

	// AllEntries returns every entry for a user in creation order.
	// Used for consistency checks.
	AllEntries(ctx context.Context, userID string) ([]Entry, error)
}
