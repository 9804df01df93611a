package domain

import "strings"

// StatusFilterEscalated is the wire-level shortcut accepted on the status
// query parameter. It is parsed into the escalation predicate at the
// boundary and never stored as a status value.
const StatusFilterEscalated = "escalated"

// TicketFilter holds the optional, conjunctive list filters. The status and
// escalation predicates are independent internally even though they share
// one query parameter on the wire.
type TicketFilter struct {
	Status       *TicketStatus
	Escalated    *bool
	Priority     string
	TeamID       int64
	AssignedTo   int64
	HideResolved bool
}

// ApplyStatusParam interprets the raw status query parameter. The value is
// matched case-insensitively; "escalated" flips the escalation predicate
// instead of the status predicate. Unknown values are reported so the
// boundary can reject them.
func (f *TicketFilter) ApplyStatusParam(raw string) error {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if normalized == "" {
		return nil
	}
	if normalized == StatusFilterEscalated {
		escalated := true
		f.Escalated = &escalated
		return nil
	}
	status, err := ParseStatus(normalized)
	if err != nil {
		return err
	}
	f.Status = &status
	return nil
}

// ExcludeResolved reports whether the hideResolved filter is in effect.
// An explicit status filter suppresses it: selecting any status makes
// hideResolved redundant, and selecting "resolved" would contradict it
// outright, so explicit status always wins.
func (f *TicketFilter) ExcludeResolved() bool {
	return f.HideResolved && f.Status == nil
}

// SortOrder is the single-key sort applied to ticket listings.
type SortOrder string

const (
	SortNewest SortOrder = "newest"
	SortOldest SortOrder = "oldest"
	SortIDAsc  SortOrder = "id-asc"
	SortIDDesc SortOrder = "id-desc"
)

// ParseSort maps the raw sort parameter to a SortOrder. Unknown or absent
// values fall back to newest-first.
func ParseSort(raw string) SortOrder {
	switch SortOrder(raw) {
	case SortNewest, SortOldest, SortIDAsc, SortIDDesc:
		return SortOrder(raw)
	default:
		return SortNewest
	}
}

// Page is a 1-indexed pagination request.
type Page struct {
	Number int
	Size   int
}

// Offset converts the page number to a row offset.
func (p Page) Offset() int {
	if p.Number < 1 {
		return 0
	}
	return (p.Number - 1) * p.Size
}

// Pagination is the metadata returned alongside a page of results. Totals
// describe the filtered set before the page slice was taken.
type Pagination struct {
	CurrentPage     int
	ItemsPerPage    int
	TotalItems      int64
	TotalPages      int
	HasNextPage     bool
	HasPreviousPage bool
}

// NewPagination computes pagination metadata for a filtered set of
// totalItems rows.
func NewPagination(page Page, totalItems int64) Pagination {
	totalPages := 0
	if page.Size > 0 {
		totalPages = int((totalItems + int64(page.Size) - 1) / int64(page.Size))
	}

	return Pagination{
		CurrentPage:     page.Number,
		ItemsPerPage:    page.Size,
		TotalItems:      totalItems,
		TotalPages:      totalPages,
		HasNextPage:     page.Number < totalPages,
		HasPreviousPage: page.Number > 1,
	}
}

// TicketSummary holds the four aggregate counters computed over the
// filtered base set, independent of the pagination window.
type TicketSummary struct {
	TotalTickets     int64
	OpenTickets      int64
	ClosedTickets    int64
	EscalatedTickets int64
}

// TicketScope is the role-determined base set a listing may consider before
// filters apply.
type TicketScope struct {
	// StudentID restricts the scope to one student's tickets when non-nil.
	StudentID *int64
	// TicketIDs restricts the scope to an explicit id set (the caller's
	// assigned tickets) when non-nil. An empty non-nil slice means an
	// empty scope.
	TicketIDs []int64
}

// ScopeAll is the unrestricted scope used by staff listings.
func ScopeAll() TicketScope {
	return TicketScope{}
}

// ScopeStudent restricts the listing to one student's tickets.
func ScopeStudent(studentID int64) TicketScope {
	return TicketScope{StudentID: &studentID}
}

// ScopeTickets restricts the listing to an explicit set of ticket ids.
func ScopeTickets(ids []int64) TicketScope {
	if ids == nil {
		ids = []int64{}
	}
	return TicketScope{TicketIDs: ids}
}

// IsEmpty reports whether the scope can never match a row, letting callers
// short-circuit without touching storage.
func (s TicketScope) IsEmpty() bool {
	return s.TicketIDs != nil && len(s.TicketIDs) == 0
}

// TicketPage bundles one page of tickets with its metadata and summary.
type TicketPage struct {
	Tickets    []*Ticket
	Pagination Pagination
	Summary    TicketSummary
	// SummaryDegraded is set when the summary counters could not be
	// computed and the engine fell back to totalItems + zeros.
	SummaryDegraded bool
}

// EmptyTicketPage is the canonical response for an empty scope: no items,
// zeroed counters, and pagination that reports nothing to page through.
func EmptyTicketPage(page Page) TicketPage {
	return TicketPage{
		Tickets:    []*Ticket{},
		Pagination: NewPagination(page, 0),
		Summary:    TicketSummary{},
	}
}
