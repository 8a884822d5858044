package circulation

import (
	"time"

	"github.com/google/uuid"
)

// LoanStatus is the lifecycle state of a LoanRecord.
// A loan transitions Borrowed -> Returned; Returned is terminal.
type LoanStatus string

const (
	StatusBorrowed LoanStatus = "borrowed"
	StatusReturned LoanStatus = "returned"
)

// Field keys understood by RecordStore implementations when compiling a
// Filter. Catalog records and loan records live in separate collections, so
// the key sets do not overlap.
const (
	FieldISBN   = "isbn"
	FieldTitle  = "title"
	FieldAuthor = "author"

	FieldMemberID  = "member_id"
	FieldStatus    = "status"
	FieldFeePaid   = "fee_paid"
	FieldFeeWaived = "fee_waived"
)

// CatalogRecord is one book record as persisted by the record store.
// It is owned by the store and read-only to this package; classification
// never mutates it.
type CatalogRecord struct {
	ID        uuid.UUID
	AccountID uuid.UUID
	Title     string
	Author    string
	ISBN      string
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// IsDeleted reports whether the record carries a soft-delete marker.
// Soft-deleted records never participate in duplicate matching.
func (r CatalogRecord) IsDeleted() bool {
	return r.DeletedAt != nil
}

// LoanRecord is one loan as persisted by the record store. FeeAmount holds
// the late fee computed for the loan so far; FeePaid and FeeWaived settle it.
type LoanRecord struct {
	ID         uuid.UUID
	AccountID  uuid.UUID
	MemberID   uuid.UUID
	BookID     uuid.UUID
	DueDate    time.Time
	ReturnedAt *time.Time
	FeeAmount  float64
	FeePaid    bool
	FeeWaived  bool
	Status     LoanStatus
}

// BookCandidate carries the identifying fields of a book that is about to be
// inserted or edited. Blank fields disable the tiers that depend on them.
type BookCandidate struct {
	Title  string
	Author string
	ISBN   string
}
