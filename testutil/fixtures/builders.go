package fixtures

import (
	"time"

	"github.com/google/uuid"

	"github.com/shelfwise/circulation-go/circulation"
)

// CatalogRecordOption mutates a catalog record under construction.
type CatalogRecordOption func(*circulation.CatalogRecord)

// NewCatalogRecord builds a catalog record for the given account with a fresh
// ID and sensible defaults, customized by options.
func NewCatalogRecord(accountID uuid.UUID, options ...CatalogRecordOption) circulation.CatalogRecord {
	now := time.Now()

	record := circulation.CatalogRecord{
		ID:        uuid.New(),
		AccountID: accountID,
		Title:     "Some Book",
		Author:    "Some Author",
		CreatedAt: now,
		UpdatedAt: now,
	}

	for _, option := range options {
		option(&record)
	}

	return record
}

// WithID sets the record's ID.
func WithID(id uuid.UUID) CatalogRecordOption {
	return func(r *circulation.CatalogRecord) {
		r.ID = id
	}
}

// WithTitle sets the record's title.
func WithTitle(title string) CatalogRecordOption {
	return func(r *circulation.CatalogRecord) {
		r.Title = title
	}
}

// WithAuthor sets the record's author.
func WithAuthor(author string) CatalogRecordOption {
	return func(r *circulation.CatalogRecord) {
		r.Author = author
	}
}

// WithISBN sets the record's ISBN.
func WithISBN(isbn string) CatalogRecordOption {
	return func(r *circulation.CatalogRecord) {
		r.ISBN = isbn
	}
}

// SoftDeleted marks the record as soft-deleted.
func SoftDeleted() CatalogRecordOption {
	return func(r *circulation.CatalogRecord) {
		deletedAt := time.Now()
		r.DeletedAt = &deletedAt
	}
}

// LoanRecordOption mutates a loan record under construction.
type LoanRecordOption func(*circulation.LoanRecord)

// NewLoanRecord builds an active (Borrowed) loan for the given account and
// member with a fresh ID, customized by options.
func NewLoanRecord(accountID uuid.UUID, memberID uuid.UUID, options ...LoanRecordOption) circulation.LoanRecord {
	loan := circulation.LoanRecord{
		ID:        uuid.New(),
		AccountID: accountID,
		MemberID:  memberID,
		BookID:    uuid.New(),
		DueDate:   time.Now().Add(14 * 24 * time.Hour),
		Status:    circulation.StatusBorrowed,
	}

	for _, option := range options {
		option(&loan)
	}

	return loan
}

// WithDueDate sets the loan's due date.
func WithDueDate(dueDate time.Time) LoanRecordOption {
	return func(l *circulation.LoanRecord) {
		l.DueDate = dueDate
	}
}

// Returned marks the loan as returned at the given time.
func Returned(at time.Time) LoanRecordOption {
	return func(l *circulation.LoanRecord) {
		returnedAt := at
		l.ReturnedAt = &returnedAt
		l.Status = circulation.StatusReturned
	}
}

// WithFee sets the loan's accrued late fee.
func WithFee(amount float64) LoanRecordOption {
	return func(l *circulation.LoanRecord) {
		l.FeeAmount = amount
	}
}

// FeePaid marks the loan's fee as paid.
func FeePaid() LoanRecordOption {
	return func(l *circulation.LoanRecord) {
		l.FeePaid = true
	}
}

// FeeWaived marks the loan's fee as waived.
func FeeWaived() LoanRecordOption {
	return func(l *circulation.LoanRecord) {
		l.FeeWaived = true
	}
}
