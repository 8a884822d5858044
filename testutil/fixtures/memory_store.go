package fixtures

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/shelfwise/circulation-go/circulation"
)

// MemoryStore is an in-memory implementation of circulation.RecordStore.
// Safe for concurrent use; the duplicate classifier queries it from multiple
// goroutines.
type MemoryStore struct {
	mu         sync.RWMutex
	catalog    []circulation.CatalogRecord
	loans      []circulation.LoanRecord
	catalogErr error
	loanErr    error
}

// NewMemoryStore creates an empty in-memory record store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// AddCatalogRecords seeds catalog records.
func (s *MemoryStore) AddCatalogRecords(records ...circulation.CatalogRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalog = append(s.catalog, records...)
}

// AddLoanRecords seeds loan records.
func (s *MemoryStore) AddLoanRecords(loans ...circulation.LoanRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loans = append(s.loans, loans...)
}

// FailCatalogQueriesWith makes every catalog query return err. Pass nil to
// restore normal behavior.
func (s *MemoryStore) FailCatalogQueriesWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalogErr = err
}

// FailLoanQueriesWith makes every loan query and count return err. Pass nil
// to restore normal behavior.
func (s *MemoryStore) FailLoanQueriesWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loanErr = err
}

// QueryCatalogRecords returns the catalog records matching the filter, most
// recently updated first.
func (s *MemoryStore) QueryCatalogRecords(_ context.Context, filter circulation.Filter) ([]circulation.CatalogRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.catalogErr != nil {
		return nil, s.catalogErr
	}

	matches := make([]circulation.CatalogRecord, 0)
	for _, record := range s.catalog {
		if record.AccountID != filter.AccountID() {
			continue
		}

		if record.IsDeleted() && !filter.IncludesSoftDeleted() {
			continue
		}

		if !matchesFilter(filter, catalogFieldValue(record)) {
			continue
		}

		matches = append(matches, record)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].UpdatedAt.After(matches[j].UpdatedAt)
	})

	if filter.Limit() > 0 && uint(len(matches)) > filter.Limit() {
		matches = matches[:filter.Limit()]
	}

	return matches, nil
}

// QueryLoanRecords returns the loan records matching the filter.
func (s *MemoryStore) QueryLoanRecords(_ context.Context, filter circulation.Filter) ([]circulation.LoanRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.loanErr != nil {
		return nil, s.loanErr
	}

	matches := make([]circulation.LoanRecord, 0)
	for _, loan := range s.loans {
		if loan.AccountID != filter.AccountID() {
			continue
		}

		if !matchesFilter(filter, loanFieldValue(loan)) {
			continue
		}

		matches = append(matches, loan)
	}

	if filter.Limit() > 0 && uint(len(matches)) > filter.Limit() {
		matches = matches[:filter.Limit()]
	}

	return matches, nil
}

// CountLoanRecords counts the loan records matching the filter.
func (s *MemoryStore) CountLoanRecords(ctx context.Context, filter circulation.Filter) (int, error) {
	loans, err := s.QueryLoanRecords(ctx, filter)
	if err != nil {
		return 0, err
	}

	return len(loans), nil
}

// fieldValueFunc resolves a filter key to the record's field value.
type fieldValueFunc func(key circulation.FilterKeyString) (any, bool)

func catalogFieldValue(record circulation.CatalogRecord) fieldValueFunc {
	return func(key circulation.FilterKeyString) (any, bool) {
		switch key {
		case circulation.FieldISBN:
			return record.ISBN, true
		case circulation.FieldTitle:
			return record.Title, true
		case circulation.FieldAuthor:
			return record.Author, true
		default:
			return nil, false
		}
	}
}

func loanFieldValue(loan circulation.LoanRecord) fieldValueFunc {
	return func(key circulation.FilterKeyString) (any, bool) {
		switch key {
		case circulation.FieldMemberID:
			return loan.MemberID, true
		case circulation.FieldStatus:
			return string(loan.Status), true
		case circulation.FieldFeePaid:
			return loan.FeePaid, true
		case circulation.FieldFeeWaived:
			return loan.FeeWaived, true
		default:
			return nil, false
		}
	}
}

// matchesFilter evaluates the filter's predicate groups: groups OR-ed
// together, predicates inside a group AND-ed or OR-ed per the builder. A
// filter without predicates matches everything in scope.
func matchesFilter(filter circulation.Filter, fieldValue fieldValueFunc) bool {
	itemsWithPredicates := 0

	for _, item := range filter.Items() {
		if len(item.Predicates()) == 0 {
			continue
		}
		itemsWithPredicates++

		if matchesItem(item, fieldValue) {
			return true
		}
	}

	return itemsWithPredicates == 0
}

func matchesItem(item circulation.FilterItem, fieldValue fieldValueFunc) bool {
	for _, predicate := range item.Predicates() {
		matched := matchesPredicate(predicate, fieldValue)

		if item.AllPredicatesMustMatch() {
			if !matched {
				return false
			}
		} else if matched {
			return true
		}
	}

	return item.AllPredicatesMustMatch()
}

func matchesPredicate(predicate circulation.FilterPredicate, fieldValue fieldValueFunc) bool {
	value, known := fieldValue(predicate.Key())
	if !known {
		return false
	}

	switch predicate.Kind() {
	case circulation.KindContainsFold:
		return strings.Contains(
			strings.ToLower(fmt.Sprint(value)),
			strings.ToLower(predicate.ValString()),
		)

	default:
		return fmt.Sprint(value) == predicate.ValString()
	}
}
