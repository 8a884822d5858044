package circulation

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
)

type FilterKeyString = string

/***** Filter *****/

// Filter describes one read query against the record store: an account scope,
// one or more predicate groups (OR-ed together), an optional result limit,
// and whether soft-deleted records are visible.
//
// A Filter is immutable once finalized; store implementations compile it to
// their own query language.
type Filter struct {
	accountID          uuid.UUID
	items              []FilterItem
	limit              uint
	includeSoftDeleted bool
}

func (f Filter) AccountID() uuid.UUID {
	return f.accountID
}

func (f Filter) Items() []FilterItem {
	return f.items
}

// Limit returns the maximum number of records to return, 0 meaning unbounded.
func (f Filter) Limit() uint {
	return f.limit
}

func (f Filter) IncludesSoftDeleted() bool {
	return f.includeSoftDeleted
}

/***** FilterItem *****/

// FilterItem is one predicate group. Groups are combined with OR, the
// predicates inside a group with OR or AND depending on how it was built.
type FilterItem struct {
	predicates             []FilterPredicate
	allPredicatesMustMatch bool
}

func (fi FilterItem) Predicates() []FilterPredicate {
	return fi.predicates
}

func (fi FilterItem) AllPredicatesMustMatch() bool {
	return fi.allPredicatesMustMatch
}

/***** FilterPredicate *****/

// PredicateKind selects the comparison a predicate expresses.
type PredicateKind int

const (
	// KindEquals matches on exact equality of the stored value.
	KindEquals PredicateKind = iota

	// KindContainsFold matches when the stored value contains the predicate
	// value as a case-insensitive substring.
	KindContainsFold
)

// FilterPredicate is a single field comparison. The value keeps its native
// type (string, bool, uuid.UUID) so store implementations can compare without
// lossy conversions.
type FilterPredicate struct {
	key  FilterKeyString
	val  any
	kind PredicateKind
}

// P creates an equality predicate.
func P(key FilterKeyString, val any) FilterPredicate {
	return FilterPredicate{key: key, val: val, kind: KindEquals}
}

// PContainsFold creates a case-insensitive substring predicate.
func PContainsFold(key FilterKeyString, val string) FilterPredicate {
	return FilterPredicate{key: key, val: val, kind: KindContainsFold}
}

func (fp FilterPredicate) Key() FilterKeyString {
	return fp.key
}

func (fp FilterPredicate) Val() any {
	return fp.val
}

// ValString renders the predicate value for string comparisons and logging.
func (fp FilterPredicate) ValString() string {
	if fp.val == nil {
		return ""
	}

	return fmt.Sprint(fp.val)
}

func (fp FilterPredicate) Kind() PredicateKind {
	return fp.kind
}

/***** FilterBuilder *****/

// FilterBuilder builds a generic record filter to be used in store-specific
// implementations to build queries for the specific query language, e.g.
// Postgres, or the in-memory store used in tests.
//
// It is designed to only allow the filter shapes the circulation evaluators
// need:
//
//   - (predicate)
//   - (predicate OR predicate...)
//   - (predicate AND predicate...)
//   - ((predicate AND predicate...) OR (predicate AND predicate...)) -> multiple FilterItem(s)
//
// plus an optional result limit and soft-delete visibility.
type FilterBuilder interface {
	// Matching starts a new FilterItem.
	Matching() EmptyFilterItemBuilder

	// MatchingAnyRecord directly creates a Filter without predicates, scoped
	// only by account.
	MatchingAnyRecord() Filter
}

type EmptyFilterItemBuilder interface {
	// AnyPredicateOf adds one or multiple FilterPredicate(s) to the current
	// FilterItem, expecting ANY of them to match.
	//
	// It sanitizes the input:
	//   - removing empty/partial FilterPredicate(s) (key or val is "")
	//   - sorting the FilterPredicate(s)
	//   - removing duplicate FilterPredicate(s)
	AnyPredicateOf(predicate FilterPredicate, predicates ...FilterPredicate) CompletedFilterItemBuilder

	// AllPredicatesOf adds one or multiple FilterPredicate(s) to the current
	// FilterItem, expecting ALL of them to match. Sanitizes like AnyPredicateOf.
	AllPredicatesOf(predicate FilterPredicate, predicates ...FilterPredicate) CompletedFilterItemBuilder
}

type CompletedFilterItemBuilder interface {
	// OrMatching finalizes the current FilterItem and starts a new one.
	OrMatching() EmptyFilterItemBuilder

	// AndLimitedTo caps the number of records the store may return.
	AndLimitedTo(limit uint) CompletedFilterItemBuilder

	// IncludingSoftDeleted makes soft-deleted records visible to this query.
	// The default is to exclude them.
	IncludingSoftDeleted() CompletedFilterItemBuilder

	// Finalize returns the Filter once it has at least one FilterItem with at
	// least one predicate.
	Finalize() Filter
}

// filterBuilder implements all the interfaces of FilterBuilder.
type filterBuilder struct {
	filter            Filter
	currentFilterItem FilterItem
}

// BuildRecordFilter creates a FilterBuilder scoped to the given account.
// Every query this package issues is account-scoped; the account is a
// required parameter rather than ambient state.
func BuildRecordFilter(accountID uuid.UUID) FilterBuilder {
	return filterBuilder{filter: Filter{accountID: accountID}}
}

// Matching starts a new FilterItem.
func (fb filterBuilder) Matching() EmptyFilterItemBuilder {
	fb.currentFilterItem = FilterItem{}

	return fb
}

// MatchingAnyRecord directly creates a Filter without predicates.
func (fb filterBuilder) MatchingAnyRecord() Filter {
	return fb.filter
}

// AnyPredicateOf adds one or multiple FilterPredicate(s) to the current FilterItem
// expecting ANY predicate to match.
func (fb filterBuilder) AnyPredicateOf(
	predicate FilterPredicate,
	predicates ...FilterPredicate,
) CompletedFilterItemBuilder {

	fb.currentFilterItem.predicates = append(
		fb.currentFilterItem.predicates,
		fb.sanitizePredicates(predicate, predicates...)...,
	)

	return fb
}

// AllPredicatesOf adds one or multiple FilterPredicate(s) to the current FilterItem
// expecting ALL predicates to match.
func (fb filterBuilder) AllPredicatesOf(
	predicate FilterPredicate,
	predicates ...FilterPredicate,
) CompletedFilterItemBuilder {

	fb.currentFilterItem.allPredicatesMustMatch = true

	fb.currentFilterItem.predicates = append(
		fb.currentFilterItem.predicates,
		fb.sanitizePredicates(predicate, predicates...)...,
	)

	return fb
}

func (fb filterBuilder) sanitizePredicates(
	predicate FilterPredicate,
	predicates ...FilterPredicate,
) []FilterPredicate {

	allPredicates := append([]FilterPredicate{predicate}, predicates...)
	allPredicates = slices.DeleteFunc(
		allPredicates,
		func(p FilterPredicate) bool {
			return len(p.key) == 0 || p.val == nil || p.val == any("")
		})
	slices.SortFunc(
		allPredicates,
		func(a, b FilterPredicate) int {
			if a.key > b.key {
				return 1
			}

			if a.key < b.key {
				return -1
			}

			return 0
		})

	allPredicates = slices.Compact(allPredicates)
	allPredicates = slices.Clip(allPredicates)

	return allPredicates
}

// OrMatching finalizes the current FilterItem and starts a new one.
func (fb filterBuilder) OrMatching() EmptyFilterItemBuilder {
	fb.filter.items = append(fb.filter.items, fb.currentFilterItem)
	fb.currentFilterItem = FilterItem{}

	return fb
}

// AndLimitedTo caps the number of records the store may return.
func (fb filterBuilder) AndLimitedTo(limit uint) CompletedFilterItemBuilder {
	fb.filter.limit = limit

	return fb
}

// IncludingSoftDeleted makes soft-deleted records visible to this query.
func (fb filterBuilder) IncludingSoftDeleted() CompletedFilterItemBuilder {
	fb.filter.includeSoftDeleted = true

	return fb
}

// Finalize returns the Filter once it has at least one FilterItem with at least one predicate.
func (fb filterBuilder) Finalize() Filter {
	fb.filter.items = append(fb.filter.items, fb.currentFilterItem)

	return fb.filter
}
