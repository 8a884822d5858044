package circulation

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
)

const (
	// similarTitleThreshold is the minimum normalized edit-distance score a
	// substring-matched title must reach to count as a similar-title hit.
	similarTitleThreshold = 0.6

	// fuzzyTierCandidateLimit bounds the candidate set the fuzzy tiers fetch
	// from the store before any in-memory scoring happens.
	fuzzyTierCandidateLimit = 10

	tierExactISBN    = "exact_isbn"
	tierSimilarTitle = "similar_title"
	tierTitleAuthor  = "title_author"

	logMsgDuplicateTierDegraded = "duplicate tier degraded to empty after query failure"
	metricDuplicateTierDegraded = "circulation_duplicate_tier_degraded_total"
	labelTier                   = "tier"
	labelErrorPolicy            = "error_policy"
)

// DuplicateVerdict partitions the matches for a candidate book into three
// confidence tiers, ordered by decreasing confidence. A record ID appears in
// at most one tier ("first tier wins"), and the record being edited never
// appears at all.
type DuplicateVerdict struct {
	ExactISBNMatches    []CatalogRecord
	SimilarTitleMatches []CatalogRecord
	TitleAuthorMatches  []CatalogRecord
	HasDuplicates       bool
}

// DuplicateClassifier detects likely duplicates of a candidate book before it
// is inserted or saved. It is purely a read + classify: the caller decides
// whether to block, warn, or force-proceed.
//
// Failed tier queries follow AdvisoryOnError: the affected tier silently
// reports no matches so that a store hiccup never blocks catalog writes.
type DuplicateClassifier struct {
	store       RecordStore
	logger      Logger
	metrics     MetricsCollector
	errorPolicy ErrorPolicy
}

// ClassifierOption defines a functional option for configuring a DuplicateClassifier.
type ClassifierOption func(*DuplicateClassifier) error

// WithClassifierLogger sets the logger for degraded-tier warnings.
func WithClassifierLogger(logger Logger) ClassifierOption {
	return func(c *DuplicateClassifier) error {
		c.logger = logger
		return nil
	}
}

// WithClassifierMetrics sets the metrics collector for degraded-tier counters.
func WithClassifierMetrics(collector MetricsCollector) ClassifierOption {
	return func(c *DuplicateClassifier) error {
		c.metrics = collector
		return nil
	}
}

// NewDuplicateClassifier creates a DuplicateClassifier backed by the given
// record store, with optional configuration.
func NewDuplicateClassifier(store RecordStore, options ...ClassifierOption) (DuplicateClassifier, error) {
	if store == nil {
		return DuplicateClassifier{}, ErrNilRecordStore
	}

	classifier := DuplicateClassifier{
		store:       store,
		errorPolicy: AdvisoryOnError,
	}

	for _, option := range options {
		if err := option(&classifier); err != nil {
			return DuplicateClassifier{}, err
		}
	}

	return classifier, nil
}

// Classify queries the existing records of the account and partitions the
// matches for the candidate into the three tiers.
//
// Tier rules:
//   - exact ISBN: identical ISBN, queried only when the trimmed ISBN is non-blank
//   - similar title: case-insensitive substring pre-filter (at most 10
//     candidates), then Similarity > 0.6 against the candidate title
//   - title+author: both fields as case-insensitive substrings (at most 10),
//     substring containment is the sole criterion
//
// The record identified by excludeID - typically the record currently being
// edited - is filtered from every tier. Pass uuid.Nil to exclude nothing.
//
// The three tier queries run concurrently; cross-tier de-duplication happens
// after all result sets are in, in fixed priority order.
func (c DuplicateClassifier) Classify(
	ctx context.Context,
	accountID uuid.UUID,
	candidate BookCandidate,
	excludeID uuid.UUID,
) DuplicateVerdict {

	isbn := strings.TrimSpace(candidate.ISBN)
	title := strings.TrimSpace(candidate.Title)
	author := strings.TrimSpace(candidate.Author)

	var exactMatches, titleMatches, titleAuthorMatches []CatalogRecord
	var waitGroup sync.WaitGroup

	if isbn != "" {
		filter := BuildRecordFilter(accountID).
			Matching().
			AllPredicatesOf(P(FieldISBN, isbn)).
			Finalize()

		waitGroup.Add(1)
		go func() {
			defer waitGroup.Done()
			exactMatches = c.queryTier(ctx, tierExactISBN, filter)
		}()
	}

	if title != "" {
		filter := BuildRecordFilter(accountID).
			Matching().
			AllPredicatesOf(PContainsFold(FieldTitle, title)).
			AndLimitedTo(fuzzyTierCandidateLimit).
			Finalize()

		waitGroup.Add(1)
		go func() {
			defer waitGroup.Done()
			titleMatches = c.queryTier(ctx, tierSimilarTitle, filter)
		}()
	}

	if title != "" && author != "" {
		filter := BuildRecordFilter(accountID).
			Matching().
			AllPredicatesOf(
				PContainsFold(FieldTitle, title),
				PContainsFold(FieldAuthor, author),
			).
			AndLimitedTo(fuzzyTierCandidateLimit).
			Finalize()

		waitGroup.Add(1)
		go func() {
			defer waitGroup.Done()
			titleAuthorMatches = c.queryTier(ctx, tierTitleAuthor, filter)
		}()
	}

	waitGroup.Wait()

	titleMatches = keepSimilarTitles(title, titleMatches)

	// Cross-tier de-duplication in priority order; seeding the excluded ID
	// removes the record being edited from every tier.
	seen := make(map[uuid.UUID]struct{})
	if excludeID != uuid.Nil {
		seen[excludeID] = struct{}{}
	}

	verdict := DuplicateVerdict{
		ExactISBNMatches:    dropAlreadySeen(exactMatches, seen),
		SimilarTitleMatches: dropAlreadySeen(titleMatches, seen),
		TitleAuthorMatches:  dropAlreadySeen(titleAuthorMatches, seen),
	}

	verdict.HasDuplicates = len(verdict.ExactISBNMatches) > 0 ||
		len(verdict.SimilarTitleMatches) > 0 ||
		len(verdict.TitleAuthorMatches) > 0

	return verdict
}

// queryTier runs one tier query, degrading to an empty result on failure as
// AdvisoryOnError demands.
func (c DuplicateClassifier) queryTier(ctx context.Context, tier string, filter Filter) []CatalogRecord {
	records, err := c.store.QueryCatalogRecords(ctx, filter)
	if err != nil {
		if c.logger != nil {
			c.logger.Warn(logMsgDuplicateTierDegraded,
				labelTier, tier,
				labelErrorPolicy, c.errorPolicy.String(),
				"error", err.Error())
		}

		if c.metrics != nil {
			c.metrics.IncrementCounter(metricDuplicateTierDegraded, map[string]string{
				labelTier:        tier,
				labelErrorPolicy: c.errorPolicy.String(),
			})
		}

		return nil
	}

	return records
}

// keepSimilarTitles scores each substring-matched record against the
// candidate title and keeps only those above the similarity threshold.
func keepSimilarTitles(candidateTitle string, matches []CatalogRecord) []CatalogRecord {
	if len(matches) == 0 {
		return nil
	}

	kept := make([]CatalogRecord, 0, len(matches))
	for _, record := range matches {
		if Similarity(candidateTitle, record.Title) > similarTitleThreshold {
			kept = append(kept, record)
		}
	}

	return kept
}

// dropAlreadySeen filters out records whose ID was emitted by an earlier tier
// (or is excluded) and marks the kept ones as seen.
func dropAlreadySeen(records []CatalogRecord, seen map[uuid.UUID]struct{}) []CatalogRecord {
	if len(records) == 0 {
		return nil
	}

	kept := make([]CatalogRecord, 0, len(records))
	for _, record := range records {
		if _, alreadySeen := seen[record.ID]; alreadySeen {
			continue
		}

		seen[record.ID] = struct{}{}
		kept = append(kept, record)
	}

	if len(kept) == 0 {
		return nil
	}

	return kept
}
