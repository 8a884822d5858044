// Package circulation provides the policy core of a library management system:
// duplicate detection for catalog records, overdue late-fee calculation, and
// per-member borrowing eligibility.
//
// The three evaluators are independent and side-effect free. They classify and
// compute; they never mutate the record store and they never decide whether a
// mutation should happen - that is left to the calling layer.
//
// Key types:
//   - DuplicateClassifier: partitions candidate-book matches into three
//     confidence tiers (exact ISBN > similar title > title+author)
//   - FeePolicy / CalculateLateFee: grace period, daily rate, and optional cap
//   - EligibilityChecker: borrowing-limit and unpaid-fees gates
//   - Filter: criteria for querying the record store
//
// Common usage pattern:
//
//	classifier, _ := circulation.NewDuplicateClassifier(store)
//
//	verdict := classifier.Classify(ctx, accountID, circulation.BookCandidate{
//		ISBN:   "978-0-13-468599-1",
//		Title:  "Clean Code",
//		Author: "Robert Martin",
//	}, uuid.Nil)
//
//	if verdict.HasDuplicates {
//		// warn, block, or let the user force-proceed
//	}
//
// Store queries that fail degrade differently by evaluator: duplicate tiers
// are advisory and fall back to empty (AdvisoryOnError), eligibility gates
// deny the loan (DenyOnError). See ErrorPolicy.
package circulation
