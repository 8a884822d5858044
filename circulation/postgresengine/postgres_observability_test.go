package postgresengine

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfwise/circulation-go/circulation"
	"github.com/shelfwise/circulation-go/circulation/postgresengine/internal/adapters"
	"github.com/shelfwise/circulation-go/testutil/helper"
)

func Test_QueryCatalogRecords_EmitsSpanMetricsAndDebugLog_OnSuccess(t *testing.T) {
	// arrange
	loggerSpy := helper.NewContextualLoggerSpy()
	metricsSpy := helper.NewMetricsSpy()
	tracingSpy := helper.NewTracingSpy()

	store, err := newRecordStore(
		&stubAdapter{rows: &emptyRows{}},
		WithContextualLogger(loggerSpy),
		WithMetrics(metricsSpy),
		WithTracing(tracingSpy),
	)
	require.NoError(t, err)

	filter := circulation.BuildRecordFilter(uuid.New()).
		Matching().
		AnyPredicateOf(circulation.P(circulation.FieldISBN, "9780743273565")).
		Finalize()

	// act
	records, queryErr := store.QueryCatalogRecords(context.Background(), filter)

	// assert
	require.NoError(t, queryErr)
	assert.Empty(t, records)

	span, found := tracingSpy.FindSpan("recordstore.catalog_query")
	require.True(t, found)
	assert.Equal(t, "ok", span.Status)
	assert.Equal(t, "catalog_query", span.StartAttributes["operation"])

	durations := metricsSpy.DurationRecords()
	require.Len(t, durations, 1)
	assert.Equal(t, "circulation_store_query_duration", durations[0].Metric)

	assert.True(t, loggerSpy.HasMessageAtLevel("DEBUG", "executed sql for: catalog_query"))
	assert.True(t, loggerSpy.HasMessageAtLevel("INFO", "record store query completed"))
}

func Test_QueryCatalogRecords_EmitsErrorSpanAndCounter_WhenQueryFails(t *testing.T) {
	// arrange
	loggerSpy := helper.NewContextualLoggerSpy()
	metricsSpy := helper.NewMetricsSpy()
	tracingSpy := helper.NewTracingSpy()

	store, err := newRecordStore(
		&stubAdapter{err: errors.New("connection refused")},
		WithContextualLogger(loggerSpy),
		WithMetrics(metricsSpy),
		WithTracing(tracingSpy),
	)
	require.NoError(t, err)

	filter := circulation.BuildRecordFilter(uuid.New()).MatchingAnyRecord()

	// act
	_, queryErr := store.QueryCatalogRecords(context.Background(), filter)

	// assert
	require.ErrorIs(t, queryErr, circulation.ErrQueryingRecordsFailed)

	span, found := tracingSpy.FindSpan("recordstore.catalog_query")
	require.True(t, found)
	assert.Equal(t, "error", span.Status)
	assert.Contains(t, span.EndAttributes["error"], "connection refused")

	assert.Equal(t, 1, metricsSpy.CounterTotal("circulation_store_query_errors_total"))
	assert.True(t, loggerSpy.HasMessageAtLevel("ERROR", "database query execution failed"))
}

func Test_CountLoanRecords_ReturnsError_WhenQueryFails(t *testing.T) {
	// arrange
	store, err := newRecordStore(&stubAdapter{err: errors.New("connection refused")})
	require.NoError(t, err)

	filter := circulation.BuildRecordFilter(uuid.New()).MatchingAnyRecord()

	// act
	_, countErr := store.CountLoanRecords(context.Background(), filter)

	// assert
	assert.ErrorIs(t, countErr, circulation.ErrQueryingRecordsFailed)
}

func Test_LoadFeePolicy_ReturnsNormalizedPolicyFromSettingsDocument(t *testing.T) {
	// arrange
	settings := `{"daily_late_fee_rate": 0.75, "grace_period_days": -2, "max_late_fee_cap": 20.00}`
	store, err := newRecordStore(&stubAdapter{rows: &settingsRows{settings: []byte(settings)}})
	require.NoError(t, err)

	// act
	policy, loadErr := store.LoadFeePolicy(context.Background(), uuid.New())

	// assert: negative values are clamped at load time
	require.NoError(t, loadErr)
	assert.Equal(t, 0.75, policy.DailyLateFeeRate)
	assert.Zero(t, policy.GracePeriodDays)
	assert.Equal(t, 20.00, policy.MaxLateFeeCap)
}

func Test_LoadFeePolicy_ReturnsDefaultPolicy_WhenAccountHasNoPolicyRow(t *testing.T) {
	// arrange
	store, err := newRecordStore(&stubAdapter{rows: &emptyRows{}})
	require.NoError(t, err)

	// act
	policy, loadErr := store.LoadFeePolicy(context.Background(), uuid.New())

	// assert
	require.NoError(t, loadErr)
	assert.Equal(t, circulation.DefaultFeePolicy(), policy)
}

func Test_LoadFeePolicy_ReturnsError_WhenSettingsDocumentIsInvalid(t *testing.T) {
	// arrange
	store, err := newRecordStore(&stubAdapter{rows: &settingsRows{settings: []byte("{broken")}})
	require.NoError(t, err)

	// act
	_, loadErr := store.LoadFeePolicy(context.Background(), uuid.New())

	// assert
	assert.ErrorIs(t, loadErr, circulation.ErrInvalidPolicyDocument)
}

/*** adapter stubs ***/

type stubAdapter struct {
	rows adapters.DBRows
	err  error
}

func (a *stubAdapter) Query(_ context.Context, _ string) (adapters.DBRows, error) {
	if a.err != nil {
		return nil, a.err
	}

	return a.rows, nil
}

type emptyRows struct{}

// settingsRows yields a single row holding a raw settings document.
type settingsRows struct {
	settings []byte
	consumed bool
}

func (r *settingsRows) Next() bool {
	if r.consumed {
		return false
	}
	r.consumed = true

	return true
}

func (r *settingsRows) Scan(dest ...any) error {
	target, ok := dest[0].(*[]byte)
	if !ok {
		return errors.New("unexpected scan destination")
	}
	*target = r.settings

	return nil
}

func (r *settingsRows) Close() error { return nil }

func (r *emptyRows) Next() bool          { return false }
func (r *emptyRows) Scan(_ ...any) error { return nil }
func (r *emptyRows) Close() error        { return nil }
