package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect import
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"

	"github.com/shelfwise/circulation-go/circulation"
	"github.com/shelfwise/circulation-go/circulation/postgresengine/internal/adapters"
)

const (
	defaultCatalogTableName  = "books"
	defaultLoansTableName    = "loans"
	defaultPoliciesTableName = "circulation_policies"

	colID        = "id"
	colAccountID = "account_id"
	colTitle     = "title"
	colAuthor    = "author"
	colISBN      = "isbn"
	colCreatedAt = "created_at"
	colUpdatedAt = "updated_at"
	colDeletedAt = "deleted_at"

	colMemberID   = "member_id"
	colBookID     = "book_id"
	colDueDate    = "due_date"
	colReturnedAt = "returned_at"
	colFeeAmount  = "fee_amount"
	colFeePaid    = "fee_paid"
	colFeeWaived  = "fee_waived"
	colStatus     = "status"

	colSettings = "settings"

	dialectPostgres = "postgres"

	opCatalogQuery = "catalog_query"
	opLoanQuery    = "loan_query"
	opLoanCount    = "loan_count"
	opPolicyLoad   = "policy_load"

	logMsgBuildSelectQueryFailed = "failed to build select query"
	logMsgDBQueryFailed          = "database query execution failed"
	logMsgCloseRowsFailed        = "failed to close database rows"
	logMsgScanRowFailed          = "failed to scan database row"
	logMsgQueryCompleted         = "record store query completed"
	logMsgSQLExecuted            = "executed sql for: "
	logAttrError                 = "error"
	logAttrQuery                 = "query"
	logAttrOperation             = "operation"
	logAttrRecordCount           = "record_count"
	logAttrDurationMS            = "duration_ms"

	metricQueryDuration = "circulation_store_query_duration"
	metricQueryErrors   = "circulation_store_query_errors_total"

	spanNamePrefix = "recordstore."
	spanStatusOK   = "ok"
	spanStatusErr  = "error"
)

type sqlQueryString = string

// RecordStore is the PostgreSQL-backed implementation of
// circulation.RecordStore. It leverages a database adapter and supports
// customizable logging, metrics, tracing, and table configuration.
type RecordStore struct {
	db                adapters.DBAdapter
	catalogTableName  string
	loansTableName    string
	policiesTableName string
	logger            circulation.Logger
	contextualLogger  circulation.ContextualLogger
	metrics           circulation.MetricsCollector
	tracing           circulation.TracingCollector
}

// NewRecordStoreFromPGXPool creates a new RecordStore using a pgx Pool with
// optional configuration.
func NewRecordStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (RecordStore, error) {
	if db == nil {
		return RecordStore{}, circulation.ErrNilDatabaseConnection
	}

	return newRecordStore(adapters.NewPGXAdapter(db), options...)
}

// NewRecordStoreFromSQLDB creates a new RecordStore using a sql.DB with
// optional configuration.
func NewRecordStoreFromSQLDB(db *sql.DB, options ...Option) (RecordStore, error) {
	if db == nil {
		return RecordStore{}, circulation.ErrNilDatabaseConnection
	}

	return newRecordStore(adapters.NewSQLAdapter(db), options...)
}

// NewRecordStoreFromSQLX creates a new RecordStore using a sqlx.DB with
// optional configuration.
func NewRecordStoreFromSQLX(db *sqlx.DB, options ...Option) (RecordStore, error) {
	if db == nil {
		return RecordStore{}, circulation.ErrNilDatabaseConnection
	}

	return newRecordStore(adapters.NewSQLXAdapter(db), options...)
}

func newRecordStore(db adapters.DBAdapter, options ...Option) (RecordStore, error) {
	store := RecordStore{
		db:                db,
		catalogTableName:  defaultCatalogTableName,
		loansTableName:    defaultLoansTableName,
		policiesTableName: defaultPoliciesTableName,
	}

	for _, option := range options {
		if err := option(&store); err != nil {
			return RecordStore{}, err
		}
	}

	return store, nil
}

// QueryCatalogRecords retrieves the catalog records matching the filter,
// most recently updated first. Soft-deleted records are excluded unless the
// filter requests them.
func (s RecordStore) QueryCatalogRecords(ctx context.Context, filter circulation.Filter) ([]circulation.CatalogRecord, error) {
	sqlQuery, buildErr := s.buildCatalogSelectQuery(filter)
	if buildErr != nil {
		s.logError(ctx, logMsgBuildSelectQueryFailed, logAttrError, buildErr.Error())
		return nil, buildErr
	}

	rows, duration, queryErr := s.executeQuery(ctx, opCatalogQuery, sqlQuery)
	if queryErr != nil {
		return nil, queryErr
	}
	defer s.closeRows(ctx, rows)

	records, scanErr := s.scanCatalogRecords(ctx, rows)
	if scanErr != nil {
		return nil, scanErr
	}

	s.logInfo(ctx, logMsgQueryCompleted,
		logAttrOperation, opCatalogQuery,
		logAttrRecordCount, len(records),
		logAttrDurationMS, durationToMilliseconds(duration))

	return records, nil
}

// QueryLoanRecords retrieves the loan records matching the filter, ordered by
// due date.
func (s RecordStore) QueryLoanRecords(ctx context.Context, filter circulation.Filter) ([]circulation.LoanRecord, error) {
	sqlQuery, buildErr := s.buildLoanSelectQuery(filter)
	if buildErr != nil {
		s.logError(ctx, logMsgBuildSelectQueryFailed, logAttrError, buildErr.Error())
		return nil, buildErr
	}

	rows, duration, queryErr := s.executeQuery(ctx, opLoanQuery, sqlQuery)
	if queryErr != nil {
		return nil, queryErr
	}
	defer s.closeRows(ctx, rows)

	loans, scanErr := s.scanLoanRecords(ctx, rows)
	if scanErr != nil {
		return nil, scanErr
	}

	s.logInfo(ctx, logMsgQueryCompleted,
		logAttrOperation, opLoanQuery,
		logAttrRecordCount, len(loans),
		logAttrDurationMS, durationToMilliseconds(duration))

	return loans, nil
}

// CountLoanRecords returns the number of loan records matching the filter
// using a count-only query.
func (s RecordStore) CountLoanRecords(ctx context.Context, filter circulation.Filter) (int, error) {
	sqlQuery, buildErr := s.buildLoanCountQuery(filter)
	if buildErr != nil {
		s.logError(ctx, logMsgBuildSelectQueryFailed, logAttrError, buildErr.Error())
		return 0, buildErr
	}

	rows, duration, queryErr := s.executeQuery(ctx, opLoanCount, sqlQuery)
	if queryErr != nil {
		return 0, queryErr
	}
	defer s.closeRows(ctx, rows)

	var count int
	if rows.Next() {
		if scanErr := rows.Scan(&count); scanErr != nil {
			s.logError(ctx, logMsgScanRowFailed, logAttrError, scanErr.Error())
			return 0, errors.Join(circulation.ErrScanningRowFailed, scanErr)
		}
	}

	s.logInfo(ctx, logMsgQueryCompleted,
		logAttrOperation, opLoanCount,
		logAttrRecordCount, count,
		logAttrDurationMS, durationToMilliseconds(duration))

	return count, nil
}

// feePolicyDocument is the JSONB shape of the per-account policy settings.
type feePolicyDocument struct {
	DailyLateFeeRate float64 `json:"daily_late_fee_rate"`
	GracePeriodDays  int     `json:"grace_period_days"`
	MaxLateFeeCap    float64 `json:"max_late_fee_cap"`
}

// LoadFeePolicy reads the account's fee policy row and unmarshals its
// settings document. Negative values are clamped to zero; an account without
// a policy row gets the default policy.
func (s RecordStore) LoadFeePolicy(ctx context.Context, accountID uuid.UUID) (circulation.FeePolicy, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(s.policiesTableName).
		Select(colSettings).
		Where(goqu.Ex{colAccountID: accountID}).
		Limit(1)

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return circulation.FeePolicy{}, errors.Join(circulation.ErrBuildingQueryFailed, toSQLErr)
	}

	rows, _, queryErr := s.executeQuery(ctx, opPolicyLoad, sqlQuery)
	if queryErr != nil {
		return circulation.FeePolicy{}, queryErr
	}
	defer s.closeRows(ctx, rows)

	if !rows.Next() {
		return circulation.DefaultFeePolicy(), nil
	}

	var settings []byte
	if scanErr := rows.Scan(&settings); scanErr != nil {
		s.logError(ctx, logMsgScanRowFailed, logAttrError, scanErr.Error())
		return circulation.FeePolicy{}, errors.Join(circulation.ErrScanningRowFailed, scanErr)
	}

	var document feePolicyDocument
	if unmarshalErr := jsoniter.ConfigFastest.Unmarshal(settings, &document); unmarshalErr != nil {
		return circulation.FeePolicy{}, errors.Join(circulation.ErrInvalidPolicyDocument, unmarshalErr)
	}

	policy := circulation.FeePolicy{
		DailyLateFeeRate: document.DailyLateFeeRate,
		GracePeriodDays:  document.GracePeriodDays,
		MaxLateFeeCap:    document.MaxLateFeeCap,
	}

	return policy.Normalized(), nil
}

// executeQuery executes the SQL query and returns rows with timing information.
func (s RecordStore) executeQuery(ctx context.Context, operation string, sqlQuery string) (
	adapters.DBRows,
	time.Duration,
	error,
) {

	var span circulation.SpanContext
	if s.tracing != nil {
		ctx, span = s.tracing.StartSpan(ctx, spanNamePrefix+operation, map[string]string{
			logAttrOperation: operation,
		})
	}

	start := time.Now()
	rows, queryErr := s.db.Query(ctx, sqlQuery)
	duration := time.Since(start)

	s.logDebug(ctx, logMsgSQLExecuted+operation,
		logAttrDurationMS, durationToMilliseconds(duration),
		logAttrQuery, sqlQuery)

	if queryErr != nil {
		s.logError(ctx, logMsgDBQueryFailed, logAttrError, queryErr.Error(), logAttrQuery, sqlQuery)

		if s.metrics != nil {
			s.metrics.IncrementCounter(metricQueryErrors, map[string]string{logAttrOperation: operation})
		}

		if span != nil {
			s.tracing.FinishSpan(span, spanStatusErr, map[string]string{logAttrError: queryErr.Error()})
		}

		return nil, duration, errors.Join(circulation.ErrQueryingRecordsFailed, queryErr)
	}

	if s.metrics != nil {
		s.metrics.RecordDuration(metricQueryDuration, duration, map[string]string{logAttrOperation: operation})
	}

	if span != nil {
		s.tracing.FinishSpan(span, spanStatusOK, nil)
	}

	return rows, duration, nil
}

// closeRows safely closes database rows and logs any errors.
func (s RecordStore) closeRows(ctx context.Context, rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		s.logWarn(ctx, logMsgCloseRowsFailed, logAttrError, closeErr.Error())
	}
}

func (s RecordStore) scanCatalogRecords(ctx context.Context, rows adapters.DBRows) ([]circulation.CatalogRecord, error) {
	records := make([]circulation.CatalogRecord, 0)

	for rows.Next() {
		var record circulation.CatalogRecord
		var deletedAt sql.NullTime

		scanErr := rows.Scan(
			&record.ID,
			&record.AccountID,
			&record.Title,
			&record.Author,
			&record.ISBN,
			&record.CreatedAt,
			&record.UpdatedAt,
			&deletedAt,
		)
		if scanErr != nil {
			s.logError(ctx, logMsgScanRowFailed, logAttrError, scanErr.Error())
			return nil, errors.Join(circulation.ErrScanningRowFailed, scanErr)
		}

		if deletedAt.Valid {
			deletedAtValue := deletedAt.Time
			record.DeletedAt = &deletedAtValue
		}

		records = append(records, record)
	}

	return records, nil
}

func (s RecordStore) scanLoanRecords(ctx context.Context, rows adapters.DBRows) ([]circulation.LoanRecord, error) {
	loans := make([]circulation.LoanRecord, 0)

	for rows.Next() {
		var loan circulation.LoanRecord
		var returnedAt sql.NullTime
		var status string

		scanErr := rows.Scan(
			&loan.ID,
			&loan.AccountID,
			&loan.MemberID,
			&loan.BookID,
			&loan.DueDate,
			&returnedAt,
			&loan.FeeAmount,
			&loan.FeePaid,
			&loan.FeeWaived,
			&status,
		)
		if scanErr != nil {
			s.logError(ctx, logMsgScanRowFailed, logAttrError, scanErr.Error())
			return nil, errors.Join(circulation.ErrScanningRowFailed, scanErr)
		}

		if returnedAt.Valid {
			returnedAtValue := returnedAt.Time
			loan.ReturnedAt = &returnedAtValue
		}

		loan.Status = circulation.LoanStatus(status)
		loans = append(loans, loan)
	}

	return loans, nil
}

func (s RecordStore) buildCatalogSelectQuery(filter circulation.Filter) (sqlQueryString, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(s.catalogTableName).
		Select(colID, colAccountID, colTitle, colAuthor, colISBN, colCreatedAt, colUpdatedAt, colDeletedAt).
		Order(goqu.I(colUpdatedAt).Desc())

	selectStmt = addWhereClause(selectStmt, filter, true)

	if filter.Limit() > 0 {
		selectStmt = selectStmt.Limit(filter.Limit())
	}

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(circulation.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (s RecordStore) buildLoanSelectQuery(filter circulation.Filter) (sqlQueryString, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(s.loansTableName).
		Select(colID, colAccountID, colMemberID, colBookID, colDueDate, colReturnedAt, colFeeAmount, colFeePaid, colFeeWaived, colStatus).
		Order(goqu.I(colDueDate).Asc())

	selectStmt = addWhereClause(selectStmt, filter, false)

	if filter.Limit() > 0 {
		selectStmt = selectStmt.Limit(filter.Limit())
	}

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(circulation.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (s RecordStore) buildLoanCountQuery(filter circulation.Filter) (sqlQueryString, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(s.loansTableName).
		Select(goqu.COUNT(goqu.Star()))

	selectStmt = addWhereClause(selectStmt, filter, false)

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(circulation.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

// addWhereClause compiles the filter into WHERE conditions: the account
// scope, the predicate groups OR-ed together, and the soft-delete guard for
// collections that carry a deleted_at column.
func addWhereClause(selectStmt *goqu.SelectDataset, filter circulation.Filter, guardSoftDeleted bool) *goqu.SelectDataset {
	itemsExpressions := make([]goqu.Expression, 0)

	for _, item := range filter.Items() {
		if len(item.Predicates()) == 0 {
			continue
		}

		predicateExpressions := make([]goqu.Expression, 0)

		for _, predicate := range item.Predicates() {
			switch predicate.Kind() {
			case circulation.KindContainsFold:
				pattern := "%" + escapeLikePattern(predicate.ValString()) + "%"
				predicateExpressions = append(predicateExpressions, goqu.C(predicate.Key()).ILike(pattern))

			default:
				predicateExpressions = append(predicateExpressions, goqu.Ex{predicate.Key(): predicate.Val()})
			}
		}

		var predicatesExpressionList exp.ExpressionList

		if item.AllPredicatesMustMatch() {
			predicatesExpressionList = goqu.And(predicateExpressions...)
		} else {
			predicatesExpressionList = goqu.Or(predicateExpressions...)
		}

		itemsExpressions = append(itemsExpressions, predicatesExpressionList)
	}

	whereExpressions := []goqu.Expression{goqu.Ex{colAccountID: filter.AccountID()}}

	if len(itemsExpressions) > 0 {
		whereExpressions = append(whereExpressions, goqu.Or(itemsExpressions...))
	}

	if guardSoftDeleted && !filter.IncludesSoftDeleted() {
		whereExpressions = append(whereExpressions, goqu.C(colDeletedAt).IsNull())
	}

	return selectStmt.Where(goqu.And(whereExpressions...))
}

// escapeLikePattern escapes the LIKE metacharacters in a user-supplied value
// so it matches literally inside an ILIKE pattern.
func escapeLikePattern(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	value = strings.ReplaceAll(value, `%`, `\%`)
	value = strings.ReplaceAll(value, `_`, `\_`)

	return value
}

// logging helpers prefer the contextual logger when both are configured.

func (s RecordStore) logDebug(ctx context.Context, msg string, args ...any) {
	if s.contextualLogger != nil {
		s.contextualLogger.DebugContext(ctx, msg, args...)
		return
	}

	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s RecordStore) logInfo(ctx context.Context, msg string, args ...any) {
	if s.contextualLogger != nil {
		s.contextualLogger.InfoContext(ctx, msg, args...)
		return
	}

	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}

func (s RecordStore) logWarn(ctx context.Context, msg string, args ...any) {
	if s.contextualLogger != nil {
		s.contextualLogger.WarnContext(ctx, msg, args...)
		return
	}

	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}

func (s RecordStore) logError(ctx context.Context, msg string, args ...any) {
	if s.contextualLogger != nil {
		s.contextualLogger.ErrorContext(ctx, msg, args...)
		return
	}

	if s.logger != nil {
		s.logger.Error(msg, args...)
	}
}

// durationToMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func durationToMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}
