package collection

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/callbridge/backend/internal/domain/collection"
	"github.com/callbridge/backend/internal/domain/shared"
	"github.com/callbridge/backend/internal/infrastructure/logger"
	"github.com/callbridge/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// DefaultProfileTTL is how long a cached pre-call profile is served
const DefaultProfileTTL = 60 * time.Second

const (
	profileCachePrefix = "callbridge:precall:"
	spanService        = "call_outcome"
)

// Caller-facing fault messages
const (
	MsgCallerNumberRequired = "caller_number parameter is required in query string"
	MsgCallerNumberInvalid  = "Invalid caller_number format"
	MsgCallerNotFound       = "Customer not found with the provided caller number"
	MsgNoData               = "No data provided"
	MsgBodyRequired         = "Request body is required"
	MsgAccountRequired      = "account_number is required in user_info"
	MsgAccountMissing       = "Missing required field: account_number"
	MsgCustomerNotFound     = "Customer not found"
)

// CallOutcomeOption configures a CallOutcomeService
type CallOutcomeOption func(*CallOutcomeService)

// WithProfileCache serves pre-call lookups from cache for ttl
func WithProfileCache(cache shared.Cache, ttl time.Duration) CallOutcomeOption {
	return func(s *CallOutcomeService) {
		s.cache = cache
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithOutcomeMetrics reports engine measurements to m
func WithOutcomeMetrics(m OutcomeMetrics) CallOutcomeOption {
	return func(s *CallOutcomeService) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithClock replaces the wall clock
func WithClock(now func() time.Time) CallOutcomeOption {
	return func(s *CallOutcomeService) {
		if now != nil {
			s.now = now
		}
	}
}

// CallOutcomeService resolves caller profiles before a call and reconciles
// outcome payloads after it
type CallOutcomeService struct {
	repo     collection.ProfileRepository
	scope    TransactionScope
	cache    shared.Cache
	cacheTTL time.Duration
	metrics  OutcomeMetrics
	logger   *zap.Logger
	now      func() time.Time
}

// NewCallOutcomeService creates a new CallOutcomeService. repo serves
// read-only lookups; scope runs each outcome in one transaction.
func NewCallOutcomeService(
	repo collection.ProfileRepository,
	scope TransactionScope,
	baseLogger *zap.Logger,
	opts ...CallOutcomeOption,
) *CallOutcomeService {
	if baseLogger == nil {
		baseLogger = zap.NewNop()
	}
	s := &CallOutcomeService{
		repo:     repo,
		scope:    scope,
		cacheTTL: DefaultProfileTTL,
		metrics:  noopMetrics{},
		logger:   baseLogger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ResolvePreCallProfile looks up the customer whose primary phone number is
// callerNumber, with their latest loan and interaction
func (s *CallOutcomeService) ResolvePreCallProfile(ctx context.Context, callerNumber string) (*PreCallProfile, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, spanService, "resolve_pre_call_profile")
	defer span.End()

	profile, err := s.resolvePreCallProfile(ctx, callerNumber)
	telemetry.RecordError(span, err)
	return profile, err
}

func (s *CallOutcomeService) resolvePreCallProfile(ctx context.Context, callerNumber string) (*PreCallProfile, error) {
	callerNumber = strings.TrimSpace(callerNumber)
	if callerNumber == "" {
		s.metrics.ObserveLookup(ResultValidation)
		return nil, shared.NewValidationFault(MsgCallerNumberRequired)
	}
	phone, err := strconv.ParseInt(callerNumber, 10, 64)
	if err != nil {
		s.metrics.ObserveLookup(ResultValidation)
		return nil, shared.NewValidationFault(MsgCallerNumberInvalid)
	}

	if profile := s.cachedProfile(ctx, phone); profile != nil {
		telemetry.Annotate(ctx, telemetry.CacheHit())
		s.metrics.ObserveLookup(ResultCacheHit)
		return profile, nil
	}

	customer, err := s.repo.FindCustomerByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.metrics.ObserveLookup(ResultNotFound)
			return nil, shared.NewNotFoundFault(MsgCallerNotFound)
		}
		s.metrics.ObserveLookup(ResultError)
		return nil, s.persistenceFault("find customer by phone", err)
	}

	loan, err := s.repo.FindLatestLoan(ctx, customer.ID)
	if err != nil {
		s.metrics.ObserveLookup(ResultError)
		return nil, s.persistenceFault("find latest loan", err)
	}
	interaction, err := s.repo.FindLatestInteraction(ctx, customer.ID)
	if err != nil {
		s.metrics.ObserveLookup(ResultError)
		return nil, s.persistenceFault("find latest interaction", err)
	}

	profile := NewPreCallProfile(customer, loan, interaction)
	s.storeProfile(ctx, phone, profile)
	s.metrics.ObserveLookup(ResultSuccess)
	return profile, nil
}

// ApplyPostCallOutcome reconciles the payload against the customer named by
// user_info.account_number and their latest loan, then records an
// interaction. Everything is written in one transaction; on any failure
// nothing is.
func (s *CallOutcomeService) ApplyPostCallOutcome(ctx context.Context, req *PostCallOutcomeRequest) (*OutcomeResult, error) {
	start := s.now()
	directive := collection.NoChange
	if req != nil {
		directive = collection.ClassifyDisposition(req.OutcomeDetails.FinalDisposition.String())
	}

	ctx, span := telemetry.StartServiceSpan(ctx, spanService, "apply_post_call_outcome",
		telemetry.Directive(directive.String()))
	defer span.End()

	result, err := s.applyPostCallOutcome(ctx, req, directive)
	if err != nil {
		telemetry.RecordError(span, err)
	} else {
		span.SetAttributes(telemetry.Outcome(result.CustomerUpdated, result.LoanUpdated, result.InteractionID)...)
	}
	s.metrics.ObserveOutcome(directive.String(), outcomeLabel(err), s.now().Sub(start))
	return result, err
}

func (s *CallOutcomeService) applyPostCallOutcome(
	ctx context.Context,
	req *PostCallOutcomeRequest,
	directive collection.Directive,
) (*OutcomeResult, error) {
	if req == nil {
		return nil, shared.NewValidationFault(MsgNoData).WithSummary(MsgBodyRequired)
	}
	accountNumber := req.AccountNumber()
	if accountNumber == "" {
		return nil, shared.NewValidationFault(MsgAccountRequired).WithSummary(MsgAccountMissing)
	}

	updates := req.UserInfo.Updates()
	details := req.OutcomeDetails
	ctx, _ = logger.WithAccountNumber(ctx, s.logger, accountNumber)
	log := logger.WithLogger(ctx, s.logger).Zap()
	telemetry.Annotate(ctx, telemetry.AccountNumber(accountNumber))

	var (
		result    *OutcomeResult
		cacheKeys []string
	)
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		repo := repos.ProfileRepo()
		now := s.now().UTC()

		customer, err := repo.FindCustomerByAccount(ctx, accountNumber)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewNotFoundFault("Customer not found with account number: " + accountNumber).
					WithSummary(MsgCustomerNotFound)
			}
			return err
		}
		cacheKeys = append(cacheKeys, phoneKey(customer.PrimaryPhoneNumber))

		customerChanges := collection.Reconcile(customer, updates, collection.CustomerFields)
		s.logChanges(log, "customer", customerChanges)
		customerFields := fieldNames(customerChanges.Net())
		if len(customerFields) > 0 {
			customer.Touch(now)
			if err := repo.UpdateCustomer(ctx, customer, customerFields); err != nil {
				return s.persistenceFault("update customer", err)
			}
			cacheKeys = append(cacheKeys, phoneKey(customer.PrimaryPhoneNumber))
		}

		loan, err := repo.FindLatestLoan(ctx, customer.ID)
		if err != nil {
			return err
		}
		var (
			loanChanges collection.ReconcileResult
			loanFields  []string
		)
		if loan != nil {
			loanChanges = s.reconcileLoan(loan, updates, details, directive)
			s.logChanges(log, "loan", loanChanges)
			loanFields = fieldNames(loanChanges.Net())
			if len(loanFields) > 0 {
				loan.Touch(now)
				if err := repo.UpdateLoan(ctx, loan, loanFields); err != nil {
					return s.persistenceFault("update loan", err)
				}
			}
		}

		interaction := collection.NewInteraction(
			customer.ID,
			s.creationDate(req.Metadata.CreationDate.String(), now),
			now,
			details.ContactType.String(),
			details.FinalDisposition.String(),
			req.Summary().Note(),
		)
		if err := repo.CreateInteraction(ctx, interaction); err != nil {
			return err
		}

		result = &OutcomeResult{
			CustomerUpdated: len(customerFields) > 0,
			LoanUpdated:     len(loanFields) > 0,
			InteractionID:   interaction.ID,
			Directive:       directive,
			CustomerFields:  customerFields,
			LoanFields:      loanFields,
			SkippedValues:   len(customerChanges.Faults) + len(loanChanges.Faults),
		}
		return nil
	})
	if err != nil {
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) {
			return nil, domainErr
		}
		return nil, s.persistenceFault("apply post-call outcome", err)
	}

	s.metrics.ObserveFieldChanges("customer", len(result.CustomerFields))
	s.metrics.ObserveFieldChanges("loan", len(result.LoanFields))
	s.invalidateProfiles(ctx, cacheKeys)

	log.Info("Call outcome processed",
		zap.Bool("customer_updated", result.CustomerUpdated),
		zap.Bool("loan_updated", result.LoanUpdated),
		zap.String("directive", directive.String()),
		zap.Int64("interaction_id", result.InteractionID))
	return result, nil
}

// reconcileLoan applies financial fields, policy dates, the agreed amount
// and date overrides, and finally the disposition directive
func (s *CallOutcomeService) reconcileLoan(
	loan *collection.Loan,
	updates collection.Updates,
	details OutcomeDetailsDTO,
	directive collection.Directive,
) collection.ReconcileResult {
	changes := collection.Reconcile(loan, updates, collection.LoanFinancialFields)
	changes.Merge(collection.Reconcile(loan, updates, collection.LoanPolicyDateFields))

	if agreed := details.UserAgreedPaymentAmount.String(); agreed != "" {
		override, err := loan.OverrideDueAmount(agreed)
		changes.Merge(override)
		appendFault(&changes, "user_agreed_payment_amount", err)
	}
	if payLater := details.PayLaterDate.String(); payLater != "" {
		override, err := loan.OverridePayLaterDate(payLater)
		changes.Merge(override)
		appendFault(&changes, "pay_later_date", err)
	}

	changes.Applied = append(changes.Applied, loan.ApplyDirective(directive)...)
	return changes
}

func appendFault(r *collection.ReconcileResult, field string, err error) {
	var pf *collection.ParseFault
	if errors.As(err, &pf) {
		pf.Field = field
		r.Faults = append(r.Faults, pf)
	}
}

// creationDate parses the metadata timestamp, falling back to now
func (s *CallOutcomeService) creationDate(raw string, now time.Time) time.Time {
	if raw == "" {
		return now
	}
	t, err := collection.NormalizeDate(raw, collection.Timestamp)
	if err != nil {
		s.logger.Warn("Ignoring unparseable creation_date",
			zap.String("value", raw),
			zap.Error(err))
		return now
	}
	return t
}

func (s *CallOutcomeService) logChanges(log *zap.Logger, entity string, r collection.ReconcileResult) {
	for _, c := range r.Applied {
		log.Debug("Field reconciled",
			zap.String("entity", entity),
			zap.String("field", c.Field),
			zap.Stringer("old", c.Old),
			zap.Stringer("new", c.New))
	}
	for _, f := range r.Faults {
		log.Warn("Skipped unparseable value",
			zap.String("entity", entity),
			zap.String("field", f.Field),
			zap.String("value", f.Value))
	}
}

func (s *CallOutcomeService) persistenceFault(op string, err error) error {
	s.logger.Error("Collections store failure",
		zap.String("operation", op),
		zap.Error(err))
	return shared.NewPersistenceFault(err)
}

func (s *CallOutcomeService) cachedProfile(ctx context.Context, phone int64) *PreCallProfile {
	if s.cache == nil {
		return nil
	}
	key := profileCachePrefix + strconv.FormatInt(phone, 10)
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, shared.ErrCacheMiss) {
			logger.WithLogger(ctx, s.logger).Warn("Profile cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil
	}
	var profile PreCallProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		logger.WithLogger(ctx, s.logger).Warn("Discarding corrupt cached profile", zap.String("key", key), zap.Error(err))
		return nil
	}
	return &profile
}

func (s *CallOutcomeService) storeProfile(ctx context.Context, phone int64, profile *PreCallProfile) {
	if s.cache == nil {
		return
	}
	key := profileCachePrefix + strconv.FormatInt(phone, 10)
	data, err := json.Marshal(profile)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
		logger.WithLogger(ctx, s.logger).Warn("Profile cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *CallOutcomeService) invalidateProfiles(ctx context.Context, keys []string) {
	if s.cache == nil {
		return
	}
	keys = compactKeys(keys)
	if len(keys) == 0 {
		return
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		logger.WithLogger(ctx, s.logger).Warn("Profile cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

// phoneKey returns the cache key for a phone number, or "" when unset
func phoneKey(phone *int64) string {
	if phone == nil {
		return ""
	}
	return profileCachePrefix + strconv.FormatInt(*phone, 10)
}

func compactKeys(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := keys[:0]
	for _, k := range keys {
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

func fieldNames(changes []collection.Change) []string {
	names := make([]string, len(changes))
	for i, c := range changes {
		names[i] = c.Field
	}
	return names
}

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return ResultSuccess
	case errors.Is(err, shared.ErrValidation):
		return ResultValidation
	case errors.Is(err, shared.ErrNotFound):
		return ResultNotFound
	default:
		return ResultError
	}
}
