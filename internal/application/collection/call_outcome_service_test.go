package collection

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/callbridge/backend/internal/domain/collection"
	"github.com/callbridge/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProfileRepository is a mock implementation of collection.ProfileRepository
type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) FindCustomerByPhone(ctx context.Context, phone int64) (*collection.Customer, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*collection.Customer), args.Error(1)
}

func (m *MockProfileRepository) FindCustomerByAccount(ctx context.Context, accountNumber string) (*collection.Customer, error) {
	args := m.Called(ctx, accountNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*collection.Customer), args.Error(1)
}

func (m *MockProfileRepository) FindLatestLoan(ctx context.Context, customerID int64) (*collection.Loan, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*collection.Loan), args.Error(1)
}

func (m *MockProfileRepository) FindLatestInteraction(ctx context.Context, customerID int64) (*collection.Interaction, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*collection.Interaction), args.Error(1)
}

func (m *MockProfileRepository) UpdateCustomer(ctx context.Context, customer *collection.Customer, fields []string) error {
	args := m.Called(ctx, customer, fields)
	return args.Error(0)
}

func (m *MockProfileRepository) UpdateLoan(ctx context.Context, loan *collection.Loan, fields []string) error {
	args := m.Called(ctx, loan, fields)
	return args.Error(0)
}

func (m *MockProfileRepository) CreateInteraction(ctx context.Context, interaction *collection.Interaction) error {
	args := m.Called(ctx, interaction)
	return args.Error(0)
}

// MockCache is a mock implementation of shared.Cache
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCache) Delete(ctx context.Context, keys ...string) error {
	args := m.Called(ctx, keys)
	return args.Error(0)
}

func (m *MockCache) Close() error {
	return m.Called().Error(0)
}

// MockOutcomeMetrics is a mock implementation of OutcomeMetrics
type MockOutcomeMetrics struct {
	mock.Mock
}

func (m *MockOutcomeMetrics) ObserveOutcome(directive, result string, elapsed time.Duration) {
	m.Called(directive, result, elapsed)
}

func (m *MockOutcomeMetrics) ObserveLookup(result string) {
	m.Called(result)
}

func (m *MockOutcomeMetrics) ObserveFieldChanges(entity string, n int) {
	m.Called(entity, n)
}

// recordingScope runs fn without a transaction and records whether the
// result would have committed or rolled back
type recordingScope struct {
	repo       collection.ProfileRepository
	rolledBack bool
	committed  bool
}

func (s *recordingScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	err := fn(NewNoOpTransactionScope(s.repo))
	s.rolledBack = err != nil
	s.committed = err == nil
	return err
}

var fixedNow = time.Date(2025, time.May, 20, 14, 3, 11, 0, time.UTC)

func testCustomer() *collection.Customer {
	first, last := "John", "Doe"
	phone := int64(5551234567)
	return &collection.Customer{
		BaseEntity:         shared.BaseEntity{ID: 1},
		AccountNumber:      "1001234567",
		FirstName:          &first,
		LastName:           &last,
		PrimaryPhoneNumber: &phone,
		IsEligibleToCall:   true,
	}
}

func testLoan() *collection.Loan {
	due := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	product := "Auto Loan"
	return &collection.Loan{
		BaseEntity:                   shared.BaseEntity{ID: 10},
		CustomerID:                   1,
		ProductName:                  &product,
		DueAmount:                    decimal.RequireFromString("1285.50"),
		NoOfMissedInstallments:       1,
		ContractualInstallmentAmount: decimal.RequireFromString("428.50"),
		InterestLateFee:              decimal.RequireFromString("45.00"),
		MinimumAmount:                decimal.RequireFromString("500.00"),
		DueDate:                      &due,
		Status:                       collection.LoanStatusActive,
	}
}

func decodeRequest(t *testing.T, payload string) *PostCallOutcomeRequest {
	t.Helper()
	var req PostCallOutcomeRequest
	require.NoError(t, json.Unmarshal([]byte(payload), &req))
	return &req
}

func newTestService(repo *MockProfileRepository, opts ...CallOutcomeOption) *CallOutcomeService {
	opts = append([]CallOutcomeOption{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewCallOutcomeService(repo, NewNoOpTransactionScope(repo), nil, opts...)
}

func assignInteractionID(id int64) func(mock.Arguments) {
	return func(args mock.Arguments) {
		args.Get(1).(*collection.Interaction).ID = id
	}
}

func TestApplyPostCallOutcome_Resolved(t *testing.T) {
	repo := new(MockProfileRepository)
	loan := testLoan()
	var saved *collection.Interaction

	repo.On("FindCustomerByAccount", mock.Anything, "1001234567").Return(testCustomer(), nil)
	repo.On("FindLatestLoan", mock.Anything, int64(1)).Return(loan, nil)
	repo.On("UpdateLoan", mock.Anything, loan,
		[]string{"status", "no_of_missed_installments", "due_amount"}).Return(nil)
	repo.On("CreateInteraction", mock.Anything, mock.AnythingOfType("*collection.Interaction")).
		Run(func(args mock.Arguments) {
			saved = args.Get(1).(*collection.Interaction)
			saved.ID = 42
		}).Return(nil)

	svc := newTestService(repo)
	result, err := svc.ApplyPostCallOutcome(context.Background(), decodeRequest(t, `{
		"user_info": {"account_number": "1001234567"},
		"outcome_details": {"final_disposition": "resolved"}
	}`))

	require.NoError(t, err)
	assert.False(t, result.CustomerUpdated)
	assert.True(t, result.LoanUpdated)
	assert.Equal(t, int64(42), result.InteractionID)
	assert.Equal(t, collection.SetCurrent, result.Directive)

	assert.True(t, loan.DueAmount.IsZero())
	assert.Equal(t, int64(0), loan.NoOfMissedInstallments)
	assert.Equal(t, collection.LoanStatusCurrent, loan.Status)
	assert.Equal(t, fixedNow, loan.UpdatedAt)

	require.NotNil(t, saved)
	assert.Equal(t, "resolved", saved.Status)
	assert.Equal(t, collection.DefaultInteractionSource, saved.Source)
	assert.Equal(t, fixedNow, saved.CreationDate)
	repo.AssertNotCalled(t, "UpdateCustomer", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertExpectations(t)
}

func TestApplyPostCallOutcome_PromiseToPay(t *testing.T) {
	repo := new(MockProfileRepository)
	loan := testLoan()
	var saved *collection.Interaction

	repo.On("FindCustomerByAccount", mock.Anything, "1001234567").Return(testCustomer(), nil)
	repo.On("FindLatestLoan", mock.Anything, int64(1)).Return(loan, nil)
	repo.On("UpdateLoan", mock.Anything, loan, []string{"due_amount", "acceptable_pay_later_date", "status"}).Return(nil)
	repo.On("CreateInteraction", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			saved = args.Get(1).(*collection.Interaction)
			saved.ID = 43
		}).Return(nil)

	svc := newTestService(repo)
	result, err := svc.ApplyPostCallOutcome(context.Background(), decodeRequest(t, `{
		"user_info": {"account_number": "1001234567"},
		"outcome_details": {
			"final_disposition": "promise_to_pay",
			"user_agreed_payment_amount": "900.00",
			"pay_later_date": "2025-06-15",
			"contact_type": "Outbound Call",
			"call_type": "outbound",
			"disposition_trace": ["greeting", "negotiation", "promise_to_pay"]
		},
		"metadata": {"creation_date": "2025-05-20 09:15:00.000000+0000", "notes": "polite"},
		"call_outcome_note": "Customer agreed to pay"
	}`))

	require.NoError(t, err)
	assert.True(t, result.LoanUpdated)
	assert.True(t, loan.DueAmount.Equal(decimal.RequireFromString("900.00")))
	assert.Equal(t, int64(1), loan.NoOfMissedInstallments)
	assert.Equal(t, collection.LoanStatusArranged, loan.Status)
	require.NotNil(t, loan.AcceptablePayLaterDate)
	assert.Equal(t, time.June, loan.AcceptablePayLaterDate.Month())

	require.NotNil(t, saved)
	assert.Contains(t, saved.Notes, "Agreed Payment Amount: $900.00")
	assert.Equal(t,
		"Call Type: outbound; Disposition Trace: greeting → negotiation → promise_to_pay; "+
			"Agreed Payment Amount: $900.00; Payment Date Agreed: 2025-06-15; "+
			"Outcome Note: Customer agreed to pay; Additional Notes: polite",
		saved.Notes)
	assert.Equal(t, "Outbound Call", saved.Source)
	assert.Equal(t, "promise_to_pay", saved.Status)
	assert.Equal(t, 9, saved.CreationDate.Hour())
	repo.AssertExpectations(t)
}

func TestApplyPostCallOutcome_Validation(t *testing.T) {
	t.Run("missing body", func(t *testing.T) {
		repo := new(MockProfileRepository)
		svc := newTestService(repo)

		result, err := svc.ApplyPostCallOutcome(context.Background(), nil)

		assert.Nil(t, result)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, shared.CodeValidation, domainErr.Code)
		assert.Equal(t, MsgNoData, domainErr.Message)
		assert.Equal(t, MsgBodyRequired, domainErr.Summary)
	})

	t.Run("missing account number", func(t *testing.T) {
		repo := new(MockProfileRepository)
		svc := newTestService(repo)

		_, err := svc.ApplyPostCallOutcome(context.Background(), decodeRequest(t, `{
			"user_info": {"first_name": "Jane"},
			"outcome_details": {"final_disposition": "resolved"}
		}`))

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, MsgAccountRequired, domainErr.Message)
		assert.Equal(t, MsgAccountMissing, domainErr.Summary)
		repo.AssertNotCalled(t, "FindCustomerByAccount", mock.Anything, mock.Anything)
		repo.AssertNotCalled(t, "CreateInteraction", mock.Anything, mock.Anything)
	})

	t.Run("blank account number", func(t *testing.T) {
		repo := new(MockProfileRepository)
		svc := newTestService(repo)

		_, err := svc.ApplyPostCallOutcome(context.Background(), decodeRequest(t, `{"user_info": {"account_number": "  "}}`))

		assert.ErrorIs(t, err, shared.ErrValidation)
	})
}

func TestApplyPostCallOutcome_UnknownAccount(t *testing.T) {
	repo := new(MockProfileRepository)
	repo.On("FindCustomerByAccount", mock.Anything, "999").Return(nil, shared.ErrNotFound)

	svc := newTestService(repo)
	_, err := svc.ApplyPostCallOutcome(context.Background(), decodeRequest(t, `{"user_info": {"account_number": 999}}`))

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, shared.CodeNotFound, domainErr.Code)
	assert.Equal(t, "Customer not found with account number: 999", domainErr.Message)
	assert.Equal(t, MsgCustomerNotFound, domainErr.Summary)
	repo.AssertNotCalled(t, "CreateInteraction", mock.Anything, mock.Anything)
}

func TestApplyPostCallOutcome_CustomerFields(t *testing.T) {
	repo := new(MockProfileRepository)
	customer := testCustomer()

	repo.On("FindCustomerByAccount", mock.Anything, "1001234567").Return(customer, nil)
	repo.On("UpdateCustomer", mock.Anything, customer, []string{"last_name", "zip_code"}).Return(nil)
	repo.On("FindLatestLoan", mock.Anything, int64(1)).Return(nil, nil)
	repo.On("CreateInteraction", mock.Anything, mock.Anything).Run(assignInteractionID(7)).Return(nil)

	svc := newTestService(repo)
	result, err := svc.ApplyPostCallOutcome(context.Background(), decodeRequest(t, `{
		"user_info": {
			"account_number": "1001234567",
			"first_name": "John",
			"last_name": "Smith",
			"zip_code": 10001,
			"dob": "15/05/1980",
			"favourite_colour": "blue",
			"due_amount": "100.00"
		},
		"outcome_details": {"final_disposition": "no_answer"}
	}`))

	require.NoError(t, err)
	assert.True(t, result.CustomerUpdated)
	assert.False(t, result.LoanUpdated)
	assert.Equal(t, []string{"last_name", "zip_code"}, result.CustomerFields)
	assert.Equal(t, 1, result.SkippedValues)
	assert.Equal(t, "Smith", *customer.LastName)
	assert.Nil(t, customer.DOB)
	assert.Equal(t, fixedNow, customer.UpdatedAt)
	repo.AssertExpectations(t)
}

func TestApplyPostCallOutcome_Idempotent(t *testing.T) {
	repo := new(MockProfileRepository)
	customer := testCustomer()
	loan := testLoan()
	payload := `{
		"user_info": {"account_number": "1001234567", "last_name": "Smith", "minimum_amount": "250.00"},
		"outcome_details": {"final_disposition": "paid"}
	}`

	repo.On("FindCustomerByAccount", mock.Anything, "1001234567").Return(customer, nil)
	repo.On("FindLatestLoan", mock.Anything, int64(1)).Return(loan, nil)
	repo.On("UpdateCustomer", mock.Anything, customer, mock.Anything).Return(nil).Once()
	repo.On("UpdateLoan", mock.Anything, loan, mock.Anything).Return(nil).Once()
	repo.On("CreateInteraction", mock.Anything, mock.Anything).Run(assignInteractionID(1)).Return(nil).Twice()

	svc := newTestService(repo)
	first, err := svc.ApplyPostCallOutcome(context.Background(), decodeRequest(t, payload))
	require.NoError(t, err)
	second, err := svc.ApplyPostCallOutcome(context.Background(), decodeRequest(t, payload))
	require.NoError(t, err)

	assert.True(t, first.CustomerUpdated)
	assert.True(t, first.LoanUpdated)
	assert.False(t, second.CustomerUpdated)
	assert.False(t, second.LoanUpdated)
	repo.AssertNumberOfCalls(t, "CreateInteraction", 2)
	repo.AssertExpectations(t)
}

func TestApplyPostCallOutcome_DirectiveOverridesPayloadAmount(t *testing.T) {
	repo := new(MockProfileRepository)
	loan := testLoan()
	loan.Status = collection.LoanStatusCurrent
	loan.NoOfMissedInstallments = 0
	loan.DueAmount = decimal.Zero

	repo.On("FindCustomerByAccount", mock.Anything, "1001234567").Return(testCustomer(), nil)
	repo.On("FindLatestLoan", mock.Anything, int64(1)).Return(loan, nil)
	repo.On("CreateInteraction", mock.Anything, mock.Anything).Run(assignInteractionID(5)).Return(nil)

	svc := newTestService(repo)
	result, err := svc.ApplyPostCallOutcome(context.Background(), decodeRequest(t, `{
		"user_info": {"account_number": "1001234567", "due_amount": 500},
		"outcome_details": {"final_disposition": "resolved"}
	}`))

	require.NoError(t, err)
	assert.False(t, result.LoanUpdated)
	assert.True(t, loan.DueAmount.IsZero())
	repo.AssertNotCalled(t, "UpdateLoan", mock.Anything, mock.Anything, mock.Anything)
}

func TestApplyPostCallOutcome_PersistenceFault(t *testing.T) {
	repo := new(MockProfileRepository)
	loan := testLoan()
	storeErr := errors.New("connection reset by peer")

	repo.On("FindCustomerByAccount", mock.Anything, "1001234567").Return(testCustomer(), nil)
	repo.On("FindLatestLoan", mock.Anything, int64(1)).Return(loan, nil)
	repo.On("UpdateLoan", mock.Anything, loan, mock.Anything).Return(storeErr)

	cache := new(MockCache)
	metrics := new(MockOutcomeMetrics)
	metrics.On("ObserveOutcome", "set_current", ResultError, mock.Anything).Return()

	scope := &recordingScope{repo: repo}
	svc := NewCallOutcomeService(repo, scope, nil,
		WithClock(func() time.Time { return fixedNow }),
		WithProfileCache(cache, time.Minute),
		WithOutcomeMetrics(metrics))

	result, err := svc.ApplyPostCallOutcome(context.Background(), decodeRequest(t, `{
		"user_info": {"account_number": "1001234567"},
		"outcome_details": {"final_disposition": "resolved"}
	}`))

	assert.Nil(t, result)
	assert.ErrorIs(t, err, shared.ErrPersistence)
	assert.ErrorIs(t, err, storeErr)
	assert.NotContains(t, err.(*shared.DomainError).Message, "connection reset")
	assert.True(t, scope.rolledBack)
	repo.AssertNotCalled(t, "CreateInteraction", mock.Anything, mock.Anything)
	cache.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	metrics.AssertExpectations(t)
}

func TestApplyPostCallOutcome_WriteNotFoundIsPersistenceFault(t *testing.T) {
	repo := new(MockProfileRepository)
	customer := testCustomer()

	repo.On("FindCustomerByAccount", mock.Anything, "1001234567").Return(customer, nil)
	repo.On("UpdateCustomer", mock.Anything, customer, []string{"primary_phone_number"}).Return(shared.ErrNotFound)

	scope := &recordingScope{repo: repo}
	svc := NewCallOutcomeService(repo, scope, nil, WithClock(func() time.Time { return fixedNow }))

	result, err := svc.ApplyPostCallOutcome(context.Background(), decodeRequest(t, `{
		"user_info": {"account_number": "1001234567", "primary_phone_number": "5559876543"},
		"outcome_details": {"final_disposition": "resolved"}
	}`))

	assert.Nil(t, result)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, shared.CodePersistence, domainErr.Code)
	assert.Equal(t, "Failed to persist changes", domainErr.Message)
	assert.True(t, scope.rolledBack)
	repo.AssertNotCalled(t, "FindLatestLoan", mock.Anything, mock.Anything)
}

func TestApplyPostCallOutcome_InvalidatesProfileCache(t *testing.T) {
	repo := new(MockProfileRepository)
	customer := testCustomer()

	repo.On("FindCustomerByAccount", mock.Anything, "1001234567").Return(customer, nil)
	repo.On("UpdateCustomer", mock.Anything, customer, []string{"primary_phone_number"}).Return(nil)
	repo.On("FindLatestLoan", mock.Anything, int64(1)).Return(nil, nil)
	repo.On("CreateInteraction", mock.Anything, mock.Anything).Run(assignInteractionID(9)).Return(nil)

	cache := new(MockCache)
	cache.On("Delete", mock.Anything, []string{
		"callbridge:precall:5551234567",
		"callbridge:precall:5559876543",
	}).Return(nil)

	metrics := new(MockOutcomeMetrics)
	metrics.On("ObserveFieldChanges", "customer", 1).Return()
	metrics.On("ObserveFieldChanges", "loan", 0).Return()
	metrics.On("ObserveOutcome", "no_change", ResultSuccess, mock.Anything).Return()

	scope := &recordingScope{repo: repo}
	svc := NewCallOutcomeService(repo, scope, nil,
		WithProfileCache(cache, 0),
		WithOutcomeMetrics(metrics))

	_, err := svc.ApplyPostCallOutcome(context.Background(), decodeRequest(t, `{
		"user_info": {"account_number": "1001234567", "primary_phone_number": "5559876543"}
	}`))

	require.NoError(t, err)
	assert.True(t, scope.committed)
	cache.AssertExpectations(t)
	metrics.AssertExpectations(t)
}

func TestResolvePreCallProfile(t *testing.T) {
	t.Run("returns customer loan and latest interaction", func(t *testing.T) {
		repo := new(MockProfileRepository)
		loan := testLoan()
		interaction := collection.NewInteraction(1, fixedNow, fixedNow, "", "resolved", "Call Type: outbound")

		repo.On("FindCustomerByPhone", mock.Anything, int64(5551234567)).Return(testCustomer(), nil)
		repo.On("FindLatestLoan", mock.Anything, int64(1)).Return(loan, nil)
		repo.On("FindLatestInteraction", mock.Anything, int64(1)).Return(interaction, nil)

		svc := newTestService(repo)
		profile, err := svc.ResolvePreCallProfile(context.Background(), "5551234567")

		require.NoError(t, err)
		u := profile.UserInfo
		assert.Equal(t, "1001234567", u.AccountNumber)
		assert.Equal(t, "Auto Loan", *u.ProductName)
		assert.Equal(t, json.Number("1285.5"), *u.DueAmount)
		assert.Equal(t, int64(1), *u.NoOfMissedInstallments)
		assert.Equal(t, "2025-03-01", *u.DueDate)
		assert.Nil(t, u.GracePeriodDate)
		assert.Nil(t, u.DOB)
		assert.Equal(t, "resolved", *profile.Metadata.Status)
		assert.Equal(t, "2025-05-20", *profile.Metadata.LastUpdatedDate)
		assert.Equal(t, "2025-05-20T14:03:11Z", *profile.Metadata.CreationDate)
	})

	t.Run("customer without loan or interaction", func(t *testing.T) {
		repo := new(MockProfileRepository)
		repo.On("FindCustomerByPhone", mock.Anything, int64(5551234567)).Return(testCustomer(), nil)
		repo.On("FindLatestLoan", mock.Anything, int64(1)).Return(nil, nil)
		repo.On("FindLatestInteraction", mock.Anything, int64(1)).Return(nil, nil)

		svc := newTestService(repo)
		profile, err := svc.ResolvePreCallProfile(context.Background(), "5551234567")

		require.NoError(t, err)
		assert.Nil(t, profile.UserInfo.ProductName)
		assert.Nil(t, profile.UserInfo.DueAmount)
		assert.Nil(t, profile.Metadata.Source)

		data, err := json.Marshal(profile)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"product_name":null`)
		assert.Contains(t, string(data), `"notes":null`)
	})

	t.Run("loan without product name renders null", func(t *testing.T) {
		repo := new(MockProfileRepository)
		loan := testLoan()
		loan.ProductName = nil
		repo.On("FindCustomerByPhone", mock.Anything, int64(5551234567)).Return(testCustomer(), nil)
		repo.On("FindLatestLoan", mock.Anything, int64(1)).Return(loan, nil)
		repo.On("FindLatestInteraction", mock.Anything, int64(1)).Return(nil, nil)

		svc := newTestService(repo)
		profile, err := svc.ResolvePreCallProfile(context.Background(), "5551234567")

		require.NoError(t, err)
		assert.Nil(t, profile.UserInfo.ProductName)
		assert.NotNil(t, profile.UserInfo.DueAmount)

		data, err := json.Marshal(profile)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"product_name":null`)
		assert.NotContains(t, string(data), `"product_name":""`)
	})

	t.Run("unknown caller", func(t *testing.T) {
		repo := new(MockProfileRepository)
		repo.On("FindCustomerByPhone", mock.Anything, int64(5550000000)).Return(nil, shared.ErrNotFound)

		svc := newTestService(repo)
		profile, err := svc.ResolvePreCallProfile(context.Background(), "5550000000")

		assert.Nil(t, profile)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, shared.CodeNotFound, domainErr.Code)
		assert.Equal(t, MsgCallerNotFound, domainErr.Message)
	})

	t.Run("missing and malformed caller numbers", func(t *testing.T) {
		repo := new(MockProfileRepository)
		svc := newTestService(repo)

		_, err := svc.ResolvePreCallProfile(context.Background(), "")
		assert.EqualError(t, err, MsgCallerNumberRequired)

		_, err = svc.ResolvePreCallProfile(context.Background(), "555-123")
		assert.EqualError(t, err, MsgCallerNumberInvalid)

		repo.AssertNotCalled(t, "FindCustomerByPhone", mock.Anything, mock.Anything)
	})

	t.Run("store failure is a persistence fault", func(t *testing.T) {
		repo := new(MockProfileRepository)
		repo.On("FindCustomerByPhone", mock.Anything, int64(5551234567)).Return(nil, errors.New("timeout"))

		svc := newTestService(repo)
		_, err := svc.ResolvePreCallProfile(context.Background(), "5551234567")

		assert.ErrorIs(t, err, shared.ErrPersistence)
	})
}

func TestResolvePreCallProfile_Cache(t *testing.T) {
	t.Run("miss loads and stores", func(t *testing.T) {
		repo := new(MockProfileRepository)
		repo.On("FindCustomerByPhone", mock.Anything, int64(5551234567)).Return(testCustomer(), nil)
		repo.On("FindLatestLoan", mock.Anything, int64(1)).Return(nil, nil)
		repo.On("FindLatestInteraction", mock.Anything, int64(1)).Return(nil, nil)

		cache := new(MockCache)
		cache.On("Get", mock.Anything, "callbridge:precall:5551234567").Return(nil, shared.ErrCacheMiss)
		cache.On("Set", mock.Anything, "callbridge:precall:5551234567", mock.Anything, 30*time.Second).Return(nil)

		svc := newTestService(repo, WithProfileCache(cache, 30*time.Second))
		_, err := svc.ResolvePreCallProfile(context.Background(), "5551234567")

		require.NoError(t, err)
		cache.AssertExpectations(t)
	})

	t.Run("hit skips the store", func(t *testing.T) {
		repo := new(MockProfileRepository)
		cached, err := json.Marshal(NewPreCallProfile(testCustomer(), testLoan(), nil))
		require.NoError(t, err)

		cache := new(MockCache)
		cache.On("Get", mock.Anything, "callbridge:precall:5551234567").Return(cached, nil)

		svc := newTestService(repo, WithProfileCache(cache, 0))
		profile, err := svc.ResolvePreCallProfile(context.Background(), "5551234567")

		require.NoError(t, err)
		assert.Equal(t, "Auto Loan", *profile.UserInfo.ProductName)
		repo.AssertNotCalled(t, "FindCustomerByPhone", mock.Anything, mock.Anything)
	})

	t.Run("cache errors fall through to the store", func(t *testing.T) {
		repo := new(MockProfileRepository)
		repo.On("FindCustomerByPhone", mock.Anything, int64(5551234567)).Return(testCustomer(), nil)
		repo.On("FindLatestLoan", mock.Anything, int64(1)).Return(nil, nil)
		repo.On("FindLatestInteraction", mock.Anything, int64(1)).Return(nil, nil)

		cache := new(MockCache)
		cache.On("Get", mock.Anything, mock.Anything).Return(nil, errors.New("redis down"))
		cache.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("redis down"))

		svc := newTestService(repo, WithProfileCache(cache, 0))
		profile, err := svc.ResolvePreCallProfile(context.Background(), "5551234567")

		require.NoError(t, err)
		assert.NotNil(t, profile)
	})
}

func TestUserInfo_UnmarshalJSON(t *testing.T) {
	t.Run("keeps payload order and literal numbers", func(t *testing.T) {
		var u UserInfo
		require.NoError(t, json.Unmarshal([]byte(`{"b": 1285.50, "a": "x", "c": null, "d": true}`), &u))

		updates := u.Updates()
		require.Len(t, updates, 4)
		assert.Equal(t, "b", updates[0].Name)
		assert.Equal(t, json.Number("1285.50"), updates[0].Value)
		assert.Equal(t, "a", updates[1].Name)
		assert.Nil(t, updates[2].Value)
		assert.Equal(t, true, updates[3].Value)
	})

	t.Run("null section", func(t *testing.T) {
		var req PostCallOutcomeRequest
		require.NoError(t, json.Unmarshal([]byte(`{"user_info": null}`), &req))
		assert.Empty(t, req.AccountNumber())
	})

	t.Run("rejects arrays", func(t *testing.T) {
		var u UserInfo
		assert.Error(t, json.Unmarshal([]byte(`[1, 2]`), &u))
	})
}

func TestFlexString_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`"outbound"`, "outbound"},
		{`245`, "245"},
		{`900.00`, "900.00"},
		{`true`, "true"},
		{`null`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var f FlexString
			require.NoError(t, json.Unmarshal([]byte(tt.in), &f))
			assert.Equal(t, tt.want, f.String())
		})
	}

	var f FlexString
	assert.Error(t, json.Unmarshal([]byte(`{"a": 1}`), &f))
}
