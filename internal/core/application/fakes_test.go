package application_test

import (
	"context"
	"sync"
	"time"

	"github.com/flowpayhq/flowpay/internal/core/domain"
	"github.com/flowpayhq/flowpay/internal/core/ports"
)

// fakeScheduler runs poll jobs only when the test calls tick().
type fakeScheduler struct {
	mu    sync.Mutex
	tasks []*fakeTask
}

type fakeTask struct {
	mu        sync.Mutex
	fn        func()
	cancelled bool
}

func (s *fakeScheduler) Start() {}
func (s *fakeScheduler) Stop()  {}

func (s *fakeScheduler) SchedulePoll(_ time.Duration, fn func()) (ports.PollTask, error) {
	task := &fakeTask{fn: fn}
	s.mu.Lock()
	s.tasks = append(s.tasks, task)
	s.mu.Unlock()
	return task, nil
}

func (s *fakeScheduler) tick() {
	s.mu.Lock()
	tasks := append([]*fakeTask(nil), s.tasks...)
	s.mu.Unlock()
	for _, t := range tasks {
		t.mu.Lock()
		cancelled := t.cancelled
		t.mu.Unlock()
		if !cancelled {
			t.fn()
		}
	}
}

func (s *fakeScheduler) liveTasks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.tasks {
		t.mu.Lock()
		if !t.cancelled {
			n++
		}
		t.mu.Unlock()
	}
	return n
}

func (t *fakeTask) Cancel() {
	t.mu.Lock()
	t.cancelled = true
	t.mu.Unlock()
}

func (t *fakeTask) NextRun() time.Time { return time.Time{} }

// fakeCheckoutAPI serves a single mutable payment.
type fakeCheckoutAPI struct {
	mu sync.Mutex

	payment      domain.CheckoutPayment
	methods      []domain.PaymentMethod
	getErr       error
	convertBlock chan struct{} // when set, CurrencyConvert waits once

	getCalls     int
	convertCalls int
	methodCalls  int
}

func (f *fakeCheckoutAPI) setPayment(p domain.CheckoutPayment) {
	f.mu.Lock()
	f.payment = p
	f.mu.Unlock()
}

func (f *fakeCheckoutAPI) GetPayment(ctx context.Context, paymentID string) (*domain.CheckoutPayment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	p := f.payment
	return &p, nil
}

func (f *fakeCheckoutAPI) ConfirmPayment(ctx context.Context, paymentID string) (*domain.CheckoutPayment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payment.IsLocked = true
	f.payment.PaymentInfo = &domain.PaymentInfo{
		Status:                domain.PaymentStatusPending,
		Amount:                "0.05",
		AmountFormatted:       "0.05",
		RecipientAddress:      "0xabc",
		PaymentLink:           "ethereum:0xabc?value=0.05",
		ExpiresAt:             time.Now().Add(20 * time.Minute).Format(time.RFC3339),
		ExpirationDurationMin: 20,
	}
	p := f.payment
	return &p, nil
}

func (f *fakeCheckoutAPI) SetPaymentMethod(ctx context.Context, paymentID, ticker string) (*domain.PaymentMethod, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.methodCalls++
	for _, m := range f.methods {
		if m.Ticker == ticker {
			f.payment.PaymentMethod = &m
			return &m, nil
		}
	}
	return nil, &domain.APIError{Status: "not_found", Message: "unknown method"}
}

func (f *fakeCheckoutAPI) GetSupportedMethods(ctx context.Context, paymentID string) ([]domain.PaymentMethod, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.PaymentMethod(nil), f.methods...), nil
}

func (f *fakeCheckoutAPI) SetCustomer(ctx context.Context, paymentID, email string) (*domain.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	customer := domain.Customer{ID: "c-1", Email: email}
	f.payment.Customer = &customer
	return &customer, nil
}

func (f *fakeCheckoutAPI) GetPaymentLink(ctx context.Context, linkID string) (*domain.CheckoutPaymentLink, error) {
	return &domain.CheckoutPaymentLink{MerchantName: "shop", Currency: "USD", Price: 10}, nil
}

func (f *fakeCheckoutAPI) CreatePaymentFromLink(ctx context.Context, linkID string) (string, error) {
	return "p-from-link", nil
}

func (f *fakeCheckoutAPI) CurrencyConvert(ctx context.Context, fiatCurrency, fiatAmount, cryptoCurrency string) (*domain.CheckoutConvertResult, error) {
	f.mu.Lock()
	f.convertCalls++
	block := f.convertBlock
	f.convertBlock = nil
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	return &domain.CheckoutConvertResult{
		CryptoAmount:   "0.0042",
		CryptoCurrency: cryptoCurrency,
		FiatCurrency:   fiatCurrency,
	}, nil
}

// fakeMerchantAPI covers the slices of ports.MerchantAPI the
// application tests exercise; anything else panics via the embedded
// nil interface.
type fakeMerchantAPI struct {
	ports.MerchantAPI

	mu sync.Mutex

	balances  []domain.MerchantBalance
	fee       *domain.ServiceFee
	feeErr    error
	merchants map[string]domain.Merchant
	pages     map[string]domain.PaymentsPage // keyed by cursor
	getErr    error

	convertBlock    chan struct{}
	convertValue    string // overrides the "converted:<amount>" default
	convertCalls    int
	withdrawals     []domain.Withdrawal
	listBalanceCalls int
	listPayCalls    int
}

func (f *fakeMerchantAPI) GetMerchant(ctx context.Context, merchantID string) (*domain.Merchant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	if m, ok := f.merchants[merchantID]; ok {
		return &m, nil
	}
	return nil, &domain.APIError{Status: "not_found", Message: "merchant not found"}
}

func (f *fakeMerchantAPI) ListBalances(ctx context.Context, merchantID string) ([]domain.MerchantBalance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listBalanceCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	return append([]domain.MerchantBalance(nil), f.balances...), nil
}

func (f *fakeMerchantAPI) GetWithdrawalFee(ctx context.Context, merchantID, balanceID string) (*domain.ServiceFee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.feeErr != nil {
		return nil, f.feeErr
	}
	fee := *f.fee
	return &fee, nil
}

func (f *fakeMerchantAPI) CreateWithdrawal(ctx context.Context, merchantID string, w domain.Withdrawal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.withdrawals = append(f.withdrawals, w)
	return nil
}

func (f *fakeMerchantAPI) CurrencyConvert(ctx context.Context, merchantID string, params domain.ConvertParams) (*domain.ConvertResult, error) {
	f.mu.Lock()
	f.convertCalls++
	block := f.convertBlock
	f.convertBlock = nil
	converted := f.convertValue
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	if converted == "" {
		converted = "converted:" + params.Amount
	}
	return &domain.ConvertResult{
		ConvertedAmount: converted,
		From:            params.From,
		To:              params.To,
	}, nil
}

func (f *fakeMerchantAPI) ListPayments(ctx context.Context, merchantID string, params domain.ListPaymentsParams) (*domain.PaymentsPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listPayCalls++
	page, ok := f.pages[params.Cursor]
	if !ok {
		return &domain.PaymentsPage{}, nil
	}
	return &page, nil
}

// fakeAuthAPI is a minimal ports.AuthAPI.
type fakeAuthAPI struct {
	ports.AuthAPI

	mu         sync.Mutex
	meErr      error
	logoutDone bool
}

func (f *fakeAuthAPI) RefreshCSRF(ctx context.Context) error { return nil }

func (f *fakeAuthAPI) GetMe(ctx context.Context) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.meErr != nil {
		return nil, f.meErr
	}
	return &domain.User{UUID: "u-1", Email: "owner@shop.example"}, nil
}

func (f *fakeAuthAPI) Login(ctx context.Context, creds domain.Credentials) error { return nil }

func (f *fakeAuthAPI) Logout(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logoutDone = true
	return nil
}
