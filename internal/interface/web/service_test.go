package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/flowpayhq/flowpay/internal/core/application"
	"github.com/flowpayhq/flowpay/internal/core/domain"
	"github.com/flowpayhq/flowpay/internal/core/ports"
	"github.com/flowpayhq/flowpay/internal/infrastructure/cache"
	"github.com/flowpayhq/flowpay/internal/infrastructure/db"
	"github.com/stretchr/testify/require"
)

type stubScheduler struct{}

func (stubScheduler) Start() {}
func (stubScheduler) Stop()  {}
func (stubScheduler) SchedulePoll(time.Duration, func()) (ports.PollTask, error) {
	return stubTask{}, nil
}

type stubTask struct{}

func (stubTask) Cancel()            {}
func (stubTask) NextRun() time.Time { return time.Time{} }

type stubCheckoutAPI struct {
	payment domain.CheckoutPayment
}

func (s *stubCheckoutAPI) GetPayment(context.Context, string) (*domain.CheckoutPayment, error) {
	p := s.payment
	return &p, nil
}

func (s *stubCheckoutAPI) ConfirmPayment(context.Context, string) (*domain.CheckoutPayment, error) {
	s.payment.IsLocked = true
	s.payment.PaymentInfo = &domain.PaymentInfo{
		Status:                domain.PaymentStatusPending,
		RecipientAddress:      "0xabc",
		PaymentLink:           "ethereum:0xabc?value=0.05",
		ExpiresAt:             time.Now().Add(20 * time.Minute).Format(time.RFC3339),
		ExpirationDurationMin: 20,
	}
	p := s.payment
	return &p, nil
}

func (s *stubCheckoutAPI) SetPaymentMethod(_ context.Context, _, ticker string) (*domain.PaymentMethod, error) {
	m := domain.PaymentMethod{Ticker: ticker, Blockchain: "ETH"}
	s.payment.PaymentMethod = &m
	return &m, nil
}

func (s *stubCheckoutAPI) GetSupportedMethods(context.Context, string) ([]domain.PaymentMethod, error) {
	return []domain.PaymentMethod{{Ticker: "ETH", Blockchain: "ETH", DisplayName: "Ether"}}, nil
}

func (s *stubCheckoutAPI) SetCustomer(_ context.Context, _, email string) (*domain.Customer, error) {
	c := domain.Customer{ID: "c-1", Email: email}
	s.payment.Customer = &c
	return &c, nil
}

func (s *stubCheckoutAPI) GetPaymentLink(context.Context, string) (*domain.CheckoutPaymentLink, error) {
	return &domain.CheckoutPaymentLink{MerchantName: "shop", Currency: "USD", Price: 10}, nil
}

func (s *stubCheckoutAPI) CreatePaymentFromLink(context.Context, string) (string, error) {
	return "p-new", nil
}

func (s *stubCheckoutAPI) CurrencyConvert(_ context.Context, fiatCurrency, _, cryptoCurrency string) (*domain.CheckoutConvertResult, error) {
	return &domain.CheckoutConvertResult{
		CryptoAmount:   "0.0042",
		CryptoCurrency: cryptoCurrency,
		FiatCurrency:   fiatCurrency,
	}, nil
}

type stubMerchantAPI struct {
	ports.MerchantAPI
}

type stubAuthAPI struct {
	ports.AuthAPI
	meErr error
}

func (s *stubAuthAPI) RefreshCSRF(context.Context) error { return nil }

func (s *stubAuthAPI) GetMe(context.Context) (*domain.User, error) {
	if s.meErr != nil {
		return nil, s.meErr
	}
	return &domain.User{UUID: "u-1"}, nil
}

func newTestService(t *testing.T, cfg Config, auth ports.AuthAPI) *Service {
	t.Helper()

	dbSvc, err := db.NewService(db.ServiceConfig{DbType: "badger", DbConfig: []any{"", nil}})
	require.NoError(t, err)
	t.Cleanup(dbSvc.Close)

	queryCache := cache.New()
	checkoutSvc := application.NewCheckoutService(
		&stubCheckoutAPI{payment: domain.CheckoutPayment{
			ID: "p-1", MerchantName: "shop", Currency: "USD", Price: 10,
		}}, stubScheduler{}, time.Second,
	)
	t.Cleanup(checkoutSvc.Close)

	consoleSvc, err := application.NewConsoleService(
		&stubMerchantAPI{}, auth, dbSvc, queryCache, time.Millisecond,
	)
	require.NoError(t, err)
	withdrawalSvc := application.NewWithdrawalService(&stubMerchantAPI{}, queryCache, time.Millisecond)

	svc, err := NewService(cfg, checkoutSvc, consoleSvc, withdrawalSvc)
	require.NoError(t, err)
	return svc
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCheckoutFlowOverHTTP(t *testing.T) {
	svc := newTestService(t, Config{ShowBranding: true}, &stubAuthAPI{})
	router := svc.router()

	w := doJSON(t, router, http.MethodGet, "/api/checkout/v1/payment/p-1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var view map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	require.Equal(t, "selecting", view["state"])
	require.Len(t, view["availableMethods"], 1)

	// qr not available before confirm
	w = doJSON(t, router, http.MethodGet, "/api/checkout/v1/payment/p-1/qr", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, http.MethodPut, "/api/checkout/v1/payment/p-1/method", map[string]string{"ticker": "ETH"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodPut, "/api/checkout/v1/payment/p-1/customer", map[string]string{"email": "buyer@example.com"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodPut, "/api/checkout/v1/payment/p-1/confirm", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	require.Equal(t, "lockedPending", view["state"])

	w = doJSON(t, router, http.MethodGet, "/api/checkout/v1/payment/p-1/qr", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "image/png", w.Header().Get("Content-Type"))
	require.NotEmpty(t, w.Body.Bytes())
}

func TestInvalidEmailIsValidationError(t *testing.T) {
	svc := newTestService(t, Config{}, &stubAuthAPI{})
	router := svc.router()

	w := doJSON(t, router, http.MethodGet, "/api/checkout/v1/payment/p-1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodPut, "/api/checkout/v1/payment/p-1/customer", map[string]string{"email": "nope"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "validation_error", body["status"])
}

func TestNoMerchantSelectedMapsToConflict(t *testing.T) {
	svc := newTestService(t, Config{}, &stubAuthAPI{})
	router := svc.router()

	w := doJSON(t, router, http.MethodGet, "/api/console/v1/balances", nil)
	require.Equal(t, http.StatusConflict, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "no_merchant_selected", body["status"])
	require.Equal(t, "/merchants", body["route"])
}

func TestUnauthenticatedMapsTo401(t *testing.T) {
	svc := newTestService(t, Config{}, &stubAuthAPI{meErr: domain.ErrUnauthenticated})
	router := svc.router()

	w := doJSON(t, router, http.MethodGet, "/api/console/v1/auth/me", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "/login", body["route"])
}

func TestMenuFeedbackToggle(t *testing.T) {
	svc := newTestService(t, Config{}, &stubAuthAPI{})
	w := doJSON(t, svc.router(), http.MethodGet, "/api/console/v1/menu", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotContains(t, w.Body.String(), "Support")

	svc = newTestService(t, Config{EnableFeedback: true}, &stubAuthAPI{})
	w = doJSON(t, svc.router(), http.MethodGet, "/api/console/v1/menu", nil)
	require.Contains(t, w.Body.String(), "Support")
}

func TestCheckoutMetaReflectsConfig(t *testing.T) {
	svc := newTestService(t, Config{ShowBranding: true, SupportContact: "help@shop.example"}, &stubAuthAPI{})
	w := doJSON(t, svc.router(), http.MethodGet, "/api/checkout/v1/meta", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var meta map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &meta))
	require.Equal(t, true, meta["showBranding"])
	require.Equal(t, "help@shop.example", meta["supportContact"])
}

func TestQRCacheMemoizes(t *testing.T) {
	qrCodes, err := newQRCache(2)
	require.NoError(t, err)

	first, err := qrCodes.PNG("ethereum:0xabc?value=1")
	require.NoError(t, err)
	second, err := qrCodes.PNG("ethereum:0xabc?value=1")
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, qrCodes.images.Len())
}

func TestMethodIconIsDeterministic(t *testing.T) {
	svc := newTestService(t, Config{}, &stubAuthAPI{})

	w := doJSON(t, svc.router(), http.MethodGet, "/api/checkout/v1/icon/ETH", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "image/svg+xml", w.Header().Get("Content-Type"))
	require.Contains(t, w.Body.String(), ">ETH<")

	again := doJSON(t, svc.router(), http.MethodGet, "/api/checkout/v1/icon/ETH", nil)
	require.Equal(t, w.Body.String(), again.Body.String())

	long := doJSON(t, svc.router(), http.MethodGet, "/api/checkout/v1/icon/USDT_TRX", nil)
	require.Contains(t, long.Body.String(), ">USDT<")
}

func TestFailedPaymentCarriesSupportContact(t *testing.T) {
	dbSvc, err := db.NewService(db.ServiceConfig{DbType: "badger", DbConfig: []any{"", nil}})
	require.NoError(t, err)
	t.Cleanup(dbSvc.Close)

	api := &stubCheckoutAPI{payment: domain.CheckoutPayment{
		ID: "p-1", MerchantName: "shop", Currency: "USD", Price: 10,
		IsLocked:    true,
		PaymentInfo: &domain.PaymentInfo{Status: domain.PaymentStatusFailed},
	}}
	checkoutSvc := application.NewCheckoutService(api, stubScheduler{}, time.Second)
	t.Cleanup(checkoutSvc.Close)

	queryCache := cache.New()
	consoleSvc, err := application.NewConsoleService(
		&stubMerchantAPI{}, &stubAuthAPI{}, dbSvc, queryCache, time.Millisecond,
	)
	require.NoError(t, err)
	withdrawalSvc := application.NewWithdrawalService(&stubMerchantAPI{}, queryCache, time.Millisecond)

	svc, err := NewService(Config{SupportContact: "help@shop.example"}, checkoutSvc, consoleSvc, withdrawalSvc)
	require.NoError(t, err)

	w := doJSON(t, svc.router(), http.MethodGet, "/api/checkout/v1/payment/p-1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var view map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	require.Equal(t, "failed", view["state"])
	failure, ok := view["failure"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "help@shop.example", failure["supportContact"])
}
