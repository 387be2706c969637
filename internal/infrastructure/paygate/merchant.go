package paygate

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/flowpayhq/flowpay/internal/core/domain"
	"github.com/flowpayhq/flowpay/internal/core/ports"
)

// MerchantService talks to the merchant console API. One method per
// endpoint, no business logic.
type MerchantService struct {
	*Client
}

func NewMerchantService(client *Client) ports.MerchantAPI {
	return &MerchantService{client}
}

func (s *MerchantService) CreateMerchant(ctx context.Context, params domain.MerchantParams) (*domain.Merchant, error) {
	var merchant domain.Merchant
	if err := s.do(ctx, http.MethodPost, "/merchant", nil, params, &merchant); err != nil {
		return nil, err
	}
	return &merchant, nil
}

func (s *MerchantService) ListMerchants(ctx context.Context) ([]domain.Merchant, error) {
	var env resultsEnvelope[domain.Merchant]
	if err := s.do(ctx, http.MethodGet, "/merchant", nil, nil, &env); err != nil {
		return nil, err
	}
	return env.Results, nil
}

func (s *MerchantService) GetMerchant(ctx context.Context, merchantID string) (*domain.Merchant, error) {
	var merchant domain.Merchant
	if err := s.do(ctx, http.MethodGet, "/merchant/"+merchantID, nil, nil, &merchant); err != nil {
		return nil, err
	}
	return &merchant, nil
}

func (s *MerchantService) UpdateMerchant(ctx context.Context, merchantID string, params domain.MerchantParams) (*domain.Merchant, error) {
	var merchant domain.Merchant
	if err := s.do(ctx, http.MethodPut, "/merchant/"+merchantID, nil, params, &merchant); err != nil {
		return nil, err
	}
	return &merchant, nil
}

func (s *MerchantService) DeleteMerchant(ctx context.Context, merchantID string) error {
	return s.do(ctx, http.MethodDelete, "/merchant/"+merchantID, nil, nil, nil)
}

func (s *MerchantService) UpdateWebhookSettings(ctx context.Context, merchantID string, settings domain.WebhookSettings) error {
	return s.do(ctx, http.MethodPut, "/merchant/"+merchantID+"/webhook", nil, settings, nil)
}

func (s *MerchantService) UpdateSupportedMethods(ctx context.Context, merchantID string, tickers []string) error {
	body := struct {
		SupportedPaymentMethods []string `json:"supportedPaymentMethods"`
	}{tickers}
	return s.do(ctx, http.MethodPut, "/merchant/"+merchantID+"/supported-method", nil, body, nil)
}

func (s *MerchantService) SendSupportMessage(ctx context.Context, merchantID string, msg domain.SupportMessage) error {
	return s.do(ctx, http.MethodPost, "/merchant/"+merchantID+"/form", nil, msg, nil)
}

func (s *MerchantService) ListPayments(ctx context.Context, merchantID string, params domain.ListPaymentsParams) (*domain.PaymentsPage, error) {
	query := url.Values{}
	if params.Limit > 0 {
		query.Set("limit", strconv.Itoa(params.Limit))
	}
	if params.Cursor != "" {
		query.Set("cursor", params.Cursor)
	}
	if params.ReverseOrder {
		query.Set("reverseOrder", "true")
	}
	if params.Type != "" {
		query.Set("type", string(params.Type))
	}

	var page domain.PaymentsPage
	if err := s.do(ctx, http.MethodGet, "/merchant/"+merchantID+"/payment", query, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *MerchantService) GetPayment(ctx context.Context, merchantID, paymentID string) (*domain.MerchantPayment, error) {
	var payment domain.MerchantPayment
	if err := s.do(ctx, http.MethodGet, "/merchant/"+merchantID+"/payment/"+paymentID, nil, nil, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

func (s *MerchantService) CreatePayment(ctx context.Context, merchantID string, params domain.CreatePaymentParams) (*domain.MerchantPayment, error) {
	var payment domain.MerchantPayment
	if err := s.do(ctx, http.MethodPost, "/merchant/"+merchantID+"/payment", nil, params, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

func (s *MerchantService) ListBalances(ctx context.Context, merchantID string) ([]domain.MerchantBalance, error) {
	var env resultsEnvelope[domain.MerchantBalance]
	if err := s.do(ctx, http.MethodGet, "/merchant/"+merchantID+"/balance", nil, nil, &env); err != nil {
		return nil, err
	}
	return env.Results, nil
}

func (s *MerchantService) GetWithdrawalFee(ctx context.Context, merchantID, balanceID string) (*domain.ServiceFee, error) {
	query := url.Values{"balanceId": {balanceID}}
	var fee domain.ServiceFee
	if err := s.do(ctx, http.MethodGet, "/merchant/"+merchantID+"/withdrawal-fee", query, nil, &fee); err != nil {
		return nil, err
	}
	return &fee, nil
}

func (s *MerchantService) CreateWithdrawal(ctx context.Context, merchantID string, w domain.Withdrawal) error {
	return s.do(ctx, http.MethodPost, "/merchant/"+merchantID+"/withdrawal", nil, w, nil)
}

func (s *MerchantService) CurrencyConvert(ctx context.Context, merchantID string, params domain.ConvertParams) (*domain.ConvertResult, error) {
	query := url.Values{
		"from":   {params.From},
		"to":     {params.To},
		"amount": {params.Amount},
	}
	var result domain.ConvertResult
	if err := s.do(ctx, http.MethodGet, "/merchant/"+merchantID+"/currency-convert", query, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *MerchantService) ListAddresses(ctx context.Context, merchantID string) ([]domain.MerchantAddress, error) {
	var env resultsEnvelope[domain.MerchantAddress]
	if err := s.do(ctx, http.MethodGet, "/merchant/"+merchantID+"/address", nil, nil, &env); err != nil {
		return nil, err
	}
	return env.Results, nil
}

func (s *MerchantService) GetAddress(ctx context.Context, merchantID, addressID string) (*domain.MerchantAddress, error) {
	var address domain.MerchantAddress
	if err := s.do(ctx, http.MethodGet, "/merchant/"+merchantID+"/address/"+addressID, nil, nil, &address); err != nil {
		return nil, err
	}
	return &address, nil
}

func (s *MerchantService) CreateAddress(ctx context.Context, merchantID string, params domain.MerchantAddressParams) (*domain.MerchantAddress, error) {
	var address domain.MerchantAddress
	if err := s.do(ctx, http.MethodPost, "/merchant/"+merchantID+"/address", nil, params, &address); err != nil {
		return nil, err
	}
	return &address, nil
}

func (s *MerchantService) UpdateAddress(ctx context.Context, merchantID, addressID, name string) error {
	body := struct {
		Name string `json:"name"`
	}{name}
	return s.do(ctx, http.MethodPut, "/merchant/"+merchantID+"/address/"+addressID, nil, body, nil)
}

func (s *MerchantService) DeleteAddress(ctx context.Context, merchantID, addressID string) error {
	return s.do(ctx, http.MethodDelete, "/merchant/"+merchantID+"/address/"+addressID, nil, nil, nil)
}

func (s *MerchantService) ListTokens(ctx context.Context, merchantID string) ([]domain.MerchantToken, error) {
	var env resultsEnvelope[domain.MerchantToken]
	if err := s.do(ctx, http.MethodGet, "/merchant/"+merchantID+"/token", nil, nil, &env); err != nil {
		return nil, err
	}
	return env.Results, nil
}

func (s *MerchantService) CreateToken(ctx context.Context, merchantID, name string) (*domain.MerchantToken, error) {
	body := struct {
		Name string `json:"name"`
	}{name}
	var token domain.MerchantToken
	if err := s.do(ctx, http.MethodPost, "/merchant/"+merchantID+"/token", nil, body, &token); err != nil {
		return nil, err
	}
	return &token, nil
}

func (s *MerchantService) DeleteToken(ctx context.Context, merchantID, tokenID string) error {
	return s.do(ctx, http.MethodDelete, "/merchant/"+merchantID+"/token/"+tokenID, nil, nil, nil)
}

func (s *MerchantService) ListCustomers(ctx context.Context, merchantID string, params domain.ListCustomersParams) (*domain.CustomersPage, error) {
	query := url.Values{}
	if params.Limit > 0 {
		query.Set("limit", strconv.Itoa(params.Limit))
	}
	if params.Cursor != "" {
		query.Set("cursor", params.Cursor)
	}

	var page domain.CustomersPage
	if err := s.do(ctx, http.MethodGet, "/merchant/"+merchantID+"/customer", query, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *MerchantService) GetCustomer(ctx context.Context, merchantID, customerID string) (*domain.Customer, error) {
	var customer domain.Customer
	if err := s.do(ctx, http.MethodGet, "/merchant/"+merchantID+"/customer/"+customerID, nil, nil, &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

func (s *MerchantService) ListPaymentLinks(ctx context.Context, merchantID string) ([]domain.PaymentLink, error) {
	var env resultsEnvelope[domain.PaymentLink]
	if err := s.do(ctx, http.MethodGet, "/merchant/"+merchantID+"/payment-link", nil, nil, &env); err != nil {
		return nil, err
	}
	return env.Results, nil
}

func (s *MerchantService) GetPaymentLink(ctx context.Context, merchantID, linkID string) (*domain.PaymentLink, error) {
	var link domain.PaymentLink
	if err := s.do(ctx, http.MethodGet, "/merchant/"+merchantID+"/payment-link/"+linkID, nil, nil, &link); err != nil {
		return nil, err
	}
	return &link, nil
}

func (s *MerchantService) CreatePaymentLink(ctx context.Context, merchantID string, params domain.PaymentLinkParams) (*domain.PaymentLink, error) {
	var link domain.PaymentLink
	if err := s.do(ctx, http.MethodPost, "/merchant/"+merchantID+"/payment-link", nil, params, &link); err != nil {
		return nil, err
	}
	return &link, nil
}

func (s *MerchantService) DeletePaymentLink(ctx context.Context, merchantID, linkID string) error {
	return s.do(ctx, http.MethodDelete, "/merchant/"+merchantID+"/payment-link/"+linkID, nil, nil, nil)
}
