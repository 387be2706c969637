package paygate

import (
	"context"
	"net/http"
	"net/url"

	"github.com/flowpayhq/flowpay/internal/core/domain"
	"github.com/flowpayhq/flowpay/internal/core/ports"
)

// CheckoutService talks to the public checkout API. Calls are anonymous
// apart from the CSRF cookie the shared client carries.
type CheckoutService struct {
	*Client
}

func NewCheckoutService(client *Client) ports.CheckoutAPI {
	return &CheckoutService{client}
}

func (s *CheckoutService) GetPayment(ctx context.Context, paymentID string) (*domain.CheckoutPayment, error) {
	var payment domain.CheckoutPayment
	if err := s.do(ctx, http.MethodGet, "/payment/"+paymentID, nil, nil, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

func (s *CheckoutService) ConfirmPayment(ctx context.Context, paymentID string) (*domain.CheckoutPayment, error) {
	var payment domain.CheckoutPayment
	if err := s.do(ctx, http.MethodPut, "/payment/"+paymentID, nil, nil, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

func (s *CheckoutService) SetPaymentMethod(ctx context.Context, paymentID, ticker string) (*domain.PaymentMethod, error) {
	body := struct {
		Ticker string `json:"ticker"`
	}{ticker}
	var method domain.PaymentMethod
	if err := s.do(ctx, http.MethodPost, "/payment/"+paymentID+"/method", nil, body, &method); err != nil {
		return nil, err
	}
	return &method, nil
}

func (s *CheckoutService) GetSupportedMethods(ctx context.Context, paymentID string) ([]domain.PaymentMethod, error) {
	var result struct {
		AvailableMethods []domain.PaymentMethod `json:"availableMethods"`
	}
	if err := s.do(ctx, http.MethodGet, "/payment/"+paymentID+"/supported-method", nil, nil, &result); err != nil {
		return nil, err
	}
	return result.AvailableMethods, nil
}

func (s *CheckoutService) SetCustomer(ctx context.Context, paymentID, email string) (*domain.Customer, error) {
	body := struct {
		Email string `json:"email"`
	}{email}
	var customer domain.Customer
	if err := s.do(ctx, http.MethodPost, "/payment/"+paymentID+"/customer", nil, body, &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

func (s *CheckoutService) GetPaymentLink(ctx context.Context, linkID string) (*domain.CheckoutPaymentLink, error) {
	var link domain.CheckoutPaymentLink
	if err := s.do(ctx, http.MethodGet, "/payment-link/"+linkID, nil, nil, &link); err != nil {
		return nil, err
	}
	return &link, nil
}

func (s *CheckoutService) CreatePaymentFromLink(ctx context.Context, linkID string) (string, error) {
	var created struct {
		ID string `json:"id"`
	}
	if err := s.do(ctx, http.MethodPost, "/payment-link/"+linkID+"/payment", nil, nil, &created); err != nil {
		return "", err
	}
	return created.ID, nil
}

func (s *CheckoutService) CurrencyConvert(ctx context.Context, fiatCurrency, fiatAmount, cryptoCurrency string) (*domain.CheckoutConvertResult, error) {
	query := url.Values{
		"fiatCurrency":   {fiatCurrency},
		"fiatAmount":     {fiatAmount},
		"cryptoCurrency": {cryptoCurrency},
	}
	var result domain.CheckoutConvertResult
	if err := s.do(ctx, http.MethodGet, "/currency-convert", query, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
