package ports

import (
	"context"

	"github.com/flowpayhq/flowpay/internal/core/domain"
)

// CheckoutAPI is the slice of the backend consumed by the customer
// checkout widget. All calls are anonymous, scoped by payment id.
type CheckoutAPI interface {
	GetPayment(ctx context.Context, paymentID string) (*domain.CheckoutPayment, error)
	// ConfirmPayment locks the payment: the backend allocates a
	// blockchain address and freezes user input.
	ConfirmPayment(ctx context.Context, paymentID string) (*domain.CheckoutPayment, error)
	SetPaymentMethod(ctx context.Context, paymentID, ticker string) (*domain.PaymentMethod, error)
	GetSupportedMethods(ctx context.Context, paymentID string) ([]domain.PaymentMethod, error)
	SetCustomer(ctx context.Context, paymentID, email string) (*domain.Customer, error)
	GetPaymentLink(ctx context.Context, linkID string) (*domain.CheckoutPaymentLink, error)
	CreatePaymentFromLink(ctx context.Context, linkID string) (string, error)
	CurrencyConvert(ctx context.Context, fiatCurrency, fiatAmount, cryptoCurrency string) (*domain.CheckoutConvertResult, error)
}

// MerchantAPI is the slice of the backend consumed by the merchant
// console. Every merchant-scoped call carries the selected merchant id.
type MerchantAPI interface {
	CreateMerchant(ctx context.Context, params domain.MerchantParams) (*domain.Merchant, error)
	ListMerchants(ctx context.Context) ([]domain.Merchant, error)
	GetMerchant(ctx context.Context, merchantID string) (*domain.Merchant, error)
	UpdateMerchant(ctx context.Context, merchantID string, params domain.MerchantParams) (*domain.Merchant, error)
	DeleteMerchant(ctx context.Context, merchantID string) error
	UpdateWebhookSettings(ctx context.Context, merchantID string, settings domain.WebhookSettings) error
	UpdateSupportedMethods(ctx context.Context, merchantID string, tickers []string) error
	SendSupportMessage(ctx context.Context, merchantID string, msg domain.SupportMessage) error

	ListPayments(ctx context.Context, merchantID string, params domain.ListPaymentsParams) (*domain.PaymentsPage, error)
	GetPayment(ctx context.Context, merchantID, paymentID string) (*domain.MerchantPayment, error)
	CreatePayment(ctx context.Context, merchantID string, params domain.CreatePaymentParams) (*domain.MerchantPayment, error)

	ListBalances(ctx context.Context, merchantID string) ([]domain.MerchantBalance, error)
	GetWithdrawalFee(ctx context.Context, merchantID, balanceID string) (*domain.ServiceFee, error)
	CreateWithdrawal(ctx context.Context, merchantID string, w domain.Withdrawal) error
	CurrencyConvert(ctx context.Context, merchantID string, params domain.ConvertParams) (*domain.ConvertResult, error)

	ListAddresses(ctx context.Context, merchantID string) ([]domain.MerchantAddress, error)
	GetAddress(ctx context.Context, merchantID, addressID string) (*domain.MerchantAddress, error)
	CreateAddress(ctx context.Context, merchantID string, params domain.MerchantAddressParams) (*domain.MerchantAddress, error)
	UpdateAddress(ctx context.Context, merchantID, addressID, name string) error
	DeleteAddress(ctx context.Context, merchantID, addressID string) error

	ListTokens(ctx context.Context, merchantID string) ([]domain.MerchantToken, error)
	CreateToken(ctx context.Context, merchantID, name string) (*domain.MerchantToken, error)
	DeleteToken(ctx context.Context, merchantID, tokenID string) error

	ListCustomers(ctx context.Context, merchantID string, params domain.ListCustomersParams) (*domain.CustomersPage, error)
	GetCustomer(ctx context.Context, merchantID, customerID string) (*domain.Customer, error)

	ListPaymentLinks(ctx context.Context, merchantID string) ([]domain.PaymentLink, error)
	GetPaymentLink(ctx context.Context, merchantID, linkID string) (*domain.PaymentLink, error)
	CreatePaymentLink(ctx context.Context, merchantID string, params domain.PaymentLinkParams) (*domain.PaymentLink, error)
	DeletePaymentLink(ctx context.Context, merchantID, linkID string) error
}

// AuthAPI wraps the cookie-based session endpoints.
type AuthAPI interface {
	RefreshCSRF(ctx context.Context) error
	GetMe(ctx context.Context) (*domain.User, error)
	Login(ctx context.Context, creds domain.Credentials) error
	Logout(ctx context.Context) error
	ListProviders(ctx context.Context) ([]domain.AuthProvider, error)
}
