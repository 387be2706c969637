package domain

type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusInProgress PaymentStatus = "inProgress"
	PaymentStatusSuccess    PaymentStatus = "success"
	PaymentStatusFailed     PaymentStatus = "failed"
)

// Terminal reports whether no further status transition can occur.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentStatusSuccess || s == PaymentStatusFailed
}

type PaymentType string

const (
	PaymentTypePayment    PaymentType = "payment"
	PaymentTypeWithdrawal PaymentType = "withdrawal"
)

type SuccessAction string

const (
	SuccessActionRedirect    SuccessAction = "redirect"
	SuccessActionShowMessage SuccessAction = "showMessage"
)

type PaymentMethod struct {
	Blockchain     string `json:"blockchain"`
	BlockchainName string `json:"blockchainName"`
	DisplayName    string `json:"displayName"`
	Name           string `json:"name"`
	Ticker         string `json:"ticker"`
	Enabled        bool   `json:"enabled,omitempty"`
}

// PaymentInfo is present once a blockchain address has been allocated
// for the payment and user input is frozen.
type PaymentInfo struct {
	Status                PaymentStatus `json:"status"`
	Amount                string        `json:"amount"`
	AmountFormatted       string        `json:"amountFormatted"`
	RecipientAddress      string        `json:"recipientAddress"`
	PaymentLink           string        `json:"paymentLink"`
	ExpiresAt             string        `json:"expiresAt"`
	ExpirationDurationMin int           `json:"expirationDurationMin"`
	SuccessAction         SuccessAction `json:"successAction,omitempty"`
	SuccessURL            string        `json:"successUrl,omitempty"`
	SuccessMessage        string        `json:"successMessage,omitempty"`
}

// CheckoutPayment is the invoice as seen by the checkout widget.
type CheckoutPayment struct {
	ID            string         `json:"id"`
	MerchantName  string         `json:"merchantName"`
	Description   string         `json:"description,omitempty"`
	Currency      string         `json:"currency"`
	Price         float64        `json:"price"`
	IsLocked      bool           `json:"isLocked"`
	Customer      *Customer      `json:"customer,omitempty"`
	PaymentMethod *PaymentMethod `json:"paymentMethod,omitempty"`
	PaymentInfo   *PaymentInfo   `json:"paymentInfo,omitempty"`
}

// Status returns the server-reported lifecycle status, defaulting to
// pending while no address has been allocated yet.
func (p *CheckoutPayment) Status() PaymentStatus {
	if p.PaymentInfo == nil {
		return PaymentStatusPending
	}
	return p.PaymentInfo.Status
}

// MerchantPayment is the invoice as listed on the merchant console. The
// same wire shape carries withdrawals, distinguished by Type.
type MerchantPayment struct {
	ID             string          `json:"id"`
	OrderID        string          `json:"orderId,omitempty"`
	Type           PaymentType     `json:"type"`
	Status         PaymentStatus   `json:"status"`
	CreatedAt      string          `json:"createdAt"`
	Currency       string          `json:"currency"`
	Price          string          `json:"price"`
	RedirectURL    string          `json:"redirectUrl,omitempty"`
	PaymentURL     string          `json:"paymentUrl,omitempty"`
	Description    string          `json:"description,omitempty"`
	IsTest         bool            `json:"isTest"`
	AdditionalInfo *AdditionalInfo `json:"additionalInfo,omitempty"`
}

type AdditionalInfo struct {
	Payment    *AdditionalPaymentInfo    `json:"payment,omitempty"`
	Withdrawal *AdditionalWithdrawalInfo `json:"withdrawal,omitempty"`
}

type AdditionalPaymentInfo struct {
	CustomerEmail    string `json:"customerEmail"`
	SelectedCurrency string `json:"selectedCurrency"`
	ServiceFee       string `json:"serviceFee"`
}

type AdditionalWithdrawalInfo struct {
	AddressID       string `json:"addressId"`
	BalanceID       string `json:"balanceId"`
	ExplorerLink    string `json:"explorerLink,omitempty"`
	ServiceFee      string `json:"serviceFee"`
	TransactionHash string `json:"transactionHash,omitempty"`
}

type CreatePaymentParams struct {
	ID          string  `json:"id"`
	OrderID     string  `json:"orderId,omitempty"`
	Price       float64 `json:"price"`
	Currency    string  `json:"currency"`
	RedirectURL string  `json:"redirectUrl,omitempty"`
	Description string  `json:"description,omitempty"`
	IsTest      bool    `json:"isTest,omitempty"`
}

type ListPaymentsParams struct {
	Limit        int
	Cursor       string
	ReverseOrder bool
	Type         PaymentType
}

type ConvertParams struct {
	From   string
	To     string
	Amount string
}

type ConvertResult struct {
	ConvertedAmount string  `json:"convertedAmount"`
	ExchangeRate    float64 `json:"exchangeRate"`
	From            string  `json:"from"`
	To              string  `json:"to"`
}

// CheckoutConvertResult is the conversion preview shown next to the
// fiat price on the checkout widget.
type CheckoutConvertResult struct {
	CryptoAmount   string  `json:"cryptoAmount"`
	CryptoCurrency string  `json:"cryptoCurrency"`
	DisplayName    string  `json:"displayName"`
	ExchangeRate   float64 `json:"exchangeRate"`
	FiatAmount     float64 `json:"fiatAmount"`
	FiatCurrency   string  `json:"fiatCurrency"`
	Network        string  `json:"network"`
}
