package types

import (
	"github.com/flowpayhq/flowpay/internal/core/application"
	"github.com/flowpayhq/flowpay/internal/core/domain"
)

// CheckoutView is the widget's full render model for one payment.
type CheckoutView struct {
	Id           string  `json:"id"`
	State        string  `json:"state"`
	MerchantName string  `json:"merchantName"`
	Description  string  `json:"description,omitempty"`
	Currency     string  `json:"currency"`
	Price        float64 `json:"price"`

	AvailableMethods []domain.PaymentMethod `json:"availableMethods"`
	SelectedTicker   string                 `json:"selectedTicker,omitempty"`
	CryptoAmount     string                 `json:"cryptoAmount,omitempty"`
	CryptoCurrency   string                 `json:"cryptoCurrency,omitempty"`
	CustomerEmail    string                 `json:"customerEmail,omitempty"`

	CanConfirm bool `json:"canConfirm"`
	PollError  bool `json:"pollError"`

	PaymentInfo *domain.PaymentInfo `json:"paymentInfo,omitempty"`
	Countdown   *CountdownView      `json:"countdown,omitempty"`
	Failure     *FailureView        `json:"failure,omitempty"`
}

// FailureView is rendered instead of the payment form once a payment
// reached a terminal failed status.
type FailureView struct {
	Message        string `json:"message"`
	SupportContact string `json:"supportContact,omitempty"`
}

type CountdownView struct {
	RemainingSec int64   `json:"remainingSec"`
	TotalSec     int64   `json:"totalSec"`
	Fraction     float64 `json:"fraction"`
}

func NewCheckoutView(snap *application.CheckoutSnapshot) CheckoutView {
	view := CheckoutView{
		Id:               snap.PaymentID,
		State:            string(snap.State),
		AvailableMethods: snap.AvailableMethods,
		CustomerEmail:    snap.CustomerEmail,
		CanConfirm:       snap.CanConfirm,
		PollError:        snap.PollError,
	}
	if snap.Payment != nil {
		view.MerchantName = snap.Payment.MerchantName
		view.Description = snap.Payment.Description
		view.Currency = snap.Payment.Currency
		view.Price = snap.Payment.Price
		view.PaymentInfo = snap.Payment.PaymentInfo
	}
	if snap.SelectedMethod != nil {
		view.SelectedTicker = snap.SelectedMethod.Ticker
	}
	if snap.ConvertResult != nil {
		view.CryptoAmount = snap.ConvertResult.CryptoAmount
		view.CryptoCurrency = snap.ConvertResult.CryptoCurrency
	}
	if snap.Countdown != nil {
		view.Countdown = &CountdownView{
			RemainingSec: int64(snap.Countdown.Remaining.Seconds()),
			TotalSec:     int64(snap.Countdown.Total.Seconds()),
			Fraction:     snap.Countdown.Fraction,
		}
	}
	return view
}

// CheckoutMeta is static widget configuration served once per load.
type CheckoutMeta struct {
	ShowBranding   bool   `json:"showBranding"`
	SupportContact string `json:"supportContact,omitempty"`
}
