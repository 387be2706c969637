package domain

// PaymentLink is a reusable template from which new payments are spawned.
type PaymentLink struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	URL            string        `json:"url"`
	Currency       string        `json:"currency"`
	Price          float64       `json:"price"`
	Description    string        `json:"description,omitempty"`
	RedirectURL    string        `json:"redirectUrl,omitempty"`
	SuccessAction  SuccessAction `json:"successAction"`
	SuccessMessage string        `json:"successMessage,omitempty"`
	CreatedAt      string        `json:"createdAt"`
}

type PaymentLinkParams struct {
	Name           string        `json:"name"`
	Currency       string        `json:"currency"`
	Price          float64       `json:"price"`
	Description    string        `json:"description,omitempty"`
	RedirectURL    string        `json:"redirectUrl,omitempty"`
	SuccessAction  SuccessAction `json:"successAction"`
	SuccessMessage string        `json:"successMessage,omitempty"`
}

// CheckoutPaymentLink is the public view of a link shown on the landing
// page before a payment is spawned from it.
type CheckoutPaymentLink struct {
	MerchantName string  `json:"merchantName"`
	Currency     string  `json:"currency"`
	Price        float64 `json:"price"`
	Description  string  `json:"description,omitempty"`
}
