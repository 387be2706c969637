package domain

type Customer struct {
	ID        string           `json:"id"`
	Email     string           `json:"email"`
	CreatedAt string           `json:"createdAt,omitempty"`
	Details   *CustomerDetails `json:"details,omitempty"`
}

type CustomerDetails struct {
	Payments           []CustomerPayment `json:"payments"`
	SuccessfulPayments int               `json:"successfulPayments"`
}

type CustomerPayment struct {
	ID        string        `json:"id"`
	CreatedAt string        `json:"createdAt"`
	Currency  string        `json:"currency"`
	Price     string        `json:"price"`
	Status    PaymentStatus `json:"status"`
}

type ListCustomersParams struct {
	Limit  int
	Cursor string
}
