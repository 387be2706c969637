package domain

// PaymentsPage is one cursor page of payments or withdrawals. An empty
// cursor means the last page was reached.
type PaymentsPage struct {
	Limit   int               `json:"limit"`
	Cursor  string            `json:"cursor"`
	Results []MerchantPayment `json:"results"`
}

type CustomersPage struct {
	Limit   int        `json:"limit"`
	Cursor  string     `json:"cursor"`
	Results []Customer `json:"results"`
}
