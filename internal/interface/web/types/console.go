package types

// MenuItem is one entry of the console side menu. The list is derived
// from feature toggles, not hardcoded in the UI.
type MenuItem struct {
	Name  string `json:"name"`
	Path  string `json:"path"`
	Icon  string `json:"icon"`
	Badge string `json:"badge,omitempty"`
}

// PagedResult wraps a cursor-accumulated list: Results holds every row
// fetched so far and HasMore tells the UI to offer a "load more" action.
type PagedResult[T any] struct {
	Results []T  `json:"results"`
	HasMore bool `json:"hasMore"`
}

type SelectMerchantRequest struct {
	MerchantID string `json:"merchantId" binding:"required"`
}

type SetAmountRequest struct {
	Amount string `json:"amount"`
}

type SubmitWithdrawalRequest struct {
	AddressID string `json:"addressId" binding:"required"`
}

type SetMethodRequest struct {
	Ticker string `json:"ticker" binding:"required"`
}

type SetCustomerRequest struct {
	Email string `json:"email"`
}

type UpdateAddressRequest struct {
	Name string `json:"name" binding:"required"`
}

type CreateTokenRequest struct {
	Name string `json:"name" binding:"required"`
}

type UpdateMethodsRequest struct {
	Tickers []string `json:"tickers"`
}
