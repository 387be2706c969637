package domain

// MerchantBalance is a per-blockchain/currency ledger snapshot. Amounts
// are decimal strings; they are never parsed into binary floats.
type MerchantBalance struct {
	ID                         string `json:"id"`
	Name                       string `json:"name"`
	Blockchain                 string `json:"blockchain"`
	BlockchainName             string `json:"blockchainName"`
	Currency                   string `json:"currency"`
	Ticker                     string `json:"ticker"`
	Amount                     string `json:"amount"`
	UsdAmount                  string `json:"usdAmount"`
	MinimalWithdrawalAmountUSD string `json:"minimalWithdrawalAmountUSD"`
	IsTest                     bool   `json:"isTest"`
}

// ServiceFee is a withdrawal fee quote for one balance.
type ServiceFee struct {
	Blockchain   string `json:"blockchain"`
	Currency     string `json:"currency"`
	CurrencyFee  string `json:"currencyFee"`
	UsdFee       string `json:"usdFee"`
	CalculatedAt string `json:"calculatedAt"`
	IsTest       bool   `json:"isTest"`
}

// Withdrawal is the request sent once to move funds from a balance to a
// saved address. It is constructed client-side and never re-edited.
type Withdrawal struct {
	AddressID string `json:"addressId"`
	BalanceID string `json:"balanceId"`
	Amount    string `json:"amount"`
}
