package domain

// MerchantAddress is a named withdrawal destination scoped to one blockchain.
type MerchantAddress struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Address        string `json:"address"`
	Blockchain     string `json:"blockchain"`
	BlockchainName string `json:"blockchainName"`
}

type MerchantAddressParams struct {
	Name       string `json:"name"`
	Address    string `json:"address"`
	Blockchain string `json:"blockchain"`
}
