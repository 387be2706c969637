package domain

type Merchant struct {
	ID                      string          `json:"id"`
	Name                    string          `json:"name"`
	Website                 string          `json:"website"`
	WebhookSettings         WebhookSettings `json:"webhookSettings"`
	SupportedPaymentMethods []PaymentMethod `json:"supportedPaymentMethods"`
}

type MerchantParams struct {
	Name    string `json:"name"`
	Website string `json:"website"`
}

type WebhookSettings struct {
	URL    string `json:"url"`
	Secret string `json:"secret,omitempty"`
}

type MerchantToken struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Token     string `json:"token"`
	CreatedAt string `json:"createdAt"`
}

type SupportMessage struct {
	Topic   string `json:"topic"`
	Message string `json:"message"`
}

type User struct {
	UUID            string `json:"uuid"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	ProfileImageURL string `json:"profileImageUrl"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthProvider struct {
	Name string `json:"name"`
}
