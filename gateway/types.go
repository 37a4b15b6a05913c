package gateway

// Card represents the payment card details sent for tokenization.
// Only the holder name and number are checked client side; the gateway
// is authoritative for card-number syntax and rejects invalid numbers
// through its own error response.
type Card struct {
	HolderName  string `json:"name"`
	Number      string `json:"number"`
	CVC         string `json:"cvc"`
	ExpiryMonth string `json:"expiryMonth"`
	ExpiryYear  string `json:"expiryYear"`
}

// Amount represents the tax breakdown of a transfer amount. The total
// is computed by the gateway, never summed locally.
type Amount struct {
	SubtotalIva  float64 `json:"subtotalIva"`
	SubtotalIva0 float64 `json:"subtotalIva0"`
	Iva          float64 `json:"iva"`
}

// TransferSubscription holds the account-holder profile required to
// tokenize a recurring bank-transfer subscription. Every field is
// mandatory; this variant has no partial form.
type TransferSubscription struct {
	DocumentNumber string `json:"documentNumber"`
	AccountType    string `json:"accountType"`
	BankCode       string `json:"bankCode"`
	Name           string `json:"name"`
	LastName       string `json:"lastName"`
	DocumentType   string `json:"documentType"`
	PhoneExtension int    `json:"phoneExtension"`
	Email          string `json:"email"`
	Currency       string `json:"currency"`
}

// Transaction is the outcome of a token request. Exactly one of Token
// or the (Code, Message) pair is populated, never both. SecureID and
// SecureService are only present on transfer-subscription tokens that
// require a secure-validation round.
type Transaction struct {
	Token         string `json:"token,omitempty"`
	Code          string `json:"code,omitempty"`
	Message       string `json:"message,omitempty"`
	SecureID      string `json:"secureId,omitempty"`
	SecureService string `json:"secureService,omitempty"`
}

// Successful reports whether the gateway issued a token.
func (t *Transaction) Successful() bool {
	return t.Token != ""
}

// Bank is a single entry of the transfer-subscription bank list.
type Bank struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// BinInfo describes the issuing bank, brand and card type resolved
// from the leading digits of a card number.
type BinInfo struct {
	Bank     string `json:"bank"`
	Brand    string `json:"brand"`
	CardType string `json:"cardType"`
}
