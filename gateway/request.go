package gateway

import "errors"

// Token request payloads, one struct per gateway variant. Optional
// fields carry omitempty tags so a default-valued optional argument is
// omitted from the serialized payload entirely rather than emitted as
// a null or empty placeholder. Field order follows the wire order the
// gateway documents.

// CardTokenRequest tokenizes a card for a one-off charge.
type CardTokenRequest struct {
	Card        Card    `json:"card"`
	TotalAmount float64 `json:"totalAmount"`
}

func (r CardTokenRequest) validate() error {
	if err := r.Card.validate(); err != nil {
		return err
	}
	if r.TotalAmount <= 0 {
		return errors.New("totalAmount must be greater than 0")
	}
	return nil
}

// subscriptionTokenRequest tokenizes a card for recurring charges. The
// merchant identifier comes from the Gateway's fixed credential, so the
// payload type stays internal.
type subscriptionTokenRequest struct {
	MerchantIdentifier string `json:"merchant_identifier"`
	Card               Card   `json:"card"`
}

func (r subscriptionTokenRequest) validate() error {
	if r.MerchantIdentifier == "" {
		return errors.New("merchant identifier is required")
	}
	return r.Card.validate()
}

// CardAsyncTokenRequest starts a redirect-based card tokenization where
// the end user authenticates on a gateway-hosted page. Description and
// Email are optional.
type CardAsyncTokenRequest struct {
	TotalAmount float64 `json:"totalAmount"`
	ReturnURL   string  `json:"returnUrl"`
	Description string  `json:"description,omitempty"`
	Email       string  `json:"email,omitempty"`
}

func (r CardAsyncTokenRequest) validate() error {
	if r.TotalAmount <= 0 {
		return errors.New("totalAmount must be greater than 0")
	}
	if r.ReturnURL == "" {
		return errors.New("returnUrl is required")
	}
	return nil
}

// CardSubscriptionAsyncTokenRequest starts a redirect-based recurring
// card enrollment. CardNumber is optional; when absent the user enters
// the number on the hosted page.
type CardSubscriptionAsyncTokenRequest struct {
	Email       string `json:"email"`
	Currency    string `json:"currency"`
	CallbackURL string `json:"callbackUrl"`
	CardNumber  string `json:"cardNumber,omitempty"`
}

func (r CardSubscriptionAsyncTokenRequest) validate() error {
	if r.Email == "" {
		return errors.New("email is required")
	}
	if r.Currency == "" {
		return errors.New("currency is required")
	}
	if r.CallbackURL == "" {
		return errors.New("callbackUrl is required")
	}
	return nil
}

// CashTokenRequest tokenizes an over-the-counter cash payment. Email
// and Description are optional.
type CashTokenRequest struct {
	Name           string  `json:"name"`
	LastName       string  `json:"lastName"`
	Identification string  `json:"identification"`
	DocumentType   string  `json:"documentType"`
	Email          string  `json:"email,omitempty"`
	TotalAmount    float64 `json:"totalAmount"`
	Currency       string  `json:"currency"`
	Description    string  `json:"description,omitempty"`
}

func (r CashTokenRequest) validate() error {
	if r.Name == "" {
		return errors.New("name is required")
	}
	if r.LastName == "" {
		return errors.New("lastName is required")
	}
	if r.Identification == "" {
		return errors.New("identification is required")
	}
	if r.DocumentType == "" {
		return errors.New("documentType is required")
	}
	if r.TotalAmount <= 0 {
		return errors.New("totalAmount must be greater than 0")
	}
	if r.Currency == "" {
		return errors.New("currency is required")
	}
	return nil
}

// TransferTokenRequest tokenizes a one-off bank transfer.
// PaymentDescription is optional.
type TransferTokenRequest struct {
	Amount             Amount `json:"amount"`
	CallbackURL        string `json:"callbackUrl"`
	UserType           string `json:"userType"`
	DocumentType       string `json:"documentType"`
	DocumentNumber     string `json:"documentNumber"`
	Email              string `json:"email"`
	Currency           string `json:"currency"`
	PaymentDescription string `json:"paymentDescription,omitempty"`
}

func (r TransferTokenRequest) validate() error {
	if r.CallbackURL == "" {
		return errors.New("callbackUrl is required")
	}
	if r.UserType == "" {
		return errors.New("userType is required")
	}
	if r.DocumentType == "" {
		return errors.New("documentType is required")
	}
	if r.DocumentNumber == "" {
		return errors.New("documentNumber is required")
	}
	if r.Email == "" {
		return errors.New("email is required")
	}
	if r.Currency == "" {
		return errors.New("currency is required")
	}
	return nil
}

func (c Card) validate() error {
	if c.HolderName == "" {
		return errors.New("card holder name is required")
	}
	if c.Number == "" {
		return errors.New("card number is required")
	}
	return nil
}

func (t TransferSubscription) validate() error {
	if t.DocumentNumber == "" {
		return errors.New("documentNumber is required")
	}
	if t.AccountType == "" {
		return errors.New("accountType is required")
	}
	if t.BankCode == "" {
		return errors.New("bankCode is required")
	}
	if t.Name == "" {
		return errors.New("name is required")
	}
	if t.LastName == "" {
		return errors.New("lastName is required")
	}
	if t.DocumentType == "" {
		return errors.New("documentType is required")
	}
	if t.PhoneExtension <= 0 {
		return errors.New("phoneExtension is required")
	}
	if t.Email == "" {
		return errors.New("email is required")
	}
	if t.Currency == "" {
		return errors.New("currency is required")
	}
	return nil
}
