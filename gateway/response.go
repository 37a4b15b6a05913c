package gateway

import (
	"encoding/json"
	"strings"
)

// variant identifies which token request a response belongs to. Error
// remapping is variant specific.
type variant int

const (
	variantCard variant = iota
	variantCardSubscription
	variantCardAsync
	variantCardSubscriptionAsync
	variantCash
	variantTransfer
	variantTransferSubscription
)

// condition is a recognized gateway failure class. The raw gateway code
// is not surfaced verbatim; each variant maps the condition to its own
// client-facing code below.
type condition int

const (
	conditionInvalidBody condition = iota
	conditionInvalidMerchant
)

// errorCodes is the client-facing error-code table, keyed first by
// request variant and then by recognized condition. The authoritative
// table is gateway defined; treat this as configuration data and extend
// it as new conditions are documented.
var errorCodes = map[variant]map[condition]string{
	variantCard:                  {conditionInvalidBody: "K001", conditionInvalidMerchant: "K004"},
	variantCardSubscription:      {conditionInvalidBody: "K001", conditionInvalidMerchant: "K004"},
	variantCardAsync:             {conditionInvalidBody: "CAS001", conditionInvalidMerchant: "CAS004"},
	variantCardSubscriptionAsync: {conditionInvalidBody: "K001", conditionInvalidMerchant: "K004"},
	variantCash:                  {conditionInvalidBody: "C001", conditionInvalidMerchant: "C004"},
	variantTransfer:              {conditionInvalidBody: "T001", conditionInvalidMerchant: "T004"},
	variantTransferSubscription:  {conditionInvalidBody: "T001", conditionInvalidMerchant: "T004"},
}

// invalidMerchantFragment appears in the gateway's message whenever the
// merchant credential is rejected. Everything else degrades to the
// variant's invalid-body condition.
const invalidMerchantFragment = "comercio o credencial"

// tokenResponse is the raw gateway response envelope for token requests.
type tokenResponse struct {
	Code          string `json:"code"`
	Message       string `json:"message"`
	Token         string `json:"token"`
	SecureID      string `json:"secureId"`
	SecureService string `json:"secureService"`
}

// interpretTokenResponse translates a raw gateway response into a
// Transaction. A 2xx status with a token is a success; anything else,
// including a 2xx with an empty token, is a failure carrying the
// variant-remapped code and the gateway message unchanged.
func interpretTokenResponse(v variant, statusCode int, body []byte) *Transaction {
	var resp tokenResponse
	// A body that does not parse is treated like a body with no token.
	_ = json.Unmarshal(body, &resp)

	if statusCode >= 200 && statusCode < 300 && resp.Token != "" {
		return &Transaction{
			Token:         resp.Token,
			SecureID:      resp.SecureID,
			SecureService: resp.SecureService,
		}
	}

	return &Transaction{
		Code:    errorCodes[v][classifyFailure(resp.Message)],
		Message: resp.Message,
	}
}

// classifyFailure buckets a gateway failure message into a condition.
func classifyFailure(message string) condition {
	if strings.Contains(message, invalidMerchantFragment) {
		return conditionInvalidMerchant
	}
	return conditionInvalidBody
}
