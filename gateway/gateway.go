package gateway

import (
	"context"
	"fmt"
	"net/http"
)

const (
	// API Endpoints
	endpointCardToken                  = "v1/tokens"
	endpointSubscriptionToken          = "v1/subscription-tokens"
	endpointCardAsyncToken             = "card-async/v1/tokens"
	endpointCardSubscriptionAsyncToken = "subscriptions/v1/card-async/tokens"
	endpointCashToken                  = "cash/v1/tokens"
	endpointTransferToken              = "transfer/v1/tokens"
	endpointTransferSubscriptionToken  = "v1/transfer-subscription-tokens"
	endpointSecureValidation           = "rules/v1/secureValidation"
	endpointBankList                   = "transfer-subscriptions/v1/bankList"
	endpointBinInfo                    = "card/v1/bin"
)

// Config carries the construction-time settings of a Gateway. All of it
// is read-only after New returns.
type Config struct {
	PublicMerchantID string
	Currency         string
	Environment      Environment
	// SingleIP restricts the credential to the caller's IP by attaching
	// the gateway's restriction header to every request.
	SingleIP bool
	// BaseURL overrides the environment's base URL when non-empty.
	// Local stub servers and self-hosted deployments use this.
	BaseURL string
}

// Gateway is the tokenization client. It issues one blocking request
// per operation, holds no mutable state between calls and is safe for
// concurrent use.
type Gateway struct {
	publicMerchantID string
	currency         string
	environment      Environment
	singleIP         bool
	baseURL          string
	httpClient       *GatewayHTTPClient
}

// New creates a Gateway from the given configuration.
func New(cfg Config) (*Gateway, error) {
	if cfg.Environment == "" {
		cfg.Environment = EnvironmentSandbox
	}

	conf := map[string]string{
		"publicMerchantId": cfg.PublicMerchantID,
		"currency":         cfg.Currency,
		"environment":      string(cfg.Environment),
	}
	if err := ValidateConfigFields(conf, RequiredConfig()); err != nil {
		return nil, err
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = cfg.Environment.BaseURL()
	}

	return &Gateway{
		publicMerchantID: cfg.PublicMerchantID,
		currency:         cfg.Currency,
		environment:      cfg.Environment,
		singleIP:         cfg.SingleIP,
		baseURL:          baseURL,
		httpClient:       NewGatewayHTTPClient(CreateHTTPClientConfig(baseURL, cfg.PublicMerchantID, cfg.SingleIP)),
	}, nil
}

// Currency returns the settlement currency fixed at construction.
func (g *Gateway) Currency() string {
	return g.currency
}

// MerchantID returns the public merchant credential fixed at construction.
func (g *Gateway) MerchantID() string {
	return g.publicMerchantID
}

// Environment returns the deployment the Gateway talks to.
func (g *Gateway) Environment() Environment {
	return g.environment
}

// RequestToken exchanges card details for a single-use token.
func (g *Gateway) RequestToken(ctx context.Context, card Card, totalAmount float64) (*Transaction, error) {
	req := CardTokenRequest{Card: card, TotalAmount: totalAmount}
	if err := req.validate(); err != nil {
		return nil, fmt.Errorf("gateway: invalid card token request: %w", err)
	}
	return g.postToken(ctx, endpointCardToken, variantCard, req)
}

// RequestSubscriptionToken exchanges card details for a recurring-charge
// token tied to the Gateway's merchant credential.
func (g *Gateway) RequestSubscriptionToken(ctx context.Context, card Card) (*Transaction, error) {
	req := subscriptionTokenRequest{MerchantIdentifier: g.publicMerchantID, Card: card}
	if err := req.validate(); err != nil {
		return nil, fmt.Errorf("gateway: invalid subscription token request: %w", err)
	}
	return g.postToken(ctx, endpointSubscriptionToken, variantCardSubscription, req)
}

// RequestCardAsyncToken starts a redirect-based card tokenization.
func (g *Gateway) RequestCardAsyncToken(ctx context.Context, req CardAsyncTokenRequest) (*Transaction, error) {
	if err := req.validate(); err != nil {
		return nil, fmt.Errorf("gateway: invalid card async token request: %w", err)
	}
	return g.postToken(ctx, endpointCardAsyncToken, variantCardAsync, req)
}

// RequestCardSubscriptionAsyncToken starts a redirect-based recurring
// card enrollment.
func (g *Gateway) RequestCardSubscriptionAsyncToken(ctx context.Context, req CardSubscriptionAsyncTokenRequest) (*Transaction, error) {
	if err := req.validate(); err != nil {
		return nil, fmt.Errorf("gateway: invalid card subscription async token request: %w", err)
	}
	return g.postToken(ctx, endpointCardSubscriptionAsyncToken, variantCardSubscriptionAsync, req)
}

// RequestCashToken tokenizes an over-the-counter cash payment.
func (g *Gateway) RequestCashToken(ctx context.Context, req CashTokenRequest) (*Transaction, error) {
	if err := req.validate(); err != nil {
		return nil, fmt.Errorf("gateway: invalid cash token request: %w", err)
	}
	return g.postToken(ctx, endpointCashToken, variantCash, req)
}

// RequestTransferToken tokenizes a one-off bank transfer.
func (g *Gateway) RequestTransferToken(ctx context.Context, req TransferTokenRequest) (*Transaction, error) {
	if err := req.validate(); err != nil {
		return nil, fmt.Errorf("gateway: invalid transfer token request: %w", err)
	}
	return g.postToken(ctx, endpointTransferToken, variantTransfer, req)
}

// RequestTransferSubscriptionToken tokenizes a recurring-transfer
// enrollment. The returned Transaction carries the (secureId,
// secureService) pair needed for the secure-validation round when the
// gateway requires one.
func (g *Gateway) RequestTransferSubscriptionToken(ctx context.Context, profile TransferSubscription) (*Transaction, error) {
	if err := profile.validate(); err != nil {
		return nil, fmt.Errorf("gateway: invalid transfer subscription token request: %w", err)
	}
	return g.postToken(ctx, endpointTransferSubscriptionToken, variantTransferSubscription, profile)
}

// RequestSecureValidation drives one round of the secure-validation
// challenge: an AskQuestionnaire opens the round, a ValidateAnswers
// closes it. Challenge codes and messages pass through unmodified.
func (g *Gateway) RequestSecureValidation(ctx context.Context, req SecureValidationRequest) (*SecureValidation, error) {
	resp, err := g.httpClient.SendJSON(ctx, &HTTPRequest{
		Method:   http.MethodPost,
		Endpoint: endpointSecureValidation,
		Body:     req,
	})
	if err != nil {
		return nil, fmt.Errorf("gateway: secure validation request failed: %w", err)
	}

	sv, err := interpretSecureValidation(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("gateway: %w", err)
	}
	return sv, nil
}

// GetBankList returns the banks available for transfer subscriptions,
// in gateway order. A lookup miss is an empty list, not a failure code.
func (g *Gateway) GetBankList(ctx context.Context) ([]Bank, error) {
	resp, err := g.httpClient.Get(ctx, endpointBankList)
	if err != nil {
		return nil, fmt.Errorf("gateway: bank list request failed: %w", err)
	}

	var banks []Bank
	if err := g.httpClient.ParseJSONResponse(resp, &banks); err != nil {
		return nil, fmt.Errorf("gateway: failed to parse bank list response: %w", err)
	}
	return banks, nil
}

// GetBinInfo resolves the issuing bank, brand and card type for the
// given 6-digit BIN.
func (g *Gateway) GetBinInfo(ctx context.Context, bin string) (*BinInfo, error) {
	if bin == "" {
		return nil, fmt.Errorf("gateway: bin is required")
	}

	resp, err := g.httpClient.Get(ctx, endpointBinInfo+"/"+bin)
	if err != nil {
		return nil, fmt.Errorf("gateway: bin info request failed: %w", err)
	}

	var info BinInfo
	if err := g.httpClient.ParseJSONResponse(resp, &info); err != nil {
		return nil, fmt.Errorf("gateway: failed to parse bin info response: %w", err)
	}
	return &info, nil
}

// postToken sends a token request and interprets the gateway response.
func (g *Gateway) postToken(ctx context.Context, endpoint string, v variant, body any) (*Transaction, error) {
	resp, err := g.httpClient.SendJSON(ctx, &HTTPRequest{
		Method:   http.MethodPost,
		Endpoint: endpoint,
		Body:     body,
	})
	if err != nil {
		return nil, fmt.Errorf("gateway: token request failed: %w", err)
	}

	return interpretTokenResponse(v, resp.StatusCode, resp.Body), nil
}
