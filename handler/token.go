package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/mstgnz/tokengate/gateway"
	"github.com/mstgnz/tokengate/infra/logger"
	"github.com/mstgnz/tokengate/infra/response"
	"github.com/mstgnz/tokengate/infra/store"
)

// Token variant names as they appear in URLs, logs and the attempt store.
const (
	VariantCard                  = "card"
	VariantCardSubscription      = "card-subscription"
	VariantCardAsync             = "card-async"
	VariantCardSubscriptionAsync = "card-subscription-async"
	VariantCash                  = "cash"
	VariantTransfer              = "transfer"
	VariantTransferSubscription  = "transfer-subscription"
)

// TokenServiceInterface defines the interface for tokenization operations
type TokenServiceInterface interface {
	MerchantID() string
	RequestToken(ctx context.Context, card gateway.Card, totalAmount float64) (*gateway.Transaction, error)
	RequestSubscriptionToken(ctx context.Context, card gateway.Card) (*gateway.Transaction, error)
	RequestCardAsyncToken(ctx context.Context, req gateway.CardAsyncTokenRequest) (*gateway.Transaction, error)
	RequestCardSubscriptionAsyncToken(ctx context.Context, req gateway.CardSubscriptionAsyncTokenRequest) (*gateway.Transaction, error)
	RequestCashToken(ctx context.Context, req gateway.CashTokenRequest) (*gateway.Transaction, error)
	RequestTransferToken(ctx context.Context, req gateway.TransferTokenRequest) (*gateway.Transaction, error)
	RequestTransferSubscriptionToken(ctx context.Context, profile gateway.TransferSubscription) (*gateway.Transaction, error)
	RequestSecureValidation(ctx context.Context, req gateway.SecureValidationRequest) (*gateway.SecureValidation, error)
	GetBankList(ctx context.Context) ([]gateway.Bank, error)
	GetBinInfo(ctx context.Context, bin string) (*gateway.BinInfo, error)
}

// AttemptStore persists token attempt audit records
type AttemptStore interface {
	SaveAttempt(attempt store.TokenAttempt) error
}

// TokenHandler handles tokenization related HTTP requests
type TokenHandler struct {
	tokenService TokenServiceInterface
	validate     *validator.Validate
	attempts     AttemptStore
}

// NewTokenHandler creates a new token handler. The attempt store is
// optional; a nil store disables audit persistence.
func NewTokenHandler(tokenService TokenServiceInterface, validate *validator.Validate, attempts AttemptStore) *TokenHandler {
	return &TokenHandler{
		tokenService: tokenService,
		validate:     validate,
		attempts:     attempts,
	}
}

// CardDTO carries card details for token requests
type CardDTO struct {
	Name        string `json:"name" validate:"required"`
	Number      string `json:"number" validate:"required"`
	CVC         string `json:"cvc"`
	ExpiryMonth string `json:"expiryMonth"`
	ExpiryYear  string `json:"expiryYear"`
}

func (c CardDTO) toCard() gateway.Card {
	return gateway.Card{
		HolderName:  c.Name,
		Number:      c.Number,
		CVC:         c.CVC,
		ExpiryMonth: c.ExpiryMonth,
		ExpiryYear:  c.ExpiryYear,
	}
}

// CardTokenDTO is the request body for one-off card tokens
type CardTokenDTO struct {
	Card        CardDTO `json:"card" validate:"required"`
	TotalAmount float64 `json:"totalAmount" validate:"required,gt=0"`
}

// CardSubscriptionTokenDTO is the request body for recurring card tokens
type CardSubscriptionTokenDTO struct {
	Card CardDTO `json:"card" validate:"required"`
}

// CardAsyncTokenDTO is the request body for redirect-based card tokens
type CardAsyncTokenDTO struct {
	TotalAmount float64 `json:"totalAmount" validate:"required,gt=0"`
	ReturnURL   string  `json:"returnUrl" validate:"required,url"`
	Description string  `json:"description"`
	Email       string  `json:"email" validate:"omitempty,email"`
}

// CardSubscriptionAsyncTokenDTO is the request body for redirect-based
// recurring card enrollment
type CardSubscriptionAsyncTokenDTO struct {
	Email       string `json:"email" validate:"required,email"`
	Currency    string `json:"currency" validate:"required,len=3"`
	CallbackURL string `json:"callbackUrl" validate:"required,url"`
	CardNumber  string `json:"cardNumber"`
}

// CashTokenDTO is the request body for cash tokens
type CashTokenDTO struct {
	Name           string  `json:"name" validate:"required"`
	LastName       string  `json:"lastName" validate:"required"`
	Identification string  `json:"identification" validate:"required"`
	DocumentType   string  `json:"documentType" validate:"required"`
	Email          string  `json:"email" validate:"omitempty,email"`
	TotalAmount    float64 `json:"totalAmount" validate:"required,gt=0"`
	Currency       string  `json:"currency" validate:"required,len=3"`
	Description    string  `json:"description"`
}

// TransferTokenDTO is the request body for one-off transfer tokens
type TransferTokenDTO struct {
	Amount             gateway.Amount `json:"amount" validate:"required"`
	CallbackURL        string         `json:"callbackUrl" validate:"required,url"`
	UserType           string         `json:"userType" validate:"required"`
	DocumentType       string         `json:"documentType" validate:"required"`
	DocumentNumber     string         `json:"documentNumber" validate:"required"`
	Email              string         `json:"email" validate:"required,email"`
	Currency           string         `json:"currency" validate:"required,len=3"`
	PaymentDescription string         `json:"paymentDescription"`
}

// TransferSubscriptionTokenDTO is the request body for recurring
// transfer enrollment
type TransferSubscriptionTokenDTO struct {
	DocumentNumber string `json:"documentNumber" validate:"required"`
	AccountType    string `json:"accountType" validate:"required"`
	BankCode       string `json:"bankCode" validate:"required"`
	Name           string `json:"name" validate:"required"`
	LastName       string `json:"lastName" validate:"required"`
	DocumentType   string `json:"documentType" validate:"required"`
	PhoneExtension int    `json:"phoneExtension" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	Currency       string `json:"currency" validate:"required,len=3"`
}

// RequestToken handles token requests for all variants. The variant is
// taken from the URL path parameter.
func (h *TokenHandler) RequestToken(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	variant := chi.URLParam(r, "variant")

	var (
		tx  *gateway.Transaction
		err error
	)

	switch variant {
	case VariantCard:
		var req CardTokenDTO
		if !h.decodeAndValidate(w, r, &req) {
			return
		}
		tx, err = h.tokenService.RequestToken(ctx, req.Card.toCard(), req.TotalAmount)

	case VariantCardSubscription:
		var req CardSubscriptionTokenDTO
		if !h.decodeAndValidate(w, r, &req) {
			return
		}
		tx, err = h.tokenService.RequestSubscriptionToken(ctx, req.Card.toCard())

	case VariantCardAsync:
		var req CardAsyncTokenDTO
		if !h.decodeAndValidate(w, r, &req) {
			return
		}
		tx, err = h.tokenService.RequestCardAsyncToken(ctx, gateway.CardAsyncTokenRequest{
			TotalAmount: req.TotalAmount,
			ReturnURL:   req.ReturnURL,
			Description: req.Description,
			Email:       req.Email,
		})

	case VariantCardSubscriptionAsync:
		var req CardSubscriptionAsyncTokenDTO
		if !h.decodeAndValidate(w, r, &req) {
			return
		}
		tx, err = h.tokenService.RequestCardSubscriptionAsyncToken(ctx, gateway.CardSubscriptionAsyncTokenRequest{
			Email:       req.Email,
			Currency:    req.Currency,
			CallbackURL: req.CallbackURL,
			CardNumber:  req.CardNumber,
		})

	case VariantCash:
		var req CashTokenDTO
		if !h.decodeAndValidate(w, r, &req) {
			return
		}
		tx, err = h.tokenService.RequestCashToken(ctx, gateway.CashTokenRequest{
			Name:           req.Name,
			LastName:       req.LastName,
			Identification: req.Identification,
			DocumentType:   req.DocumentType,
			Email:          req.Email,
			TotalAmount:    req.TotalAmount,
			Currency:       req.Currency,
			Description:    req.Description,
		})

	case VariantTransfer:
		var req TransferTokenDTO
		if !h.decodeAndValidate(w, r, &req) {
			return
		}
		tx, err = h.tokenService.RequestTransferToken(ctx, gateway.TransferTokenRequest{
			Amount:             req.Amount,
			CallbackURL:        req.CallbackURL,
			UserType:           req.UserType,
			DocumentType:       req.DocumentType,
			DocumentNumber:     req.DocumentNumber,
			Email:              req.Email,
			Currency:           req.Currency,
			PaymentDescription: req.PaymentDescription,
		})

	case VariantTransferSubscription:
		var req TransferSubscriptionTokenDTO
		if !h.decodeAndValidate(w, r, &req) {
			return
		}
		tx, err = h.tokenService.RequestTransferSubscriptionToken(ctx, gateway.TransferSubscription{
			DocumentNumber: req.DocumentNumber,
			AccountType:    req.AccountType,
			BankCode:       req.BankCode,
			Name:           req.Name,
			LastName:       req.LastName,
			DocumentType:   req.DocumentType,
			PhoneExtension: req.PhoneExtension,
			Email:          req.Email,
			Currency:       req.Currency,
		})

	default:
		response.Error(w, http.StatusNotFound, "Unknown token variant", nil)
		return
	}

	if err != nil {
		response.Error(w, http.StatusBadGateway, "Token request failed", err)
		return
	}

	h.recordAttempt(r, variant, tx)

	if tx.Successful() {
		response.Success(w, http.StatusOK, "Token issued", tx)
		return
	}

	// Gateway declined the request; the failure code travels in the data
	response.Success(w, http.StatusOK, "Token request declined", tx)
}

// AskQuestionnaireDTO requests the challenge questionnaire for a
// secure-validation session
type AskQuestionnaireDTO struct {
	SecureID       string `json:"secureId" validate:"required"`
	SecureService  string `json:"secureService" validate:"required"`
	CityCode       string `json:"cityCode"`
	StateCode      string `json:"stateCode"`
	Phone          string `json:"phone"`
	ExpeditionDate string `json:"expeditionDate"`
}

// AnswerDTO is a single questionnaire answer
type AnswerDTO struct {
	ID     string `json:"id" validate:"required"`
	Answer string `json:"answer" validate:"required"`
}

// ValidateAnswersDTO submits answers for an issued questionnaire
type ValidateAnswersDTO struct {
	SecureID          string      `json:"secureId" validate:"required"`
	SecureService     string      `json:"secureService" validate:"required"`
	QuestionnaireCode string      `json:"questionnaireCode" validate:"required"`
	Answers           []AnswerDTO `json:"answers" validate:"required,min=1,dive"`
}

// AskQuestionnaire handles questionnaire requests for secure validation
func (h *TokenHandler) AskQuestionnaire(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	var req AskQuestionnaireDTO
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	sv, err := h.tokenService.RequestSecureValidation(ctx, gateway.AskQuestionnaire{
		SecureID:       req.SecureID,
		SecureService:  req.SecureService,
		CityCode:       req.CityCode,
		StateCode:      req.StateCode,
		Phone:          req.Phone,
		ExpeditionDate: req.ExpeditionDate,
	})
	if err != nil {
		response.Error(w, http.StatusBadGateway, "Secure validation failed", err)
		return
	}

	response.Success(w, http.StatusOK, "Secure validation processed", sv)
}

// ValidateAnswers handles answer submission for secure validation
func (h *TokenHandler) ValidateAnswers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	var req ValidateAnswersDTO
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	answers := make([]gateway.Answer, 0, len(req.Answers))
	for _, a := range req.Answers {
		answers = append(answers, gateway.Answer{ID: a.ID, Answer: a.Answer})
	}

	sv, err := h.tokenService.RequestSecureValidation(ctx, gateway.ValidateAnswers{
		SecureID:          req.SecureID,
		SecureService:     req.SecureService,
		QuestionnaireCode: req.QuestionnaireCode,
		Answers:           answers,
	})
	if err != nil {
		response.Error(w, http.StatusBadGateway, "Secure validation failed", err)
		return
	}

	response.Success(w, http.StatusOK, "Secure validation processed", sv)
}

// GetBanks handles bank list requests for transfer subscriptions
func (h *TokenHandler) GetBanks(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	banks, err := h.tokenService.GetBankList(ctx)
	if err != nil {
		response.Error(w, http.StatusBadGateway, "Failed to get bank list", err)
		return
	}

	response.Success(w, http.StatusOK, "Bank list retrieved", banks)
}

// GetBinInfo handles card BIN lookups
func (h *TokenHandler) GetBinInfo(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	bin := chi.URLParam(r, "bin")
	if bin == "" {
		response.Error(w, http.StatusBadRequest, "Missing bin", nil)
		return
	}

	info, err := h.tokenService.GetBinInfo(ctx, bin)
	if err != nil {
		response.Error(w, http.StatusBadGateway, "Failed to get bin info", err)
		return
	}

	response.Success(w, http.StatusOK, "Bin info retrieved", info)
}

// decodeAndValidate parses the request body into v and runs struct
// validation. It writes the error response itself and reports whether
// the handler should continue.
func (h *TokenHandler) decodeAndValidate(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request format", err)
		return false
	}

	if err := h.validate.Struct(v); err != nil {
		response.Error(w, http.StatusBadRequest, "Validation error", err)
		return false
	}

	return true
}

// recordAttempt persists the attempt outcome asynchronously. Audit
// writes never block or fail the client response.
func (h *TokenHandler) recordAttempt(r *http.Request, variant string, tx *gateway.Transaction) {
	if h.attempts == nil || tx == nil {
		return
	}

	// The logging middleware stamps X-Request-ID, but audit writes must
	// not depend on it being registered. chi's RequestID lives in the
	// context, and a fresh uuid covers a bare handler.
	requestID := r.Header.Get("X-Request-ID")
	if requestID == "" {
		requestID = middleware.GetReqID(r.Context())
	}
	if requestID == "" {
		requestID = uuid.New().String()
	}

	var merchantID string
	if h.tokenService != nil {
		merchantID = h.tokenService.MerchantID()
	}

	attempt := store.TokenAttempt{
		RequestID:     requestID,
		MerchantID:    merchantID,
		Variant:       variant,
		Endpoint:      r.URL.Path,
		Successful:    tx.Successful(),
		ErrorCode:     tx.Code,
		ErrorMessage:  tx.Message,
		SecureService: tx.SecureService,
	}

	go func() {
		if err := h.attempts.SaveAttempt(attempt); err != nil {
			logger.Warn("Failed to persist token attempt", logger.LogContext{
				Variant:   variant,
				RequestID: attempt.RequestID,
				Fields:    map[string]any{"error": err.Error()},
			})
		}
	}()
}
