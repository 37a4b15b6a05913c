// Package handler provides HTTP request handlers for the tokengate service.
//
// This package contains the HTTP handlers that implement the REST API
// endpoints for card, cash and transfer tokenization, secure validation,
// bank and BIN lookups, and log access. The handlers bridge the HTTP
// layer with the underlying gateway client.
//
// # Core Handlers
//
// The package includes several specialized handlers:
//
//   - TokenHandler: Handles token requests for every variant, secure
//     validation rounds and gateway lookups
//   - LogsHandler: Provides access to token attempt logs and statistics
//   - HealthHandler: Serves the service health check
//
// # Token Handler
//
// The TokenHandler manages all tokenization HTTP requests:
//
//	tokenHandler := handler.NewTokenHandler(gw, validator, attemptStore)
//
//	// Routes
//	r.Post("/v1/tokens/{variant}", tokenHandler.RequestToken)
//	r.Post("/v1/secure-validation/questionnaire", tokenHandler.AskQuestionnaire)
//	r.Post("/v1/secure-validation/answers", tokenHandler.ValidateAnswers)
//	r.Get("/v1/banks", tokenHandler.GetBanks)
//	r.Get("/v1/bin/{bin}", tokenHandler.GetBinInfo)
//
// The variant path parameter selects the token kind: card,
// card-subscription, card-async, card-subscription-async, cash,
// transfer or transfer-subscription.
//
// Example token request:
//
//	POST /v1/tokens/card
//	Content-Type: application/json
//
//	{
//	  "card": {
//	    "name": "John Doe",
//	    "number": "5321952125169352",
//	    "cvc": "123",
//	    "expiryMonth": "12",
//	    "expiryYear": "28"
//	  },
//	  "totalAmount": 49.99
//	}
//
// # Request Validation
//
// All handlers use structured validation for incoming requests:
//
//	type CardTokenDTO struct {
//	    Card        CardDTO `json:"card" validate:"required"`
//	    TotalAmount float64 `json:"totalAmount" validate:"required,gt=0"`
//	}
//
// # Error Handling
//
// All handlers implement consistent error handling with structured
// responses. A gateway decline is not an HTTP error; the decline code
// travels in the response data:
//
//	// Success response
//	{
//	  "success": true,
//	  "message": "Token issued",
//	  "data": {
//	    "token": "553af58d4ea1423c96b4c41262ab3918"
//	  }
//	}
//
//	// Decline response
//	{
//	  "success": true,
//	  "message": "Token request declined",
//	  "data": {
//	    "code": "K001",
//	    "message": "Cuerpo de la petición inválido."
//	  }
//	}
//
// # Logging and Monitoring
//
// All handlers automatically record attempts for monitoring: outcomes
// go to the SQLite attempt store and request/response logs are indexed
// in OpenSearch. Card numbers, CVCs and issued tokens are redacted
// before anything reaches a log.
package handler
