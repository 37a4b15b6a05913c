// Package tokengate provides a card and payment-method tokenization gateway that
// exchanges sensitive payment data for single-use or subscription tokens. It acts
// as a bridge between your applications and the tokenization backend, handling
// request validation, secure-channel validation flows, and logging seamlessly.
//
// # Overview
//
// Tokengate solves the problem of handling raw card, cash, and bank-transfer data
// in your own services. Instead of passing card numbers around, applications send
// payment data to tokengate once and receive a token that stands in for it in all
// later charge operations.
//
// # Architecture
//
// The tokenization flow follows this pattern:
//
//	┌─────────────────┐    ┌─────────────────┐    ┌─────────────────┐
//	│                 │    │                 │    │                 │
//	│   Your Apps     │◄──►│   Tokengate     │◄──►│  Tokenization   │
//	│  (APP1, APP2)   │    │   (Service)     │    │    Backend      │
//	│                 │    │                 │    │                 │
//	└─────────────────┘    └─────────────────┘    └─────────────────┘
//
// # Token Variants
//
// Supported token variants include:
//   - card: One-time card tokens for a single charge
//   - card-subscription: Reusable card tokens for recurring charges
//   - card-async: Card tokens for redirect-based (hosted page) flows
//   - card-subscription-async: Recurring tokens for redirect-based flows
//   - cash: Tokens for over-the-counter cash collection
//   - transfer: One-time bank transfer tokens
//   - transfer-subscription: Recurring transfer tokens with secure validation
//
// # Quick Start
//
// Basic usage example:
//
//	package main
//
//	import (
//	    "context"
//	    "fmt"
//
//	    "github.com/mstgnz/tokengate/gateway"
//	)
//
//	func main() {
//	    // Create gateway client
//	    gw, err := gateway.New(gateway.Config{
//	        PublicMerchantID: "10000002036955013614148494909956",
//	        Currency:         "USD",
//	        Environment:      gateway.EnvironmentSandbox,
//	    })
//	    if err != nil {
//	        panic(err)
//	    }
//
//	    // Request a one-time card token
//	    card := gateway.Card{
//	        HolderName:  "John Doe",
//	        Number:      "5321952125169352",
//	        CVC:         "123",
//	        ExpiryMonth: "12",
//	        ExpiryYear:  "30",
//	    }
//
//	    ctx := context.Background()
//	    tx, err := gw.RequestToken(ctx, card, 100.50)
//	    if err != nil {
//	        panic(err)
//	    }
//
//	    // Handle response
//	    if tx.Successful() {
//	        fmt.Printf("Token: %s\n", tx.Token)
//	    } else {
//	        // Gateway decline, not a transport error
//	        fmt.Printf("Declined: %s %s\n", tx.Code, tx.Message)
//	    }
//	}
//
// # Secure Validation
//
// Transfer subscriptions may require an extra identity check before the token
// becomes usable. The gateway returns a secure service reference, and the flow
// continues through a questionnaire or biometric/OTP exchange:
//
//	tx, _ := gw.RequestTransferSubscriptionToken(ctx, sub)
//	if tx.SecureID != "" {
//	    result, _ := gw.RequestSecureValidation(ctx, gateway.AskQuestionnaire{
//	        SecureID:      tx.SecureID,
//	        SecureService: tx.SecureService,
//	        CityCode:      "01",
//	        StateCode:     "11",
//	        Phone:         "3002563222",
//	        ExpeditionDate: "19990101",
//	    })
//	    if result.QuestionnaireIssued() {
//	        // Present result.Questions to the user, then validate the answers
//	    }
//	}
//
// # Environment Support
//
// The gateway supports both test (sandbox) and production environments:
//
//	cfg := gateway.Config{
//	    PublicMerchantID: "your-public-merchant-id",
//	    Currency:         "USD",
//	    Environment:      gateway.EnvironmentProduction, // or EnvironmentSandbox
//	}
//
// # HTTP API
//
// Tokengate also provides a REST API for integration:
//
//	# Request a token
//	POST /v1/tokens/{variant}
//	Headers:
//	  Content-Type: application/json
//
//	# Secure validation
//	POST /v1/secure-validation/questionnaire
//	POST /v1/secure-validation/answers
//
//	# Lookups
//	GET /v1/banks
//	GET /v1/bin/{bin}
//
//	# Observability
//	GET /v1/logs/{variant}
//	GET /v1/stats/{variant}
//	GET /v1/attempts/{variant}
//
// Gateway declines are returned with HTTP 200; the decline code and message
// travel in the response data. Only transport and protocol failures produce
// error statuses.
//
// # Logging and Auditing
//
// Tokengate integrates with OpenSearch and SQLite for logging and auditing:
//
//   - Real-time token attempt tracking
//   - Variant-specific statistics
//   - Sanitized payload logging (card numbers and CVCs are never stored)
//   - Local attempt audit trail with configurable retention
//
// # Configuration
//
// Configuration is done via environment variables:
//
//	PUBLIC_MERCHANT_ID=your-public-merchant-id
//	CURRENCY=USD
//	ENVIRONMENT=sandbox
//	APP_PORT=9999
//	ENABLE_LOGGING=true
//	OPENSEARCH_URL=http://localhost:9200
//	SQLITE_PATH=./data/attempts.db
//
// # Security Features
//
// Tokengate includes several security features:
//
//   - Rate limiting
//   - IP whitelisting
//   - Request validation and payload size limits
//   - Sensitive data redaction in logs
//   - Optional single-IP restriction on issued tokens
//
// # Development and Testing
//
// The sandbox environment accepts the usual test card numbers. Comprehensive
// examples are available in the examples/ directory:
//   - examples/tokens/ - Token request and secure validation examples
//   - examples/logger/ - System logging examples
//
// For more information, visit: https://github.com/mstgnz/tokengate
package tokengate
