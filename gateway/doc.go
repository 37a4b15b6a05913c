// Package gateway implements the client side of the tokenization API:
// it turns merchant payment intents (card, cash, bank transfer and
// their subscription/async variants) into token requests and drives the
// secure-validation challenge some subscription flows require.
//
// # Basic Usage
//
// Construct a Gateway once and reuse it; it is safe for concurrent use:
//
//	gw, err := gateway.New(gateway.Config{
//	    PublicMerchantID: "10000002036955013614148494909956",
//	    Currency:         "USD",
//	    Environment:      gateway.EnvironmentSandbox,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	tx, err := gw.RequestToken(ctx, gateway.Card{
//	    HolderName:  "John Doe",
//	    Number:      "5321952125169352",
//	    CVC:         "123",
//	    ExpiryMonth: "12",
//	    ExpiryYear:  "29",
//	}, 10.0)
//	if err != nil {
//	    // transport failure; the gateway was never reached or the
//	    // connection broke mid-flight
//	    log.Fatal(err)
//	}
//
//	if tx.Successful() {
//	    charge(tx.Token)
//	} else {
//	    // protocol failure: tx.Code carries the variant-specific
//	    // client-facing code, tx.Message the gateway's message
//	    log.Printf("rejected: %s %s", tx.Code, tx.Message)
//	}
//
// # Secure Validation
//
// Transfer-subscription tokens may require a one-round identity
// challenge. The session pair returned with the token is threaded by
// the caller through an ask-then-answer exchange:
//
//	tx, _ := gw.RequestTransferSubscriptionToken(ctx, profile)
//	sv, _ := gw.RequestSecureValidation(ctx, gateway.AskQuestionnaire{
//	    SecureID:       tx.SecureID,
//	    SecureService:  tx.SecureService,
//	    CityCode:       "1",
//	    StateCode:      "13",
//	    Phone:          "00987654321",
//	    ExpeditionDate: "15/12/1958",
//	})
//	if sv.QuestionnaireIssued() {
//	    answers := collect(sv.Questions)
//	    sv, _ = gw.RequestSecureValidation(ctx, gateway.ValidateAnswers{
//	        SecureID:          tx.SecureID,
//	        SecureService:     tx.SecureService,
//	        QuestionnaireCode: sv.QuestionnaireCode,
//	        Answers:           answers,
//	    })
//	}
//
// Each session pair supports exactly one round; an expired or invalid
// pair surfaces as a terminal result (for example OTP300) and the
// caller restarts with a fresh tokenization.
//
// # Error Handling
//
// Failures are data, not panics. Transport faults are returned as Go
// errors; everything the gateway itself said comes back inside the
// Transaction or SecureValidation value. The package never retries:
// retry and backoff policy belongs to the caller.
package gateway
