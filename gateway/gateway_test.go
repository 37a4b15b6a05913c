package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

const testMerchantID = "10000002036955013614148494909956"

// capturedRequest records what the stub gateway received.
type capturedRequest struct {
	Method   string
	Path     string
	Merchant string
	Restrict string
	Body     map[string]any
}

// newStubGateway starts a stub server answering every request with the
// given status and body, recording the last request it saw.
func newStubGateway(t *testing.T, status int, body string) (*httptest.Server, *capturedRequest) {
	t.Helper()

	captured := &capturedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.Method = r.Method
		captured.Path = r.URL.Path
		captured.Merchant = r.Header.Get("Public-Merchant-Id")
		captured.Restrict = r.Header.Get("X-Restrict-Ip")

		raw, _ := io.ReadAll(r.Body)
		captured.Body = nil
		_ = json.Unmarshal(raw, &captured.Body)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, captured
}

func newTestGateway(t *testing.T, baseURL string) *Gateway {
	t.Helper()

	g, err := New(Config{
		PublicMerchantID: testMerchantID,
		Currency:         "USD",
		Environment:      EnvironmentSandbox,
		BaseURL:          baseURL,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return g
}

func TestNew_ConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{PublicMerchantID: testMerchantID, Currency: "USD", Environment: EnvironmentSandbox}, false},
		{"defaults to sandbox", Config{PublicMerchantID: testMerchantID, Currency: "COP"}, false},
		{"missing merchant id", Config{Currency: "USD"}, true},
		{"merchant id too short", Config{PublicMerchantID: "short", Currency: "USD"}, true},
		{"lowercase currency", Config{PublicMerchantID: testMerchantID, Currency: "usd"}, true},
		{"bad environment", Config{PublicMerchantID: testMerchantID, Currency: "USD", Environment: "staging"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := New(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && g.Environment() == "" {
				t.Error("environment should never be empty after New")
			}
		})
	}
}

func TestNew_EnvironmentBaseURLs(t *testing.T) {
	tests := []struct {
		env  Environment
		want string
	}{
		{EnvironmentSandbox, apiSandboxURL},
		{EnvironmentProduction, apiProductionURL},
	}

	for _, tt := range tests {
		g, err := New(Config{PublicMerchantID: testMerchantID, Currency: "USD", Environment: tt.env})
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		if g.baseURL != tt.want {
			t.Errorf("baseURL for %s = %q, want %q", tt.env, g.baseURL, tt.want)
		}
	}
}

func TestRequestToken(t *testing.T) {
	srv, captured := newStubGateway(t, 201, `{"token":"b32be3ed64294245ab6b2efc27d05b3b"}`)
	g := newTestGateway(t, srv.URL)

	tx, err := g.RequestToken(context.Background(), testCard, 10.0)
	if err != nil {
		t.Fatalf("RequestToken failed: %v", err)
	}

	if !tx.Successful() {
		t.Fatalf("expected success, got %+v", tx)
	}
	if tx.Token != "b32be3ed64294245ab6b2efc27d05b3b" {
		t.Errorf("token = %q", tx.Token)
	}
	if captured.Method != http.MethodPost || captured.Path != "/v1/tokens" {
		t.Errorf("request = %s %s, want POST /v1/tokens", captured.Method, captured.Path)
	}
	if captured.Merchant != testMerchantID {
		t.Errorf("Public-Merchant-Id = %q, want %q", captured.Merchant, testMerchantID)
	}
	card, _ := captured.Body["card"].(map[string]any)
	if card["number"] != testCard.Number {
		t.Errorf("wire card number = %v, want %s", card["number"], testCard.Number)
	}
	if captured.Body["totalAmount"] != 10.0 {
		t.Errorf("wire totalAmount = %v, want 10.0", captured.Body["totalAmount"])
	}
}

func TestRequestToken_InvalidRequestNeverSent(t *testing.T) {
	srv, captured := newStubGateway(t, 201, `{"token":"should-not-be-reached"}`)
	g := newTestGateway(t, srv.URL)

	_, err := g.RequestToken(context.Background(), Card{}, 10.0)
	if err == nil {
		t.Fatal("expected a validation error")
	}
	if captured.Method != "" {
		t.Error("invalid request must not reach the gateway")
	}
}

func TestRequestToken_GatewayFailure(t *testing.T) {
	srv, _ := newStubGateway(t, 402, `{"code":"017","message":"`+msgInvalidMerchant+`"}`)
	g := newTestGateway(t, srv.URL)

	tx, err := g.RequestToken(context.Background(), testCard, 10.0)
	if err != nil {
		t.Fatalf("gateway failures must come back as transactions, got error: %v", err)
	}
	if tx.Successful() {
		t.Fatal("expected a failed transaction")
	}
	if tx.Code != "K004" {
		t.Errorf("code = %q, want K004", tx.Code)
	}
	if tx.Message != msgInvalidMerchant {
		t.Errorf("message = %q, want %q", tx.Message, msgInvalidMerchant)
	}
}

func TestRequestSubscriptionToken(t *testing.T) {
	srv, captured := newStubGateway(t, 201, `{"token":"4d2b8fcd39324a54b0dcef6e01b1a76f"}`)
	g := newTestGateway(t, srv.URL)

	tx, err := g.RequestSubscriptionToken(context.Background(), testCard)
	if err != nil {
		t.Fatalf("RequestSubscriptionToken failed: %v", err)
	}
	if !tx.Successful() {
		t.Fatalf("expected success, got %+v", tx)
	}
	if captured.Path != "/v1/subscription-tokens" {
		t.Errorf("path = %q, want /v1/subscription-tokens", captured.Path)
	}
	// The merchant credential is injected into the payload, not taken
	// from the caller.
	if captured.Body["merchant_identifier"] != testMerchantID {
		t.Errorf("merchant_identifier = %v, want %s", captured.Body["merchant_identifier"], testMerchantID)
	}
}

func TestRequestCardAsyncToken(t *testing.T) {
	srv, captured := newStubGateway(t, 200, `{"token":"1c1b794b4a1d4b15ab8f2a997ef86a04"}`)
	g := newTestGateway(t, srv.URL)

	tx, err := g.RequestCardAsyncToken(context.Background(), CardAsyncTokenRequest{
		TotalAmount: 1000.00,
		ReturnURL:   "https://return.url",
		Description: "Description test",
		Email:       "email@test.com",
	})
	if err != nil {
		t.Fatalf("RequestCardAsyncToken failed: %v", err)
	}
	if !tx.Successful() {
		t.Fatalf("expected success, got %+v", tx)
	}
	if captured.Path != "/card-async/v1/tokens" {
		t.Errorf("path = %q, want /card-async/v1/tokens", captured.Path)
	}
	if captured.Body["returnUrl"] != "https://return.url" {
		t.Errorf("returnUrl = %v", captured.Body["returnUrl"])
	}
}

func TestRequestCardSubscriptionAsyncToken(t *testing.T) {
	srv, captured := newStubGateway(t, 200, `{"token":"9e2a1f0d6c3b4e8f9a7d5c3b1e0f8a6d"}`)
	g := newTestGateway(t, srv.URL)

	tx, err := g.RequestCardSubscriptionAsyncToken(context.Background(), CardSubscriptionAsyncTokenRequest{
		Email:       "email@test.com",
		Currency:    "CLP",
		CallbackURL: "https://mycallbackurl.com",
	})
	if err != nil {
		t.Fatalf("RequestCardSubscriptionAsyncToken failed: %v", err)
	}
	if !tx.Successful() {
		t.Fatalf("expected success, got %+v", tx)
	}
	if captured.Path != "/subscriptions/v1/card-async/tokens" {
		t.Errorf("path = %q, want /subscriptions/v1/card-async/tokens", captured.Path)
	}
	if _, present := captured.Body["cardNumber"]; present {
		t.Error("zero cardNumber must not be on the wire")
	}
}

func TestRequestCashToken(t *testing.T) {
	srv, captured := newStubGateway(t, 201, `{"token":"57f27ee12a97478a9a4bb84e9fc73c4a"}`)
	g := newTestGateway(t, srv.URL)

	tx, err := g.RequestCashToken(context.Background(), CashTokenRequest{
		Name:           "José",
		LastName:       "Fernn",
		Identification: "1721834349",
		DocumentType:   "CC",
		TotalAmount:    10.0,
		Currency:       "USD",
	})
	if err != nil {
		t.Fatalf("RequestCashToken failed: %v", err)
	}
	if !tx.Successful() {
		t.Fatalf("expected success, got %+v", tx)
	}
	if captured.Path != "/cash/v1/tokens" {
		t.Errorf("path = %q, want /cash/v1/tokens", captured.Path)
	}
}

func TestRequestTransferToken(t *testing.T) {
	srv, captured := newStubGateway(t, 201, `{"token":"553af1bbd5a34d8b85078537bbc1903f"}`)
	g := newTestGateway(t, srv.URL)

	tx, err := g.RequestTransferToken(context.Background(), TransferTokenRequest{
		Amount:         Amount{SubtotalIva: 10.0, Iva: 1.2},
		CallbackURL:    "www.tokengate.io",
		UserType:       "0",
		DocumentType:   "NIT",
		DocumentNumber: "892352",
		Email:          "email@test.com",
		Currency:       "CLP",
	})
	if err != nil {
		t.Fatalf("RequestTransferToken failed: %v", err)
	}
	if !tx.Successful() {
		t.Fatalf("expected success, got %+v", tx)
	}
	if captured.Path != "/transfer/v1/tokens" {
		t.Errorf("path = %q, want /transfer/v1/tokens", captured.Path)
	}
}

func TestRequestTransferSubscriptionToken(t *testing.T) {
	srv, captured := newStubGateway(t, 201,
		`{"token":"b3b9f1c2d4e5f60718293a4b5c6d7e8f","secureId":"6b9ad356-92f4-4e4b-871b-a4a94e1313d7","secureService":"confronta"}`)
	g := newTestGateway(t, srv.URL)

	tx, err := g.RequestTransferSubscriptionToken(context.Background(), TransferSubscription{
		DocumentNumber: "123123123",
		AccountType:    "1",
		BankCode:       "01",
		Name:           "jose",
		LastName:       "gonzalez",
		DocumentType:   "CC",
		PhoneExtension: 12,
		Email:          "tes@tokengate.io",
		Currency:       "USD",
	})
	if err != nil {
		t.Fatalf("RequestTransferSubscriptionToken failed: %v", err)
	}
	if !tx.Successful() {
		t.Fatalf("expected success, got %+v", tx)
	}
	if captured.Path != "/v1/transfer-subscription-tokens" {
		t.Errorf("path = %q, want /v1/transfer-subscription-tokens", captured.Path)
	}
	if tx.SecureID != "6b9ad356-92f4-4e4b-871b-a4a94e1313d7" || tx.SecureService != "confronta" {
		t.Errorf("secure pair not carried: %+v", tx)
	}
}

func TestRequestSecureValidation_RoundTrip(t *testing.T) {
	srv, captured := newStubGateway(t, 200, questionnaireBody)
	g := newTestGateway(t, srv.URL)

	sv, err := g.RequestSecureValidation(context.Background(), AskQuestionnaire{
		SecureID:       "6b9ad356-92f4-4e4b-871b-a4a94e1313d7",
		SecureService:  "confronta",
		CityCode:       "01",
		StateCode:      "02",
		Phone:          "3002222222",
		ExpeditionDate: "19990202",
	})
	if err != nil {
		t.Fatalf("RequestSecureValidation failed: %v", err)
	}

	if captured.Method != http.MethodPost || captured.Path != "/rules/v1/secureValidation" {
		t.Errorf("request = %s %s, want POST /rules/v1/secureValidation", captured.Method, captured.Path)
	}
	if !sv.QuestionnaireIssued() || len(sv.Questions) != 3 {
		t.Fatalf("expected a 3-question questionnaire, got %+v", sv)
	}

	srv2, captured2 := newStubGateway(t, 200, `{"code":"BIO000","message":"ok"}`)
	g2 := newTestGateway(t, srv2.URL)

	sv2, err := g2.RequestSecureValidation(context.Background(), ValidateAnswers{
		SecureID:          "6b9ad356-92f4-4e4b-871b-a4a94e1313d7",
		SecureService:     "confronta",
		QuestionnaireCode: sv.QuestionnaireCode,
		Answers:           []Answer{{ID: "1", Answer: "2010"}, {ID: "2", Answer: "456"}, {ID: "3", Answer: "BOGOTA"}},
	})
	if err != nil {
		t.Fatalf("RequestSecureValidation failed: %v", err)
	}
	if !sv2.Approved() {
		t.Fatalf("expected approval, got %+v", sv2)
	}
	answers, _ := captured2.Body["answers"].([]any)
	if len(answers) != 3 {
		t.Errorf("wire answers = %v", captured2.Body["answers"])
	}
}

func TestRequestSecureValidation_MalformedRequestReachesGateway(t *testing.T) {
	// Challenge requests are not validated locally: the gateway owns the
	// protocol and answers malformed rounds with its own codes.
	srv, captured := newStubGateway(t, 400, `{"code":"TR006","message":"Parámetros inválidos"}`)
	g := newTestGateway(t, srv.URL)

	sv, err := g.RequestSecureValidation(context.Background(), ValidateAnswers{})
	if err != nil {
		t.Fatalf("RequestSecureValidation failed: %v", err)
	}
	if captured.Method == "" {
		t.Fatal("request should have reached the gateway")
	}
	if sv.Code != "TR006" {
		t.Errorf("code = %q, want TR006", sv.Code)
	}
	if sv.Approved() || sv.Rejected() || sv.Expired() || sv.QuestionnaireIssued() {
		t.Error("protocol error must not satisfy any predicate")
	}
}

func TestGetBankList(t *testing.T) {
	srv, captured := newStubGateway(t, 200,
		`[{"code":"01","name":"Banco de Bogotá"},{"code":"02","name":"Banco Popular"}]`)
	g := newTestGateway(t, srv.URL)

	banks, err := g.GetBankList(context.Background())
	if err != nil {
		t.Fatalf("GetBankList failed: %v", err)
	}

	if captured.Method != http.MethodGet || captured.Path != "/transfer-subscriptions/v1/bankList" {
		t.Errorf("request = %s %s, want GET /transfer-subscriptions/v1/bankList", captured.Method, captured.Path)
	}
	if len(banks) != 2 {
		t.Fatalf("banks = %d, want 2", len(banks))
	}
	if banks[0].Code != "01" || banks[0].Name != "Banco de Bogotá" {
		t.Errorf("unexpected first bank: %+v", banks[0])
	}
}

func TestGetBankList_Empty(t *testing.T) {
	srv, _ := newStubGateway(t, 200, `[]`)
	g := newTestGateway(t, srv.URL)

	banks, err := g.GetBankList(context.Background())
	if err != nil {
		t.Fatalf("GetBankList failed: %v", err)
	}
	if len(banks) != 0 {
		t.Errorf("banks = %d, want 0", len(banks))
	}
}

func TestGetBinInfo(t *testing.T) {
	srv, captured := newStubGateway(t, 200, `{"bank":"Banco del Pacifico","brand":"VISA","cardType":"credit"}`)
	g := newTestGateway(t, srv.URL)

	info, err := g.GetBinInfo(context.Background(), "465775")
	if err != nil {
		t.Fatalf("GetBinInfo failed: %v", err)
	}

	if captured.Path != "/card/v1/bin/465775" {
		t.Errorf("path = %q, want /card/v1/bin/465775", captured.Path)
	}
	if info.Bank != "Banco del Pacifico" || info.Brand != "VISA" || info.CardType != "credit" {
		t.Errorf("unexpected bin info: %+v", info)
	}
}

func TestGetBinInfo_EmptyBin(t *testing.T) {
	srv, captured := newStubGateway(t, 200, `{}`)
	g := newTestGateway(t, srv.URL)

	if _, err := g.GetBinInfo(context.Background(), ""); err == nil {
		t.Fatal("expected an error for an empty bin")
	}
	if captured.Method != "" {
		t.Error("empty bin must not reach the gateway")
	}
}

func TestSingleIPHeader(t *testing.T) {
	srv, captured := newStubGateway(t, 201, `{"token":"b32be3ed64294245ab6b2efc27d05b3b"}`)

	g, err := New(Config{
		PublicMerchantID: testMerchantID,
		Currency:         "USD",
		SingleIP:         true,
		BaseURL:          srv.URL,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, err := g.RequestToken(context.Background(), testCard, 10.0); err != nil {
		t.Fatalf("RequestToken failed: %v", err)
	}
	if captured.Restrict != "true" {
		t.Errorf("X-Restrict-Ip = %q, want true", captured.Restrict)
	}

	// and absent when the flag is off
	srv2, captured2 := newStubGateway(t, 201, `{"token":"b32be3ed64294245ab6b2efc27d05b3b"}`)
	g2 := newTestGateway(t, srv2.URL)
	if _, err := g2.RequestToken(context.Background(), testCard, 10.0); err != nil {
		t.Fatalf("RequestToken failed: %v", err)
	}
	if captured2.Restrict != "" {
		t.Errorf("X-Restrict-Ip should be absent, got %q", captured2.Restrict)
	}
}

func TestTransportError(t *testing.T) {
	srv, _ := newStubGateway(t, 201, `{}`)
	url := srv.URL
	srv.Close()

	g := newTestGateway(t, url)
	if _, err := g.RequestToken(context.Background(), testCard, 10.0); err == nil {
		t.Fatal("expected a transport error against a closed server")
	}
}

func TestContextCancellation(t *testing.T) {
	srv, _ := newStubGateway(t, 201, `{"token":"b32be3ed64294245ab6b2efc27d05b3b"}`)
	g := newTestGateway(t, srv.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := g.RequestToken(ctx, testCard, 10.0); err == nil {
		t.Fatal("expected an error for a cancelled context")
	}
}
