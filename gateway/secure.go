package gateway

import (
	"encoding/json"
	"fmt"
)

// Secure validation is the step-up identity challenge some
// transfer-subscription tokens require before they are finalized. The
// caller threads the (secureId, secureService) pair returned by
// RequestTransferSubscriptionToken through exactly one ask-then-answer
// round; the library keeps no session state of its own.
//
// The challenge endpoint accepts exactly two request shapes, modeled as
// a sealed interface: AskQuestionnaire opens the round and
// ValidateAnswers closes it. Identity fields are sent as given; a
// malformed ask or answer set is rejected by the gateway (TR006,
// BIO100), not guarded locally, so its verdict is always authoritative.

// Gateway codes for the secure-validation exchange. These pass through
// to the caller unmodified; there is no per-variant remapping for
// challenge responses.
const (
	codeQuestionnaireIssued = "000"
	codeAnswersApproved     = "BIO000"
	codeAnswersRejected     = "BIO100"
	codeSessionExpired      = "OTP300"
)

// SecureValidationRequest is one of the two request shapes the
// challenge endpoint accepts: AskQuestionnaire or ValidateAnswers.
type SecureValidationRequest interface {
	secureValidationRequest()
}

// AskQuestionnaire requests the knowledge-based questionnaire for a
// secure-validation session, identified by the (secureId,
// secureService) pair from a prior transfer-subscription tokenization.
type AskQuestionnaire struct {
	SecureID       string `json:"secureId"`
	SecureService  string `json:"secureService"`
	CityCode       string `json:"cityCode"`
	StateCode      string `json:"stateCode"`
	Phone          string `json:"phone"`
	ExpeditionDate string `json:"expeditionDate"`
}

func (AskQuestionnaire) secureValidationRequest() {}

// Answer is a single questionnaire answer, matched to a question by ID.
type Answer struct {
	ID     string `json:"id"`
	Answer string `json:"answer"`
}

// ValidateAnswers submits the answers for a previously issued
// questionnaire, closing the session's single challenge round.
type ValidateAnswers struct {
	SecureID          string   `json:"secureId"`
	SecureService     string   `json:"secureService"`
	QuestionnaireCode string   `json:"questionnaireCode"`
	Answers           []Answer `json:"answers"`
}

func (ValidateAnswers) secureValidationRequest() {}

// Question is a single challenge question with its ordered options.
type Question struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

// SecureValidation is the outcome of one challenge exchange. Questions
// is non-empty exactly when a questionnaire was issued; every terminal
// outcome (approved, rejected, expired, protocol error) carries an
// empty question list.
type SecureValidation struct {
	Code              string     `json:"code"`
	Message           string     `json:"message"`
	QuestionnaireCode string     `json:"questionnaireCode,omitempty"`
	Questions         []Question `json:"questions,omitempty"`
}

// QuestionnaireIssued reports whether the exchange is mid-round,
// waiting for the caller to submit answers.
func (sv *SecureValidation) QuestionnaireIssued() bool {
	return len(sv.Questions) > 0
}

// Approved reports whether the answer set was accepted, finalizing the
// subscription.
func (sv *SecureValidation) Approved() bool {
	return sv.Code == codeAnswersApproved
}

// Rejected reports whether the answer set was refused.
func (sv *SecureValidation) Rejected() bool {
	return sv.Code == codeAnswersRejected
}

// Expired reports whether the session pair is no longer valid; the
// caller must run a fresh tokenization to obtain a new pair.
func (sv *SecureValidation) Expired() bool {
	return sv.Code == codeSessionExpired
}

// interpretSecureValidation parses a challenge response and enforces
// the question-list invariant: any code other than the issuance code
// clears the questions, regardless of what the gateway sent.
func interpretSecureValidation(body []byte) (*SecureValidation, error) {
	var sv SecureValidation
	if err := json.Unmarshal(body, &sv); err != nil {
		return nil, fmt.Errorf("failed to parse secure validation response: %w", err)
	}

	if sv.Code != codeQuestionnaireIssued {
		sv.Questions = nil
	}

	return &sv, nil
}
