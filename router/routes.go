package router

import (
	"github.com/go-chi/chi/v5"
	"github.com/mstgnz/tokengate/handler"
)

// Deps carries the handlers the router wires up.
type Deps struct {
	Tokens *handler.TokenHandler
	Logs   *handler.LogsHandler
	Health *handler.HealthHandler
}

// Routes registers all API routes
func Routes(r chi.Router, deps Deps) {
	r.Get("/health", deps.Health.CheckHealth)

	r.Route("/v1", func(r chi.Router) {
		// Tokenization
		r.Post("/tokens/{variant}", deps.Tokens.RequestToken)

		// Secure validation rounds
		r.Post("/secure-validation/questionnaire", deps.Tokens.AskQuestionnaire)
		r.Post("/secure-validation/answers", deps.Tokens.ValidateAnswers)

		// Gateway lookups
		r.Get("/banks", deps.Tokens.GetBanks)
		r.Get("/bin/{bin}", deps.Tokens.GetBinInfo)

		// Logs and statistics
		r.Get("/logs/{variant}", deps.Logs.ListLogs)
		r.Get("/logs/{variant}/errors", deps.Logs.GetErrorLogs)
		r.Get("/logs/{variant}/{requestID}", deps.Logs.GetRequestLogs)
		r.Get("/stats/{variant}", deps.Logs.GetLogStats)
		r.Get("/attempts/{variant}", deps.Logs.ListAttempts)
	})
}
