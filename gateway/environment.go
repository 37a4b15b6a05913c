package gateway

const (
	// API URLs
	apiSandboxURL    = "https://api-uat.tokengate.io"
	apiProductionURL = "https://api.tokengate.io"
)

// Environment selects which gateway deployment a Gateway talks to.
type Environment string

const (
	EnvironmentSandbox    Environment = "sandbox"
	EnvironmentProduction Environment = "production"
)

// BaseURL returns the API base URL for the environment. Unknown
// environments resolve to sandbox.
func (e Environment) BaseURL() string {
	if e == EnvironmentProduction {
		return apiProductionURL
	}
	return apiSandboxURL
}
