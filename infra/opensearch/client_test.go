package opensearch

import (
	"testing"

	"github.com/mstgnz/tokengate/infra/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name        string
		cfg         *config.AppConfig
		expectError bool
	}{
		{
			name: "valid_config_no_auth",
			cfg: &config.AppConfig{
				OpenSearchURL:  "http://localhost:9200",
				EnableLogging:  true,
				OpenSearchUser: "",
				OpenSearchPass: "",
			},
			expectError: false,
		},
		{
			name: "valid_config_with_auth",
			cfg: &config.AppConfig{
				OpenSearchURL:  "http://localhost:9200",
				EnableLogging:  true,
				OpenSearchUser: "admin",
				OpenSearchPass: "admin",
			},
			expectError: false,
		},
		{
			name: "invalid_url",
			cfg: &config.AppConfig{
				OpenSearchURL: "invalid-url",
				EnableLogging: true,
			},
			expectError: false, // Client creation might still succeed, connection would fail later
		},
		{
			name: "logging_disabled",
			cfg: &config.AppConfig{
				OpenSearchURL: "http://localhost:9200",
				EnableLogging: false,
			},
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.cfg)

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, client)
			} else {
				// We might not actually be able to connect to OpenSearch in
				// tests but client creation should succeed
				if err != nil {
					t.Logf("Expected connection error in test environment: %v", err)
				} else {
					assert.NotNil(t, client)
					assert.NotNil(t, client.client)
					assert.Equal(t, tt.cfg, client.config)
				}
			}
		})
	}
}

func TestClient_GetClient(t *testing.T) {
	cfg := &config.AppConfig{
		OpenSearchURL: "http://localhost:9200",
		EnableLogging: true,
	}

	client, err := NewClient(cfg)
	if err != nil {
		t.Skipf("Skipping test due to OpenSearch connection error: %v", err)
	}

	require.NotNil(t, client)

	osClient := client.GetClient()
	assert.NotNil(t, osClient)
}

func TestClient_GetLogIndexName(t *testing.T) {
	cfg := &config.AppConfig{
		OpenSearchURL: "http://localhost:9200",
		EnableLogging: true,
	}

	client, err := NewClient(cfg)
	if err != nil {
		t.Skipf("Skipping test due to OpenSearch connection error: %v", err)
	}

	require.NotNil(t, client)

	tests := []struct {
		name     string
		variant  string
		expected string
	}{
		{
			name:     "card_variant",
			variant:  "card",
			expected: "tokengate-card-logs",
		},
		{
			name:     "transfer_subscription_variant",
			variant:  "transfer-subscription",
			expected: "tokengate-transfer-subscription-logs",
		},
		{
			name:     "empty_variant",
			variant:  "",
			expected: "tokengate-logs",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := client.GetLogIndexName(tt.variant)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestClient_IsEnabled(t *testing.T) {
	tests := []struct {
		name     string
		enabled  bool
		expected bool
	}{
		{"logging_enabled", true, true},
		{"logging_disabled", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.AppConfig{
				OpenSearchURL: "http://localhost:9200",
				EnableLogging: tt.enabled,
			}

			client, err := NewClient(cfg)
			if err != nil {
				t.Skipf("Skipping test due to OpenSearch connection error: %v", err)
			}

			require.NotNil(t, client)
			assert.Equal(t, tt.expected, client.IsEnabled())
		})
	}
}

func TestTokenVariants_MatchServiceSurface(t *testing.T) {
	// Each token family the service exposes gets its own log index
	expected := []string{
		"card", "card-subscription", "card-async", "card-subscription-async",
		"cash", "transfer", "transfer-subscription",
	}
	assert.Equal(t, expected, tokenVariants)
}
