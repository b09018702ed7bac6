// Package config holds the assistant settings. Settings are loaded once,
// validated, and injected into the components that need them; nothing in
// this module reads configuration from ambient global state.
package config

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/casali/flowpilot/pkg/models"
	"github.com/casali/flowpilot/pkg/storage"
)

// StorageKey is the fixed key settings persist under.
const StorageKey = "settings"

const (
	DefaultGatewayBaseURL = "https://openrouter.ai/api/v1"
	DefaultModel          = "anthropic/claude-3.5-sonnet"
	DefaultDailyLimit     = 50
)

// Settings is the full assistant configuration: the n8n connection, the LLM
// gateway connection, and behavioral switches.
type Settings struct {
	N8NBaseURL   string `json:"n8n_base_url"  validate:"omitempty,url"`
	N8NAPIKey    string `json:"n8n_api_key"`
	N8NConnected bool   `json:"n8n_connected"`

	GatewayBaseURL string `json:"gateway_base_url" validate:"required,url"`
	GatewayAPIKey  string `json:"gateway_api_key"`
	Model          string `json:"model"            validate:"required"`

	AssistantMode models.AssistantMode `json:"assistant_mode" validate:"required,oneof=builder helper"`
	SearchAPIKey  string               `json:"search_api_key"`

	// Premium identities are exempt from the daily usage limit. Entitlement
	// itself is decided elsewhere; this only carries the answer.
	Premium    bool `json:"premium"`
	DailyLimit int  `json:"daily_limit" validate:"gte=0"`
}

// Default returns settings with gateway and behavioral defaults filled in,
// leaving both connections unconfigured.
func Default() Settings {
	return Settings{
		GatewayBaseURL: DefaultGatewayBaseURL,
		Model:          DefaultModel,
		AssistantMode:  models.AssistantModeBuilder,
		DailyLimit:     DefaultDailyLimit,
	}
}

// Validate checks the settings against their declared constraints.
func (s Settings) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())

	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	return nil
}

// Load reads persisted settings from storage, returning defaults when none
// were saved yet.
func Load(ctx context.Context, store storage.Storage) (Settings, error) {
	data, err := store.Get(ctx, StorageKey)
	if storage.IsKeyNotFound(err) {
		return Default(), nil
	}

	if err != nil {
		return Settings{}, fmt.Errorf("failed to load settings: %w", err)
	}

	settings := Default()
	if err := json.Unmarshal(data, &settings); err != nil {
		return Settings{}, fmt.Errorf("failed to decode settings: %w", err)
	}

	return settings, nil
}

// Save persists the settings after validating them.
func Save(ctx context.Context, store storage.Storage, settings Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	data, err := json.Marshal(settings)
	if err != nil {
		return err
	}

	return store.Set(ctx, StorageKey, data)
}
