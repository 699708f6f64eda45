package llm

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/seaharbor/procure-agent/agent/contract"
	openrouterx "github.com/seaharbor/procure-agent/pkg/openrouter"
)

type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://openrouter.ai/api/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" required:"true"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"2000"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.2"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
	SiteURL            string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName           string        `envconfig:"SITE_NAME" split_words:"true"`

	ScoutModel            string  `envconfig:"SCOUT_MODEL" split_words:"true"`
	AnalystModel          string  `envconfig:"ANALYST_MODEL" split_words:"true"`
	NegotiatorModel       string  `envconfig:"NEGOTIATOR_MODEL" split_words:"true"`
	ClerkModel            string  `envconfig:"CLERK_MODEL" split_words:"true"`
	NegotiatorTemperature float32 `envconfig:"NEGOTIATOR_TEMPERATURE" split_words:"true" default:"-1"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: openrouter api key is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: default model is required", contractx.ErrValidation)
	}
	return nil
}

func (c Config) OpenRouterFor(role contractx.Role) openrouterx.Config {
	modelName := strings.TrimSpace(c.Model)
	temp := c.Temperature

	switch role {
	case contractx.RoleScout:
		if v := strings.TrimSpace(c.ScoutModel); v != "" {
			modelName = v
		}
	case contractx.RoleAnalyst:
		if v := strings.TrimSpace(c.AnalystModel); v != "" {
			modelName = v
		}
	case contractx.RoleNegotiator:
		if v := strings.TrimSpace(c.NegotiatorModel); v != "" {
			modelName = v
		}
		if c.NegotiatorTemperature >= 0 {
			temp = c.NegotiatorTemperature
		}
	case contractx.RoleClerk:
		if v := strings.TrimSpace(c.ClerkModel); v != "" {
			modelName = v
		}
	}

	maxCompletionToken := c.MaxCompletionToken
	return openrouterx.Config{
		BaseURL:            strings.TrimSpace(c.BaseURL),
		APIKey:             strings.TrimSpace(c.APIKey),
		Model:              modelName,
		MaxCompletionToken: &maxCompletionToken,
		Temperature:        temp,
		Timeout:            c.Timeout,
		SiteURL:            strings.TrimSpace(c.SiteURL),
		SiteName:           strings.TrimSpace(c.SiteName),
	}
}
