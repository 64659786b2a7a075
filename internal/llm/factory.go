package llm

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

// ProviderSpec names one provider in the failover order together with its
// default model and an optional requests-per-minute cap.
type ProviderSpec struct {
	Name  string
	Model string
	RPM   int
}

// NewProvider creates a provider adapter by name, reading its credential from
// the conventional environment variable. A missing credential is a
// configuration error: the provider stays unavailable for the process
// lifetime rather than being retried per request.
func NewProvider(name string, model string) (Provider, error) {
	switch name {
	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is not set")
		}
		return NewOpenAIProvider(apiKey, model), nil

	case "anthropic":
		apiKey := os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable is not set")
		}
		return NewAnthropicProvider(apiKey, model), nil

	case "google":
		apiKey := os.Getenv("GOOGLE_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("GOOGLE_API_KEY environment variable is not set")
		}
		return NewGoogleProvider(apiKey, model), nil

	case "openrouter":
		apiKey := os.Getenv("OPENROUTER_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("OPENROUTER_API_KEY environment variable is not set")
		}
		return NewOpenRouterProvider(apiKey, model), nil

	default:
		return nil, fmt.Errorf("unsupported provider: %s", name)
	}
}

// BuildProviders constructs every provider in specs that has a credential,
// preserving order, and marks the rest permanently unavailable in the
// returned health store. Providers with an RPM cap are wrapped with the
// rate limiter.
func BuildProviders(specs []ProviderSpec, log *logrus.Logger) ([]Provider, *HealthStore) {
	if log == nil {
		log = logrus.StandardLogger()
	}

	names := make([]string, len(specs))
	for i, s := range specs {
		names[i] = s.Name
	}
	health := NewHealthStore(names...)

	var providers []Provider
	for _, s := range specs {
		p, err := NewProvider(s.Name, s.Model)
		if err != nil {
			health.MarkUnavailable(s.Name, err.Error())
			log.WithFields(logrus.Fields{
				"provider": s.Name,
				"reason":   err.Error(),
			}).Warn("provider disabled for process lifetime")
			continue
		}
		if s.RPM > 0 {
			p = NewRateLimitedProvider(p, s.RPM)
		}
		providers = append(providers, p)
	}

	return providers, health
}
