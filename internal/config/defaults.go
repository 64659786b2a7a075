package config

// DefaultConfig returns a Config with sensible defaults: a local listener, a
// local SQLite file, in-process cache and queue, and the OpenAI-first
// failover order.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Database: DatabaseConfig{
			Path: "rudud.db",
		},
		Redis: RedisConfig{
			Enabled: false,
			Addr:    "localhost:6379",
		},
		Providers: []ProviderConfig{
			{Name: "openai", Model: "gpt-4o-mini"},
			{Name: "anthropic", Model: "claude-haiku-4-5-20251001"},
			{Name: "google", Model: "gemini-3-flash-preview"},
			{Name: "openrouter", Model: "meta-llama/llama-3.1-70b-instruct"},
		},
		Router: RouterConfig{
			AttemptTimeoutSeconds: 10,
		},
		Signals: SignalsConfig{
			DetectIntent:         true,
			AnalyzeSentiment:     true,
			DetectLanguage:       true,
			BranchTimeoutSeconds: 5,
		},
		Knowledge: KnowledgeConfig{
			CacheTTLMinutes: 60,
			TopK:            5,
			MinSimilarity:   0.65,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
