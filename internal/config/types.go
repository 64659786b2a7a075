package config

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host string `yaml:"host" koanf:"host"`
	Port int    `yaml:"port" koanf:"port"`
}

// DatabaseConfig points at the SQLite business store.
type DatabaseConfig struct {
	Path string `yaml:"path" koanf:"path"`
}

// RedisConfig holds the shared Redis connection used for the knowledge cache
// and the background job queue. When Enabled is false both fall back to
// in-process implementations.
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled" koanf:"enabled"`
	Addr     string `yaml:"addr" koanf:"addr"`
	Password string `yaml:"password" koanf:"password"`
	DB       int    `yaml:"db" koanf:"db"`
}

// ProviderConfig declares one completion provider in failover order. RPM
// zero means unthrottled.
type ProviderConfig struct {
	Name  string `yaml:"name" koanf:"name"`
	Model string `yaml:"model" koanf:"model"`
	RPM   int    `yaml:"rpm" koanf:"rpm"`
}

// RouterConfig tunes the provider failover loop.
type RouterConfig struct {
	AttemptTimeoutSeconds int `yaml:"attempt_timeout_seconds" koanf:"attempt_timeout_seconds"`
}

// SignalsConfig sets the default extraction branches; per-request flags
// override these.
type SignalsConfig struct {
	DetectIntent         bool `yaml:"detect_intent" koanf:"detect_intent"`
	AnalyzeSentiment     bool `yaml:"analyze_sentiment" koanf:"analyze_sentiment"`
	DetectLanguage       bool `yaml:"detect_language" koanf:"detect_language"`
	BranchTimeoutSeconds int  `yaml:"branch_timeout_seconds" koanf:"branch_timeout_seconds"`
}

// KnowledgeConfig tunes semantic retrieval.
type KnowledgeConfig struct {
	CacheTTLMinutes int     `yaml:"cache_ttl_minutes" koanf:"cache_ttl_minutes"`
	TopK            int     `yaml:"top_k" koanf:"top_k"`
	MinSimilarity   float64 `yaml:"min_similarity" koanf:"min_similarity"`
}

// LogConfig controls structured logging output.
type LogConfig struct {
	Level  string `yaml:"level" koanf:"level"`
	Format string `yaml:"format" koanf:"format"`
}

// Config is the top-level rudud configuration, corresponding to rudud.yml.
type Config struct {
	Server    ServerConfig     `yaml:"server" koanf:"server"`
	Database  DatabaseConfig   `yaml:"database" koanf:"database"`
	Redis     RedisConfig      `yaml:"redis" koanf:"redis"`
	Providers []ProviderConfig `yaml:"providers" koanf:"providers"`
	Router    RouterConfig     `yaml:"router" koanf:"router"`
	Signals   SignalsConfig    `yaml:"signals" koanf:"signals"`
	Knowledge KnowledgeConfig  `yaml:"knowledge" koanf:"knowledge"`
	Log       LogConfig        `yaml:"log" koanf:"log"`
}
