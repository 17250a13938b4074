package config

import "fmt"

type Config struct {
	App           AppConfig               `mapstructure:"app"`
	Camunda       CamundaConfig           `mapstructure:"camunda"`
	Database      DatabaseConfig          `mapstructure:"database"`
	Workers       map[string]WorkerConfig `mapstructure:"workers"`
	LLM           LLMConfig               `mapstructure:"llm"`
	EntityStore   EntityStoreConfig       `mapstructure:"entity_store"`
	Chat          ChatConfig              `mapstructure:"chat"`
	Knowledge     KnowledgeConfig         `mapstructure:"knowledge"`
	Audit         AuditConfig             `mapstructure:"audit"`
	Observability ObservabilityConfig     `mapstructure:"observability"`
	Logging       LoggingConfig           `mapstructure:"logging"`
	Registry      RegistryConfig          `mapstructure:"registry"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	HTTPPort    int    `mapstructure:"http_port"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
	UsePlaintext   bool   `mapstructure:"use_plaintext"`
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	URL       string   `mapstructure:"url"` // single URL shorthand
}

func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // for error handling
}

// LLMConfig lists the configured providers and the secret map their api_key references
// resolve against.
type LLMConfig struct {
	Providers []LLMProviderConfig `mapstructure:"providers"`
	APIKeys   map[string]string   `mapstructure:"api_keys"`
	Timeouts  LLMTimeoutsConfig   `mapstructure:"timeouts"`
}

type LLMProviderConfig struct {
	Name        string `mapstructure:"name"`
	Provider    string `mapstructure:"provider"`   // vendor: openai, groq, anthropic, ...
	Model       string `mapstructure:"model"`      // lookup id
	ModelName   string `mapstructure:"model_name"` // name sent on the wire
	BaseURL     string `mapstructure:"base_url"`
	APIKey      string `mapstructure:"api_key"` // reference into api_keys, not the secret
	RequiresKey bool   `mapstructure:"requires_key"`
}

type LLMTimeoutsConfig struct {
	Classification int `mapstructure:"classification"` // milliseconds
	Chat           int `mapstructure:"chat"`           // milliseconds
	Command        int `mapstructure:"command"`        // milliseconds
}

type EntityStoreConfig struct {
	Driver string      `mapstructure:"driver"` // odata | postgres
	OData  ODataConfig `mapstructure:"odata"`
}

type ODataConfig struct {
	BaseURL           string `mapstructure:"base_url"`
	Username          string `mapstructure:"username"`
	Password          string `mapstructure:"password"`
	CustomerEntitySet string `mapstructure:"customer_entity_set"`
	CopilotEntitySet  string `mapstructure:"copilot_entity_set"`
	Timeout           int    `mapstructure:"timeout"` // milliseconds
}

type ChatConfig struct {
	HistoryEnabled  bool `mapstructure:"history_enabled"`
	HistorySize     int  `mapstructure:"history_size"`
	HistoryTTL      int  `mapstructure:"history_ttl"` // seconds
	MaxContextChars int  `mapstructure:"max_context_chars"`
}

type KnowledgeConfig struct {
	Enabled          bool    `mapstructure:"enabled"`
	Index            string  `mapstructure:"index"`
	TopK             int     `mapstructure:"top_k"`
	MinScore         float64 `mapstructure:"min_score"`
	MaxContextLength int     `mapstructure:"max_context_length"`
}

type AuditConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Region   string `mapstructure:"region"`
	TopicARN string `mapstructure:"topic_arn"`
}

type ObservabilityConfig struct {
	ServiceName    string `mapstructure:"service_name"`
	JaegerEndpoint string `mapstructure:"jaeger_endpoint"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

type RegistryConfig struct {
	Path string `mapstructure:"path"`
}
