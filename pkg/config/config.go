package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const envPrefix = "VIABILITY"

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline"`
	Sink      SinkConfig      `mapstructure:"sink"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Events    EventsConfig    `mapstructure:"events"`
	Warehouse WarehouseConfig `mapstructure:"warehouse"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host" validate:"required"`
	Port            string        `mapstructure:"port" validate:"required"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
}

type LLMConfig struct {
	Provider          string        `mapstructure:"provider" validate:"required,oneof=anthropic gemini openai"`
	Model             string        `mapstructure:"model"`
	APIKey            string        `mapstructure:"api_key" validate:"required"`
	BaseURL           string        `mapstructure:"base_url"`
	Temperature       float64       `mapstructure:"temperature" validate:"gte=0,lte=2"`
	MaxTokens         int           `mapstructure:"max_tokens" validate:"gt=0"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second" validate:"gte=0"`
}

type PipelineConfig struct {
	StageTimeout time.Duration `mapstructure:"stage_timeout"`
	Horizon      int           `mapstructure:"horizon" validate:"gt=0"`
	Parallel     bool          `mapstructure:"parallel"`
	TestFraction float64       `mapstructure:"test_fraction" validate:"gt=0,lt=1"`
	Seed         int64         `mapstructure:"seed"`
	Summary      bool          `mapstructure:"summary"`
	PromptsPath  string        `mapstructure:"prompts_path"`
}

type SinkConfig struct {
	Kind         string `mapstructure:"kind" validate:"required,oneof=filesystem s3 azure"`
	Format       string `mapstructure:"format" validate:"required,oneof=pdf markdown"`
	Dir          string `mapstructure:"dir"`
	PublicPrefix string `mapstructure:"public_prefix"`
	Bucket       string `mapstructure:"bucket" validate:"required_if=Kind s3"`
	Region       string `mapstructure:"region"`
	Prefix       string `mapstructure:"prefix"`
	AccountURL   string `mapstructure:"account_url" validate:"required_if=Kind azure"`
	Container    string `mapstructure:"container" validate:"required_if=Kind azure"`
}

type CatalogConfig struct {
	Driver string `mapstructure:"driver" validate:"required,oneof=duckdb pgx"`
	DSN    string `mapstructure:"dsn"`
}

type EventsConfig struct {
	NatsURL string `mapstructure:"nats_url"`
	Subject string `mapstructure:"subject"`
}

type WarehouseConfig struct {
	ProfilesPath string `mapstructure:"profiles_path"`
	Profile      string `mapstructure:"profile"`
	Query        string `mapstructure:"query"`
	Target       string `mapstructure:"target"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8000")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173"})

	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.max_tokens", 2000)
	v.SetDefault("llm.timeout", 60*time.Second)
	v.SetDefault("llm.requests_per_second", 2)

	v.SetDefault("pipeline.stage_timeout", 2*time.Minute)
	v.SetDefault("pipeline.horizon", 5)
	v.SetDefault("pipeline.parallel", true)
	v.SetDefault("pipeline.test_fraction", 0.2)
	v.SetDefault("pipeline.seed", 42)
	v.SetDefault("pipeline.summary", true)

	v.SetDefault("sink.kind", "filesystem")
	v.SetDefault("sink.format", "pdf")
	v.SetDefault("sink.dir", "reports")
	v.SetDefault("sink.public_prefix", "/reports")

	v.SetDefault("catalog.driver", "duckdb")
	v.SetDefault("catalog.dsn", "viability.db")

	v.SetDefault("events.subject", "viability.report.generated")
	v.SetDefault("warehouse.target", "target")
}

// Load reads the optional YAML file at path, applies VIABILITY_* environment
// overrides and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnv(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// AutomaticEnv only sees keys viper already knows about, so keys without a
// default are bound explicitly.
func bindEnv(v *viper.Viper) {
	for _, key := range []string{
		"llm.model", "llm.api_key", "llm.base_url", "pipeline.prompts_path",
		"sink.bucket", "sink.region", "sink.prefix", "sink.account_url", "sink.container",
		"events.nats_url",
		"warehouse.profiles_path", "warehouse.profile", "warehouse.query",
	} {
		_ = v.BindEnv(key)
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func Validate(cfg *Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
		}
		return fmt.Errorf("invalid config: %s", strings.Join(fields, ", "))
	}
	return fmt.Errorf("invalid config: %w", err)
}
