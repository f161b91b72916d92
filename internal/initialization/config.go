package initialization

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"

	StoreMemory  = "memory"
	StoreRedis   = "redis"
	StoreMongoDB = "mongodb"
)

// Config holds all service configuration
type Config struct {
	HTTPAddress string

	// Language model settings
	LLMProvider     string
	LLMModel        string
	GeminiAPIKey    string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	ModelTimeout    time.Duration
	MaxOutputTokens int
	Temperature     float32
	SystemPrompt    string

	// Health store settings
	StoreBackend    string
	SeedDemoPatient bool
	RedisAddress    string
	RedisPassword   string
	RedisDB         int
	RedisKeyPrefix  string
	MongoURI        string
	MongoDatabase   string
}

type LoadConfigOptions struct {
	// ConfigFile overrides the config file search when set
	ConfigFile string
}

// LoadConfig loads configuration from an optional svasthya.yaml and environment variables
func LoadConfig(opts LoadConfigOptions) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	envMappings := map[string]string{
		"HTTPAddress":     "HTTP_ADDRESS",
		"LLMProvider":     "LLM_PROVIDER",
		"LLMModel":        "LLM_MODEL",
		"GeminiAPIKey":    "GEMINI_API_KEY",
		"OpenAIAPIKey":    "OPENAI_API_KEY",
		"AnthropicAPIKey": "ANTHROPIC_API_KEY",
		"ModelTimeout":    "MODEL_TIMEOUT",
		"MaxOutputTokens": "MAX_OUTPUT_TOKENS",
		"Temperature":     "MODEL_TEMPERATURE",
		"SystemPrompt":    "SYSTEM_PROMPT",
		"StoreBackend":    "STORE_BACKEND",
		"SeedDemoPatient": "SEED_DEMO_PATIENT",
		"RedisAddress":    "REDIS_ADDRESS",
		"RedisPassword":   "REDIS_PASSWORD",
		"RedisDB":         "REDIS_DB",
		"RedisKeyPrefix":  "REDIS_KEY_PREFIX",
		"MongoURI":        "MONGODB_URI",
		"MongoDatabase":   "MONGODB_DATABASE",
	}

	for configKey, envVar := range envMappings {
		if err := v.BindEnv(configKey, envVar); err != nil {
			log.Warn().Err(err).Msgf("Failed to bind environment variable %s for %s", envVar, configKey)
		}
	}

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName("svasthya")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/.svasthya")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		log.Debug().Msg("Config file not found, using environment variables and defaults")
	} else {
		log.Info().Msgf("Using config file: %s", v.ConfigFileUsed())
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	config.LLMProvider = strings.ToLower(strings.TrimSpace(config.LLMProvider))
	config.StoreBackend = strings.ToLower(strings.TrimSpace(config.StoreBackend))

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	log.Debug().
		Str("provider", config.LLMProvider).
		Str("model", config.LLMModel).
		Str("store", config.StoreBackend).
		Dur("model_timeout", config.ModelTimeout).
		Msg("Config loaded")

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("HTTPAddress", ":3000")

	v.SetDefault("LLMProvider", ProviderGemini)
	v.SetDefault("ModelTimeout", 60*time.Second)
	v.SetDefault("MaxOutputTokens", 2048)

	v.SetDefault("StoreBackend", StoreMemory)
	v.SetDefault("SeedDemoPatient", true)
	v.SetDefault("RedisAddress", "localhost:6379")
	v.SetDefault("RedisDB", 0)
	v.SetDefault("RedisKeyPrefix", "svasthya")
	v.SetDefault("MongoDatabase", "svasthya")
}

func validateConfig(config *Config) error {
	var missingVars []string

	switch config.LLMProvider {
	case ProviderGemini:
		if config.GeminiAPIKey == "" {
			missingVars = append(missingVars, "GEMINI_API_KEY")
		}
	case ProviderOpenAI:
		if config.OpenAIAPIKey == "" {
			missingVars = append(missingVars, "OPENAI_API_KEY")
		}
	case ProviderAnthropic:
		if config.AnthropicAPIKey == "" {
			missingVars = append(missingVars, "ANTHROPIC_API_KEY")
		}
	default:
		return fmt.Errorf("unsupported LLM_PROVIDER %q, expected one of: %s",
			config.LLMProvider, strings.Join([]string{ProviderGemini, ProviderOpenAI, ProviderAnthropic}, ", "))
	}

	if !slices.Contains([]string{StoreMemory, StoreRedis, StoreMongoDB}, config.StoreBackend) {
		return fmt.Errorf("unsupported STORE_BACKEND %q, expected one of: %s",
			config.StoreBackend, strings.Join([]string{StoreMemory, StoreRedis, StoreMongoDB}, ", "))
	}

	if config.StoreBackend == StoreMongoDB && config.MongoURI == "" {
		missingVars = append(missingVars, "MONGODB_URI")
	}

	if config.StoreBackend == StoreRedis && config.RedisAddress == "" {
		missingVars = append(missingVars, "REDIS_ADDRESS")
	}

	if len(missingVars) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missingVars, ", "))
	}

	if config.ModelTimeout <= 0 {
		return fmt.Errorf("MODEL_TIMEOUT must be positive, got %s", config.ModelTimeout)
	}

	if config.MaxOutputTokens < 0 {
		return fmt.Errorf("MAX_OUTPUT_TOKENS must not be negative, got %d", config.MaxOutputTokens)
	}

	if config.Temperature < 0 || config.Temperature > 2 {
		return fmt.Errorf("MODEL_TEMPERATURE must be between 0 and 2, got %g", config.Temperature)
	}

	return nil
}
