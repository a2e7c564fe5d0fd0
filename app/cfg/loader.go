package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Storage configuration
	DBPath string `long:"db-path" env:"DB_PATH" default:"./softdex.db" description:"Path to the SQLite database file"`

	// Application configuration
	Port              string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	APIAccessKey      string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`
	WorkerCount       int    `long:"worker-count" env:"WORKER_COUNT" default:"5" description:"Number of background workers for product normalization"`
	SchedulerInterval int    `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"30" description:"Scheduler sweep interval in seconds"`
	TaxonomyPath      string `long:"taxonomy" env:"TAXONOMY_PATH" default:"./taxonomy.yml" description:"Path to the category taxonomy file"`

	// AI configuration
	OpenAIAPIKey         string  `long:"openai-api-key" env:"OPENAI_API_KEY" description:"OpenAI API key"`
	OpenAIBaseURL        string  `long:"openai-base-url" env:"OPENAI_BASE_URL" default:"https://api.openai.com/v1/chat/completions" description:"Chat completions endpoint URL"`
	Model                string  `long:"model" env:"OPENAI_MODEL" default:"gpt-4o-mini" description:"Model used for product normalization"`
	MaxTokens            int     `long:"max-tokens" env:"OPENAI_MAX_TOKENS" default:"10000" description:"Upper bound on response tokens per request"`
	TokensPerProduct     int     `long:"tokens-per-product" env:"OPENAI_TOKENS_PER_PRODUCT" default:"500" description:"Response token budget per product in a request"`
	Temperature          float64 `long:"temperature" env:"OPENAI_TEMPERATURE" default:"0.3" description:"Sampling temperature for normalization requests"`
	MaxProductsPerBatch  int     `long:"max-products-per-batch" env:"MAX_PRODUCTS_PER_BATCH" default:"10" description:"Maximum products normalized in a single model request"`
	MaxRequestsPerMinute int     `long:"max-requests-per-minute" env:"MAX_REQUESTS_PER_MINUTE" default:"3" description:"Model request ceiling per minute"`
	BatchDelay           int     `long:"batch-delay" env:"BATCH_DELAY" default:"20" description:"Delay in seconds after each batch request"`

	// Application metadata
	Timezone string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug    bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:               raw.DBPath,
		Port:                 raw.Port,
		APIAccessKey:         raw.APIAccessKey,
		WorkerCount:          raw.WorkerCount,
		SchedulerInterval:    raw.SchedulerInterval,
		TaxonomyPath:         raw.TaxonomyPath,
		OpenAIAPIKey:         raw.OpenAIAPIKey,
		OpenAIBaseURL:        raw.OpenAIBaseURL,
		Model:                raw.Model,
		MaxTokens:            raw.MaxTokens,
		TokensPerProduct:     raw.TokensPerProduct,
		Temperature:          raw.Temperature,
		MaxProductsPerBatch:  raw.MaxProductsPerBatch,
		MaxRequestsPerMinute: raw.MaxRequestsPerMinute,
		BatchDelay:           raw.BatchDelay,
		Timezone:             raw.Timezone,
		Debug:                raw.Debug,
		Version:              GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
