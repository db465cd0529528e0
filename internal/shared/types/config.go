package types

// Source kinds accepted by the aggregate command.
const (
	SourceParquet  = "parquet"
	SourceCSV      = "csv"
	SourceSQLite   = "sqlite"
	SourcePostgres = "postgres"
	SourceBigQuery = "bigquery"
)

// Config represents the application configuration that can be loaded from a file,
// overridden by GAA_* environment variables and then by command-line flags.
type Config struct {
	Source      SourceConfig  `json:"source" yaml:"source" toml:"source" envconfig:"SOURCE"`
	Output      OutputConfig  `json:"output" yaml:"output" toml:"output" envconfig:"OUTPUT"`
	Publish     PublishConfig `json:"publish" yaml:"publish" toml:"publish" envconfig:"PUBLISH"`
	Notify      NotifyConfig  `json:"notify" yaml:"notify" toml:"notify" envconfig:"NOTIFY"`
	Sitemap     SitemapConfig `json:"sitemap" yaml:"sitemap" toml:"sitemap" envconfig:"SITEMAP"`
	Index       IndexConfig   `json:"index" yaml:"index" toml:"index" envconfig:"INDEX"`
	Staging     StagingConfig `json:"staging" yaml:"staging" toml:"staging" envconfig:"STAGING"`
	Log         LogConfig     `json:"log" yaml:"log" toml:"log" envconfig:"LOG"`
	MetricsFile string        `json:"metrics_file" yaml:"metrics_file" toml:"metrics_file" envconfig:"METRICS_FILE"`
}

// SourceConfig selects and parameterises the line-item reader.
type SourceConfig struct {
	Kind        string `json:"kind" yaml:"kind" toml:"kind" envconfig:"KIND" validate:"required,oneof=parquet csv sqlite postgres bigquery"`
	Input       string `json:"input" yaml:"input" toml:"input" envconfig:"INPUT" validate:"required_if=Kind parquet,required_if=Kind csv,required_if=Kind sqlite"`
	Table       string `json:"table" yaml:"table" toml:"table" envconfig:"TABLE" validate:"required_if=Kind bigquery"`
	DSN         string `json:"dsn" yaml:"dsn" toml:"dsn" envconfig:"DSN" validate:"required_if=Kind postgres"`
	Project     string `json:"project" yaml:"project" toml:"project" envconfig:"PROJECT" validate:"required_if=Kind bigquery"`
	Credentials string `json:"credentials" yaml:"credentials" toml:"credentials" envconfig:"CREDENTIALS"`
	DefaultYear int    `json:"default_year" yaml:"default_year" toml:"default_year" envconfig:"DEFAULT_YEAR" validate:"omitempty,gte=1900,lte=2999"`
}

// OutputConfig controls where and how aggregates are written.
type OutputConfig struct {
	Dir         string   `json:"dir" yaml:"dir" toml:"dir" envconfig:"DIR" validate:"required"`
	Formats     []string `json:"formats" yaml:"formats" toml:"formats" envconfig:"FORMATS" validate:"min=1,dive,oneof=json yaml"`
	ReportTypes []string `json:"report_types" yaml:"report_types" toml:"report_types" envconfig:"REPORT_TYPES" validate:"dive,oneof=csv pdf"`
	Levels      []string `json:"levels" yaml:"levels" toml:"levels" envconfig:"LEVELS" validate:"dive,oneof=departments agencies fund_subcategories expenses objects yearly_totals"`
	SourceLabel string   `json:"source_label" yaml:"source_label" toml:"source_label" envconfig:"SOURCE_LABEL"`
	Parquet     string   `json:"parquet" yaml:"parquet" toml:"parquet" envconfig:"PARQUET"`
}

// PublishConfig points at an object store to copy written files to.
type PublishConfig struct {
	Target      string `json:"target" yaml:"target" toml:"target" envconfig:"TARGET" validate:"omitempty,startswith=s3://|startswith=gs://"`
	Profile     string `json:"profile" yaml:"profile" toml:"profile" envconfig:"PROFILE"`
	Region      string `json:"region" yaml:"region" toml:"region" envconfig:"REGION"`
	Credentials string `json:"credentials" yaml:"credentials" toml:"credentials" envconfig:"CREDENTIALS"`
	Concurrency int    `json:"concurrency" yaml:"concurrency" toml:"concurrency" envconfig:"CONCURRENCY" validate:"gte=1,lte=32"`
}

// NotifyConfig enables the run-completed AMQP message.
type NotifyConfig struct {
	AMQPURL    string `json:"amqp_url" yaml:"amqp_url" toml:"amqp_url" envconfig:"AMQP_URL" validate:"omitempty,url"`
	Exchange   string `json:"exchange" yaml:"exchange" toml:"exchange" envconfig:"EXCHANGE" validate:"required_with=AMQPURL"`
	RoutingKey string `json:"routing_key" yaml:"routing_key" toml:"routing_key" envconfig:"ROUTING_KEY"`
}

// SitemapConfig controls the sitemap command.
type SitemapConfig struct {
	BaseURL string `json:"base_url" yaml:"base_url" toml:"base_url" envconfig:"BASE_URL" validate:"required,url"`
	Output  string `json:"output" yaml:"output" toml:"output" envconfig:"OUTPUT"`
}

// IndexConfig controls the search-index feed.
type IndexConfig struct {
	Name      string `json:"name" yaml:"name" toml:"name" envconfig:"NAME" validate:"required"`
	BatchSize int    `json:"batch_size" yaml:"batch_size" toml:"batch_size" envconfig:"BATCH_SIZE" validate:"gte=1,lte=10000"`
	AMQPURL   string `json:"amqp_url" yaml:"amqp_url" toml:"amqp_url" envconfig:"AMQP_URL" validate:"omitempty,url"`
	Exchange  string `json:"exchange" yaml:"exchange" toml:"exchange" envconfig:"EXCHANGE" validate:"required"`
}

// StagingConfig controls the CSV to SQLite staging step.
type StagingConfig struct {
	Database string `json:"database" yaml:"database" toml:"database" envconfig:"DATABASE" validate:"required"`
	Table    string `json:"table" yaml:"table" toml:"table" envconfig:"TABLE"`
	Replace  bool   `json:"replace" yaml:"replace" toml:"replace" envconfig:"REPLACE"`
}

// LogConfig controls the structured diagnostic log.
type LogConfig struct {
	Level string `json:"level" yaml:"level" toml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	File  string `json:"file" yaml:"file" toml:"file" envconfig:"FILE"`
}

// DefaultConfig returns the configuration used when nothing else is specified.
func DefaultConfig() *Config {
	return &Config{
		Source: SourceConfig{
			Kind:  SourceParquet,
			Input: "gaa.parquet",
			Table: "gaa_line_items",
		},
		Output: OutputConfig{
			Dir:         "aggregates",
			Formats:     []string{"json"},
			SourceLabel: "General Appropriations Act",
			Parquet:     "gaa.parquet",
		},
		Publish: PublishConfig{
			Concurrency: 4,
		},
		Notify: NotifyConfig{
			Exchange:   "gaa",
			RoutingKey: "gaa.aggregates.completed",
		},
		Sitemap: SitemapConfig{
			BaseURL: "https://transparency.bettergov.ph",
			Output:  "sitemap.xml",
		},
		Index: IndexConfig{
			Name:      "gaa",
			BatchSize: 1000,
			Exchange:  "search-index",
		},
		Staging: StagingConfig{
			Database: "gaa.db",
			Table:    "gaa_line_items",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
