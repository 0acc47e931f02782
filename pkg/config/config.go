package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// SeriesSpec is the static metadata for one named series. Immutable after
// load; the pipeline derives tenor mappings and yield column sets from it.
type SeriesSpec struct {
	Name       string  `yaml:"name"`
	ID         string  `yaml:"id"`
	Source     string  `yaml:"source"` // fred, boc, csv
	Country    string  `yaml:"country,omitempty"`
	Units      string  `yaml:"units"` // percent or rate
	TenorYears float64 `yaml:"tenor_years,omitempty"`
}

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logging"`
	Pipeline struct {
		StartDate       string        `yaml:"start_date"`
		RefreshInterval time.Duration `yaml:"refresh_interval"`
		VolWindow       int           `yaml:"vol_window"`
		RawDir          string        `yaml:"raw_dir"`
		Spread          struct {
			USColumn string `yaml:"us_column"`
			CAColumn string `yaml:"ca_column"`
		} `yaml:"spread"`
	} `yaml:"pipeline"`
	Output struct {
		Dir         string `yaml:"dir"`
		ParquetFile string `yaml:"parquet_file"`
		CSVFile     string `yaml:"csv_file"`
	} `yaml:"output"`
	Sources struct {
		FredBaseURL string        `yaml:"fred_base_url"`
		BocBaseURL  string        `yaml:"boc_base_url"`
		CSVDir      string        `yaml:"csv_dir"`
		Timeout     time.Duration `yaml:"timeout"`
		RateLimit   struct {
			Capacity     float64 `yaml:"capacity"`
			RefillPerSec float64 `yaml:"refill_per_sec"`
		} `yaml:"rate_limit"`
	} `yaml:"sources"`
	Cache struct {
		TTL   time.Duration `yaml:"ttl"`
		Redis struct {
			Enabled  bool   `yaml:"enabled"`
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Enabled          bool          `yaml:"enabled"`
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Series []SeriesSpec `yaml:"series"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
	}
	if v := os.Getenv("OUTPUT_DIR"); v != "" {
		c.Output.Dir = v
	}
	if v := os.Getenv("START_DATE"); v != "" {
		c.Pipeline.StartDate = v
	}

	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if len(c.Series) == 0 {
		return fmt.Errorf("series cannot be empty")
	}
	if c.Output.Dir == "" {
		return fmt.Errorf("output.dir is required")
	}
	seen := make(map[string]bool, len(c.Series))
	tenors := make(map[string]bool)
	for _, s := range c.Series {
		if s.Name == "" || s.ID == "" {
			return fmt.Errorf("series name and id are required")
		}
		if seen[s.Name] {
			return fmt.Errorf("duplicate series name '%s'", s.Name)
		}
		seen[s.Name] = true
		switch s.Source {
		case "fred", "boc", "csv":
		default:
			return fmt.Errorf("series %s: source must be 'fred', 'boc' or 'csv', got '%s'", s.Name, s.Source)
		}
		if s.Country != "" && s.TenorYears > 0 {
			key := fmt.Sprintf("%s/%d", s.Country, int(s.TenorYears))
			if tenors[key] {
				return fmt.Errorf("series %s: duplicate tenor %v for country %s", s.Name, s.TenorYears, s.Country)
			}
			tenors[key] = true
		}
	}
	return nil
}

// YieldColumns returns the names of all percent-unit series, the columns
// forward-filled across non-aligned trading calendars.
func (c *Config) YieldColumns() []string {
	out := make([]string, 0, len(c.Series))
	for _, s := range c.Series {
		if s.Units == "percent" {
			out = append(out, s.Name)
		}
	}
	return out
}

// TenorColumns returns, per country, the mapping from integer tenor in
// years to the panel column for that tenor.
func (c *Config) TenorColumns() map[string]map[int]string {
	out := make(map[string]map[int]string)
	for _, s := range c.Series {
		if s.Country == "" || s.TenorYears <= 0 {
			continue
		}
		if out[s.Country] == nil {
			out[s.Country] = make(map[int]string)
		}
		out[s.Country][int(s.TenorYears)] = s.Name
	}
	return out
}
