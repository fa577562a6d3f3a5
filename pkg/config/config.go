package config

import (
	"os"
	"time"

	"github.com/lintang-b-s/navigatorx-mobile/pkg/graph"
	"github.com/lintang-b-s/navigatorx-mobile/pkg/storage"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	GraphFile       string        `yaml:"graph_file"`
	CacheByteBudget int64         `yaml:"cache_byte_budget"`
	UseMmap         bool          `yaml:"use_mmap"`
	ListenAddr      string        `yaml:"listen_addr"`
	QueryTimeout    time.Duration `yaml:"query_timeout"`
	// NearestRadius is the default snapping radius in meters.
	NearestRadius float64 `yaml:"nearest_radius"`
	// SimplifyThreshold is the Douglas-Peucker tolerance in meters, 0 keeps every waypoint.
	SimplifyThreshold float64 `yaml:"simplify_threshold"`
	LogLevel          string  `yaml:"log_level"`
}

func Default() Config {
	return Config{
		GraphFile:       storage.GRAPH_FILE_NAME,
		CacheByteBudget: storage.DEFAULT_CACHE_BYTE_BUDGET,
		UseMmap:         true,
		ListenAddr:      ":5000",
		QueryTimeout:    5 * time.Second,
		NearestRadius:   1000,
		LogLevel:        "info",
	}
}

// Load reads a YAML file over the defaults. Keys missing from the file keep their default value.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "read config %s", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch {
	case c.GraphFile == "":
		return errors.Wrap(ErrInvalidConfig, "graph_file is empty")
	case c.CacheByteBudget <= 0:
		return errors.Wrapf(ErrInvalidConfig, "cache_byte_budget must be positive, got %d", c.CacheByteBudget)
	case c.QueryTimeout <= 0:
		return errors.Wrapf(ErrInvalidConfig, "query_timeout must be positive, got %s", c.QueryTimeout)
	case c.NearestRadius <= 0:
		return errors.Wrapf(ErrInvalidConfig, "nearest_radius must be positive, got %g", c.NearestRadius)
	case c.SimplifyThreshold < 0:
		return errors.Wrapf(ErrInvalidConfig, "simplify_threshold must not be negative, got %g", c.SimplifyThreshold)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrapf(ErrInvalidConfig, "log_level: %v", err)
	}
	return nil
}

// Logger returns a text logger at the configured level.
func (c Config) Logger() *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if level, err := logrus.ParseLevel(c.LogLevel); err == nil {
		log.SetLevel(level)
	}
	return log
}

func (c Config) GraphOptions(log logrus.FieldLogger, reg prometheus.Registerer) graph.Options {
	return graph.Options{
		CacheByteBudget: c.CacheByteBudget,
		UseMmap:         c.UseMmap,
		Logger:          log,
		Registerer:      reg,
	}
}
