package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// rentSentinel mirrors domain.RentSentinel; a ceiling at or above it would
// admit stations whose rent is unknown.
const rentSentinel = 999.0

// Config holds all run settings, populated from environment variables.
type Config struct {
	// Scoring inputs.
	TargetAreas          []string
	TargetStations       []string
	TimeLimit            int
	RentLimit            float64
	OutputTop            int
	IgnoreStations       []string
	PrefectureQualifiers []string

	// Rent source (SUUMO).
	SuumoBaseURL      string
	SuumoBuildingType string
	SuumoLayout       string
	RequestsPerMinute int

	// Routing service (NAVITIME via RapidAPI).
	RapidAPIKey          string
	NavitimeTransportURL string
	NavitimeReachableURL string
	ReachTerm            int
	ReachTransitLimit    int
	ReachResultLimit     int
	ReachExcludedModes   []string

	// Transport.
	HTTPTimeout          time.Duration
	FetchRetryAttempts   int
	FetchRetryDelay      time.Duration
	FetchRetryMultiplier float64

	// Cache.
	CacheBackend    string
	CacheDir        string
	CacheSQLitePath string

	// Optional sinks and endpoints.
	KafkaBrokers    []string
	KafkaTopic      string
	HTTPAddr        string
	ShutdownTimeout time.Duration

	LogLevel  string
	LogFormat string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		TargetAreas:          splitList(sharedcfg.EnvOrDefault("TARGET_AREAS", "tokyo,chiba,saitama,kanagawa")),
		TargetStations:       splitList(sharedcfg.EnvOrDefault("TARGET_STATIONS", "新宿,東京,渋谷,品川")),
		IgnoreStations:       splitList(sharedcfg.EnvOrDefault("IGNORE_STATIONS", "東京ディズニーランド,リゾートゲートウェイ,新綱島,小川町,霞ヶ関,羽田空港第１・第２ターミナル")),
		PrefectureQualifiers: splitList(sharedcfg.EnvOrDefault("PREFECTURE_QUALIFIERS", "(東京都),(埼玉県),(千葉県),(神奈川県)")),

		SuumoBaseURL:      strings.TrimRight(sharedcfg.EnvOrDefault("SUUMO_BASE_URL", "https://suumo.jp"), "/"),
		SuumoBuildingType: sharedcfg.EnvOrDefault("SUUMO_BUILDING_TYPE", "1"),
		SuumoLayout:       sharedcfg.EnvOrDefault("SUUMO_LAYOUT", "03"),

		RapidAPIKey:          os.Getenv("RAPIDAPI_KEY"),
		NavitimeTransportURL: strings.TrimRight(sharedcfg.EnvOrDefault("NAVITIME_TRANSPORT_URL", "https://navitime-transport.p.rapidapi.com"), "/"),
		NavitimeReachableURL: strings.TrimRight(sharedcfg.EnvOrDefault("NAVITIME_REACHABLE_URL", "https://navitime-reachable.p.rapidapi.com"), "/"),
		ReachExcludedModes:   splitList(sharedcfg.EnvOrDefault("REACH_EXCLUDED_MODES", "domestic_flight,ferry,superexpress_train,sleeper_ultraexpress,shuttle_bus")),

		CacheBackend:    strings.ToLower(sharedcfg.EnvOrDefault("CACHE_BACKEND", "file")),
		CacheDir:        sharedcfg.EnvOrDefault("CACHE_DIR", ".cache"),
		CacheSQLitePath: sharedcfg.EnvOrDefault("CACHE_SQLITE_PATH", ".cache/scout.db"),

		KafkaTopic:      sharedcfg.EnvOrDefault("KAFKA_TOPIC", "station-rankings"),
		HTTPAddr:        os.Getenv("HTTP_ADDR"),
		ShutdownTimeout: shutdownTimeout,

		LogLevel:  sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: sharedcfg.EnvOrDefault("LOG_FORMAT", "text"),
	}
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = sharedcfg.ParseBrokers(brokers)
	}

	ints := []struct {
		key  string
		def  int
		dst  *int
		minV int
	}{
		{"TIME_LIMIT", 30, &cfg.TimeLimit, 0},
		{"OUTPUT_TOP", 10, &cfg.OutputTop, 0},
		{"REQUESTS_PER_MINUTE", 30, &cfg.RequestsPerMinute, 1},
		{"REACH_TERM", 60, &cfg.ReachTerm, 1},
		{"REACH_TRANSIT_LIMIT", 30, &cfg.ReachTransitLimit, 0},
		{"REACH_RESULT_LIMIT", 2000, &cfg.ReachResultLimit, 1},
		{"FETCH_RETRY_ATTEMPTS", 3, &cfg.FetchRetryAttempts, 1},
	}
	for _, f := range ints {
		v, err := envInt(f.key, f.def)
		if err != nil {
			return nil, err
		}
		if v < f.minV {
			return nil, fmt.Errorf("%s must be at least %d", f.key, f.minV)
		}
		*f.dst = v
	}

	if cfg.RentLimit, err = envFloat("RENT_LIMIT", 13); err != nil {
		return nil, err
	}
	if cfg.FetchRetryMultiplier, err = envFloat("FETCH_RETRY_MULTIPLIER", 2); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = envDuration("HTTP_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.FetchRetryDelay, err = envDuration("FETCH_RETRY_DELAY", 10*time.Second); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// KafkaEnabled reports whether rankings should be published to Kafka.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// RequestInterval is the pause after each rent-source fetch.
func (c *Config) RequestInterval() time.Duration {
	return time.Minute / time.Duration(c.RequestsPerMinute)
}

func (c *Config) validate() error {
	if c.RapidAPIKey == "" {
		return errors.New("RAPIDAPI_KEY is required")
	}
	if len(c.TargetAreas) == 0 {
		return errors.New("TARGET_AREAS is required")
	}
	if len(c.TargetStations) == 0 {
		return errors.New("TARGET_STATIONS is required")
	}
	if c.RentLimit >= rentSentinel {
		return fmt.Errorf("RENT_LIMIT must be below %g, the unknown-rent sentinel", rentSentinel)
	}
	if c.FetchRetryMultiplier < 1 {
		return errors.New("FETCH_RETRY_MULTIPLIER must be at least 1")
	}
	switch c.CacheBackend {
	case "file", "sqlite", "memory", "none":
	default:
		return fmt.Errorf("CACHE_BACKEND must be one of file, sqlite, memory, none: got %q", c.CacheBackend)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func envInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return n, nil
}

func envFloat(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return f, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return d, nil
}
