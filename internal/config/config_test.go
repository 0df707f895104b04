package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "rapid-test-key"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("RAPIDAPI_KEY", testAPIKey)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"tokyo", "chiba", "saitama", "kanagawa"}, cfg.TargetAreas)
	assert.Equal(t, []string{"新宿", "東京", "渋谷", "品川"}, cfg.TargetStations)
	assert.Equal(t, 30, cfg.TimeLimit)
	assert.Equal(t, 13.0, cfg.RentLimit)
	assert.Equal(t, 10, cfg.OutputTop)
	assert.Equal(t, 30, cfg.RequestsPerMinute)
	assert.Len(t, cfg.IgnoreStations, 6)
	assert.Contains(t, cfg.IgnoreStations, "霞ヶ関")
	assert.Equal(t, []string{"(東京都)", "(埼玉県)", "(千葉県)", "(神奈川県)"}, cfg.PrefectureQualifiers)

	assert.Equal(t, "https://suumo.jp", cfg.SuumoBaseURL)
	assert.Equal(t, "1", cfg.SuumoBuildingType)
	assert.Equal(t, "03", cfg.SuumoLayout)

	assert.Equal(t, testAPIKey, cfg.RapidAPIKey)
	assert.Equal(t, "https://navitime-transport.p.rapidapi.com", cfg.NavitimeTransportURL)
	assert.Equal(t, "https://navitime-reachable.p.rapidapi.com", cfg.NavitimeReachableURL)
	assert.Equal(t, 60, cfg.ReachTerm)
	assert.Equal(t, 30, cfg.ReachTransitLimit)
	assert.Equal(t, 2000, cfg.ReachResultLimit)
	assert.Equal(t, []string{"domestic_flight", "ferry", "superexpress_train", "sleeper_ultraexpress", "shuttle_bus"}, cfg.ReachExcludedModes)

	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 3, cfg.FetchRetryAttempts)
	assert.Equal(t, 10*time.Second, cfg.FetchRetryDelay)
	assert.Equal(t, 2.0, cfg.FetchRetryMultiplier)

	assert.Equal(t, "file", cfg.CacheBackend)
	assert.Equal(t, ".cache", cfg.CacheDir)
	assert.Equal(t, ".cache/scout.db", cfg.CacheSQLitePath)

	assert.Empty(t, cfg.KafkaBrokers)
	assert.False(t, cfg.KafkaEnabled())
	assert.Equal(t, "station-rankings", cfg.KafkaTopic)
	assert.Empty(t, cfg.HTTPAddr)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)

	assert.Equal(t, 2*time.Second, cfg.RequestInterval())
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("RAPIDAPI_KEY", testAPIKey)
	t.Setenv("TARGET_AREAS", "tokyo, kanagawa")
	t.Setenv("TARGET_STATIONS", "横浜,川崎")
	t.Setenv("TIME_LIMIT", "45")
	t.Setenv("RENT_LIMIT", "9.5")
	t.Setenv("OUTPUT_TOP", "0")
	t.Setenv("REQUESTS_PER_MINUTE", "60")
	t.Setenv("IGNORE_STATIONS", "舞浜, 新木場")
	t.Setenv("FETCH_RETRY_ATTEMPTS", "5")
	t.Setenv("FETCH_RETRY_DELAY", "250ms")
	t.Setenv("CACHE_BACKEND", "SQLite")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_TOPIC", "custom-rankings")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"tokyo", "kanagawa"}, cfg.TargetAreas)
	assert.Equal(t, []string{"横浜", "川崎"}, cfg.TargetStations)
	assert.Equal(t, 45, cfg.TimeLimit)
	assert.Equal(t, 9.5, cfg.RentLimit)
	assert.Equal(t, 0, cfg.OutputTop)
	assert.Equal(t, time.Second, cfg.RequestInterval())
	assert.Equal(t, []string{"舞浜", "新木場"}, cfg.IgnoreStations)
	assert.Equal(t, 5, cfg.FetchRetryAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.FetchRetryDelay)
	assert.Equal(t, "sqlite", cfg.CacheBackend)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.KafkaEnabled())
	assert.Equal(t, "custom-rankings", cfg.KafkaTopic)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_MissingAPIKey(t *testing.T) {
	t.Setenv("RAPIDAPI_KEY", "")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RAPIDAPI_KEY")
}

func TestLoad_RentLimitAtSentinel(t *testing.T) {
	t.Setenv("RAPIDAPI_KEY", testAPIKey)
	t.Setenv("RENT_LIMIT", "999")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RENT_LIMIT")
}

func TestLoad_InvalidNumbers(t *testing.T) {
	cases := map[string]string{
		"TIME_LIMIT":             "thirty",
		"RENT_LIMIT":             "cheap",
		"OUTPUT_TOP":             "-1",
		"REQUESTS_PER_MINUTE":    "0",
		"FETCH_RETRY_ATTEMPTS":   "0",
		"FETCH_RETRY_DELAY":      "soon",
		"FETCH_RETRY_MULTIPLIER": "0.5",
		"HTTP_TIMEOUT":           "-1s",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv("RAPIDAPI_KEY", testAPIKey)
			t.Setenv(key, value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestLoad_InvalidCacheBackend(t *testing.T) {
	t.Setenv("RAPIDAPI_KEY", testAPIKey)
	t.Setenv("CACHE_BACKEND", "redis")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CACHE_BACKEND")
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("RAPIDAPI_KEY", testAPIKey)
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}
