package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const minimalYAML = `
environment: test
market:
  symbols:
    - BTCUSDT
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("default port %d", cfg.Server.Port)
	}
	if cfg.Backend.Type != "clickhouse" {
		t.Fatalf("default backend %q", cfg.Backend.Type)
	}
	if cfg.Kafka.CandlesTopic != "fincast.candles" || cfg.Kafka.AlertsTopic != "fincast.alerts" {
		t.Fatalf("default topics %q / %q", cfg.Kafka.CandlesTopic, cfg.Kafka.AlertsTopic)
	}
	if cfg.Kafka.LogsTopic != "fincast.logs" {
		t.Fatalf("default logs topic %q", cfg.Kafka.LogsTopic)
	}
	if cfg.Market.HTTPTimeout != 10*time.Second {
		t.Fatalf("default market http timeout %v", cfg.Market.HTTPTimeout)
	}
	if cfg.Model.Kind != "gbt" || cfg.Model.AlertThreshold != 0.6 {
		t.Fatalf("default model section %+v", cfg.Model)
	}
	if cfg.Model.TestRatio != 0.2 {
		t.Fatalf("default test ratio %v", cfg.Model.TestRatio)
	}
}

func TestLoadRejectsBadModelKind(t *testing.T) {
	_, err := Load(writeConfig(t, minimalYAML+`
model:
  kind: perceptron
`))
	if err == nil {
		t.Fatalf("expected validation error for unknown model kind")
	}
}

func TestLoadRejectsKafkaBackendWithoutBrokers(t *testing.T) {
	_, err := Load(writeConfig(t, minimalYAML+`
backend:
  type: kafka
`))
	if err == nil {
		t.Fatalf("expected error for kafka backend without brokers")
	}
}

func TestLoadRejectsNoSymbols(t *testing.T) {
	_, err := Load(writeConfig(t, "environment: test\n"))
	if err == nil {
		t.Fatalf("expected error for empty symbol list")
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("MARKET_API_KEY", "k-from-env")
	t.Setenv("SYMBOLS", "SOLUSDT,ADAUSDT")
	t.Setenv("MODEL_KIND", "svm")

	cfg, err := LoadWithEnv(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Fatalf("port %d", cfg.Server.Port)
	}
	if cfg.Market.APIKey != "k-from-env" {
		t.Fatalf("api key %q", cfg.Market.APIKey)
	}
	if len(cfg.Market.Symbols) != 2 || cfg.Market.Symbols[0] != "SOLUSDT" {
		t.Fatalf("symbols %v", cfg.Market.Symbols)
	}
	if cfg.Model.Kind != "svm" {
		t.Fatalf("model kind %q", cfg.Model.Kind)
	}
}

func TestLoadWithEnvRevalidates(t *testing.T) {
	t.Setenv("MODEL_KIND", "perceptron")
	if _, err := LoadWithEnv(writeConfig(t, minimalYAML)); err == nil {
		t.Fatalf("expected validation error for env-injected bad kind")
	}
}
