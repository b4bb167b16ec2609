package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_ValidConfiguration(t *testing.T) {
	// Set up valid environment variables
	os.Setenv("DATABASE_PATH", "./test.db")
	os.Setenv("STREAMING_BASE_URL", "http://localhost:8080/watch/lv")
	os.Setenv("USER_AGENT", "test-agent")
	os.Setenv("FETCH_TIMEOUT", "3s")
	os.Setenv("LOG_LEVEL", "DEBUG")
	os.Setenv("LOG_FORMAT", "json")
	os.Setenv("LOG_FILE", "./logs/streaming_data.log")
	os.Setenv("METRICS_TEXTFILE", "./nicodb.prom")
	os.Setenv("UNKNOWN_STREAMER_ID", "-1")
	os.Setenv("UNKNOWN_CHANNEL_ID", "-2")
	os.Setenv("UNKNOWN_STREAMING_TITLE", "missing")
	defer clearEnv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed with valid config: %v", err)
	}

	if cfg.DatabasePath != "./test.db" {
		t.Errorf("DatabasePath = %s, want ./test.db", cfg.DatabasePath)
	}
	if cfg.StreamingBaseURL != "http://localhost:8080/watch/lv" {
		t.Errorf("StreamingBaseURL = %s, want http://localhost:8080/watch/lv", cfg.StreamingBaseURL)
	}
	if cfg.UserAgent != "test-agent" {
		t.Errorf("UserAgent = %s, want test-agent", cfg.UserAgent)
	}
	if cfg.FetchTimeout != 3*time.Second {
		t.Errorf("FetchTimeout = %s, want 3s", cfg.FetchTimeout)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %s, want debug", cfg.LogLevel)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat = %s, want json", cfg.LogFormat)
	}
	if cfg.LogFile != "./logs/streaming_data.log" {
		t.Errorf("LogFile = %s, want ./logs/streaming_data.log", cfg.LogFile)
	}
	if cfg.MetricsTextfile != "./nicodb.prom" {
		t.Errorf("MetricsTextfile = %s, want ./nicodb.prom", cfg.MetricsTextfile)
	}
	if cfg.Placeholders.StreamerID != -1 {
		t.Errorf("Placeholders.StreamerID = %d, want -1", cfg.Placeholders.StreamerID)
	}
	if cfg.Placeholders.ChannelID != -2 {
		t.Errorf("Placeholders.ChannelID = %d, want -2", cfg.Placeholders.ChannelID)
	}
	if cfg.Placeholders.StreamingTitle != "missing" {
		t.Errorf("Placeholders.StreamingTitle = %s, want missing", cfg.Placeholders.StreamingTitle)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv()
	defer clearEnv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed with defaults: %v", err)
	}

	if cfg.DatabasePath != "./data/nicodb.db" {
		t.Errorf("DatabasePath = %s, want ./data/nicodb.db", cfg.DatabasePath)
	}
	if cfg.StreamingBaseURL != "https://live.nicovideo.jp/watch/lv" {
		t.Errorf("StreamingBaseURL = %s, want https://live.nicovideo.jp/watch/lv", cfg.StreamingBaseURL)
	}
	if cfg.UserAgent != DefaultUserAgent {
		t.Errorf("UserAgent = %s, want default user agent", cfg.UserAgent)
	}
	if cfg.FetchTimeout != 10*time.Second {
		t.Errorf("FetchTimeout = %s, want 10s", cfg.FetchTimeout)
	}
	if cfg.LogFormat != "console" {
		t.Errorf("LogFormat = %s, want console", cfg.LogFormat)
	}
	if cfg.LogFile != "" || cfg.MetricsTextfile != "" {
		t.Error("expected optional sinks to be disabled by default")
	}
	if cfg.Placeholders.StreamerName != "不明な配信者" {
		t.Errorf("Placeholders.StreamerName = %s, want 不明な配信者", cfg.Placeholders.StreamerName)
	}
	if cfg.Placeholders.NonexistentStreamer != "存在しない配信者です。" {
		t.Errorf("Placeholders.NonexistentStreamer = %s, want 存在しない配信者です。", cfg.Placeholders.NonexistentStreamer)
	}
}

func TestLoad_InvalidFetchTimeout(t *testing.T) {
	clearEnv()
	os.Setenv("FETCH_TIMEOUT", "ten seconds")
	defer clearEnv()

	_, err := Load()
	if err == nil {
		t.Fatal("Load() should fail when FETCH_TIMEOUT is not a duration")
	}
}

func TestLoad_InvalidPlaceholderID(t *testing.T) {
	clearEnv()
	os.Setenv("UNKNOWN_CHANNEL_ID", "abc")
	defer clearEnv()

	_, err := Load()
	if err == nil {
		t.Fatal("Load() should fail when UNKNOWN_CHANNEL_ID is not numeric")
	}
}

// clearEnv clears all test environment variables
func clearEnv() {
	for _, key := range []string{
		"DATABASE_PATH",
		"STREAMING_BASE_URL",
		"USER_AGENT",
		"FETCH_TIMEOUT",
		"LOG_LEVEL",
		"LOG_FORMAT",
		"LOG_FILE",
		"METRICS_TEXTFILE",
		"UNKNOWN_STREAMER_ID",
		"UNKNOWN_STREAMER_NAME",
		"UNKNOWN_CHANNEL_ID",
		"UNKNOWN_CHANNEL_NAME",
		"UNKNOWN_COMPANY_NAME",
		"UNKNOWN_STREAMING_TITLE",
		"NONEXISTENT_STREAMER_MESSAGE",
	} {
		os.Unsetenv(key)
	}
}
