package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	BackendURL   string
	APIToken     string
	NATSURL      string
	Tenant       string
	DepartmentID string
	StationName  string
	LogLevel     string
	LogFormat    string

	Port             string
	BoardPoll        time.Duration
	PrintRelayURL    string
	PrinterInterface int
	MockPrinter      bool

	AnnouncerKind string
	ChimeWAV      string
	AudioDir      string
}

func Load() Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "5000"
	}

	return Config{
		BackendURL:   readString("BACKEND_URL", "http://127.0.0.1:8000/api"),
		APIToken:     os.Getenv("API_TOKEN"),
		NATSURL:      readString("NATS_URL", "nats://127.0.0.1:4222"),
		Tenant:       readString("TENANT", "cms"),
		DepartmentID: os.Getenv("DEPARTMENT_ID"),
		StationName:  readString("STATION_NAME", hostnameFallback()),
		LogLevel:     readString("LOG_LEVEL", "info"),
		LogFormat:    readString("LOG_FORMAT", "json"),

		Port:             port,
		BoardPoll:        readDurationSeconds("BOARD_POLL_SECONDS", 10),
		PrintRelayURL:    readString("PRINT_RELAY_URL", "http://127.0.0.1:5000"),
		PrinterInterface: readInt("PRINTER_INTERFACE", -1),
		MockPrinter:      readBool("MOCK_PRINTER", false),

		AnnouncerKind: readString("ANNOUNCER", "real"),
		ChimeWAV:      readString("CHIME_WAV", "chime.wav"),
		AudioDir:      readString("AUDIO_DIR", "audio"),
	}
}

func hostnameFallback() string {
	name, err := os.Hostname()
	if err != nil || name == "" {
		return "station"
	}
	return name
}

func readString(key, fallback string) string {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	return raw
}

func readDurationSeconds(key string, fallback int) time.Duration {
	value := readInt(key, fallback)
	if value <= 0 {
		return 0
	}
	return time.Duration(value) * time.Second
}

func readInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func readBool(key string, fallback bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return value
}
