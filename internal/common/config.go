package common

import (
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	OCR      OCRConfig
	LLM      LLMConfig
	WhatsApp WhatsAppConfig
	Ingest   IngestConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// StoreConfig holds document-store settings. Path is the badger directory;
// Namespace separates databases under it the way the original deployment
// separated Mongo database names.
type StoreConfig struct {
	Path      string
	Namespace string
}

// OCRConfig holds Vision OCR settings.
type OCRConfig struct {
	CredentialsFile string
	CallTimeout     time.Duration
	OverallDeadline time.Duration
	Pdftoppm        string
	RasterDPI       int
}

// LLMConfig holds OpenAI settings.
type LLMConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	Timeout     time.Duration
}

// WhatsAppConfig holds Meta Graph API messaging settings.
type WhatsAppConfig struct {
	Token         string
	PhoneNumberID string
	BaseURL       string
	Timeout       time.Duration
}

// IngestConfig holds optional hot-folder ingestion settings.
type IngestConfig struct {
	WatchDir string
	Debounce time.Duration
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":9001")
	v.SetDefault("HTTP_READ_TIMEOUT", "60s")
	v.SetDefault("HTTP_WRITE_TIMEOUT", "60s")

	v.SetDefault("STORE_PATH", "./data")
	v.SetDefault("STORE_NAMESPACE", "docextract")

	v.SetDefault("OCR_CALL_TIMEOUT", "90s")
	v.SetDefault("OCR_OVERALL_DEADLINE", "180s")
	v.SetDefault("PDFTOPPM_BIN", "pdftoppm")
	v.SetDefault("RASTER_DPI", 144)

	v.SetDefault("OPENAI_BASE_URL", "https://api.openai.com/v1")
	v.SetDefault("OPENAI_MODEL", "gpt-4o-2024-08-06")
	v.SetDefault("OPENAI_TEMPERATURE", 0.0)
	v.SetDefault("OPENAI_TIMEOUT", "60s")

	v.SetDefault("WHATSAPP_BASE_URL", "https://graph.facebook.com/v18.0")
	v.SetDefault("WHATSAPP_TIMEOUT", "30s")

	v.SetDefault("INGEST_DEBOUNCE", "500ms")

	return &Config{
		Server: ServerConfig{
			Addr:         v.GetString("HTTP_ADDR"),
			ReadTimeout:  v.GetDuration("HTTP_READ_TIMEOUT"),
			WriteTimeout: v.GetDuration("HTTP_WRITE_TIMEOUT"),
		},
		Store: StoreConfig{
			Path:      v.GetString("STORE_PATH"),
			Namespace: v.GetString("STORE_NAMESPACE"),
		},
		OCR: OCRConfig{
			CredentialsFile: v.GetString("GOOGLE_APPLICATION_CREDENTIALS"),
			CallTimeout:     v.GetDuration("OCR_CALL_TIMEOUT"),
			OverallDeadline: v.GetDuration("OCR_OVERALL_DEADLINE"),
			Pdftoppm:        v.GetString("PDFTOPPM_BIN"),
			RasterDPI:       v.GetInt("RASTER_DPI"),
		},
		LLM: LLMConfig{
			APIKey:      v.GetString("OPENAI_API_KEY"),
			BaseURL:     v.GetString("OPENAI_BASE_URL"),
			Model:       v.GetString("OPENAI_MODEL"),
			Temperature: float32(v.GetFloat64("OPENAI_TEMPERATURE")),
			Timeout:     v.GetDuration("OPENAI_TIMEOUT"),
		},
		WhatsApp: WhatsAppConfig{
			Token:         v.GetString("GRAPH_API_TOKEN"),
			PhoneNumberID: v.GetString("PHONE_NUMBER_ID"),
			BaseURL:       v.GetString("WHATSAPP_BASE_URL"),
			Timeout:       v.GetDuration("WHATSAPP_TIMEOUT"),
		},
		Ingest: IngestConfig{
			WatchDir: v.GetString("INGEST_WATCH_DIR"),
			Debounce: v.GetDuration("INGEST_DEBOUNCE"),
		},
	}
}
