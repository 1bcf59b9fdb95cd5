package infra

import (
	"errors"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// ErrDatabaseURLMissing is returned by RequireDatabase when DATABASE_URL is unset.
var ErrDatabaseURLMissing = errors.New("DATABASE_URL is required")

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv           string
	Port             string
	DatabaseURL      string
	StoragePath      string
	StorageBaseURL   string
	LogFile          string
	LogConsole       bool
	GeoIPDBPath      string
	RedisURL         string
	CORSOrigins      []string
	RateLimitPerMin  int
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration

	ProviderTimeout   time.Duration
	ProviderChainFile string
	ImageProviders    []string
	VideoProviders    []string
	PollInterval      time.Duration
	PollBackoff       time.Duration
	ScenePollTimeout  time.Duration
	WorkerConcurrency int

	GeminiAPIKey        string
	GeminiBaseURL       string
	VeoModel            string
	ImagenModel         string
	VisionModel         string
	ReplicateToken      string
	ReplicateBaseURL    string
	HuggingFaceToken    string
	HuggingFaceBaseURL  string
	DashScopeAPIKey     string
	QwenBaseURL         string
	QwenModel           string
	OpenAIAPIKey        string
	OpenAIBaseURL       string
	OpenAIVisionModel   string
	ArkAPIKey           string
	ArkBaseURL          string
	SeedreamModel       string
	SeedanceModel       string
	MediaDownloadMaxMiB int

	AMQPURL   string
	AMQPQueue string
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
// DATABASE_URL is optional here; binaries that need persistence call RequireDatabase.
func LoadConfig() (*Config, error) {
	port := getEnv("PORT", "8080")
	appEnv := getEnv("APP_ENV", "development")
	cfg := &Config{
		AppEnv:           appEnv,
		Port:             port,
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		StoragePath:      getEnv("STORAGE_PATH", "./storage"),
		StorageBaseURL:   getEnv("STORAGE_BASE_URL", "http://localhost:"+port+"/static"),
		LogFile:          os.Getenv("LOG_FILE"),
		LogConsole:       getEnvBool("LOG_CONSOLE", appEnv == "development"),
		GeoIPDBPath:      os.Getenv("GEOIP_DB_PATH"),
		RedisURL:         os.Getenv("REDIS_URL"),
		CORSOrigins:      getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		HTTPReadTimeout:  getEnvSeconds("HTTP_READ_TIMEOUT_SECONDS", 15),
		HTTPWriteTimeout: getEnvSeconds("HTTP_WRITE_TIMEOUT_SECONDS", 120),
		HTTPIdleTimeout:  getEnvSeconds("HTTP_IDLE_TIMEOUT_SECONDS", 60),

		ProviderTimeout:   getEnvSeconds("PROVIDER_TIMEOUT_SECONDS", 90),
		ProviderChainFile: os.Getenv("PROVIDER_CHAIN_FILE"),
		ImageProviders:    getEnvList("IMAGE_PROVIDERS", nil),
		VideoProviders:    getEnvList("VIDEO_PROVIDERS", nil),
		PollInterval:      getEnvSeconds("POLL_INTERVAL_SECONDS", 10),
		PollBackoff:       getEnvSeconds("POLL_BACKOFF_SECONDS", 15),
		ScenePollTimeout:  getEnvSeconds("SCENE_POLL_TIMEOUT_SECONDS", 600),
		WorkerConcurrency: getEnvInt("WORKER_CONCURRENCY", 1),

		GeminiAPIKey:        os.Getenv("GEMINI_API_KEY"),
		GeminiBaseURL:       getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		VeoModel:            getEnv("VEO_MODEL", "veo-2"),
		ImagenModel:         getEnv("IMAGEN_MODEL", "imagen-3.0-generate-001"),
		VisionModel:         getEnv("VISION_MODEL", "gemini-1.5-flash"),
		ReplicateToken:      os.Getenv("REPLICATE_API_TOKEN"),
		ReplicateBaseURL:    getEnv("REPLICATE_BASE_URL", "https://api.replicate.com/v1"),
		HuggingFaceToken:    os.Getenv("HUGGINGFACE_TOKEN"),
		HuggingFaceBaseURL:  getEnv("HUGGINGFACE_BASE_URL", "https://api-inference.huggingface.co"),
		DashScopeAPIKey:     os.Getenv("DASHSCOPE_API_KEY"),
		QwenBaseURL:         getEnv("QWEN_BASE_URL", "https://dashscope-intl.aliyuncs.com"),
		QwenModel:           getEnv("QWEN_MODEL", "qwen-image-plus"),
		OpenAIAPIKey:        os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:       getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIVisionModel:   getEnv("OPENAI_VISION_MODEL", "gpt-4o-mini"),
		ArkAPIKey:           os.Getenv("ARK_API_KEY"),
		ArkBaseURL:          getEnv("ARK_BASE_URL", "https://ark.ap-southeast.bytepluses.com/api/v3"),
		SeedreamModel:       getEnv("SEEDREAM_MODEL", "seedream-4-0-250828"),
		SeedanceModel:       getEnv("SEEDANCE_MODEL", "seedance-1-0-pro-250528"),
		MediaDownloadMaxMiB: getEnvInt("MEDIA_DOWNLOAD_MAX_MIB", 64),

		AMQPURL:   os.Getenv("AMQP_URL"),
		AMQPQueue: getEnv("AMQP_QUEUE", "reelgen.projects"),
	}

	if cfg.WorkerConcurrency < 1 {
		cfg.WorkerConcurrency = 1
	}

	return cfg, nil
}

// RequireDatabase reports an error when DATABASE_URL is unset.
func (c *Config) RequireDatabase() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return ErrDatabaseURLMissing
	}
	return nil
}

// StorageHost returns the host serving persisted media, used in CORS and
// media URL checks.
func (c *Config) StorageHost() string {
	u, err := url.Parse(c.StorageBaseURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// ServerCredentials returns the provider secrets configured through the environment.
func (c *Config) ServerCredentials() map[string]string {
	return map[string]string{
		"gemini":      c.GeminiAPIKey,
		"replicate":   c.ReplicateToken,
		"huggingface": c.HuggingFaceToken,
		"dashscope":   c.DashScopeAPIKey,
		"openai":      c.OpenAIAPIKey,
		"ark":         c.ArkAPIKey,
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvSeconds(key string, fallback int) time.Duration {
	return time.Second * time.Duration(getEnvInt(key, fallback))
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
