package config

import (
	"os"
	"strconv"
	"strings"
)

type R2 struct {
	AccountID    string
	AccessKey    string
	SecretKey    string
	BucketName   string
	PublicDomain string
}

type Platform struct {
	Enabled  bool
	VIPs     []string
	Hashtags []string
}

type Config struct {
	PostgresURI string
	RedisURI    string

	GeminiAPIKey     string
	JudgeModel       string
	GhostwriterModel string
	PlannerModel     string
	ImageModel       string
	PersonaPath      string

	TelegramBotToken string
	TelegramChatID   string

	DevtoAPIKey       string
	DevtoUsername     string
	IGUsername        string
	IGAccessToken     string
	IGAccountID       string
	LinkedinUsername  string
	TwitterUsername   string
	BrowserCookiesDir string
	BrowserRemoteURL  string

	Instagram Platform
	Twitter   Platform
	Linkedin  Platform
	Devto     Platform

	DailyInteractionLimit int
	MinSleepSeconds       int
	MaxSleepSeconds       int
	DryRun                bool

	R2         R2
	SecretKey  string
	AdminToken string
	CookieName string
}

func LoadConfig() *Config {
	return &Config{
		PostgresURI: getEnv("POSTGRES_URI", ""),
		RedisURI:    getEnv("REDIS_URI", "127.0.0.1:6379"),

		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
		JudgeModel:       getEnv("JUDGE_MODEL", "gemini-2.5-flash-lite"),
		GhostwriterModel: getEnv("GHOSTWRITER_MODEL", "gemini-2.5-flash"),
		PlannerModel:     getEnv("PLANNER_MODEL", "gemini-2.5-flash"),
		ImageModel:       getEnv("IMAGE_MODEL", "gemini-2.5-flash-image"),
		PersonaPath:      getEnv("PERSONA_PATH", "docs/persona/persona.md"),

		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:   getEnv("TELEGRAM_CHAT_ID", ""),

		DevtoAPIKey:       getEnv("DEVTO_API_KEY", ""),
		DevtoUsername:     getEnv("DEVTO_USERNAME", ""),
		IGUsername:        getEnv("IG_USERNAME", ""),
		IGAccessToken:     getEnv("IG_ACCESS_TOKEN", ""),
		IGAccountID:       getEnv("IG_ACCOUNT_ID", ""),
		LinkedinUsername:  getEnv("LINKEDIN_USERNAME", ""),
		TwitterUsername:   getEnv("TWITTER_USERNAME", ""),
		BrowserCookiesDir: getEnv("BROWSER_COOKIES_DIR", "data/cookies"),
		BrowserRemoteURL:  getEnv("BROWSER_REMOTE_URL", ""),

		Instagram: loadPlatform("INSTAGRAM"),
		Twitter:   loadPlatform("TWITTER"),
		Linkedin:  loadPlatform("LINKEDIN"),
		Devto:     loadPlatform("DEVTO"),

		DailyInteractionLimit: getEnvInt("DAILY_INTERACTION_LIMIT", 10),
		MinSleepSeconds:       getEnvInt("MIN_SLEEP_INTERVAL", 120),
		MaxSleepSeconds:       getEnvInt("MAX_SLEEP_INTERVAL", 600),
		DryRun:                getEnvBool("DRY_RUN", false),

		R2: R2{
			AccountID:    getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:    getEnv("R2_ACCESS_KEY", ""),
			SecretKey:    getEnv("R2_SECRET_KEY", ""),
			BucketName:   getEnv("R2_BUCKET_NAME", "instagram-drafts"),
			PublicDomain: getEnv("R2_PUBLIC_DOMAIN", ""),
		},
		SecretKey:  getEnv("SECRET_KEY", ""),
		AdminToken: getEnv("ADMIN_TOKEN", ""),
		CookieName: getEnv("COOKIE_NAME", "netbot_session"),
	}
}

func loadPlatform(prefix string) Platform {
	return Platform{
		Enabled:  getEnvBool(prefix+"_ENABLED", false),
		VIPs:     getEnvList(prefix + "_VIP_LIST"),
		Hashtags: getEnvList(prefix + "_HASHTAGS"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvList parses a comma-separated env value, trimming blanks.
func getEnvList(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
