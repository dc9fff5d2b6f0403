package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`

	DatabasePath string `mapstructure:"database_path" yaml:"database_path"`

	JWTSecret      string        `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	JWTIssuer      string        `mapstructure:"jwt_issuer" yaml:"jwt_issuer"`
	JWTAudience    string        `mapstructure:"jwt_audience" yaml:"jwt_audience"`
	JWTTTL         time.Duration `mapstructure:"jwt_ttl" yaml:"jwt_ttl"`
	WSAuthRequired bool          `mapstructure:"ws_auth_required" yaml:"ws_auth_required"`
	AllowedOrigins []string      `mapstructure:"allowed_origins" yaml:"allowed_origins"`

	MaxMessageBytes    int64    `mapstructure:"max_message_bytes" yaml:"max_message_bytes"`
	MaxMessageRunes    int      `mapstructure:"max_message_runes" yaml:"max_message_runes"`
	ClientBuffer       int      `mapstructure:"client_buffer" yaml:"client_buffer"`
	RateLimitPerMinute int      `mapstructure:"rate_limit_per_minute" yaml:"rate_limit_per_minute"`
	FallbackLanguage   string   `mapstructure:"fallback_language" yaml:"fallback_language"`
	CensoredWords      []string `mapstructure:"censored_words" yaml:"censored_words"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:               ":8080",
		ReadHeaderTimeout:  5 * time.Second,
		ShutdownTimeout:    5 * time.Second,
		LogLevel:           "info",
		DatabasePath:       "translachat.db",
		JWTSecret:          "change-me",
		JWTIssuer:          "translachat",
		JWTAudience:        "translachat-clients",
		JWTTTL:             24 * time.Hour,
		AllowedOrigins:     []string{"*"},
		MaxMessageBytes:    16 * 1024,
		MaxMessageRunes:    1000,
		ClientBuffer:       64,
		RateLimitPerMinute: 120,
		FallbackLanguage:   "en",
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
// Booleans can only be switched on this way.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.DatabasePath != "" {
		c.DatabasePath = other.DatabasePath
	}
	if other.JWTSecret != "" {
		c.JWTSecret = other.JWTSecret
	}
	if other.JWTIssuer != "" {
		c.JWTIssuer = other.JWTIssuer
	}
	if other.JWTAudience != "" {
		c.JWTAudience = other.JWTAudience
	}
	if other.JWTTTL != 0 {
		c.JWTTTL = other.JWTTTL
	}
	if other.WSAuthRequired {
		c.WSAuthRequired = true
	}
	if len(other.AllowedOrigins) > 0 {
		c.AllowedOrigins = other.AllowedOrigins
	}
	if other.MaxMessageBytes != 0 {
		c.MaxMessageBytes = other.MaxMessageBytes
	}
	if other.MaxMessageRunes != 0 {
		c.MaxMessageRunes = other.MaxMessageRunes
	}
	if other.ClientBuffer != 0 {
		c.ClientBuffer = other.ClientBuffer
	}
	if other.RateLimitPerMinute != 0 {
		c.RateLimitPerMinute = other.RateLimitPerMinute
	}
	if other.FallbackLanguage != "" {
		c.FallbackLanguage = other.FallbackLanguage
	}
	if len(other.CensoredWords) > 0 {
		c.CensoredWords = other.CensoredWords
	}
}
