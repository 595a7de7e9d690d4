package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Alert    AlertConfig
	OTP      OTPConfig
	Secrets  Secrets `mapstructure:"-"`
}

type ServerConfig struct {
	Port           int `mapstructure:"port"`
	TimeoutSeconds int `mapstructure:"timeoutSeconds"`
	RateLimitRPS   int `mapstructure:"rate_limit_rps"`
	RateLimitBurst int `mapstructure:"rate_limit_burst"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	URL          string `mapstructure:"url"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpiryHours int    `mapstructure:"expiry_hours"`
}

// AlertConfig holds the emergency fan-out knobs. The defaults mirror
// the limits the mail provider tolerates; change with care.
type AlertConfig struct {
	CooldownMinutes int `mapstructure:"cooldown_minutes"`
	MaxPerHour      int `mapstructure:"max_per_hour"`
	HistoryDepth    int `mapstructure:"history_depth"`
	MaxRecipients   int `mapstructure:"max_recipients"`
	MaxWorkers      int `mapstructure:"max_workers"`
	SendDelayMS     int `mapstructure:"send_delay_ms"`
	RetentionDays   int `mapstructure:"retention_days"`
}

type OTPConfig struct {
	ExpiryMinutes int `mapstructure:"expiry_minutes"`
}

// Secrets are credentials that never live in config files; they are
// read from the environment only.
type Secrets struct {
	SMTPHost      string `envconfig:"SMTP_HOST" default:"smtp.gmail.com"`
	SMTPPort      int    `envconfig:"SMTP_PORT" default:"587"`
	SMTPUser      string `envconfig:"SMTP_USER"`
	SMTPPassword  string `envconfig:"SMTP_PASSWORD"`
	TwilioSID     string `envconfig:"TWILIO_ACCOUNT_SID"`
	TwilioToken   string `envconfig:"TWILIO_AUTH_TOKEN"`
	TwilioFrom    string `envconfig:"TWILIO_PHONE_NUMBER"`
	AdminEmail    string `envconfig:"ADMIN_EMAIL"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD"`
}

func (c *AlertConfig) Cooldown() time.Duration {
	return time.Duration(c.CooldownMinutes) * time.Minute
}

func (c *AlertConfig) SendDelay() time.Duration {
	return time.Duration(c.SendDelayMS) * time.Millisecond
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := envconfig.Process("", &config.Secrets); err != nil {
		return nil, fmt.Errorf("failed to read secrets from environment: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.timeoutSeconds", 120)
	viper.SetDefault("server.rate_limit_rps", 20)
	viper.SetDefault("server.rate_limit_burst", 40)
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("redis.url", "redis://localhost:6379/0")
	viper.SetDefault("jwt.expiry_hours", 24)
	viper.SetDefault("alert.cooldown_minutes", 30)
	viper.SetDefault("alert.max_per_hour", 3)
	viper.SetDefault("alert.history_depth", 10)
	viper.SetDefault("alert.max_recipients", 50)
	viper.SetDefault("alert.max_workers", 5)
	viper.SetDefault("alert.send_delay_ms", 500)
	viper.SetDefault("alert.retention_days", 90)
	viper.SetDefault("otp.expiry_minutes", 5)
}
