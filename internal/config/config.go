package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	Debug          bool     `env:"DEBUG" envDefault:"false"`
	Port           uint16   `env:"PORT" envDefault:"9090"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	// Requests per minute per client IP.
	HttpRateLimit int `env:"HTTP_RATE_LIMIT" envDefault:"120"`

	OwnerID        int64         `env:"ENGINE_OWNER_ID,required"`
	DetectorPeriod time.Duration `env:"DETECTOR_PERIOD" envDefault:"10s"`
	// Longer than the period by a margin that absorbs timer jitter and a
	// skipped tick.
	DetectorWindow      time.Duration `env:"DETECTOR_WINDOW" envDefault:"12s"`
	CacheRefreshPeriod  time.Duration `env:"CACHE_REFRESH_PERIOD" envDefault:"5m"`
	CacheReloadInterval time.Duration `env:"CACHE_RELOAD_MIN_INTERVAL" envDefault:"1s"`
	ChannelTimeout      time.Duration `env:"CHANNEL_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout     time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`

	AudioEnabled  bool `env:"CHANNEL_AUDIO_ENABLED" envDefault:"true"`
	PromptEnabled bool `env:"CHANNEL_PROMPT_ENABLED" envDefault:"true"`
	SystemEnabled bool `env:"CHANNEL_SYSTEM_ENABLED" envDefault:"true"`
	EmailEnabled  bool `env:"CHANNEL_EMAIL_ENABLED" envDefault:"false"`

	AudioPlayerCommand string   `env:"AUDIO_PLAYER_COMMAND" envDefault:"paplay"`
	AudioPlayerArgs    []string `env:"AUDIO_PLAYER_ARGS" envSeparator:" "`
	AudioSoundFile     string   `env:"AUDIO_SOUND_FILE" envDefault:"/usr/share/sounds/freedesktop/stereo/complete.oga"`

	SnoozeRateLimit  uint16 `env:"SNOOZE_RATE_LIMIT_PER_MINUTE" envDefault:"30"`
	DismissRateLimit uint16 `env:"DISMISS_RATE_LIMIT_PER_MINUTE" envDefault:"30"`

	PostgresqlURL  string `env:"POSTGRESQL_URL,required"`
	MigrationsPath string `env:"MIGRATIONS_PATH" envDefault:"file://migrations"`
	RedisURL       string `env:"REDIS_URL,required"`

	RabbitmqURL                        string `env:"RABBITMQ_URL,required"`
	RabbitmqExchange                   string `env:"RABBITMQ_EXCHANGE" envDefault:"reminder_engine"`
	RabbitmqSystemNotificationQueue    string `env:"RABBITMQ_SYSTEM_NOTIFICATION_QUEUE" envDefault:"system_notification"`
	RabbitmqNotificationActivatedQueue string `env:"RABBITMQ_NOTIFICATION_ACTIVATED_QUEUE" envDefault:"notification_activated"`

	AwsRegion                string `env:"AWS_REGION" envDefault:"eu-central-1"`
	AwsAccessKey             string `env:"AWS_ACCESS_KEY"`
	AwsSecretKey             string `env:"AWS_SECRET_KEY"`
	AwsEmailSender           string `env:"AWS_EMAIL_SENDER"`
	AwsEmailRecipient        string `env:"AWS_EMAIL_RECIPIENT"`
	AwsEmailReminderTemplate string `env:"AWS_EMAIL_REMINDER_TEMPLATE" envDefault:"reminder"`

	SentryDsn *url.URL `env:"SENTRY_DSN"`
}

func Load() (*Config, error) {
	config := &Config{}
	if err := env.Parse(config); err != nil {
		return nil, err
	}
	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) validate() error {
	if c.OwnerID <= 0 {
		return fmt.Errorf("ENGINE_OWNER_ID must be positive")
	}
	if c.DetectorWindow < c.DetectorPeriod {
		return fmt.Errorf("DETECTOR_WINDOW (%s) must not be shorter than DETECTOR_PERIOD (%s)",
			c.DetectorWindow, c.DetectorPeriod)
	}
	if c.EmailEnabled {
		if c.AwsAccessKey == "" || c.AwsSecretKey == "" {
			return fmt.Errorf("AWS_ACCESS_KEY and AWS_SECRET_KEY must be set for the email channel")
		}
		if c.AwsEmailSender == "" || c.AwsEmailRecipient == "" {
			return fmt.Errorf("AWS_EMAIL_SENDER and AWS_EMAIL_RECIPIENT must be set for the email channel")
		}
	}
	return nil
}
