package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel   string `yaml:"log-level" env-default:"info"`
	HTTPPort   string `yaml:"http-port" env-default:"9090"`
	SocketPort string `yaml:"socket-port" env-default:"8080"`
	Redis      Redis  `yaml:"redis"`
	Bot        Bot    `yaml:"bot"`
}

type Redis struct {
	Host string `yaml:"host" env-default:"localhost"`
	Port string `yaml:"port" env-default:"6379"`
}

// Bot configures the move decision engine. When api-keys is empty the
// engine plays with its local policies only.
type Bot struct {
	BaseURL        string        `yaml:"base-url" env-default:"https://openrouter.ai/api/v1"`
	Model          string        `yaml:"model" env-default:"openai/gpt-4o-mini"`
	APIKeys        []string      `yaml:"api-keys" env:"BOT_API_KEYS"`
	Timeout        time.Duration `yaml:"timeout" env-default:"5s"`
	MaxAttempts    int           `yaml:"max-attempts" env-default:"3"`
	FailureCeiling int           `yaml:"failure-ceiling" env-default:"3"`
	EasyTactics    float64       `yaml:"easy-tactics" env-default:"0.5"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}

// RemoteEnabled - reports whether the remote delegation tier is configured.
func (that *Bot) RemoteEnabled() bool {
	return len(that.APIKeys) > 0
}
