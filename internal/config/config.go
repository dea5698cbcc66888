package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel          string `yaml:"log-level" env-default:"info"`
	HTTPPort          string `yaml:"http-port" env-default:"9090"`
	SocketPort        string `yaml:"socket-port" env-default:"8080"`
	Redis             Redis  `yaml:"redis"`
	Game              Game   `yaml:"game"`
	SQLiteStoragePath string `yaml:"sqlite-storage-path" env-default:"gomoku.db"`
}

type Redis struct {
	Host string `yaml:"host" env-default:"localhost"`
	Port string `yaml:"port" env-default:"6379"`
}

type Game struct {
	MoveBudgetSeconds       int `yaml:"move-budget-seconds" env-default:"10"`
	LatencyAllowanceSeconds int `yaml:"latency-allowance-seconds" env-default:"2"`
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

// TurnTimeout - the full countdown for one turn: the per-move budget plus the
// network latency allowance.
func (that *Game) TurnTimeout() time.Duration {
	return time.Duration(that.MoveBudgetSeconds+that.LatencyAllowanceSeconds) * time.Second
}
