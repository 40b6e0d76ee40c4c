package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel   string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort   string `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort string `yaml:"socket-port" env:"SOCKET_PORT" env-default:"9091"`
	Redis      Redis  `yaml:"redis"`
	Room       Room   `yaml:"room"`
	Game       Game   `yaml:"game"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

type Room struct {
	// TTL bounds how long an unused join token stays valid.
	TTL time.Duration `yaml:"ttl" env:"ROOM_TTL" env-default:"1h"`
}

// Game holds the terminal client settings.
type Game struct {
	ComputerDelay time.Duration `yaml:"computer-delay" env:"GAME_COMPUTER_DELAY" env-default:"600ms"`
	RelayURL      string        `yaml:"relay-url" env:"GAME_RELAY_URL" env-default:"http://localhost:9090"`
	SocketURL     string        `yaml:"socket-url" env:"GAME_SOCKET_URL" env-default:"ws://localhost:9091"`
}

// MustLoad - loads path when it exists, otherwise the environment alone.
func MustLoad(path string) *Config {
	config := &Config{}

	_, err := os.Stat(path)
	switch {
	case err == nil:
		err = cleanenv.ReadConfig(path, config)
	case errors.Is(err, fs.ErrNotExist):
		err = cleanenv.ReadEnv(config)
	}

	if err != nil {
		panic(fmt.Errorf("unable to load config: %w", err))
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
