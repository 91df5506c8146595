package internal

import (
	"fmt"
	"time"
)

type Config struct {
	Host                 string        `env:"HOST,default=localhost"`
	Port                 int           `env:"PORT,default=8080"`
	BadgerFilepath       string        `env:"BADGER_FILEPATH,required=true"`
	JWTSecret            string        `env:"JWT_SECRET,required=true"`
	AuthTokenDuration    time.Duration `env:"AUTH_TOKEN_DURATION,default=24h"`
	HistoryLimit         int           `env:"HISTORY_LIMIT,default=50"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=256"`
	CharReplacement      string        `env:"CHARACTER_REPLACEMENT,default=*"`
	TypingTTL            time.Duration `env:"TYPING_TTL,default=5s"`
	TypingSweepInterval  time.Duration `env:"TYPING_SWEEP_INTERVAL,default=1s"`
	HeartbeatInterval    time.Duration `env:"HEARTBEAT_INTERVAL,default=30s"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,default=5s"`
	LogLevel             string        `env:"LOG_LEVEL,default=INFO"`
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
