package internal

import (
	"fmt"
	"time"
)

const (
	StoreBadger   = "badger"
	StorePostgres = "postgres"
	BridgeMemory  = "memory"
	BridgeRedis   = "redis"
)

type Config struct {
	LogLevel string `env:"LOG_LEVEL,default=INFO"`
	Host     string `env:"HOST,default=0.0.0.0"`
	Port     int    `env:"PORT,default=8080"`
	GrpcPort int    `env:"GRPC_PORT,default=9090"`

	DebugPort int `env:"DEBUG_PORT,default=8081"`

	JWTSecret string `env:"JWT_SECRET,required=true"`

	Store          string `env:"STORE,default=badger"`
	BadgerFilepath string `env:"BADGER_FILEPATH,default=./data/badger"`
	PostgresDSN    string `env:"POSTGRES_DSN"`
	PostgresConns  int    `env:"POSTGRES_MAX_CONNS,default=10"`

	Bridge           string `env:"BRIDGE,default=memory"`
	RedisURL         string `env:"REDIS_URL"`
	BridgeBufferSize int    `env:"BRIDGE_BUFFER_SIZE,default=1024"`

	BlugeFilepath string `env:"BLUGE_FILEPATH"`

	CharReplacement string `env:"CHARACTER_REPLACEMENT,default=*"`
	CensoredDir     string `env:"CENSORED_DIR"`

	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=256"`
	FramesPerSecond      float64       `env:"FRAMES_PER_SECOND,default=10"`
	FrameBurst           int           `env:"FRAME_BURST,default=20"`
	MaxFrameSize         int64         `env:"MAX_FRAME_SIZE,default=16384"`
	PongWait             time.Duration `env:"PONG_WAIT,default=60s"`
	SendTimeout          time.Duration `env:"SEND_TIMEOUT,default=2s"`
	SinkTimeout          time.Duration `env:"SINK_TIMEOUT,default=3s"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,default=2s"`
	HeartbeatInterval    time.Duration `env:"HEARTBEAT_INTERVAL,default=15s"`
	LatencyThreshold     time.Duration `env:"LATENCY_THRESHOLD,default=250ms"`
	ShutdownTimeout      time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`
}

// Validate checks the combinations go-env cannot express.
func (c Config) Validate() error {
	switch c.Store {
	case StoreBadger:
	case StorePostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("POSTGRES_DSN is required when STORE=%s", StorePostgres)
		}
	default:
		return fmt.Errorf("STORE must be %q or %q, got %q", StoreBadger, StorePostgres, c.Store)
	}
	switch c.Bridge {
	case BridgeMemory:
	case BridgeRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when BRIDGE=%s", BridgeRedis)
		}
	default:
		return fmt.Errorf("BRIDGE must be %q or %q, got %q", BridgeMemory, BridgeRedis, c.Bridge)
	}
	if c.Store == StoreBadger && c.Bridge == BridgeRedis {
		return fmt.Errorf("BRIDGE=%s needs a shared store, set STORE=%s", BridgeRedis, StorePostgres)
	}
	_, err := c.CharacterRune()
	return err
}

func (c Config) CharacterRune() (rune, error) {
	r := []rune(c.CharReplacement)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			c.CharReplacement,
		)
	}
	return r[0], nil
}
