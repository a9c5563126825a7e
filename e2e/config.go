package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Two nodes sharing one store and one bridge, e.g. http://localhost:8080.
	NodeAURL string `envconfig:"NODE_A_URL"`
	NodeBURL string `envconfig:"NODE_B_URL"`
	// NODE_A_GRPC is the health endpoint of node A, e.g. localhost:9090.
	NodeAGrpc string `envconfig:"NODE_A_GRPC"`
	JWTSecret string `envconfig:"JWT_SECRET"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}

func (c Config) Enabled() bool {
	return c.NodeAURL != "" && c.NodeBURL != "" && c.JWTSecret != ""
}
