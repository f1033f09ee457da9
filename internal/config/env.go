package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Env is the process environment the tool reads.
type Env struct {
	ConfigPath string `env:"HARMONIZE_CONFIG"`
	DataDir    string `env:"HARMONIZE_DATA_DIR" envDefault:"."`
	User       string `env:"USER"`
	Username   string `env:"USERNAME"`
}

// LoadEnv parses the environment after loading an optional .env file.
func LoadEnv() (Env, error) {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return Env{}, fmt.Errorf("load .env file: %w", err)
		}
	}

	var e Env
	if err := env.Parse(&e); err != nil {
		return e, fmt.Errorf("parse env: %w", err)
	}
	return e, nil
}

// Workdir returns the directory configured for the current operator:
// $USER is tried first, then $USERNAME.
func (c Config) Workdir(e Env) (string, bool) {
	for _, who := range []string{e.User, e.Username} {
		who = strings.TrimSpace(who)
		if who == "" {
			continue
		}
		if dir, ok := c.Workdirs[who]; ok && strings.TrimSpace(dir) != "" {
			return dir, true
		}
	}
	return "", false
}
