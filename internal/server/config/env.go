package config

import (
	"errors"
	"io/fs"

	"github.com/dmitrijs2005/accountkeeper/internal/flagx"
	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// parseEnv overlays ACCOUNTS_* environment variables. A dotenv file named by
// -env (or ./.env when present) is loaded first; variables already set in
// the process environment win over the file.
func parseEnv(config *Config) {
	loadDotEnv(flagx.EnvFileFlag())

	if err := envdecode.Decode(config); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		panic(err)
	}
}

func loadDotEnv(path string) {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			panic(err)
		}
		return
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}
}
