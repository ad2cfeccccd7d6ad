package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/Nephrolytics-ai/polyglot-upload/pkg/utils"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is prepended to every variable name, e.g. POLYGLOT_UPLOAD_SERVER_URL.
const EnvPrefix = "POLYGLOT_UPLOAD"

const defaultEnvFile = ".env"

type Config struct {
	ServerURL   string        `envconfig:"SERVER_URL" default:"http://127.0.0.1:5000"`
	UploadPath  string        `envconfig:"UPLOAD_PATH" default:"/upload"`
	FieldName   string        `envconfig:"FIELD_NAME" default:"audio"`
	Timeout     time.Duration `envconfig:"TIMEOUT" default:"0s"`
	WatchDir    string        `envconfig:"WATCH_DIR" default:"."`
	SettleDelay time.Duration `envconfig:"SETTLE_DELAY" default:"500ms"`
	LogLevel    string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat   string        `envconfig:"LOG_FORMAT" default:"text"`
	NoColor     bool          `envconfig:"NO_COLOR" default:"false"`
}

// Load reads envFile into the process environment without overriding
// variables that are already set, then fills Config from the environment.
// An empty envFile means ./.env, which may be absent; an explicit file must exist.
func Load(envFile string) (Config, error) {
	envFile = strings.TrimSpace(envFile)
	explicit := envFile != ""
	if !explicit {
		envFile = defaultEnvFile
	}

	if err := godotenv.Load(envFile); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return Config{}, utils.WrapIfNotNil(err, envFile)
		}
	}

	cfg := Config{}
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, utils.WrapIfNotNil(err)
	}
	return cfg, nil
}
