package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Address         string
		DebugAddress    string
		ReadTimeout     time.Duration
		WriteTimeout    time.Duration
		ShutdownTimeout time.Duration
	}

	StorageConfig struct {
		Engine    string // memory | file | sql | redis
		Dir       string // file engine
		Driver    string // sql engine: postgres | sqlite
		DSN       string // sql engine
		RedisAddr string
		RedisDB   int
	}

	Config struct {
		Env             string
		Build           string
		Debug           bool
		TestMode        bool
		AppName         string
		SecretKey       string
		FrontendBaseURL string

		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
		PasswordResetTimeoutDelta time.Duration

		MaxFileSize int64

		RollbarToken     string
		SendgridKey      string
		DefaultFromEmail string

		Server  ServerConfig
		Storage StorageConfig
	}
)

// NewConfig reads the configuration from the environment (prefixed with ENV) and the optional
// `config/.env.<env>` file found in the working directory.
func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("build", "develop")
	conf.SetDefault("appName", "Wazazi")
	conf.SetDefault("secretKey", "poq5-wer)enb$+57=dz&uoxh2(h!x)#*c2(#yg4h^$cegm2emy")
	conf.SetDefault("frontendBaseURL", "http://localhost:4200")
	conf.SetDefault("jwtExpirationDelta", 7*24*time.Hour)
	conf.SetDefault("jwtRefreshExpirationDelta", 4*time.Hour)
	conf.SetDefault("passwordResetTimeoutDelta", 3*24*time.Hour)
	conf.SetDefault("maxFileSize", int64(10<<20))
	conf.SetDefault("rollbarToken", "")
	conf.SetDefault("sendgridKey", "")
	conf.SetDefault("defaultFromEmail", "noreply@localhost")
	conf.SetDefault("server_address", ":8000")
	conf.SetDefault("server_debugAddress", ":4000")
	conf.SetDefault("server_readTimeout", 5*time.Second)
	conf.SetDefault("server_writeTimeout", 10*time.Second)
	conf.SetDefault("server_shutdownTimeout", 5*time.Second)
	conf.SetDefault("storage_engine", "file")
	conf.SetDefault("storage_dir", "data")
	conf.SetDefault("storage_driver", "sqlite")
	conf.SetDefault("storage_dsn", "file:wazazi.db?_pragma=busy_timeout(5000)")
	conf.SetDefault("storage_redisAddr", "localhost:6379")
	conf.SetDefault("storage_redisDB", 0)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
		conf.SetDefault("storage_engine", "memory")
	}
	conf.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	if wd, err := os.Getwd(); err == nil {
		dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
		if _, err := os.Stat(dotEnvPath); err == nil {
			if err := godotenv.Load(dotEnvPath); err != nil {
				log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
			}
		} else if !os.IsNotExist(err) {
			log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
		}
	}
	conf.AutomaticEnv()

	return &Config{
		Env:                       env,
		Build:                     conf.GetString("build"),
		Debug:                     conf.GetBool("debug"),
		TestMode:                  conf.GetBool("testMode"),
		AppName:                   conf.GetString("appName"),
		SecretKey:                 conf.GetString("secretKey"),
		FrontendBaseURL:           conf.GetString("frontendBaseURL"),
		JWTExpirationDelta:        conf.GetDuration("jwtExpirationDelta"),
		JWTRefreshExpirationDelta: conf.GetDuration("jwtRefreshExpirationDelta"),
		PasswordResetTimeoutDelta: conf.GetDuration("passwordResetTimeoutDelta"),
		MaxFileSize:               conf.GetInt64("maxFileSize"),
		RollbarToken:              conf.GetString("rollbarToken"),
		SendgridKey:               conf.GetString("sendgridKey"),
		DefaultFromEmail:          conf.GetString("defaultFromEmail"),
		Server: ServerConfig{
			Address:         conf.GetString("server_address"),
			DebugAddress:    conf.GetString("server_debugAddress"),
			ReadTimeout:     conf.GetDuration("server_readTimeout"),
			WriteTimeout:    conf.GetDuration("server_writeTimeout"),
			ShutdownTimeout: conf.GetDuration("server_shutdownTimeout"),
		},
		Storage: StorageConfig{
			Engine:    conf.GetString("storage_engine"),
			Dir:       conf.GetString("storage_dir"),
			Driver:    conf.GetString("storage_driver"),
			DSN:       conf.GetString("storage_dsn"),
			RedisAddr: conf.GetString("storage_redisAddr"),
			RedisDB:   conf.GetInt("storage_redisDB"),
		},
	}
}
