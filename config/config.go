package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/fragtion/github-release-fetcher/internal/logger"
)

func Init() {
	// A .env next to the binary is a convenient place for GITHUB_TOKEN.
	_ = godotenv.Load()

	viper.SetConfigName("config") // config.yaml
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	err := viper.ReadInConfig()
	if err != nil {
		logger.Log.Debug("no config file found; using defaults")
	}

	viper.SetEnvPrefix("GRF")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	_ = viper.BindEnv("github.token", "GRF_GITHUB_TOKEN", "GITHUB_TOKEN")

	viper.SetDefault("github.api_base", "https://api.github.com")
	viper.SetDefault("http.timeout", 60*time.Second)
	viper.SetDefault("transfer.chunk_size", 1<<20)
	viper.SetDefault("output.dir", ".")
	viper.SetDefault("log.level", "info")
}
