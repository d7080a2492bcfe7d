package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper). Chain material is
// injected here once at startup; nothing reads process env at call time.
type Config struct {
	Env                 string
	Port                string
	DatabaseURL         string
	RedisURL            string
	FrontendURLEndsWith string

	// Chain settings. When CreditContract is empty the app runs with the
	// deterministic mock gateway instead of a live RPC connection.
	RPCURL             string
	PrivateKey         string
	CreditContract     string
	AnchorContract     string
	ChainID            int64
	DefaultMintAddress string

	// ChainCallTimeoutSeconds bounds every gateway call (RPC + confirmation wait).
	ChainCallTimeoutSeconds int
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	port := viper.GetString("PORT")
	if port == "" {
		port = "8080"
	}
	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	dbURL := viper.GetString("DATABASE_URL")
	if env == "test" {
		dbURL = viper.GetString("DATABASE_URL_TEST")
	}

	chainID := viper.GetInt64("CHAIN_ID")
	if chainID == 0 {
		chainID = 31337 // local anvil/hardhat default
	}

	timeout := viper.GetInt("CHAIN_CALL_TIMEOUT_SECONDS")
	if timeout == 0 {
		timeout = 60
	}

	return &Config{
		Env:                     env,
		Port:                    port,
		DatabaseURL:             dbURL,
		RedisURL:                viper.GetString("REDIS_URL"),
		FrontendURLEndsWith:     viper.GetString("FRONTEND_URL_ENDS_WITH"),
		RPCURL:                  rpcURL(viper.GetString("RPC_URL")),
		PrivateKey:              viper.GetString("PRIVATE_KEY"),
		CreditContract:          viper.GetString("CREDIT_CONTRACT_ADDRESS"),
		AnchorContract:          viper.GetString("ANCHOR_CONTRACT_ADDRESS"),
		ChainID:                 chainID,
		DefaultMintAddress:      viper.GetString("DEFAULT_MINT_ADDRESS"),
		ChainCallTimeoutSeconds: timeout,
	}, nil
}

func rpcURL(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "http://127.0.0.1:8545"
	}
	return s
}
