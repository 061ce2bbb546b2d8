package config

import (
	"log"
	"sync"

	"github.com/spf13/viper"
)

// ChainConfig defines the QL1 network parameters consumed by wallet-facing clients.
type ChainConfig struct {
	ChainID        int64  `mapstructure:"chain_id"`
	RPCURL         string `mapstructure:"rpc_url"`
	CurrencySymbol string `mapstructure:"currency_symbol"`
	ExplorerURL    string `mapstructure:"explorer_url"`
}

// FeesConfig holds the marketplace fee percentages and base costs.
// Two fee models coexist: the legacy listing estimator (marketplace fee +
// royalty) and the canonical commission split (buyer/seller/donation).
type FeesConfig struct {
	MarketplaceFeeRate   float64 `mapstructure:"marketplace_fee_rate"`
	RoyaltyRate          float64 `mapstructure:"royalty_rate"`
	BuyerCommissionRate  string  `mapstructure:"buyer_commission_rate"`
	SellerCommissionRate string  `mapstructure:"seller_commission_rate"`
	DonationRate         string  `mapstructure:"donation_rate"`
	LazyMintFee          float64 `mapstructure:"lazy_mint_fee"`
	ListingFee           float64 `mapstructure:"listing_fee"`
	DeploymentBaseCost   float64 `mapstructure:"deployment_base_cost"`
	DeploymentSetupCost  float64 `mapstructure:"deployment_setup_cost"`
}

// PricingConfig holds rate-feed behaviour and the fallback exchange rate.
type PricingConfig struct {
	DefaultQOMUSDRate float64 `mapstructure:"default_qom_usd_rate"`
	RefreshSeconds    int     `mapstructure:"refresh_seconds"`
	FetchRetries      int     `mapstructure:"fetch_retries"`
}

// Config defines the global configuration structure
type Config struct {
	App struct {
		Port        string `mapstructure:"port"`
		Environment string `mapstructure:"environment"`
	} `mapstructure:"app"`

	Logging struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"logging"`

	Chain   ChainConfig   `mapstructure:"chain"`
	Fees    FeesConfig    `mapstructure:"fees"`
	Pricing PricingConfig `mapstructure:"pricing"`

	Sweeper struct {
		IntervalSeconds int `mapstructure:"interval_seconds"`
	} `mapstructure:"sweeper"`
}

var (
	globalConfig *Config
	configLock   sync.RWMutex
)

// LoadConfig loads configuration from the specified file path and merges it with environment variables
func LoadConfig(path string) (*Config, error) {
	log.Printf("Starting to load configuration from file: %s", path)

	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	viper.SetEnvPrefix("APP")
	viper.BindEnv("app.port", "PORT")
	viper.BindEnv("app.environment", "ENVIRONMENT")
	viper.BindEnv("chain.rpc_url", "QL1_RPC_URL")
	viper.BindEnv("fees.lazy_mint_fee", "LAZY_MINT_FEE")
	viper.BindEnv("fees.listing_fee", "LISTING_FEE")
	viper.BindEnv("pricing.default_qom_usd_rate", "DEFAULT_QOM_USD_RATE")
	viper.BindEnv("pricing.refresh_seconds", "PRICE_REFRESH_SECONDS")
	viper.BindEnv("sweeper.interval_seconds", "SWEEPER_INTERVAL_SECONDS")

	setDefaults()

	var cfg Config

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	if err := viper.Unmarshal(&cfg); err != nil {
		log.Printf("Error unmarshalling configuration: %v", err)
		return nil, err
	}

	log.Printf("Loaded configuration from file: %s", path)
	return &cfg, nil
}

func setDefaults() {
	// QL1 mainnet parameters.
	viper.SetDefault("chain.chain_id", 766)
	viper.SetDefault("chain.currency_symbol", "QOM")

	viper.SetDefault("fees.marketplace_fee_rate", 0.025)
	viper.SetDefault("fees.royalty_rate", 0.10)
	viper.SetDefault("fees.buyer_commission_rate", "0.03")
	viper.SetDefault("fees.seller_commission_rate", "0.03")
	viper.SetDefault("fees.donation_rate", "0.01")
	viper.SetDefault("fees.lazy_mint_fee", 0.01)
	viper.SetDefault("fees.listing_fee", 0.05)
	viper.SetDefault("fees.deployment_base_cost", 0.5)
	viper.SetDefault("fees.deployment_setup_cost", 0.2)

	// The original client shipped two conflicting defaults (1700 and
	// 0.0000000116); the latter is the QOM/USD rate, the former an ETH-era
	// leftover. We keep the QOM rate.
	viper.SetDefault("pricing.default_qom_usd_rate", 0.0000000116)
	viper.SetDefault("pricing.refresh_seconds", 30)
	viper.SetDefault("pricing.fetch_retries", 3)

	viper.SetDefault("sweeper.interval_seconds", 60)
}

// SetGlobalConfig sets the loaded configuration globally
func SetGlobalConfig(cfg *Config) {
	configLock.Lock()
	defer configLock.Unlock()
	globalConfig = cfg
}

// GetGlobalConfig retrieves the globally set configuration
func GetGlobalConfig() *Config {
	configLock.RLock()
	defer configLock.RUnlock()
	if globalConfig == nil {
		log.Println("GetGlobalConfig: Global configuration is nil.")
	}
	return globalConfig
}
