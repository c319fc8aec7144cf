package domain

import (
	"fmt"
	"regexp"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	MainNetwork = "mainnet"
	TestNetwork = "testnet"

	DefaultDbUri          = "vault.db"
	DefaultRebaseCron     = "0 0 * * * *"
	DefaultMetricsAddress = ":9090"
)

var (
	ErrorInvalidNetwork    = fmt.Errorf("network must be equal to 'mainnet' or 'testnet' only")
	ErrorInvalidBuffer     = fmt.Errorf("buffer_bps must be between 0 and 10000")
	ErrorInvalidFeeConfig  = fmt.Errorf("invalid fees configuration")
	ErrorInvalidStrategies = fmt.Errorf("invalid strategies configuration")
)

var (
	TrailingSlashRE = regexp.MustCompile("/+$")
)

// FeeConfig is one entry of the 'fees' configuration list.
type FeeConfig struct {
	Recipient   string `mapstructure:"recipient"`
	BasisPoints uint32 `mapstructure:"basis_points"`
	Kind        string `mapstructure:"kind"`
}

// StrategyConfig is one entry of the 'strategies' configuration list. Amounts
// are decimal strings so they are not limited to 64 bits.
type StrategyConfig struct {
	ID           string `mapstructure:"id"`
	MaxDeposits  string `mapstructure:"max_deposits"`
	MinDeposits  string `mapstructure:"min_deposits"`
	FeeBps       uint32 `mapstructure:"fee_bps"`
	FeeRecipient string `mapstructure:"fee_recipient"`
}

var (
	dbUri   string
	network string

	bufferBasisPoints uint32
	fees              FeeTable
	strategies        []StrategyConfig

	rebaseCron     string
	metricsAddress string

	logLevel string
	logFile  string
)

func ReadConfig(filePath string) error {
	viper.SetConfigFile(filePath)

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Warnf("⚠️ Failed reading config file: %v", err.Error())
	}

	return initializeVariables()
}

// This method processes the configuration parameters and keeps the processed values
// in some variables for later accesses rapidly.
func initializeVariables() error {
	viper.SetDefault("service_db_uri", DefaultDbUri)
	viper.SetDefault("network", MainNetwork)
	viper.SetDefault("rebase_cron", DefaultRebaseCron)
	viper.SetDefault("metrics_address", DefaultMetricsAddress)
	viper.SetDefault("log_level", "info")

	// Database stuff
	dbUri = TrailingSlashRE.ReplaceAllString(strings.TrimSpace(viper.GetString("service_db_uri")), "")

	// Network stuff
	network = strings.TrimSpace(strings.ToLower(viper.GetString("network")))
	if network != MainNetwork && network != TestNetwork {
		return ErrorInvalidNetwork
	}

	//---------------------------------------------------------------
	// liquidity buffer
	bps := viper.GetInt("buffer_bps")
	if bps < 0 || bps > BasisPointsDenominator {
		return ErrorInvalidBuffer
	}
	bufferBasisPoints = uint32(bps)

	//---------------------------------------------------------------
	// fee table
	var feeConfigs []FeeConfig
	if err := viper.UnmarshalKey("fees", &feeConfigs); err != nil {
		return fmt.Errorf("%w - %v", ErrorInvalidFeeConfig, err)
	}
	fees = make(FeeTable, 0, len(feeConfigs))
	for _, fc := range feeConfigs {
		recipient, err := ParseAccount(fc.Recipient)
		if err != nil {
			return fmt.Errorf("%w - %v", ErrorInvalidFeeConfig, err)
		}
		kind := RecipientKind(strings.ToLower(strings.TrimSpace(fc.Kind)))
		if kind == "" {
			kind = RecipientPlain
		}
		fees = append(fees, FeeEntry{Recipient: recipient, BasisPoints: fc.BasisPoints, Kind: kind})
	}
	if err := fees.Validate(); err != nil {
		return fmt.Errorf("%w - %v", ErrorInvalidFeeConfig, err)
	}

	//---------------------------------------------------------------
	// strategies
	strategies = nil
	if err := viper.UnmarshalKey("strategies", &strategies); err != nil {
		return fmt.Errorf("%w - %v", ErrorInvalidStrategies, err)
	}
	seen := make(map[string]bool, len(strategies))
	for _, sc := range strategies {
		if sc.ID == "" || seen[sc.ID] {
			return fmt.Errorf("%w - missing or repeated id %q", ErrorInvalidStrategies, sc.ID)
		}
		seen[sc.ID] = true
	}

	rebaseCron = strings.TrimSpace(viper.GetString("rebase_cron"))
	metricsAddress = strings.TrimSpace(viper.GetString("metrics_address"))

	logLevel = strings.TrimSpace(viper.GetString("log_level"))
	logFile = strings.TrimSpace(viper.GetString("log_file"))

	return nil
}

//-------------------------------------------------------------------
// Normal configuration values

func GetDbUri() string {
	return dbUri
}

func GetNetwork() string {
	return network
}

func GetBufferBasisPoints() uint32 {
	return bufferBasisPoints
}

func GetFees() FeeTable {
	return fees.Clone()
}

func GetStrategies() []StrategyConfig {
	return append([]StrategyConfig(nil), strategies...)
}

func GetRebaseCron() string {
	return rebaseCron
}

func GetMetricsAddress() string {
	return metricsAddress
}

func GetLogLevel() string {
	return logLevel
}

func GetLogFile() string {
	return logFile
}

// -------------------------------------------------------------------
// Evaluating values

func IsTestNet() bool {
	return network == TestNetwork
}
