package config

type AppConfig struct {
	LogLevel string `mapstructure:"log_level"`
	LogPath  string `mapstructure:"log_path"`
}

type IndexerConfig struct {
	Endpoint       string `mapstructure:"endpoint"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type OracleConfig struct {
	Endpoint        string   `mapstructure:"endpoint"`
	Username        string   `mapstructure:"username"`
	Password        string   `mapstructure:"password"`
	TimeoutSeconds  int      `mapstructure:"timeout_seconds"`
	CollateralFeeds []string `mapstructure:"collateral_feeds"`
}

type RelayerConfig struct {
	Endpoint            string `mapstructure:"endpoint"`
	APIKey              string `mapstructure:"api_key"`
	OrderManager        string `mapstructure:"order_manager"`
	BatchHandler        string `mapstructure:"batch_handler"`
	GasLimitSettlement  uint64 `mapstructure:"gas_limit_settlement"`
	GasLimitLiquidation uint64 `mapstructure:"gas_limit_liquidation"`
}

type KeeperConfig struct {
	Interval  string `mapstructure:"interval"`
	BatchSize int    `mapstructure:"batch_size"`
	HTTPAddr  string `mapstructure:"http_addr"`
}

type StoreConfig struct {
	Path string `mapstructure:"path"`
}

type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Indexer IndexerConfig `mapstructure:"indexer"`
	Oracle  OracleConfig  `mapstructure:"oracle"`
	Relayer RelayerConfig `mapstructure:"relayer"`
	Keeper  KeeperConfig  `mapstructure:"keeper"`
	Store   StoreConfig   `mapstructure:"store"`
}
