package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"zoundz/internal/provider/graphql"
	"zoundz/internal/validation/neynar"
)

const EnvPrefix = "ZOUNDZ"

const (
	ProviderMock     = "mock"
	ProviderGraphQL  = "graphql"
	ProviderPostgres = "postgres"
)

var validate = validator.New()

type Config struct {
	HTTPListenAddr    string        `validate:"required"`
	MetricsAddr       string        `validate:"required"`
	LogDebug          bool
	PublicURL         string        `validate:"required,url"`
	DefaultImage      string        `validate:"required,url"`
	NeynarValidateURL string        `validate:"required,url"`
	NeynarAPIKey      string
	ProviderKind      string        `validate:"oneof=mock graphql postgres"`
	GraphGatewayURL   string        `validate:"required,url"`
	GraphAPIKey       string        `validate:"required_if=ProviderKind graphql"`
	GraphSubgraphId   string        `validate:"required"`
	PostgresConn      string        `validate:"required_if=ProviderKind postgres"`
	AuctionHouse      string        `validate:"eth_addr"`
	ChainId           int64         `validate:"gt=0"`
	UpstreamTimeout   time.Duration `validate:"gt=0"`
	SyncPageSize      int64         `validate:"gt=0,lte=1000"`
}

// Flag describes a configuration flag.
type Flag struct {
	Name        string
	DefValue    interface{}
	Description string
}

var Flags = []Flag{
	{Name: "http.listen.addr", DefValue: ":8080", Description: "HTTP listen address"},
	{Name: "metrics.addr", DefValue: ":9090", Description: "Prometheus endpoint"},
	{Name: "log.debug", DefValue: false, Description: "Enable debug level logs"},
	{Name: "public.url", DefValue: "http://localhost:8080", Description: "Public base URL used in frame buttons"},
	{Name: "frame.default.image", DefValue: "https://picsum.photos/800/400", Description: "Image for frames without an auction cover"},
	{Name: "neynar.validate.url", DefValue: neynar.DefaultURL, Description: "Frame validation endpoint"},
	{Name: "neynar.api.key", DefValue: "", Description: "Neynar API key"},
	{Name: "provider.kind", DefValue: ProviderMock, Description: "Auction data provider: mock, graphql or postgres"},
	{Name: "graph.gateway.url", DefValue: graphql.DefaultGatewayURL, Description: "The Graph gateway URL"},
	{Name: "graph.api.key", DefValue: "", Description: "The Graph API key"},
	{Name: "graph.subgraph.id", DefValue: graphql.DefaultSubgraphId, Description: "Auction subgraph id"},
	{Name: "postgres.conn", DefValue: "", Description: "Postgres connection string for the auction mirror"},
	{Name: "contract.auction.house", DefValue: "0x0000000000000000000000000000000000000000", Description: "AuctionHouse contract address"},
	{Name: "chain.id", DefValue: int64(8453), Description: "Chain id bids are placed on"},
	{Name: "upstream.timeout", DefValue: 10 * time.Second, Description: "Timeout for validation, subgraph and proxy calls"},
	{Name: "sync.page.size", DefValue: int64(500), Description: "Auctions fetched per subgraph page by the sync command"},
}

// LoadDotEnv reads .env files into the process environment. A missing file
// is not an error.
func LoadDotEnv(filenames ...string) error {
	err := godotenv.Load(filenames...)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("config.LoadDotEnv: %w", err)
	}
	return nil
}

// ConfigureCLI configures a Viper environment with flags and envs. Flags are
// persistent so subcommands share them.
func ConfigureCLI(v *viper.Viper, envPrefix string, flags []Flag, rootCmd *cobra.Command) error {
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for _, flag := range flags {
		switch defval := flag.DefValue.(type) {
		case string:
			rootCmd.PersistentFlags().String(flag.Name, defval, flag.Description)
		case bool:
			rootCmd.PersistentFlags().Bool(flag.Name, defval, flag.Description)
		case int64:
			rootCmd.PersistentFlags().Int64(flag.Name, defval, flag.Description)
		case time.Duration:
			rootCmd.PersistentFlags().Duration(flag.Name, defval, flag.Description)
		default:
			return fmt.Errorf("unknown flag type %T for %s", defval, flag.Name)
		}
		v.SetDefault(flag.Name, flag.DefValue)
		if err := v.BindPFlag(flag.Name, rootCmd.PersistentFlags().Lookup(flag.Name)); err != nil {
			return fmt.Errorf("binding flag %s: %w", flag.Name, err)
		}
	}
	return nil
}

func Load(v *viper.Viper) (Config, error) {
	const op = "config.Load"

	cfg := Config{
		HTTPListenAddr:    v.GetString("http.listen.addr"),
		MetricsAddr:       v.GetString("metrics.addr"),
		LogDebug:          v.GetBool("log.debug"),
		PublicURL:         strings.TrimRight(v.GetString("public.url"), "/"),
		DefaultImage:      v.GetString("frame.default.image"),
		NeynarValidateURL: v.GetString("neynar.validate.url"),
		NeynarAPIKey:      v.GetString("neynar.api.key"),
		ProviderKind:      v.GetString("provider.kind"),
		GraphGatewayURL:   v.GetString("graph.gateway.url"),
		GraphAPIKey:       v.GetString("graph.api.key"),
		GraphSubgraphId:   v.GetString("graph.subgraph.id"),
		PostgresConn:      v.GetString("postgres.conn"),
		AuctionHouse:      v.GetString("contract.auction.house"),
		ChainId:           v.GetInt64("chain.id"),
		UpstreamTimeout:   v.GetDuration("upstream.timeout"),
		SyncPageSize:      v.GetInt64("sync.page.size"),
	}

	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("%s: %w", op, err)
	}
	return cfg, nil
}

// ValidateSync checks the settings the mirror sync needs on top of Load.
func ValidateSync(cfg Config) error {
	const op = "config.ValidateSync"

	if cfg.PostgresConn == "" {
		return fmt.Errorf("%s: postgres.conn is required", op)
	}
	if cfg.GraphAPIKey == "" {
		return fmt.Errorf("%s: graph.api.key is required", op)
	}
	return nil
}
