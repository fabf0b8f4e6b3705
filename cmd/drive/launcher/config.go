package launcher

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"gopkg.in/urfave/cli.v1"

	"github.com/rony4d/go-platform-drive/integration"
	"github.com/rony4d/go-platform-drive/platform"
)

// Config aggregates every subsystem's configuration the launcher needs.
type Config struct {
	Node     NodeConfig
	Logging  LoggingConfig
	Store    integration.Preset
	Platform PlatformConfig
}

type NodeConfig struct {
	DataDir string
	Name    string
}

type LoggingConfig struct {
	// Verbosity is a logrus level name.
	Verbosity string
	// Format is text or json.
	Format    string
	SentryDSN string
}

// PlatformConfig selects the network rules. Zero overrides keep the
// network's values.
type PlatformConfig struct {
	Network         string
	GenesisVersion  uint32
	EpochLengthMs   uint64
	FakeNetAccounts int
	FakeNetBalance  uint64
}

// Rules builds the network rules with the overrides applied.
func (c PlatformConfig) Rules() (platform.Rules, error) {
	var rules platform.Rules
	switch c.Network {
	case "main":
		rules = platform.MainNetRules()
	case "test":
		rules = platform.TestNetRules()
	case "fake":
		rules = platform.FakeNetRules()
	default:
		return rules, errors.Errorf("unknown network %q (valid: main, test, fake)", c.Network)
	}
	if c.GenesisVersion != 0 {
		if !rules.Protocol.Supports(c.GenesisVersion) {
			return rules, errors.Errorf("genesis protocol version %d is not supported", c.GenesisVersion)
		}
		rules.Protocol.GenesisVersion = c.GenesisVersion
	}
	if c.EpochLengthMs != 0 {
		rules.Epochs.EpochLength = time.Duration(c.EpochLengthMs) * time.Millisecond
	}
	return rules, nil
}

// MakeAllConfigs merges defaults, the optional config file, then CLI flag
// overrides.
func MakeAllConfigs(ctx *cli.Context) (Config, error) {
	cfg := DefaultConfig()

	if file := ctx.GlobalString("config"); file != "" {
		if err := loadConfigFile(file, &cfg); err != nil {
			return cfg, err
		}
	}
	if err := applyCLIOverrides(ctx, &cfg); err != nil {
		return cfg, err
	}
	cfg.Node.DataDir = resolvePath(cfg.Node.DataDir)
	return cfg, nil
}

func loadConfigFile(path string, cfg *Config) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return errors.Wrapf(err, "load config file %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return errors.Errorf("config file %s: unknown field %s", path, undecoded[0])
	}
	return nil
}

func applyCLIOverrides(ctx *cli.Context, cfg *Config) error {
	if ctx.GlobalIsSet("datadir") {
		cfg.Node.DataDir = ctx.GlobalString("datadir")
	}
	if ctx.GlobalIsSet("identity") {
		cfg.Node.Name = ctx.GlobalString("identity")
	}

	if ctx.GlobalIsSet("verbosity") {
		cfg.Logging.Verbosity = ctx.GlobalString("verbosity")
	}
	if ctx.GlobalIsSet("log.format") {
		cfg.Logging.Format = ctx.GlobalString("log.format")
	}
	if ctx.GlobalIsSet("log.sentry") {
		cfg.Logging.SentryDSN = ctx.GlobalString("log.sentry")
	}

	if ctx.GlobalIsSet("preset") {
		preset, err := integration.GetPresetByName(ctx.GlobalString("preset"))
		if err != nil {
			return err
		}
		// a preset is a whole profile, only explicit store flags refine it
		cfg.Store = preset
	}
	if ctx.GlobalIsSet("db.backend") {
		cfg.Store.Backend = ctx.GlobalString("db.backend")
	}
	if ctx.GlobalIsSet("cache") {
		cfg.Store.CacheMB = ctx.GlobalInt("cache")
	}
	if ctx.GlobalIsSet("cache.contracts") {
		cfg.Store.ContractCacheSize = ctx.GlobalInt("cache.contracts")
	}

	if ctx.GlobalIsSet("network") {
		cfg.Platform.Network = ctx.GlobalString("network")
	}
	if ctx.GlobalIsSet("fakenet.accounts") {
		cfg.Platform.FakeNetAccounts = ctx.GlobalInt("fakenet.accounts")
	}
	if ctx.GlobalIsSet("fakenet.balance") {
		cfg.Platform.FakeNetBalance = ctx.GlobalUint64("fakenet.balance")
	}
	if ctx.GlobalIsSet("genesis.version") {
		cfg.Platform.GenesisVersion = uint32(ctx.GlobalUint("genesis.version"))
	}
	if ctx.GlobalIsSet("epoch.length") {
		cfg.Platform.EpochLengthMs = uint64(ctx.GlobalDuration("epoch.length") / time.Millisecond)
	}
	return nil
}

func dumpConfig(ctx *cli.Context) error {
	cfg, err := MakeAllConfigs(ctx)
	if err != nil {
		return err
	}
	return errors.Wrap(toml.NewEncoder(ctx.App.Writer).Encode(&cfg), "encode config")
}

func resolvePath(p string) string {
	if strings.HasPrefix(p, "~") {
		return filepath.Join(GuessHomeDir(), strings.TrimPrefix(p, "~"))
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(GuessWorkDir(), p)
}

func GuessWorkDir() string {
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

func GuessHomeDir() string {
	if dir, err := os.UserHomeDir(); err == nil {
		return dir
	}
	return "."
}
