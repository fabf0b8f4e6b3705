package launcher

import (
	"bytes"
	"io/ioutil"
	"path/filepath"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/require"
	"gopkg.in/urfave/cli.v1"

	"github.com/rony4d/go-platform-drive/flags"
	"github.com/rony4d/go-platform-drive/integration"
)

// runConfigFromArgs runs MakeAllConfigs with a synthetic CLI context.
func runConfigFromArgs(t *testing.T, args []string) (Config, error) {
	t.Helper()

	app := flags.NewApp("", "test")
	app.HideHelp = true
	app.HideVersion = true

	var (
		got    Config
		gotErr error
	)
	app.Action = func(c *cli.Context) error {
		got, gotErr = MakeAllConfigs(c)
		return nil
	}
	require.NoError(t, app.Run(append([]string{"drive"}, args...)))
	return got, gotErr
}

func writeFile(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, ioutil.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestMakeAllConfigs_flagOverrides(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "node-data")

	tests := []struct {
		name string
		args []string
		want func(t *testing.T, cfg Config)
	}{
		{
			name: "defaults",
			args: nil,
			want: func(t *testing.T, cfg Config) {
				require.Equal(t, filepath.Join(GuessHomeDir(), ".drive"), cfg.Node.DataDir)
				require.Equal(t, integration.FullPreset(), cfg.Store)
				require.Equal(t, "info", cfg.Logging.Verbosity)
				require.Equal(t, "fake", cfg.Platform.Network)
			},
		},
		{
			name: "datadir and identity",
			args: []string{"--datadir", dataDir, "--identity", "drive-1"},
			want: func(t *testing.T, cfg Config) {
				require.Equal(t, dataDir, cfg.Node.DataDir)
				require.Equal(t, "drive-1", cfg.Node.Name)
			},
		},
		{
			name: "relative datadir",
			args: []string{"--datadir", "state"},
			want: func(t *testing.T, cfg Config) {
				require.Equal(t, filepath.Join(GuessWorkDir(), "state"), cfg.Node.DataDir)
			},
		},
		{
			name: "logging",
			args: []string{"--verbosity", "debug", "--log.format", "json", "--log.sentry", "https://key@sentry.example.com/1"},
			want: func(t *testing.T, cfg Config) {
				require.Equal(t, LoggingConfig{
					Verbosity: "debug",
					Format:    "json",
					SentryDSN: "https://key@sentry.example.com/1",
				}, cfg.Logging)
			},
		},
		{
			name: "preset then explicit store flags",
			args: []string{"--preset", "archive", "--cache", "300", "--cache.contracts", "9"},
			want: func(t *testing.T, cfg Config) {
				want := integration.ArchivePreset()
				want.CacheMB = 300
				want.ContractCacheSize = 9
				require.Equal(t, want, cfg.Store)
			},
		},
		{
			name: "light preset drops leveldb tuning",
			args: []string{"--preset", "light"},
			want: func(t *testing.T, cfg Config) {
				require.Equal(t, integration.LightPreset(), cfg.Store)
				require.Zero(t, cfg.Store.CacheMB)
				require.Zero(t, cfg.Store.Handles)
			},
		},
		{
			name: "backend override",
			args: []string{"--db.backend", "memory"},
			want: func(t *testing.T, cfg Config) {
				require.Equal(t, integration.MemoryBackend, cfg.Store.Backend)
				require.Equal(t, "full", cfg.Store.Name)
			},
		},
		{
			name: "network",
			args: []string{"--network", "test", "--genesis.version", "2", "--epoch.length", "90s", "--fakenet.accounts", "5"},
			want: func(t *testing.T, cfg Config) {
				require.Equal(t, PlatformConfig{
					Network:         "test",
					GenesisVersion:  2,
					EpochLengthMs:   90_000,
					FakeNetAccounts: 5,
					FakeNetBalance:  DefaultConfig().Platform.FakeNetBalance,
				}, cfg.Platform)
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg, err := runConfigFromArgs(t, test.args)
			require.NoError(t, err)
			test.want(t, cfg)
		})
	}

	t.Run("unknown preset", func(t *testing.T) {
		_, err := runConfigFromArgs(t, []string{"--preset", "huge"})
		require.Error(t, err)
	})
}

func TestMakeAllConfigs_configFile(t *testing.T) {
	file := writeFile(t, "drive.toml", `
[Node]
Name = "from-file"

[Logging]
Verbosity = "warn"

[Store]
Backend = "memory"
ContractCacheSize = 33

[Platform]
Network = "main"
`)

	cfg, err := runConfigFromArgs(t, []string{"--config", file, "--identity", "from-flag"})
	require.NoError(t, err)
	require.Equal(t, "from-flag", cfg.Node.Name)
	require.Equal(t, "warn", cfg.Logging.Verbosity)
	require.Equal(t, integration.MemoryBackend, cfg.Store.Backend)
	require.Equal(t, 33, cfg.Store.ContractCacheSize)
	require.Equal(t, integration.FullPreset().CacheMB, cfg.Store.CacheMB)
	require.Equal(t, "main", cfg.Platform.Network)

	t.Run("preset replaces file store", func(t *testing.T) {
		cfg, err := runConfigFromArgs(t, []string{"--config", file, "--preset", "archive", "--cache.contracts", "5"})
		require.NoError(t, err)
		want := integration.ArchivePreset()
		want.ContractCacheSize = 5
		require.Equal(t, want, cfg.Store)
		require.Equal(t, "warn", cfg.Logging.Verbosity)
	})

	t.Run("unknown field", func(t *testing.T) {
		file := writeFile(t, "bad.toml", "[Node]\nColour = \"red\"\n")
		_, err := runConfigFromArgs(t, []string{"--config", file})
		require.Error(t, err)
		require.Contains(t, err.Error(), "Colour")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := runConfigFromArgs(t, []string{"--config", filepath.Join(t.TempDir(), "none.toml")})
		require.Error(t, err)
	})
}

func TestDumpConfig(t *testing.T) {
	dataDir := t.TempDir()
	args := []string{"drive", "--datadir", dataDir, "--preset", "light", "--network", "test", "dumpconfig"}

	app := newApp()
	var out bytes.Buffer
	app.Writer = &out
	require.NoError(t, app.Run(args))

	var dumped Config
	_, err := toml.Decode(out.String(), &dumped)
	require.NoError(t, err)
	require.Equal(t, dataDir, dumped.Node.DataDir)
	require.Equal(t, integration.LightPreset(), dumped.Store)
	require.Equal(t, "test", dumped.Platform.Network)

	// the dump loads back to the same configuration
	cfg, err := runConfigFromArgs(t, []string{"--config", writeFile(t, "dump.toml", out.String())})
	require.NoError(t, err)
	require.Equal(t, dumped, cfg)
}

func TestPlatformRules(t *testing.T) {
	cfg := DefaultConfig().Platform
	rules, err := cfg.Rules()
	require.NoError(t, err)
	require.Equal(t, "fake", rules.Name)

	cfg.Network = "main"
	cfg.EpochLengthMs = 1000
	rules, err = cfg.Rules()
	require.NoError(t, err)
	require.Equal(t, time.Second, rules.Epochs.EpochLength)
	require.EqualValues(t, 1, rules.Protocol.GenesisVersion)

	cfg.GenesisVersion = 99
	_, err = cfg.Rules()
	require.Error(t, err)

	cfg.Network = "dev"
	cfg.GenesisVersion = 0
	_, err = cfg.Rules()
	require.Error(t, err)
}
