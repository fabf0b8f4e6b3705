package launcher

import (
	"github.com/rony4d/go-platform-drive/integration"
)

// DefaultConfig returns the configuration used before the config file and
// flags override it.
func DefaultConfig() Config {
	return Config{
		Node: NodeConfig{
			DataDir: "~/.drive",
			Name:    "go-platform-drive",
		},
		Logging: LoggingConfig{
			Verbosity: "info",
			Format:    "text",
		},
		Store: integration.DefaultPreset(),
		Platform: PlatformConfig{
			Network:         "fake",
			FakeNetAccounts: 3,
			FakeNetBalance:  10_000_000_000,
		},
	}
}
