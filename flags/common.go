package flags

import (
	"gopkg.in/urfave/cli.v1"
)

// CommonFlags returns the base set of CLI flags shared across commands.
func CommonFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "config",
			Usage: "TOML configuration file",
		},
		cli.StringFlag{
			Name:  "datadir",
			Usage: "Data directory for the platform state",
			Value: "~/.drive",
		},
		cli.StringFlag{
			Name:  "verbosity",
			Usage: "Log level (panic|fatal|error|warn|info|debug|trace)",
			Value: "info",
		},
		cli.StringFlag{
			Name:  "log.format",
			Usage: "Log output format (text|json)",
			Value: "text",
		},
		cli.StringFlag{
			Name:  "log.sentry",
			Usage: "Sentry DSN errors are reported to",
		},
	}
}
