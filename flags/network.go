package flags

import (
	"gopkg.in/urfave/cli.v1"
)

// NetworkFlags selects the network rules and the fake network genesis.
func NetworkFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "network",
			Usage: "Network rules (main|test|fake)",
			Value: "fake",
		},
		cli.IntFlag{
			Name:  "fakenet.accounts",
			Usage: "Number of funded identities in the fake network genesis",
			Value: 3,
		},
		cli.Uint64Flag{
			Name:  "fakenet.balance",
			Usage: "Credits of every fake network identity",
			Value: 10_000_000_000,
		},
		cli.UintFlag{
			Name:  "genesis.version",
			Usage: "Protocol version active from the first block, overrides the network rules",
		},
		cli.DurationFlag{
			Name:  "epoch.length",
			Usage: "Epoch length, overrides the network rules",
		},
	}
}
