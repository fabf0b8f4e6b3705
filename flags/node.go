package flags

import (
	"gopkg.in/urfave/cli.v1"
)

// NodeFlags holds knobs specific to the local node instance.
func NodeFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "identity",
			Usage: "Custom node name shown in logs",
		},
		cli.StringFlag{
			Name:  "preset",
			Usage: "Resource preset (light|full|archive)",
			Value: "full",
		},
		cli.StringFlag{
			Name:  "db.backend",
			Usage: "State store backend (memory|leveldb), overrides the preset",
		},
		cli.IntFlag{
			Name:  "cache",
			Usage: "Megabytes of memory allocated to the state store",
		},
		cli.IntFlag{
			Name:  "cache.contracts",
			Usage: "Number of data contracts kept in the contract cache",
		},
	}
}
