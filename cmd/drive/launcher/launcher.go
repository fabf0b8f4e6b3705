// Package launcher is the entry point of the drive binary: it turns flags
// and the config file into a running engine.
package launcher

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gopkg.in/urfave/cli.v1"

	"github.com/rony4d/go-platform-drive/drive"
	"github.com/rony4d/go-platform-drive/flags"
	"github.com/rony4d/go-platform-drive/integration"
)

var gitCommit = ""

var app = newApp()

func newApp() *cli.App {
	a := flags.NewApp(gitCommit, "platform state execution node")
	a.Action = mainAction
	a.Commands = []cli.Command{
		{
			Name:   "dumpconfig",
			Usage:  "Show the effective configuration as TOML",
			Action: dumpConfig,
		},
		{
			Name:      "replay",
			Usage:     "Execute and commit the blocks of a JSON file",
			ArgsUsage: "<blocks.json>",
			Action:    replayCommand,
		},
	}
	return a
}

// Launch parses the arguments and runs the selected command.
func Launch(args []string) error {
	return app.Run(args)
}

// mainAction prints the node banner and the effective rules.
func mainAction(ctx *cli.Context) error {
	cfg, err := MakeAllConfigs(ctx)
	if err != nil {
		return err
	}
	log, err := makeLogger(cfg.Logging, ctx.App.ErrWriter)
	if err != nil {
		return err
	}
	rules, err := cfg.Platform.Rules()
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"name":    cfg.Node.Name,
		"network": rules.Name,
		"datadir": cfg.Node.DataDir,
		"preset":  cfg.Store.Name,
		"backend": cfg.Store.Backend,
	}).Info("Platform drive")
	fmt.Fprintln(ctx.App.Writer, rules.String())
	return nil
}

func makeDrive(cfg Config) (*drive.Drive, error) {
	return integration.MakeDrive(cfg.Node.DataDir, cfg.Store)
}
