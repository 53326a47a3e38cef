package main

import (
	"fmt"
	"os"

	log "github.com/Lafeng/weakdh/glog"
	"github.com/urfave/cli/v2"
)

var context = &bootContext{vFlag: -1, workers: -1, out: os.Stdout}

func main() {
	// -v is the log level
	cli.VersionFlag = &cli.BoolFlag{Name: "V", Usage: "show Version"}
	cli.VersionPrinter = func(c *cli.Context) {
		fmt.Println(versionString())
		fmt.Println(buildString())
	}
	app := &cli.App{
		Name:      app_name,
		Usage:     "rate the Diffie-Hellman groups recorded in SSH key exchange transcripts",
		UsageText: app_name + " [options] DIRECTORY",
		Version:   versionString(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "config file, searched by default in ./, <exe dir>, ~/.weakdh, /etc/weakdh",
				Destination: &context.configFile,
			},
			&cli.StringFlag{
				Name:        "common-groups",
				Aliases:     []string{"g"},
				Usage:       "dataset of well-known groups (YAML or JSON)",
				Destination: &context.commonGroups,
			},
			&cli.StringSliceFlag{
				Name:  "moduli",
				Usage: "OpenSSH moduli file adding group names, repeatable",
			},
			&cli.StringFlag{
				Name:        "color",
				Usage:       "colour the finding symbols: auto, always, never",
				Destination: &context.color,
			},
			&cli.IntFlag{
				Name:        "workers",
				Aliases:     []string{"j"},
				Usage:       "transcripts analyzed at once, 0 for one per CPU",
				Value:       -1,
				Destination: &context.workers,
			},
			&cli.IntFlag{
				Name:        "v",
				Usage:       "verbose log level",
				Value:       -1,
				Destination: &context.vFlag,
			},
			&cli.StringFlag{
				Name:        "logdir",
				Usage:       "write logs into the directory instead of stderr",
				Destination: &context.logdir,
			},
		},
		Before: context.initialize,
		Action: context.scanCommandHandler,
		Commands: []*cli.Command{
			{
				Name:      "init-config",
				Usage:     "write a config template with the defaults",
				ArgsUsage: " ",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "output file, default stdout",
					},
				},
				Action: context.initConfigCommandHandler,
			},
			{
				Name:      "groups",
				Usage:     "list the loaded common groups",
				ArgsUsage: " ",
				Action:    context.groupsCommandHandler,
			},
		},
	}
	err := app.Run(os.Args)
	log.Flush()
	fatalError(err)
}
