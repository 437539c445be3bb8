package main

import "github.com/urfave/cli/v2"

// NewApp creates an app with sane defaults.
func (s *srv) loadApp() {
	app := cli.NewApp()
	app.Action = cli.ShowAppHelp
	app.Name = "LazyLotto"
	app.Usage = ""
	app.Commands = []*cli.Command{
		{
			Action:      server.startApi,
			Name:        "api",
			Usage:       "Start service api",
			Flags:       []cli.Flag{},
			Category:    "Api",
			Description: `Used for start service api, the main service included all apis.`,
		},
		{
			Action:      server.startMirror,
			Name:        "mirror",
			Usage:       "Start mirror refresher",
			Flags:       []cli.Flag{},
			Category:    "Worker",
			Description: `Used to start the worker keeping the redis mirror in sync with the database.`,
		},
		{
			Action: server.startMigrate,
			Name:   "migrate",
			Usage:  "Migrate database",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "version",
					Usage: "The migration version to apply",
					Value: "0000",
				},
			},
			Category:    "Database",
			Description: `Used to bring the database to a specific version.`,
		},
	}

	s.app = app
}
