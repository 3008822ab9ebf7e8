//go:build !tinygo && !baremetal

// radiosim drives the 802.15.4 radio adapter against a simulated peer.
package main

import (
	"log"
	"os"

	"github.com/urfave/cli"
)

func main() {
	app := cli.NewApp()
	app.Name = "radiosim"
	app.Usage = "Exercise the 802.15.4 radio adapter on a simulated medium"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config, c",
			Value: "",
			Usage: "YAML configuration file (OTRADIO_CONFIG is applied on top)",
		},
		cli.BoolFlag{
			Name:  "verbose, v",
			Usage: "Trace adapter activity",
		},
	}
	app.Commands = COMMANDS

	if err := app.Run(os.Args); err != nil {
		log.Fatalln(err)
	}
}
