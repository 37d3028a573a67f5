// Command agentmarket runs the English-auction marketplace simulation.
//
// Usage:
//
//	agentmarket run --duration 2m --time-unit 100ms
//	agentmarket run --config market.yaml --metrics-addr :9090
//	agentmarket dumpconfig --config market.toml
package main

import (
	"fmt"
	"os"

	"gopkg.in/urfave/cli.v1"
)

func main() {
	app := cli.NewApp()
	app.Name = "agentmarket"
	app.Usage = "actor-based English auction marketplace simulation"
	app.Commands = []cli.Command{runCommand, dumpConfigCommand}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
