package main

import (
	"os"
	"path/filepath"

	cli "gopkg.in/urfave/cli.v1"
)

var (
	dataDirFlag = cli.StringFlag{
		Name:  "data-dir",
		Value: defaultDataDir(),
		Usage: "directory for the contract database",
	}
	contractNameFlag = cli.StringFlag{
		Name:  "contract-name",
		Value: "trybenetwork",
		Usage: "account name the contract runs as",
	}
	apiAddrFlag = cli.StringFlag{
		Name:  "api-addr",
		Value: "localhost:8669",
		Usage: "API service listening address",
	}
	apiCorsFlag = cli.StringFlag{
		Name:  "api-cors",
		Value: "",
		Usage: "comma separated list of domains from which to accept cross origin requests to API",
	}
	verbosityFlag = cli.StringFlag{
		Name:  "verbosity",
		Value: "info",
		Usage: "log verbosity (debug|info|warn|error)",
	}
	enableMetricsFlag = cli.BoolFlag{
		Name:  "enable-metrics",
		Usage: "export prometheus metrics on /metrics",
	}
	disableRefundTimerFlag = cli.BoolFlag{
		Name:  "disable-refund-timer",
		Usage: "do not self-settle refunds after their cooldown",
	}
)

func defaultDataDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".trybed")
	}
	return ""
}
