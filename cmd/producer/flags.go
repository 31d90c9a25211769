// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/dpos/config"
	"github.com/vechain/dpos/log"
)

var (
	configFlag = cli.StringFlag{
		Name:  "config",
		Usage: "path to the yaml configuration file",
	}
	dataDirFlag = cli.StringFlag{
		Name:  "data-dir",
		Usage: "directory for the watermark database (in memory if empty)",
	}
	producersFlag = cli.StringFlag{
		Name:  "producers",
		Usage: "comma separated list of local producer names, overrides the config file",
	}
	cpuEffortFlag = cli.Uint64Flag{
		Name:  "cpu-effort-percent",
		Value: config.DefaultCPUEffortPercent,
		Usage: "percent of the block interval spent producing a block (1-100)",
	}
	adminAddrFlag = cli.StringFlag{
		Name:  "admin-addr",
		Value: config.DefaultAdminAddr,
		Usage: "admin API listening address (disabled if empty)",
	}
	ntpServerFlag = cli.StringFlag{
		Name:  "ntp-server",
		Usage: "NTP server used to check the local clock (check disabled if 'none')",
	}
	verbosityFlag = cli.Uint64Flag{
		Name:  "verbosity",
		Value: log.LegacyLevelInfo,
		Usage: "log verbosity (0-9)",
	}
	jsonLogsFlag = cli.BoolFlag{
		Name:  "json-logs",
		Usage: "output logs in JSON format",
	}
	metricsFlag = cli.BoolFlag{
		Name:  "enable-metrics",
		Usage: "enables metrics collection, served at /metrics of the admin API",
	}
	countFlag = cli.IntFlag{
		Name:  "count",
		Value: 24,
		Usage: "count of upcoming blocks to print",
	}
)
