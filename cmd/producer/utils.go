// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	ethlog "github.com/ethereum/go-ethereum/log"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/dpos/clock"
	"github.com/vechain/dpos/config"
	"github.com/vechain/dpos/log"
	"github.com/vechain/dpos/thor"
	"github.com/vechain/dpos/watermark"
)

// loadConfig reads the config file, if any, and applies the flags set on the command line.
func loadConfig(ctx *cli.Context) (*config.Config, error) {
	cfg := config.Default()
	if path := ctx.String(configFlag.Name); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if ctx.IsSet(producersFlag.Name) {
		cfg.Producers = nil
		for _, s := range strings.Split(ctx.String(producersFlag.Name), ",") {
			if s = strings.TrimSpace(s); s == "" {
				continue
			}
			name, err := thor.ParseName(s)
			if err != nil {
				return nil, errors.WithMessage(err, producersFlag.Name)
			}
			cfg.Producers = append(cfg.Producers, name)
		}
	}
	if ctx.IsSet(dataDirFlag.Name) {
		cfg.DataDir = ctx.String(dataDirFlag.Name)
	}
	if ctx.IsSet(cpuEffortFlag.Name) {
		cfg.CPUEffortPercent = uint32(ctx.Uint64(cpuEffortFlag.Name))
	}
	if ctx.IsSet(adminAddrFlag.Name) {
		cfg.AdminAddr = ctx.String(adminAddrFlag.Name)
	}
	if ctx.IsSet(ntpServerFlag.Name) {
		cfg.NTPServer = ctx.String(ntpServerFlag.Name)
	}
	if ctx.IsSet(verbosityFlag.Name) {
		cfg.Verbosity = int(ctx.Uint64(verbosityFlag.Name))
	}
	if ctx.IsSet(jsonLogsFlag.Name) {
		cfg.JSONLogs = ctx.Bool(jsonLogsFlag.Name)
	}
	if ctx.IsSet(metricsFlag.Name) {
		cfg.Metrics = ctx.Bool(metricsFlag.Name)
	}

	// without a schedule, the local producers take turns on their own
	if len(cfg.Schedule.Producers) == 0 {
		for _, name := range cfg.Producers {
			cfg.Schedule.Producers = append(cfg.Schedule.Producers, config.Producer{Name: name})
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.WithMessage(err, "invalid config")
	}
	return cfg, nil
}

func initLogger(cfg *config.Config) *slog.LevelVar {
	var level slog.LevelVar
	level.Set(log.FromLegacyLevel(cfg.Verbosity))

	var handler slog.Handler
	if cfg.JSONLogs {
		handler = log.JSONHandlerWithLevel(os.Stdout, &level)
	} else {
		useColor := (isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())) &&
			os.Getenv("TERM") != "dumb"
		handler = log.NewTerminalHandlerWithLevel(os.Stdout, &level, useColor)
	}
	ethlog.SetDefault(ethlog.NewLogger(handler))
	return &level
}

func openWatermarkStore(dataDir string) (*watermark.Store, error) {
	if dataDir == "" {
		return watermark.NewMem()
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, errors.Wrapf(err, "create data dir [%v]", dataDir)
	}
	return watermark.Open(filepath.Join(dataDir, "watermarks"))
}

func loadWatermarks(dataDir string) (watermark.Watermarks, error) {
	store, err := openWatermarkStore(dataDir)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return store.Load()
}

func handleExitSignal() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		exitSignalCh := make(chan os.Signal, 1)
		signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)

		sig := <-exitSignalCh
		logger.Info("exit signal received", "signal", sig)
		cancel()
	}()
	return ctx
}

func checkClockOffset(server string) {
	offset, err := clock.CheckOffset(server)
	if err != nil {
		logger.Debug("failed to access NTP", "err", err)
		return
	}
	if !clock.IsOffsetTolerable(offset) {
		logger.Warn("clock offset detected, block deadlines may be missed", "offset", common.PrettyDuration(offset))
		return
	}
	logger.Debug("clock offset checked", "offset", common.PrettyDuration(offset))
}

func printStartupMessage(cfg *config.Config, chain *soloChain, adminURL string) {
	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = "Memory"
	}
	if adminURL == "" {
		adminURL = "disabled"
	}
	head := chain.Head()
	sched := chain.Schedule()

	fmt.Printf(`Starting producer
    Version:     %v
    Producers:   %v
    CPU effort:  %v (%d%% of %v)
    Schedule:    version %d, %d producers
    Head:        #%d at slot %v
    Data dir:    %v
    Admin API:   %v
`,
		fullVersion(),
		cfg.LocalProducers().Slice(),
		cfg.CPUEffort(), cfg.CPUEffortPercent, thor.BlockInterval,
		sched.Version(), sched.Len(),
		head.Num, head.Slot,
		dataDir,
		adminURL,
	)
}
