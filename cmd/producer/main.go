// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/dpos/admin"
	"github.com/vechain/dpos/clock"
	"github.com/vechain/dpos/log"
	"github.com/vechain/dpos/metrics"
	"github.com/vechain/dpos/producer"
	"github.com/vechain/dpos/scheduler"
	"github.com/vechain/dpos/thor"
)

var (
	version   string
	gitCommit string
	gitTag    string

	logger = log.WithContext("pkg", "main")
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "producer",
		Usage:     "Round-robin block producer",
		Copyright: "2025 VeChain Foundation <https://vechain.org/>",
		Flags: []cli.Flag{
			configFlag,
			dataDirFlag,
			producersFlag,
			cpuEffortFlag,
			adminAddrFlag,
			ntpServerFlag,
			verbosityFlag,
			jsonLogsFlag,
			metricsFlag,
		},
		Action: defaultAction,
		Commands: []cli.Command{
			{
				Name:  "schedule",
				Usage: "print the upcoming wake-up times of the local producers without producing",
				Flags: []cli.Flag{
					configFlag,
					dataDirFlag,
					producersFlag,
					cpuEffortFlag,
					countFlag,
				},
				Action: scheduleAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	logLevel := initLogger(cfg)
	defer func() { logger.Info("exited") }()

	if cfg.Metrics {
		metrics.InitializePrometheusMetrics()
	}

	store, err := openWatermarkStore(cfg.DataDir)
	if err != nil {
		return err
	}
	defer func() { logger.Info("closing watermark store..."); store.Close() }()

	chain, err := newSoloChain(store, cfg.BuildSchedule(), clock.System{})
	if err != nil {
		return err
	}

	keys := producer.NewKeys(cfg.LocalProducers().Slice()...)
	opts := producer.DefaultOptions()
	opts.CPUEffort = cfg.CPUEffort()

	prod, err := producer.New(chain, keys, soloAssembler{}, clock.System{}, opts)
	if err != nil {
		return err
	}

	adminURL := ""
	if cfg.AdminAddr != "" {
		url, closeAdmin, err := admin.StartServer(cfg.AdminAddr, admin.HTTPHandler(logLevel, prod))
		if err != nil {
			return err
		}
		defer func() { logger.Info("stopping admin server..."); closeAdmin() }()
		adminURL = url
	}

	printStartupMessage(cfg, chain, adminURL)

	exitCtx := handleExitSignal()
	group, groupCtx := errgroup.WithContext(exitCtx)
	group.Go(func() error {
		return prod.Run(groupCtx)
	})
	group.Go(func() error {
		checkClockOffsetLoop(groupCtx, cfg.NTPServer)
		return nil
	})
	return group.Wait()
}

// scheduleAction replays the rotation from the current slot, as if every owned slot was produced.
func scheduleAction(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	marks, err := loadWatermarks(cfg.DataDir)
	if err != nil {
		return err
	}

	var (
		timer  = scheduler.NewTimer(clock.System{}, cfg.CPUEffort())
		sched  = cfg.BuildSchedule()
		names  = cfg.LocalProducers()
		refNum = uint32(0)
		ref    = thor.SlotAt(timer.Clock().Now())
	)
	for _, wm := range marks {
		refNum = max(refNum, wm.BlockNum)
	}

	fmt.Printf("%-10s %-13s %-29s %-29s %s\n", "slot", "producer", "wake-up", "deadline", "slot time")
	for range ctx.Int(countFlag.Name) {
		slot, wake, ok := timer.NextSlot(refNum, ref, names, sched, marks)
		if !ok {
			return errors.New("none of the local producers is in the schedule")
		}
		deadline, _ := scheduler.CalcDeadline(timer.CPUEffort(), slot, wake)
		owner := sched.ProducerAt(slot).Name
		fmt.Printf("%-10v %-13v %-29s %-29s %s\n",
			slot,
			owner,
			wake.Local().Format(time.RFC3339Nano),
			deadline.Local().Format(time.RFC3339Nano),
			slot.Time().Local().Format(time.RFC3339Nano),
		)

		refNum++
		ref = slot
		marks.Consider(owner, refNum, slot)
	}
	return nil
}

func checkClockOffsetLoop(ctx context.Context, server string) {
	if server == "none" {
		return
	}
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		checkClockOffset(server)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
