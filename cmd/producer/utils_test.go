// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/dpos/config"
	"github.com/vechain/dpos/log"
)

func newCliContext(t *testing.T, args ...string) *cli.Context {
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	for _, f := range []cli.Flag{
		configFlag,
		dataDirFlag,
		producersFlag,
		cpuEffortFlag,
		adminAddrFlag,
		ntpServerFlag,
		verbosityFlag,
		jsonLogsFlag,
		metricsFlag,
	} {
		f.Apply(set)
	}
	require.NoError(t, set.Parse(args))
	return cli.NewContext(nil, set, nil)
}

func TestLoadConfigFromFlags(t *testing.T) {
	cfg, err := loadConfig(newCliContext(t, "--producers", "inita, initb", "--cpu-effort-percent", "50", "--verbosity", "4"))
	require.NoError(t, err)

	assert.Equal(t, 250*time.Millisecond, cfg.CPUEffort())
	assert.Equal(t, log.LegacyLevelDebug, cfg.Verbosity)
	assert.Equal(t, 2, cfg.LocalProducers().Len())
	// the local producers make up the schedule when none is configured
	assert.Equal(t, 2, cfg.BuildSchedule().Len())
	assert.Equal(t, config.DefaultAdminAddr, cfg.AdminAddr)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
cpu-effort-percent: 90
producers: [initb]
schedule:
  version: 2
  producers:
    - name: inita
    - name: initb
admin-addr: ""
`), 0o600))

	cfg, err := loadConfig(newCliContext(t, "--config", path))
	require.NoError(t, err)
	assert.Equal(t, uint32(90), cfg.CPUEffortPercent)
	assert.Empty(t, cfg.AdminAddr)
	assert.Equal(t, uint32(2), cfg.BuildSchedule().Version())

	// flags win over the file
	cfg, err = loadConfig(newCliContext(t, "--config", path, "--cpu-effort-percent", "80", "--enable-metrics"))
	require.NoError(t, err)
	assert.Equal(t, uint32(80), cfg.CPUEffortPercent)
	assert.True(t, cfg.Metrics)
}

func TestLoadConfigInvalid(t *testing.T) {
	_, err := loadConfig(newCliContext(t))
	assert.Error(t, err, "no schedule")

	_, err = loadConfig(newCliContext(t, "--producers", "inita", "--cpu-effort-percent", "0"))
	assert.ErrorIs(t, err, config.ErrCPUEffort)

	_, err = loadConfig(newCliContext(t, "--producers", "Inita"))
	assert.Error(t, err)
}
