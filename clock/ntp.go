// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package clock

import (
	"time"

	"github.com/beevik/ntp"
	"github.com/pkg/errors"

	"github.com/vechain/dpos/thor"
)

// DefaultNTPServer is queried when no server is configured.
const DefaultNTPServer = "pool.ntp.org"

// MaxClockOffset is the local clock offset beyond which production deadlines become unreliable.
const MaxClockOffset = thor.BlockInterval / 2

// CheckOffset queries the NTP server for the local clock offset.
func CheckOffset(server string) (time.Duration, error) {
	if server == "" {
		server = DefaultNTPServer
	}
	resp, err := ntp.Query(server)
	if err != nil {
		return 0, errors.Wrap(err, "query ntp")
	}
	return resp.ClockOffset, nil
}

// IsOffsetTolerable returns whether a measured offset still allows meeting deadlines.
func IsOffsetTolerable(offset time.Duration) bool {
	if offset < 0 {
		offset = -offset
	}
	return offset <= MaxClockOffset
}
