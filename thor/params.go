// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import "time"

// Constants of block production.
const (
	BlockInterval       = 500 * time.Millisecond // time interval between two consecutive slots.
	ProducerRepetitions = 12                     // consecutive slots owned by one schedule entry.
	MaxProducers        = 125                    // upper bound of the active schedule size.
)

// BlockTimestampEpoch is the instant of slot 0 (2000-01-01T00:00:00Z).
var BlockTimestampEpoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)
