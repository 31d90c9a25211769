// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"context"
	"io"
	"log/slog"

	ethlog "github.com/ethereum/go-ethereum/log"
)

// levelHandler drops records below a level which can be changed at runtime.
type levelHandler struct {
	level slog.Leveler
	inner slog.Handler
}

func (h *levelHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.level.Level() && h.inner.Enabled(ctx, level)
}

func (h *levelHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.inner.Handle(ctx, r)
}

func (h *levelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelHandler{h.level, h.inner.WithAttrs(attrs)}
}

func (h *levelHandler) WithGroup(name string) slog.Handler {
	return &levelHandler{h.level, h.inner.WithGroup(name)}
}

// NewTerminalHandlerWithLevel returns the go-ethereum terminal handler, filtered by level.
func NewTerminalHandlerWithLevel(wr io.Writer, level slog.Leveler, useColor bool) slog.Handler {
	return &levelHandler{level, ethlog.NewTerminalHandler(wr, useColor)}
}

// JSONHandlerWithLevel returns the go-ethereum JSON handler, filtered by level.
func JSONHandlerWithLevel(wr io.Writer, level slog.Leveler) slog.Handler {
	return &levelHandler{level, ethlog.JSONHandler(wr)}
}

// LogfmtHandlerWithLevel returns the go-ethereum logfmt handler, filtered by level.
func LogfmtHandlerWithLevel(wr io.Writer, level slog.Leveler) slog.Handler {
	return &levelHandler{level, ethlog.LogfmtHandler(wr)}
}
