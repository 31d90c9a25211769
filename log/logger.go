// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"context"
	"log/slog"

	ethlog "github.com/ethereum/go-ethereum/log"
)

// Logger is the subset of the go-ethereum logger packages log through.
type Logger interface {
	With(ctx ...any) Logger
	Enabled(ctx context.Context, level slog.Level) bool

	Trace(msg string, ctx ...any)
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Warn(msg string, ctx ...any)
	Error(msg string, ctx ...any)
	Crit(msg string, ctx ...any)
}

// contextLogger resolves the go-ethereum root logger on every call, so package level loggers
// declared before the root is set still end up on the configured handler.
type contextLogger struct {
	ctx []any
}

// WithContext returns a logger which prefixes every record of the root logger with ctx.
func WithContext(ctx ...any) Logger {
	return &contextLogger{ctx}
}

func (l *contextLogger) resolve() ethlog.Logger { return ethlog.Root().With(l.ctx...) }

func (l *contextLogger) With(ctx ...any) Logger {
	return &contextLogger{append(append([]any(nil), l.ctx...), ctx...)}
}

func (l *contextLogger) Enabled(ctx context.Context, level slog.Level) bool {
	return ethlog.Root().Enabled(ctx, level)
}

func (l *contextLogger) Trace(msg string, ctx ...any) { l.resolve().Trace(msg, ctx...) }
func (l *contextLogger) Debug(msg string, ctx ...any) { l.resolve().Debug(msg, ctx...) }
func (l *contextLogger) Info(msg string, ctx ...any)  { l.resolve().Info(msg, ctx...) }
func (l *contextLogger) Warn(msg string, ctx ...any)  { l.resolve().Warn(msg, ctx...) }
func (l *contextLogger) Error(msg string, ctx ...any) { l.resolve().Error(msg, ctx...) }
func (l *contextLogger) Crit(msg string, ctx ...any)  { l.resolve().Crit(msg, ctx...) }
