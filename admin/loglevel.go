// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package admin

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/vechain/dpos/log"
)

type logLevelRequest struct {
	Level string `json:"level"`
}

type logLevelResponse struct {
	CurrentLevel string `json:"currentLevel"`
}

// LogLevel serves the verbosity of the root logger.
type LogLevel struct {
	level *slog.LevelVar
}

func NewLogLevel(level *slog.LevelVar) *LogLevel {
	return &LogLevel{level}
}

func (l *LogLevel) Mount(root *mux.Router, pathPrefix string) {
	root.Path(pathPrefix).
		Methods(http.MethodGet).
		Name("get-log-level").
		HandlerFunc(WrapHandlerFunc(l.handleGet))
	root.Path(pathPrefix).
		Methods(http.MethodPost).
		Name("post-log-level").
		HandlerFunc(WrapHandlerFunc(l.handlePost))
}

func (l *LogLevel) handleGet(w http.ResponseWriter, _ *http.Request) error {
	return writeJSON(w, logLevelResponse{log.LevelString(l.level.Level())})
}

func (l *LogLevel) handlePost(w http.ResponseWriter, r *http.Request) error {
	var req logLevelRequest
	if err := parseJSON(r.Body, &req); err != nil {
		return BadRequest(errors.WithMessage(err, "invalid request body"))
	}
	level, err := log.ParseLevel(req.Level)
	if err != nil {
		return BadRequest(err)
	}
	l.level.Set(level)
	logger.Info("log level changed", "level", log.LevelString(level))
	return writeJSON(w, logLevelResponse{log.LevelString(level)})
}
