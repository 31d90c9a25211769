// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package admin

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/vechain/dpos/producer"
)

// Production is the part of the producer exposed to operators.
type Production interface {
	Status() *producer.Status
	Pause()
	Resume()
	Recent() []*producer.Block
}

// Producer serves the status and controls of block production.
type Producer struct {
	prod Production
}

func NewProducer(prod Production) *Producer {
	return &Producer{prod}
}

// Mount registers the routes on root with full paths, so a method mismatch is answered with 405.
func (p *Producer) Mount(root *mux.Router, pathPrefix string) {
	root.Path(pathPrefix).
		Methods(http.MethodGet).
		Name("get-producer").
		HandlerFunc(WrapHandlerFunc(p.handleStatus))
	root.Path(pathPrefix + "/pause").
		Methods(http.MethodPost).
		Name("post-producer-pause").
		HandlerFunc(WrapHandlerFunc(p.handlePause))
	root.Path(pathPrefix + "/resume").
		Methods(http.MethodPost).
		Name("post-producer-resume").
		HandlerFunc(WrapHandlerFunc(p.handleResume))
	root.Path(pathPrefix + "/blocks").
		Methods(http.MethodGet).
		Name("get-producer-blocks").
		HandlerFunc(WrapHandlerFunc(p.handleBlocks))
}

func (p *Producer) handleStatus(w http.ResponseWriter, _ *http.Request) error {
	return writeJSON(w, p.prod.Status())
}

func (p *Producer) handlePause(w http.ResponseWriter, _ *http.Request) error {
	p.prod.Pause()
	return writeJSON(w, p.prod.Status())
}

func (p *Producer) handleResume(w http.ResponseWriter, _ *http.Request) error {
	p.prod.Resume()
	return writeJSON(w, p.prod.Status())
}

func (p *Producer) handleBlocks(w http.ResponseWriter, r *http.Request) error {
	blocks := p.prod.Recent()
	if s := r.URL.Query().Get("limit"); s != "" {
		limit, err := strconv.Atoi(s)
		if err != nil || limit < 0 {
			return BadRequest(errors.New("limit: non-negative integer expected"))
		}
		if limit < len(blocks) {
			blocks = blocks[:limit]
		}
	}
	return writeJSON(w, blocks)
}
