// SPDX-License-Identifier: Apache-2.0
package main

import (
	"os"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"github.com/dfinance/move-tools/internal/config"
	"github.com/dfinance/move-tools/internal/lsp"
	"github.com/dfinance/move-tools/internal/toolchain/move"
)

const lsName = "move-lsp"

var log = commonlog.GetLogger("movec.lsp.main")

func main() {
	// Debug level; the client only sees stdout, logs go to stderr.
	commonlog.Configure(1, nil)

	settings := config.Defaults
	if err := config.ApplyEnv(&settings); err != nil {
		log.Errorf("environment: %s", err.Error())
		os.Exit(1)
	}

	moveHandler, err := lsp.NewHandler(settings, move.New())
	if err != nil {
		log.Errorf("invalid settings: %s", err.Error())
		os.Exit(1)
	}

	handler := protocol.Handler{
		Initialize:                     moveHandler.Initialize,
		Initialized:                    moveHandler.Initialized,
		Shutdown:                       moveHandler.Shutdown,
		SetTrace:                       moveHandler.SetTrace,
		TextDocumentDidOpen:            moveHandler.TextDocumentDidOpen,
		TextDocumentDidClose:           moveHandler.TextDocumentDidClose,
		TextDocumentDidChange:          moveHandler.TextDocumentDidChange,
		TextDocumentSemanticTokensFull: moveHandler.TextDocumentSemanticTokensFull,
	}

	s := server.NewServer(&handler, lsName, false)

	log.Info("starting Move language server")
	if err := s.RunStdio(); err != nil {
		log.Errorf("language server stopped: %s", err.Error())
		os.Exit(1)
	}
}
