package cmd

import (
	"log"
	"time"

	"github.com/bz888/schedchat/internal/api"
	"github.com/bz888/schedchat/internal/api/server"
	"github.com/bz888/schedchat/internal/config"
	"github.com/bz888/schedchat/internal/logger"
	"github.com/bz888/schedchat/internal/ui"
)

// mockFragmentDelay paces the mock service so streaming is visible.
const mockFragmentDelay = 60 * time.Millisecond

func init() {
	config.Init()
}

func Execute() {
	ui.Init()
	debugConsole, err := ui.GetDebugConsole()

	if err != nil {
		log.Fatal(err)
	}

	logger.InitLogger(config.Dev, config.LogPath, debugConsole)
	localLogger := logger.NewLogger("main")
	defer localLogger.Close()

	client, err := api.NewClient(config.BaseURL, api.WithLogger(logger.NewLogger("api client")))
	if err != nil {
		localLogger.Fatal(err)
	}

	if config.Mock {
		server.Init()
		go func() {
			if err := server.Run(config.MockAddr, server.EchoResponder{Delay: mockFragmentDelay}); err != nil {
				localLogger.Error("Mock chat service stopped: ", err)
			}
		}()
	}

	if err := ui.Run(client, config.Stream); err != nil {
		localLogger.Fatal(err)
	}
}
