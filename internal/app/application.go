// Package app wires the client together and owns its lifecycle.
package app

import (
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/calder-dev/tidechat/internal/auth"
	"github.com/calder-dev/tidechat/internal/chat"
	"github.com/calder-dev/tidechat/internal/config"
	"github.com/calder-dev/tidechat/internal/dispatcher"
	"github.com/calder-dev/tidechat/internal/eventbus"
	"github.com/calder-dev/tidechat/internal/log"
	"github.com/calder-dev/tidechat/internal/state"
	"github.com/calder-dev/tidechat/internal/update"
)

// Application bundles the long-lived pieces: config, logger, bus,
// store, chat service, and the TUI model.
type Application struct {
	config  *config.Config
	logger  log.Logger
	logFile *os.File
	bus     *eventbus.Bus
	store   *state.Store
	service *chat.Service
	model   *Model
}

func NewApplication() (*Application, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, logFile := openLogger()
	bus := eventbus.NewBus(logger.With("component", "bus"))

	// Snapshots flow store -> bus -> TUI; dropping one is fine, the
	// next snapshot is complete on its own.
	store := state.NewStore(state.Initial(), func(s state.State) {
		_ = bus.SendToUI(eventbus.StateUpdateEvent{State: s})
	}, logger.With("component", "store"))

	tokens := auth.NewStaticSource(cfg.AccessToken())
	service := chat.NewService(cfg.GatewayURL(), store, tokens, bus, logger.With("component", "chat"))

	model := &Model{
		vm:      update.ViewModel{State: state.Initial(), Status: initialStatus(cfg)},
		bridge:  dispatcher.NewBridge(bus),
		service: service,
	}

	return &Application{
		config:  cfg,
		logger:  logger,
		logFile: logFile,
		bus:     bus,
		store:   store,
		service: service,
		model:   model,
	}, nil
}

// Start launches the chat service and runs the TUI until exit.
func (app *Application) Start() error {
	app.service.Start()

	p := tea.NewProgram(app.model)
	_, err := p.Run()
	return err
}

func (app *Application) Stop() {
	app.service.Stop()
	app.bus.Close()
	if app.logFile != nil {
		_ = app.logFile.Close()
	}
}

// openLogger writes to a file next to the config: the terminal belongs
// to the TUI. Falls back to a silent logger when the file is
// unavailable.
func openLogger() (log.Logger, *os.File) {
	path, err := config.LogPath()
	if err != nil {
		return log.NewNop(), nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return log.NewNop(), nil
	}
	return log.NewWithWriter(f, log.Config{Level: slog.LevelDebug}), f
}

func initialStatus(cfg *config.Config) string {
	if !cfg.IsValid() {
		return "No gateway configured · run: tidechat profile add"
	}
	return "Ready · profile " + cfg.ActiveProfile
}
