package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/deforce/multichat/internal/bus"
	"github.com/deforce/multichat/internal/config"
	"github.com/deforce/multichat/internal/connectors"
	"github.com/deforce/multichat/internal/history"
	"github.com/deforce/multichat/internal/hub"
	"github.com/deforce/multichat/internal/logging"
	"github.com/deforce/multichat/internal/modules"
	"github.com/deforce/multichat/internal/pubsub"
	"github.com/deforce/multichat/internal/server"
	"github.com/deforce/multichat/internal/telemetry"
	"github.com/deforce/multichat/internal/themes"
)

var consoleMode bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the chat aggregator",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

func init() {
	serveCmd.Flags().BoolVar(&consoleMode, "console", false, "read chat lines from stdin")
	rootCmd.AddCommand(serveCmd)
}

func serve() error {
	cfg, err := config.New()
	if err != nil {
		return err
	}
	logging.New(cfg.LogFormat)
	telemetry.Init()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	themeRegistry, err := themes.NewRegistry(cfg.ThemesDir)
	if err != nil {
		return err
	}
	if err := themeRegistry.Watch(ctx); err != nil {
		slog.Error("Theme hot reload disabled", "error", err)
	}

	store := history.NewStore(cfg.HistorySize)
	broadcastHub := hub.New(store, themeRegistry, hub.Config{
		SendTimeout: cfg.SendTimeout,
		SettleDelay: cfg.SettleDelay,
	})

	chain := bus.NewChain()
	modules.Load(chain, cfg.ModulesDir, cfg.Modules)

	bridge := pubsub.NewWatermillBridge(cfg.QueueBuffer)
	defer bridge.Close()

	messageBus := bus.New(bridge, bridge, chain, broadcastHub, cfg.Workers)
	if err := messageBus.Run(ctx); err != nil {
		return err
	}

	startConnectors(ctx, cfg, messageBus)

	srv := server.New(cfg, broadcastHub)
	srv.Start()
	slog.Info("Multichat loaded successfully", "addr", cfg.Addr())

	<-ctx.Done()
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// startConnectors boots every configured producer adapter in load order. A
// connector that fails stays down; the remaining ones keep running.
func startConnectors(ctx context.Context, cfg *config.Config, queue connectors.Queue) {
	var conns []connectors.Connector
	if cfg.TwitchEnabled() {
		conns = append(conns, connectors.NewTwitch(queue, connectors.TwitchConfig{
			Channel:  cfg.TwitchChannel,
			Username: cfg.TwitchUsername,
			OAuth:    cfg.TwitchOAuth,
		}))
	}
	if consoleMode {
		conns = append(conns, connectors.NewConsole(queue, os.Stdin))
	}

	sort.Slice(conns, func(i, j int) bool { return conns[i].Priority() < conns[j].Priority() })
	for _, conn := range conns {
		go func(c connectors.Connector) {
			slog.Info("Starting connector", "connector", c.Name())
			if err := c.Run(ctx); err != nil {
				slog.Error("Connector stopped", "connector", c.Name(), "error", err)
			}
		}(conn)
	}
}
