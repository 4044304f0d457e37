package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rustyeddy/lockin/config"
	"github.com/rustyeddy/lockin/internal/bot"
	"github.com/rustyeddy/lockin/internal/journalobs"
	"github.com/rustyeddy/lockin/internal/logger"
	"github.com/rustyeddy/lockin/internal/telegram"
	"github.com/rustyeddy/lockin/journal"
	"github.com/rustyeddy/lockin/remind"
	"github.com/rustyeddy/lockin/risk"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Telegram bot",
	Long: `Run the Lock-In Pal bot until interrupted.

In polling mode the bot long-polls getUpdates. In webhook mode it registers
<webhook_url>/telegram/<webhook_secret> with Telegram and serves updates on
webhook_addr.

Examples:
  BOT_TOKEN=... lockin serve
  lockin serve -c lockin.yaml --mode webhook`,
	RunE: runServe,
}

var serveMode string

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveMode, "mode", "", "override bot mode (polling or webhook)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if serveMode != "" {
		cfg.Bot.Mode = serveMode
	}
	if err := cfg.ValidateServe(); err != nil {
		return err
	}

	if err := logger.Init(logger.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Tracing: cfg.Log.Tracing,
	}); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Shutdown(context.Background())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	local, closeLocal, err := openLocal(cfg)
	if err != nil {
		return err
	}
	defer closeLocal()

	sheet, email, err := openSheets(cfg)
	if err != nil {
		return fmt.Errorf("sheets: %w", err)
	}
	router := journal.NewRouter(local, sheet)

	reminders := remind.NewScheduler()
	defer reminders.Stop()

	tg := telegram.NewClient(cfg.Bot.APIURL, cfg.Bot.Token)
	b := bot.New(journalobs.Wrap(router), router, reminders, tg, bot.Options{
		Policy: risk.Policy{
			MaxRiskPct: cfg.Risk.MaxRiskPct,
			MinRR:      cfg.Risk.MinRR,
		},
		AdminChatID:    cfg.Bot.AdminChatID,
		ServiceAccount: email,
	})
	d := telegram.NewDispatcher(ctx, b, tg, cfg.Bot.Workers)

	logger.Info(ctx, "bot starting",
		"mode", cfg.Bot.Mode,
		"journal", cfg.Journal.Type,
		"sheets", cfg.Sheets.Enabled,
		"workers", cfg.Bot.Workers)

	if cfg.Bot.Mode == config.ModeWebhook {
		err = serveWebhook(ctx, cfg, tg, d)
	} else {
		err = servePolling(ctx, cfg, tg, d)
	}
	logger.Info(context.Background(), "bot stopped", "pending_reminders", reminders.Pending())
	return err
}

func servePolling(ctx context.Context, cfg *config.Config, tg *telegram.Client, d *telegram.Dispatcher) error {
	// getUpdates is refused while a webhook is registered.
	if err := tg.DeleteWebhook(ctx); err != nil {
		logger.Warn(ctx, "delete webhook failed", "error", err)
	}
	return telegram.NewPoller(tg, d, config.MustDuration(cfg.Bot.PollTimeout)).Run(ctx)
}

func serveWebhook(ctx context.Context, cfg *config.Config, tg *telegram.Client, d *telegram.Dispatcher) error {
	hook := telegram.NewWebhook(cfg.Bot.WebhookSecret, d)
	srv := &http.Server{
		Addr:              cfg.Bot.WebhookAddr,
		Handler:           hook.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	url := strings.TrimRight(cfg.Bot.WebhookURL, "/") + "/telegram/" + cfg.Bot.WebhookSecret
	if err := tg.SetWebhook(ctx, url); err != nil {
		srv.Close()
		return fmt.Errorf("set webhook: %w", err)
	}
	logger.Info(ctx, "webhook listening", "addr", cfg.Bot.WebhookAddr)

	select {
	case <-ctx.Done():
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("webhook server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn(shutdownCtx, "webhook shutdown", "error", err)
	}
	d.Wait()
	return nil
}
