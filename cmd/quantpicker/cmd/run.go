package cmd

import (
	"fmt"
	"os"
	"strings"

	"QuantPicker/internal/notifier"
	"QuantPicker/internal/scheduler"
	"QuantPicker/internal/server"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runOpts struct {
	now   bool
	serve bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run scheduled rankings with Telegram reports and commands",
	Long: `Run starts the cron scheduler (schedule.rank_cron). When Telegram is
configured each run's top N is pushed to the chat and the bot answers
/top, /score <ticker> and /help. Stops on SIGINT/SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: runDaemon,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolVar(&runOpts.now, "now", false, "run one ranking immediately on start (also RUN_ON_START=true)")
	runCmd.Flags().BoolVar(&runOpts.serve, "serve", false, "also serve the HTTP API on server.addr")
}

func runDaemon(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	zap.S().Info("QuantPicker starting...")

	ctx, cancel := signalContext()
	defer cancel()

	col, err := newCollector(cfg)
	if err != nil {
		return err
	}
	rec := openRecorder(cfg)
	defer rec.Close()
	uni := newUniverse(cfg, "")

	var (
		n  notifier.Notifier
		tn *notifier.TelegramNotifier
	)
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		n = tn
	} else {
		zap.S().Warn("telegram not configured, reports are logged only")
	}

	sched := scheduler.NewScheduler(ctx, col, uni, n, rec, scheduler.Options{
		Days:  cfg.DataSource.Days,
		Limit: cfg.Universe.Limit,
		TopN:  cfg.Rank.TopN,
	})
	if err := sched.RegisterAll(cfg.Schedule.RankCron); err != nil {
		return fmt.Errorf("register cron tasks: %w", err)
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		zap.S().Info("telegram polling started")
	}

	if runOpts.now || envTrue("RUN_ON_START") {
		zap.S().Info("running ranking now")
		go func() {
			if _, err := sched.RunNow(); err != nil {
				zap.S().Errorf("initial ranking: %v", err)
			}
		}()
	}

	if runOpts.serve {
		srv := server.New(col, uni, rec, cfg.DataSource.Days, cfg.Universe.Limit)
		go func() {
			if err := srv.Run(ctx, cfg.Server.Addr); err != nil {
				zap.S().Errorf("server: %v", err)
				cancel()
			}
		}()
	}

	zap.S().Info("QuantPicker is running. Press Ctrl+C to stop.")
	<-ctx.Done()
	zap.S().Info("shutdown signal received, stopping...")
	return nil
}

func envTrue(key string) bool {
	return strings.EqualFold(os.Getenv(key), "true")
}
