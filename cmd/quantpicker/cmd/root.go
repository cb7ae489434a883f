package cmd

import (
	"fmt"
	"os"

	"QuantPicker/internal/config"
	"QuantPicker/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfgPath     string
	cfg         *config.Config
	flushLogger = func() {}
)

var rootCmd = &cobra.Command{
	Use:   "quantpicker",
	Short: "Rank stocks by a windowed technical score",
	Long: `QuantPicker scores daily OHLCV history with a fixed set of window rules
(volume contraction, moving-average order, 20-day breakout, MA60 support,
bullish stack, momentum, drawdown from the 60-day high) and ranks a ticker
universe by total = S + delta*2.7 - P.

Examples:
  quantpicker rank --limit 30
  quantpicker rank --tickers 600519,000001 --format csv --out ranking.csv
  quantpicker score 600519
  quantpicker serve --addr :8080
  quantpicker run`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		flush, err := logging.Setup(c.Log.Level, c.Log.Format)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		cfg, flushLogger = c, flush
		zap.S().Debugf("config loaded from %s", cfgPath)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		flushLogger()
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	def := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		def = v
	}
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", def, "path to YAML config file")
}
