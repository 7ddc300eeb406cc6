package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"FinCast/internal/di"
	domrepo "FinCast/internal/domain/repository"
	"FinCast/internal/usecase"
	"FinCast/pkg/config"
	xhttp "FinCast/pkg/http"
)

var (
	configPath string
	symbol     string
	timeframe  string
	modelKind  string
	artifactID string
	candles    int
	fromDate   string
	toDate     string
)

func main() {
	root := &cobra.Command{
		Use:           "fincast",
		Short:         "Market candle ingest and next-period direction forecasting",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "config/config.yaml", "config file path")

	root.AddCommand(serveCmd(), trainCmd(), predictCmd(), backtestCmd(), backfillCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	return config.LoadWithEnv(configPath)
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the ingest and forecasting server (blocks until signal)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			app, err := di.InitializeApp(cfg)
			if err != nil {
				return fmt.Errorf("app initialization: %w", err)
			}
			return app.Run()
		},
	}
}

func addForecastFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&symbol, "symbol", "s", "", "instrument symbol")
	cmd.Flags().StringVarP(&timeframe, "timeframe", "t", "1h", "candle timeframe (1m 5m 15m 1h 1d)")
	cmd.Flags().StringVar(&artifactID, "artifact", "", "artifact id (default <symbol>_<kind>)")
	_ = cmd.MarkFlagRequired("symbol")
}

func trainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a model from stored candles and save the artifact",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			env, err := newForecastEnv(cfg)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Minute)
			defer cancel()

			n := candles
			if n <= 0 {
				n = cfg.Model.TrainCandles
			}
			bars, err := env.store.GetLatestNCandles(ctx, symbol, n, domrepo.NormalizeTimeframe(timeframe))
			if err != nil {
				return fmt.Errorf("load candles: %w", err)
			}

			kind := resolveKind(cfg)
			res, err := env.trainer.TrainFromCandles(ctx, symbol, bars, kind, artifactID)
			if err != nil {
				return fmt.Errorf("train: %w", err)
			}
			fmt.Printf("trained %s kind=%s artifact=%s version=%s\n", res.Instrument, res.Kind, res.ArtifactID, res.Version)
			fmt.Printf("accuracy=%.4f precision=%.4f recall=%.4f f1=%.4f (train=%d test=%d)\n",
				res.Metrics.Accuracy, res.Metrics.Precision, res.Metrics.Recall, res.Metrics.F1,
				res.Metrics.TrainSize, res.Metrics.TestSize)
			return nil
		},
	}
	addForecastFlags(cmd)
	cmd.Flags().StringVarP(&modelKind, "kind", "k", "", "model kind (gbt random_forest svm)")
	cmd.Flags().IntVarP(&candles, "candles", "n", 0, "number of candles to train on")
	return cmd
}

func predictCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict the next-period direction for a symbol",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			env, err := newForecastEnv(cfg)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			n := candles
			if n <= 0 {
				n = cfg.Model.PredictCandles
			}
			bars, err := env.store.GetLatestNCandles(ctx, symbol, n, domrepo.NormalizeTimeframe(timeframe))
			if err != nil {
				return fmt.Errorf("load candles: %w", err)
			}
			rows, err := env.engine.Compute(bars)
			if err != nil {
				return fmt.Errorf("compute features: %w", err)
			}

			id := artifactID
			if id == "" {
				id = usecase.DefaultArtifactID(symbol, resolveKind(cfg))
			}
			if err := env.predictor.LoadModel(ctx, symbol, id); err != nil {
				return fmt.Errorf("load model: %w", err)
			}
			res, err := env.predictor.PredictNextDay(ctx, rows, symbol, cfg.Model.AlertThreshold)
			if err != nil {
				return fmt.Errorf("predict: %w", err)
			}
			fmt.Printf("%s: %s (confidence=%.4f, %s)", res.Instrument, res.Signal, res.Confidence, res.Sentiment)
			if res.AlertTriggered {
				fmt.Printf(" ALERT >= %.2f", res.Threshold)
			}
			fmt.Println()
			return nil
		},
	}
	addForecastFlags(cmd)
	cmd.Flags().IntVarP(&candles, "candles", "n", 0, "number of candles to compute features on")
	return cmd
}

func backtestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backtest",
		Short: "Replay an artifact over historical candles",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			env, err := newForecastEnv(cfg)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Minute)
			defer cancel()

			n := candles
			if n <= 0 {
				n = cfg.Model.TrainCandles
			}
			bars, err := env.store.GetLatestNCandles(ctx, symbol, n, domrepo.NormalizeTimeframe(timeframe))
			if err != nil {
				return fmt.Errorf("load candles: %w", err)
			}
			rows, err := env.engine.Compute(bars)
			if err != nil {
				return fmt.Errorf("compute features: %w", err)
			}

			id := artifactID
			if id == "" {
				id = usecase.DefaultArtifactID(symbol, resolveKind(cfg))
			}
			res, err := env.backtester.Run(ctx, symbol, id, rows)
			if err != nil {
				return fmt.Errorf("backtest: %w", err)
			}
			fmt.Printf("run=%s trades=%d wins=%d win_rate=%.4f avg_confidence=%.4f\n",
				res.RunID, res.TotalBacktests, res.Wins, res.WinRate, res.AverageConfidence)
			fmt.Printf("bull: precision=%.4f recall=%.4f  bear: precision=%.4f recall=%.4f\n",
				res.BullPrecision, res.BullRecall, res.BearPrecision, res.BearRecall)
			fmt.Printf("high-confidence: trades=%d wins=%d win_rate=%.4f skipped=%d\n",
				res.HighConfidenceTrades, res.HighConfidenceWins, res.HighConfidenceWinRate, res.SkippedRows)
			return nil
		},
	}
	addForecastFlags(cmd)
	cmd.Flags().IntVarP(&candles, "candles", "n", 0, "number of candles to replay")
	return cmd
}

func backfillCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Fetch historical candles over REST and store them",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			tf := domrepo.NormalizeTimeframe(timeframe)
			backfiller, err := newBackfiller(cfg, tf)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Minute)
			defer cancel()

			symbols := cfg.Market.Symbols
			if symbol != "" {
				symbols = []string{symbol}
			}
			now := time.Now().UTC()
			from := xhttp.ParseTimeDefault(fromDate, now.AddDate(0, -3, 0))
			to := xhttp.ParseTimeDefault(toDate, now)

			n, err := backfiller.Run(ctx, symbols, tf, from, to)
			if err != nil {
				return fmt.Errorf("backfill: %w", err)
			}
			fmt.Printf("backfilled %d candles (%s, %s to %s)\n",
				n, tf, from.Format(time.RFC3339), to.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVarP(&symbol, "symbol", "s", "", "instrument symbol (default: all configured symbols)")
	cmd.Flags().StringVarP(&timeframe, "timeframe", "t", "1h", "candle timeframe (1m 5m 15m 1h 1d)")
	cmd.Flags().StringVar(&fromDate, "from", "", "range start (RFC3339 or unix seconds, default 3 months ago)")
	cmd.Flags().StringVar(&toDate, "to", "", "range end (RFC3339 or unix seconds, default now)")
	return cmd
}
