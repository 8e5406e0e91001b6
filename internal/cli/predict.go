package cli

import (
	"fmt"
	"os"

	"github.com/ppiankov/fever/internal/pipeline"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	oracle        bool
	scorerKind    string
	scoresPath    string
	scorerModel   string
	scorerBaseURL string
	concurrency   int
	rps           float64
	httpProxy     string
	httpsProxy    string
)

// predictCmd represents the predict command
var predictCmd = &cobra.Command{
	Use:   "predict <input.jsonl>",
	Short: "Label claims from retrieved or gold evidence",
	Long: `Predict builds an instance for every input line, asks the scorer for
per-class scores and writes the arg-max label with the raw scores.

Input lines carry predicted_sentences ([[page, line], ...]) from a retrieval
step, or with --oracle the gold evidence groups. Claims whose evidence
resolves to no text are labelled NOT ENOUGH INFO without calling the scorer.

Scorers:
  file    precomputed scores keyed by claim id (--scores)
  openai  an OpenAI-compatible chat model (FEVER_SCORER_API_KEY or OPENAI_API_KEY)

Example:
  fever predict dev.predicted.jsonl --scores dev.scores.jsonl --out dev.predictions.jsonl
  fever predict dev.jsonl --oracle --scorer openai --concurrency 8 --rps 2`,
	Args: cobra.ExactArgs(1),
	RunE: runPredict,
}

func init() {
	rootCmd.AddCommand(predictCmd)

	predictCmd.Flags().StringVarP(&outPath, "out", "o", "", "output JSONL path (default: stdout)")
	predictCmd.Flags().BoolVar(&oracle, "oracle", false, "use gold evidence groups instead of predicted sentences")
	predictCmd.Flags().StringVar(&scorerKind, "scorer", "", "scorer backend: file, openai (default from config)")
	predictCmd.Flags().StringVar(&scoresPath, "scores", "", "scores JSONL for the file scorer")
	predictCmd.Flags().StringVar(&scorerModel, "model", "", "chat model for the openai scorer")
	predictCmd.Flags().StringVar(&scorerBaseURL, "base-url", "", "API base URL for the openai scorer")
	predictCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default from config)")
	predictCmd.Flags().Float64Var(&rps, "rps", 0, "scorer requests per second, 0 for unlimited (default from config)")
	predictCmd.Flags().StringVar(&httpProxy, "http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	predictCmd.Flags().StringVar(&httpsProxy, "https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")
}

func runPredict(cmd *cobra.Command, args []string) (err error) {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("scorer") {
		cfg.Scorer.Kind = scorerKind
	}
	if flags.Changed("scores") {
		cfg.Scorer.ScoresPath = scoresPath
		if !flags.Changed("scorer") {
			cfg.Scorer.Kind = "file"
		}
	}
	if flags.Changed("model") {
		cfg.Scorer.Model = scorerModel
	}
	if flags.Changed("base-url") {
		cfg.Scorer.BaseURL = scorerBaseURL
	}
	if flags.Changed("http-proxy") {
		cfg.Scorer.HTTPProxy = httpProxy
	}
	if flags.Changed("https-proxy") {
		cfg.Scorer.HTTPSProxy = httpsProxy
	}
	if flags.Changed("concurrency") {
		cfg.Concurrency.Workers = concurrency
	}
	if flags.Changed("rps") {
		cfg.RateLimiting.RequestsPerSecond = rps
	}

	p, err := pipeline.New(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = p.Close() }()

	s, err := p.NewScorer()
	if err != nil {
		return fmt.Errorf("create scorer: %w", err)
	}
	predictor, err := p.NewPredictor(s, oracle)
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "  Input:    %s\n", args[0])
		fmt.Fprintf(os.Stderr, "  Scorer:   %s\n", s.Name())
		fmt.Fprintf(os.Stderr, "  Workers:  %d\n", cfg.Concurrency.Workers)
		fmt.Fprintf(os.Stderr, "  Oracle:   %v\n", oracle)
		fmt.Fprintln(os.Stderr)
	}

	out, err := openOutput(outPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close output: %w", closeErr)
		}
	}()

	renderer := pipeline.NewRenderer(out)
	n, err := p.PredictFile(cmd.Context(), predictor, args[0], renderer)
	if flushErr := renderer.Flush(); flushErr != nil && err == nil {
		err = flushErr
	}
	if err != nil {
		return fmt.Errorf("predict %s: %w", args[0], err)
	}

	logger.Info("Wrote predictions", zap.Int("count", n), zap.String("scorer", s.Name()))
	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Wrote %d predictions\n", n)
	}
	return nil
}
