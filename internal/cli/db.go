package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/fever/internal/docdb"
	"github.com/ppiankov/fever/internal/reader"
	"github.com/ppiankov/fever/internal/sample"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	nonEmpty bool
	rawLines bool
)

// buildDBCmd represents the build-db command
var buildDBCmd = &cobra.Command{
	Use:   "build-db <wiki-pages.jsonl>...",
	Short: "Build the document store from wiki-pages JSONL dumps",
	Long: `Build-db loads {id, text, lines} records from one or more wiki-pages
JSONL files into the documents table. Page ids are NFD-normalized. An
existing store is updated in place; pages with the same id are replaced.

Example:
  fever build-db data/wiki-pages/*.jsonl --db data/fever/fever.db`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBuildDB,
}

// docsCmd represents the docs command
var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "List document ids in the store",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(viper.GetViper())
		if err != nil {
			return err
		}

		store, err := docdb.Open(cfg.Database.Path, logger)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		list := store.DocIDs
		if nonEmpty {
			list = store.NonEmptyDocIDs
		}
		ids, err := list(cmd.Context())
		if err != nil {
			return err
		}

		for _, id := range ids {
			fmt.Println(id)
		}
		return nil
	},
}

// linesCmd represents the lines command
var linesCmd = &cobra.Command{
	Use:   "lines <page>",
	Short: "Print the sentences of a page, one per line with its index",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(viper.GetViper())
		if err != nil {
			return err
		}

		store, err := docdb.Open(cfg.Database.Path, logger)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		if rawLines {
			records, err := store.GetLines(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Println(strings.Join(records, "\n"))
			return nil
		}

		resolver := reader.NewResolver(store, sample.New(cfg.Reader.Seed))
		sentences, err := resolver.DocLines(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		for i, s := range sentences {
			fmt.Printf("%d\t%s\n", i, s)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(buildDBCmd)
	rootCmd.AddCommand(docsCmd)
	rootCmd.AddCommand(linesCmd)

	docsCmd.Flags().BoolVar(&nonEmpty, "non-empty", false, "only list documents with non-blank text")
	linesCmd.Flags().BoolVar(&rawLines, "raw", false, "print the raw line records")
}

func runBuildDB(cmd *cobra.Command, args []string) (err error) {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}

	w, err := docdb.Create(cfg.Database.Path, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := w.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close store: %w", closeErr)
		}
	}()

	total := 0
	for _, path := range args {
		in, err := openInput(path)
		if err != nil {
			return err
		}
		n, err := w.Import(cmd.Context(), in)
		_ = in.Close()
		if err != nil {
			return fmt.Errorf("import %s: %w", path, err)
		}

		total += n
		logger.Debug("Imported file", zap.String("path", path), zap.Int("pages", n))
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ %s: %d pages\n", path, n)
		}
	}

	fmt.Fprintf(os.Stderr, "✓ Stored %d pages in %s\n", total, cfg.Database.Path)
	return nil
}
