// Package cli provides the cobra command tree for the corpora pipeline.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/corpora/internal/core/ports/driven"
	"github.com/custodia-labs/corpora/internal/core/ports/driving"
	"github.com/custodia-labs/corpora/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// Services bundles the collaborators the commands drive. main wires
// the adapters and hands them over before Execute.
type Services struct {
	Ingestor driving.Ingestor
	Parser   driving.Parser
	Store    driven.Store
	Queue    driven.JobQueue
	Config   driven.ConfigStore
}

var (
	ingestService driving.Ingestor
	parseService  driving.Parser
	metaStore     driven.Store
	jobQueue      driven.JobQueue
	configStore   driven.ConfigStore
)

var verboseFlag bool

var rootCmd = &cobra.Command{
	Use:   "corpora",
	Short: "Document ingestion and chunking pipeline",
	Long: `Corpora ingests documents into a content-addressed corpus:
files are deduplicated by content hash, text-native formats are
extracted directly, everything else is converted for OCR, and all
text is chunked for embedding.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false,
		"enable verbose pipeline logging")
}

// SetServices injects the wired services for the commands.
func SetServices(s *Services) {
	ingestService = s.Ingestor
	parseService = s.Parser
	metaStore = s.Store
	jobQueue = s.Queue
	configStore = s.Config
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
