package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/corpora/internal/chunking"
	"github.com/custodia-labs/corpora/internal/core/domain"
)

var strategyCmd = &cobra.Command{
	Use:   "strategy",
	Short: "Show or change the chunking strategy",
	Long: `Show or change the runtime chunking strategy.

The strategy is read fresh for every chunking job, so a change takes
effect immediately without restarting workers.

Available strategies:
  smart   - deterministic recursive splitting (default)
  agentic - LLM-suggested break points, falling back to smart`,
	RunE: runStrategyGet,
}

var strategyGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show the current chunking strategy",
	RunE:  runStrategyGet,
}

var strategySetCmd = &cobra.Command{
	Use:   "set <strategy>",
	Short: "Set the chunking strategy",
	Args:  cobra.ExactArgs(1),
	RunE:  runStrategySet,
}

func init() {
	strategyCmd.AddCommand(strategyGetCmd)
	strategyCmd.AddCommand(strategySetCmd)
	rootCmd.AddCommand(strategyCmd)
}

func runStrategyGet(cmd *cobra.Command, _ []string) error {
	if metaStore == nil {
		return errors.New("store not configured")
	}

	value, err := metaStore.Settings().Get(cmd.Context(), domain.SettingChunkingStrategy)
	if errors.Is(err, domain.ErrNotFound) {
		cmd.Printf("Chunking strategy: %s (default)\n", chunking.StrategySmart)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read strategy: %w", err)
	}

	cmd.Printf("Chunking strategy: %s\n", value)
	return nil
}

func runStrategySet(cmd *cobra.Command, args []string) error {
	if metaStore == nil {
		return errors.New("store not configured")
	}

	strategy := chunking.Strategy(args[0])
	if !strategy.IsValid() {
		return fmt.Errorf("unknown strategy %q (expected %s or %s)",
			args[0], chunking.StrategySmart, chunking.StrategyAgentic)
	}

	if err := metaStore.Settings().Set(cmd.Context(), domain.SettingChunkingStrategy, string(strategy)); err != nil {
		return fmt.Errorf("failed to set strategy: %w", err)
	}

	cmd.Printf("Chunking strategy set to: %s\n", strategy)
	return nil
}
