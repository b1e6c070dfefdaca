package cli

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/corpora/internal/core/domain"
	"github.com/custodia-labs/corpora/internal/tables"
)

var (
	tablesLimit    int
	tablesOffset   int
	tablesDocument string
	tablesFull     bool
)

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "Inspect extracted tables",
	RunE:  runTablesList,
}

var tablesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List extracted tables, newest first",
	RunE:  runTablesList,
}

func init() {
	for _, c := range []*cobra.Command{tablesCmd, tablesListCmd} {
		c.Flags().IntVar(&tablesLimit, "limit", 20, "maximum tables to list")
		c.Flags().IntVar(&tablesOffset, "offset", 0, "tables to skip")
		c.Flags().StringVar(&tablesDocument, "document", "", "list only this document's tables")
		c.Flags().BoolVar(&tablesFull, "full", false, "print full table contents")
	}
	tablesCmd.AddCommand(tablesListCmd)
	rootCmd.AddCommand(tablesCmd)
}

func runTablesList(cmd *cobra.Command, _ []string) error {
	if metaStore == nil {
		return errors.New("store not configured")
	}

	var (
		list []domain.ExtractedTable
		err  error
	)
	if tablesDocument != "" {
		list, err = metaStore.Tables().ListRange(cmd.Context(), tablesDocument, 1, math.MaxInt32)
	} else {
		list, err = metaStore.Tables().List(cmd.Context(), tablesLimit, tablesOffset)
	}
	if err != nil {
		return fmt.Errorf("failed to list tables: %w", err)
	}

	if len(list) == 0 {
		cmd.Println("No tables found.")
		return nil
	}

	for _, table := range list {
		cmd.Printf("%s  document=%s  page=%d  table=%d  %dx%d\n",
			table.ID, table.DocumentID, table.PageNum, table.TableIndex,
			table.RowCount, table.ColCount)
		if len(table.Headers) > 0 {
			cmd.Printf("  headers: %s\n", strings.Join(table.Headers, " | "))
		}
		if tablesFull {
			printTableRows(cmd, table.TextContent)
		}
	}
	cmd.Printf("%d table(s)\n", len(list))
	return nil
}

// printTableRows re-parses the stored marker block into rows.
func printTableRows(cmd *cobra.Command, textContent string) {
	headers, rows := tables.ParseContent(textContent)
	if len(headers) > 0 {
		cmd.Printf("  | %s |\n", strings.Join(headers, " | "))
	}
	for _, row := range rows {
		cmd.Printf("  | %s |\n", strings.Join(row, " | "))
	}
}
