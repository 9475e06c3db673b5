package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ggokuldas06/LegalAI/internal/history"
)

var (
	histMode  string
	histPage  int
	histLimit int

	exportMode string
	exportFrom string
	exportTo   string
	exportOut  string
)

// historyCmd browses past chat exchanges stored server-side.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse past chat exchanges",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List past exchanges",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireLogin(); err != nil {
			return err
		}
		err := histStore.Fetch(cmd.Context(), history.ListParams{
			Mode:  histMode,
			Page:  histPage,
			Limit: histLimit,
		})
		if err != nil {
			return err
		}
		entries := histStore.Entries()
		if len(entries) == 0 {
			fmt.Println("No history.")
			return nil
		}
		for _, e := range entries {
			prompt := e.Prompt
			if len(prompt) > 60 {
				prompt = prompt[:57] + "..."
			}
			fmt.Printf("%6d  %s  [%s] %s\n", e.ID, e.CreatedAt, e.Mode, prompt)
		}
		fmt.Printf("Total: %d\n", histStore.Total())
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one exchange in full",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireLogin(); err != nil {
			return err
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid history id %q", args[0])
		}
		e, err := histStore.Get(cmd.Context(), id)
		if err != nil {
			return err
		}
		fmt.Printf("id:      %d\nmode:    %s\ncreated: %s\ntokens:  %d in / %d out, %dms\n\n",
			e.ID, e.Mode, e.CreatedAt, e.TokensIn, e.TokensOut, e.LatencyMS)
		fmt.Printf("> %s\n\n%s\n", e.Prompt, e.Response)
		if len(e.Citations) > 0 {
			fmt.Printf("\ncitations: %s\n", e.Citations)
		}
		return nil
	},
}

var historyRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete one exchange",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireLogin(); err != nil {
			return err
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid history id %q", args[0])
		}
		if err := histStore.Delete(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Printf("Deleted exchange %d\n", id)
		return nil
	},
}

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export history as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireLogin(); err != nil {
			return err
		}
		raw, err := histStore.Export(cmd.Context(), history.ExportFilters{
			Mode:     exportMode,
			DateFrom: exportFrom,
			DateTo:   exportTo,
		})
		if err != nil {
			return err
		}
		if exportOut == "" || exportOut == "-" {
			fmt.Println(string(raw))
			return nil
		}
		if err := os.WriteFile(exportOut, raw, 0o644); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", exportOut)
		return nil
	},
}

func init() {
	historyListCmd.Flags().StringVar(&histMode, "mode", "", "filter by chat mode (A, B or C)")
	historyListCmd.Flags().IntVar(&histPage, "page", 0, "page number")
	historyListCmd.Flags().IntVar(&histLimit, "limit", 0, "page size")

	historyExportCmd.Flags().StringVar(&exportMode, "mode", "", "filter by chat mode")
	historyExportCmd.Flags().StringVar(&exportFrom, "from", "", "start date (YYYY-MM-DD)")
	historyExportCmd.Flags().StringVar(&exportTo, "to", "", "end date (YYYY-MM-DD)")
	historyExportCmd.Flags().StringVarP(&exportOut, "output", "o", "", "write to file instead of stdout")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyRmCmd)
	historyCmd.AddCommand(historyExportCmd)
}
