package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ggokuldas06/LegalAI/internal/archive"
)

var (
	archiveMode  string
	archiveLimit int
)

// archiveCmd browses the local exchange archive. Works offline; no
// login required.
var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Browse locally archived chat exchanges",
}

// openArchive resolves the configured archive path.
func openArchive() (*archive.Archive, error) {
	path := cfg.Archive.Path
	if path == "" {
		var err error
		path, err = archive.DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("resolving archive path: %w", err)
		}
	}
	return archive.Open(path)
}

var archiveListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived exchanges, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		arc, err := openArchive()
		if err != nil {
			return err
		}
		defer arc.Close()

		exchanges, err := arc.Recent(archiveMode, archiveLimit)
		if err != nil {
			return err
		}
		if len(exchanges) == 0 {
			fmt.Println("Archive is empty.")
			return nil
		}
		for _, ex := range exchanges {
			prompt := ex.Prompt
			if len(prompt) > 60 {
				prompt = prompt[:57] + "..."
			}
			fmt.Printf("%6d  %s  [%s] %s\n", ex.ID, ex.CreatedAt.Format("2006-01-02 15:04"), ex.Mode, prompt)
		}
		return nil
	},
}

var archiveShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one archived exchange in full",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid archive id %q", args[0])
		}
		arc, err := openArchive()
		if err != nil {
			return err
		}
		defer arc.Close()

		// Recent with no mode filter walks newest-first; the archive is
		// small enough that scanning beats adding a by-id query path.
		exchanges, err := arc.Recent("", 0)
		if err != nil {
			return err
		}
		for _, ex := range exchanges {
			if ex.ID != id {
				continue
			}
			fmt.Printf("id:      %d\nmode:    %s\ncreated: %s\ntokens:  %d in / %d out, %dms\n\n",
				ex.ID, ex.Mode, ex.CreatedAt.Format("2006-01-02 15:04:05"), ex.TokensIn, ex.TokensOut, ex.LatencyMS)
			fmt.Printf("> %s\n\n%s\n", ex.Prompt, ex.Response)
			return nil
		}
		return fmt.Errorf("no archived exchange %d", id)
	},
}

var archiveRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete one archived exchange",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid archive id %q", args[0])
		}
		arc, err := openArchive()
		if err != nil {
			return err
		}
		defer arc.Close()

		if err := arc.Delete(id); err != nil {
			return err
		}
		fmt.Printf("Deleted archived exchange %d\n", id)
		return nil
	},
}

var archiveClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Wipe the local archive",
	RunE: func(cmd *cobra.Command, args []string) error {
		arc, err := openArchive()
		if err != nil {
			return err
		}
		defer arc.Close()

		if err := arc.Clear(); err != nil {
			return err
		}
		fmt.Println("Archive cleared.")
		return nil
	},
}

func init() {
	archiveListCmd.Flags().StringVar(&archiveMode, "mode", "", "filter by chat mode (A, B or C)")
	archiveListCmd.Flags().IntVar(&archiveLimit, "limit", 0, "maximum rows (default 50)")

	archiveCmd.AddCommand(archiveListCmd)
	archiveCmd.AddCommand(archiveShowCmd)
	archiveCmd.AddCommand(archiveRmCmd)
	archiveCmd.AddCommand(archiveClearCmd)
}
