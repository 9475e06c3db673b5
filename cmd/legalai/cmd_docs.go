package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ggokuldas06/LegalAI/internal/documents"
)

var (
	docsListDoctype string
	docsListSearch  string
	docsListPage    int

	uploadDoctype      string
	uploadTitle        string
	uploadJurisdiction string
	uploadDate         string
	uploadSource       string

	ingestReindex bool
	searchK       int
)

// docsCmd manages uploaded documents.
var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Manage uploaded documents",
	Long: `List, upload, inspect and delete documents, and manage the
retrieval index built over them.`,
}

var docsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireLogin(); err != nil {
			return err
		}
		err := docStore.Fetch(cmd.Context(), documents.ListParams{
			Doctype: docsListDoctype,
			Search:  docsListSearch,
			Page:    docsListPage,
		})
		if err != nil {
			return err
		}
		docs := docStore.Documents()
		if len(docs) == 0 {
			fmt.Println("No documents.")
			return nil
		}
		for _, d := range docs {
			extra := ""
			if d.Jurisdiction != "" {
				extra = " [" + d.Jurisdiction + "]"
			}
			fmt.Printf("%6d  %-10s %s%s\n", d.ID, d.Doctype, d.Title, extra)
		}
		fmt.Printf("Total: %d\n", docStore.Total())
		return nil
	},
}

var docsUploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireLogin(); err != nil {
			return err
		}
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		title := uploadTitle
		if title == "" {
			title = filepath.Base(args[0])
		}
		doc, err := docStore.Upload(cmd.Context(), filepath.Base(args[0]), f, documents.UploadMeta{
			Doctype:      uploadDoctype,
			Title:        title,
			Jurisdiction: uploadJurisdiction,
			Date:         uploadDate,
			Source:       uploadSource,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Uploaded %q as document %d\n", doc.Title, doc.ID)
		return nil
	},
}

var docsRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireLogin(); err != nil {
			return err
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid document id %q", args[0])
		}
		if err := docStore.Delete(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Printf("Deleted document %d\n", id)
		return nil
	},
}

var docsContentCmd = &cobra.Command{
	Use:   "content <id>",
	Short: "Print a document's extracted text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireLogin(); err != nil {
			return err
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid document id %q", args[0])
		}
		content, err := docStore.Content(cmd.Context(), id)
		if err != nil {
			return err
		}
		fmt.Println(content.Content)
		return nil
	},
}

var docsIngestCmd = &cobra.Command{
	Use:   "ingest [id]",
	Short: "Index a document for retrieval (all documents when no id given)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireLogin(); err != nil {
			return err
		}
		if len(args) == 0 {
			if err := docStore.Fetch(cmd.Context(), documents.ListParams{}); err != nil {
				return err
			}
			if err := docStore.IngestAll(cmd.Context(), ingestReindex); err != nil {
				return err
			}
			fmt.Printf("Ingested %d documents\n", len(docStore.Documents()))
			return nil
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid document id %q", args[0])
		}
		res, err := docStore.Ingest(cmd.Context(), id, ingestReindex)
		if err != nil {
			return err
		}
		fmt.Printf("Ingested document %d (%d chunks)\n", res.DocumentID, res.Chunks)
		return nil
	},
}

var docsSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the retrieval index",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireLogin(); err != nil {
			return err
		}
		query := args[0]
		for _, a := range args[1:] {
			query += " " + a
		}
		hits, err := docStore.Search(cmd.Context(), query, searchK, nil)
		if err != nil {
			return err
		}
		if len(hits) == 0 {
			fmt.Println("No results.")
			return nil
		}
		for _, h := range hits {
			fmt.Printf("doc %d chunk %d (%.3f)\n", h.DocumentID, h.ChunkID, h.Score)
			if h.Heading != "" {
				fmt.Printf("  %s\n", h.Heading)
			}
			fmt.Printf("  %s\n", h.Text)
		}
		return nil
	},
}

var docsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show retrieval index statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireLogin(); err != nil {
			return err
		}
		stats, err := docStore.Stats(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("documents: %d\nchunks:    %d\nvectors:   %d\n", stats.Documents, stats.Chunks, stats.Vectors)
		return nil
	},
}

func init() {
	docsListCmd.Flags().StringVar(&docsListDoctype, "doctype", "", "filter by document type")
	docsListCmd.Flags().StringVar(&docsListSearch, "search", "", "filter by title search")
	docsListCmd.Flags().IntVar(&docsListPage, "page", 0, "page number")

	docsUploadCmd.Flags().StringVar(&uploadDoctype, "doctype", "contract", "document type")
	docsUploadCmd.Flags().StringVar(&uploadTitle, "title", "", "title (defaults to the file name)")
	docsUploadCmd.Flags().StringVar(&uploadJurisdiction, "jurisdiction", "", "jurisdiction code")
	docsUploadCmd.Flags().StringVar(&uploadDate, "date", "", "document date (YYYY-MM-DD)")
	docsUploadCmd.Flags().StringVar(&uploadSource, "source", "", "original source or URL")

	docsIngestCmd.Flags().BoolVar(&ingestReindex, "reindex", false, "rebuild the index even if already ingested")
	docsSearchCmd.Flags().IntVarP(&searchK, "top", "k", 10, "number of results")

	docsCmd.AddCommand(docsListCmd)
	docsCmd.AddCommand(docsUploadCmd)
	docsCmd.AddCommand(docsRmCmd)
	docsCmd.AddCommand(docsContentCmd)
	docsCmd.AddCommand(docsIngestCmd)
	docsCmd.AddCommand(docsSearchCmd)
	docsCmd.AddCommand(docsStatsCmd)
}
