package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ggokuldas06/LegalAI/internal/session"
)

var (
	setTemperature  float64
	setMaxTokens    int
	setTopP         float64
	setTopK         int
	setJurisdiction string
	setYearFrom     int
	setYearTo       int
	setInclude      []string
	setExclude      []string

	orgJurisdictions []string
	orgClauses       []string
)

// settingsCmd manages the user's inference and default-filter settings.
var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or update your settings",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireLogin(); err != nil {
			return err
		}
		if err := sess.FetchProfile(cmd.Context()); err != nil {
			return err
		}
		st := sess.Settings()
		if st == nil {
			fmt.Println("No settings on record.")
			return nil
		}
		fmt.Printf("temperature:          %.2f\n", st.Temperature)
		fmt.Printf("max_tokens:           %d\n", st.MaxTokens)
		fmt.Printf("top_p:                %.2f\n", st.TopP)
		fmt.Printf("top_k:                %d\n", st.TopK)
		fmt.Printf("default_jurisdiction: %s\n", orDash(st.DefaultJurisdiction))
		fmt.Printf("default_year_from:    %s\n", intPtrOrDash(st.DefaultYearFrom))
		fmt.Printf("default_year_to:      %s\n", intPtrOrDash(st.DefaultYearTo))
		fmt.Printf("keywords_include:     %s\n", orDash(strings.Join(st.DefaultKeywordsInclude, ", ")))
		fmt.Printf("keywords_exclude:     %s\n", orDash(strings.Join(st.DefaultKeywordsExclude, ", ")))
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update settings",
	Long: `Update settings. Unset flags keep their current values, so fetch
the current settings first and only apply what changed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireLogin(); err != nil {
			return err
		}
		if err := sess.FetchProfile(cmd.Context()); err != nil {
			return err
		}

		var st session.Settings
		if cur := sess.Settings(); cur != nil {
			st = *cur
		}
		flags := cmd.Flags()
		if flags.Changed("temperature") {
			st.Temperature = setTemperature
		}
		if flags.Changed("max-tokens") {
			st.MaxTokens = setMaxTokens
		}
		if flags.Changed("top-p") {
			st.TopP = setTopP
		}
		if flags.Changed("top-k") {
			st.TopK = setTopK
		}
		if flags.Changed("jurisdiction") {
			st.DefaultJurisdiction = setJurisdiction
		}
		if flags.Changed("year-from") {
			st.DefaultYearFrom = &setYearFrom
		}
		if flags.Changed("year-to") {
			st.DefaultYearTo = &setYearTo
		}
		if flags.Changed("include") {
			st.DefaultKeywordsInclude = setInclude
		}
		if flags.Changed("exclude") {
			st.DefaultKeywordsExclude = setExclude
		}

		if err := sess.UpdateSettings(cmd.Context(), st); err != nil {
			return err
		}
		fmt.Println("Settings updated.")
		return nil
	},
}

// orgCmd manages the organization profile.
var orgCmd = &cobra.Command{
	Use:   "org",
	Short: "Show or update the organization profile",
}

var orgShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the organization profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireLogin(); err != nil {
			return err
		}
		if err := sess.FetchProfile(cmd.Context()); err != nil {
			return err
		}
		p := sess.OrgProfile()
		if p == nil {
			fmt.Println("No organization profile on record.")
			return nil
		}
		fmt.Printf("jurisdictions: %s\n", orDash(strings.Join(p.Jurisdictions, ", ")))
		fmt.Printf("clause_set:    %s\n", orDash(strings.Join(p.ClauseSet, ", ")))
		return nil
	},
}

var orgSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update the organization profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireLogin(); err != nil {
			return err
		}
		if err := sess.FetchProfile(cmd.Context()); err != nil {
			return err
		}

		var p session.OrgProfile
		if cur := sess.OrgProfile(); cur != nil {
			p = *cur
		}
		flags := cmd.Flags()
		if flags.Changed("jurisdictions") {
			p.Jurisdictions = orgJurisdictions
		}
		if flags.Changed("clauses") {
			p.ClauseSet = orgClauses
		}

		if err := sess.UpdateOrgProfile(cmd.Context(), p); err != nil {
			return err
		}
		fmt.Println("Organization profile updated.")
		return nil
	},
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func intPtrOrDash(p *int) string {
	if p == nil {
		return "-"
	}
	return strconv.Itoa(*p)
}

func init() {
	settingsSetCmd.Flags().Float64Var(&setTemperature, "temperature", 0, "sampling temperature")
	settingsSetCmd.Flags().IntVar(&setMaxTokens, "max-tokens", 0, "maximum response tokens")
	settingsSetCmd.Flags().Float64Var(&setTopP, "top-p", 0, "nucleus sampling cutoff")
	settingsSetCmd.Flags().IntVar(&setTopK, "top-k", 0, "top-k sampling cutoff")
	settingsSetCmd.Flags().StringVar(&setJurisdiction, "jurisdiction", "", "default jurisdiction for case-law filters")
	settingsSetCmd.Flags().IntVar(&setYearFrom, "year-from", 0, "default start year for case-law filters")
	settingsSetCmd.Flags().IntVar(&setYearTo, "year-to", 0, "default end year for case-law filters")
	settingsSetCmd.Flags().StringSliceVar(&setInclude, "include", nil, "default include keywords")
	settingsSetCmd.Flags().StringSliceVar(&setExclude, "exclude", nil, "default exclude keywords")

	orgSetCmd.Flags().StringSliceVar(&orgJurisdictions, "jurisdictions", nil, "organization jurisdictions")
	orgSetCmd.Flags().StringSliceVar(&orgClauses, "clauses", nil, "organization clause set")

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	orgCmd.AddCommand(orgShowCmd)
	orgCmd.AddCommand(orgSetCmd)
}
