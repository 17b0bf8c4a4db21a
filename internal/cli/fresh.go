package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/malarbase/skillctl/internal/errors"
	"github.com/malarbase/skillctl/internal/freshness"
)

var freshPatterns []string

func init() {
	freshMarkCmd.Flags().StringArrayVar(&freshPatterns, "pattern", nil, "Glob of described files, relative to the repo root (repeatable)")
	freshMarkCmd.MarkFlagRequired("pattern")

	freshCmd.AddCommand(freshMarkCmd)
	freshCmd.AddCommand(freshCheckCmd)
	freshCmd.AddCommand(freshRefreshCmd)
	rootCmd.AddCommand(freshCmd)
}

var freshCmd = &cobra.Command{
	Use:   "fresh",
	Short: "Manage freshness markers in context documents",
	Long: `Freshness markers record which source files a document describes and
a content hash taken at review time. When the described files change,
the document goes stale and should be re-reviewed.

Markers are HTML comments, so they are invisible in rendered markdown:

  <!-- freshness: pattern="internal/**/*.go" hash=sha256:... reviewed=2026-08-27 -->`,
}

var freshMarkCmd = &cobra.Command{
	Use:   "mark <file>",
	Short: "Embed or update a freshness marker in a document",
	Long: `Compute the hash of the files matched by the given patterns and write
a freshness marker into the document, replacing any existing marker.

Patterns are doublestar globs relative to the current directory:

  skillctl fresh mark docs/architecture.md --pattern 'internal/**/*.go'`,
	Args: cobra.ExactArgs(1),
	RunE: runFreshMark,
}

var freshCheckCmd = &cobra.Command{
	Use:   "check [path]",
	Short: "Report fresh and stale markers",
	Long: `Check freshness markers against the files on disk. With a file
argument, checks that document; with a directory or no argument, walks
it for marked markdown files.

Exits non-zero when any document is stale.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFreshCheck,
}

var freshRefreshCmd = &cobra.Command{
	Use:   "refresh <file>",
	Short: "Recompute a marker's hash and stamp today's date",
	Long: `Recompute the content hash for a document's existing marker and
update the reviewed date. Run this after re-reviewing a stale document.`,
	Args: cobra.ExactArgs(1),
	RunE: runFreshRefresh,
}

func runFreshMark(cmd *cobra.Command, args []string) error {
	root, err := os.Getwd()
	if err != nil {
		return err
	}

	marker, err := freshness.Mark(root, args[0], freshPatterns)
	if err != nil {
		return err
	}

	if IsJSON() {
		out := struct {
			File     string   `json:"file"`
			Patterns []string `json:"patterns"`
			Hash     string   `json:"hash"`
			Reviewed string   `json:"reviewed"`
		}{args[0], marker.Patterns, marker.Hash, marker.Reviewed}
		data, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	OutputLine("Marked %s (hash %s, reviewed %s)", args[0], marker.Hash, marker.Reviewed)
	return nil
}

func runFreshCheck(cmd *cobra.Command, args []string) error {
	root, err := os.Getwd()
	if err != nil {
		return err
	}

	// Collect the documents to check
	var files []string
	if len(args) == 1 {
		info, err := os.Stat(args[0])
		if err != nil {
			return errors.NotFound("no such file or directory: %s", args[0])
		}
		if info.IsDir() {
			files, err = freshness.FindMarked(args[0])
			if err != nil {
				return err
			}
		} else {
			files = []string{args[0]}
		}
	} else {
		files, err = freshness.FindMarked(root)
		if err != nil {
			return err
		}
	}

	var results []freshness.Result
	stale := 0
	for _, file := range files {
		result, found, err := freshness.CheckFile(root, file)
		if err != nil {
			return err
		}
		if !found {
			continue
		}
		results = append(results, result)
		if !result.Fresh {
			stale++
		}
	}

	if IsJSON() {
		if results == nil {
			results = []freshness.Result{}
		}
		data, _ := json.MarshalIndent(results, "", "  ")
		fmt.Println(string(data))
	} else {
		if len(results) == 0 {
			OutputLine("No freshness markers found.")
			return nil
		}
		fresh := color.New(color.FgGreen).SprintFunc()
		staleC := color.New(color.FgRed).SprintFunc()
		for _, r := range results {
			if r.Fresh {
				OutputLine("%s %s (reviewed %s)", fresh("fresh"), r.File, r.Reviewed)
			} else {
				OutputLine("%s %s (reviewed %s)", staleC("STALE"), r.File, r.Reviewed)
			}
		}
	}

	if stale > 0 {
		return errors.General("%d document(s) are stale", stale).
			WithSuggestion("Re-review each stale document, then run 'skillctl fresh refresh <file>'.")
	}
	return nil
}

func runFreshRefresh(cmd *cobra.Command, args []string) error {
	root, err := os.Getwd()
	if err != nil {
		return err
	}

	marker, err := freshness.Refresh(root, args[0])
	if err != nil {
		return err
	}

	if IsJSON() {
		out := struct {
			File     string   `json:"file"`
			Patterns []string `json:"patterns"`
			Hash     string   `json:"hash"`
			Reviewed string   `json:"reviewed"`
		}{args[0], marker.Patterns, marker.Hash, marker.Reviewed}
		data, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	OutputLine("Refreshed %s (hash %s, reviewed %s)", args[0], marker.Hash, marker.Reviewed)
	return nil
}
