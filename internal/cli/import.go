package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/malarbase/skillctl/internal/db"
	"github.com/malarbase/skillctl/internal/errors"
	"github.com/malarbase/skillctl/internal/skill"
	"github.com/malarbase/skillctl/internal/source"
	"github.com/malarbase/skillctl/internal/staging"
)

var (
	importAuthor string
	importRef    string
	importTags   []string
	importName   string
	importForce  bool
)

func init() {
	importCmd.Flags().StringVar(&importAuthor, "author", "", "Author to attribute the skill to (default from config)")
	importCmd.Flags().StringVar(&importRef, "ref", "", "Git ref to fetch (default main)")
	importCmd.Flags().StringSliceVar(&importTags, "tags", nil, "Tags to set in skill metadata")
	importCmd.Flags().StringVar(&importName, "name", "", "Override the skill name")
	importCmd.Flags().BoolVar(&importForce, "force", false, "Stage even when validation fails")
	rootCmd.AddCommand(importCmd)
}

var importCmd = &cobra.Command{
	Use:   "import <source>",
	Short: "Fetch a skill and stage it for review",
	Long: `Fetch a skill from a source and copy it into the staging area.

Sources:
  https://github.com/owner/repo/tree/ref/path/to/skill
  owner/repo:path/to/skill
  ./local/skill-directory

The skill's metadata block is filled in during import: author, source
repo, and tags (derived from the name when not given). Validation runs
before staging; use --force to stage a skill that fails validation.

Example:
  skillctl import anthropics/skills:document-skills/docx --author anthropic`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

type importResult struct {
	Skill    string   `json:"skill"`
	Author   string   `json:"author"`
	Source   string   `json:"source"`
	StagedAt string   `json:"staged_at"`
	Valid    bool     `json:"valid"`
	Problems []string `json:"problems,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

func runImport(cmd *cobra.Command, args []string) error {
	src, err := source.Parse(args[0])
	if err != nil {
		return errors.InvalidArgs("%v", err)
	}
	if importRef != "" && src.Type == source.TypeGitHub {
		src.Ref = importRef
	}

	cfg := GetConfig()
	ctx := cmd.Context()

	name := importName
	if name == "" {
		name = src.SkillName()
	}
	if err := skill.ValidateName(name); err != nil {
		return errors.InvalidArgs("%v", err).
			WithSuggestion("Pass --name to override the skill name.")
	}

	author := importAuthor
	if author == "" {
		author = cfg.GetAuthor()
	}

	tmp, err := os.MkdirTemp("", "skillctl-import-*")
	if err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tmp)

	// Materialize the skill into a work directory named after the skill.
	// Imports never mutate local source directories in place.
	workDir := filepath.Join(tmp, name)
	switch src.Type {
	case source.TypeLocal:
		info, err := os.Stat(src.LocalPath)
		if err != nil || !info.IsDir() {
			return errors.NotFound("skill directory not found: %s", src.LocalPath)
		}
		if err := skill.CopyDir(src.LocalPath, workDir); err != nil {
			return fmt.Errorf("failed to copy skill: %w", err)
		}

	case source.TypeGitHub:
		VerboseOutput("Fetching %s:%s@%s...\n", src.RepoSlug(), src.Path, src.Ref)
		fetcher := source.NewFetcher()
		fetched, err := fetcher.Fetch(ctx, src, filepath.Join(tmp, "fetch"), source.MethodAuto)
		if err != nil {
			return errors.Wrap(err, errors.KindGeneral, "failed to fetch %s", args[0])
		}
		if err := os.Rename(fetched, workDir); err != nil {
			return fmt.Errorf("failed to move fetched skill: %w", err)
		}
	}

	sourceRepo := ""
	if src.Type == source.TypeGitHub {
		sourceRepo = src.String()
	}

	if err := skill.EnsureMetadata(workDir, author, sourceRepo, importTags); err != nil {
		return errors.Wrap(err, errors.KindGeneral, "failed to update skill metadata")
	}

	result := importResult{
		Skill:  name,
		Author: author,
		Source: args[0],
		Valid:  true,
	}

	if err := skill.ValidateDir(workDir); err != nil {
		result.Valid = false
		result.Problems = skill.ValidationErrors(err)
		if !importForce {
			for _, p := range result.Problems {
				ErrorOutput("  - %s\n", p)
			}
			return errors.StateError("skill %s failed validation", name).
				WithSuggestion("Fix the problems above, or pass --force to stage anyway.")
		}
	}
	if warning, ok := skill.LineCountWarning(workDir); ok {
		result.Warnings = append(result.Warnings, warning)
	}

	area, err := staging.New(cfg.GetStagingDir())
	if err != nil {
		return err
	}
	entry, err := area.Stage(workDir, author, name)
	if err != nil {
		return err
	}
	result.StagedAt = entry.Dir

	recordActivity(db.ActionImport, name, author, args[0])

	if IsJSON() {
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	OutputLine("Staged %s/%s at %s", author, name, entry.Dir)
	for _, w := range result.Warnings {
		OutputLine("Warning: %s", w)
	}
	if !result.Valid {
		OutputLine("Staged with %d validation problem(s):", len(result.Problems))
		for _, p := range result.Problems {
			OutputLine("  - %s", p)
		}
	}
	if len(importTags) > 0 {
		OutputLine("Tags: %s", strings.Join(importTags, ", "))
	}
	OutputLine("")
	OutputLine("Next: skillctl validate, then skillctl ship")

	return nil
}
