package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/malarbase/skillctl/internal/db"
	"github.com/malarbase/skillctl/internal/errors"
	"github.com/malarbase/skillctl/internal/gh"
	"github.com/malarbase/skillctl/internal/skill"
	"github.com/malarbase/skillctl/internal/source"
	"github.com/malarbase/skillctl/internal/staging"
)

var (
	updateFrom   string
	updateAuthor string
)

func init() {
	updateCmd.Flags().StringVar(&updateFrom, "from", "", "Source to re-import from (default: the skill's recorded source repo)")
	updateCmd.Flags().StringVar(&updateAuthor, "author", "", "Override the recorded author attribution")
	rootCmd.AddCommand(updateCmd)
}

var updateCmd = &cobra.Command{
	Use:   "update <skill>",
	Short: "Re-import a published skill and stage the new version",
	Long: `Fetch a fresh copy of a curated skill and stage it, preserving the
author attribution already recorded in the repository.

The source defaults to the metadata.repo recorded in the published
skill; pass --from to override it.

Example:
  skillctl update docx
  skillctl update docx --from anthropics/skills:document-skills/docx`,
	Args: cobra.ExactArgs(1),
	RunE: runUpdate,
}

type updateResult struct {
	Skill    string `json:"skill"`
	Author   string `json:"author"`
	Source   string `json:"source"`
	StagedAt string `json:"staged_at"`
}

func runUpdate(cmd *cobra.Command, args []string) error {
	name := args[0]
	cfg := GetConfig()
	ctx := cmd.Context()
	api := gh.NewAPI(ctx)

	// Find the published skill to recover author and source repo
	skills, err := fetchRemoteInventory(ctx, api, cfg.TargetRepo)
	if err != nil {
		return err
	}
	var published *remoteSkill
	for i := range skills {
		if skills[i].Name == name {
			published = &skills[i]
			break
		}
	}
	if published == nil {
		return errors.NotFound("skill %q is not published in %s", name, cfg.TargetRepo).
			WithSuggestion("Run 'skillctl list' to see published skills, or 'skillctl import' for new ones.")
	}

	author := updateAuthor
	if author == "" {
		author = published.Author
	}

	rawSource := updateFrom
	var tags []string
	if meta, err := fetchRemoteSkillMeta(ctx, api, cfg.TargetRepo, published.Path); err == nil && meta.Metadata != nil {
		tags = meta.Metadata.Tags
		if rawSource == "" && meta.Metadata.Repo != "" {
			rawSource = meta.Metadata.Repo
		}
	}
	if rawSource == "" {
		return errors.InvalidArgs("skill %q has no recorded source repo", name).
			WithSuggestion("Pass --from <source> to specify where to fetch the update.")
	}

	src, err := source.Parse(rawSource)
	if err != nil {
		return errors.InvalidArgs("%v", err)
	}

	tmp, err := os.MkdirTemp("", "skillctl-update-*")
	if err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tmp)

	skillDir := filepath.Join(tmp, name)
	sourceRepo := ""
	switch src.Type {
	case source.TypeLocal:
		if err := skill.CopyDir(src.LocalPath, skillDir); err != nil {
			return fmt.Errorf("failed to copy skill: %w", err)
		}
	case source.TypeGitHub:
		sourceRepo = src.String()
		VerboseOutput("Fetching %s:%s@%s...\n", src.RepoSlug(), src.Path, src.Ref)
		fetcher := source.NewFetcher()
		fetched, err := fetcher.Fetch(ctx, src, filepath.Join(tmp, "fetch"), source.MethodAuto)
		if err != nil {
			return errors.Wrap(err, errors.KindGeneral, "failed to fetch %s", rawSource)
		}
		if err := os.Rename(fetched, skillDir); err != nil {
			return fmt.Errorf("failed to move fetched skill: %w", err)
		}
	}

	if err := skill.EnsureMetadata(skillDir, author, sourceRepo, tags); err != nil {
		return errors.Wrap(err, errors.KindGeneral, "failed to update skill metadata")
	}
	if err := skill.ValidateDir(skillDir); err != nil {
		for _, p := range skill.ValidationErrors(err) {
			ErrorOutput("  - %s\n", p)
		}
		return errors.StateError("updated skill %s failed validation", name)
	}

	area, err := staging.New(cfg.GetStagingDir())
	if err != nil {
		return err
	}
	entry, err := area.Stage(skillDir, author, name)
	if err != nil {
		return err
	}

	recordActivity(db.ActionUpdate, name, author, rawSource)

	result := updateResult{
		Skill:    name,
		Author:   author,
		Source:   rawSource,
		StagedAt: entry.Dir,
	}

	if IsJSON() {
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	OutputLine("Staged updated %s/%s at %s", author, name, entry.Dir)
	OutputLine("")
	OutputLine("Next: skillctl ship")

	return nil
}
