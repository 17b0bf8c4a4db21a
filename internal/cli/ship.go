package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/malarbase/skillctl/internal/db"
	"github.com/malarbase/skillctl/internal/errors"
	"github.com/malarbase/skillctl/internal/gh"
	"github.com/malarbase/skillctl/internal/skill"
	"github.com/malarbase/skillctl/internal/staging"
)

var (
	shipDraft  bool
	shipDryRun bool
)

func init() {
	shipCmd.Flags().BoolVar(&shipDraft, "draft", false, "Open the pull request as a draft")
	shipCmd.Flags().BoolVar(&shipDryRun, "dry-run", false, "Show what would be shipped without pushing")
	rootCmd.AddCommand(shipCmd)
}

var shipCmd = &cobra.Command{
	Use:   "ship",
	Short: "Publish staged skills as a pull request",
	Long: `Copy every staged skill into the curated repository on a new branch,
push it, and open a pull request.

When the current directory is a checkout of the target repository, the
branch is created there (the working tree must be clean). Otherwise a
fresh shallow clone is used. When you lack push access to the target
repository, the branch is pushed to a fork instead.

A single staged skill ships on curate/add-<name>; multiple skills ship
together on a curate/add-batch-* branch. Staging is cleared after the
pull request is opened.`,
	Args: cobra.NoArgs,
	RunE: runShip,
}

type shipResult struct {
	Branch  string   `json:"branch"`
	Repo    string   `json:"repo"`
	Head    string   `json:"head"`
	PRURL   string   `json:"pr_url,omitempty"`
	Skills  []string `json:"skills"`
	Draft   bool     `json:"draft,omitempty"`
	DryRun  bool     `json:"dry_run,omitempty"`
	Forked  bool     `json:"forked,omitempty"`
	LocalWD string   `json:"local_checkout,omitempty"`
}

// shipBranchName returns the branch a set of staged skills would ship on,
// or "" when nothing is staged.
func shipBranchName(entries []staging.Entry) string {
	switch len(entries) {
	case 0:
		return ""
	case 1:
		return "curate/add-" + entries[0].Name
	}
	return "curate/add-batch-" + uuid.NewString()[:8]
}

func runShip(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	ctx := cmd.Context()

	area, err := staging.New(cfg.GetStagingDir())
	if err != nil {
		return err
	}
	entries, err := area.List()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return errors.StateError("nothing staged to ship").
			WithSuggestion("Run 'skillctl import <source>' to stage a skill first.")
	}

	// All staged skills must validate before shipping
	var invalid []string
	for _, entry := range entries {
		if err := skill.ValidateDir(entry.Dir); err != nil {
			invalid = append(invalid, entry.Author+"/"+entry.Name)
		}
	}
	if len(invalid) > 0 {
		return errors.StateError("staged skills failed validation: %s", strings.Join(invalid, ", ")).
			WithSuggestion(SuggestValidateFirst)
	}

	branch := shipBranchName(entries)
	result := shipResult{
		Branch: branch,
		Repo:   cfg.TargetRepo,
		Head:   branch,
		Draft:  shipDraft,
		DryRun: shipDryRun,
	}
	for _, entry := range entries {
		result.Skills = append(result.Skills, entry.Author+"/"+entry.Name)
	}

	if shipDryRun {
		if IsJSON() {
			data, _ := json.MarshalIndent(result, "", "  ")
			fmt.Println(string(data))
			return nil
		}
		OutputLine("Would ship %d skill(s) to %s on branch %s:", len(entries), cfg.TargetRepo, branch)
		for _, entry := range entries {
			OutputLine("  %s -> %s", entry.Dir, entry.RelPath())
		}
		return nil
	}

	ghClient := gh.NewClient()
	if err := ghClient.Available(ctx); err != nil {
		return errors.Wrap(err, errors.KindStateError, "GitHub CLI unavailable").
			WithSuggestion(SuggestGhAuth)
	}

	// Work in the local checkout when CWD is the target repo
	repo, cleanup, err := prepareShipRepo(ctx, cfg.TargetRepo, branch, &result)
	if err != nil {
		return err
	}
	defer cleanup()

	// Copy staged skills into the checkout
	var relPaths []string
	for _, entry := range entries {
		dest := filepath.Join(repo.Dir, filepath.FromSlash(entry.RelPath()))
		if err := skill.ReplaceDir(entry.Dir, dest); err != nil {
			return fmt.Errorf("failed to copy %s into checkout: %w", entry.Name, err)
		}
		relPaths = append(relPaths, entry.RelPath())
	}

	if err := repo.AddAll(ctx, relPaths...); err != nil {
		return err
	}
	if err := repo.Commit(ctx, commitMessage(entries)); err != nil {
		return err
	}

	// Push to the target repo, or to a fork when we lack access
	api := gh.NewAPI(ctx)
	canPush, err := api.HasPushAccess(ctx, cfg.TargetRepo)
	if err != nil {
		VerboseOutput("Warning: could not determine push access: %v\n", err)
	}

	if canPush {
		if err := repo.Push(ctx); err != nil {
			return err
		}
	} else {
		VerboseOutput("No push access to %s, using a fork...\n", cfg.TargetRepo)
		forkSlug, err := ghClient.Fork(ctx, cfg.TargetRepo)
		if err != nil {
			return err
		}
		if err := repo.PushToFork(ctx, forkSlug); err != nil {
			return err
		}
		result.Forked = true
		result.Head = strings.Split(forkSlug, "/")[0] + ":" + branch
	}

	prURL, err := ghClient.CreatePR(ctx, gh.PROptions{
		Repo:  cfg.TargetRepo,
		Title: prTitle(entries),
		Body:  prBody(repo.Dir, entries),
		Head:  result.Head,
		Base:  "main",
		Draft: shipDraft,
	})
	if err != nil {
		return err
	}
	result.PRURL = prURL

	recordShipment(&db.Shipment{
		Branch: branch,
		Repo:   cfg.TargetRepo,
		PRURL:  prURL,
		Skills: result.Skills,
	})
	for _, entry := range entries {
		recordActivity(db.ActionShip, entry.Name, entry.Author, prURL)
	}

	if err := area.Clear(); err != nil {
		VerboseOutput("Warning: failed to clear staging: %v\n", err)
	}

	if IsJSON() {
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	OutputLine("Shipped %d skill(s) on %s", len(entries), branch)
	OutputLine("Pull request: %s", prURL)
	OutputLine("")
	OutputLine("Next: skillctl land <pr-number> after review")

	return nil
}

// prepareShipRepo returns a checkout with the ship branch checked out. When
// the current directory is inside a clean checkout of the target repo it is
// reused; otherwise a fresh shallow clone is made. The cleanup function
// restores the original branch or removes the temporary clone.
func prepareShipRepo(ctx context.Context, targetRepo, branch string, result *shipResult) (*gh.Repo, func(), error) {
	noop := func() {}

	cwd, err := os.Getwd()
	if err == nil && gh.IsGitRepo(cwd) {
		root, err := gh.Root(ctx, cwd)
		if err == nil {
			local := gh.OpenRepo(root)
			remoteURL, err := local.RemoteURL(ctx, "origin")
			if err == nil && gh.MatchesRepo(remoteURL, targetRepo) {
				clean, err := local.IsClean(ctx)
				if err != nil {
					return nil, noop, err
				}
				if !clean {
					return nil, noop, errors.StateError("local checkout of %s has uncommitted changes", targetRepo).
						WithSuggestion("Commit or stash your changes before shipping.")
				}

				original, err := local.CurrentBranch(ctx)
				if err != nil {
					return nil, noop, err
				}
				if err := local.Pull(ctx); err != nil {
					VerboseOutput("Warning: could not update %s: %v\n", original, err)
				}
				if err := local.CheckoutNew(ctx, branch); err != nil {
					return nil, noop, err
				}

				result.LocalWD = root
				cleanup := func() {
					if err := local.Checkout(ctx, original); err != nil {
						ErrorOutput("Warning: failed to restore branch %s: %v\n", original, err)
					}
				}
				return local, cleanup, nil
			}
		}
	}

	tmp, err := os.MkdirTemp("", "skillctl-ship-*")
	if err != nil {
		return nil, noop, fmt.Errorf("failed to create temp directory: %w", err)
	}

	cloneDir := filepath.Join(tmp, "repo")
	repo, err := gh.CloneForContribution(ctx, targetRepo, "main", branch, cloneDir)
	if err != nil {
		os.RemoveAll(tmp)
		return nil, noop, err
	}
	return repo, func() { os.RemoveAll(tmp) }, nil
}

func commitMessage(entries []staging.Entry) string {
	if len(entries) == 1 {
		return fmt.Sprintf("Add skill %s/%s", entries[0].Author, entries[0].Name)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Add %d skills\n\n", len(entries))
	for _, entry := range entries {
		fmt.Fprintf(&b, "- %s/%s\n", entry.Author, entry.Name)
	}
	return strings.TrimRight(b.String(), "\n")
}

func prTitle(entries []staging.Entry) string {
	if len(entries) == 1 {
		return fmt.Sprintf("Add skill: %s", entries[0].Name)
	}
	names := make([]string, len(entries))
	for i, entry := range entries {
		names[i] = entry.Name
	}
	return fmt.Sprintf("Add %d skills: %s", len(entries), strings.Join(names, ", "))
}

// prBody uses the repo's pull request template when present, appending the
// skill list; otherwise it generates a plain summary.
func prBody(repoDir string, entries []staging.Entry) string {
	var b strings.Builder

	templatePath := filepath.Join(repoDir, ".github", "pull_request_template.md")
	if data, err := os.ReadFile(templatePath); err == nil {
		b.Write(data)
		b.WriteString("\n\n")
	}

	b.WriteString("## Skills\n\n")
	for _, entry := range entries {
		desc := ""
		if s, err := skill.Load(entry.Dir); err == nil {
			desc = " - " + s.Description
		}
		fmt.Fprintf(&b, "- `%s`%s\n", entry.RelPath(), desc)
	}
	return b.String()
}
