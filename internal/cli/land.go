package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/malarbase/skillctl/internal/db"
	"github.com/malarbase/skillctl/internal/errors"
	"github.com/malarbase/skillctl/internal/gh"
	"github.com/malarbase/skillctl/internal/inventory"
)

func init() {
	rootCmd.AddCommand(landCmd)
}

var landCmd = &cobra.Command{
	Use:   "land <pr-number>",
	Short: "Squash-merge a pull request and refresh the inventory",
	Long: `Squash-merge the given pull request into the curated repository,
then regenerate the README's Skills Inventory section and push the
update to main.

Example:
  skillctl land 42`,
	Args: cobra.ExactArgs(1),
	RunE: runLand,
}

type landResult struct {
	PR               int    `json:"pr"`
	Repo             string `json:"repo"`
	Merged           bool   `json:"merged"`
	InventoryUpdated bool   `json:"inventory_updated"`
}

func runLand(cmd *cobra.Command, args []string) error {
	number, err := strconv.Atoi(args[0])
	if err != nil {
		return errors.InvalidArgs("invalid pull request number: %s", args[0])
	}

	cfg := GetConfig()
	ctx := cmd.Context()

	ghClient := gh.NewClient()
	if err := ghClient.Available(ctx); err != nil {
		return errors.Wrap(err, errors.KindStateError, "GitHub CLI unavailable").
			WithSuggestion(SuggestGhAuth)
	}

	branch, err := ghClient.PRBranch(ctx, cfg.TargetRepo, number)
	if err != nil {
		return errors.Wrap(err, errors.KindNotFound, "pull request #%d not found in %s", number, cfg.TargetRepo)
	}

	VerboseOutput("Merging #%d (%s)...\n", number, branch)
	if err := ghClient.MergePR(ctx, cfg.TargetRepo, number); err != nil {
		return err
	}
	markShipmentMerged(branch)
	recordActivity(db.ActionLand, "", "", fmt.Sprintf("merged #%d (%s)", number, branch))

	result := landResult{PR: number, Repo: cfg.TargetRepo, Merged: true}

	// Regenerate the README inventory on a fresh clone of main
	tmp, err := os.MkdirTemp("", "skillctl-land-*")
	if err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tmp)

	cloneDir := filepath.Join(tmp, "repo")
	repo, err := gh.CloneForContribution(ctx, cfg.TargetRepo, "main", "skillctl/inventory", cloneDir)
	if err != nil {
		return err
	}
	if err := repo.Checkout(ctx, "main"); err != nil {
		return err
	}

	items, err := inventory.Scan(repo.Dir)
	if err != nil {
		return err
	}
	changed, err := inventory.UpdateReadme(repo.Dir, items)
	if err != nil {
		return err
	}

	if changed {
		if err := repo.AddAll(ctx, "README.md"); err != nil {
			return err
		}
		if err := repo.Commit(ctx, "Update skills inventory"); err != nil {
			return err
		}
		if err := repo.Push(ctx); err != nil {
			return err
		}
		result.InventoryUpdated = true
	}

	if IsJSON() {
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	OutputLine("Merged #%d into %s", number, cfg.TargetRepo)
	if result.InventoryUpdated {
		OutputLine("Updated the README skills inventory (%d skills)", len(items))
	} else {
		OutputLine("README skills inventory already current")
	}

	return nil
}
