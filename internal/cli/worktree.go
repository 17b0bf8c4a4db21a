package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/malarbase/skillctl/internal/bootstrap"
	"github.com/malarbase/skillctl/internal/errors"
)

var worktreeNoBootstrap bool

func init() {
	worktreeCreateCmd.Flags().BoolVar(&worktreeNoBootstrap, "no-bootstrap", false, "Skip environment bootstrapping")

	worktreeCmd.AddCommand(worktreeCreateCmd)
	worktreeCmd.AddCommand(worktreeRemoveCmd)
	worktreeCmd.AddCommand(worktreePathCmd)
	worktreeCmd.AddCommand(worktreeListCmd)

	rootCmd.AddCommand(worktreeCmd)
}

var worktreeCmd = &cobra.Command{
	Use:   "worktree",
	Short: "Manage git worktrees for curation branches",
	Long: `Manage git worktrees for working on skills in parallel.

Worktrees are created as siblings to the main repo:
  ~/repos/agent-skills/                     <- main repo
  ~/repos/agent-skills-worktrees/
    └── curate-add-docx/                    <- worktree for curate/add-docx

New worktrees are bootstrapped by symlinking dependency directories
(node_modules, .venv) from the main checkout when present.

Commands must be run from within a git repository.`,
}

var worktreeCreateCmd = &cobra.Command{
	Use:   "create <branch>",
	Short: "Create a worktree for a branch",
	Long: `Create a git worktree for the given branch, creating the branch from
the current HEAD when it doesn't exist yet.

The worktree is created at <repo>-worktrees/<branch-slug>/ and its
environment is bootstrapped unless --no-bootstrap is given.

Example:
  skillctl worktree create curate/add-docx
  cd $(skillctl worktree path curate/add-docx)`,
	Args: cobra.ExactArgs(1),
	RunE: runWorktreeCreate,
}

var worktreeRemoveCmd = &cobra.Command{
	Use:   "remove <branch>",
	Short: "Remove a worktree and delete its branch",
	Long: `Remove the git worktree for the given branch, delete the local
branch, and prune stale worktree references.

Example:
  skillctl worktree remove curate/add-docx`,
	Args: cobra.ExactArgs(1),
	RunE: runWorktreeRemove,
}

var worktreePathCmd = &cobra.Command{
	Use:   "path <branch>",
	Short: "Output the worktree path for a branch",
	Long: `Output the worktree path for use in scripts.

Example:
  cd $(skillctl worktree path curate/add-docx)`,
	Args: cobra.ExactArgs(1),
	RunE: runWorktreePath,
}

var worktreeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List managed worktrees",
	Args:  cobra.NoArgs,
	RunE:  runWorktreeList,
}

type worktreeResult struct {
	Branch    string                 `json:"branch"`
	Path      string                 `json:"path"`
	Created   bool                   `json:"created,omitempty"`
	Removed   bool                   `json:"removed,omitempty"`
	Bootstrap []bootstrap.LinkResult `json:"bootstrap,omitempty"`
}

type worktreeListResult struct {
	RepoRoot     string           `json:"repo_root"`
	WorktreesDir string           `json:"worktrees_dir"`
	Worktrees    []worktreeResult `json:"worktrees"`
}

// getGitRoot returns the root directory of the current git repository
func getGitRoot() (string, error) {
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("not in a git repository")
	}
	return strings.TrimSpace(string(out)), nil
}

// getWorktreesDir returns the worktrees directory path for a repo
func getWorktreesDir(repoRoot string) string {
	repoName := filepath.Base(repoRoot)
	return filepath.Join(filepath.Dir(repoRoot), repoName+"-worktrees")
}

// branchSlug flattens a branch name into a directory name.
func branchSlug(branch string) string {
	return strings.ReplaceAll(branch, "/", "-")
}

// getWorktreePath returns the full path to a worktree for a branch
func getWorktreePath(repoRoot, branch string) string {
	return filepath.Join(getWorktreesDir(repoRoot), branchSlug(branch))
}

func runWorktreeCreate(cmd *cobra.Command, args []string) error {
	branch := args[0]

	repoRoot, err := getGitRoot()
	if err != nil {
		return errors.Wrap(err, errors.KindGeneral, "failed to detect git repository")
	}

	worktreePath := getWorktreePath(repoRoot, branch)
	worktreesDir := getWorktreesDir(repoRoot)

	if _, err := os.Stat(worktreePath); err == nil {
		result := worktreeResult{Branch: branch, Path: worktreePath, Created: false}
		if IsJSON() {
			data, _ := json.MarshalIndent(result, "", "  ")
			fmt.Println(string(data))
			return nil
		}
		OutputLine("Worktree already exists at %s", worktreePath)
		return nil
	}

	if err := os.MkdirAll(worktreesDir, 0755); err != nil {
		return errors.Wrap(err, errors.KindGeneral, "failed to create worktrees directory")
	}

	gitCmd := exec.Command("git", "worktree", "add", worktreePath, "-b", branch)
	gitCmd.Dir = repoRoot
	if output, err := gitCmd.CombinedOutput(); err != nil {
		// Branch may already exist; retry without -b
		if strings.Contains(string(output), "already exists") {
			gitCmd = exec.Command("git", "worktree", "add", worktreePath, branch)
			gitCmd.Dir = repoRoot
			if output, err := gitCmd.CombinedOutput(); err != nil {
				return errors.Wrap(fmt.Errorf("%s", output), errors.KindGeneral, "failed to create worktree")
			}
		} else {
			return errors.Wrap(fmt.Errorf("%s", output), errors.KindGeneral, "failed to create worktree")
		}
	}

	result := worktreeResult{Branch: branch, Path: worktreePath, Created: true}

	if !worktreeNoBootstrap {
		links, err := bootstrap.Bootstrap(repoRoot, worktreePath)
		if err != nil {
			VerboseOutput("Warning: bootstrap failed: %v\n", err)
		}
		result.Bootstrap = links
	}

	if IsJSON() {
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	OutputLine("Created worktree at %s", worktreePath)
	OutputLine("Branch: %s", branch)
	for _, link := range result.Bootstrap {
		if link.Linked {
			OutputLine("Linked %s from main checkout", link.Env.LinkDir)
		}
	}
	OutputLine("")
	OutputLine("To enter the worktree:")
	OutputLine("  cd %s", worktreePath)

	return nil
}

func runWorktreeRemove(cmd *cobra.Command, args []string) error {
	branch := args[0]

	repoRoot, err := getGitRoot()
	if err != nil {
		return errors.Wrap(err, errors.KindGeneral, "failed to detect git repository")
	}

	worktreePath := getWorktreePath(repoRoot, branch)
	if _, err := os.Stat(worktreePath); os.IsNotExist(err) {
		return errors.NotFound("worktree does not exist at %s", worktreePath)
	}

	gitCmd := exec.Command("git", "worktree", "remove", worktreePath)
	gitCmd.Dir = repoRoot
	if _, err := gitCmd.CombinedOutput(); err != nil {
		// Retry with force when there are uncommitted changes
		gitCmd = exec.Command("git", "worktree", "remove", "--force", worktreePath)
		gitCmd.Dir = repoRoot
		if output, err := gitCmd.CombinedOutput(); err != nil {
			return errors.Wrap(fmt.Errorf("%s", output), errors.KindGeneral, "failed to remove worktree")
		}
	}

	gitCmd = exec.Command("git", "branch", "-d", branch)
	gitCmd.Dir = repoRoot
	if _, err := gitCmd.CombinedOutput(); err != nil {
		// Force delete when not fully merged
		gitCmd = exec.Command("git", "branch", "-D", branch)
		gitCmd.Dir = repoRoot
		if output, err := gitCmd.CombinedOutput(); err != nil {
			VerboseOutput("Warning: failed to delete branch: %s", output)
		}
	}

	gitCmd = exec.Command("git", "worktree", "prune")
	gitCmd.Dir = repoRoot
	_ = gitCmd.Run()

	result := worktreeResult{Branch: branch, Path: worktreePath, Removed: true}
	if IsJSON() {
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	OutputLine("Removed worktree at %s", worktreePath)
	OutputLine("Deleted branch: %s", branch)

	return nil
}

func runWorktreePath(cmd *cobra.Command, args []string) error {
	branch := args[0]

	repoRoot, err := getGitRoot()
	if err != nil {
		return errors.Wrap(err, errors.KindGeneral, "failed to detect git repository")
	}

	worktreePath := getWorktreePath(repoRoot, branch)

	if IsJSON() {
		result := worktreeResult{Branch: branch, Path: worktreePath}
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	// Just the path, for use in scripts: cd $(skillctl worktree path <branch>)
	fmt.Println(worktreePath)
	return nil
}

func runWorktreeList(cmd *cobra.Command, args []string) error {
	repoRoot, err := getGitRoot()
	if err != nil {
		return errors.Wrap(err, errors.KindGeneral, "failed to detect git repository")
	}

	worktreesDir := getWorktreesDir(repoRoot)

	if _, err := os.Stat(worktreesDir); os.IsNotExist(err) {
		result := worktreeListResult{
			RepoRoot:     repoRoot,
			WorktreesDir: worktreesDir,
			Worktrees:    []worktreeResult{},
		}
		if IsJSON() {
			data, _ := json.MarshalIndent(result, "", "  ")
			fmt.Println(string(data))
			return nil
		}
		OutputLine("No worktrees directory at %s", worktreesDir)
		return nil
	}

	entries, err := os.ReadDir(worktreesDir)
	if err != nil {
		return errors.Wrap(err, errors.KindGeneral, "failed to read worktrees directory")
	}

	var worktrees []worktreeResult
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		worktrees = append(worktrees, worktreeResult{
			Path:   filepath.Join(worktreesDir, entry.Name()),
			Branch: entry.Name(),
		})
	}

	result := worktreeListResult{
		RepoRoot:     repoRoot,
		WorktreesDir: worktreesDir,
		Worktrees:    worktrees,
	}

	if IsJSON() {
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	if len(worktrees) == 0 {
		OutputLine("No worktrees found in %s", worktreesDir)
		return nil
	}

	OutputLine("Worktrees in %s:", worktreesDir)
	for _, wt := range worktrees {
		OutputLine("  %s", filepath.Base(wt.Path))
	}

	return nil
}
