package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/malarbase/skillctl/internal/skill"
)

var agentForce bool

func init() {
	agentInstallCmd.Flags().BoolVar(&agentForce, "force", false, "Overwrite existing skill files")
	agentCmd.AddCommand(agentInstallCmd)
	rootCmd.AddCommand(agentCmd)
}

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Integrate skillctl with agent runtimes",
}

var agentInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Install skillctl's own skill into detected agent homes",
	Long: `Install the bundled skillctl skill into every detected AI agent
directory (~/.claude/ and ~/.openclaw/), teaching agents how to use
the tool.

Use --force to overwrite previously installed files.`,
	Args: cobra.NoArgs,
	RunE: runAgentInstall,
}

type agentInstallResult struct {
	Installed   bool     `json:"installed"`
	Path        string   `json:"path"`
	Files       []string `json:"files"`
	Overwritten bool     `json:"overwritten,omitempty"`
}

type agentInstallMultiResult struct {
	Targets []agentInstallResult `json:"targets"`
}

// detectAgentTargets returns all target directories for self-skill
// installation. It checks for Claude Code (~/.claude/) and OpenClaw
// (~/.openclaw/).
func detectAgentTargets(homeDir string) []string {
	var targets []string

	claudeDir := filepath.Join(homeDir, ".claude")
	openclawDir := filepath.Join(homeDir, ".openclaw")

	if info, err := os.Stat(claudeDir); err == nil && info.IsDir() {
		targets = append(targets, filepath.Join(claudeDir, "skills", "skillctl"))
	}
	if info, err := os.Stat(openclawDir); err == nil && info.IsDir() {
		targets = append(targets, filepath.Join(openclawDir, "skills", "skillctl"))
	}

	return targets
}

// installSelfSkillToDir installs the embedded skill files to one directory.
func installSelfSkillToDir(targetDir string, force bool) (*agentInstallResult, error) {
	existingFiles, err := listExistingFiles(targetDir)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to check existing files: %w", err)
	}

	overwritten := false
	if len(existingFiles) > 0 && !force {
		return nil, fmt.Errorf("skill files already exist at %s (use --force to overwrite)", targetDir)
	} else if len(existingFiles) > 0 {
		overwritten = true
	}

	if err := os.MkdirAll(targetDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", targetDir, err)
	}

	skillFS, err := skill.SelfFS()
	if err != nil {
		return nil, fmt.Errorf("failed to access embedded skill files: %w", err)
	}

	var installedFiles []string
	err = fs.WalkDir(skillFS, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		targetPath := filepath.Join(targetDir, path)
		if d.IsDir() {
			return os.MkdirAll(targetPath, 0755)
		}

		if err := copyEmbeddedFile(skillFS, path, targetPath); err != nil {
			return fmt.Errorf("failed to copy %s: %w", path, err)
		}
		installedFiles = append(installedFiles, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to install skill files: %w", err)
	}

	return &agentInstallResult{
		Installed:   true,
		Path:        targetDir,
		Files:       installedFiles,
		Overwritten: overwritten,
	}, nil
}

func runAgentInstall(cmd *cobra.Command, args []string) error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	targets := detectAgentTargets(homeDir)
	if len(targets) == 0 {
		if IsJSON() {
			data, _ := json.MarshalIndent(agentInstallMultiResult{Targets: []agentInstallResult{}}, "", "  ")
			fmt.Println(string(data))
			return nil
		}
		OutputLine("No agent directories found (~/.claude or ~/.openclaw).")
		return nil
	}

	result := agentInstallMultiResult{}
	for _, targetDir := range targets {
		installResult, err := installSelfSkillToDir(targetDir, agentForce)
		if err != nil {
			return err
		}
		result.Targets = append(result.Targets, *installResult)
	}

	if IsJSON() {
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	for _, t := range result.Targets {
		OutputLine("Installed skill to %s (%d files)", t.Path, len(t.Files))
	}

	return nil
}

// listExistingFiles returns a list of files in the given directory
func listExistingFiles(dir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			relPath, _ := filepath.Rel(dir, path)
			files = append(files, relPath)
		}
		return nil
	})

	return files, err
}

// copyEmbeddedFile copies a file from the embedded FS to the target path
func copyEmbeddedFile(srcFS fs.FS, srcPath, dstPath string) error {
	src, err := srcFS.Open(srcPath)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(dstPath)
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}
