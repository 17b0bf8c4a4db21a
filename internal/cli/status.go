package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/malarbase/skillctl/internal/skill"
	"github.com/malarbase/skillctl/internal/staging"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show staged skills and their validity",
	Long: `List the skills currently in the staging area, with a validation
summary for each and the branch name shipping would use.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

type statusEntry struct {
	Author      string `json:"author"`
	Name        string `json:"name"`
	Dir         string `json:"dir"`
	Description string `json:"description,omitempty"`
	Valid       bool   `json:"valid"`
}

type statusResult struct {
	StagingDir string        `json:"staging_dir"`
	TargetRepo string        `json:"target_repo"`
	Branch     string        `json:"branch"`
	Skills     []statusEntry `json:"skills"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	area, err := staging.New(cfg.GetStagingDir())
	if err != nil {
		return err
	}

	entries, err := area.List()
	if err != nil {
		return err
	}

	result := statusResult{
		StagingDir: area.Root,
		TargetRepo: cfg.TargetRepo,
		Branch:     shipBranchName(entries),
		Skills:     []statusEntry{},
	}

	for _, entry := range entries {
		se := statusEntry{
			Author: entry.Author,
			Name:   entry.Name,
			Dir:    entry.Dir,
			Valid:  skill.ValidateDir(entry.Dir) == nil,
		}
		if s, err := skill.Load(entry.Dir); err == nil {
			se.Description = s.Description
		}
		result.Skills = append(result.Skills, se)
	}

	if IsJSON() {
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	if len(result.Skills) == 0 {
		OutputLine("Nothing staged.")
		OutputLine("Use 'skillctl import <source>' to stage a skill.")
		return nil
	}

	OutputLine("Staged skills (%d):", len(result.Skills))
	for _, se := range result.Skills {
		marker := "ok"
		if !se.Valid {
			marker = "INVALID"
		}
		OutputLine("  %s/%s [%s]", se.Author, se.Name, marker)
	}
	OutputLine("")
	OutputLine("Target repo: %s", result.TargetRepo)
	OutputLine("Ship branch: %s", result.Branch)

	return nil
}
