package cli

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/malarbase/skillctl/internal/errors"
	"github.com/malarbase/skillctl/internal/skill"
	"github.com/malarbase/skillctl/internal/staging"
)

func init() {
	rootCmd.AddCommand(validateCmd)
}

var validateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Validate a skill directory or all staged skills",
	Long: `Validate skill directories against the curation rules:
frontmatter shape, naming, description limits, and sensitive files.

With a path argument, validates that single directory. Without one,
validates every staged skill.

Exits non-zero when any skill fails validation.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

type validationReport struct {
	Skill    string   `json:"skill"`
	Dir      string   `json:"dir"`
	Valid    bool     `json:"valid"`
	Problems []string `json:"problems,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

func runValidate(cmd *cobra.Command, args []string) error {
	var reports []validationReport

	if len(args) == 1 {
		reports = append(reports, validateDir(args[0]))
	} else {
		area, err := staging.New(GetConfig().GetStagingDir())
		if err != nil {
			return err
		}
		entries, err := area.List()
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			if IsJSON() {
				fmt.Println("[]")
				return nil
			}
			OutputLine("Nothing staged.")
			return nil
		}
		for _, entry := range entries {
			report := validateDir(entry.Dir)
			report.Skill = entry.Author + "/" + entry.Name
			reports = append(reports, report)
		}
	}

	failed := 0
	for _, r := range reports {
		if !r.Valid {
			failed++
		}
	}

	if IsJSON() {
		data, _ := json.MarshalIndent(reports, "", "  ")
		fmt.Println(string(data))
	} else {
		printReports(reports)
	}

	if failed > 0 {
		return errors.StateError("%d skill(s) failed validation", failed)
	}
	return nil
}

func validateDir(dir string) validationReport {
	report := validationReport{
		Skill: skill.NameFromPath(dir),
		Dir:   dir,
		Valid: true,
	}

	if err := skill.ValidateDir(dir); err != nil {
		report.Valid = false
		report.Problems = skill.ValidationErrors(err)
	}
	if warning, ok := skill.LineCountWarning(dir); ok {
		report.Warnings = append(report.Warnings, warning)
	}
	return report
}

func printReports(reports []validationReport) {
	pass := color.New(color.FgGreen).SprintFunc()
	fail := color.New(color.FgRed).SprintFunc()
	warn := color.New(color.FgYellow).SprintFunc()

	for _, r := range reports {
		if r.Valid {
			OutputLine("%s %s", pass("ok"), r.Skill)
		} else {
			OutputLine("%s %s", fail("FAIL"), r.Skill)
			for _, p := range r.Problems {
				OutputLine("  - %s", p)
			}
		}
		for _, w := range r.Warnings {
			OutputLine("  %s %s", warn("warning:"), w)
		}
	}
}
