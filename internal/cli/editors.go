package cli

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/malarbase/skillctl/internal/editors"
)

func init() {
	rootCmd.AddCommand(editorsCmd)
}

var editorsCmd = &cobra.Command{
	Use:   "editors",
	Short: "List known editors and their detection status",
	Long: `Show every editor skillctl can install into, whether its home
directory exists, whether its agent runtime appears active, and how
many skills are installed.`,
	Args: cobra.NoArgs,
	RunE: runEditors,
}

func runEditors(cmd *cobra.Command, args []string) error {
	statuses := editors.ListAll()
	detected := editors.Detect()

	if IsJSON() {
		out := struct {
			Detected string           `json:"detected"`
			Editors  []editors.Status `json:"editors"`
		}{Detected: detected.Name, Editors: statuses}
		data, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	active := color.New(color.FgGreen).SprintFunc()

	OutputLine("Detected editor: %s", detected.Name)
	OutputLine("")
	for _, s := range statuses {
		state := "not installed"
		if s.Installed {
			state = "installed"
		}
		if s.Running {
			state = active("running")
		}
		OutputLine("  %-12s %-14s %d skill(s)  %s", s.Name, state, s.Skills, s.Home)
	}

	return nil
}
