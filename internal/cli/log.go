package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/malarbase/skillctl/internal/db"
	"github.com/malarbase/skillctl/internal/errors"
)

var (
	logLimit  int
	logAction string
)

func init() {
	logCmd.Flags().IntVar(&logLimit, "limit", 20, "Maximum entries to show")
	logCmd.Flags().StringVar(&logAction, "action", "", "Only show this action (import, ship, land, update, install)")
	rootCmd.AddCommand(logCmd)
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show the operation history",
	Long: `Show recent skillctl operations recorded in the history database,
newest first.`,
	Args: cobra.NoArgs,
	RunE: runLog,
}

func runLog(cmd *cobra.Command, args []string) error {
	if !db.Exists(GetDBPath()) {
		return errors.NotFound("history database not found").
			WithSuggestion(SuggestRunInit)
	}

	database, err := db.Open(GetDBPath())
	if err != nil {
		return errors.Wrap(err, errors.KindStorage, "failed to open history database")
	}
	defer database.Close()

	repo := db.NewActivityRepo(database.DB)
	logs, err := repo.List(db.ActivityFilter{Action: logAction, Limit: logLimit})
	if err != nil {
		return errors.Wrap(err, errors.KindStorage, "failed to read history")
	}

	if IsJSON() {
		if logs == nil {
			logs = []*db.ActivityLog{}
		}
		data, _ := json.MarshalIndent(logs, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	if len(logs) == 0 {
		OutputLine("No history yet.")
		return nil
	}

	for _, entry := range logs {
		line := fmt.Sprintf("%s  %-8s", entry.CreatedAt.Local().Format("2006-01-02 15:04"), entry.Action)
		if entry.Skill != "" {
			line += " " + entry.Skill
		}
		if entry.Author != "" {
			line += " (" + entry.Author + ")"
		}
		if entry.Details != "" {
			line += "  " + entry.Details
		}
		OutputLine("%s", line)
	}

	return nil
}
