package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/malarbase/skillctl/internal/config"
	"github.com/malarbase/skillctl/internal/db"
)

var initForce bool

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite existing database")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize skillctl for first-time use",
	Long: `Initialize skillctl by creating the ~/.skillctl/ directory,
a sample configuration file, and the history database.

This command:
- Creates ~/.skillctl/ if it doesn't exist
- Writes config.toml with commented defaults (if missing)
- Creates skillctl.db with the schema and runs pending migrations

Use --force to overwrite an existing database.`,
	RunE: runInit,
}

type initResult struct {
	Database  string `json:"database"`
	Config    string `json:"config"`
	Created   bool   `json:"created"`
	Schema    int64  `json:"schema_version"`
	WroteConf bool   `json:"wrote_config"`
}

func runInit(cmd *cobra.Command, args []string) error {
	dbPath := GetDBPath()

	if db.Exists(dbPath) && !initForce {
		displayPath := dbPath
		if displayPath == "" {
			displayPath = db.DefaultDBPath
		}
		if IsJSON() {
			result := initResult{Database: displayPath, Created: false}
			data, _ := json.MarshalIndent(result, "", "  ")
			fmt.Println(string(data))
			return nil
		}
		return fmt.Errorf("database already exists at %s (use --force to overwrite)", displayPath)
	}

	if initForce && db.Exists(dbPath) {
		VerboseOutput("Removing existing database...\n")
		if err := db.Delete(dbPath); err != nil {
			return fmt.Errorf("failed to remove existing database: %w", err)
		}
	}

	// Write a sample config when none exists
	configPath := config.DefaultConfigPath()
	wroteConfig := false
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		VerboseOutput("Writing sample config...\n")
		if err := config.WriteConfigFile(configPath); err != nil {
			return fmt.Errorf("failed to write config file: %w", err)
		}
		wroteConfig = true
	}

	VerboseOutput("Creating database...\n")
	database, err := db.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer database.Close()

	VerboseOutput("Running migrations...\n")
	if err := database.Migrate(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, err := database.MigrationStatus()
	if err != nil {
		return fmt.Errorf("failed to get migration status: %w", err)
	}

	if IsJSON() {
		result := initResult{
			Database:  database.Path(),
			Config:    configPath,
			Created:   true,
			Schema:    version,
			WroteConf: wroteConfig,
		}
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	OutputLine("Initialized skillctl database at %s", database.Path())
	OutputLine("Schema version: %d", version)
	if wroteConfig {
		OutputLine("Wrote config: %s", configPath)
	}

	return nil
}
