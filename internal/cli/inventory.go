package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/malarbase/skillctl/internal/inventory"
)

func init() {
	rootCmd.AddCommand(inventoryCmd)
}

var inventoryCmd = &cobra.Command{
	Use:   "inventory [repo-root]",
	Short: "Regenerate the README skills inventory in a local checkout",
	Long: `Scan skills/<author>/<name> under a local checkout of the curated
repository and rewrite the README's Skills Inventory section.

Defaults to the current directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInventory,
}

type inventoryResult struct {
	Root    string           `json:"root"`
	Changed bool             `json:"changed"`
	Skills  []inventory.Item `json:"skills"`
}

func runInventory(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}
	if abs, err := os.Getwd(); err == nil && root == "." {
		root = abs
	}

	items, err := inventory.Scan(root)
	if err != nil {
		return err
	}
	changed, err := inventory.UpdateReadme(root, items)
	if err != nil {
		return err
	}

	if IsJSON() {
		result := inventoryResult{Root: root, Changed: changed, Skills: items}
		if result.Skills == nil {
			result.Skills = []inventory.Item{}
		}
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	if changed {
		OutputLine("Updated README skills inventory (%d skills)", len(items))
	} else {
		OutputLine("README skills inventory already current (%d skills)", len(items))
	}

	return nil
}
