package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/malarbase/skillctl/internal/editors"
	"github.com/malarbase/skillctl/internal/gh"
	"github.com/malarbase/skillctl/internal/skill"
)

var (
	listAuthor    string
	listInstalled bool
)

func init() {
	listCmd.Flags().StringVar(&listAuthor, "author", "", "Only show skills by this author")
	listCmd.Flags().BoolVar(&listInstalled, "installed", false, "List skills installed in detected editors instead")
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the curated skill inventory",
	Long: `List the skills published in the curated repository, read from the
GitHub contents API.

With --installed, lists skills found in local editor skill directories
instead.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

// remoteSkill is one skill in the curated repository.
type remoteSkill struct {
	Author string `json:"author"`
	Name   string `json:"name"`
	Path   string `json:"path"`
}

// fetchRemoteInventory lists skills/<author>/<name> directories in repo.
func fetchRemoteInventory(ctx context.Context, api *gh.API, repo string) ([]remoteSkill, error) {
	authors, err := api.ListContents(ctx, repo, "skills", "main")
	if err != nil {
		return nil, fmt.Errorf("failed to list skills in %s: %w", repo, err)
	}

	var skills []remoteSkill
	for _, authorEntry := range authors {
		if authorEntry.Type != "dir" {
			continue
		}
		entries, err := api.ListContents(ctx, repo, authorEntry.Path, "main")
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.Type != "dir" {
				continue
			}
			skills = append(skills, remoteSkill{
				Author: authorEntry.Name,
				Name:   entry.Name,
				Path:   entry.Path,
			})
		}
	}
	return skills, nil
}

// fetchRemoteSkillMeta loads a remote skill's frontmatter.
func fetchRemoteSkillMeta(ctx context.Context, api *gh.API, repo, path string) (*skill.Frontmatter, error) {
	data, err := api.FileContent(ctx, repo, path+"/"+skill.FileName, "main")
	if err != nil {
		return nil, err
	}
	fm, _, ok := skill.Split(string(data))
	if !ok {
		return nil, fmt.Errorf("no frontmatter in %s/%s", path, skill.FileName)
	}
	return skill.ParseFrontmatter(fm)
}

func runList(cmd *cobra.Command, args []string) error {
	if listInstalled {
		return runListInstalled()
	}

	cfg := GetConfig()
	ctx := cmd.Context()

	api := gh.NewAPI(ctx)
	skills, err := fetchRemoteInventory(ctx, api, cfg.TargetRepo)
	if err != nil {
		return err
	}

	if listAuthor != "" {
		filtered := skills[:0]
		for _, s := range skills {
			if s.Author == listAuthor {
				filtered = append(filtered, s)
			}
		}
		skills = filtered
	}

	if IsJSON() {
		if skills == nil {
			skills = []remoteSkill{}
		}
		data, _ := json.MarshalIndent(skills, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	if len(skills) == 0 {
		OutputLine("No skills found in %s.", cfg.TargetRepo)
		return nil
	}

	OutputLine("Skills in %s (%d):", cfg.TargetRepo, len(skills))
	current := ""
	for _, s := range skills {
		if s.Author != current {
			current = s.Author
			OutputLine("")
			OutputLine("%s:", current)
		}
		OutputLine("  %s", s.Name)
	}

	return nil
}

func runListInstalled() error {
	var installed []editors.InstalledSkill
	for _, e := range editors.Registry {
		installed = append(installed, e.InstalledSkills()...)
	}

	if IsJSON() {
		if installed == nil {
			installed = []editors.InstalledSkill{}
		}
		data, _ := json.MarshalIndent(installed, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	if len(installed) == 0 {
		OutputLine("No installed skills found.")
		return nil
	}

	OutputLine("Installed skills (%d):", len(installed))
	for _, s := range installed {
		OutputLine("  %-24s %s", s.Name, s.Dir)
	}

	return nil
}
