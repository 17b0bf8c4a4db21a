package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/malarbase/skillctl/internal/db"
	"github.com/malarbase/skillctl/internal/editors"
	"github.com/malarbase/skillctl/internal/errors"
	"github.com/malarbase/skillctl/internal/gh"
	"github.com/malarbase/skillctl/internal/skill"
	"github.com/malarbase/skillctl/internal/source"
)

var (
	installSkills  []string
	installRepo    string
	installPaths   []string
	installURL     string
	installRef     string
	installName    string
	installDest    string
	installMethod  string
	installEditor  string
	installProject bool
	installProjEd  string

	installTags     []string
	installAllTags  bool
	installAuthor   string
	installCurator  string
	installFromRepo string
	installFilters  []string
	installForce    bool
)

func init() {
	installCmd.Flags().StringSliceVar(&installSkills, "skill", nil, "Curated skill name to install (repeatable)")
	installCmd.Flags().StringVar(&installRepo, "repo", "", "Install from this owner/repo instead of the curated repo")
	installCmd.Flags().StringArrayVar(&installPaths, "path", nil, "Repo-relative skill path (repeatable, requires --repo)")
	installCmd.Flags().StringVar(&installURL, "url", "", "Install from a GitHub tree URL")
	installCmd.Flags().StringVar(&installRef, "ref", "", "Git ref to install from (default main)")
	installCmd.Flags().StringVar(&installName, "name", "", "Override the installed skill name (single skill only)")
	installCmd.Flags().StringVar(&installDest, "dest", "", "Destination directory (overrides editor detection)")
	installCmd.Flags().StringVar(&installMethod, "method", "auto", "Fetch method: auto, download, or git")
	installCmd.Flags().StringVar(&installEditor, "editor", "", "Install into this editor's global skills directory")
	installCmd.Flags().BoolVar(&installProject, "project", false, "Install into the current project's skills directory")
	installCmd.Flags().StringVar(&installProjEd, "project-editor", "", "Editor whose project directory to use with --project")

	installCmd.Flags().StringSliceVar(&installTags, "tags", nil, "Install curated skills matching these tags")
	installCmd.Flags().BoolVar(&installAllTags, "match-all-tags", false, "Require every tag to match instead of any")
	installCmd.Flags().StringVar(&installAuthor, "author", "", "Install curated skills by this author")
	installCmd.Flags().StringVar(&installCurator, "curator", "", "Install curated skills under this curator directory")
	installCmd.Flags().StringVar(&installFromRepo, "from-repo", "", "Install curated skills whose metadata.repo matches")
	installCmd.Flags().StringArrayVar(&installFilters, "filter", nil, "Install curated skills with metadata key=value (repeatable)")
	installCmd.Flags().BoolVar(&installForce, "force", false, "Overwrite already-installed skills")

	rootCmd.AddCommand(installCmd)
}

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install skills into an editor",
	Long: `Install skills into an agent editor's skills directory.

Skills come from the curated repository by default, selected by name
(--skill) or by metadata (--tags, --author, --curator, --from-repo,
--filter). Names not in the curated inventory fall back to the upstream
install repository's skills/ directory (install_repo in config). Any
GitHub repository works with --repo/--path or --url.

The destination is detected automatically: a project skills directory
when inside a configured project, otherwise the detected editor's
global skills directory. Override with --editor, --project, or --dest.

Examples:
  skillctl install --skill doc-coauthoring
  skillctl install --tags convex,web
  skillctl install --repo anthropics/skills --path document-skills/docx
  skillctl install --url https://github.com/owner/repo/tree/main/skills/web --project`,
	Args: cobra.NoArgs,
	RunE: runInstall,
}

type installTarget struct {
	Name   string
	Source *source.Source
}

type installResult struct {
	Skill  string `json:"skill"`
	Dest   string `json:"dest"`
	Source string `json:"source"`
}

func runInstall(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	ctx := cmd.Context()

	method, err := source.ParseMethod(installMethod)
	if err != nil {
		return errors.InvalidArgs("%v", err)
	}

	targets, err := resolveInstallTargets(ctx, cfg.TargetRepo, cfg.InstallRepo)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		return errors.NotFound("no skills matched the given selection").
			WithSuggestion("Run 'skillctl list' to see the curated inventory.")
	}
	if installName != "" && len(targets) > 1 {
		return errors.InvalidArgs("--name requires a single skill, got %d", len(targets))
	}

	destDir, err := resolveInstallDest()
	if err != nil {
		return err
	}

	fetcher := source.NewFetcher()
	var results []installResult
	for _, target := range targets {
		name := target.Name
		if installName != "" {
			name = installName
		}
		if err := source.ValidateSkillName(name); err != nil {
			return errors.InvalidArgs("%v", err)
		}

		dest := filepath.Join(destDir, name)
		if _, err := os.Stat(dest); err == nil && !installForce {
			return errors.StateError("skill %s is already installed at %s", name, dest).
				WithSuggestion("Pass --force to overwrite it.")
		}

		tmp, err := os.MkdirTemp("", "skillctl-install-*")
		if err != nil {
			return fmt.Errorf("failed to create temp directory: %w", err)
		}

		VerboseOutput("Fetching %s from %s...\n", name, target.Source.RepoSlug())
		fetched, err := fetcher.Fetch(ctx, target.Source, filepath.Join(tmp, "skill"), method)
		if err != nil {
			os.RemoveAll(tmp)
			return errors.Wrap(err, errors.KindGeneral, "failed to fetch %s", name)
		}

		if err := skill.ReplaceDir(fetched, dest); err != nil {
			os.RemoveAll(tmp)
			return fmt.Errorf("failed to install %s: %w", name, err)
		}
		os.RemoveAll(tmp)

		recordActivity(db.ActionInstall, name, "", target.Source.String())
		results = append(results, installResult{
			Skill:  name,
			Dest:   dest,
			Source: target.Source.String(),
		})
	}

	if IsJSON() {
		data, _ := json.MarshalIndent(results, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	for _, r := range results {
		OutputLine("Installed %s -> %s", r.Skill, r.Dest)
	}
	return nil
}

// resolveInstallDest picks the skills directory to install into.
// Priority: --dest > --project/--project-editor > --editor > detection.
func resolveInstallDest() (string, error) {
	if installDest != "" {
		return expandPath(installDest), nil
	}

	if installProject || installProjEd != "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		if installProjEd != "" {
			e, ok := editors.Lookup(installProjEd)
			if !ok {
				return "", errors.InvalidArgs("unknown editor %q", installProjEd)
			}
			return e.ProjectSkillsDir(cwd), nil
		}
		if e, root, ok := editors.DetectProject(cwd); ok {
			return e.ProjectSkillsDir(root), nil
		}
		return "", errors.NotFound("no project editor directory found from %s", cwd).
			WithSuggestion("Pass --project-editor <name> to choose one explicitly.")
	}

	if installEditor != "" {
		e, ok := editors.Lookup(installEditor)
		if !ok {
			return "", errors.InvalidArgs("unknown editor %q", installEditor)
		}
		return e.SkillsDir(), nil
	}

	// Project directories win over global editor homes
	if cwd, err := os.Getwd(); err == nil {
		if e, root, ok := editors.DetectProject(cwd); ok {
			return e.ProjectSkillsDir(root), nil
		}
	}
	return editors.Detect().SkillsDir(), nil
}

// resolveInstallTargets builds the list of skills to install from the
// selection flags.
func resolveInstallTargets(ctx context.Context, curatedRepo, installRepoDefault string) ([]installTarget, error) {
	ref := installRef
	if ref == "" {
		ref = source.DefaultRef
	}

	// Direct URL
	if installURL != "" {
		src, err := source.ParseGitHubURL(installURL)
		if err != nil {
			return nil, errors.InvalidArgs("%v", err)
		}
		if installRef != "" {
			src.Ref = installRef
		}
		return []installTarget{{Name: skill.NameFromPath(src.Path), Source: src}}, nil
	}

	// Arbitrary repo + paths
	if installRepo != "" {
		if len(installPaths) == 0 {
			return nil, errors.InvalidArgs("--repo requires at least one --path")
		}
		parts := strings.Split(installRepo, "/")
		if len(parts) != 2 {
			return nil, errors.InvalidArgs("invalid repo %q: expected owner/repo", installRepo)
		}
		var targets []installTarget
		for _, p := range installPaths {
			if err := source.ValidateRelativePath(p); err != nil {
				return nil, errors.InvalidArgs("%v", err)
			}
			targets = append(targets, installTarget{
				Name: skill.NameFromPath(p),
				Source: &source.Source{
					Type:  source.TypeGitHub,
					Owner: parts[0],
					Repo:  parts[1],
					Ref:   ref,
					Path:  p,
				},
			})
		}
		return targets, nil
	}

	hasMetaFilter := len(installTags) > 0 || installAuthor != "" || installCurator != "" ||
		installFromRepo != "" || len(installFilters) > 0

	if len(installSkills) == 0 && !hasMetaFilter {
		return nil, errors.InvalidArgs("nothing to install").
			WithSuggestion("Pass --skill, --tags, --repo/--path, or --url. " +
				"Default upstream repo: " + installRepoDefault + ".")
	}

	// Curated repo selection
	api := gh.NewAPI(ctx)
	remote, err := fetchRemoteInventory(ctx, api, curatedRepo)
	if err != nil {
		return nil, err
	}

	wanted := make(map[string]bool, len(installSkills))
	for _, name := range installSkills {
		wanted[name] = true
	}

	parsedFilters, err := parseFilters(installFilters)
	if err != nil {
		return nil, err
	}

	var targets []installTarget
	for _, rs := range remote {
		if len(wanted) > 0 && !wanted[rs.Name] {
			continue
		}
		if installCurator != "" && rs.Author != installCurator {
			continue
		}

		if hasMetaFilter {
			meta, err := fetchRemoteSkillMeta(ctx, api, curatedRepo, rs.Path)
			if err != nil {
				continue
			}
			if !matchesMetadata(meta, parsedFilters) {
				continue
			}
		}

		parts := strings.Split(curatedRepo, "/")
		targets = append(targets, installTarget{
			Name: rs.Name,
			Source: &source.Source{
				Type:  source.TypeGitHub,
				Owner: parts[0],
				Repo:  parts[1],
				Ref:   ref,
				Path:  rs.Path,
			},
		})
		delete(wanted, rs.Name)
	}

	if len(wanted) > 0 {
		if hasMetaFilter {
			missing := make([]string, 0, len(wanted))
			for name := range wanted {
				missing = append(missing, name)
			}
			return nil, errors.NotFound("skill(s) not found in %s: %s", curatedRepo, strings.Join(missing, ", ")).
				WithSuggestion("Run 'skillctl list' to see the curated inventory.")
		}

		// Bare names missing from the curated inventory install from the
		// upstream repo's skills/<name> layout.
		for _, name := range installSkills {
			if !wanted[name] {
				continue
			}
			VerboseOutput("Skill %s is not in %s, trying %s...\n", name, curatedRepo, installRepoDefault)
			upstream, err := upstreamInstallTarget(installRepoDefault, name, ref)
			if err != nil {
				return nil, err
			}
			targets = append(targets, upstream)
		}
	}

	return targets, nil
}

// upstreamInstallTarget points a bare skill name at the upstream install
// repo's skills/<name> directory.
func upstreamInstallTarget(repo, name, ref string) (installTarget, error) {
	parts := strings.Split(repo, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return installTarget{}, errors.InvalidArgs("invalid install repo %q: expected owner/repo", repo)
	}
	return installTarget{
		Name: name,
		Source: &source.Source{
			Type:  source.TypeGitHub,
			Owner: parts[0],
			Repo:  parts[1],
			Ref:   ref,
			Path:  "skills/" + name,
		},
	}, nil
}

func parseFilters(raw []string) (map[string]string, error) {
	filters := make(map[string]string, len(raw))
	for _, f := range raw {
		idx := strings.Index(f, "=")
		if idx <= 0 {
			return nil, errors.InvalidArgs("invalid --filter %q: expected key=value", f)
		}
		filters[f[:idx]] = f[idx+1:]
	}
	return filters, nil
}

// matchesMetadata applies the metadata selection flags to one skill.
func matchesMetadata(meta *skill.Frontmatter, filters map[string]string) bool {
	var md skill.Metadata
	if meta.Metadata != nil {
		md = *meta.Metadata
	}

	if installAuthor != "" && md.Author != installAuthor {
		return false
	}
	if installFromRepo != "" && !strings.Contains(md.Repo, installFromRepo) {
		return false
	}

	if len(installTags) > 0 {
		have := make(map[string]bool, len(md.Tags))
		for _, t := range md.Tags {
			have[t] = true
		}
		if installAllTags {
			for _, t := range installTags {
				if !have[t] {
					return false
				}
			}
		} else {
			any := false
			for _, t := range installTags {
				if have[t] {
					any = true
					break
				}
			}
			if !any {
				return false
			}
		}
	}

	if len(filters) > 0 {
		flat := meta.Flat()
		for k, v := range filters {
			got, ok := flat[k]
			if !ok || fmt.Sprint(got) != v {
				return false
			}
		}
	}

	return true
}
