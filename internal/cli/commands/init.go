package commands

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapbuild/internal/cli/output"
	intconfig "github.com/leapstack-labs/leapbuild/internal/config"
)

//go:embed all:templates
var templateFS embed.FS

// templateName is the embedded project template.
const templateName = "flutter"

// placeholderAppID is replaced by --application-id.
const placeholderAppID = "com.example.app"

// InitOptions holds options for the init command.
type InitOptions struct {
	Force         bool
	ApplicationID string
}

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	opts := &InitOptions{}
	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Create a leapbuild configuration for a Flutter project",
		Long: `Initialize leapbuild in a Flutter project.

This creates:
  - leapbuild.yaml configuration file
  - versions.star defining the flutter.* version references
  - android/app/build.yaml build descriptor

Existing files are left alone unless --force is given.`,
		Example: `  # Initialize in current directory
  leapbuild init

  # Initialize with an application id
  leapbuild init --application-id com.acme.tasty_track

  # Initialize in another directory, overwriting existing files
  leapbuild init my_app --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.ModeAuto)
			if cmdCtx, err := NewCommandContext(cmd); err == nil {
				r = cmdCtx.Renderer
			}
			return runInit(r, dir, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Force, "force", false, "Overwrite existing files")
	cmd.Flags().StringVar(&opts.ApplicationID, "application-id", "", "Application identifier written to the descriptor")

	return cmd
}

func runInit(r *output.Renderer, dir string, opts *InitOptions) error {
	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	configPath := filepath.Join(dir, intconfig.ConfigFileName)
	if _, err := os.Stat(configPath); err == nil && !opts.Force {
		return fmt.Errorf("%s already exists. Use --force to overwrite", intconfig.ConfigFileName)
	}

	written, err := copyTemplate(templateName, dir, opts)
	if err != nil {
		return fmt.Errorf("failed to initialize project: %w", err)
	}

	files, err := listTemplateFiles(templateName)
	if err != nil {
		return err
	}
	for _, f := range files {
		status := output.StatusSkipped
		detail := "exists"
		if written[f] {
			status, detail = output.StatusSuccess, ""
		}
		r.StatusLine(f, status, detail)
	}

	r.Println("")
	r.Success("leapbuild initialized!")
	r.Println("")
	r.Println("Next steps:")
	r.Println("  1. Set applicationIdentifier in android/app/build.yaml")
	r.Println("  2. Point the upload signing configuration at your keystore")
	r.Println("  3. Run 'leapbuild validate' to check the descriptor")
	r.Println("  4. Run 'leapbuild doctor' for a health report")

	return nil
}

// copyTemplate copies an embedded template directory to targetDir and
// returns the relative paths it wrote. Existing files are skipped unless
// opts.Force is set.
func copyTemplate(name, targetDir string, opts *InitOptions) (map[string]bool, error) {
	root := path.Join("templates", name)
	written := make(map[string]bool)

	err := fs.WalkDir(templateFS, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath := strings.TrimPrefix(strings.TrimPrefix(p, root), "/")
		if relPath == "" {
			return nil
		}
		targetPath := filepath.Join(targetDir, filepath.FromSlash(relPath))

		if d.IsDir() {
			return os.MkdirAll(targetPath, 0750)
		}

		if !opts.Force {
			if _, err := os.Stat(targetPath); err == nil {
				return nil
			}
		}

		content, err := templateFS.ReadFile(p)
		if err != nil {
			return err
		}
		if opts.ApplicationID != "" {
			content = []byte(strings.ReplaceAll(string(content), placeholderAppID, opts.ApplicationID))
		}

		if err := os.WriteFile(targetPath, content, 0600); err != nil {
			return err
		}
		written[relPath] = true
		return nil
	})

	return written, err
}

// listTemplateFiles returns all files in a template for display purposes.
func listTemplateFiles(name string) ([]string, error) {
	var files []string
	root := path.Join("templates", name)

	err := fs.WalkDir(templateFS, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			files = append(files, strings.TrimPrefix(strings.TrimPrefix(p, root), "/"))
		}
		return nil
	})

	return files, err
}
