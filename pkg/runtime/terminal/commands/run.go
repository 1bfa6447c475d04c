package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/de-tools/case-atlas/pkg/models/domain"
	"github.com/de-tools/case-atlas/pkg/services/config"
)

type RunCmd struct {
	profilesPath string
	profiles     []string
	output       string
	provider     SessionProvider
	reporter     RunReporter
}

func NewRunCmd(provider SessionProvider, reporter RunReporter) *cobra.Command {
	rc := &RunCmd{provider: provider, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Build every configured report into one workbook",
		RunE:  rc.run,
	}

	cmd.Flags().StringVar(&rc.profilesPath, "profiles", "", "Path to the report profiles file (defaults to profiles_path)")
	cmd.Flags().StringSliceVar(&rc.profiles, "profile", nil, "Profiles to run (defaults to all)")
	cmd.Flags().StringVar(&rc.output, "output", "", "Path to the output workbook")

	return cmd
}

func (rc *RunCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	path := rc.profilesPath
	if path == "" {
		path = rc.provider.Session().Config().ProfilesPath
	}

	registry, err := config.NewRegistry(path)
	if err != nil {
		return err
	}

	names := rc.profiles
	if len(names) == 0 {
		names, err = registry.GetProfiles(ctx)
		if err != nil {
			return err
		}
	}
	if len(names) == 0 {
		return fmt.Errorf("no report profiles found in %s", path)
	}

	profiles := make([]domain.ReportProfile, 0, len(names))
	for _, name := range names {
		p, err := registry.GetProfile(ctx, name)
		if err != nil {
			return err
		}
		profiles = append(profiles, p)
	}

	return execute(ctx, rc.provider, rc.reporter, profiles, rc.output)
}
