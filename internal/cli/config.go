package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yaklabco/cdocparse/internal/configloader"
	"github.com/yaklabco/cdocparse/internal/ui/pretty"
	"github.com/yaklabco/cdocparse/pkg/config"
)

type configFlags struct {
	env bool
}

func newConfigCommand() *cobra.Command {
	flags := &configFlags{}

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the resolved configuration",
		Long: `Print the configuration that results from merging the system, user,
project and explicit config files with CDOCPARSE_* environment variables.

Examples:
  cdocparse config
  cdocparse config --env   # List supported environment variables`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			if flags.env {
				styles := pretty.NewStyles(colorEnabled(cmd, out))
				for _, v := range configloader.ListEnvVars() {
					fmt.Fprintf(out, "%s  %s\n", styles.Bold.Render(fmt.Sprintf("%-30s", v[0])), styles.Dim.Render(v[1]))
				}
				return nil
			}

			cfg, err := loadConfig(cmd, &config.Config{})
			if err != nil {
				return err
			}

			data, err := cfg.ToYAML()
			if err != nil {
				return fmt.Errorf("encode config: %w", err)
			}
			_, err = out.Write(data)
			return err
		},
	}

	cmd.Flags().BoolVar(&flags.env, "env", false, "list supported environment variables")

	return cmd
}
