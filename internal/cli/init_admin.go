package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newInitAdminCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "init-admin",
		Short: "Create the configured admin account if no admin exists",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInitAdmin(cmd.Context(), *configPath, cmd.OutOrStdout())
		},
	}
}

func runInitAdmin(ctx context.Context, configPath string, out io.Writer) error {
	cfg, log, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	defer log.Sync()

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.close()

	res, err := a.auth.InitAdmin(ctx, a.adminAccount())
	if err != nil {
		return err
	}
	if res.Username == "" {
		_, err = fmt.Fprintln(out, res.Message)
		return err
	}
	_, err = fmt.Fprintf(out, "%s: username=%s password=%s\n", res.Message, res.Username, res.Password)
	return err
}
