package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mfreitas/crisischat-server/internal/access"
	"github.com/mfreitas/crisischat-server/internal/app"
	"github.com/mfreitas/crisischat-server/internal/auth"
	"github.com/mfreitas/crisischat-server/internal/config"
	"github.com/mfreitas/crisischat-server/internal/log"
)

func newUserCmd() *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Manage the credential store",
	}
	userCmd.AddCommand(newUserAddCmd())
	return userCmd
}

// newUserAddCmd seeds a credential at an arbitrary tier. Self-registration
// over the control channel only ever creates CONVIDADO members, so elevated
// tiers need this operator path.
func newUserAddCmd() *cobra.Command {
	var levelName string

	cmd := &cobra.Command{
		Use:   "add <username> <password>",
		Short: "Add a user with an assigned access tier",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			bootstrap := log.New("info")

			cfg, _, err := config.Load(bootstrap, configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			level, err := access.ParseLevel(levelName)
			if err != nil {
				return fmt.Errorf("parse level %q: %w", levelName, err)
			}

			st, err := app.OpenStore(cfg)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer st.Close()

			if err := auth.NewService(st).RegisterAt(cmd.Context(), args[0], args[1], level); err != nil {
				return fmt.Errorf("add user: %w", err)
			}

			bootstrap.Info().Str("user", args[0]).Str("level", level.String()).Msg("user added")
			return nil
		},
	}
	cmd.Flags().StringVar(&levelName, "level", access.Convidado.String(), "access tier (ALTO, MEDIO, BAIXO, CONVIDADO)")
	return cmd
}
