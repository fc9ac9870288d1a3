package cli

import (
	"github.com/spf13/cobra"
)

func newRegisterCmd(app *App) *cobra.Command {
	var password, confirm string

	cmd := &cobra.Command{
		Use:   "register <username>",
		Short: "Register a new user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Auth.Register(cmd.Context(), args[0], password, confirm); err != nil {
				return err
			}

			outln(cmd, "New user added")

			return nil
		},
	}

	cmd.Flags().StringVar(&password, "new-password", "", "Password of the new user")
	cmd.Flags().StringVar(&confirm, "confirm", "", "Password confirmation")
	_ = cmd.MarkFlagRequired("new-password")
	_ = cmd.MarkFlagRequired("confirm")

	return cmd
}
