package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	gormrepo "github.com/alchemorsel/foodgram/internal/infrastructure/persistence/gorm"
	"github.com/alchemorsel/foodgram/internal/infrastructure/security"
)

var tokenCmd = &cobra.Command{
	Use:   "token <username>",
	Short: "Issue an access token for an existing user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnvironment()
		if err != nil {
			return err
		}
		db, closeDB, err := env.openDatabase(cmd.Context())
		if err != nil {
			return err
		}
		defer closeDB()

		u, err := gormrepo.NewUserRepository(db).FindByUsername(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("find user %q: %w", args[0], err)
		}

		auth := security.NewAuthService(env.cfg.Auth, env.log, nil)
		token, err := auth.GenerateAccessToken(u.ID(), u.Username())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}
