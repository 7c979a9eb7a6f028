package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GoBlogAdmin/GoBlogAdmin/internal/auth"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/db"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/rbac"
)

func init() { //nolint: gochecknoinits
	userCreateCmd.Flags().StringVar(&userName, "name", "", "display name")
	userCreateCmd.Flags().StringVar(&userEmail, "email", "", "login email")
	userCreateCmd.Flags().StringVar(&userPassword, "password", "", "initial password")
	userCreateCmd.Flags().StringVar(&userRole, "role", string(rbac.RoleLead), "lead, admin or super_admin")

	for _, f := range []string{"name", "email", "password"} {
		_ = userCreateCmd.MarkFlagRequired(f)
	}

	userOTPCmd.Flags().StringVar(&userEmail, "email", "", "login email")
	_ = userOTPCmd.MarkFlagRequired("email")

	userCmd.AddCommand(userCreateCmd, userOTPCmd)
	rootCmd.AddCommand(userCmd)
}

var (
	userName     string
	userEmail    string
	userPassword string
	userRole     string

	userCmd = &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}

	userCreateCmd = &cobra.Command{
		Use:     "create",
		Short:   "Create a local account with any role",
		PreRunE: readConfig,
		RunE: func(cmd *cobra.Command, _ []string) error {
			role, err := rbac.ParseRole(userRole)
			if err != nil {
				return err
			}

			gdb, err := db.Open(&cfg)
			if err != nil {
				return err
			}

			u, err := auth.NewLocalProvider(gdb).Register(cmd.Context(), userName, userEmail, userPassword, role)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "created user %d <%s> as %s\n", u.ID, u.Email, u.Role)

			return err //nolint:wrapcheck
		},
	}

	userOTPCmd = &cobra.Command{
		Use:     "otp-enroll",
		Short:   "Enable the one-time password second factor for an account",
		PreRunE: readConfig,
		RunE: func(cmd *cobra.Command, _ []string) error {
			gdb, err := db.Open(&cfg)
			if err != nil {
				return err
			}

			users := auth.NewLocalProvider(gdb)

			u, err := users.GetUserByEmail(cmd.Context(), userEmail)
			if err != nil {
				return err
			}

			enrollment, err := auth.NewOTPVerifier(cfg.Auth.OTP.Issuer).Generate(u.Email)
			if err != nil {
				return err
			}

			if err = users.SetOTPSecret(cmd.Context(), u.ID, enrollment.Secret); err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "secret: %s\nurl: %s\n", enrollment.Secret, enrollment.URL)

			return err //nolint:wrapcheck
		},
	}
)
