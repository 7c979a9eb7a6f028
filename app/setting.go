package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GoBlogAdmin/GoBlogAdmin/internal/db"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/db/controller/setting"
	"github.com/GoBlogAdmin/GoBlogAdmin/internal/db/models"
)

func init() { //nolint: gochecknoinits
	settingCmd.AddCommand(settingSetCmd)
	rootCmd.AddCommand(settingCmd)
}

var (
	settingCmd = &cobra.Command{
		Use:   "setting",
		Short: "Manage runtime settings",
	}

	settingSetCmd = &cobra.Command{
		Use:     "set <name> <value>",
		Short:   "Store a runtime setting, e.g. " + models.SettingDefaultRole + " admin",
		Args:    cobra.ExactArgs(2), //nolint:mnd
		PreRunE: readConfig,
		RunE: func(cmd *cobra.Command, args []string) error {
			gdb, err := db.Open(&cfg)
			if err != nil {
				return err
			}

			store := setting.New(gdb)
			name, value := args[0], args[1]

			if name == models.SettingDefaultRole {
				err = store.SetDefaultRole(cmd.Context(), value)
			} else {
				_, err = store.Set(cmd.Context(), name, []byte(value))
			}

			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", name, value)

			return err //nolint:wrapcheck
		},
	}
)
