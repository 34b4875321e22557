package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hazyhaar/aodacheck/dbopen"
	"github.com/hazyhaar/aodacheck/shield"
)

func newMaintenanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "maintenance on|off [message]",
		Short: "Toggle maintenance mode for servers sharing db.path",
		Long: `Writes the maintenance flag to the SQLite database. Running servers answer
503 on every route except /health within five seconds.`,
		Args:      cobra.RangeArgs(1, 2),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var active bool
			switch args[0] {
			case "on":
				active = true
			case "off":
			default:
				return fmt.Errorf("maintenance: want on or off, got %q", args[0])
			}
			message := ""
			if len(args) == 2 {
				message = strings.TrimSpace(args[1])
			}

			ctx := cmd.Context()
			a, err := bootstrap(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.close()

			db, err := dbopen.Open(a.cfg.DB.Path, dbopen.WithMkdirAll(), dbopen.WithSchema(shield.Schema))
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer db.Close()

			if err := shield.SetMaintenance(ctx, db, active, message); err != nil {
				return err
			}
			a.logger.Info("aodacheck: maintenance updated", "active", active, "db", a.cfg.DB.Path)
			return nil
		},
	}
}
