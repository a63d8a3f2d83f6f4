package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/lodge-manager/internal/client"
)

type availabilityFlags struct {
	roomID int64
	start  string
	end    string
	status string
}

func (f *availabilityFlags) register(cmd *cobra.Command, withRoom bool) {
	if withRoom {
		cmd.Flags().Int64Var(&f.roomID, "room", 0, "room id")
	}
	cmd.Flags().StringVar(&f.start, "start", "", "start date (YYYY-MM-DD or RFC 3339)")
	cmd.Flags().StringVar(&f.end, "end", "", "end date (YYYY-MM-DD or RFC 3339)")
	cmd.Flags().StringVar(&f.status, "status", "", "available, booked or maintenance")
}

func (f *availabilityFlags) form(cmd *cobra.Command) client.AvailabilityForm {
	var form client.AvailabilityForm
	flags := cmd.Flags()
	if flags.Lookup("room") != nil && flags.Changed("room") {
		form.RoomID = &f.roomID
	}
	if flags.Changed("start") {
		form.StartDate = &f.start
	}
	if flags.Changed("end") {
		form.EndDate = &f.end
	}
	if flags.Changed("status") {
		form.Status = &f.status
	}
	return form
}

func (a *app) availabilityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "availability",
		Aliases: []string{"avail"},
		Short:   "List and edit availability windows",
	}
	cmd.AddCommand(a.availabilityListCmd(), a.availabilityCreateCmd(), a.availabilityUpdateCmd(), a.availabilityDeleteCmd())
	return cmd
}

// refreshAvailability loads rooms and windows in parallel and prints the windows.
func (a *app) refreshAvailability(cmd *cobra.Command) error {
	ctx, cancel := a.context(cmd)
	defer cancel()

	view, err := a.client.LoadAvailabilityView(ctx)
	if err != nil {
		return explain(err)
	}
	out := cmd.OutOrStdout()
	if len(view.Rooms) == 0 {
		fmt.Fprintln(out, "No rooms yet; create one with `lodgectl rooms create` before adding availability.")
	}
	return printAvailability(out, view.Availability)
}

func (a *app) availabilityListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List availability windows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.guard(); err != nil {
				return err
			}
			return a.refreshAvailability(cmd)
		},
	}
}

func (a *app) availabilityCreateCmd() *cobra.Command {
	var flags availabilityFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Add an availability window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.guard(); err != nil {
				return err
			}
			ctx, cancel := a.context(cmd)
			defer cancel()

			window, err := a.client.CreateAvailability(ctx, flags.form(cmd))
			if err != nil {
				return explain(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created availability %d for %s\n", window.ID, window.Room.Name)
			return a.refreshAvailability(cmd)
		},
	}
	flags.register(cmd, true)
	return cmd
}

func (a *app) availabilityUpdateCmd() *cobra.Command {
	var flags availabilityFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change the dates or status of a window",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if _, err := a.guard(); err != nil {
				return err
			}
			ctx, cancel := a.context(cmd)
			defer cancel()

			if _, err := a.client.UpdateAvailability(ctx, id, flags.form(cmd)); err != nil {
				return explain(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated availability %d\n", id)
			return a.refreshAvailability(cmd)
		},
	}
	flags.register(cmd, false)
	return cmd
}

func (a *app) availabilityDeleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an availability window",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if _, err := a.guard(); err != nil {
				return err
			}
			ok, err := confirm(cmd, yes, "Are you sure you want to delete this availability?")
			if err != nil || !ok {
				return err
			}
			ctx, cancel := a.context(cmd)
			defer cancel()

			if err := a.client.DeleteAvailability(ctx, id); err != nil {
				return explain(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted availability %d\n", id)
			return a.refreshAvailability(cmd)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}
