package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/example/lodge-manager/internal/client"
)

// roomFlags is the room form shared by create and update. Only flags the user
// set are sent.
type roomFlags struct {
	name        string
	capacity    int
	roomType    string
	description string
}

func (f *roomFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "room name")
	cmd.Flags().IntVar(&f.capacity, "capacity", 0, "number of guests")
	cmd.Flags().StringVar(&f.roomType, "type", "", "room type, for example cabin or suite")
	cmd.Flags().StringVar(&f.description, "description", "", "free-text description; empty clears it")
}

func (f *roomFlags) form(cmd *cobra.Command) client.RoomForm {
	var form client.RoomForm
	flags := cmd.Flags()
	if flags.Changed("name") {
		form.Name = &f.name
	}
	if flags.Changed("capacity") {
		form.Capacity = &f.capacity
	}
	if flags.Changed("type") {
		form.Type = &f.roomType
	}
	if flags.Changed("description") {
		form.Description = &f.description
	}
	return form
}

func (a *app) roomsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rooms",
		Short: "List and edit rooms",
	}
	cmd.AddCommand(a.roomsListCmd(), a.roomsCreateCmd(), a.roomsUpdateCmd(), a.roomsDeleteCmd())
	return cmd
}

// refreshRooms re-fetches and prints the full list after a mutation.
func (a *app) refreshRooms(cmd *cobra.Command) error {
	ctx, cancel := a.context(cmd)
	defer cancel()

	rooms, err := a.client.ListRooms(ctx)
	if err != nil {
		return explain(err)
	}
	return printRooms(cmd.OutOrStdout(), rooms)
}

func (a *app) roomsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List rooms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.guard(); err != nil {
				return err
			}
			return a.refreshRooms(cmd)
		},
	}
}

func (a *app) roomsCreateCmd() *cobra.Command {
	var flags roomFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Add a room",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.guard(); err != nil {
				return err
			}
			ctx, cancel := a.context(cmd)
			defer cancel()

			room, err := a.client.CreateRoom(ctx, flags.form(cmd))
			if err != nil {
				return explain(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created room %d\n", room.ID)
			return a.refreshRooms(cmd)
		},
	}
	flags.register(cmd)
	return cmd
}

func (a *app) roomsUpdateCmd() *cobra.Command {
	var flags roomFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit a room",
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

			if _, err := a.client.UpdateRoom(ctx, id, flags.form(cmd)); err != nil {
				return explain(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated room %d\n", id)
			return a.refreshRooms(cmd)
		},
	}
	flags.register(cmd)
	return cmd
}

func (a *app) roomsDeleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a room and its availability",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if _, err := a.guard(); err != nil {
				return err
			}
			ok, err := confirm(cmd, yes, "Are you sure you want to delete this room?")
			if err != nil || !ok {
				return err
			}
			ctx, cancel := a.context(cmd)
			defer cancel()

			if err := a.client.DeleteRoom(ctx, id); err != nil {
				return explain(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted room %d\n", id)
			return a.refreshRooms(cmd)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}
