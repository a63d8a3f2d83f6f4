package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/lodge-manager/internal/client"
)

const dateLayout = "2006-01-02"

var errNotLoggedIn = errors.New("not logged in: please log in with `lodgectl login --email <email>`")

// explain turns client errors into messages for the terminal.
func explain(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, client.ErrSessionExpired):
		return fmt.Errorf("session expired: %w", errNotLoggedIn)
	case errors.Is(err, client.ErrNoSession):
		return errNotLoggedIn
	}

	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	fields := apiErr.FieldErrors()
	if len(fields) == 0 {
		return errors.New(apiErr.Message)
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(apiErr.Message)
	for _, name := range names {
		label := name
		if label == "" {
			label = "form"
		}
		fmt.Fprintf(&b, "\n  %s: %s", label, fields[name])
	}
	return errors.New(b.String())
}

func printRooms(w io.Writer, rooms []client.Room) error {
	if len(rooms) == 0 {
		_, err := fmt.Fprintln(w, "No rooms added yet.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTYPE\tCAPACITY\tDESCRIPTION")
	for _, room := range rooms {
		description := "-"
		if room.Description != nil {
			description = *room.Description
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n", room.ID, room.Name, room.Type, room.Capacity, description)
	}
	return tw.Flush()
}

func printAvailability(w io.Writer, windows []client.Availability) error {
	if len(windows) == 0 {
		_, err := fmt.Fprintln(w, "No availabilities added yet.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tROOM\tSTART\tEND\tSTATUS")
	for _, window := range windows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			window.ID, window.Room.Name, formatDate(window.StartDate), formatDate(window.EndDate), window.Status)
	}
	return tw.Flush()
}

func formatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

func prompt(cmd *cobra.Command, label string) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), label)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// confirm asks before a delete unless --yes was given.
func confirm(cmd *cobra.Command, yes bool, question string) (bool, error) {
	if yes {
		return true, nil
	}
	answer, err := prompt(cmd, question+" [y/N]: ")
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes", nil
}
