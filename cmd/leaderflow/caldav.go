package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tazhate/leaderflow/internal/clients/caldav"
	"github.com/tazhate/leaderflow/internal/domain"
	"github.com/tazhate/leaderflow/internal/service"
)

func caldavCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "caldav",
		Short: "Synchronize events with a CalDAV calendar",
	}
	cmd.AddCommand(caldavCalendarsCmd(), caldavImportCmd(), caldavExportCmd())
	return cmd
}

func caldavCalendarsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "calendars",
		Short: "List calendars on the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			cal, err := a.calendarService()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			calendars, err := cal.DiscoverCalendars(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, c := range calendars {
				fmt.Fprintf(out, "%s\t%s\n", c.Path, c.DisplayName)
			}
			return nil
		},
	}
}

func caldavImportCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import remote events into the user's events",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			user, err := a.login()
			if err != nil {
				return err
			}
			cal, err := a.calendarService()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			now := a.now()
			from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
			to := from.AddDate(0, 0, days)
			remote, err := cal.Fetch(ctx, from, to)
			if err != nil {
				return err
			}

			c := a.entities.Load(user.ID, now)
			events, result := service.Merge(c.Events, remote, from, to)
			if err := a.entities.SaveEvents(user.ID, events); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Thêm %d, cập nhật %d, xóa %d sự kiện\n", result.Added, result.Updated, result.Deleted)
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 7, "number of days to import, starting today")
	return cmd
}

func caldavExportCmd() *cobra.Command {
	var ics bool
	cmd := &cobra.Command{
		Use:   "export <event-id>",
		Short: "Push one event to the remote calendar",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			user, err := a.login()
			if err != nil {
				return err
			}

			var event *domain.Event
			for _, e := range a.entities.Load(user.ID, a.now()).Events {
				if e.ID == args[0] {
					event = &e
					break
				}
			}
			if event == nil {
				return fmt.Errorf("event %s: %w", args[0], domain.ErrNotFound)
			}

			if ics {
				remote := service.ToCalDAV(*event)
				text, err := caldav.Serialize(caldav.EncodeEvent(&remote, a.now()))
				if err != nil {
					return fmt.Errorf("encode event: %w", err)
				}
				fmt.Fprint(cmd.OutOrStdout(), text)
				return nil
			}

			cal, err := a.calendarService()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			if err := cal.Export(ctx, *event); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Đã đồng bộ %q\n", event.Title)
			return nil
		},
	}
	cmd.Flags().BoolVar(&ics, "ics", false, "print the event as iCalendar instead of uploading it")
	return cmd
}
