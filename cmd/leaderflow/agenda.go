package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tazhate/leaderflow/internal/agenda"
	"github.com/tazhate/leaderflow/internal/notify"
)

func upcomingCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "upcoming",
		Short: "Show tasks, documents and events due in the next 24 hours",
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

			now := a.now()
			c := a.entities.Load(user.ID, now)
			window := a.settings.Load(user.ID).ReminderWindow()
			rows := upcomingRows(agenda.Upcoming(c.Events, c.Tasks, c.Documents, now, agenda.Lookahead), now, window)

			out := cmd.OutOrStdout()
			if ok, err := writeStructured(out, output, rows); ok {
				return err
			}
			renderUpcoming(out, rows)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "output format: table, yaml or json")
	return cmd
}

func summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show today's events and urgent tasks",
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

			now := a.now()
			c := a.entities.Load(user.ID, now)
			s := agenda.Today(c.Events, c.Tasks, now)

			out := cmd.OutOrStdout()
			if s.Empty() {
				fmt.Fprintln(out, mutedStyle.Render("Hôm nay không có sự kiện hay việc gấp."))
				return nil
			}

			composer, err := notify.NewComposer()
			if err != nil {
				return err
			}
			n, err := composer.DailySummary(user, s, false)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, titleStyle.Render(n.Title))
			fmt.Fprintln(out, n.Body)

			var events, tasks []string
			for _, e := range s.Events {
				events = append(events, fmt.Sprintf("%s  %s", e.FormatTime(), e.Title))
			}
			for _, t := range s.UrgentTasks {
				tasks = append(tasks, fmt.Sprintf("%s %s", t.Priority.Emoji(), t.Title))
			}
			renderSection(out, "Sự kiện", events)
			renderSection(out, "Việc gấp", tasks)
			return nil
		},
	}
}
