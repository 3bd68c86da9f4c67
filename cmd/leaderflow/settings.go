package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func settingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change notification settings",
	}
	cmd.AddCommand(settingsShowCmd(), settingsSetCmd())
	return cmd
}

func settingsShowCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show notification settings",
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
			s := a.settings.Load(user.ID)

			out := cmd.OutOrStdout()
			if ok, err := writeStructured(out, output, s); ok {
				return err
			}
			fmt.Fprintf(out, "Nhắc trước:     %d phút\n", s.ReminderTime)
			fmt.Fprintf(out, "Tần suất quét:  %d giây\n", s.CheckFrequency)
			fmt.Fprintf(out, "Âm thanh:       %t\n", s.EnableSound)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", outputTable, "output format: table, yaml or json")
	return cmd
}

func settingsSetCmd() *cobra.Command {
	var (
		reminder  int
		frequency int
		sound     bool
	)
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change notification settings",
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

			s := a.settings.Load(user.ID)
			flags := cmd.Flags()
			if flags.Changed("reminder") {
				s.ReminderTime = reminder
			}
			if flags.Changed("frequency") {
				s.CheckFrequency = frequency
			}
			if flags.Changed("sound") {
				s.EnableSound = sound
			}
			if err := a.settings.Save(user.ID, s); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Đã lưu cài đặt.")
			return nil
		},
	}
	cmd.Flags().IntVar(&reminder, "reminder", 30, "minutes before the deadline to alert")
	cmd.Flags().IntVar(&frequency, "frequency", 60, "scan interval in seconds: 30, 60 or 300")
	cmd.Flags().BoolVar(&sound, "sound", true, "play sound with alerts")
	return cmd
}
