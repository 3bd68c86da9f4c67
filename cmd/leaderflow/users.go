package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tazhate/leaderflow/internal/domain"
)

func registerCmd() *cobra.Command {
	var fullName, newPassword, confirm string
	cmd := &cobra.Command{
		Use:   "register <username>",
		Short: "Create a leader account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			u, err := a.users.Register(args[0], fullName, newPassword, confirm)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Đăng ký thành công: %s (%s)\n", u.Username, u.FullName)
			return nil
		},
	}
	cmd.Flags().StringVar(&fullName, "name", "", "full name")
	cmd.Flags().StringVar(&newPassword, "new-password", "", "password (at least 6 characters)")
	cmd.Flags().StringVar(&confirm, "confirm", "", "password confirmation")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("new-password")
	return cmd
}

func usersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage accounts (admin only)",
	}
	cmd.AddCommand(usersListCmd(), usersAddCmd(), usersUpdateCmd(), usersDeleteCmd())
	return cmd
}

func usersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			actor, err := a.login()
			if err != nil {
				return err
			}
			users, err := a.users.List(actor)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("%-20s %-30s %s", "USERNAME", "HỌ TÊN", "VAI TRÒ")))
			for _, u := range users {
				fmt.Fprintf(out, "%-20s %-30s %s\n", u.Username, u.FullName, u.Role)
			}
			return nil
		},
	}
}

func usersAddCmd() *cobra.Command {
	var fullName, newPassword, role string
	cmd := &cobra.Command{
		Use:   "add <username>",
		Short: "Create an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			actor, err := a.login()
			if err != nil {
				return err
			}
			u, err := a.users.Create(actor, args[0], fullName, newPassword, domain.UserRole(role))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Đã tạo %s (%s)\n", u.Username, u.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&fullName, "name", "", "full name")
	cmd.Flags().StringVar(&newPassword, "new-password", "", "password (at least 6 characters)")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleLeader), "role: Admin or Lãnh đạo")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("new-password")
	return cmd
}

func usersUpdateCmd() *cobra.Command {
	var fullName, newPassword, role string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change an account's name, role or password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			actor, err := a.login()
			if err != nil {
				return err
			}
			u, err := a.users.Update(actor, args[0], fullName, newPassword, domain.UserRole(role))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Đã cập nhật %s (%s)\n", u.Username, u.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&fullName, "name", "", "new full name")
	cmd.Flags().StringVar(&newPassword, "new-password", "", "new password")
	cmd.Flags().StringVar(&role, "role", "", "new role: Admin or Lãnh đạo")
	return cmd
}

func usersDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an account and its data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			actor, err := a.login()
			if err != nil {
				return err
			}
			if err := a.users.Delete(actor, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Đã xóa %s\n", args[0])
			return nil
		},
	}
}
