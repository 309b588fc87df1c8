package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var notificationsCmd = &cobra.Command{
	Use:     "notifications",
	Aliases: []string{"notif"},
	Short:   "Read and manage notifications",
}

var notificationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notifications",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireLogin(); err != nil {
			return err
		}
		items, total, err := app.Resources.Notifications.List(cmd.Context(), pagerFlags())
		if err != nil {
			return fmt.Errorf("listing notifications: %w", err)
		}
		for _, n := range items {
			marker := dimStyle.Render("  ")
			title := n.Title
			if !n.IsRead {
				marker = unreadStyle.Render("● ")
				title = unreadStyle.Render(title)
			}
			fmt.Printf("%s%-4d %s %s\n", marker, n.ID, title,
				dimStyle.Render(n.CreatedAt.Format("2006-01-02 15:04")))
			if n.Message != "" {
				fmt.Printf("       %s\n", n.Message)
			}
		}
		fmt.Println(dimStyle.Render(fmt.Sprintf("%d notification(s)", total)))
		return nil
	},
}

var notificationsReadCmd = &cobra.Command{
	Use:   "read <id>",
	Short: "Mark a notification as read",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireLogin(); err != nil {
			return err
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid notification id %q", args[0])
		}
		if err := app.Resources.Notifications.MarkRead(cmd.Context(), id); err != nil {
			return fmt.Errorf("marking notification read: %w", err)
		}
		fmt.Println(okStyle.Render(fmt.Sprintf("Notification %d marked as read", id)))
		return nil
	},
}

var notificationsReadAllCmd = &cobra.Command{
	Use:   "read-all",
	Short: "Mark every notification as read",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireLogin(); err != nil {
			return err
		}
		if err := app.Resources.Notifications.MarkAllRead(cmd.Context()); err != nil {
			return fmt.Errorf("marking all read: %w", err)
		}
		fmt.Println(okStyle.Render("All notifications marked as read"))
		return nil
	},
}

var notificationsRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a notification",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireLogin(); err != nil {
			return err
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid notification id %q", args[0])
		}
		if err := app.Resources.Notifications.Delete(cmd.Context(), id); err != nil {
			return fmt.Errorf("deleting notification: %w", err)
		}
		fmt.Println(okStyle.Render(fmt.Sprintf("Notification %d deleted", id)))
		return nil
	},
}

func init() {
	notificationsCmd.AddCommand(notificationsListCmd, notificationsReadCmd,
		notificationsReadAllCmd, notificationsRmCmd)
	RootCmd.AddCommand(notificationsCmd)
}
