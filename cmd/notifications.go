package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/frahmantamala/sensor-monitoring/internal"
	"github.com/frahmantamala/sensor-monitoring/internal/accessrequest"
	"github.com/frahmantamala/sensor-monitoring/internal/notification"
)

var notificationsCmd = &cobra.Command{
	Use:   "notifications",
	Short: "Inspect and act on the signed-in user's notifications",
}

var notificationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notifications addressed to the signed-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := newCLIDeps()
		if err != nil {
			return err
		}
		actor, err := deps.Auth.CurrentActor()
		if err != nil {
			return err
		}

		ctx := internal.ContextWithUsername(cmd.Context(), actor.Username)
		store := notification.NewStore(deps.Gateway, deps.Bus, deps.Logger)
		notifications, err := store.Load(ctx, actor)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTYPE\tSTATUS\tREAD\tMESSAGE")
		for _, n := range notifications {
			fmt.Fprintf(w, "%s\t%s\t%s\t%v\t%s\n", n.ID, n.Type, n.Status, n.Read, n.Message)
		}
		return w.Flush()
	},
}

var notificationsReadCmd = &cobra.Command{
	Use:   "read <notification-id>",
	Short: "Mark a notification as read",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := newCLIDeps()
		if err != nil {
			return err
		}
		actor, err := deps.Auth.CurrentActor()
		if err != nil {
			return err
		}

		ctx := internal.ContextWithUsername(cmd.Context(), actor.Username)
		store := notification.NewStore(deps.Gateway, deps.Bus, deps.Logger)
		if _, err := store.Load(ctx, actor); err != nil {
			return err
		}
		return store.MarkRead(ctx, args[0])
	},
}

var notificationsAckCmd = &cobra.Command{
	Use:   "acknowledge <notification-id>",
	Short: "Acknowledge an informational notification",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := newCLIDeps()
		if err != nil {
			return err
		}
		actor, err := deps.Auth.CurrentActor()
		if err != nil {
			return err
		}

		ctx := internal.ContextWithUsername(cmd.Context(), actor.Username)
		store := notification.NewStore(deps.Gateway, deps.Bus, deps.Logger)
		if _, err := store.Load(ctx, actor); err != nil {
			return err
		}
		return store.ChangeStatus(ctx, args[0], notification.StatusAcknowledged)
	},
}

func respondCmd(use, short string, decision notification.Status) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := newCLIDeps()
			if err != nil {
				return err
			}
			actor, err := deps.Auth.CurrentActor()
			if err != nil {
				return err
			}

			ctx := internal.ContextWithUsername(cmd.Context(), actor.Username)
			store := notification.NewStore(deps.Gateway, deps.Bus, deps.Logger)
			if _, err := store.Load(ctx, actor); err != nil {
				return err
			}

			workflow := accessrequest.NewService(deps.Gateway, store, deps.Logger)
			if err := workflow.RespondToAccessRequest(ctx, actor, args[0], decision); err != nil {
				return err
			}
			fmt.Printf("request %s %s\n", args[0], decision)
			return nil
		},
	}
}

var notificationsRequestSensorCmd = &cobra.Command{
	Use:   "request-sensor <network-id> <sensor-id>",
	Short: "Ask the company admins for access to a sensor",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := newCLIDeps()
		if err != nil {
			return err
		}
		current, err := deps.Auth.CurrentUser()
		if err != nil {
			return err
		}

		ctx := internal.ContextWithUsername(cmd.Context(), current.Username)
		workflow := accessrequest.NewService(deps.Gateway, nil, deps.Logger)
		if err := workflow.RequestSensorAccess(ctx, current.Actor(), args[1], args[0], current.CompanyName()); err != nil {
			return err
		}
		fmt.Println("sensor access requested")
		return nil
	},
}

var notificationsRequestCompanyCmd = &cobra.Command{
	Use:   "request-company <company> <admin-username>",
	Short: "Ask a company admin to take you into the company",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := newCLIDeps()
		if err != nil {
			return err
		}
		current, err := deps.Auth.CurrentUser()
		if err != nil {
			return err
		}

		ctx := internal.ContextWithUsername(cmd.Context(), current.Username)
		workflow := accessrequest.NewService(deps.Gateway, nil, deps.Logger)
		if err := workflow.RequestCompanyAccess(ctx, current.Username, args[0], args[1]); err != nil {
			return err
		}
		fmt.Println("company access requested")
		return nil
	},
}

func init() {
	notificationsCmd.AddCommand(notificationsListCmd)
	notificationsCmd.AddCommand(notificationsReadCmd)
	notificationsCmd.AddCommand(notificationsAckCmd)
	notificationsCmd.AddCommand(respondCmd("approve <notification-id>", "Approve a pending access request", notification.StatusApproved))
	notificationsCmd.AddCommand(respondCmd("reject <notification-id>", "Reject a pending access request", notification.StatusRejected))
	notificationsCmd.AddCommand(notificationsRequestSensorCmd)
	notificationsCmd.AddCommand(notificationsRequestCompanyCmd)
}
