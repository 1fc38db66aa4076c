package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/frahmantamala/sensor-monitoring/internal/report"
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "List and create sensor reports",
}

var reportsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the signed-in user's reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := newCLIDeps()
		if err != nil {
			return err
		}
		current, err := deps.Auth.CurrentUser()
		if err != nil {
			return err
		}

		service := report.NewService(deps.Gateway, deps.Logger)
		reports, err := service.Load(cmd.Context(), current.Username)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSENSOR\tTYPE\tCREATED")
		for _, r := range reports {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.ID, r.SensorID, r.ReportType, r.CreatedAt.Format(time.RFC3339))
		}
		return w.Flush()
	},
}

var reportsCreateCmd = &cobra.Command{
	Use:   "create <sensor-id> <type>",
	Short: "Create a report (png, pdf or txt)",
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

		service := report.NewService(deps.Gateway, deps.Logger)
		dto := report.CreateReportDTO{
			Username:   current.Username,
			SensorID:   args[0],
			ReportType: args[1],
		}
		if _, err := service.Create(cmd.Context(), dto); err != nil {
			return err
		}
		fmt.Println("report created")
		return nil
	},
}

func init() {
	reportsCmd.AddCommand(reportsListCmd)
	reportsCmd.AddCommand(reportsCreateCmd)
}
