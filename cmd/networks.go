package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/frahmantamala/sensor-monitoring/internal/sensor"
)

var networksCmd = &cobra.Command{
	Use:   "networks",
	Short: "Browse the company's sensor networks",
}

var networksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List networks visible to the signed-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := newCLIDeps()
		if err != nil {
			return err
		}
		current, err := deps.Auth.CurrentUser()
		if err != nil {
			return err
		}

		service := sensor.NewService(deps.Gateway, deps.Logger)
		networks, err := service.LoadNetworks(cmd.Context(), current.CompanyName())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tCOMPANY")
		for _, n := range networks {
			fmt.Fprintf(w, "%s\t%s\t%s\n", n.ID, n.Name, n.Company)
		}
		return w.Flush()
	},
}

var networksSensorsCmd = &cobra.Command{
	Use:   "sensors <network-id>",
	Short: "List sensors in a network, with the signed-in user's access",
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

		service := sensor.NewService(deps.Gateway, deps.Logger)
		sensors, err := service.LoadSensors(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SENSOR\tLOCATION\tACTIVE\tACCESS")
		for _, sn := range sensors {
			accessible, err := service.CanAccess(actor, args[0], sn.SensorID)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s\t%s\t%v\t%v\n", sn.SensorID, sn.Location, sn.IsActive, accessible)
		}
		return w.Flush()
	},
}

var networksDataCmd = &cobra.Command{
	Use:   "data <network-id> <sensor-id>",
	Short: "Show a sensor's time-series data",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := newCLIDeps()
		if err != nil {
			return err
		}
		actor, err := deps.Auth.CurrentActor()
		if err != nil {
			return err
		}

		service := sensor.NewService(deps.Gateway, deps.Logger)
		if _, err := service.LoadSensors(cmd.Context(), args[0]); err != nil {
			return err
		}

		rows, headers, err := service.SensorData(cmd.Context(), actor, args[0], args[1])
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, strings.Join(headers, "\t"))
		for _, row := range rows {
			cells := make([]string, len(headers))
			for i, header := range headers {
				if value, ok := row[header]; ok {
					cells[i] = fmt.Sprintf("%v", value)
				}
			}
			fmt.Fprintln(w, strings.Join(cells, "\t"))
		}
		return w.Flush()
	},
}

func init() {
	networksCmd.AddCommand(networksListCmd)
	networksCmd.AddCommand(networksSensorsCmd)
	networksCmd.AddCommand(networksDataCmd)
}
