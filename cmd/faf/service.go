package main

import (
	"github.com/spf13/cobra"

	"github.com/marek/faf/internal/service"
)

var serviceCmd = &cobra.Command{
	Use:   "service",
	Short: "Manage the launchd background service (macOS)",
}

func init() {
	serviceCmd.AddCommand(
		&cobra.Command{
			Use:   "install",
			Short: "Install the binary and load the launchd service",
			RunE:  func(_ *cobra.Command, _ []string) error { return service.Install() },
		},
		&cobra.Command{
			Use:   "uninstall",
			Short: "Unload the service and remove the binary",
			RunE:  func(_ *cobra.Command, _ []string) error { return service.Uninstall() },
		},
		&cobra.Command{
			Use:   "start",
			Short: "Start the service",
			RunE:  func(_ *cobra.Command, _ []string) error { return service.Start() },
		},
		&cobra.Command{
			Use:   "stop",
			Short: "Stop the service",
			RunE:  func(_ *cobra.Command, _ []string) error { return service.Stop() },
		},
		&cobra.Command{
			Use:   "restart",
			Short: "Restart the service",
			RunE:  func(_ *cobra.Command, _ []string) error { return service.Restart() },
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show service status",
			RunE:  func(_ *cobra.Command, _ []string) error { return service.Status() },
		},
		&cobra.Command{
			Use:   "logs",
			Short: "Tail the service logs",
			RunE:  func(_ *cobra.Command, _ []string) error { return service.Logs() },
		},
	)
}
