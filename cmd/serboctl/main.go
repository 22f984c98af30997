package main

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"serbod/pkg/types"
)

var (
	flagAddr string

	createID    string
	startPort   int
	consoleTail int
)

var rootCmd = &cobra.Command{
	Use:   "serboctl",
	Short: "Control a running serbod daemon",
	Long: `serboctl drives the serbod HTTP API: create and delete game servers,
start and stop them, switch versions, and read or write their consoles.`,
	SilenceUsage: true,
}

var createCmd = &cobra.Command{
	Use:   "create <version>",
	Short: "Create a server from a version template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient(flagAddr)
		form := url.Values{"version": {args[0]}}
		if createID != "" {
			form.Set("target_id", createID)
		}
		body, err := c.postForm("/create", form)
		if err != nil {
			return err
		}
		if body == "-1" {
			return fmt.Errorf("create failed (unknown version or id already exists)")
		}
		fmt.Println(body)
		return nil
	},
}

var startCmd = &cobra.Command{
	Use:   "start <id>",
	Short: "Start a server and print its bound port",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient(flagAddr)
		form := url.Values{"target_id": {args[0]}}
		if startPort != 0 {
			form.Set("port", fmt.Sprint(startPort))
		}
		body, err := c.postForm("/start", form)
		if err != nil {
			return err
		}
		switch body {
		case "-1":
			return fmt.Errorf("start failed (missing files?)")
		case "0":
			return fmt.Errorf("server %s is already online", args[0])
		}
		fmt.Println(body)
		return nil
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop <id>",
	Short: "Gracefully stop a running server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return newClient(flagAddr).postCode("/stop", url.Values{"target_id": {args[0]}})
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Stop a server and remove its files",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return newClient(flagAddr).postCode("/delete", url.Values{"target_id": {args[0]}})
	},
}

var versionCmd = &cobra.Command{
	Use:   "version <id> <version>",
	Short: "Switch a server to another version",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return newClient(flagAddr).postCode("/version", url.Values{
			"target_id":      {args[0]},
			"target_version": {args[1]},
		})
	},
}

var sendCmd = &cobra.Command{
	Use:   "send <id> <command...>",
	Short: "Queue a console command on a running server",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return newClient(flagAddr).postCode("/writeConsole", url.Values{
			"target_id": {args[0]},
			"msg":       {strings.Join(args[1:], " ")},
		})
	},
}

var consoleCmd = &cobra.Command{
	Use:   "console <id>",
	Short: "Print captured console output",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lines, err := newClient(flagAddr).console(args[0], consoleTail)
		if err != nil {
			return err
		}
		for _, line := range lines {
			fmt.Println(line)
		}
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon status and supervised servers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var st types.StatusResponse
		if err := newClient(flagAddr).getJSON("/status", &st); err != nil {
			return err
		}
		fmt.Printf("uptime: %s\n", time.Duration(st.UptimeSeconds)*time.Second)
		fmt.Printf("starts: %d  stops: %d\n", st.StartsTotal, st.StopsTotal)
		fmt.Printf("versions: %d\n", len(st.Versions))
		for _, v := range st.Versions {
			fmt.Printf("  %s\n", v.ID)
		}
		fmt.Printf("servers: %d\n", len(st.Servers))
		for _, s := range st.Servers {
			fmt.Printf("  %s  state=%s port=%d pid=%d lines=%d\n",
				s.ID, s.State, s.Port, s.PID, s.ConsoleLines)
		}
		return nil
	},
}

func init() {
	def := os.Getenv("SERBOD_ADDR")
	if def == "" {
		def = "http://127.0.0.1:8080"
	}
	rootCmd.PersistentFlags().StringVar(&flagAddr, "addr", def, "serbod base URL")

	createCmd.Flags().StringVar(&createID, "id", "", "Explicit server id (default: generated)")
	startCmd.Flags().IntVar(&startPort, "port", 0, "Port to launch on (default: picked from the configured range)")
	consoleCmd.Flags().IntVar(&consoleTail, "from", 0, "First console line to print")

	rootCmd.AddCommand(createCmd, startCmd, stopCmd, deleteCmd, versionCmd, sendCmd, consoleCmd, statusCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
