package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cuemby/herald/pkg/config"
	"github.com/cuemby/herald/pkg/events"
	"github.com/cuemby/herald/pkg/identity"
	"github.com/cuemby/herald/pkg/inbox"
	"github.com/cuemby/herald/pkg/log"
	"github.com/cuemby/herald/pkg/service"
	"github.com/cuemby/herald/pkg/types"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow a recipient's inbox against a server of record",
	Long: `Start a sync session for a recipient and print the inbox view as it
changes. This is the CLI face of the same engine a UI would embed.

Examples:
  # Development mode, explicit identity
  herald watch --server http://localhost:8080 --recipient user-42 --role manager

  # Authenticated with a token minted by 'herald token'
  herald watch --server http://localhost:8080 --token $TOKEN --auth-secret my-secret`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().String("server", "http://localhost:8080", "Server of record base URL")
	watchCmd.Flags().String("recipient", "", "Recipient ID (development mode)")
	watchCmd.Flags().String("role", "", "Recipient role (development mode)")
	watchCmd.Flags().String("token", "", "Bearer token carrying the recipient identity")
	watchCmd.Flags().String("auth-secret", "", "Secret to validate the token with")
	watchCmd.Flags().Duration("interval", config.DefaultPollInterval, "Poll interval")

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	serverURL, _ := cmd.Flags().GetString("server")
	recipientID, _ := cmd.Flags().GetString("recipient")
	role, _ := cmd.Flags().GetString("role")
	token, _ := cmd.Flags().GetString("token")
	secret, _ := cmd.Flags().GetString("auth-secret")
	interval, _ := cmd.Flags().GetDuration("interval")

	log.Init(log.Config{Level: log.WarnLevel})

	var provider identity.Provider
	var opts []service.Option
	switch {
	case token != "":
		if secret == "" {
			return fmt.Errorf("--token requires --auth-secret to validate the identity")
		}
		session, err := identity.SessionFromToken(secret, token)
		if err != nil {
			return fmt.Errorf("invalid token: %v", err)
		}
		provider = session
		opts = append(opts, service.WithToken(token))
	case recipientID != "":
		session := identity.NewSession(types.Recipient{ID: recipientID, Role: role})
		provider = session
		opts = append(opts, service.WithRole(session.Recipient().Role))
	default:
		return fmt.Errorf("either --token or --recipient is required")
	}

	client := service.NewClient(serverURL, opts...)
	ib := inbox.New(client, config.EngineConfig{PollInterval: interval})
	defer ib.Close()

	sub := ib.Subscribe()
	defer ib.Unsubscribe(sub)

	if err := ib.Start(provider); err != nil {
		return err
	}

	fmt.Printf("Watching inbox for %s (poll every %s). Press Ctrl+C to stop.\n",
		provider.Recipient().ID, interval)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	for {
		select {
		case event, ok := <-sub:
			if !ok {
				return nil
			}
			printEvent(ib, event)
			if event.Type == events.EventStopped {
				fmt.Println("Session ended.")
				return nil
			}
		case <-sigCh:
			fmt.Println("\nStopping...")
			return nil
		}
	}
}

func printEvent(ib *inbox.Inbox, event *events.Event) {
	fmt.Printf("[%s] %s  visible=%d unread=%d\n",
		event.Timestamp.Format(time.TimeOnly), event.Type, event.Visible, event.Unread)
	if event.Type != events.EventRefreshed {
		return
	}
	for _, n := range ib.Notifications() {
		marker := " "
		if !n.IsRead {
			marker = "*"
		}
		fmt.Printf("  %s [%s] %s: %s\n", marker, n.Type, n.Title, n.Message)
	}
}
