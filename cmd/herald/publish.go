package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/cuemby/herald/pkg/service"
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish a notification to the server of record",
	Long: `Publish a notification, either from a YAML manifest or from flags.

Example manifest:
  title: Maintenance window
  message: The platform is read-only on Saturday night.
  type: warning
  targetRoles: [admin, manager]

Examples:
  herald publish -f maintenance.yaml --sender ops-1
  herald publish --title "Welcome" --message "Hello" --audience all --sender system`,
	RunE: runPublish,
}

func init() {
	publishCmd.Flags().StringP("file", "f", "", "YAML manifest to publish")
	publishCmd.Flags().String("server", "http://localhost:8080", "Server of record base URL")
	publishCmd.Flags().String("sender", "", "Author recipient ID (required)")
	publishCmd.Flags().String("token", "", "Bearer token (required when the server enforces auth)")
	publishCmd.Flags().String("title", "", "Notification title")
	publishCmd.Flags().String("message", "", "Notification message")
	publishCmd.Flags().String("type", "", "Notification type (info|success|warning|error)")
	publishCmd.Flags().String("status", "", "Publication status (draft|active)")
	publishCmd.Flags().String("scheduled-at", "", "RFC3339 release time")
	publishCmd.Flags().StringSlice("users", nil, "Target recipient IDs")
	publishCmd.Flags().StringSlice("roles", nil, "Target roles (authoritative when set)")
	publishCmd.Flags().String("audience", "", "Legacy audience string ('all' matches every role)")
	_ = publishCmd.MarkFlagRequired("sender")

	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, args []string) error {
	serverURL, _ := cmd.Flags().GetString("server")
	sender, _ := cmd.Flags().GetString("sender")
	token, _ := cmd.Flags().GetString("token")

	req, err := buildPublishRequest(cmd)
	if err != nil {
		return err
	}
	if req.Title == "" || req.Message == "" {
		return fmt.Errorf("a title and a message are required")
	}

	var opts []service.Option
	if token != "" {
		opts = append(opts, service.WithToken(token))
	}
	client := service.NewClient(serverURL, opts...)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	id, err := client.Publish(ctx, sender, req)
	if err != nil {
		return fmt.Errorf("publish failed: %v", err)
	}

	fmt.Printf("✓ Notification published: %s\n", id)
	return nil
}

func buildPublishRequest(cmd *cobra.Command) (*service.PublishRequest, error) {
	var req service.PublishRequest

	if filename, _ := cmd.Flags().GetString("file"); filename != "" {
		data, err := os.ReadFile(filename)
		if err != nil {
			return nil, fmt.Errorf("failed to read manifest: %v", err)
		}
		if err := yaml.Unmarshal(data, &req); err != nil {
			return nil, fmt.Errorf("failed to parse manifest: %v", err)
		}
	}

	// Flags override manifest fields
	if title, _ := cmd.Flags().GetString("title"); title != "" {
		req.Title = title
	}
	if message, _ := cmd.Flags().GetString("message"); message != "" {
		req.Message = message
	}
	if typ, _ := cmd.Flags().GetString("type"); typ != "" {
		req.Type = typ
	}
	if status, _ := cmd.Flags().GetString("status"); status != "" {
		req.Status = status
	}
	if scheduledAt, _ := cmd.Flags().GetString("scheduled-at"); scheduledAt != "" {
		req.ScheduledAt = scheduledAt
	}
	if users, _ := cmd.Flags().GetStringSlice("users"); len(users) > 0 {
		req.TargetUserIDs = users
	}
	if roles, _ := cmd.Flags().GetStringSlice("roles"); len(roles) > 0 {
		req.TargetRoles = roles
	}
	if audience, _ := cmd.Flags().GetString("audience"); audience != "" {
		req.TargetAudience = audience
	}
	return &req, nil
}
