// Package ctl implements taskflowctl, the operator CLI for schema
// migrations, per-user onboarding maintenance and token minting.
package ctl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/common"
	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/netx"
	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/server/auth"
	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/server/config"
	"github.com/spf13/cobra"
)

// NewRootCmd builds the command tree. Server configuration comes from cfg;
// open is called lazily by the commands that need the database.
func NewRootCmd(cfg *config.Config, open Opener) *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "taskflowctl",
		Short:         "TaskFlow operator tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVar(&verbose, "verbose", false, "write service logs to stderr")

	withBackend := func(cmd *cobra.Command, fn func(ctx context.Context, b Backend) error) error {
		logOutput := io.Discard
		if verbose {
			logOutput = cmd.ErrOrStderr()
		}
		ctx := cmd.Context()
		b, err := open(ctx, cfg, logOutput)
		if err != nil {
			return err
		}
		return errors.Join(fn(ctx, b), b.Close(context.WithoutCancel(ctx)))
	}

	root.AddCommand(
		migrateCmd(withBackend),
		bootstrapCmd(withBackend),
		restartCmd(withBackend),
		progressCmd(withBackend),
		statsCmd(withBackend),
		avatarCmd(withBackend),
		tokenCmd(cfg),
	)

	// server flags such as -d or -c are read by the config loader
	root.FParseErrWhitelist.UnknownFlags = true
	for _, c := range root.Commands() {
		c.FParseErrWhitelist.UnknownFlags = true
	}
	return root
}

type backendRunner func(cmd *cobra.Command, fn func(ctx context.Context, b Backend) error) error

func requireUser(userID string) error {
	if userID == "" {
		return fmt.Errorf("--user: %w", common.ErrorNoUserID)
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func migrateCmd(run backendRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, b Backend) error {
				if err := b.Migrate(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
				return nil
			})
		},
	}
}

func bootstrapCmd(run backendRunner) *cobra.Command {
	var userID, email string

	cmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "Ensure a user's profile exists and the tutorial is seeded",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireUser(userID); err != nil {
				return err
			}
			var emailPtr *string
			if email != "" {
				emailPtr = &email
			}
			return run(cmd, func(ctx context.Context, b Backend) error {
				if err := b.Bootstrap(ctx, userID, emailPtr); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "user %s bootstrapped\n", userID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id")
	cmd.Flags().StringVar(&email, "email", "", "e-mail stored on a new profile")
	return cmd
}

func restartCmd(run backendRunner) *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "restart",
		Short: "Delete and reseed a user's tutorial tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireUser(userID); err != nil {
				return err
			}
			return run(cmd, func(ctx context.Context, b Backend) error {
				if err := b.RestartTutorial(ctx, userID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "tutorial restarted for %s\n", userID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id")
	return cmd
}

func progressCmd(run backendRunner) *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Print a user's tutorial progress as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireUser(userID); err != nil {
				return err
			}
			return run(cmd, func(ctx context.Context, b Backend) error {
				p, err := b.Progress(ctx, userID)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), p)
			})
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id")
	return cmd
}

func statsCmd(run backendRunner) *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print a user's task statistics as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireUser(userID); err != nil {
				return err
			}
			return run(cmd, func(ctx context.Context, b Backend) error {
				s, err := b.Stats(ctx, userID)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), s)
			})
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id")
	return cmd
}

func avatarCmd(run backendRunner) *cobra.Command {
	var userID, file, contentType string

	cmd := &cobra.Command{
		Use:   "avatar",
		Short: "Upload an image as the user's avatar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireUser(userID); err != nil {
				return err
			}
			if file == "" {
				return errors.New("--file is required")
			}
			data, err := os.ReadFile(filepath.Clean(file))
			if err != nil {
				return fmt.Errorf("read avatar: %w", err)
			}
			return run(cmd, func(ctx context.Context, b Backend) error {
				key, url, err := b.AvatarUploadURL(ctx, userID)
				if err != nil {
					return err
				}
				if err := netx.UploadToPresignedURL(ctx, url, data, contentType); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), key)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id")
	cmd.Flags().StringVar(&file, "file", "", "image file to upload")
	cmd.Flags().StringVar(&contentType, "content-type", "", "content type (sniffed when empty)")
	return cmd
}

func tokenCmd(cfg *config.Config) *cobra.Command {
	var userID, email string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an access token for the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireUser(userID); err != nil {
				return err
			}
			if ttl <= 0 {
				ttl = cfg.AccessTokenValidityDuration
			}
			token, err := auth.GenerateToken(userID, email, []byte(cfg.SecretKey), ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "token subject (user id)")
	cmd.Flags().StringVar(&email, "email", "", "email claim")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (defaults to the configured validity)")
	return cmd
}
