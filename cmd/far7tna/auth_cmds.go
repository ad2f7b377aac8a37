package main

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/far7tna/portal/apiclient"
	"github.com/far7tna/portal/credentials"
	apperrors "github.com/far7tna/portal/internal/errors"
	"github.com/far7tna/portal/session"
)

func newLoginCmd(opts *rootOptions) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), opts, func(ctx context.Context, a *app) error {
				creds, err := a.auth.Login(ctx, email, password)
				if err != nil {
					var apiErr *apiclient.APIError
					if apperrors.Is(err, apperrors.ErrInvalidCredentials) && apperrors.As(err, &apiErr) {
						return errors.New(apiErr.Message)
					}
					return err
				}

				sess, err := session.Open(ctx, a.store)
				if err != nil {
					return err
				}
				defer sess.Close()
				if err := sess.Login(ctx, creds); err != nil {
					return err
				}

				cmd.Printf("Signed in as %s (%s)\n", creds.User.FullName, creds.User.Role)
				cmd.Printf("Landing page: %s\n", session.LandingPath(creds.User.Role))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), opts, func(ctx context.Context, a *app) error {
				sess, err := session.Open(ctx, a.store)
				if err != nil {
					return err
				}
				defer sess.Close()
				if err := sess.Logout(ctx); err != nil {
					return err
				}
				cmd.Println("Signed out")
				return nil
			})
		},
	}
}

func newWhoamiCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed in user and access token expiry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), opts, func(ctx context.Context, a *app) error {
				creds, ok := a.store.Load(ctx)
				if !ok {
					cmd.Println("Not signed in")
					return nil
				}
				cmd.Printf("%s <%s>\n", creds.User.FullName, creds.User.Email)
				cmd.Printf("Role:    %s\n", creds.User.Role)

				claims, err := credentials.AccessClaims(creds.AccessToken)
				if err != nil {
					cmd.Println("Token:   unreadable")
					return nil
				}
				state := "valid"
				if claims.Expired(time.Now()) {
					state = "expired, refreshed on next request"
				}
				if !claims.ExpiresAt.IsZero() {
					cmd.Printf("Expires: %s (%s)\n", claims.ExpiresAt.Local().Format(time.RFC1123), state)
				}
				return nil
			})
		},
	}
}
