package main

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"github.com/user/frame/internal/client"
	"github.com/user/frame/internal/screen"
)

func newProfileCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Show your profile statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var p *screen.Profile
			if fav := a.favorites(); fav != nil {
				p = screen.NewProfile(fav, a.cfg)
			} else {
				p = screen.NewProfile(nil, a.cfg)
			}

			stats, err := p.Stats(cmd.Context())
			if client.IsStatus(err, http.StatusUnauthorized) {
				return errors.New("session expired: run `frame login` again")
			}
			if err != nil {
				return err
			}
			return screen.RenderProfile(cmd.OutOrStdout(), stats, p.LoggedIn())
		},
	}
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := screen.NewProfile(nil, a.cfg).Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newLoginCmd(a *app) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := a.api.Login(cmd.Context(), email, password)
			if client.IsStatus(err, http.StatusUnauthorized) {
				return errors.New("invalid email or password")
			}
			if err != nil {
				return err
			}
			if err := a.cfg.SetToken(token); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (token saved to %s)\n", email, a.cfg.Path())
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")
	return cmd
}

func newRegisterCmd(a *app) *cobra.Command {
	var email, username, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and store the access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := a.api.Register(cmd.Context(), email, username, password)
			if err != nil {
				return err
			}
			if err := a.cfg.SetToken(token); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s (token saved to %s)\n", email, a.cfg.Path())
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&username, "username", "", "display name (3-50 characters)")
	cmd.Flags().StringVar(&password, "password", "", "password (at least 6 characters)")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("username")
	cmd.MarkFlagRequired("password")
	return cmd
}
