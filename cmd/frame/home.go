package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/user/frame/internal/client"
	"github.com/user/frame/internal/screen"
)

func newHomeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "home",
		Short: "Show the home screen (featured, Popular Now, New Releases)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			home := screen.NewHome(a.api)
			go func() {
				<-ctx.Done()
				home.Close()
			}()

			s := home.Refresh(ctx)
			if err := screen.RenderHome(cmd.OutOrStdout(), s); err != nil {
				return err
			}
			if s.Phase == screen.Error {
				return errors.New(s.Message)
			}
			return nil
		},
	}
}

func newMovieCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "movie <id>",
		Short: "Show movie details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			m, err := a.api.GetMovie(cmd.Context(), id)
			if err != nil {
				return err
			}

			var d *screen.Details
			if fav := a.favorites(); fav != nil {
				d = screen.NewDetails(*m, fav)
			} else {
				d = screen.NewDetails(*m, nil)
			}
			inList, err := d.InMyList(cmd.Context())
			if client.IsStatus(err, http.StatusUnauthorized) {
				inList, err = false, nil
			}
			if err != nil {
				return err
			}
			return screen.RenderDetails(cmd.OutOrStdout(), d.Movie, inList)
		},
	}
}

func newMyListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mylist <id>",
		Short: "Add a movie to My List, or remove it if already there",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var d *screen.Details
			if fav := a.favorites(); fav != nil {
				d = screen.NewDetails(movieRef(id), fav)
			} else {
				d = screen.NewDetails(movieRef(id), nil)
			}

			on, err := d.ToggleMyList(cmd.Context())
			if errors.Is(err, screen.ErrLoginRequired) {
				return errors.New("login required: run `frame login` first")
			}
			if err != nil {
				return err
			}
			if on {
				fmt.Fprintf(cmd.OutOrStdout(), "Added movie #%d to My List\n", id)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Removed movie #%d from My List\n", id)
			}
			return nil
		},
	}
}

func newPlayCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "play <id>",
		Short: "Play a movie",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return screen.NewDetails(movieRef(id), nil).Play(cmd.Context())
		},
	}
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, errors.New("movie id must be a positive integer")
	}
	return id, nil
}
