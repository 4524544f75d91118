package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/user/frame/internal/client"
	"github.com/user/frame/internal/config"
	"github.com/user/frame/internal/utils"
)

// app 命令共享的配置与 API 客户端
type app struct {
	configPath string
	verbose    bool

	cfg *config.ClientConfig
	api *client.Client
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "frame",
		Short:         "Browse the Frame movie catalog",
		Long:          `Terminal client for the Frame API: browse the home screen, movie details and your profile.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", config.DefaultClientConfigPath(), "client config file (YAML)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newHomeCmd(a),
		newMovieCmd(a),
		newMyListCmd(a),
		newPlayCmd(a),
		newProfileCmd(a),
		newLoginCmd(a),
		newRegisterCmd(a),
		newLogoutCmd(a),
	)
	return root
}

func (a *app) init() error {
	level := "warn"
	if a.verbose {
		level = "debug"
	}
	utils.InitLogger(level, "cli").SetOutput(os.Stderr)

	cfg, err := config.LoadClient(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.api = client.New(cfg.BaseURL, client.WithToken(cfg.Token), client.WithTimeout(cfg.Timeout))
	logrus.WithField("base_url", cfg.BaseURL).Debug("client configured")
	return nil
}

// favorites 已登录时返回 API 客户端，否则为 nil
func (a *app) favorites() *client.Client {
	if !a.api.HasToken() {
		return nil
	}
	return a.api
}

func movieRef(id int) client.Movie {
	return client.Movie{ID: id}
}
