package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ogurasousui/hr-records/internal/app"
	"github.com/ogurasousui/hr-records/internal/core/apperr"
	"github.com/ogurasousui/hr-records/internal/platform/config"
	"github.com/ogurasousui/hr-records/internal/platform/logging"
)

const defaultConfigPath = "assets/local.yaml"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// cli はコマンド間で共有する状態を保持します。
type cli struct {
	configPath string
	logLevel   string
	out        io.Writer
	errOut     io.Writer
	app        *app.App
}

// run はコマンドを一度実行し、開いたストアを必ず閉じます。
func run(ctx context.Context, args []string, out, errOut io.Writer) error {
	c := &cli{out: out, errOut: errOut}
	cmd := c.rootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	err := cmd.ExecuteContext(ctx)
	return errors.Join(err, c.close())
}

func (c *cli) rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "hrctl",
		Short:         "Manage employees, projects, assignments and performance reviews",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			switch cmd.Name() {
			case "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
				return nil
			}
			return c.open(cmd.Context())
		},
	}

	cmd.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "path to config file (defaults to CONFIG_PATH env or "+defaultConfigPath+")")
	cmd.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "override log level (debug, info, warn, error)")

	cmd.AddCommand(
		c.employeeCmd(),
		c.projectCmd(),
		c.assignmentCmd(),
		c.reviewCmd(),
		c.reportCmd(),
		c.statusCmd(),
	)

	return cmd
}

func (c *cli) open(ctx context.Context) error {
	cfg, err := loadConfig(c.configPath)
	if err != nil {
		return err
	}
	if c.logLevel != "" {
		cfg.Log.Level = c.logLevel
	}

	logger := logging.New(c.errOut, cfg.Log)
	application, err := app.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if application.ReviewsDegraded() {
		logger.Warn("review store is running in memory; reviews will not persist")
	}
	c.app = application
	return nil
}

func (c *cli) close() error {
	if c.app == nil {
		return nil
	}
	err := c.app.Close()
	c.app = nil
	return err
}

// loadConfig は --config、CONFIG_PATH、既定パスの順に設定ファイルを探します。既定パスが存在しない場合は既定値と環境変数のみを使います。
func loadConfig(flagValue string) (*config.Config, error) {
	if flagValue != "" {
		return config.Load(flagValue)
	}
	if env := os.Getenv("CONFIG_PATH"); env != "" {
		return config.Load(env)
	}
	if _, err := os.Stat(defaultConfigPath); errors.Is(err, fs.ErrNotExist) {
		return config.Load("")
	}
	return config.Load(defaultConfigPath)
}

func exitCode(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return 2
	case apperr.KindNotFound:
		return 3
	case apperr.KindDuplicateKey, apperr.KindDuplicateAssignment, apperr.KindDanglingReference, apperr.KindHasDependents:
		return 4
	case apperr.KindStoreUnavailable:
		return 5
	default:
		return 1
	}
}
