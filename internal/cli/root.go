package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"catalog-service/internal/app"
	"catalog-service/internal/core/config"
	"catalog-service/internal/core/logger"
)

const (
	FormatHuman = "human"
	FormatJSON  = "json"
)

type RootOptions struct {
	ConfigPath string
	Output     string

	cfg   *config.Config
	log   *zap.Logger
	flush func()
	app   *app.App
}

// App 首次调用时才连库，token 之类的命令不需要数据库
func (o *RootOptions) App(ctx context.Context) (*app.App, error) {
	if o.app != nil {
		return o.app, nil
	}
	a, err := app.New(ctx, o.cfg, o.log)
	if err != nil {
		return nil, err
	}
	o.app = a
	return a, nil
}

func NewRootCmd() *cobra.Command {
	opts := &RootOptions{Output: FormatHuman}

	cmd := &cobra.Command{
		Use:           "catalogctl",
		Short:         "Operate the catalog category hierarchy",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			opts.Output = strings.ToLower(strings.TrimSpace(opts.Output))
			if opts.Output != FormatHuman && opts.Output != FormatJSON {
				return fmt.Errorf("invalid --output value %q: supported values are %s|%s", opts.Output, FormatHuman, FormatJSON)
			}
			cfg, err := config.Load(opts.ConfigPath)
			if err != nil {
				return err
			}
			opts.cfg = cfg
			// 日志写 stderr，stdout 只留命令结果
			opts.log, opts.flush = logger.New(logger.Options{
				Level: cfg.Log.Level,
				JSON:  cfg.Log.JSON,
				Out:   zapcore.Lock(os.Stderr),
			})
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if opts.app != nil {
				opts.app.Close()
			}
			if opts.flush != nil {
				opts.flush()
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default $CONFIG_PATH or ./configs/config.local.yaml)")
	cmd.PersistentFlags().StringVarP(&opts.Output, "output", "o", FormatHuman, "output format: human|json")

	cmd.AddCommand(
		newMigrateCmd(opts),
		NewCategoryCmd(opts),
		newTokenCmd(opts),
	)
	return cmd
}
