package service

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/insighter-ai/insighter/app/core"
	v1 "github.com/insighter-ai/insighter/app/logic/v1"
)

type Options struct {
	ConfigPath string
}

func (o *Options) AddFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVarP(&o.ConfigPath, "config", "c", "", "init api by given config")
}

func NewCommand() *cobra.Command {
	opts := &Options{}
	cmd := &cobra.Command{
		Use:   "http",
		Short: "start the http service",
		Run: func(cmd *cobra.Command, args []string) {
			appCore := core.MustSetupCore(core.MustLoadBaseConfig(opts.ConfigPath))

			cronRunner, err := v1.StartSampleAlerts(context.Background(), appCore)
			if err != nil {
				fmt.Println("failed to start the sample alert generator:", err)
				os.Exit(1)
			}

			go func() {
				sigChan := make(chan os.Signal, 1)
				signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
				<-sigChan
				if cronRunner != nil {
					cronRunner.Stop()
				}
				os.Exit(0)
			}()

			serve(appCore)
		},
	}

	opts.AddFlags(cmd.Flags())
	return cmd
}
