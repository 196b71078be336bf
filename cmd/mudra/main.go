// Command mudra recognizes hand gestures from a webcam and streams them as
// events to browsers, a relay server or an MQTT broker.
//
// Usage:
//
//	mudra serve               Run the detection pipeline and HTTP server
//	mudra classify <file>     Replay recorded landmark frames offline
//	mudra config              Print the effective configuration
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ayusman/mudra/internal/config"
)

// rootOptions are the flags shared by every command.
type rootOptions struct {
	configPath string
	logLevel   string
}

func (o *rootOptions) load() (config.Config, error) {
	path := o.configPath
	if path == "" {
		path = config.DefaultFile()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
		if err := cfg.Log.Validate(); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "mudra",
		Short:         "Hand gesture recognition",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default ~/.mudra/config.yaml if present)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override log.level")

	root.AddCommand(
		newServeCmd(opts),
		newClassifyCmd(opts),
		newConfigCmd(opts),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
