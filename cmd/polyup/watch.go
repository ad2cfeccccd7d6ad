package main

import (
	"time"

	"github.com/Nephrolytics-ai/polyglot-upload/pkg/dropzone"
	"github.com/Nephrolytics-ai/polyglot-upload/pkg/logging"
	"github.com/Nephrolytics-ai/polyglot-upload/pkg/model"
	"github.com/spf13/cobra"
)

func newWatchCmd(flags *globalFlags) *cobra.Command {
	var settle string

	cmd := &cobra.Command{
		Use:   "watch [DIR]",
		Short: "Upload every audio file dropped into a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, flags)
			if err != nil {
				return err
			}

			dir := a.cfg.WatchDir
			if len(args) == 1 {
				dir = args[0]
			}
			settleDelay := a.cfg.SettleDelay
			if cmd.Flags().Changed("settle") {
				if settleDelay, err = time.ParseDuration(settle); err != nil {
					return err
				}
			}

			ctx := cmd.Context()
			log := logging.NewLogger(ctx)
			watcher, err := dropzone.NewWatcher(dir, a.ctrl,
				dropzone.WithSettleDelay(settleDelay),
				dropzone.WithResultHandler(func(path string, _ model.UploadResult, err error) {
					if err != nil && !isRendered(err) {
						log.Errorf("%s: %v", path, err)
					}
				}),
			)
			if err != nil {
				return err
			}
			return watcher.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&settle, "settle", "", "quiet period before a dropped file is uploaded (e.g. 500ms)")
	return cmd
}
