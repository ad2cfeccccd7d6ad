package main

import (
	"github.com/Nephrolytics-ai/polyglot-upload/pkg/logging"
	"github.com/Nephrolytics-ai/polyglot-upload/pkg/media"
	"github.com/Nephrolytics-ai/polyglot-upload/pkg/model"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
)

func newUploadCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "upload FILE...",
		Short: "Upload one or more audio files, one after another",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, flags)
			if err != nil {
				return err
			}
			return a.uploadPaths(cmd, args)
		},
	}
}

// uploadPaths treats every path as a separate picker selection. It keeps
// going after a failure and reports all of them at the end.
func (a *app) uploadPaths(cmd *cobra.Command, paths []string) error {
	ctx := cmd.Context()
	log := logging.NewLogger(ctx)

	var result *multierror.Error
	for _, path := range paths {
		if ctx.Err() != nil {
			result = multierror.Append(result, ctx.Err())
			break
		}

		file, err := media.FromPath(path)
		if err != nil {
			log.Errorf("cannot read %s: %v", path, err)
			result = multierror.Append(result, err)
			continue
		}

		if _, err := a.ctrl.Select(ctx, []model.SelectedFile{file}); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}
