package main

import (
	"errors"
	"io"

	"github.com/Nephrolytics-ai/polyglot-upload/pkg/controller"
	"github.com/Nephrolytics-ai/polyglot-upload/pkg/logging"
	"github.com/Nephrolytics-ai/polyglot-upload/pkg/model"
	"github.com/Nephrolytics-ai/polyglot-upload/pkg/ui/terminal"
	"github.com/spf13/cobra"
)

func newBrowseCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Prompt for audio files interactively until end of input",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			picker := terminal.NewPrompt(cmd.InOrStdin(), cmd.OutOrStdout())
			a, err := newApp(cmd, flags, controller.WithFilePicker(picker))
			if err != nil {
				return err
			}
			return a.browse(cmd)
		},
	}
}

// browse clicks the drop zone repeatedly. Upload failures are already on
// screen, so only input errors end the loop.
func (a *app) browse(cmd *cobra.Command) error {
	ctx := cmd.Context()
	log := logging.NewLogger(ctx)

	for {
		_, err := a.ctrl.Click(ctx)
		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			return nil
		case ctx.Err() != nil:
			return nil
		case errors.Is(err, controller.ErrNoFileSelected):
		case isRendered(err):
		default:
			log.Errorf("%v", err)
		}
	}
}

// isRendered reports whether the controller already showed err in the
// error panel.
func isRendered(err error) bool {
	var validationErr *model.ValidationError
	var requestErr *model.RequestError
	return errors.As(err, &validationErr) || errors.As(err, &requestErr)
}
