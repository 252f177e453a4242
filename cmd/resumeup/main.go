package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/vango-dev/resumeup/internal/errors"
	"github.com/vango-dev/resumeup/pkg/toast"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// noColor is set by the persistent --no-color flag.
var noColor bool

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		errors.PrintError(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "resumeup",
		Short: "Upload a resume to a screening server",
		Long: `resumeup submits a resume the way the upload form does.

The selected file is posted as multipart/form-data (field "file") to the
server's upload endpoint. On success the results page is reported; on
failure the same notices the page would show are printed.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor {
				errors.DisableColors()
			} else {
				errors.EnableColors()
			}
		},
	}

	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(
		submitCmd(),
		initCmd(),
		versionCmd(),
	)

	return rootCmd
}

// printer renders toasts on w, honoring --no-color.
func printer(w io.Writer) *toast.Printer {
	return &toast.Printer{W: w, Color: !noColor}
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	toast.Success(printer(w), fmt.Sprintf(format, args...))
}

// info prints an indented detail line.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(w io.Writer, format string, args ...any) {
	toast.Warning(printer(w), fmt.Sprintf(format, args...))
}
