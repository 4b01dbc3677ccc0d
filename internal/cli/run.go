package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ludoplex/iichid/hiddesc"
	"github.com/ludoplex/iichid/internal/hidtrans"
	"github.com/ludoplex/iichid/multitouch"
)

func newRunCmd(logger func() *zap.Logger, device func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "run [vvvv:pppp]",
		Short: "Attach to a live device and stream events",
		Long: `Opens a hidraw multitouch device, analyzes its report descriptor,
performs the one-time initialization (contact count refinement, certificate
read, input mode selection) and streams decoded touch events until
interrupted.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger()
			spec := device()
			if len(args) == 1 {
				spec = args[0]
			}
			if spec == "" {
				return fmt.Errorf("no device address given (argument or config)")
			}
			addr, err := hidtrans.ParseAddress(spec)
			if err != nil {
				return err
			}
			dev, err := hidtrans.Open(log, addr)
			if err != nil {
				return err
			}
			defer dev.Close()

			raw, err := dev.ReportDescriptor()
			if err != nil {
				return err
			}
			items, err := hiddesc.Parse(raw)
			if err != nil {
				return fmt.Errorf("parse descriptor: %w", err)
			}
			slots := multitouch.NewSlotMap(multitouch.MaxSlots)
			sink := newPrintSink(cmd.OutOrStdout(), slots)
			mt, err := multitouch.Attach(log, items, dev, sink, slots)
			if err != nil {
				return err
			}
			dev.SetNumbered(mt.Profile().ReportID != 0)

			log.Info("attached", zap.Stringer("device", addr))
			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				return dev.ReadReports(ctx, mt.ProcessReport)
			})
			return g.Wait()
		},
	}
}
