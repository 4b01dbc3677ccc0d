package cli

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ludoplex/iichid/hiddesc"
	"github.com/ludoplex/iichid/multitouch"
)

func readYAMLFile(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, out)
}

func newDecodeCmd(logger func() *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "decode <descriptor-file> <reports-file>",
		Short: "Decode a captured report stream",
		Long: `Parses a raw report descriptor file, then replays a capture file of
input reports (one hex packet per line, '#' comments allowed) through the
decoder and prints the resulting event stream. When the descriptor uses
report ids, the first byte of each packet is its id.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			items, err := hiddesc.Parse(data)
			if err != nil {
				return fmt.Errorf("parse descriptor: %w", err)
			}
			slots := multitouch.NewSlotMap(multitouch.MaxSlots)
			sink := newPrintSink(cmd.OutOrStdout(), slots)
			dev, err := multitouch.Attach(logger(), items, nullAccessor{}, sink, slots)
			if err != nil {
				return err
			}

			f, err := os.Open(args[1])
			if err != nil {
				return err
			}
			defer f.Close()

			numbered := dev.Profile().ReportID != 0
			scanner := bufio.NewScanner(f)
			for line := 1; scanner.Scan(); line++ {
				text := strings.TrimSpace(scanner.Text())
				if text == "" || strings.HasPrefix(text, "#") {
					continue
				}
				packet, err := hex.DecodeString(strings.ReplaceAll(text, " ", ""))
				if err != nil {
					return fmt.Errorf("line %d: %w", line, err)
				}
				var id uint8
				if numbered {
					if len(packet) == 0 {
						continue
					}
					id = packet[0]
					packet = packet[1:]
				}
				dev.ProcessReport(id, packet)
			}
			return scanner.Err()
		},
	}
}
