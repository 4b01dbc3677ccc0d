// Package cli wires the imt command line tool: offline descriptor
// inspection, offline report stream decoding and a live mode that attaches
// to a real device over hidraw.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ludoplex/iichid/hiddesc"
	"github.com/ludoplex/iichid/multitouch"
)

// Config is the optional yaml config file.
type Config struct {
	LogLevel string `yaml:"logLevel"`
	Device   string `yaml:"device"`
}

// Main builds and executes the root command.
func Main(ctx context.Context, args []string) error {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

func NewRootCmd() *cobra.Command {
	var (
		configPath string
		debug      bool
		log        *zap.Logger
		cfg        Config
	)
	rootCmd := &cobra.Command{
		Use:   "imt",
		Short: "HID multitouch digitizer tool",
		Long:  `Analyzes HID multitouch report descriptors and decodes contact report streams.`,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = loadConfig(configPath)
		if err != nil {
			return err
		}
		level := cfg.LogLevel
		if debug {
			level = "debug"
		}
		log, err = newLogger(level)
		return err
	}
	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	}
	logger := func() *zap.Logger { return log }
	device := func() string { return cfg.Device }
	rootCmd.AddCommand(newDescribeCmd(logger))
	rootCmd.AddCommand(newDecodeCmd(logger))
	rootCmd.AddCommand(newRunCmd(logger, device))
	return rootCmd
}

func loadConfig(path string) (Config, error) {
	cfg := Config{LogLevel: "info"}
	if path == "" {
		return cfg, nil
	}
	if err := readYAMLFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	return cfg, nil
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = lvl
	return cfg.Build()
}

func newDescribeCmd(logger func() *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "describe <descriptor-file>",
		Short: "Analyze a report descriptor",
		Long:  `Parses a raw report descriptor file and prints the derived device profile.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			items, err := hiddesc.Parse(data)
			if err != nil {
				return fmt.Errorf("parse descriptor: %w", err)
			}
			profile, err := multitouch.Analyze(logger(), items)
			if err != nil {
				return err
			}
			jsonB, err := json.MarshalIndent(summarize(profile), "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(jsonB))
			return nil
		},
	}
}

// profileSummary is the printable projection of a device profile.
type profileSummary struct {
	Class          string          `json:"class"`
	ReportID       uint8           `json:"reportId"`
	InputSize      int             `json:"inputSize"`
	SlotsPerReport int             `json:"slotsPerReport"`
	Contacts       int32           `json:"contacts"`
	Capabilities   []string        `json:"capabilities"`
	Axes           map[string]axis `json:"axes"`
}

type axis struct {
	Minimum    int32 `json:"min"`
	Maximum    int32 `json:"max"`
	Resolution int32 `json:"res,omitempty"`
}

func summarize(p *multitouch.DeviceProfile) profileSummary {
	s := profileSummary{
		Class:          p.Class.String(),
		ReportID:       p.ReportID,
		InputSize:      p.InputSize,
		SlotsPerReport: p.SlotsPerReport,
		Contacts:       p.Axes[multitouch.ChannelSlot].Maximum + 1,
		Axes:           make(map[string]axis),
	}
	for ch := multitouch.Channel(0); int(ch) < multitouch.NumChannels; ch++ {
		if !p.Caps.Has(ch) {
			continue
		}
		s.Capabilities = append(s.Capabilities, ch.String())
		ai := p.Axis(ch)
		s.Axes[ch.String()] = axis{Minimum: ai.Minimum, Maximum: ai.Maximum, Resolution: ai.Resolution}
	}
	return s
}

// nullAccessor backs the offline commands: reads fail (which the core
// tolerates) and writes succeed without side effects.
type nullAccessor struct{}

func (nullAccessor) GetFeatureReport(id uint8, length int) ([]byte, error) {
	return nil, errors.New("no device")
}

func (nullAccessor) SetFeatureReport(id uint8, data []byte) error {
	return nil
}
