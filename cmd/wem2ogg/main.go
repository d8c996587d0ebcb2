// Package main provides the wem2ogg command line tool.
//
// Usage:
//
//	wem2ogg [flags] <input.wem> [output.ogg]
//
// wem2ogg converts an Audiokinetic Wwise audio file (WEM) into a standard
// Ogg Vorbis file. The conversion is a re-framing of the existing Vorbis
// data, not a re-encode: the audio bits pass through unchanged.
//
// Most files reference an external codebook library; point --codebooks at
// the packed_codebooks.bin shipped with ww2ogg. Files carrying their own
// codebooks need --inline-codebooks, and some of those additionally need
// --full-setup.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	wem "github.com/llehouerou/go-wem"
)

var (
	flagCodebooks       string
	flagInlineCodebooks bool
	flagFullSetup       bool
	flagModPackets      bool
	flagNoModPackets    bool
	flagVerbose         bool
)

var rootCmd = &cobra.Command{
	Use:   "wem2ogg [flags] <input.wem> [output.ogg]",
	Short: "Convert Wwise WEM audio to Ogg Vorbis",
	Long: `Convert an Audiokinetic Wwise audio file (WEM) to a standard Ogg
Vorbis file without re-encoding the audio data.

When no output path is given, the input path with an .ogg extension is
used.

Examples:
  wem2ogg music.wem
  wem2ogg --codebooks /usr/share/ww2ogg/packed_codebooks.bin music.wem out.ogg
  wem2ogg --inline-codebooks --full-setup old_format.wem`,
	Args:          cobra.RangeArgs(1, 2),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagModPackets && flagNoModPackets {
			return errors.New("--mod-packets and --no-mod-packets are mutually exclusive")
		}

		level := slog.LevelInfo
		if flagVerbose {
			level = slog.LevelDebug
		}
		log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

		input := args[0]
		output := outputPath(args)

		opts := wem.Options{
			Codebooks:       flagCodebooks,
			InlineCodebooks: flagInlineCodebooks,
			FullSetup:       flagFullSetup,
		}
		switch {
		case flagModPackets:
			opts.PacketFormat = wem.PacketFormatForceMod
		case flagNoModPackets:
			opts.PacketFormat = wem.PacketFormatForceNoMod
		}

		f, closer, err := wem.OpenFile(input, opts)
		if err != nil {
			return fmt.Errorf("open %s: %w", input, err)
		}
		defer closer.Close()

		logFileInfo(log, f)

		out, err := os.Create(output)
		if err != nil {
			return err
		}
		if err := f.GenerateOgg(out); err != nil {
			out.Close()
			os.Remove(output)
			if errors.Is(err, wem.ErrTryFullSetup) {
				return fmt.Errorf("convert %s: %w (rerun with --full-setup)", input, err)
			}
			return fmt.Errorf("convert %s: %w", input, err)
		}
		if err := out.Close(); err != nil {
			return err
		}

		log.Info("converted", "input", input, "output", output)
		return nil
	},
}

// outputPath returns the explicit output argument or derives one from the
// input by swapping the extension for .ogg.
func outputPath(args []string) string {
	if len(args) == 2 {
		return args[1]
	}
	in := args[0]
	ext := filepath.Ext(in)
	return strings.TrimSuffix(in, ext) + ".ogg"
}

func logFileInfo(log *slog.Logger, f *wem.File) {
	headerStyle := "modern (2 or 6 byte)"
	if f.OldPacketHeaders() {
		headerStyle = "legacy (8 byte)"
	}
	packetFormat := "standard"
	if f.ModPackets() {
		packetFormat = "modified"
	}
	log.Debug("container",
		"endianness", f.Endianness(),
		"channels", f.Channels(),
		"sample_rate", f.SampleRate(),
		"sample_count", f.SampleCount(),
		"packet_headers", headerStyle,
		"packet_format", packetFormat,
		"inline_codebooks", f.InlineCodebooks(),
	)
	if start, end, ok := f.Loop(); ok {
		log.Debug("loop", "start", start, "end", end)
	}
}

func init() {
	rootCmd.Flags().StringVar(&flagCodebooks, "codebooks", "packed_codebooks.bin",
		"path to the packed codebook library")
	rootCmd.Flags().BoolVar(&flagInlineCodebooks, "inline-codebooks", false,
		"codebooks are stored in the file itself")
	rootCmd.Flags().BoolVar(&flagFullSetup, "full-setup", false,
		"file carries a full setup header (implies inline codebooks)")
	rootCmd.Flags().BoolVar(&flagModPackets, "mod-packets", false,
		"force treating audio packets as modified")
	rootCmd.Flags().BoolVar(&flagNoModPackets, "no-mod-packets", false,
		"force treating audio packets as standard")
	rootCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false,
		"log container details")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
