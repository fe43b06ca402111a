package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/TinsPHP/tins-symbols-sub001/internal/log"
	"github.com/TinsPHP/tins-symbols-sub001/internal/scenario"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var SolveCmd = &cobra.Command{
	Use:          "solve file.yaml...",
	Short:        "Infer the signatures of the functions of inference scenarios",
	RunE:         runSolve,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
}

var (
	logLevel             *int
	outputFormat         *string
	noDefaultConversions *bool
)

const (
	formatText = "text"
	formatYAML = "yaml"
)

func init() {
	logLevel = SolveCmd.Flags().IntP("log-level", "l", int(slog.LevelError), "log level")
	outputFormat = SolveCmd.Flags().StringP("format", "f", "", "output format, text or yaml (defaults to text on a terminal and yaml otherwise)")
	noDefaultConversions = SolveCmd.Flags().Bool("no-default-conversions", false, "only use the conversions declared by the scenario")
}

// report is the output for one scenario file
type report struct {
	File      string            `yaml:"file"`
	Functions []scenario.Result `yaml:"functions"`
}

func runSolve(cmd *cobra.Command, args []string) error {
	log.SetLevel(slog.Level(*logLevel))

	out := cmd.OutOrStdout()
	format := *outputFormat
	if format == "" {
		format = defaultFormat(out)
	}
	if format != formatText && format != formatYAML {
		return fmt.Errorf("unknown output format %q", format)
	}

	failed := 0
	for _, arg := range args {
		target, err := filepath.Abs(arg)
		if err != nil {
			return fmt.Errorf("could not get absolute path of target: %w", err)
		}
		f, err := scenario.Load(os.DirFS(filepath.Dir(target)), filepath.Base(target))
		if err != nil {
			return fmt.Errorf("could not load scenario: %w", err)
		}
		results, err := scenario.Run(f, scenario.Options{DefaultConversions: !*noDefaultConversions})
		if err != nil {
			return fmt.Errorf("could not run scenario %s: %w", arg, err)
		}
		for _, res := range results {
			if res.Failed() {
				failed++
			}
		}

		r := report{File: arg, Functions: results}
		if format == formatYAML {
			err = writeYAML(out, r)
		} else {
			err = writeText(out, r)
		}
		if err != nil {
			return fmt.Errorf("could not write results: %w", err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d function(s) did not meet their expectations", failed)
	}
	return nil
}

func defaultFormat(w io.Writer) string {
	f, ok := w.(*os.File)
	if ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return formatText
	}
	return formatYAML
}

func writeYAML(w io.Writer, r report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return err
	}
	return enc.Close()
}

func writeText(w io.Writer, r report) error {
	sb := &strings.Builder{}
	sb.WriteString(r.File)
	sb.WriteString("\n")
	for _, res := range r.Functions {
		if res.Error != "" {
			_, _ = fmt.Fprintf(sb, "  %s: %s\n", res.Name, res.Error)
		} else {
			_, _ = fmt.Fprintf(sb, "  %s: %s\n", res.Name, res.Signature)
		}
		for _, tp := range res.TypeParameters {
			_, _ = fmt.Fprintf(sb, "    %s\n", tp)
		}
		for _, mismatch := range res.Mismatches {
			_, _ = fmt.Fprintf(sb, "    mismatch: %s\n", mismatch)
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}
