package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/MeKo-Tech/moore/internal/contour"
	"github.com/MeKo-Tech/moore/internal/output"
	"github.com/spf13/cobra"
)

// gridCmd traces an ASCII drawing of a binary image.
var gridCmd = &cobra.Command{
	Use:   "grid <file|->",
	Short: "Trace an ASCII grid read from a file or stdin",
	Long: `Trace the outer contour of an ASCII drawing. '#', '1' and 'X' mark
foreground pixels, '.' and '0' background; blank lines are ignored.
Use "-" to read the grid from stdin.

Examples:
  moore grid shape.txt
  printf '###\n###\n' | moore grid - --format json
  moore grid shape.txt --show`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         runGrid,
}

func runGrid(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	maxSteps, err := maxStepsFlag(cmd, cfg)
	if err != nil {
		return err
	}
	format, err := formatFlag(cmd, cfg)
	if err != nil {
		return err
	}
	outputFile := cfg.Output.File
	if cmd.Flags().Changed("output") {
		outputFile, _ = cmd.Flags().GetString("output")
	}

	name := args[0]
	data, err := readGridInput(cmd, name)
	if err != nil {
		return err
	}
	if name == "-" {
		name = ""
	}

	g, err := contour.ParseGrid(string(data))
	if err != nil {
		return fmt.Errorf("failed to parse grid: %w", err)
	}

	start := time.Now()
	c, err := newTracer(maxSteps).Trace(cmd.Context(), g)
	if err != nil {
		return fmt.Errorf("trace failed: %w", err)
	}
	res := output.NewResult(name, g.Width, g.Height, c, time.Since(start))

	text, err := output.Format(res, format)
	if err != nil {
		return err
	}
	if show, _ := cmd.Flags().GetBool("show"); show {
		text = markContour(g, c) + "\n" + text
	}
	return writeOutput(cmd, text, outputFile)
}

func readGridInput(cmd *cobra.Command, name string) ([]byte, error) {
	if name == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(name) //nolint:gosec // G304: path chosen by the user
	if err != nil {
		return nil, fmt.Errorf("failed to read grid file: %w", err)
	}
	return data, nil
}

// markContour redraws g with contour pixels as 'o' and the start pixel as
// 'S'. Other foreground stays '#'.
func markContour(g contour.Grid, c contour.Contour) string {
	lines := strings.Split(strings.TrimSuffix(g.String(), "\n"), "\n")
	cells := make([][]byte, len(lines))
	for i, line := range lines {
		cells[i] = []byte(line)
	}
	for _, p := range c {
		cells[p.Row][p.Col] = 'o'
	}
	if len(c) > 0 {
		s := c.Start()
		cells[s.Row][s.Col] = 'S'
	}

	var sb strings.Builder
	for _, row := range cells {
		sb.Write(row)
		sb.WriteByte('\n')
	}
	return sb.String()
}

func init() {
	rootCmd.AddCommand(gridCmd)
	addTraceFlags(gridCmd)
	gridCmd.Flags().Bool("show", false, "print the grid with the contour marked")
}
