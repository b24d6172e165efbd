package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/popcanvas/popcanvas/internal/align"
	"github.com/popcanvas/popcanvas/internal/document"
	"github.com/popcanvas/popcanvas/internal/engine"
)

var errInvalidCanvas = errors.New("canvas has errors")

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "canvasctl",
		Short:         "Inspect and edit popup canvas files",
		Long:          "Reads canvas JSON as stored in design snapshots, reports problems and applies alignment and layer edits.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newInspectCmd(),
		newValidateCmd(),
		newAlignCmd(),
		newDistributeCmd(),
		newLayerCmd(),
		newSampleCmd(),
	)
	return root
}

func loadEngine(path string) (*engine.Engine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read canvas: %w", err)
	}
	e := engine.New()
	if err := e.LoadJSON(data); err != nil {
		return nil, fmt.Errorf("decode canvas: %w", err)
	}
	return e, nil
}

// writeResult writes the edited canvas to output, or to the input file when
// output is empty, or to w when output is "-".
func writeResult(w io.Writer, e *engine.Engine, input, output string) error {
	data, err := e.StateJSON()
	if err != nil {
		return fmt.Errorf("encode canvas: %w", err)
	}
	switch output {
	case "-":
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "":
		output = input
	}
	if err := os.WriteFile(output, data, 0644); err != nil {
		return fmt.Errorf("write canvas: %w", err)
	}
	color.New(color.FgGreen).Fprintf(w, "wrote %s\n", output)
	return nil
}

func splitIDs(s string) []string {
	var ids []string
	for _, id := range strings.Split(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect FILE",
		Short: "Print layout, view settings and elements in paint order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEngine(args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			cyan := color.New(color.FgCyan)
			s := e.State()

			cyan.Fprintf(w, "Layout %s (%gx%g)\n", s.Layout.Type, s.Width, s.Height)
			fmt.Fprintf(w, "  background: %s %s\n", s.Background.Type, s.Background.Value)
			fmt.Fprintf(w, "  zoom %.2f, grid %v (%g), device %s\n", s.Zoom, s.ShowGrid, s.GridSize, s.PreviewDevice)

			order := e.PaintOrder()
			cyan.Fprintf(w, "Elements (%d)\n", len(order))
			for _, el := range order {
				pin := ""
				if el.IsPinned {
					pin = " pinned"
				}
				fmt.Fprintf(w, "  z=%-3d %-16s %-28s at (%g,%g) %gx%g%s\n",
					el.ZIndex, el.Type, el.ID, el.X, el.Y, el.Width, el.Height, pin)
			}
			return nil
		},
	}
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE",
		Short: "Report structural errors and layout warnings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read canvas: %w", err)
			}
			s, err := document.Decode(data)
			if err != nil {
				return fmt.Errorf("decode canvas: %w", err)
			}

			w := cmd.OutOrStdout()
			issues := document.Validate(s)
			if len(issues) == 0 {
				color.New(color.FgGreen).Fprintf(w, "✓ %s: %d elements, no problems\n", args[0], len(s.Elements))
				return nil
			}
			red := color.New(color.FgRed)
			yellow := color.New(color.FgYellow)
			for _, i := range issues {
				if i.Severity == document.SeverityError {
					red.Fprintln(w, i.String())
				} else {
					yellow.Fprintln(w, i.String())
				}
			}
			if document.HasErrors(issues) {
				return errInvalidCanvas
			}
			return nil
		},
	}
}

func newAlignCmd() *cobra.Command {
	var ids, output string
	cmd := &cobra.Command{
		Use:   "align FILE MODE",
		Short: "Align elements (left, center, right, top, middle, bottom)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := align.ParseMode(args[1])
			if err != nil {
				return err
			}
			e, err := loadEngine(args[0])
			if err != nil {
				return err
			}
			if !e.AlignElements(splitIDs(ids), mode) {
				color.New(color.FgYellow).Fprintln(cmd.OutOrStdout(), "nothing to align")
				return nil
			}
			return writeResult(cmd.OutOrStdout(), e, args[0], output)
		},
	}
	cmd.Flags().StringVar(&ids, "ids", "", "Comma-separated element ids (at least two)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file, \"-\" for stdout (default: overwrite FILE)")
	cmd.MarkFlagRequired("ids")
	return cmd
}

func newDistributeCmd() *cobra.Command {
	var ids, output string
	cmd := &cobra.Command{
		Use:   "distribute FILE AXIS",
		Short: "Space elements evenly (horizontal, vertical)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			axis, err := align.ParseAxis(args[1])
			if err != nil {
				return err
			}
			e, err := loadEngine(args[0])
			if err != nil {
				return err
			}
			if !e.DistributeElements(splitIDs(ids), axis) {
				color.New(color.FgYellow).Fprintln(cmd.OutOrStdout(), "nothing to distribute")
				return nil
			}
			return writeResult(cmd.OutOrStdout(), e, args[0], output)
		},
	}
	cmd.Flags().StringVar(&ids, "ids", "", "Comma-separated element ids (at least three)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file, \"-\" for stdout (default: overwrite FILE)")
	cmd.MarkFlagRequired("ids")
	return cmd
}

func newLayerCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:       "layer FILE ID raise|lower|front|back",
		Short:     "Change an element's stacking order",
		Args:      cobra.ExactArgs(3),
		ValidArgs: []string{"raise", "lower", "front", "back"},
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEngine(args[0])
			if err != nil {
				return err
			}
			id := args[1]
			if _, ok := e.Element(id); !ok {
				return fmt.Errorf("element %q not found", id)
			}
			var changed bool
			switch args[2] {
			case "raise":
				changed = e.Raise(id)
			case "lower":
				changed = e.Lower(id)
			case "front":
				changed = e.BringToFront(id)
			case "back":
				changed = e.SendToBack(id)
			default:
				return fmt.Errorf("unknown layer operation %q", args[2])
			}
			if !changed {
				color.New(color.FgYellow).Fprintln(cmd.OutOrStdout(), "stacking unchanged")
				return nil
			}
			return writeResult(cmd.OutOrStdout(), e, args[0], output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file, \"-\" for stdout (default: overwrite FILE)")
	return cmd
}

func newSampleCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Write the playground sample canvas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e := engine.New()
			e.Load(*document.NewSampleCanvas())
			return writeResult(cmd.OutOrStdout(), e, "sample.json", output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "-", "Output file, \"-\" for stdout")
	return cmd
}
