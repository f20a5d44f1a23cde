package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	pdfcropper "github.com/pyhub-apps/pdfcropper-golang"
	"github.com/pyhub-apps/pdfcropper-golang/pkg/crop"
	"github.com/pyhub-apps/pdfcropper-golang/pkg/label"
	"github.com/pyhub-apps/pdfcropper-golang/pkg/pageops"
	"github.com/pyhub-apps/pdfcropper-golang/pkg/pdf"
	"github.com/spf13/cobra"
)

var cropCmd = &cobra.Command{
	Use:   "crop IN OUT",
	Short: "Crop every page of IN with a preset or manual ratios",
	Args:  cobra.ExactArgs(2),
	RunE:  runCrop,
}

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List the available presets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, _, presets, err := setup()
		if err != nil {
			return err
		}
		for _, name := range presets.Names() {
			p, _ := presets.Lookup(name)
			fmt.Fprintf(cmd.OutOrStdout(), "%-20s %s\n", name, p.Kind)
		}
		return nil
	},
}

var inspectCmd = &cobra.Command{
	Use:   "inspect IN",
	Short: "Print the page geometry the crop strategies see",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

var mergeCmd = &cobra.Command{
	Use:   "merge OUT IN IN...",
	Short: "Concatenate PDFs",
	Args:  cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		inputs := make([][]byte, 0, len(args)-1)
		for _, path := range args[1:] {
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			inputs = append(inputs, data)
		}
		out, err := pageops.Merge(cmd.Context(), inputs)
		if err != nil {
			return describe(err)
		}
		return writeOutput(cmd, args[0], out)
	},
}

var rearrangeCmd = &cobra.Command{
	Use:   "rearrange IN OUT",
	Short: "Reorder, drop or repeat pages",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		order, _ := cmd.Flags().GetString("order")
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		out, err := pageops.Rearrange(cmd.Context(), data, order)
		if err != nil {
			return describe(err)
		}
		return writeOutput(cmd, args[1], out)
	},
}

var labelCmd = &cobra.Command{
	Use:   "label OUT",
	Short: "Render 4x6 FNSKU barcode labels",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fnsku, _ := cmd.Flags().GetString("fnsku")
		price, _ := cmd.Flags().GetString("price")
		qty, _ := cmd.Flags().GetInt("qty")

		out, err := label.Generate(cmd.Context(), label.Request{FNSKU: fnsku, Price: price, Qty: qty})
		if err != nil {
			return describe(err)
		}
		return writeOutput(cmd, args[0], out)
	},
}

func init() {
	cropCmd.Flags().StringP("preset", "p", "", "preset name (see the presets command)")
	cropCmd.Flags().String("ratios", "", "manual crop as x0,y0,x1,y1 fractions of the page")
	cropCmd.Flags().IntP("rotate", "r", 0, "extra rotation in degrees (0, 90, 180, 270)")
	cropCmd.MarkFlagsMutuallyExclusive("preset", "ratios")
	cropCmd.MarkFlagsOneRequired("preset", "ratios")

	inspectCmd.Flags().IntP("rotate", "r", 0, "extra rotation in degrees (0, 90, 180, 270)")
	inspectCmd.Flags().StringSlice("anchor", crop.DefaultInvoiceVariants, "phrases to locate on each page")

	rearrangeCmd.Flags().StringP("order", "o", "", "comma separated 1-based page numbers")
	_ = rearrangeCmd.MarkFlagRequired("order")

	labelCmd.Flags().String("fnsku", "", "FNSKU to encode")
	labelCmd.Flags().String("price", "", "price printed under the barcode")
	labelCmd.Flags().Int("qty", 1, "number of label pages")
	_ = labelCmd.MarkFlagRequired("fnsku")
}

func runCrop(cmd *cobra.Command, args []string) error {
	_, log, presets, err := setup()
	if err != nil {
		return err
	}

	req := crop.Request{}
	req.Preset, _ = cmd.Flags().GetString("preset")
	req.Rotate, _ = cmd.Flags().GetInt("rotate")
	if spec, _ := cmd.Flags().GetString("ratios"); spec != "" {
		ratios, err := parseRatios(spec)
		if err != nil {
			return err
		}
		req.Ratios = &ratios
	}

	strategy, err := presets.Resolve(req)
	if err != nil {
		return describe(err)
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	out, err := pdfcropper.Crop(cmd.Context(), data, strategy, req.Rotate, pdf.WithLogger(log))
	if err != nil {
		return describe(err)
	}
	return writeOutput(cmd, args[1], out)
}

func runInspect(cmd *cobra.Command, args []string) error {
	rotate, _ := cmd.Flags().GetInt("rotate")
	anchors, _ := cmd.Flags().GetStringSlice("anchor")
	if !pdf.ValidRotation(rotate) {
		return fmt.Errorf("rotate must be one of 0, 90, 180, 270")
	}

	doc, err := pdf.Open(args[0], pdf.WithRotation(rotate))
	if err != nil {
		return describe(err)
	}
	defer doc.Close()

	w := cmd.OutOrStdout()
	for _, page := range doc.GetPages() {
		fmt.Fprintf(w, "=== Page %d ===\n", page.GetPageNumber())
		fmt.Fprintf(w, "Size: %.2f x %.2f (rotation %d)\n", page.GetWidth(), page.GetHeight(), page.GetRotation())
		fmt.Fprintf(w, "Text runs: %d  Drawings: %d  Blocks: %d\n",
			len(page.TextRuns()), len(page.DrawingBoxes()), len(page.BlockBoxes()))

		if content, ok := crop.AggregatePage(page, page.GetHeight()); ok {
			fmt.Fprintf(w, "Content: %s\n", formatBox(content))
		} else {
			fmt.Fprintln(w, "Content: none")
		}
		if anchor, ok := crop.Locate(page, anchors); ok {
			fmt.Fprintf(w, "Anchor: %s\n", formatBox(anchor))
		} else {
			fmt.Fprintln(w, "Anchor: not found")
		}
		fmt.Fprintln(w)
	}
	return nil
}

func parseRatios(spec string) (crop.Ratios, error) {
	parts := strings.Split(spec, ",")
	if len(parts) != 4 {
		return crop.Ratios{}, fmt.Errorf("ratios must be x0,y0,x1,y1")
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return crop.Ratios{}, fmt.Errorf("ratio %q is not a number", p)
		}
		v[i] = f
	}
	return crop.Ratios{X0: v[0], Y0: v[1], X1: v[2], Y1: v[3]}, nil
}

func formatBox(b pdf.BoundingBox) string {
	return fmt.Sprintf("(%.1f, %.1f, %.1f, %.1f)", b.X0, b.Y0, b.X1, b.Y1)
}

// describe replaces classified errors with their user-facing message
func describe(err error) error {
	if msg, ok := pdf.Message(err); ok {
		return fmt.Errorf("%s", msg)
	}
	return err
}

func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d bytes)\n", path, len(data))
	return nil
}
