package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"castor/internal/conv"
	"castor/internal/types"
)

var kindAbbrev = map[conv.ResultKind]string{
	conv.None:              "-",
	conv.Identity:          "id",
	conv.ImplicitNumeric:   "num",
	conv.ExplicitNumeric:   "num!",
	conv.ImplicitConstant:  "const",
	conv.EnumZero:          "enum0",
	conv.NullLiteral:       "null",
	conv.ImplicitReference: "ref",
	conv.ExplicitReference: "ref!",
	conv.Boxing:            "box",
	conv.Unboxing:          "unbox",
	conv.NullableWrap:      "wrap",
	conv.NullableUnwrap:    "unwrap",
	conv.NullableLift:      "lift",
	conv.Pointer:           "ptr",
	conv.DialectTruth:      "truth",
	conv.DialectString:     "str",
	conv.DialectErasure:    "erase",
	conv.DynamicConversion: "dyn",
	conv.UserDefined:       "user",
	conv.Ambiguous:         "amb",
}

func abbrev(r conv.Result) string {
	s, ok := kindAbbrev[r.Kind]
	if !ok {
		return "?"
	}
	// Pointer conversions that need a cast get the cast marker.
	if r.ExplicitPointer {
		s += "!"
	}
	return s
}

func newMatrixCmd() *cobra.Command {
	var explicit bool
	cmd := &cobra.Command{
		Use:   "matrix [TYPE...]",
		Short: "Print the conversion table between types",
		Long: `Print a table of conversion kinds from every row type to every column type.
Without arguments the table covers the declared non-generic types and type
parameters of the universe.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatrix(cmd, args, explicit)
		},
	}
	cmd.Flags().BoolVarP(&explicit, "explicit", "x", false, "classify as cast expressions")
	return cmd
}

func runMatrix(cmd *cobra.Command, args []string, explicit bool) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.finish()

	names := args
	if len(names) == 0 {
		for _, name := range s.u.Names() {
			if _, err := s.u.Resolve(name); err == nil {
				names = append(names, name)
			}
		}
	}
	ids := make([]types.TypeID, len(names))
	for i, name := range names {
		if ids[i], err = s.u.Resolve(name); err != nil {
			return err
		}
	}

	ctx := conv.ImplicitContext(s.u.Dialect)
	ctx.Explicit = explicit
	queries := make([]conv.Query, 0, len(ids)*len(ids))
	for _, src := range ids {
		for _, dst := range ids {
			queries = append(queries, conv.Query{Source: src, Target: dst, Context: ctx})
		}
	}
	labels := make([]string, len(ids))
	for i, id := range ids {
		labels[i] = s.u.Types.Label(id)
	}
	var outcomes []conv.Outcome
	err = s.timer.Measure("classify", func() error {
		outcomes, err = s.classifyBatch(cmd.Context(), conv.New(s.u.Types), queries, "matrix", labels, len(ids))
		return err
	})
	if err != nil {
		return err
	}
	cells := make([][]string, len(ids))
	for i := range ids {
		cells[i] = make([]string, len(ids))
		for j := range ids {
			cells[i][j] = abbrev(outcomes[i*len(ids)+j].Result)
		}
	}
	return writeMatrix(cmd.OutOrStdout(), labels, cells)
}

// writeMatrix prints a square table with a header row of labels. Widths
// are measured in terminal cells so wide names stay aligned.
func writeMatrix(w io.Writer, labels []string, cells [][]string) error {
	rowWidth := 0
	for _, l := range labels {
		rowWidth = max(rowWidth, runewidth.StringWidth(l))
	}
	colWidth := make([]int, len(labels))
	for j, l := range labels {
		colWidth[j] = runewidth.StringWidth(l)
		for i := range cells {
			colWidth[j] = max(colWidth[j], runewidth.StringWidth(cells[i][j]))
		}
	}

	var sb strings.Builder
	sb.WriteString(runewidth.FillRight("", rowWidth))
	for j, l := range labels {
		sb.WriteString("  ")
		sb.WriteString(runewidth.FillRight(l, colWidth[j]))
	}
	if _, err := fmt.Fprintln(w, strings.TrimRight(sb.String(), " ")); err != nil {
		return err
	}
	for i, row := range cells {
		sb.Reset()
		sb.WriteString(runewidth.FillRight(labels[i], rowWidth))
		for j, c := range row {
			sb.WriteString("  ")
			sb.WriteString(runewidth.FillRight(c, colWidth[j]))
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(sb.String(), " ")); err != nil {
			return err
		}
	}
	return nil
}
