package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"castor/internal/conv"
	"castor/internal/trace"
	"castor/internal/types"
	"castor/internal/universe"
)

type classifyOptions struct {
	explicit      bool
	overflow      string
	unsafe        bool
	varargs       bool
	upconvertOnly bool
	format        string
}

func newClassifyCmd() *cobra.Command {
	var opts classifyOptions
	cmd := &cobra.Command{
		Use:   "classify SOURCE TARGET [SOURCE TARGET...]",
		Short: "Classify and apply conversions between pairs of types",
		Long: `Classify each SOURCE -> TARGET pair against the universe.
A SOURCE written as TYPE:VALUE is a constant of that type (int:300, double:2.5,
bool:true, null).`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 || len(args)%2 != 0 {
				return fmt.Errorf("expected SOURCE TARGET pairs, got %d arguments", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClassify(cmd, args, opts)
		},
	}
	cmd.Flags().BoolVarP(&opts.explicit, "explicit", "x", false, "classify as a cast expression")
	cmd.Flags().StringVar(&opts.overflow, "overflow", "", "constant overflow mode (checked|unchecked)")
	cmd.Flags().BoolVar(&opts.unsafe, "unsafe", false, "allow pointer conversions")
	cmd.Flags().BoolVar(&opts.varargs, "varargs", false, "classify at a params-array call site")
	cmd.Flags().BoolVar(&opts.upconvertOnly, "upconvert-only", false, "disable loose dialect narrowing")
	cmd.Flags().StringVar(&opts.format, "format", "text", "output format (text|json)")
	return cmd
}

func (o classifyOptions) context(d conv.Context) (conv.Context, error) {
	d.Explicit = o.explicit
	d.Unsafe = o.unsafe
	d.VarargsCallSite = o.varargs
	d.UpconvertOnly = o.upconvertOnly
	switch strings.ToLower(o.overflow) {
	case "":
		d.Overflow = conv.OverflowUnspecified
	case "checked":
		d.Overflow = conv.Checked
	case "unchecked":
		d.Overflow = conv.Unchecked
	default:
		return d, fmt.Errorf("invalid --overflow %q (expected checked|unchecked)", o.overflow)
	}
	return d, nil
}

func runClassify(cmd *cobra.Command, args []string, opts classifyOptions) error {
	if opts.format != "text" && opts.format != "json" {
		return fmt.Errorf("unsupported format %q (must be text or json)", opts.format)
	}
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.finish()

	base, err := opts.context(conv.ImplicitContext(s.u.Dialect))
	if err != nil {
		return err
	}
	queries := make([]conv.Query, 0, len(args)/2)
	for i := 0; i+1 < len(args); i += 2 {
		src, value, err := parseOperand(s.u, args[i])
		if err != nil {
			return err
		}
		dst, err := s.u.Resolve(args[i+1])
		if err != nil {
			return err
		}
		ctx := base
		ctx.At = querySpan(len(queries))
		queries = append(queries, conv.Query{Source: src, Target: dst, Context: ctx, Value: value})
	}

	ctx := cmd.Context()
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeDriver, "classify", 0)
	ctx = trace.WithSpan(ctx, span.ID())

	engine := conv.New(s.u.Types)
	var outcomes []conv.Outcome
	err = s.timer.Measure("classify", func() error {
		outcomes, err = s.classifyBatch(ctx, engine, queries, "classify", pairLabels(args), 1)
		return err
	})
	span.End(fmt.Sprintf("%d queries", len(queries)))
	if err != nil {
		return err
	}

	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
		}
		if o.Bag.Len() > 0 {
			if err := s.printDiagnostics(o.Bag); err != nil {
				return err
			}
		}
	}
	out := cmd.OutOrStdout()
	if opts.format == "json" {
		err = writeClassifyJSON(out, engine, queries, outcomes)
	} else {
		err = writeClassifyText(out, engine, queries, outcomes)
	}
	if err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d conversions failed", failed, len(queries))
	}
	return nil
}

// parseOperand reads TYPE or TYPE:VALUE. The bare word null is the null
// literal.
func parseOperand(u *universe.Universe, spec string) (types.TypeID, conv.Value, error) {
	in := u.Types
	if strings.TrimSpace(spec) == "null" {
		return in.Builtins().Null, conv.Const(in.Builtins().Null, conv.NullConst()), nil
	}
	expr, literal, isConst := strings.Cut(spec, ":")
	id, err := u.Resolve(expr)
	if err != nil {
		return types.NoTypeID, nil, err
	}
	if !isConst {
		return id, conv.Var(id), nil
	}
	c, err := parseConstant(in, id, literal)
	if err != nil {
		return types.NoTypeID, nil, fmt.Errorf("%s: %w", spec, err)
	}
	return id, conv.Const(id, c), nil
}

func parseConstant(in *types.Interner, id types.TypeID, literal string) (conv.Constant, error) {
	k := in.Kind(id)
	if k == types.KindEnum {
		underlying, _ := in.EnumUnderlying(id)
		k = in.Kind(underlying)
	}
	switch {
	case k == types.KindBool:
		v, err := strconv.ParseBool(literal)
		return conv.BoolConst(v), err
	case k == types.KindString:
		return conv.StringConst(literal), nil
	case k == types.KindNull || (k == types.KindObject && literal == "null"):
		return conv.NullConst(), nil
	case k.IsFloating() || k == types.KindDecimal:
		v, err := strconv.ParseFloat(literal, 64)
		return conv.FloatConst(v), err
	case k.IsUnsigned():
		v, err := strconv.ParseUint(literal, 0, 64)
		return conv.UintConst(v), err
	case k.IsIntegral():
		v, err := strconv.ParseInt(literal, 0, 64)
		return conv.IntConst(v), err
	}
	return conv.Constant{}, fmt.Errorf("constants of type '%s' are not supported", in.Label(id))
}

func writeClassifyText(w io.Writer, e *conv.Engine, queries []conv.Query, outcomes []conv.Outcome) error {
	in := e.Types()
	ok := color.New(color.FgGreen)
	bad := color.New(color.FgRed, color.Bold)
	for i, o := range outcomes {
		q := queries[i]
		src := in.Label(q.Value.Type())
		if c, isConst := q.Value.Constant(); isConst {
			src += " " + c.String()
		}
		kind := ok.Sprint(o.Result.String())
		if o.Err != nil {
			kind = bad.Sprint(o.Result.String())
		}
		line := fmt.Sprintf("%s -> %s: %s", src, in.Label(q.Target), kind)
		if o.Result.RuntimeChecked {
			line += " [runtime-checked]"
		}
		if op := o.Result.Operator; op != nil {
			line += " via " + e.Resolver().Signature(*op)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
		if o.Op != nil {
			if _, err := fmt.Fprintf(w, "    %s\n", o.Op); err != nil {
				return err
			}
		}
	}
	return nil
}

type classifyJSON struct {
	Source         string `json:"source"`
	Target         string `json:"target"`
	Constant       string `json:"constant,omitempty"`
	Kind           string `json:"kind"`
	Result         string `json:"result"`
	RuntimeChecked bool   `json:"runtime_checked,omitempty"`
	Operator       string `json:"operator,omitempty"`
	Operation      string `json:"operation,omitempty"`
	Error          string `json:"error,omitempty"`
}

func writeClassifyJSON(w io.Writer, e *conv.Engine, queries []conv.Query, outcomes []conv.Outcome) error {
	in := e.Types()
	payload := make([]classifyJSON, len(outcomes))
	for i, o := range outcomes {
		q := queries[i]
		p := classifyJSON{
			Source:         in.Label(q.Value.Type()),
			Target:         in.Label(q.Target),
			Kind:           o.Result.Kind.String(),
			Result:         o.Result.String(),
			RuntimeChecked: o.Result.RuntimeChecked,
		}
		if c, isConst := q.Value.Constant(); isConst {
			p.Constant = c.String()
		}
		if o.Result.Operator != nil {
			p.Operator = e.Resolver().Signature(*o.Result.Operator)
		}
		if o.Op != nil {
			p.Operation = o.Op.String()
		}
		if o.Err != nil {
			p.Error = o.Err.Error()
		}
		payload[i] = p
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

// pairLabels names each SOURCE TARGET pair for the progress view.
func pairLabels(args []string) []string {
	labels := make([]string, 0, len(args)/2)
	for i := 0; i+1 < len(args); i += 2 {
		labels = append(labels, args[i]+" -> "+args[i+1])
	}
	return labels
}
