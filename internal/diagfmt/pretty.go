package diagfmt

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"castor/internal/diag"
	"castor/internal/source"
)

// Pretty writes one line per diagnostic:
//
//	<location>: <severity> <CODE>: <message>
//
// followed by indented notes when requested.
func Pretty(w io.Writer, bag *diag.Bag, opts PrettyOpts) error {
	sevColor := map[diag.Severity]*color.Color{
		diag.SevError:   color.New(color.FgRed, color.Bold),
		diag.SevWarning: color.New(color.FgYellow, color.Bold),
		diag.SevNote:    color.New(color.FgCyan),
	}
	codeColor := color.New(color.Faint)
	noteColor := color.New(color.FgBlue, color.Bold)
	for _, c := range sevColor {
		setEnabled(c, opts.Color)
	}
	setEnabled(codeColor, opts.Color)
	setEnabled(noteColor, opts.Color)

	for _, d := range bag.Items() {
		sev := d.Severity.String()
		if c, ok := sevColor[d.Severity]; ok {
			sev = c.Sprint(sev)
		}
		line := fmt.Sprintf("%s %s: %s", sev, codeColor.Sprint(d.Code.ID()), d.Message)
		if _, err := fmt.Fprintln(w, withLocation(opts.Locate, d.Primary, line)); err != nil {
			return err
		}
		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			note := noteColor.Sprint("note") + ": " + n.Msg
			if _, err := fmt.Fprintln(w, "  "+withLocation(opts.Locate, n.Span, note)); err != nil {
				return err
			}
		}
	}
	return nil
}

func withLocation(locate Locator, sp source.Span, text string) string {
	if locate == nil {
		return text
	}
	if loc := locate(sp); loc != "" {
		return loc + ": " + text
	}
	return text
}

func setEnabled(c *color.Color, on bool) {
	if on {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
}
