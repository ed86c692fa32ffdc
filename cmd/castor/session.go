package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"fortio.org/safecast"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"castor/internal/diag"
	"castor/internal/diagfmt"
	"castor/internal/dialect"
	"castor/internal/observ"
	"castor/internal/source"
	"castor/internal/universe"
)

const (
	universeFile source.FileID = 1 // declaration spans
	queryFile    source.FileID = 2 // one span per command-line query
)

var errNoUniverse = errors.New("no type universe given (use --universe)")

// session is the loaded universe plus the output settings of one command.
type session struct {
	cmd      *cobra.Command
	path     string
	manifest *universe.Manifest
	u        *universe.Universe
	timer    *observ.Timer
	color    bool
	maxDiags int
	jobs     int
}

func setupColor(cmd *cobra.Command) error {
	mode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return err
	}
	switch mode {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	case "auto":
		color.NoColor = !isTerminal(os.Stdout)
	default:
		return fmt.Errorf("invalid --color %q (expected auto|on|off)", mode)
	}
	return nil
}

// openSession loads and builds the universe named by --universe.
func openSession(cmd *cobra.Command) (*session, error) {
	flags := cmd.Root().PersistentFlags()
	path, err := flags.GetString("universe")
	if err != nil {
		return nil, err
	}
	if path == "" {
		return nil, errNoUniverse
	}
	s := &session{cmd: cmd, path: path, timer: observ.NewTimer(), color: !color.NoColor}
	if s.maxDiags, err = flags.GetInt("max-diagnostics"); err != nil {
		return nil, err
	}
	if s.maxDiags < 0 {
		return nil, fmt.Errorf("--max-diagnostics must not be negative, got %d", s.maxDiags)
	}
	if s.jobs, err = flags.GetInt("jobs"); err != nil {
		return nil, err
	}

	err = s.timer.Measure("load", func() error {
		s.manifest, err = universe.Load(path)
		return err
	})
	if err != nil {
		return nil, err
	}
	if flags.Changed("dialect") {
		name, _ := flags.GetString("dialect")
		d, err := dialect.Parse(name)
		if err != nil {
			return nil, err
		}
		s.manifest.Dialect = d.String()
	}

	bag := diag.NewBag(s.maxDiags)
	err = s.timer.Measure("build", func() error {
		s.u, err = universe.Build(s.manifest, universeFile, diag.BagReporter{Bag: bag})
		return err
	})
	if bag.Len() > 0 {
		if perr := s.printDiagnostics(bag); perr != nil {
			return nil, perr
		}
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func querySpan(i int) source.Span {
	n, err := safecast.Conv[uint32](i)
	if err != nil {
		panic(fmt.Errorf("query index overflow: %w", err))
	}
	return source.Span{File: queryFile, Start: n, End: n + 1}
}

// locate names the declaration or query a span points at.
func (s *session) locate(sp source.Span) string {
	base := filepath.Base(s.path)
	i := int(sp.Start)
	switch sp.File {
	case universeFile:
		if s.manifest == nil {
			return base
		}
		if i < len(s.manifest.Types) {
			return fmt.Sprintf("%s:types[%d] %s", base, i, s.manifest.Types[i].Name)
		}
		if j := i - len(s.manifest.Types); j < len(s.manifest.Params) {
			return fmt.Sprintf("%s:params[%d] %s", base, j, s.manifest.Params[j].Name)
		}
		return base
	case queryFile:
		return fmt.Sprintf("query #%d", i+1)
	}
	return ""
}

func (s *session) printDiagnostics(bag *diag.Bag) error {
	return diagfmt.Pretty(s.cmd.ErrOrStderr(), bag, diagfmt.PrettyOpts{
		Color:     s.color,
		ShowNotes: true,
		Locate:    s.locate,
	})
}

// finish prints the phase timings when --timings is set.
func (s *session) finish() {
	show, err := s.cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil || !show {
		return
	}
	fmt.Fprint(s.cmd.ErrOrStderr(), s.timer.Summary())
}
