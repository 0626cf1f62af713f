// cspgen печатает Content-Security-Policy, которую даст текущее окружение.
//
//	CSP_DEFAULT_SRC="'self'" cspgen -mode prod -script "console.log(1)"
package main

import (
	"flag"
	"fmt"
	"html"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"cspmeta/internal/csp"
)

type stringList []string

func (s *stringList) String() string     { return strings.Join(*s, ",") }
func (s *stringList) Set(v string) error { *s = append(*s, v); return nil }

func main() {
	os.Exit(run(os.Args[1:], os.Environ(), os.Stdout, os.Stderr))
}

func run(args, environ []string, stdout, stderr io.Writer) int {
	fl := flag.NewFlagSet("cspgen", flag.ContinueOnError)
	fl.SetOutput(stderr)

	var (
		prefix   = fl.String("prefix", "CSP", "prefix of directive environment variables")
		file     = fl.String("file", "", "YAML policy file; environment overrides it")
		mode     = fl.String("mode", "dev", "build mode: dev or prod")
		format   = fl.String("format", "header", "output: header, meta or lines")
		delivery = fl.String("delivery", "meta", "directive catalog: meta or header")
		assets   = fl.String("assets", ".", "directory that style asset paths are relative to")
		critical = fl.String("critical", "", "critical CSS path")
		verbose  = fl.Bool("v", false, "log warnings as JSON too")
		scripts  stringList
		styles   stringList
		sheets   stringList
	)
	fl.Var(&scripts, "script", "inline script body (repeatable)")
	fl.Var(&styles, "style", "inline style body (repeatable)")
	fl.Var(&sheets, "stylesheet", "stylesheet path (repeatable)")
	if err := fl.Parse(args); err != nil {
		return 2
	}

	var store csp.Store = csp.FromEnviron(*prefix, environ)
	if *file != "" {
		f, err := csp.LoadFile(*file)
		if err != nil {
			color.New(color.FgRed).Fprintln(stderr, err)
			return 1
		}
		store = csp.Layered(store, f)
	}

	catalog := csp.MetaCatalog
	switch *delivery {
	case "meta":
	case "header":
		catalog = csp.HeaderCatalog
	default:
		color.New(color.FgRed).Fprintf(stderr, "unknown delivery %q\n", *delivery)
		return 2
	}

	logger := zerolog.Nop()
	if *verbose {
		logger = zerolog.New(stderr).With().Timestamp().Logger()
	}

	p := csp.NewBuilder(
		csp.WithCatalog(catalog),
		csp.WithPrefix(*prefix),
		csp.WithAssets(csp.NewFSAssets(os.DirFS(*assets))),
		csp.WithLogger(logger),
	).Build(csp.Input{
		Config:        store,
		Mode:          csp.ParseMode(*mode),
		InlineScripts: scripts,
		InlineStyles:  styles,
		CriticalStyle: *critical,
		Stylesheets:   sheets,
	})

	warn := color.New(color.FgYellow)
	for _, w := range p.Warnings {
		warn.Fprintln(stderr, "warning:", w.String())
	}

	if p.Empty() {
		color.New(color.FgRed).Fprintln(stderr, "no directives configured")
		return 1
	}

	switch *format {
	case "meta":
		fmt.Fprintf(stdout, "<meta http-equiv=\"Content-Security-Policy\" content=\"%s\">\n", html.EscapeString(p.Meta()))
	case "lines":
		for _, l := range p.Lines {
			fmt.Fprintln(stdout, l.String())
		}
	default:
		fmt.Fprintln(stdout, p.Header())
	}
	return 0
}
