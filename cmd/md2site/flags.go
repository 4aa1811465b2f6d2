package main

import (
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// siteFlags overrides the site section of the config.
type siteFlags struct {
	title   string
	author  string
	baseURL string
}

// renderFlags overrides the render section of the config.
type renderFlags struct {
	workers    int
	timeout    string
	codeEngine string
	codeStyle  string
}

// assetFlags holds theme selection flags.
type assetFlags struct {
	style     string
	template  string
	assetPath string
}

// buildFlags holds all flags for the build command.
type buildFlags struct {
	common  commonFlags
	posts   string
	assets  string
	output  string
	logJSON bool
	site    siteFlags
	render  renderFlags
	theme   assetFlags
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug diagnostics")
}

// addSiteFlags adds site description flags to a FlagSet.
func addSiteFlags(fs *flag.FlagSet, f *siteFlags) {
	fs.StringVar(&f.title, "title", "", "site title")
	fs.StringVar(&f.author, "author", "", "site author")
	fs.StringVar(&f.baseURL, "base-url", "", "absolute site URL used in the feed and canonical links")
}

// addRenderFlags adds renderer flags to a FlagSet.
func addRenderFlags(fs *flag.FlagSet, f *renderFlags) {
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel renders (0 = auto)")
	fs.StringVar(&f.timeout, "timeout", "", "timeout per renderer call (e.g. 30s, 2m)")
	fs.StringVar(&f.codeEngine, "code-engine", "", "syntax highlighter: pygments, chroma")
	fs.StringVar(&f.codeStyle, "code-style", "", "chroma style name (e.g. github, monokai)")
}

// addAssetFlags adds theme flags to a FlagSet.
func addAssetFlags(fs *flag.FlagSet, f *assetFlags) {
	fs.StringVar(&f.style, "style", "", "stylesheet name")
	fs.StringVar(&f.template, "template", "", "template set name")
	fs.StringVar(&f.assetPath, "asset-path", "", "directory with custom styles/ and templates/")
}

// newBuildFlagSet registers every build flag on a new FlagSet.
func newBuildFlagSet(f *buildFlags, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { printBuildUsage(stderr) }

	fs.StringVar(&f.posts, "posts", "", "directory of Markdown posts")
	fs.StringVar(&f.assets, "assets", "", "directory copied into the site (Markdown skipped)")
	fs.StringVarP(&f.output, "output", "o", "", "output directory")
	fs.BoolVar(&f.logJSON, "log-json", false, "write diagnostics as JSON")

	addCommonFlags(fs, &f.common)
	addSiteFlags(fs, &f.site)
	addRenderFlags(fs, &f.render)
	addAssetFlags(fs, &f.theme)
	return fs
}

// parseBuildFlags parses build arguments. The single optional positional
// argument is the posts directory.
func parseBuildFlags(args []string, stderr io.Writer) (*buildFlags, []string, error) {
	f := &buildFlags{}
	fs := newBuildFlagSet(f, stderr)
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	positional := fs.Args()
	if len(positional) > 1 {
		return nil, nil, fmt.Errorf("%w: expected at most one posts directory, got %d arguments", ErrUsage, len(positional))
	}
	if f.common.quiet && f.common.verbose {
		return nil, nil, fmt.Errorf("%w: --quiet and --verbose are mutually exclusive", ErrUsage)
	}
	return f, positional, nil
}

// doctorFlags holds flags for the doctor command.
type doctorFlags struct {
	config string
	json   bool
}

// parseDoctorFlags parses doctor arguments.
func parseDoctorFlags(args []string, stderr io.Writer) (*doctorFlags, error) {
	f := &doctorFlags{}
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { printDoctorUsage(stderr) }
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVar(&f.json, "json", false, "machine-readable output")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: doctor takes no arguments", ErrUsage)
	}
	return f, nil
}
