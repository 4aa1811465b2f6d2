package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2site <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  build      Render the posts directory into a static site")
	fmt.Fprintln(w, "  doctor     Check that the configured renderers are installed")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'md2site help <command>' for details on a specific command.")
}

// printBuildUsage prints usage for the build command.
func printBuildUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2site build [posts-dir] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render every published post and write the site.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  posts-dir    Directory of Markdown posts (default: input.postsDir)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "      --posts <dir>         Directory of Markdown posts")
	fmt.Fprintln(w, "      --assets <dir>        Directory copied into the site, .md files skipped")
	fmt.Fprintln(w, "  -o, --output <dir>        Output directory")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Site:")
	fmt.Fprintln(w, "      --title <s>           Site title")
	fmt.Fprintln(w, "      --author <s>          Site author")
	fmt.Fprintln(w, "      --base-url <url>      Absolute site URL for the feed and canonical links")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Rendering:")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel renders (0 = auto)")
	fmt.Fprintln(w, "      --timeout <d>         Timeout per renderer call (e.g. 30s, 2m)")
	fmt.Fprintln(w, "      --code-engine <s>     Syntax highlighter: pygments, chroma")
	fmt.Fprintln(w, "      --code-style <s>      Chroma style (e.g. github, monokai)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Theme:")
	fmt.Fprintln(w, "      --style <name>        Stylesheet name")
	fmt.Fprintln(w, "      --template <name>     Template set name")
	fmt.Fprintln(w, "      --asset-path <dir>    Directory with custom styles/ and templates/")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show debug diagnostics")
	fmt.Fprintln(w, "      --log-json            Write diagnostics as JSON")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  MD2SITE_CONFIG, MD2SITE_TITLE, MD2SITE_AUTHOR, MD2SITE_BASE_URL,")
	fmt.Fprintln(w, "  MD2SITE_POSTS_DIR, MD2SITE_ASSETS_DIR, MD2SITE_OUTPUT_DIR, MD2SITE_WORKERS,")
	fmt.Fprintln(w, "  MD2SITE_TIMEOUT, MD2SITE_CODE_ENGINE, MD2SITE_LOG_LEVEL, MD2SITE_LOG_FORMAT")
	fmt.Fprintln(w, "  A .env file in the working directory is read first.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Exit status: 0 success, 2 usage or config, 3 I/O, 4 some posts failed.")
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2site doctor [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check that the configured renderers and directories are available.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "      --json                Machine-readable output")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "build":
		printBuildUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: md2site version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: md2site help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
