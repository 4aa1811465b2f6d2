package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-md2site/internal/config"
	"github.com/alnah/go-md2site/internal/fileutil"
	"github.com/alnah/go-md2site/internal/hints"
	"github.com/alnah/go-md2site/internal/render"
)

// Doctor statuses.
const (
	statusReady    = "ready"
	statusWarnings = "warnings"
	statusErrors   = "errors"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string     `json:"status"`
	Tools    []toolInfo `json:"tools"`
	Input    inputInfo  `json:"input"`
	Env      envInfo    `json:"environment"`
	Warnings []string   `json:"warnings,omitempty"`
	Errors   []string   `json:"errors,omitempty"`
}

// toolInfo holds the lookup result for one renderer command.
type toolInfo struct {
	Role     string `json:"role"` // code, math, diagram
	Command  string `json:"command"`
	Found    bool   `json:"found"`
	Path     string `json:"path,omitempty"`
	Required bool   `json:"required"`
}

// inputInfo holds the source directory checks.
type inputInfo struct {
	PostsDir    string `json:"posts_dir"`
	PostsFound  bool   `json:"posts_found"`
	AssetsDir   string `json:"assets_dir,omitempty"`
	AssetsFound bool   `json:"assets_found"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS         string `json:"os"`
	Arch       string `json:"arch"`
	Container  bool   `json:"container"`
	CodeEngine string `json:"code_engine"`
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found.
func runDoctorCmd(args []string, env *Environment) int {
	flags, err := parseDoctorFlags(args, env.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return ExitSuccess
	}
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
		return ExitUsage
	}

	name := flags.config
	if name == "" {
		name = os.Getenv("MD2SITE_CONFIG")
	}
	cfg, err := resolveConfig(name)
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err))
		return exitCodeFor(err)
	}

	result := runDoctor(cfg, env.LookPath)

	if flags.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == statusErrors {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(cfg *config.Config, lookPath func(string) (string, error)) *doctorResult {
	result := &doctorResult{
		Status: statusReady,
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			Container:  os.Getenv("MD2SITE_CONTAINER") == "1" || hints.IsInContainer(),
			CodeEngine: cfg.Render.Code.Engine,
		},
	}

	checkTools(result, cfg.Render, lookPath)
	checkInput(result, cfg.Input)

	if len(result.Errors) > 0 {
		result.Status = statusErrors
	} else if len(result.Warnings) > 0 {
		result.Status = statusWarnings
	}
	return result
}

// checkTools looks up every external renderer. The code highlighter is
// required when it is a subprocess since every code block needs it; math
// and diagrams are only needed by posts that use them.
func checkTools(result *doctorResult, cfg config.RenderConfig, lookPath func(string) (string, error)) {
	var tools []toolInfo
	if cfg.Code.Engine != config.EngineChroma {
		tools = append(tools, toolInfo{Role: "code", Command: orDefault(cfg.Code.Command, render.DefaultPygmentsCommand), Required: true})
	}
	tools = append(tools,
		toolInfo{Role: "math", Command: orDefault(cfg.Math.Command, render.DefaultKaTeXCommand)},
		toolInfo{Role: "diagram", Command: orDefault(cfg.Diagram.Command, render.DefaultPlantUMLCommand)},
	)

	for i := range tools {
		t := &tools[i]
		path, err := lookPath(t.Command)
		if err == nil {
			t.Found = true
			t.Path = path
			continue
		}
		msg := fmt.Sprintf("%s renderer %q not found", t.Role, t.Command)
		if t.Required {
			result.Errors = append(result.Errors, msg)
		} else {
			result.Warnings = append(result.Warnings, msg+"; posts using it will fail")
		}
	}
	result.Tools = tools
}

// checkInput verifies the source directories.
func checkInput(result *doctorResult, cfg config.InputConfig) {
	result.Input.PostsDir = cfg.PostsDir
	result.Input.PostsFound = fileutil.DirExists(cfg.PostsDir)
	if !result.Input.PostsFound {
		result.Errors = append(result.Errors, fmt.Sprintf("posts directory %q not found", cfg.PostsDir))
	}

	if cfg.AssetsDir != "" {
		result.Input.AssetsDir = cfg.AssetsDir
		result.Input.AssetsFound = fileutil.DirExists(cfg.AssetsDir)
		if !result.Input.AssetsFound {
			result.Warnings = append(result.Warnings, fmt.Sprintf("assets directory %q not found; nothing will be copied", cfg.AssetsDir))
		}
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "md2site doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Renderers")
	if r.Env.CodeEngine == config.EngineChroma {
		fmt.Fprintln(w, "  [OK] code: chroma (built in)")
	}
	for _, t := range r.Tools {
		switch {
		case t.Found:
			fmt.Fprintf(w, "  [OK] %s: %s\n", t.Role, t.Path)
		case t.Required:
			fmt.Fprintf(w, "  [ERROR] %s: %s not found\n", t.Role, t.Command)
		default:
			fmt.Fprintf(w, "  [WARN] %s: %s not found\n", t.Role, t.Command)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Input")
	if r.Input.PostsFound {
		fmt.Fprintf(w, "  [OK] Posts: %s\n", r.Input.PostsDir)
	} else {
		fmt.Fprintf(w, "  [ERROR] Posts: %s not found\n", r.Input.PostsDir)
	}
	if r.Input.AssetsDir != "" {
		if r.Input.AssetsFound {
			fmt.Fprintf(w, "  [OK] Assets: %s\n", r.Input.AssetsDir)
		} else {
			fmt.Fprintf(w, "  [WARN] Assets: %s not found\n", r.Input.AssetsDir)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintln(w, "  [OK] Container: detected")
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case statusReady:
		fmt.Fprintln(w, "Status: Ready to build")
	case statusWarnings:
		fmt.Fprintln(w, "Status: Ready with warnings")
	case statusErrors:
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
