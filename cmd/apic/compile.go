package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oalang/apic/internal/config"
	"github.com/oalang/apic/internal/errors"
	"github.com/oalang/apic/internal/eval"
	"github.com/oalang/apic/internal/infer"
	"github.com/oalang/apic/internal/loader"
	"github.com/oalang/apic/internal/locator"
	"github.com/oalang/apic/internal/openapi"
	"github.com/oalang/apic/internal/parser"
	"github.com/oalang/apic/internal/resolve"
	"github.com/oalang/apic/internal/typecheck"
	"github.com/oalang/apic/internal/types"
)

// compileOptions mirrors spec.md §6's CLI surface, plus -o for the
// rendered document's destination (the surface is silent on output, so
// stdout-by-default with an optional override is the natural extension).
type compileOptions struct {
	Main       string
	Target     string
	Base       string
	ConfigPath string
	Out        string
	Verbose    bool
	Quiet      bool
}

// supportedTarget is the only dialect this compiler renders; -t/[api].target
// naming anything else is a warning, not an error, since spec.md's
// Non-goals exclude other target languages outright rather than making
// them a hard failure of an otherwise-valid compilation.
const supportedTarget = "openapi3"

// pathToFileLocator turns a filesystem path (absolute or relative to dir)
// or an already-absolute URL string into a locator.Locator. Bare paths are
// the common case for this CLI; full URLs are accepted unchanged so a
// config file (or a future non-file TextSource) can still name one.
func pathToFileLocator(dir, p string) (locator.Locator, error) {
	if strings.Contains(p, "://") {
		return locator.New(p)
	}
	abs := p
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(dir, abs)
	}
	abs = filepath.ToSlash(abs)
	if !strings.HasPrefix(abs, "/") {
		abs = "/" + abs
	}
	return locator.New("file://" + abs)
}

// fileTextSource reads a file:// locator's path off disk -- the core's
// injected Loader capability (spec.md §6), synchronous per §5's
// concurrency model.
func fileTextSource(loc locator.Locator) (string, error) {
	u := loc.URL()
	if u.Scheme != "" && u.Scheme != "file" {
		return "", fmt.Errorf("unsupported locator scheme %q", u.Scheme)
	}
	data, err := os.ReadFile(u.Path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func runCompile(cmd *cobra.Command, opts compileOptions) error {
	t := newTracer(opts.Verbose, opts.Quiet)
	defer t.close()

	anchor, err := os.Getwd()
	if err != nil {
		return err
	}

	mainPath, basePath, target := opts.Main, opts.Base, opts.Target
	if opts.ConfigPath != "" {
		t.phase("config", opts.ConfigPath)
		cfg, err := config.Load(opts.ConfigPath)
		if err != nil {
			return err
		}
		anchor = filepath.Dir(opts.ConfigPath)
		if mainPath == "" {
			mainPath = cfg.API.Main
		}
		if basePath == "" {
			basePath = cfg.API.Base
		}
		if target == "" {
			target = cfg.API.Target
		}
		t.ok("config")
	}

	if mainPath == "" {
		return errors.Wrap(errors.New(errors.EmptyPath, "cli", "no main module given (-m or [api].main)").WithCode(errors.CFG002))
	}
	if target != "" && target != supportedTarget {
		t.warn(fmt.Sprintf("target %q is not implemented; rendering %s", target, supportedTarget))
	}

	baseDir := anchor
	if basePath != "" {
		baseLoc, err := pathToFileLocator(anchor, basePath)
		if err != nil {
			return err
		}
		baseDir = baseLoc.URL().Path
	}
	mainLoc, err := pathToFileLocator(baseDir, mainPath)
	if err != nil {
		return err
	}

	t.phase("load", mainLoc.String())
	ld := loader.New(fileTextSource, parser.Parse)
	mods, edges, err := ld.Discover(mainLoc)
	if err != nil {
		return err
	}
	order, err := loader.TopoOrder(mods, edges)
	if err != nil {
		return err
	}
	t.ok(fmt.Sprintf("load (%d module(s))", mods.Len()))

	t.phase("resolve", "")
	graph, internals, err := resolve.Resolve(mods)
	if err != nil {
		return err
	}
	recursive := graph.IdentifyRecursion()
	t.ok("resolve")

	t.phase("infer.tag", "")
	for _, loc := range order {
		if err := infer.Tag(mods, loc); err != nil {
			return err
		}
	}
	t.ok("infer.tag")

	t.phase("infer.constrain", "")
	eqs := types.NewEquationSet()
	for _, loc := range order {
		if err := infer.Constrain(mods, loc, eqs); err != nil {
			return err
		}
	}
	t.ok("infer.constrain")

	t.phase("infer.unify", "")
	uf, err := eqs.Unify()
	if err != nil {
		return err
	}
	t.ok("infer.unify")

	t.phase("infer.substitute", "")
	for _, loc := range order {
		if err := infer.Substitute(mods, loc, uf); err != nil {
			return err
		}
	}
	t.ok("infer.substitute")

	t.phase("infer.check_complete", "")
	for _, loc := range order {
		if err := infer.CheckComplete(mods, loc); err != nil {
			return err
		}
	}
	t.ok("infer.check_complete")

	t.phase("typecheck", "")
	for _, loc := range order {
		if err := typecheck.Check(mods, loc); err != nil {
			return err
		}
	}
	t.ok("typecheck")

	t.phase("eval", "")
	spec, err := eval.Evaluate(mods, recursive, internals)
	if err != nil {
		return err
	}
	t.ok(fmt.Sprintf("eval (%d relation(s))", spec.Rels.Len()))

	t.phase("openapi", "")
	info := openapi.Info{Title: documentTitle(mainLoc), Version: "1.0.0"}
	doc, err := openapi.Marshal(spec, info)
	if err != nil {
		return err
	}
	t.ok("openapi")

	if opts.Out == "" || opts.Out == "-" {
		_, err = cmd.OutOrStdout().Write(doc)
		return err
	}
	return os.WriteFile(opts.Out, doc, 0o644)
}

// documentTitle derives an OpenAPI info.title from the main module's file
// name, stripping its extension -- spec.md names no title source, so the
// main module's own name is the least surprising default.
func documentTitle(loc locator.Locator) string {
	base := filepath.Base(loc.URL().Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
