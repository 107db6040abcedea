// Command wflinfo prints the GL implementation behind a platform and
// context API.
package main

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/richinsley/glplatform/core"
	"github.com/richinsley/glplatform/info"
	"github.com/richinsley/glplatform/internal/cliflags"
	"github.com/richinsley/glplatform/platform"

	_ "github.com/richinsley/glplatform/egl"
	_ "github.com/richinsley/glplatform/gbmplat"
	_ "github.com/richinsley/glplatform/glfwcontext"
	_ "github.com/richinsley/glplatform/null"
	_ "github.com/richinsley/glplatform/surfaceless"
)

var (
	versionFlag = &cli.StringFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "context version as MAJOR.MINOR",
	}
	profileFlag = &cli.StringFlag{
		Name:  "profile",
		Usage: "core, compat or none",
	}
	forwardFlag = &cli.BoolFlag{
		Name:  "forward-compatible",
		Usage: "create a forward compatible context",
	}
	debugContextFlag = &cli.BoolFlag{
		Name:  "debug-context",
		Usage: "create a debug context",
	}
	robustFlag = &cli.BoolFlag{
		Name:  "robust",
		Usage: "create a robust access context",
	}
	verboseFlag = &cli.BoolFlag{
		Name:    "verbose",
		Aliases: []string{"v"},
		Usage:   "print the extension list",
	}
)

func init() {
	runtime.LockOSThread()
}

func main() {
	app := &cli.App{
		Name:        "wflinfo",
		Usage:       "print GL implementation information",
		HideVersion: true,
		Flags: append(append([]cli.Flag{}, cliflags.Common...),
			versionFlag, profileFlag, forwardFlag, debugContextFlag, robustFlag, verboseFlag),
		Action: wflinfo,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "wflinfo:", err)
		os.Exit(1)
	}
}

// parseVersion reads MAJOR.MINOR.
func parseVersion(s string) (major, minor int, err error) {
	ma, mi, ok := strings.Cut(s, ".")
	if !ok {
		return 0, 0, core.Errorf(core.BadParameter, "version %q is not MAJOR.MINOR", s)
	}
	if major, err = strconv.Atoi(ma); err != nil || major < 1 {
		return 0, 0, core.Errorf(core.BadParameter, "bad major version in %q", s)
	}
	if minor, err = strconv.Atoi(mi); err != nil || minor < 0 {
		return 0, 0, core.Errorf(core.BadParameter, "bad minor version in %q", s)
	}
	return major, minor, nil
}

func contextAttrs(ctx *cli.Context, api core.ContextAPI) (core.ConfigAttrs, error) {
	attrs := core.DefaultConfigAttrs(api)
	if v := ctx.String(versionFlag.Name); v != "" {
		major, minor, err := parseVersion(v)
		if err != nil {
			return attrs, err
		}
		attrs.ContextMajor, attrs.ContextMinor = major, minor
	}
	if p := ctx.String(profileFlag.Name); p != "" {
		profile, err := core.ParseProfile(p)
		if err != nil {
			return attrs, err
		}
		attrs.Profile = profile
	}
	attrs.ForwardCompatible = ctx.Bool(forwardFlag.Name)
	attrs.Debug = ctx.Bool(debugContextFlag.Name)
	attrs.Robust = ctx.Bool(robustFlag.Name)
	return attrs, attrs.Validate()
}

func wflinfo(ctx *cli.Context) error {
	cliflags.SetupLogging(ctx)
	opts, err := cliflags.Options(ctx)
	if err != nil {
		return err
	}
	attrs, err := contextAttrs(ctx, opts.API)
	if err != nil {
		return err
	}

	p, err := platform.Open(opts)
	if err != nil {
		return err
	}
	defer p.Destroy()

	dpy, err := p.Connect("")
	if err != nil {
		return err
	}
	defer dpy.Disconnect()

	if !dpy.SupportsContextAPI(opts.API) {
		return core.Errorf(core.UnsupportedOnPlatform, "%s does not support %s", opts.Platform, opts.API)
	}
	cfg, err := dpy.ChooseConfig(attrs)
	if err != nil {
		return fmt.Errorf("choose config: %w", err)
	}
	defer cfg.Destroy()

	glctx, err := cfg.CreateContext(nil)
	if err != nil {
		return fmt.Errorf("create context: %w", err)
	}
	defer glctx.Destroy()

	win, err := cfg.CreateWindow(1, 1)
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}
	defer win.Destroy()

	if err := platform.MakeCurrent(p, dpy, win, glctx); err != nil {
		return fmt.Errorf("make current: %w", err)
	}
	defer platform.MakeCurrent(p, dpy, nil, nil)

	if err := info.Init(); err != nil {
		return err
	}
	in, err := info.Query(info.Current{}, opts.API)
	if err != nil {
		return err
	}
	fmt.Printf("Platform: %s\n", opts.Platform)
	fmt.Printf("API: %s\n", opts.API)
	in.Write(os.Stdout, ctx.Bool(verboseFlag.Name))
	return nil
}
