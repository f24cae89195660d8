package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/alecthomas/kong"

	"github.com/toyz/numderive/internal/cli"
	"github.com/toyz/numderive/internal/models"
	"github.com/toyz/numderive/internal/recipes"
	"github.com/toyz/numderive/internal/utils"
	"github.com/toyz/numderive/pkg/derive"
)

const description = `Derives operators, widening constructors and cross-width equality for Go
numeric types from //derive:: directives on their type declarations.`

// Globals are the flags shared by every command
type Globals struct {
	Verbose bool   `help:"Show every step and the context of errors." short:"v" xor:"verbosity"`
	Quiet   bool   `help:"Only show errors." short:"q" xor:"verbosity"`
	Config  string `help:"Configuration file. Defaults to the nearest numderive.yaml." type:"path" placeholder:"FILE"`

	stdout io.Writer `kong:"-"`
	stderr io.Writer `kong:"-"`
}

func (g *Globals) diagnostics() *utils.DiagnosticSystem {
	var d *utils.DiagnosticSystem
	switch {
	case g.Quiet:
		d = utils.NewQuietDiagnostics()
	case g.Verbose:
		d = utils.NewVerboseDiagnostics()
	default:
		d = utils.NewDiagnosticSystem(utils.DiagnosticInfo)
	}
	if g.stdout != nil {
		d = d.WithOutput(g.stdout, g.stderr)
	}
	return d
}

// config merges defaults, the configuration file and command line flags,
// in increasing order of precedence
func (g *Globals) config(patterns []string, output string, dryRun bool) (cli.Config, error) {
	path := g.Config
	if path == "" {
		found, err := cli.FindConfigFile(".")
		if err != nil {
			return cli.Config{}, err
		}
		path = found
	}

	cfg := cli.DefaultConfig()
	if path != "" {
		loaded, err := cli.LoadConfigFile(path)
		if err != nil {
			return cli.Config{}, err
		}
		cfg = loaded
	}

	if len(patterns) > 0 {
		cfg.Patterns = patterns
	}
	if output != "" {
		cfg.Output = output
	}
	cfg.DryRun = dryRun
	return cfg, nil
}

// CLI is the command tree
type CLI struct {
	Globals

	Gen     GenCmd     `cmd:"" default:"withargs" help:"Generate derived declarations for the matched packages."`
	Clean   CleanCmd   `cmd:"" help:"Remove generated files from the matched packages."`
	Recipes RecipesCmd `cmd:"" help:"List the derivable names and what they produce."`
	Version VersionCmd `cmd:"" help:"Print version information."`
}

// GenCmd generates one file per package carrying directives
type GenCmd struct {
	Patterns []string `arg:"" optional:"" help:"Package patterns, as for the go command (default: .)."`
	Output   string   `help:"Generated file name (default: derive_gen.go)." short:"o"`
	DryRun   bool     `help:"Report what would change without writing." name:"dry-run"`
}

func (c *GenCmd) Run(g *Globals) error {
	d := g.diagnostics()
	reporter := cli.NewDiagnosticReporter(d)

	cfg, err := g.config(c.Patterns, c.Output, c.DryRun)
	if err != nil {
		reporter.ReportError(err)
		return err
	}

	d.Header("deriving " + strings.Join(cfg.Patterns, " "))
	generator := cli.NewGenerator(d)
	if err := generator.Run(cfg); err != nil {
		reporter.ReportError(err)
		return err
	}

	reporter.ReportSuccess(generator.Summary())
	d.GenerationComplete()
	return nil
}

// CleanCmd removes generated files
type CleanCmd struct {
	Patterns []string `arg:"" optional:"" help:"Package patterns, as for the go command (default: .)."`
	Output   string   `help:"Generated file name (default: derive_gen.go)." short:"o"`
	DryRun   bool     `help:"Report what would be removed without removing it." name:"dry-run"`
}

func (c *CleanCmd) Run(g *Globals) error {
	d := g.diagnostics()
	reporter := cli.NewDiagnosticReporter(d)

	cfg, err := g.config(c.Patterns, c.Output, c.DryRun)
	if err != nil {
		reporter.ReportError(err)
		return err
	}

	removed, err := cli.NewCleaner(d).CleanGeneratedFiles(cfg)
	if err != nil {
		reporter.ReportError(err)
		d.Info("%d generated files removed", len(removed))
		return err
	}
	d.Success("%d generated files removed", len(removed))
	return nil
}

// RecipesCmd prints the closed recipe tables
type RecipesCmd struct{}

func (c *RecipesCmd) Run(g *Globals) error {
	conv := models.DefaultConventions()
	w := tabwriter.NewWriter(g.out(), 0, 4, 2, ' ', 0)

	fmt.Fprintln(w, "NAME\tFAMILY\tDERIVES")
	for _, ep := range derive.EntryPoints() {
		fmt.Fprintf(w, "%s\t%s\t%s\n", ep.Name, ep.Family, describe(ep, conv))
	}
	return w.Flush()
}

func (g *Globals) out() io.Writer {
	if g.stdout != nil {
		return g.stdout
	}
	return os.Stdout
}

// describe summarizes what an entry point generates for a type T
func describe(ep derive.EntryPoint, conv models.Conventions) string {
	switch ep.Family {
	case models.FamilyOperator:
		r, _ := recipes.LookupOperator(ep.Name)
		return fmt.Sprintf("T.%s (%s) from %s (%s)", r.Name, r.Token, conv.AssignMethod(r.Name), r.AssignToken)
	case models.FamilyConversion, models.FamilyEquality:
		family := strings.TrimPrefix(strings.TrimPrefix(ep.Name, "From"), "Eq")
		r, _ := recipes.LookupWidening(family)
		var names []string
		for _, src := range r.Sources {
			if ep.Family == models.FamilyConversion {
				names = append(names, conv.ConstructorFunc("T", src.String()))
			} else {
				names = append(names, "T."+conv.EqualMethod(src.String()))
			}
		}
		hub := conv.ConstructorFunc("T", r.Hub.String())
		if ep.Family == models.FamilyEquality {
			hub = "T." + conv.EqualMethod(r.Hub.String())
		}
		return fmt.Sprintf("%s via %s", strings.Join(names, ", "), hub)
	case models.FamilyText:
		t := recipes.Text()
		return fmt.Sprintf("%s via %s", conv.ConstructorFunc("T", t.SourceName), conv.ConstructorFunc("T", t.HubName))
	}
	return ""
}

// VersionCmd prints the version
type VersionCmd struct{}

func (c *VersionCmd) Run(g *Globals) error {
	fmt.Fprintln(g.out(), "numderive", Version())
	return nil
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run parses args and executes the selected command. Commands report their
// own errors, so only the exit code is returned.
func run(args []string, stdout, stderr io.Writer) int {
	app := CLI{Globals: Globals{stdout: stdout, stderr: stderr}}
	exit := -1

	parser, err := kong.New(&app,
		kong.Name("numderive"),
		kong.Description(description),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
		kong.Exit(func(code int) { exit = code }),
	)
	if err != nil {
		fmt.Fprintf(stderr, "numderive: %v\n", err)
		return 2
	}

	ctx, err := parser.Parse(args)
	if exit >= 0 {
		return exit
	}
	if err != nil {
		parser.Errorf("%s", err)
		return 2
	}

	if err := ctx.Run(&app.Globals); err != nil {
		return 1
	}
	return 0
}
