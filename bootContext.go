package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Lafeng/weakdh/crypto"
	ex "github.com/Lafeng/weakdh/exception"
	log "github.com/Lafeng/weakdh/glog"
	"github.com/Lafeng/weakdh/groups"
	"github.com/Lafeng/weakdh/kex"
	"github.com/Lafeng/weakdh/scan"
	"github.com/urfave/cli/v2"
)

type bootContext struct {
	configFile   string
	commonGroups string
	moduli       []string
	color        string
	logdir       string
	vFlag        int
	workers      int
	out          io.Writer
	config       *scan.Config
	registry     *groups.Registry
	primality    crypto.Primality
}

// global before handler
func (ctx *bootContext) initialize(c *cli.Context) error {
	ex.DEBUG = ctx.vFlag >= log.LV_ERR_STACK
	ctx.moduli = c.StringSlice("moduli")
	log.SetLogOutput(ctx.logdir)
	log.SetLogVerbose(ctx.vFlag)
	return nil
}

// initConfig merges the config file and environment with the command line.
func (ctx *bootContext) initConfig() (err error) {
	ctx.config, err = scan.LoadConfig(ctx.configFile)
	if err != nil {
		return err
	}
	cs := &ctx.config.Scan
	if ctx.commonGroups != "" {
		cs.CommonGroups = ctx.commonGroups
	}
	if len(ctx.moduli) > 0 {
		cs.Moduli = strings.Join(ctx.moduli, ",")
	}
	if ctx.color != "" {
		cs.Color = ctx.color
	}
	if ctx.workers >= 0 {
		cs.Workers = ctx.workers
	}
	// prefer command line v option
	if ctx.vFlag < 0 {
		log.SetLogVerbose(cs.Verbose)
		ex.DEBUG = cs.Verbose >= log.LV_ERR_STACK
	}
	if log.V(log.LV_CONFIG) {
		if f := ctx.config.File(); f != "" {
			log.Infoln("Config loaded from", f)
		} else {
			log.Infoln("No config file, using defaults")
		}
	}
	return nil
}

// initRegistry loads the common groups, then any moduli files.
func (ctx *bootContext) initRegistry() error {
	path := ctx.config.CommonGroupsPath()
	common, err := groups.Load(path)
	if err != nil {
		return err
	}
	sets := [][]groups.Entry{common}
	for _, f := range ctx.config.ModuliFiles() {
		entries, err := groups.LoadModuli(f)
		if err != nil {
			return err
		}
		sets = append(sets, entries)
	}
	ctx.registry = groups.New(sets...)
	return nil
}

func (ctx *bootContext) newRunner(out io.Writer) (*scan.Runner, error) {
	conf := ctx.config
	classifier, err := crypto.NewClassifier(conf.ClassifierThresholds())
	if err != nil {
		return nil, err
	}
	var primality crypto.Primality = crypto.MillerRabin{Rounds: conf.Primality.Rounds}
	if conf.Primality.CacheSize > 0 {
		primality = crypto.NewCachedPrimality(primality, uint(conf.Primality.CacheSize))
	}
	ctx.primality = primality
	validator := crypto.NewValidator(primality, classifier, ctx.registry)
	session := scan.NewSession(kex.NewScanner(conf.Markers), classifier, validator)
	runner := scan.NewRunner(session, scan.NewPrinter(out, conf.Scan.Color))
	runner.SetWorkers(conf.Scan.Workers)
	return runner, nil
}

// ./weakdh [options] DIRECTORY
func (ctx *bootContext) scanCommandHandler(c *cli.Context) error {
	if c.NArg() != 1 {
		return usageError(c)
	}
	return ctx.runScan(c.Args().Slice()...)
}

func (ctx *bootContext) runScan(dirs ...string) error {
	// fail on a bad argument before touching the reference data
	for _, d := range dirs {
		if !scan.IsDir(d) {
			return cli.Exit(scan.NOT_A_DIRECTORY.Apply(d), 1)
		}
	}
	if err := ctx.initConfig(); err != nil {
		return cli.Exit(err, 1)
	}
	if err := ctx.initRegistry(); err != nil {
		return cli.Exit(err, 1)
	}
	runner, err := ctx.newRunner(ctx.out)
	if err != nil {
		return cli.Exit(err, 1)
	}
	if err = runner.ScanDirs(dirs...); err != nil {
		return cli.Exit(err, 1)
	}
	if cp, y := ctx.primality.(*crypto.CachedPrimality); y && bool(log.V(log.LV_PRIME_CACHE)) {
		hits, misses := cp.Stats()
		log.Infof("primality cache hits=%d misses=%d", hits, misses)
	}
	return nil
}

// ./weakdh init-config [-o FILE]
func (ctx *bootContext) initConfigCommandHandler(c *cli.Context) error {
	if c.NArg() > 0 {
		return usageError(c)
	}
	output := c.String("output")
	if output != "" && !strings.Contains(output, ".") {
		output += ".ini"
	}
	if err := scan.CreateConfigTemplate(output); err != nil {
		return cli.Exit(ex.Spawn(&err, "Cannot write config template %s", output), 1)
	}
	return nil
}

// ./weakdh groups
func (ctx *bootContext) groupsCommandHandler(c *cli.Context) error {
	if c.NArg() > 0 {
		return usageError(c)
	}
	if err := ctx.initConfig(); err != nil {
		return cli.Exit(err, 1)
	}
	if err := ctx.initRegistry(); err != nil {
		return cli.Exit(err, 1)
	}
	ctx.listGroups(ctx.out)
	return nil
}

func (ctx *bootContext) listGroups(w io.Writer) {
	for _, e := range ctx.registry.Entries() {
		safe := "not safe"
		if e.IsSafePrime {
			safe = "safe"
		}
		fmt.Fprintf(w, "%5d  %-8s  %s\n", e.NumBits, safe, e.Name)
	}
	fmt.Fprintf(w, "%d groups\n", ctx.registry.Len())
}

func usageError(c *cli.Context) error {
	fmt.Fprintf(os.Stderr, "Syntax: %s [options] DIRECTORY\n\n", c.App.Name)
	cli.ShowAppHelp(c)
	return cli.Exit("", 1)
}

func fatalError(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		log.Flush()
		os.Exit(1)
	}
}
