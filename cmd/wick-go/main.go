package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"wick-go/packages/compiler/src/config"
)

var log = commonlog.GetLogger("wick.cmd")

// errFailed reports that diagnostics were already printed.
var errFailed = errors.New("compilation failed")

func usage() {
	fmt.Println(`wick-go - component compiler
Usage: wick-go <command> [flags] [dir]

Commands:
  compile [dir]   Compile every .wick component of the project
  serve [dir]     Compile, serve the modules and reload on change
  help            Show help

Flags:
  -v <level>      Log verbosity: 1 info, 2 debug`)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	cmd := os.Args[1]
	var run func(p *config.Project) error
	switch cmd {
	case "help", "-h", "--help":
		usage()
		return
	case "compile":
		run = runCompile
	case "serve":
		run = runServe
	default:
		usage()
		os.Exit(1)
	}

	flags := flag.NewFlagSet(cmd, flag.ExitOnError)
	verbose := flags.Int("v", 0, "log verbosity")
	flags.Parse(os.Args[2:])
	commonlog.Configure(*verbose, nil)

	dir := "."
	if flags.NArg() > 0 {
		dir = flags.Arg(0)
	}
	p, err := loadProject(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s error: %v\n", cmd, err)
		os.Exit(1)
	}
	if err := run(p); err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintf(os.Stderr, "%s error: %v\n", cmd, err)
		}
		os.Exit(1)
	}
}

// loadProject finds wick.toml in dir or its parents, falling back to the
// defaults rooted at dir.
func loadProject(dir string) (*config.Project, error) {
	p, err := config.FindAndLoadProject(dir)
	if err != nil {
		return nil, err
	}
	if p != nil {
		log.Debugf("using project %s", p.Dir)
		return p, nil
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	return config.DefaultProject(abs), nil
}
