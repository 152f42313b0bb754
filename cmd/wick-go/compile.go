package main

import (
	"context"
	"fmt"
	"os"

	compiler "wick-go/packages/compiler/src"
	"wick-go/packages/compiler/src/config"
)

func runCompile(p *config.Project) error {
	c, err := compiler.NewCompiler(p)
	if err != nil {
		return err
	}
	defer c.Close()

	artifacts, err := compileProject(context.Background(), c)
	if err != nil {
		return err
	}
	if err := c.Write(artifacts); err != nil {
		return err
	}
	fmt.Printf("Compiled %d component(s) into %s\n", len(artifacts), p.OutputDir())
	if failed := compiler.Failed(artifacts); len(failed) > 0 {
		fmt.Fprintf(os.Stderr, "%d component(s) failed\n", len(failed))
		return errFailed
	}
	return nil
}

// compileProject discovers and compiles the components and prints their
// diagnostics.
func compileProject(ctx context.Context, c *compiler.Compiler) ([]*compiler.Artifact, error) {
	files, err := c.Discover()
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		log.Warningf("no components found under %v", c.Project.SourceDirPaths())
	}
	artifacts, err := c.Compile(ctx, files)
	if err != nil {
		return nil, err
	}
	for _, a := range artifacts {
		for _, e := range a.Component.Errors {
			fmt.Fprintf(os.Stderr, "%s: %s\n", a.Name, e)
		}
		if a.Component.Cached {
			log.Debugf("%s: from cache", a.Name)
		}
	}
	return artifacts, nil
}
