// Copyright (c) 2024 The Falcon Contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.
package main

import (
	"corvid/ast"
	"corvid/compile"
	"corvid/compile/interp"
	"fmt"
	"io/ioutil"
	"os"
	"strings"

	shellquote "github.com/kballard/go-shellquote"
)

// config is the CLI's flag surface: <source> [-o out] [-e] [-p pass…],
// parsed by hand off os.Args the way the teacher's main.go reads os.Args
// directly rather than through a flags package.
type config struct {
	source string
	out    string
	exec   bool
	passes []string
}

func parseArgs(args []string) (config, error) {
	var c config
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-o":
			i++
			if i >= len(args) {
				return c, fmt.Errorf("-o requires an output path")
			}
			c.out = args[i]
		case "-e":
			c.exec = true
		case "-p":
			i++
			if i >= len(args) {
				return c, fmt.Errorf("-p requires a pass list")
			}
			names, err := shellquote.Split(args[i])
			if err != nil {
				return c, fmt.Errorf("-p: %w", err)
			}
			for _, n := range names {
				c.passes = append(c.passes, strings.Split(n, ",")...)
			}
		default:
			if c.source != "" {
				return c, fmt.Errorf("unexpected argument %q", args[i])
			}
			c.source = args[i]
		}
	}
	if c.source == "" {
		return c, fmt.Errorf("missing source file")
	}
	return c, nil
}

func main() {
	cfg, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, "usage: corvid <source> [-o out] [-e] [-p pass1,pass2]")
		os.Exit(1)
	}

	if cfg.exec {
		os.Exit(runExec(cfg))
	}
	os.Exit(runCompile(cfg))
}

// runExec reads and type-checks the source, then hands it to the in-IR
// interpreter instead of assembling and linking, letting -e double as a
// quick correctness check without a system assembler on hand.
func runExec(cfg config) (exitCode int) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintln(os.Stderr, r)
			exitCode = 1
		}
	}()

	src, err := ioutil.ReadFile(cfg.source)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	prog := ast.ParseProgram(string(src))
	if err := ast.TypeCheck(prog); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	m := interp.NewMachine(os.Stdin, os.Stdout)
	if err := m.RunProgram(prog); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// runCompile drives the full pipeline down to a linked executable,
// mirroring the teacher's CompileTheWorld entry point.
func runCompile(cfg config) (exitCode int) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintln(os.Stderr, r)
			exitCode = 1
		}
	}()

	binPath, err := compile.CompileFile(cfg.source, cfg.out, cfg.passes)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println(binPath)
	return 0
}
