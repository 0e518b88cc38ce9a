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
package compile

import (
	"corvid/ast"
	"corvid/compile/interp"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/tools/txtar"
)

// scenario is one testdata/scenarios/*.txtar archive: a source program,
// optional input_int() feed, and the stdout the end-to-end scenario must
// produce. Bundling all three per fixture avoids scattering sibling
// .expected files for every case.
type scenario struct {
	source string
	stdin  string
	stdout string
}

func loadScenario(t *testing.T, path string) scenario {
	t.Helper()
	ar, err := txtar.ParseFile(path)
	if err != nil {
		t.Fatalf("parsing %s: %v", path, err)
	}
	var s scenario
	for _, f := range ar.Files {
		switch f.Name {
		case "source":
			s.source = string(f.Data)
		case "stdin":
			s.stdin = string(f.Data)
		case "stdout":
			s.stdout = string(f.Data)
		}
	}
	if s.source == "" {
		t.Fatalf("%s: missing source section", path)
	}
	return s
}

func TestScenarios(t *testing.T) {
	paths, err := filepath.Glob("testdata/scenarios/*.txtar")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(paths) == 0 {
		t.Fatalf("no scenario fixtures found")
	}
	for _, path := range paths {
		path := path
		t.Run(filepath.Base(path), func(t *testing.T) {
			s := loadScenario(t, path)

			prog := ast.ParseProgram(s.source)
			if err := ast.TypeCheck(prog); err != nil {
				t.Fatalf("type check: %v", err)
			}
			var out strings.Builder
			m := interp.NewMachine(strings.NewReader(s.stdin), &out)
			if err := m.RunProgram(prog); err != nil {
				t.Fatalf("interpretation: %v", err)
			}
			if got := out.String(); got != s.stdout {
				t.Errorf("interpreted stdout: got %q, want %q", got, s.stdout)
			}

			asm, err := CompileToAsm(s.source, nil)
			if err != nil {
				t.Fatalf("CompileToAsm: %v", err)
			}
			if !strings.Contains(asm, "main:") {
				t.Errorf("emitted assembly missing main label:\n%s", asm)
			}
			if !strings.Contains(asm, "retq") {
				t.Errorf("emitted assembly missing retq:\n%s", asm)
			}
		})
	}
}
