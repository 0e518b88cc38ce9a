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
	"strings"
	"testing"
)

func TestCompileToAsmEmitsMainAndConclusion(t *testing.T) {
	asm, err := CompileToAsm(`print(1 + 1)`, nil)
	if err != nil {
		t.Fatalf("CompileToAsm: %v", err)
	}
	if !strings.Contains(asm, "main:") {
		t.Errorf("expected a main label, got:\n%s", asm)
	}
	if !strings.Contains(asm, "conclusion:") {
		t.Errorf("expected a conclusion label, got:\n%s", asm)
	}
	if !strings.Contains(asm, "callq print_int") {
		t.Errorf("expected a call to print_int, got:\n%s", asm)
	}
}

func TestCompileToAsmRejectsIllTypedSource(t *testing.T) {
	_, err := CompileToAsm(`x = 1 + true`, nil)
	if err == nil {
		t.Fatalf("expected a type error for mixing int and bool in +")
	}
}

func TestCompileToAsmRestrictedToPartialPipelineFailsCleanly(t *testing.T) {
	_, err := CompileToAsm(`print(1 + 1)`, []string{"shrink"})
	if err == nil {
		t.Fatalf("expected an error when the pipeline is restricted short of x86 emission")
	}
}
