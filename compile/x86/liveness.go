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
package x86

import (
	"corvid/compile/cfg"
	"corvid/compile/pass"
	"corvid/utils"
)

// LivenessResult is keyed by instruction identity (every Instruction is a
// distinct pointer, even two textually identical ones), since an
// instruction can recur at several program points with different
// live-after sets.
type LivenessResult struct {
	LiveAfter  map[Instruction]*utils.Set[string]
	LiveBefore map[string]*utils.Set[string] // live_before(block), by label
}

// LivenessAnalysis computes live-after sets by iterating blocks in
// Program.Blocks order (explicate-control's mint order, start last) until
// the per-block live-before sets reach a fixpoint. Explicate-control mints
// every jump target before the block that jumps to it, except a loop
// header reached by its body's back edge, so each block's successors are
// visited before it and acyclic programs settle in one sweep; loops simply
// take the extra rounds the fixpoint loop already accounts for.
type LivenessAnalysis struct{}

func (LivenessAnalysis) Name() string { return "liveness" }

func (LivenessAnalysis) Run(prog interface{}, m *pass.Manager) interface{} {
	p := prog.(*Program)
	return computeLiveness(p)
}

func computeLiveness(p *Program) *LivenessResult {
	successors := make(map[string][]string, len(p.Blocks))
	liveBefore := make(map[string]*utils.Set[string], len(p.Blocks))
	for _, label := range p.Blocks {
		successors[label] = blockSuccessors(p.Instrs[label])
		liveBefore[label] = utils.NewSet[string]()
	}
	liveAfter := make(map[Instruction]*utils.Set[string])

	for changed := true; changed; {
		changed = false
		for i := 0; i < len(p.Blocks); i++ {
			label := p.Blocks[i]
			instrs := p.Instrs[label]

			cur := utils.NewSet[string]()
			for _, succ := range successors[label] {
				liveBefore[succ].ForEach(func(s string) { cur.Add(s) })
			}

			for k := len(instrs) - 1; k >= 0; k-- {
				ins := instrs[k]
				liveAfter[ins] = cloneSet(cur)
				read, write := readWrite(ins)
				for _, w := range write {
					cur.Remove(w)
				}
				for _, r := range read {
					cur.Add(r)
				}
			}

			if !setEquals(cur, liveBefore[label]) {
				liveBefore[label] = cur
				changed = true
			}
		}
	}
	return &LivenessResult{LiveAfter: liveAfter, LiveBefore: liveBefore}
}

// blockSuccessors implements the CFG-extraction pattern: a trailing jmp has
// one successor; a trailing cmpq/j<cc>/jmp triple has two; anything else
// (a retq, or a jmp conclusion with nothing past it) has none.
func blockSuccessors(instrs []Instruction) []string {
	n := len(instrs)
	if n == 0 {
		return nil
	}
	if jg, ok := instrs[n-1].(*Jump); ok {
		if jg.Label == cfg.ConclusionLabel {
			return nil
		}
		if n >= 2 {
			if jif, ok := instrs[n-2].(*JumpIf); ok {
				return []string{jif.Label, jg.Label}
			}
		}
		return []string{jg.Label}
	}
	return nil
}

func locationsOf(o Operand) []string {
	switch v := o.(type) {
	case Var:
		return []string{v.Name}
	case Reg:
		return []string{v.Name}
	case Deref:
		return []string{v.Base}
	default:
		return nil
	}
}

func locationName(o Operand) (string, bool) {
	switch v := o.(type) {
	case Var:
		return v.Name, true
	case Reg:
		return v.Name, true
	}
	return "", false
}

// readWrite implements spec.md's read_set/write_set table, generalized to
// cover the memory operands tuple support introduces: a Deref operand
// reads its base register as an address but is never itself a write
// target, since a store to heap memory is not a tracked location.
func readWrite(i Instruction) (read, write []string) {
	switch ins := i.(type) {
	case *Instr:
		switch ins.Op {
		case "cmpq":
			return append(append([]string{}, locationsOf(ins.Args[0])...), locationsOf(ins.Args[1])...), nil
		case "negq":
			return locationsOf(ins.Args[0]), writableOf(ins.Args[0])
		case "pushq":
			return locationsOf(ins.Args[0]), nil
		case "popq":
			return nil, writableOf(ins.Args[0])
		default:
			if len(ins.Args) == 1 {
				// set<cc> %al: writes only, reads the flags (not a location).
				return nil, writableOf(ins.Args[0])
			}
			// Binary form: addq/subq/xorq/movq/movzbq a, b. Reads a; if b is a
			// Deref the store address's base register is also read. Writes b
			// only when b names a register or variable.
			read = append(read, locationsOf(ins.Args[0])...)
			if _, ok := ins.Args[1].(Deref); ok {
				read = append(read, locationsOf(ins.Args[1])...)
			}
			return read, writableOf(ins.Args[1])
		}
	case *Callq:
		arity := ins.Arity
		if arity > 1 {
			arity = 1 // the core only ever calls arity <= 1
		}
		if arity == 1 {
			read = []string{"rdi"}
		}
		return read, append([]string{}, CallerSaved...)
	case *Jump, *JumpIf, *Retq:
		return nil, nil
	default:
		return nil, nil
	}
}

func writableOf(o Operand) []string {
	if name, ok := locationName(o); ok {
		return []string{name}
	}
	return nil
}

func cloneSet(s *utils.Set[string]) *utils.Set[string] {
	out := utils.NewSet[string]()
	s.ForEach(func(e string) { out.Add(e) })
	return out
}

func setEquals(a, b *utils.Set[string]) bool {
	if a.Length() != b.Length() {
		return false
	}
	equal := true
	a.ForEach(func(e string) {
		if !b.Contains(e) {
			equal = false
		}
	})
	return equal
}
