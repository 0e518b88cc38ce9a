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

// AllocatableRegisters is the fixed order DSATUR colors 0..10 map onto.
var AllocatableRegisters = []string{
	"rcx", "rdx", "rsi", "rdi", "r8", "r9", "r10", "rbx", "r12", "r13", "r14",
}

// ReservedColors are the fixed negative colors the register allocator
// pre-assigns to registers it never reassigns.
var ReservedColors = map[string]int{
	"rax": -1,
	"rsp": -2,
	"rbp": -3,
	"r11": -4,
	"r15": -5,
}

// CallerSaved registers may be clobbered across any callq and so must never
// be assumed live across a call.
var CallerSaved = []string{"rax", "rcx", "rdx", "rsi", "rdi", "r8", "r9", "r10", "r11"}

// CalleeSaved registers must be preserved by the callee; any of them the
// allocator actually writes has to be pushed in the prelude and popped in
// the conclusion.
var CalleeSaved = []string{"rbx", "r12", "r13", "r14", "r15"}

func IsCalleeSaved(name string) bool {
	for _, r := range CalleeSaved {
		if r == name {
			return true
		}
	}
	return false
}
