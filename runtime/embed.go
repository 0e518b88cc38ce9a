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

// Package runtime carries the C runtime shim (read_int, print_int,
// free_ptr/fromspace_end/collect) linked alongside every compiled program.
// It is embedded into the compiler binary so the driver never has to guess
// a lib/ directory's location relative to the executable.
package runtime

import (
	"embed"
	"io/ioutil"
	"path/filepath"
)

//go:embed runtime.c runtime.h
var sources embed.FS

// WriteSourcesTo copies the embedded runtime sources into dir, which the
// driver then hands to gcc alongside the emitted assembly.
func WriteSourcesTo(dir string) error {
	for _, name := range []string{"runtime.c", "runtime.h"} {
		data, err := sources.ReadFile(name)
		if err != nil {
			return err
		}
		if err := ioutil.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
			return err
		}
	}
	return nil
}
