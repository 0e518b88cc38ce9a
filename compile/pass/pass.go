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

// Package pass implements the pipeline discipline that drives the IR
// ladder: an ordered list of transforms threading the program forward, and
// a set of named analyses computed lazily and cached against whichever
// program is current.
package pass

import "fmt"

// ConfigError marks a failure to even start running the pipeline: an
// unregistered analysis name, an empty transform list, or a missing target
// language tag. These are the only errors the manager itself raises; every
// other failure belongs to an individual pass.
type ConfigError struct {
	msg string
}

func (e *ConfigError) Error() string { return e.msg }

func configError(format string, args ...interface{}) *ConfigError {
	return &ConfigError{msg: fmt.Sprintf(format, args...)}
}

// Namer is an injected fresh-name source, held by the Manager rather than a
// package-level counter, so that re-entrant or parallel compilations can
// each carry an independent generator instead of contending for shared
// global state.
type Namer struct {
	counter int
}

func NewNamer() *Namer { return &Namer{} }

// Fresh returns a name unique within this Namer's lifetime, of the form
// "<prefix><n>". Names are unique within a program after RCO, which only
// holds if every fresh name in a single compilation is drawn from the same
// Namer.
func (n *Namer) Fresh(prefix string) string {
	n.counter++
	return fmt.Sprintf("%s%d", prefix, n.counter)
}

// Transform is an impure pipeline stage: it replaces the program wholesale.
type Transform interface {
	Name() string
	SourceLang() string
	TargetLang() string
	Run(prog interface{}, m *Manager) interface{}
}

// Analysis is a pure pipeline stage: it reads the current program and
// produces a result without mutating anything. Results are cached by name
// against the program that produced them.
type Analysis interface {
	Name() string
	Run(prog interface{}, m *Manager) interface{}
}

// Manager owns the unique mutable handle to the program as it threads
// through the transform list, and the analysis result cache.
type Manager struct {
	transforms []Transform
	analyses   map[string]Analysis
	cache      map[string]interface{}
	selected   map[string]bool // non-nil: restrict Run to these transform names (-p)
	current    interface{}

	Namer *Namer
	Debug bool

	Source string
	Target string
}

func NewManager(transforms []Transform, analyses []Analysis, namer *Namer) *Manager {
	m := &Manager{
		transforms: transforms,
		analyses:   make(map[string]Analysis),
		cache:      make(map[string]interface{}),
		Namer:      namer,
	}
	for _, a := range analyses {
		m.analyses[a.Name()] = a
	}
	if len(transforms) > 0 {
		m.Source = transforms[0].SourceLang()
		m.Target = transforms[len(transforms)-1].TargetLang()
	}
	return m
}

// RestrictTo limits Run to the named subset of transforms, preserving
// pipeline order; this backs the CLI's "-p pass..." flag.
func (m *Manager) RestrictTo(names []string) {
	m.selected = make(map[string]bool, len(names))
	for _, n := range names {
		m.selected[n] = true
	}
}

// Invalidate drops the named cached analysis results. Transforms that know
// precisely what they disturb may call this directly; Run always clears
// the entire cache afterward regardless, which is correct but conservative
// per the pass-manager's default invalidation policy.
func (m *Manager) Invalidate(names []string) {
	for _, n := range names {
		delete(m.cache, n)
	}
}

// GetResult returns the named analysis's result against the current
// program, computing and caching it on first request.
func (m *Manager) GetResult(name string) interface{} {
	if v, ok := m.cache[name]; ok {
		return v
	}
	return m.RunAnalysis(name)
}

// RunAnalysis forces recomputation of the named analysis, overwriting any
// cached result.
func (m *Manager) RunAnalysis(name string) interface{} {
	a, ok := m.analyses[name]
	if !ok {
		panic(configError("unregistered analysis %q", name))
	}
	v := a.Run(m.current, m)
	m.cache[name] = v
	return v
}

// Run applies each transform in order, threading the program forward, and
// returns the final program. The cache is cleared after every transform.
func (m *Manager) Run(prog interface{}) interface{} {
	if len(m.transforms) == 0 {
		panic(configError("empty transform list"))
	}
	if m.Target == "" {
		panic(configError("missing final target language tag"))
	}
	m.current = prog
	for _, t := range m.transforms {
		if m.selected != nil && !m.selected[t.Name()] {
			continue
		}
		m.current = t.Run(m.current, m)
		if m.Debug {
			fmt.Printf("== after %s (%s -> %s) ==\n%v\n", t.Name(), t.SourceLang(), t.TargetLang(), m.current)
		}
		m.cache = make(map[string]interface{})
	}
	return m.current
}

// Current returns the program as of the last transform that ran, useful
// for an analysis invoked outside of Run (e.g. from a test harness probing
// a single pass boundary).
func (m *Manager) Current() interface{} { return m.current }

// SetCurrent lets a test harness seed the manager at an arbitrary pipeline
// stage without replaying every earlier transform.
func (m *Manager) SetCurrent(prog interface{}) { m.current = prog }
