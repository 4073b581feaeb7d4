package codegen

// bind records a new local binding in the current function scope,
// replacing any prior binding of the same name (shadowing, spec §3).
func (g *Generator) bind(name string, b *binding) {
	g.vars[name] = b
}

// lookup returns the binding for name in the current function scope, or
// nil if name is not bound — the caller-visible shape of spec §7's
// "unknown identifier" soft error.
func (g *Generator) lookup(name string) *binding {
	return g.vars[name]
}

// snapshotVars returns a shallow copy of the current variable table, used
// by lowerBlock to detect which bindings a block introduced (and must
// therefore clean up on a non-terminating exit, spec §4.5 "block
// cleanup").
func (g *Generator) snapshotVars() map[string]*binding {
	cp := make(map[string]*binding, len(g.vars))
	for k, v := range g.vars {
		cp[k] = v
	}
	return cp
}

func (g *Generator) pushLoop(continueLabel, breakLabel string) {
	g.loopStack = append(g.loopStack, loopLabels{continueLabel: continueLabel, breakLabel: breakLabel})
}

func (g *Generator) popLoop() {
	g.loopStack = g.loopStack[:len(g.loopStack)-1]
}

func (g *Generator) currentLoop() (loopLabels, bool) {
	if len(g.loopStack) == 0 {
		return loopLabels{}, false
	}
	return g.loopStack[len(g.loopStack)-1], true
}
