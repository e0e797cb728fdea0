package symbols

import (
	"fmt"
	"sort"
)

// Table is the read-only lookup the resolvers query during a round
type Table interface {
	// Lookup finds a declaration by qualified name, e.g. "example.com/app/payments.PaymentClient"
	Lookup(qualifiedName string) (*Declaration, bool)
}

// Snapshot is a Table that can also enumerate its contents
type Snapshot interface {
	Table
	Declarations() []*Declaration
	Round() int
}

// MemoryTable is an immutable in-memory snapshot. It is safe for concurrent reads.
type MemoryTable struct {
	round  int
	byName map[string]*Declaration
	order  []*Declaration
}

// Lookup finds a declaration by qualified name
func (t *MemoryTable) Lookup(qualifiedName string) (*Declaration, bool) {
	decl, ok := t.byName[qualifiedName]
	return decl, ok
}

// Declarations returns all declarations sorted by qualified name
func (t *MemoryTable) Declarations() []*Declaration {
	return append([]*Declaration(nil), t.order...)
}

// Package returns the declarations of one import path
func (t *MemoryTable) Package(importPath string) []*Declaration {
	var out []*Declaration
	for _, decl := range t.order {
		if decl.Package == importPath {
			out = append(out, decl)
		}
	}
	return out
}

// Round returns the round the snapshot was built for
func (t *MemoryTable) Round() int { return t.round }

// Len returns the number of declarations
func (t *MemoryTable) Len() int { return len(t.order) }

// Builder assembles a MemoryTable
type Builder struct {
	round  int
	byName map[string]*Declaration
}

// NewBuilder creates a builder for the given round
func NewBuilder(round int) *Builder {
	return &Builder{
		round:  round,
		byName: make(map[string]*Declaration),
	}
}

// Add registers declarations. A qualified name may only be added once.
func (b *Builder) Add(decls ...*Declaration) error {
	for _, decl := range decls {
		if decl == nil || decl.Name == "" {
			return fmt.Errorf("declaration without a name")
		}
		key := decl.QualifiedName()
		if existing, ok := b.byName[key]; ok {
			return fmt.Errorf("duplicate declaration %s (%s:%d and %s:%d)",
				key, existing.File, existing.Line, decl.File, decl.Line)
		}
		b.byName[key] = decl
	}
	return nil
}

// Build freezes the builder's contents into a MemoryTable
func (b *Builder) Build() *MemoryTable {
	table := &MemoryTable{
		round:  b.round,
		byName: make(map[string]*Declaration, len(b.byName)),
		order:  make([]*Declaration, 0, len(b.byName)),
	}
	for key, decl := range b.byName {
		table.byName[key] = decl
		table.order = append(table.order, decl)
	}
	sort.Slice(table.order, func(i, j int) bool {
		return table.order[i].QualifiedName() < table.order[j].QualifiedName()
	})
	return table
}
