package internal

import (
	"github.com/xiaobogaga/jackc/vm"
)

type SymbolKind int

const (
	StaticKind SymbolKind = iota
	FieldKind
	ArgumentKind
	LocalKind
)

func (k SymbolKind) String() string {
	switch k {
	case StaticKind:
		return "static"
	case FieldKind:
		return "field"
	case ArgumentKind:
		return "argument"
	case LocalKind:
		return "local"
	}
	return "unknown"
}

// Segment is the vm memory segment a variable of this kind lives in.
func (k SymbolKind) Segment() vm.Segment {
	switch k {
	case StaticKind:
		return vm.StaticSegment
	case FieldKind:
		return vm.ThisSegment
	case ArgumentKind:
		return vm.ArgumentSegment
	default:
		return vm.LocalSegment
	}
}

type Symbol struct {
	Name  string
	Type  string // int, char, boolean or a class name.
	Kind  SymbolKind
	Index int
}

// SymbolTable is one scope. Indices are handed out by a running counter per kind, so
// the index of a symbol is the number of symbols of its kind defined before it.
type SymbolTable struct {
	symbols []Symbol
	byName  map[string]int // position in symbols of the latest definition.
	counts  map[SymbolKind]int
}

func NewSymbolTable() *SymbolTable {
	table := &SymbolTable{}
	table.Reset()
	return table
}

// Define adds a symbol. Redefining a name is not an error, lookups see the latest one.
func (table *SymbolTable) Define(name, typ string, kind SymbolKind) Symbol {
	symbol := Symbol{Name: name, Type: typ, Kind: kind, Index: table.counts[kind]}
	table.counts[kind]++
	table.byName[name] = len(table.symbols)
	table.symbols = append(table.symbols, symbol)
	return symbol
}

func (table *SymbolTable) VarCount(kind SymbolKind) int {
	return table.counts[kind]
}

func (table *SymbolTable) Lookup(name string) (Symbol, bool) {
	i, ok := table.byName[name]
	if !ok {
		return Symbol{}, false
	}
	return table.symbols[i], true
}

func (table *SymbolTable) KindOf(name string) (SymbolKind, bool) {
	symbol, ok := table.Lookup(name)
	return symbol.Kind, ok
}

func (table *SymbolTable) TypeOf(name string) (string, bool) {
	symbol, ok := table.Lookup(name)
	return symbol.Type, ok
}

func (table *SymbolTable) IndexOf(name string) (int, bool) {
	symbol, ok := table.Lookup(name)
	return symbol.Index, ok
}

// Symbols returns the symbols in definition order.
func (table *SymbolTable) Symbols() []Symbol {
	return append([]Symbol(nil), table.symbols...)
}

// Reset drops every symbol and zeroes the counters.
func (table *SymbolTable) Reset() {
	table.symbols = nil
	table.byName = map[string]int{}
	table.counts = map[SymbolKind]int{}
}

type ScopeLevel int

const (
	Unresolved ScopeLevel = iota
	SubroutineScope
	ClassScope
)

// Resolution is the outcome of looking a name up. Symbol is only meaningful when
// Scope is not Unresolved.
type Resolution struct {
	Scope  ScopeLevel
	Symbol Symbol
}

func (r Resolution) Resolved() bool {
	return r.Scope != Unresolved
}

// Scopes pairs the class scope, alive for a whole class, with the subroutine scope
// which is reset for every subroutine.
type Scopes struct {
	Class      *SymbolTable
	Subroutine *SymbolTable
}

func NewScopes() *Scopes {
	return &Scopes{Class: NewSymbolTable(), Subroutine: NewSymbolTable()}
}

// Resolve looks in the subroutine scope first so locals and arguments shadow fields
// and statics.
func (scopes *Scopes) Resolve(name string) Resolution {
	if symbol, ok := scopes.Subroutine.Lookup(name); ok {
		return Resolution{Scope: SubroutineScope, Symbol: symbol}
	}
	if symbol, ok := scopes.Class.Lookup(name); ok {
		return Resolution{Scope: ClassScope, Symbol: symbol}
	}
	return Resolution{Scope: Unresolved}
}
