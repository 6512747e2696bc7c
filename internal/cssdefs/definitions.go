package cssdefs

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/iancoleman/strcase"

	"github.com/kestrelweb/kestrel/internal/cssparser"
)

// properties.json is the property table spec.md 6 describes: a JSON array of
// {name, syntax, inherited, initial, computed}. values.json is the second
// file of named syntax fragments {name, syntax} the property grammars
// reference via <name>.
//
//go:embed properties.json
var rawProperties []byte

//go:embed values.json
var rawValues []byte

type rawProperty struct {
	Name      string   `json:"name"`
	Syntax    string   `json:"syntax"`
	Inherited bool     `json:"inherited"`
	Initial   string   `json:"initial"`
	Computed  []string `json:"computed,omitempty"`
}

type rawSyntax struct {
	Name   string `json:"name"`
	Syntax string `json:"syntax"`
}

// PropertyDefinition is one resolved property: its compiled grammar, the
// inheritance flag, the initial value, and -- for shorthands -- the longhand
// properties it expands into plus the expansion strategy indexed at load.
//
// GoName is not in the Rust source; it bridges CSS's hyphen-case names and
// Go's exported-identifier case via iancoleman/strcase, the same role
// golang.org/x/net/html/atom plays for HTML tag names in internal/dom.
type PropertyDefinition struct {
	Name      string
	GoName    string
	Inherited bool
	Initial   string
	Syntax    *SyntaxTree
	Longhands []string

	strategy expandStrategy
	resolved bool
}

// IsShorthand reports whether the property expands into longhands, mirroring
// PropertyDefinition::is_shorthand (computed.len() > 1) in the Rust source.
func (p *PropertyDefinition) IsShorthand() bool { return len(p.Longhands) > 1 }

// Matches reports whether a declared value list satisfies this property's
// grammar.
func (p *PropertyDefinition) Matches(values []cssparser.CssValue) bool {
	return p.Syntax.Matches(values)
}

// syntaxDefinition is one named fragment from values.json, resolved lazily
// the first time a property grammar references it.
type syntaxDefinition struct {
	tree     *SyntaxTree
	resolved bool
}

// Definitions is the resolved property table, grounded on CssDefinitions in
// property_definitions.rs: properties and named syntax fragments loaded from
// the two embedded files, with every <name> and <'property'> reference
// replaced in a single topological pass at load time.
type Definitions struct {
	byName map[string]*PropertyDefinition
	syntax map[string]*syntaxDefinition
}

var (
	once    sync.Once
	shared  *Definitions
	loadErr error
)

// Load parses the embedded definition files. It is memoized: repeated calls
// return the same *Definitions built from the same embedded bytes.
func Load() (*Definitions, error) {
	once.Do(func() {
		shared, loadErr = build(rawProperties, rawValues)
	})
	return shared, loadErr
}

func build(propData, valueData []byte) (*Definitions, error) {
	var rawSyn []rawSyntax
	if err := json.Unmarshal(valueData, &rawSyn); err != nil {
		return nil, err
	}
	d := &Definitions{
		byName: make(map[string]*PropertyDefinition),
		syntax: make(map[string]*syntaxDefinition, len(rawSyn)),
	}
	for _, s := range rawSyn {
		tree, err := CompileSyntax(s.Syntax)
		if err != nil {
			return nil, fmt.Errorf("cssdefs: syntax fragment %q: %w", s.Name, err)
		}
		d.syntax[s.Name] = &syntaxDefinition{tree: tree}
	}

	var rawProps []rawProperty
	if err := json.Unmarshal(propData, &rawProps); err != nil {
		return nil, err
	}
	for _, r := range rawProps {
		tree, err := CompileSyntax(r.Syntax)
		if err != nil {
			return nil, fmt.Errorf("cssdefs: property %q: %w", r.Name, err)
		}
		def := &PropertyDefinition{
			Name:      r.Name,
			GoName:    strcase.ToCamel(r.Name),
			Inherited: r.Inherited,
			Initial:   r.Initial,
			Syntax:    tree,
			Longhands: r.Computed,
		}
		def.strategy = deriveStrategy(def)
		d.byName[r.Name] = def
	}

	for _, name := range d.Names() {
		d.resolveProperty(d.byName[name])
	}
	return d, nil
}

// resolveProperty replaces every reference in the property's grammar, depth
// first. The resolved flag is set before recursing so a property whose
// grammar reaches back to itself terminates (spec.md 4.4: cycles terminate
// because a definition references its own name only as a Builtin).
func (d *Definitions) resolveProperty(def *PropertyDefinition) {
	if def.resolved {
		return
	}
	def.resolved = true
	def.Syntax.Components = d.resolveComponents(def.Syntax.Components, def.Name)
}

func (d *Definitions) resolveComponents(comps []SyntaxComponent, propName string) []SyntaxComponent {
	out := make([]SyntaxComponent, len(comps))
	for i, c := range comps {
		out[i] = d.resolveComponent(c, propName)
	}
	return out
}

func (d *Definitions) resolveComponent(c SyntaxComponent, propName string) SyntaxComponent {
	switch c.Kind {
	case CompDefinition:
		// First tier: a named fragment from values.json.
		if sd, ok := d.syntax[c.Text]; ok {
			if !sd.resolved {
				sd.resolved = true
				sd.tree.Components = d.resolveComponents(sd.tree.Components, propName)
			}
			if len(sd.tree.Components) == 1 {
				inner := sd.tree.Components[0]
				if c.Mult.Kind != MulOnce {
					inner.Mult = c.Mult
				}
				return inner
			}
			return SyntaxComponent{Kind: CompGroup, Combinator: Juxtaposition, Children: sd.tree.Components, Mult: c.Mult}
		}
		// Second tier: a builtin primitive grammar.
		if IsBuiltinDatatype(c.Text) {
			return SyntaxComponent{Kind: CompBuiltin, Text: c.Text, Mult: c.Mult}
		}
		// Unknown datatype: left unresolved, matches nothing (spec.md 7).
		return c

	case CompPropertyRef:
		if ref, ok := d.byName[c.Text]; ok && c.Text != propName {
			d.resolveProperty(ref)
			if len(ref.Syntax.Components) == 1 {
				inner := ref.Syntax.Components[0]
				if c.Mult.Kind != MulOnce {
					inner.Mult = c.Mult
				}
				return inner
			}
			return SyntaxComponent{Kind: CompGroup, Combinator: Juxtaposition, Children: ref.Syntax.Components, Mult: c.Mult}
		}
		return c

	case CompGroup, CompFunction:
		c.Children = d.resolveComponents(c.Children, propName)
		return c

	default:
		return c
	}
}

// Find looks a property up by its hyphen-case CSS name, mirroring
// CssDefinitions::find_property.
func (d *Definitions) Find(name string) (*PropertyDefinition, bool) {
	p, ok := d.byName[name]
	return p, ok
}

func (d *Definitions) Len() int { return len(d.byName) }

// Names returns every property name the table defines, sorted, for callers
// (internal/style's inheritance pass) that need to walk the full property
// vocabulary rather than look up one name at a time.
func (d *Definitions) Names() []string {
	names := make([]string, 0, len(d.byName))
	for name := range d.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
