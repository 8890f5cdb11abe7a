package calculator

import (
	"io"
	"os"
	"sort"

	"github.com/charithe/formula/pkg/parser"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Definitions are the names every formula evaluated by the service may refer to.
type Definitions struct {
	Constants       map[string]float64 `yaml:"constants"`
	StringConstants map[string]string  `yaml:"string_constants"`
	// Variables are defaults; request values override them.
	Variables map[string]float64 `yaml:"variables"`
}

// LoadDefinitions reads definitions from a YAML file.
func LoadDefinitions(path string) (*Definitions, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open definitions")
	}
	defer f.Close()

	return ParseDefinitions(f)
}

func ParseDefinitions(r io.Reader) (*Definitions, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	defs := &Definitions{}
	if err := dec.Decode(defs); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "failed to parse definitions")
	}

	// apply them once to surface invalid names early
	if err := defs.Apply(parser.New(nil)); err != nil {
		return nil, err
	}

	return defs, nil
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Apply defines every constant and variable on p in name order. A nil receiver defines nothing.
func (d *Definitions) Apply(p *parser.Parser) error {
	if d == nil {
		return nil
	}

	for _, name := range sortedKeys(d.Constants) {
		if err := p.DefineConst(name, d.Constants[name]); err != nil {
			return errors.Wrapf(err, "invalid constant %q", name)
		}
	}

	strNames := make([]string, 0, len(d.StringConstants))
	for name := range d.StringConstants {
		strNames = append(strNames, name)
	}
	sort.Strings(strNames)

	for _, name := range strNames {
		if err := p.DefineStrConst(name, d.StringConstants[name]); err != nil {
			return errors.Wrapf(err, "invalid string constant %q", name)
		}
	}

	for _, name := range sortedKeys(d.Variables) {
		if _, err := p.NewVar(name, d.Variables[name]); err != nil {
			return errors.Wrapf(err, "invalid variable %q", name)
		}
	}

	return nil
}
