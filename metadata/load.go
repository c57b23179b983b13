package metadata

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// snapshot is the on-disk shape of an indices file, kept deliberately flat
// (no nested catalog structs) so the YAML a schema-extraction job would
// produce stays easy to hand-author for fixtures and CLI use alike.
type snapshot struct {
	Columns []struct {
		Schema    string `yaml:"schema"`
		Table     string `yaml:"table"`
		Column    string `yaml:"column"`
		DataType  string `yaml:"data_type"`
		Precision int    `yaml:"precision"`
		Scale     int    `yaml:"scale"`
		Length    int    `yaml:"length"`
		Nullable  bool   `yaml:"nullable"`
	} `yaml:"columns"`
	Synonyms []struct {
		Name   string `yaml:"name"`
		Target string `yaml:"target"`
	} `yaml:"synonyms"`
	PackageRoutines []struct {
		Schema     string   `yaml:"schema"`
		Package    string   `yaml:"package"`
		Name       string   `yaml:"name"`
		ParamNames []string `yaml:"param_names"`
		IsFunction bool     `yaml:"is_function"`
	} `yaml:"package_routines"`
	TypeMethods []struct {
		Schema string `yaml:"schema"`
		Type   string `yaml:"type"`
		Method string `yaml:"method"`
	} `yaml:"type_methods"`
	Sequences []struct {
		Schema string `yaml:"schema"`
		Name   string `yaml:"name"`
	} `yaml:"sequences"`
}

// LoadYAML builds an Indices from a YAML snapshot file, the format the thin
// CLI driver's --indices-path flag expects.
func LoadYAML(path string) (*Indices, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("metadata: read indices file: %w", err)
	}
	var snap snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("metadata: parse indices file: %w", err)
	}

	idx := New()
	for _, c := range snap.Columns {
		idx.RegisterColumn(c.Schema, c.Table, c.Column, ColumnType{
			DataType:  c.DataType,
			Precision: c.Precision,
			Scale:     c.Scale,
			Length:    c.Length,
			Nullable:  c.Nullable,
		})
	}
	for _, s := range snap.Synonyms {
		idx.RegisterSynonym(s.Name, s.Target)
	}
	for _, r := range snap.PackageRoutines {
		idx.RegisterRoutine(r.Schema, r.Package, r.Name, RoutineSignature{
			Package:    r.Package,
			Name:       r.Name,
			ParamNames: r.ParamNames,
			IsFunction: r.IsFunction,
		})
	}
	for _, m := range snap.TypeMethods {
		idx.RegisterTypeMethod(m.Schema, m.Type, m.Method)
	}
	for _, s := range snap.Sequences {
		idx.RegisterSequence(s.Schema, s.Name)
	}
	return idx, nil
}
