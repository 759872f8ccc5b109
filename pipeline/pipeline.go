// Package pipeline runs a sequence of tibble verbs described in YAML.
//
// A pipeline reads an input file (or glob), applies its steps in order and
// optionally writes the result:
//
//	input: data.csv
//	steps:
//	  - filter: "$id > 500"
//	  - summarize: {mu: "mean($v)"}
//	    groupby: [cat]
//	  - arrange: [-mu]
//	output: out.parquet
//
// Each step names exactly one verb. Mapping arguments such as the columns
// of mutate keep the order they are written in. References like ${HOME}
// are replaced with environment variables before parsing.
package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const nullTag = "!!null"

// ErrInvalidPipeline reports a malformed pipeline document or step
var ErrInvalidPipeline = errors.New("invalid pipeline")

// Pipeline is a parsed pipeline document
type Pipeline struct {
	Name   string `yaml:"name"`
	Input  string `yaml:"input"`
	Output string `yaml:"output"`
	Steps  []Step `yaml:"steps"`

	// Dir resolves relative paths; Load sets it to the file's directory
	Dir string `yaml:"-"`
}

// Step is one verb application
type Step struct {
	Verb    string
	GroupBy []string
	args    yaml.Node
}

// Load reads and parses a pipeline file. Relative paths in the pipeline
// are resolved against the file's directory.
func Load(path string) (*Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pipeline file: %w", err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	p.Dir = filepath.Dir(path)
	if p.Name == "" {
		p.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return p, nil
}

// Parse parses a pipeline document after substituting ${VAR} references
func Parse(data []byte) (*Pipeline, error) {
	content := substituteEnvVars(string(data))

	dec := yaml.NewDecoder(bytes.NewReader([]byte(content)))
	dec.KnownFields(true)

	var p Pipeline
	if err := dec.Decode(&p); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidPipeline)
		}
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if p.Input == "" {
		return nil, fmt.Errorf("%w: no input", ErrInvalidPipeline)
	}
	return &p, nil
}

// UnmarshalYAML reads a step mapping: one verb key plus an optional
// groupby list
func (s *Step) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("%w: line %d: step must be a mapping", ErrInvalidPipeline, node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if key.Value == "groupby" {
			cols, err := stringList(value)
			if err != nil {
				return fmt.Errorf("line %d: groupby: %w", key.Line, err)
			}
			s.GroupBy = cols
			continue
		}
		if _, ok := verbs[key.Value]; !ok {
			return fmt.Errorf("%w: line %d: unknown verb %q", ErrInvalidPipeline, key.Line, key.Value)
		}
		if s.Verb != "" {
			return fmt.Errorf("%w: line %d: step has both %q and %q", ErrInvalidPipeline, key.Line, s.Verb, key.Value)
		}
		s.Verb = key.Value
		s.args = *value
	}
	if s.Verb == "" {
		return fmt.Errorf("%w: line %d: step names no verb", ErrInvalidPipeline, node.Line)
	}
	if len(s.GroupBy) > 0 && !verbs[s.Verb].grouped {
		return fmt.Errorf("%w: line %d: %s does not take groupby", ErrInvalidPipeline, node.Line, s.Verb)
	}
	return nil
}

// path resolves a pipeline path against Dir
func (p *Pipeline) path(name string) string {
	if p.Dir == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(p.Dir, name)
}

// substituteEnvVars replaces ${VAR_NAME} with environment variable values.
// Substituted text is not scanned again.
func substituteEnvVars(content string) string {
	var b strings.Builder
	for {
		start := strings.Index(content, "${")
		if start == -1 {
			break
		}
		end := strings.Index(content[start:], "}")
		if end == -1 {
			break
		}
		end += start

		b.WriteString(content[:start])
		b.WriteString(os.Getenv(content[start+2 : end]))
		content = content[end+1:]
	}
	b.WriteString(content)
	return b.String()
}

// stringList accepts a single scalar or a sequence of scalars
func stringList(node *yaml.Node) ([]string, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.ShortTag() == nullTag {
			return nil, nil
		}
		return []string{node.Value}, nil
	case yaml.SequenceNode:
		var out []string
		if err := node.Decode(&out); err != nil {
			return nil, err
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: line %d: expected a name or a list of names", ErrInvalidPipeline, node.Line)
}
