// Package tutorial serves the tutorial outline embedded in the binary.
package tutorial

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed steps.yaml
var stepsYAML []byte

type Step struct {
	ID           string `yaml:"id" json:"id"`
	SectionID    string `yaml:"-" json:"sectionId"`
	SectionTitle string `yaml:"-" json:"sectionTitle"`
	Title        string `yaml:"title" json:"title"`
	Optional     bool   `yaml:"optional" json:"optional"`
	Order        int    `yaml:"order" json:"order"`
}

type Section struct {
	ID    string `yaml:"id" json:"id"`
	Title string `yaml:"title" json:"title"`
	Steps []Step `yaml:"steps" json:"steps"`
}

// Outline is the parsed tutorial with steps flattened in order.
type Outline struct {
	Sections []Section
	steps    []Step
	index    map[string]int
}

// Load parses the embedded outline.
func Load() (*Outline, error) {
	return Parse(stepsYAML)
}

func Parse(data []byte) (*Outline, error) {
	var doc struct {
		Sections []Section `yaml:"sections"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse tutorial: %w", err)
	}

	o := &Outline{Sections: doc.Sections, index: make(map[string]int)}
	for si := range o.Sections {
		sec := &o.Sections[si]
		for i := range sec.Steps {
			sec.Steps[i].SectionID = sec.ID
			sec.Steps[i].SectionTitle = sec.Title
			o.steps = append(o.steps, sec.Steps[i])
		}
	}
	sort.SliceStable(o.steps, func(i, j int) bool { return o.steps[i].Order < o.steps[j].Order })

	for i, s := range o.steps {
		if _, dup := o.index[s.ID]; dup {
			return nil, fmt.Errorf("parse tutorial: duplicate step id %q", s.ID)
		}
		o.index[s.ID] = i
	}
	return o, nil
}

func (o *Outline) Steps() []Step { return o.steps }

// Step returns the step with id.
func (o *Outline) Step(id string) (Step, bool) {
	i, ok := o.index[id]
	if !ok {
		return Step{}, false
	}
	return o.steps[i], true
}

// Adjacent returns the steps before and after id. Either is nil at the ends.
func (o *Outline) Adjacent(id string) (prev, next *Step) {
	i, ok := o.index[id]
	if !ok {
		return nil, nil
	}
	if i > 0 {
		p := o.steps[i-1]
		prev = &p
	}
	if i < len(o.steps)-1 {
		n := o.steps[i+1]
		next = &n
	}
	return prev, next
}
