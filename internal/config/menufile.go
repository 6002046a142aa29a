package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dusk-indust/chainmerge/internal/chain"
	"github.com/dusk-indust/chainmerge/internal/menu"
	"github.com/dusk-indust/chainmerge/internal/merge"
)

// menuFile mirrors the YAML layout of a menu:
//
//	alignmentGroups: [Muon, Jet]
//	chains:
//	  - name: HLT_mu10_j45
//	    strategy: auto
//	    legs:
//	      - signature: Muon
//	        group: Muon
//	        l1: MU8F
//	        steps:
//	          - sequence: muFast
//	          - sequence: muComb
type menuFile struct {
	AlignmentGroups []string     `yaml:"alignmentGroups"`
	Chains          []chainEntry `yaml:"chains"`
}

type chainEntry struct {
	Name     string     `yaml:"name"`
	Strategy string     `yaml:"strategy"`
	Offset   int        `yaml:"offset"`
	Legs     []legEntry `yaml:"legs"`
}

type legEntry struct {
	Signature string      `yaml:"signature"`
	Group     string      `yaml:"group"`
	L1        string      `yaml:"l1"`
	Steps     []stepEntry `yaml:"steps"`
}

type stepEntry struct {
	Name         string      `yaml:"name"`
	Sequence     string      `yaml:"sequence"`
	Multiplicity int         `yaml:"multiplicity"`
	Parts        []partEntry `yaml:"parts"`
	Combo        *comboEntry `yaml:"combo"`
	Empty        bool        `yaml:"empty"`
}

type partEntry struct {
	Name         string `yaml:"name"`
	Multiplicity int    `yaml:"multiplicity"`
	Threshold    int    `yaml:"threshold"`
}

type comboEntry struct {
	Name  string   `yaml:"name"`
	Tools []string `yaml:"tools"`
}

// LoadMenu reads and parses the menu file at path.
func LoadMenu(path string) (menu.Menu, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return menu.Menu{}, fmt.Errorf("config: read menu: %w", err)
	}
	m, err := ParseMenu(data)
	if err != nil {
		return menu.Menu{}, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// ParseMenu parses a YAML menu. Unknown keys are rejected. Defaults are
// resolved here: a missing multiplicity is 1, a missing strategy is auto,
// a step without parts gets one part named after the leg's signature, and
// a missing part multiplicity takes the step's.
func ParseMenu(data []byte) (menu.Menu, error) {
	var mf menuFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&mf); err != nil {
		if errors.Is(err, io.EOF) {
			return menu.Menu{}, errors.New("config: menu is empty")
		}
		return menu.Menu{}, fmt.Errorf("config: parse menu: %w", err)
	}

	m := menu.Menu{GroupOrder: mf.AlignmentGroups}
	seen := make(map[string]bool, len(mf.Chains))
	for i, ce := range mf.Chains {
		if ce.Name == "" {
			return menu.Menu{}, fmt.Errorf("config: chain %d has no name", i)
		}
		if seen[ce.Name] {
			return menu.Menu{}, fmt.Errorf("config: chain %s defined twice", ce.Name)
		}
		seen[ce.Name] = true

		def, err := buildChain(ce)
		if err != nil {
			return menu.Menu{}, err
		}
		m.Chains = append(m.Chains, def)
	}
	return m, nil
}

func buildChain(ce chainEntry) (menu.ChainDef, error) {
	strategy, err := merge.ParseStrategy(ce.Strategy)
	if err != nil {
		return menu.ChainDef{}, fmt.Errorf("config: chain %s: %w", ce.Name, err)
	}
	if len(ce.Legs) == 0 {
		return menu.ChainDef{}, fmt.Errorf("config: chain %s has no legs", ce.Name)
	}

	def := menu.ChainDef{Name: ce.Name, Strategy: strategy, Offset: ce.Offset}
	for li, le := range ce.Legs {
		if le.Signature == "" || le.Group == "" {
			return menu.ChainDef{}, fmt.Errorf("config: chain %s leg %d needs a signature and a group", ce.Name, li)
		}
		if len(le.Steps) == 0 {
			return menu.ChainDef{}, fmt.Errorf("config: chain %s leg %d has no steps", ce.Name, li)
		}

		spec := chain.LegSpec{Chain: ce.Name, Signature: le.Signature, Group: le.Group, L1: le.L1}
		for si, se := range le.Steps {
			step, err := buildStep(se, le.Signature, si)
			if err != nil {
				return menu.ChainDef{}, fmt.Errorf("config: chain %s leg %d: %w", ce.Name, li, err)
			}
			spec.Steps = append(spec.Steps, step)
		}
		def.Legs = append(def.Legs, chain.NewLeg(spec))
	}
	return def, nil
}

func buildStep(se stepEntry, signature string, index int) (chain.LegStep, error) {
	if se.Empty && se.Sequence != "" {
		return chain.LegStep{}, fmt.Errorf("step %d is empty but names sequence %s", index, se.Sequence)
	}
	if !se.Empty && se.Sequence == "" {
		return chain.LegStep{}, fmt.Errorf("step %d has no sequence", index)
	}
	if se.Multiplicity < 0 {
		return chain.LegStep{}, fmt.Errorf("step %d has negative multiplicity %d", index, se.Multiplicity)
	}

	mult := se.Multiplicity
	if mult == 0 {
		mult = 1
	}
	name := se.Name
	if name == "" {
		label := se.Sequence
		if se.Empty {
			label = "Empty"
		}
		name = fmt.Sprintf("Step%d_%s", index+1, label)
	}

	step := chain.LegStep{Name: name, Sequence: se.Sequence, Multiplicity: mult, Empty: se.Empty}
	for _, pe := range se.Parts {
		pm := pe.Multiplicity
		if pm == 0 {
			pm = 1
			if len(se.Parts) == 1 {
				pm = mult
			}
		}
		partName := pe.Name
		if partName == "" {
			partName = signature
		}
		step.Parts = append(step.Parts, chain.Part{Name: partName, Multiplicity: pm, Threshold: pe.Threshold})
	}
	if se.Combo != nil {
		step.ComboHypo = &chain.ComboHypo{Name: se.Combo.Name, Tools: se.Combo.Tools}
	}
	return step, nil
}
