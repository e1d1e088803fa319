package config

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/shaiso/Shellboard/internal/domain"
)

// hclFile — структура HCL файла дашборда.
//
//	input "MOUNT" { description = "Mount point" }
//
//	command "disk" {
//	  command = "df -h $MOUNT"
//	  inputs  = ["MOUNT"]
//	}
//
//	sequence "deploy" {
//	  step "Build" { command = "build" }
//	}
//
//	category "ops" {
//	  name  = "Operations"
//	  color = "#2b8a3e"
//	}
//
//	view "Disk usage" {
//	  command  = "disk"
//	  category = "ops"
//	  auto     = true
//	}
type hclFile struct {
	Inputs     []hclInput    `hcl:"input,block"`
	Commands   []hclCommand  `hcl:"command,block"`
	Sequences  []hclSequence `hcl:"sequence,block"`
	Categories []hclCategory `hcl:"category,block"`
	Views      []hclView     `hcl:"view,block"`
}

type hclInput struct {
	Slug        string `hcl:"slug,label"`
	Description string `hcl:"description,optional"`
}

type hclCommand struct {
	Slug        string   `hcl:"slug,label"`
	Command     string   `hcl:"command"`
	Display     string   `hcl:"display,optional"`
	Description string   `hcl:"description,optional"`
	Inputs      []string `hcl:"inputs,optional"`
}

type hclSequence struct {
	Slug  string    `hcl:"slug,label"`
	Steps []hclStep `hcl:"step,block"`
}

type hclStep struct {
	Name    string `hcl:"name,label"`
	Command string `hcl:"command"`
}

type hclCategory struct {
	Slug  string `hcl:"slug,label"`
	Name  string `hcl:"name"`
	Color string `hcl:"color"`
}

type hclView struct {
	Name     string   `hcl:"name,label"`
	Slug     string   `hcl:"slug,optional"`
	Command  string   `hcl:"command,optional"`
	Sequence string   `hcl:"sequence,optional"`
	Category string   `hcl:"category"`
	Inputs   []string `hcl:"inputs,optional"`
	Auto     bool     `hcl:"auto,optional"`
	Refresh  string   `hcl:"refresh,optional"`
}

// parseHCL разбирает HCL в Definition.
func parseHCL(src []byte, filename string) (*domain.Definition, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse HCL file %s: %s", filename, diags.Error())
	}

	var parsed hclFile
	if diags := gohcl.DecodeBody(file.Body, nil, &parsed); diags.HasErrors() {
		return nil, fmt.Errorf("decode HCL file %s: %s", filename, diags.Error())
	}

	return parsed.definition(), nil
}

// definition переводит HCL блоки в Definition.
func (f *hclFile) definition() *domain.Definition {
	def := &domain.Definition{}

	for _, in := range f.Inputs {
		def.Inputs = append(def.Inputs, domain.InputDef{Slug: in.Slug, Description: in.Description})
	}

	for _, c := range f.Commands {
		def.Commands = append(def.Commands, domain.CommandDef{
			Slug:        c.Slug,
			Command:     c.Command,
			Display:     c.Display,
			Description: c.Description,
			Inputs:      inputRefs(c.Inputs),
		})
	}

	for _, s := range f.Sequences {
		seq := domain.SequenceDef{Slug: s.Slug}
		for _, st := range s.Steps {
			seq.Steps = append(seq.Steps, domain.StepDef{Name: st.Name, Command: st.Command})
		}
		def.Sequences = append(def.Sequences, seq)
	}

	for _, c := range f.Categories {
		def.Categories = append(def.Categories, domain.CategoryDef{Slug: c.Slug, Name: c.Name, Color: c.Color})
	}

	for _, v := range f.Views {
		def.Views = append(def.Views, domain.ViewDef{
			Name:     v.Name,
			Slug:     v.Slug,
			Command:  v.Command,
			Sequence: v.Sequence,
			Category: v.Category,
			Inputs:   inputRefs(v.Inputs),
			Execute:  domain.ExecuteDef{Auto: v.Auto},
			Refresh:  v.Refresh,
		})
	}

	return def
}

func inputRefs(slugs []string) []domain.CommandInputDef {
	if len(slugs) == 0 {
		return nil
	}
	refs := make([]domain.CommandInputDef, 0, len(slugs))
	for _, s := range slugs {
		refs = append(refs, domain.CommandInputDef{Input: s})
	}
	return refs
}
