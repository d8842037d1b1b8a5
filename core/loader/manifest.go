package loader

import (
	"fmt"
	"path/filepath"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/jsundin/tcrplan/core/planner"
)

// Manifest is a YAML problem description: each section names an XML file,
// resolved relative to the manifest, plus an optional inline plan.
type Manifest struct {
	Network   string        `json:"network"`
	Projects  string        `json:"projects"`
	Resources string        `json:"resources"`
	Traffic   string        `json:"traffic"`
	Params    string        `json:"params"`
	Plan      *ManifestPlan `json:"plan"`
}

// ManifestPlan mirrors the plan element attributes.
type ManifestPlan struct {
	Start        string `json:"start"`
	End          string `json:"end"`
	PeriodLength string `json:"period_length"`
	TrafficStart string `json:"traffic_start"`
	TrafficEnd   string `json:"traffic_end"`
}

// LoadManifest reads a YAML manifest and assembles the problem from the XML
// files it references. Missing sections stay empty.
func LoadManifest(path string) (*planner.Problem, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, err
	}
	var m Manifest
	if err := k.UnmarshalWithConf("", &m, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}

	baseDir := filepath.Dir(path)
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(baseDir, p)
	}

	doc := &xmlProblem{}
	sections := []struct {
		path  string
		apply func(*xmlProblem)
	}{
		{resolve(m.Network), func(f *xmlProblem) { doc.Network = f.Network }},
		{resolve(m.Projects), func(f *xmlProblem) { doc.Projects = f.Projects }},
		{resolve(m.Resources), func(f *xmlProblem) { doc.Resources = f.Resources }},
		{resolve(m.Traffic), func(f *xmlProblem) { doc.Traffic = f.Traffic }},
		{resolve(m.Params), func(f *xmlProblem) { doc.Params = f.Params }},
	}
	for _, s := range sections {
		if s.path == "" {
			continue
		}
		frag, err := fragment(s.path)
		if err != nil {
			return nil, fmt.Errorf("manifest %s: %w", path, err)
		}
		s.apply(frag)
	}
	if m.Plan != nil {
		doc.Plan = &xmlPlan{
			Start:        m.Plan.Start,
			End:          m.Plan.End,
			PeriodLength: m.Plan.PeriodLength,
			TrafficStart: m.Plan.TrafficStart,
			TrafficEnd:   m.Plan.TrafficEnd,
		}
	}
	return buildProblem(doc)
}
