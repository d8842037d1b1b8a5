// Package loader reads problem descriptions from XML files or YAML manifests
// referencing them, and produces the planner's in-memory problem.
package loader

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jsundin/tcrplan/core/planner"
)

// Load reads a problem description. The format is chosen by extension: .xml
// for a single problem document, .yaml/.yml for a manifest referencing
// per-section XML files.
func Load(path string) (*planner.Problem, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xml":
		return LoadXML(path)
	case ".yaml", ".yml":
		return LoadManifest(path)
	default:
		return nil, fmt.Errorf("unsupported problem format: %s", path)
	}
}

// LoadXML reads a complete problem from one XML document.
func LoadXML(path string) (*planner.Problem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc xmlProblem
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if doc.XMLName.Local != "problem" {
		return nil, fmt.Errorf("%s: not a problem description (root <%s>)", path, doc.XMLName.Local)
	}
	return buildProblem(&doc)
}

// fragment reads one XML file that holds a single problem section, either as
// its own root element or wrapped in a parent document.
func fragment(path string) (*xmlProblem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc xmlProblem
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if doc.Network != nil || doc.Resources != nil || doc.Projects != nil ||
		doc.Traffic != nil || doc.Params != nil || doc.Plan != nil {
		return &doc, nil
	}
	// The section is the root element itself; re-parse into the matching
	// struct.
	switch doc.XMLName.Local {
	case "network":
		var n xmlNetwork
		if err := xml.Unmarshal(data, &n); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return &xmlProblem{Network: &n}, nil
	case "resources":
		var r xmlResources
		if err := xml.Unmarshal(data, &r); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return &xmlProblem{Resources: &r}, nil
	case "projects":
		var p xmlProjects
		if err := xml.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return &xmlProblem{Projects: &p}, nil
	case "traffic":
		var t xmlTraffic
		if err := xml.Unmarshal(data, &t); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return &xmlProblem{Traffic: &t}, nil
	case "params":
		var p xmlParams
		if err := xml.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return &xmlProblem{Params: &p}, nil
	default:
		return nil, fmt.Errorf("%s: unrecognized problem section <%s>", path, doc.XMLName.Local)
	}
}
