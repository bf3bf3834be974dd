package diagfmt

import (
	"encoding/json"
	"io"

	"lintel/internal/diag"
	"lintel/internal/source"
)

const (
	sarifVersion = "2.1.0"
	sarifSchema  = "https://json.schemastore.org/sarif-2.1.0.json"
)

type sarifLog struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool        sarifTool         `json:"tool"`
	Invocations []sarifInvocation `json:"invocations,omitempty"`
	Results     []sarifResult     `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version,omitempty"`
	InformationURI string      `json:"informationUri,omitempty"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID                   string            `json:"id"`
	Name                 string            `json:"name"`
	ShortDescription     sarifText         `json:"shortDescription"`
	DefaultConfiguration sarifRuleConfig   `json:"defaultConfiguration"`
	Properties           map[string]string `json:"properties,omitempty"`
}

type sarifRuleConfig struct {
	Level string `json:"level"`
}

type sarifText struct {
	Text string `json:"text"`
}

type sarifInvocation struct {
	Arguments           []string `json:"arguments,omitempty"`
	ExecutionSuccessful bool     `json:"executionSuccessful"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	RuleIndex int             `json:"ruleIndex"`
	Level     string          `json:"level"`
	Message   sarifText       `json:"message"`
	Locations []sarifLocation `json:"locations"`
	Related   []sarifRelated  `json:"relatedLocations,omitempty"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysical `json:"physicalLocation"`
}

type sarifRelated struct {
	ID               int           `json:"id"`
	Message          sarifText     `json:"message"`
	PhysicalLocation sarifPhysical `json:"physicalLocation"`
}

type sarifPhysical struct {
	ArtifactLocation sarifArtifact `json:"artifactLocation"`
	Region           sarifRegion   `json:"region"`
}

type sarifArtifact struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   uint32 `json:"startLine"`
	StartColumn uint32 `json:"startColumn"`
	EndLine     uint32 `json:"endLine"`
	EndColumn   uint32 `json:"endColumn"`
	ByteOffset  uint32 `json:"byteOffset"`
	ByteLength  uint32 `json:"byteLength"`
}

// sarifLevel maps a severity onto the three SARIF result levels.
func sarifLevel(s diag.Severity) string {
	switch {
	case s >= diag.SevError:
		return "error"
	case s == diag.SevWarning:
		return "warning"
	default:
		return "note"
	}
}

func physical(span source.Span, fs *source.FileSet, mode PathMode) sarifPhysical {
	start, end := fs.Resolve(span)
	return sarifPhysical{
		ArtifactLocation: sarifArtifact{URI: displayPath(fs, span.File, mode)},
		Region: sarifRegion{
			StartLine:   start.Line,
			StartColumn: start.Col,
			EndLine:     end.Line,
			EndColumn:   end.Col,
			ByteOffset:  span.Start,
			ByteLength:  span.Len(),
		},
	}
}

// Sarif форматирует offenses в SARIF формат (v2.1.0). Offenses of cops
// missing from meta.Rules get a rule entry of their own.
func Sarif(w io.Writer, bag *diag.Bag, fs *source.FileSet, meta SarifRunMeta) error {
	driver := sarifDriver{
		Name:           meta.ToolName,
		Version:        meta.ToolVersion,
		InformationURI: meta.InformationURI,
		Rules:          make([]sarifRule, 0, len(meta.Rules)),
	}
	index := make(map[string]int, len(meta.Rules))
	addRule := func(r sarifRule) int {
		index[r.ID] = len(driver.Rules)
		driver.Rules = append(driver.Rules, r)
		return index[r.ID]
	}
	for _, m := range meta.Rules {
		props := map[string]string{"department": m.Department}
		if m.VersionAdded != "" {
			props["versionAdded"] = m.VersionAdded
		}
		if !m.Safe {
			props["safe"] = "false"
		}
		addRule(sarifRule{
			ID:                   m.ID(),
			Name:                 m.Name,
			ShortDescription:     sarifText{Text: m.Description},
			DefaultConfiguration: sarifRuleConfig{Level: sarifLevel(m.Severity)},
			Properties:           props,
		})
	}

	results := make([]sarifResult, 0, bag.Len())
	for _, o := range bag.Items() {
		idx, ok := index[o.Cop]
		if !ok {
			idx = addRule(sarifRule{
				ID:                   o.Cop,
				Name:                 o.Cop,
				ShortDescription:     sarifText{Text: o.Cop},
				DefaultConfiguration: sarifRuleConfig{Level: sarifLevel(o.Severity)},
			})
		}
		res := sarifResult{
			RuleID:    o.Cop,
			RuleIndex: idx,
			Level:     sarifLevel(o.Severity),
			Message:   sarifText{Text: o.Message},
			Locations: []sarifLocation{{PhysicalLocation: physical(o.Primary, fs, meta.PathMode)}},
		}
		for i, n := range o.Notes {
			res.Related = append(res.Related, sarifRelated{
				ID:               i + 1,
				Message:          sarifText{Text: n.Msg},
				PhysicalLocation: physical(n.Span, fs, meta.PathMode),
			})
		}
		results = append(results, res)
	}

	run := sarifRun{Tool: sarifTool{Driver: driver}, Results: results}
	if len(meta.InvocationArgs) > 0 {
		run.Invocations = []sarifInvocation{{Arguments: meta.InvocationArgs, ExecutionSuccessful: true}}
	}
	log := sarifLog{Schema: sarifSchema, Version: sarifVersion, Runs: []sarifRun{run}}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(log)
}
