package rules

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	chewxy "github.com/chewxy/sexp"

	"github.com/OpenTraceLab/padcheck/pkg/kicad/sexp"
	"github.com/OpenTraceLab/padcheck/pkg/kicad/sexp/kicadsexp"
	"github.com/OpenTraceLab/padcheck/pkg/units"
)

// druTarget maps a KiCad constraint and its min/max bound to a setting.
type druTarget struct {
	constraint string
	bound      string
	key        string
	// condition, when set, must appear in the rule's condition expression.
	condition string
}

var druTargets = []druTarget{
	{constraint: "hole_to_hole", bound: "min", key: "via_to_via"},
	{constraint: "edge_clearance", bound: "min", key: "drill_to_edge"},
	{constraint: "silk_clearance", bound: "min", key: "silk_to_pad"},
	{constraint: "clearance", bound: "min", key: "via_to_track", condition: "Via"},
	{constraint: "hole_size", bound: "min", key: "drill_min"},
	{constraint: "hole_size", bound: "max", key: "drill_max"},
	{constraint: "text_thickness", bound: "min", key: "silk_min_width"},
	{constraint: "text_height", bound: "min", key: "text_min_height"},
}

// decodeDRU reads a KiCad custom rules file into a flat document.
func decodeDRU(data string) (map[string]any, error) {
	// Syntax check.
	top, err := chewxy.ParseString(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rules: %w", err)
	}
	log.Debug("read kicad rules", "expressions", len(top))

	nodes, err := kicadsexp.ParseString(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rules: %w", err)
	}

	doc := map[string]any{}
	for _, node := range nodes {
		name, err := sexp.GetNodeName(node)
		if err != nil || name != "rule" {
			continue
		}
		ruleName, _ := sexp.GetString(node, 1)

		var condition string
		if cond, ok := sexp.FindNode(node, "condition"); ok {
			condition, _ = sexp.GetString(cond, 1)
		}

		for _, constraint := range sexp.FindAllNodes(node, "constraint") {
			applyConstraint(doc, ruleName, condition, constraint)
		}
	}
	return doc, nil
}

func applyConstraint(doc map[string]any, rule, condition string, constraint kicadsexp.Sexp) {
	kind, err := sexp.GetString(constraint, 1)
	if err != nil {
		log.Warn("skipping constraint", "rule", rule, "err", err)
		return
	}

	matched := false
	for _, t := range druTargets {
		if t.constraint != kind {
			continue
		}
		if t.condition != "" && !strings.Contains(condition, t.condition) {
			continue
		}
		bound, ok := sexp.FindNode(constraint, t.bound)
		if !ok {
			continue
		}
		value, err := sexp.GetString(bound, 1)
		if err != nil {
			log.Warn("skipping constraint", "rule", rule, "constraint", kind, "err", err)
			continue
		}
		doc[t.key] = druLength(value)
		matched = true
	}

	if !matched {
		log.Debug("ignoring constraint", "rule", rule, "constraint", kind)
	}
}

// druLength appends KiCad's implied millimetres to a bare number.
func druLength(v string) string {
	if m, err := units.Parse(v); err == nil && m.Unit == "" {
		return v + "mm"
	}
	return v
}
