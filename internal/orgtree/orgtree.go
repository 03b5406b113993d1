// Package orgtree orders the organization hierarchy for display. Every
// renderer walks organizations in the same sequence: the company root, then
// division-type level-2 orgs, then each division's level-3 teams in the same
// division order, then the direct-report level-2 orgs.
package orgtree

import (
	"sort"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/sells-group/kpi-pulse/internal/model"
)

// Entry is one organization in display order.
type Entry struct {
	Name  string `json:"name"`
	ID    int    `json:"id"`
	Level int    `json:"level"`
}

// Node is one organization in the display tree.
type Node struct {
	Name     string `json:"name"`
	ID       int    `json:"id"`
	Level    int    `json:"level"`
	Children []Node `json:"children,omitempty"`
}

func byLevel(orgs []model.Organization, level int) []model.Organization {
	matched := lo.Filter(orgs, func(o model.Organization, _ int) bool {
		return o.Level == level
	})
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	return matched
}

func childrenOf(orgs []model.Organization, parentID int) []model.Organization {
	matched := lo.Filter(orgs, func(o model.Organization, _ int) bool {
		return o.ParentID == parentID
	})
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	return matched
}

// splitLevel2 partitions level-2 orgs into divisions and direct reports,
// both ID-ascending. An org classified as neither is reported and dropped
// from the ordering rather than guessed into a group.
func splitLevel2(orgs []model.Organization) (divisions, directs []model.Organization) {
	for _, org := range byLevel(orgs, 2) {
		switch org.Class {
		case model.ClassDivision:
			divisions = append(divisions, org)
		case model.ClassDirectReport:
			directs = append(directs, org)
		default:
			zap.L().Warn("level-2 org excluded from ordering: ambiguous class",
				zap.Int("org_id", org.ID),
				zap.String("name", org.Name),
			)
		}
	}
	return divisions, directs
}

// Ordered returns the deterministic display order for the given orgs.
func Ordered(orgs []model.Organization) []Entry {
	var result []Entry
	add := func(o model.Organization) {
		result = append(result, Entry{Name: o.Name, ID: o.ID, Level: o.Level})
	}

	for _, root := range byLevel(orgs, 1) {
		add(root)
	}

	divisions, directs := splitLevel2(orgs)
	for _, div := range divisions {
		add(div)
	}
	for _, div := range divisions {
		for _, team := range childrenOf(orgs, div.ID) {
			add(team)
		}
	}
	for _, dir := range directs {
		add(dir)
	}

	return result
}

// BuildTree builds the display tree: root, its level-2 children in display
// order, and each level-2 org's level-3 children ID-ascending.
func BuildTree(orgs []model.Organization) (Node, bool) {
	roots := byLevel(orgs, 1)
	if len(roots) == 0 {
		return Node{}, false
	}
	root := roots[0]

	divisions, directs := splitLevel2(orgs)
	level2 := append(append([]model.Organization{}, divisions...), directs...)

	children := make([]Node, 0, len(level2))
	for _, l2 := range level2 {
		teams := lo.Map(childrenOf(orgs, l2.ID), func(o model.Organization, _ int) Node {
			return Node{Name: o.Name, ID: o.ID, Level: 3}
		})
		children = append(children, Node{Name: l2.Name, ID: l2.ID, Level: 2, Children: teams})
	}

	return Node{Name: root.Name, ID: root.ID, Level: 1, Children: children}, true
}
