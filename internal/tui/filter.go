package tui

import (
	"sort"
	"strings"

	"github.com/ppiankov/lintinsights/internal/insights"
)

// filterState holds current active filters.
type filterState struct {
	Rule       string
	Severity   insights.Severity
	SearchText string
}

// sortField enumerates columns that can be sorted.
type sortField int

const (
	sortByLocation sortField = iota
	sortBySeverity
	sortByRule
)

// sortFieldCount is the total number of sortable columns.
const sortFieldCount = 3

var severityPriority = map[insights.Severity]int{
	insights.SeverityHigh: 0, insights.SeverityMedium: 1,
}

// applyFilters returns items matching all active filters.
func applyFilters(items []Item, f filterState) []Item {
	result := make([]Item, 0, len(items))
	searchLower := strings.ToLower(f.SearchText)

	for _, item := range items {
		if f.Rule != "" && item.Rule != f.Rule {
			continue
		}
		if f.Severity != "" && item.Annotation.Severity != f.Severity {
			continue
		}
		if searchLower != "" && !matchesSearch(item, searchLower) {
			continue
		}
		result = append(result, item)
	}
	return result
}

func matchesSearch(item Item, searchLower string) bool {
	return strings.Contains(strings.ToLower(item.Annotation.Path), searchLower) ||
		strings.Contains(strings.ToLower(item.Rule), searchLower) ||
		strings.Contains(strings.ToLower(item.Message), searchLower)
}

// sortItems sorts a slice of items in place by the given field.
func sortItems(items []Item, field sortField) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		switch field {
		case sortByLocation:
			if a.Annotation.Path != b.Annotation.Path {
				return a.Annotation.Path < b.Annotation.Path
			}
			if a.Annotation.Line != b.Annotation.Line {
				return a.Annotation.Line < b.Annotation.Line
			}
			return a.Column < b.Column
		case sortBySeverity:
			return severityPriority[a.Annotation.Severity] < severityPriority[b.Annotation.Severity]
		case sortByRule:
			return a.Rule < b.Rule
		default:
			return false
		}
	})
}

// uniqueRules returns deduplicated, sorted rule names from items.
func uniqueRules(items []Item) []string {
	seen := make(map[string]bool)
	var rules []string
	for _, item := range items {
		if !seen[item.Rule] {
			seen[item.Rule] = true
			rules = append(rules, item.Rule)
		}
	}
	sort.Strings(rules)
	return rules
}

// ruleCount is a rule and how many problems it reported.
type ruleCount struct {
	Rule  string
	Count int
}

// topRules returns the n rules with the most problems, ties broken by name.
func topRules(items []Item, n int) []ruleCount {
	counts := make(map[string]int)
	for _, item := range items {
		counts[item.Rule]++
	}

	ranked := make([]ruleCount, 0, len(counts))
	for rule, count := range counts {
		ranked = append(ranked, ruleCount{Rule: rule, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Rule < ranked[j].Rule
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// nextSeverity cycles the severity filter: all, HIGH, MEDIUM.
func nextSeverity(s insights.Severity) insights.Severity {
	switch s {
	case "":
		return insights.SeverityHigh
	case insights.SeverityHigh:
		return insights.SeverityMedium
	default:
		return ""
	}
}

// sortFieldName returns a human-readable name for the sort field.
func sortFieldName(f sortField) string {
	switch f {
	case sortByLocation:
		return "location"
	case sortBySeverity:
		return "severity"
	case sortByRule:
		return "rule"
	default:
		return "unknown"
	}
}
