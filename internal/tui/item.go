package tui

import (
	"github.com/ppiankov/lintinsights/internal/eslint"
	"github.com/ppiankov/lintinsights/internal/insights"
)

// Item is one problem in the browser: the annotation that would be uploaded
// plus the ESLint fields the annotation leaves out.
type Item struct {
	Annotation insights.Annotation
	Rule       string
	Column     int
	Message    string
}

// Items pairs each lint message with its annotation. Annotations are built
// in message order, so the two walk together; extra messages are ignored.
func Items(results []eslint.LintResult, annotations []insights.Annotation) []Item {
	items := make([]Item, 0, len(annotations))
	k := 0
	for _, result := range results {
		for _, msg := range result.Messages {
			if k >= len(annotations) {
				return items
			}
			items = append(items, Item{
				Annotation: annotations[k],
				Rule:       eslint.RuleName(msg),
				Column:     msg.Column,
				Message:    msg.Message,
			})
			k++
		}
	}
	return items
}
