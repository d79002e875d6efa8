// internal/backend/result.go
package backend

import (
	"strings"

	"dird-service/internal/domain/directory"
	"dird-service/internal/domain/source"
	"dird-service/internal/pkg/template"
)

// resultMaker builds uniform directory results for one source, applying its
// format_columns templates over the raw row.
type resultMaker struct {
	sourceName    string
	backend       string
	formatColumns map[string]string
	isPersonal    bool
	isDeletable   bool
}

func makerFor(cfg *source.Source) resultMaker {
	return resultMaker{
		sourceName:    cfg.Name,
		backend:       cfg.Backend,
		formatColumns: cfg.FormatColumns,
	}
}

func (m resultMaker) make(raw map[string]any, rel directory.Relations) directory.Result {
	fields := make(map[string]any, len(raw)+len(m.formatColumns))
	for name, value := range raw {
		fields[name] = value
	}
	for out, tmpl := range m.formatColumns {
		fields[out] = template.Render(tmpl, raw)
	}
	return directory.Result{
		Fields:      fields,
		Source:      m.sourceName,
		Backend:     m.backend,
		IsPersonal:  m.isPersonal,
		IsDeletable: m.isDeletable,
		Relations:   rel,
	}
}

func entryRelations(entryID string) directory.Relations {
	return directory.Relations{SourceEntryID: &entryID}
}

// rowMatchesColumns reports whether any of the named columns contains needle,
// case-insensitively. List-valued columns (numbers, emails) match when any
// element does.
func rowMatchesColumns(row map[string]any, columns []string, needle string) bool {
	for _, column := range columns {
		switch value := row[column].(type) {
		case string:
			if strings.Contains(strings.ToLower(value), needle) {
				return true
			}
		case []any:
			for _, element := range value {
				if s, ok := element.(string); ok &&
					strings.Contains(strings.ToLower(s), needle) {
					return true
				}
			}
		}
	}
	return false
}

// labeledNumber is one phone number with its provider label ("mobile", ...).
type labeledNumber struct {
	label string
	value string
}

// addNumberFields derives the three number views a format template can
// address: numbers (all, in provider order), numbers_by_label (label → first
// number with that label) and numbers_except_label (label → every number
// carrying a different label).
func addNumberFields(row map[string]any, labeled []labeledNumber) {
	var numbers []any
	byLabel := map[string]any{}
	exceptLabel := map[string]any{}

	for _, n := range labeled {
		numbers = append(numbers, n.value)
		if n.label == "" {
			continue
		}
		if _, ok := byLabel[n.label]; !ok {
			byLabel[n.label] = n.value
		}
	}
	for label := range byLabel {
		var others []any
		for _, n := range labeled {
			if n.label != label {
				others = append(others, n.value)
			}
		}
		exceptLabel[label] = others
	}

	row["numbers"] = numbers
	row["numbers_by_label"] = byLabel
	row["numbers_except_label"] = exceptLabel
}
