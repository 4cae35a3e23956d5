package nl2sql

import (
	"regexp"
	"strings"

	"github.com/asksql/asksql/internal/schema"
)

const answerCue = "SQL Query:"

// BuildPrompt renders the user turn: the schema, the dialect's few-shot examples,
// then the question followed by the answer cue. Output depends only on its inputs.
func BuildPrompt(question string, description schema.Description, dialect Dialect) string {
	var b strings.Builder

	b.WriteString("Database Schema:\n")
	for _, table := range description.Tables {
		b.WriteString("Table: " + table.Name + "\n")
		b.WriteString("Columns:\n")
		for _, column := range table.Columns {
			b.WriteString("- " + column.Name + " (" + column.Type + ")\n")
		}
		if len(table.ForeignKeys) > 0 {
			b.WriteString("Foreign Keys:\n")
			for _, fk := range table.ForeignKeys {
				b.WriteString("- " + fk.Column + " -> " + fk.References + "\n")
			}
		}
		b.WriteString("\n")
	}

	b.WriteString("Ejemplos:\n")
	for _, example := range dialect.Examples {
		b.WriteString("\nQuestion: \"" + example.Question + "\"\n")
		b.WriteString(answerCue + " " + example.SQL + "\n")
	}

	b.WriteString("\nQuestion: " + question + "\n\n" + answerCue)
	return b.String()
}

var sqlFencePattern = regexp.MustCompile("(?i)^```sql\\s*|\\s*```$")

// SanitizeSQL trims the completion and strips a leading ```sql and trailing ```
// fence. Nothing else is rewritten.
func SanitizeSQL(raw string) string {
	return sqlFencePattern.ReplaceAllString(strings.TrimSpace(raw), "")
}
