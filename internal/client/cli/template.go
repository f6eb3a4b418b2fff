package cli

import (
	"text/template"
	"time"
)

var templateFuncs = template.FuncMap{
	"due": formatDue,
}

// formatDue срок в локальном времени, "-" если не задан
func formatDue(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

const taskListTemplate = `{{range $i, $t := .}}
{{inc $i}}. {{$t.Title}}
   ID:       {{$t.ID}}
   Status:   {{$t.Status}}
   Priority: {{$t.Priority}}
   Category: {{$t.Category}}
   Due:      {{due $t.DueDate}}
{{- if $t.Description}}
   Notes:    {{$t.Description}}
{{- end}}
{{end}}`

const taskDetailsTemplate = `
=== Task ===

Title:    {{.Title}}
ID:       {{.ID}}
Status:   {{.Status}}
Priority: {{.Priority}}
Category: {{.Category}}
Due:      {{due .DueDate}}
{{- if .Description}}
Notes:    {{.Description}}
{{- end}}
`

var (
	taskListTmpl = template.Must(template.New("list").Funcs(templateFuncs).Funcs(template.FuncMap{
		"inc": func(i int) int { return i + 1 },
	}).Parse(taskListTemplate))
	taskDetailsTmpl = template.Must(template.New("task").Funcs(templateFuncs).Parse(taskDetailsTemplate))
)
