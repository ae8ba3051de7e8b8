package formatter

const generalTemplate = `{{level .Severity}}{{rule .Rule}}
{{arrow .Width}}{{location .Location}}
{{margin .Width "|"}}
{{range .Snippet}}{{lineNo $.Width .Num}}{{.Text}}
{{end -}}
{{if .InRange -}}
{{margin .Width "| "}}{{underline .Offset .Length}}
{{margin .Width "= "}}{{message .Message}}
{{else -}}
{{margin .Width "| "}}{{message .Message}}
{{end -}}
{{if .Suggestion}}
{{title "Suggestion:"}}
{{margin .Width "|"}}
{{range .Suggestion}}{{lineNo $.Width .Num}}{{.Text}}
{{end -}}
{{margin .Width "|"}}
{{end -}}
{{if .Note}}
{{title "Note: "}}{{note .Note}}
{{end}}
`
