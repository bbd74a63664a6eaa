package scaffold

import "text/template"

var migrationTemplate = template.Must(template.New("migration").Parse(`package migrations

import (
	"context"

	"github.com/pgEdge/recordstore/server/internal/recordstore"
)

type {{.TypeName}} struct{}

func (m *{{.TypeName}}) Identifier() string {
	return "{{.Name}}"
}

func (m *{{.TypeName}}) Run(ctx context.Context, oldView, newView recordstore.View) error {
	return nil
}
`))

var indexTemplate = template.Must(template.New("index").Parse(`// Code generated by recordstore generate-migration. DO NOT EDIT.

package migrate

import "{{.ImportPath}}"

// AllMigrations returns the registry of every known migration.
func AllMigrations() (*Registry, error) {
	return NewRegistry(
{{- range .Migrations}}
		&migrations.{{.TypeName}}{},
{{- end}}
	)
}
`))
