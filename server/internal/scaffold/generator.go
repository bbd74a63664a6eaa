package scaffold

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"go/format"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pgEdge/recordstore/server/internal/migrate"
)

const (
	DefaultMigrationsDir = "server/internal/migrate/migrations"
	DefaultIndexPath     = "server/internal/migrate/all_migrations.go"
	DefaultImportPath    = "github.com/pgEdge/recordstore/server/internal/migrate/migrations"
)

var ErrEmptyLabel = errors.New("migration label must not be empty")
var ErrMigrationExists = errors.New("migration already exists")

var fileRegexp = regexp.MustCompile(`^([0-9]+)_([a-z0-9_]+)\.go$`)

var (
	receiverRegexp   = regexp.MustCompile(`func \(\w+ \*?(\w+)\) Identifier\(\) string`)
	identifierRegexp = regexp.MustCompile(`return "(migration[A-Za-z0-9]+)"`)
)

type Options struct {
	// Dir is the directory that migration files are written to.
	Dir string
	// IndexPath is the path of the generated file that registers every
	// migration in Dir.
	IndexPath string
	// ImportPath is the Go import path of the package in Dir.
	ImportPath string
}

func (o Options) withDefaults() Options {
	if o.Dir == "" {
		o.Dir = DefaultMigrationsDir
	}
	if o.IndexPath == "" {
		o.IndexPath = DefaultIndexPath
	}
	if o.ImportPath == "" {
		o.ImportPath = DefaultImportPath
	}
	return o
}

// File describes a migration source file.
type File struct {
	Path      string
	Name      string
	TypeName  string
	CreatedAt time.Time
}

// Generator writes new migration stubs and regenerates the migration index.
type Generator struct {
	fs     afero.Fs
	opts   Options
	logger zerolog.Logger
	now    func() time.Time
}

func NewGenerator(fs afero.Fs, logger zerolog.Logger, opts Options) *Generator {
	return &Generator{
		fs:   fs,
		opts: opts.withDefaults(),
		logger: logger.With().
			Str("component", "migration_generator").
			Logger(),
		now: time.Now,
	}
}

// Generate writes a stub migration for the given human-readable label and
// regenerates the index so that it includes every migration in the directory,
// ordered by timestamp.
func (g *Generator) Generate(label string) (*File, error) {
	typeName := migrate.Label(label)
	if typeName == "" {
		return nil, ErrEmptyLabel
	}
	created := g.now()
	file := &File{
		Path:      filepath.Join(g.opts.Dir, fileName(label, created)),
		Name:      migrate.Name(label, created),
		TypeName:  typeName,
		CreatedAt: created,
	}
	parsed, _, err := migrate.ParseName(file.Name)
	if err != nil {
		return nil, err
	}
	if parsed != typeName {
		return nil, fmt.Errorf("label %q must not end with a digit", label)
	}

	existing, err := g.List()
	if err != nil {
		return nil, err
	}
	for _, e := range existing {
		if e.Path == file.Path || e.TypeName == file.TypeName {
			return nil, fmt.Errorf("%w: %s", ErrMigrationExists, e.Path)
		}
	}

	if err := g.fs.MkdirAll(g.opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create migrations directory: %w", err)
	}
	if err := g.render(file.Path, migrationTemplate, file); err != nil {
		return nil, err
	}
	g.logger.Info().
		Str("path", file.Path).
		Str("migration", file.Name).
		Msg("created migration")

	if err := g.WriteIndex(append(existing, file)); err != nil {
		return nil, err
	}

	return file, nil
}

// List returns the migration files in the migrations directory, ordered by
// timestamp.
func (g *Generator) List() ([]*File, error) {
	exists, err := afero.DirExists(g.fs, g.opts.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to check migrations directory: %w", err)
	}
	if !exists {
		return nil, nil
	}
	entries, err := afero.ReadDir(g.fs, g.opts.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var files []*File
	for _, entry := range entries {
		if entry.IsDir() || strings.HasSuffix(entry.Name(), "_test.go") {
			continue
		}
		matches := fileRegexp.FindStringSubmatch(entry.Name())
		if matches == nil {
			continue
		}
		millis, err := strconv.ParseInt(matches[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid timestamp in %s: %w", entry.Name(), err)
		}
		file, err := g.readFile(filepath.Join(g.opts.Dir, entry.Name()), matches[2], time.UnixMilli(millis))
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	sortFiles(files)

	return files, nil
}

// readFile describes an existing migration file. The type and name are taken
// from the file's Identifier method when it has one, since the snake_case
// file name does not preserve the casing of the type.
func (g *Generator) readFile(path, label string, created time.Time) (*File, error) {
	file := &File{
		Path:      path,
		Name:      migrate.Name(label, created),
		TypeName:  migrate.Label(label),
		CreatedAt: created,
	}
	src, err := afero.ReadFile(g.fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if m := receiverRegexp.FindSubmatch(src); m != nil {
		file.TypeName = string(m[1])
	}
	if m := identifierRegexp.FindSubmatch(src); m != nil {
		file.Name = string(m[1])
	}

	return file, nil
}

// WriteIndex regenerates the index file from the given migration files.
func (g *Generator) WriteIndex(files []*File) error {
	sorted := slices.Clone(files)
	sortFiles(sorted)

	data := struct {
		ImportPath string
		Migrations []*File
	}{
		ImportPath: g.opts.ImportPath,
		Migrations: sorted,
	}
	if err := g.render(g.opts.IndexPath, indexTemplate, data); err != nil {
		return err
	}
	g.logger.Info().
		Str("path", g.opts.IndexPath).
		Int("count", len(sorted)).
		Msg("updated migration index")

	return nil
}

func (g *Generator) render(path string, tmpl *template.Template, data any) error {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", path, err)
	}
	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		return fmt.Errorf("failed to format %s: %w", path, err)
	}
	if err := afero.WriteFile(g.fs, path, formatted, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}

func sortFiles(files []*File) {
	slices.SortStableFunc(files, func(a, b *File) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
}

// fileName returns <millis>_<snake_case_label>.go. camelCase words in the
// label are split, keeping runs of capitals such as "HTTP" together.
func fileName(label string, created time.Time) string {
	lower := cases.Lower(language.Und)
	var words []string
	for _, field := range strings.FieldsFunc(label, func(r rune) bool {
		return !('a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' || '0' <= r && r <= '9')
	}) {
		for _, w := range splitCamel(field) {
			words = append(words, lower.String(w))
		}
	}

	return fmt.Sprintf("%d_%s.go", created.UnixMilli(), strings.Join(words, "_"))
}

func splitCamel(s string) []string {
	isUpper := func(b byte) bool { return 'A' <= b && b <= 'Z' }
	isLower := func(b byte) bool { return 'a' <= b && b <= 'z' }

	var words []string
	start := 0
	for i := 1; i < len(s); i++ {
		prev, cur := s[i-1], s[i]
		boundary := isUpper(cur) && !isUpper(prev) ||
			isUpper(prev) && isUpper(cur) && i+1 < len(s) && isLower(s[i+1])
		if boundary {
			words = append(words, s[start:i])
			start = i
		}
	}

	return append(words, s[start:])
}
