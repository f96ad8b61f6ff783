package filter

import (
	"context"
	"net/url"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"gorm.io/gorm"

	"dndtools/app/internal/db"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("database/sql.(*DB).connectionOpener"))
}

const schema = `
CREATE TABLE genres (id INTEGER PRIMARY KEY, slug TEXT NOT NULL, name TEXT NOT NULL);
CREATE TABLE tags (id INTEGER PRIMARY KEY, slug TEXT NOT NULL, name TEXT NOT NULL);
CREATE TABLE books (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	pages INTEGER,
	edition INTEGER,
	hardcover BOOLEAN NOT NULL,
	genre_id INTEGER REFERENCES genres(id)
);
CREATE TABLE book_tags (book_id INTEGER NOT NULL, tag_id INTEGER NOT NULL, weight INTEGER NOT NULL);
CREATE TABLE notes (id INTEGER PRIMARY KEY, book_id INTEGER NOT NULL, kind TEXT NOT NULL, text TEXT NOT NULL);

INSERT INTO genres VALUES (1, 'fantasy', 'Fantasy'), (2, 'scifi', 'Science fiction'), (3, 'essays', 'Essays');
INSERT INTO tags VALUES (1, 'classic', 'Classic'), (2, 'epic', 'Epic');
INSERT INTO books VALUES
	(1, 'The Hobbit', 310, 1, 1, 1),
	(2, '100% Pure', 120, 2, 0, 3),
	(3, 'Dune', 412, 1, 1, 2),
	(4, 'Hyperion', 482, 3, 0, 2),
	(5, 'The Silmarillion', 365, 1, 1, 1);
INSERT INTO book_tags VALUES (1, 1, 3), (1, 2, 1), (3, 1, 2), (3, 2, 3), (5, 2, 2);
INSERT INTO notes VALUES
	(1, 1, 'review', 'A charming adventure'),
	(2, 3, 'errata', 'Spice spelled wrongly'),
	(3, 4, 'review', 'The Shrike is scary');
`

type bookRow struct {
	ID   uint
	Name string
}

func openBooks(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := db.Open(db.Options{Path: filepath.Join(t.TempDir(), "books.db")})
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, db.Close(conn)) })

	require.NoError(t, conn.Exec(schema).Error)
	return conn
}

func genreChoices(ctx context.Context, conn *gorm.DB) ([]ChoiceGroup, error) {
	var choices []Choice
	err := conn.WithContext(ctx).Table("genres").Select("slug AS value, name AS label").Order("name").Scan(&choices).Error
	if err != nil {
		return nil, err
	}
	return []ChoiceGroup{{Choices: choices}}, nil
}

func bookSet() *Set {
	bookTags := Hop{Table: "book_tags", From: "id", To: "book_id"}
	return &Set{
		Name:  "books",
		Table: "books",
		Fields: []Field{
			{Name: "name", Kind: KindText, Path: Column("name")},
			{Name: "pages", Kind: KindRange, Path: Column("pages")},
			{Name: "edition", Kind: KindNumber, Path: Column("edition")},
			{Name: "hardcover", Kind: KindBoolean, Path: Column("hardcover")},
			{
				Name:    "genre__slug",
				Kind:    KindChoice,
				Path:    Via("slug", Hop{Table: "genres", From: "genre_id", To: "id"}),
				Choices: genreChoices,
			},
			{
				Name:    "tags__slug",
				Kind:    KindMultiChoice,
				Path:    Via("slug", bookTags, Hop{Table: "tags", From: "tag_id", To: "id"}),
				Group:   "tag",
				Choices: StaticChoices(Choice{Value: "classic"}, Choice{Value: "epic"}),
			},
			{
				Name:    "tag_weight",
				Kind:    KindMultiChoice,
				Path:    Via("weight", bookTags),
				Group:   "tag",
				Numeric: true,
				Choices: StaticChoices(Choice{Value: "1"}, Choice{Value: "2"}, Choice{Value: "3"}),
			},
			{
				Name: "note",
				Kind: KindTagged,
				Tagged: &TaggedLookup{
					Table:      "notes",
					Owner:      "book_id",
					KindColumn: "kind",
					Text:       "notes.text",
					KindParam:  "note_kind",
					Kinds:      []Choice{{Value: "review", Label: "Review"}, {Value: "errata", Label: "Errata"}},
				},
			},
		},
		Sorts:       map[string]string{"pages": "books.pages", "name": "books.name"},
		Expressions: true,
	}
}

func findBooks(t *testing.T, conn *gorm.DB, values url.Values) ([]string, *Query) {
	t.Helper()

	ctx := context.Background()
	set := bookSet()
	require.NoError(t, set.Validate())

	q, err := set.Parse(ctx, conn, values)
	require.NoError(t, err)

	var rows []bookRow
	require.NoError(t, q.Find(ctx, conn, NewPage(1, 50, PageConfig{Default: 50, Max: 50}), &rows))

	total, err := q.Count(ctx, conn)
	require.NoError(t, err)
	require.EqualValues(t, len(rows), total, "count and page disagree")

	names := make([]string, 0, len(rows))
	for _, row := range rows {
		names = append(names, row.Name)
	}
	return names, q
}

func problemParams(q *Query) []string {
	params := make([]string, 0, len(q.Problems()))
	for _, problem := range q.Problems() {
		params = append(params, problem.Param)
	}
	sort.Strings(params)
	return params
}

func TestParseTextEscapesWildcards(t *testing.T) {
	t.Parallel()
	conn := openBooks(t)

	names, _ := findBooks(t, conn, url.Values{"name": {"100%"}})
	require.Equal(t, []string{"100% Pure"}, names)

	names, _ = findBooks(t, conn, url.Values{"name": {"_"}})
	require.Empty(t, names)

	names, _ = findBooks(t, conn, url.Values{"name": {"  THE  "}})
	require.Equal(t, []string{"The Hobbit", "The Silmarillion"}, names)
}

func TestParseTextFoldsCaseLikeTheStore(t *testing.T) {
	t.Parallel()
	conn := openBooks(t)
	require.NoError(t, conn.Exec("INSERT INTO books VALUES (6, 'Élan Vital', 96, 1, 0, 3)").Error)

	names, _ := findBooks(t, conn, url.Values{"name": {"Élan"}})
	require.Equal(t, []string{"Élan Vital"}, names)

	names, _ = findBooks(t, conn, url.Values{"name": {"ÉLAN VITAL"}})
	require.Equal(t, []string{"Élan Vital"}, names)

	// SQLite's LOWER leaves non-ASCII letters alone.
	names, _ = findBooks(t, conn, url.Values{"name": {"élan"}})
	require.Empty(t, names)
}

func TestParseRange(t *testing.T) {
	t.Parallel()
	conn := openBooks(t)

	cases := []struct {
		name   string
		values url.Values
		want   []string
	}{
		{name: "both bounds", values: url.Values{"pages_min": {"310"}, "pages_max": {"412"}}, want: []string{"Dune", "The Hobbit", "The Silmarillion"}},
		{name: "legacy names", values: url.Values{"pages_0": {"310"}, "pages_1": {"412"}}, want: []string{"Dune", "The Hobbit", "The Silmarillion"}},
		{name: "upper only", values: url.Values{"pages_max": {"310"}}, want: []string{"100% Pure", "The Hobbit"}},
		{name: "fractional bound", values: url.Values{"pages_min": {"411.5"}}, want: []string{"Dune", "Hyperion"}},
		{name: "inverted", values: url.Values{"pages_min": {"400"}, "pages_max": {"100"}}, want: []string{}},
	}

	for _, tc := range cases {
		names, q := findBooks(t, conn, tc.values)
		sort.Strings(names)
		require.Equal(t, tc.want, names, tc.name)
		require.Empty(t, q.Problems(), tc.name)
	}

	names, q := findBooks(t, conn, url.Values{"pages_min": {"many"}, "pages_max": {"200"}})
	require.Equal(t, []string{"100% Pure"}, names)
	require.Equal(t, []string{"pages_min"}, problemParams(q))
}

func TestParseScalarKinds(t *testing.T) {
	t.Parallel()
	conn := openBooks(t)

	names, _ := findBooks(t, conn, url.Values{"edition": {"3"}})
	require.Equal(t, []string{"Hyperion"}, names)

	names, _ = findBooks(t, conn, url.Values{"hardcover": {"no"}})
	require.Equal(t, []string{"100% Pure", "Hyperion"}, names)

	names, _ = findBooks(t, conn, url.Values{"genre__slug": {"scifi"}})
	require.Equal(t, []string{"Dune", "Hyperion"}, names)

	names, q := findBooks(t, conn, url.Values{"genre__slug": {"poetry"}, "edition": {"two"}, "hardcover": {"sometimes"}})
	require.Len(t, names, 5)
	require.Equal(t, []string{"edition", "genre__slug", "hardcover"}, problemParams(q))

	var validation *ValidationError
	require.ErrorAs(t, q.Err(), &validation)
	require.Len(t, validation.Problems, 3)
}

func TestParseMultiChoiceUnionWithoutDuplicates(t *testing.T) {
	t.Parallel()
	conn := openBooks(t)

	names, q := findBooks(t, conn, url.Values{"tags__slug": {"classic", "epic", "epic", "gothic"}})
	require.Equal(t, []string{"Dune", "The Hobbit", "The Silmarillion"}, names)
	require.Equal(t, []string{"tags__slug"}, problemParams(q))
}

func TestParseGroupedFieldsShareOneRow(t *testing.T) {
	t.Parallel()
	conn := openBooks(t)

	names, q := findBooks(t, conn, url.Values{"tags__slug": {"classic"}, "tag_weight": {"3"}})
	require.Equal(t, []string{"The Hobbit"}, names)
	require.Len(t, q.Predicates(), 1)
	require.Equal(t, []string{"tags__slug", "tag_weight"}, q.Predicates()[0].Fields)

	names, _ = findBooks(t, conn, url.Values{"tags__slug": {"epic"}, "tag_weight": {"2", "3"}})
	require.Equal(t, []string{"Dune", "The Silmarillion"}, names)
}

func TestParseTagged(t *testing.T) {
	t.Parallel()
	conn := openBooks(t)

	names, _ := findBooks(t, conn, url.Values{"note": {"SPICE"}})
	require.Equal(t, []string{"Dune"}, names)

	names, _ = findBooks(t, conn, url.Values{"note_kind": {"review"}})
	require.Equal(t, []string{"Hyperion", "The Hobbit"}, names)

	names, _ = findBooks(t, conn, url.Values{"note_kind": {"review"}, "note": {"spice"}})
	require.Empty(t, names)

	names, q := findBooks(t, conn, url.Values{"note_kind": {"rumour"}})
	require.Len(t, names, 5)
	require.Equal(t, []string{"note_kind"}, problemParams(q))
}

func TestParseSort(t *testing.T) {
	t.Parallel()
	conn := openBooks(t)

	names, _ := findBooks(t, conn, url.Values{"sort": {"-pages"}})
	require.Equal(t, []string{"Hyperion", "Dune", "The Silmarillion", "The Hobbit", "100% Pure"}, names)

	names, q := findBooks(t, conn, url.Values{"sort": {"weight"}})
	require.Equal(t, "100% Pure", names[0])
	require.Equal(t, []string{ParamSort}, problemParams(q))
}

func TestParseExpression(t *testing.T) {
	t.Parallel()
	conn := openBooks(t)

	names, q := findBooks(t, conn, url.Values{ParamExpression: {"pages > 400 AND edition = 3"}})
	require.Equal(t, []string{"Hyperion"}, names)
	require.Empty(t, q.Problems())

	names, _ = findBooks(t, conn, url.Values{ParamExpression: {`edition = 2 OR name = "Dune"`}})
	require.Equal(t, []string{"100% Pure", "Dune"}, names)

	names, q = findBooks(t, conn, url.Values{ParamExpression: {"genre__slug = 1"}})
	require.Len(t, names, 5)
	require.Equal(t, []string{ParamExpression}, problemParams(q))
}

func TestParseExpressionDisabled(t *testing.T) {
	t.Parallel()
	conn := openBooks(t)

	set := bookSet()
	set.Expressions = false

	q, err := set.Parse(context.Background(), conn, url.Values{ParamExpression: {"edition = 3"}})
	require.NoError(t, err)
	require.Empty(t, q.Predicates())
	require.Len(t, q.Problems(), 1)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, bookSet().Validate())

	duplicate := bookSet()
	duplicate.Fields = append(duplicate.Fields, Field{Name: "pages_min", Kind: KindNumber, Path: Column("pages")})
	require.Error(t, duplicate.Validate())

	noChoices := bookSet()
	noChoices.Fields = append(noChoices.Fields, Field{Name: "format", Kind: KindChoice, Path: Column("format")})
	require.Error(t, noChoices.Validate())

	strayGroup := bookSet()
	strayGroup.Fields = append(strayGroup.Fields, Field{
		Name:  "genre_name",
		Kind:  KindText,
		Path:  Via("name", Hop{Table: "genres", From: "genre_id", To: "id"}),
		Group: "tag",
	})
	require.Error(t, strayGroup.Validate())

	require.Error(t, (&Set{Name: "books"}).Validate())
}

func TestDescribe(t *testing.T) {
	t.Parallel()
	conn := openBooks(t)

	fields, err := bookSet().Describe(context.Background(), conn)
	require.NoError(t, err)
	require.Len(t, fields, len(bookSet().Fields))

	byName := map[string]FieldDescription{}
	for _, field := range fields {
		byName[field.Name] = field
	}

	require.Equal(t, "Genre", byName["genre__slug"].Label)
	require.Equal(t, "choice", byName["genre__slug"].Kind)
	require.Equal(t, []Choice{
		{Value: "essays", Label: "Essays"},
		{Value: "fantasy", Label: "Fantasy"},
		{Value: "scifi", Label: "Science fiction"},
	}, byName["genre__slug"].Groups[0].Choices)

	require.Equal(t, []string{"pages_min", "pages_max", "pages_0", "pages_1"}, byName["pages"].Params)
	require.Equal(t, []string{"note", "note_kind"}, byName["note"].Params)
	require.Len(t, byName["note"].Groups[0].Choices, 2)
}
