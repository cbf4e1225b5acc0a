package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type user struct {
	Email string
	Name  string
	Goals []string
}

func userSchema(dir string) Schema[user] {
	return Schema[user]{
		Table: usersSpec(dir),
		Encode: func(u user) Row {
			return Row{"Email": u.Email, "Name": u.Name, "Goals": JoinList(u.Goals)}
		},
		Decode: func(r Row) user {
			return user{Email: r["Email"], Name: r["Name"], Goals: SplitList(r["Goals"])}
		},
	}
}

func TestLocalScenarioSavedThenUpdated(t *testing.T) {
	dir := t.TempDir()
	store := NewKeyedStore(userSchema(dir), NewFallback(nil, NewCSVTable()))
	ctx := context.Background()

	res := store.Upsert(ctx, "a@x.com", user{Name: "Ana", Goals: []string{"Weight Loss", "Muscle Building"}})
	require.True(t, res.OK)
	require.Equal(t, "saved locally", res.Message)
	require.Equal(t, []string{
		"Email,Name,Goals",
		`a@x.com,Ana,"Weight Loss, Muscle Building"`,
	}, readLines(t, filepath.Join(dir, "users.csv")))

	res = store.Upsert(ctx, "a@x.com", user{Name: "Ana", Goals: []string{"General Health"}})
	require.True(t, res.OK)
	require.Equal(t, "updated locally", res.Message)
	require.Equal(t, []string{
		"Email,Name,Goals",
		"a@x.com,Ana,General Health",
	}, readLines(t, filepath.Join(dir, "users.csv")))
}

func TestUpsertIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	store := NewKeyedStore(userSchema(dir), NewFallback(nil, NewCSVTable()))
	rec := user{Name: "Ana", Goals: []string{"Vegan", "Keto"}}

	store.Upsert(context.Background(), "a@x.com", rec)
	store.Upsert(context.Background(), "a@x.com", rec)

	require.Len(t, readLines(t, filepath.Join(dir, "users.csv")), 2)
	got, ok := store.Lookup(context.Background(), "a@x.com")
	require.True(t, ok)
	require.Equal(t, user{Email: "a@x.com", Name: "Ana", Goals: []string{"Vegan", "Keto"}}, got)
}

func TestEmptyKeyRejectedWithoutIO(t *testing.T) {
	dir := t.TempDir()
	api := newMemSheets()
	store := NewKeyedStore(userSchema(dir), NewFallback(NewSheetsTable(api), NewCSVTable()))

	res := store.Upsert(context.Background(), "", user{Name: "Ana"})
	require.False(t, res.OK)
	require.Equal(t, "email is required", res.Message)

	_, err := os.Stat(filepath.Join(dir, "users.csv"))
	require.True(t, os.IsNotExist(err))
	require.Empty(t, api.order)
}

func TestRemoteSuccessSkipsLocal(t *testing.T) {
	dir := t.TempDir()
	api := newMemSheets()
	store := NewKeyedStore(userSchema(dir), NewFallback(NewSheetsTable(api), NewCSVTable()))

	res := store.Upsert(context.Background(), "a@x.com", user{Name: "Ana"})
	require.True(t, res.OK)
	require.Equal(t, Remote, res.Tier)
	require.Equal(t, "saved to Google Sheets", res.Message)

	res = store.Upsert(context.Background(), "a@x.com", user{Name: "Ana B"})
	require.Equal(t, "updated in Google Sheets", res.Message)

	_, err := os.Stat(filepath.Join(dir, "users.csv"))
	require.True(t, os.IsNotExist(err))
}

func TestRemoteFailureFallsBackToLocal(t *testing.T) {
	dir := t.TempDir()
	api := newMemSheets()
	api.err = errors.New("invalid_grant")
	store := NewKeyedStore(userSchema(dir), NewFallback(NewSheetsTable(api), NewCSVTable()))

	res := store.Upsert(context.Background(), "a@x.com", user{Name: "Ana"})
	require.True(t, res.OK)
	require.Equal(t, Local, res.Tier)
	require.Equal(t, "saved locally", res.Message)

	got, ok := store.Lookup(context.Background(), "a@x.com")
	require.True(t, ok)
	require.Equal(t, "Ana", got.Name)
}

func TestLookupFallsBackWhenRemoteHasNoMatch(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "users.csv"), []byte("Email,Name,Goals\nb@x.com,Ben,\n"), 0o644))
	api := newMemSheets()
	api.seed("Users", []string{"Email", "Name", "Goals"}, []string{"a@x.com", "Ana"})
	store := NewKeyedStore(userSchema(dir), NewFallback(NewSheetsTable(api), NewCSVTable()))

	got, ok := store.Lookup(context.Background(), "a@x.com")
	require.True(t, ok)
	require.Equal(t, "Ana", got.Name)

	got, ok = store.Lookup(context.Background(), "b@x.com")
	require.True(t, ok)
	require.Equal(t, "Ben", got.Name)
}

func TestLookupAbsentKey(t *testing.T) {
	store := NewKeyedStore(userSchema(t.TempDir()), NewFallback(nil, NewCSVTable()))
	_, ok := store.Lookup(context.Background(), "nobody@x.com")
	require.False(t, ok)
}

func TestLocalFailureIsReported(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	schema := userSchema(dir)
	schema.Table.File = filepath.Join(blocker, "users.csv")
	store := NewKeyedStore(schema, NewFallback(nil, NewCSVTable()))

	res := store.Upsert(context.Background(), "a@x.com", user{Name: "Ana"})
	require.False(t, res.OK)
	require.Contains(t, res.Message, "error saving profile")
}

func TestUpsertRowCountAccounting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "users.csv")
	require.NoError(t, os.WriteFile(path, []byte("Email,Name,Goals\na@x.com,Ana,\nb@x.com,Ben,Run\n"), 0o644))
	store := NewKeyedStore(userSchema(dir), NewFallback(nil, NewCSVTable()))

	store.Upsert(context.Background(), "a@x.com", user{Name: "Ann"})
	lines := readLines(t, path)
	require.Len(t, lines, 3)
	require.Equal(t, "b@x.com,Ben,Run", lines[2])

	store.Upsert(context.Background(), "c@x.com", user{Name: "Cy"})
	lines = readLines(t, path)
	require.Len(t, lines, 4)
	require.Equal(t, "a@x.com,Ann,", lines[1])
	require.Equal(t, "b@x.com,Ben,Run", lines[2])
}
