package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CaliLuke/go-odm/docstore"
)

// seedStore writes a small blog dataset to a new SQLite file and returns
// its path.
func seedStore(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "blog.db")
	st, err := docstore.NewSQLiteStore(path)
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	seed := map[string][]docstore.Document{
		"users": {
			{"_id": "u1", "username": "daniel", "realname": "Daniel Solarte", "age": 19},
			{"_id": "u2", "username": "robert", "realname": "Robert", "age": 25},
		},
		"posts": {
			{"_id": 1, "content": "Release notes", "author_id": "u2"},
			{"_id": 2, "content": "Relations", "author_id": "u1"},
		},
		"post_comments": {
			{"_id": "c1", "message": "First comment", "post_id": 1, "author_id": "u1"},
		},
	}
	for coll, docs := range seed {
		for _, d := range docs {
			_, err := st.InsertOne(ctx, coll, d)
			require.NoError(t, err)
		}
	}
	return path
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func golden(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, "odmctl", cmd.Use)
	for _, name := range []string{"collections", "find", "count", "delete", "stats"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, sub.Name())
	}

	format := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "yaml", format.DefValue)
	assert.Equal(t, "c", cmd.PersistentFlags().Lookup("config").Shorthand)
}

func TestGolden(t *testing.T) {
	db := seedStore(t)
	store := []string{"--backend", "sqlite", "--path", db}

	tests := []struct {
		name string
		args []string
	}{
		{"collections", []string{"collections"}},
		{"find_users_yaml", []string{"find", "users", "--sort", "username"}},
		{"find_users_json", []string{"find", "users", "--sort", "username", "--format", "json"}},
		{"find_posts_by_id", []string{"find", "posts", "--id", "2"}},
		{"find_empty", []string{"find", "users", "--filter", "{username: nobody}"}},
		{"count_posts", []string{"count", "posts"}},
		{"stats", []string{"stats"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := run(t, append(tt.args, store...)...)
			require.NoError(t, err)
			golden(t).Assert(t, tt.name, []byte(out))
		})
	}
}

func TestFind_FilterAndPaging(t *testing.T) {
	db := seedStore(t)

	out, _, err := run(t, "find", "users", "--backend", "sqlite", "--path", db,
		"--filter", `{"age": {"$gt": 20}}`)
	require.NoError(t, err)
	assert.Contains(t, out, "username: robert")
	assert.NotContains(t, out, "daniel")

	out, _, err = run(t, "find", "users", "--backend", "sqlite", "--path", db,
		"--sort", "-age", "--skip", "1", "--limit", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "username: daniel")
	assert.NotContains(t, out, "robert")

	out, _, err = run(t, "find", "users", "--backend", "sqlite", "--path", db,
		"--filter", "{age: 19}", "--id", "u2")
	require.NoError(t, err)
	assert.Equal(t, "[]\n", out)

	_, _, err = run(t, "find", "users", "--backend", "sqlite", "--path", db,
		"--filter", "{age: {$near: 1}}")
	var opErr *docstore.OperatorError
	assert.ErrorAs(t, err, &opErr)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestDelete(t *testing.T) {
	db := seedStore(t)
	store := []string{"--backend", "sqlite", "--path", db}

	out, _, err := run(t, append([]string{"delete", "posts", "1"}, store...)...)
	require.NoError(t, err)
	assert.Equal(t, "collection: posts\nid: 1\ndeleted: 1\n", out)

	out, _, err = run(t, append([]string{"delete", "posts", "1"}, store...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "deleted: 0")

	out, _, err = run(t, append([]string{"delete", "users", "u1", "--format", "json"}, store...)...)
	require.NoError(t, err)
	assert.JSONEq(t, `{"collection":"users","id":"u1","deleted":1}`, out)

	out, _, err = run(t, append([]string{"count", "users"}, store...)...)
	require.NoError(t, err)
	assert.Equal(t, "collection: users\ncount: 1\n", out)
}

func TestConfigFile(t *testing.T) {
	db := seedStore(t)
	cfgPath := filepath.Join(t.TempDir(), "odmctl.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(
		"store:\n  backend: sqlite\n  path: "+db+"\nlog:\n  level: debug\npool:\n  workers: 2\n"), 0o644))

	out, logs, err := run(t, "count", "users", "--config", cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "collection: users\ncount: 2\n", out)
	assert.Contains(t, logs, "opened store")

	_, logs, err = run(t, "count", "users", "--config", cfgPath, "--log-level", "error")
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestDefaultBackend(t *testing.T) {
	db := seedStore(t)
	out, _, err := run(t, "count", "users", "--path", db)
	require.NoError(t, err)
	assert.Equal(t, "collection: users\ncount: 2\n", out)

	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	out, _, err = run(t, "collections")
	require.NoError(t, err)
	assert.Equal(t, "[]\n", out)
	assert.FileExists(t, filepath.Join(dir, "odm.db"))
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code int
		want string
	}{
		{"bad format", []string{"collections", "--format", "xml"}, ExitFailure, "invalid format"},
		{"missing config", []string{"collections", "--config", "/nonexistent/odmctl.yaml"}, ExitCommandError, "failed to load config"},
		{"unknown backend", []string{"collections", "--backend", "mongo"}, ExitCommandError, "store.backend"},
		{"memory backend", []string{"collections", "--backend", "memory"}, ExitCommandError, "use the sqlite backend"},
		{"reserved collection", []string{"count", "system.users"}, ExitCommandError, "invalid collection"},
		{"bad filter", []string{"find", "users", "--filter", "{a: [1"}, ExitCommandError, "invalid filter"},
		{"non scalar id", []string{"delete", "users", "[1, 2]"}, ExitCommandError, "invalid id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Equal(t, tt.code, GetExitCode(err))
		})
	}
}

func TestParseID(t *testing.T) {
	id, err := parseID("42", false)
	require.NoError(t, err)
	assert.Equal(t, 42, id)

	id, err = parseID("42", true)
	require.NoError(t, err)
	assert.Equal(t, "42", id)

	id, err = parseID("abc", false)
	require.NoError(t, err)
	assert.Equal(t, "abc", id)
}

func TestSortKeys(t *testing.T) {
	assert.Equal(t, []docstore.SortField{
		{Field: "age", Desc: true},
		{Field: "name"},
		{Field: "_id"},
	}, sortKeys([]string{"-age", "+name", "_id"}))
	assert.Nil(t, sortKeys(nil))
}
