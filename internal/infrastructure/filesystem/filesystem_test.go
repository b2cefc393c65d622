package filesystem

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func Test_DirectorySource_List(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.xml", "b")
	writeFile(t, dir, "a.XML", "a")
	writeFile(t, dir, "appsettings.json", "{}")
	writeFile(t, dir, "notes.txt", "")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.xml"), 0o755))
	writeFile(t, filepath.Join(dir, "nested.xml"), "c.xml", "c")

	names, err := NewDirectorySource().List(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.XML", "b.xml"}, names)
}

func Test_DirectorySource_List_Empty(t *testing.T) {
	names, err := NewDirectorySource().List(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, names)
}

func Test_DirectorySource_List_MissingFolder(t *testing.T) {
	_, err := NewDirectorySource().List(context.Background(), filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func Test_DirectorySource_ReadAndOpen(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "policy.xml", "<TrustFrameworkPolicy/>")
	source := NewDirectorySource()

	content, err := source.Read(context.Background(), dir, "policy.xml")
	require.NoError(t, err)
	assert.Equal(t, "<TrustFrameworkPolicy/>", content)

	r, err := source.Open(context.Background(), dir, "policy.xml")
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	assert.Equal(t, "<TrustFrameworkPolicy/>", string(data))
}

func Test_DirectorySource_Open_RejectsTraversal(t *testing.T) {
	parent := t.TempDir()
	dir := filepath.Join(parent, "policies")
	require.NoError(t, os.Mkdir(dir, 0o755))
	writeFile(t, parent, "secret.xml", "secret")

	_, err := NewDirectorySource().Open(context.Background(), dir, "../secret.xml")
	assert.Error(t, err)
}

func Test_FolderSink_Write(t *testing.T) {
	out := filepath.Join(t.TempDir(), "build", "Test")
	sink := NewFolderSink()

	require.NoError(t, sink.Write(context.Background(), out, "Base.xml", "first"))
	require.NoError(t, sink.Write(context.Background(), out, "Base.xml", "second"))

	data, err := os.ReadFile(filepath.Join(out, "Base.xml"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(data), "existing files are replaced")

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func Test_FolderSink_Write_RejectsTraversal(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out")

	err := NewFolderSink().Write(context.Background(), out, "../escape.xml", "x")
	assert.Error(t, err)
}
