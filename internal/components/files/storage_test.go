package files

import (
	"bytes"
	"context"
	"errors"
	"iserv-client/internal/components/telemetry"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/emersion/go-webdav"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T, root string) (*Storage, string, *telemetry.Recorder) {
	dir := t.TempDir()
	server := httptest.NewServer(&webdav.Handler{
		FileSystem: webdav.LocalFileSystem(dir),
	})
	t.Cleanup(server.Close)

	rec := telemetry.NewRecorder()
	storage, err := NewStorage(Options{
		Endpoint: server.URL,
		Username: "max.mustermann",
		Password: "secret",
		Root:     root,
	}, rec)
	require.NoError(t, err)
	return storage, dir, rec
}

func TestUploadDownload(t *testing.T) {
	ctx := context.Background()
	storage, dir, _ := newTestStorage(t, "")

	err := storage.Mkdir(ctx, "Files")
	require.NoError(t, err)
	err = storage.Upload(ctx, "Files/notes.txt", bytes.NewBufferString("hello"))
	require.NoError(t, err)

	contents, err := os.ReadFile(filepath.Join(dir, "Files", "notes.txt"))
	require.NoError(t, err)
	require.Equal(t, "hello", string(contents))

	var buf bytes.Buffer
	n, err := storage.Download(ctx, "Files/notes.txt", &buf)
	require.NoError(t, err)
	require.Equal(t, int64(5), n)
	require.Equal(t, "hello", buf.String())

	info, err := storage.Stat(ctx, "Files/notes.txt")
	require.NoError(t, err)
	require.False(t, info.IsDir)
	require.Equal(t, int64(5), info.Size)
}

func TestReadDir(t *testing.T) {
	ctx := context.Background()
	storage, dir, _ := newTestStorage(t, "")

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "Files", "Mathe"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Files", "a.txt"), []byte("a"), 0644))

	infos, err := storage.ReadDir(ctx, "Files", false)
	require.NoError(t, err)

	var names []string
	for _, info := range infos {
		names = append(names, filepath.Base(info.Path))
	}
	sort.Strings(names)
	require.Contains(t, names, "a.txt")
	require.Contains(t, names, "Mathe")
}

func TestMoveCopyRemove(t *testing.T) {
	ctx := context.Background()
	storage, dir, _ := newTestStorage(t, "")

	require.NoError(t, storage.Upload(ctx, "a.txt", bytes.NewBufferString("a")))
	require.NoError(t, storage.Copy(ctx, "a.txt", "b.txt", false))
	require.NoError(t, storage.Move(ctx, "b.txt", "c.txt", false))

	_, err := os.Stat(filepath.Join(dir, "b.txt"))
	require.True(t, os.IsNotExist(err))
	contents, err := os.ReadFile(filepath.Join(dir, "c.txt"))
	require.NoError(t, err)
	require.Equal(t, "a", string(contents))

	require.NoError(t, storage.Remove(ctx, "c.txt"))
	_, err = os.Stat(filepath.Join(dir, "c.txt"))
	require.True(t, os.IsNotExist(err))
}

func TestMoveCopyOverwrite(t *testing.T) {
	ctx := context.Background()
	storage, dir, _ := newTestStorage(t, "")

	require.NoError(t, storage.Upload(ctx, "a.txt", bytes.NewBufferString("a")))
	require.NoError(t, storage.Upload(ctx, "b.txt", bytes.NewBufferString("b")))

	err := storage.Copy(ctx, "a.txt", "b.txt", false)
	require.ErrorIs(t, err, StorageFailed)
	err = storage.Move(ctx, "a.txt", "b.txt", false)
	require.ErrorIs(t, err, StorageFailed)
	contents, err := os.ReadFile(filepath.Join(dir, "b.txt"))
	require.NoError(t, err)
	require.Equal(t, "b", string(contents))

	require.NoError(t, storage.Copy(ctx, "a.txt", "b.txt", true))
	contents, err = os.ReadFile(filepath.Join(dir, "b.txt"))
	require.NoError(t, err)
	require.Equal(t, "a", string(contents))

	require.NoError(t, storage.Upload(ctx, "c.txt", bytes.NewBufferString("c")))
	require.NoError(t, storage.Move(ctx, "c.txt", "b.txt", true))
	contents, err = os.ReadFile(filepath.Join(dir, "b.txt"))
	require.NoError(t, err)
	require.Equal(t, "c", string(contents))
	_, err = os.Stat(filepath.Join(dir, "c.txt"))
	require.True(t, os.IsNotExist(err))
}

func TestRoot(t *testing.T) {
	ctx := context.Background()
	storage, dir, _ := newTestStorage(t, "Files")

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "Files"), 0755))
	require.NoError(t, storage.Upload(ctx, "/notes.txt", bytes.NewBufferString("x")))

	_, err := os.Stat(filepath.Join(dir, "Files", "notes.txt"))
	require.NoError(t, err)

	info, err := storage.Stat(ctx, "notes.txt")
	require.NoError(t, err)
	require.Equal(t, "/notes.txt", info.Path)
}

func TestStorageFailed(t *testing.T) {
	ctx := context.Background()
	storage, _, rec := newTestStorage(t, "")

	_, err := storage.Stat(ctx, "missing.txt")
	require.Error(t, err)
	require.True(t, errors.Is(err, StorageFailed))
	require.Equal(t, 1, rec.Count(telemetry.REPORT_BROKEN, report_storage_stat))
}

func TestBasicAuth(t *testing.T) {
	var user, pass string
	var ok bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok = r.BasicAuth()
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	storage, err := NewStorage(Options{
		Endpoint: server.URL,
		Username: "max.mustermann",
		Password: "secret",
	}, telemetry.NewRecorder())
	require.NoError(t, err)

	err = storage.Mkdir(context.Background(), "x")
	require.ErrorIs(t, err, StorageFailed)
	require.True(t, ok)
	require.Equal(t, "max.mustermann", user)
	require.Equal(t, "secret", pass)
}
