package files

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iserv-client/internal/components/assert"
	"iserv-client/internal/components/telemetry"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/emersion/go-webdav"
)

const (
	report_storage_read_dir = "storage.read-dir"
	report_storage_stat     = "storage.stat"
	report_storage_download = "storage.download"
	report_storage_upload   = "storage.upload"
	report_storage_mkdir    = "storage.mkdir"
	report_storage_remove   = "storage.remove"
	report_storage_move     = "storage.move"
	report_storage_copy     = "storage.copy"
)

var StorageFailed = errors.New("file storage operation failed")

type Options struct {
	// Endpoint is the full url of the WebDAV server, ex. "https://webdav.school.example".
	Endpoint string
	Username string
	Password string
	// Root is prepended to every path, "/" if empty.
	Root string
	// HttpClient defaults to a client with a 30 second timeout.
	HttpClient *http.Client
}

type FileInfo struct {
	Path    string
	Size    int64
	ModTime time.Time
	IsDir   bool
	// MIMEType and ETag are only set when the server reports them.
	MIMEType string
	ETag     string
}

// Storage is a handle to a user's files on the portal's WebDAV server.
type Storage struct {
	root   string
	client *webdav.Client
	tel    telemetry.API
}

func NewStorage(opts Options, tel telemetry.API) (*Storage, error) {
	assert.NotEmptyStr(opts.Endpoint, "files.Options.Endpoint")
	if tel == nil {
		tel = telemetry.SlogAPI{}
	}
	tel = telemetry.NewScopedAPI("files", tel)

	httpClient := opts.HttpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: time.Second * 30}
	}

	var davHttp webdav.HTTPClient = httpClient
	if opts.Username != "" {
		davHttp = webdav.HTTPClientWithBasicAuth(httpClient, opts.Username, opts.Password)
	}
	client, err := webdav.NewClient(davHttp, opts.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", StorageFailed, err)
	}

	root := opts.Root
	if root == "" {
		root = "/"
	}
	return &Storage{
		root:   path.Clean("/" + root),
		client: client,
		tel:    tel,
	}, nil
}

func (s *Storage) resolve(name string) string {
	return path.Join(s.root, path.Clean("/"+name))
}

func (s *Storage) relative(name string) string {
	if s.root == "/" {
		return name
	}
	rel := strings.TrimPrefix(name, s.root)
	if !strings.HasPrefix(rel, "/") {
		rel = "/" + rel
	}
	return rel
}

func (s *Storage) fail(id string, name string, err error) error {
	s.tel.ReportBroken(id, err, name)
	return fmt.Errorf("%w: %s %s: %w", StorageFailed, strings.TrimPrefix(id, "storage."), name, err)
}

func (s *Storage) fileInfo(fi webdav.FileInfo) FileInfo {
	return FileInfo{
		Path:     s.relative(fi.Path),
		Size:     fi.Size,
		ModTime:  fi.ModTime,
		IsDir:    fi.IsDir,
		MIMEType: fi.MIMEType,
		ETag:     fi.ETag,
	}
}

// ReadDir lists the contents of a directory, depending on the server the
// directory itself may be part of the result.
func (s *Storage) ReadDir(ctx context.Context, name string, recursive bool) ([]FileInfo, error) {
	infos, err := s.client.ReadDir(ctx, s.resolve(name), recursive)
	if err != nil {
		return nil, s.fail(report_storage_read_dir, name, err)
	}
	out := make([]FileInfo, len(infos))
	for i, fi := range infos {
		out[i] = s.fileInfo(fi)
	}
	s.tel.ReportDebug("read dir", name, len(out))
	return out, nil
}

func (s *Storage) Stat(ctx context.Context, name string) (FileInfo, error) {
	fi, err := s.client.Stat(ctx, s.resolve(name))
	if err != nil {
		return FileInfo{}, s.fail(report_storage_stat, name, err)
	}
	return s.fileInfo(*fi), nil
}

// Download copies the contents of the file `name` into `w` and returns the
// amount of bytes written.
func (s *Storage) Download(ctx context.Context, name string, w io.Writer) (int64, error) {
	body, err := s.client.Open(ctx, s.resolve(name))
	if err != nil {
		return 0, s.fail(report_storage_download, name, err)
	}
	defer body.Close()

	n, err := io.Copy(w, body)
	if err != nil {
		return n, s.fail(report_storage_download, name, err)
	}
	return n, nil
}

// Upload creates or replaces the file `name` with the contents of `r`.
func (s *Storage) Upload(ctx context.Context, name string, r io.Reader) error {
	w, err := s.client.Create(ctx, s.resolve(name))
	if err != nil {
		return s.fail(report_storage_upload, name, err)
	}
	_, err = io.Copy(w, r)
	if err != nil {
		w.Close()
		return s.fail(report_storage_upload, name, err)
	}
	err = w.Close()
	if err != nil {
		return s.fail(report_storage_upload, name, err)
	}
	return nil
}

func (s *Storage) Mkdir(ctx context.Context, name string) error {
	err := s.client.Mkdir(ctx, s.resolve(name))
	if err != nil {
		return s.fail(report_storage_mkdir, name, err)
	}
	return nil
}

// Remove deletes a file or a directory along with its contents.
func (s *Storage) Remove(ctx context.Context, name string) error {
	err := s.client.RemoveAll(ctx, s.resolve(name))
	if err != nil {
		return s.fail(report_storage_remove, name, err)
	}
	return nil
}

func (s *Storage) Move(ctx context.Context, from, to string, overwrite bool) error {
	err := s.client.Move(ctx, s.resolve(from), s.resolve(to), &webdav.MoveOptions{
		NoOverwrite: !overwrite,
	})
	if err != nil {
		return s.fail(report_storage_move, from, err)
	}
	return nil
}

func (s *Storage) Copy(ctx context.Context, from, to string, overwrite bool) error {
	err := s.client.Copy(ctx, s.resolve(from), s.resolve(to), &webdav.CopyOptions{
		NoOverwrite: !overwrite,
	})
	if err != nil {
		return s.fail(report_storage_copy, from, err)
	}
	return nil
}
