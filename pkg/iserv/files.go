package iserv

import (
	"fmt"
	"iserv-client/internal/components/files"
	"net/http"
	"strings"
)

type FilesOptions struct {
	// Host of the WebDAV server, "webdav.<Client.Host>" if empty. A value
	// with a scheme is used as the full endpoint.
	Host string
	// Username and Password default to the credentials the client logged in with.
	Username string
	Password string
	Root     string
}

// Files returns a handle to the user's WebDAV file storage.
func (c *Client) Files(opts FilesOptions) (*files.Storage, error) {
	endpoint := opts.Host
	if endpoint == "" {
		endpoint = fmt.Sprintf("webdav.%s", c.Host)
	}
	if !strings.Contains(endpoint, "://") {
		endpoint = "https://" + endpoint
	}
	if opts.Username == "" {
		opts.Username = c.username
	}
	if opts.Password == "" {
		opts.Password = c.password
	}

	storage, err := files.NewStorage(files.Options{
		Endpoint:   endpoint,
		Username:   opts.Username,
		Password:   opts.Password,
		Root:       opts.Root,
		HttpClient: &http.Client{
			Transport: c.bare.GetClient().Transport,
			Timeout:   c.bare.GetClient().Timeout,
		},
	}, c.tel)
	if err != nil {
		c.tel.ReportBroken(report_client_files, err)
		return nil, err
	}
	c.tel.ReportDebug("files initialized", endpoint)
	return storage, nil
}
