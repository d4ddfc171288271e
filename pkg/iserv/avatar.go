package iserv

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

type Avatar struct {
	Data []byte
	// Ext is "svg" for generated placeholder avatars and "webp" for uploaded pictures.
	Ext string
}

// UserProfilePicture fetches the avatar of the given user.
func (c *Client) UserProfilePicture(ctx context.Context, user string) (Avatar, error) {
	res, err := c.Http.R().
		SetContext(ctx).
		Get(fmt.Sprintf("/iserv/core/avatar/user/%s", url.PathEscape(user)))
	if err != nil {
		c.tel.ReportBroken(report_client_profile_picture, fmt.Errorf("fetch: %w", err), user)
		return Avatar{}, err
	}
	err = checkStatus(res)
	if err != nil {
		c.tel.ReportBroken(report_client_profile_picture, err, user)
		return Avatar{}, err
	}

	ext := "webp"
	if bytes.Contains(res.Body(), []byte("<svg")) {
		ext = "svg"
	}
	return Avatar{Data: res.Body(), Ext: ext}, nil
}

// SaveUserProfilePicture writes the avatar of `user` to `<dir>/<user>.<ext>`
// and returns the path of the written file.
func (c *Client) SaveUserProfilePicture(ctx context.Context, user, dir string) (string, error) {
	if user == "" || user == "." || user == ".." || strings.ContainsAny(user, `/\`) {
		return "", fmt.Errorf("save profile picture: invalid user name %q", user)
	}

	avatar, err := c.UserProfilePicture(ctx, user)
	if err != nil {
		return "", err
	}

	path := filepath.Join(filepath.FromSlash(dir), fmt.Sprintf("%s.%s", user, avatar.Ext))
	err = os.WriteFile(path, avatar.Data, 0644)
	if err != nil {
		return "", err
	}
	return path, nil
}
