package iserv

import (
	"context"
	"fmt"
	"iserv-client/pkg/htmlutil"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var tooManyResultsMarkers = []string{
	"Too many results, please restrict filter criteria!",
	"Zu viele Treffer, bitte Filterkriterien einschränken!",
}

type UserLink struct {
	Name string
	// UserUrl is the link to the user's address book page as it appears on the page.
	UserUrl string
	// User is the account name taken from the last segment of UserUrl.
	User string
}

// SearchUsers searches the public address book. It fails with TooManyResults
// when the query matches more entries than the portal is willing to show.
func (c *Client) SearchUsers(ctx context.Context, query string) ([]UserLink, error) {
	doc, res, err := c.getDocument(ctx, report_client_search_users, "/iserv/addressbook/public", map[string]string{
		"filter[search]": query,
	})
	if err != nil {
		return nil, err
	}

	body := res.String()
	for _, marker := range tooManyResultsMarkers {
		if strings.Contains(body, marker) {
			c.tel.ReportWarning(report_client_search_users, TooManyResults, query)
			return nil, TooManyResults
		}
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		c.tel.ReportWarning(report_client_search_users, "result table not found", query)
		return []UserLink{}, nil
	}

	links := []UserLink{}
	table.Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
		anchors := htmlutil.GetAnchors(c.BaseUrl, row.Find("a").First())
		if len(anchors) == 0 {
			return
		}
		a := anchors[0]
		link := UserLink{Name: a.Name, UserUrl: a.Href}
		if a.Url != nil {
			link.User = path.Base(strings.TrimSuffix(a.Url.Path, "/"))
		}
		links = append(links, link)
	})

	c.tel.ReportDebug("searched users", query, len(links))
	return links, nil
}

type AutocompleteEntry struct {
	Type  string `json:"type"`
	Id    string `json:"id"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// SearchUsersAutocomplete queries the endpoint used to suggest recipients,
// `limit` defaults to 50 when it is 0.
func (c *Client) SearchUsersAutocomplete(ctx context.Context, query string, limit int) ([]AutocompleteEntry, error) {
	if limit == 0 {
		limit = 50
	}
	return getJson[[]AutocompleteEntry](ctx, c, report_client_search_autocomplete, "/iserv/core/autocomplete/api", map[string]string{
		"type":  "user,list",
		"query": query,
		"limit": strconv.Itoa(limit),
	})
}

// UserInfo reads the address book entry of `user` as a map of label to value.
// It fails with NoSuchUser when the page contains no entry.
func (c *Client) UserInfo(ctx context.Context, user string) (map[string]string, error) {
	doc, res, err := c.getDocument(ctx, report_client_user_info, fmt.Sprintf("/iserv/addressbook/public/show/%s", url.PathEscape(user)), nil)
	if res != nil && res.StatusCode() == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", NoSuchUser, user)
	}
	if err != nil {
		return nil, err
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		c.tel.ReportWarning(report_client_user_info, NoSuchUser, user)
		return nil, fmt.Errorf("%w: %s", NoSuchUser, user)
	}
	info := htmlutil.TableToMap(table)
	if len(info) == 0 {
		c.tel.ReportWarning(report_client_user_info, NoSuchUser, user)
		return nil, fmt.Errorf("%w: %s", NoSuchUser, user)
	}

	c.tel.ReportDebug("got user info", user)
	return info, nil
}
