package iserv

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

func checkStatus(res *resty.Response) error {
	if res.IsError() {
		return fmt.Errorf("%w: %s %s: %s", UnexpectedStatus, res.Request.Method, res.Request.URL, res.Status())
	}
	return nil
}

// getJson makes a GET request with the logged in session and decodes the
// response body into T.
func getJson[T any](ctx context.Context, c *Client, reportId, endpoint string, query map[string]string) (T, error) {
	var out T

	res, err := c.Http.R().
		SetContext(ctx).
		SetHeader("accept", "application/json").
		SetQueryParams(query).
		Get(endpoint)
	if err != nil {
		c.tel.ReportBroken(reportId, fmt.Errorf("fetch: %w", err))
		return out, err
	}
	err = checkStatus(res)
	if err != nil {
		c.tel.ReportBroken(reportId, err)
		return out, err
	}

	err = json.Unmarshal(res.Body(), &out)
	if err != nil {
		c.tel.ReportBroken(reportId, fmt.Errorf("json decode: %w", err), res.String())
		return out, fmt.Errorf("%s: %w", reportId, err)
	}
	return out, nil
}

// getDocument makes a GET request with the logged in session and parses the
// response as html.
func (c *Client) getDocument(ctx context.Context, reportId, endpoint string, query map[string]string) (*goquery.Document, *resty.Response, error) {
	res, err := c.Http.R().
		SetContext(ctx).
		SetQueryParams(query).
		Get(endpoint)
	if err != nil {
		c.tel.ReportBroken(reportId, fmt.Errorf("fetch: %w", err))
		return nil, nil, err
	}
	err = checkStatus(res)
	if err != nil {
		c.tel.ReportBroken(reportId, err)
		return nil, res, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		c.tel.ReportBroken(reportId, fmt.Errorf("parse html: %w", err))
		return nil, res, err
	}
	return doc, res, nil
}

// postWithSessionCookies sends a POST request that does not go through the
// session cookie jar, the only cookies it carries are the three session identifiers.
func (c *Client) postWithSessionCookies(ctx context.Context, reportId, endpoint string, form map[string]string) (*resty.Response, error) {
	req := c.bare.R().
		SetContext(ctx).
		SetCookies(c.Session.cookies())
	if form != nil {
		req.SetFormData(form)
	}

	res, err := req.Post(endpoint)
	if err != nil {
		c.tel.ReportBroken(reportId, fmt.Errorf("%s: %w", report_client_post_with_cookie, err))
		return nil, err
	}
	return res, nil
}
