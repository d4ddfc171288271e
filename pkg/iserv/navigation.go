package iserv

import (
	"context"
)

type ConferenceHealth struct {
	Status string `json:"status"`
}

// ConferenceHealth reports whether the video conference service is available.
func (c *Client) ConferenceHealth(ctx context.Context) (ConferenceHealth, error) {
	return getJson[ConferenceHealth](ctx, c, report_client_conference_health, "/iserv/videoconference/api/health", nil)
}

// Badges returns the unread counters shown in the navigation, keyed by module
// (ex. "mail", "messenger").
func (c *Client) Badges(ctx context.Context) (map[string]int, error) {
	badges, err := getJson[map[string]int](ctx, c, report_client_badges, "/iserv/app/navigation/badges", nil)
	if err != nil {
		return nil, err
	}
	for name, count := range badges {
		c.tel.ReportCount(report_client_badges+"."+name, int64(count))
	}
	return badges, nil
}
