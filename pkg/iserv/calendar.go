package iserv

import (
	"context"
)

type Event struct {
	Id          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Start       string `json:"start"`
	End         string `json:"end"`
	AllDay      bool   `json:"allDay"`
	Calendar    string `json:"calendar"`
	Color       string `json:"color"`
}

type EventList struct {
	Events []Event `json:"events"`
	Errors []any   `json:"errors"`
}

type EventSource struct {
	Id       string `json:"id"`
	Title    string `json:"title"`
	Url      string `json:"url"`
	Color    string `json:"color"`
	Editable bool   `json:"editable"`
}

func (c *Client) UpcomingEvents(ctx context.Context) (EventList, error) {
	return getJson[EventList](ctx, c, report_client_upcoming_events, "/iserv/calendar/api/upcoming", nil)
}

func (c *Client) EventSources(ctx context.Context) ([]EventSource, error) {
	return getJson[[]EventSource](ctx, c, report_client_event_sources, "/iserv/calendar/api/eventsources", nil)
}
