package iserv

import (
	"context"
	"fmt"
)

type Notification struct {
	Id      int64  `json:"id"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Type    string `json:"type"`
	Url     string `json:"url"`
	Date    string `json:"date"`
	Read    bool   `json:"read"`
}

type NotificationList struct {
	Status string `json:"status"`
	Data   struct {
		Count         int            `json:"count"`
		Notifications []Notification `json:"notifications"`
	} `json:"data"`
}

func (c *Client) Notifications(ctx context.Context) (NotificationList, error) {
	list, err := getJson[NotificationList](ctx, c, report_client_notifications, "/iserv/user/api/notifications", nil)
	if err != nil {
		return NotificationList{}, err
	}
	c.tel.ReportCount(report_client_notifications, int64(list.Data.Count))
	return list, nil
}

// ReadAllNotifications marks every notification as read and returns the
// response status code.
func (c *Client) ReadAllNotifications(ctx context.Context) (int, error) {
	res, err := c.postWithSessionCookies(ctx, report_client_read_notifications, "/iserv/notification/api/v1/notifications/readall", nil)
	if err != nil {
		return 0, err
	}
	c.tel.ReportDebug("read all notifications", res.StatusCode())
	return res.StatusCode(), nil
}

// ReadNotification marks a single notification (see Notification.Id) as read
// and returns the response status code.
func (c *Client) ReadNotification(ctx context.Context, id int64) (int, error) {
	res, err := c.postWithSessionCookies(
		ctx,
		report_client_read_notifications,
		fmt.Sprintf("/iserv/notification/api/v1/notifications/%d/read", id),
		nil,
	)
	if err != nil {
		return 0, err
	}
	c.tel.ReportDebug("read notification", id, res.StatusCode())
	return res.StatusCode(), nil
}
