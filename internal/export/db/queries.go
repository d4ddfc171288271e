package db

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

const clearSnapshot = `
delete from snapshot;
delete from mail_folder;
delete from message;
delete from notification;
delete from event;
delete from badge;
`

// ClearSnapshot removes the contents of every table.
func (q *Queries) ClearSnapshot(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, clearSnapshot)
	return err
}

const createSnapshot = `insert into snapshot(host, username, created_at) values (?, ?, ?)`

type CreateSnapshotParams struct {
	Host      string
	Username  string
	CreatedAt int64
}

func (q *Queries) CreateSnapshot(ctx context.Context, arg CreateSnapshotParams) error {
	_, err := q.db.ExecContext(ctx, createSnapshot, arg.Host, arg.Username, arg.CreatedAt)
	return err
}

type Snapshot struct {
	Host      string
	Username  string
	CreatedAt int64
}

const getSnapshot = `select host, username, created_at from snapshot order by id desc limit 1`

func (q *Queries) GetSnapshot(ctx context.Context) (Snapshot, error) {
	var s Snapshot
	err := q.db.QueryRowContext(ctx, getSnapshot).Scan(&s.Host, &s.Username, &s.CreatedAt)
	return s, err
}

const createMailFolder = `
insert into mail_folder(path, name, display_name, unseen, total)
values (?, ?, ?, ?, ?)
`

type MailFolder struct {
	Path        string
	Name        string
	DisplayName string
	Unseen      int64
	Total       int64
}

func (q *Queries) CreateMailFolder(ctx context.Context, arg MailFolder) error {
	_, err := q.db.ExecContext(
		ctx, createMailFolder,
		arg.Path, arg.Name, arg.DisplayName, arg.Unseen, arg.Total,
	)
	return err
}

const getMailFolders = `select path, name, display_name, unseen, total from mail_folder order by path`

func (q *Queries) GetMailFolders(ctx context.Context) ([]MailFolder, error) {
	rows, err := q.db.QueryContext(ctx, getMailFolders)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []MailFolder
	for rows.Next() {
		var i MailFolder
		err := rows.Scan(&i.Path, &i.Name, &i.DisplayName, &i.Unseen, &i.Total)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const createMessage = `
insert or replace into message(
	folder, uid, subject, sender, recipients, date,
	size, seen, flagged, has_attachment
) values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

type Message struct {
	Folder        string
	Uid           int64
	Subject       string
	Sender        string
	Recipients    string
	Date          string
	Size          int64
	Seen          bool
	Flagged       bool
	HasAttachment bool
}

func (q *Queries) CreateMessage(ctx context.Context, arg Message) error {
	_, err := q.db.ExecContext(
		ctx, createMessage,
		arg.Folder, arg.Uid, arg.Subject, arg.Sender, arg.Recipients, arg.Date,
		arg.Size, arg.Seen, arg.Flagged, arg.HasAttachment,
	)
	return err
}

const getMessages = `
select folder, uid, subject, sender, recipients, date, size, seen, flagged, has_attachment
from message
where folder = ?
order by uid desc
`

func (q *Queries) GetMessages(ctx context.Context, folder string) ([]Message, error) {
	rows, err := q.db.QueryContext(ctx, getMessages, folder)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Message
	for rows.Next() {
		var i Message
		err := rows.Scan(
			&i.Folder, &i.Uid, &i.Subject, &i.Sender, &i.Recipients, &i.Date,
			&i.Size, &i.Seen, &i.Flagged, &i.HasAttachment,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const createNotification = `
insert or replace into notification(id, title, message, type, url, date, read)
values (?, ?, ?, ?, ?, ?, ?)
`

type Notification struct {
	Id      int64
	Title   string
	Message string
	Type    string
	Url     string
	Date    string
	Read    bool
}

func (q *Queries) CreateNotification(ctx context.Context, arg Notification) error {
	_, err := q.db.ExecContext(
		ctx, createNotification,
		arg.Id, arg.Title, arg.Message, arg.Type, arg.Url, arg.Date, arg.Read,
	)
	return err
}

const getNotifications = `select id, title, message, type, url, date, read from notification order by id desc`

func (q *Queries) GetNotifications(ctx context.Context) ([]Notification, error) {
	rows, err := q.db.QueryContext(ctx, getNotifications)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Notification
	for rows.Next() {
		var i Notification
		err := rows.Scan(&i.Id, &i.Title, &i.Message, &i.Type, &i.Url, &i.Date, &i.Read)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const createEvent = `
insert or replace into event(id, title, location, start_time, end_time, all_day, calendar)
values (?, ?, ?, ?, ?, ?, ?)
`

type Event struct {
	Id       string
	Title    string
	Location string
	Start    string
	End      string
	AllDay   bool
	Calendar string
}

func (q *Queries) CreateEvent(ctx context.Context, arg Event) error {
	_, err := q.db.ExecContext(
		ctx, createEvent,
		arg.Id, arg.Title, arg.Location, arg.Start, arg.End, arg.AllDay, arg.Calendar,
	)
	return err
}

const getEvents = `select id, title, location, start_time, end_time, all_day, calendar from event order by start_time`

func (q *Queries) GetEvents(ctx context.Context) ([]Event, error) {
	rows, err := q.db.QueryContext(ctx, getEvents)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Event
	for rows.Next() {
		var i Event
		err := rows.Scan(&i.Id, &i.Title, &i.Location, &i.Start, &i.End, &i.AllDay, &i.Calendar)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const createBadge = `insert or replace into badge(name, count) values (?, ?)`

type Badge struct {
	Name  string
	Count int64
}

func (q *Queries) CreateBadge(ctx context.Context, arg Badge) error {
	_, err := q.db.ExecContext(ctx, createBadge, arg.Name, arg.Count)
	return err
}

const getBadges = `select name, count from badge order by name`

func (q *Queries) GetBadges(ctx context.Context) ([]Badge, error) {
	rows, err := q.db.QueryContext(ctx, getBadges)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Badge
	for rows.Next() {
		var i Badge
		err := rows.Scan(&i.Name, &i.Count)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}
