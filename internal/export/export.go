package export

import (
	"context"
	"database/sql"
	"fmt"
	"iserv-client/internal/components/chrono"
	"iserv-client/internal/components/telemetry"
	"iserv-client/internal/export/db"
	"iserv-client/pkg/iserv"
)

const (
	report_export_fetch = "export.fetch"
	report_export_write = "export.write"
)

// Source is the part of *iserv.Client an export reads from.
type Source interface {
	Username() string
	MailFolders(ctx context.Context) ([]iserv.MailFolder, error)
	Emails(ctx context.Context, query iserv.MailQuery) (iserv.MessageList, error)
	Notifications(ctx context.Context) (iserv.NotificationList, error)
	UpcomingEvents(ctx context.Context) (iserv.EventList, error)
	Badges(ctx context.Context) (map[string]int, error)
}

type Options struct {
	Host string
	// MessagesPerFolder is the amount of message summaries stored for every
	// folder, 0 uses the client default.
	MessagesPerFolder int
}

// Summary counts the rows written by Run.
type Summary struct {
	Folders       int
	Messages      int
	Notifications int
	Events        int
	Badges        int
}

type snapshot struct {
	folders       []iserv.MailFolder
	messages      map[string][]iserv.MessageSummary
	notifications []iserv.Notification
	events        []iserv.Event
	badges        map[string]int
}

func fetch(ctx context.Context, source Source, opts Options) (snapshot, error) {
	var err error
	s := snapshot{messages: map[string][]iserv.MessageSummary{}}

	s.folders, err = source.MailFolders(ctx)
	if err != nil {
		return snapshot{}, fmt.Errorf("mail folders: %w", err)
	}
	for _, folder := range s.folders {
		list, err := source.Emails(ctx, iserv.MailQuery{
			Path:   folder.Path,
			Length: opts.MessagesPerFolder,
		})
		if err != nil {
			return snapshot{}, fmt.Errorf("messages in %s: %w", folder.Path, err)
		}
		s.messages[folder.Path] = list.Data
	}

	notifications, err := source.Notifications(ctx)
	if err != nil {
		return snapshot{}, fmt.Errorf("notifications: %w", err)
	}
	s.notifications = notifications.Data.Notifications

	events, err := source.UpcomingEvents(ctx)
	if err != nil {
		return snapshot{}, fmt.Errorf("upcoming events: %w", err)
	}
	s.events = events.Events

	s.badges, err = source.Badges(ctx)
	if err != nil {
		return snapshot{}, fmt.Errorf("badges: %w", err)
	}
	return s, nil
}

func write(ctx context.Context, qry *db.Queries, s snapshot, header db.CreateSnapshotParams) (Summary, error) {
	var summary Summary

	err := qry.ClearSnapshot(ctx)
	if err != nil {
		return Summary{}, err
	}
	err = qry.CreateSnapshot(ctx, header)
	if err != nil {
		return Summary{}, err
	}

	for _, folder := range s.folders {
		err = qry.CreateMailFolder(ctx, db.MailFolder{
			Path:        folder.Path,
			Name:        folder.Name,
			DisplayName: folder.DisplayName,
			Unseen:      int64(folder.Unseen),
			Total:       int64(folder.Total),
		})
		if err != nil {
			return Summary{}, err
		}
		summary.Folders++

		for _, msg := range s.messages[folder.Path] {
			err = qry.CreateMessage(ctx, db.Message{
				Folder:        folder.Path,
				Uid:           msg.Uid,
				Subject:       msg.Subject,
				Sender:        msg.From.String(),
				Recipients:    msg.To.String(),
				Date:          msg.Date,
				Size:          msg.Size,
				Seen:          msg.Seen,
				Flagged:       msg.Flagged,
				HasAttachment: msg.HasAttachment,
			})
			if err != nil {
				return Summary{}, err
			}
			summary.Messages++
		}
	}

	for _, n := range s.notifications {
		err = qry.CreateNotification(ctx, db.Notification{
			Id:      n.Id,
			Title:   n.Title,
			Message: n.Message,
			Type:    n.Type,
			Url:     n.Url,
			Date:    n.Date,
			Read:    n.Read,
		})
		if err != nil {
			return Summary{}, err
		}
		summary.Notifications++
	}

	for _, e := range s.events {
		err = qry.CreateEvent(ctx, db.Event{
			Id:       e.Id,
			Title:    e.Title,
			Location: e.Location,
			Start:    e.Start,
			End:      e.End,
			AllDay:   e.AllDay,
			Calendar: e.Calendar,
		})
		if err != nil {
			return Summary{}, err
		}
		summary.Events++
	}

	for name, count := range s.badges {
		err = qry.CreateBadge(ctx, db.Badge{Name: name, Count: int64(count)})
		if err != nil {
			return Summary{}, err
		}
		summary.Badges++
	}

	return summary, nil
}

// Run reads mail folders, message summaries, notifications, upcoming events
// and badges from `source` and replaces the contents of `database` with
// them in a single transaction. Nothing is written if any read fails.
func Run(ctx context.Context, database *sql.DB, source Source, opts Options, clock chrono.API, tel telemetry.API) (Summary, error) {
	if tel == nil {
		tel = telemetry.SlogAPI{}
	}

	_, err := database.ExecContext(ctx, db.Schema)
	if err != nil {
		tel.ReportBroken(report_export_write, fmt.Errorf("create schema: %w", err))
		return Summary{}, err
	}

	s, err := fetch(ctx, source, opts)
	if err != nil {
		tel.ReportBroken(report_export_fetch, err)
		return Summary{}, err
	}

	makeTx := db.NewMakeTx(database)
	tx, discard, commit, err := makeTx(ctx)
	if err != nil {
		tel.ReportBroken(report_export_write, err)
		return Summary{}, err
	}
	defer discard()

	summary, err := write(ctx, tx, s, db.CreateSnapshotParams{
		Host:      opts.Host,
		Username:  source.Username(),
		CreatedAt: clock.Now().Unix(),
	})
	if err != nil {
		tel.ReportBroken(report_export_write, err)
		return Summary{}, err
	}
	err = commit()
	if err != nil {
		tel.ReportBroken(report_export_write, err)
		return Summary{}, err
	}

	tel.ReportDebug(
		"export finished",
		"folders", summary.Folders,
		"messages", summary.Messages,
		"notifications", summary.Notifications,
		"events", summary.Events,
		"badges", summary.Badges,
	)
	return summary, nil
}
