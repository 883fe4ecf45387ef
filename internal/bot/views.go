package bot

import (
	"html"
	"strings"

	"github.com/UnknownOlympus/hazira/internal/i18n"
	"github.com/UnknownOlympus/hazira/internal/ledger"
	"github.com/UnknownOlympus/hazira/internal/models"
	"github.com/UnknownOlympus/hazira/internal/tracker"
)

// views renders bot messages in a single language. User supplied values are
// HTML escaped because every message is sent in HTML parse mode.
type views struct {
	loc  *i18n.Localizer
	lang string
}

func (v views) t(key string) string {
	return v.loc.Get(v.lang, key)
}

func (v views) tWithData(key string, data map[string]any) string {
	return v.loc.GetWithData(v.lang, key, data)
}

func (v views) date(date models.Date) string {
	return i18n.Digits(v.lang, date.String())
}

// statusEmoji returns the marker shown next to a worker in the attendance list.
func statusEmoji(entry tracker.Entry) string {
	if !entry.Marked {
		return "⬜"
	}
	switch entry.Record.Status {
	case models.StatusPresent:
		return "✅"
	case models.StatusAbsent:
		return "❌"
	case models.StatusLate:
		return "⏰"
	case models.StatusNone:
		return "⬜"
	default:
		return "⬜"
	}
}

// status returns the localized label of an entry status.
func (v views) status(entry tracker.Entry) string {
	if !entry.Marked {
		return v.t("status.unmarked")
	}
	return v.t("status." + string(entry.Record.Status))
}

// dashboard renders the day counters and the last worker marked present.
func (v views) dashboard(date models.Date, summary ledger.DaySummary, last models.LastMarked, hasLast bool) string {
	lines := []string{
		v.tWithData("dashboard.title", map[string]any{"date": v.date(date)}),
		"",
		v.tWithData("dashboard.total", map[string]any{"count": summary.Total}),
		v.tWithData("dashboard.present", map[string]any{"count": summary.Present}),
		v.tWithData("dashboard.absent", map[string]any{"count": summary.Absent}),
		v.tWithData("dashboard.late", map[string]any{"count": summary.Late}),
		v.tWithData("dashboard.remaining", map[string]any{"count": summary.Remaining}),
		"",
	}

	if hasLast {
		lines = append(lines, v.tWithData("dashboard.last_marked", map[string]any{
			"name": html.EscapeString(last.Name),
			"time": i18n.Digits(v.lang, last.Time),
		}))
	} else {
		lines = append(lines, v.t("dashboard.no_marks"))
	}

	return strings.Join(lines, "\n")
}

// attendanceTitle renders the header of the attendance list.
func (v views) attendanceTitle(date models.Date, entries []tracker.Entry) string {
	title := v.tWithData("attendance.title", map[string]any{"date": v.date(date)})
	if len(entries) == 0 {
		return title + "\n\n" + v.t("attendance.empty")
	}
	return title
}

// attendanceButton renders the label of a worker in the attendance list.
func (v views) attendanceButton(entry tracker.Entry) string {
	label := statusEmoji(entry) + " " + entry.Worker.Name
	if entry.Marked && entry.Record.Time != "" {
		label += " · " + i18n.Digits(v.lang, entry.Record.Time)
	}
	return label
}

// workerCard renders the details of a worker and the status of the day.
func (v views) workerCard(entry tracker.Entry) string {
	worker := entry.Worker
	lines := []string{
		v.tWithData("worker.name", map[string]any{"name": html.EscapeString(worker.Name)}),
	}
	if worker.WorkerIDNum != "" {
		lines = append(lines, v.tWithData("worker.id_num", map[string]any{"id": html.EscapeString(worker.WorkerIDNum)}))
	}
	if worker.Phone != "" {
		lines = append(lines, v.tWithData("worker.phone", map[string]any{"phone": html.EscapeString(worker.Phone)}))
	}
	lines = append(lines,
		v.tWithData("worker.designation", map[string]any{"designation": html.EscapeString(worker.Designation)}),
		v.tWithData("worker.join_date", map[string]any{"date": v.date(worker.JoinDate)}),
	)

	status := statusEmoji(entry) + " " + v.status(entry)
	if entry.Marked && entry.Record.Time != "" {
		status += " (" + i18n.Digits(v.lang, entry.Record.Time) + ")"
	}
	lines = append(lines, v.tWithData("worker.today", map[string]any{"status": status}))

	return strings.Join(lines, "\n")
}

// workerList renders the title of a roster listing.
func (v views) workerList(count int) string {
	if count == 0 {
		return v.t("workers.empty")
	}
	return v.tWithData("workers.title", map[string]any{"count": count})
}

// workerButton renders the label of a worker in a roster listing.
func workerButton(worker models.Worker) string {
	if worker.WorkerIDNum == "" {
		return worker.Name
	}
	return worker.Name + " (" + worker.WorkerIDNum + ")"
}

// digest renders the end-of-day message sent to the owner.
func (v views) digest(date models.Date, summary ledger.DaySummary, last models.LastMarked, hasLast bool) string {
	body := v.dashboard(date, summary, last, hasLast)
	// The digest replaces the dashboard title with its own.
	if idx := strings.Index(body, "\n"); idx >= 0 {
		body = body[idx:]
	}
	return v.tWithData("digest.title", map[string]any{"date": v.date(date)}) + body
}
