package handlers

import (
	"log/slog"
	"net/http"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/YasNanNan2/FutariNote/internal/middleware"
	"github.com/YasNanNan2/FutariNote/internal/repository"
)

type CalendarHandler struct {
	taskRepo  repository.TaskRepository
	groupRepo repository.GroupRepository
}

func NewCalendarHandler(taskRepo repository.TaskRepository, groupRepo repository.GroupRepository) *CalendarHandler {
	return &CalendarHandler{taskRepo: taskRepo, groupRepo: groupRepo}
}

// Feed exports the group's dated tasks as an iCal calendar, one all-day
// event per task.
func (handler *CalendarHandler) Feed(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	tasks, err := handler.taskRepo.FindAll(r.Context(), *user.GroupID, repository.TaskFilter{})
	if err != nil {
		slog.Error("finding tasks for calendar", "error", err)
		http.Error(w, "Error", http.StatusInternalServerError)
		return
	}

	members, err := handler.groupRepo.Members(r.Context(), *user.GroupID)
	if err != nil {
		slog.Error("finding members for calendar", "error", err)
	}
	memberNames := make(map[string]string, len(members))
	for _, member := range members {
		memberNames[member.UserID] = member.Name
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//Futari Note//EN")
	cal.SetName("Futari Note")

	for _, task := range tasks {
		date, err := time.Parse("2006-01-02", task.Date)
		if err != nil {
			continue
		}

		event := cal.AddEvent(task.ID + "@futari-note")
		event.SetCreatedTime(task.CreatedAt)
		event.SetAllDayStartAt(date)
		event.SetAllDayEndAt(date.AddDate(0, 0, 1))

		summary := task.Title
		if name, ok := memberNames[task.AssigneeUserID]; ok && name != "" {
			summary += " (" + name + ")"
		}
		if task.Completed {
			summary = "✓ " + summary
		}
		event.SetSummary(summary)
		event.SetDescription(string(task.Category))
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=futari-note.ics")
	if err := cal.SerializeTo(w); err != nil {
		slog.Error("serializing calendar", "error", err)
	}
}
