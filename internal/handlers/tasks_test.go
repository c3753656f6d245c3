package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/YasNanNan2/FutariNote/internal/events"
	"github.com/YasNanNan2/FutariNote/internal/handlers"
	"github.com/YasNanNan2/FutariNote/internal/middleware"
	"github.com/YasNanNan2/FutariNote/internal/models"
	"github.com/YasNanNan2/FutariNote/internal/repository"
	"github.com/YasNanNan2/FutariNote/internal/services"
	"github.com/YasNanNan2/FutariNote/internal/testutil"
	"github.com/go-chi/chi/v5"
)

type taskHandlerFixture struct {
	handler  *handlers.TaskHandler
	taskRepo *repository.SQLiteTaskRepository
	member   models.User
	partner  models.User
}

func setupTaskHandler(t *testing.T) taskHandlerFixture {
	t.Helper()
	db := testutil.NewTestDatabase(t)
	userRepo := repository.NewUserRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	timelineRepo := repository.NewTimelineRepository(db)

	ctx := context.Background()
	member := newUser(t, userRepo, "Yuki")
	partner := newUser(t, userRepo, "Haru")
	group, err := groupRepo.Create(ctx, "")
	if err != nil {
		t.Fatalf("creating group: %v", err)
	}
	for _, user := range []models.User{member, partner} {
		if err := groupRepo.AddMember(ctx, group.ID, user.ID); err != nil {
			t.Fatalf("adding member: %v", err)
		}
		if err := userRepo.SetGroupID(ctx, user.ID, &group.ID); err != nil {
			t.Fatalf("binding member: %v", err)
		}
	}
	member, err = userRepo.FindByID(ctx, member.ID)
	if err != nil {
		t.Fatalf("reloading member: %v", err)
	}
	partner, err = userRepo.FindByID(ctx, partner.ID)
	if err != nil {
		t.Fatalf("reloading partner: %v", err)
	}

	taskService := services.NewTaskService(taskRepo, groupRepo, timelineRepo)
	return taskHandlerFixture{
		handler:  handlers.NewTaskHandler(taskRepo, taskService, events.NewHub()),
		taskRepo: taskRepo,
		member:   member,
		partner:  partner,
	}
}

func putTask(t *testing.T, fixture taskHandlerFixture, taskID string, body string) *httptest.ResponseRecorder {
	t.Helper()
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPut, "/api/tasks/"+taskID, strings.NewReader(body))
	ctx := context.WithValue(request.Context(), middleware.UserContextKey, fixture.member)
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("id", taskID)
	ctx = context.WithValue(ctx, chi.RouteCtxKey, routeCtx)
	fixture.handler.Update(recorder, request.WithContext(ctx))
	return recorder
}

func TestTaskHandler_UpdatePartialBodyKeepsFields(t *testing.T) {
	fixture := setupTaskHandler(t)
	ctx := context.Background()

	task, err := fixture.taskRepo.Create(ctx, models.Task{
		GroupID:        *fixture.member.GroupID,
		Title:          "掃除機をかける",
		Date:           "2026-09-01",
		AssigneeUserID: fixture.partner.ID,
		Category:       models.CategoryCleaning,
		CreatedBy:      fixture.member.ID,
	})
	if err != nil {
		t.Fatalf("seeding task: %v", err)
	}

	recorder := putTask(t, fixture, task.ID, `{"title":"風呂掃除"}`)
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", recorder.Code, recorder.Body.String())
	}

	updated, err := fixture.taskRepo.FindByID(ctx, *fixture.member.GroupID, task.ID)
	if err != nil {
		t.Fatalf("reloading task: %v", err)
	}
	if updated.Title != "風呂掃除" {
		t.Errorf("title = %q, want 風呂掃除", updated.Title)
	}
	if updated.Date != "2026-09-01" {
		t.Errorf("date = %q, want the original 2026-09-01", updated.Date)
	}
	if updated.AssigneeUserID != fixture.partner.ID {
		t.Errorf("assignee = %q, want the original %q", updated.AssigneeUserID, fixture.partner.ID)
	}
	if updated.Category != models.CategoryCleaning {
		t.Errorf("category = %q, want the original cleaning", updated.Category)
	}
}

func TestTaskHandler_UpdateChangesProvidedFields(t *testing.T) {
	fixture := setupTaskHandler(t)
	ctx := context.Background()

	task, err := fixture.taskRepo.Create(ctx, models.Task{
		GroupID:   *fixture.member.GroupID,
		Title:     "買い物",
		Date:      "2026-09-02",
		Category:  models.CategoryShopping,
		CreatedBy: fixture.member.ID,
	})
	if err != nil {
		t.Fatalf("seeding task: %v", err)
	}

	recorder := putTask(t, fixture, task.ID,
		`{"date":"2026-09-05","assignee":"`+fixture.partner.ID+`","category":"cooking"}`)
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", recorder.Code, recorder.Body.String())
	}

	updated, err := fixture.taskRepo.FindByID(ctx, *fixture.member.GroupID, task.ID)
	if err != nil {
		t.Fatalf("reloading task: %v", err)
	}
	if updated.Title != "買い物" {
		t.Errorf("title = %q, want the original 買い物", updated.Title)
	}
	if updated.Date != "2026-09-05" || updated.AssigneeUserID != fixture.partner.ID || updated.Category != models.CategoryCooking {
		t.Errorf("got %+v, want the provided date, assignee, and category applied", updated)
	}
}

func TestTaskHandler_UpdateRejectsUnknownCategory(t *testing.T) {
	fixture := setupTaskHandler(t)
	ctx := context.Background()

	task, err := fixture.taskRepo.Create(ctx, models.Task{
		GroupID:   *fixture.member.GroupID,
		Title:     "料理",
		Date:      "2026-09-03",
		Category:  models.CategoryCooking,
		CreatedBy: fixture.member.ID,
	})
	if err != nil {
		t.Fatalf("seeding task: %v", err)
	}

	if recorder := putTask(t, fixture, task.ID, `{"category":"gardening"}`); recorder.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", recorder.Code)
	}
}
