package board

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"mentorhub-api/internal/models"
	"mentorhub-api/internal/policy"
	"mentorhub-api/internal/realtime"
	"mentorhub-api/internal/store"
	"mentorhub-api/internal/testutil"

	"github.com/stretchr/testify/require"
)

// recordingClient captures everything the hub broadcasts.
type recordingClient struct {
	mu       sync.Mutex
	messages [][]byte
}

func (r *recordingClient) Send(message []byte) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
	return true
}

func (r *recordingClient) Close() {}

func (r *recordingClient) events(t *testing.T) []realtime.Event {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]realtime.Event, 0, len(r.messages))
	for _, m := range r.messages {
		var evt realtime.Event
		require.NoError(t, json.Unmarshal(m, &evt))
		out = append(out, evt)
	}
	return out
}

type fixture struct {
	svc     *Service
	store   *store.TaskStore
	client  *recordingClient
	student *models.User
	mentor  *models.User
	coach   *models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)

	taskStore := store.NewTaskStore(db)
	hub := realtime.NewHub()
	client := &recordingClient{}
	hub.Register(client)

	f := &fixture{
		svc:    NewService(taskStore, hub),
		store:  taskStore,
		client: client,
	}
	f.student = f.seedUser(t, "sam", models.RoleStudent)
	f.mentor = f.seedUser(t, "mira", models.RoleMentor)
	f.coach = f.seedUser(t, "cole", models.RoleCoach)
	return f
}

func (f *fixture) seedUser(t *testing.T, name string, role models.Role) *models.User {
	t.Helper()
	u := &models.User{Name: name, Email: name + "@example.com", Password: "x", Role: role}
	require.NoError(t, f.store.CreateUser(context.Background(), u))
	return u
}

func actorFor(u *models.User) Actor {
	return Actor{UserID: u.ID, Role: u.Role}
}

func TestCreateTask_PolicyGrid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	targets := map[models.Role]*models.User{
		models.RoleStudent: f.student,
		models.RoleMentor:  f.mentor,
		models.RoleCoach:   f.coach,
	}
	allowed := map[models.Role][]models.Role{
		models.RoleStudent: {models.RoleStudent},
		models.RoleMentor:  {models.RoleStudent, models.RoleMentor},
		models.RoleCoach:   {models.RoleStudent, models.RoleMentor, models.RoleCoach},
	}

	for actorRole, actorUser := range targets {
		for targetRole, targetUser := range targets {
			_, err := f.svc.CreateTask(ctx, actorFor(actorUser), CreateTaskInput{
				Title:      "grid",
				AssigneeID: targetUser.ID,
			})

			permitted := false
			for _, r := range allowed[actorRole] {
				if r == targetRole {
					permitted = true
				}
			}
			if permitted {
				require.NoError(t, err, "%s -> %s", actorRole, targetRole)
			} else {
				var denied *policy.DeniedError
				require.True(t, errors.As(err, &denied), "%s -> %s", actorRole, targetRole)
			}
		}
	}
}

func TestCreateTask_DefaultsAndEvent(t *testing.T) {
	// Scenario A: student assigns to a fellow student with defaults.
	f := newFixture(t)
	other := f.seedUser(t, "sana", models.RoleStudent)

	task, err := f.svc.CreateTask(context.Background(), actorFor(f.student), CreateTaskInput{
		Title:      "Peer review notes",
		AssigneeID: other.ID,
	})
	require.NoError(t, err)
	require.Equal(t, models.StatusToDo, task.Status)
	require.Equal(t, models.PriorityMedium, task.Priority)
	require.Equal(t, f.student.ID, task.CreatedByID)

	events := f.client.events(t)
	require.Len(t, events, 1)
	require.Equal(t, realtime.EventTaskCreated, events[0].Type)

	var payload models.Task
	require.NoError(t, json.Unmarshal(events[0].Payload, &payload))
	require.Equal(t, task.ID, payload.ID)
}

func TestCreateTask_ForbiddenWritesNothing(t *testing.T) {
	// Scenario B: mentor -> coach is rejected, no task persisted, no event.
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateTask(ctx, actorFor(f.mentor), CreateTaskInput{
		Title:      "Coach the coach",
		AssigneeID: f.coach.ID,
	})
	var denied *policy.DeniedError
	require.True(t, errors.As(err, &denied))
	require.Equal(t, models.RoleMentor, denied.ActorRole)
	require.Equal(t, models.RoleCoach, denied.TargetRole)

	tasks, err := f.svc.ListTasks(ctx, store.TaskFilter{})
	require.NoError(t, err)
	require.Empty(t, tasks)
	require.Empty(t, f.client.events(t))
}

func TestCreateTask_ValidationFailurePublishesNothing(t *testing.T) {
	// P4: store write failure means no event is observed.
	f := newFixture(t)

	_, err := f.svc.CreateTask(context.Background(), actorFor(f.coach), CreateTaskInput{
		Title:      "",
		AssigneeID: f.student.ID,
	})
	var verr *store.ValidationError
	require.True(t, errors.As(err, &verr))
	require.Empty(t, f.client.events(t))
}

func TestMoveTask_AnyActorAnyColumn(t *testing.T) {
	// P2 + Scenario C: To Do -> Done directly, by a student, updatedAt bumped.
	f := newFixture(t)
	ctx := context.Background()

	task, err := f.svc.CreateTask(ctx, actorFor(f.coach), CreateTaskInput{
		Title:      "Jump the columns",
		AssigneeID: f.coach.ID,
	})
	require.NoError(t, err)
	before := task.UpdatedAt

	for _, status := range models.Statuses {
		moved, err := f.svc.MoveTask(ctx, actorFor(f.student), task.ID, status)
		require.NoError(t, err)
		require.Equal(t, status, moved.Status)
	}

	moved, err := f.svc.MoveTask(ctx, actorFor(f.student), task.ID, models.StatusDone)
	require.NoError(t, err)
	require.Equal(t, models.StatusDone, moved.Status)
	require.True(t, moved.UpdatedAt.After(before))

	events := f.client.events(t)
	// 1 created + 5 moved
	require.Len(t, events, 6)
	require.Equal(t, realtime.EventTaskMoved, events[len(events)-1].Type)
}

func TestMoveTask_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.MoveTask(context.Background(), actorFor(f.coach), "ghost", models.StatusDone)
	require.ErrorIs(t, err, store.ErrTaskNotFound)
	require.Empty(t, f.client.events(t))
}

func TestUpdateTask_AssigneeChangeReruns_Policy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	task, err := f.svc.CreateTask(ctx, actorFor(f.mentor), CreateTaskInput{
		Title:      "Mentee work",
		AssigneeID: f.student.ID,
	})
	require.NoError(t, err)

	// Reassigning to a coach violates the mentor's rule.
	_, err = f.svc.UpdateTask(ctx, actorFor(f.mentor), task.ID, UpdateTaskInput{
		Title:      "Mentee work",
		AssigneeID: f.coach.ID,
		Status:     task.Status,
		Priority:   task.Priority,
	})
	var denied *policy.DeniedError
	require.True(t, errors.As(err, &denied))

	// Keeping the same assignee skips the policy check even for a student
	// actor editing a mentor-created task.
	updated, err := f.svc.UpdateTask(ctx, actorFor(f.student), task.ID, UpdateTaskInput{
		Title:    "Mentee work, clarified",
		Status:   models.StatusInProgress,
		Priority: models.PriorityHigh,
	})
	require.NoError(t, err)
	require.Equal(t, "Mentee work, clarified", updated.Title)
	require.Equal(t, models.StatusInProgress, updated.Status)
	require.Equal(t, f.student.ID, updated.AssigneeID)
	require.Equal(t, f.mentor.ID, updated.CreatedByID)
}

func TestUpdateTask_LastWriteWins(t *testing.T) {
	// Scenario D: two full updates on the same id; the later one sticks.
	f := newFixture(t)
	ctx := context.Background()

	task, err := f.svc.CreateTask(ctx, actorFor(f.coach), CreateTaskInput{
		Title:      "Contested",
		AssigneeID: f.student.ID,
	})
	require.NoError(t, err)

	base := UpdateTaskInput{Status: task.Status, Priority: task.Priority}

	first := base
	first.Title = "from client one"
	_, err = f.svc.UpdateTask(ctx, actorFor(f.mentor), task.ID, first)
	require.NoError(t, err)

	second := base
	second.Title = "from client two"
	_, err = f.svc.UpdateTask(ctx, actorFor(f.coach), task.ID, second)
	require.NoError(t, err)

	got, err := f.svc.GetTask(ctx, task.ID)
	require.NoError(t, err)
	require.Equal(t, "from client two", got.Title)
}

func TestDeleteTask_OnceThenNotFound(t *testing.T) {
	// P3: double delete is an error, and only one taskDeleted goes out.
	f := newFixture(t)
	ctx := context.Background()

	task, err := f.svc.CreateTask(ctx, actorFor(f.coach), CreateTaskInput{
		Title:      "Ephemeral",
		AssigneeID: f.student.ID,
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteTask(ctx, actorFor(f.student), task.ID))
	require.ErrorIs(t, f.svc.DeleteTask(ctx, actorFor(f.student), task.ID), store.ErrTaskNotFound)

	events := f.client.events(t)
	require.Len(t, events, 2) // created + deleted
	require.Equal(t, realtime.EventTaskDeleted, events[1].Type)

	var payload realtime.DeletedPayload
	require.NoError(t, json.Unmarshal(events[1].Payload, &payload))
	require.Equal(t, task.ID, payload.ID)
}

func TestAttachmentsAndVoiceNotes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	task, err := f.svc.CreateTask(ctx, actorFor(f.coach), CreateTaskInput{
		Title:      "With media",
		AssigneeID: f.student.ID,
	})
	require.NoError(t, err)

	withAtt, err := f.svc.AddAttachment(ctx, actorFor(f.mentor), task.ID, models.Attachment{
		Name: "notes.pdf", URL: "/uploads/tasks/notes.pdf", ContentType: "application/pdf", Size: 2048,
	})
	require.NoError(t, err)
	require.Len(t, withAtt.Attachments, 1)
	require.NotEmpty(t, withAtt.Attachments[0].ID)

	withNote, err := f.svc.AddVoiceNote(ctx, actorFor(f.mentor), task.ID, models.VoiceNote{
		URL: "/uploads/tasks/note.webm", Duration: 12, Transcript: "remember the deadline",
	})
	require.NoError(t, err)
	require.Len(t, withNote.VoiceNotes, 1)
	require.Equal(t, f.mentor.ID, withNote.VoiceNotes[0].UploadedBy)

	removed, err := f.svc.RemoveAttachment(ctx, actorFor(f.mentor), task.ID, withAtt.Attachments[0].ID)
	require.NoError(t, err)
	require.Empty(t, removed.Attachments)

	_, err = f.svc.RemoveAttachment(ctx, actorFor(f.mentor), task.ID, "missing")
	var verr *store.ValidationError
	require.True(t, errors.As(err, &verr))
}

func TestStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, status := range []models.TaskStatus{models.StatusToDo, models.StatusInProgress, models.StatusDone, models.StatusDone} {
		_, err := f.svc.CreateTask(ctx, actorFor(f.coach), CreateTaskInput{
			Title:      "stat",
			AssigneeID: f.student.ID,
			Status:     status,
		})
		require.NoError(t, err)
	}

	stats, err := f.svc.Stats(ctx, f.student.ID)
	require.NoError(t, err)
	require.EqualValues(t, 2, stats.ActiveTasks)
	require.EqualValues(t, 50, stats.CompletionRate)
	require.EqualValues(t, 4, stats.Counts.Total)
}
