package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/zephyros1603/urbanup/internal/constants"
	apperrors "github.com/zephyros1603/urbanup/internal/errors"
)

func TestNotificationService_EnqueueAndDrain(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	poster := seedUser(t, env, "Paula")
	task := seedTask(t, env, poster.ID)

	env.notifier.ApplicationAccepted(poster.ID, task)
	env.notifier.ReviewRequest(poster.ID, task)

	// Shutdown drains the queue, so everything enqueued so far is persisted.
	env.notifier.Shutdown(ctx)

	// seedTask enqueued a TaskPosted notification as well.
	notifications, err := env.notifier.ListForUser(ctx, poster.ID, 20, 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(notifications) != 3 {
		t.Fatalf("expected 3 notifications, got %d", len(notifications))
	}
	for _, n := range notifications {
		if n.IsRead {
			t.Error("new notifications must start unread")
		}
		if n.TaskID == nil || *n.TaskID != task.ID {
			t.Error("expected notifications to reference the task")
		}
	}

	unread, err := env.notifier.UnreadCount(ctx, poster.ID)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if unread != 3 {
		t.Errorf("expected 3 unread, got %d", unread)
	}
}

func TestNotificationService_EnqueueAfterShutdownDropped(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	poster := seedUser(t, env, "Paula")
	task := seedTask(t, env, poster.ID)

	env.notifier.Shutdown(ctx)
	env.notifier.TaskCompleted(poster.ID, task)

	notifications, err := env.notifier.ListForUser(ctx, poster.ID, 20, 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	for _, n := range notifications {
		if n.Kind == constants.NotifyTaskCompleted {
			t.Error("enqueue after shutdown must be dropped")
		}
	}
}

func TestNotificationService_EnqueueDuringShutdownSafe(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	poster := seedUser(t, env, "Paula")
	task := seedTask(t, env, poster.ID)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				env.notifier.TaskCompleted(poster.ID, task)
			}
		}()
	}

	// Racing the producers must neither panic nor deadlock.
	env.notifier.Shutdown(ctx)
	wg.Wait()
}

func TestNotificationService_ReadState(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	poster := seedUser(t, env, "Paula")
	other := seedUser(t, env, "Olga")
	seedTask(t, env, poster.ID)
	env.notifier.Shutdown(ctx)

	notifications, err := env.notifier.ListForUser(ctx, poster.ID, 20, 0)
	if err != nil || len(notifications) == 0 {
		t.Fatalf("expected notifications, got %d (err %v)", len(notifications), err)
	}
	target := notifications[0]

	// A notification can only be acknowledged by its owner.
	if err := env.notifier.MarkRead(ctx, target.ID, other.ID); !apperrors.IsKind(err, apperrors.CodeNotFound) {
		t.Errorf("foreign mark-read should be not found, got: %v", err)
	}

	if err := env.notifier.MarkRead(ctx, target.ID, poster.ID); err != nil {
		t.Fatalf("mark read failed: %v", err)
	}
	unread, err := env.notifier.UnreadCount(ctx, poster.ID)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if unread != 0 {
		t.Errorf("expected 0 unread, got %d", unread)
	}

	marked, err := env.notifier.MarkAllRead(ctx, poster.ID)
	if err != nil {
		t.Fatalf("mark all failed: %v", err)
	}
	if marked != 0 {
		t.Errorf("expected nothing left to flip, got %d", marked)
	}
}

func TestNotificationService_RetentionSweep(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	poster := seedUser(t, env, "Paula")
	seedTask(t, env, poster.ID)
	env.notifier.Shutdown(ctx)

	if _, err := env.notifier.MarkAllRead(ctx, poster.ID); err != nil {
		t.Fatalf("mark all failed: %v", err)
	}

	// Unread notifications survive the sweep regardless of age; read ones past
	// the window are removed.
	deleted, err := env.notifier.DeleteOlderThan(ctx, -time.Second)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if deleted == 0 {
		t.Error("expected the read notification to be swept")
	}

	remaining, err := env.notifier.ListForUser(ctx, poster.ID, 20, 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(remaining) != 0 {
		t.Errorf("expected empty inbox after sweep, got %d", len(remaining))
	}
}
