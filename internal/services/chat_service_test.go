package services

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/zephyros1603/urbanup/internal/constants"
	apperrors "github.com/zephyros1603/urbanup/internal/errors"
	"github.com/zephyros1603/urbanup/internal/models"
)

func TestChatService_GetOrCreateIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	poster := seedUser(t, env, "Paula")
	alice := seedUser(t, env, "Alice")
	task := seedTask(t, env, poster.ID)

	first, err := env.chat.GetOrCreateTaskChat(ctx, task.ID, alice.ID)
	if err != nil {
		t.Fatalf("failed to create chat: %v", err)
	}
	second, err := env.chat.GetOrCreateTaskChat(ctx, task.ID, alice.ID)
	if err != nil {
		t.Fatalf("failed to fetch chat: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("expected the same chat, got %s and %s", first.ID, second.ID)
	}

	messages, err := env.messages.ListByChat(ctx, first.ID)
	if err != nil {
		t.Fatalf("failed to list messages: %v", err)
	}
	var greetings int
	for _, m := range messages {
		if m.IsSystem() && strings.HasPrefix(m.Content, "Chat initiated") {
			greetings++
		}
	}
	if greetings != 1 {
		t.Errorf("expected exactly one initiation message, got %d", greetings)
	}
}

func TestChatService_ConcurrentCreateSingleRow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	poster := seedUser(t, env, "Paula")
	alice := seedUser(t, env, "Alice")
	task := seedTask(t, env, poster.ID)

	var wg sync.WaitGroup
	results := make(chan *models.Chat, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			chat, err := env.chat.GetOrCreateTaskChat(context.Background(), task.ID, alice.ID)
			if err != nil {
				t.Errorf("concurrent create failed: %v", err)
				return
			}
			results <- chat
		}()
	}
	wg.Wait()
	close(results)

	ids := make(map[string]struct{})
	for chat := range results {
		ids[chat.ID] = struct{}{}
	}
	if len(ids) != 1 {
		t.Errorf("expected both callers to resolve to one chat, got %d distinct", len(ids))
	}

	chats, err := env.chats.ListByUser(ctx, alice.ID)
	if err != nil {
		t.Fatalf("failed to list chats: %v", err)
	}
	if len(chats) != 1 {
		t.Errorf("expected a single chat row, got %d", len(chats))
	}
}

func TestChatService_PosterCannotChatWithSelf(t *testing.T) {
	env := newTestEnv(t)

	poster := seedUser(t, env, "Paula")
	task := seedTask(t, env, poster.ID)

	if _, err := env.chat.GetOrCreateTaskChat(context.Background(), task.ID, poster.ID); !apperrors.IsKind(err, apperrors.CodeForbidden) {
		t.Errorf("poster as fulfiller should be forbidden, got: %v", err)
	}
}

func TestChatService_NonParticipantForbidden(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	poster := seedUser(t, env, "Paula")
	alice := seedUser(t, env, "Alice")
	mallory := seedUser(t, env, "Mallory")
	task := seedTask(t, env, poster.ID)

	chat, err := env.chat.GetOrCreateTaskChat(ctx, task.ID, alice.ID)
	if err != nil {
		t.Fatalf("failed to create chat: %v", err)
	}

	if _, err := env.chat.SendMessage(ctx, chat.ID, mallory.ID, "hi", "", nil); !apperrors.IsKind(err, apperrors.CodeForbidden) {
		t.Errorf("outsider send should be forbidden, got: %v", err)
	}
	if _, err := env.chat.GetChatMessages(ctx, chat.ID, mallory.ID); !apperrors.IsKind(err, apperrors.CodeForbidden) {
		t.Errorf("outsider read should be forbidden, got: %v", err)
	}
	if err := env.chat.MarkMessagesRead(ctx, chat.ID, mallory.ID); !apperrors.IsKind(err, apperrors.CodeForbidden) {
		t.Errorf("outsider mark-read should be forbidden, got: %v", err)
	}
	if env.chat.CanAccessChat(ctx, chat.ID, mallory.ID) {
		t.Error("outsider must not pass the subscription gate")
	}
	if !env.chat.CanAccessChat(ctx, chat.ID, poster.ID) {
		t.Error("poster must pass the subscription gate")
	}

	before, err := env.messages.ListByChat(ctx, chat.ID)
	if err != nil {
		t.Fatalf("failed to list messages: %v", err)
	}
	for _, m := range before {
		if m.SentBy(mallory.ID) {
			t.Error("rejected message must not be persisted")
		}
	}
}

func TestChatService_ContentLimits(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	poster := seedUser(t, env, "Paula")
	alice := seedUser(t, env, "Alice")
	task := seedTask(t, env, poster.ID)

	chat, err := env.chat.GetOrCreateTaskChat(ctx, task.ID, alice.ID)
	if err != nil {
		t.Fatalf("failed to create chat: %v", err)
	}

	if _, err := env.chat.SendMessage(ctx, chat.ID, alice.ID, "", "", nil); !apperrors.IsKind(err, apperrors.CodeValidation) {
		t.Errorf("empty content should be a validation error, got: %v", err)
	}

	tooLong := strings.Repeat("x", constants.MaxMessageContentLength+1)
	if _, err := env.chat.SendMessage(ctx, chat.ID, alice.ID, tooLong, "", nil); !apperrors.IsKind(err, apperrors.CodeValidation) {
		t.Errorf("oversized content should be a validation error, got: %v", err)
	}

	exact := strings.Repeat("x", constants.MaxMessageContentLength)
	msg, err := env.chat.SendMessage(ctx, chat.ID, alice.ID, exact, "", nil)
	if err != nil {
		t.Fatalf("content at the limit should pass: %v", err)
	}
	if msg.Type != constants.MessageText {
		t.Errorf("expected default type %s, got %s", constants.MessageText, msg.Type)
	}

	// The limit counts characters, not bytes: 600 umlauts are 1200 bytes but
	// well within the cap.
	multibyte := strings.Repeat("äöü", 200)
	if _, err := env.chat.SendMessage(ctx, chat.ID, alice.ID, multibyte, "", nil); err != nil {
		t.Errorf("600-character multibyte content should pass: %v", err)
	}

	exactMultibyte := strings.Repeat("ü", constants.MaxMessageContentLength)
	if _, err := env.chat.SendMessage(ctx, chat.ID, alice.ID, exactMultibyte, "", nil); err != nil {
		t.Errorf("multibyte content at the limit should pass: %v", err)
	}

	tooManyRunes := strings.Repeat("ä", constants.MaxMessageContentLength+1)
	if _, err := env.chat.SendMessage(ctx, chat.ID, alice.ID, tooManyRunes, "", nil); !apperrors.IsKind(err, apperrors.CodeValidation) {
		t.Errorf("1001 multibyte characters should be a validation error, got: %v", err)
	}
}

func TestChatService_ChatBoundToTaskParties(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	poster := seedUser(t, env, "Paula")
	alice := seedUser(t, env, "Alice")
	bob := seedUser(t, env, "Bob")
	task := seedTask(t, env, poster.ID)

	if _, err := env.chat.GetOrCreateTaskChat(ctx, task.ID, alice.ID); err != nil {
		t.Fatalf("failed to create chat: %v", err)
	}

	// The task's single chat belongs to alice; bob cannot reach it.
	if _, err := env.chat.GetOrCreateTaskChat(ctx, task.ID, bob.ID); !apperrors.IsKind(err, apperrors.CodeForbidden) {
		t.Errorf("second candidate must not reach an existing chat, got: %v", err)
	}

	app, err := env.matching.ApplyForTask(ctx, task.ID, alice.ID, "", nil, nil)
	if err != nil {
		t.Fatalf("alice failed to apply: %v", err)
	}
	if _, err := env.matching.AcceptApplication(ctx, task.ID, app.ID, poster.ID); err != nil {
		t.Fatalf("failed to accept: %v", err)
	}

	// With a fulfiller bound the channel stays alice's.
	if _, err := env.chat.GetOrCreateTaskChat(ctx, task.ID, bob.ID); !apperrors.IsKind(err, apperrors.CodeForbidden) {
		t.Errorf("non-fulfiller must not reach the chat after acceptance, got: %v", err)
	}

	if _, err := env.matching.MarkTaskCompleted(ctx, task.ID, alice.ID); err != nil {
		t.Fatalf("failed to complete: %v", err)
	}
	if _, err := env.matching.ConfirmTaskCompletion(ctx, task.ID, poster.ID); err != nil {
		t.Fatalf("failed to confirm: %v", err)
	}

	// Terminal task: participants still see the history.
	chat, err := env.chat.GetOrCreateTaskChat(ctx, task.ID, alice.ID)
	if err != nil {
		t.Fatalf("participant must reach the closed chat: %v", err)
	}
	if chat.IsActive {
		t.Error("expected the chat to be read-only")
	}
}

func TestChatService_NoNewChatForTerminalTask(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	poster := seedUser(t, env, "Paula")
	alice := seedUser(t, env, "Alice")
	task := seedTask(t, env, poster.ID)

	if _, err := env.matching.CancelTask(ctx, task.ID, poster.ID, ""); err != nil {
		t.Fatalf("failed to cancel: %v", err)
	}

	if _, err := env.chat.GetOrCreateTaskChat(ctx, task.ID, alice.ID); !apperrors.IsKind(err, apperrors.CodeInvalidState) {
		t.Errorf("opening a chat on a cancelled task should be invalid state, got: %v", err)
	}
}

func TestChatService_ClosedChatRejectsSend(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	poster := seedUser(t, env, "Paula")
	alice := seedUser(t, env, "Alice")
	task := seedTask(t, env, poster.ID)

	chat, err := env.chat.GetOrCreateTaskChat(ctx, task.ID, alice.ID)
	if err != nil {
		t.Fatalf("failed to create chat: %v", err)
	}

	env.chat.CloseTaskChat(ctx, task.ID)

	if _, err := env.chat.SendMessage(ctx, chat.ID, alice.ID, "anyone there?", "", nil); !apperrors.IsKind(err, apperrors.CodeInvalidState) {
		t.Errorf("sending into a closed chat should be invalid state, got: %v", err)
	}

	// History stays readable after closing.
	if _, err := env.chat.GetChatMessages(ctx, chat.ID, alice.ID); err != nil {
		t.Errorf("closed chat history should remain readable: %v", err)
	}
}

func TestChatService_MessageOrderingAndRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	poster := seedUser(t, env, "Paula")
	alice := seedUser(t, env, "Alice")
	task := seedTask(t, env, poster.ID)

	chat, err := env.chat.GetOrCreateTaskChat(ctx, task.ID, alice.ID)
	if err != nil {
		t.Fatalf("failed to create chat: %v", err)
	}

	sent, err := env.chat.SendMessage(ctx, chat.ID, alice.ID, "When works for you?",
		constants.MessageText, []string{"https://cdn.example.com/a.jpg", "https://cdn.example.com/b.jpg"})
	if err != nil {
		t.Fatalf("failed to send: %v", err)
	}
	if _, err := env.chat.SendMessage(ctx, chat.ID, poster.ID, "Saturday morning", "", nil); err != nil {
		t.Fatalf("failed to reply: %v", err)
	}

	messages, err := env.chat.GetChatMessages(ctx, chat.ID, poster.ID)
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	for i := 1; i < len(messages); i++ {
		if messages[i].CreatedAt.Before(messages[i-1].CreatedAt) {
			t.Error("messages must be ordered by creation time")
		}
	}

	var found *models.Message
	for i := range messages {
		if messages[i].ID == sent.ID {
			found = &messages[i]
		}
	}
	if found == nil {
		t.Fatal("sent message missing from history")
	}
	if urls := found.AttachmentURLs(); len(urls) != 2 {
		t.Errorf("expected 2 attachment urls, got %d", len(urls))
	}
	if !found.SentBy(alice.ID) {
		t.Error("expected alice as sender")
	}
}

func TestChatService_ReadStateAndCounts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	poster := seedUser(t, env, "Paula")
	alice := seedUser(t, env, "Alice")
	task := seedTask(t, env, poster.ID)

	chat, err := env.chat.GetOrCreateTaskChat(ctx, task.ID, alice.ID)
	if err != nil {
		t.Fatalf("failed to create chat: %v", err)
	}

	for _, content := range []string{"one", "two", "three"} {
		if _, err := env.chat.SendMessage(ctx, chat.ID, alice.ID, content, "", nil); err != nil {
			t.Fatalf("failed to send: %v", err)
		}
	}

	unread, err := env.chat.UnreadMessageCount(ctx, poster.ID)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if unread != 3 {
		t.Errorf("expected 3 unread for poster, got %d", unread)
	}

	// The chat listing carries the same per-chat count.
	summaries, err := env.chat.GetUserChats(ctx, poster.ID)
	if err != nil {
		t.Fatalf("listing chats failed: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("expected one chat, got %d", len(summaries))
	}
	if summaries[0].UnreadCount != 3 {
		t.Errorf("expected unread count 3 in the listing, got %d", summaries[0].UnreadCount)
	}

	// The sender's own messages never count against them; system messages are
	// born read.
	unread, err = env.chat.UnreadMessageCount(ctx, alice.ID)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if unread != 0 {
		t.Errorf("expected 0 unread for alice, got %d", unread)
	}

	if err := env.chat.MarkMessagesRead(ctx, chat.ID, poster.ID); err != nil {
		t.Fatalf("mark read failed: %v", err)
	}
	unread, err = env.chat.UnreadMessageCount(ctx, poster.ID)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if unread != 0 {
		t.Errorf("expected 0 unread after mark read, got %d", unread)
	}

	// Idempotent: a second pass flips nothing and still succeeds.
	if err := env.chat.MarkMessagesRead(ctx, chat.ID, poster.ID); err != nil {
		t.Errorf("repeated mark read should be a no-op, got: %v", err)
	}
}
