package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"ws-chatt/backend/ai"
	"ws-chatt/backend/chat/models"
	"ws-chatt/backend/chat/repository"
	"ws-chatt/backend/pkg/clock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubResponder is a scripted ai.Responder. Converse replies with the
// configured function, or echoes the prompt when none is set.
type stubResponder struct {
	mu           sync.Mutex
	converseFn   func(prompt, systemInstruction string) (*ai.ConverseResult, error)
	instructions []string
	ttsCalls     int
}

func (r *stubResponder) Converse(ctx context.Context, prompt, systemInstruction string) (*ai.ConverseResult, error) {
	r.mu.Lock()
	r.instructions = append(r.instructions, systemInstruction)
	fn := r.converseFn
	r.mu.Unlock()

	if fn != nil {
		return fn(prompt, systemInstruction)
	}
	return &ai.ConverseResult{Text: "echo: " + prompt}, nil
}

func (r *stubResponder) CreateImage(ctx context.Context, prompt string) (string, error) {
	return "data:image/png;base64,stub", nil
}

func (r *stubResponder) EditImage(ctx context.Context, prompt, imageBase64, mimeType string) (string, error) {
	return "data:image/png;base64,edited", nil
}

func (r *stubResponder) CreateVideo(ctx context.Context, prompt, imageBase64, mimeType, aspectRatio string) (string, error) {
	return "https://example.com/video.mp4", nil
}

func (r *stubResponder) SynthesizeSpeech(ctx context.Context, text string) (string, error) {
	r.mu.Lock()
	r.ttsCalls++
	r.mu.Unlock()
	return "base64-audio-for-" + text, nil
}

func (r *stubResponder) systemInstructions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.instructions...)
}

func newTestService(t *testing.T, store repository.Store, responder ai.Responder) *ChatService {
	t.Helper()
	if store == nil {
		store = repository.NewMemoryStore()
	}
	if responder == nil {
		responder = &stubResponder{}
	}
	return NewChatService(repository.NewSnapshotRepository(store), responder, Options{
		Clock: clock.NewInstant(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)),
	})
}

func TestNewServiceSeedsDefaultChat(t *testing.T) {
	svc := newTestService(t, nil, nil)

	chats := svc.Chats()
	require.Len(t, chats, 1)
	assert.Equal(t, "ai-assistant-chat", chats[0].ID)
	assert.Equal(t, chats[0].ID, svc.ActiveChatID())
	require.Len(t, chats[0].Messages, 1)
	assert.Equal(t, "welcome-message", chats[0].Messages[0].ID)
	assert.Equal(t, models.SenderAI, chats[0].Messages[0].Sender)
}

func TestNewServiceRecoversFromMalformedSnapshot(t *testing.T) {
	store := repository.NewMemoryStore()
	require.NoError(t, store.Set(repository.SnapshotKey, []byte("{not json")))

	svc := newTestService(t, store, nil)

	chats := svc.Chats()
	require.Len(t, chats, 1)
	assert.Equal(t, "ai-assistant-chat", chats[0].ID)
}

func TestNewServiceFixesDanglingActiveChat(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := newTestService(t, store, nil)
	svc.CreateChat(models.ChatBlueprint{Name: "Travel Guide"})

	// Corrupt the pointer but keep the chats intact.
	snapshot, err := repository.NewSnapshotRepository(store).LoadSnapshot()
	require.NoError(t, err)
	snapshot.ActiveChatID = "gone"
	require.NoError(t, repository.NewSnapshotRepository(store).SaveSnapshot(snapshot))

	restored := newTestService(t, store, nil)
	assert.Equal(t, restored.Chats()[0].ID, restored.ActiveChatID())
}

func TestSendMessageLifecycle(t *testing.T) {
	svc := newTestService(t, nil, nil)

	svc.SendMessage(context.Background(), "hello there", nil)

	chat := svc.ActiveChat()
	require.NotNil(t, chat)
	require.Len(t, chat.Messages, 3) // welcome, user, reply

	user := chat.Messages[1]
	assert.Equal(t, models.SenderUser, user.Sender)
	assert.Equal(t, UserID, user.SenderID)
	assert.Equal(t, "hello there", user.Text)
	// The reply arriving marks everything the user sent as read.
	assert.Equal(t, models.StatusRead, user.Status)

	reply := chat.Messages[2]
	assert.Equal(t, models.SenderAI, reply.Sender)
	assert.Equal(t, chat.ID, reply.SenderID)
	assert.Equal(t, "echo: hello there", reply.Text)

	assert.False(t, svc.IsTyping())
}

func TestSendMessageIgnoresBlankInput(t *testing.T) {
	svc := newTestService(t, nil, nil)

	svc.SendMessage(context.Background(), "   \n\t", nil)

	require.Len(t, svc.ActiveChat().Messages, 1)
}

func TestSendMessageWithNoActiveChat(t *testing.T) {
	svc := newTestService(t, nil, nil)
	svc.SelectChat("")

	svc.SendMessage(context.Background(), "anyone home?", nil)

	require.Len(t, svc.Chats()[0].Messages, 1)
}

func TestSendMessageResponderFailure(t *testing.T) {
	responder := &stubResponder{
		converseFn: func(prompt, systemInstruction string) (*ai.ConverseResult, error) {
			return nil, errors.New("backend unavailable")
		},
	}
	svc := newTestService(t, nil, responder)

	svc.SendMessage(context.Background(), "hello?", nil)

	chat := svc.ActiveChat()
	require.Len(t, chat.Messages, 3)

	user := chat.Messages[1]
	// No reply means no read receipt; delivery stops at delivered.
	assert.Equal(t, models.StatusDelivered, user.Status)

	apology := chat.Messages[2]
	assert.Equal(t, models.SenderAI, apology.Sender)
	assert.Equal(t, "I'm sorry, something went wrong.", apology.Text)
	assert.False(t, svc.IsTyping())
}

func TestSendMessageReplyAugmentsPrompt(t *testing.T) {
	var gotPrompt string
	responder := &stubResponder{
		converseFn: func(prompt, systemInstruction string) (*ai.ConverseResult, error) {
			gotPrompt = prompt
			return &ai.ConverseResult{Text: "ok"}, nil
		},
	}
	svc := newTestService(t, nil, responder)

	svc.SendMessage(context.Background(), "yes please", &models.ReplyRef{
		ID:     "welcome-message",
		Sender: models.SenderAI,
		Text:   "How can I help?",
	})

	assert.Equal(t,
		`The user is replying to a message that said: "How can I help?". Their reply is: "yes please". Please respond accordingly.`,
		gotPrompt)

	chat := svc.ActiveChat()
	require.NotNil(t, chat.Messages[1].ReplyTo)
	assert.Equal(t, "welcome-message", chat.Messages[1].ReplyTo.ID)
}

func TestGroupRoundRobin(t *testing.T) {
	responder := &stubResponder{}
	store := repository.NewMemoryStore()
	svc := newTestService(t, store, responder)

	svc.CreateGroup([]models.Member{
		{ID: "m-alice", Name: "Alice", SystemInstruction: "persona-alice"},
		{ID: "m-bob", Name: "Bob", SystemInstruction: "persona-bob"},
	}, "Study Group")

	ctx := context.Background()
	svc.SendMessage(ctx, "first", nil)
	svc.SendMessage(ctx, "second", nil)
	svc.SendMessage(ctx, "third", nil)

	chat := svc.ActiveChat()
	var senders []string
	for _, msg := range chat.Messages {
		if msg.Sender == models.SenderAI {
			senders = append(senders, msg.SenderName)
		}
	}
	assert.Equal(t, []string{"Alice", "Bob", "Alice"}, senders)
	assert.Equal(t, []string{"persona-alice", "persona-bob", "persona-alice"}, responder.systemInstructions())

	// The cursor survives a restart from the same store.
	restored := newTestService(t, store, responder)
	restored.SendMessage(ctx, "fourth", nil)

	msgs := restored.ActiveChat().Messages
	assert.Equal(t, "Bob", msgs[len(msgs)-1].SenderName)
}

func TestGroupWithoutAIMembersFallsBack(t *testing.T) {
	responder := &stubResponder{}
	svc := newTestService(t, nil, responder)

	svc.CreateGroup(nil, "Empty Group")
	svc.SendMessage(context.Background(), "hello", nil)

	msgs := svc.ActiveChat().Messages
	last := msgs[len(msgs)-1]
	assert.Equal(t, "ai-assistant", last.SenderID)
	assert.Equal(t, "AI Assistant", last.SenderName)
}

func TestCreateChatDeduplicatesByName(t *testing.T) {
	svc := newTestService(t, nil, nil)

	first := svc.CreateChat(models.ChatBlueprint{Name: "Travel Guide", SystemInstruction: "guide"})
	svc.SelectChat("ai-assistant-chat")
	second := svc.CreateChat(models.ChatBlueprint{Name: "Travel Guide"})

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.ID, svc.ActiveChatID())
	assert.Len(t, svc.Chats(), 2)
}

func TestCreateGroupShape(t *testing.T) {
	svc := newTestService(t, nil, nil)

	group := svc.CreateGroup([]models.Member{
		{ID: "m-alice", Name: "Alice"},
	}, "Weekend Plans")

	assert.True(t, group.IsGroup)
	assert.Equal(t, -1, group.LastResponderIndex)
	require.Len(t, group.Members, 2)
	assert.True(t, group.Members[0].IsUser)
	assert.Equal(t, UserID, group.Members[0].ID)
	assert.Equal(t, "Alice", group.Members[1].Name)
	assert.Equal(t, group.ID, svc.ActiveChatID())
}

func TestSelectChatUnknownIDDeselects(t *testing.T) {
	svc := newTestService(t, nil, nil)

	svc.SelectChat("no-such-chat")
	assert.Empty(t, svc.ActiveChatID())
	assert.Nil(t, svc.ActiveChat())

	svc.SelectChat("ai-assistant-chat")
	assert.Equal(t, "ai-assistant-chat", svc.ActiveChatID())
}

func TestClearChat(t *testing.T) {
	svc := newTestService(t, nil, nil)
	svc.SendMessage(context.Background(), "hello", nil)
	require.NotEmpty(t, svc.ActiveChat().Messages)

	svc.ClearChat()

	assert.Empty(t, svc.ActiveChat().Messages)
}

func TestToggleMute(t *testing.T) {
	svc := newTestService(t, nil, nil)

	assert.False(t, svc.IsMuted())
	assert.True(t, svc.ToggleMute())
	assert.False(t, svc.ToggleMute())
}

func TestAddUserContactPersists(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := newTestService(t, store, nil)

	contact := svc.AddUserContact("Dana")
	assert.NotEmpty(t, contact.ID)

	restored := newTestService(t, store, nil)
	contacts := restored.Contacts()
	require.Len(t, contacts, 1)
	assert.Equal(t, "Dana", contacts[0].Name)
}

func TestDeleteMessageForMeRemovesAndKeepsOrder(t *testing.T) {
	svc := newTestService(t, nil, nil)
	ctx := context.Background()
	svc.SendMessage(ctx, "one", nil)
	svc.SendMessage(ctx, "two", nil)

	chat := svc.ActiveChat()
	require.Len(t, chat.Messages, 5)
	target := chat.Messages[1] // "one"

	svc.DeleteMessageForMe(ctx, target.ID)

	after := svc.ActiveChat().Messages
	require.Len(t, after, 4)
	var ids []string
	for _, msg := range after {
		ids = append(ids, msg.ID)
		assert.NotEqual(t, target.ID, msg.ID)
	}
	assert.Equal(t, []string{chat.Messages[0].ID, chat.Messages[2].ID, chat.Messages[3].ID, chat.Messages[4].ID}, ids)
}

func TestDeleteMessageForEveryoneTombstones(t *testing.T) {
	svc := newTestService(t, nil, nil)
	svc.SendMessage(context.Background(), "delete me", nil)

	chat := svc.ActiveChat()
	target := chat.Messages[1]

	svc.DeleteMessageForEveryone(target.ID)
	svc.DeleteMessageForEveryone(target.ID) // idempotent

	after := svc.ActiveChat()
	require.Len(t, after.Messages, len(chat.Messages))
	stub := after.FindMessage(target.ID)
	require.NotNil(t, stub)
	assert.True(t, stub.DeletedForEveryone)
	assert.Empty(t, stub.Text)
	assert.Equal(t, target.Sender, stub.Sender)
	assert.Equal(t, target.Status, stub.Status)
}

func TestSendVoiceMessage(t *testing.T) {
	svc := newTestService(t, nil, nil)

	id := svc.SendVoiceMessage("base64-voice", 3.5)
	require.NotEmpty(t, id)

	msg := svc.ActiveChat().FindMessage(id)
	require.NotNil(t, msg)
	assert.Equal(t, models.SenderUser, msg.Sender)
	assert.Equal(t, models.StatusSent, msg.Status)
	assert.Equal(t, "base64-voice", msg.AudioData)
	assert.Equal(t, 3.5, msg.Duration)
}

func TestPlayMessageAudioSynthesizesOnceAndCaches(t *testing.T) {
	responder := &stubResponder{}
	svc := newTestService(t, nil, responder)

	audio, err := svc.PlayMessageAudio(context.Background(), "welcome-message")
	require.NoError(t, err)
	assert.NotEmpty(t, audio)
	assert.Equal(t, 1, responder.ttsCalls)

	// Second playback hits the audio cached on the message.
	again, err := svc.PlayMessageAudio(context.Background(), "welcome-message")
	require.NoError(t, err)
	assert.Equal(t, audio, again)
	assert.Equal(t, 1, responder.ttsCalls)

	msg := svc.ActiveChat().FindMessage("welcome-message")
	assert.False(t, msg.IsPlayingAudio)
	assert.Equal(t, audio, msg.AudioData)
}

func TestPlayMessageAudioUnknownMessage(t *testing.T) {
	svc := newTestService(t, nil, nil)

	_, err := svc.PlayMessageAudio(context.Background(), "nope")
	assert.Error(t, err)
}

func TestImageGenerationResolvesPlaceholder(t *testing.T) {
	svc := newTestService(t, nil, nil)

	id := svc.SendImageGenerationRequest(context.Background(), "a red fox")
	require.NotEmpty(t, id)

	msg := svc.ActiveChat().FindMessage(id)
	require.NotNil(t, msg)
	assert.False(t, msg.IsLoading)
	assert.Equal(t, "data:image/png;base64,stub", msg.ImageURL)
	assert.Equal(t, `Generated image for: "a red fox"`, msg.Text)
}

func TestVideoGenerationSurfacesFailureVerbatim(t *testing.T) {
	responder := &failingMediaResponder{err: errors.New("quota exceeded, try again tomorrow")}
	svc := newTestService(t, nil, responder)

	id := svc.SendVideoGenerationRequest(context.Background(), "a storm", "", "", "16:9")
	require.NotEmpty(t, id)

	msg := svc.ActiveChat().FindMessage(id)
	require.NotNil(t, msg)
	assert.False(t, msg.IsLoading)
	assert.Empty(t, msg.VideoURL)
	assert.Equal(t, "quota exceeded, try again tomorrow", msg.Text)
}

func TestHandleSuggestionClick(t *testing.T) {
	responder := &stubResponder{
		converseFn: func(prompt, systemInstruction string) (*ai.ConverseResult, error) {
			return &ai.ConverseResult{
				Text: "with options",
				Suggestions: []models.Suggestion{
					{Label: "Tell me more", Type: models.SuggestionMessage, Payload: "tell me more"},
					{Label: "Start over", Type: models.SuggestionAction, Payload: models.ActionClearChat},
				},
			}, nil
		},
	}
	svc := newTestService(t, nil, responder)

	svc.SendMessage(context.Background(), "hi", nil)
	chat := svc.ActiveChat()
	replyID := chat.Messages[len(chat.Messages)-1].ID

	svc.HandleSuggestionClick(context.Background(), replyID,
		models.Suggestion{Type: models.SuggestionMessage, Payload: "tell me more"})

	chat = svc.ActiveChat()
	// Suggestions consumed, follow-up message sent and answered.
	assert.Nil(t, chat.FindMessage(replyID).Suggestions)
	var texts []string
	for _, msg := range chat.Messages {
		if msg.Sender == models.SenderUser {
			texts = append(texts, msg.Text)
		}
	}
	assert.Contains(t, texts, "tell me more")

	svc.HandleSuggestionClick(context.Background(), "irrelevant",
		models.Suggestion{Type: models.SuggestionAction, Payload: models.ActionClearChat})
	assert.Empty(t, svc.ActiveChat().Messages)
}

func TestConcurrentSends(t *testing.T) {
	svc := newTestService(t, nil, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			svc.SendMessage(context.Background(), fmt.Sprintf("message %d", n), nil)
		}(i)
	}
	wg.Wait()

	chat := svc.ActiveChat()
	// welcome + 8 user + 8 replies
	assert.Len(t, chat.Messages, 17)
	for _, msg := range chat.Messages {
		if msg.Sender == models.SenderUser {
			assert.Equal(t, models.StatusRead, msg.Status)
		}
	}
}

// failingMediaResponder fails every capability with a fixed error.
type failingMediaResponder struct {
	err error
}

func (r *failingMediaResponder) Converse(ctx context.Context, prompt, systemInstruction string) (*ai.ConverseResult, error) {
	return nil, r.err
}

func (r *failingMediaResponder) CreateImage(ctx context.Context, prompt string) (string, error) {
	return "", r.err
}

func (r *failingMediaResponder) EditImage(ctx context.Context, prompt, imageBase64, mimeType string) (string, error) {
	return "", r.err
}

func (r *failingMediaResponder) CreateVideo(ctx context.Context, prompt, imageBase64, mimeType, aspectRatio string) (string, error) {
	return "", r.err
}

func (r *failingMediaResponder) SynthesizeSpeech(ctx context.Context, text string) (string, error) {
	return "", r.err
}
