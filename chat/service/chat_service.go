package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"ws-chatt/backend/ai"
	"ws-chatt/backend/chat/models"
	"ws-chatt/backend/chat/repository"
	"ws-chatt/backend/pkg/cache"
	"ws-chatt/backend/pkg/clock"
	"ws-chatt/backend/pkg/logger"
	"ws-chatt/backend/shared/observability"

	"github.com/google/uuid"
)

// UserID identifies the local operator in message attribution and
// group member lists.
const UserID = "current-user"

const apologyText = "I'm sorry, something went wrong."

// Event describes a state change the transport layer may want to push
// to connected clients.
type Event struct {
	Type   string `json:"type"`
	ChatID string `json:"chat_id,omitempty"`
	Typing bool   `json:"typing,omitempty"`
}

// Event types emitted by the service.
const (
	EventChatUpdated = "chat_updated"
	EventChatList    = "chat_list_updated"
	EventTyping      = "typing"
)

// Notifier receives events after each committed mutation. It must not
// block; implementations are expected to fan out asynchronously.
type Notifier interface {
	Notify(event Event)
}

// Options configures a ChatService. Zero values select sensible
// defaults, so tests can pass only what they care about.
type Options struct {
	Clock          clock.Clock
	Logger         *logger.Logger
	TTSCache       *cache.Cache
	Notifier       Notifier
	Metrics        *observability.Metrics
	SentDelay      time.Duration
	DeliveredDelay time.Duration
	DeleteDelay    time.Duration
}

// ChatService is the single source of truth for chats, their message
// sequences, and the group responder rotation. Every mutation goes
// through it and is persisted synchronously, so the snapshot in
// storage always reflects the last committed state.
//
// The internal mutex is never held across responder calls or simulated
// delivery delays; overlapping operations interleave at those points in
// completion order, matching the behaviour of an event-loop UI.
type ChatService struct {
	mu           sync.Mutex
	chats        []models.Chat
	activeChatID string
	typing       bool
	muted        bool
	contacts     []models.UserContact

	repo      *repository.SnapshotRepository
	responder ai.Responder
	clock     clock.Clock
	log       *logger.Logger
	ttsCache  *cache.Cache
	notifier  Notifier
	metrics   *observability.Metrics

	sentDelay      time.Duration
	deliveredDelay time.Duration
	deleteDelay    time.Duration
}

// NewChatService creates the service and loads the persisted snapshot.
// A missing or malformed snapshot is replaced with a default chat; the
// constructor never fails because of storage content.
func NewChatService(repo *repository.SnapshotRepository, responder ai.Responder, opts Options) *ChatService {
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}
	if opts.Logger == nil {
		opts.Logger = logger.GetGlobal()
	}
	if opts.SentDelay == 0 {
		opts.SentDelay = 500 * time.Millisecond
	}
	if opts.DeliveredDelay == 0 {
		opts.DeliveredDelay = time.Second
	}
	if opts.DeleteDelay == 0 {
		opts.DeleteDelay = 300 * time.Millisecond
	}

	s := &ChatService{
		repo:           repo,
		responder:      responder,
		clock:          opts.Clock,
		log:            opts.Logger,
		ttsCache:       opts.TTSCache,
		notifier:       opts.Notifier,
		metrics:        opts.Metrics,
		sentDelay:      opts.SentDelay,
		deliveredDelay: opts.DeliveredDelay,
		deleteDelay:    opts.DeleteDelay,
	}
	s.loadInitialChats()
	return s
}

// loadInitialChats restores the persisted snapshot, falling back to a
// synthesized default chat when storage is empty or unreadable.
func (s *ChatService) loadInitialChats() {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot, err := s.repo.LoadSnapshot()
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.log.LogError(err, "failed to load chat snapshot, starting fresh")
		}
		initial := s.defaultChat()
		s.chats = []models.Chat{initial}
		s.activeChatID = initial.ID
	} else {
		s.chats = snapshot.Chats
		s.activeChatID = snapshot.ActiveChatID
		if s.findChatLocked(s.activeChatID) == nil {
			s.activeChatID = s.chats[0].ID
		}
	}

	contacts, err := s.repo.LoadContacts()
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.log.LogError(err, "failed to load user contacts, starting fresh")
		}
		contacts = nil
	}
	s.contacts = contacts

	s.persistLocked()
}

func (s *ChatService) defaultChat() models.Chat {
	return models.Chat{
		ID:                "ai-assistant-chat",
		Name:              "AI Assistant",
		AvatarURL:         "https://picsum.photos/seed/ws-chatt-ai/50/50",
		SystemInstruction: "You are a helpful and friendly AI assistant. Your name is WS Chatt AI.",
		Messages: []models.Message{{
			ID:        "welcome-message",
			Text:      "Hello! I am your AI Assistant. You can chat, generate images, edit photos, or create videos. How can I help?",
			Timestamp: s.clock.Now(),
			Sender:    models.SenderAI,
		}},
	}
}

// persistLocked writes the full snapshot back to storage. Persistence
// failures are logged, never propagated: in-memory state stays
// authoritative for the rest of the session.
func (s *ChatService) persistLocked() {
	snapshot := &models.Snapshot{Chats: s.chats, ActiveChatID: s.activeChatID}
	if err := s.repo.SaveSnapshot(snapshot); err != nil {
		s.log.LogError(err, "failed to persist chat snapshot")
	}
	if err := s.repo.SaveContacts(s.contacts); err != nil {
		s.log.LogError(err, "failed to persist user contacts")
	}
}

func (s *ChatService) notify(event Event) {
	if s.notifier != nil {
		s.notifier.Notify(event)
	}
}

func (s *ChatService) findChatLocked(id string) *models.Chat {
	for i := range s.chats {
		if s.chats[i].ID == id {
			return &s.chats[i]
		}
	}
	return nil
}

// Chats returns a deep copy of all chats in display order.
func (s *ChatService) Chats() []models.Chat {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Chat, len(s.chats))
	for i := range s.chats {
		out[i] = copyChat(&s.chats[i])
	}
	return out
}

// ActiveChat returns a copy of the currently selected chat, or nil if
// no chat is selected.
func (s *ChatService) ActiveChat() *models.Chat {
	s.mu.Lock()
	defer s.mu.Unlock()

	chat := s.findChatLocked(s.activeChatID)
	if chat == nil {
		return nil
	}
	c := copyChat(chat)
	return &c
}

// Chat returns a copy of the chat with the given id, or nil.
func (s *ChatService) Chat(id string) *models.Chat {
	s.mu.Lock()
	defer s.mu.Unlock()

	chat := s.findChatLocked(id)
	if chat == nil {
		return nil
	}
	c := copyChat(chat)
	return &c
}

func copyChat(chat *models.Chat) models.Chat {
	c := *chat
	c.Messages = append([]models.Message(nil), chat.Messages...)
	c.Members = append([]models.Member(nil), chat.Members...)
	return c
}

// IsTyping reports whether a responder reply is currently in flight.
func (s *ChatService) IsTyping() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.typing
}

// IsMuted reports the notification mute flag.
func (s *ChatService) IsMuted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.muted
}

// ToggleMute flips the mute flag and returns the new value.
func (s *ChatService) ToggleMute() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.muted = !s.muted
	return s.muted
}

// SelectChat makes the chat with the given id active. An empty or
// unknown id deselects, which is how the UI navigates back to the
// list view.
func (s *ChatService) SelectChat(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id == "" || s.findChatLocked(id) == nil {
		s.activeChatID = ""
	} else {
		s.activeChatID = id
	}
	s.persistLocked()
}

// ActiveChatID returns the id of the selected chat, or "".
func (s *ChatService) ActiveChatID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeChatID
}

// CreateChat creates a 1:1 chat from a persona blueprint and makes it
// active. If a chat with the same display name already exists it is
// re-activated instead; no duplicate is created.
func (s *ChatService) CreateChat(blueprint models.ChatBlueprint) models.Chat {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.chats {
		if s.chats[i].Name == blueprint.Name {
			s.activeChatID = s.chats[i].ID
			s.persistLocked()
			return copyChat(&s.chats[i])
		}
	}

	chat := models.Chat{
		ID:                fmt.Sprintf("%s-%d", slugify(blueprint.Name), s.clock.Now().UnixMilli()),
		Name:              blueprint.Name,
		AvatarURL:         blueprint.AvatarURL,
		SystemInstruction: blueprint.SystemInstruction,
		Messages:          []models.Message{},
	}
	s.chats = append(s.chats, chat)
	s.activeChatID = chat.ID
	s.persistLocked()
	s.notify(Event{Type: EventChatList})
	return copyChat(&s.chats[len(s.chats)-1])
}

// CreateGroup creates a group chat containing a synthetic "You" member
// plus the supplied AI personas, and makes it active. The responder
// cursor starts before the first AI member.
func (s *ChatService) CreateGroup(members []models.Member, groupName string) models.Chat {
	s.mu.Lock()
	defer s.mu.Unlock()

	userMember := models.Member{
		ID:        UserID,
		Name:      "You",
		AvatarURL: "https://picsum.photos/seed/ws-chatt-user/50/50",
		IsUser:    true,
	}

	group := models.Chat{
		ID:                 fmt.Sprintf("group-%d", s.clock.Now().UnixMilli()),
		Name:               groupName,
		AvatarURL:          fmt.Sprintf("https://picsum.photos/seed/%s/50/50", slugify(groupName)),
		SystemInstruction:  "You are in a group chat. Respond as your persona.",
		Messages:           []models.Message{},
		IsGroup:            true,
		Members:            append([]models.Member{userMember}, members...),
		LastResponderIndex: -1,
	}
	s.chats = append(s.chats, group)
	s.activeChatID = group.ID
	s.persistLocked()
	s.notify(Event{Type: EventChatList})
	return copyChat(&s.chats[len(s.chats)-1])
}

func slugify(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}

// Contacts returns the user-created contact list.
func (s *ChatService) Contacts() []models.UserContact {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.UserContact(nil), s.contacts...)
}

// AddUserContact appends a contact and persists the list.
func (s *ChatService) AddUserContact(name string) models.UserContact {
	s.mu.Lock()
	defer s.mu.Unlock()

	contact := models.UserContact{
		ID:   "user-contact-" + uuid.NewString(),
		Name: name,
	}
	s.contacts = append(s.contacts, contact)
	s.persistLocked()
	return contact
}

// ClearChat replaces the active chat's message sequence with an empty
// one. Irreversible.
func (s *ChatService) ClearChat() {
	s.mu.Lock()
	defer s.mu.Unlock()

	chat := s.findChatLocked(s.activeChatID)
	if chat == nil {
		return
	}
	chat.Messages = []models.Message{}
	s.persistLocked()
	s.notify(Event{Type: EventChatUpdated, ChatID: chat.ID})
}

type responderIdentity struct {
	ID                string
	Name              string
	SystemInstruction string
}

// nextResponderLocked selects who replies to the next user message.
// For 1:1 chats it is the chat's own persona. For groups it advances
// the round-robin cursor over AI members, wrapping at the end, and
// persists the cursor so rotation survives restarts. A group whose AI
// member list is empty falls back to the chat's default persona.
func (s *ChatService) nextResponderLocked(chat *models.Chat) responderIdentity {
	if !chat.IsGroup {
		return responderIdentity{ID: chat.ID, Name: chat.Name, SystemInstruction: chat.SystemInstruction}
	}

	aiMembers := chat.AIMembers()
	if len(aiMembers) == 0 {
		return responderIdentity{ID: "ai-assistant", Name: "AI Assistant", SystemInstruction: chat.SystemInstruction}
	}

	next := chat.LastResponderIndex + 1
	if next < 0 || next >= len(aiMembers) {
		next = 0
	}
	chat.LastResponderIndex = next
	member := aiMembers[next]
	return responderIdentity{ID: member.ID, Name: member.Name, SystemInstruction: member.SystemInstruction}
}

func (s *ChatService) setTyping(typing bool) {
	s.mu.Lock()
	s.typing = typing
	s.mu.Unlock()
	s.notify(Event{Type: EventTyping, Typing: typing})
}

// advanceStatus moves a user message forward in the delivery
// progression. Statuses never regress; a message already marked read
// stays read even if a slow transition callback arrives late.
func (s *ChatService) advanceStatus(chatID, messageID string, status models.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()

	chat := s.findChatLocked(chatID)
	if chat == nil {
		return
	}
	msg := chat.FindMessage(messageID)
	if msg == nil || !msg.Status.Before(status) {
		return
	}
	msg.Status = status
	s.persistLocked()
	s.notify(Event{Type: EventChatUpdated, ChatID: chatID})
}

// SendMessage appends a user message to the active chat, simulates the
// delivery handshake, and obtains a responder reply. Empty input or no
// active chat is a silent no-op. The call blocks until the reply (or
// apology) has been committed; callers wanting fire-and-forget
// semantics run it in a goroutine. Overlapping sends are independent
// and interleave in completion order.
func (s *ChatService) SendMessage(ctx context.Context, text string, replyTo *models.ReplyRef) {
	if strings.TrimSpace(text) == "" {
		return
	}

	s.mu.Lock()
	chat := s.findChatLocked(s.activeChatID)
	if chat == nil {
		s.mu.Unlock()
		return
	}
	chatID := chat.ID

	userMessage := models.Message{
		ID:        "user-" + uuid.NewString(),
		Timestamp: s.clock.Now(),
		Sender:    models.SenderUser,
		SenderID:  UserID,
		Text:      text,
		Status:    models.StatusSending,
		ReplyTo:   replyTo,
	}
	chat.Messages = append(chat.Messages, userMessage)
	s.typing = true
	s.persistLocked()
	s.mu.Unlock()

	s.notify(Event{Type: EventChatUpdated, ChatID: chatID})
	if s.metrics != nil {
		s.metrics.MessagesSent.Inc()
	}
	defer s.setTyping(false)

	// Simulated network acknowledgement stages; not tied to any
	// real transport.
	s.clock.Sleep(ctx, s.sentDelay)
	s.advanceStatus(chatID, userMessage.ID, models.StatusSent)
	s.clock.Sleep(ctx, s.deliveredDelay)
	s.advanceStatus(chatID, userMessage.ID, models.StatusDelivered)

	prompt := text
	if replyTo != nil && replyTo.Text != "" {
		prompt = fmt.Sprintf("The user is replying to a message that said: %q. Their reply is: %q. Please respond accordingly.", replyTo.Text, text)
	}

	s.mu.Lock()
	var responder responderIdentity
	if chat := s.findChatLocked(chatID); chat != nil {
		responder = s.nextResponderLocked(chat)
		s.persistLocked()
	}
	s.mu.Unlock()
	if responder == (responderIdentity{}) {
		// Chat disappeared mid-send; nothing left to reply to.
		return
	}

	start := s.clock.Now()
	result, err := s.responder.Converse(ctx, prompt, responder.SystemInstruction)
	if s.metrics != nil {
		s.metrics.ResponderLatency.Observe(s.clock.Now().Sub(start).Seconds())
	}
	if err != nil {
		if s.metrics != nil {
			s.metrics.ResponderFailures.Inc()
		}
		s.log.LogError(err, "responder failed", "chat_id", chatID, "responder", responder.Name)
		s.appendMessage(chatID, models.Message{
			ID:        "err-" + uuid.NewString(),
			Timestamp: s.clock.Now(),
			Sender:    models.SenderAI,
			Text:      apologyText,
		})
		return
	}

	s.mu.Lock()
	if chat := s.findChatLocked(chatID); chat != nil {
		// The peer replying implies it has seen everything sent so far.
		for i := range chat.Messages {
			msg := &chat.Messages[i]
			if msg.Sender == models.SenderUser && msg.Status != "" && msg.Status.Before(models.StatusRead) {
				msg.Status = models.StatusRead
			}
		}
		chat.Messages = append(chat.Messages, models.Message{
			ID:               "ai-" + uuid.NewString(),
			Timestamp:        s.clock.Now(),
			Sender:           models.SenderAI,
			SenderID:         responder.ID,
			SenderName:       responder.Name,
			Text:             result.Text,
			GroundingSources: result.GroundingSources,
			Suggestions:      result.Suggestions,
		})
		s.persistLocked()
	}
	s.mu.Unlock()
	s.notify(Event{Type: EventChatUpdated, ChatID: chatID})
}

func (s *ChatService) appendMessage(chatID string, message models.Message) {
	s.mu.Lock()
	if chat := s.findChatLocked(chatID); chat != nil {
		chat.Messages = append(chat.Messages, message)
		s.persistLocked()
	}
	s.mu.Unlock()
	s.notify(Event{Type: EventChatUpdated, ChatID: chatID})
}

// updateMessage applies fn to the message in place and persists.
func (s *ChatService) updateMessage(chatID, messageID string, fn func(*models.Message)) {
	s.mu.Lock()
	if chat := s.findChatLocked(chatID); chat != nil {
		if msg := chat.FindMessage(messageID); msg != nil {
			fn(msg)
			s.persistLocked()
		}
	}
	s.mu.Unlock()
	s.notify(Event{Type: EventChatUpdated, ChatID: chatID})
}

// startPlaceholder inserts a loading AI message into the active chat
// and returns its id along with the chat id. The placeholder keeps its
// identity for the lifetime of the request, so callers can always
// resolve "the message for this request".
func (s *ChatService) startPlaceholder(loadingText string) (chatID, messageID string, ok bool) {
	s.mu.Lock()
	chat := s.findChatLocked(s.activeChatID)
	if chat == nil {
		s.mu.Unlock()
		return "", "", false
	}
	placeholder := models.Message{
		ID:          "loading-" + uuid.NewString(),
		Timestamp:   s.clock.Now(),
		Sender:      models.SenderAI,
		IsLoading:   true,
		LoadingText: loadingText,
	}
	chat.Messages = append(chat.Messages, placeholder)
	chatID = chat.ID
	s.persistLocked()
	s.mu.Unlock()
	s.notify(Event{Type: EventChatUpdated, ChatID: chatID})
	return chatID, placeholder.ID, true
}

// SendImageGenerationRequest inserts a loading placeholder, generates
// an image, and resolves the placeholder in place with the media or a
// failure caption. Returns the placeholder id, or "" when no chat is
// active.
func (s *ChatService) SendImageGenerationRequest(ctx context.Context, prompt string) string {
	chatID, messageID, ok := s.startPlaceholder(fmt.Sprintf("Generating image: %q", prompt))
	if !ok {
		return ""
	}

	imageURL, err := s.responder.CreateImage(ctx, prompt)
	s.updateMessage(chatID, messageID, func(msg *models.Message) {
		msg.IsLoading = false
		msg.LoadingText = ""
		if err != nil {
			msg.Text = "Sorry, I couldn't generate the image."
			return
		}
		msg.ImageURL = imageURL
		msg.Text = fmt.Sprintf("Generated image for: %q", prompt)
	})
	if err != nil {
		s.log.LogError(err, "image generation failed", "chat_id", chatID)
		if s.metrics != nil {
			s.metrics.ResponderFailures.Inc()
		}
	}
	return messageID
}

// SendImageEditRequest edits the supplied image according to the
// prompt, using the same placeholder lifecycle as image generation.
func (s *ChatService) SendImageEditRequest(ctx context.Context, prompt, imageBase64, mimeType string) string {
	chatID, messageID, ok := s.startPlaceholder(fmt.Sprintf("Editing image with prompt: %q", prompt))
	if !ok {
		return ""
	}

	imageURL, err := s.responder.EditImage(ctx, prompt, imageBase64, mimeType)
	s.updateMessage(chatID, messageID, func(msg *models.Message) {
		msg.IsLoading = false
		msg.LoadingText = ""
		if err != nil {
			msg.Text = "Sorry, I couldn't edit the image."
			return
		}
		msg.ImageURL = imageURL
		msg.Text = fmt.Sprintf("Edited image with prompt: %q", prompt)
	})
	if err != nil {
		s.log.LogError(err, "image edit failed", "chat_id", chatID)
		if s.metrics != nil {
			s.metrics.ResponderFailures.Inc()
		}
	}
	return messageID
}

// SendVideoGenerationRequest generates a video from a prompt and
// reference image. Failure reasons from the responder are surfaced
// verbatim as the placeholder caption, since they are written for
// humans (quota, invalid key, and so on).
func (s *ChatService) SendVideoGenerationRequest(ctx context.Context, prompt, imageBase64, mimeType, aspectRatio string) string {
	chatID, messageID, ok := s.startPlaceholder("Generating video... this may take a few minutes.")
	if !ok {
		return ""
	}

	videoURL, err := s.responder.CreateVideo(ctx, prompt, imageBase64, mimeType, aspectRatio)
	s.updateMessage(chatID, messageID, func(msg *models.Message) {
		msg.IsLoading = false
		msg.LoadingText = ""
		if err != nil {
			msg.Text = err.Error()
			return
		}
		msg.VideoURL = videoURL
		msg.Text = fmt.Sprintf("Video generated for prompt: %q", prompt)
	})
	if err != nil {
		s.log.LogError(err, "video generation failed", "chat_id", chatID)
		if s.metrics != nil {
			s.metrics.ResponderFailures.Inc()
		}
	}
	return messageID
}

// SendVoiceMessage appends a user voice message. Voice messages skip
// the delivery simulation and are marked sent immediately.
func (s *ChatService) SendVoiceMessage(audioData string, durationSeconds float64) string {
	s.mu.Lock()
	chat := s.findChatLocked(s.activeChatID)
	if chat == nil {
		s.mu.Unlock()
		return ""
	}
	message := models.Message{
		ID:        "user-vm-" + uuid.NewString(),
		Timestamp: s.clock.Now(),
		Sender:    models.SenderUser,
		SenderID:  UserID,
		AudioData: audioData,
		Duration:  durationSeconds,
		Status:    models.StatusSent,
	}
	chat.Messages = append(chat.Messages, message)
	chatID := chat.ID
	s.persistLocked()
	s.mu.Unlock()
	s.notify(Event{Type: EventChatUpdated, ChatID: chatID})
	return message.ID
}

// PlayMessageAudio returns audio for the given message in the active
// chat, synthesizing and caching it on first use. The IsPlayingAudio
// flag brackets the operation. Synthesis failure is logged and
// reported as an error the transport maps to "no audio available".
func (s *ChatService) PlayMessageAudio(ctx context.Context, messageID string) (string, error) {
	s.mu.Lock()
	chat := s.findChatLocked(s.activeChatID)
	if chat == nil {
		s.mu.Unlock()
		return "", errors.New("no active chat")
	}
	msg := chat.FindMessage(messageID)
	if msg == nil {
		s.mu.Unlock()
		return "", errors.New("message not found")
	}
	if msg.AudioData != "" {
		audio := msg.AudioData
		s.mu.Unlock()
		return audio, nil
	}
	if msg.Text == "" {
		s.mu.Unlock()
		return "", errors.New("message has no text to synthesize")
	}
	text := msg.Text
	chatID := chat.ID
	msg.IsPlayingAudio = true
	s.persistLocked()
	s.mu.Unlock()
	s.notify(Event{Type: EventChatUpdated, ChatID: chatID})

	defer s.updateMessage(chatID, messageID, func(m *models.Message) {
		m.IsPlayingAudio = false
	})

	audio, err := s.synthesizeSpeech(ctx, text)
	if err != nil {
		s.log.LogError(err, "speech synthesis failed", "chat_id", chatID, "message_id", messageID)
		return "", err
	}

	s.updateMessage(chatID, messageID, func(m *models.Message) {
		m.AudioData = audio
	})
	return audio, nil
}

// synthesizeSpeech goes through the TTL cache when one is configured,
// so repeated playback of identical text does not hit the responder.
func (s *ChatService) synthesizeSpeech(ctx context.Context, text string) (string, error) {
	if s.ttsCache != nil {
		if cached, ok := s.ttsCache.Get("tts:" + text); ok {
			if audio, ok := cached.(string); ok {
				return audio, nil
			}
		}
	}

	audio, err := s.responder.SynthesizeSpeech(ctx, text)
	if err != nil {
		return "", err
	}
	if s.ttsCache != nil {
		s.ttsCache.Set("tts:"+text, audio)
	}
	return audio, nil
}

// DeleteMessageForMe flags the message for its exit animation, waits
// the animation delay, then removes it from the sequence entirely.
// Irreversible; no tombstone is kept.
func (s *ChatService) DeleteMessageForMe(ctx context.Context, messageID string) {
	s.mu.Lock()
	chat := s.findChatLocked(s.activeChatID)
	if chat == nil {
		s.mu.Unlock()
		return
	}
	msg := chat.FindMessage(messageID)
	if msg == nil {
		s.mu.Unlock()
		return
	}
	chatID := chat.ID
	msg.IsDeleting = true
	s.persistLocked()
	s.mu.Unlock()
	s.notify(Event{Type: EventChatUpdated, ChatID: chatID})

	s.clock.Sleep(ctx, s.deleteDelay)

	s.mu.Lock()
	if chat := s.findChatLocked(chatID); chat != nil {
		kept := chat.Messages[:0]
		for _, msg := range chat.Messages {
			if msg.ID != messageID {
				kept = append(kept, msg)
			}
		}
		chat.Messages = kept
		s.persistLocked()
	}
	s.mu.Unlock()
	s.notify(Event{Type: EventChatUpdated, ChatID: chatID})
}

// DeleteMessageForEveryone blanks the message's content and sets the
// tombstone flag, keeping id, timestamp, and sender so the UI can
// render a "this message was deleted" stub. Idempotent.
func (s *ChatService) DeleteMessageForEveryone(messageID string) {
	s.mu.Lock()
	chat := s.findChatLocked(s.activeChatID)
	if chat == nil {
		s.mu.Unlock()
		return
	}
	chatID := chat.ID
	msg := chat.FindMessage(messageID)
	if msg == nil {
		s.mu.Unlock()
		return
	}
	msg.Tombstone()
	s.persistLocked()
	s.mu.Unlock()
	s.notify(Event{Type: EventChatUpdated, ChatID: chatID})
}

// HandleSuggestionClick consumes a suggestion attached to a message.
// The suggestion list is cleared first so it cannot be acted on twice.
// "message" suggestions re-enter SendMessage; the clear-chat action
// clears the active chat; anything else is ignored.
func (s *ChatService) HandleSuggestionClick(ctx context.Context, messageID string, suggestion models.Suggestion) {
	s.mu.Lock()
	chat := s.findChatLocked(s.activeChatID)
	if chat == nil {
		s.mu.Unlock()
		return
	}
	chatID := chat.ID
	if msg := chat.FindMessage(messageID); msg != nil {
		msg.Suggestions = nil
		s.persistLocked()
	}
	s.mu.Unlock()
	s.notify(Event{Type: EventChatUpdated, ChatID: chatID})

	switch suggestion.Type {
	case models.SuggestionMessage:
		s.SendMessage(ctx, suggestion.Payload, nil)
	case models.SuggestionAction:
		if suggestion.Payload == models.ActionClearChat {
			s.ClearChat()
		}
	}
}
