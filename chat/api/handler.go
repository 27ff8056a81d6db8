package api

import (
	"net/http"

	"ws-chatt/backend/chat/models"
	"ws-chatt/backend/chat/service"

	"github.com/gin-gonic/gin"
)

// ChatHandler exposes the conversation store over HTTP. Handlers stay
// thin: validation plus a service call; all state logic lives in the
// service.
type ChatHandler struct {
	service *service.ChatService
}

func NewChatHandler(service *service.ChatService) *ChatHandler {
	return &ChatHandler{service: service}
}

// RegisterRoutesV1 mounts the chat routes under the given group.
func (h *ChatHandler) RegisterRoutesV1(rg *gin.RouterGroup) {
	chats := rg.Group("/chats")
	{
		chats.GET("", h.ListChats)
		chats.GET("/:id", h.GetChat)
		chats.POST("", h.CreateChat)
		chats.POST("/groups", h.CreateGroup)
		chats.POST("/active", h.SelectChat)
		chats.POST("/clear", h.ClearChat)
		chats.POST("/mute", h.ToggleMute)
	}

	messages := rg.Group("/messages")
	{
		messages.POST("", h.SendMessage)
		messages.POST("/voice", h.SendVoiceMessage)
		messages.POST("/image", h.GenerateImage)
		messages.POST("/image/edit", h.EditImage)
		messages.POST("/video", h.GenerateVideo)
		messages.POST("/:id/play", h.PlayAudio)
		messages.POST("/:id/suggestion", h.SuggestionClick)
		messages.DELETE("/:id", h.DeleteMessage)
	}

	contacts := rg.Group("/contacts")
	{
		contacts.GET("", h.ListContacts)
		contacts.POST("", h.AddContact)
	}
}

func (h *ChatHandler) ListChats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"chats":          h.service.Chats(),
		"active_chat_id": h.service.ActiveChatID(),
		"is_typing":      h.service.IsTyping(),
		"is_muted":       h.service.IsMuted(),
	})
}

func (h *ChatHandler) GetChat(c *gin.Context) {
	chat := h.service.Chat(c.Param("id"))
	if chat == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Chat not found"})
		return
	}
	c.JSON(http.StatusOK, chat)
}

func (h *ChatHandler) CreateChat(c *gin.Context) {
	var blueprint models.ChatBlueprint
	if err := c.ShouldBindJSON(&blueprint); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if blueprint.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Chat name is required"})
		return
	}
	c.JSON(http.StatusCreated, h.service.CreateChat(blueprint))
}

func (h *ChatHandler) CreateGroup(c *gin.Context) {
	var req struct {
		Name    string          `json:"name"`
		Members []models.Member `json:"members"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Group name is required"})
		return
	}
	c.JSON(http.StatusCreated, h.service.CreateGroup(req.Members, req.Name))
}

func (h *ChatHandler) SelectChat(c *gin.Context) {
	var req struct {
		ChatID string `json:"chat_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.service.SelectChat(req.ChatID)
	c.JSON(http.StatusOK, gin.H{"active_chat_id": h.service.ActiveChatID()})
}

func (h *ChatHandler) ClearChat(c *gin.Context) {
	h.service.ClearChat()
	c.Status(http.StatusNoContent)
}

func (h *ChatHandler) ToggleMute(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"is_muted": h.service.ToggleMute()})
}

// SendMessage runs the full send pipeline, including the simulated
// delivery delays and the responder round trip, before responding with
// the updated chat. Clients wanting progress as it happens subscribe
// to the websocket feed.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req struct {
		Text    string           `json:"text"`
		ReplyTo *models.ReplyRef `json:"reply_to,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.service.SendMessage(c.Request.Context(), req.Text, req.ReplyTo)

	chat := h.service.ActiveChat()
	if chat == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, chat)
}

func (h *ChatHandler) SendVoiceMessage(c *gin.Context) {
	var req struct {
		AudioData       string  `json:"audio_data"`
		DurationSeconds float64 `json:"duration_seconds"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id := h.service.SendVoiceMessage(req.AudioData, req.DurationSeconds)
	if id == "" {
		c.JSON(http.StatusConflict, gin.H{"error": "No active chat"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message_id": id})
}

func (h *ChatHandler) GenerateImage(c *gin.Context) {
	var req struct {
		Prompt string `json:"prompt"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id := h.service.SendImageGenerationRequest(c.Request.Context(), req.Prompt)
	if id == "" {
		c.JSON(http.StatusConflict, gin.H{"error": "No active chat"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message_id": id})
}

func (h *ChatHandler) EditImage(c *gin.Context) {
	var req struct {
		Prompt      string `json:"prompt"`
		ImageBase64 string `json:"image_base64"`
		MimeType    string `json:"mime_type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id := h.service.SendImageEditRequest(c.Request.Context(), req.Prompt, req.ImageBase64, req.MimeType)
	if id == "" {
		c.JSON(http.StatusConflict, gin.H{"error": "No active chat"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message_id": id})
}

func (h *ChatHandler) GenerateVideo(c *gin.Context) {
	var req struct {
		Prompt      string `json:"prompt"`
		ImageBase64 string `json:"image_base64"`
		MimeType    string `json:"mime_type"`
		AspectRatio string `json:"aspect_ratio"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.AspectRatio == "" {
		req.AspectRatio = "16:9"
	}
	id := h.service.SendVideoGenerationRequest(c.Request.Context(), req.Prompt, req.ImageBase64, req.MimeType, req.AspectRatio)
	if id == "" {
		c.JSON(http.StatusConflict, gin.H{"error": "No active chat"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message_id": id})
}

// PlayAudio returns synthesized (or cached) audio for a message. A
// synthesis failure is not an error to the client, just an absence of
// sound.
func (h *ChatHandler) PlayAudio(c *gin.Context) {
	audio, err := h.service.PlayMessageAudio(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, gin.H{"audio_data": audio})
}

func (h *ChatHandler) SuggestionClick(c *gin.Context) {
	var suggestion models.Suggestion
	if err := c.ShouldBindJSON(&suggestion); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.service.HandleSuggestionClick(c.Request.Context(), c.Param("id"), suggestion)
	c.Status(http.StatusNoContent)
}

// DeleteMessage handles both delete scopes. "me" waits out the exit
// animation delay before the message disappears from the sequence;
// "everyone" tombstones immediately.
func (h *ChatHandler) DeleteMessage(c *gin.Context) {
	switch c.DefaultQuery("scope", "me") {
	case "me":
		h.service.DeleteMessageForMe(c.Request.Context(), c.Param("id"))
	case "everyone":
		h.service.DeleteMessageForEveryone(c.Param("id"))
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown delete scope"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ChatHandler) ListContacts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"contacts": h.service.Contacts()})
}

func (h *ChatHandler) AddContact(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Contact name is required"})
		return
	}
	c.JSON(http.StatusCreated, h.service.AddUserContact(req.Name))
}
