package handlers

import (
	"net/http"
	"strconv"

	"jobboard_backend/internal/middleware"
	modelChat "jobboard_backend/internal/models/chat"
	chatService "jobboard_backend/internal/services/chat"
	"jobboard_backend/internal/services/dto"
	"jobboard_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	*BaseHandler
	chat        *chatService.ChatService
	attachments *chatService.AttachmentService
}

func NewChatHandler(base *BaseHandler, chat *chatService.ChatService, attachments *chatService.AttachmentService) *ChatHandler {
	return &ChatHandler{
		BaseHandler: base,
		chat:        chat,
		attachments: attachments,
	}
}

// RegisterRoutes регистрирует маршруты чата. Скачивание вложений
// пускает токен и через query-параметр: прямые ссылки на файлы
// не умеют ставить заголовок Authorization.
func (h *ChatHandler) RegisterRoutes(rg *gin.RouterGroup) {
	chats := rg.Group("/chat")
	chats.Use(middleware.AuthMiddleware())
	{
		chats.POST("/chats", h.OpenThread)
		chats.GET("/chats", h.ListThreads)
		chats.GET("/chats/:threadID", h.GetThread)
		chats.POST("/chats/:threadID/messages", h.SendMessage)
		chats.POST("/chats/:threadID/attachment", h.UploadAttachment)
		chats.PATCH("/chats/:threadID/messages/:messageID", h.UpdateMessage)
	}

	downloads := rg.Group("/chat/attachments")
	downloads.Use(middleware.AuthOrQueryTokenMiddleware())
	{
		downloads.GET("/:attachmentID/:filename", h.DownloadAttachment)
	}
}

// OpenThread открывает (или возвращает существующий) тред по отклику
func (h *ChatHandler) OpenThread(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.OpenThreadRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)

	thread, err := h.chat.OpenThread(db, req.ApplicationID, userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewThreadSummaryResponse(thread))
}

// ListThreads возвращает треды пользователя, самые активные первыми
func (h *ChatHandler) ListThreads(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	db := h.GetDB(c)

	threads, err := h.chat.ListThreads(db, userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	response := make([]dto.ThreadSummaryResponse, 0, len(threads))
	for i := range threads {
		response = append(response, dto.NewThreadSummaryResponse(&threads[i]))
	}
	c.JSON(http.StatusOK, gin.H{"chats": response})
}

// GetThread возвращает тред с полной историей сообщений
func (h *ChatHandler) GetThread(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	db := h.GetDB(c)

	thread, messages, err := h.chat.GetThread(db, c.Param("threadID"), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	detail := dto.ThreadDetailResponse{
		ThreadSummaryResponse: dto.NewThreadSummaryResponse(thread),
		Messages:              make([]dto.MessageResponse, 0, len(messages)),
	}
	for i := range messages {
		detail.Messages = append(detail.Messages, dto.NewMessageResponse(&messages[i]))
	}
	c.JSON(http.StatusOK, detail)
}

// SendMessage отправляет TEXT либо INTERVIEW_REQUEST сообщение.
// Для приглашения message несет сериализованный JSON нагрузки.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.SendMessageRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)

	message, err := h.chat.SendMessage(db, chatService.SendMessageInput{
		ThreadID: c.Param("threadID"),
		SenderID: userID,
		Kind:     modelChat.MessageKind(req.MessageType),
		Content:  req.Message,
	})
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewMessageResponse(message))
}

// UploadAttachment принимает multipart-файл и создает IMAGE/FILE
// сообщение. Тип выводится из MIME файла, не из запроса.
func (h *ChatHandler) UploadAttachment(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		apperrors.HandleError(c, apperrors.ErrFileMissing)
		return
	}

	db := h.GetDB(c)

	message, err := h.attachments.UploadToThread(c.Request.Context(), db, c.Param("threadID"), userID, fileHeader)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewMessageResponse(message))
}

// UpdateMessage - единая точка PATCH по сообщению.
// status DELIVERED|READ подтверждает доставку, ACCEPTED|DECLINED
// решает судьбу приглашения на интервью.
func (h *ChatHandler) UpdateMessage(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateMessageRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)
	threadID := c.Param("threadID")
	messageID := c.Param("messageID")

	var message *modelChat.Message
	var err error
	switch req.Status {
	case string(modelChat.DeliveryDelivered), string(modelChat.DeliveryRead):
		message, err = h.chat.UpdateDeliveryStatus(db, threadID, messageID, userID, modelChat.DeliveryStatus(req.Status))
	case string(modelChat.InterviewAccepted), string(modelChat.InterviewDeclined):
		message, err = h.chat.UpdateInterviewStatus(db, threadID, messageID, userID, modelChat.InterviewStatus(req.Status))
	default:
		err = apperrors.NewBadRequestError("Unknown status: " + req.Status)
	}
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewMessageResponse(message))
}

// DownloadAttachment отдает содержимое вложения участнику треда
func (h *ChatHandler) DownloadAttachment(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	db := h.GetDB(c)

	_, content, err := h.attachments.DownloadAttachment(c.Request.Context(), db, userID, c.Param("attachmentID"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	defer content.Reader.Close()

	c.Header("Content-Disposition", `attachment; filename="`+content.Filename+`"`)
	c.Header("Content-Length", strconv.FormatInt(content.Size, 10))
	c.DataFromReader(http.StatusOK, content.Size, content.ContentType, content.Reader, nil)
}
