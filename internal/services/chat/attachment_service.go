package chat

import (
	"context"
	"io"
	"mime"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"jobboard_backend/internal/logger"
	modelChat "jobboard_backend/internal/models/chat"
	repoChat "jobboard_backend/internal/repositories/chat"
	"jobboard_backend/internal/storage"
	"jobboard_backend/pkg/apperrors"
)

// AttachmentService связывает чат с blob-хранилищем. Сообщение хранит
// только метаданные, сам файл адресуется по attachmentID.
type AttachmentService struct {
	chat  *ChatService
	store storage.Storage

	maxSize      int64
	allowedTypes map[string]bool
}

func NewAttachmentService(chatService *ChatService, store storage.Storage, maxSize int64, allowedTypes []string) *AttachmentService {
	allowed := make(map[string]bool, len(allowedTypes))
	for _, t := range allowedTypes {
		allowed[strings.ToLower(t)] = true
	}
	return &AttachmentService{
		chat:         chatService,
		store:        store,
		maxSize:      maxSize,
		allowedTypes: allowed,
	}
}

// UploadToThread сохраняет файл и создает сообщение с вложением.
// Валидация файла происходит ДО записи в хранилище и БД: при отказе
// не остается ни блоба, ни сообщения. Тип сообщения выводится из
// MIME: image/* -> IMAGE, все остальное -> FILE.
func (s *AttachmentService) UploadToThread(ctx context.Context, db *gorm.DB, threadID, senderID string, fileHeader *multipart.FileHeader) (*modelChat.Message, error) {
	// Доступ проверяем до чтения файла
	if _, err := s.chat.loadThreadForUser(db, threadID, senderID); err != nil {
		return nil, err
	}

	if fileHeader.Size > s.maxSize {
		return nil, apperrors.ErrFileTooLarge
	}

	contentType := detectContentType(fileHeader)
	if len(s.allowedTypes) > 0 && !s.allowedTypes[contentType] {
		return nil, apperrors.ErrInvalidFileType
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	defer file.Close()

	attachmentID := uuid.New().String()
	filename := filepath.Base(fileHeader.Filename)
	blobPath := attachmentID + "/" + filename

	if err := s.store.Save(ctx, blobPath, file, contentType); err != nil {
		return nil, apperrors.InternalError(err)
	}

	kind := modelChat.KindFile
	if strings.HasPrefix(contentType, "image/") {
		kind = modelChat.KindImage
	}

	message, err := s.chat.SendMessage(db, SendMessageInput{
		ThreadID: threadID,
		SenderID: senderID,
		Kind:     kind,
		Attachment: &modelChat.AttachmentMeta{
			ID:       attachmentID,
			Filename: filename,
			Size:     fileHeader.Size,
			MimeType: contentType,
		},
	})
	if err != nil {
		// Сообщение не создалось - блоб не должен остаться сиротой
		if delErr := s.store.Delete(ctx, blobPath); delErr != nil {
			logger.Warn("orphan blob cleanup failed", "path", blobPath, "error", delErr.Error())
		}
		return nil, err
	}
	return message, nil
}

// DownloadAttachment отдает содержимое вложения. Скачивать могут
// только участники треда, которому принадлежит сообщение.
func (s *AttachmentService) DownloadAttachment(ctx context.Context, db *gorm.DB, userID, attachmentID string) (*modelChat.Message, *AttachmentContent, error) {
	message, err := s.chat.Messages.FindByAttachmentID(db, attachmentID)
	if err != nil {
		if apperrors.Is(err, repoChat.ErrMessageNotFound) {
			return nil, nil, apperrors.ErrMessageNotFound
		}
		return nil, nil, apperrors.InternalError(err)
	}

	if _, err := s.chat.loadThreadForUser(db, message.ThreadID, userID); err != nil {
		return nil, nil, err
	}

	meta := message.Attachment()
	blobPath := meta.ID + "/" + meta.Filename
	reader, err := s.store.Get(ctx, blobPath)
	if err != nil {
		return nil, nil, apperrors.InternalError(err)
	}

	return message, &AttachmentContent{
		Reader:      reader,
		Filename:    meta.Filename,
		Size:        meta.Size,
		ContentType: meta.MimeType,
	}, nil
}

// AttachmentContent - поток и метаданные для отдачи файла клиенту
type AttachmentContent struct {
	Reader      io.ReadCloser
	Filename    string
	Size        int64
	ContentType string
}

func detectContentType(fh *multipart.FileHeader) string {
	ct := fh.Header.Get("Content-Type")
	if ct == "" || ct == "application/octet-stream" {
		if byExt := mime.TypeByExtension(filepath.Ext(fh.Filename)); byExt != "" {
			ct = byExt
		}
	}
	if ct == "" {
		ct = "application/octet-stream"
	}
	if idx := strings.IndexByte(ct, ';'); idx >= 0 {
		ct = ct[:idx]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}
