package integration_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"jobboard_backend/test/helpers"
)

// TestAttachment_UploadAndDownload - загрузка файла создает сообщение,
// участники треда могут скачать содержимое
func TestAttachment_UploadAndDownload(t *testing.T) {
	ts := GetTestServer(t)
	tx := ts.BeginTransaction(t)
	defer ts.RollbackTransaction(t, tx)

	applicantToken, applicant := helpers.CreateAndLoginApplicant(t, ts, tx)
	recruiterToken, recruiter := helpers.CreateAndLoginRecruiter(t, ts, tx)

	job := helpers.CreateTestJob(t, tx, recruiter.ID, "Frontend Developer", "Almaty")
	application := CreateTestApplication(t, tx, job.ID, applicant.ID)
	threadID := OpenTestThread(t, ts, applicantToken, application.ID)

	content := []byte("plain text resume content")
	res, bodyStr := ts.SendMultipart(t,
		"/api/v1/chat/chats/"+threadID+"/attachment",
		applicantToken, "resume.txt", "text/plain", content)
	assert.Equal(t, http.StatusCreated, res.StatusCode, "Загрузка должна быть успешной. Ответ: "+bodyStr)

	var message struct {
		ID         string `json:"id"`
		Kind       string `json:"kind"`
		Attachment *struct {
			ID       string `json:"id"`
			Filename string `json:"filename"`
			Size     int64  `json:"size_bytes"`
			MimeType string `json:"mime_type"`
		} `json:"attachment"`
	}
	assert.NoError(t, json.Unmarshal([]byte(bodyStr), &message))
	assert.Equal(t, "FILE", message.Kind, "text/plain - не картинка, значит FILE")
	if !assert.NotNil(t, message.Attachment) {
		return
	}
	assert.Equal(t, "resume.txt", message.Attachment.Filename)
	assert.Equal(t, int64(len(content)), message.Attachment.Size)
	assert.Equal(t, "text/plain", message.Attachment.MimeType)

	downloadURL := "/api/v1/chat/attachments/" + message.Attachment.ID + "/resume.txt"

	// Рекрутер (второй участник) скачивает файл
	res, bodyStr = ts.SendRequest(t, http.MethodGet, downloadURL, recruiterToken, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, string(content), bodyStr)

	// Посторонний - нет
	strangerToken, _ := helpers.CreateAndLoginApplicant(t, ts, tx)
	res, _ = ts.SendRequest(t, http.MethodGet, downloadURL, strangerToken, nil)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
}

// TestAttachment_ImageKindInferred - image/* дает kind=IMAGE
func TestAttachment_ImageKindInferred(t *testing.T) {
	ts := GetTestServer(t)
	tx := ts.BeginTransaction(t)
	defer ts.RollbackTransaction(t, tx)

	applicantToken, applicant := helpers.CreateAndLoginApplicant(t, ts, tx)
	_, recruiter := helpers.CreateAndLoginRecruiter(t, ts, tx)

	job := helpers.CreateTestJob(t, tx, recruiter.ID, "Designer", "Astana")
	application := CreateTestApplication(t, tx, job.ID, applicant.ID)
	threadID := OpenTestThread(t, ts, applicantToken, application.ID)

	// Минимальный валидный PNG-заголовок достаточен - содержимое не проверяется
	pngBytes := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	res, bodyStr := ts.SendMultipart(t,
		"/api/v1/chat/chats/"+threadID+"/attachment",
		applicantToken, "portfolio.png", "image/png", pngBytes)
	assert.Equal(t, http.StatusCreated, res.StatusCode)
	assert.Contains(t, bodyStr, `"kind":"IMAGE"`)
}

// TestAttachment_QueryTokenDownload - скачивание по ссылке с ?token=
func TestAttachment_QueryTokenDownload(t *testing.T) {
	ts := GetTestServer(t)
	tx := ts.BeginTransaction(t)
	defer ts.RollbackTransaction(t, tx)

	applicantToken, applicant := helpers.CreateAndLoginApplicant(t, ts, tx)
	_, recruiter := helpers.CreateAndLoginRecruiter(t, ts, tx)

	job := helpers.CreateTestJob(t, tx, recruiter.ID, "Analyst", "Almaty")
	application := CreateTestApplication(t, tx, job.ID, applicant.ID)
	threadID := OpenTestThread(t, ts, applicantToken, application.ID)

	content := []byte("attachment via query token")
	res, bodyStr := ts.SendMultipart(t,
		"/api/v1/chat/chats/"+threadID+"/attachment",
		applicantToken, "notes.txt", "text/plain", content)
	assert.Equal(t, http.StatusCreated, res.StatusCode)

	var message struct {
		Attachment *struct {
			ID string `json:"id"`
		} `json:"attachment"`
	}
	assert.NoError(t, json.Unmarshal([]byte(bodyStr), &message))

	// Токен в query вместо заголовка - так работают прямые ссылки
	downloadURL := "/api/v1/chat/attachments/" + message.Attachment.ID + "/notes.txt?token=" + applicantToken
	res, bodyStr = ts.SendRequest(t, http.MethodGet, downloadURL, "", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, string(content), bodyStr)

	// Без токена вообще - 401
	res, _ = ts.SendRequest(t, http.MethodGet, "/api/v1/chat/attachments/"+message.Attachment.ID+"/notes.txt", "", nil)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

// TestAttachment_MissingFile - multipart без поля file дает 400,
// сообщение не создается
func TestAttachment_MissingFile(t *testing.T) {
	ts := GetTestServer(t)
	tx := ts.BeginTransaction(t)
	defer ts.RollbackTransaction(t, tx)

	applicantToken, applicant := helpers.CreateAndLoginApplicant(t, ts, tx)
	_, recruiter := helpers.CreateAndLoginRecruiter(t, ts, tx)

	job := helpers.CreateTestJob(t, tx, recruiter.ID, "PM", "Astana")
	application := CreateTestApplication(t, tx, job.ID, applicant.ID)
	threadID := OpenTestThread(t, ts, applicantToken, application.ID)

	// JSON-запрос на multipart-эндпоинт: поля file нет
	res, _ := ts.SendRequest(t, http.MethodPost, "/api/v1/chat/chats/"+threadID+"/attachment", applicantToken, map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res, bodyStr := ts.SendRequest(t, http.MethodGet, "/api/v1/chat/chats/"+threadID, applicantToken, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	var detail struct {
		Messages []interface{} `json:"messages"`
	}
	assert.NoError(t, json.Unmarshal([]byte(bodyStr), &detail))
	assert.Empty(t, detail.Messages, "Отказ валидации не должен оставить сообщение")
}
