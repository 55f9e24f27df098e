package integration_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	modelChat "jobboard_backend/internal/models/chat"
	"jobboard_backend/test/helpers"
)

// TestChat_ThreadAndMessageFlow - E2E "золотой путь" чата:
// отклик -> тред -> сообщение -> список тредов -> история
func TestChat_ThreadAndMessageFlow(t *testing.T) {
	ts := GetTestServer(t)
	tx := ts.BeginTransaction(t)
	defer ts.RollbackTransaction(t, tx)

	applicantToken, applicant := helpers.CreateAndLoginApplicant(t, ts, tx)
	recruiterToken, recruiter := helpers.CreateAndLoginRecruiter(t, ts, tx)

	job := helpers.CreateTestJob(t, tx, recruiter.ID, "Go Developer", "Almaty")
	application := CreateTestApplication(t, tx, job.ID, applicant.ID)

	// --- Соискатель открывает тред по своему отклику ---
	threadID := OpenTestThread(t, ts, applicantToken, application.ID)
	t.Logf("ЧАТ: Тред создан. ID: %s", threadID)

	// Повторное открытие возвращает тот же тред, не новый
	sameThreadID := OpenTestThread(t, ts, recruiterToken, application.ID)
	assert.Equal(t, threadID, sameThreadID, "На один отклик - ровно один тред")

	// --- Соискатель отправляет сообщение ---
	sendBody := map[string]interface{}{
		"message":     "Здравствуйте! Очень заинтересовала вакансия.",
		"messageType": "TEXT",
	}
	res, bodyStr := ts.SendRequest(t, http.MethodPost, "/api/v1/chat/chats/"+threadID+"/messages", applicantToken, sendBody)
	assert.Equal(t, http.StatusCreated, res.StatusCode)
	assert.Contains(t, bodyStr, "Очень заинтересовала")

	var message struct {
		ID       string `json:"id"`
		Delivery string `json:"delivery_status"`
		Kind     string `json:"kind"`
	}
	assert.NoError(t, json.Unmarshal([]byte(bodyStr), &message))
	assert.NotEmpty(t, message.ID)
	assert.Equal(t, "SENT", message.Delivery, "Новое сообщение стартует в SENT")
	assert.Equal(t, "TEXT", message.Kind)
	t.Logf("ЧАТ: Сообщение отправлено. ID: %s", message.ID)

	// --- Рекрутер видит тред в своем списке с обновленным превью ---
	res, bodyStr = ts.SendRequest(t, http.MethodGet, "/api/v1/chat/chats", recruiterToken, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, bodyStr, threadID)
	assert.Contains(t, bodyStr, "Очень заинтересовала", "Превью треда должно обновиться")

	// --- Рекрутер открывает историю треда ---
	res, bodyStr = ts.SendRequest(t, http.MethodGet, "/api/v1/chat/chats/"+threadID, recruiterToken, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)

	var detail struct {
		ID       string `json:"id"`
		Messages []struct {
			ID         string `json:"id"`
			SenderRole string `json:"sender_role"`
		} `json:"messages"`
	}
	assert.NoError(t, json.Unmarshal([]byte(bodyStr), &detail))
	assert.Equal(t, threadID, detail.ID)
	assert.Len(t, detail.Messages, 1)
	assert.Equal(t, "applicant", detail.Messages[0].SenderRole)
}

// TestChat_DeliveryStatusForwardOnly - статус доставки идет только вперед
func TestChat_DeliveryStatusForwardOnly(t *testing.T) {
	ts := GetTestServer(t)
	tx := ts.BeginTransaction(t)
	defer ts.RollbackTransaction(t, tx)

	applicantToken, applicant := helpers.CreateAndLoginApplicant(t, ts, tx)
	recruiterToken, recruiter := helpers.CreateAndLoginRecruiter(t, ts, tx)

	job := helpers.CreateTestJob(t, tx, recruiter.ID, "Backend Engineer", "Astana")
	application := CreateTestApplication(t, tx, job.ID, applicant.ID)
	threadID := OpenTestThread(t, ts, applicantToken, application.ID)

	sendBody := map[string]interface{}{"message": "ping", "messageType": "TEXT"}
	res, bodyStr := ts.SendRequest(t, http.MethodPost, "/api/v1/chat/chats/"+threadID+"/messages", applicantToken, sendBody)
	assert.Equal(t, http.StatusCreated, res.StatusCode)

	var message struct {
		ID string `json:"id"`
	}
	assert.NoError(t, json.Unmarshal([]byte(bodyStr), &message))
	patchURL := "/api/v1/chat/chats/" + threadID + "/messages/" + message.ID

	// Автор не может подтвердить доставку своего сообщения
	res, _ = ts.SendRequest(t, http.MethodPatch, patchURL, applicantToken, map[string]interface{}{"status": "DELIVERED"})
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	// Получатель подтверждает: SENT -> READ (пропуск DELIVERED допустим)
	res, bodyStr = ts.SendRequest(t, http.MethodPatch, patchURL, recruiterToken, map[string]interface{}{"status": "READ"})
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, bodyStr, `"delivery_status":"READ"`)

	// Откат READ -> DELIVERED запрещен
	res, bodyStr = ts.SendRequest(t, http.MethodPatch, patchURL, recruiterToken, map[string]interface{}{"status": "DELIVERED"})
	assert.Equal(t, http.StatusConflict, res.StatusCode, "Откат статуса должен дать конфликт. Ответ: "+bodyStr)

	// Повторный READ - идемпотентный no-op
	res, _ = ts.SendRequest(t, http.MethodPatch, patchURL, recruiterToken, map[string]interface{}{"status": "READ"})
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

// TestChat_AccessControl - чужой тред недоступен
func TestChat_AccessControl(t *testing.T) {
	ts := GetTestServer(t)
	tx := ts.BeginTransaction(t)
	defer ts.RollbackTransaction(t, tx)

	applicantToken, applicant := helpers.CreateAndLoginApplicant(t, ts, tx)
	_, recruiter := helpers.CreateAndLoginRecruiter(t, ts, tx)
	strangerToken, _ := helpers.CreateAndLoginApplicant(t, ts, tx)

	job := helpers.CreateTestJob(t, tx, recruiter.ID, "DevOps Engineer", "Almaty")
	application := CreateTestApplication(t, tx, job.ID, applicant.ID)
	threadID := OpenTestThread(t, ts, applicantToken, application.ID)

	// Посторонний не видит тред
	res, _ := ts.SendRequest(t, http.MethodGet, "/api/v1/chat/chats/"+threadID, strangerToken, nil)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	// И не может писать в него
	sendBody := map[string]interface{}{"message": "let me in", "messageType": "TEXT"}
	res, _ = ts.SendRequest(t, http.MethodPost, "/api/v1/chat/chats/"+threadID+"/messages", strangerToken, sendBody)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	// Несуществующий тред - 404
	res, _ = ts.SendRequest(t, http.MethodGet, "/api/v1/chat/chats/00000000-0000-0000-0000-000000000000", applicantToken, nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	// Без токена - 401
	res, _ = ts.SendRequest(t, http.MethodGet, "/api/v1/chat/chats", "", nil)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

// TestChat_EmptyThreadList - пустой список тредов это 200, не 404
func TestChat_EmptyThreadList(t *testing.T) {
	ts := GetTestServer(t)
	tx := ts.BeginTransaction(t)
	defer ts.RollbackTransaction(t, tx)

	applicantToken, _ := helpers.CreateAndLoginApplicant(t, ts, tx)

	res, bodyStr := ts.SendRequest(t, http.MethodGet, "/api/v1/chat/chats", applicantToken, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)

	var payload struct {
		Chats []interface{} `json:"chats"`
	}
	assert.NoError(t, json.Unmarshal([]byte(bodyStr), &payload))
	assert.Empty(t, payload.Chats)
}

// TestChat_DuplicateThreadInsert - уникальный индекс по тройке отдает
// gorm.ErrDuplicatedKey, на который опирается get-or-create в OpenThread
func TestChat_DuplicateThreadInsert(t *testing.T) {
	ts := GetTestServer(t)
	tx := ts.BeginTransaction(t)
	defer ts.RollbackTransaction(t, tx)

	applicantToken, applicant := helpers.CreateAndLoginApplicant(t, ts, tx)
	_, recruiter := helpers.CreateAndLoginRecruiter(t, ts, tx)

	job := helpers.CreateTestJob(t, tx, recruiter.ID, "QA Engineer", "Almaty")
	application := CreateTestApplication(t, tx, job.ID, applicant.ID)
	threadID := OpenTestThread(t, ts, applicantToken, application.ID)

	// Прямая вставка второго треда с той же тройкой
	dup := &modelChat.ChatThread{
		ApplicationID:  application.ID,
		ApplicantID:    applicant.ID,
		RecruiterID:    recruiter.ID,
		LastActivityAt: time.Now(),
	}
	err := tx.Create(dup).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey, "Коллизия по тройке должна быть типизированной ошибкой, не текстом")

	// Повторное открытие по-прежнему возвращает существующий тред
	sameThreadID := OpenTestThread(t, ts, applicantToken, application.ID)
	assert.Equal(t, threadID, sameThreadID)
}
