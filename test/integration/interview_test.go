package integration_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"jobboard_backend/test/helpers"
)

func sendInterviewRequest(t *testing.T, ts *helpers.TestServer, token, threadID string) string {
	proposal := map[string]interface{}{
		"proposed_datetime": time.Now().Add(48 * time.Hour).Format(time.RFC3339),
		"location_mode":     "ONLINE",
		"notes":             "Созвон в Zoom, 45 минут",
	}
	raw, err := json.Marshal(proposal)
	assert.NoError(t, err)

	sendBody := map[string]interface{}{
		"message":     string(raw),
		"messageType": "INTERVIEW_REQUEST",
	}
	res, bodyStr := ts.SendRequest(t, http.MethodPost, "/api/v1/chat/chats/"+threadID+"/messages", token, sendBody)
	assert.Equal(t, http.StatusCreated, res.StatusCode, "Приглашение должно создаться. Ответ: "+bodyStr)

	var message struct {
		ID        string `json:"id"`
		Kind      string `json:"kind"`
		Interview *struct {
			Status string `json:"status"`
		} `json:"interview"`
	}
	assert.NoError(t, json.Unmarshal([]byte(bodyStr), &message))
	assert.Equal(t, "INTERVIEW_REQUEST", message.Kind)
	if assert.NotNil(t, message.Interview) {
		assert.Equal(t, "PENDING", message.Interview.Status, "Новое приглашение стартует в PENDING")
	}
	return message.ID
}

// TestInterview_AcceptFlow - рекрутер приглашает, соискатель принимает
func TestInterview_AcceptFlow(t *testing.T) {
	ts := GetTestServer(t)
	tx := ts.BeginTransaction(t)
	defer ts.RollbackTransaction(t, tx)

	applicantToken, applicant := helpers.CreateAndLoginApplicant(t, ts, tx)
	recruiterToken, recruiter := helpers.CreateAndLoginRecruiter(t, ts, tx)

	job := helpers.CreateTestJob(t, tx, recruiter.ID, "Senior Go Developer", "Almaty")
	application := CreateTestApplication(t, tx, job.ID, applicant.ID)
	threadID := OpenTestThread(t, ts, recruiterToken, application.ID)

	messageID := sendInterviewRequest(t, ts, recruiterToken, threadID)
	patchURL := "/api/v1/chat/chats/" + threadID + "/messages/" + messageID

	// Рекрутер (автор приглашения) не может решить за соискателя
	res, _ := ts.SendRequest(t, http.MethodPatch, patchURL, recruiterToken, map[string]interface{}{"status": "ACCEPTED"})
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	// Соискатель принимает
	res, bodyStr := ts.SendRequest(t, http.MethodPatch, patchURL, applicantToken, map[string]interface{}{"status": "ACCEPTED"})
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, bodyStr, `"status":"ACCEPTED"`)

	// Терминальный статус не меняется - ни на DECLINED, ни повторно
	res, bodyStr = ts.SendRequest(t, http.MethodPatch, patchURL, applicantToken, map[string]interface{}{"status": "DECLINED"})
	assert.Equal(t, http.StatusConflict, res.StatusCode, "Решенное приглашение неизменно. Ответ: "+bodyStr)

	res, _ = ts.SendRequest(t, http.MethodPatch, patchURL, applicantToken, map[string]interface{}{"status": "ACCEPTED"})
	assert.Equal(t, http.StatusConflict, res.StatusCode)
}

// TestInterview_DeclineFlow - отклонение тоже терминально
func TestInterview_DeclineFlow(t *testing.T) {
	ts := GetTestServer(t)
	tx := ts.BeginTransaction(t)
	defer ts.RollbackTransaction(t, tx)

	applicantToken, applicant := helpers.CreateAndLoginApplicant(t, ts, tx)
	recruiterToken, recruiter := helpers.CreateAndLoginRecruiter(t, ts, tx)

	job := helpers.CreateTestJob(t, tx, recruiter.ID, "QA Engineer", "Astana")
	application := CreateTestApplication(t, tx, job.ID, applicant.ID)
	threadID := OpenTestThread(t, ts, recruiterToken, application.ID)

	messageID := sendInterviewRequest(t, ts, recruiterToken, threadID)
	patchURL := "/api/v1/chat/chats/" + threadID + "/messages/" + messageID

	res, bodyStr := ts.SendRequest(t, http.MethodPatch, patchURL, applicantToken, map[string]interface{}{"status": "DECLINED"})
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, bodyStr, `"status":"DECLINED"`)

	res, _ = ts.SendRequest(t, http.MethodPatch, patchURL, applicantToken, map[string]interface{}{"status": "ACCEPTED"})
	assert.Equal(t, http.StatusConflict, res.StatusCode)
}

// TestInterview_MalformedPayload - кривая нагрузка отклоняется до записи
func TestInterview_MalformedPayload(t *testing.T) {
	ts := GetTestServer(t)
	tx := ts.BeginTransaction(t)
	defer ts.RollbackTransaction(t, tx)

	applicantToken, applicant := helpers.CreateAndLoginApplicant(t, ts, tx)
	recruiterToken, recruiter := helpers.CreateAndLoginRecruiter(t, ts, tx)

	job := helpers.CreateTestJob(t, tx, recruiter.ID, "Data Engineer", "Almaty")
	application := CreateTestApplication(t, tx, job.ID, applicant.ID)
	threadID := OpenTestThread(t, ts, recruiterToken, application.ID)
	messagesURL := "/api/v1/chat/chats/" + threadID + "/messages"

	// Не-JSON вместо приглашения
	res, _ := ts.SendRequest(t, http.MethodPost, messagesURL, recruiterToken, map[string]interface{}{
		"message":     "давайте созвонимся завтра",
		"messageType": "INTERVIEW_REQUEST",
	})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	// Валидный JSON, но без даты
	raw, _ := json.Marshal(map[string]interface{}{"location_mode": "ONLINE"})
	res, _ = ts.SendRequest(t, http.MethodPost, messagesURL, recruiterToken, map[string]interface{}{
		"message":     string(raw),
		"messageType": "INTERVIEW_REQUEST",
	})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	// Попытка создать приглашение сразу в ACCEPTED
	raw, _ = json.Marshal(map[string]interface{}{
		"proposed_datetime": time.Now().Add(24 * time.Hour).Format(time.RFC3339),
		"location_mode":     "ONSITE",
		"status":            "ACCEPTED",
	})
	res, _ = ts.SendRequest(t, http.MethodPost, messagesURL, recruiterToken, map[string]interface{}{
		"message":     string(raw),
		"messageType": "INTERVIEW_REQUEST",
	})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	// История треда пуста - ни одно кривое приглашение не записалось
	res, bodyStr := ts.SendRequest(t, http.MethodGet, "/api/v1/chat/chats/"+threadID, applicantToken, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	var detail struct {
		Messages []interface{} `json:"messages"`
	}
	assert.NoError(t, json.Unmarshal([]byte(bodyStr), &detail))
	assert.Empty(t, detail.Messages)
}
