package helpers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sync"
	"testing"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"jobboard_backend/database"
	"jobboard_backend/internal/app"
	"jobboard_backend/internal/config"
	"jobboard_backend/pkg/contextkeys"
)

// TestServer - httptest-сервер поверх полного приложения.
// Каждый тест работает в своей транзакции: BeginTransaction кладет
// tx в сервер, обертка над роутером прокидывает ее в context каждого
// запроса, DBMiddleware подхватывает. RollbackTransaction откатывает
// все, что тест натворил.
type TestServer struct {
	Server *httptest.Server
	DB     *gorm.DB

	mu sync.RWMutex
	tx *gorm.DB
}

// NewTestServer создает и настраивает тестовый сервер и БД
func NewTestServer(t *testing.T) *TestServer {
	config.LoadConfig()
	cfg := config.GetConfig()
	dsn := cfg.Database.DSN

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("Не удалось подключиться к тестовой БД (%s): %v", dsn, err)
	}

	if err := database.Migrate(db); err != nil {
		t.Fatalf("Не удалось выполнить миграции тестовой БД: %v", err)
	}

	router := app.SetupRouter(cfg, db)

	ts := &TestServer{DB: db}

	// Обертка прокидывает активную транзакцию теста в context запроса
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ts.mu.RLock()
		tx := ts.tx
		ts.mu.RUnlock()

		if tx != nil {
			ctx := context.WithValue(r.Context(), contextkeys.DBContextKey, tx)
			r = r.WithContext(ctx)
		}
		router.ServeHTTP(w, r)
	}))

	log.Printf("✅ Тестовый сервер запущен, тестовая БД (%s) настроена.", dsn)

	return ts
}

func (ts *TestServer) Close() {
	ts.Server.Close()
	sqlDB, _ := ts.DB.DB()
	sqlDB.Close()
}

// BeginTransaction открывает транзакцию теста. Все запросы к серверу
// до RollbackTransaction идут внутри нее.
func (ts *TestServer) BeginTransaction(t *testing.T) *gorm.DB {
	tx := ts.DB.Begin()
	if tx.Error != nil {
		t.Fatalf("Не удалось открыть транзакцию: %v", tx.Error)
	}

	ts.mu.Lock()
	ts.tx = tx
	ts.mu.Unlock()

	return tx
}

// RollbackTransaction откатывает транзакцию теста
func (ts *TestServer) RollbackTransaction(t *testing.T, tx *gorm.DB) {
	ts.mu.Lock()
	if ts.tx == tx {
		ts.tx = nil
	}
	ts.mu.Unlock()

	if err := tx.Rollback().Error; err != nil {
		t.Logf("Rollback вернул ошибку (возможно, tx уже закрыта): %v", err)
	}
}

// SendRequest выполняет JSON-запрос к тестовому серверу
func (ts *TestServer) SendRequest(t *testing.T, method, path, token string, body interface{}) (*http.Response, string) {
	url := ts.Server.URL + path

	var reqBody io.Reader = nil
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Ошибка кодирования JSON для запроса: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		t.Fatalf("Ошибка создания HTTP-запроса: %v", err)
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := ts.Server.Client().Do(req)
	if err != nil {
		t.Fatalf("Ошибка отправки HTTP-запроса: %v", err)
	}

	resBodyBytes, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("Ошибка чтения тела ответа: %v", err)
	}
	defer res.Body.Close()

	return res, string(resBodyBytes)
}

// SendMultipart загружает файл multipart-запросом (поле "file")
func (ts *TestServer) SendMultipart(t *testing.T, path, token, filename, contentType string, content []byte) (*http.Response, string) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("Ошибка создания multipart-части: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("Ошибка записи содержимого файла: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Ошибка закрытия multipart-writer: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, ts.Server.URL+path, &buf)
	if err != nil {
		t.Fatalf("Ошибка создания HTTP-запроса: %v", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := ts.Server.Client().Do(req)
	if err != nil {
		t.Fatalf("Ошибка отправки HTTP-запроса: %v", err)
	}

	resBodyBytes, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("Ошибка чтения тела ответа: %v", err)
	}
	defer res.Body.Close()

	return res, string(resBodyBytes)
}
