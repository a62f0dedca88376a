package assessment

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/assessgen/backend/internal/extract"
	"github.com/assessgen/backend/internal/models"
	"github.com/gorilla/mux"
)

func newTestRouter(repo Repository, source TextSource, gen QuestionGenerator) *mux.Router {
	r := mux.NewRouter()
	NewHandler(NewService(repo, source, gen, nil), nil).Register(r, nil, nil)
	return r
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp models.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return resp.Error
}

func TestHandler_Health(t *testing.T) {
	for _, loaded := range []bool{true, false} {
		r := newTestRouter(&fakeRepo{}, fakeSource{}, &fakeGenerator{loaded: loaded})
		rec := doRequest(t, r, "GET", "/health", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var resp models.HealthResponse
		json.NewDecoder(rec.Body).Decode(&resp)
		if resp.Status != "healthy" || resp.ModelLoaded != loaded {
			t.Errorf("unexpected health %+v", resp)
		}
	}
}

func TestHandler_GenerateQuestions(t *testing.T) {
	gen := &fakeGenerator{questions: []models.QuestionCandidate{validCandidate(), validCandidate()}}
	r := newTestRouter(&fakeRepo{}, fakeSource{text: "text"}, gen)

	rec := doRequest(t, r, "POST", "/generate-questions", `{"moduleId":"m","pdfUrl":"http://x/a.pdf"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp models.GenerateQuestionsResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(resp.Questions))
	}
	if len(resp.Questions[0].Options) != 4 || resp.Questions[0].CorrectAnswer == "" {
		t.Errorf("unexpected question %+v", resp.Questions[0])
	}
}

func TestHandler_GenerateQuestions_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		source     fakeSource
		gen        *fakeGenerator
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "bad json",
			body:       `{"pdfUrl":`,
			gen:        &fakeGenerator{},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Invalid request body",
		},
		{
			name:       "fetch failure",
			body:       `{"moduleId":"m","pdfUrl":"http://x/a.pdf"}`,
			source:     fakeSource{err: &extract.ExtractionError{Ref: "http://x/a.pdf", Err: errors.New("unexpected status 404 Not Found")}},
			gen:        &fakeGenerator{},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Failed to extract text from PDF: unexpected status 404 Not Found",
		},
		{
			name:       "too little text",
			body:       `{"moduleId":"m","pdfUrl":"http://x/a.pdf"}`,
			source:     fakeSource{err: &extract.ExtractionError{Ref: "http://x/a.pdf", Err: extract.ErrInsufficientText}},
			gen:        &fakeGenerator{},
			wantStatus: http.StatusBadRequest,
			wantMsg:    "PDF text extraction failed or PDF is empty",
		},
		{
			name:       "no questions",
			body:       `{"moduleId":"m","pdfUrl":"http://x/a.pdf"}`,
			source:     fakeSource{text: strings.Repeat(" ", 600)},
			gen:        &fakeGenerator{},
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "Failed to generate questions from PDF",
		},
	}

	for _, tt := range tests {
		r := newTestRouter(&fakeRepo{}, tt.source, tt.gen)
		rec := doRequest(t, r, "POST", "/generate-questions", tt.body)
		if rec.Code != tt.wantStatus {
			t.Errorf("%s: expected %d, got %d", tt.name, tt.wantStatus, rec.Code)
			continue
		}
		if msg := decodeError(t, rec); msg != tt.wantMsg {
			t.Errorf("%s: error = %q, want %q", tt.name, msg, tt.wantMsg)
		}
	}
}

func TestHandler_ScoreAssessment(t *testing.T) {
	repo := &fakeRepo{correct: map[string]string{"q1": "B", "q2": "A"}}
	r := newTestRouter(repo, fakeSource{}, &fakeGenerator{})

	body := `{"moduleId":"m","assessmentId":"a","traineeId":"t","answers":[{"questionId":"q1","answer":"b"},{"questionId":"q2","answer":"C"}]}`
	rec := doRequest(t, r, "POST", "/score-assessment", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var raw map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if raw["score"] != 1.0 || raw["total"] != 2.0 || raw["percentage"] != 50.0 {
		t.Errorf("unexpected response %v", raw)
	}
}

func TestHandler_ScoreAssessment_PersistenceFailure(t *testing.T) {
	r := newTestRouter(&fakeRepo{correctErr: errors.New("db down")}, fakeSource{}, &fakeGenerator{})

	rec := doRequest(t, r, "POST", "/score-assessment", `{"moduleId":"m","answers":[]}`)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
}

func TestHandler_ModuleQuestions(t *testing.T) {
	repo := &fakeRepo{}
	r := newTestRouter(repo, fakeSource{}, &fakeGenerator{})

	payload, _ := json.Marshal(models.SaveQuestionsRequest{Questions: []models.QuestionCandidate{validCandidate()}})
	rec := doRequest(t, r, "POST", "/modules/m-1/questions", string(payload))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var saved models.SaveQuestionsResponse
	json.NewDecoder(rec.Body).Decode(&saved)
	if saved.AssessmentID == "" || len(saved.Questions) != 1 || saved.Questions[0].ModuleID != "m-1" {
		t.Errorf("unexpected save response %+v", saved)
	}

	bad := validCandidate()
	bad.Options = bad.Options[:3]
	invalid, _ := json.Marshal(models.SaveQuestionsRequest{Questions: []models.QuestionCandidate{bad}})
	rec = doRequest(t, r, "POST", "/modules/m-1/questions", string(invalid))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed options, got %d", rec.Code)
	}
	if msg := decodeError(t, rec); !strings.Contains(msg, "expected 4 options, got 3") {
		t.Errorf("unexpected error %q", msg)
	}

	repo.listed = []models.StoredQuestion{{ID: "q1", ModuleID: "m-1", Question: "Q?", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: "a"}}
	rec = doRequest(t, r, "GET", "/modules/m-1/questions", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "correctAnswer") {
		t.Errorf("listing must not expose correct answers: %s", rec.Body.String())
	}
}
