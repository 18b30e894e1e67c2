package routes_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"patient-studies-server/internal/accounts"
	"patient-studies-server/internal/config"
	"patient-studies-server/internal/models"
	"patient-studies-server/internal/routes"
	"patient-studies-server/internal/testdb"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type envelope struct {
	Status  int                 `json:"status"`
	Message string              `json:"message"`
	Data    json.RawMessage     `json:"data"`
	Error   string              `json:"error"`
	Errors  map[string][]string `json:"errors"`
}

type studyBody struct {
	ID           uint   `json:"id"`
	UrgencyLevel string `json:"urgency_level"`
	BodyPart     string `json:"body_part"`
	Description  string `json:"description"`
	Type         string `json:"type"`
	Patient      uint   `json:"patient"`
}

type patientBody struct {
	ID        uint   `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	BirthDate string `json:"birth_date"`
	Email     string `json:"email"`
}

type server struct {
	t      *testing.T
	db     *gorm.DB
	router *gin.Engine
	svc    *accounts.Service
	token  string
}

func newServer(t *testing.T) *server {
	t.Helper()
	db := testdb.New(t)
	testdb.SeedCatalog(t, db, []string{"Chest", "Head"}, []string{"X-Ray", "MRI"})

	log := zerolog.New(io.Discard)
	cfg := &config.Config{APIPrefix: "/api", Origin: "http://localhost:4200"}
	s := &server{
		t:      t,
		db:     db,
		router: routes.NewRouter(db, cfg, log),
		svc:    accounts.NewService(db, log),
	}
	s.token = s.createUser("admin", true)
	return s
}

func (s *server) createUser(username string, staff bool) string {
	s.t.Helper()
	user := models.User{Username: username, IsActive: true, IsStaff: staff}
	if err := user.SetPassword("correct horse"); err != nil {
		s.t.Fatalf("set password: %v", err)
	}
	token, err := s.svc.CreateUser(context.Background(), &user, accounts.CreateOptions{})
	if err != nil {
		s.t.Fatalf("create user: %v", err)
	}
	return token.Key
}

func (s *server) requestAs(token, method, path string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			s.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *server) request(method, path string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	return s.requestAs(s.token, method, path, body)
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data any) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	if data != nil {
		if err := json.Unmarshal(env.Data, data); err != nil {
			t.Fatalf("decode data %q: %v", env.Data, err)
		}
	}
	return env
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, w.Code, w.Body.String())
	}
}

func (s *server) createPatient(first string) patientBody {
	s.t.Helper()
	w := s.request(http.MethodPost, "/api/patients/", map[string]string{
		"first_name": first,
		"last_name":  "Lovelace",
		"birth_date": "1990-01-02",
		"email":      first + "@example.com",
	})
	expectStatus(s.t, w, http.StatusCreated)
	var p patientBody
	decode(s.t, w, &p)
	return p
}

func (s *server) createStudy(patientID uint) studyBody {
	s.t.Helper()
	w := s.request(http.MethodPost, fmt.Sprintf("/api/patients/%d/studies", patientID), map[string]string{
		"urgency_level": "LOW",
		"body_part":     "Chest",
		"type":          "X-Ray",
		"description":   "persistent cough",
	})
	expectStatus(s.t, w, http.StatusCreated)
	var st studyBody
	decode(s.t, w, &st)
	return st
}

func count(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestStudyLifecycleScopedToPatient(t *testing.T) {
	s := newServer(t)
	p1 := s.createPatient("Ada")
	p2 := s.createPatient("Grace")

	study := s.createStudy(p1.ID)
	if study.BodyPart != "Chest" || study.Type != "X-Ray" || study.UrgencyLevel != "LOW" {
		t.Fatalf("unexpected created study %+v", study)
	}
	if study.Patient != p1.ID {
		t.Errorf("expected patient %d, got %d", p1.ID, study.Patient)
	}

	w := s.request(http.MethodGet, fmt.Sprintf("/api/patients/%d/studies/%d/", p2.ID, study.ID), nil)
	expectStatus(t, w, http.StatusNotFound)

	detail := fmt.Sprintf("/api/patients/%d/studies/%d/", p1.ID, study.ID)
	w = s.request(http.MethodPatch, detail, map[string]string{"body_part": "Tail"})
	expectStatus(t, w, http.StatusBadRequest)
	env := decode(t, w, nil)
	if got := env.Errors["body_part"]; len(got) != 1 || got[0] != "Tail is not in body parts catalog" {
		t.Errorf("unexpected body_part errors %v", got)
	}

	w = s.request(http.MethodGet, detail, nil)
	expectStatus(t, w, http.StatusOK)
	var after studyBody
	decode(t, w, &after)
	if after.BodyPart != "Chest" {
		t.Errorf("body part changed to %q after rejected update", after.BodyPart)
	}
}

func TestStudyWritesRejectUnknownCatalogNames(t *testing.T) {
	s := newServer(t)
	p := s.createPatient("Ada")

	w := s.request(http.MethodPost, fmt.Sprintf("/api/patients/%d/studies", p.ID), map[string]string{
		"urgency_level": "HIGH",
		"body_part":     "Chest",
		"type":          "Ultrasound",
		"description":   "scan",
	})
	expectStatus(t, w, http.StatusBadRequest)
	env := decode(t, w, nil)
	if got := env.Errors["type"]; len(got) != 1 || got[0] != "Ultrasound is not in types catalog" {
		t.Errorf("unexpected type errors %v", got)
	}
	if n := count(t, s.db, &models.Study{}); n != 0 {
		t.Errorf("expected no studies, found %d", n)
	}
}

func TestStudyReplaceAndPatch(t *testing.T) {
	s := newServer(t)
	p := s.createPatient("Ada")
	study := s.createStudy(p.ID)
	detail := fmt.Sprintf("/api/patients/%d/studies/%d/", p.ID, study.ID)

	w := s.request(http.MethodPut, detail, map[string]string{"body_part": "Head"})
	expectStatus(t, w, http.StatusBadRequest)
	env := decode(t, w, nil)
	for _, field := range []string{"urgency_level", "description", "type"} {
		if len(env.Errors[field]) == 0 {
			t.Errorf("expected required error for %s, got %v", field, env.Errors)
		}
	}

	w = s.request(http.MethodPut, detail, map[string]string{
		"urgency_level": "HIGH",
		"body_part":     "Head",
		"type":          "MRI",
		"description":   "follow-up",
	})
	expectStatus(t, w, http.StatusOK)
	var replaced studyBody
	decode(t, w, &replaced)
	if replaced.BodyPart != "Head" || replaced.Type != "MRI" || replaced.UrgencyLevel != "HIGH" {
		t.Errorf("unexpected replaced study %+v", replaced)
	}

	w = s.request(http.MethodPatch, detail, map[string]string{"urgency_level": "MID"})
	expectStatus(t, w, http.StatusOK)
	var patched studyBody
	decode(t, w, &patched)
	if patched.UrgencyLevel != "MID" || patched.BodyPart != "Head" {
		t.Errorf("unexpected patched study %+v", patched)
	}

	w = s.request(http.MethodGet, fmt.Sprintf("/api/patients/%d/studies", p.ID), nil)
	expectStatus(t, w, http.StatusOK)
	var list []studyBody
	decode(t, w, &list)
	if len(list) != 1 || list[0].Type != "MRI" {
		t.Errorf("unexpected study list %+v", list)
	}

	w = s.request(http.MethodDelete, detail, nil)
	expectStatus(t, w, http.StatusNoContent)
	w = s.request(http.MethodDelete, detail, nil)
	expectStatus(t, w, http.StatusNotFound)
}

func TestStudiesOfUnknownPatient(t *testing.T) {
	s := newServer(t)

	w := s.request(http.MethodGet, "/api/patients/999/studies", nil)
	expectStatus(t, w, http.StatusNotFound)

	w = s.request(http.MethodPost, "/api/patients/999/studies", map[string]string{
		"urgency_level": "LOW", "body_part": "Chest", "type": "X-Ray", "description": "scan",
	})
	expectStatus(t, w, http.StatusNotFound)
}

func TestPatientCRUD(t *testing.T) {
	s := newServer(t)

	w := s.request(http.MethodPost, "/api/patients/", map[string]string{"first_name": "Ada"})
	expectStatus(t, w, http.StatusBadRequest)
	env := decode(t, w, nil)
	for _, field := range []string{"last_name", "birth_date", "email"} {
		if len(env.Errors[field]) == 0 {
			t.Errorf("expected error for %s, got %v", field, env.Errors)
		}
	}

	p := s.createPatient("Ada")
	detail := fmt.Sprintf("/api/patients/%d/", p.ID)

	w = s.request(http.MethodPatch, detail, map[string]string{"first_name": "Augusta"})
	expectStatus(t, w, http.StatusOK)

	w = s.request(http.MethodGet, detail, nil)
	expectStatus(t, w, http.StatusOK)
	var got patientBody
	decode(t, w, &got)
	if got.FirstName != "Augusta" || got.LastName != "Lovelace" || got.BirthDate != "1990-01-02" {
		t.Errorf("unexpected patient %+v", got)
	}

	w = s.request(http.MethodPut, detail, map[string]string{"first_name": "Ada"})
	expectStatus(t, w, http.StatusBadRequest)

	w = s.request(http.MethodGet, "/api/patients/", nil)
	expectStatus(t, w, http.StatusOK)
	var list []patientBody
	decode(t, w, &list)
	if len(list) != 1 {
		t.Errorf("expected 1 patient, got %d", len(list))
	}

	w = s.request(http.MethodDelete, detail, nil)
	expectStatus(t, w, http.StatusNoContent)
	w = s.request(http.MethodGet, detail, nil)
	expectStatus(t, w, http.StatusNotFound)
	w = s.request(http.MethodGet, "/api/patients/abc/", nil)
	expectStatus(t, w, http.StatusNotFound)
}

func TestDeleteReferencedRowsConflicts(t *testing.T) {
	s := newServer(t)
	p := s.createPatient("Ada")
	study := s.createStudy(p.ID)

	chest, err := models.FindBodyPart(s.db, "Chest")
	if err != nil {
		t.Fatalf("find body part: %v", err)
	}
	xray, err := models.FindStudyType(s.db, "X-Ray")
	if err != nil {
		t.Fatalf("find type: %v", err)
	}

	for _, path := range []string{
		fmt.Sprintf("/api/patients/%d/", p.ID),
		fmt.Sprintf("/api/body-parts/%d/", chest.ID),
		fmt.Sprintf("/api/types/%d/", xray.ID),
	} {
		w := s.request(http.MethodDelete, path, nil)
		expectStatus(t, w, http.StatusConflict)
	}
	if n := count(t, s.db, &models.Patient{}); n != 1 {
		t.Errorf("expected 1 patient, got %d", n)
	}
	if n := count(t, s.db, &models.BodyPart{}); n != 2 {
		t.Errorf("expected 2 body parts, got %d", n)
	}
	if n := count(t, s.db, &models.StudyType{}); n != 2 {
		t.Errorf("expected 2 types, got %d", n)
	}

	w := s.request(http.MethodDelete, fmt.Sprintf("/api/patients/%d/studies/%d/", p.ID, study.ID), nil)
	expectStatus(t, w, http.StatusNoContent)
	w = s.request(http.MethodDelete, fmt.Sprintf("/api/body-parts/%d/", chest.ID), nil)
	expectStatus(t, w, http.StatusNoContent)
	w = s.request(http.MethodDelete, fmt.Sprintf("/api/patients/%d/", p.ID), nil)
	expectStatus(t, w, http.StatusNoContent)
}

func TestUnauthenticatedRequestsChangeNothing(t *testing.T) {
	s := newServer(t)
	p := s.createPatient("Ada")
	study := s.createStudy(p.ID)

	patient := fmt.Sprintf("/api/patients/%d/", p.ID)
	studies := fmt.Sprintf("/api/patients/%d/studies", p.ID)
	detail := fmt.Sprintf("/api/patients/%d/studies/%d/", p.ID, study.ID)
	newStudy := map[string]string{"urgency_level": "LOW", "body_part": "Head", "type": "MRI", "description": "scan"}

	cases := []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodGet, "/api/patients/", nil},
		{http.MethodPost, "/api/patients/", map[string]string{"first_name": "X", "last_name": "Y", "birth_date": "2000-01-01", "email": "x@example.com"}},
		{http.MethodOptions, "/api/patients/", nil},
		{http.MethodGet, patient, nil},
		{http.MethodPatch, patient, map[string]string{"first_name": "Z"}},
		{http.MethodPut, patient, map[string]string{"first_name": "Z"}},
		{http.MethodDelete, patient, nil},
		{http.MethodGet, studies, nil},
		{http.MethodPost, studies, newStudy},
		{http.MethodOptions, studies, nil},
		{http.MethodGet, detail, nil},
		{http.MethodPatch, detail, map[string]string{"body_part": "Head"}},
		{http.MethodPut, detail, newStudy},
		{http.MethodDelete, detail, nil},
		{http.MethodOptions, detail, nil},
		{http.MethodGet, "/api/body-parts/", nil},
		{http.MethodPost, "/api/body-parts/", map[string]string{"name": "Knee"}},
		{http.MethodDelete, "/api/body-parts/2/", nil},
		{http.MethodGet, "/api/types/", nil},
		{http.MethodPost, "/api/types/", map[string]string{"name": "CT"}},
		{http.MethodDelete, "/api/types/2/", nil},
		{http.MethodPost, "/api/accounts/", map[string]any{"username": "eve", "password": "long enough"}},
	}

	before := []int64{
		count(t, s.db, &models.Patient{}),
		count(t, s.db, &models.Study{}),
		count(t, s.db, &models.BodyPart{}),
		count(t, s.db, &models.StudyType{}),
		count(t, s.db, &models.User{}),
	}

	for _, tc := range cases {
		for _, token := range []string{"", "not-a-token"} {
			w := s.requestAs(token, tc.method, tc.path, tc.body)
			if w.Code != http.StatusUnauthorized {
				t.Errorf("%s %s with token %q: expected 401, got %d", tc.method, tc.path, token, w.Code)
				continue
			}
			if h := w.Header().Get("WWW-Authenticate"); h != "Token" {
				t.Errorf("%s %s: expected WWW-Authenticate Token, got %q", tc.method, tc.path, h)
			}
		}
	}

	after := []int64{
		count(t, s.db, &models.Patient{}),
		count(t, s.db, &models.Study{}),
		count(t, s.db, &models.BodyPart{}),
		count(t, s.db, &models.StudyType{}),
		count(t, s.db, &models.User{}),
	}
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("row counts changed: before %v, after %v", before, after)
			break
		}
	}

	var got studyBody
	w := s.request(http.MethodGet, detail, nil)
	expectStatus(t, w, http.StatusOK)
	decode(t, w, &got)
	if got.BodyPart != "Chest" {
		t.Errorf("study changed by unauthenticated request: %+v", got)
	}
}

func TestInactiveUserIsRejected(t *testing.T) {
	s := newServer(t)
	token := s.createUser("retired", false)
	if err := s.db.Model(&models.User{}).Where("username = ?", "retired").Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	w := s.requestAs(token, http.MethodGet, "/api/patients/", nil)
	expectStatus(t, w, http.StatusUnauthorized)
}

func TestBearerSchemeAccepted(t *testing.T) {
	s := newServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/patients/", nil)
	req.Header.Set("Authorization", "Bearer "+s.token)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	expectStatus(t, w, http.StatusOK)
}

func TestStudyMetadataReflectsCatalogChanges(t *testing.T) {
	s := newServer(t)
	p := s.createPatient("Ada")
	studies := fmt.Sprintf("/api/patients/%d/studies", p.ID)

	choicesFor := func(field string) []string {
		t.Helper()
		w := s.request(http.MethodOptions, studies, nil)
		expectStatus(t, w, http.StatusOK)
		var md struct {
			Actions map[string]map[string]struct {
				ReadOnly bool `json:"read_only"`
				Choices  []struct {
					Value string `json:"value"`
				} `json:"choices"`
			} `json:"actions"`
		}
		decode(t, w, &md)
		var values []string
		for _, c := range md.Actions[http.MethodPost][field].Choices {
			values = append(values, c.Value)
		}
		return values
	}

	if got := choicesFor("body_part"); fmt.Sprint(got) != "[Chest Head]" {
		t.Fatalf("unexpected body part choices %v", got)
	}

	w := s.request(http.MethodPost, "/api/body-parts/", map[string]string{"name": "Abdomen"})
	expectStatus(t, w, http.StatusCreated)

	if got := choicesFor("body_part"); fmt.Sprint(got) != "[Abdomen Chest Head]" {
		t.Errorf("metadata did not pick up new body part: %v", got)
	}
	if got := choicesFor("type"); fmt.Sprint(got) != "[MRI X-Ray]" {
		t.Errorf("unexpected type choices %v", got)
	}
}

func TestPatientMetadata(t *testing.T) {
	s := newServer(t)
	w := s.request(http.MethodOptions, "/api/patients/", nil)
	expectStatus(t, w, http.StatusOK)
	var md struct {
		Name    string                                `json:"name"`
		Actions map[string]map[string]json.RawMessage `json:"actions"`
	}
	decode(t, w, &md)
	if md.Name != "Patient List" {
		t.Errorf("unexpected name %q", md.Name)
	}
	if _, ok := md.Actions[http.MethodPost]["birth_date"]; !ok {
		t.Errorf("expected birth_date in POST action, got %v", md.Actions)
	}
}

func TestCatalogCreateRejectsDuplicates(t *testing.T) {
	s := newServer(t)

	w := s.request(http.MethodPost, "/api/types/", map[string]string{"name": "MRI"})
	expectStatus(t, w, http.StatusBadRequest)
	env := decode(t, w, nil)
	if got := env.Errors["name"]; len(got) != 1 || got[0] != "type with this name already exists." {
		t.Errorf("unexpected name errors %v", got)
	}

	w = s.request(http.MethodPost, "/api/types/", map[string]string{"name": "CT"})
	expectStatus(t, w, http.StatusCreated)

	w = s.request(http.MethodGet, "/api/types/", nil)
	expectStatus(t, w, http.StatusOK)
	var list []struct {
		Name string `json:"name"`
	}
	decode(t, w, &list)
	if len(list) != 3 || list[0].Name != "CT" {
		t.Errorf("unexpected type list %+v", list)
	}
}

func TestAccountCreation(t *testing.T) {
	s := newServer(t)

	w := s.request(http.MethodPost, "/api/accounts/", map[string]any{"username": "nurse", "password": "long enough"})
	expectStatus(t, w, http.StatusCreated)
	var account struct {
		ID       uint   `json:"id"`
		Username string `json:"username"`
		IsStaff  bool   `json:"is_staff"`
		Token    string `json:"token"`
	}
	decode(t, w, &account)
	if len(account.Token) != 40 || account.IsStaff {
		t.Fatalf("unexpected account %+v", account)
	}

	var tokens int64
	s.db.Model(&models.Token{}).Where("user_id = ?", account.ID).Count(&tokens)
	if tokens != 1 {
		t.Errorf("expected exactly one token, got %d", tokens)
	}

	w = s.requestAs(account.Token, http.MethodGet, "/api/patients/", nil)
	expectStatus(t, w, http.StatusOK)

	w = s.requestAs(account.Token, http.MethodPost, "/api/accounts/", map[string]any{"username": "intruder", "password": "long enough"})
	expectStatus(t, w, http.StatusForbidden)

	w = s.request(http.MethodPost, "/api/accounts/", map[string]any{"username": "nurse", "password": "long enough"})
	expectStatus(t, w, http.StatusBadRequest)
	env := decode(t, w, nil)
	if len(env.Errors["username"]) == 0 {
		t.Errorf("expected username error, got %v", env.Errors)
	}

	w = s.request(http.MethodPost, "/api/accounts/", map[string]any{"username": "short", "password": "x"})
	expectStatus(t, w, http.StatusBadRequest)
}

func TestHealthAndMetricsArePublic(t *testing.T) {
	s := newServer(t)

	w := s.requestAs("", http.MethodGet, "/health", nil)
	expectStatus(t, w, http.StatusOK)

	s.request(http.MethodGet, "/api/patients/", nil)
	w = s.requestAs("", http.MethodGet, "/metrics", nil)
	expectStatus(t, w, http.StatusOK)
	if !bytes.Contains(w.Body.Bytes(), []byte("http_requests_total")) {
		t.Error("expected http_requests_total in metrics output")
	}
}

func TestRequestIDEchoed(t *testing.T) {
	s := newServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Errorf("expected echoed request id, got %q", got)
	}
}

func TestTokenAuth(t *testing.T) {
	s := newServer(t)

	w := s.requestAs("", http.MethodPost, "/api/token-auth/", map[string]string{"username": "admin", "password": "correct horse"})
	expectStatus(t, w, http.StatusOK)
	var body struct {
		Token string `json:"token"`
	}
	decode(t, w, &body)
	if body.Token != s.token {
		t.Errorf("token = %q, want %q", body.Token, s.token)
	}

	w = s.requestAs("", http.MethodPost, "/api/token-auth/", map[string]string{"username": "admin", "password": "wrong"})
	expectStatus(t, w, http.StatusBadRequest)
	env := decode(t, w, nil)
	if len(env.Errors["non_field_errors"]) == 0 {
		t.Errorf("expected non_field_errors, got %v", env.Errors)
	}
}

func TestNullFieldsAreRejected(t *testing.T) {
	s := newServer(t)
	p := s.createPatient("Ada")
	study := s.createStudy(p.ID)
	detail := fmt.Sprintf("/api/patients/%d/studies/%d/", p.ID, study.ID)

	for _, field := range []string{"body_part", "description"} {
		w := s.request(http.MethodPatch, detail, map[string]any{field: nil})
		expectStatus(t, w, http.StatusBadRequest)
		env := decode(t, w, nil)
		if got := env.Errors[field]; len(got) != 1 || got[0] != "This field may not be null." {
			t.Errorf("%s errors = %v", field, got)
		}
	}

	w := s.request(http.MethodGet, detail, nil)
	expectStatus(t, w, http.StatusOK)
	var after studyBody
	decode(t, w, &after)
	if after != study {
		t.Errorf("study changed: before %+v, after %+v", study, after)
	}

	w = s.request(http.MethodPost, "/api/patients/", map[string]any{
		"first_name": nil,
		"last_name":  "Lovelace",
		"birth_date": "1990-01-02",
		"email":      "ada@example.com",
	})
	expectStatus(t, w, http.StatusBadRequest)
	env := decode(t, w, nil)
	if got := env.Errors["first_name"]; len(got) != 1 || got[0] != "This field may not be null." {
		t.Errorf("first_name errors = %v", got)
	}
	if n := count(t, s.db, &models.Patient{}); n != 1 {
		t.Errorf("expected 1 patient, got %d", n)
	}
}

func TestCatalogCreateRejectsBlankNames(t *testing.T) {
	s := newServer(t)

	for _, path := range []string{"/api/body-parts/", "/api/types/"} {
		w := s.request(http.MethodPost, path, map[string]string{"name": "   "})
		expectStatus(t, w, http.StatusBadRequest)
		env := decode(t, w, nil)
		if got := env.Errors["name"]; len(got) != 1 || got[0] != "This field may not be blank." {
			t.Errorf("%s name errors = %v", path, got)
		}
	}
	if n := count(t, s.db, &models.BodyPart{}); n != 2 {
		t.Errorf("expected 2 body parts, got %d", n)
	}
	if n := count(t, s.db, &models.StudyType{}); n != 2 {
		t.Errorf("expected 2 types, got %d", n)
	}

	w := s.request(http.MethodPost, "/api/body-parts/", map[string]string{"name": "  Knee "})
	expectStatus(t, w, http.StatusCreated)
	var part struct {
		Name string `json:"name"`
	}
	decode(t, w, &part)
	if part.Name != "Knee" {
		t.Errorf("name = %q, want trimmed Knee", part.Name)
	}
}

func TestPatientDetailMetadata(t *testing.T) {
	s := newServer(t)
	p := s.createPatient("Ada")

	w := s.request(http.MethodOptions, fmt.Sprintf("/api/patients/%d/", p.ID), nil)
	expectStatus(t, w, http.StatusOK)
	var md struct {
		Name    string                                `json:"name"`
		Actions map[string]map[string]json.RawMessage `json:"actions"`
	}
	decode(t, w, &md)
	if md.Name != "Patient Detail" {
		t.Errorf("unexpected name %q", md.Name)
	}
	if _, ok := md.Actions[http.MethodPut]["email"]; !ok {
		t.Errorf("expected email in PUT action, got %v", md.Actions)
	}

	w = s.requestAs("", http.MethodOptions, fmt.Sprintf("/api/patients/%d/", p.ID), nil)
	expectStatus(t, w, http.StatusUnauthorized)
}
