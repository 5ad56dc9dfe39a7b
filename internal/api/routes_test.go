package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"reliefnet-backend-go/internal/auth"
	"reliefnet-backend-go/internal/config"
	"reliefnet-backend-go/internal/core"
	"reliefnet-backend-go/internal/db"
	"reliefnet-backend-go/internal/models"
	"reliefnet-backend-go/internal/query"
	"reliefnet-backend-go/pkg/cache"
	"reliefnet-backend-go/pkg/filestore"
	"reliefnet-backend-go/pkg/messagequeue"
	"reliefnet-backend-go/pkg/metrics"
)

const bootstrapKey = "bootstrap-key"

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	t      *testing.T
	router *gin.Engine
	repos  db.Repositories
}

type envelope struct {
	Success    bool              `json:"success"`
	Message    string            `json:"message"`
	Data       json.RawMessage   `json:"data"`
	Pagination *query.Pagination `json:"pagination"`
	Error      string            `json:"error"`
}

func (e envelope) decode(t *testing.T, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(e.Data, v))
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := zaptest.NewLogger(t)
	uploadDir := filepath.Join(t.TempDir(), "uploads")
	cfg := &config.Config{
		ClientURL:       "http://localhost:3000",
		StorageBackend:  config.StorageLocal,
		UploadDir:       uploadDir,
		MaxUploadFiles:  2,
		MaxUploadSizeMB: 1,
		CacheTTL:        time.Minute,
	}
	issuer, err := auth.NewIssuer("test-secret", "reliefnet", time.Hour)
	require.NoError(t, err)
	files, err := filestore.NewLocalStore(uploadDir)
	require.NoError(t, err)

	repos := db.NewMemoryRepositories()
	audit := core.NewAuditService(repos.Audit)
	events := messagequeue.NoopPublisher{}
	m := metrics.New()

	router := gin.New()
	err = SetupRoutes(router, Options{
		Config:  cfg,
		Logger:  logger,
		Tokens:  issuer,
		Metrics: m,
		Services: Services{
			Users:         core.NewUserService(repos.Users, issuer, bootstrapKey, logger),
			Disasters:     core.NewDisasterService(repos, files, cache.Noop{}, cfg.CacheTTL, audit, events, logger),
			Contributions: core.NewContributionService(repos, m, audit, events, logger),
			RescueTeams:   core.NewRescueTeamService(repos, m, audit, events, logger),
			Reconcile:     core.NewReconcileService(repos, audit, logger),
		},
	})
	require.NoError(t, err)
	return &testServer{t: t, router: router, repos: repos}
}

func (s *testServer) send(req *http.Request, token string) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	var body envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &body))
	}
	return w, body
}

func (s *testServer) call(method, path, token string, payload interface{}) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(s.t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return s.send(req, token)
}

func (s *testServer) register(name, email string) (string, string) {
	s.t.Helper()
	w, body := s.call(http.MethodPost, "/api/user/register", "", gin.H{"name": name, "email": email, "password": "secret123"})
	require.Equal(s.t, http.StatusCreated, w.Code, body.Message)
	var res core.AuthResult
	body.decode(s.t, &res)
	return res.User.ID, res.Token
}

func (s *testServer) registerAdmin() string {
	s.t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/user/register-admin",
		strings.NewReader(`{"name":"Admin","email":"admin@example.com","password":"secret123"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(AdminKeyHeader, bootstrapKey)
	w, body := s.send(req, "")
	require.Equal(s.t, http.StatusCreated, w.Code, body.Message)
	var res core.AuthResult
	body.decode(s.t, &res)
	assert.Equal(s.t, models.RoleAdmin, res.User.Role)
	return res.Token
}

func (s *testServer) reportDisaster(token, title string) string {
	s.t.Helper()
	w, body := s.call(http.MethodPost, "/api/disaster", token, gin.H{
		"title":       title,
		"description": "River burst its banks",
		"type":        "flood",
		"severity":    "high",
	})
	require.Equal(s.t, http.StatusCreated, w.Code, body.Message)
	var d models.Disaster
	body.decode(s.t, &d)
	return d.ID
}

func (s *testServer) disaster(id string) models.Disaster {
	s.t.Helper()
	w, body := s.call(http.MethodGet, "/api/disaster/"+id, "", nil)
	require.Equal(s.t, http.StatusOK, w.Code, body.Message)
	var d models.Disaster
	body.decode(s.t, &d)
	return d
}

func TestContributionLinksToDisaster(t *testing.T) {
	s := newTestServer(t)
	_, token := s.register("Asha", "asha@example.com")

	w, body := s.call(http.MethodPost, "/api/user/login", "", gin.H{"email": "ASHA@example.com", "password": "secret123"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Login successful", body.Message)

	disasterID := s.reportDisaster(token, "Valley flood")

	w, body = s.call(http.MethodPost, "/api/contribution", token, gin.H{
		"disasterId":       disasterID,
		"title":            "Drinking water",
		"description":      "200 litres",
		"contributionType": "material",
	})
	require.Equal(t, http.StatusCreated, w.Code, body.Message)
	assert.Equal(t, "Contribution created successfully and linked to disaster", body.Message)
	var created core.ContributionCreated
	body.decode(t, &created)
	assert.Equal(t, disasterID, created.DisasterID)
	assert.Equal(t, "Valley flood", created.DisasterTitle)
	assert.Equal(t, models.ContributionPending, created.Contribution.Status)

	assert.Equal(t, []string{created.Contribution.ID}, s.disaster(disasterID).Contributions)

	w, body = s.call(http.MethodGet, "/api/contribution?disasterId="+disasterID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, body.Pagination)
	assert.Equal(t, 1, body.Pagination.TotalItems)
	var views []models.ContributionView
	body.decode(t, &views)
	require.Len(t, views, 1)
	require.NotNil(t, views[0].User)
	assert.Equal(t, "Asha", views[0].User.Name)
	require.NotNil(t, views[0].Disaster)
	assert.Equal(t, "Valley flood", views[0].Disaster.Title)
}

func TestContributionOwnership(t *testing.T) {
	s := newTestServer(t)
	_, owner := s.register("Owner", "owner@example.com")
	_, other := s.register("Other", "other@example.com")
	disasterID := s.reportDisaster(owner, "Quake")

	w, body := s.call(http.MethodPost, "/api/contribution", owner, gin.H{
		"disasterId": disasterID, "title": "Tents", "description": "10 tents", "contributionType": "material",
	})
	require.Equal(t, http.StatusCreated, w.Code, body.Message)
	var created core.ContributionCreated
	body.decode(t, &created)
	path := "/api/contribution/" + created.Contribution.ID

	w, body = s.call(http.MethodPut, path, other, gin.H{"title": "Mine now"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Not authorized to update this contribution", body.Message)

	// Ownership is decided before the body is looked at.
	w, body = s.call(http.MethodPut, path, other, gin.H{"amount": "lots"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Not authorized to update this contribution", body.Message)

	req := httptest.NewRequest(http.MethodPut, path, strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w, body = s.send(req, other)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Not authorized to update this contribution", body.Message)

	w, body = s.call(http.MethodPut, path, owner, gin.H{"amount": "lots"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid request payload", body.Message)

	w, _ = s.call(http.MethodDelete, path, other, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, body = s.call(http.MethodDelete, path, "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Access token required", body.Message)

	w, body = s.call(http.MethodDelete, path, owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Contribution deleted successfully", body.Message)
	assert.Empty(t, s.disaster(disasterID).Contributions)

	w, body = s.call(http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Contribution not found", body.Message)
}

func TestContributionToMissingDisaster(t *testing.T) {
	s := newTestServer(t)
	_, token := s.register("Asha", "asha@example.com")

	w, body := s.call(http.MethodPost, "/api/contribution", token, gin.H{
		"disasterId": "AAAAAAAAAAAAAAAAAAAA", "title": "Food", "description": "Rice", "contributionType": "material",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, body.Success)
	assert.Equal(t, "Disaster not found", body.Message)
}

func TestNonFiniteNumbersRejected(t *testing.T) {
	s := newTestServer(t)
	_, token := s.register("Asha", "asha@example.com")
	disasterID := s.reportDisaster(token, "Valley flood")

	for _, amount := range []string{"NaN", "Inf", "-Infinity", "1e400"} {
		w, body := s.call(http.MethodPost, "/api/contribution", token, gin.H{
			"disasterId": disasterID, "title": "Cash", "description": "Transfer", "contributionType": "financial", "amount": amount,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code, amount)
		assert.Equal(t, "Invalid request payload", body.Message, amount)
	}

	w, body := s.call(http.MethodPost, "/api/disaster", token, gin.H{
		"title": "Quake", "description": "Aftershocks", "type": "earthquake", "severity": "high", "casualties": "1e30",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, body.Success)

	w, body = s.call(http.MethodGet, "/api/contribution", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, body.Success)
	assert.Equal(t, 0, body.Pagination.TotalItems)

	w, body = s.call(http.MethodGet, "/api/disaster", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, body.Success)
	assert.Equal(t, 1, body.Pagination.TotalItems)
}

func TestTeamAssignment(t *testing.T) {
	s := newTestServer(t)
	admin := s.registerAdmin()
	_, user := s.register("Asha", "asha@example.com")
	disasterID := s.reportDisaster(admin, "Coastal flood")

	teamBody := gin.H{
		"name":           "Alpha",
		"ngoName":        "Red Cross",
		"specialization": "medical",
		"memberCount":    "6",
		"contactPerson":  "Ravi",
		"contactPhone":   "+91-555-0100",
		"contactEmail":   "Alpha@RedCross.org",
		"experience":     "expert",
	}
	w, _ := s.call(http.MethodPost, "/api/rescue-team", user, teamBody)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, body := s.call(http.MethodPost, "/api/rescue-team", admin, teamBody)
	require.Equal(t, http.StatusCreated, w.Code, body.Message)
	var team models.RescueTeamView
	body.decode(t, &team)
	assert.Equal(t, "alpha@redcross.org", team.ContactEmail)
	assert.Equal(t, 6, team.MemberCount)

	assignment := gin.H{"teamId": team.ID, "disasterId": disasterID}
	w, body = s.call(http.MethodPost, "/api/rescue-team/assign", user, assignment)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Admin privileges required", body.Message)

	w, body = s.call(http.MethodPost, "/api/rescue-team/assign", admin, assignment)
	require.Equal(t, http.StatusOK, w.Code, body.Message)
	body.decode(t, &team)
	assert.Equal(t, []string{disasterID}, team.AssignedDisasters)

	w, body = s.call(http.MethodPost, "/api/rescue-team/assign", admin, assignment)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Rescue team already assigned to this disaster", body.Message)

	w, body = s.call(http.MethodGet, "/api/rescue-team/"+team.ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body.decode(t, &team)
	assert.Equal(t, []string{disasterID}, team.AssignedDisasters)
	require.Len(t, team.AssignedDisasterDetails, 1)
	assert.Equal(t, "Coastal flood", team.AssignedDisasterDetails[0].Title)

	w, body = s.call(http.MethodGet, "/api/rescue-team/available?disasterId="+disasterID+"&specialization=medical", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var available []models.RescueTeamView
	body.decode(t, &available)
	require.Len(t, available, 1)
	assert.Equal(t, team.ID, available[0].ID)

	for i := 0; i < 2; i++ {
		w, body = s.call(http.MethodPost, "/api/rescue-team/unassign", admin, assignment)
		require.Equal(t, http.StatusOK, w.Code, body.Message)
		body.decode(t, &team)
		assert.Empty(t, team.AssignedDisasters)
	}
}

func TestDisasterDeleteCascades(t *testing.T) {
	s := newTestServer(t)
	admin := s.registerAdmin()
	_, user := s.register("Asha", "asha@example.com")
	disasterID := s.reportDisaster(user, "Landslide")

	w, body := s.call(http.MethodPost, "/api/contribution", user, gin.H{
		"disasterId": disasterID, "title": "Blankets", "description": "50", "contributionType": "material",
	})
	require.Equal(t, http.StatusCreated, w.Code, body.Message)

	w, _ = s.call(http.MethodDelete, "/api/disaster/"+disasterID, user, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, body = s.call(http.MethodDelete, "/api/disaster/"+disasterID, admin, nil)
	require.Equal(t, http.StatusOK, w.Code, body.Message)
	assert.Equal(t, "Disaster deleted successfully", body.Message)

	w, body = s.call(http.MethodGet, "/api/contribution", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, body.Pagination.TotalItems)

	w, body = s.call(http.MethodGet, "/api/disaster/"+disasterID, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Disaster not found", body.Message)
}

type formFile struct {
	name        string
	contentType string
	content     string
}

func multipartRequest(t *testing.T, fields map[string]string, files []formFile) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, filesField, f.name))
		h.Set("Content-Type", f.contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = io.WriteString(part, f.content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/disaster/addDisaster", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestAddDisasterWithFiles(t *testing.T) {
	s := newTestServer(t)
	admin := s.registerAdmin()
	fields := map[string]string{
		"title":         "Cyclone Remal",
		"description":   "Landfall near the delta",
		"type":          "hurricane",
		"severity":      "critical",
		"casualties":    "12",
		"affectedAreas": `[{"name":"Delta","population":40000,"damageLevel":"severe"}]`,
		"commonNeeds":   `["water","shelter"]`,
	}
	report := formFile{name: "situation report.txt", contentType: "text/plain", content: "roads closed"}

	w, body := s.send(multipartRequest(t, fields, []formFile{report}), admin)
	require.Equal(t, http.StatusCreated, w.Code, body.Message+body.Error)
	var d models.Disaster
	body.decode(t, &d)
	assert.Equal(t, 12, d.Casualties)
	require.Len(t, d.AffectedAreas, 1)
	assert.Equal(t, 40000, d.AffectedAreas[0].Population)
	require.Len(t, d.Files, 1)
	file := d.Files[0]
	assert.Equal(t, "situation report.txt", file.OriginalName)
	assert.True(t, strings.HasPrefix(file.URL, "/uploads/"), file.URL)

	w, _ = s.send(httptest.NewRequest(http.MethodGet, file.URL, nil), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "roads closed", w.Body.String())

	download := fmt.Sprintf("/api/disaster/%s/files/%s/download", d.ID, file.ID)
	w, _ = s.send(httptest.NewRequest(http.MethodGet, download, nil), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "roads closed", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "situation report.txt")

	w, body = s.call(http.MethodDelete, fmt.Sprintf("/api/disaster/%s/files/%s", d.ID, file.ID), admin, nil)
	require.Equal(t, http.StatusOK, w.Code, body.Message)
	assert.Equal(t, "File deleted successfully", body.Message)

	w, body = s.send(httptest.NewRequest(http.MethodGet, download, nil), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "File not found", body.Message)
	assert.Empty(t, s.disaster(d.ID).Files)
}

func TestAddDisasterLimits(t *testing.T) {
	s := newTestServer(t)
	admin := s.registerAdmin()
	fields := map[string]string{"title": "Fire", "description": "Hills", "type": "wildfire", "severity": "high"}
	small := formFile{name: "a.txt", contentType: "text/plain", content: "a"}

	w, body := s.send(multipartRequest(t, fields, []formFile{small, small, small}), admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Too many files. Maximum is 2", body.Message)

	big := formFile{name: "big.bin", contentType: "application/octet-stream", content: strings.Repeat("x", 1<<20+1)}
	w, body = s.send(multipartRequest(t, fields, []formFile{big}), admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "File big.bin is too large. Maximum size is 1MB", body.Message)

	w, body = s.send(multipartRequest(t, map[string]string{"title": "Fire"}, nil), admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Missing required fields: title, description, type, severity", body.Message)

	_, user := s.register("Asha", "asha@example.com")
	w, _ = s.send(multipartRequest(t, fields, nil), user)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDisasterListPagination(t *testing.T) {
	s := newTestServer(t)
	_, token := s.register("Asha", "asha@example.com")
	for i := 0; i < 15; i++ {
		s.reportDisaster(token, fmt.Sprintf("Flood %d", i))
	}

	w, body := s.call(http.MethodGet, "/api/disaster?page=2&limit=10&type=flood", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var items []models.Disaster
	body.decode(t, &items)
	assert.Len(t, items, 5)
	assert.Equal(t, query.Pagination{CurrentPage: 2, TotalPages: 2, TotalItems: 15, ItemsPerPage: 10}, *body.Pagination)

	w, body = s.call(http.MethodGet, "/api/disaster?type=earthquake", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, body.Pagination.TotalItems)

	for _, path := range []string{
		"/api/disaster?page=9223372036854775807&limit=2",
		"/api/disaster?page=9223372036854775807&limit=9223372036854775807",
		"/api/contribution?page=9223372036854775807&limit=2",
	} {
		w, body = s.call(http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusOK, w.Code, path)
		assert.JSONEq(t, "[]", string(body.Data), path)
	}
	assert.Equal(t, 0, body.Pagination.TotalItems)

	w, body = s.call(http.MethodGet, "/api/disaster/types", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var types []models.DisasterType
	body.decode(t, &types)
	assert.Equal(t, []models.DisasterType{models.DisasterFlood}, types)
}

func TestErrorEnvelope(t *testing.T) {
	s := newTestServer(t)
	_, token := s.register("Asha", "asha@example.com")

	tests := []struct {
		name    string
		method  string
		path    string
		token   string
		payload interface{}
		status  int
		message string
	}{
		{"duplicate email", http.MethodPost, "/api/user/register", "", gin.H{"name": "A", "email": "asha@example.com", "password": "x"}, http.StatusBadRequest, "User with this email already exists"},
		{"bad login", http.MethodPost, "/api/user/login", "", gin.H{"email": "asha@example.com", "password": "wrong"}, http.StatusUnauthorized, "Invalid email or password"},
		{"admin key missing", http.MethodPost, "/api/user/register-admin", "", gin.H{"name": "A", "email": "b@example.com", "password": "x"}, http.StatusForbidden, "Invalid admin key"},
		{"profile without token", http.MethodGet, "/api/user/profile", "", nil, http.StatusUnauthorized, "Access token required"},
		{"forged token", http.MethodGet, "/api/user/profile", "not-a-jwt", nil, http.StatusForbidden, "Invalid or expired token"},
		{"unknown disaster", http.MethodGet, "/api/disaster/AAAAAAAAAAAAAAAAAAAA", "", nil, http.StatusNotFound, "Disaster not found"},
		{"malformed disaster id", http.MethodGet, "/api/disaster/nope", "", nil, http.StatusNotFound, "Disaster not found"},
		{"available without disaster", http.MethodGet, "/api/rescue-team/available", "", nil, http.StatusBadRequest, "Missing disasterId parameter"},
		{"bad disaster type", http.MethodPost, "/api/disaster", token, gin.H{"title": "x", "description": "y", "type": "meteor", "severity": "high"}, http.StatusBadRequest, "Invalid disaster type: meteor"},
		{"reconcile as user", http.MethodPost, "/api/admin/reconcile", token, nil, http.StatusForbidden, "Admin privileges required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := s.call(tt.method, tt.path, tt.token, tt.payload)
			assert.Equal(t, tt.status, w.Code)
			assert.False(t, body.Success)
			assert.Equal(t, tt.message, body.Message)
		})
	}
}

func TestProfileAndReconcile(t *testing.T) {
	s := newTestServer(t)
	userID, token := s.register("Asha", "asha@example.com")
	admin := s.registerAdmin()

	w, body := s.call(http.MethodGet, "/api/user/profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var user models.User
	body.decode(t, &user)
	assert.Equal(t, userID, user.ID)
	assert.NotContains(t, string(body.Data), "secret123")

	w, body = s.call(http.MethodPost, "/api/admin/reconcile?prune=maybe", admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid prune parameter", body.Message)

	w, body = s.call(http.MethodPost, "/api/admin/reconcile", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var report core.ReconcileReport
	body.decode(t, &report)
	assert.Equal(t, 0, report.Scanned)
}

func TestHealthMetricsAndUnknownRoutes(t *testing.T) {
	s := newTestServer(t)

	w, body := s.call(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, body.Success)

	s.call(http.MethodGet, "/api/disaster", "", nil)
	w, _ = s.send(httptest.NewRequest(http.MethodGet, "/metrics", nil), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `reliefnet_http_requests_total{method="GET",route="/api/disaster",status="200"} 1`)

	w, _ = s.call(http.MethodGet, "/api/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEveryRouteHasAPolicy(t *testing.T) {
	s := newTestServer(t)
	rules := accessRules(true)
	assert.Len(t, s.router.Routes(), len(rules))
}
