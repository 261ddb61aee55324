package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cf_buddy/internal/app/analytics"
	"cf_buddy/internal/app/dpp"
	"cf_buddy/internal/app/service"
	"cf_buddy/internal/common"
	"cf_buddy/internal/domain/model"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDPP struct {
	generateReq service.GenerateRequest
	generateRes *service.GenerateResult
	upsertErr   error
	getErr      error
	syncErr     error
	gotUser     string
	gotDate     string
}

func (s *stubDPP) GenerateDailySet(ctx context.Context, req service.GenerateRequest) (*service.GenerateResult, error) {
	s.generateReq = req
	return s.generateRes, nil
}

func (s *stubDPP) UpsertDailyRecord(ctx context.Context, req service.UpsertRequest) (*service.RecordView, error) {
	if s.upsertErr != nil {
		return nil, s.upsertErr
	}
	return &service.RecordView{DailyRecord: &model.DailyRecord{UserID: req.UserID, Date: req.Date, Problems: req.Problems}}, nil
}

func (s *stubDPP) GetDailyRecord(ctx context.Context, userID, date string) (*service.RecordView, error) {
	s.gotUser, s.gotDate = userID, date
	if s.getErr != nil {
		return nil, s.getErr
	}
	return &service.RecordView{
		DailyRecord: &model.DailyRecord{UserID: userID, Date: date, AlgorithmVersion: "1.0"},
		Stale:       true,
		StaleReason: dpp.StaleVersionMismatch,
	}, nil
}

func (s *stubDPP) GetCalendar(ctx context.Context, userID string) ([]model.CalendarEntry, error) {
	s.gotUser = userID
	return []model.CalendarEntry{{Date: "2024-05-01", IsFullySolved: true}}, nil
}

func (s *stubDPP) SyncSolvedState(ctx context.Context, userID, date string) (*service.RecordView, error) {
	return nil, s.syncErr
}

type stubAnalytics struct{ tz string }

func (s *stubAnalytics) Summary(ctx context.Context, handle, tz string) (*analytics.Summary, error) {
	s.tz = tz
	if handle == "ghost" {
		return nil, common.ErrNotFound
	}
	return &analytics.Summary{Handle: handle}, nil
}

func newTestRouter(d DPPService, a AnalyticsService) http.Handler {
	r := chi.NewRouter()
	r.Route("/levels", NewLevelHandler().RegisterRoutes)
	r.Route("/dpp", NewDPPHandler(d).RegisterRoutes)
	r.Route("/analytics", NewAnalyticsHandler(a).RegisterRoutes)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(method, path, strings.NewReader(body)))
	return w
}

func TestGenerateStatusReflectsOutcome(t *testing.T) {
	stub := &stubDPP{generateRes: &service.GenerateResult{Generated: true}}
	h := newTestRouter(stub, &stubAnalytics{})

	w := do(t, h, http.MethodPost, "/dpp/generate", `{"user_id":"u1","handle":"alice","level":3,"timezone":"Asia/Kolkata","force":true}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, service.GenerateRequest{UserID: "u1", Handle: "alice", Level: 3, Timezone: "Asia/Kolkata", Force: true}, stub.generateReq)

	stub.generateRes = &service.GenerateResult{Diagnosis: &dpp.Diagnosis{Outcome: dpp.OutcomeNoMatches}}
	w = do(t, h, http.MethodPost, "/dpp/generate", `{"user_id":"u1","handle":"alice","level":3}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"outcome":"no_matches"`)

	w = do(t, h, http.MethodPost, "/dpp/generate", `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpsertConstraintMismatchIsDistinct(t *testing.T) {
	stub := &stubDPP{upsertErr: common.Errorf("pgDailyRecordRepository.Upsert: %w", common.ErrConstraintMismatch)}
	h := newTestRouter(stub, &stubAnalytics{})

	w := do(t, h, http.MethodPost, "/dpp", `{"user_id":"u1","handle":"alice","date":"2024-05-01","level":2,"problems":[]}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	var body common.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "constraint_mismatch", body.Code)
}

func TestUpsertRejectsProblemWithoutReferenceSolver(t *testing.T) {
	svc := service.NewDPPService(nil, nil, nil, nil, nil)
	h := newTestRouter(svc, &stubAnalytics{})

	body := `{"user_id":"u1","handle":"alice","date":"2024-05-01","level":2,"problems":[
		{"contest_id":1850,"index":"A","name":"x","rating":1200,"tags":[],"category":"main","solved":false,
		 "solved_by_reference":[{"handle":"tourist","submission_id":1,"contest_id":1850,"problem_index":"A"}]},
		{"contest_id":1850,"index":"B","name":"y","rating":1300,"tags":[],"category":"main","solved":false,
		 "solved_by_reference":[]}]}`
	w := do(t, h, http.MethodPost, "/dpp", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp common.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "invalid_request", resp.Code)
	assert.Contains(t, resp.Error, "1850-B")
}

func TestGetRecordIncludesStaleFlag(t *testing.T) {
	stub := &stubDPP{}
	h := newTestRouter(stub, &stubAnalytics{})

	w := do(t, h, http.MethodGet, "/dpp/u1/2024-05-01", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", stub.gotUser)
	assert.Equal(t, "2024-05-01", stub.gotDate)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["stale"])
	assert.Equal(t, "version_mismatch", body["stale_reason"])
	assert.Equal(t, "u1", body["user_id"])

	stub.getErr = common.ErrNotFound
	w = do(t, h, http.MethodGet, "/dpp/u1/2024-05-02", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCalendarRoute(t *testing.T) {
	stub := &stubDPP{}
	w := do(t, newTestRouter(stub, &stubAnalytics{}), http.MethodGet, "/dpp/calendar/u9", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u9", stub.gotUser)
	assert.JSONEq(t, `[{"date":"2024-05-01","is_fully_solved":true}]`, w.Body.String())
}

func TestSyncStaleIsPreconditionFailed(t *testing.T) {
	stub := &stubDPP{syncErr: common.ErrStaleSet}
	w := do(t, newTestRouter(stub, &stubAnalytics{}), http.MethodPost, "/dpp/u1/2024-05-01/sync", "")
	assert.Equal(t, http.StatusPreconditionFailed, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"stale_set"`)
}

func TestLevelRoutes(t *testing.T) {
	h := newTestRouter(&stubDPP{}, &stubAnalytics{})

	w := do(t, h, http.MethodGet, "/levels", "")
	require.Equal(t, http.StatusOK, w.Code)
	var levels []model.Level
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &levels))
	assert.Len(t, levels, 10)

	w = do(t, h, http.MethodGet, "/levels/level-4-expert", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"level":4`)

	w = do(t, h, http.MethodGet, "/levels/99", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAnalyticsRoute(t *testing.T) {
	a := &stubAnalytics{}
	h := newTestRouter(&stubDPP{}, a)

	w := do(t, h, http.MethodGet, "/analytics/tourist?tz=Europe/Moscow", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Europe/Moscow", a.tz)

	w = do(t, h, http.MethodGet, "/analytics/ghost", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
