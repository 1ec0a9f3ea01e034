package attendance

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MERIT-backend/internal/platform/auth"
)

var testSecret = []byte("test-secret")

func testRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api/v1")
	api.Use(auth.RequireAuth(testSecret))
	RegisterRoutes(api, svc)
	return r
}

func memberToken(t *testing.T, memberID string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  memberID,
		"role": "member",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	s, err := token.SignedString(testSecret)
	require.NoError(t, err)
	return s
}

func doRequest(r *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_SignIn_OK(t *testing.T) {
	fs := newFakeStore(studyHoursEvent(t))
	clk := &stubClock{t: mustTime(t, "2024-06-01T10:00:00Z")}
	r := testRouter(newTestService(fs, clk))

	w := doRequest(r, http.MethodPost, "/api/v1/events/"+testEventULID+"/sign-in", memberToken(t, testMemberID))
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
}

func TestHandler_SignIn_Unauthenticated(t *testing.T) {
	fs := newFakeStore(studyHoursEvent(t))
	clk := &stubClock{t: mustTime(t, "2024-06-01T10:00:00Z")}
	r := testRouter(newTestService(fs, clk))

	w := doRequest(r, http.MethodPost, "/api/v1/events/"+testEventULID+"/sign-in", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandler_SignIn_InvalidEventID(t *testing.T) {
	fs := newFakeStore(studyHoursEvent(t))
	clk := &stubClock{t: mustTime(t, "2024-06-01T10:00:00Z")}
	r := testRouter(newTestService(fs, clk))

	w := doRequest(r, http.MethodPost, "/api/v1/events/not-a-ulid/sign-in", memberToken(t, testMemberID))
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body errorDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, CodeInvalidArgument, body.Error.Code)
}

func TestHandler_SignIn_DuplicateConflict(t *testing.T) {
	fs := newFakeStore(studyHoursEvent(t))
	clk := &stubClock{t: mustTime(t, "2024-06-01T10:00:00Z")}
	svc := newTestService(fs, clk)
	r := testRouter(svc)

	_, err := svc.SignIn(context.Background(), testEventULID, testMemberID)
	require.NoError(t, err)

	w := doRequest(r, http.MethodPost, "/api/v1/events/"+testEventULID+"/sign-in", memberToken(t, testMemberID))
	require.Equal(t, http.StatusConflict, w.Code)

	var body errorDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, CodeAlreadyExists, body.Error.Code)
}

func TestHandler_SignOut_TooLateIsGone(t *testing.T) {
	fs := newFakeStore(studyHoursEvent(t))
	clk := &stubClock{t: mustTime(t, "2024-06-01T18:00:00Z")}
	r := testRouter(newTestService(fs, clk))

	w := doRequest(r, http.MethodPost, "/api/v1/events/"+testEventULID+"/sign-out", memberToken(t, testMemberID))
	require.Equal(t, http.StatusGone, w.Code)

	var body errorDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, CodeDeadlineExceeded, body.Error.Code)
}

func TestHandler_ListMine(t *testing.T) {
	fs := newFakeStore(studyHoursEvent(t))
	clk := &stubClock{t: mustTime(t, "2024-06-01T10:00:00Z")}
	svc := newTestService(fs, clk)
	r := testRouter(svc)

	_, err := svc.SignIn(context.Background(), testEventULID, testMemberID)
	require.NoError(t, err)

	w := doRequest(r, http.MethodGet, "/api/v1/members/me/attendance", memberToken(t, testMemberID))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Items []AttendanceResponse `json:"items"`
		Total int                  `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, 1, body.Total)
	assert.Equal(t, testEventULID, body.Items[0].EventID)
	assert.Equal(t, testMemberID, body.Items[0].MemberID)
}
