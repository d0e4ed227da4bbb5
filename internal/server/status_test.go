package server

import (
	"encoding/json"
	"net/http"
	"testing"

	"athletics-cms/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_GetDefault(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodGet, "/api/status", "")
	require.Equal(t, http.StatusOK, w.Code)

	var status model.LessonStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, model.LessonScheduled, status.GlobalStatus)
	assert.Len(t, status.Courses, 2)
}

func TestStatus_PostLegacy(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/status",
		`{"overallStatus":"indoor","overallNote":"雨天","lessons":[{"timeSlot":"17:00","courseName":"ベーシッククラス","status":"indoor","note":"体育館"},{"timeSlot":"18:10","courseName":"アドバンスクラス","status":"cancelled","note":""}]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Success bool               `json:"success"`
		Message string             `json:"message"`
		Data    model.LessonStatus `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.Message)
	assert.Equal(t, model.LessonIndoor, resp.Data.GlobalStatus)
	assert.Equal(t, model.LessonCancelled, resp.Data.Courses[model.CourseAdvance].Status)
	assert.False(t, resp.Data.LastUpdated.IsZero())

	// The canonical record is what GET serves back.
	w = doJSON(t, s, http.MethodGet, "/api/status?date=2024-04-01", "")
	require.Equal(t, http.StatusOK, w.Code)
	var got model.LessonStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, model.LessonIndoor, got.GlobalStatus)
	assert.Equal(t, "雨天", got.GlobalMessage)
}

func TestStatus_PostInvalidShape(t *testing.T) {
	s := newTestServer(t)

	// No overallStatus, lessons absent, unparseable.
	for _, body := range []string{
		`{"lessons":[]}`,
		`{"overallStatus":"scheduled"}`,
		`{not json`,
	} {
		w := doJSON(t, s, http.MethodPost, "/api/status", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body %s", body)
		assert.Contains(t, w.Body.String(), "無効なデータ形式です")
	}
}

func TestStatus_PostEmptyLessonsArrayIsValid(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/status", `{"overallStatus":"cancelled","lessons":[]}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data model.LessonStatus `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, model.LessonCancelled, resp.Data.Courses[model.CourseBasic].Status,
		"empty lessons inherit the overall status via normalization")
}

func TestStatus_GetLegacyFormat(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/status",
		`{"overallStatus":"cancelled","overallNote":"台風","lessons":[]}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, s, http.MethodGet, "/api/status?date=2024-04-01&format=legacy", "")
	require.Equal(t, http.StatusOK, w.Code)

	var legacy model.LegacyStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &legacy))
	assert.Equal(t, "cancelled", legacy.OverallStatus)
	assert.Equal(t, "台風", legacy.OverallNote)
	require.Len(t, legacy.Lessons, 2)
	assert.Equal(t, "ベーシッククラス", legacy.Lessons[0].CourseName)
}

func TestStatus_Banner(t *testing.T) {
	s := newTestServer(t)

	// Nothing stored: normal day, banner suppressed.
	w := doJSON(t, s, http.MethodGet, "/api/status/banner", "")
	require.Equal(t, http.StatusOK, w.Code)

	var banner struct {
		IsNormal bool                `json:"isNormal"`
		Display  model.StatusDisplay `json:"display"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &banner))
	assert.True(t, banner.IsNormal)
	assert.Equal(t, "通常開催", banner.Display.Label)

	// A cancellation flips it.
	w = doJSON(t, s, http.MethodPost, "/api/status",
		`{"overallStatus":"cancelled","lessons":[]}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, s, http.MethodGet, "/api/status/banner?date=2024-04-01", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &banner))
	assert.False(t, banner.IsNormal)
	assert.Equal(t, "中止", banner.Display.Label)
}

func TestStatus_PutCanonical(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodPut, "/api/status?date=2024-04-10",
		`{"globalStatus":"postponed","globalMessage":"来週に延期","courses":{"basic":{"status":"postponed","message":""}}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var saved model.LessonStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &saved))
	assert.Equal(t, model.LessonPostponed, saved.GlobalStatus)
	assert.Equal(t, model.LessonPostponed, saved.Courses[model.CourseAdvance].Status,
		"omitted course normalized from global status")

	w = doJSON(t, s, http.MethodGet, "/api/status?date=2024-04-10", "")
	require.Equal(t, http.StatusOK, w.Code)
	var got model.LessonStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, saved, got)
}
