package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyhubapp/studyhub/core/timer"
)

func Test_timerApi_session(t *testing.T) {
	env := setup(t)

	usr := createUser(t, env.usrSvc, "Hero", "hero@test.cd", "Str0ngPwd!")
	token := getToken(t, usr)

	getSnapshot := func(t *testing.T, body []byte) timer.Snapshot {
		t.Helper()
		var snap timer.Snapshot
		require.NoError(t, json.Unmarshal(body, &snap))
		return snap
	}

	t.Run("auth required", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/timer")
		env.server.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errMissingToken)}, rec)
	})

	t.Run("idle snapshot", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/timer", token)
		env.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		snap := getSnapshot(t, rec.Body.Bytes())
		assert.Equal(t, timer.StatusStopped, snap.Status)
	})

	t.Run("timer requires a duration", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/timer/start", token, []byte(`{"mode":"timer"}`))
		env.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("start stopwatch", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/timer/start", token, []byte(`{"mode":"stopwatch","label":"Reading"}`))
		env.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		snap := getSnapshot(t, rec.Body.Bytes())
		assert.Equal(t, timer.ModeStopwatch, snap.Mode)
		assert.Equal(t, timer.StatusRunning, snap.Status)
		assert.Equal(t, "Reading", snap.Label)
	})

	t.Run("pause and resume", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/timer/pause", token)
		env.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, timer.StatusPaused, getSnapshot(t, rec.Body.Bytes()).Status)

		req, rec = newAuthRequest(http.MethodPost, "/v1/timer/resume", token)
		env.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, timer.StatusRunning, getSnapshot(t, rec.Body.Bytes()).Status)
	})

	t.Run("switch mode needs confirmation while active", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/timer/mode", token, []byte(`{"mode":"timer"}`))
		env.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		req, rec = newAuthRequest(http.MethodPost, "/v1/timer/mode", token, []byte(`{"mode":"timer","force":true}`))
		env.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		snap := getSnapshot(t, rec.Body.Bytes())
		assert.Equal(t, timer.ModeTimer, snap.Mode)
		assert.Equal(t, timer.StatusStopped, snap.Status)
	})

	t.Run("reset", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/timer/reset", token)
		env.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, timer.StatusStopped, getSnapshot(t, rec.Body.Bytes()).Status)
	})
}

func Test_timerApi_history(t *testing.T) {
	env := setup(t)

	usr := createUser(t, env.usrSvc, "Hero", "hero@test.cd", "Str0ngPwd!")
	token := getToken(t, usr)

	t.Run("empty history", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/timer/history", token)
		env.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})

	t.Run("invalid index", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/timer/history/oops", token)
		env.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("out of range index", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/timer/history/3", token)
		env.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("clear", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/timer/history", token)
		env.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNoContent, rec.Code)
	})
}
