package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyhubapp/studyhub/core/task"
)

func Test_taskApi_create(t *testing.T) {
	env := setup(t)

	usr := createUser(t, env.usrSvc, "Hero", "hero@test.cd", "Str0ngPwd!")
	token := getToken(t, usr)

	tests := []httpTest{
		{
			name: "auth required", method: http.MethodPost, path: "/v1/tasks",
			body:     []byte(`{"title":"Revise algebra","duration_hours":4}`),
			wantCode: http.StatusUnauthorized,
			wantData: marshallObj(t, errMissingToken),
		},
		{
			name: "empty body", method: http.MethodPost, path: "/v1/tasks",
			body: []byte(`{}`), token: token,
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{
				"title":          "this field is required",
				"duration_hours": "this field is required",
			}),
		},
		{
			name: "negative duration", method: http.MethodPost, path: "/v1/tasks",
			body: []byte(`{"title":"Revise algebra","duration_hours":-2}`), token: token,
			wantCode: http.StatusBadRequest,
		},
		{
			name: "valid", method: http.MethodPost, path: "/v1/tasks",
			body: []byte(`{"title":"Revise algebra","description":"chapters 3-5","category":"Maths","duration_hours":4}`), token: token,
			wantCode: http.StatusCreated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			env.server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.wantCode == http.StatusCreated {
				var got task.Task
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
				assert.Equal(t, "Revise algebra", got.Title)
				assert.Equal(t, task.StatusPending, got.Status)
				assert.Equal(t, 4, got.DurationHours)
				assert.Equal(t, got.CreatedAt.Add(4*time.Hour), got.DeadlineAt)
			}
		})
	}
}

func Test_taskApi_lifecycle(t *testing.T) {
	env := setup(t)

	usr := createUser(t, env.usrSvc, "Hero", "hero@test.cd", "Str0ngPwd!")
	other := createUser(t, env.usrSvc, "Other", "other@test.cd", "Str0ngPwd!")
	token := getToken(t, usr)

	created, err := env.taskSvc.Create(context.Background(), usr.ID, task.NewTask{Title: "Revise algebra", DurationHours: 48})
	require.NoError(t, err)

	t.Run("query own tasks", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/tasks", token)
		env.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var tasks []task.Task
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tasks))
		require.Len(t, tasks, 1)
		assert.Equal(t, created.ID, tasks[0].ID)
	})

	t.Run("other owner sees nothing", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/tasks", getToken(t, other))
		env.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})

	t.Run("remaining label", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/tasks/"+created.ID+"/remaining", token)
		env.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Remaining string `json:"remaining"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Regexp(t, `^\d+h \d+m \d+s$`, resp.Remaining)
	})

	t.Run("complete", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/tasks/"+created.ID+"/complete", token)
		env.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var got task.Task
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, task.StatusCompleted, got.Status)
	})

	t.Run("delete", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/tasks/"+created.ID, token)
		env.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("deleted task is gone", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/tasks/"+created.ID, token)
		env.server.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusNotFound,
			wantData: marshallObj(t, httpErr{Error: task.ErrNotFound.Error()}),
		}, rec)
	})
}
