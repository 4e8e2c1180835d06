package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/studyhubapp/studyhub/apps/api/echo"
	"github.com/studyhubapp/studyhub/core"
	"github.com/studyhubapp/studyhub/core/chat"
	"github.com/studyhubapp/studyhub/core/profile"
	"github.com/studyhubapp/studyhub/core/reminder"
	"github.com/studyhubapp/studyhub/core/subject"
	"github.com/studyhubapp/studyhub/core/task"
	"github.com/studyhubapp/studyhub/core/timer"
	"github.com/studyhubapp/studyhub/core/user"
	"github.com/studyhubapp/studyhub/services/email"
	dummydb "github.com/studyhubapp/studyhub/storage/database/dummy"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type testEnv struct {
	server      Server
	usrSvc      user.Service
	taskSvc     *task.Service
	timerEngine *timer.Engine
	subjectSvc  *subject.Service
	reminderSvc *reminder.Service
	chatSvc     *chat.Service
	profileSvc  *profile.Service
}

type nopLogger struct{}

func (nopLogger) Debug(msg string, args ...interface{}) {}
func (nopLogger) Info(msg string, args ...interface{})  {}
func (nopLogger) Warn(msg string, args ...interface{})  {}
func (nopLogger) Error(msg string, args ...interface{}) {}
func (nopLogger) Fatal(msg string, args ...interface{}) {}

type nopNotifier struct{}

func (nopNotifier) TaskDeadlineReached(t task.Task)                            {}
func (nopNotifier) TaskOverdue(t task.Task)                                    {}
func (nopNotifier) TaskCompleted(t task.Task)                                  {}
func (nopNotifier) TimerCompleted(ownerID, label string, planned time.Duration) {}
func (nopNotifier) ReminderDue(ownerID string, rem reminder.Reminder)          {}

type stubGenerator struct {
	answer string
	err    error
}

func (g stubGenerator) Generate(ctx context.Context, question string) (string, error) {
	return g.answer, g.err
}

func setup(t *testing.T) *testEnv {
	t.Helper()

	// deterministic error payloads
	core.Conf.Debug = false
	core.Conf.TestMode = true

	db, err := dummydb.Open()
	require.NoError(t, err)

	log := nopLogger{}
	notif := nopNotifier{}

	usrSvc := user.NewServiceMock(dummydb.NewUserRepository(db), email.NewMockService())
	taskSvc := task.NewService(dummydb.NewTaskRepository(db), notif, log)
	timerEngine := timer.NewEngine(dummydb.NewTimerRepository(db), notif, log)
	subjectSvc := subject.NewService(dummydb.NewSubjectRepository(db))
	reminderSvc := reminder.NewService(dummydb.NewReminderRepository(db), notif, log)
	chatSvc := chat.NewService(stubGenerator{answer: "A stub answer."}, dummydb.NewChatRepository(db), log)
	profileSvc := profile.NewService(usrSvc, taskSvc, subjectSvc, reminderSvc, timerEngine, chatSvc)

	t.Cleanup(timerEngine.Close)
	t.Cleanup(reminderSvc.Close)

	server := NewServer(&Options{
		DisableReqLogs: true,
		Logger:         log,
		UserSvc:        usrSvc,
		TaskSvc:        taskSvc,
		TimerEngine:    timerEngine,
		SubjectSvc:     subjectSvc,
		ReminderSvc:    reminderSvc,
		ChatSvc:        chatSvc,
		ProfileSvc:     profileSvc,
	})

	return &testEnv{
		server:      server,
		usrSvc:      usrSvc,
		taskSvc:     taskSvc,
		timerEngine: timerEngine,
		subjectSvc:  subjectSvc,
		reminderSvc: reminderSvc,
		chatSvc:     chatSvc,
		profileSvc:  profileSvc,
	}
}

func createUser(t *testing.T, svc user.Service, name, emailAddr, password string) user.User {
	t.Helper()
	usr, err := svc.Create(context.Background(), user.NewUser{
		Name:            name,
		Email:           emailAddr,
		Password:        password,
		PasswordConfirm: password,
	})
	require.NoError(t, err)
	return usr
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	t.Helper()
	claims := GetUserClaims(usr)
	token, err := GenerateToken(claims)
	require.NoError(t, err)
	return token
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	require.NoError(t, err)
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ObjectsAreEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
