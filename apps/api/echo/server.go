package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/studyhubapp/studyhub/core"
	"github.com/studyhubapp/studyhub/core/chat"
	"github.com/studyhubapp/studyhub/core/profile"
	"github.com/studyhubapp/studyhub/core/reminder"
	"github.com/studyhubapp/studyhub/core/subject"
	"github.com/studyhubapp/studyhub/core/task"
	"github.com/studyhubapp/studyhub/core/timer"
	"github.com/studyhubapp/studyhub/core/user"
)

type (
	Options struct {
		Address        string
		DisableReqLogs bool

		Logger      core.Logger
		UserSvc     user.Service
		TaskSvc     *task.Service
		TimerEngine *timer.Engine
		SubjectSvc  *subject.Service
		ReminderSvc *reminder.Service
		ChatSvc     *chat.Service
		ProfileSvc  *profile.Service
	}

	Server interface {
		http.Handler
		Start() error
		Stop(context.Context) error
	}

	server struct {
		opts     *Options
		app      *echo.Echo
		shutdown chan struct{}
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts:     opts,
		app:      echo.New(),
		shutdown: make(chan struct{}, 1),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(core.Conf.Debug || core.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.signalShutdown)
	s.app.Debug = core.Conf.Debug
	s.app.HideBanner = true

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(appJWTConfig)

	registerUserAPI(v1, jwt, s.opts.UserSvc)
	registerTaskAPI(v1, jwt, s.opts.TaskSvc)
	registerTimerAPI(v1, jwt, s.opts.TimerEngine)
	registerSubjectAPI(v1, jwt, s.opts.SubjectSvc)
	registerReminderAPI(v1, jwt, s.opts.ReminderSvc)
	registerChatAPI(v1, jwt, s.opts.ChatSvc)
	registerProfileAPI(v1, jwt, s.opts.ProfileSvc)
}

func (s *server) Start() error {
	errc := make(chan error, 1)
	go func() { errc <- s.app.Start(s.opts.Address) }()

	select {
	case err := <-errc:
		return err
	case <-s.shutdown:
		return core.NewShutdownError("integrity issue: shutting down")
	}
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *server) signalShutdown() {
	select {
	case s.shutdown <- struct{}{}:
	default:
	}
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to StudyHub API!")
}
