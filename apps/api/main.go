package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	echoapi "github.com/studyhubapp/studyhub/apps/api/echo"
	"github.com/studyhubapp/studyhub/core"
	"github.com/studyhubapp/studyhub/core/chat"
	"github.com/studyhubapp/studyhub/core/profile"
	"github.com/studyhubapp/studyhub/core/reminder"
	"github.com/studyhubapp/studyhub/core/subject"
	"github.com/studyhubapp/studyhub/core/task"
	"github.com/studyhubapp/studyhub/core/timer"
	"github.com/studyhubapp/studyhub/core/user"
	"github.com/studyhubapp/studyhub/services/email"
	"github.com/studyhubapp/studyhub/services/logger"
	"github.com/studyhubapp/studyhub/services/notifier"
	"github.com/studyhubapp/studyhub/services/textgen"
	"github.com/studyhubapp/studyhub/storage/database"
	sqlxrepos "github.com/studyhubapp/studyhub/storage/database/sqlx"
)

const shutdownTimeout = 5 * time.Second

func main() {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	appLogger := logsvc.NewRollbarLogger(stdLogger, core.Conf)

	if err := run(appLogger); err != nil {
		appLogger.Fatal("server error", err)
	}
}

func run(appLogger core.Logger) error {
	// set up DB
	if err := database.CreateIfNotExist(core.Conf); err != nil {
		return err
	}
	db, err := database.Open(core.Conf)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	if err = database.Migrate(db.DB); err != nil {
		return err
	}

	// set up services
	var mailSvc core.EmailService
	if core.Conf.Debug {
		mailSvc = email.NewConsoleService()
	} else {
		mailSvc = email.NewSendgridService(appLogger)
	}
	notif := notifsvc.NewLogNotifier(appLogger)

	usrSvc := user.NewService(sqlxrepos.NewUserRepository(db), mailSvc)
	taskSvc := task.NewService(sqlxrepos.NewTaskRepository(db), notif, appLogger)
	timerEngine := timer.NewEngine(sqlxrepos.NewTimerRepository(db), notif, appLogger)
	subjectSvc := subject.NewService(sqlxrepos.NewSubjectRepository(db))
	reminderSvc := reminder.NewService(sqlxrepos.NewReminderRepository(db), notif, appLogger)
	chatSvc := chat.NewService(textgen.NewOpenAIGenerator(core.Conf), sqlxrepos.NewChatRepository(db), appLogger)
	profileSvc := profile.NewService(usrSvc, taskSvc, subjectSvc, reminderSvc, timerEngine, chatSvc)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err = taskSvc.Start(ctx, task.DefaultSweepInterval); err != nil {
		return err
	}
	defer taskSvc.Close()
	if err = reminderSvc.Start(ctx); err != nil {
		return err
	}
	defer reminderSvc.Close()
	defer timerEngine.Close()

	// start API server
	app := echoapi.NewServer(&echoapi.Options{
		Address:     core.Conf.Server.Addr,
		Logger:      appLogger,
		UserSvc:     usrSvc,
		TaskSvc:     taskSvc,
		TimerEngine: timerEngine,
		SubjectSvc:  subjectSvc,
		ReminderSvc: reminderSvc,
		ChatSvc:     chatSvc,
		ProfileSvc:  profileSvc,
	})

	errc := make(chan error, 1)
	go func() { errc <- app.Start() }()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err = <-errc:
		return err
	case sig := <-quit:
		appLogger.Info("shutting down", sig.String())
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stopCancel()
	return app.Stop(stopCtx)
}
