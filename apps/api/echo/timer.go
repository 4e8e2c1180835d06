package echoapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/studyhubapp/studyhub/core"
	"github.com/studyhubapp/studyhub/core/timer"
)

type timerApi struct {
	engine *timer.Engine
}

func registerTimerAPI(g *echo.Group, jwt echo.MiddlewareFunc, engine *timer.Engine) {
	api := timerApi{engine: engine}

	tg := g.Group("/timer", jwt)
	tg.GET("", api.snapshot)
	tg.POST("/start", api.start)
	tg.POST("/pause", api.pause)
	tg.POST("/resume", api.resume)
	tg.POST("/reset", api.reset)
	tg.POST("/mode", api.switchMode)
	tg.GET("/history", api.history)
	tg.DELETE("/history", api.clearHistory)
	tg.DELETE("/history/:index", api.deleteEntry)
}

// Handlers

func (api *timerApi) snapshot(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, api.engine.Snapshot(claims.Subject))
}

func (api *timerApi) start(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var data StartTimerRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to StartTimerRequest")
	}

	planned := time.Duration(data.DurationMs) * time.Millisecond
	if err := api.engine.Start(claims.Subject, data.Mode, data.Label, planned); err != nil {
		return errors.Wrap(err, "starting session")
	}
	return ctx.JSON(http.StatusOK, api.engine.Snapshot(claims.Subject))
}

func (api *timerApi) pause(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	if err := api.engine.Pause(claims.Subject); err != nil {
		return errors.Wrap(err, "pausing session")
	}
	return ctx.JSON(http.StatusOK, api.engine.Snapshot(claims.Subject))
}

func (api *timerApi) resume(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	if err := api.engine.Resume(claims.Subject); err != nil {
		return errors.Wrap(err, "resuming session")
	}
	return ctx.JSON(http.StatusOK, api.engine.Snapshot(claims.Subject))
}

func (api *timerApi) reset(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	if err := api.engine.Reset(ctx.Request().Context(), claims.Subject); err != nil {
		return errors.Wrap(err, "resetting session")
	}
	return ctx.JSON(http.StatusOK, api.engine.Snapshot(claims.Subject))
}

func (api *timerApi) switchMode(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var data SwitchModeRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SwitchModeRequest")
	}

	if err := api.engine.SwitchMode(ctx.Request().Context(), claims.Subject, data.Mode, data.Force); err != nil {
		return errors.Wrap(err, "switching mode")
	}
	return ctx.JSON(http.StatusOK, api.engine.Snapshot(claims.Subject))
}

func (api *timerApi) history(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	runs, err := api.engine.History(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "loading run history")
	}
	if runs == nil {
		runs = []timer.Run{}
	}
	return ctx.JSON(http.StatusOK, runs)
}

func (api *timerApi) clearHistory(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	if err := api.engine.ClearHistory(ctx.Request().Context(), claims.Subject); err != nil {
		return errors.Wrap(err, "clearing run history")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *timerApi) deleteEntry(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	index, err := strconv.Atoi(ctx.Param("index"))
	if err != nil {
		return core.NewValidationError(errors.New("invalid history index"))
	}
	if err := api.engine.DeleteEntry(ctx.Request().Context(), claims.Subject, index); err != nil {
		return errors.Wrap(err, "deleting run")
	}
	return ctx.NoContent(http.StatusNoContent)
}

type (
	StartTimerRequest struct {
		Mode       string `json:"mode"`
		Label      string `json:"label"`
		DurationMs int64  `json:"duration_ms"`
	}

	SwitchModeRequest struct {
		Mode  string `json:"mode"`
		Force bool   `json:"force"`
	}
)
