package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/studyhubapp/studyhub/core/reminder"
)

type reminderApi struct {
	svc *reminder.Service
}

func registerReminderAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *reminder.Service) {
	api := reminderApi{svc: svc}

	rg := g.Group("/reminders", jwt)
	rg.POST("", api.create)
	rg.GET("", api.query)
	rg.GET("/:id", api.retrieve)
	rg.DELETE("/:id", api.destroy)
}

// Handlers

func (api *reminderApi) create(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var data reminder.NewReminder
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewReminder")
	}

	rem, err := api.svc.Create(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		return errors.Wrap(err, "creating reminder")
	}
	return ctx.JSON(http.StatusCreated, rem)
}

func (api *reminderApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	reqCtx := ctx.Request().Context()
	var rems []reminder.Reminder
	switch {
	case ctx.QueryParam("date") != "":
		rems, err = api.svc.QueryByDate(reqCtx, claims.Subject, ctx.QueryParam("date"))
	case ctx.QueryParam("month") != "":
		rems, err = api.svc.QueryByMonth(reqCtx, claims.Subject, ctx.QueryParam("month"))
	default:
		rems, err = api.svc.Query(reqCtx, claims.Subject)
	}
	if err != nil {
		return errors.Wrap(err, "querying reminders")
	}
	if rems == nil {
		rems = []reminder.Reminder{}
	}
	return ctx.JSON(http.StatusOK, rems)
}

func (api *reminderApi) retrieve(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	rem, err := api.svc.GetByID(ctx.Request().Context(), claims.Subject, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting reminder")
	}
	return ctx.JSON(http.StatusOK, rem)
}

func (api *reminderApi) destroy(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	if err := api.svc.Delete(ctx.Request().Context(), claims.Subject, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting reminder")
	}
	return ctx.NoContent(http.StatusNoContent)
}
