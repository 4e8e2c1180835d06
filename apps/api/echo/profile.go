package echoapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/studyhubapp/studyhub/core/profile"
)

type profileApi struct {
	svc *profile.Service
}

func registerProfileAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *profile.Service) {
	api := profileApi{svc: svc}

	pg := g.Group("/profile", jwt)
	pg.GET("/export", api.export)
	pg.POST("/delete", api.deleteAccount)
}

// Handlers

func (api *profileApi) export(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	exp, err := api.svc.ExportData(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "exporting profile data")
	}

	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", exp.Filename))
	return ctx.Blob(http.StatusOK, "text/plain; charset=utf-8", []byte(exp.Content))
}

func (api *profileApi) deleteAccount(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var data DeleteAccountRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to DeleteAccountRequest")
	}

	if err := api.svc.DeleteAccount(ctx.Request().Context(), claims.Subject, data.Password); err != nil {
		return errors.Wrap(err, "deleting account")
	}
	return ctx.NoContent(http.StatusNoContent)
}

type DeleteAccountRequest struct {
	Password string `json:"password"`
}
