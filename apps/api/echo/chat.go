package echoapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/studyhubapp/studyhub/core/chat"
)

type chatApi struct {
	svc *chat.Service
}

func registerChatAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *chat.Service) {
	api := chatApi{svc: svc}

	cg := g.Group("/assistant", jwt)
	cg.POST("/ask", api.ask)
	cg.POST("/responses", api.save)
	cg.GET("/responses", api.query)
	cg.GET("/responses/export", api.export)
	cg.GET("/responses/:id/export", api.exportOne)
	cg.DELETE("/responses/:id", api.destroy)
}

// Handlers

func (api *chatApi) ask(ctx echo.Context) error {
	var data AskRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AskRequest")
	}

	answer, err := api.svc.Ask(ctx.Request().Context(), data.Question)
	if err != nil {
		return errors.Wrap(err, "asking assistant")
	}
	return ctx.JSON(http.StatusOK, answer)
}

func (api *chatApi) save(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var data SaveResponseRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SaveResponseRequest")
	}

	resp, err := api.svc.Save(ctx.Request().Context(), claims.Subject, data.Content)
	if err != nil {
		return errors.Wrap(err, "saving response")
	}
	return ctx.JSON(http.StatusCreated, resp)
}

func (api *chatApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	resps, err := api.svc.Query(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "querying responses")
	}
	if resps == nil {
		resps = []chat.SavedResponse{}
	}
	return ctx.JSON(http.StatusOK, resps)
}

func (api *chatApi) export(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	doc, err := api.svc.Export(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "exporting responses")
	}

	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="ai_responses.txt"`)
	return ctx.Blob(http.StatusOK, "text/plain; charset=utf-8", []byte(doc))
}

func (api *chatApi) exportOne(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	resp, err := api.svc.GetByID(ctx.Request().Context(), claims.Subject, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting response")
	}

	filename := fmt.Sprintf("ai_response_%s.txt", time.Now().Format("2006-01-02_15-04-05"))
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return ctx.Blob(http.StatusOK, "text/plain; charset=utf-8", []byte(resp.Content))
}

func (api *chatApi) destroy(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	if err := api.svc.Delete(ctx.Request().Context(), claims.Subject, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting response")
	}
	return ctx.NoContent(http.StatusNoContent)
}

type (
	AskRequest struct {
		Question string `json:"question"`
	}

	SaveResponseRequest struct {
		Content string `json:"content"`
	}
)
