package api

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"rest-planner/domain"
)

const authRealm = "rest-planner"

// Register wires up all API routes on the provided Echo instance.
func Register(e *echo.Echo, store TaskStore, auth Authenticator, messages MessageSource, logger *log.Logger) {
	e.JSONSerializer = JSONSerializer{}

	e.GET("/healthz", healthz())

	g := e.Group("/api", DecompressRequest(), BasicAuth(auth, authRealm, logger))
	g.GET("/tasks", listTasks(store, messages, logger))
	g.POST("/tasks", createTask(store, messages, logger))
	g.GET("/tasks/:id", getTask(store, messages, logger))
}

func healthz() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}
}

func listTasks(store TaskStore, messages MessageSource, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		metrics, ctx := newRequestMetrics(c.Request().Context(), logger, eventListTasks, http.MethodGet, routeTasks)
		defer func() {
			metrics.Log(c.Response().Status, err)
		}()
		metrics.ObserveAuth(authDurationFromContext(c))

		user, ok := userFromContext(c)
		if !ok {
			metrics.SetErrorStage("auth")
			return echo.ErrUnauthorized
		}

		storeStart := time.Now()
		tasks, storeErr := store.FindByOwnerID(ctx, user.ID)
		metrics.ObserveStore(time.Since(storeStart))
		if storeErr != nil {
			metrics.SetErrorStage("storage")
			logger.WithError(storeErr).WithField("user", user.ID).Error("list tasks failed")
			locale := messages.Negotiate(c.Request().Header.Get(headerAcceptLanguage))
			err = c.JSON(http.StatusInternalServerError, errorsPresentation{Errors: []string{messages.Message(msgInternalError, nil, locale)}})
			return err
		}
		metrics.SetTasksReturned(len(tasks))

		encodeStart := time.Now()
		err = c.JSON(http.StatusOK, newTaskViews(tasks))
		metrics.ObserveEncode(time.Since(encodeStart))
		if err != nil {
			metrics.SetErrorStage("encode_response")
		}
		return err
	}
}

func createTask(store TaskStore, messages MessageSource, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		metrics, ctx := newRequestMetrics(c.Request().Context(), logger, eventCreateTask, http.MethodPost, routeTasks)
		defer func() {
			metrics.Log(c.Response().Status, err)
		}()
		metrics.ObserveAuth(authDurationFromContext(c))

		user, ok := userFromContext(c)
		if !ok {
			metrics.SetErrorStage("auth")
			return echo.ErrUnauthorized
		}
		locale := messages.Negotiate(c.Request().Header.Get(headerAcceptLanguage))

		var payload domain.NewTaskPayload
		if decodeErr := decodeBody(c.Request().Body, &payload); decodeErr != nil {
			metrics.SetErrorStage("decode_request")
			err = c.JSON(http.StatusBadRequest, errorsPresentation{Errors: []string{messages.Message(msgMalformedBody, nil, locale)}})
			return err
		}

		if errs := validateNewTask(payload, messages, locale); len(errs) > 0 {
			metrics.SetErrorStage("validation")
			err = c.JSON(http.StatusBadRequest, errorsPresentation{Errors: errs})
			return err
		}

		task := domain.NewTask(payload.DetailsValue(), user.ID)

		storeStart := time.Now()
		saveErr := store.Save(ctx, task)
		metrics.ObserveStore(time.Since(storeStart))
		if saveErr != nil {
			metrics.SetErrorStage("storage")
			logger.WithError(saveErr).WithField("user", user.ID).Error("save task failed")
			err = c.JSON(http.StatusInternalServerError, errorsPresentation{Errors: []string{messages.Message(msgInternalError, nil, locale)}})
			return err
		}

		c.Response().Header().Set(echo.HeaderLocation, baseURI(c)+"/api/tasks/"+task.ID.String())
		encodeStart := time.Now()
		err = c.JSON(http.StatusCreated, newTaskView(task))
		metrics.ObserveEncode(time.Since(encodeStart))
		if err != nil {
			metrics.SetErrorStage("encode_response")
		}
		return err
	}
}

func getTask(store TaskStore, messages MessageSource, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		metrics, ctx := newRequestMetrics(c.Request().Context(), logger, eventGetTask, http.MethodGet, routeTask)
		defer func() {
			metrics.Log(c.Response().Status, err)
		}()
		metrics.ObserveAuth(authDurationFromContext(c))

		user, ok := userFromContext(c)
		if !ok {
			metrics.SetErrorStage("auth")
			return echo.ErrUnauthorized
		}
		locale := messages.Negotiate(c.Request().Header.Get(headerAcceptLanguage))
		notFound := func() error {
			metrics.SetErrorStage("not_found")
			return c.JSON(http.StatusNotFound, errorsPresentation{Errors: []string{messages.Message(msgTaskNotFound, nil, locale)}})
		}

		id, parseErr := uuid.Parse(c.Param("id"))
		if parseErr != nil {
			err = notFound()
			return err
		}

		storeStart := time.Now()
		task, found, findErr := store.FindByID(ctx, id)
		metrics.ObserveStore(time.Since(storeStart))
		if findErr != nil {
			metrics.SetErrorStage("storage")
			logger.WithError(findErr).WithField("task", id).Error("find task failed")
			err = c.JSON(http.StatusInternalServerError, errorsPresentation{Errors: []string{messages.Message(msgInternalError, nil, locale)}})
			return err
		}
		// Tasks of other users are indistinguishable from missing ones.
		if !found || task.OwnerID != user.ID {
			err = notFound()
			return err
		}
		metrics.SetTasksReturned(1)

		encodeStart := time.Now()
		err = c.JSON(http.StatusOK, newTaskView(task))
		metrics.ObserveEncode(time.Since(encodeStart))
		if err != nil {
			metrics.SetErrorStage("encode_response")
		}
		return err
	}
}

var (
	errEmptyBody    = errors.New("empty body")
	errTrailingData = errors.New("trailing data after body")
)

func decodeBody(body io.Reader, v any) error {
	if body == nil {
		return errEmptyBody
	}
	lr := io.LimitReader(body, postTaskMaxSize)
	dec := sonic.ConfigStd.NewDecoder(lr)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return err
	}
	// The body must hold exactly one JSON value.
	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return errTrailingData
	}
	return nil
}

func baseURI(c echo.Context) string {
	return c.Scheme() + "://" + c.Request().Host
}
