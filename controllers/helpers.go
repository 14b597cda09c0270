package controllers

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cppla/blogfeed/middleware"
	"github.com/cppla/blogfeed/services"
	"github.com/cppla/blogfeed/utils"
)

// serviceError maps a service error onto the uniform error response. internalCode is used for unexpected failures.
func serviceError(ctx *gin.Context, err error, internalCode int, internalMsg string) {
	var fe *services.FieldError
	switch {
	case errors.As(err, &fe):
		utils.Error(ctx, http.StatusBadRequest, 40010, fe.Error())
	case errors.Is(err, services.ErrNotFound):
		utils.Error(ctx, http.StatusNotFound, 40400, err.Error())
	case errors.Is(err, services.ErrSelfSubscription):
		utils.Error(ctx, http.StatusBadRequest, 40011, "you can't subscribe to yourself")
	case errors.Is(err, services.ErrDuplicate):
		utils.Error(ctx, http.StatusBadRequest, 40012, err.Error())
	case errors.Is(err, services.ErrUnauthenticated):
		utils.Error(ctx, http.StatusUnauthorized, 40110, "authentication credentials were not provided")
	case errors.Is(err, services.ErrBadCredentials):
		utils.Error(ctx, http.StatusUnauthorized, 40106, "no active account found with the given credentials")
	default:
		utils.Sugar.Errorw(internalMsg, "error", err, "path", ctx.FullPath(), "request_id", ctx.GetString(utils.ContextRequestIDKey))
		utils.Error(ctx, http.StatusInternalServerError, internalCode, internalMsg)
	}
}

// callerID returns the identity resolved by middleware.AuthRequired or writes a 401.
func callerID(ctx *gin.Context) (uint, bool) {
	id, ok := middleware.CurrentUserID(ctx)
	if !ok {
		serviceError(ctx, services.ErrUnauthenticated, 0, "")
	}
	return id, ok
}

// parsePage reads ?page=; missing, malformed or non-positive values mean page 1.
func parsePage(raw string) int {
	if p, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil && p > 0 {
		return p
	}
	return 1
}

// pageURL rebuilds the absolute request URL pointing at page n. Page 1 drops the parameter.
func pageURL(ctx *gin.Context, n int) string {
	u := url.URL{
		Scheme: "http",
		Host:   ctx.Request.Host,
		Path:   ctx.Request.URL.Path,
	}
	if ctx.Request.TLS != nil || strings.EqualFold(ctx.GetHeader("X-Forwarded-Proto"), "https") {
		u.Scheme = "https"
	}
	q := ctx.Request.URL.Query()
	if n <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(n))
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// pageLinks returns next and previous links, nil when absent.
func pageLinks[T any](ctx *gin.Context, page services.Page[T]) (next, previous *string) {
	if page.HasNext {
		s := pageURL(ctx, page.Number+1)
		next = &s
	}
	if page.HasPrevious {
		s := pageURL(ctx, page.Number-1)
		previous = &s
	}
	return next, previous
}
