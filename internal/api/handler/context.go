package handler

import (
	"github.com/labstack/echo/v4"
)

// Context keys written by middleware.Auth.
const (
	CtxAccountID = "account_id"
	CtxEmail     = "email"
	CtxName      = "name"
)

// ctxEmail returns the email claim injected by the Auth middleware.
// ok is false when the middleware did not run or the claim is empty.
func ctxEmail(c echo.Context) (email string, ok bool) {
	email, _ = c.Get(CtxEmail).(string)
	return email, email != ""
}
