package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/matahariann/kontrakgen/client"
	"github.com/matahariann/kontrakgen/wizard"
)

// errorStatus maps the error taxonomy onto HTTP statuses: local
// validation is the caller's to fix (400), a missing session is 401, an
// upstream rejection or contract break is 502. Anything else is a state
// conflict the caller can resolve by reloading.
func errorStatus(err error) int {
	var (
		verr *wizard.ValidationError
		cerr *wizard.CeilingError
		aerr *client.APIError
		merr *client.MalformedResponseError
	)
	switch {
	case errors.Is(err, client.ErrNotLoggedIn):
		return http.StatusUnauthorized
	case errors.As(err, &verr), errors.As(err, &cerr):
		return http.StatusBadRequest
	case errors.As(err, &aerr), errors.As(err, &merr):
		return http.StatusBadGateway
	}
	return http.StatusConflict
}

func respondError(c *gin.Context, err error) {
	status := errorStatus(err)
	body := gin.H{"error": err.Error()}

	if status == http.StatusUnauthorized {
		body["login_required"] = true
	}
	var verr *wizard.ValidationError
	if errors.As(err, &verr) {
		body["fields"] = verr.Fields
	}
	c.JSON(status, body)
}
