package sheets

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
)

var (
	ErrUnauthorized = errors.New("spreadsheet access denied")
	ErrNotFound     = errors.New("spreadsheet not found")
)

// APIError is a non-2xx answer from the Sheets or token endpoint.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	}
	return nil
}

type errorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
	Description string `json:"error_description"`
}

func apiError(resp *resty.Response) error {
	e := &APIError{Status: resp.StatusCode()}

	var body errorBody
	if err := json.Unmarshal(resp.Body(), &body); err == nil {
		switch {
		case body.Error.Message != "":
			e.Message = body.Error.Message
		case body.Description != "":
			e.Message = body.Description
		}
	}
	if e.Message == "" {
		e.Message = strings.TrimSpace(string(resp.Body()))
	}
	return e
}
