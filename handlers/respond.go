package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"booking_service/errors"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

var validate = validator.New()

type messageResponse struct {
	Message string `json:"message"`
}

func jsonResponse(data interface{}, writer http.ResponseWriter) {
	if err := json.NewEncoder(writer).Encode(data); err != nil {
		logrus.WithError(err).Error("unable to encode response")
	}
}

func writeMessage(writer http.ResponseWriter, status int, message string) {
	writer.WriteHeader(status)
	jsonResponse(messageResponse{Message: message}, writer)
}

// writeError maps domain errors onto the HTTP status taxonomy: 401 for
// identity failures, 404 for missing resources, 403 for denied permissions,
// 422 for validation, 500 for everything else.
func writeError(writer http.ResponseWriter, err error) {
	if validation, ok := err.(*errors.ValidationError); ok {
		writer.WriteHeader(http.StatusUnprocessableEntity)
		jsonResponse(validation, writer)
		return
	}

	switch err {
	case errors.ErrUnauthorized:
		writeMessage(writer, http.StatusUnauthorized, errors.UnauthorizedMessage)
	case errors.ErrForbidden:
		writeMessage(writer, http.StatusForbidden, errors.ForbiddenMessage)
	case errors.ErrNotFound:
		writeMessage(writer, http.StatusNotFound, errors.NotFoundMessage)
	default:
		logrus.WithError(err).Error("request failed")
		writeMessage(writer, http.StatusInternalServerError, errors.ServerErrorMessage)
	}
}

func decodeBody(req *http.Request, into interface{}) error {
	if err := json.NewDecoder(req.Body).Decode(into); err != nil {
		return errors.NewValidationError(errors.FieldError{
			Message: errors.InvalidRequestFormat,
			Type:    "format",
			Path:    "",
		})
	}
	return nil
}

// validateBody runs struct validation and converts the outcome into the
// per-field error shape clients rely on.
func validateBody(body interface{}) error {
	err := validate.Struct(body)
	if err == nil {
		return nil
	}

	fieldErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	fields := make([]errors.FieldError, 0, len(fieldErrors))
	for _, fieldError := range fieldErrors {
		path := strings.ToLower(fieldError.Field())
		switch fieldError.Tag() {
		case "required":
			fields = append(fields, errors.Required(path))
		default:
			fields = append(fields, errors.FieldError{
				Message: fmt.Sprintf("Path `%s` is invalid.", path),
				Type:    fieldError.Tag(),
				Path:    path,
			})
		}
	}
	return errors.NewValidationError(fields...)
}
