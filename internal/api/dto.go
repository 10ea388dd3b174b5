package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/soaringjerry/MindBalance/internal/services"
)

const maxBodyBytes = 1 << 20

type signupRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type profileRequest struct {
	Name       string `json:"name" validate:"omitempty,max=100"`
	Profession string `json:"profession" validate:"omitempty,max=100"`
}

type submitRequest struct {
	Mode    string                     `json:"mode" validate:"omitempty,oneof=banded emotion"`
	Answers map[string]json.RawMessage `json:"answers" validate:"required,min=1"`
}

type importRequest struct {
	CheckIns []services.LegacyCheckIn `json:"check_ins" validate:"required,min=1,max=5000"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	// Report json names in validation details.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeJSON reads a single JSON value from the request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return services.NewInvalidError("request body too large")
		}
		if errors.Is(err, io.EOF) {
			return services.NewInvalidError("request body required")
		}
		return services.NewInvalidError(fmt.Sprintf("invalid JSON: %v", err))
	}
	return nil
}

// decodeImport accepts either the raw mindBalanceCheckIns array or an object
// wrapping it in check_ins.
func decodeImport(w http.ResponseWriter, r *http.Request) (importRequest, error) {
	var raw json.RawMessage
	if err := decodeJSON(w, r, &raw); err != nil {
		return importRequest{}, err
	}
	var req importRequest
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal(raw, &req.CheckIns); err != nil {
			return importRequest{}, services.NewInvalidError(fmt.Sprintf("invalid check-ins: %v", err))
		}
		return req, nil
	}
	if err := json.Unmarshal(raw, &req); err != nil {
		return importRequest{}, services.NewInvalidError(fmt.Sprintf("invalid check-ins: %v", err))
	}
	return req, nil
}
