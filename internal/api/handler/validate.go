package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	mw "github.com/kiranshivaraju/hireflow/internal/api/middleware"
	"github.com/kiranshivaraju/hireflow/internal/api/response"
	"github.com/kiranshivaraju/hireflow/pkg/models"
)

const maxJSONBody = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// bindJSON decodes the request body into dst and validates it. On failure
// it writes a 400 and returns false.
func bindJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
		return false
	}
	if err := validate.Struct(dst); err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Validation failed", validationDetails(err))
		return false
	}
	return true
}

// validationDetails flattens validator errors into field -> rule.
func validationDetails(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	details := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		details[fieldPath(fe.Namespace())] = rule
	}
	return details
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

// pathUUID parses a chi URL parameter. On failure it writes a 400 and
// returns false.
func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", name+" must be a valid UUID", nil)
		return uuid.Nil, false
	}
	return id, true
}

// caller returns the authenticated identity. Routes behind Authenticate
// always have one; a missing identity is reported as 401.
func caller(w http.ResponseWriter, r *http.Request) (models.Identity, bool) {
	id, ok := mw.GetIdentity(r)
	if !ok {
		response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing identity", nil)
		return models.Identity{}, false
	}
	return id, true
}
