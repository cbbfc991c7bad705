package api

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// createRecipePayload is the assembled multipart payload checked before the
// store is touched.
type createRecipePayload struct {
	Title        string   `validate:"required"`
	Ingredients  []string `validate:"required,min=1"`
	Instructions []string `validate:"required,min=1"`
}

// registerRequest is the credential registration body.
type registerRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
}

// loginRequest is the credential login body.
type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// parseStringArray decodes a JSON-encoded array form field and drops blank
// entries. An empty field decodes to an empty array.
func parseStringArray(raw string) ([]string, error) {
	if raw == "" {
		return []string{}, nil
	}
	var arr []string
	if err := json.Unmarshal([]byte(raw), &arr); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(arr))
	for _, s := range arr {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out, nil
}

// validationErrors converts validator failures into a field-to-message map.
func validationErrors(err error) map[string]string {
	fields := make(map[string]string)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		fields["payload"] = err.Error()
		return fields
	}
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			fields[strings.ToLower(fe.Field())] = "is required"
		case "min":
			fields[strings.ToLower(fe.Field())] = "needs at least " + fe.Param() + " entry"
		default:
			fields[strings.ToLower(fe.Field())] = "is invalid"
		}
	}
	return fields
}
