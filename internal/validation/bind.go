package validation

import (
	"net/http"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
)

// BindAndValidate binds the JSON body into `out` and runs validation.
// On failure it writes failStatus (the webhook uses 412 for malformed
// triggers, the callback 400) and returns an error so the handler can
// short-circuit.
func BindAndValidate(c *gin.Context, out interface{}, v *validatorv10.Validate, failStatus int) error {
	if failStatus == 0 {
		failStatus = http.StatusBadRequest
	}

	if err := c.ShouldBindJSON(out); err != nil {
		c.JSON(failStatus, gin.H{
			"error": "invalid_request_body",
			"msg":   err.Error(),
		})
		return err
	}

	if err := v.Struct(out); err != nil {
		// return structured validation errors
		errs := validationErrorsToMap(err)
		c.JSON(failStatus, gin.H{
			"error":  "validation_failed",
			"fields": errs,
		})
		return err
	}
	return nil
}

func validationErrorsToMap(err error) map[string]string {
	out := map[string]string{}
	if ve, ok := err.(validatorv10.ValidationErrors); ok {
		for _, fe := range ve {
			out[fe.StructNamespace()] = fe.Error() // simple message; can be improved
		}
	} else {
		out["error"] = err.Error()
	}
	return out
}
