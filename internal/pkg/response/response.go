package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"crmcore/internal/pkg/apperror"
)

// Envelope is the uniform response body. The HTTP status code carries the
// outcome; Status mirrors it for clients that ignore status codes.
type Envelope struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
	Error   *ErrorBody  `json:"error"`
}

type ErrorBody struct {
	Details string `json:"details"`
}

func Success(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Envelope{
		Status:  true,
		Message: message,
		Data:    data,
	})
}

// Fail writes the envelope for a classified error. No stack traces cross
// this boundary.
func Fail(c *gin.Context, err error) {
	kind := apperror.KindOf(err)
	message := err.Error()
	if kind == apperror.KindInternal {
		message = "internal error"
	}
	c.JSON(apperror.HTTPStatus(kind), Envelope{
		Status:  false,
		Message: message,
		Error:   &ErrorBody{Details: string(kind)},
	})
}

// FailWith writes the envelope for an explicit kind and message.
func FailWith(c *gin.Context, kind apperror.Kind, message string) {
	c.JSON(apperror.HTTPStatus(kind), Envelope{
		Status:  false,
		Message: message,
		Error:   &ErrorBody{Details: string(kind)},
	})
}

// Unauthorized is used by the auth middleware, which sits outside the
// taxonomy kinds.
func Unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, Envelope{
		Status:  false,
		Message: message,
		Error:   &ErrorBody{Details: "UNAUTHORIZED"},
	})
}
