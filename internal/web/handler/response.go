// Package handler provides the shared response envelope and request
// helpers used by every API resource handler.
package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// Envelope is the uniform JSON response shape. Depending on the
// resource, the payload is carried under either "data" or "results".
type Envelope struct {
	Status  string            `json:"status"`
	Message string            `json:"message,omitempty"`
	Data    any               `json:"data,omitempty"`
	Results any               `json:"results,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// Data writes a success envelope carrying payload under the "data" key.
func Data(c *fiber.Ctx, code int, message string, payload any) error {
	return c.Status(code).JSON(Envelope{Status: "success", Message: message, Data: payload})
}

// Results writes a success envelope carrying payload under the "results" key.
func Results(c *fiber.Ctx, code int, message string, payload any) error {
	return c.Status(code).JSON(Envelope{Status: "success", Message: message, Results: payload})
}

// Message writes a success envelope with only a message.
func Message(c *fiber.Ctx, code int, message string) error {
	return c.Status(code).JSON(Envelope{Status: "success", Message: message})
}

// Error writes an error envelope with a message.
func Error(c *fiber.Ctx, code int, message string) error {
	return c.Status(code).JSON(Envelope{Status: "error", Message: message})
}

// ValidationFailed writes a 422 envelope with a field-keyed error map.
func ValidationFailed(c *fiber.Ctx, errs map[string]string) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(Envelope{Status: "error", Errors: errs})
}

// NotFound writes a 404 error envelope.
func NotFound(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusNotFound, message)
}

// Forbidden writes a 403 error envelope.
func Forbidden(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusForbidden, message)
}

// Internal writes a 500 error envelope.
func Internal(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusInternalServerError, message)
}

// ParseID reads the :id route parameter as an unsigned integer.
func ParseID(c *fiber.Ctx) (uint, bool) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}

	return uint(id), true
}
