package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/TheAXPerience/ScrapPages/internal/middleware"
	"github.com/TheAXPerience/ScrapPages/internal/models"
	"github.com/TheAXPerience/ScrapPages/internal/service"

	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers return nil when they see it.
var errResponseWritten = errors.New("response already written")

// Pagination holds parsed limit/offset query parameters.
type Pagination struct {
	Limit  int
	Offset int
}

const maxPaginationLimit = 100

// parsePagination reads limit and offset. Without a limit the full list is
// returned, matching the unpaged list endpoints.
func parsePagination(c *fiber.Ctx) Pagination {
	limit := c.QueryInt("limit", 0)
	if limit < 0 {
		limit = 0
	}
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}
	return Pagination{Limit: limit, Offset: offset}
}

// respondError writes err via models.RespondWithError. Internal errors are
// logged with request context and sent to Sentry when it is configured.
func respondError(c *fiber.Ctx, err error) error {
	if models.StatusFor(err) >= fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "request failed",
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("error", err.Error()),
		)
		if hub := sentryfiber.GetHubFromContext(c); hub != nil {
			hub.CaptureException(err)
		}
	}
	return models.RespondWithError(c, err)
}

// parseID extracts a route parameter as a positive uint. Ids that cannot
// exist are reported as not found. On failure it writes the response and
// returns errResponseWritten.
func parseID(c *fiber.Ctx, param, resource string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = respondError(c, models.NewNotFoundError(resource, c.Params(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// hasField reports whether a request carried a field at all, for JSON,
// urlencoded and multipart bodies alike. Absent and empty are different
// answers for title validation.
func hasField(c *fiber.Ctx, name string) bool {
	if form, err := c.MultipartForm(); err == nil {
		if _, ok := form.Value[name]; ok {
			return true
		}
		_, ok := form.File[name]
		return ok
	}
	if isJSON(c) {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(c.Body(), &fields); err != nil {
			return false
		}
		_, ok := fields[name]
		return ok
	}
	return c.Request().PostArgs().Has(name)
}

func isJSON(c *fiber.Ctx) bool {
	return strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEApplicationJSON)
}

// formTags accepts tags as a JSON array string, as repeated form values, or
// as a JSON array in a JSON body.
func formTags(c *fiber.Ctx) []string {
	if isJSON(c) {
		var body struct {
			Tags json.RawMessage `json:"tags"`
		}
		if err := json.Unmarshal(c.Body(), &body); err != nil || len(body.Tags) == 0 {
			return nil
		}
		var list []string
		if err := json.Unmarshal(body.Tags, &list); err == nil {
			return list
		}
		var encoded string
		if err := json.Unmarshal(body.Tags, &encoded); err == nil {
			return decodeTagList([]string{encoded})
		}
		return nil
	}

	var values []string
	if form, err := c.MultipartForm(); err == nil {
		values = form.Value["tags"]
	} else {
		for _, v := range c.Request().PostArgs().PeekMulti("tags") {
			values = append(values, string(v))
		}
	}
	return decodeTagList(values)
}

func decodeTagList(values []string) []string {
	if len(values) == 1 && strings.HasPrefix(strings.TrimSpace(values[0]), "[") {
		var list []string
		if err := json.Unmarshal([]byte(values[0]), &list); err == nil {
			return list
		}
	}
	return values
}

// uploadedFile reads a multipart file field. A missing field returns nil.
func uploadedFile(c *fiber.Ctx, field string) (*service.UploadFile, error) {
	header, err := c.FormFile(field)
	if err != nil {
		return nil, nil //nolint:nilerr // a missing file is reported by the service
	}
	f, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return &service.UploadFile{
		Filename:    header.Filename,
		ContentType: header.Header.Get(fiber.HeaderContentType),
		Data:        data,
	}, nil
}

// optionalString returns a pointer to a form or JSON field value when present.
func optionalString(c *fiber.Ctx, name string) *string {
	if !hasField(c, name) {
		return nil
	}
	if isJSON(c) {
		var fields map[string]json.RawMessage
		_ = json.Unmarshal(c.Body(), &fields)
		raw := fields[name]
		if string(raw) == "null" {
			return nil
		}
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			v = string(raw)
		}
		return &v
	}
	v := c.FormValue(name)
	return &v
}
