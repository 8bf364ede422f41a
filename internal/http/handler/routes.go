package handler

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"cdnapi/internal/service"
)

// Stored content is immutable, so fetched documents can be cached as long as
// HTTP allows.
const cacheControlImmutable = "public, max-age=31536000"

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers stay thin: parse, delegate to the service, translate errors.
func RegisterRoutes(app *fiber.App, db *sql.DB, docSvc service.DocumentService) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	app.Get("/documents", ListDocuments(docSvc))
	app.Post("/documents", UploadDocument(docSvc))
	app.Get("/documents/:id", GetDocument(docSvc))
}

// HealthCheck reports readiness. With a database configured it pings it; the
// non-relational backends carry no standing connection, so a nil db means
// healthy by construction.
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if db == nil {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{
				"status":  "healthy",
				"service": "cdnapi",
			})
		}

		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":  "healthy",
			"service": "cdnapi",
		})
	}
}

// LivenessProbe is a bare liveness check with no dependency on backends.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// ListDocuments returns the stored-document inventory, up to ?limit entries.
func ListDocuments(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limitStr := c.Query("limit", "100")
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}

		items, err := docSvc.List(c.UserContext(), limit)
		if err != nil {
			logError(c, "list documents", err)
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(items)
	}
}

// UploadDocument ingests one multipart file (field name: file, optional
// description field) and responds with the document's identity. Re-uploading
// content already stored returns the existing identity.
func UploadDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_READ_ERROR", "cannot read uploaded file")
		}

		ct := fh.Header.Get("Content-Type")
		description := c.FormValue("description")

		res, err := docSvc.Upload(c.UserContext(), data, fh.Filename, ct, description)
		if err != nil {
			if errors.Is(err, service.ErrEmptyFile) {
				return writeError(c, fiber.StatusBadRequest, "EMPTY_FILE", "file is empty")
			}
			logError(c, "upload document", err)
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.Status(fiber.StatusOK).JSON(res)
	}
}

// GetDocument streams a stored document's bytes back with its recorded
// content type and an aggressive cache header.
func GetDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		res, err := docSvc.Fetch(c.UserContext(), id)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrInvalidID):
				return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
			case errors.Is(err, service.ErrNotFound):
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "document not found")
			default:
				logError(c, "get document", err)
				return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			}
		}

		c.Set(fiber.HeaderContentType, res.ContentType)
		c.Set(fiber.HeaderCacheControl, cacheControlImmutable)
		return c.Send(res.Data)
	}
}
