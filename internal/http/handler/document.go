package handler

import (
	"io"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"dossierapi/internal/processor"
	"dossierapi/internal/service"
)

type documentRef struct {
	Code string `json:"code"`
}

type versionRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type uploadResponse struct {
	Document       documentRef `json:"document"`
	Version        versionRef  `json:"version"`
	FilesProcessed int         `json:"filesProcessed"`
	PagesAdded     int         `json:"pagesAdded"`
}

// UploadDocument accepts a multipart batch for one (dossier, document type)
// pair. Form fields: files (repeatable), version_name, new_version, schema.
func UploadDocument(svc service.UploadService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		form, err := c.MultipartForm()
		if err != nil {
			return writeError(c, fiber.StatusUnprocessableEntity, "VALIDATION_FAILED", "multipart body is required")
		}
		headers := form.File["files"]
		if len(headers) == 0 {
			return writeError(c, fiber.StatusUnprocessableEntity, "VALIDATION_FAILED", "at least one file is required")
		}

		newVersion, _ := strconv.ParseBool(c.FormValue("new_version", "false"))

		uploads := make([]processor.Upload, 0, len(headers))
		for _, fh := range headers {
			f, err := fh.Open()
			if err != nil {
				return writeError(c, fiber.StatusUnprocessableEntity, "VALIDATION_FAILED", "cannot open uploaded file")
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				return writeError(c, fiber.StatusUnprocessableEntity, "VALIDATION_FAILED", "cannot read uploaded file")
			}
			uploads = append(uploads, processor.Upload{
				Filename:    fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
				Data:        data,
			})
		}

		res, err := svc.Upload(c.UserContext(), service.UploadInput{
			DossierExternalID: c.Params("dossierID"),
			SchemaName:        c.FormValue("schema"),
			TypeCode:          c.Params("typeCode"),
			VersionName:       c.FormValue("version_name"),
			NewVersion:        newVersion,
			Files:             uploads,
		})
		if err != nil {
			return writeServiceError(c, err)
		}

		return c.Status(fiber.StatusCreated).JSON(uploadResponse{
			Document:       documentRef{Code: res.Document.TypeCode},
			Version:        versionRef{ID: res.Version.ID, Name: res.Version.Name},
			FilesProcessed: res.FilesProcessed,
			PagesAdded:     res.PagesAdded,
		})
	}
}

// DownloadDocument streams the document's current version (or an explicitly
// requested one) as a single file, a merged PDF or a zip.
func DownloadDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var versionID *int64
		if raw := c.Query("version_id"); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return writeError(c, fiber.StatusUnprocessableEntity, "VALIDATION_FAILED", "invalid version id")
			}
			versionID = &id
		}

		d, err := svc.Fetch(c.UserContext(), c.Params("dossierID"), c.Params("typeCode"), versionID)
		if err != nil {
			return writeServiceError(c, err)
		}
		return sendDownload(c, d)
	}
}

// GetPage streams one live file of the document by its identifier.
func GetPage(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		d, err := svc.FetchPage(c.UserContext(), c.Params("dossierID"), c.Params("typeCode"), c.Params("pageID"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return sendDownload(c, d)
	}
}

// DeletePage soft-deletes one live file of the document.
func DeletePage(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.DeletePage(c.UserContext(), c.Params("dossierID"), c.Params("typeCode"), c.Params("pageID")); err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "deleted"})
	}
}

// ListDocuments returns a page of the dossier's documents.
func ListDocuments(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "10"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := svc.List(c.UserContext(), c.Params("dossierID"), limit, offset)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

func sendDownload(c *fiber.Ctx, d *service.Download) error {
	c.Set(fiber.HeaderContentType, d.ContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+d.Filename+`"`)
	if d.Size > 0 {
		return c.SendStream(d.Content, int(d.Size))
	}
	return c.SendStream(d.Content)
}
