package controllers

import (
	"mime/multipart"

	"github.com/gofiber/fiber/v2"

	"github.com/insbu/portal/app/models"
	"github.com/insbu/portal/app/repository"
	"github.com/insbu/portal/internal/pkg/apperr"
	"github.com/insbu/portal/internal/pkg/documents"
)

type documentResponse struct {
	models.Document
	FormattedFileSize string `json:"formatted_file_size"`
	FileExtension     string `json:"file_extension"`
	Kind              string `json:"kind"`
}

func toDocumentResponse(d *models.Document) documentResponse {
	return documentResponse{
		Document:          *d,
		FormattedFileSize: d.FormattedFileSize(),
		FileExtension:     d.FileExtension(),
		Kind:              d.Kind(),
	}
}

func toDocumentResponses(items []models.Document) []documentResponse {
	out := make([]documentResponse, 0, len(items))
	for i := range items {
		out = append(out, toDocumentResponse(&items[i]))
	}
	return out
}

type DocumentController struct {
	documents *documents.Service
}

func NewDocumentController(svc *documents.Service) *DocumentController {
	return &DocumentController{documents: svc}
}

func (dc *DocumentController) HandleList(c *fiber.Ctx) error {
	filter := repository.DocumentFilter{
		Category: c.Query("category"),
		Search:   c.Query("search"),
	}
	p, err := dc.documents.List(currentUser(c), filter, pageRequest(c, repository.DefaultPerPage))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(repository.Page[documentResponse]{
		Data:        toDocumentResponses(p.Data),
		CurrentPage: p.CurrentPage,
		LastPage:    p.LastPage,
		PerPage:     p.PerPage,
		Total:       p.Total,
		From:        p.From,
		To:          p.To,
	})
}

// HandleUpload serves POST /api/documents. Files arrive as multipart "files"
// (or "files[]"/"file"); every file gets its own result.
func (dc *DocumentController) HandleUpload(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return respondError(c, apperr.Validation("The files field is required.", map[string]string{"files": "The files field is required."}))
	}
	defer form.RemoveAll()

	var headers []*multipart.FileHeader
	for _, key := range []string{"files", "files[]", "file"} {
		headers = append(headers, form.File[key]...)
	}
	files := make([]documents.File, 0, len(headers))
	for _, fh := range headers {
		files = append(files, documents.FromMultipart(fh))
	}

	in := documents.UploadInput{
		Title:    c.FormValue("title"),
		IsPublic: queryBool(c.FormValue("is_public")),
	}
	if v := c.FormValue("description"); v != "" {
		in.Description = &v
	}
	if v := c.FormValue("category"); v != "" {
		in.Category = &v
	}

	results, err := dc.documents.Upload(c.UserContext(), currentUser(c), in, files)
	if err != nil {
		return respondError(c, err)
	}

	uploaded := make([]documentResponse, 0, len(results))
	failed := make([]documents.UploadResult, 0)
	for _, r := range results {
		if r.Error != "" {
			failed = append(failed, r)
			continue
		}
		uploaded = append(uploaded, toDocumentResponse(r.Document))
	}

	status := fiber.StatusCreated
	message := "Documents uploaded successfully"
	switch {
	case len(uploaded) == 0:
		status = fiber.StatusUnprocessableEntity
		message = "No document could be uploaded"
	case len(failed) > 0:
		message = "Some documents could not be uploaded"
	}
	return c.Status(status).JSON(fiber.Map{
		"message": message,
		"data":    uploaded,
		"errors":  failed,
	})
}

func (dc *DocumentController) HandleShow(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	doc, err := dc.documents.Get(currentUser(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": toDocumentResponse(doc)})
}

func (dc *DocumentController) HandleUpdate(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	var in documents.UpdateInput
	if err := parseBody(c, &in); err != nil {
		return respondError(c, err)
	}
	doc, err := dc.documents.Update(currentUser(c), id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Document updated successfully", "data": toDocumentResponse(doc)})
}

func (dc *DocumentController) HandleDelete(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	if err := dc.documents.Delete(c.UserContext(), currentUser(c), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Document deleted successfully"})
}

// HandleDownload streams the stored file under its original name.
func (dc *DocumentController) HandleDownload(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return respondError(c, err)
	}
	dl, err := dc.documents.Download(c.UserContext(), currentUser(c), id)
	if err != nil {
		if apperr.IsKind(err, apperr.KindStorage) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": string(apperr.KindNotFound), "message": "File not found on server."})
		}
		return respondError(c, err)
	}

	c.Attachment(dl.Document.OriginalName)
	if dl.Document.MimeType != "" {
		c.Set(fiber.HeaderContentType, dl.Document.MimeType)
	}
	// fasthttp closes the stream once it has been sent.
	return c.SendStream(dl.Content, int(dl.Document.FileSize))
}

func (dc *DocumentController) HandleRecent(c *fiber.Ctx) error {
	docs, err := dc.documents.Recent(currentUser(c), c.QueryInt("limit", documents.RecentLimit))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": toDocumentResponses(docs)})
}

func (dc *DocumentController) HandlePopular(c *fiber.Ctx) error {
	docs, err := dc.documents.Popular(currentUser(c), c.QueryInt("limit", documents.PopularLimit))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": toDocumentResponses(docs)})
}

func (dc *DocumentController) HandleCategories(c *fiber.Ctx) error {
	cats, err := dc.documents.Categories(currentUser(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": cats})
}

func (dc *DocumentController) HandleStatistics(c *fiber.Ctx) error {
	stats, err := dc.documents.Statistics(currentUser(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"data":                 stats,
		"formatted_total_size": models.FormatBytes(stats.TotalSize),
	})
}
