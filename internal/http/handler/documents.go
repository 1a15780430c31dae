package handler

import (
	"net/url"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"docrev/internal/http/middleware"
	"docrev/internal/model"
	"docrev/internal/service"
)

// Response headers describing the revision being downloaded.
const (
	HeaderContentHash = "X-Content-Hash"
	HeaderRevision    = "X-Revision"
)

// catalogResponse mirrors the paginated list shape clients already consume.
type catalogResponse struct {
	Count    int                    `json:"count"`
	Next     *string                `json:"next"`
	Previous *string                `json:"previous"`
	Results  []model.DocumentFamily `json:"results"`
}

func pageLink(c *fiber.Ctx, page int) *string {
	s := c.BaseURL() + c.Path() + "?page=" + strconv.Itoa(page)
	return &s
}

// documentURL returns the logical document URL captured by the /documents/* wildcard.
func documentURL(c *fiber.Ctx) (string, error) {
	return url.PathUnescape(c.Params("*"))
}

// ListDocuments lists the caller's documents grouped by URL.
//
//	@Summary	List documents
//	@Tags		documents
//	@Produce	json
//	@Security	BearerAuth
//	@Param		page	query		int	false	"1-based page number"
//	@Success	200		{object}	catalogResponse
//	@Failure	400		{object}	errorPayload
//	@Failure	401		{object}	errorPayload
//	@Router		/documents [get]
func ListDocuments(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page := 1
		if raw := c.Query("page"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "page must be an integer")
			}
			page = n
		}

		res, err := svc.ListAccessible(c.UserContext(), middleware.UserID(c), page)
		if err != nil {
			return writeServiceError(c, err)
		}

		out := catalogResponse{Count: res.Count, Results: res.Results}
		if res.HasNext {
			out.Next = pageLink(c, res.Page+1)
		}
		if res.Page > 1 {
			out.Previous = pageLink(c, res.Page-1)
		}
		return c.JSON(out)
	}
}

// UploadRevision stores a new revision of the document at the wildcard URL.
//
//	@Summary	Upload a revision
//	@Tags		documents
//	@Accept		multipart/form-data
//	@Produce	json
//	@Security	BearerAuth
//	@Param		url		path		string	true	"logical document URL"
//	@Param		file	formData	file	true	"document content"
//	@Success	201		{object}	model.Revision
//	@Failure	400		{object}	errorPayload
//	@Failure	401		{object}	errorPayload
//	@Failure	409		{object}	errorPayload
//	@Router		/documents/{url} [post]
func UploadRevision(svc service.RevisionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		docURL, err := documentURL(c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "malformed document url")
		}
		if service.ReservedURL(docURL) {
			return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "document url must not start with hash/")
		}

		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}

		rev, err := svc.Upload(c.UserContext(), service.UploadInput{
			OwnerID:     middleware.UserID(c),
			URL:         docURL,
			FileName:    fh.Filename,
			ContentType: ct,
			Size:        fh.Size,
			Reader:      f,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(rev)
	}
}

// DownloadRevision streams the latest revision, or ?revision=n, of the caller's document.
//
//	@Summary	Download a revision
//	@Tags		documents
//	@Produce	octet-stream
//	@Security	BearerAuth
//	@Param		url			path	string	true	"logical document URL"
//	@Param		revision	query	int		false	"version number, latest when omitted"
//	@Success	200
//	@Failure	400	{object}	errorPayload
//	@Failure	404	{object}	errorPayload
//	@Router		/documents/{url} [get]
func DownloadRevision(svc service.RevisionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		docURL, err := documentURL(c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "malformed document url")
		}
		sel, err := service.ParseSelector(c.Query("revision"))
		if err != nil {
			return writeServiceError(c, err)
		}

		rev, err := svc.Resolve(c.UserContext(), middleware.UserID(c), docURL, sel)
		if err != nil {
			return writeServiceError(c, err)
		}
		return sendRevision(c, svc, rev)
	}
}

// DownloadByHash streams a revision with the given content hash that the caller may read.
//
//	@Summary	Download by content hash
//	@Tags		documents
//	@Produce	octet-stream
//	@Security	BearerAuth
//	@Param		hash	path	string	true	"SHA-256 hex digest"
//	@Success	200
//	@Failure	400	{object}	errorPayload
//	@Failure	403	{object}	errorPayload
//	@Failure	404	{object}	errorPayload
//	@Router		/documents/hash/{hash} [get]
func DownloadByHash(svc service.RevisionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rev, err := svc.ResolveByHash(c.UserContext(), middleware.UserID(c), c.Params("hash"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return sendRevision(c, svc, rev)
	}
}

// LinkByHash returns a presigned download URL.
//
//	@Summary	Presigned download link
//	@Tags		documents
//	@Produce	json
//	@Security	BearerAuth
//	@Param		hash	path		string	true	"SHA-256 hex digest"
//	@Success	200		{object}	service.Link
//	@Failure	403		{object}	errorPayload
//	@Failure	404		{object}	errorPayload
//	@Router		/documents/hash/{hash}/link [get]
func LinkByHash(svc service.RevisionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		link, err := svc.Link(c.UserContext(), middleware.UserID(c), c.Params("hash"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(link)
	}
}

func sendRevision(c *fiber.Ctx, svc service.RevisionService, rev *model.Revision) error {
	rc, info, err := svc.Open(c.UserContext(), rev)
	if err != nil {
		return writeServiceError(c, err)
	}

	c.Attachment(rev.FileName)
	if rev.ContentType != "" {
		c.Set(fiber.HeaderContentType, rev.ContentType)
	}
	c.Set(HeaderContentHash, rev.ContentHash)
	c.Set(HeaderRevision, strconv.Itoa(rev.VersionNumber))

	size := info.Size
	if size <= 0 {
		size = rev.Size
	}
	// fasthttp closes rc once the body is written
	return c.SendStream(rc, int(size))
}
