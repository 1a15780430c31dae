package handler

import (
	"github.com/gofiber/fiber/v2"

	"docrev/internal/http/middleware"
	"docrev/internal/model"
	"docrev/internal/service"
)

type shareRequest struct {
	Emails []string `json:"emails"`
}

type granteesResponse struct {
	Grantees []model.User `json:"grantees"`
}

// ShareByHash replaces the grantee set of the caller's revision.
//
//	@Summary	Set who a revision is shared with
//	@Tags		sharing
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		hash	path		string			true	"SHA-256 hex digest"
//	@Param		body	body		shareRequest	true	"desired grantee emails"
//	@Success	200		{object}	model.ShareResult
//	@Failure	400		{object}	errorPayload
//	@Failure	403		{object}	errorPayload
//	@Failure	404		{object}	errorPayload
//	@Failure	409		{object}	errorPayload
//	@Router		/documents/hash/{hash}/share [post]
func ShareByHash(svc service.SharingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req shareRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "body must be JSON with an emails array")
		}
		if req.Emails == nil {
			return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "emails is required")
		}

		res, err := svc.Reconcile(c.UserContext(), middleware.UserID(c), c.Params("hash"), req.Emails)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// ListShares lists the users the caller's revision is shared with.
//
//	@Summary	List grantees
//	@Tags		sharing
//	@Produce	json
//	@Security	BearerAuth
//	@Param		hash	path		string	true	"SHA-256 hex digest"
//	@Success	200		{object}	granteesResponse
//	@Failure	403		{object}	errorPayload
//	@Failure	404		{object}	errorPayload
//	@Router		/documents/hash/{hash}/shares [get]
func ListShares(svc service.SharingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		users, err := svc.Grantees(c.UserContext(), middleware.UserID(c), c.Params("hash"))
		if err != nil {
			return writeServiceError(c, err)
		}
		if users == nil {
			users = []model.User{}
		}
		return c.JSON(granteesResponse{Grantees: users})
	}
}
