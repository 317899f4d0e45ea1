package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/theoribbi/tenantly/internal/common"
	"github.com/theoribbi/tenantly/internal/services"
)

// CompanyHandlers serves the admin-surface company endpoints.
type CompanyHandlers struct {
	companyService services.CompanyService
}

func NewCompanyHandlers(companyService services.CompanyService) *CompanyHandlers {
	return &CompanyHandlers{companyService: companyService}
}

// CreateCompany registers a tenant and provisions its schema.
func (h *CompanyHandlers) CreateCompany(c echo.Context) error {
	var req services.CreateCompanyRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if req.Name == "" || req.Slug == "" {
		return common.SendValidationError(c, "slug", "name and slug are required")
	}

	company, err := h.companyService.Create(c.Request().Context(), &req)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, company)
}

func (h *CompanyHandlers) ListCompanies(c echo.Context) error {
	companies, err := h.companyService.List(c.Request().Context())
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, companies)
}

func (h *CompanyHandlers) GetCompany(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	company, err := h.companyService.GetByID(c.Request().Context(), id)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	if company == nil {
		return common.SendNotFoundError(c, "Company")
	}
	return c.JSON(http.StatusOK, company)
}

func (h *CompanyHandlers) GetCompanyBySlug(c echo.Context) error {
	slug := c.Param("slug")
	if slug == "" {
		return common.SendValidationError(c, "slug", "slug is required")
	}

	company, err := h.companyService.GetBySlug(c.Request().Context(), slug)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	if company == nil {
		return common.SendNotFoundError(c, "Company")
	}
	return c.JSON(http.StatusOK, company)
}

// UploadLogo accepts a multipart logo upload for a company.
func (h *CompanyHandlers) UploadLogo(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	file, err := c.FormFile("logo")
	if err != nil {
		return common.SendValidationError(c, "logo", "logo file is required")
	}
	src, err := file.Open()
	if err != nil {
		return common.SendServerError(c, "Failed to read upload")
	}
	defer src.Close()

	contentType := file.Header.Get("Content-Type")
	if err := h.companyService.UploadLogo(c.Request().Context(), id, src, file.Size, contentType); err != nil {
		return common.SendDomainError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GetLogo returns a short-lived presigned URL for a company's logo.
func (h *CompanyHandlers) GetLogo(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	url, err := h.companyService.LogoURL(c.Request().Context(), id)
	if err != nil {
		return common.SendNotFoundError(c, "Logo")
	}
	return c.JSON(http.StatusOK, map[string]string{"url": url})
}
