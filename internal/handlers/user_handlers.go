package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/theoribbi/tenantly/internal/common"
	"github.com/theoribbi/tenantly/internal/services"
)

// UserHandlers serves the tenant-surface user endpoints. Every handler
// reads the schema binding the tenant resolver attached to the request
// context; these routes are unreachable without one.
type UserHandlers struct {
	userService services.UserService
}

func NewUserHandlers(userService services.UserService) *UserHandlers {
	return &UserHandlers{userService: userService}
}

func tenantSchema(c echo.Context) (string, bool) {
	return common.TenantSchemaFromContext(c.Request().Context())
}

func (h *UserHandlers) ListUsers(c echo.Context) error {
	schemaName, ok := tenantSchema(c)
	if !ok {
		return common.SendNotFoundError(c, "Tenant")
	}

	users, err := h.userService.List(c.Request().Context(), schemaName)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

func (h *UserHandlers) GetUser(c echo.Context) error {
	schemaName, ok := tenantSchema(c)
	if !ok {
		return common.SendNotFoundError(c, "Tenant")
	}
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	user, err := h.userService.Get(c.Request().Context(), schemaName, id)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	if user == nil {
		return common.SendNotFoundError(c, "User")
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHandlers) CreateUser(c echo.Context) error {
	schemaName, ok := tenantSchema(c)
	if !ok {
		return common.SendNotFoundError(c, "Tenant")
	}

	var req services.CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if req.Email == "" {
		return common.SendValidationError(c, "email", "email is required")
	}

	user, err := h.userService.Create(c.Request().Context(), schemaName, &req)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, user)
}

func (h *UserHandlers) UpdateUser(c echo.Context) error {
	schemaName, ok := tenantSchema(c)
	if !ok {
		return common.SendNotFoundError(c, "Tenant")
	}
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req services.UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	user, err := h.userService.Update(c.Request().Context(), schemaName, id, &req)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	if user == nil {
		return common.SendNotFoundError(c, "User")
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHandlers) DeleteUser(c echo.Context) error {
	schemaName, ok := tenantSchema(c)
	if !ok {
		return common.SendNotFoundError(c, "Tenant")
	}
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	if err := h.userService.Delete(c.Request().Context(), schemaName, id); err != nil {
		return common.SendDomainError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Admin-surface variants addressed by company id instead of subdomain.

func (h *UserHandlers) ListCompanyUsers(c echo.Context) error {
	companyID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	users, err := h.userService.ListForCompany(c.Request().Context(), companyID)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

func (h *UserHandlers) GetCompanyUser(c echo.Context) error {
	companyID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}
	userID, err := common.ValidateUUID(c.Param("userId"), "userId")
	if err != nil {
		return common.SendValidationError(c, "userId", err.Error())
	}

	user, err := h.userService.GetForCompany(c.Request().Context(), companyID, userID)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	if user == nil {
		return common.SendNotFoundError(c, "User")
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHandlers) CreateCompanyUser(c echo.Context) error {
	companyID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req services.CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if req.Email == "" {
		return common.SendValidationError(c, "email", "email is required")
	}

	user, err := h.userService.CreateForCompany(c.Request().Context(), companyID, &req)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, user)
}

func (h *UserHandlers) UpdateCompanyUser(c echo.Context) error {
	companyID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}
	userID, err := common.ValidateUUID(c.Param("userId"), "userId")
	if err != nil {
		return common.SendValidationError(c, "userId", err.Error())
	}

	var req services.UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	user, err := h.userService.UpdateForCompany(c.Request().Context(), companyID, userID, &req)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	if user == nil {
		return common.SendNotFoundError(c, "User")
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHandlers) DeleteCompanyUser(c echo.Context) error {
	companyID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}
	userID, err := common.ValidateUUID(c.Param("userId"), "userId")
	if err != nil {
		return common.SendValidationError(c, "userId", err.Error())
	}

	if err := h.userService.DeleteForCompany(c.Request().Context(), companyID, userID); err != nil {
		return common.SendDomainError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
