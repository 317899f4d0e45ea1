package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/theoribbi/tenantly/internal/common"
	"github.com/theoribbi/tenantly/internal/services"
)

// AdminDBHandlers exposes operator-facing database operations.
type AdminDBHandlers struct {
	companyService services.CompanyService
}

func NewAdminDBHandlers(companyService services.CompanyService) *AdminDBHandlers {
	return &AdminDBHandlers{companyService: companyService}
}

// MigrateTenants re-provisions every registered tenant schema. Run
// after deploying new changesets; repeat runs are no-ops.
func (h *AdminDBHandlers) MigrateTenants(c echo.Context) error {
	migrated, err := h.companyService.MigrateAll(c.Request().Context())
	if err != nil {
		logrus.WithError(err).WithField("migrated", migrated).Error("tenant migration run failed")
		return common.SendDomainError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true, "migrated": migrated})
}
