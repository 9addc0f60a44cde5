package update_business_hours

import (
	"github.com/m04kA/SMC-StudioScheduler/internal/api/handlers/get_business_hours"
	updateBusinessHours "github.com/m04kA/SMC-StudioScheduler/internal/usecase/update_business_hours"
)

// UpdateResponse HTTP response model
type UpdateResponse struct {
	*get_business_hours.BusinessHoursResponse

	// Regenerated - перегенерация выполнена синхронно, иначе идет в фоне
	Regenerated         bool     `json:"regenerated"`
	PlaceholdersDeleted int64    `json:"placeholdersDeleted,omitempty"`
	PlaceholdersCreated int      `json:"placeholdersCreated,omitempty"`
	Warnings            []string `json:"warnings,omitempty"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *updateBusinessHours.Response) *UpdateResponse {
	out := &UpdateResponse{BusinessHoursResponse: get_business_hours.FromTenant(resp.Tenant)}
	if resp.Regeneration != nil {
		out.Regenerated = true
		out.PlaceholdersDeleted = resp.Regeneration.Deleted
		out.PlaceholdersCreated = resp.Regeneration.Created
	}
	for _, w := range resp.Warnings {
		out.Warnings = append(out.Warnings, w.Error())
	}
	return out
}
