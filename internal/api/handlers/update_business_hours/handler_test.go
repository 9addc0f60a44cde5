package update_business_hours

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-StudioScheduler/internal/api/handlers/handlertest"
	"github.com/m04kA/SMC-StudioScheduler/internal/domain"
	"github.com/m04kA/SMC-StudioScheduler/internal/usecase/regenerate_placeholders"
	updateBusinessHours "github.com/m04kA/SMC-StudioScheduler/internal/usecase/update_business_hours"
)

const route = "/tenants/{tenantId}/business-hours"

type fakeUseCase struct {
	got  *updateBusinessHours.Request
	resp *updateBusinessHours.Response
	err  error
}

func (f *fakeUseCase) Execute(_ context.Context, req *updateBusinessHours.Request) (*updateBusinessHours.Response, error) {
	f.got = req
	return f.resp, f.err
}

const body = `{"timeZone":"Australia/Sydney","days":[{},{"open":true,"start":"09:00","end":"17:00","sunriseCount":2},{},{},{},{},{}]}`

func put(h *Handler, role domain.Role) (int, []byte) {
	rec := handlertest.Serve(route, h.Handle, handlertest.Request{
		Method: http.MethodPut,
		Target: "/tenants/7/business-hours",
		Body:   body,
		Role:   role,
	})
	return rec.Code, rec.Body.Bytes()
}

func TestUpdateBusinessHours_Success(t *testing.T) {
	uc := &fakeUseCase{resp: &updateBusinessHours.Response{
		Tenant:       handlertest.Tenant(2),
		Regeneration: &regenerate_placeholders.Response{Deleted: 3, Created: 8},
		Warnings:     []error{fmt.Errorf("%w: 14 of 30 days resolved", regenerate_placeholders.ErrPartial)},
	}}
	h := NewHandler(uc, handlertest.NopLogger{})

	code, raw := put(h, domain.RoleManager)
	require.Equal(t, http.StatusOK, code)

	require.NotNil(t, uc.got)
	assert.Equal(t, int64(7), uc.got.TenantID)
	assert.Equal(t, int64(42), uc.got.UserID)
	assert.Equal(t, domain.RoleManager, uc.got.Role)
	assert.Equal(t, "09:00", uc.got.Days[1].Start)
	assert.Equal(t, 2, uc.got.Days[1].SunriseCount)

	var resp UpdateResponse
	require.NoError(t, json.Unmarshal(raw, &resp))
	assert.True(t, resp.Regenerated)
	assert.Equal(t, 8, resp.PlaceholdersCreated)
	assert.Equal(t, "Australia/Sydney", resp.TimeZone)
	require.Len(t, resp.Warnings, 1)
}

func TestUpdateBusinessHours_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "access denied", err: updateBusinessHours.ErrAccessDenied, want: http.StatusForbidden},
		{name: "invalid input", err: fmt.Errorf("%w: Monday: start must be before end", updateBusinessHours.ErrInvalidInput), want: http.StatusBadRequest},
		{name: "internal", err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(&fakeUseCase{err: tt.err}, handlertest.NopLogger{})
			code, _ := put(h, domain.RoleClient)
			assert.Equal(t, tt.want, code)
		})
	}
}
