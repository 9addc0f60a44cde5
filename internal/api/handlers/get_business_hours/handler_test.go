package get_business_hours

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-StudioScheduler/internal/api/handlers/handlertest"
)

const route = "/tenants/{tenantId}/business-hours"

func TestGetBusinessHours(t *testing.T) {
	settings := handlertest.Settings{handlertest.TenantID: handlertest.Tenant(2)}
	h := NewHandler(settings, handlertest.NopLogger{})

	rec := handlertest.Serve(route, h.Handle, handlertest.Request{Method: http.MethodGet, Target: "/tenants/7/business-hours"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp BusinessHoursResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Australia/Sydney", resp.TimeZone)
	require.Len(t, resp.Days, 7)
	assert.Equal(t, "Monday", resp.Days[1].Weekday)
	assert.Equal(t, 2, resp.Days[1].SunriseCount)

	rec = handlertest.Serve(route, h.Handle, handlertest.Request{Method: http.MethodGet, Target: "/tenants/8/business-hours"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = handlertest.Serve(route, h.Handle, handlertest.Request{Method: http.MethodGet, Target: "/tenants/abc/business-hours"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
