package create_draft

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-StudioScheduler/internal/api/handlers"
	"github.com/m04kA/SMC-StudioScheduler/internal/api/handlers/handlertest"
	"github.com/m04kA/SMC-StudioScheduler/internal/domain"
)

const route = "/tenants/{tenantId}/drafts"

func pointerBody(at time.Time, slotType domain.SlotType) string {
	return fmt.Sprintf(`{"mode":"pointer","at":%q,"slotType":%q,"pointer":{"x":10,"y":20}}`,
		at.UTC().Format(time.RFC3339), slotType)
}

func post(h *Handler, body string, role domain.Role) (*DraftResponse, int, string) {
	rec := handlertest.Serve(route, h.Handle, handlertest.Request{
		Method:  http.MethodPost,
		Target:  "/tenants/7/drafts",
		Body:    body,
		Role:    role,
		Session: "tab-1",
	})
	var resp DraftResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	return &resp, rec.Code, rec.Body.String()
}

func TestCreateDraft_SunriseUntilFull(t *testing.T) {
	env := handlertest.NewEnv(handlertest.Tenant(1), handlertest.Monday)
	h := NewHandler(env.Registry, handlertest.NopLogger{})

	resp, code, _ := post(h, pointerBody(handlertest.Monday.Sunrise, domain.SlotTypeSunrise), domain.RoleManager)
	require.Equal(t, http.StatusCreated, code)
	require.NotNil(t, resp.Booking)
	assert.Equal(t, "created", resp.State)
	assert.False(t, resp.Deferred)
	assert.NotEmpty(t, resp.AnchorToken)
	assert.Equal(t, handlertest.Monday.Sunrise.Add(-30*time.Minute).Format(time.RFC3339), resp.Booking.StartAt)
	assert.Equal(t, "2026-06-15T06:30", resp.Booking.StartAtLocal)
	assert.Equal(t, 1, env.Store.Len())

	_, code, body := post(h, pointerBody(handlertest.Monday.Sunrise.Add(5*time.Minute), domain.SlotTypeSunrise), domain.RoleManager)
	assert.Equal(t, http.StatusConflict, code)

	var errResp handlers.ErrorResponse
	require.NoError(t, json.Unmarshal([]byte(body), &errResp))
	assert.Equal(t, msgNoCapacity, errResp.Error)
	assert.Equal(t, 1, env.Store.Len())
}

func TestCreateDraft_DuplicateGestureIgnored(t *testing.T) {
	env := handlertest.NewEnv(handlertest.Tenant(2), handlertest.Monday)
	h := NewHandler(env.Registry, handlertest.NopLogger{})

	at := handlertest.DayStart.Add(10 * time.Hour)
	_, code, _ := post(h, pointerBody(at, domain.SlotTypeNone), domain.RoleManager)
	require.Equal(t, http.StatusCreated, code)

	resp, code, _ := post(h, pointerBody(at.Add(20*time.Second), domain.SlotTypeNone), domain.RoleManager)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, resp.Ignored)
	assert.Equal(t, 1, env.Store.Len())
}

func TestCreateDraft_ClientIsDeferred(t *testing.T) {
	env := handlertest.NewEnv(handlertest.Tenant(1), handlertest.Monday)
	h := NewHandler(env.Registry, handlertest.NopLogger{})

	body := fmt.Sprintf(`{"mode":"range","start":%q,"end":%q}`,
		handlertest.DayStart.Add(13*time.Hour).UTC().Format(time.RFC3339),
		handlertest.DayStart.Add(15*time.Hour).UTC().Format(time.RFC3339))
	resp, code, _ := post(h, body, domain.RoleClient)

	require.Equal(t, http.StatusCreated, code)
	assert.True(t, resp.Deferred)
	require.NotNil(t, resp.Booking)
	assert.Contains(t, resp.Booking.Key, "local:")
	assert.Equal(t, 0, env.Store.Len())
}

func TestCreateDraft_BadRequests(t *testing.T) {
	env := handlertest.NewEnv(handlertest.Tenant(1), handlertest.Monday)
	h := NewHandler(env.Registry, handlertest.NopLogger{})

	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "not json", body: `{`, want: http.StatusBadRequest},
		{name: "unknown mode", body: `{"mode":"drag","at":"2026-06-15T01:00:00Z"}`, want: http.StatusBadRequest},
		{name: "pointer without at", body: `{"mode":"pointer"}`, want: http.StatusBadRequest},
		{name: "bad slot type", body: `{"mode":"pointer","at":"2026-06-15T01:00:00Z","slotType":"noon"}`, want: http.StatusBadRequest},
		{name: "bad time", body: `{"mode":"pointer","at":"tomorrow"}`, want: http.StatusBadRequest},
		{name: "empty range", body: `{"mode":"range","start":"2026-06-15T01:00:00Z","end":"2026-06-15T01:00:00Z"}`, want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, code, _ := post(h, tt.body, domain.RoleManager)
			assert.Equal(t, tt.want, code)
		})
	}
}

func TestCreateDraft_SessionRequired(t *testing.T) {
	env := handlertest.NewEnv(handlertest.Tenant(1), handlertest.Monday)
	h := NewHandler(env.Registry, handlertest.NopLogger{})

	rec := handlertest.Serve(route, h.Handle, handlertest.Request{
		Method: http.MethodPost,
		Target: "/tenants/7/drafts",
		Body:   pointerBody(handlertest.Monday.Sunrise, domain.SlotTypeSunrise),
		Role:   domain.RoleManager,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = handlertest.Serve(route, h.Handle, handlertest.Request{
		Method:  http.MethodPost,
		Target:  "/tenants/99/drafts",
		Body:    pointerBody(handlertest.Monday.Sunrise, domain.SlotTypeSunrise),
		Role:    domain.RoleManager,
		Session: "tab-1",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
