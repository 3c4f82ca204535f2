package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/lncalendar/lncalendar/controllers"
	"github.com/lncalendar/lncalendar/db"
	"github.com/lncalendar/lncalendar/lightning"
	"github.com/lncalendar/lncalendar/models"
	"github.com/lncalendar/lncalendar/payments"
	"github.com/lncalendar/lncalendar/routes"
)

const (
	adminKey   = "admin-key-1"
	invoiceKey = "invoice-key-1"
	masterKey  = "master-key"
)

type fakeLN struct {
	mu       sync.Mutex
	invoices int
	payments map[string]*lightning.Payment
}

func (f *fakeLN) CreateInvoice(_ context.Context, params lightning.InvoiceParams) (*lightning.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invoices++
	hash := fmt.Sprintf("hash-%d", f.invoices)
	return &lightning.Payment{PaymentHash: hash, Bolt11: "lnbc-" + hash, Amount: params.Amount * 1000}, nil
}

func (f *fakeLN) Payment(_ context.Context, hash string) (*lightning.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.payments[hash]; ok {
		return p, nil
	}
	return nil, errors.New("payment not found")
}

func (f *fakeLN) PaidInvoices(context.Context) <-chan lightning.Payment {
	return nil
}

type satConverter struct{}

func (satConverter) FiatAsSats(_ context.Context, amount float64, _ string) (int64, error) {
	return int64(amount * 1000), nil
}

func setupApp(t *testing.T) (*fiber.App, *fakeLN) {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&models.Wallet{},
		&models.Schedule{},
		&models.Appointment{},
		&models.UnavailableTime{},
		&models.CalendarSettings{},
	))
	db.DB = conn

	require.NoError(t, conn.Create(&models.Wallet{
		ID: "wallet1", UserID: "user1", Name: "default",
		AdminKey: adminKey, InKey: invoiceKey,
	}).Error)

	ln := &fakeLN{payments: map[string]*lightning.Payment{}}
	svc := payments.NewService(conn, ln, satConverter{})
	controllers.Setup(svc, nil)

	app := fiber.New()
	routes.SetupScheduleRoutes(app)
	routes.SetupAppointmentRoutes(app)
	routes.SetupUnavailableRoutes(app)
	routes.SetupSettingsRoutes(app, masterKey)
	return app, ln
}

func doJSON(t *testing.T, app *fiber.App, method, path, apiKey string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("X-Api-Key", apiKey)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func createTestSchedule(t *testing.T, app *fiber.App) models.Schedule {
	t.Helper()
	resp, raw := doJSON(t, app, http.MethodPost, "/api/v1/schedule/", adminKey, models.CreateSchedule{
		Wallet:    "wallet1",
		Name:      "Office Hours",
		StartDay:  1,
		EndDay:    5,
		StartTime: "09:00",
		EndTime:   "17:00",
		Amount:    1000,
		Timeslot:  30,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))

	var schedule models.Schedule
	require.NoError(t, json.Unmarshal(raw, &schedule))
	return schedule
}

func TestScheduleCRUD(t *testing.T) {
	app, _ := setupApp(t)
	schedule := createTestSchedule(t, app)
	assert.Equal(t, "sat", schedule.Currency)

	resp, raw := doJSON(t, app, http.MethodGet, "/api/v1/schedule/", invoiceKey, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var listed []struct {
		models.Schedule
		AvailableDays []int `json:"available_days"`
	}
	require.NoError(t, json.Unmarshal(raw, &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, listed[0].AvailableDays)

	resp, _ = doJSON(t, app, http.MethodGet, "/api/v1/schedule/"+schedule.ID, "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode, "single schedule fetch is public")

	update := models.CreateSchedule{
		Wallet: "wallet1", Name: "New Name", StartDay: 2, EndDay: 4,
		StartTime: "10:00", EndTime: "16:00", Amount: 2000, Timeslot: 60,
	}
	resp, raw = doJSON(t, app, http.MethodPut, "/api/v1/schedule/"+schedule.ID, adminKey, update)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var updated models.Schedule
	require.NoError(t, json.Unmarshal(raw, &updated))
	assert.Equal(t, "New Name", updated.Name)
	assert.Equal(t, int64(2000), updated.Amount)

	resp, _ = doJSON(t, app, http.MethodDelete, "/api/v1/schedule/"+schedule.ID, adminKey, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodGet, "/api/v1/schedule/"+schedule.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestScheduleAuth(t *testing.T) {
	app, _ := setupApp(t)

	resp, _ := doJSON(t, app, http.MethodGet, "/api/v1/schedule/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/schedule/", invoiceKey, models.CreateSchedule{})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "invoice key must not authorize mutations")

	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/schedule/", adminKey, models.CreateSchedule{
		Wallet: "someone-elses-wallet", Name: "x", StartDay: 1, EndDay: 5,
		StartTime: "09:00", EndTime: "17:00", Amount: 100,
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestScheduleValidation(t *testing.T) {
	app, _ := setupApp(t)

	bad := models.CreateSchedule{
		Wallet: "wallet1", Name: "x", StartDay: 5, EndDay: 1,
		StartTime: "09:00", EndTime: "17:00", Amount: 100,
	}
	resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/schedule/", adminKey, bad)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	bad.StartDay, bad.EndDay = 1, 5
	bad.Currency = "DOGE"
	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/schedule/", adminKey, bad)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAppointmentBookingFlow(t *testing.T) {
	app, ln := setupApp(t)
	schedule := createTestSchedule(t, app)

	booking := models.CreateAppointment{
		Name:      "alice",
		StartTime: "2024/01/02 09:00",
		EndTime:   "2024/01/02 09:30",
		Schedule:  schedule.ID,
	}
	resp, raw := doJSON(t, app, http.MethodPost, "/api/v1/appointment/", "", booking)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	var invoice payments.InvoiceResult
	require.NoError(t, json.Unmarshal(raw, &invoice))
	assert.Equal(t, "hash-1", invoice.PaymentHash)
	assert.NotEmpty(t, invoice.PaymentRequest)

	// Poll while unsettled.
	ln.payments[invoice.PaymentHash] = &lightning.Payment{
		PaymentHash: invoice.PaymentHash, Amount: 1_000_000, Settled: false,
	}
	resp, raw = doJSON(t, app, http.MethodGet,
		"/api/v1/appointment/"+schedule.ID+"/"+invoice.PaymentHash, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var status struct {
		Paid bool `json:"paid"`
	}
	require.NoError(t, json.Unmarshal(raw, &status))
	assert.False(t, status.Paid)

	// Settle and poll again.
	ln.payments[invoice.PaymentHash].Settled = true
	ln.payments[invoice.PaymentHash].Extra = map[string]string{"tag": payments.PaymentTag}
	resp, raw = doJSON(t, app, http.MethodGet,
		"/api/v1/appointment/"+schedule.ID+"/"+invoice.PaymentHash, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(raw, &status))
	assert.True(t, status.Paid)

	// The paid slot now conflicts.
	resp, _ = doJSON(t, app, http.MethodPost, "/api/v1/appointment/", "", booking)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestAppointmentUnknownSchedule(t *testing.T) {
	app, _ := setupApp(t)
	resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/appointment/", "", models.CreateAppointment{
		Name: "alice", StartTime: "2024/01/02 09:00", EndTime: "2024/01/02 09:30", Schedule: "missing",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAppointmentListings(t *testing.T) {
	app, _ := setupApp(t)
	schedule := createTestSchedule(t, app)

	booking := models.CreateAppointment{
		Name: "alice", StartTime: "2024/01/02 09:00", EndTime: "2024/01/02 09:30", Schedule: schedule.ID,
	}
	resp, _ := doJSON(t, app, http.MethodPost, "/api/v1/appointment/", "", booking)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, raw := doJSON(t, app, http.MethodGet, "/api/v1/appointment/"+schedule.ID, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var appointments []models.Appointment
	require.NoError(t, json.Unmarshal(raw, &appointments))
	assert.Len(t, appointments, 1)

	resp, raw = doJSON(t, app, http.MethodGet, "/api/v1/appointment/", invoiceKey, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(raw, &appointments))
	assert.Len(t, appointments, 1)

	resp, _ = doJSON(t, app, http.MethodGet, "/api/v1/appointment/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAppointmentOwnerUpdateAndDelete(t *testing.T) {
	app, _ := setupApp(t)
	schedule := createTestSchedule(t, app)

	resp, raw := doJSON(t, app, http.MethodPost, "/api/v1/appointment/", "", models.CreateAppointment{
		Name: "alice", StartTime: "2024/01/02 09:00", EndTime: "2024/01/02 09:30", Schedule: schedule.ID,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var invoice payments.InvoiceResult
	require.NoError(t, json.Unmarshal(raw, &invoice))

	newInfo := "bring documents"
	resp, raw = doJSON(t, app, http.MethodPut, "/api/v1/appointment/"+invoice.PaymentHash, adminKey,
		map[string]string{"info": newInfo})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var updated models.Appointment
	require.NoError(t, json.Unmarshal(raw, &updated))
	assert.Equal(t, newInfo, updated.Info)
	assert.Equal(t, "alice", updated.Name, "unset fields stay untouched")

	resp, _ = doJSON(t, app, http.MethodDelete, "/api/v1/appointment/"+invoice.PaymentHash, invoiceKey, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodDelete, "/api/v1/appointment/"+invoice.PaymentHash, adminKey, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestUnavailableTimeLifecycle(t *testing.T) {
	app, _ := setupApp(t)
	schedule := createTestSchedule(t, app)

	resp, raw := doJSON(t, app, http.MethodPost, "/api/v1/unavailable/", adminKey, models.CreateUnavailableTime{
		StartTime: "2024/01/02 09:00",
		Schedule:  schedule.ID,
		Name:      "holiday",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	var block models.UnavailableTime
	require.NoError(t, json.Unmarshal(raw, &block))
	assert.Equal(t, block.StartTime, block.EndTime, "end time defaults to start time")

	resp, raw = doJSON(t, app, http.MethodGet, "/api/v1/unavailable/"+schedule.ID, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var blocks []models.UnavailableTime
	require.NoError(t, json.Unmarshal(raw, &blocks))
	assert.Len(t, blocks, 1)

	resp, _ = doJSON(t, app, http.MethodDelete,
		"/api/v1/unavailable/"+schedule.ID+"/"+block.ID, adminKey, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestSettingsRequireMasterKey(t *testing.T) {
	app, _ := setupApp(t)

	resp, _ := doJSON(t, app, http.MethodGet, "/api/v1/settings/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodGet, "/api/v1/settings/", adminKey, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "wallet keys are not the service admin key")

	resp, _ = doJSON(t, app, http.MethodGet, "/api/v1/settings/", masterKey, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPut, "/api/v1/settings/", masterKey, models.CalendarSettings{
		NostrPrivateKey: "definitely-not-a-key",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestManualPurgeEndpoint(t *testing.T) {
	app, _ := setupApp(t)
	schedule := createTestSchedule(t, app)

	resp, _ := doJSON(t, app, http.MethodGet, "/api/v1/appointment/purge/"+schedule.ID, "", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodGet, "/api/v1/appointment/purge/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
