package corehandler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolhr/internal/domain/auth"
	"schoolhr/internal/domain/core"
	"schoolhr/internal/platform/memstore"
	"schoolhr/internal/transport/http/middleware"
)

const secret = "test-secret"

func router(t *testing.T) http.Handler {
	t.Helper()
	store := memstore.New()
	store.AddEmployee("school-1", core.Employee{
		ID:          "e1",
		FullName:    "Jane Doe",
		Salary:      decimal.NewFromInt(22000),
		BankAccount: &core.BankAccount{AccountNumber: "001234567890", RoutingCode: "SCHL0000123"},
	})
	store.AddEmployee("school-1", core.Employee{ID: "e3", FullName: "Former Staff", Status: core.StatusInactive})
	store.AddEmployee("school-2", core.Employee{ID: "e9", FullName: "Other School"})

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Auth(secret))
	NewHandler(store, auth.StaticPermissions{}).RegisterRoutes(r)
	return r
}

func get(t *testing.T, h http.Handler, target, role string) (*httptest.ResponseRecorder, json.RawMessage) {
	t.Helper()
	tok, err := auth.GenerateToken(secret, auth.Claims{UserID: "u1", SchoolID: "school-1", RoleName: role}, time.Hour)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env.Data
}

func TestListEmployeesHidesPayFromStaff(t *testing.T) {
	rec, data := get(t, router(t), "/employees", auth.RoleStaff)
	require.Equal(t, http.StatusOK, rec.Code)
	var employees []core.Employee
	require.NoError(t, json.Unmarshal(data, &employees))
	require.Len(t, employees, 1)
	assert.Equal(t, "e1", employees[0].ID)
	assert.True(t, employees[0].Salary.IsZero())
	assert.Nil(t, employees[0].BankAccount)
}

func TestGetEmployeeMasksAccountForPrincipal(t *testing.T) {
	rec, data := get(t, router(t), "/employees/e1", auth.RolePrincipal)
	require.Equal(t, http.StatusOK, rec.Code)
	var emp core.Employee
	require.NoError(t, json.Unmarshal(data, &emp))
	assert.Equal(t, "********7890", emp.BankAccount.AccountNumber)
	assert.True(t, decimal.NewFromInt(22000).Equal(emp.Salary))

	_, data = get(t, router(t), "/employees/e1", auth.RoleAccountant)
	require.NoError(t, json.Unmarshal(data, &emp))
	assert.Equal(t, "001234567890", emp.BankAccount.AccountNumber)
}

func TestGetEmployeeFromAnotherSchool(t *testing.T) {
	rec, _ := get(t, router(t), "/employees/e9", auth.RoleAdmin)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMeListsPermissions(t *testing.T) {
	rec, data := get(t, router(t), "/me", auth.RoleAccountant)
	require.Equal(t, http.StatusOK, rec.Code)
	var me meResponse
	require.NoError(t, json.Unmarshal(data, &me))
	assert.Equal(t, auth.RoleAccountant, me.Role)
	assert.ElementsMatch(t, auth.RolePermissions[auth.RoleAccountant], me.Permissions)
}
