package corehandler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"schoolhr/internal/domain/auth"
	"schoolhr/internal/domain/core"
	"schoolhr/internal/transport/http/api"
	"schoolhr/internal/transport/http/middleware"
	"schoolhr/internal/transport/http/shared"
)

// Handler exposes the staff roster read side. Employee records are owned by
// the school's HR system and never written here.
type Handler struct {
	Store core.StoreAPI
	Perms middleware.PermissionStore
}

func NewHandler(store core.StoreAPI, perms middleware.PermissionStore) *Handler {
	return &Handler{Store: store, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/me", h.handleMe)
	r.Route("/employees", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermAttendanceRead, h.Perms)).Get("/", h.handleListEmployees)
		r.With(middleware.RequirePermission(auth.PermAttendanceRead, h.Perms)).Get("/{employeeID}", h.handleGetEmployee)
	})
}

type meResponse struct {
	UserID      string   `json:"userId"`
	SchoolID    string   `json:"schoolId"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	perms := []string{}
	for _, perm := range auth.DefaultPermissions {
		if middleware.Can(r, h.Perms, perm) {
			perms = append(perms, perm)
		}
	}
	api.Success(w, meResponse{UserID: user.UserID, SchoolID: user.SchoolID, Role: user.RoleName, Permissions: perms}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())

	employees, err := h.Store.ListActiveEmployees(r.Context(), user.SchoolID)
	if err != nil {
		shared.WriteError(w, requestID, "employees_list_failed", err)
		return
	}
	page := shared.ParsePagination(r, 200, 1000)
	if page.Offset >= len(employees) {
		employees = nil
	} else {
		employees = employees[page.Offset:]
		if page.Limit < len(employees) {
			employees = employees[:page.Limit]
		}
	}

	out := make([]core.Employee, 0, len(employees))
	canExport := middleware.Can(r, h.Perms, auth.PermPayrollExport)
	canSeePay := middleware.Can(r, h.Perms, auth.PermPayrollRead)
	for _, emp := range employees {
		out = append(out, visible(emp, canSeePay, canExport))
	}
	api.Success(w, out, requestID)
}

func (h *Handler) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())
	employeeID := strings.TrimSpace(chi.URLParam(r, "employeeID"))

	emp, err := h.Store.GetEmployee(r.Context(), user.SchoolID, employeeID)
	if err != nil {
		shared.WriteError(w, requestID, "employee_get_failed", err)
		return
	}
	api.Success(w, visible(*emp, middleware.Can(r, h.Perms, auth.PermPayrollRead), middleware.Can(r, h.Perms, auth.PermPayrollExport)), requestID)
}

// visible strips salary and bank data the caller may not see.
func visible(emp core.Employee, canSeePay, canExport bool) core.Employee {
	if !canSeePay {
		emp.Salary = decimal.Zero
		emp.BankAccount = nil
		return emp
	}
	emp.BankAccount = core.RedactBankAccount(emp.BankAccount, canExport)
	return emp
}
