package http

import (
	"context"
	"net/http"

	"github.com/jgdelacruz/washbay/internal/domain"
)

// CrewLister is the minimal interface needed for availability queries.
type CrewLister interface {
	ActiveEmployees(ctx context.Context) ([]domain.Employee, error)
	FreeEmployees(ctx context.Context) ([]domain.Employee, error)
	FreeBays(ctx context.Context) ([]domain.Bay, error)
}

// HandleActiveEmployees lists every active employee, assigned or not.
func HandleActiveEmployees(svc CrewLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		employees, err := svc.ActiveEmployees(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, employeesResponse{Employees: toEmployeeRepresentations(employees)})
	}
}

// HandleFreeEmployees lists active employees not assigned to any order.
func HandleFreeEmployees(svc CrewLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		employees, err := svc.FreeEmployees(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, employeesResponse{Employees: toEmployeeRepresentations(employees)})
	}
}

// HandleFreeBays lists bays open for new orders.
func HandleFreeBays(svc CrewLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bays, err := svc.FreeBays(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}

		reps := make([]bayRepresentation, 0, len(bays))
		for _, b := range bays {
			reps = append(reps, bayRepresentation{
				BayID:  b.ID,
				Label:  b.Label,
				Status: string(b.Status),
			})
		}
		writeJSON(w, http.StatusOK, baysResponse{Bays: reps})
	}
}

type employeesResponse struct {
	Employees []employeeRepresentation `json:"employees"`
}

type employeeRepresentation struct {
	EmployeeID     int64  `json:"employee_id"`
	Name           string `json:"name"`
	Status         string `json:"status"`
	AssignedStatus string `json:"assigned_status"`
}

type baysResponse struct {
	Bays []bayRepresentation `json:"bays"`
}

type bayRepresentation struct {
	BayID  int64  `json:"bay_id"`
	Label  string `json:"label"`
	Status string `json:"status"`
}

func toEmployeeRepresentations(employees []domain.Employee) []employeeRepresentation {
	reps := make([]employeeRepresentation, 0, len(employees))
	for _, e := range employees {
		reps = append(reps, employeeRepresentation{
			EmployeeID:     e.ID,
			Name:           e.Name,
			Status:         string(e.Status),
			AssignedStatus: string(e.AssignedStatus),
		})
	}
	return reps
}
