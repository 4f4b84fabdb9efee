// Package v1 provides the REST API handlers for cached lists and list commands.
package v1

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/stacklok/listonic-sync/internal/api/common"
	"github.com/stacklok/listonic-sync/internal/lists"
	"github.com/stacklok/listonic-sync/internal/service"
)

const maxBodyBytes = 64 << 10

// AccountsResponse is the body of GET /v1/accounts
type AccountsResponse struct {
	Accounts []service.AccountSummary `json:"accounts"`
}

// ListsResponse is the body of GET /v1/accounts/{account}/lists
type ListsResponse struct {
	Account string       `json:"account"`
	Lists   []lists.List `json:"lists"`
}

// NameRequest is the body of the rename and add item commands
type NameRequest struct {
	Name string `json:"name"`
}

// CheckedRequest is the body of the set checked command
type CheckedRequest struct {
	Checked *bool `json:"checked"`
}

// Routes defines the v1 routes with dependency injection
type Routes struct {
	service service.ListService
}

// NewRoutes creates a new Routes instance with the provided service
func NewRoutes(svc service.ListService) *Routes {
	return &Routes{service: svc}
}

// Router creates a new router for the v1 API
func Router(svc service.ListService) http.Handler {
	routes := NewRoutes(svc)

	r := chi.NewRouter()

	r.Get("/accounts", routes.listAccounts)
	r.Route("/accounts/{account}", func(r chi.Router) {
		r.Get("/lists", routes.getLists)
		r.Post("/refresh", routes.refresh)
		r.Get("/diagnostics", routes.diagnostics)
	})

	r.Route("/lists/{listID}", func(r chi.Router) {
		r.Post("/rename", routes.renameList)
		r.Post("/items", routes.addItem)
		r.Patch("/items/{itemID}", routes.setItemChecked)
		r.Delete("/items/{itemID}", routes.removeItem)
	})

	return r
}

// listAccounts handles GET /v1/accounts
func (rr *Routes) listAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := rr.service.ListAccounts(r.Context())
	if err != nil {
		common.WriteServiceError(w, r, err)
		return
	}
	common.WriteJSONResponse(w, AccountsResponse{Accounts: accounts}, http.StatusOK)
}

// getLists handles GET /v1/accounts/{account}/lists
//
// Query parameters: archived=false hides archived lists, search filters by name.
func (rr *Routes) getLists(w http.ResponseWriter, r *http.Request) {
	account, err := common.GetAndValidateURLParam(r, "account")
	if err != nil {
		common.WriteServiceError(w, r, err)
		return
	}

	var opts []service.Option
	query := r.URL.Query()
	if raw := query.Get("archived"); raw != "" {
		include, err := strconv.ParseBool(raw)
		if err != nil {
			common.WriteServiceError(w, r, fmt.Errorf("%w: archived must be a boolean", service.ErrInvalidInput))
			return
		}
		opts = append(opts, service.WithIncludeArchived(include))
	}
	if query.Has("search") {
		opts = append(opts, service.WithSearch(query.Get("search")))
	}

	result, err := rr.service.GetLists(r.Context(), account, opts...)
	if err != nil {
		common.WriteServiceError(w, r, err)
		return
	}
	common.WriteJSONResponse(w, ListsResponse{Account: account, Lists: result}, http.StatusOK)
}

// refresh handles POST /v1/accounts/{account}/refresh
func (rr *Routes) refresh(w http.ResponseWriter, r *http.Request) {
	account, err := common.GetAndValidateURLParam(r, "account")
	if err != nil {
		common.WriteServiceError(w, r, err)
		return
	}

	if err := rr.service.Refresh(r.Context(), account); err != nil {
		common.WriteServiceError(w, r, err)
		return
	}
	common.WriteJSONResponse(w, map[string]string{"status": "refreshed"}, http.StatusOK)
}

// diagnostics handles GET /v1/accounts/{account}/diagnostics
func (rr *Routes) diagnostics(w http.ResponseWriter, r *http.Request) {
	account, err := common.GetAndValidateURLParam(r, "account")
	if err != nil {
		common.WriteServiceError(w, r, err)
		return
	}

	report, err := rr.service.GetDiagnostics(r.Context(), account)
	if err != nil {
		common.WriteServiceError(w, r, err)
		return
	}
	common.WriteJSONResponse(w, report, http.StatusOK)
}

// renameList handles POST /v1/lists/{listID}/rename
func (rr *Routes) renameList(w http.ResponseWriter, r *http.Request) {
	listID, err := common.GetIDParam(r, "listID")
	if err != nil {
		common.WriteServiceError(w, r, err)
		return
	}

	var body NameRequest
	if err := decodeBody(w, r, &body); err != nil {
		common.WriteServiceError(w, r, err)
		return
	}

	l, err := rr.service.RenameList(r.Context(), listID, body.Name)
	writeListResult(w, r, l, err, http.StatusOK)
}

// addItem handles POST /v1/lists/{listID}/items
func (rr *Routes) addItem(w http.ResponseWriter, r *http.Request) {
	listID, err := common.GetIDParam(r, "listID")
	if err != nil {
		common.WriteServiceError(w, r, err)
		return
	}

	var body NameRequest
	if err := decodeBody(w, r, &body); err != nil {
		common.WriteServiceError(w, r, err)
		return
	}

	l, err := rr.service.AddItem(r.Context(), listID, body.Name)
	writeListResult(w, r, l, err, http.StatusCreated)
}

// setItemChecked handles PATCH /v1/lists/{listID}/items/{itemID}
func (rr *Routes) setItemChecked(w http.ResponseWriter, r *http.Request) {
	listID, itemID, err := itemParams(r)
	if err != nil {
		common.WriteServiceError(w, r, err)
		return
	}

	var body CheckedRequest
	if err := decodeBody(w, r, &body); err != nil {
		common.WriteServiceError(w, r, err)
		return
	}
	if body.Checked == nil {
		common.WriteServiceError(w, r, fmt.Errorf("%w: checked is required", service.ErrInvalidInput))
		return
	}

	l, err := rr.service.SetItemChecked(r.Context(), listID, itemID, *body.Checked)
	writeListResult(w, r, l, err, http.StatusOK)
}

// removeItem handles DELETE /v1/lists/{listID}/items/{itemID}
func (rr *Routes) removeItem(w http.ResponseWriter, r *http.Request) {
	listID, itemID, err := itemParams(r)
	if err != nil {
		common.WriteServiceError(w, r, err)
		return
	}

	l, err := rr.service.RemoveItem(r.Context(), listID, itemID)
	writeListResult(w, r, l, err, http.StatusOK)
}

func itemParams(r *http.Request) (int64, int64, error) {
	listID, err := common.GetIDParam(r, "listID")
	if err != nil {
		return 0, 0, err
	}
	itemID, err := common.GetIDParam(r, "itemID")
	if err != nil {
		return 0, 0, err
	}
	return listID, itemID, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, into any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		return fmt.Errorf("%w: malformed request body: %v", service.ErrInvalidInput, err)
	}
	return nil
}

// writeListResult writes the list as cached after a command; a list that no longer
// exists remotely yields 204
func writeListResult(w http.ResponseWriter, r *http.Request, l *lists.List, err error, code int) {
	if err != nil {
		common.WriteServiceError(w, r, err)
		return
	}
	if l == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	common.WriteJSONResponse(w, l, code)
}
