package handlers

import (
	"net/http"

	"standpress/internal/variables"
)

// ListVariables returns the placeholder catalogue for the variable palette.
func (a *API) ListVariables(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, variables.Variables())
}
