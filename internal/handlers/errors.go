package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/exploria-travel/auth-service/internal/models"
	pkghttp "github.com/exploria-travel/auth-service/pkg/http"
)

// writeServiceError maps a service-layer error onto the response envelope.
// Typed errors carry recovery payloads for the client (duplicate ref ids,
// profile-completion prompts); everything unrecognized collapses to a generic
// 500 with the detail kept in the server log.
func writeServiceError(w http.ResponseWriter, err error) {
	var dup *models.DuplicateAccountError
	if errors.As(err, &dup) {
		pkghttp.WriteFailureData(w, http.StatusConflict, "An account already exists", map[string]interface{}{
			"ref_id":                      dup.RefID,
			"field":                       dup.Field,
			"requires_profile_completion": !dup.Confirmed,
		})
		return
	}

	var incomplete *models.ProfileIncompleteError
	if errors.As(err, &incomplete) {
		pkghttp.WriteFailureData(w, http.StatusForbidden, "Profile completion required", map[string]interface{}{
			"ref_id":                      incomplete.RefID,
			"requires_profile_completion": true,
		})
		return
	}

	var denied *models.RoleDeniedError
	if errors.As(err, &denied) {
		pkghttp.WriteForbidden(w, denied.Error())
		return
	}

	var notActive *models.AccountNotActiveError
	if errors.As(err, &notActive) {
		pkghttp.WriteForbidden(w, fmt.Sprintf("Account is %s", notActive.Status))
		return
	}

	switch {
	case errors.Is(err, models.ErrAlreadyConfirmed):
		pkghttp.WriteFailure(w, http.StatusBadRequest, "Profile has already been completed")
	case errors.Is(err, models.ErrNotFound):
		pkghttp.WriteNotFound(w, "Account not found")
	case errors.Is(err, models.ErrConflict):
		pkghttp.WriteConflict(w, "An account already exists")
	case errors.Is(err, models.ErrUnauthorized):
		pkghttp.WriteUnauthorized(w, "Unauthorized")
	case errors.Is(err, models.ErrForbidden):
		pkghttp.WriteForbidden(w, "Forbidden")
	case errors.Is(err, models.ErrBadRequest):
		pkghttp.WriteBadRequest(w, "Invalid request")
	default:
		pkghttp.WriteInternalError(w, "Something went wrong")
	}
}
