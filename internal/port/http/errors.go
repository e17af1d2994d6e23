package http

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/auth"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/imaging"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/repository"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/service"
)

func statusFor(err error) int {
	var tooBig *http.MaxBytesError
	switch {
	case entity.IsValidation(err),
		errors.Is(err, service.ErrInvalidSortKey),
		errors.Is(err, service.ErrInvalidSortOrder),
		errors.Is(err, service.ErrImageRequired),
		errors.Is(err, imaging.ErrUnsupportedImage):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrNotOwner):
		return http.StatusForbidden
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, service.ErrListingNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrListingSold), errors.Is(err, service.ErrOwnListing):
		return http.StatusConflict
	case errors.Is(err, service.ErrLocationUnavailable):
		return http.StatusPreconditionFailed
	case errors.As(err, &tooBig), errors.Is(err, repository.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusInternalServerError
}

// writeError answers with the status mapped from err. Server faults are
// logged and their detail is not sent to the client.
func writeError(w http.ResponseWriter, log *zap.Logger, msg string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error(msg, zap.Error(err))
		http.Error(w, msg, status)
		return
	}
	log.Debug(msg, zap.Error(err), zap.Int("status", status))
	http.Error(w, err.Error(), status)
}
