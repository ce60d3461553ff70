package http

import (
	"errors"
	"net/http"

	"github.com/ortano/docsync/internal/store"
)

var errorStatusMap = map[error]int{
	store.ErrUnknownEntity:       http.StatusBadRequest,
	store.ErrUnknownMutationType: http.StatusBadRequest,
	store.ErrMalformedID:         http.StatusBadRequest,
	store.ErrMalformedPayload:    http.StatusBadRequest,
	store.ErrMutationNotFound:    http.StatusNotFound,
	store.ErrDocumentNotFound:    http.StatusNotFound,

	store.ErrBuildingSQLQuery:      http.StatusInternalServerError,
	store.ErrBeginningTransaction:  http.StatusInternalServerError,
	store.ErrCommittingTransaction: http.StatusInternalServerError,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}
