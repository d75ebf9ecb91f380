package http

import (
	"context"
	"net/http"
)

// AdsPermissionService reports whether the caller may manage ads events.
type AdsPermissionService interface {
	CanManipulateAds(ctx context.Context, callerAddress string) bool
}

type adsPermissionResponse struct {
	CanCreateAdsEvents bool `json:"canCreateAdsEvents"`
}

// HandleAdsPermission lets the frontend enable the ads category up front.
func HandleAdsPermission(svc AdsPermissionService, callerAddress CallerAddressFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, adsPermissionResponse{
			CanCreateAdsEvents: svc.CanManipulateAds(r.Context(), callerAddress(r)),
		})
	}
}
