package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/tenders/internal/tenders/domain"
	"github.com/aussiebroadwan/tenders/internal/tenders/service"
	"github.com/aussiebroadwan/tenders/pkg/httpx"
	"github.com/aussiebroadwan/tenders/pkg/slogx"
	"github.com/aussiebroadwan/tenders/pkg/tenderssdk"
)

type MarketCodesHandler struct {
	MarketCodeService *service.MarketCodeService
}

// HandleList godoc
//
//	@Summary		List descriptor codes
//	@Tags			Descripteurs
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{array}		tenderssdk.MarketCode		"code, libelle ordered by code"
//	@Failure		401	{object}	tenderssdk.ErrorResponse	"Missing or invalid access token"
//	@Failure		500	{object}	tenderssdk.ErrorResponse	"Internal server error"
//	@Router			/api/descripteurs [get].
func (h *MarketCodesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	codes, err := h.MarketCodeService.List(ctx)
	if err != nil {
		slogx.FromContext(ctx).Error("list market codes failed", "err", err)
		tenderssdk.ErrServerError.WriteError(w)
		return
	}

	out := make([]tenderssdk.MarketCode, 0, len(codes))
	for _, mc := range codes {
		out = append(out, tenderssdk.MarketCode{Code: mc.Code, Libelle: mc.Libelle})
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleUpsert godoc
//
//	@Summary		Create or relabel a descriptor code
//	@Description	Requires the admin role.
//	@Tags			Descripteurs
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		tenderssdk.MarketCode		true	"code, libelle"
//	@Success		200		{object}	tenderssdk.MarketCode		"Stored row"
//	@Failure		400		{object}	tenderssdk.ErrorResponse	"Missing code or libelle"
//	@Failure		401		{object}	tenderssdk.ErrorResponse	"Missing or invalid access token"
//	@Failure		403		{object}	tenderssdk.ErrorResponse	"Not an admin"
//	@Router			/api/descripteurs [post].
func (h *MarketCodesHandler) HandleUpsert(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req tenderssdk.MarketCode
	if err := decodeBody(r, &req); err != nil {
		tenderssdk.ErrInvalidRequest.WriteError(w)
		return
	}

	mc, err := h.MarketCodeService.Upsert(ctx, domain.MarketCode{Code: req.Code, Libelle: req.Libelle})
	if err != nil {
		if errors.Is(err, service.ErrInvalidRequest) {
			tenderssdk.NewAPIError(http.StatusBadRequest, tenderssdk.ErrorCodeInvalidRequest,
				"code and libelle are required").WriteError(w)
			return
		}
		slogx.FromContext(ctx).Error("upsert market code failed", "code", req.Code, "err", err)
		tenderssdk.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, tenderssdk.MarketCode{Code: mc.Code, Libelle: mc.Libelle})
}
