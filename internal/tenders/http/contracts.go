package http

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/aussiebroadwan/tenders/internal/tenders/boamp"
	"github.com/aussiebroadwan/tenders/internal/tenders/domain"
	"github.com/aussiebroadwan/tenders/internal/tenders/service"
	"github.com/aussiebroadwan/tenders/pkg/httpx"
	"github.com/aussiebroadwan/tenders/pkg/tenderssdk"
)

// ExpiringHandler serves GET /api/expiring.
type ExpiringHandler struct {
	ContractService *service.ContractService
}

// ServeHTTP godoc
//
//	@Summary		Contracts approaching their end
//	@Description	Searches BOAMP award notices published in the window [now - fallbackMonths, now + horizonMonths - fallbackMonths]
//	@Description	and enriches each one with the duration found in its linked notice and the inferred end date.
//	@Tags			Contracts
//	@Security		BearerAuth
//	@Produce		json
//	@Param			departement		query		string						false	"Comma separated department codes"
//	@Param			descripteur		query		string						false	"Comma separated descriptor codes"
//	@Param			max				query		int							false	"Result limit, capped at 100"	default(200)
//	@Param			fallbackMonths	query		int							false	"Months back from now"			default(48)
//	@Param			horizonMonths	query		int							false	"Months ahead of the window"	default(6)
//	@Success		200				{object}	tenderssdk.ExpiringResponse	"rows"
//	@Failure		400				{object}	tenderssdk.ErrorResponse	"Bad query parameter"
//	@Failure		401				{object}	tenderssdk.ErrorResponse	"Missing or invalid access token"
//	@Failure		500				{object}	tenderssdk.ErrorResponse	"Upstream or internal failure"
//	@Router			/api/expiring [get].
func (h *ExpiringHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	criteria, err := parseCriteria(r.URL.Query())
	if err != nil {
		tenderssdk.NewAPIError(http.StatusBadRequest, tenderssdk.ErrorCodeInvalidRequest, err.Error()).WriteError(w)
		return
	}

	records, err := h.ContractService.Expiring(r.Context(), criteria)
	if err != nil {
		var upstream *boamp.UpstreamError
		switch {
		case errors.As(err, &upstream):
			tenderssdk.UpstreamFailure(upstream.Error()).WriteError(w)
		case errors.Is(err, service.ErrInvalidCriteria):
			tenderssdk.ErrInvalidRequest.WriteError(w)
		default:
			tenderssdk.ErrServerError.WriteError(w)
		}
		return
	}

	rows := make([]tenderssdk.ContractRecord, 0, len(records))
	for _, rec := range records {
		rows = append(rows, toSDKRecord(rec))
	}
	httpx.WriteJSON(w, http.StatusOK, tenderssdk.ExpiringResponse{Rows: rows})
}

func parseCriteria(q url.Values) (domain.SearchCriteria, error) {
	c := domain.DefaultCriteria()
	c.DepartmentCodes = httpx.SplitCSV(q.Get("departement"))
	c.DescriptorCodes = httpx.SplitCSV(q.Get("descripteur"))

	var err error
	if c.ResultLimit, err = intParam(q, "max", c.ResultLimit, 1); err != nil {
		return c, err
	}
	if c.FallbackMonths, err = intParam(q, "fallbackMonths", c.FallbackMonths, 0); err != nil {
		return c, err
	}
	if c.HorizonMonths, err = intParam(q, "horizonMonths", c.HorizonMonths, 0); err != nil {
		return c, err
	}
	return c, nil
}

// intParam reads an integer parameter no smaller than floor. An absent or
// blank parameter yields def.
func intParam(q url.Values, name string, def, floor int) (int, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < floor {
		return 0, errors.New(name + " must be an integer >= " + strconv.Itoa(floor))
	}
	return n, nil
}

func toSDKRecord(rec domain.ContractRecord) tenderssdk.ContractRecord {
	return tenderssdk.ContractRecord{
		IDWeb:              rec.IDWeb,
		ID:                 rec.ID,
		Objet:              rec.Objet,
		Departement:        rec.Departement,
		Titulaire:          rec.Titulaire,
		NomAcheteur:        rec.NomAcheteur,
		DateParution:       rec.DateParution,
		URLAvis:            rec.URLAvis,
		Donnees:            rec.Donnees,
		DescripteurLibelle: rec.DescripteurLibelle,
		TypeMarcheFacette:  rec.TypeMarcheFacette,
		AnnonceLiee:        rec.AnnonceLiee,
		Duree:              rec.DurationMonths,
		Renouvellement:     rec.RenewalDescription,
		DateFin:            rec.ComputedEndDate,
	}
}
