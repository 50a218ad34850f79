package boamp

import (
	"context"
	"fmt"
	"strings"

	"github.com/aussiebroadwan/tenders/internal/tenders/domain"
	"github.com/aussiebroadwan/tenders/pkg/slogx"
	"golang.org/x/sync/errgroup"
)

// Policy decides what a failed linked fetch does to the batch.
type Policy string

const (
	// PolicyFailFast aborts the whole response on the first linked fetch
	// failure so upstream degradation is visible to the caller.
	PolicyFailFast Policy = "fail_fast"

	// PolicyIsolate keeps the record without derived fields and carries on.
	PolicyIsolate Policy = "isolate"
)

// Enrichment outcomes reported to the Observer.
const (
	OutcomeUnlinked   = "unlinked"
	OutcomeEnriched   = "enriched"
	OutcomeNotFound   = "linked_not_found"
	OutcomeParseError = "parse_warning"
	OutcomeFetchError = "fetch_error"
)

// ParsePolicy maps configuration text onto a Policy. Empty means fail fast.
func ParsePolicy(s string) (Policy, error) {
	p := Policy(strings.ToLower(strings.TrimSpace(s)))
	if p == "" {
		return PolicyFailFast, nil
	}
	return p, p.validate()
}

func (p Policy) validate() error {
	switch p {
	case "", PolicyFailFast, PolicyIsolate:
		return nil
	default:
		return fmt.Errorf("boamp: unknown enrichment policy %q", string(p))
	}
}

// Expiring searches award notices matching c and enriches each one from its
// linked notice. Output order is upstream order.
func (c *Client) Expiring(ctx context.Context, crit domain.SearchCriteria) ([]domain.ContractRecord, error) {
	raws, err := c.search(ctx, BuildQuery(crit, c.now()))
	if err != nil {
		return nil, err
	}
	return c.enrich(ctx, raws)
}

// enrich fans the linked lookups out over at most c.concurrency goroutines.
// Each goroutine writes only its own slot so the result keeps input order.
func (c *Client) enrich(ctx context.Context, raws []rawRecord) ([]domain.ContractRecord, error) {
	out := make([]domain.ContractRecord, len(raws))
	for i, r := range raws {
		out[i] = r.toContract()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for i := range out {
		if out[i].AnnonceLiee == "" {
			c.obs.ObserveEnrichment(OutcomeUnlinked)
			continue
		}
		g.Go(func() error {
			return c.enrichOne(gctx, &out[i])
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) enrichOne(ctx context.Context, rec *domain.ContractRecord) error {
	log := slogx.FromContext(ctx)

	linked, ok, err := c.linked(ctx, rec.AnnonceLiee)
	if err != nil {
		c.obs.ObserveEnrichment(OutcomeFetchError)
		if c.policy == PolicyIsolate {
			log.Warn("linked fetch failed, keeping record without duration",
				"idweb", rec.IDWeb, "linked", rec.AnnonceLiee, "err", err)
			return nil
		}
		return err
	}
	if !ok || linked.Donnees == "" {
		c.obs.ObserveEnrichment(OutcomeNotFound)
		return nil
	}

	details, err := ParseLotDetails(string(linked.Donnees))
	if err != nil {
		c.obs.ObserveEnrichment(OutcomeParseError)
		log.Warn("linked donnees parse failed", "idweb", rec.IDWeb, "linked", rec.AnnonceLiee, "err", err)
		return nil
	}

	applyDetails(rec, details)
	c.obs.ObserveEnrichment(OutcomeEnriched)
	return nil
}

// applyDetails copies the lot details onto rec and derives the end date,
// which needs both a parseable publication date and a duration.
func applyDetails(rec *domain.ContractRecord, d LotDetails) {
	rec.DurationMonths = d.DurationMonths
	rec.RenewalDescription = d.RenewalDescription
	rec.ComputedEndDate = nil

	if d.DurationMonths == nil {
		return
	}
	pub, ok := domain.ParseDate(rec.DateParution)
	if !ok {
		return
	}
	end := domain.AddMonths(pub, *d.DurationMonths).Format(domain.DateLayout)
	rec.ComputedEndDate = &end
}
