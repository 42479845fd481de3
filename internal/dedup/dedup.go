// Package dedup merges listings that describe the same business into one
// canonical record per identity key.
package dedup

import (
	"strings"

	"github.com/sells-group/leadscout/internal/model"
)

// Options configures identity resolution.
type Options struct {
	// NameOnlyFallback keys records by normalised name alone, merging
	// same-named businesses even when no contact detail overlaps.
	NameOnlyFallback bool
}

// Deduplicator holds the canonical records of one run. It is not safe for
// concurrent use; each run owns its own instance.
type Deduplicator struct {
	opts    Options
	records map[string]*model.BusinessRecord
	order   []string

	fetched int
	merged  int
	dropped int
}

// New creates an empty Deduplicator.
func New(opts Options) *Deduplicator {
	return &Deduplicator{
		opts:    opts,
		records: make(map[string]*model.BusinessRecord),
	}
}

// Key returns the identity key of raw under d's options.
func (d *Deduplicator) Key(raw model.RawRecord) string {
	return Key(raw.Name, raw.Phone, raw.Website, d.opts.NameOnlyFallback)
}

// Merge folds incoming listings into the canonical records and returns the
// number of new identities created. A listing joins the record with the same
// Key and no other; the set of identities therefore does not depend on the
// order listings arrive in. Listings without a usable name are dropped.
// Merging the same batch twice leaves the records unchanged.
func (d *Deduplicator) Merge(incoming []model.RawRecord) int {
	added := 0
	for _, raw := range incoming {
		d.fetched++
		if Normalize(raw.Name) == "" {
			d.dropped++
			continue
		}

		key := d.Key(raw)
		rec, ok := d.records[key]
		if !ok {
			rec = &model.BusinessRecord{
				ID:         key,
				Provenance: make(map[model.Field]model.Provenance),
			}
			d.records[key] = rec
			d.order = append(d.order, key)
			added++
		} else {
			d.merged++
		}

		mergeInto(rec, raw)
	}
	return added
}

// Len returns the number of unique records.
func (d *Deduplicator) Len() int {
	return len(d.order)
}

// Records returns copies of the canonical records in first-seen order.
func (d *Deduplicator) Records() []model.BusinessRecord {
	out := make([]model.BusinessRecord, 0, len(d.order))
	for _, key := range d.order {
		out = append(out, d.records[key].Clone())
	}
	return out
}

// Counts returns how many listings were fetched, merged into an existing
// record, and dropped for lacking a name.
func (d *Deduplicator) Counts() (fetched, merged, dropped int) {
	return d.fetched, d.merged, d.dropped
}

func mergeInto(rec *model.BusinessRecord, raw model.RawRecord) {
	src, w := raw.Source, raw.Confidence

	mergeString(rec, model.FieldName, &rec.Name, strings.TrimSpace(raw.Name), src, w)
	mergeString(rec, model.FieldCategory, &rec.Category, strings.TrimSpace(raw.Category), src, w)
	mergeString(rec, model.FieldAddress, &rec.Address, strings.TrimSpace(raw.Address), src, w)
	mergeString(rec, model.FieldArea, &rec.Area, strings.TrimSpace(raw.Area), src, w)
	mergeString(rec, model.FieldEmirate, &rec.Emirate, strings.TrimSpace(raw.Emirate), src, w)
	mergeString(rec, model.FieldPhone, &rec.Phone, CleanPhone(raw.Phone), src, w)
	mergeString(rec, model.FieldEmail, &rec.Email, strings.ToLower(strings.TrimSpace(raw.Email)), src, w)
	mergeString(rec, model.FieldWebsite, &rec.Website, strings.TrimSpace(raw.Website), src, w)
	mergeString(rec, model.FieldDescription, &rec.Description, strings.TrimSpace(raw.Description), src, w)

	if raw.Rating != nil && wins(rec, model.FieldRating, src, w) {
		v := *raw.Rating
		rec.Rating = &v
	}
	if raw.ReviewCount != nil && wins(rec, model.FieldReviewCount, src, w) {
		v := *raw.ReviewCount
		rec.ReviewCount = &v
	}
	if raw.Coordinates != nil && wins(rec, model.FieldCoordinates, src, w) {
		v := *raw.Coordinates
		rec.Coordinates = &v
	}
	if len(raw.Hours) > 0 && wins(rec, model.FieldHours, src, w) {
		rec.Hours = append([]string(nil), raw.Hours...)
	}

	for _, e := range raw.AdditionalEmails {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" || e == rec.Email {
			continue
		}
		rec.AdditionalEmails = union(rec.AdditionalEmails, e)
	}
	for _, s := range raw.SocialProfiles {
		if s = strings.TrimSpace(s); s != "" {
			rec.SocialProfiles = union(rec.SocialProfiles, s)
		}
	}
	for _, cp := range raw.ContactPersons {
		rec.ContactPersons = unionContact(rec.ContactPersons, cp)
	}

	if src != "" && !containsFold(rec.DataSources, src) {
		rec.DataSources = append(rec.DataSources, src)
	}
}

func mergeString(rec *model.BusinessRecord, f model.Field, dst *string, v, src string, w float64) {
	if v == "" {
		return
	}
	if wins(rec, f, src, w) {
		*dst = v
	}
}

// wins reports whether a value of weight w may overwrite field f, and
// records the new provenance when it does.
func wins(rec *model.BusinessRecord, f model.Field, src string, w float64) bool {
	cur, ok := rec.Provenance[f]
	if ok && w < cur.Weight {
		return false
	}
	rec.Provenance[f] = model.Provenance{Source: src, Weight: w}
	return true
}

func union(list []string, v string) []string {
	if containsFold(list, v) {
		return list
	}
	return append(list, v)
}

func containsFold(list []string, v string) bool {
	for _, s := range list {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}

func unionContact(list []model.ContactPerson, cp model.ContactPerson) []model.ContactPerson {
	n := Normalize(cp.Name)
	if n == "" {
		return list
	}
	for _, existing := range list {
		if Normalize(existing.Name) == n {
			return list
		}
	}
	return append(list, cp)
}
