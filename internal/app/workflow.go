package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"hbnb_web/internal/adapters/observability"
	"hbnb_web/internal/domain"
)

type CompensationPolicy string

const (
	// CompensateNone leaves a partially built place in place.
	CompensateNone CompensationPolicy = "none"
	// CompensateDelete removes the place when a sub-resource batch failed.
	CompensateDelete CompensationPolicy = "delete"
)

func ParseCompensation(s string) CompensationPolicy {
	if CompensationPolicy(strings.ToLower(strings.TrimSpace(s))) == CompensateDelete {
		return CompensateDelete
	}
	return CompensateNone
}

// ItemResult is the outcome of one amenity or image attach.
type ItemResult struct {
	Key     string
	Err     error
	Skipped bool
}

// BatchResult collects per-item outcomes of one batch.
type BatchResult struct {
	Items []ItemResult
	// NotAttempted is set when the batch never ran because an earlier one failed.
	NotAttempted bool
}

func (b BatchResult) OK() int {
	n := 0
	for _, it := range b.Items {
		if it.Err == nil && !it.Skipped {
			n++
		}
	}
	return n
}

func (b BatchResult) Failed() int {
	n := 0
	for _, it := range b.Items {
		if it.Err != nil {
			n++
		}
	}
	return n
}

func (b BatchResult) Skipped() int {
	n := 0
	for _, it := range b.Items {
		if it.Skipped {
			n++
		}
	}
	return n
}

// Err joins the item errors, or returns nil when every item succeeded or was skipped.
func (b BatchResult) Err() error {
	var errs []error
	for _, it := range b.Items {
		if it.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", it.Key, it.Err))
		}
	}
	return errors.Join(errs...)
}

type CreateResult struct {
	PlaceID     int64
	Amenities   BatchResult
	Images      BatchResult
	Compensated bool
}

// PlaceWorkflow creates and updates a place together with its amenities and images.
type PlaceWorkflow struct {
	api     domain.PlaceAPI
	journal domain.Journal
	policy  CompensationPolicy
	limit   int
	now     func() time.Time
}

// NewPlaceWorkflow wires the workflow. journal may be nil.
func NewPlaceWorkflow(api domain.PlaceAPI, journal domain.Journal, policy CompensationPolicy, limit int) *PlaceWorkflow {
	if limit <= 0 {
		limit = 8
	}
	if policy != CompensateDelete {
		policy = CompensateNone
	}
	return &PlaceWorkflow{api: api, journal: journal, policy: policy, limit: limit, now: time.Now}
}

// Create validates the form, creates the place, then attaches amenities and
// afterwards images. The amenity batch settles before the image batch starts;
// when it has failures the image batch is not attempted.
//
// A failed batch returns ErrIncomplete together with a populated result: the
// place exists unless it was compensated.
func (w *PlaceWorkflow) Create(ctx context.Context, token string, f PlaceForm) (CreateResult, error) {
	in, err := ValidatePlace(f)
	if err != nil {
		return CreateResult{}, err
	}

	p, err := w.api.CreatePlace(ctx, token, in)
	if err != nil {
		observability.ObserveWorkflow("create", "failed")
		return CreateResult{}, fmt.Errorf("create place: %w", err)
	}
	res := CreateResult{PlaceID: p.ID}
	log.Info().Int64("place_id", p.ID).Str("step", "create").Msg("place created")

	res.Amenities = w.attachAmenities(ctx, token, p.ID, f.Amenities)
	if res.Amenities.Failed() > 0 {
		res.Images = BatchResult{NotAttempted: true}
	} else {
		res.Images = w.attachImages(ctx, token, p.ID, f.Images)
	}

	err = w.settle(ctx, token, "create", &res)
	return res, err
}

// Update replaces the scalar fields, attaches amenities the place does not
// have yet and uploads the new images. Existing images are left untouched.
// A failed batch is never compensated since the place predates the update.
func (w *PlaceWorkflow) Update(ctx context.Context, token string, existing domain.Place, f PlaceForm) (CreateResult, error) {
	in, err := ValidatePlace(f)
	if err != nil {
		return CreateResult{}, err
	}
	if _, err := w.api.UpdatePlace(ctx, token, existing.ID, in); err != nil {
		observability.ObserveWorkflow("update", "failed")
		return CreateResult{}, fmt.Errorf("update place %d: %w", existing.ID, err)
	}
	res := CreateResult{PlaceID: existing.ID}

	var added []string
	for _, name := range f.Amenities {
		if !existing.HasAmenity(name) {
			added = append(added, name)
		}
	}
	res.Amenities = w.attachAmenities(ctx, token, existing.ID, added)
	if res.Amenities.Failed() > 0 {
		res.Images = BatchResult{NotAttempted: true}
	} else {
		res.Images = w.attachImages(ctx, token, existing.ID, f.Images)
	}

	err = w.settle(ctx, token, "update", &res)
	return res, err
}

func (w *PlaceWorkflow) Delete(ctx context.Context, token string, id int64) error {
	if err := w.api.DeletePlace(ctx, token, id); err != nil {
		return fmt.Errorf("delete place %d: %w", id, err)
	}
	log.Info().Int64("place_id", id).Str("step", "delete").Msg("place deleted")
	return nil
}

// attachAmenities issues one scoped attach per distinct non-empty name.
func (w *PlaceWorkflow) attachAmenities(ctx context.Context, token string, placeID int64, names []string) BatchResult {
	seen := make(map[string]bool, len(names))
	var keys []string
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		keys = append(keys, n)
	}

	items := make([]ItemResult, len(keys))
	var g errgroup.Group
	g.SetLimit(w.limit)
	for i, name := range keys {
		i, name := i, name
		g.Go(func() error {
			items[i] = ItemResult{Key: name, Err: w.api.AddAmenity(ctx, token, placeID, name)}
			return nil
		})
	}
	_ = g.Wait()

	b := BatchResult{Items: items}
	w.logBatch(placeID, "amenities", b)
	return b
}

// attachImages uploads files as multipart and sends URLs as JSON. Entries that
// are neither are recorded as skipped.
func (w *PlaceWorkflow) attachImages(ctx context.Context, token string, placeID int64, images []domain.ImageSource) BatchResult {
	items := make([]ItemResult, len(images))
	var g errgroup.Group
	g.SetLimit(w.limit)
	for i, img := range images {
		i, img := i, img
		key := img.Key()
		switch {
		case img.IsFile():
			g.Go(func() error {
				_, err := w.api.UploadImage(ctx, token, placeID, img.File)
				items[i] = ItemResult{Key: key, Err: err}
				return nil
			})
		case img.IsURL():
			g.Go(func() error {
				_, err := w.api.AddImageURL(ctx, token, placeID, img.URL)
				items[i] = ItemResult{Key: key, Err: err}
				return nil
			})
		default:
			items[i] = ItemResult{Key: key, Skipped: true}
		}
	}
	_ = g.Wait()

	b := BatchResult{Items: items}
	w.logBatch(placeID, "images", b)
	return b
}

func (w *PlaceWorkflow) logBatch(placeID int64, name string, b BatchResult) {
	observability.ObserveBatch(name, b.OK(), b.Failed(), b.Skipped())
	if len(b.Items) == 0 {
		return
	}
	ev := log.Info()
	if b.Failed() > 0 {
		ev = log.Warn().AnErr("error", b.Err())
	}
	ev.Int64("place_id", placeID).
		Str("step", name).
		Int("count", len(b.Items)).
		Int("failed", b.Failed()).
		Int("skipped", b.Skipped()).
		Msg("batch settled")
}

// settle applies the compensation policy and journals the outcome.
func (w *PlaceWorkflow) settle(ctx context.Context, token, op string, res *CreateResult) error {
	batchErr := errors.Join(res.Amenities.Err(), res.Images.Err())
	out := domain.WorkflowOutcome{
		PlaceID:         res.PlaceID,
		Operation:       op,
		Status:          domain.OutcomeComplete,
		AmenitiesFailed: res.Amenities.Failed(),
		ImagesFailed:    res.Images.Failed(),
		RecordedAt:      w.now().UTC(),
	}

	if batchErr != nil {
		out.Status = domain.OutcomeIncomplete
		out.Detail = truncate(batchErr.Error(), 1000)
		if op == "create" && w.policy == CompensateDelete {
			if err := w.api.DeletePlace(ctx, token, res.PlaceID); err != nil {
				out.Status = domain.OutcomeCompensationFailed
				log.Error().Err(err).Int64("place_id", res.PlaceID).Msg("compensating delete failed")
			} else {
				out.Status = domain.OutcomeCompensated
				res.Compensated = true
				log.Warn().Int64("place_id", res.PlaceID).Msg("incomplete place deleted")
			}
		}
	}

	observability.ObserveWorkflow(op, string(out.Status))
	if w.journal != nil {
		if err := w.journal.Record(ctx, out); err != nil {
			log.Error().Err(err).Int64("place_id", res.PlaceID).Msg("journal record failed")
		}
	}

	if batchErr != nil {
		return fmt.Errorf("%w: %w", domain.ErrIncomplete, batchErr)
	}
	return nil
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
