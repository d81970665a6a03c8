package service

import (
	"context"
	"database/sql"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/erazemk/inventar/internal/metrics"
	"github.com/erazemk/inventar/internal/model"
	"github.com/erazemk/inventar/internal/policy"
	"github.com/erazemk/inventar/internal/store"
)

// Default retention windows before a resolved request is archived.
const (
	DefaultRejectedRetention = 72 * time.Hour
	DefaultApprovedRetention = 120 * time.Hour
)

// RequestInput is a new procurement request as submitted by a user.
type RequestInput struct {
	ItemName string `json:"item_name"`
	Brand    string `json:"brand"`
	Quantity int    `json:"quantity"`
	Reason   string `json:"reason"`
}

// Requests drives the procurement request lifecycle:
// Pending, then Approved or Rejected, then archived once old enough.
type Requests struct {
	DB     *sql.DB
	Now    func() time.Time
	Logger *slog.Logger

	// Zero values fall back to the defaults above.
	RejectedRetention time.Duration
	ApprovedRetention time.Duration
}

func (s *Requests) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Submit creates a Pending request stamped with the current time.
func (s *Requests) Submit(ctx context.Context, actor policy.Actor, in RequestInput) (*model.Request, error) {
	if !policy.Allowed(actor, policy.SubmitRequest, policy.Resource{}) {
		return nil, ErrForbidden
	}

	req := &model.Request{
		ItemName:    strings.TrimSpace(in.ItemName),
		Brand:       strings.TrimSpace(in.Brand),
		Quantity:    in.Quantity,
		Reason:      strings.TrimSpace(in.Reason),
		RequestedBy: actor.Username,
		RequestDate: s.now(),
	}
	switch {
	case req.ItemName == "":
		return nil, invalid("item name is required")
	case req.Brand == "":
		return nil, invalid("brand is required")
	case req.Quantity <= 0:
		return nil, invalid("quantity must be a positive integer")
	case req.Reason == "":
		return nil, invalid("reason is required")
	}

	created, err := store.CreateRequest(ctx, s.DB, req)
	if err != nil {
		return nil, storageError("submitting request", err)
	}

	metrics.RequestTransitions.WithLabelValues(string(model.StatusPending)).Inc()
	loggerOrDefault(s.Logger).Info("request submitted", "user", actor.Username, "request", created.ID, "item", created.ItemName)
	return created, nil
}

// Resolve approves or rejects a Pending request. Resolving a request that is
// no longer Pending is a conflict.
func (s *Requests) Resolve(ctx context.Context, actor policy.Actor, id int64, decision model.RequestStatus) (*model.Request, error) {
	if !policy.CanResolve(actor) {
		return nil, ErrForbidden
	}
	if !decision.Terminal() {
		return nil, invalid("status must be %s or %s", model.StatusApproved, model.StatusRejected)
	}

	req, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.Allowed(actor, policy.ResolveRequest, policy.Resource{Status: req.Status}) {
		return nil, ErrConflict
	}

	ok, err := store.ResolveRequest(ctx, s.DB, id, decision)
	if err != nil {
		return nil, storageError("resolving request", err)
	}
	if !ok {
		// Resolved or archived since it was read.
		if _, err := s.find(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrConflict
	}

	metrics.RequestTransitions.WithLabelValues(string(decision)).Inc()
	loggerOrDefault(s.Logger).Info("request resolved", "user", actor.Username, "request", id, "status", decision)
	return s.find(ctx, id)
}

func (s *Requests) find(ctx context.Context, id int64) (*model.Request, error) {
	req, err := store.GetRequest(ctx, s.DB, id)
	if err != nil {
		return nil, storageError("getting request", err)
	}
	if req == nil {
		return nil, ErrNotFound
	}
	return req, nil
}

// ListActive returns all requests not yet archived, newest first.
func (s *Requests) ListActive(ctx context.Context, actor policy.Actor) ([]model.Request, error) {
	if !policy.Allowed(actor, policy.ViewRequests, policy.Resource{}) {
		return nil, ErrForbidden
	}
	reqs, err := store.ListRequests(ctx, s.DB)
	if err != nil {
		return nil, storageError("listing requests", err)
	}
	return reqs, nil
}

// ListArchived returns the archive, most recently archived first.
func (s *Requests) ListArchived(ctx context.Context, actor policy.Actor) ([]model.ArchivedRequest, error) {
	if !policy.Allowed(actor, policy.ViewArchive, policy.Resource{}) {
		return nil, ErrForbidden
	}
	archived, err := store.ListArchivedRequests(ctx, s.DB)
	if err != nil {
		return nil, storageError("listing archived requests", err)
	}
	return archived, nil
}

// SweepResult summarizes one archive sweep.
type SweepResult struct {
	Candidates int
	Archived   int
	Failed     int
}

// Sweep moves every resolved request past its retention window into the
// archive. A failure on one request is logged and left for the next sweep;
// only a failure to list candidates is returned.
func (s *Requests) Sweep(ctx context.Context) (SweepResult, error) {
	var res SweepResult
	log := loggerOrDefault(s.Logger)
	now := s.now()

	resolved, err := store.ListResolvedRequests(ctx, s.DB)
	if err != nil {
		return res, storageError("listing sweep candidates", err)
	}

	for _, req := range resolved {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if now.Sub(req.RequestDate) < s.retention(req.Status) {
			continue
		}
		res.Candidates++

		moved, err := store.ArchiveRequest(ctx, s.DB, req.ID, req.Status, now)
		if err != nil {
			res.Failed++
			log.Error("archiving request", "request", req.ID, "status", req.Status, "error", err)
			continue
		}
		if moved {
			res.Archived++
			log.Info("request archived", "request", req.ID, "status", req.Status)
		}
	}
	return res, nil
}

func (s *Requests) retention(status model.RequestStatus) time.Duration {
	switch status {
	case model.StatusRejected:
		if s.RejectedRetention > 0 {
			return s.RejectedRetention
		}
		return DefaultRejectedRetention
	case model.StatusApproved:
		if s.ApprovedRetention > 0 {
			return s.ApprovedRetention
		}
		return DefaultApprovedRetention
	}
	// Pending requests are never archived.
	return time.Duration(math.MaxInt64)
}
