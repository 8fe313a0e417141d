package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/drive-in-checkout/internal/model"
	"github.com/iliyamo/drive-in-checkout/internal/repository"
)

// ReservationStore is what ReservationService needs from storage.
// *repository.MySQLStore implements it.
type ReservationStore interface {
	repository.Store
	GetShow(ctx context.Context, id uint64) (*model.Show, error)
	ListShowReservations(ctx context.Context, showID uint64) ([]model.Reservation, error)
}

// ReservationService performs operator actions on reservations.  Both
// state changes leave the active state, which frees the slot for a new
// checkout.
type ReservationService struct {
	store ReservationStore
	log   logrus.FieldLogger
	now   func() time.Time
}

// NewReservationService builds a ReservationService.
func NewReservationService(store ReservationStore, log logrus.FieldLogger) *ReservationService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &ReservationService{store: store, log: log, now: time.Now}
}

// CheckIn marks an active reservation as used.
func (s *ReservationService) CheckIn(ctx context.Context, id uint64) (*model.Reservation, error) {
	return s.transition(ctx, id, model.ReservationUsed, "Checked in", "check_in")
}

// Cancel marks an active reservation as cancelled.
func (s *ReservationService) Cancel(ctx context.Context, id uint64) (*model.Reservation, error) {
	return s.transition(ctx, id, model.ReservationCancelled, "Reservation cancelled", "cancellation")
}

// Roster lists every reservation of a show, in any status, ordered by
// slot.
func (s *ReservationService) Roster(ctx context.Context, showID uint64) ([]model.Reservation, error) {
	if _, err := s.store.GetShow(ctx, showID); err != nil {
		if errors.Is(err, repository.ErrShowNotFound) {
			return nil, ErrNotFound
		}
		return nil, internal(err)
	}
	out, err := s.store.ListShowReservations(ctx, showID)
	if err != nil {
		return nil, internal(err)
	}
	return out, nil
}

func (s *ReservationService) transition(ctx context.Context, id uint64, to model.ReservationStatus, title, kind string) (*model.Reservation, error) {
	var out *model.Reservation
	err := s.store.InTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		res, err := tx.TransitionReservation(ctx, id, model.ReservationActive, to)
		switch {
		case errors.Is(err, repository.ErrReservationNotFound):
			return ErrNotFound
		case errors.Is(err, repository.ErrStatusMismatch):
			return fmt.Errorf("reservation %d is %s: %w", id, res.Status, ErrInvalidState)
		case err != nil:
			return err
		}
		note := model.Notification{
			AccountID: res.AccountID,
			Title:     title,
			Message:   fmt.Sprintf("Reservation %d for slot %s of show %d is now %s.", res.ID, res.SlotID, res.ShowID, to),
			Type:      kind,
			CreatedAt: s.now().UTC(),
		}
		if err := tx.InsertNotification(ctx, &note); err != nil {
			return err
		}
		res.Status = to
		out = res
		return nil
	})
	if err != nil {
		if !isKnown(err) {
			s.log.WithError(err).WithField("reservation_id", id).Error("reservation transition failed")
		}
		return nil, internal(err)
	}
	s.log.WithFields(logrus.Fields{"reservation_id": id, "status": to}).Info("reservation updated")
	return out, nil
}
