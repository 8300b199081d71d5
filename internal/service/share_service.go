package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/Saba3939/mood-harbor/internal/clock"
	"github.com/Saba3939/mood-harbor/internal/domain"
	"github.com/Saba3939/mood-harbor/internal/log"
	"github.com/Saba3939/mood-harbor/internal/realtime"
	"github.com/microcosm-cc/bluemonday"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// sanitizer strips every tag and attribute; the feed renders messages as
// plain text only.
var sanitizer = bluemonday.StrictPolicy()

// ShareService owns the share lifecycle: validated creation with the fixed
// 24h expiry, and owner-only deletion.
type ShareService struct {
	Shares ShareStore
	Bus    realtime.Bus
	Clock  clock.Clock
}

func NewShareService(shares ShareStore, bus realtime.Bus, clk clock.Clock) *ShareService {
	return &ShareService{Shares: shares, Bus: bus, Clock: clk}
}

type CreateShareParams struct {
	UserID       primitive.ObjectID
	MoodRecordID primitive.ObjectID
	ShareType    string
	Feeling      string
	Message      string
}

// CreateShare validates, sanitizes and persists a share, then announces it.
// The created event goes out only after the insert commits so subscribers
// can always resolve the id they receive.
func (s *ShareService) CreateShare(ctx context.Context, p CreateShareParams) (*domain.Share, error) {
	if !domain.IsValidShareType(p.ShareType) {
		return nil, domain.ErrInvalidShareType
	}
	st := domain.ShareType(p.ShareType)
	if !domain.IsValidFeeling(p.Feeling, st) {
		return nil, domain.ErrInvalidFeeling
	}
	if utf8.RuneCountInString(p.Message) > domain.MaxMessageRunes {
		return nil, domain.MessageTooLongError{Max: domain.MaxMessageRunes}
	}

	msg := strings.TrimSpace(sanitizer.Sanitize(p.Message))

	now := s.Clock.Now().UTC()
	sh := &domain.Share{
		UserID:       p.UserID,
		MoodRecordID: p.MoodRecordID,
		ShareType:    st,
		Feeling:      p.Feeling,
		Message:      msg,
		CreatedAt:    now,
		ExpiresAt:    now.Add(domain.ShareTTL),
	}
	if err := s.Shares.InsertShare(ctx, sh); err != nil {
		log.L().Error("share insert failed", zap.Error(err))
		return nil, domain.ErrStoreFailure
	}

	s.Bus.Publish(ctx, realtime.NewEvent(realtime.EventShareCreated, realtime.ShareCreated{
		ShareID:   sh.ID.Hex(),
		UserID:    sh.UserID.Hex(),
		ShareType: string(sh.ShareType),
	}))
	return sh, nil
}

// GetShare returns domain.ErrNotFound for a missing id.
func (s *ShareService) GetShare(ctx context.Context, id primitive.ObjectID) (*domain.Share, error) {
	sh, err := s.Shares.FindShareByID(ctx, id)
	if err != nil {
		log.L().Error("share lookup failed", zap.String("share_id", id.Hex()), zap.Error(err))
		return nil, domain.ErrStoreFailure
	}
	if sh == nil {
		return nil, domain.ErrNotFound
	}
	return sh, nil
}

// DeleteShare removes a share on the owner's request. A non-owner gets the
// same ErrNotFound as a missing share.
func (s *ShareService) DeleteShare(ctx context.Context, shareID, requesterID primitive.ObjectID) error {
	ok, err := s.Shares.DeleteShareByOwner(ctx, shareID, requesterID)
	if err != nil {
		log.L().Error("share delete failed", zap.String("share_id", shareID.Hex()), zap.Error(err))
		return domain.ErrStoreFailure
	}
	if !ok {
		return domain.ErrNotFound
	}

	s.Bus.Publish(ctx, realtime.NewEvent(realtime.EventShareDeleted, realtime.ShareDeleted{
		ShareID: shareID.Hex(),
	}))
	return nil
}
