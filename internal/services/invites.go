package services

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/YasNanNan2/FutariNote/internal/metrics"
	"github.com/YasNanNan2/FutariNote/internal/models"
	"github.com/YasNanNan2/FutariNote/internal/repository"
)

// codeAlphabet excludes characters that are easy to misread (0/O, 1/I).
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const (
	codeLength      = 6
	codeTTL         = 24 * time.Hour
	maxCodeAttempts = 10
)

// ErrCodeGenerationExhausted is returned when every generation attempt
// collided with an existing code.
var ErrCodeGenerationExhausted = errors.New("failed to generate unique invite code")

type InviteService struct {
	inviteRepo repository.InviteRepository
	userRepo   repository.UserRepository
	metrics    metrics.Recorder
	now        func() time.Time
}

func NewInviteService(inviteRepo repository.InviteRepository, userRepo repository.UserRepository, recorder metrics.Recorder) *InviteService {
	return &InviteService{
		inviteRepo: inviteRepo,
		userRepo:   userRepo,
		metrics:    recorder,
		now:        time.Now,
	}
}

// CreateInviteCode issues a fresh code bound to the issuer and, when the
// issuer already belongs to a group, to that group. Collisions are retried
// up to maxCodeAttempts times.
func (service *InviteService) CreateInviteCode(ctx context.Context, issuer models.User) (models.InviteCode, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		now := service.now()
		invite := models.InviteCode{
			Code:         generateCode(),
			IssuerUserID: issuer.ID,
			GroupID:      issuer.GroupID,
			ExpiresAt:    now.Add(codeTTL),
			CreatedAt:    now,
		}

		err := service.inviteRepo.Create(ctx, invite)
		if err == nil {
			service.metrics.RecordInviteCreated()
			return invite, nil
		}
		if errors.Is(err, repository.ErrCodeTaken) {
			continue
		}
		return models.InviteCode{}, fmt.Errorf("persisting invite code: %w", err)
	}
	return models.InviteCode{}, ErrCodeGenerationExhausted
}

// GetMyInviteCode returns the issuer's still-valid code, or nil if none
// exists. Expired codes found during the lookup are deleted on the spot;
// there is no background sweep.
func (service *InviteService) GetMyInviteCode(ctx context.Context, issuer models.User) (*models.InviteCode, error) {
	codes, err := service.inviteRepo.FindByIssuer(ctx, issuer.ID)
	if err != nil {
		return nil, fmt.Errorf("looking up invite codes: %w", err)
	}

	now := service.now()
	var valid *models.InviteCode
	for i := range codes {
		code := codes[i]
		if code.Expired(now) {
			if err := service.inviteRepo.Delete(ctx, code.Code); err != nil {
				slog.Warn("deleting expired invite code", "code", code.Code, "error", err)
			}
			continue
		}
		if valid == nil {
			valid = &code
		}
	}
	return valid, nil
}

// InviteValidation describes the state of a submitted code for the invite
// link flow, before the visitor commits to joining.
type InviteValidation struct {
	Valid      bool   `json:"valid"`
	Expired    bool   `json:"expired"`
	IssuerName string `json:"issuerName,omitempty"`
}

func (service *InviteService) ValidateInviteCode(ctx context.Context, code string) (InviteValidation, error) {
	invite, err := service.inviteRepo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return InviteValidation{}, nil
		}
		return InviteValidation{}, fmt.Errorf("looking up invite code: %w", err)
	}

	if invite.Expired(service.now()) {
		return InviteValidation{Expired: true}, nil
	}

	issuerName := ""
	if issuer, err := service.userRepo.FindByID(ctx, invite.IssuerUserID); err == nil {
		issuerName = issuer.Name
	}

	return InviteValidation{Valid: true, IssuerName: issuerName}, nil
}

func generateCode() string {
	code := make([]byte, codeLength)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails if the OS entropy source is broken
			panic(fmt.Sprintf("reading random bytes: %v", err))
		}
		code[i] = codeAlphabet[n.Int64()]
	}
	return string(code)
}
