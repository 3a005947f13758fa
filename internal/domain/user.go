package domain

import (
	"context"
	"errors"

	"github.com/questx-lab/rewardbot/internal/model"
	"github.com/questx-lab/rewardbot/internal/repository"
	"github.com/questx-lab/rewardbot/pkg/errorx"
	"github.com/questx-lab/rewardbot/pkg/xcontext"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

// SupportedLanguages lists the languages a user can pick, the first one is the
// default.
var SupportedLanguages = []string{"en", "ru"}

type UserDomain interface {
	GetProfile(context.Context, *model.GetProfileRequest) (*model.GetProfileResponse, error)
	ChangeLanguage(context.Context, *model.ChangeLanguageRequest) (*model.ChangeLanguageResponse, error)
	GetLeaderboard(context.Context, *model.GetLeaderboardRequest) (*model.GetLeaderboardResponse, error)
}

type userDomain struct {
	requests *repository.Requests
}

func NewUserDomain(requests *repository.Requests) *userDomain {
	return &userDomain{requests: requests}
}

func (d *userDomain) GetProfile(
	ctx context.Context, req *model.GetProfileRequest,
) (*model.GetProfileResponse, error) {
	user, err := d.requests.Users().GetByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found user")
		}

		xcontext.Logger(ctx).Errorf("Cannot get user %d: %v", req.UserID, err)
		return nil, errorx.Unknown
	}

	resp := model.GetProfileResponse(model.ConvertUser(user))
	return &resp, nil
}

func (d *userDomain) ChangeLanguage(
	ctx context.Context, req *model.ChangeLanguageRequest,
) (*model.ChangeLanguageResponse, error) {
	language := req.Language
	if language == "" {
		user, err := d.requests.Users().GetByID(ctx, req.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, errorx.New(errorx.NotFound, "Not found user")
			}

			xcontext.Logger(ctx).Errorf("Cannot get user %d: %v", req.UserID, err)
			return nil, errorx.Unknown
		}

		language = toggleLanguage(user.Language)
	}

	if !slices.Contains(SupportedLanguages, language) {
		return nil, errorx.New(errorx.BadRequest, "Unsupported language %s", language)
	}

	user, err := d.requests.Users().Update(ctx, req.UserID, repository.UpdateUserParams{
		Language: &language,
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found user")
		}

		xcontext.Logger(ctx).Errorf("Cannot change language of user %d: %v", req.UserID, err)
		return nil, errorx.Unknown
	}

	resp := model.ChangeLanguageResponse(model.ConvertUser(user))
	return &resp, nil
}

func toggleLanguage(language string) string {
	if language == "ru" {
		return "en"
	}

	return "ru"
}

// GetLeaderboard never fails, a broken leaderboard is shown as an empty one.
func (d *userDomain) GetLeaderboard(
	ctx context.Context, req *model.GetLeaderboardRequest,
) (*model.GetLeaderboardResponse, error) {
	leaderboard, err := d.requests.Users().GetLeaderboard(ctx, req.UserID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get leaderboard: %v", err)
		return &model.GetLeaderboardResponse{Entries: []model.LeaderboardEntry{}}, nil
	}

	entries := make([]model.LeaderboardEntry, 0, len(leaderboard.Entries))
	for _, entry := range leaderboard.Entries {
		entries = append(entries, model.ConvertLeaderboardEntry(entry))
	}

	return &model.GetLeaderboardResponse{Entries: entries, Place: leaderboard.Place}, nil
}
