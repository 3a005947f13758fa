package repository

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	"github.com/questx-lab/rewardbot/internal/entity"
	"github.com/questx-lab/rewardbot/pkg/xcontext"
	"github.com/questx-lab/rewardbot/pkg/xredis"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const leaderboardSize = 5

type CreateUserParams struct {
	UserID     int64
	Language   string
	ReferredBy *int64
	RewardType entity.RewardType
}

type UpdateUserParams struct {
	Language     *string
	BalanceDelta int64
}

type UserRepository interface {
	Create(ctx context.Context, params CreateUserParams) (*entity.User, error)
	GetByID(ctx context.Context, userID int64) (*entity.User, error)
	Update(ctx context.Context, userID int64, params UpdateUserParams) (*entity.User, error)
	GetLeaderboard(ctx context.Context, userID int64) (*entity.Leaderboard, error)
	RefreshLeaderboard(ctx context.Context) ([]entity.LeaderboardEntry, error)
	BatchCreate(ctx context.Context, users []entity.User) error
	GetAll(ctx context.Context) ([]entity.User, error)
}

type userRepository struct {
	redisClient xredis.Client
}

func NewUserRepository(redisClient xredis.Client) *userRepository {
	return &userRepository{redisClient: redisClient}
}

var userSchema = hashSchema{required: []string{"user_id", "language", "balance"}}

type cachedUser struct {
	UserID   int64  `mapstructure:"user_id"`
	Language string `mapstructure:"language"`
	Balance  int64  `mapstructure:"balance"`
}

func (r *userRepository) fromCache(ctx context.Context, userID int64) (*entity.User, bool) {
	values, ok := readHash(ctx, r.redisClient, userKey(userID), userSchema)
	if !ok {
		return nil, false
	}

	var cached cachedUser
	if err := decodeHash(values, &cached); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot decode cached user %d: %v", userID, err)
		return nil, false
	}

	return &entity.User{UserID: cached.UserID, Language: cached.Language, Balance: cached.Balance}, true
}

func (r *userRepository) cache(ctx context.Context, user entity.User) {
	writeHash(ctx, r.redisClient, userKey(user.UserID), userFields(user))
}

func userFields(u entity.User) map[string]string {
	return map[string]string{
		"user_id":  strconv.FormatInt(u.UserID, 10),
		"language": u.Language,
		"balance":  strconv.FormatInt(u.Balance, 10),
	}
}

// Create registers a user together with its referral record. A second call for
// the same user only changes the language, the referral record is kept as is.
func (r *userRepository) Create(ctx context.Context, params CreateUserParams) (*entity.User, error) {
	if params.Language == "" {
		params.Language = entity.DefaultLanguage
	}

	if params.RewardType == 0 {
		params.RewardType = entity.DefaultRewardType
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	user := entity.User{
		UserID:   params.UserID,
		Balance:  entity.DefaultBalance,
		Language: params.Language,
	}
	err := xcontext.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"language", "updated_at"}),
	}).Create(&user).Error
	if err != nil {
		return nil, err
	}

	referral := entity.Referral{ReferralID: params.UserID, RewardType: params.RewardType}
	if params.ReferredBy != nil {
		referral.ReferredBy = sql.NullInt64{Int64: *params.ReferredBy, Valid: true}
	}

	tx := xcontext.DB(ctx).Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&referral)
	if tx.Error != nil {
		return nil, tx.Error
	}

	// The language in referral:<id> may have changed. A new edge also changes
	// the referral lists of the referrer and the referral counts of the
	// referrer and of its own referrer.
	staleKeys := []string{referralKey(params.UserID)}
	if tx.RowsAffected > 0 && referral.ReferredBy.Valid {
		referredBy := referral.ReferredBy.Int64
		staleKeys = append(staleKeys, referralsByUserKey(referredBy), referralBreakdownKey(referredBy))

		var parent entity.Referral
		err := xcontext.DB(ctx).Select("referred_by").Take(&parent, "referral_id=?", referredBy).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		if parent.ReferredBy.Valid {
			staleKeys = append(staleKeys, referralBreakdownKey(parent.ReferredBy.Int64))
		}
	}

	var result entity.User
	if err := xcontext.DB(ctx).Take(&result, "user_id=?", params.UserID).Error; err != nil {
		return nil, err
	}

	staleKeys = append(staleKeys, userKey(params.UserID))
	xcontext.AfterCommit(ctx, func() { invalidate(ctx, r.redisClient, staleKeys...) })

	if err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		return nil, err
	}

	return &result, nil
}

// GetByID returns gorm.ErrRecordNotFound if the user does not exist. Absence
// is never cached.
func (r *userRepository) GetByID(ctx context.Context, userID int64) (*entity.User, error) {
	if user, ok := r.fromCache(ctx, userID); ok {
		return user, nil
	}

	var result entity.User
	if err := xcontext.DB(ctx).Take(&result, "user_id=?", userID).Error; err != nil {
		return nil, err
	}

	populate(ctx, func() { r.cache(ctx, result) })
	return &result, nil
}

// Update changes the language and adds BalanceDelta to the balance in a single
// statement, so concurrent credits never overwrite each other.
func (r *userRepository) Update(ctx context.Context, userID int64, params UpdateUserParams) (*entity.User, error) {
	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	updates := map[string]any{}
	if params.Language != nil {
		updates["language"] = *params.Language
	}

	if params.BalanceDelta != 0 {
		updates["balance"] = gorm.Expr("balance + ?", params.BalanceDelta)
	}

	if len(updates) > 0 {
		err := xcontext.DB(ctx).Model(&entity.User{}).
			Where("user_id=?", userID).
			Updates(updates).Error
		if err != nil {
			return nil, err
		}
	}

	var result entity.User
	if err := xcontext.DB(ctx).Take(&result, "user_id=?", userID).Error; err != nil {
		return nil, err
	}

	staleKeys := []string{userKey(userID)}
	if params.Language != nil {
		staleKeys = append(staleKeys, referralKey(userID))
	}
	xcontext.AfterCommit(ctx, func() { invalidate(ctx, r.redisClient, staleKeys...) })

	if err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		return nil, err
	}

	return &result, nil
}

// GetLeaderboard returns the top users by balance and the place of userID.
// Both are cached and may lag behind balances until the cache expires. Place
// is nil if userID does not exist.
func (r *userRepository) GetLeaderboard(ctx context.Context, userID int64) (*entity.Leaderboard, error) {
	top, ok := r.topFromCache(ctx)
	if !ok {
		var err error
		top, err = r.RefreshLeaderboard(ctx)
		if err != nil {
			return nil, err
		}
	}

	result := &entity.Leaderboard{Entries: top}
	for _, e := range top {
		if e.UserID == userID {
			place := e.Place
			result.Place = &place
			return result, nil
		}
	}

	place, err := r.rank(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return result, nil
		}

		return nil, err
	}

	result.Place = &place
	return result, nil
}

func (r *userRepository) topFromCache(ctx context.Context) ([]entity.LeaderboardEntry, bool) {
	var top []entity.LeaderboardEntry
	if !readObj(ctx, r.redisClient, leaderboardTopKey, &top) {
		return nil, false
	}

	return top, true
}

// RefreshLeaderboard recomputes the top users and overwrites the cached copy.
func (r *userRepository) RefreshLeaderboard(ctx context.Context) ([]entity.LeaderboardEntry, error) {
	var users []entity.User
	err := xcontext.DB(ctx).
		Order("balance DESC").
		Order("user_id ASC").
		Limit(leaderboardSize).
		Find(&users).Error
	if err != nil {
		return nil, err
	}

	top := make([]entity.LeaderboardEntry, 0, len(users))
	for i, u := range users {
		top = append(top, entity.LeaderboardEntry{UserID: u.UserID, Place: i + 1, Balance: u.Balance})
	}

	populate(ctx, func() { writeObj(ctx, r.redisClient, leaderboardTopKey, top) })
	return top, nil
}

func (r *userRepository) rank(ctx context.Context, userID int64) (int, error) {
	key := userRankKey(userID)
	value, err := r.redisClient.Get(ctx, key)
	if err == nil {
		if place, err := strconv.Atoi(value); err == nil {
			return place, nil
		}
		xcontext.Logger(ctx).Warnf("Invalid cached rank of user %d: %s", userID, value)
	} else if !errors.Is(err, xredis.Nil) {
		xcontext.Logger(ctx).Warnf("Cannot get %s from cache: %v", key, err)
	}

	user, err := r.GetByID(ctx, userID)
	if err != nil {
		return 0, err
	}

	var higher int64
	err = xcontext.DB(ctx).Model(&entity.User{}).
		Where("balance > ?", user.Balance).
		Count(&higher).Error
	if err != nil {
		return 0, err
	}

	place := int(higher) + 1
	populate(ctx, func() {
		if err := r.redisClient.SetEx(ctx, key, strconv.Itoa(place), cacheTTL(ctx)); err != nil {
			xcontext.Logger(ctx).Warnf("Cannot set %s to cache: %v", key, err)
		}
	})

	return place, nil
}

// BatchCreate inserts users with root referral records in one transaction. A
// zero balance is replaced by the default one. Cached copies of the users are
// evicted once the whole batch has committed.
func (r *userRepository) BatchCreate(ctx context.Context, users []entity.User) error {
	if len(users) == 0 {
		return nil
	}

	referrals := make([]entity.Referral, 0, len(users))
	keys := make([]string, 0, len(users))
	for i := range users {
		if users[i].Language == "" {
			users[i].Language = entity.DefaultLanguage
		}

		if users[i].Balance == 0 {
			users[i].Balance = entity.DefaultBalance
		}

		referrals = append(referrals, entity.Referral{
			ReferralID: users[i].UserID,
			RewardType: entity.DefaultRewardType,
		})
		keys = append(keys, userKey(users[i].UserID), referralKey(users[i].UserID))
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := xcontext.DB(ctx).CreateInBatches(&users, 100).Error; err != nil {
		return err
	}

	err := xcontext.DB(ctx).Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(&referrals, 100).Error
	if err != nil {
		return err
	}

	xcontext.AfterCommit(ctx, func() {
		err := r.redisClient.Pipelined(ctx, func(p xredis.Pipeliner) error {
			p.Del(ctx, keys...)
			return nil
		})
		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot invalidate %d users in cache: %v", len(users), err)
		}
	})

	return xcontext.WithCommitDBTransaction(ctx)
}

// GetAll is not cached.
func (r *userRepository) GetAll(ctx context.Context) ([]entity.User, error) {
	var result []entity.User
	if err := xcontext.DB(ctx).Order("user_id").Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}
