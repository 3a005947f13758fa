package repository

import "github.com/questx-lab/rewardbot/pkg/xredis"

// Requests hands out the repositories used while handling inbound events.
// They share the injected cache client and are built once, up front, so the
// value is safe to share between handlers and jobs. The database session
// travels in the context passed to each repository method.
type Requests struct {
	users      UserRepository
	tasks      TaskRepository
	referrals  ReferralRepository
	userTasks  UserTaskRepository
	rewardLogs RewardLogRepository
}

func NewRequests(redisClient xredis.Client) *Requests {
	return &Requests{
		users:      NewUserRepository(redisClient),
		tasks:      NewTaskRepository(redisClient),
		referrals:  NewReferralRepository(redisClient),
		userTasks:  NewUserTaskRepository(),
		rewardLogs: NewRewardLogRepository(),
	}
}

func (r *Requests) Users() UserRepository {
	return r.users
}

func (r *Requests) Tasks() TaskRepository {
	return r.tasks
}

func (r *Requests) Referrals() ReferralRepository {
	return r.referrals
}

func (r *Requests) UserTasks() UserTaskRepository {
	return r.userTasks
}

func (r *Requests) RewardLogs() RewardLogRepository {
	return r.rewardLogs
}
