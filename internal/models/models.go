package models

import "time"

type StampType string

const (
	StampLove    StampType = "love"
	StampThanks  StampType = "thanks"
	StampStar    StampType = "star"
	StampMuscle  StampType = "muscle"
	StampSparkle StampType = "sparkle"
	StampHeart   StampType = "heart"
)

// StampTypes lists every valid stamp type in display order.
var StampTypes = []StampType{
	StampLove, StampThanks, StampStar, StampMuscle, StampSparkle, StampHeart,
}

func (s StampType) Valid() bool {
	for _, t := range StampTypes {
		if s == t {
			return true
		}
	}
	return false
}

type TaskCategory string

const (
	CategoryCleaning  TaskCategory = "cleaning"
	CategoryCooking   TaskCategory = "cooking"
	CategoryShopping  TaskCategory = "shopping"
	CategoryChildcare TaskCategory = "childcare"
	CategoryPet       TaskCategory = "pet"
	CategoryOther     TaskCategory = "other"
)

var TaskCategories = []TaskCategory{
	CategoryCleaning, CategoryCooking, CategoryShopping,
	CategoryChildcare, CategoryPet, CategoryOther,
}

func (c TaskCategory) Valid() bool {
	for _, category := range TaskCategories {
		if c == category {
			return true
		}
	}
	return false
}

// GoalIcons lists the icons a goal can carry.
var GoalIcons = []string{
	"travel", "house", "car", "baby", "ring", "gift", "savings", "celebrate",
}

func ValidGoalIcon(icon string) bool {
	for _, i := range GoalIcons {
		if i == icon {
			return true
		}
	}
	return false
}

// MemberColors is the palette a member's display color is chosen from.
var MemberColors = []string{
	"#FF6B9D", "#4ECDC4", "#FFE66D", "#95E1D3", "#F8B500", "#B8B8D1",
}

func ValidMemberColor(color string) bool {
	for _, c := range MemberColors {
		if c == color {
			return true
		}
	}
	return false
}

type TimelineEntryType string

const (
	TimelineTaskCompleted TimelineEntryType = "task_completed"
	TimelineGoalAchieved  TimelineEntryType = "goal_achieved"
	TimelineStampSent     TimelineEntryType = "stamp_sent"
	TimelineMemberJoined  TimelineEntryType = "member_joined"
)

type User struct {
	ID          string    `json:"userId"`
	OIDCSubject string    `json:"-"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	Color       string    `json:"color"`
	GroupID     *string   `json:"groupId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"-"`
}

// Member is a user as embedded in a group's membership list.
type Member struct {
	UserID   string    `json:"userId"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Color    string    `json:"color"`
	JoinedAt time.Time `json:"joinedAt"`
}

type Group struct {
	ID          string            `json:"id"`
	Users       []Member          `json:"users"`
	TotalStamps map[StampType]int `json:"totalStamps"`
	CreatedAt   time.Time         `json:"createdAt"`
}

type InviteCode struct {
	Code         string    `json:"code"`
	IssuerUserID string    `json:"userId"`
	GroupID      *string   `json:"groupId"`
	ExpiresAt    time.Time `json:"expiresAt"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (code InviteCode) Expired(now time.Time) bool {
	return code.ExpiresAt.Before(now)
}

type Task struct {
	ID             string       `json:"id"`
	GroupID        string       `json:"groupId"`
	Title          string       `json:"title"`
	Date           string       `json:"date"` // YYYY-MM-DD
	AssigneeUserID string       `json:"assignee"`
	Category       TaskCategory `json:"category"`
	Completed      bool         `json:"completed"`
	CompletedAt    *time.Time   `json:"completedAt"`
	CreatedBy      string       `json:"createdBy"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"-"`
}

type Goal struct {
	ID            string     `json:"id"`
	GroupID       string     `json:"groupId"`
	Title         string     `json:"title"`
	Deadline      string     `json:"deadline"` // YYYY-MM-DD
	Icon          string     `json:"icon"`
	TargetAmount  *int64     `json:"targetAmount"`
	CurrentAmount int64      `json:"currentAmount"`
	Achieved      bool       `json:"achieved"`
	AchievedAt    *time.Time `json:"achievedAt"`
	CreatedBy     string     `json:"createdBy"`
	CreatedAt     time.Time  `json:"createdAt"`
}

type Stamp struct {
	ID         string    `json:"id"`
	GroupID    string    `json:"groupId"`
	FromUserID string    `json:"from"`
	ToUserID   string    `json:"to"`
	StampType  StampType `json:"stampType"`
	TaskID     *string   `json:"taskId"`
	CreatedAt  time.Time `json:"timestamp"`
}

// TimelineEntry is a denormalized activity record for display only.
type TimelineEntry struct {
	ID          string            `json:"id"`
	GroupID     string            `json:"groupId"`
	EntryType   TimelineEntryType `json:"type"`
	ActorUserID string            `json:"actorUserId"`
	RefID       *string           `json:"refId"`
	Title       string            `json:"title"`
	CreatedAt   time.Time         `json:"createdAt"`
}
