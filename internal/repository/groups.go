package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/YasNanNan2/FutariNote/internal/models"
	"github.com/google/uuid"
)

type GroupRepository interface {
	Create(ctx context.Context, id string) (models.Group, error)
	Exists(ctx context.Context, id string) (bool, error)
	FindByID(ctx context.Context, id string) (models.Group, error)
	Members(ctx context.Context, groupID string) ([]models.Member, error)
	IsMember(ctx context.Context, groupID string, userID string) (bool, error)
	MemberCount(ctx context.Context, groupID string) (int, error)
	AddMember(ctx context.Context, groupID string, userID string) error
	RemoveMember(ctx context.Context, groupID string, userID string) error
	IncrementStampTotal(ctx context.Context, groupID string, stampType models.StampType) error
	StampTotals(ctx context.Context, groupID string) (map[models.StampType]int, error)
	ApplyJoin(ctx context.Context, write JoinWrite) (models.Group, error)
	DeleteAllData(ctx context.Context, groupID string) (int, error)
}

// JoinWrite captures every row change a successful join commits.
type JoinWrite struct {
	GroupID       string
	CreateGroup   bool
	IssuerID      string
	AddIssuer     bool
	BindIssuer    bool
	JoinerID      string
	TimelineEntry models.TimelineEntry
}

type SQLiteGroupRepository struct {
	database *sql.DB
}

func NewGroupRepository(database *sql.DB) *SQLiteGroupRepository {
	return &SQLiteGroupRepository{database: database}
}

func (repository *SQLiteGroupRepository) Create(ctx context.Context, id string) (models.Group, error) {
	if id == "" {
		id = uuid.New().String()
	}
	group := models.Group{
		ID:          id,
		TotalStamps: emptyTotals(),
		CreatedAt:   time.Now(),
	}

	_, err := repository.database.ExecContext(ctx,
		"INSERT INTO groups (id, created_at) VALUES (?, ?)",
		group.ID, group.CreatedAt,
	)
	if err != nil {
		return models.Group{}, fmt.Errorf("creating group: %w", err)
	}

	for _, stampType := range models.StampTypes {
		if _, err := repository.database.ExecContext(ctx,
			"INSERT INTO stamp_totals (group_id, stamp_type, count) VALUES (?, ?, 0)",
			group.ID, stampType,
		); err != nil {
			return models.Group{}, fmt.Errorf("initializing stamp totals: %w", err)
		}
	}

	return group, nil
}

func (repository *SQLiteGroupRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int
	err := repository.database.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM groups WHERE id = ?", id,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking group existence: %w", err)
	}
	return count > 0, nil
}

func (repository *SQLiteGroupRepository) FindByID(ctx context.Context, id string) (models.Group, error) {
	var group models.Group
	err := repository.database.QueryRowContext(ctx,
		"SELECT id, created_at FROM groups WHERE id = ?", id,
	).Scan(&group.ID, &group.CreatedAt)
	if err != nil {
		return models.Group{}, fmt.Errorf("finding group by id: %w", err)
	}

	group.Users, err = repository.Members(ctx, id)
	if err != nil {
		return models.Group{}, err
	}

	group.TotalStamps, err = repository.StampTotals(ctx, id)
	if err != nil {
		return models.Group{}, err
	}

	return group, nil
}

func (repository *SQLiteGroupRepository) Members(ctx context.Context, groupID string) ([]models.Member, error) {
	rows, err := repository.database.QueryContext(ctx, `
		SELECT u.id, u.name, u.email, u.color, m.joined_at
		FROM group_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.group_id = ?
		ORDER BY m.joined_at, m.rowid`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("finding group members: %w", err)
	}
	defer rows.Close()

	var members []models.Member
	for rows.Next() {
		var member models.Member
		if err := rows.Scan(&member.UserID, &member.Name, &member.Email, &member.Color, &member.JoinedAt); err != nil {
			return nil, fmt.Errorf("scanning member: %w", err)
		}
		members = append(members, member)
	}
	return members, rows.Err()
}

func (repository *SQLiteGroupRepository) IsMember(ctx context.Context, groupID string, userID string) (bool, error) {
	var count int
	err := repository.database.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM group_members WHERE group_id = ? AND user_id = ?",
		groupID, userID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking membership: %w", err)
	}
	return count > 0, nil
}

func (repository *SQLiteGroupRepository) MemberCount(ctx context.Context, groupID string) (int, error) {
	var count int
	err := repository.database.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM group_members WHERE group_id = ?", groupID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting members: %w", err)
	}
	return count, nil
}

// AddMember appends a user to the membership list. The UNIQUE constraint on
// user_id makes a concurrent second join for the same user fail instead of
// producing a duplicate or a second group membership.
func (repository *SQLiteGroupRepository) AddMember(ctx context.Context, groupID string, userID string) error {
	_, err := repository.database.ExecContext(ctx,
		"INSERT INTO group_members (group_id, user_id, joined_at) VALUES (?, ?, ?)",
		groupID, userID, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("adding group member: %w", err)
	}
	return nil
}

func (repository *SQLiteGroupRepository) RemoveMember(ctx context.Context, groupID string, userID string) error {
	_, err := repository.database.ExecContext(ctx,
		"DELETE FROM group_members WHERE group_id = ? AND user_id = ?",
		groupID, userID,
	)
	if err != nil {
		return fmt.Errorf("removing group member: %w", err)
	}
	return nil
}

// IncrementStampTotal bumps an aggregate counter with a single additive
// update, so concurrent stamp sends never lose each other's increment.
func (repository *SQLiteGroupRepository) IncrementStampTotal(ctx context.Context, groupID string, stampType models.StampType) error {
	_, err := repository.database.ExecContext(ctx, `
		INSERT INTO stamp_totals (group_id, stamp_type, count) VALUES (?, ?, 1)
		ON CONFLICT(group_id, stamp_type) DO UPDATE SET count = count + 1`,
		groupID, stampType,
	)
	if err != nil {
		return fmt.Errorf("incrementing stamp total: %w", err)
	}
	return nil
}

func (repository *SQLiteGroupRepository) StampTotals(ctx context.Context, groupID string) (map[models.StampType]int, error) {
	rows, err := repository.database.QueryContext(ctx,
		"SELECT stamp_type, count FROM stamp_totals WHERE group_id = ?", groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("finding stamp totals: %w", err)
	}
	defer rows.Close()

	totals := emptyTotals()
	for rows.Next() {
		var stampType models.StampType
		var count int
		if err := rows.Scan(&stampType, &count); err != nil {
			return nil, fmt.Errorf("scanning stamp total: %w", err)
		}
		totals[stampType] = count
	}
	return totals, rows.Err()
}

// ApplyJoin commits the membership changes of a join in one transaction: the
// group record (minted here when the code pre-dates the group), the issuer's
// and joiner's membership rows, their identity references, and the timeline
// entry all land together or not at all.
func (repository *SQLiteGroupRepository) ApplyJoin(ctx context.Context, write JoinWrite) (models.Group, error) {
	transaction, err := repository.database.BeginTx(ctx, nil)
	if err != nil {
		return models.Group{}, fmt.Errorf("beginning join transaction: %w", err)
	}
	defer transaction.Rollback()

	group := models.Group{ID: write.GroupID}
	if write.CreateGroup {
		if group.ID == "" {
			group.ID = uuid.New().String()
		}
		group.CreatedAt = time.Now()

		if _, err := transaction.ExecContext(ctx,
			"INSERT INTO groups (id, created_at) VALUES (?, ?)",
			group.ID, group.CreatedAt,
		); err != nil {
			return models.Group{}, fmt.Errorf("creating group: %w", err)
		}
		for _, stampType := range models.StampTypes {
			if _, err := transaction.ExecContext(ctx,
				"INSERT INTO stamp_totals (group_id, stamp_type, count) VALUES (?, ?, 0)",
				group.ID, stampType,
			); err != nil {
				return models.Group{}, fmt.Errorf("initializing stamp totals: %w", err)
			}
		}
	} else {
		err := transaction.QueryRowContext(ctx,
			"SELECT created_at FROM groups WHERE id = ?", group.ID,
		).Scan(&group.CreatedAt)
		if err != nil {
			return models.Group{}, fmt.Errorf("loading group for join: %w", err)
		}
	}

	now := time.Now()
	if write.AddIssuer {
		if _, err := transaction.ExecContext(ctx,
			"INSERT INTO group_members (group_id, user_id, joined_at) VALUES (?, ?, ?)",
			group.ID, write.IssuerID, now,
		); err != nil {
			return models.Group{}, fmt.Errorf("adding issuer membership: %w", err)
		}
	}
	if write.BindIssuer {
		if _, err := transaction.ExecContext(ctx,
			"UPDATE users SET group_id = ?, updated_at = ? WHERE id = ?",
			group.ID, now, write.IssuerID,
		); err != nil {
			return models.Group{}, fmt.Errorf("binding issuer to group: %w", err)
		}
	}

	if _, err := transaction.ExecContext(ctx,
		"INSERT INTO group_members (group_id, user_id, joined_at) VALUES (?, ?, ?)",
		group.ID, write.JoinerID, now,
	); err != nil {
		return models.Group{}, fmt.Errorf("adding joiner membership: %w", err)
	}
	if _, err := transaction.ExecContext(ctx,
		"UPDATE users SET group_id = ?, updated_at = ? WHERE id = ?",
		group.ID, now, write.JoinerID,
	); err != nil {
		return models.Group{}, fmt.Errorf("binding joiner to group: %w", err)
	}

	entry := write.TimelineEntry
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if _, err := transaction.ExecContext(ctx,
		"INSERT INTO timeline (id, group_id, entry_type, actor_user_id, ref_id, title, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		entry.ID, group.ID, entry.EntryType, entry.ActorUserID, entry.RefID, entry.Title, now,
	); err != nil {
		return models.Group{}, fmt.Errorf("recording join on timeline: %w", err)
	}

	if err := transaction.Commit(); err != nil {
		return models.Group{}, fmt.Errorf("committing join: %w", err)
	}
	return group, nil
}

// DeleteAllData removes every record scoped to the group in one transaction
// and reports how many rows were deleted.
func (repository *SQLiteGroupRepository) DeleteAllData(ctx context.Context, groupID string) (int, error) {
	transaction, err := repository.database.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning delete transaction: %w", err)
	}
	defer transaction.Rollback()

	deleted := 0
	statements := []string{
		"DELETE FROM tasks WHERE group_id = ?",
		"DELETE FROM goals WHERE group_id = ?",
		"DELETE FROM stamps WHERE group_id = ?",
		"DELETE FROM timeline WHERE group_id = ?",
		"DELETE FROM invite_codes WHERE group_id = ?",
		"DELETE FROM stamp_totals WHERE group_id = ?",
		"DELETE FROM group_members WHERE group_id = ?",
		"DELETE FROM groups WHERE id = ?",
	}
	for _, statement := range statements {
		result, err := transaction.ExecContext(ctx, statement, groupID)
		if err != nil {
			return 0, fmt.Errorf("deleting group data: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("counting deleted rows: %w", err)
		}
		deleted += int(affected)
	}

	if err := transaction.Commit(); err != nil {
		return 0, fmt.Errorf("committing group delete: %w", err)
	}
	return deleted, nil
}

func emptyTotals() map[models.StampType]int {
	totals := make(map[models.StampType]int, len(models.StampTypes))
	for _, stampType := range models.StampTypes {
		totals[stampType] = 0
	}
	return totals
}
