package user

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/learnit-backend/internal/domain"
	"github.com/yungbote/learnit-backend/internal/platform/dbctx"
	"github.com/yungbote/learnit-backend/internal/platform/logger"
)

// ListFilter narrows the admin user listing.
type ListFilter struct {
	Search string
	Role   types.Role
	Page   int
	Limit  int
}

type UserRepo interface {
	Create(dbc dbctx.Context, u *types.User) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.User, error)
	GetByIDWithProfile(dbc dbctx.Context, id uuid.UUID) (*types.User, error)
	GetByEmail(dbc dbctx.Context, email string) (*types.User, error)
	EmailExists(dbc dbctx.Context, email string, exceptID uuid.UUID) (bool, error)
	UsernameExists(dbc dbctx.Context, username string) (bool, error)
	List(dbc dbctx.Context, f ListFilter) ([]*types.User, int64, error)
	ListByRole(dbc dbctx.Context, role types.Role) ([]*types.User, error)
	ListRecent(dbc dbctx.Context, limit int) ([]*types.User, error)
	CountByRole(dbc dbctx.Context, role types.Role) (int64, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return &userRepo{db: db, log: baseLog.With("repo", "UserRepo")}
}

func (r *userRepo) Create(dbc dbctx.Context, u *types.User) error {
	return dbc.DB(r.db).Create(u).Error
}

func (r *userRepo) first(q *gorm.DB) (*types.User, error) {
	var row types.User
	if err := q.Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *userRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.User, error) {
	return r.first(dbc.DB(r.db).Where("id = ?", id))
}

func (r *userRepo) GetByIDWithProfile(dbc dbctx.Context, id uuid.UUID) (*types.User, error) {
	return r.first(dbc.DB(r.db).Preload("Profile").Where("id = ?", id))
}

func (r *userRepo) GetByEmail(dbc dbctx.Context, email string) (*types.User, error) {
	return r.first(dbc.DB(r.db).Where("email = ?", normalizeEmail(email)))
}

func (r *userRepo) EmailExists(dbc dbctx.Context, email string, exceptID uuid.UUID) (bool, error) {
	var n int64
	q := dbc.DB(r.db).Model(&types.User{}).Where("email = ?", normalizeEmail(email))
	if exceptID != uuid.Nil {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *userRepo) UsernameExists(dbc dbctx.Context, username string) (bool, error) {
	var n int64
	if err := dbc.DB(r.db).Model(&types.User{}).
		Where("username = ?", strings.TrimSpace(username)).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *userRepo) List(dbc dbctx.Context, f ListFilter) ([]*types.User, int64, error) {
	q := dbc.DB(r.db).Model(&types.User{})
	if s := strings.ToLower(strings.TrimSpace(f.Search)); s != "" {
		like := "%" + s + "%"
		q = q.Where("LOWER(email) LIKE ? OR LOWER(username) LIKE ?", like, like)
	}
	if f.Role != "" {
		q = q.Where("role = ?", f.Role)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	page, limit := f.Page, f.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	var rows []*types.User
	if err := q.Preload("Profile").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *userRepo) ListByRole(dbc dbctx.Context, role types.Role) ([]*types.User, error) {
	var rows []*types.User
	if err := dbc.DB(r.db).Where("role = ?", role).Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *userRepo) ListRecent(dbc dbctx.Context, limit int) ([]*types.User, error) {
	var rows []*types.User
	if err := dbc.DB(r.db).Order("created_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *userRepo) CountByRole(dbc dbctx.Context, role types.Role) (int64, error) {
	var n int64
	err := dbc.DB(r.db).Model(&types.User{}).Where("role = ?", role).Count(&n).Error
	return n, err
}

func (r *userRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return dbc.DB(r.db).Model(&types.User{}).Where("id = ?", id).Updates(updates).Error
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
