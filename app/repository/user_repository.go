package repository

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/insbu/portal/app/models"
)

// userRepository implements the UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository instance
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create creates a new user in the database
func (r *userRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// GetByID retrieves a user by their ID
func (r *userRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail retrieves a user by their email address
func (r *userRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.db.Where("email = ?", strings.TrimSpace(email)).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// EmailTaken reports whether another user already uses the address
func (r *userRepository) EmailTaken(email string, exceptID uint) (bool, error) {
	var count int64
	query := r.db.Model(&models.User{}).Where("email = ?", strings.TrimSpace(email))
	if exceptID != 0 {
		query = query.Where("id <> ?", exceptID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

// Update updates an existing user in the database
func (r *userRepository) Update(user *models.User) error {
	return r.db.Omit("News", "Documents").Save(user).Error
}

// Delete removes a user and everything they own in one transaction
func (r *userRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.APIToken{}).Error; err != nil {
			return fmt.Errorf("failed to delete tokens: %w", err)
		}
		if err := tx.Model(&models.ActivityLog{}).Where("user_id = ?", id).Update("user_id", nil).Error; err != nil {
			return fmt.Errorf("failed to detach activity logs: %w", err)
		}
		if err := tx.Unscoped().Where("author_id = ?", id).Delete(&models.News{}).Error; err != nil {
			return fmt.Errorf("failed to delete news: %w", err)
		}
		if err := tx.Where("uploaded_by = ?", id).Delete(&models.Document{}).Error; err != nil {
			return fmt.Errorf("failed to delete documents: %w", err)
		}
		result := tx.Delete(&models.User{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// List retrieves a filtered, paginated list of users
func (r *userRepository) List(filter UserFilter, page PageRequest) (Page[models.User], error) {
	query := r.db.Model(&models.User{})

	if s := strings.TrimSpace(filter.Search); s != "" {
		searchPattern := "%" + s + "%"
		query = query.Where("name LIKE ? OR email LIKE ?", searchPattern, searchPattern)
	}
	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	if filter.Active != nil {
		query = query.Where("is_active = ?", *filter.Active)
	}

	return paginate[models.User](query.Order("created_at DESC"), page)
}

// Count returns the total number of users
func (r *userRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).Count(&count).Error
	return count, err
}

// CountActiveAdmins returns the number of admins that are not suspended
func (r *userRepository) CountActiveAdmins() (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).
		Where("role = ? AND is_active = ?", models.RoleAdmin, true).
		Count(&count).Error
	return count, err
}

// GetDailyStats returns daily user registration statistics for a date range
func (r *userRepository) GetDailyStats(startDate, endDate time.Time) ([]models.DailyStats, error) {
	stats, err := r.dailyCounts("created_at", startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily user stats: %w", err)
	}
	return stats, nil
}

// GetDailyLogins returns, per day, the number of users whose last login fell on that day
func (r *userRepository) GetDailyLogins(startDate, endDate time.Time) ([]models.DailyStats, error) {
	stats, err := r.dailyCounts("last_login_at", startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily login stats: %w", err)
	}
	return stats, nil
}

func (r *userRepository) dailyCounts(column string, startDate, endDate time.Time) ([]models.DailyStats, error) {
	var results []struct {
		Date  string
		Count int64
	}

	// Use DATE_FORMAT for MySQL compatibility and proper date formatting
	day := fmt.Sprintf("DATE_FORMAT(%s, '%%Y-%%m-%%d')", column)
	err := r.db.Model(&models.User{}).
		Select(day+" as date, COUNT(*) as count").
		Where(column+" BETWEEN ? AND ?", startDate, endDate).
		Group(day).
		Order("date").
		Find(&results).Error
	if err != nil {
		return nil, err
	}

	dailyStats := make([]models.DailyStats, len(results))
	for i, result := range results {
		dailyStats[i] = models.DailyStats{
			Date:  result.Date,
			Count: int(result.Count),
		}
	}
	return dailyStats, nil
}
