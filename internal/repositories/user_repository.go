package repositories

import (
	"errors"

	"github.com/campusquest/backend/internal/apperr"
	"github.com/campusquest/backend/internal/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user and rating operations
type UserRepository interface {
	CreateUser(user *models.User) error
	GetUserByEmail(email string) (*models.User, error)
	GetUserByFirebaseUID(uid string) (*models.User, error)
	UpdateUsername(email, username string) error
	AddRating(email, role string, value int) error
	GetRatings(email, role string) ([]int, error)
	GetAverages(email string) (*models.UserAverages, error)
}

// PostgresUserRepository implements UserRepository for PostgreSQL
type PostgresUserRepository struct {
	db *gorm.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository
func NewPostgresUserRepository(db *gorm.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) CreateUser(user *models.User) error {
	if err := r.db.Create(user).Error; err != nil {
		return apperr.Unavailable(err)
	}
	return nil
}

func (r *PostgresUserRepository) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("user not found")
		}
		return nil, apperr.Unavailable(err)
	}
	return &user, nil
}

func (r *PostgresUserRepository) GetUserByFirebaseUID(uid string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("firebase_uid = ?", uid).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("user not found")
		}
		return nil, apperr.Unavailable(err)
	}
	return &user, nil
}

func (r *PostgresUserRepository) UpdateUsername(email, username string) error {
	res := r.db.Model(&models.User{}).Where("email = ?", email).Update("username", username)
	if res.Error != nil {
		return apperr.Unavailable(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFoundf("user not found")
	}
	return nil
}

// AddRating appends one rating row. Insertion order is the sequence order.
func (r *PostgresUserRepository) AddRating(email, role string, value int) error {
	rating := &models.Rating{UserEmail: email, Role: role, Value: value}
	if err := r.db.Create(rating).Error; err != nil {
		return apperr.Unavailable(err)
	}
	return nil
}

func (r *PostgresUserRepository) GetRatings(email, role string) ([]int, error) {
	var values []int
	err := r.db.Model(&models.Rating{}).
		Where("user_email = ? AND role = ?", email, role).
		Order("id ASC").
		Pluck("value", &values).Error
	if err != nil {
		return nil, apperr.Unavailable(err)
	}
	return values, nil
}

// GetAverages resolves a user's display name and both rating averages. An
// unknown email yields the local part of the address and zero averages, so
// listings render gracefully for principals with no profile row.
func (r *PostgresUserRepository) GetAverages(email string) (*models.UserAverages, error) {
	out := &models.UserAverages{Email: email, Username: models.EmailLocalPart(email)}

	user, err := r.GetUserByEmail(email)
	if err != nil && !apperr.IsKind(err, apperr.NotFound) {
		return nil, err
	}
	if user != nil {
		out.Username = user.DisplayName()
	}

	qm, err := r.GetRatings(email, models.RoleQuestmaster)
	if err != nil {
		return nil, err
	}
	vy, err := r.GetRatings(email, models.RoleVoyager)
	if err != nil {
		return nil, err
	}
	out.QuestmasterAverage = models.RatingAverage(qm)
	out.VoyagerAverage = models.RatingAverage(vy)
	return out, nil
}
