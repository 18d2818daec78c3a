package repository

import (
	"time"

	"github.com/mosesmmoisebidth/rod-backend/internal/models"
	"gorm.io/gorm"
)

type MembershipRepository struct {
	db *gorm.DB
}

func NewMembershipRepository(db *gorm.DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

func (r *MembershipRepository) FindByRoomID(roomID string) ([]models.Membership, error) {
	var memberships []models.Membership
	err := r.db.Where("room_id = ?", roomID).Find(&memberships).Error
	return memberships, err
}

func (r *MembershipRepository) Find(roomID, username string) (*models.Membership, error) {
	var membership models.Membership
	err := r.db.Where("room_id = ? AND username = ?", roomID, username).First(&membership).Error
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

func (r *MembershipRepository) CreateAll(memberships []models.Membership) error {
	return r.db.Create(&memberships).Error
}

func (r *MembershipRepository) Delete(roomID, username string) error {
	result := r.db.Where("room_id = ? AND username = ?", roomID, username).Delete(&models.Membership{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *MembershipRepository) SetAdmin(roomID, username string, isAdmin bool) error {
	result := r.db.Model(&models.Membership{}).
		Where("room_id = ? AND username = ?", roomID, username).
		Update("is_admin", isAdmin)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *MembershipRepository) TouchLastSeen(roomID, username string) (*models.Membership, error) {
	membership, err := r.Find(roomID, username)
	if err != nil {
		return nil, err
	}
	membership.LastSeen = time.Now().UTC()
	if err := r.db.Save(membership).Error; err != nil {
		return nil, err
	}
	return membership, nil
}
