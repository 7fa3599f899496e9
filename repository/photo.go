package repository

import (
	"github.com/google/uuid"
	"github.com/tnqbao/gau-photobooth/entity"
	"gorm.io/gorm"
)

type PhotoRepository struct {
	db *gorm.DB
}

func NewPhotoRepository(db *gorm.DB) *PhotoRepository {
	return &PhotoRepository{db: db}
}

// Create inserts a new photo row. Insert only: there is no update path for
// photos, and the unique index on image_name rejects key reuse.
func (r *PhotoRepository) Create(photo *entity.Photo) error {
	if photo.ID == uuid.Nil {
		photo.ID = uuid.New()
	}
	return r.db.Create(photo).Error
}

// List returns all photos, newest first. The feed order is imposed here
// rather than inherited from storage order.
func (r *PhotoRepository) List() ([]entity.Photo, error) {
	var photos []entity.Photo
	err := r.db.Order("created_at DESC").Find(&photos).Error
	if err != nil {
		return nil, err
	}
	return photos, nil
}

func (r *PhotoRepository) FindByID(id uuid.UUID) (*entity.Photo, error) {
	var photo entity.Photo
	err := r.db.Where("id = ?", id).First(&photo).Error
	if err != nil {
		return nil, err
	}
	return &photo, nil
}

// DeleteByID removes the metadata row. Returns gorm.ErrRecordNotFound when
// no row matched, so callers can distinguish a bad id from a failed delete.
func (r *PhotoRepository) DeleteByID(id uuid.UUID) error {
	result := r.db.Delete(&entity.Photo{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *PhotoRepository) ExistsByImageName(imageName string) (bool, error) {
	var count int64
	err := r.db.Model(&entity.Photo{}).Where("image_name = ?", imageName).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
