package dto

type DeletePhotoRequestDTO struct {
	ID        string `json:"id" binding:"required"`
	ImageName string `json:"image_name"`
}
