package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tnqbao/gau-photobooth/http/controller/dto"
	"github.com/tnqbao/gau-photobooth/service"
	"github.com/tnqbao/gau-photobooth/utils"
)

func (ctrl *Controller) UploadPhoto(c *gin.Context) {
	ctx := c.Request.Context()

	fileHeader, err := c.FormFile("image")
	if err != nil {
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[Photo] Upload rejected, no image field: %v", err)
		utils.JSON400(c, `Missing image file (field name: "image")`)
		return
	}

	caption := c.PostForm("caption")

	filename := fileHeader.Filename
	if filename == "" {
		filename = "upload"
	}

	file, err := fileHeader.Open()
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Photo] Failed to open multipart file")
		utils.JSONError(c, http.StatusInternalServerError, "Failed to parse request", err.Error())
		return
	}
	defer file.Close()

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[Photo] Uploading '%s' (size: %d bytes)", filename, fileHeader.Size)

	result, err := ctrl.Service.Upload(ctx, service.UploadInput{
		Reader:      file,
		Size:        fileHeader.Size,
		Filename:    filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Caption:     caption,
	})
	if err != nil {
		if se, ok := service.AsError(err); ok {
			if se.ClientFault() {
				ctrl.Infra.Logger.WarningWithContextf(ctx, "[Photo] Upload rejected: %s", se.Detail)
				utils.JSON400(c, se.Detail)
				return
			}
			ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Photo] Upload failed (%s)", se.Kind)
			utils.JSONError(c, http.StatusInternalServerError, "Upload failed", se.Error())
			return
		}
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Photo] Upload failed")
		utils.JSONError(c, http.StatusInternalServerError, "Upload failed", err.Error())
		return
	}

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[Photo] Successfully uploaded '%s' as %s", filename, result.Photo.ImageName)
	utils.JSON200(c, gin.H{
		"message":  "ok",
		"filename": result.Filename,
		"mime":     result.MIME,
		"size":     result.Size,
		"caption":  result.Caption,
	})
}

func (ctrl *Controller) ListPhotos(c *gin.Context) {
	ctx := c.Request.Context()

	photos, err := ctrl.Service.List(ctx)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Photo] Failed to list photos")
		utils.JSONError(c, http.StatusInternalServerError, "Failed to fetch images", err.Error())
		return
	}

	utils.JSON200(c, gin.H{
		"images":  photos,
		"error":   nil,
		"details": "successfully retrieved images",
	})
}

func (ctrl *Controller) DeletePhoto(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.DeletePhotoRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[Photo] Invalid delete payload: %v", err)
		utils.JSON400(c, "Invalid request payload")
		return
	}

	id, err := uuid.Parse(req.ID)
	if err != nil {
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[Photo] Invalid photo id %q: %v", req.ID, err)
		utils.JSON400(c, "Invalid photo id")
		return
	}

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[Photo] Deleting photo %s (object: %s)", id, req.ImageName)

	if err := ctrl.Service.Delete(ctx, id, req.ImageName); err != nil {
		if se, ok := service.AsError(err); ok && se.Kind == service.KindNotFound {
			ctrl.Infra.Logger.WarningWithContextf(ctx, "[Photo] Delete of unknown photo %s", id)
			utils.JSON404(c, se.Detail)
			return
		}
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Photo] Failed to delete photo %s", id)
		utils.JSONError(c, http.StatusInternalServerError, "Delete failed", err.Error())
		return
	}

	utils.JSON200(c, gin.H{
		"message": "Photo deleted successfully",
	})
}
