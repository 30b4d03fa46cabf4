package handler

import (
	"net/http"

	"github.com/Payphone-Digital/midas/internal/constants"
	"github.com/Payphone-Digital/midas/internal/dto"
	apperrors "github.com/Payphone-Digital/midas/internal/errors"
	"github.com/Payphone-Digital/midas/internal/service"
	ctxutil "github.com/Payphone-Digital/midas/pkg/context"
	"github.com/Payphone-Digital/midas/pkg/logger"
	"github.com/gin-gonic/gin"
)

type ImageHandler struct {
	imageService *service.ImageService
}

func NewImageHandler(imageService *service.ImageService) *ImageHandler {
	return &ImageHandler{imageService: imageService}
}

func (h *ImageHandler) Search(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), "handler", "ImageHandler.Search")

	var query dto.ImageQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		logger.WarnWithContext(ctx, "Invalid image query").Err(err).Log()
		writeError(c, apperrors.ErrInvalidImageQuery)
		return
	}
	if query.Count == 0 {
		query.Count = constants.DefaultImageCount
	}

	images, err := h.imageService.Search(ctx, query.Query, query.Count)
	if err != nil {
		writeError(c, err)
		return
	}

	writeJSON(c, http.StatusOK, images)
}
