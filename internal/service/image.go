package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/Payphone-Digital/midas/internal/constants"
	"github.com/Payphone-Digital/midas/internal/dto"
	apperrors "github.com/Payphone-Digital/midas/internal/errors"
	"github.com/Payphone-Digital/midas/pkg/cache"
	ctxutil "github.com/Payphone-Digital/midas/pkg/context"
	"github.com/Payphone-Digital/midas/pkg/logger"
)

type ImageService struct {
	searcher PhotoSearcher
	cache    *cache.Cache[[]dto.ImageResponse]
	ttl      time.Duration
}

// NewImageService caches search results per (query, count) for ttl. A zero
// ttl disables caching.
func NewImageService(searcher PhotoSearcher, results *cache.Cache[[]dto.ImageResponse], ttl time.Duration) *ImageService {
	return &ImageService{searcher: searcher, cache: results, ttl: ttl}
}

func (s *ImageService) Search(ctx context.Context, query string, count int) ([]dto.ImageResponse, error) {
	ctx = ctxutil.NewContextWithRequest(ctx, "service", "ImageService.Search")

	query = strings.TrimSpace(query)
	if query == "" || count < 1 || count > constants.MaxImageCount {
		return nil, apperrors.ErrInvalidImageQuery
	}

	key := query + "|" + strconv.Itoa(count)
	if s.cache != nil && s.ttl > 0 {
		if images, ok := s.cache.Get(key); ok {
			logger.DebugWithContext(ctx, "Image search served from cache").String("query", query).Log()
			return images, nil
		}
	}

	photos, err := s.searcher.SearchPhotos(ctx, query, count)
	if err != nil {
		logger.ErrorWithContext(ctx, "Image search failed").String("query", query).Err(err).Log()
		return nil, apperrors.WrapError(apperrors.ErrProviderFailure, err)
	}

	images := make([]dto.ImageResponse, 0, len(photos))
	for _, p := range photos {
		images = append(images, dto.ImageResponse{
			ID:             p.ID,
			URLs:           p.URLs,
			AltDescription: p.AltDescription,
			Description:    p.Description,
		})
	}

	if s.cache != nil && s.ttl > 0 {
		s.cache.Set(key, images, s.ttl)
	}
	return images, nil
}
