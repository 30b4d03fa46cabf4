package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/Payphone-Digital/midas/internal/dto"
	apperrors "github.com/Payphone-Digital/midas/internal/errors"
	"github.com/Payphone-Digital/midas/internal/model"
	"github.com/Payphone-Digital/midas/internal/repository"
	ctxutil "github.com/Payphone-Digital/midas/pkg/context"
	"github.com/Payphone-Digital/midas/pkg/logger"
	"github.com/Payphone-Digital/midas/pkg/store"
	"golang.org/x/sync/errgroup"
)

type OrderService struct {
	users      *repository.UserRepository
	menus      *repository.MenuRepository
	reconciler CartReconciler
	payments   PaymentProcessor
	images     *ImageService
}

func NewOrderService(users *repository.UserRepository, menus *repository.MenuRepository, reconciler CartReconciler, payments PaymentProcessor, images *ImageService) *OrderService {
	return &OrderService{
		users:      users,
		menus:      menus,
		reconciler: reconciler,
		payments:   payments,
		images:     images,
	}
}

// Place replaces the cart with the given lines.
func (s *OrderService) Place(ctx context.Context, email string, lines dto.OrderLines) (*dto.CartResponse, error) {
	ctx = ctxutil.NewContextWithRequest(ctx, "service", "OrderService.Place")
	return s.save(ctx, email, lines, true)
}

// Merge adds the given lines to the current cart.
func (s *OrderService) Merge(ctx context.Context, email string, lines dto.OrderLines) (*dto.CartResponse, error) {
	ctx = ctxutil.NewContextWithRequest(ctx, "service", "OrderService.Merge")
	return s.save(ctx, email, lines, false)
}

func (s *OrderService) save(ctx context.Context, email string, lines dto.OrderLines, replace bool) (*dto.CartResponse, error) {
	if len(lines) == 0 {
		return nil, apperrors.ErrNoOrders
	}

	menu, err := s.loadMenu(ctx)
	if err != nil {
		return nil, err
	}
	user, err := s.loadUser(ctx, email)
	if err != nil {
		return nil, err
	}

	baseline := user.Cart
	if replace {
		baseline = model.EmptyCart()
		baseline.StripeMetaData = user.Cart.StripeMetaData
	}

	cart, err := s.reconciler.Reconcile(menu, lines, baseline)
	if err != nil {
		logger.InfoWithContext(ctx, "Order rejected").String("email", email).Err(err).Log()
		return nil, err
	}

	user.Cart = cart
	if err := s.users.Update(ctx, user); err != nil {
		logger.ErrorWithContext(ctx, "Failed to save cart").String("email", email).Err(err).Log()
		return nil, apperrors.Internal(err)
	}

	logger.InfoWithContext(ctx, "Cart saved").
		String("email", email).
		Int("order_count", cart.OrderCount).
		String("total", cart.TotalPrice.String()).
		Log()

	resp := dto.NewCartResponse(cart)
	return &resp, nil
}

// Get returns the cart, or nil when it is empty.
func (s *OrderService) Get(ctx context.Context, email string) (*dto.CartResponse, error) {
	user, err := s.loadUser(ctx, email)
	if err != nil {
		return nil, err
	}
	if user.Cart.IsEmpty() {
		return nil, nil
	}
	resp := dto.NewCartResponse(user.Cart)
	return &resp, nil
}

// Clear resets the cart and reports whether there was anything to clear. An
// open payment intent is canceled on a best effort basis.
func (s *OrderService) Clear(ctx context.Context, email string) (bool, error) {
	ctx = ctxutil.NewContextWithRequest(ctx, "service", "OrderService.Clear")

	user, err := s.loadUser(ctx, email)
	if err != nil {
		return false, err
	}

	intentID := user.Cart.PaymentIntentID()
	if user.Cart.IsEmpty() && intentID == "" {
		return false, nil
	}

	if intentID != "" && s.payments != nil {
		s.cancelQuietly(ctx, intentID)
	}

	user.Cart = model.EmptyCart()
	if err := s.users.Update(ctx, user); err != nil {
		logger.ErrorWithContext(ctx, "Failed to clear cart").String("email", email).Err(err).Log()
		return false, apperrors.Internal(err)
	}

	logger.InfoWithContext(ctx, "Cart emptied").String("email", email).Log()
	return true, nil
}

func (s *OrderService) cancelQuietly(ctx context.Context, intentID string) {
	intent, err := s.payments.GetIntent(ctx, intentID)
	if err == nil && intent.Canceled() {
		return
	}
	if _, err := s.payments.CancelIntent(ctx, intentID); err != nil {
		logger.WarnWithContext(ctx, "Could not cancel payment intent of cleared cart").
			String("intent_id", intentID).
			Err(err).
			Log()
	}
}

// Menu lists the menu. With withPhotos, items lacking a photo ID get one
// from the image provider, one search per distinct photo query.
func (s *OrderService) Menu(ctx context.Context, withPhotos bool) (map[string]dto.MenuEntryResponse, error) {
	ctx = ctxutil.NewContextWithRequest(ctx, "service", "OrderService.Menu")

	menu, err := s.loadMenu(ctx)
	if err != nil {
		return nil, err
	}

	items := menu.Items()
	if withPhotos && s.images != nil {
		if err := s.fillPhotos(ctx, items); err != nil {
			return nil, err
		}
	}
	return dto.NewMenuResponse(items), nil
}

func (s *OrderService) fillPhotos(ctx context.Context, items []model.MenuItem) error {
	counts := make(map[string]int)
	for _, item := range items {
		if item.PhotoID == "" && item.PhotoQuery != "" {
			counts[strings.ToLower(item.PhotoQuery)]++
		}
	}
	if len(counts) == 0 {
		return nil
	}

	var mu sync.Mutex
	found := make(map[string][]dto.ImageResponse, len(counts))

	g, gctx := errgroup.WithContext(ctx)
	for query, count := range counts {
		g.Go(func() error {
			images, err := s.images.Search(gctx, query, count)
			if err != nil {
				return err
			}
			mu.Lock()
			found[query] = images
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	next := make(map[string]int, len(found))
	for i, item := range items {
		if item.PhotoID != "" || item.PhotoQuery == "" {
			continue
		}
		query := strings.ToLower(item.PhotoQuery)
		if n := next[query]; n < len(found[query]) {
			items[i].PhotoID = found[query][n].ID
			next[query] = n + 1
		}
	}
	return nil
}

func (s *OrderService) loadMenu(ctx context.Context) (model.Menu, error) {
	menu, err := s.menus.Load(ctx)
	if err != nil {
		logger.ErrorWithContext(ctx, "Failed to load menu").Err(err).Log()
		return model.Menu{}, apperrors.WrapError(apperrors.ErrMenuUnavailable, err)
	}
	return menu, nil
}

func (s *OrderService) loadUser(ctx context.Context, email string) (*model.User, error) {
	user, err := s.users.Get(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Internal(err)
	}
	return user, nil
}
