package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ikkim/retail-etl/internal/app/model"
	apperrors "github.com/ikkim/retail-etl/internal/errors"
	"github.com/ikkim/retail-etl/pkg/logger"
)

// dateWindowDays is the rolling window the synthetic order dates are
// spread over.
const dateWindowDays = 30

type FlattenService interface {
	Flatten(carts []model.Cart, users []model.User) ([]model.FlatRow, error)
}

type flattenService struct {
	today time.Time
}

// NewFlattenService creates a flattener whose synthetic order dates are
// anchored at the given reference day. Pass the current UTC time for
// production runs; a fixed day makes date assignment reproducible in
// tests.
func NewFlattenService(today time.Time) FlattenService {
	return &flattenService{today: today}
}

// Flatten joins carts to their embedded products and the owning user,
// producing one row per (cart, product) pair. A cart with no products
// contributes zero rows. A cart whose user is unknown keeps nil
// customer fields; the normalizer imputes them later.
func (s *flattenService) Flatten(carts []model.Cart, users []model.User) ([]model.FlatRow, error) {
	if carts == nil {
		return nil, fmt.Errorf("%w: carts collection", apperrors.ErrMissingInput)
	}

	userIndex := buildUserIndex(users)
	dates := s.assignOrderDates(carts)

	rows := make([]model.FlatRow, 0, len(carts))
	for _, cart := range carts {
		cartID, err := coerceInt64("cart_id", cart.ID)
		if err != nil {
			return nil, err
		}

		var orderDate string
		if cartID != nil {
			orderDate = dates[*cartID]
		}

		for _, p := range cart.Products {
			row := model.FlatRow{
				CartID:              cart.ID,
				UserID:              cart.UserID,
				CartTotal:           cart.Total,
				CartDiscountedTotal: cart.DiscountedTotal,
				CartTotalProducts:   cart.TotalProducts,
				CartTotalQuantity:   cart.TotalQuantity,
				ProductID:           p.ID,
				ProductTitle:        cleanTitle(p.Title),
				ProductPrice:        p.Price,
				ProductQuantity:     p.Quantity,
				ProductTotal:        p.Total,
				OrderDate:           orderDate,
			}

			if user, ok := lookupUser(userIndex, cart.UserID); ok {
				first := deref(user.FirstName)
				last := deref(user.LastName)
				name := strings.TrimSpace(first + " " + last)

				row.FirstName = user.FirstName
				row.LastName = user.LastName
				row.CustomerName = &name
				row.Email = user.Email
				if user.Address != nil {
					row.City = user.Address.City
				}
				row.Age = user.Age
				row.Gender = user.Gender
			}

			rows = append(rows, row)
		}
	}

	logger.Info("Flattened carts into product rows", map[string]interface{}{
		"carts": len(carts),
		"users": len(users),
		"rows":  len(rows),
	})
	return rows, nil
}

// buildUserIndex builds the in-memory user lookup keyed by coerced user
// id. Duplicate ids overwrite (last wins); users without a coercible id
// are skipped.
func buildUserIndex(users []model.User) map[int64]model.User {
	index := make(map[int64]model.User, len(users))
	for _, u := range users {
		id, err := coerceInt64("user.id", u.ID)
		if err != nil || id == nil {
			logger.Warn("Skipping user without usable id", map[string]interface{}{
				"raw_id": u.ID,
			})
			continue
		}
		index[*id] = u
	}
	return index
}

func lookupUser(index map[int64]model.User, rawUserID interface{}) (model.User, bool) {
	id, err := coerceInt64("cart.userId", rawUserID)
	if err != nil || id == nil {
		return model.User{}, false
	}
	user, ok := index[*id]
	return user, ok
}

// assignOrderDates spreads synthetic order dates over a rolling window,
// deterministically by ascending cart id: rank i gets today minus
// (i mod 30) days, independent of fetch order.
func (s *flattenService) assignOrderDates(carts []model.Cart) map[int64]string {
	seen := make(map[int64]struct{}, len(carts))
	ids := make([]int64, 0, len(carts))
	for _, cart := range carts {
		id, err := coerceInt64("cart_id", cart.ID)
		if err != nil || id == nil {
			continue
		}
		if _, ok := seen[*id]; ok {
			continue
		}
		seen[*id] = struct{}{}
		ids = append(ids, *id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	today := s.today.Truncate(24 * time.Hour)
	dates := make(map[int64]string, len(ids))
	for i, id := range ids {
		daysBack := i % dateWindowDays
		dates[id] = today.AddDate(0, 0, -daysBack).Format("2006-01-02")
	}
	return dates
}

func cleanTitle(title *string) *string {
	if title == nil {
		return nil
	}
	cleaned := strings.TrimSpace(strings.ToLower(*title))
	return &cleaned
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
