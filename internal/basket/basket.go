// Package basket manages the per-user cart and wishlist line items. Every
// mutation is a single conditional update so concurrent requests from the
// same user never produce duplicate lines.
package basket

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"eveningmall/internal/apperr"
	"eveningmall/internal/database"
	"eveningmall/internal/models"
	"eveningmall/internal/sequence"
)

const (
	msgCartMissing         = "Cart not found"
	msgCartItemMissing     = "Product not found in cart"
	msgWishlistMissing     = "Wishlist not found"
	msgWishlistItemMissing = "Product not found in wishlist"
	msgProductMissing      = "Product not found"
)

type Allocator interface {
	Next(ctx context.Context, entity sequence.Entity) (int64, error)
}

// ProductSource returns active products keyed by PID.
type ProductSource interface {
	Products(ctx context.Context, pids []int64) (map[int64]models.Product, error)
}

type Service struct {
	carts     *mongo.Collection
	wishlists *mongo.Collection
	products  ProductSource
	ids       Allocator
	now       func() time.Time
}

func NewService(db *mongo.Database, products ProductSource, ids Allocator) *Service {
	return &Service{
		carts:     db.Collection(database.Carts),
		wishlists: db.Collection(database.Wishlists),
		products:  products,
		ids:       ids,
		now:       time.Now,
	}
}

// Line is a stored line item joined with the current product data.
// Available is false once the product has been deleted.
type Line struct {
	ProductID int64     `json:"productId"`
	Quantity  int       `json:"quantity,omitempty"`
	AddedAt   time.Time `json:"addedAt"`
	Name      string    `json:"name,omitempty"`
	Price     float64   `json:"price"`
	ImgMain   string    `json:"imgMain,omitempty"`
	InStock   bool      `json:"inStock"`
	Available bool      `json:"available"`
}

type CartView struct {
	CID    int64   `json:"CID,omitempty"`
	UserID int64   `json:"userId"`
	Items  []Line  `json:"items"`
	Total  float64 `json:"total"`
}

type WishlistView struct {
	UserID int64  `json:"userId"`
	Items  []Line `json:"items"`
}

func (s *Service) requireProduct(ctx context.Context, pid int64) error {
	if pid <= 0 {
		return apperr.InvalidInput("productId is required")
	}
	found, err := s.products.Products(ctx, []int64{pid})
	if err != nil {
		return err
	}
	if _, ok := found[pid]; !ok {
		return apperr.NotFound(msgProductMissing)
	}
	return nil
}

// AddToCart increments the line for pid by delta, appending it or creating
// the cart when needed.
func (s *Service) AddToCart(ctx context.Context, user, pid int64, delta int) (CartView, error) {
	if delta < 1 {
		return CartView{}, apperr.InvalidInput("quantity must be at least 1")
	}
	if err := s.requireProduct(ctx, pid); err != nil {
		return CartView{}, err
	}

	for attempt := 0; attempt < 2; attempt++ {
		done, err := s.incrementLine(ctx, user, pid, delta)
		if err != nil {
			return CartView{}, err
		}
		if done {
			return s.Cart(ctx, user)
		}
		if done, err = s.appendLine(ctx, user, pid, delta); err != nil {
			return CartView{}, err
		}
		if done {
			return s.Cart(ctx, user)
		}
		if attempt > 0 {
			break
		}

		err = s.createCart(ctx, user, pid, delta)
		if err == nil {
			return s.Cart(ctx, user)
		}
		if !mongo.IsDuplicateKeyError(err) {
			return CartView{}, apperr.FromMongo(err, "")
		}
		// Another request created the cart first; retry the updates.
	}
	return CartView{}, apperr.Conflict("cart changed concurrently, retry")
}

func (s *Service) incrementLine(ctx context.Context, user, pid int64, delta int) (bool, error) {
	now := s.now().UTC()
	res, err := s.carts.UpdateOne(ctx,
		bson.M{"userId": user, "items.productId": pid},
		bson.M{
			"$inc": bson.M{"items.$.quantity": delta},
			"$set": bson.M{"items.$.updatedAt": now, "updatedAt": now},
		},
	)
	if err != nil {
		return false, apperr.FromMongo(err, "")
	}
	return res.MatchedCount > 0, nil
}

func (s *Service) appendLine(ctx context.Context, user, pid int64, delta int) (bool, error) {
	now := s.now().UTC()
	res, err := s.carts.UpdateOne(ctx,
		bson.M{"userId": user, "items.productId": bson.M{"$ne": pid}},
		bson.M{
			"$push": bson.M{"items": models.LineItem{ProductID: pid, Quantity: delta, AddedAt: now}},
			"$set":  bson.M{"updatedAt": now},
		},
	)
	if err != nil {
		return false, apperr.FromMongo(err, "")
	}
	return res.MatchedCount > 0, nil
}

func (s *Service) createCart(ctx context.Context, user, pid int64, delta int) error {
	cid, err := s.ids.Next(ctx, sequence.Cart)
	if err != nil {
		return err
	}
	now := s.now().UTC()
	_, err = s.carts.InsertOne(ctx, models.Cart{
		CID:       cid,
		UserID:    user,
		Items:     []models.LineItem{{ProductID: pid, Quantity: delta, AddedAt: now}},
		CreatedAt: now,
		UpdatedAt: now,
	})
	return err
}

// SetCartQuantity replaces the quantity of an existing line.
func (s *Service) SetCartQuantity(ctx context.Context, user, pid int64, qty int) (CartView, error) {
	if qty < 1 {
		return CartView{}, apperr.InvalidInput("quantity must be at least 1")
	}
	now := s.now().UTC()
	res, err := s.carts.UpdateOne(ctx,
		bson.M{"userId": user, "items.productId": pid},
		bson.M{"$set": bson.M{
			"items.$.quantity":  qty,
			"items.$.updatedAt": now,
			"updatedAt":         now,
		}},
	)
	if err != nil {
		return CartView{}, apperr.FromMongo(err, "")
	}
	if res.MatchedCount == 0 {
		return CartView{}, s.missing(ctx, s.carts, user, msgCartMissing, msgCartItemMissing)
	}
	return s.Cart(ctx, user)
}

func (s *Service) RemoveFromCart(ctx context.Context, user, pid int64) (CartView, error) {
	if err := s.pull(ctx, s.carts, user, pid, msgCartMissing, msgCartItemMissing); err != nil {
		return CartView{}, err
	}
	return s.Cart(ctx, user)
}

// ClearCart empties the cart. A user without a cart is left as is.
func (s *Service) ClearCart(ctx context.Context, user int64) error {
	_, err := s.carts.UpdateOne(ctx,
		bson.M{"userId": user},
		bson.M{"$set": bson.M{"items": bson.A{}, "updatedAt": s.now().UTC()}},
	)
	if err != nil {
		return apperr.FromMongo(err, "")
	}
	return nil
}

// AddToWishlist adds pid once; adding it again is a no-op.
func (s *Service) AddToWishlist(ctx context.Context, user, pid int64) (WishlistView, error) {
	if err := s.requireProduct(ctx, pid); err != nil {
		return WishlistView{}, err
	}
	now := s.now().UTC()
	item := models.LineItem{ProductID: pid, AddedAt: now}

	res, err := s.wishlists.UpdateOne(ctx,
		bson.M{"userId": user, "items.productId": bson.M{"$ne": pid}},
		bson.M{
			"$push": bson.M{"items": item},
			"$set":  bson.M{"updatedAt": now},
		},
	)
	if err != nil {
		return WishlistView{}, apperr.FromMongo(err, "")
	}
	if res.MatchedCount > 0 {
		return s.Wishlist(ctx, user)
	}

	// Either there is no wishlist yet or it already holds pid. Only the
	// first case writes anything.
	_, err = s.wishlists.UpdateOne(ctx,
		bson.M{"userId": user},
		bson.M{"$setOnInsert": bson.M{
			"items":     bson.A{item},
			"createdAt": now,
			"updatedAt": now,
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return WishlistView{}, apperr.FromMongo(err, "")
	}
	return s.Wishlist(ctx, user)
}

func (s *Service) RemoveFromWishlist(ctx context.Context, user, pid int64) (WishlistView, error) {
	if err := s.pull(ctx, s.wishlists, user, pid, msgWishlistMissing, msgWishlistItemMissing); err != nil {
		return WishlistView{}, err
	}
	return s.Wishlist(ctx, user)
}

func (s *Service) pull(ctx context.Context, coll *mongo.Collection, user, pid int64, containerMsg, itemMsg string) error {
	res, err := coll.UpdateOne(ctx,
		bson.M{"userId": user, "items.productId": pid},
		bson.M{
			"$pull": bson.M{"items": bson.M{"productId": pid}},
			"$set":  bson.M{"updatedAt": s.now().UTC()},
		},
	)
	if err != nil {
		return apperr.FromMongo(err, "")
	}
	if res.MatchedCount == 0 {
		return s.missing(ctx, coll, user, containerMsg, itemMsg)
	}
	return nil
}

// missing tells an absent container apart from an absent line.
func (s *Service) missing(ctx context.Context, coll *mongo.Collection, user int64, containerMsg, itemMsg string) error {
	n, err := coll.CountDocuments(ctx, bson.M{"userId": user})
	if err != nil {
		return apperr.Internal("count containers", err)
	}
	if n == 0 {
		return apperr.NotFound(containerMsg)
	}
	return apperr.NotFound(itemMsg)
}

// RawCart returns the stored cart. A user without a cart gets an empty one.
func (s *Service) RawCart(ctx context.Context, user int64) (models.Cart, error) {
	var cart models.Cart
	err := s.carts.FindOne(ctx, bson.M{"userId": user}).Decode(&cart)
	if err == mongo.ErrNoDocuments {
		return models.Cart{UserID: user, Items: []models.LineItem{}}, nil
	}
	if err != nil {
		return models.Cart{}, apperr.FromMongo(err, "")
	}
	return cart, nil
}

func (s *Service) Cart(ctx context.Context, user int64) (CartView, error) {
	cart, err := s.RawCart(ctx, user)
	if err != nil {
		return CartView{}, err
	}
	lines, err := s.enrich(ctx, cart.Items)
	if err != nil {
		return CartView{}, err
	}

	total := decimal.Zero
	for _, l := range lines {
		if l.Available {
			total = total.Add(decimal.NewFromFloat(l.Price).Mul(decimal.NewFromInt(int64(l.Quantity))))
		}
	}
	return CartView{
		CID:    cart.CID,
		UserID: user,
		Items:  lines,
		Total:  total.Round(2).InexactFloat64(),
	}, nil
}

func (s *Service) Wishlist(ctx context.Context, user int64) (WishlistView, error) {
	var list models.Wishlist
	err := s.wishlists.FindOne(ctx, bson.M{"userId": user}).Decode(&list)
	if err != nil && err != mongo.ErrNoDocuments {
		return WishlistView{}, apperr.FromMongo(err, "")
	}
	lines, err := s.enrich(ctx, list.Items)
	if err != nil {
		return WishlistView{}, err
	}
	return WishlistView{UserID: user, Items: lines}, nil
}

func (s *Service) enrich(ctx context.Context, items []models.LineItem) ([]Line, error) {
	lines := make([]Line, 0, len(items))
	if len(items) == 0 {
		return lines, nil
	}
	pids := make([]int64, 0, len(items))
	for _, item := range items {
		pids = append(pids, item.ProductID)
	}
	products, err := s.products.Products(ctx, pids)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		line := Line{ProductID: item.ProductID, Quantity: item.Quantity, AddedAt: item.AddedAt}
		if p, ok := products[item.ProductID]; ok {
			line.Name = p.Name
			line.Price = p.EffectivePrice
			line.ImgMain = p.ImgMain
			line.InStock = p.InStock
			line.Available = true
		}
		lines = append(lines, line)
	}
	return lines, nil
}
