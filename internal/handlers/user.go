package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"eveningmall/internal/account"
	"eveningmall/internal/basket"
	"eveningmall/internal/models"
)

// ProfileService is the signed-in user's view of their own account.
type ProfileService interface {
	Profile(ctx context.Context, usid int64) (account.Profile, error)
	UpdateProfile(ctx context.Context, usid int64, name, mobile *string) (account.Profile, error)
	ChangePassword(ctx context.Context, loginID primitive.ObjectID, current, next string) error
	Address(ctx context.Context, usid int64, slot string) (*models.Address, error)
	SaveAddress(ctx context.Context, usid int64, slot string, addr models.Address) error
}

// Basket is the cart and wishlist of one user.
type Basket interface {
	Cart(ctx context.Context, user int64) (basket.CartView, error)
	AddToCart(ctx context.Context, user, pid int64, delta int) (basket.CartView, error)
	SetCartQuantity(ctx context.Context, user, pid int64, qty int) (basket.CartView, error)
	RemoveFromCart(ctx context.Context, user, pid int64) (basket.CartView, error)
	Wishlist(ctx context.Context, user int64) (basket.WishlistView, error)
	AddToWishlist(ctx context.Context, user, pid int64) (basket.WishlistView, error)
	RemoveFromWishlist(ctx context.Context, user, pid int64) (basket.WishlistView, error)
}

type profileUpdateRequest struct {
	Name            *string `json:"name"`
	Mobile          *string `json:"mobile"`
	CurrentPassword string  `json:"currentPassword"`
	NewPassword     string  `json:"newPassword"`
}

type cartItemRequest struct {
	ProductID int64 `json:"productId" binding:"required,gt=0"`
	Quantity  *int  `json:"quantity"`
}

type wishlistRequest struct {
	ProductID int64 `json:"productId" binding:"required,gt=0"`
}

func GetProfile(profiles ProfileService, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/profile"
		defer handlePanic(c, route)

		ctx, cancel := queryContext(c, timeout)
		defer cancel()

		profile, err := profiles.Profile(ctx, currentIdentity(c).USID)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, profile)
	}
}

// UpdateProfile changes name and mobile, and the password when newPassword
// is present.
func UpdateProfile(profiles ProfileService, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/profile/update"
		defer handlePanic(c, route)

		var req profileUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		id := currentIdentity(c)

		ctx, cancel := queryContext(c, timeout)
		defer cancel()

		if req.NewPassword != "" {
			if err := profiles.ChangePassword(ctx, id.LoginID, req.CurrentPassword, req.NewPassword); err != nil {
				respondError(c, route, err)
				return
			}
		}
		profile, err := profiles.UpdateProfile(ctx, id.USID, req.Name, req.Mobile)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Profile updated", "profile": profile})
	}
}

// ListAddresses returns every filled address slot keyed by slot name.
func ListAddresses(profiles ProfileService, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/profile/addresses"
		defer handlePanic(c, route)

		ctx, cancel := queryContext(c, timeout)
		defer cancel()

		profile, err := profiles.Profile(ctx, currentIdentity(c).USID)
		if err != nil {
			respondError(c, route, err)
			return
		}
		out := make(map[string]*models.Address, len(models.AddressSlots))
		for _, slot := range models.AddressSlots {
			if addr := profile.Address(slot); addr != nil {
				out[slot] = addr
			}
		}
		c.JSON(http.StatusOK, out)
	}
}

func GetAddress(profiles ProfileService, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/profile/address/:type"
		defer handlePanic(c, route)

		ctx, cancel := queryContext(c, timeout)
		defer cancel()

		addr, err := profiles.Address(ctx, currentIdentity(c).USID, c.Param("type"))
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, addr)
	}
}

func SaveAddress(profiles ProfileService, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/profile/address/:type"
		defer handlePanic(c, route)

		var addr models.Address
		if err := c.ShouldBindJSON(&addr); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := queryContext(c, timeout)
		defer cancel()

		if err := profiles.SaveAddress(ctx, currentIdentity(c).USID, c.Param("type"), addr); err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Address saved"})
	}
}

func ViewCart(items Basket, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/cart/view"
		defer handlePanic(c, route)

		ctx, cancel := queryContext(c, timeout)
		defer cancel()

		cart, err := items.Cart(ctx, currentIdentity(c).USID)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

// AddToCart adds quantity (default 1) to the product's line.
func AddToCart(items Basket, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/cart/add"
		defer handlePanic(c, route)

		var req cartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		delta := 1
		if req.Quantity != nil {
			delta = *req.Quantity
		}

		ctx, cancel := queryContext(c, timeout)
		defer cancel()

		cart, err := items.AddToCart(ctx, currentIdentity(c).USID, req.ProductID, delta)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

func UpdateCartItem(items Basket, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/cart/update"
		defer handlePanic(c, route)

		var req cartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		if req.Quantity == nil {
			respondWithError(c, http.StatusBadRequest, route, "quantity is required")
			return
		}

		ctx, cancel := queryContext(c, timeout)
		defer cancel()

		cart, err := items.SetCartQuantity(ctx, currentIdentity(c).USID, req.ProductID, *req.Quantity)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

func RemoveFromCart(items Basket, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/cart/remove/:productId"
		defer handlePanic(c, route)

		pid, ok := int64Param(c, "productId")
		if !ok {
			respondWithError(c, http.StatusBadRequest, route, "invalid product id")
			return
		}

		ctx, cancel := queryContext(c, timeout)
		defer cancel()

		cart, err := items.RemoveFromCart(ctx, currentIdentity(c).USID, pid)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

func ViewWishlist(items Basket, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/wishlist/view"
		defer handlePanic(c, route)

		ctx, cancel := queryContext(c, timeout)
		defer cancel()

		list, err := items.Wishlist(ctx, currentIdentity(c).USID)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

func AddToWishlist(items Basket, timeout time.Duration) gin.HandlerFunc {
	return wishlistMutation("POST /api/wishlist/add", items.AddToWishlist, timeout)
}

func RemoveFromWishlist(items Basket, timeout time.Duration) gin.HandlerFunc {
	return wishlistMutation("DELETE /api/wishlist/remove", items.RemoveFromWishlist, timeout)
}

func wishlistMutation(route string, apply func(ctx context.Context, user, pid int64) (basket.WishlistView, error), timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, route)

		var req wishlistRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := queryContext(c, timeout)
		defer cancel()

		list, err := apply(ctx, currentIdentity(c).USID, req.ProductID)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}
