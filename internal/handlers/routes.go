package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"eveningmall/internal/middleware"
	"eveningmall/internal/taxonomy"
)

// Accounts covers every account operation the routes need.
type Accounts interface {
	Authenticator
	ProfileService
	UserDirectory
	Reviewers
}

type Products interface {
	ProductReader
	ProductWriter
}

type Orders interface {
	OrderPlacer
	OrderAdmin
}

type Content interface {
	Storefront
	BlogEditor
	SliderEditor
	TestimonialEditor
}

// Services is everything Mount wires into the router.
type Services struct {
	DB       *mongo.Database
	Accounts Accounts
	Products Products
	Taxonomy TaxonomyWriter
	Reviews  ReviewService
	Basket   Basket
	Orders   Orders
	Content  Content
}

type RouteConfig struct {
	JWTSecret    string
	FrontendURL  string
	QueryTimeout time.Duration
}

// Mount registers the storefront and admin API on r.
func Mount(r *gin.Engine, s Services, cfg RouteConfig) {
	t := cfg.QueryTimeout
	userAuth := middleware.UserAuth(cfg.JWTSecret)

	r.GET("/health", Health(s.DB))

	api := r.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", Register(s.Accounts, t))
		auth.GET("/verify/:id", VerifyAccount(s.Accounts, cfg.FrontendURL, t))
		auth.POST("/login", Login(s.Accounts, t))
		auth.POST("/logout", middleware.AuthGuard(cfg.JWTSecret), Logout(s.Accounts, t))
	}

	profile := api.Group("/profile", userAuth)
	{
		profile.GET("", GetProfile(s.Accounts, t))
		profile.PUT("/update", UpdateProfile(s.Accounts, t))
		profile.GET("/addresses", ListAddresses(s.Accounts, t))
		profile.GET("/address/:type", GetAddress(s.Accounts, t))
		profile.PUT("/address/:type", SaveAddress(s.Accounts, t))
	}

	cart := api.Group("/cart", userAuth)
	{
		cart.GET("/view", ViewCart(s.Basket, t))
		cart.POST("/add", AddToCart(s.Basket, t))
		cart.PUT("/update", UpdateCartItem(s.Basket, t))
		cart.DELETE("/remove/:productId", RemoveFromCart(s.Basket, t))
	}

	wishlist := api.Group("/wishlist", userAuth)
	{
		wishlist.GET("/view", ViewWishlist(s.Basket, t))
		wishlist.POST("/add", AddToWishlist(s.Basket, t))
		wishlist.DELETE("/remove", RemoveFromWishlist(s.Basket, t))
	}

	orders := api.Group("/orders", userAuth)
	{
		orders.POST("/place", PlaceOrder(s.Orders, t))
		orders.GET("/my", MyOrders(s.Orders, t))
	}

	products := api.Group("/products")
	{
		products.GET("/search", SearchProducts(s.Products, t))
		products.GET("/rating-stats", ProductRatingBreakdown(s.Products, t))
		products.GET("/detail/:pid", GetProduct(s.Products, t))
		products.GET("/detail/:pid/html", ProductCustomHTML(s.Products, t))
		products.GET("/type/:type", ProductsByType(s.Products, t))
	}

	home := api.Group("/home")
	{
		home.GET("/top-products", HomeKeyword(s.Products, t))
		home.GET("/new-arrivals", HomeSection(s.Products, "new-arrivals", t))
		home.GET("/best-selling", HomeSection(s.Products, "best-selling", t))
		home.GET("/top-rated", HomeSection(s.Products, "top-rated", t))
		home.GET("/products-by-type", ProductsByType(s.Products, t))
		home.GET("/sliders/view", PublishedSliders(s.Content, t))
	}

	filters := api.Group("/filters")
	{
		filters.GET("/brands", GetFilterOptions(s.Taxonomy, taxonomy.Brand, t))
		filters.GET("/categories", GetFilterOptions(s.Taxonomy, taxonomy.Category, t))
		filters.GET("/subcategories", GetFilterOptions(s.Taxonomy, taxonomy.SubCategory, t))
	}

	reviews := api.Group("/reviews")
	{
		reviews.POST("/submit", userAuth, SubmitReview(s.Reviews, s.Accounts, t))
		reviews.GET("/breakdown/:pid", ReviewBreakdown(s.Reviews, t))
		reviews.GET("/:pid", ListReviews(s.Reviews, t))
	}

	blogs := api.Group("/blogs")
	{
		blogs.GET("/list", ListBlogs(s.Content, t))
		blogs.GET("/detail/:id", GetBlog(s.Content, t))
		blogs.GET("/top", TopBlogs(s.Content, t))
	}

	api.GET("/testimonials/view", PublishedTestimonials(s.Content, t))
	api.POST("/contact/subscribe", Subscribe(s.Content, t))
	api.GET("/contact/unsubscribe/:id", Unsubscribe(s.Content, t))

	api.POST("/admin/login", AdminLogin(s.Accounts, t))

	admin := api.Group("/admin", middleware.AdminAuth(cfg.JWTSecret))
	{
		admin.GET("/users", GetAllUsers(s.Accounts, t))
		admin.PATCH("/users/status/:uid", ToggleUserStatus(s.Accounts, t))

		admin.GET("/products/view", GetAllProducts(s.Products, t))
		admin.POST("/products/add", CreateProduct(s.Products, t))
		admin.PUT("/products/update/:pid", UpdateProduct(s.Products, t))
		admin.PUT("/products/delete/:pid", DeleteProduct(s.Products, t))
		admin.PUT("/products/toggle-show-discount/:pid", ToggleShowDiscount(s.Products, t))
		admin.GET("/products/check-prdtype", CheckPrdTypeCount(s.Products, t))
		admin.GET("/products/custom-html/:pid", GetCustomHTML(s.Products, t))
		admin.PUT("/products/custom-html/:pid", SaveCustomHTML(s.Products, t))

		admin.GET("/taxonomy/:kind", SearchTaxonomy(s.Taxonomy, t))
		admin.POST("/taxonomy/:kind", CreateTaxonomy(s.Taxonomy, t))
		admin.DELETE("/taxonomy/:kind/:id", DeleteTaxonomy(s.Taxonomy, t))

		admin.GET("/orders", GetOrders(s.Orders, t))
		admin.PATCH("/orders/:orderId/status", UpdateOrderStatus(s.Orders, t))
		admin.DELETE("/orders/:orderId", DeleteOrder(s.Orders, t))

		admin.POST("/blogs/add", CreateBlog(s.Content, t))
		admin.GET("/blogs/view", ListAllBlogs(s.Content, t))
		admin.PUT("/blogs/update/:id", UpdateBlog(s.Content, t))
		admin.PUT("/blogs/toggle-status/:id", ToggleBlog(s.Content, t))
		admin.PUT("/blogs/delete/:id", DeleteBlog(s.Content, t))

		admin.POST("/sliders/add", CreateSlider(s.Content, t))
		admin.GET("/sliders/view", ListAllSliders(s.Content, t))
		admin.PUT("/sliders/update/:id", UpdateSlider(s.Content, t))
		admin.PUT("/sliders/toggle-status/:id", ToggleSlider(s.Content, t))
		admin.PUT("/sliders/delete/:id", DeleteSlider(s.Content, t))

		admin.POST("/testimonials/add", CreateTestimonial(s.Content, t))
		admin.GET("/testimonials/view", ListAllTestimonials(s.Content, t))
		admin.PUT("/testimonials/toggle-status/:id", ToggleTestimonial(s.Content, t))
		admin.PUT("/testimonials/delete/:id", DeleteTestimonial(s.Content, t))
	}
}
