package http

import (
	"github.com/circley-tech/storefront/internal/usecase"
	"github.com/circley-tech/storefront/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// UseCases — всё, что нужно обработчикам HTTP.
type UseCases struct {
	Cart      usecase.CartUC
	Checkout  usecase.CheckoutUC
	Order     usecase.OrderUC
	Catalog   usecase.CatalogUC
	Promotion usecase.PromotionUC
	Customer  usecase.CustomerUC
	News      usecase.NewsUC
	Contact   usecase.ContactUC
}

type Router struct {
	router *chi.Mux
	logger logger.Logger
}

func NewRouter(router *chi.Mux, logger logger.Logger) *Router {
	return &Router{router: router, logger: logger}
}

func (r *Router) Init(uc UseCases) {
	r.router.Use(middleware.RequestID, middleware.RealIP, requestLogger(r.logger), middleware.Recoverer)

	catalog := NewCatalogHandler(uc.Catalog, r.logger)
	cart := NewCartHandler(uc.Cart, uc.Checkout, r.logger)
	orders := NewOrderHandler(uc.Order, r.logger)
	promotions := NewPromotionHandler(uc.Promotion, r.logger)
	customers := NewCustomerHandler(uc.Customer, r.logger)
	content := NewContentHandler(uc.News, uc.Contact, r.logger)

	r.router.Route("/api/v1", func(v1 chi.Router) {
		registerPublicRoutes(v1, catalog, promotions, customers, content)

		v1.Group(func(c chi.Router) {
			c.Use(requireCustomer(r.logger))
			registerCustomerRoutes(c, cart, orders, customers)
		})

		v1.Route("/admin", func(admin chi.Router) {
			admin.Use(requireAdmin(r.logger))
			registerAdminRoutes(admin, catalog, orders, promotions, customers, content)
		})
	})
}

func registerPublicRoutes(
	router chi.Router,
	catalog *CatalogHandler,
	promotions *PromotionHandler,
	customers *CustomerHandler,
	content *ContentHandler,
) {
	router.Get("/products", catalog.listProducts)
	router.Get("/products/info", catalog.productsInfo)
	router.Get("/categories", catalog.listCategories)
	router.Get("/promotions", promotions.listCurrent)
	router.Get("/news", content.listNews)
	router.Post("/contact", content.sendMessage)
	router.Post("/customers", customers.register)
}

func registerCustomerRoutes(router chi.Router, cart *CartHandler, orders *OrderHandler, customers *CustomerHandler) {
	router.Get("/me", customers.me)

	router.Route("/cart", func(c chi.Router) {
		c.Get("/", cart.getCart)
		c.Post("/items", cart.addItem)
		c.Patch("/items/{lineID}", cart.updateItem)
		c.Delete("/items/{lineID}", cart.removeItem)
	})
	router.Post("/checkout", cart.checkout)

	router.Route("/orders", func(o chi.Router) {
		o.Get("/", orders.listMyOrders)
		o.Get("/{orderID}", orders.getMyOrder)
		o.Post("/{orderID}/confirm", orders.confirmMyOrder)
	})
}

func registerAdminRoutes(
	router chi.Router,
	catalog *CatalogHandler,
	orders *OrderHandler,
	promotions *PromotionHandler,
	customers *CustomerHandler,
	content *ContentHandler,
) {
	router.Get("/dashboard", customers.dashboard)

	router.Route("/customers", func(c chi.Router) {
		c.Get("/", customers.list)
		c.Patch("/{customerID}", customers.update)
		c.Delete("/{customerID}", customers.delete)
	})

	router.Route("/categories", func(c chi.Router) {
		c.Post("/", catalog.createCategory)
		c.Patch("/{categoryID}", catalog.updateCategory)
		c.Delete("/{categoryID}", catalog.archiveCategory)
	})

	router.Route("/products", func(pr chi.Router) {
		pr.Post("/", catalog.createProduct)
		pr.Patch("/{productID}", catalog.updateProduct)
		pr.Delete("/{productID}", catalog.deleteProduct)
		pr.Post("/{productID}/images", catalog.uploadImages)
	})

	router.Route("/promotions", func(p chi.Router) {
		p.Get("/", promotions.listAll)
		p.Post("/", promotions.create)
		p.Patch("/{promotionID}", promotions.update)
		p.Delete("/{promotionID}", promotions.delete)
		p.Put("/{promotionID}/products", promotions.setProducts)
	})

	router.Route("/news", func(n chi.Router) {
		n.Post("/", content.createNews)
		n.Patch("/{newsID}", content.updateNews)
		n.Delete("/{newsID}", content.deleteNews)
	})

	router.Route("/messages", func(m chi.Router) {
		m.Get("/", content.listMessages)
		m.Patch("/{messageID}", content.setMessageRead)
	})

	router.Route("/orders", func(o chi.Router) {
		o.Get("/", orders.listOrders)
		o.Get("/{orderID}", orders.getOrder)
		o.Patch("/{orderID}/status", orders.updateStatus)
		o.Post("/{orderID}/confirm", orders.confirmOrder)
	})
}
