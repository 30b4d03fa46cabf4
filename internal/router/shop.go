package router

import "github.com/gin-gonic/gin"

func (r *Router) orderRoutes(engine *gin.Engine) {
	order := engine.Group("/order")
	order.Use(r.authMw.RequireToken())
	{
		order.POST("", r.handlers.Order.Place)
		order.PUT("", r.handlers.Order.Merge)
		order.GET("", r.handlers.Order.Get)
		order.DELETE("", r.handlers.Order.Clear)

		order.GET("/menu", r.handlers.Order.Menu)
	}
}

func (r *Router) checkoutRoutes(engine *gin.Engine) {
	checkout := engine.Group("/checkout")
	checkout.Use(r.authMw.RequireToken())
	{
		checkout.POST("", r.handlers.Checkout.Create)
		checkout.GET("", r.handlers.Checkout.Get)
		checkout.PUT("", r.handlers.Checkout.Update)
		checkout.DELETE("", r.handlers.Checkout.Cancel)

		checkout.POST("/sendInvoice", r.handlers.Checkout.SendInvoice)
	}
}

func (r *Router) imageRoutes(engine *gin.Engine) {
	images := engine.Group("/images")
	images.Use(r.authMw.RequireToken())
	{
		images.GET("", r.handlers.Image.Search)
	}
}
