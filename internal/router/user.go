package router

import "github.com/gin-gonic/gin"

func (r *Router) userRoutes(engine *gin.Engine) {
	users := engine.Group("/users")
	{
		// Registration is public
		users.POST("", r.rateLimit(), r.handlers.User.Create)

		protected := users.Group("")
		protected.Use(r.authMw.RequireToken())
		{
			protected.GET("", r.handlers.User.Get)
			protected.PUT("", r.handlers.User.Update)
			protected.DELETE("", r.handlers.User.Delete)
		}
	}
}

func (r *Router) tokenRoutes(engine *gin.Engine) {
	tokens := engine.Group("/tokens")
	{
		// Login with email and password
		tokens.POST("", r.rateLimit(), r.handlers.Token.Create)

		protected := tokens.Group("")
		protected.Use(r.authMw.RequireToken())
		{
			protected.GET("", r.handlers.Token.Get)
			protected.PUT("", r.handlers.Token.Extend)
			protected.DELETE("", r.handlers.Token.Delete)
		}
	}
}
