package api

import (
	"promptgallery-backend/config"
	"promptgallery-backend/internal/api/v1/auth"
	"promptgallery-backend/internal/api/v1/category"
	"promptgallery-backend/internal/api/v1/common/upload"
	"promptgallery-backend/internal/api/v1/prompt"
	userRoutes "promptgallery-backend/internal/api/v1/user"
	"promptgallery-backend/internal/middleware"
	"promptgallery-backend/internal/services"
	"promptgallery-backend/internal/storage"
	"promptgallery-backend/internal/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Dependencies are the services the HTTP layer is built on.
type Dependencies struct {
	Catalog *services.CatalogService
	Users   *services.UserService
	// Tokens issues direct-upload credentials; nil disables the endpoint.
	Tokens storage.TokenIssuer
}

func NewRouter(cfg *config.Config, deps Dependencies) *gin.Engine {
	utils.RegisterJSONTagNames()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.Timeout(cfg.RequestTimeout))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum age for preflight requests
	}))

	authn := middleware.NewAuthenticator(deps.Users, cfg.JWTSecret, cfg.JWTIssuer)

	v1 := router.Group("/api/v1")
	{
		category.RegisterRoutes(v1)
		prompt.RegisterRoutes(v1, prompt.NewHandler(deps.Catalog), authn)
		auth.RegisterRoutes(v1, authn)

		authorized := v1.Group("/")
		authorized.Use(authn.AuthMiddleware())
		{
			userRoutes.RegisterRoutes(authorized, userRoutes.NewHandler(deps.Users, deps.Catalog))
			upload.RegisterRoutes(authorized, deps.Tokens)
		}
	}

	return router
}
