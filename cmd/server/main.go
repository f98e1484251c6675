package main

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"lifehub/internal/config"
	"lifehub/internal/handler"
	"lifehub/internal/middleware"
	"lifehub/internal/model"
	"lifehub/internal/repository"
	"lifehub/internal/service"
	"lifehub/pkg/database"
	"lifehub/pkg/token"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db := database.Connect()
	if err := migrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	if cfg.AppEnv == "development" {
		if err := seedAdminUser(db, cfg); err != nil {
			log.Fatalf("failed to seed admin user: %v", err)
		}
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("invalid REDIS_URL: %v", err)
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("failed to connect redis: %v", err)
	}

	tokens := token.NewManager(cfg.JWTSecret, cfg.AccessTTL, cfg.RefreshTTL)
	blacklist := token.NewRedisBlacklist(redisClient)

	userRepo := repository.NewUserRepository(db)
	authService := service.NewAuthService(userRepo, tokens, blacklist)
	authHandler := handler.NewAuthHandler(authService)

	noteRepo := repository.NewNoteRepository(db)
	noteService := service.NewNoteService(noteRepo)
	noteHandler := handler.NewNoteHandler(noteService)

	postRepo := repository.NewPostRepository(db)
	postService := service.NewPostService(postRepo)
	postHandler := handler.NewPostHandler(postService)

	linkRepo := repository.NewLinkRepository(db)
	linkService := service.NewLinkService(linkRepo)
	linkHandler := handler.NewLinkHandler(linkService)

	tagRepo := repository.NewTagRepository(db)
	tagService := service.NewTagService(tagRepo)
	tagHandler := handler.NewTagHandler(tagService)

	ingredientRepo := repository.NewIngredientRepository(db)
	ingredientService := service.NewIngredientService(ingredientRepo)
	ingredientHandler := handler.NewIngredientHandler(ingredientService)

	recipeRepo := repository.NewRecipeRepository(db)
	recipeService := service.NewRecipeService(recipeRepo, tagRepo, ingredientRepo)
	recipeHandler := handler.NewRecipeHandler(recipeService)

	commentRepo := repository.NewCommentRepository(db)
	commentService := service.NewCommentService(commentRepo, recipeRepo)
	commentHandler := handler.NewCommentHandler(commentService)

	authMiddleware := middleware.NewAuthMiddleware(tokens)

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(cfg.AllowedOrigins, ","),
		AllowMethods:     []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Short code redirects live outside /api.
	router.GET("/r/:code", linkHandler.Redirect)

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/token", authHandler.Token)
			auth.POST("/token/refresh", authHandler.RefreshToken)
		}

		// Publicly readable routes. OptionalAuth resolves the actor when a
		// token is present so list scoping works for owners and admins.
		public := api.Group("")
		public.Use(authMiddleware.OptionalAuth())
		{
			public.GET("/notes", noteHandler.GetAllNotes)
			public.GET("/notes/:id", noteHandler.GetNote)
			public.GET("/posts", postHandler.GetAllPosts)
			public.GET("/posts/:id", postHandler.GetPost)
			public.GET("/links", linkHandler.GetAllLinks)
			public.GET("/links/:id", linkHandler.GetLink)
			public.GET("/recipes", recipeHandler.GetAllRecipes)
			public.GET("/recipes/:id", recipeHandler.GetRecipe)
			public.GET("/recipes/:id/comments", commentHandler.GetCommentsByRecipe)
			public.GET("/comments/:id", commentHandler.GetComment)
			public.GET("/tags", tagHandler.GetAllTags)
			public.GET("/ingredients", ingredientHandler.GetAllIngredients)
		}

		protected := api.Group("")
		protected.Use(authMiddleware.RequireAuth())
		{
			protected.POST("/auth/logout", authHandler.Logout)
			protected.GET("/auth/profile", authHandler.GetProfile)
			protected.PATCH("/auth/profile", authHandler.UpdateProfile)
			protected.PUT("/auth/change-password", authHandler.ChangePassword)

			protected.POST("/notes", noteHandler.CreateNote)
			protected.PATCH("/notes/:id", noteHandler.UpdateNote)
			protected.DELETE("/notes/:id", noteHandler.DeleteNote)

			protected.POST("/posts", postHandler.CreatePost)
			protected.PATCH("/posts/:id", postHandler.UpdatePost)
			protected.DELETE("/posts/:id", postHandler.DeletePost)

			protected.POST("/links", linkHandler.CreateLink)
			protected.PATCH("/links/:id", linkHandler.UpdateLink)
			protected.DELETE("/links/:id", linkHandler.DeleteLink)

			protected.POST("/recipes", recipeHandler.CreateRecipe)
			protected.PATCH("/recipes/:id", recipeHandler.UpdateRecipe)
			protected.DELETE("/recipes/:id", recipeHandler.DeleteRecipe)
			protected.POST("/recipes/:id/favorite", recipeHandler.FavoriteRecipe)
			protected.DELETE("/recipes/:id/favorite", recipeHandler.UnfavoriteRecipe)
			protected.POST("/recipes/:id/rating", recipeHandler.RateRecipe)
			protected.DELETE("/recipes/:id/rating", recipeHandler.UnrateRecipe)
			protected.POST("/recipes/:id/comments", commentHandler.CreateComment)
			protected.PATCH("/comments/:id", commentHandler.UpdateComment)
			protected.DELETE("/comments/:id", commentHandler.DeleteComment)

			protected.POST("/shopping-list", recipeHandler.ShoppingList)

			admin := protected.Group("")
			admin.Use(authMiddleware.RequireAdmin())
			{
				admin.POST("/tags", tagHandler.CreateTag)
				admin.PATCH("/tags/:id", tagHandler.UpdateTag)
				admin.DELETE("/tags/:id", tagHandler.DeleteTag)
				admin.POST("/ingredients", ingredientHandler.CreateIngredient)
				admin.PATCH("/ingredients/:id", ingredientHandler.UpdateIngredient)
				admin.DELETE("/ingredients/:id", ingredientHandler.DeleteIngredient)
			}
		}
	}

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Note{},
		&model.Post{},
		&model.Link{},
		&model.Tag{},
		&model.Ingredient{},
		&model.Recipe{},
		&model.RecipeIngredient{},
		&model.Favorite{},
		&model.Rating{},
		&model.Comment{},
	)
}

func seedAdminUser(db *gorm.DB, cfg *config.Config) error {
	var count int64
	if err := db.Model(&model.User{}).
		Where("email = ?", cfg.AdminEmail).
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("Admin user already exists, skipping seed")
		return nil
	}

	password := cfg.AdminPassword
	if password == "" {
		password = "admin123"
	}

	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	adminUser := model.User{
		Email:        cfg.AdminEmail,
		PasswordHash: string(hashedPasswordBytes),
		Role:         model.RoleAdmin,
		FirstName:    "Admin",
		IsActive:     true,
		IsStaff:      true,
	}

	if err := db.Create(&adminUser).Error; err != nil {
		return err
	}

	log.Printf("✅ Admin user seeded: %s", cfg.AdminEmail)

	return nil
}
