package api

import (
	"net/http"

	"nutriplat/coaching-api/internal/domain"
	"nutriplat/coaching-api/internal/service"

	"github.com/gin-gonic/gin"
)

// SetupRoutes wires every handler into the router. Role middleware gives a
// fast 403 for clearly out-of-role requests; the services re-check roles
// and ownership against the store on every call.
func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	userService service.UserService,
	planService service.NutritionPlanService,
	routineService service.WorkoutRoutineService,
	progressService service.ProgressService,
) {
	authHandler := NewAuthHandler(authService)
	userHandler := NewUserHandler(userService)
	planHandler := NewNutritionPlanHandler(planService)
	routineHandler := NewWorkoutRoutineHandler(routineService)
	progressHandler := NewProgressHandler(progressService)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		// --- Users, profile and linking ---
		userGroup := protected.Group("/users")
		{
			userGroup.GET("/me", userHandler.GetMe)
			userGroup.PUT("/me", userHandler.UpdateMe)

			// Client side of the linking model
			userGroup.GET("/me/nutritionist", RoleMiddleware(domain.RoleClient), userHandler.GetMyNutritionist)
			userGroup.GET("/me/trainer", RoleMiddleware(domain.RoleClient), userHandler.GetMyTrainer)

			// Professional side of the linking model
			professionalOnly := RoleMiddleware(domain.RoleNutritionist, domain.RoleTrainer)
			userGroup.GET("/me/clients", professionalOnly, userHandler.GetMyClients)
			userGroup.POST("/me/clients/:clientId/link", professionalOnly, userHandler.LinkClient)
			userGroup.DELETE("/me/clients/:clientId/link", professionalOnly, userHandler.UnlinkClient)

			// Directory
			userGroup.GET("/clients", RoleMiddleware(domain.RoleNutritionist, domain.RoleTrainer, domain.RoleAdmin), userHandler.GetClients)
			userGroup.GET("/:id", userHandler.GetUserByID)

			// Admin
			adminGroup := userGroup.Group("/admin")
			adminGroup.Use(RoleMiddleware(domain.RoleAdmin))
			{
				adminGroup.GET("/users", userHandler.GetAllUsers)
				adminGroup.PUT("/users/:id/role", userHandler.UpdateUserRole)
				adminGroup.DELETE("/users/:id", userHandler.DeleteUser)
			}
		}

		// --- Nutrition plans ---
		planGroup := protected.Group("/nutrition-plans")
		{
			planGroup.GET("", planHandler.GetPlans)
			planGroup.GET("/client/my", RoleMiddleware(domain.RoleClient), planHandler.GetMyAssignedPlans)
			planGroup.GET("/nutritionist/assigned", RoleMiddleware(domain.RoleNutritionist), planHandler.GetPlansIAssigned)
			planGroup.GET("/:id", planHandler.GetPlan)

			nutritionistOrAdmin := RoleMiddleware(domain.RoleNutritionist, domain.RoleAdmin)
			planGroup.POST("", nutritionistOrAdmin, planHandler.CreatePlan)
			planGroup.PUT("/:id", nutritionistOrAdmin, planHandler.UpdatePlan)
			planGroup.DELETE("/:id", nutritionistOrAdmin, planHandler.DeletePlan)
			planGroup.POST("/:id/assign", RoleMiddleware(domain.RoleNutritionist), planHandler.AssignPlan)
			planGroup.DELETE("/:id/assign/:clientId", nutritionistOrAdmin, planHandler.UnassignPlan)
		}

		// --- Workout routines ---
		routineGroup := protected.Group("/workout-routines")
		{
			routineGroup.GET("", routineHandler.GetRoutines)
			routineGroup.GET("/client/my", RoleMiddleware(domain.RoleClient), routineHandler.GetMyAssignedRoutines)
			routineGroup.GET("/trainer/assigned", RoleMiddleware(domain.RoleTrainer), routineHandler.GetRoutinesIAssigned)
			routineGroup.GET("/:id", routineHandler.GetRoutine)

			trainerOrAdmin := RoleMiddleware(domain.RoleTrainer, domain.RoleAdmin)
			routineGroup.POST("", trainerOrAdmin, routineHandler.CreateRoutine)
			routineGroup.PUT("/:id", trainerOrAdmin, routineHandler.UpdateRoutine)
			routineGroup.DELETE("/:id", trainerOrAdmin, routineHandler.DeleteRoutine)
			routineGroup.POST("/:id/assign", RoleMiddleware(domain.RoleTrainer), routineHandler.AssignRoutine)
			routineGroup.DELETE("/:id/assign/:clientId", trainerOrAdmin, routineHandler.UnassignRoutine)
		}

		// --- Progress tracking ---
		progressGroup := protected.Group("/progress")
		{
			clientOnly := RoleMiddleware(domain.RoleClient)
			progressGroup.POST("", clientOnly, progressHandler.CreateEntry)
			progressGroup.GET("/my", clientOnly, progressHandler.GetMyEntries)
			progressGroup.POST("/photos/upload-url", clientOnly, progressHandler.RequestPhotoUpload)

			// Read access for linked professionals is decided by the
			// service at call time, not by route middleware.
			progressGroup.GET("/client/:clientId", progressHandler.GetClientEntries)
			progressGroup.GET("/:id", progressHandler.GetEntry)

			progressGroup.PUT("/:id", clientOnly, progressHandler.UpdateEntry)
			progressGroup.DELETE("/:id", RoleMiddleware(domain.RoleClient, domain.RoleAdmin), progressHandler.DeleteEntry)
			progressGroup.POST("/:id/photos", clientOnly, progressHandler.AttachPhoto)
		}
	}
}
