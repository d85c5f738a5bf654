package api

import (
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/classtrack/participation-api/docs"
	v1 "github.com/classtrack/participation-api/internal/api/handler/v1"
	"github.com/classtrack/participation-api/internal/api/middleware"
	"github.com/classtrack/participation-api/internal/config"
	"github.com/classtrack/participation-api/internal/repository"
	"github.com/classtrack/participation-api/internal/repository/dao"
	"github.com/classtrack/participation-api/internal/service"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine
}

func NewServer(conf *config.AppConfig, db *gorm.DB) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
	}

	s.MountMiddlewares()

	pointHandler, groupHandler := s.initScoringHandlers(db)
	typeHandler := s.initTypeHandler(db)
	courseHandler := s.initCourseHandler(db)
	userHandler := s.initUserHandler(db)
	s.MountHandlers(pointHandler, groupHandler, typeHandler, courseHandler, userHandler)

	return s
}

func (s *Server) initScoringHandlers(db *gorm.DB) (*v1.PointHandler, *v1.GroupHandler) {
	pointRepo := repository.NewPointRepository(dao.NewPointDAO(db))
	courseRepo := repository.NewCourseRepository(dao.NewCourseDAO(db))
	typeRepo := repository.NewParticipationTypeRepository(dao.NewParticipationTypeDAO(db))
	groupRepo := repository.NewGroupRepository(dao.NewGroupDAO(db))

	scoringSvc := service.NewScoringService(pointRepo, courseRepo, typeRepo)
	groupSvc := service.NewGroupService(groupRepo, courseRepo, scoringSvc)

	return v1.NewPointHandler(scoringSvc), v1.NewGroupHandler(groupSvc)
}

func (s *Server) initTypeHandler(db *gorm.DB) *v1.ParticipationTypeHandler {
	typeRepo := repository.NewParticipationTypeRepository(dao.NewParticipationTypeDAO(db))
	pointRepo := repository.NewPointRepository(dao.NewPointDAO(db))
	svc := service.NewParticipationTypeService(typeRepo, pointRepo)

	return v1.NewParticipationTypeHandler(svc)
}

func (s *Server) initCourseHandler(db *gorm.DB) *v1.CourseHandler {
	repo := repository.NewCourseRepository(dao.NewCourseDAO(db))
	svc := service.NewCourseService(repo)

	return v1.NewCourseHandler(svc)
}

func (s *Server) initUserHandler(db *gorm.DB) *v1.UserHandler {
	repo := repository.NewUserRepository(dao.NewUserDAO(db))
	svc := service.NewUserService(repo)

	return v1.NewUserHandler(svc)
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(pointHandler *v1.PointHandler, groupHandler *v1.GroupHandler, typeHandler *v1.ParticipationTypeHandler, courseHandler *v1.CourseHandler, userHandler *v1.UserHandler) {
	const basePath = "/api/v1"

	authenticated := s.Router.Group(basePath, middleware.NewAuthenticator(s.Config.API.JWTSigningKey).VerifyJWT())
	{
		authenticated.POST("/users", userHandler.HandleRegisterUser)
		authenticated.GET("/users/me", userHandler.HandleGetMe)

		authenticated.POST("/points", pointHandler.HandleAssignPoints)
		authenticated.PUT("/points/:pointID", pointHandler.HandleUpdatePoint)
		authenticated.DELETE("/points/:pointID", pointHandler.HandleDeletePoint)
		authenticated.GET("/students/:studentID/points", pointHandler.HandleListPoints)
		authenticated.GET("/students/:studentID/summary", pointHandler.HandleGetSummary)
		authenticated.POST("/students/:studentID/summary/recompute", pointHandler.HandleRecomputeSummary)
		authenticated.GET("/students/:studentID/history", pointHandler.HandleGetHistory)

		authenticated.GET("/participation-types", typeHandler.HandleListTypes)
		authenticated.POST("/participation-types", typeHandler.HandleCreateType)
		authenticated.GET("/participation-types/:typeID", typeHandler.HandleGetType)
		authenticated.PUT("/participation-types/:typeID", typeHandler.HandleUpdateType)
		authenticated.DELETE("/participation-types/:typeID", typeHandler.HandleDeleteType)

		authenticated.GET("/courses", courseHandler.HandleListCourses)
		authenticated.POST("/courses", courseHandler.HandleCreateCourse)
		authenticated.GET("/courses/:courseID", courseHandler.HandleGetCourse)
		authenticated.GET("/courses/:courseID/students", courseHandler.HandleListStudents)
		authenticated.POST("/courses/:courseID/students", courseHandler.HandleAddStudent)
		authenticated.GET("/courses/:courseID/points", pointHandler.HandleListCoursePoints)

		authenticated.GET("/courses/:courseID/groups", groupHandler.HandleListGroupsByCourse)
		authenticated.POST("/courses/:courseID/groups/general", groupHandler.HandleCreateGeneralGroup)
		authenticated.POST("/groups/independent", groupHandler.HandleCreateIndependentGroup)
		authenticated.POST("/groups/:groupID/subgroups", groupHandler.HandleCreateSubgroup)
		authenticated.GET("/groups/:groupID", groupHandler.HandleGetGroup)
		authenticated.GET("/groups/:groupID/members", groupHandler.HandleGetGroupMembers)
		authenticated.POST("/groups/:groupID/members/:studentID", groupHandler.HandleAddGroupMember)
		authenticated.DELETE("/groups/:groupID/members/:studentID", groupHandler.HandleRemoveGroupMember)
		authenticated.PUT("/groups/:groupID/members", groupHandler.HandleReplaceMembership)
		authenticated.DELETE("/groups/:groupID", groupHandler.HandleDeleteGroup)
		authenticated.GET("/groups/:groupID/excluded-students", groupHandler.HandleListExcludedStudents)
		authenticated.POST("/groups/:groupID/points", groupHandler.HandleBulkAssignPoints)
	}

	s.Router.GET("/", v1.HandleHealthcheck)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "Classtrack Participation API"
	docs.SwaggerInfo.Description = "Participation points and group grading for classrooms."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
