package server

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"crmcore/internal/middleware"
	"crmcore/internal/modules/auth"
	"crmcore/internal/modules/company"
	"crmcore/internal/modules/contact"
	"crmcore/internal/modules/geo"
	"crmcore/internal/modules/lead"
	"crmcore/internal/modules/opportunity"
	"crmcore/internal/modules/review"
	"crmcore/internal/pkg/events"
	jwtsvc "crmcore/internal/pkg/jwt"
	"crmcore/internal/repository"
)

// New wires repositories, services and routes into a gin engine. Both the
// binary and the scenario tests go through here so they exercise the same
// surface.
func New(db *gorm.DB, jwtSecret string, jwtTTL time.Duration) (*gin.Engine, *jwtsvc.Service) {
	j := jwtsvc.New(jwtSecret, jwtTTL)

	userRepo := repository.NewUserRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	contactRepo := repository.NewContactRepository(db)
	leadRepo := repository.NewLeadRepository(db)
	requestRepo := repository.NewConversionRequestRepository(db)
	oppRepo := repository.NewOpportunityRepository(db)
	geoRepo := repository.NewGeoRepository(db)
	conversionStore := repository.NewConversionStore(db)
	reviewStore := repository.NewReviewStore(db)

	authService := auth.NewService(userRepo, j)
	companyService := company.NewService(companyRepo, geoRepo)
	leadService := lead.NewService(leadRepo, companyRepo, contactRepo)
	contactService := contact.NewService(contactRepo, companyRepo, leadService)
	converter := lead.NewConverter(conversionStore, oppRepo, events.SlogSink{})
	hub := review.NewHub()
	reviewService := review.NewService(reviewStore, requestRepo, hub)
	oppService := opportunity.NewService(oppRepo)

	authHandler := auth.NewHandler(authService)
	companyHandler := company.NewHandler(companyService)
	contactHandler := contact.NewHandler(contactService)
	leadHandler := lead.NewHandler(leadService, converter)
	reviewHandler := review.NewHandler(reviewService, hub)
	oppHandler := opportunity.NewHandler(oppService)
	geoHandler := geo.NewHandler(geoRepo)

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.Recovery(),
		middleware.CORS(),
	)

	v1 := r.Group("/api/v1")
	{
		// public
		authHandler.RegisterRoutes(v1)
		geoHandler.RegisterRoutes(v1)

		protected := v1.Group("/")
		protected.Use(middleware.Auth(j))
		{
			companyHandler.RegisterRoutes(protected)
			contactHandler.RegisterRoutes(protected)
			leadHandler.RegisterRoutes(protected)
			reviewHandler.RegisterRoutes(protected)
			oppHandler.RegisterRoutes(protected)
		}
	}

	return r, j
}
