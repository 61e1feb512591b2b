package api

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/welldanyogia/webrana-teammail-backend/internal/api/handlers"
	"github.com/welldanyogia/webrana-teammail-backend/internal/api/middleware"
	"github.com/welldanyogia/webrana-teammail-backend/internal/config"
	"github.com/welldanyogia/webrana-teammail-backend/internal/logger"
	"github.com/welldanyogia/webrana-teammail-backend/internal/mailer"
	"github.com/welldanyogia/webrana-teammail-backend/internal/repository"
	"github.com/welldanyogia/webrana-teammail-backend/internal/services"
	"github.com/welldanyogia/webrana-teammail-backend/internal/storage"
	"gorm.io/gorm"
)

// maxBodySize caps webhook and send bodies; several attachments of up to
// storage.MaxFileSize each must fit.
const maxBodySize = "64M"

// RouterConfig holds dependencies for the router
type RouterConfig struct {
	DB          *gorm.DB
	FileStorage storage.FileStorage
	Transports  mailer.Factory
	Config      *config.Config
	Logger      *slog.Logger
	Security    *logger.SecurityLogger
}

// NewRouter creates and configures the Echo router with all routes
func NewRouter(cfg *RouterConfig) *echo.Echo {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	security := cfg.Security
	if security == nil {
		security = logger.NewSecurityLogger(log)
	}
	conf := cfg.Config

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Recover())
	e.Use(middleware.SecureHeaders())
	e.Use(middleware.SecureCORS(conf.Origins(), conf.AppEnv))
	e.Use(middleware.RateLimiter(conf.RateLimitRequests, conf.RateLimitBurst, security))
	e.Use(middleware.RequestLogger(log))

	// Repositories
	emailRepo := repository.NewEmailRepository(cfg.DB)
	addressRepo := repository.NewEmailAddressRepository(cfg.DB)
	domainRepo := repository.NewDomainRepository(cfg.DB)
	labelRepo := repository.NewLabelRepository(cfg.DB)
	attachmentRepo := repository.NewAttachmentRepository(cfg.DB)
	integrationRepo := repository.NewIntegrationRepository(cfg.DB)

	// Services
	domains := services.NewDomainRegistry(domainRepo)
	directory := services.NewMailboxDirectory(addressRepo, domainRepo)
	resolver := services.NewThreadResolver(emailRepo, log)
	guard := services.NewAccessGuard(emailRepo, addressRepo, security)
	processor := services.NewInboundProcessor(integrationRepo, emailRepo, labelRepo, directory, resolver, cfg.FileStorage,
		services.InboundConfig{
			MaxSkew:               conf.WebhookMaxSkew,
			AttachmentConcurrency: conf.AttachmentConcurrency,
			PublicBaseURL:         conf.PublicBaseURL,
		}, log)
	dispatcher := services.NewOutboundDispatcher(integrationRepo, emailRepo, labelRepo, directory, resolver, guard,
		cfg.Transports, cfg.FileStorage,
		services.OutboundConfig{
			AttachmentConcurrency: conf.AttachmentConcurrency,
			PublicBaseURL:         conf.PublicBaseURL,
		}, log)
	query := services.NewConversationQuery(emailRepo, addressRepo, guard, security, conf.PublicBaseURL)
	messages := services.NewMessageService(emailRepo, attachmentRepo, guard, cfg.FileStorage)
	labels := services.NewLabelService(labelRepo, emailRepo, guard)
	integrations := services.NewIntegrationService(integrationRepo)

	// Handlers
	healthHandler := handlers.NewHealthHandler(cfg.DB)
	webhookHandler := handlers.NewWebhookHandler(processor, security, conf.WebhookTimeout)
	conversationHandler := handlers.NewConversationHandler(query)
	mailingHandler := handlers.NewMailingHandler(dispatcher, messages, labels, security)
	domainHandler := handlers.NewDomainHandler(domains)
	addressHandler := handlers.NewEmailAddressHandler(directory)
	labelHandler := handlers.NewLabelHandler(labels)
	integrationHandler := handlers.NewIntegrationHandler(integrations, security)

	// Health routes (no auth required)
	e.GET("/health", healthHandler.Health)
	e.GET("/ready", healthHandler.Ready)

	// Provider webhooks authenticate by signature
	e.POST("/webhooks/:provider/:teamId", webhookHandler.Receive, middleware.BodyLimit(maxBodySize))

	teams := e.Group("/teams/:teamId",
		middleware.APIKeyAuth(conf.APIKey, security),
		middleware.TeamIdentity(security),
	)
	RegisterTeamRoutes(teams, &TeamHandlers{
		Conversations: conversationHandler,
		Mailing:       mailingHandler,
		Domains:       domainHandler,
		Addresses:     addressHandler,
		Labels:        labelHandler,
		Integrations:  integrationHandler,
	})

	return e
}

// TeamHandlers groups the handlers served under /teams/:teamId
type TeamHandlers struct {
	Conversations *handlers.ConversationHandler
	Mailing       *handlers.MailingHandler
	Domains       *handlers.DomainHandler
	Addresses     *handlers.EmailAddressHandler
	Labels        *handlers.LabelHandler
	Integrations  *handlers.IntegrationHandler
}

// RegisterTeamRoutes mounts the authenticated team routes on g
func RegisterTeamRoutes(g *echo.Group, h *TeamHandlers) {
	// Mailing; static segments are registered before :chainId
	mailing := g.Group("/mailing")
	mailing.POST("/send", h.Mailing.Send, middleware.BodyLimit(maxBodySize))
	mailing.PATCH("/emails/:emailId/read", h.Mailing.MarkRead)
	mailing.PATCH("/emails/:emailId/star", h.Mailing.Star)
	mailing.POST("/emails/:emailId/labels/:labelId", h.Mailing.AddLabel)
	mailing.DELETE("/emails/:emailId/labels/:labelId", h.Mailing.RemoveLabel)
	mailing.GET("/attachments/:attachmentId/download", h.Mailing.DownloadAttachment)
	mailing.GET("/:chainId", h.Conversations.Chain)
	mailing.GET("/:chainId/emails", h.Conversations.ChainEmails)

	// Members
	g.GET("/members/:memberId/conversations", h.Conversations.List)
	g.GET("/members/:memberId/email-addresses", h.Addresses.ListByMember)

	// Domains
	g.GET("/domains", h.Domains.List)
	g.POST("/domains", h.Domains.Create)
	g.GET("/domains/:domainId", h.Domains.Get)
	g.DELETE("/domains/:domainId", h.Domains.Delete)
	g.PATCH("/domains/:domainId/active", h.Domains.SetActive)

	// Email addresses
	g.GET("/email-addresses", h.Addresses.List)
	g.POST("/email-addresses", h.Addresses.Create)
	g.DELETE("/email-addresses/:addressId", h.Addresses.Delete)
	g.PATCH("/email-addresses/:addressId/default", h.Addresses.SetDefault)

	// Labels
	g.GET("/labels", h.Labels.List)
	g.POST("/labels", h.Labels.Create)
	g.PUT("/labels/:labelId", h.Labels.Update)
	g.DELETE("/labels/:labelId", h.Labels.Delete)

	// Integrations
	g.GET("/integrations/:type", h.Integrations.Get)
	g.PUT("/integrations/:type", h.Integrations.Put)
}
