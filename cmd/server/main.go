package main

import (
	"context"
	"encoding/base64"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"github.com/farisali522/birojasaapp/internal/artifact"
	"github.com/farisali522/birojasaapp/internal/config"
	"github.com/farisali522/birojasaapp/internal/db"
	"github.com/farisali522/birojasaapp/internal/handler"
	"github.com/farisali522/birojasaapp/internal/notify"
	"github.com/farisali522/birojasaapp/internal/repository"
	"github.com/farisali522/birojasaapp/internal/server"
	"github.com/farisali522/birojasaapp/internal/service"
	"github.com/farisali522/birojasaapp/internal/storage"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pg, err := db.New(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect database", "err", err)
		os.Exit(1)
	}
	defer pg.Close()

	if err := pg.Migrate(ctx); err != nil {
		logger.Error("failed to migrate database", "err", err)
		os.Exit(1)
	}

	// Firebase Auth (optional)
	var firebaseAuth *fbauth.Client
	if cfg.FirebaseProjectID != "" {
		app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.FirebaseProjectID}, firebaseOptions(cfg)...)
		if err != nil {
			logger.Error("failed to init firebase app", "err", err)
			os.Exit(1)
		}
		client, err := app.Auth(ctx)
		if err != nil {
			logger.Error("failed to init firebase auth", "err", err)
			os.Exit(1)
		}
		firebaseAuth = client
	}

	files, err := storage.NewLocalStore(cfg.UploadDir)
	if err != nil {
		logger.Error("failed to init upload storage", "err", err)
		os.Exit(1)
	}

	dispatcher := notify.NewDispatcher(notify.NewSMTPMailer(cfg), logger)
	defer dispatcher.Close()

	renderer := artifact.PDFRenderer{BusinessName: cfg.MailFromName, Logger: logger}

	// repositories
	customerRepo := repository.CustomerRepository{DB: pg}
	employeeRepo := repository.EmployeeRepository{DB: pg}
	offeringRepo := repository.OfferingRepository{DB: pg}
	documentTypeRepo := repository.DocumentTypeRepository{DB: pg}
	requirementRepo := repository.RequirementRepository{DB: pg}
	requestRepo := repository.RequestRepository{DB: pg}
	documentRepo := repository.DocumentRepository{DB: pg}
	paymentRepo := repository.PaymentRepository{DB: pg}
	auditRepo := repository.AuditRepository{DB: pg}

	if err := documentTypeRepo.SeedDefaults(ctx); err != nil {
		logger.Error("failed to seed document types", "err", err)
		os.Exit(1)
	}

	// services
	identitySvc := service.IdentityService{
		Config:       cfg,
		Customers:    customerRepo,
		Employees:    employeeRepo,
		Notifier:     dispatcher,
		Logger:       logger,
		FirebaseAuth: firebaseAuth,
	}
	requirementSvc := service.RequirementService{Requirements: requirementRepo, Offerings: offeringRepo}
	billingSvc := service.BillingService{Payments: paymentRepo, Audit: auditRepo}
	lifecycleSvc := service.LifecycleService{
		Requests:     requestRepo,
		Documents:    documentRepo,
		Customers:    customerRepo,
		Employees:    employeeRepo,
		Offerings:    offeringRepo,
		Requirements: requirementSvc,
		Billing:      billingSvc,
		Payments:     paymentRepo,
		Audit:        auditRepo,
		Notifier:     dispatcher,
		Renderer:     renderer,
		Files:        files,
		Logger:       logger,
		BaseURL:      cfg.PublicBaseURL,
	}

	// handlers
	healthHandler := handler.HealthHandler{DB: pg}
	authHandler := handler.AuthHandler{Service: &identitySvc}
	requestHandler := handler.RequestHandler{
		Identity:  &identitySvc,
		Lifecycle: lifecycleSvc,
		Requests:  requestRepo,
		Documents: documentRepo,
		Payments:  paymentRepo,
		Audit:     auditRepo,
		Customers: customerRepo,
	}
	staffAdminHandler := handler.StaffAdminHandler{
		Identity:     &identitySvc,
		Lifecycle:    lifecycleSvc,
		Requirements: requirementSvc,
		Requests:     requestRepo,
		Documents:    documentRepo,
		Payments:     paymentRepo,
		Audit:        auditRepo,
		Employees:    employeeRepo,
	}
	financeHandler := handler.FinanceHandler{
		Identity:  &identitySvc,
		Lifecycle: lifecycleSvc,
		Payments:  paymentRepo,
		Requests:  requestRepo,
		Audit:     auditRepo,
	}
	fieldHandler := handler.FieldHandler{
		Identity:  &identitySvc,
		Lifecycle: lifecycleSvc,
		Requests:  requestRepo,
		Documents: documentRepo,
		Audit:     auditRepo,
	}
	masterDataHandler := handler.MasterDataHandler{
		Identity:      &identitySvc,
		Requirements:  requirementSvc,
		Offerings:     offeringRepo,
		DocumentTypes: documentTypeRepo,
		Employees:     employeeRepo,
	}
	reportHandler := handler.ReportHandler{
		Payments:  paymentRepo,
		Requests:  requestRepo,
		Customers: customerRepo,
		PDF:       renderer,
	}

	router := server.NewRouter(cfg, logger,
		healthHandler, authHandler, requestHandler, staffAdminHandler,
		financeHandler, fieldHandler, masterDataHandler, reportHandler)

	if err := server.Start(ctx, cfg, router, logger); err != nil {
		logger.Error("server error", "err", err)
		os.Exit(1)
	}
}

func firebaseOptions(cfg config.Config) []option.ClientOption {
	if cfg.FirebaseCredFile == "" {
		return nil
	}

	cred := cfg.FirebaseCredFile
	// Allow inline JSON or base64-encoded JSON in env to avoid writing a file.
	if strings.HasPrefix(strings.TrimSpace(cred), "{") {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(cred))}
	}
	if decoded, err := base64.StdEncoding.DecodeString(cred); err == nil && strings.HasPrefix(strings.TrimSpace(string(decoded)), "{") {
		return []option.ClientOption{option.WithCredentialsJSON(decoded)}
	}

	return []option.ClientOption{option.WithCredentialsFile(cred)}
}
