package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	listingapp "staybook/internal/app/handlers/listings"
	reservationapp "staybook/internal/app/handlers/reservation"
	"staybook/internal/app/locking"
	"staybook/internal/app/middleware"
	appoutbox "staybook/internal/app/outbox"
	"staybook/internal/app/queries"
	"staybook/internal/app/schedule"
	authsvc "staybook/internal/app/services/auth"
	appuow "staybook/internal/app/uow"
	"staybook/internal/domain/listings"
	domainreservation "staybook/internal/domain/reservation"
	domainrange "staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
	"staybook/internal/infra/broker/kafka"
	"staybook/internal/infra/config"
	mongodb "staybook/internal/infra/db/mongo"
	ginserver "staybook/internal/infra/http/gin"
	"staybook/internal/infra/obs"
	infraoutbox "staybook/internal/infra/outbox"
	"staybook/internal/infra/security"
	"staybook/internal/infra/storage/memory"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := getenv("APP_ENV", "dev")
	logger := obs.NewLogger(env)

	cfg, err := config.Load()
	if err != nil {
		logger.Warn("using fallback configuration", "error", err)
		cfg.Env = env
		cfg.HTTPAddr = getenv("HTTP_ADDR", ":8080")
		cfg.StorageMode = "memory"
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}

	app, err := buildApplication(cfg, logger)
	if err != nil {
		logger.Error("application wiring failed", "error", err)
		os.Exit(1)
	}
	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready: app.ready,
	}, app.handlers)

	fixturesPath := cfg.ListingFixtures
	if fixturesPath == "" {
		fixturesPath = defaultListingFixturesPath()
	}
	if err := app.loadListingFixtures(ctx, fixturesPath, logger); err != nil {
		logger.Warn("listing fixtures load failed", "error", err, "path", fixturesPath)
	}

	go func() {
		if err := app.sweeper.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("completion sweeper stopped", "error", err)
		}
	}()

	if app.worker != nil {
		go func() {
			if err := app.worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("outbox worker stopped", "error", err)
			}
		}()
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.StorageMode)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers ginserver.Handlers
	sweeper  *schedule.Sweeper
	worker   *infraoutbox.Worker
	ready    func() error
	listings listings.Repository
}

func buildApplication(cfg config.Config, logger *slog.Logger) (application, error) {
	usersRepo := memory.NewUserRepository()
	sessions := memory.NewSessionStore()
	idStore := memory.NewIdempotencyStore(cfg.IdempotencyTTL)

	var (
		uowFactory  appuow.UoWFactory
		appOutbox   appoutbox.Outbox
		outboxStore infraoutbox.Store
		listingRepo listings.Repository
		ready       = func() error { return nil }
	)

	// Both storage modes serialize the conflict check and insert per listing.
	// Mongo session transactions run at snapshot isolation and detect write
	// conflicts only on documents both sides write; two overlapping requests
	// insert distinct reservation documents, so the transaction alone lets
	// the read-then-insert skew through.
	locks := locking.NewKeyedMutex()

	switch cfg.StorageMode {
	case "mongo":
		client, err := mongodb.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return application{}, fmt.Errorf("mongo connect: %w", err)
		}
		listingsRepo := mongodb.NewListingRepository(client.DB)
		reservationRepo := mongodb.NewReservationRepository(client.DB)
		uowFactory = mongodb.Factory{
			DB:              client.DB,
			ListingsRepo:    listingsRepo,
			ReservationRepo: reservationRepo,
		}
		store := &infraoutbox.MongoStore{Collection: client.DB.Collection("outbox_events")}
		appOutbox = store
		outboxStore = store
		listingRepo = listingsRepo
		ready = func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return client.Ping(pingCtx)
		}
	default:
		listingsRepo := memory.NewListingRepository()
		reservationRepo := memory.NewReservationRepository()
		uowFactory = memory.Factory{
			ListingsRepo:    listingsRepo,
			ReservationRepo: reservationRepo,
		}
		box := memory.NewOutbox()
		appOutbox = box
		outboxStore = box
		listingRepo = listingsRepo
	}

	authService := &authsvc.Service{
		Users:      usersRepo,
		Sessions:   sessions,
		Passwords:  security.BcryptHasher{},
		Tokens:     security.RandomTokenGenerator{},
		SessionTTL: cfg.SessionTTL,
		Logger:     logger,
	}

	commandBus := commands.NewInMemoryBus()

	requestHandler := &reservationapp.RequestReservationHandler{
		UoWFactory:        uowFactory,
		Outbox:            appOutbox,
		Locks:             locks,
		EnforceGuestLimit: cfg.EnforceGuestLimit,
	}
	commands.RegisterHandler(commandBus, reservationapp.RequestReservationCommand{}.Key(), requestHandler)

	confirmHandler := &reservationapp.ConfirmReservationHandler{Outbox: appOutbox, Logger: logger}
	commands.RegisterHandler(commandBus, reservationapp.ConfirmReservationCommand{}.Key(), confirmHandler)

	cancelHandler := &reservationapp.CancelReservationHandler{Outbox: appOutbox, Logger: logger}
	commands.RegisterHandler(commandBus, reservationapp.CancelReservationCommand{}.Key(), cancelHandler)

	createListing := &listingapp.CreateListingHandler{Outbox: appOutbox, Logger: logger}
	commands.RegisterHandler(commandBus, listingapp.CreateListingCommand{}.Key(), createListing)

	updateListing := &listingapp.UpdateListingHandler{Outbox: appOutbox, Logger: logger}
	commands.RegisterHandler(commandBus, listingapp.UpdateListingCommand{}.Key(), updateListing)

	setAvailability := &listingapp.SetAvailabilityHandler{Outbox: appOutbox, Logger: logger}
	commands.RegisterHandler(commandBus, listingapp.SetAvailabilityCommand{}.Key(), setAvailability)

	toggleActivation := &listingapp.ToggleActivationHandler{Outbox: appOutbox, Logger: logger}
	commands.RegisterHandler(commandBus, listingapp.DeactivateListingCommand{}.Key(),
		commands.HandlerFunc[listingapp.DeactivateListingCommand, *dto.ListingDetail](toggleActivation.HandleDeactivate))
	commands.RegisterHandler(commandBus, listingapp.ReactivateListingCommand{}.Key(),
		commands.HandlerFunc[listingapp.ReactivateListingCommand, *dto.ListingDetail](toggleActivation.HandleReactivate))

	deleteListing := &listingapp.DeleteListingHandler{Outbox: appOutbox, Logger: logger}
	commands.RegisterHandler(commandBus, listingapp.DeleteListingCommand{}.Key(), deleteListing)

	moderation := &listingapp.ModerationHandler{Outbox: appOutbox, Logger: logger}
	commands.RegisterHandler(commandBus, listingapp.ApproveListingCommand{}.Key(),
		commands.HandlerFunc[listingapp.ApproveListingCommand, *dto.ListingDetail](moderation.HandleApprove))
	commands.RegisterHandler(commandBus, listingapp.RejectListingCommand{}.Key(),
		commands.HandlerFunc[listingapp.RejectListingCommand, *dto.ListingDetail](moderation.HandleReject))

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, reservationapp.ListGuestReservationsQuery{}.Key(),
		&reservationapp.ListGuestReservationsHandler{UoWFactory: uowFactory, Logger: logger})
	queries.RegisterHandler(queryBus, reservationapp.ListHostReservationsQuery{}.Key(),
		&reservationapp.ListHostReservationsHandler{UoWFactory: uowFactory, Logger: logger})
	queries.RegisterHandler(queryBus, listingapp.ListOwnListingsQuery{}.Key(),
		&listingapp.ListOwnListingsHandler{UoWFactory: uowFactory})
	queries.RegisterHandler(queryBus, listingapp.ListPendingListingsQuery{}.Key(),
		&listingapp.ListPendingListingsHandler{UoWFactory: uowFactory, Logger: logger})

	commandBusWithMiddleware := middleware.ChainCommands(
		commandBus,
		middleware.Idempotency(idStore, nil, knownDomainErrors()...),
		middleware.Transaction(uowFactory, nil),
		middleware.OutboxFlush(appOutbox),
	)
	queryBusWithMiddleware := middleware.ChainQueries(queryBus)

	var worker *infraoutbox.Worker
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewSyncProducer(cfg.KafkaBrokers, nil)
		if err != nil {
			return application{}, fmt.Errorf("kafka producer: %w", err)
		}
		worker = &infraoutbox.Worker{
			Store:       outboxStore,
			Producer:    producer,
			Interval:    cfg.OutboxPollInterval,
			TopicPrefix: cfg.KafkaTopicPrefix,
			Backoff:     cfg.RetryBackoff,
		}
	} else {
		logger.Info("kafka brokers not configured, outbox worker disabled")
	}

	sweeper := &schedule.Sweeper{
		UoWFactory: uowFactory,
		Outbox:     appOutbox,
		Interval:   cfg.SweepInterval,
		Logger:     logger,
	}

	authMiddleware := ginserver.AuthMiddleware{Service: authService, Logger: logger}

	return application{
		handlers: ginserver.Handlers{
			Auth:            ginserver.AuthHandler{Service: authService, Logger: logger},
			Reservation:     ginserver.ReservationHandler{Commands: commandBusWithMiddleware, Logger: logger},
			Me:              ginserver.MeHandler{Queries: queryBusWithMiddleware, Logger: logger},
			HostListing:     ginserver.HostListingHandler{Commands: commandBusWithMiddleware, Queries: queryBusWithMiddleware, Logger: logger},
			HostReservation: ginserver.HostReservationHandler{Commands: commandBusWithMiddleware, Queries: queryBusWithMiddleware, Logger: logger},
			Admin:           ginserver.AdminHandler{Commands: commandBusWithMiddleware, Queries: queryBusWithMiddleware, Logger: logger},
			AuthMiddleware:  authMiddleware.Handle,
		},
		sweeper:  sweeper,
		worker:   worker,
		ready:    ready,
		listings: listingRepo,
	}, nil
}

func (a application) loadListingFixtures(ctx context.Context, path string, logger *slog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("listing fixtures file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("read fixtures: %w", err)
	}
	if len(data) == 0 {
		logger.Warn("listing fixtures file empty", "path", path)
		return nil
	}

	var fixtures []listingFixture
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return fmt.Errorf("decode fixtures: %w", err)
	}

	now := time.Now()
	for _, fx := range fixtures {
		rate, err := money.ParseDecimal(fx.NightlyRate, fx.Currency)
		if err != nil {
			logger.Error("fixture rate invalid", "listing_id", fx.ID, "error", err)
			continue
		}
		listing, err := listings.NewListing(listings.CreateParams{
			ID:          listings.ListingID(fx.ID),
			Owner:       listings.OwnerID(fx.Owner),
			Title:       fx.Title,
			Description: fx.Description,
			NightlyRate: rate,
			GuestsLimit: fx.GuestsLimit,
			Now:         now,
		})
		if err != nil {
			logger.Error("fixture invalid", "listing_id", fx.ID, "error", err)
			continue
		}
		if fx.Approved {
			if err := listing.Approve(now); err != nil {
				logger.Error("fixture approval failed", "listing_id", fx.ID, "error", err)
				continue
			}
		}
		listing.ClearEvents()
		if err := a.listings.Save(ctx, listing); err != nil {
			logger.Error("cannot store fixture listing", "listing_id", fx.ID, "error", err)
			continue
		}
		logger.Info("listing fixture imported", "listing_id", listing.ID)
	}
	return nil
}

type listingFixture struct {
	ID          string `json:"id"`
	Owner       string `json:"owner"`
	Title       string `json:"title"`
	Description string `json:"description"`
	NightlyRate string `json:"nightly_rate"`
	Currency    string `json:"currency"`
	GuestsLimit int    `json:"guests_limit"`
	Approved    bool   `json:"approved"`
}

// knownDomainErrors lists the sentinels the idempotency middleware preserves
// across replays, so a retried command maps to the same HTTP status as the
// first attempt.
func knownDomainErrors() []error {
	return []error{
		domainreservation.ErrDateRangeConflict,
		domainreservation.ErrSelfBooking,
		domainreservation.ErrInvalidGuests,
		domainreservation.ErrGuestRequired,
		domainreservation.ErrGuestLimitExceeded,
		domainreservation.ErrInvalidState,
		domainreservation.ErrNotCheckedOutYet,
		domainreservation.ErrNotFound,
		reservationapp.ErrReservationNotOwned,
		listings.ErrListingUnavailable,
		listings.ErrInvalidState,
		listings.ErrNotFound,
		listingapp.ErrListingNotOwned,
		domainrange.ErrInvalidRange,
		money.ErrInvalidDecimal,
		money.ErrInvalidCurrency,
	}
}

func defaultListingFixturesPath() string {
	candidates := []string{
		filepath.Join("data", "listings.json"),
		filepath.Join("backend", "data", "listings.json"),
	}
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return candidates[0]
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
