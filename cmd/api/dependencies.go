package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/tripflow/tripflow-api/internal/clients/events"
	"github.com/tripflow/tripflow-api/internal/clients/flights"
	"github.com/tripflow/tripflow-api/internal/clients/geoip"
	"github.com/tripflow/tripflow-api/internal/clients/transit"
	"github.com/tripflow/tripflow-api/internal/clients/weather"
	"github.com/tripflow/tripflow-api/internal/domain/itinerary"
	"github.com/tripflow/tripflow-api/internal/domain/listings"
	"github.com/tripflow/tripflow-api/internal/domain/places"
	"github.com/tripflow/tripflow-api/internal/domain/recommend"
	"github.com/tripflow/tripflow-api/internal/engine/rescache"
	"github.com/tripflow/tripflow-api/pkg/config"
	"github.com/tripflow/tripflow-api/pkg/db"
)

// Dependencies holds all application dependencies.
type Dependencies struct {
	Config *config.Config
	DB     *db.DB
	Logger *slog.Logger

	// Shared result cache behind the external API clients.
	ResultCache *rescache.Cache

	// External clients
	Weather *weather.Client
	Flights *flights.Client
	Events  *events.Client
	Transit *transit.Client
	GeoIP   *geoip.Client

	// Repositories
	ListingRepo   listings.Repository
	PlaceRepo     places.Repository
	ItineraryRepo itinerary.Repository

	// Services
	ListingSvc   listings.Service
	PlaceSvc     places.Service
	ItinerarySvc itinerary.Service
	RecommendSvc recommend.Service

	// Handlers
	RecommendHandler *recommend.Handler
	ItineraryHandler *itinerary.Handler
}

// InitDependencies initializes all application dependencies.
func InitDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to init database: %w", err)
	}
	deps.initClients()
	deps.initRepositories()
	deps.initServices()
	deps.initHandlers()

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

func (d *Dependencies) initDatabase() error {
	database, err := db.New(db.Config{
		DSN:             d.Config.Database.DSN(),
		MaxConns:        25,
		MinConns:        5,
		MaxConnLifetime: 5 * time.Minute,
		MaxConnIdleTime: 10 * time.Minute,
	}, d.Logger)
	if err != nil {
		return err
	}
	d.DB = database

	if err := d.DB.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	d.Logger.Info("database connected and migrations completed successfully")
	return nil
}

func (d *Dependencies) initClients() {
	d.ResultCache = rescache.New(d.Config.Cache.MaxEntries, d.Config.Cache.TTL)

	p := d.Config.Providers
	d.Weather = weather.New(p.OpenWeatherKey, d.ResultCache, d.Logger)
	d.Flights = flights.New(p.AmadeusKey, p.AmadeusSecret, d.ResultCache, d.Logger)
	d.Events = events.New(p.TicketmasterKey, d.ResultCache, d.Logger)
	d.Transit = transit.New(p.GooglePlacesKey, d.ResultCache, d.Logger)
	d.GeoIP = geoip.New(p.IPInfoToken, d.ResultCache, d.Logger)
}

func (d *Dependencies) initRepositories() {
	d.ListingRepo = listings.NewRepository(d.DB.Pool, d.Logger)
	d.PlaceRepo = places.NewRepository(d.DB.Pool, d.Logger)
	d.ItineraryRepo = itinerary.NewRepository(d.DB.Pool, d.Logger)
}

func (d *Dependencies) initServices() {
	d.ListingSvc = listings.NewService(d.ListingRepo, d.Logger)
	d.PlaceSvc = places.NewService(d.PlaceRepo, d.Logger)
	d.ItinerarySvc = itinerary.NewService(d.ItineraryRepo, d.Logger)
	d.RecommendSvc = recommend.NewService(
		d.ListingSvc, d.PlaceSvc,
		d.Weather, d.Events, d.Transit,
		d.Logger,
	)
}

func (d *Dependencies) initHandlers() {
	d.RecommendHandler = recommend.NewHandler(d.RecommendSvc, d.Logger)
	d.ItineraryHandler = itinerary.NewHandler(d.ItinerarySvc, d.Logger)
}

// Close releases long-lived resources.
func (d *Dependencies) Close() {
	if d.DB != nil {
		d.DB.Close()
	}
}
