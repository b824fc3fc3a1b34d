package startup

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"booking_service/casbinAuthorization"
	"booking_service/domain"
	"booking_service/handlers"
	application "booking_service/service"
	"booking_service/startup/config"
	store2 "booking_service/store"

	"github.com/go-redis/redis"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.12.0"
	"go.opentelemetry.io/otel/trace"
)

type Server struct {
	config *config.Config
	logger *logrus.Logger
}

func NewServer(config *config.Config) *Server {
	return &Server{
		config: config,
		logger: logrus.New(),
	}
}

func (server *Server) Start() {
	ctx := context.Background()

	exp, err := newExporter(server.config.JaegerAddress)
	if err != nil {
		log.Fatalf("Failed to Initialize Exporter: %v", err)
	}

	tp := newTraceProvider(exp)
	defer func() { _ = tp.Shutdown(ctx) }()
	otel.SetTracerProvider(tp)
	tracer := tp.Tracer("booking_service")

	mongoClient := server.initMongoClient()
	defer func(mongoClient *mongo.Client, ctx context.Context) {
		err := mongoClient.Disconnect(ctx)
		if err != nil {
			log.Printf("Error disconnecting from MongoDB: %v", err)
		}
	}(mongoClient, ctx)

	redisClient := server.initRedisClient()

	userStore := store2.NewUserMongoDBStore(mongoClient, tracer)
	itemStore := store2.NewItemMongoDBStore(mongoClient, tracer)
	bookingStore := store2.NewBookingMongoDBStore(mongoClient, tracer)
	postStore := store2.NewPostMongoDBStore(mongoClient, tracer)
	sessionCache := store2.NewSessionRedisCache(redisClient, tracer)

	mailer := server.initMailer()
	tokenService := server.initTokenService(userStore, tracer)

	authService := application.NewAuthService(userStore, sessionCache, tokenService, mailer, server.config.AppURL, server.logger, tracer)
	userService := application.NewUserService(userStore, itemStore, tokenService, mailer, server.config.AppURL, server.logger, tracer)
	itemService := application.NewItemService(itemStore, userStore, server.logger, tracer)
	bookingService := application.NewBookingService(bookingStore, server.logger, tracer)
	postService := application.NewPostService(postStore, server.logger, tracer)

	authHandler := handlers.NewAuthHandler(authService, tokenService, userStore, server.logger, tracer)
	userHandler := handlers.NewUserHandler(userService, tokenService, userStore, itemStore, server.logger, tracer)
	itemHandler := handlers.NewItemHandler(itemService, tokenService, userStore, itemStore, server.logger, tracer)
	bookingHandler := handlers.NewBookingHandler(bookingService, tokenService, userStore, itemStore, bookingStore, server.logger, tracer)
	postHandler := handlers.NewPostHandler(postService, tokenService, userStore, itemStore, postStore, server.logger, tracer)

	server.start(tokenService, authHandler, userHandler, itemHandler, bookingHandler, postHandler)
}

func (server *Server) initMongoClient() *mongo.Client {
	client, err := store2.GetMongoClient(server.config.DBHost, server.config.DBPort)
	if err != nil {
		log.Fatal(err)
	}
	return client
}

func (server *Server) initRedisClient() *redis.Client {
	client, err := store2.GetRedisClient(server.config.CacheHost, server.config.CachePort)
	if err != nil {
		log.Fatal(err)
	}
	return client
}

func (server *Server) initMailer() application.Mailer {
	return application.NewMailService(
		server.config.SMTPHost,
		server.config.SMTPPort,
		server.config.SMTPUsername,
		server.config.SMTPPassword,
		server.config.SMTPFrom,
		server.logger,
	)
}

func (server *Server) initTokenService(users domain.UserStore, tracer trace.Tracer) *application.TokenService {
	tokenService, err := application.NewTokenService(application.TokenConfig{
		Secret:                server.config.Secret,
		AppURL:                server.config.AppURL,
		AccessLifespan:        server.config.AccessTokenLifespan,
		RefreshLifespan:       server.config.RefreshTokenLifespan,
		RegisterLifespan:      server.config.RegisterTokenLifespan,
		PasswordResetLifespan: server.config.PasswordResetTokenLifespan,
	}, users, tracer)
	if err != nil {
		log.Fatal(err)
	}
	return tokenService
}

func (server *Server) start(tokenService *application.TokenService, authHandler *handlers.AuthHandler, userHandler *handlers.UserHandler, itemHandler *handlers.ItemHandler, bookingHandler *handlers.BookingHandler, postHandler *handlers.PostHandler) {
	router := mux.NewRouter()
	router.Use(handlers.MiddlewareContentTypeSet)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/ping", func(writer http.ResponseWriter, req *http.Request) {
		writer.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)

	casbinMiddleware, err := casbinAuthorization.InitializeCasbinMiddleware("./rbac_model.conf", "./policy.csv", tokenService, server.logger)
	if err != nil {
		log.Fatal(err)
	}
	admin := router.PathPrefix("/api").Subrouter()
	admin.Use(casbinMiddleware)

	authHandler.Init(router, api)
	userHandler.Init(api, admin)
	itemHandler.Init(api)
	bookingHandler.Init(api)
	postHandler.Init(api)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", server.config.Port),
		Handler: router,
	}

	wait := time.Second * 15
	go func() {
		if err := srv.ListenAndServe(); err != nil {
			log.Println(err)
		}
	}()

	c := make(chan os.Signal, 1)

	signal.Notify(c, os.Interrupt)
	signal.Notify(c, syscall.SIGTERM)

	<-c

	ctx, cancel := context.WithTimeout(context.Background(), wait)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Error Shutting Down Server %s", err)
	}
	log.Println("Server Gracefully Stopped")
}

func newExporter(address string) (*jaeger.Exporter, error) {
	exp, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(address)))
	if err != nil {
		return nil, err
	}
	return exp, nil
}

func newTraceProvider(exp sdktrace.SpanExporter) *sdktrace.TracerProvider {
	r, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String("booking_service"),
		),
	)

	if err != nil {
		panic(err)
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(r),
	)
}
