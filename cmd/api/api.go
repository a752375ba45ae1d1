package main

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"meethub/docs" //this is required to generate swagger docs
	"meethub/internal/auth"
	"meethub/internal/events"
	"meethub/internal/mailer"
	"meethub/internal/meetingcode"
	"meethub/internal/ratelimiter"
	"meethub/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
)

type application struct {
	config        config
	store         store.Storage
	logger        *zap.SugaredLogger
	authenticator auth.Authenticator
	broadcaster   events.Broadcaster
	hub           *events.Hub
	mailer        mailer.Client
	rateLimiter   ratelimiter.Limiter
	codes         *meetingcode.Generator
}

type config struct {
	addr        string
	db          dbConfig
	env         string
	apiURL      string
	frontendURL string
	mail        mailConfig
	auth        authConfig
	rateLimiter ratelimiter.Config
}

type authConfig struct {
	basic basicConfig
	token tokenConfig
}

type tokenConfig struct {
	refreshSecret   string
	secret          string
	accessTokenExp  time.Duration
	refreshTokenExp time.Duration
	iss             string
}

type basicConfig struct {
	user string
	pass string
}

type mailConfig struct {
	fromEmail string
	mailtrap  mailTrapConfig
}

type mailTrapConfig struct {
	apiKey string
}

type dbConfig struct {
	addr        string
	maxConns    int32
	maxIdleTime string
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Use(app.RateLimiterMiddleware)

	// Request context timeout; websocket upgrades are mounted outside of it.
	r.Route("/v1", func(r chi.Router) {
		r.Get("/live", app.liveHandler)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))

			r.With(app.BasicAuthMiddleware()).Get("/health", app.healthCheckHandler)
			docsURL := fmt.Sprintf("%s/swagger/doc.json", app.config.addr)
			r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL(docsURL)))

			r.With(app.BasicAuthMiddleware()).Get("/debug/vars", expvar.Handler().ServeHTTP)

			r.Post("/seed/admin", app.seedAdminHandler)

			r.Route("/authentication", func(r chi.Router) {
				r.Post("/token", app.createTokenHandler)
				r.Post("/refresh", app.refreshTokenHandler)
			})

			r.Route("/meetings", func(r chi.Router) {
				r.Use(app.AuthTokenMiddleware)

				r.Get("/", app.listMeetingsHandler)
				r.With(app.RequireRole(store.RoleSeller)).Post("/", app.createMeetingHandler)

				r.Route("/{meetingID}", func(r chi.Router) {
					r.With(app.RequireRole(store.RoleSeller)).Put("/cancel", app.cancelMeetingHandler)
					r.With(app.RequireRole(store.RoleManager)).Put("/", app.updateMeetingHandler)
					r.With(app.RequireRole(store.RoleManager)).Delete("/", app.deleteMeetingHandler)
				})
			})

			r.Route("/users", func(r chi.Router) {
				r.Use(app.AuthTokenMiddleware)
				r.Use(app.RequireRole(store.RoleManager))

				r.Get("/sellers", app.listSellersHandler)
				r.Post("/", app.createSellerHandler)
				r.Delete("/{userID}", app.deleteSellerHandler)
			})
		})
	})
	return r
}

func (app *application) run(mux http.Handler) error {
	// Docs
	docs.SwaggerInfo.Version = version
	docs.SwaggerInfo.Host = app.config.apiURL
	docs.SwaggerInfo.BasePath = "/v1"

	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: time.Second * 30,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Minute,
	}

	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Infow("server has started", "addr", app.config.addr, "env", app.config.env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", app.config.addr, "env", app.config.env)

	return nil
}
